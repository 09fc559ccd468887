// Package descriptor builds and caches class descriptors: the canonical
// constructor of a type and the field set it exposes to serializers.
package descriptor

import (
	"errors"
	"fmt"

	"github.com/odvcencio/sigil/pkg/graph"
	"github.com/odvcencio/sigil/pkg/sig"
)

// Descriptor sources.
const (
	SourceSignature = "signature"
	SourceHost      = "host"
)

// ErrInvalidDescriptor reports a descriptor whose primary index does not
// name one of its constructors.
var ErrInvalidDescriptor = errors.New("invalid class descriptor")

// ClassDescriptor is the resolved summary of a type. Descriptors are
// immutable once published by a Cache.
type ClassDescriptor struct {
	Type         sig.TypeID
	TypeParams   []string
	Constructors []graph.Constructor
	Primary      int
	Fields       []Field

	// Accessors maps a parameter name to the accessor method that reads the
	// value back from an instance.
	Accessors map[string]string

	// Fingerprint is the digest of the blob the descriptor was built from,
	// empty for host-sourced descriptors.
	Fingerprint string
	Source      string
}

// PrimaryConstructor returns the canonical constructor.
func (d *ClassDescriptor) PrimaryConstructor() graph.Constructor {
	return d.Constructors[d.Primary]
}

func (d *ClassDescriptor) validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil", ErrInvalidDescriptor)
	}
	if d.Primary < 0 || d.Primary >= len(d.Constructors) {
		return fmt.Errorf("%w: %s: primary %d of %d constructors", ErrInvalidDescriptor, d.Type, d.Primary, len(d.Constructors))
	}
	return nil
}

// Field is one element of a type's field set.
type Field struct {
	Index      int
	Name       string
	Type       graph.Type
	Accessor   string
	HasDefault bool
}

// FieldsOf projects the primary constructor's parameters into fields, in
// declaration order. A parameter without a declared accessor is read by its
// own name.
func FieldsOf(d *ClassDescriptor) []Field {
	params := d.PrimaryConstructor().Params
	fields := make([]Field, len(params))
	for i, p := range params {
		accessor := p.Name
		if name, ok := d.Accessors[p.Name]; ok {
			accessor = name
		}
		fields[i] = Field{
			Index:      i,
			Name:       p.Name,
			Type:       p.Type,
			Accessor:   accessor,
			HasDefault: p.HasDefault,
		}
	}
	return fields
}

// Field returns the field named name.
func (d *ClassDescriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
