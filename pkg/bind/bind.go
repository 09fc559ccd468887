// Package bind lines structured data up with a class descriptor's field
// set, in both directions.
package bind

import (
	"errors"
	"fmt"

	"github.com/odvcencio/sigil/pkg/descriptor"
)

// Default marks an argument the caller should fill with the parameter's
// default value.
var Default = defaultArg{}

type defaultArg struct{}

func (defaultArg) String() string { return "<default>" }
func (defaultArg) MarshalText() ([]byte, error) { return []byte("<default>"), nil }

// ErrTooManyArguments reports positional input longer than the field set.
var ErrTooManyArguments = errors.New("too many arguments")

// MissingFieldError reports a field without a default that the input does
// not supply.
type MissingFieldError struct {
	Type  string
	Field string
	Index int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("bind %s: missing field %s (parameter %d)", e.Type, e.Field, e.Index)
}

// Arguments aligns input with the primary constructor's parameters. A
// map is matched by field name and a slice by position. The result has
// one element per field; omitted defaulted fields hold Default. Map keys
// that name no field are ignored.
func Arguments(d *descriptor.ClassDescriptor, input any) ([]any, error) {
	args := make([]any, len(d.Fields))
	switch in := input.(type) {
	case map[string]any:
		for _, f := range d.Fields {
			v, ok := in[f.Name]
			if !ok {
				if !f.HasDefault {
					return nil, &MissingFieldError{Type: string(d.Type), Field: f.Name, Index: f.Index}
				}
				v = Default
			}
			args[f.Index] = v
		}
	case []any:
		if len(in) > len(d.Fields) {
			return nil, fmt.Errorf("bind %s: %w: got %d, want at most %d", d.Type, ErrTooManyArguments, len(in), len(d.Fields))
		}
		for _, f := range d.Fields {
			if f.Index < len(in) {
				args[f.Index] = in[f.Index]
				continue
			}
			if !f.HasDefault {
				return nil, &MissingFieldError{Type: string(d.Type), Field: f.Name, Index: f.Index}
			}
			args[f.Index] = Default
		}
	case nil:
		return Arguments(d, map[string]any{})
	default:
		return nil, fmt.Errorf("bind %s: unsupported input %T", d.Type, input)
	}
	return args, nil
}

// Source reads accessor values from an instance.
type Source interface {
	Get(accessor string) (any, bool)
}

// MapSource is a Source over a map keyed by accessor name.
type MapSource map[string]any

func (m MapSource) Get(accessor string) (any, bool) {
	v, ok := m[accessor]
	return v, ok
}

// Value is one serialized field.
type Value struct {
	Name  string
	Value any
}

// Values reads every field of d from src through its accessor, in field
// order.
func Values(d *descriptor.ClassDescriptor, src Source) ([]Value, error) {
	out := make([]Value, len(d.Fields))
	for _, f := range d.Fields {
		v, ok := src.Get(f.Accessor)
		if !ok {
			return nil, &MissingFieldError{Type: string(d.Type), Field: f.Name, Index: f.Index}
		}
		out[f.Index] = Value{Name: f.Name, Value: v}
	}
	return out, nil
}
