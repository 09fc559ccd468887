package graph

import (
	"strings"

	"github.com/odvcencio/sigil/pkg/sig"
)

// DefaultMarker is the annotation class conventionally used to flag the
// canonical constructor.
const DefaultMarker sig.TypeID = "org.json4s.reflect.PrimaryConstructor"

// ClassOptions tunes constructor extraction.
type ClassOptions struct {
	// Marker is the full name of the annotation class that flags a
	// constructor as canonical. Empty disables marker detection.
	Marker sig.TypeID
}

// Class is the part of a class descriptor recovered from the symbol graph:
// its constructors in declaration order and accessor methods by name.
type Class struct {
	Symbol       *Symbol
	TypeParams   []*Symbol
	Constructors []Constructor
	Accessors    map[string]*Symbol
}

// Class finds the class symbol named id and extracts its constructors.
func (g *Graph) Class(id sig.TypeID, opts ClassOptions) (*Class, error) {
	s, ok := g.Lookup(id)
	if !ok {
		return nil, &GraphError{Type: id, Ref: sig.NoRef, Err: ErrSymbolNotFound}
	}

	c := &Class{
		Symbol:     s,
		TypeParams: g.typeParams[s.Ref],
		Accessors:  make(map[string]*Symbol),
	}
	for _, m := range g.members[s.Ref] {
		switch {
		case m.IsConstructor():
			params, err := g.constructorParams(m)
			if err != nil {
				return nil, withType(err, id)
			}
			c.Constructors = append(c.Constructors, Constructor{
				Symbol:   m,
				Params:   params,
				Explicit: g.marked(m, opts.Marker),
			})
		case m.IsAccessor():
			name := strings.TrimSpace(m.Name)
			if _, exists := c.Accessors[name]; !exists {
				c.Accessors[name] = m
			}
		}
	}
	return c, nil
}

// constructorParams unwraps a polymorphic constructor type and returns the
// first parameter list. A constructor without a method type is nullary.
func (g *Graph) constructorParams(m *Symbol) ([]Param, error) {
	t, err := g.resolveSymbolType(m)
	if err != nil {
		return nil, err
	}
	if pt, ok := Deref(t).(*PolyType); ok {
		t = pt.Result
	}
	mt, ok := Deref(t).(*MethodType)
	if !ok {
		return nil, nil
	}
	return mt.Params, nil
}

func (g *Graph) marked(m *Symbol, marker sig.TypeID) bool {
	if marker == "" {
		return false
	}
	for _, ann := range g.annotations[m.Ref] {
		ct, ok := g.table.Entry(ann.Type).(*sig.ClassType)
		if !ok {
			continue
		}
		if s := g.symbols[ct.Symbol]; s != nil && s.fullName == string(marker) {
			return true
		}
	}
	return false
}

func withType(err error, id sig.TypeID) error {
	if ge, ok := err.(*GraphError); ok && ge.Type == "" {
		copied := *ge
		copied.Type = id
		return &copied
	}
	return err
}
