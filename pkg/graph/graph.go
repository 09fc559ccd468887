package graph

import (
	"fmt"
	"strings"

	"github.com/odvcencio/sigil/pkg/sig"
)

// Graph links the symbols of one decoded table. Resolved types are memoized
// per entry; a Graph is not safe for concurrent use while classes are being
// extracted, but the symbols and types it hands out are immutable.
type Graph struct {
	table   *sig.Table
	symbols map[sig.Ref]*Symbol
	classes map[string]*Symbol

	typeParams  map[sig.Ref][]*Symbol
	members     map[sig.Ref][]*Symbol
	annotations map[sig.Ref][]*sig.Annotation

	types     map[sig.Ref]Type
	resolving map[sig.Ref]*BackRef
}

// New links every symbol in t, computes full names, and checks the arity of
// every class type in the table.
func New(t *sig.Table) (*Graph, error) {
	g := &Graph{
		table:       t,
		symbols:     make(map[sig.Ref]*Symbol),
		classes:     make(map[string]*Symbol),
		typeParams:  make(map[sig.Ref][]*Symbol),
		members:     make(map[sig.Ref][]*Symbol),
		annotations: make(map[sig.Ref][]*sig.Annotation),
		types:       make(map[sig.Ref]Type),
		resolving:   make(map[sig.Ref]*BackRef),
	}

	var order []*Symbol
	t.Each(func(r sig.Ref, e sig.Entry) bool {
		switch e := e.(type) {
		case *sig.Symbol:
			s := &Symbol{
				Ref:     r,
				Kind:    e.Kind,
				Name:    t.Name(e.Name),
				Flags:   e.Flags,
				typeRef: e.Type,
			}
			g.symbols[r] = s
			order = append(order, s)
		case *sig.Annotation:
			g.annotations[e.Target] = append(g.annotations[e.Target], e)
		}
		return true
	})

	for _, s := range order {
		raw, _ := t.Symbol(s.Ref)
		if raw.Owner != s.Ref {
			s.Owner = g.symbols[raw.Owner]
		}
	}

	for _, s := range order {
		name, ok := computeFullName(s, len(order))
		if !ok {
			return nil, &GraphError{Ref: s.Ref, Err: fmt.Errorf("%w: %s", ErrOwnerCycle, s.Name)}
		}
		s.fullName = name

		if s.Owner == nil {
			continue
		}
		switch s.Kind {
		case sig.KindTypeParam:
			g.typeParams[s.Owner.Ref] = append(g.typeParams[s.Owner.Ref], s)
		case sig.KindMethod:
			g.members[s.Owner.Ref] = append(g.members[s.Owner.Ref], s)
		}
	}

	for _, s := range order {
		if s.Kind != sig.KindClass {
			continue
		}
		if _, exists := g.classes[s.fullName]; !exists {
			g.classes[s.fullName] = s
		}
	}

	if err := g.checkArity(); err != nil {
		return nil, err
	}
	return g, nil
}

// Table returns the table the graph was built from.
func (g *Graph) Table() *sig.Table { return g.table }

// Symbol returns the linked symbol at r.
func (g *Graph) Symbol(r sig.Ref) (*Symbol, bool) {
	s, ok := g.symbols[r]
	return s, ok
}

// Lookup returns the class symbol with the given full name.
func (g *Graph) Lookup(id sig.TypeID) (*Symbol, bool) {
	s, ok := g.classes[string(id)]
	return s, ok
}

// Classes returns the full names of every class symbol in the graph.
func (g *Graph) Classes() []sig.TypeID {
	out := make([]sig.TypeID, 0, len(g.classes))
	for name := range g.classes {
		out = append(out, sig.TypeID(name))
	}
	return out
}

// TypeParams returns the type parameters declared by s, in table order.
func (g *Graph) TypeParams(s *Symbol) []*Symbol {
	return g.typeParams[s.Ref]
}

func (g *Graph) declaredArity(s *Symbol) int {
	if s.Kind != sig.KindClass {
		return 0
	}
	return len(g.typeParams[s.Ref])
}

func (g *Graph) checkArity() error {
	var err error
	g.table.Each(func(r sig.Ref, e sig.Entry) bool {
		ct, ok := e.(*sig.ClassType)
		if !ok {
			return true
		}
		s := g.symbols[ct.Symbol]
		if want := g.declaredArity(s); len(ct.Args) != want {
			err = &GraphError{Ref: r, Err: fmt.Errorf("%w: %s applied to %d argument(s), declares %d", ErrArityMismatch, s, len(ct.Args), want)}
			return false
		}
		return true
	})
	return err
}

// Resolve returns the resolved type of entry r. Resolution is depth-first
// and memoized; reaching an entry that is still on the resolution stack
// yields a BackRef instead of re-entering it.
func (g *Graph) Resolve(r sig.Ref) (Type, error) {
	if t, ok := g.types[r]; ok {
		return t, nil
	}
	if br, ok := g.resolving[r]; ok {
		return br, nil
	}

	br := &BackRef{Ref: r}
	g.resolving[r] = br
	t, err := g.resolveEntry(r)
	delete(g.resolving, r)
	if err != nil {
		return nil, err
	}
	br.Target = t
	g.types[r] = t
	return t, nil
}

func (g *Graph) resolveSymbolType(s *Symbol) (Type, error) {
	if !s.typeRef.Valid() {
		return NoType{}, nil
	}
	return g.Resolve(s.typeRef)
}

func (g *Graph) resolveEntry(r sig.Ref) (Type, error) {
	switch e := g.table.Entry(r).(type) {
	case *sig.NoType:
		return NoType{}, nil

	case *sig.ThisType:
		return &ThisType{Symbol: g.symbols[e.Symbol]}, nil

	case *sig.SingleType:
		prefix, err := g.Resolve(e.Prefix)
		if err != nil {
			return nil, err
		}
		return &SingleType{Prefix: prefix, Symbol: g.symbols[e.Symbol]}, nil

	case *sig.ClassType:
		s := g.symbols[e.Symbol]
		if want := g.declaredArity(s); len(e.Args) != want {
			return nil, &GraphError{Ref: r, Err: fmt.Errorf("%w: %s applied to %d argument(s), declares %d", ErrArityMismatch, s, len(e.Args), want)}
		}
		ct := &ClassType{Symbol: s}
		for _, a := range e.Args {
			at, err := g.Resolve(a)
			if err != nil {
				return nil, err
			}
			ct.Args = append(ct.Args, at)
		}
		if s.Kind == sig.KindTypeParam && s.HasType() {
			bound, err := g.resolveSymbolType(s)
			if err != nil {
				return nil, err
			}
			ct.Bound = bound
		}
		return ct, nil

	case *sig.MethodType:
		mt := &MethodType{Params: make([]Param, 0, len(e.Params))}
		for _, pr := range e.Params {
			ps := g.symbols[pr]
			pt, err := g.resolveSymbolType(ps)
			if err != nil {
				return nil, err
			}
			mt.Params = append(mt.Params, Param{
				Name:       strings.TrimSpace(ps.Name),
				Type:       pt,
				HasDefault: ps.Flags.Has(sig.FlagDefaultParam),
			})
		}
		result, err := g.Resolve(e.Result)
		if err != nil {
			return nil, err
		}
		mt.Result = result
		return mt, nil

	case *sig.PolyType:
		pt := &PolyType{TypeParams: make([]*Symbol, 0, len(e.TypeParams))}
		for _, tr := range e.TypeParams {
			pt.TypeParams = append(pt.TypeParams, g.symbols[tr])
		}
		result, err := g.Resolve(e.Result)
		if err != nil {
			return nil, err
		}
		pt.Result = result
		return pt, nil
	}

	return nil, &GraphError{Ref: r, Err: fmt.Errorf("%w: entry is not a type", sig.ErrMalformed)}
}
