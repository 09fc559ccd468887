package graph

import (
	"fmt"
	"strings"

	"github.com/odvcencio/sigil/pkg/sig"
)

// Type is a resolved type reference.
type Type interface {
	String() string
	isType()
}

// NoType is the absent type.
type NoType struct{}

// ThisType is the self type of a class or module.
type ThisType struct {
	Symbol *Symbol
}

// SingleType is the singleton type of Symbol seen through Prefix.
type SingleType struct {
	Prefix Type
	Symbol *Symbol
}

// ClassType applies a class symbol to type arguments. When Symbol is a type
// parameter, Args is empty and Bound holds its upper bound, if declared.
type ClassType struct {
	Symbol *Symbol
	Args   []Type
	Bound  Type
}

// MethodType is one parameter list and its result.
type MethodType struct {
	Params []Param
	Result Type
}

// PolyType binds type parameters over Result.
type PolyType struct {
	TypeParams []*Symbol
	Result     Type
}

// BackRef stands in for a type that was still being resolved when it was
// reached again, as in F-bounded or mutually recursive definitions. Target
// is set once the outer resolution completes.
type BackRef struct {
	Ref    sig.Ref
	Target Type
}

func (NoType) isType()      {}
func (*ThisType) isType()   {}
func (*SingleType) isType() {}
func (*ClassType) isType()  {}
func (*MethodType) isType() {}
func (*PolyType) isType()   {}
func (*BackRef) isType()    {}

func (NoType) String() string { return "<notype>" }

func (t *ThisType) String() string { return t.Symbol.String() + ".this" }

func (t *SingleType) String() string { return t.Symbol.String() + ".type" }

func (t *ClassType) String() string {
	if t.Symbol.Kind == sig.KindTypeParam {
		return t.Symbol.Name
	}
	if len(t.Args) == 0 {
		return t.Symbol.String()
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Symbol.String() + "[" + strings.Join(args, ", ") + "]"
}

func (t *MethodType) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	return "(" + strings.Join(params, ", ") + ")" + t.Result.String()
}

func (t *PolyType) String() string {
	names := make([]string, len(t.TypeParams))
	for i, p := range t.TypeParams {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]" + t.Result.String()
}

// String names the target without expanding it, which keeps printing of
// cyclic graphs finite.
func (t *BackRef) String() string {
	switch target := t.Target.(type) {
	case *ClassType:
		if target.Symbol.Kind == sig.KindTypeParam {
			return target.Symbol.Name
		}
		return target.Symbol.String()
	case nil:
		return fmt.Sprintf("<unresolved #%d>", t.Ref)
	}
	return fmt.Sprintf("<backref #%d>", t.Ref)
}

// Deref follows back-references to the type they stand for.
func Deref(t Type) Type {
	for {
		br, ok := t.(*BackRef)
		if !ok || br.Target == nil {
			return t
		}
		t = br.Target
	}
}

// Named builds a class type around a detached symbol. Hosts that describe
// constructors without a signature blob use it to name parameter types.
func Named(name string, args ...Type) *ClassType {
	id := sig.TypeID(name)
	return &ClassType{
		Symbol: &Symbol{
			Ref:      sig.NoRef,
			Kind:     sig.KindClass,
			Name:     id.Simple(),
			typeRef:  sig.NoRef,
			fullName: name,
		},
		Args: args,
	}
}

// Param is one constructor parameter.
type Param struct {
	Name       string
	Type       Type
	HasDefault bool
}

// Constructor is a candidate constructor of a class.
type Constructor struct {
	Symbol   *Symbol
	Params   []Param
	Explicit bool
}

// Marked reports whether the constructor carries the canonical marker.
func (c Constructor) Marked() bool { return c.Explicit }

// Arity returns the parameter count.
func (c Constructor) Arity() int { return len(c.Params) }

func (c Constructor) String() string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	s := "(" + strings.Join(params, ", ") + ")"
	if c.Explicit {
		s = "@primary " + s
	}
	return s
}
