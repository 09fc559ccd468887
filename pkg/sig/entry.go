package sig

import "strings"

// Blob is a raw signature blob as attached to a compiled type.
type Blob []byte

// TypeID is the fully qualified, dot-separated name of a compiled type, e.g.
// "com.example.Person".
type TypeID string

// Package returns everything before the last dot, or "" for a top-level type.
func (id TypeID) Package() string {
	s := string(id)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return ""
}

// Simple returns the last path segment.
func (id TypeID) Simple() string {
	s := string(id)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Ref is an index into a Table. After Decode returns, every Ref stored in an
// entry is known to address an entry of the expected kind.
type Ref int

// NoRef marks an absent optional reference.
const NoRef Ref = -1

// Valid reports whether r addresses an entry.
func (r Ref) Valid() bool { return r >= 0 }

// Entry is one decoded unit of the signature table.
type Entry interface {
	Tag() Tag
}

// TermName is a term-level identifier (methods, values, packages).
type TermName struct{ Value string }

// TypeName is a type-level identifier (classes, type parameters).
type TypeName struct{ Value string }

type IntLiteral struct{ Value int32 }
type LongLiteral struct{ Value int64 }
type FloatLiteral struct{ Value float32 }
type DoubleLiteral struct{ Value float64 }
type StringLiteral struct{ Value string }

// Symbol is a named, owned entity. Owner == own index marks a root.
type Symbol struct {
	Kind  SymbolKind
	Name  Ref
	Owner Ref
	Flags Flags
	Type  Ref // NoRef when the symbol carries no type
}

// NoType is the absent type.
type NoType struct{}

// ThisType is the self type of Symbol.
type ThisType struct{ Symbol Ref }

// SingleType is the singleton type Prefix.Symbol.
type SingleType struct {
	Prefix Ref
	Symbol Ref
}

// ClassType applies the class (or type parameter) Symbol to Args.
type ClassType struct {
	Symbol Ref
	Args   []Ref
}

// MethodType is a parameter list of value-parameter symbols and a result.
type MethodType struct {
	Result Ref
	Params []Ref
}

// PolyType binds type-parameter symbols over Result.
type PolyType struct {
	Result     Ref
	TypeParams []Ref
}

// Annotation attaches an annotation of class type Type to Target.
type Annotation struct {
	Target Ref
	Type   Ref
	Args   []Ref
}

func (*TermName) Tag() Tag      { return TagTermName }
func (*TypeName) Tag() Tag      { return TagTypeName }
func (*IntLiteral) Tag() Tag    { return TagIntLit }
func (*LongLiteral) Tag() Tag   { return TagLongLit }
func (*FloatLiteral) Tag() Tag  { return TagFloatLit }
func (*DoubleLiteral) Tag() Tag { return TagDoubleLit }
func (*StringLiteral) Tag() Tag { return TagStringLit }
func (s *Symbol) Tag() Tag      { return tagForSymbolKind(s.Kind) }
func (*NoType) Tag() Tag        { return TagNoType }
func (*ThisType) Tag() Tag      { return TagThisType }
func (*SingleType) Tag() Tag    { return TagSingleType }
func (*ClassType) Tag() Tag     { return TagClassType }
func (*MethodType) Tag() Tag    { return TagMethodType }
func (*PolyType) Tag() Tag      { return TagPolyType }
func (*Annotation) Tag() Tag    { return TagAnnotation }

// Span is the byte range [Start, End) an entry occupied in its blob,
// including tag and length prefix.
type Span struct {
	Start int
	End   int
}

// Table is a fully linked entry table.
type Table struct {
	entries []Entry
	spans   []Span
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entry returns the entry at r, or nil when r is out of range.
func (t *Table) Entry(r Ref) Entry {
	if r < 0 || int(r) >= len(t.entries) {
		return nil
	}
	return t.entries[r]
}

// Span returns the byte span of the entry at r. Tables built by a Writer
// have no spans.
func (t *Table) Span(r Ref) Span {
	if r < 0 || int(r) >= len(t.spans) {
		return Span{}
	}
	return t.spans[r]
}

// Name returns the text of the name entry at r, or "" when r is not a name.
func (t *Table) Name(r Ref) string {
	switch e := t.Entry(r).(type) {
	case *TermName:
		return e.Value
	case *TypeName:
		return e.Value
	}
	return ""
}

// Symbol returns the symbol entry at r.
func (t *Table) Symbol(r Ref) (*Symbol, bool) {
	s, ok := t.Entry(r).(*Symbol)
	return s, ok
}

// Each calls fn for every entry in index order until fn returns false.
func (t *Table) Each(fn func(Ref, Entry) bool) {
	for i, e := range t.entries {
		if !fn(Ref(i), e) {
			return
		}
	}
}
