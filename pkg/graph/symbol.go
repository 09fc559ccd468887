package graph

import (
	"strings"

	"github.com/odvcencio/sigil/pkg/sig"
)

// Symbol is a linked symbol entry. Symbols are shared, never copied, by the
// types and descriptors built from a graph.
type Symbol struct {
	Ref   sig.Ref
	Kind  sig.SymbolKind
	Name  string
	Owner *Symbol // nil for a root
	Flags sig.Flags

	typeRef  sig.Ref
	fullName string
}

// FullName returns the dotted path from the outermost named owner.
func (s *Symbol) FullName() string {
	if s == nil {
		return ""
	}
	return s.fullName
}

// IsRoot reports whether the symbol owns itself in the table.
func (s *Symbol) IsRoot() bool {
	return s.Owner == nil
}

// IsConstructor reports whether s is a constructor method.
func (s *Symbol) IsConstructor() bool {
	return s.Kind == sig.KindMethod && (s.Flags.Has(sig.FlagConstructor) || s.Name == "<init>")
}

// IsAccessor reports whether s is a case or parameter accessor method.
func (s *Symbol) IsAccessor() bool {
	return s.Kind == sig.KindMethod && (s.Flags.Has(sig.FlagCaseAccessor) || s.Flags.Has(sig.FlagParamAccessor))
}

// HasType reports whether the symbol entry carries a type reference.
func (s *Symbol) HasType() bool {
	return s.typeRef.Valid()
}

func (s *Symbol) String() string {
	if s.fullName != "" {
		return s.fullName
	}
	return s.Name
}

func anonymousRoot(name string) bool {
	switch name {
	case "", sig.RootName, "_root_":
		return true
	}
	return false
}

// computeFullName walks the owner chain up to a root. limit bounds the walk
// so that an owner cycle that skips every root is reported instead of looping.
func computeFullName(s *Symbol, limit int) (string, bool) {
	var segments []string
	steps := 0
	for cur := s; cur != nil; cur = cur.Owner {
		if steps > limit {
			return "", false
		}
		steps++
		if cur.IsRoot() && anonymousRoot(cur.Name) {
			break
		}
		segments = append(segments, cur.Name)
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "."), true
}
