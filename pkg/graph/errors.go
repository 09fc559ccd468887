package graph

import (
	"errors"
	"fmt"

	"github.com/odvcencio/sigil/pkg/sig"
)

var (
	// ErrSymbolNotFound reports that no class symbol matches the requested type.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrArityMismatch reports a class type whose argument count differs from
	// the declared type parameter count of its symbol.
	ErrArityMismatch = errors.New("type argument arity mismatch")
	// ErrOwnerCycle reports an owner chain that never reaches a root.
	ErrOwnerCycle = errors.New("owner chain cycle")
)

// GraphError reports an inconsistency in the symbol graph.
type GraphError struct {
	Type sig.TypeID // requested type, empty while linking
	Ref  sig.Ref    // offending entry, NoRef when not tied to one
	Err  error
}

func (e *GraphError) Error() string {
	switch {
	case e.Type != "" && e.Ref.Valid():
		return fmt.Sprintf("symbol graph: %s: entry %d: %v", e.Type, e.Ref, e.Err)
	case e.Type != "":
		return fmt.Sprintf("symbol graph: %s: %v", e.Type, e.Err)
	case e.Ref.Valid():
		return fmt.Sprintf("symbol graph: entry %d: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("symbol graph: %v", e.Err)
}

func (e *GraphError) Unwrap() error { return e.Err }
