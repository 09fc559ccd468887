// Package ctor selects the canonical constructor of a type.
//
// The policy, first match wins:
//
//  1. exactly one explicitly marked candidate is selected;
//  2. more than one marked candidate is a configuration defect and fails;
//  3. with no marker, a lone candidate is selected;
//  4. with no marker and several candidates, the largest arity wins and ties
//     go to the candidate declared first.
//
// Rule 4 is a heuristic; it only applies when the type author has not
// marked a constructor.
package ctor

import (
	"errors"
	"fmt"
)

var (
	// ErrMultipleExplicitMarkers reports more than one marked constructor.
	ErrMultipleExplicitMarkers = errors.New("multiple constructors marked as primary")
	// ErrNoConstructors reports a type with no usable constructor.
	ErrNoConstructors = errors.New("no usable constructors")
)

// ResolutionError reports why no canonical constructor could be chosen.
type ResolutionError struct {
	Marked []int // indices of marked candidates, for ErrMultipleExplicitMarkers
	Err    error
}

func (e *ResolutionError) Error() string {
	if len(e.Marked) > 0 {
		return fmt.Sprintf("resolve constructor: %v (candidates %v)", e.Err, e.Marked)
	}
	return fmt.Sprintf("resolve constructor: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Candidate is what the policy needs to know about a constructor.
type Candidate interface {
	Marked() bool
	Arity() int
}

// Resolve returns the index of the canonical candidate.
func Resolve[C Candidate](cands []C) (int, error) {
	if len(cands) == 0 {
		return -1, &ResolutionError{Err: ErrNoConstructors}
	}

	var marked []int
	for i, c := range cands {
		if c.Marked() {
			marked = append(marked, i)
		}
	}
	switch {
	case len(marked) == 1:
		return marked[0], nil
	case len(marked) > 1:
		return -1, &ResolutionError{Marked: marked, Err: ErrMultipleExplicitMarkers}
	}

	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Arity() > cands[best].Arity() {
			best = i
		}
	}
	return best, nil
}
