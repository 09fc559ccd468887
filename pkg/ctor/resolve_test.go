package ctor

import (
	"errors"
	"testing"
)

type cand struct {
	marked bool
	arity  int
}

func (c cand) Marked() bool { return c.marked }
func (c cand) Arity() int   { return c.arity }

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		cands []cand
		want  int
	}{
		{name: "single unmarked", cands: []cand{{arity: 2}}, want: 0},
		{name: "single nullary", cands: []cand{{arity: 0}}, want: 0},
		{name: "marked beats arity", cands: []cand{{arity: 3}, {marked: true, arity: 1}}, want: 1},
		{name: "marked first", cands: []cand{{marked: true, arity: 1}, {arity: 3}}, want: 0},
		{name: "largest arity", cands: []cand{{arity: 1}, {arity: 4}, {arity: 2}}, want: 1},
		{name: "tie goes to first declared", cands: []cand{{arity: 2}, {arity: 3}, {arity: 3}}, want: 1},
		{name: "all equal", cands: []cand{{arity: 2}, {arity: 2}}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.cands)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Resolve = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveMultipleMarkers(t *testing.T) {
	_, err := Resolve([]cand{{marked: true, arity: 1}, {arity: 5}, {marked: true, arity: 1}})
	if !errors.Is(err, ErrMultipleExplicitMarkers) {
		t.Fatalf("Resolve err = %v, want ErrMultipleExplicitMarkers", err)
	}
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("err %T is not *ResolutionError", err)
	}
	if len(re.Marked) != 2 || re.Marked[0] != 0 || re.Marked[1] != 2 {
		t.Fatalf("Marked = %v, want [0 2]", re.Marked)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	if _, err := Resolve([]cand{}); !errors.Is(err, ErrNoConstructors) {
		t.Fatalf("Resolve err = %v, want ErrNoConstructors", err)
	}
}
