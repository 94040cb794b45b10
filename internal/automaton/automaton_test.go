package automaton

import (
	"testing"

	"github.com/cps-atlas/strem/internal/atom"
	"github.com/cps-atlas/strem/spre/parser"
)

// compile parses, extracts atoms, and builds an NFA. Atom ids follow
// first appearance in the source, so tests build masks from that order.
func compile(t *testing.T, src string) *NFA {
	t.Helper()
	n, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if _, err := atom.Extract(n); err != nil {
		t.Fatalf("extract %q: %v", src, err)
	}
	return Build(n)
}

// accepts simulates the NFA (offline-style, full acceptance at end) over
// a sequence of frame masks.
func accepts(nfa *NFA, masks []uint64) bool {
	cur := nfa.EpsilonClosure([]int{nfa.Start})
	for _, m := range masks {
		next := nfa.Step(cur, m)
		cur = nfa.EpsilonClosure(next)
		if len(cur) == 0 {
			return false
		}
	}
	for _, s := range cur {
		if s == nfa.Accept {
			return true
		}
	}
	return false
}

func TestBuildConcat(t *testing.T) {
	nfa := compile(t, `[:car:][:pedestrian:]`)
	// atom 0 = car, atom 1 = pedestrian (assigned in source order).
	if !accepts(nfa, []uint64{1 << 0, 1 << 1}) {
		t.Fatalf("expected car,pedestrian to match concat")
	}
	if accepts(nfa, []uint64{1 << 1, 1 << 0}) {
		t.Fatalf("expected pedestrian,car to NOT match concat")
	}
}

func TestBuildAlt(t *testing.T) {
	nfa := compile(t, `[:car:]|[:pedestrian:]`)
	if !accepts(nfa, []uint64{1 << 0}) {
		t.Fatalf("expected car alone to match alt")
	}
	if !accepts(nfa, []uint64{1 << 1}) {
		t.Fatalf("expected pedestrian alone to match alt")
	}
}

func TestBuildStarAcceptsEmpty(t *testing.T) {
	nfa := compile(t, `[:car:]*`)
	if !accepts(nfa, nil) {
		t.Fatalf("expected star to accept the empty sequence")
	}
	if !accepts(nfa, []uint64{1, 1, 1}) {
		t.Fatalf("expected star to accept three repetitions")
	}
}

func TestBuildRepeatBounds(t *testing.T) {
	nfa := compile(t, `[:car:]{2,3}`)
	if accepts(nfa, []uint64{1}) {
		t.Fatalf("{2,3} should reject a single repetition")
	}
	if !accepts(nfa, []uint64{1, 1}) {
		t.Fatalf("{2,3} should accept two repetitions")
	}
	if !accepts(nfa, []uint64{1, 1, 1}) {
		t.Fatalf("{2,3} should accept three repetitions")
	}
	if accepts(nfa, []uint64{1, 1, 1, 1}) {
		t.Fatalf("{2,3} should reject four repetitions")
	}
}

func TestBuildRepeatUnbounded(t *testing.T) {
	nfa := compile(t, `[:car:]{2,}`)
	if accepts(nfa, []uint64{1}) {
		t.Fatalf("{2,} should reject a single repetition")
	}
	for n := 2; n <= 5; n++ {
		masks := make([]uint64, n)
		for i := range masks {
			masks[i] = 1
		}
		if !accepts(nfa, masks) {
			t.Fatalf("{2,} should accept %d repetitions", n)
		}
	}
}
