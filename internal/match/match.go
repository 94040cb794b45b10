// Package match implements the two NFA drivers of spec.md §4.4: Offline,
// a leftmost-longest enumeration over a fully materialized frame-mask
// sequence, and an incremental Online matcher that emits as soon as an
// accepting state is reached.
package match

import (
	"sort"

	"github.com/cps-atlas/strem/internal/automaton"
)

// Frame pairs a frame's own index (spec.md §3, not renumbered) with the
// truth bitmask computed for it by the spatial evaluator.
type Frame struct {
	Index int
	Mask  uint64
}

// Interval is a matched span of frame indices, channel-agnostic; the
// caller (internal/engine) attaches the channel name.
type Interval struct {
	Start, End int
}

// Offline enumerates all maximal, non-overlapping matching intervals,
// leftmost-longest, per spec.md §4.4.1.
func Offline(nfa *automaton.NFA, frames []Frame) []Interval {
	var out []Interval
	p := 0
	for p < len(frames) {
		if end, ok := longestMatchFrom(nfa, frames, p); ok {
			out = append(out, Interval{Start: frames[p].Index, End: frames[end].Index})
			p = end + 1
		} else {
			p++
		}
	}
	return out
}

// longestMatchFrom simulates the NFA starting at position p, consuming
// frames[p], frames[p+1], ... and returns the largest position q >= p at
// which an accepting state is reached, if any.
func longestMatchFrom(nfa *automaton.NFA, frames []Frame, p int) (int, bool) {
	cur := nfa.EpsilonClosure([]int{nfa.Start})
	bestQ, found := -1, false
	for q := p; q < len(frames); q++ {
		next := nfa.Step(cur, frames[q].Mask)
		if len(next) == 0 {
			cur = nil
		} else {
			cur = nfa.EpsilonClosure(next)
		}
		if len(cur) == 0 {
			break
		}
		if contains(cur, nfa.Accept) {
			bestQ, found = q, true
		}
	}
	return bestQ, found
}

func contains(states []int, target int) bool {
	for _, s := range states {
		if s == target {
			return true
		}
	}
	return false
}

// Online is the frame-incremental active-set simulator of spec.md §4.4.2.
// It is driven one frame at a time via Step; callers retain it across the
// lifetime of a channel's stream.
type Online struct {
	nfa    *automaton.NFA
	active []pair
}

type pair struct {
	state int
	start int // frame index, not position
}

// NewOnline creates a driver bound to nfa, with an empty active set.
func NewOnline(nfa *automaton.NFA) *Online {
	return &Online{nfa: nfa}
}

// Step feeds one frame to the matcher and returns every interval it
// emits as a result (zero, one, or more). Emission is at-most-once per
// (start, end) pair and depends only on frames seen so far (spec.md §8,
// invariant 6, "online causality").
func (o *Online) Step(f Frame) []Interval {
	// 1. A new match may begin at this frame.
	o.active = append(o.active, pair{state: o.nfa.Start, start: f.Index})
	o.active = closePairs(o.nfa, o.active)

	// 2. Advance every active pair by one symbol.
	var advanced []pair
	for _, p := range o.active {
		for _, tr := range o.nfa.States[p.state].Transitions {
			if tr.Atom >= 0 && f.Mask&(1<<uint(tr.Atom)) != 0 {
				advanced = append(advanced, pair{state: tr.Target, start: p.start})
			}
		}
	}
	o.active = closePairs(o.nfa, advanced)

	// 3. Emit every currently-accepting start, earliest first, dropping
	// each one's pairs as it is reported so a single frame can close out
	// more than one pending match (spec.md §4.4.2).
	var out []Interval
	for {
		start, ok := earliestAcceptingStart(o.nfa, o.active)
		if !ok {
			break
		}
		out = append(out, Interval{Start: start, End: f.Index})
		o.active = dropStart(o.active, start)
	}
	return out
}

func closePairs(nfa *automaton.NFA, in []pair) []pair {
	byStart := map[int][]int{}
	order := []int{}
	for _, p := range in {
		if _, ok := byStart[p.start]; !ok {
			order = append(order, p.start)
		}
		byStart[p.start] = append(byStart[p.start], p.state)
	}
	var out []pair
	for _, start := range order {
		closure := nfa.EpsilonClosure(byStart[start])
		seen := map[int]bool{}
		for _, s := range closure {
			if !seen[s] {
				seen[s] = true
				out = append(out, pair{state: s, start: start})
			}
		}
	}
	return out
}

func earliestAcceptingStart(nfa *automaton.NFA, active []pair) (int, bool) {
	best := -1
	found := false
	for _, p := range active {
		if p.state == nfa.Accept {
			if !found || p.start < best {
				best, found = p.start, true
			}
		}
	}
	return best, found
}

func dropStart(active []pair, start int) []pair {
	out := active[:0:0]
	for _, p := range active {
		if p.start != start {
			out = append(out, p)
		}
	}
	return out
}

// SortIntervals orders intervals by start, for deterministic output when
// a caller accumulates them out of order (Offline already returns them in
// order; Online output collected across Step calls is ordered by end, and
// a later Step can emit an earlier start).
func SortIntervals(in []Interval) {
	sort.Slice(in, func(i, j int) bool { return in[i].Start < in[j].Start })
}
