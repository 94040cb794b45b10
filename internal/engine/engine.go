// Package engine wires the SpRE compiler pipeline (parser, atom
// extraction, static validation, automaton construction) into a
// reusable Program, and drives it against a detect.Stream with either
// matcher (spec.md §2, "Data flow").
package engine

import (
	"github.com/cps-atlas/strem/internal/atom"
	"github.com/cps-atlas/strem/internal/automaton"
	"github.com/cps-atlas/strem/internal/detect"
	"github.com/cps-atlas/strem/internal/eval"
	"github.com/cps-atlas/strem/internal/match"
	"github.com/cps-atlas/strem/spre/ast"
	serrors "github.com/cps-atlas/strem/spre/errors"
	"github.com/cps-atlas/strem/spre/parser"
	"github.com/cps-atlas/strem/spre/token"
)

// Options configures a single run, per spec.md §6.3.
type Options struct {
	// Channel is the name of the sample channel the matcher is bound to.
	// A single run processes exactly one channel (spec.md §3).
	Channel string
	// Online selects the incremental active-set matcher in place of the
	// default offline leftmost-longest enumeration.
	Online bool
}

// Program is a compiled pattern, ready to run against any number of
// streams; the channel is chosen per run through Options.
type Program struct {
	spre  ast.Spre
	atoms *atom.Table
	nfa   *automaton.NFA
}

// Compile parses pattern, extracts and validates its atoms, and builds
// the temporal automaton. It is the only place spec.md §2's four
// leaf-to-automaton stages are chained together.
func Compile(pattern string) (*Program, error) {
	spre, err := parser.Parse(pattern)
	if err != nil {
		return nil, err
	}
	table, err := atom.Extract(spre)
	if err != nil {
		return nil, err
	}
	for _, formula := range table.Formulas {
		if err := eval.Validate(formula); err != nil {
			return nil, err
		}
	}
	nfa := automaton.Build(spre)
	return &Program{spre: spre, atoms: table, nfa: nfa}, nil
}

// Match is one reported interval, channel-qualified (spec.md §2, "Data
// flow").
type Match struct {
	Channel    string
	Start, End int
}

// Run compiles the per-frame atom bitmasks for opts.Channel and drives
// either the offline or online matcher over them, per opts.Online.
//
// ChannelNotFound is fatal only when the channel is absent from every
// frame of the stream (spec.md §7); frames simply missing the channel
// are dropped from the per-channel subsequence by detect.Stream.Channel,
// which is exactly the "skip frame" behavior the spec calls for.
func (p *Program) Run(stream detect.Stream, opts Options) ([]Match, error) {
	if !stream.HasChannel(opts.Channel) {
		return nil, serrors.Newf(serrors.ChannelNotFound, token.NoPos,
			"channel %q not present in any frame", opts.Channel)
	}

	frames := p.maskFrames(stream.Channel(opts.Channel))

	var intervals []match.Interval
	if opts.Online {
		o := match.NewOnline(p.nfa)
		for _, f := range frames {
			intervals = append(intervals, o.Step(f)...)
		}
	} else {
		intervals = match.Offline(p.nfa, frames)
	}

	out := make([]Match, len(intervals))
	for i, iv := range intervals {
		out[i] = Match{Channel: opts.Channel, Start: iv.Start, End: iv.End}
	}
	return out, nil
}

// maskFrames reduces each channel frame to the bitmask of atoms that
// hold on it, evaluating every formula in the atom table independently
// (spec.md §2: "per frame, spatial evaluator computes a bitmask").
func (p *Program) maskFrames(frames []detect.ChannelFrame) []match.Frame {
	out := make([]match.Frame, len(frames))
	for i, f := range frames {
		var mask uint64
		for id, formula := range p.atoms.Formulas {
			if eval.Eval(formula, f.Annotations) {
				mask |= 1 << uint(id)
			}
		}
		out[i] = match.Frame{Index: f.Index, Mask: mask}
	}
	return out
}

