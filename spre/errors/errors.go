// Copyright 2026 The STREM Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines STREM's error kinds (spec.md §7) and a positioned
// Error type shared across the parser, the schema decoder, and the engine.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cps-atlas/strem/spre/token"
)

// Kind is one of the seven error kinds of spec.md §7. Each kind maps to a
// distinct nonzero process exit code at the CLI boundary (cmd/strem).
type Kind int

const (
	// Other is used only internally; Error always carries one of the
	// named kinds below once constructed through the New* helpers.
	Other Kind = iota
	SyntaxError
	SchemaError
	ChannelNotFound
	UnboundVariable
	AtomLimitExceeded
	RepeatTooLarge
	IOError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case SchemaError:
		return "SchemaError"
	case ChannelNotFound:
		return "ChannelNotFound"
	case UnboundVariable:
		return "UnboundVariable"
	case AtomLimitExceeded:
		return "AtomLimitExceeded"
	case RepeatTooLarge:
		return "RepeatTooLarge"
	case IOError:
		return "IOError"
	default:
		return "Error"
	}
}

// Error is STREM's common error type: a kind, a source position (when one
// applies), a human message, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Pos  token.Pos
	Msg  string
	Wrap error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, " at %s", e.Pos)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Wrap != nil {
		fmt.Fprintf(&b, ": %s", e.Wrap)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Wrap }

// Newf builds a positioned Error of the given kind.
func Newf(kind Kind, pos token.Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Wrapf builds a positioned Error of the given kind that wraps a cause.
func Wrapf(kind Kind, pos token.Pos, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...), Wrap: cause}
}

// List aggregates independently-discovered errors, e.g. several malformed
// frames found while decoding one input file (SPEC_FULL.md §4.5). The zero
// value is an empty list ready to use.
type List []*Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
	}
}

// Add appends err to the list; a nil err is ignored. Add takes a single
// *Error, so callers holding a List append its elements themselves.
func (l *List) Add(err *Error) {
	if err == nil {
		return
	}
	*l = append(*l, err)
}

// Sort orders the list by position, for stable, deterministic reporting.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		pi, pj := l[i].Pos, l[j].Pos
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
}

// Err returns an error equivalent to this list, or nil if the list is
// empty. Mirrors the teacher's errors.List.Err pattern so callers can
// write `return errs.Err()` unconditionally.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// KindOf extracts the Kind of err if it is a *Error or a List whose first
// element is, and Other otherwise. Used by the CLI to choose an exit code.
func KindOf(err error) Kind {
	switch e := err.(type) {
	case *Error:
		return e.Kind
	case List:
		if len(e) > 0 {
			return e[0].Kind
		}
	}
	return Other
}
