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

// Package ast defines the SpRE abstract syntax tree: the temporal
// sublanguage (Spre), the spatial-unary sublanguage (S4U), the spatial set
// sublanguage (S4), and the numeric-term sublanguage (S4M), per spec.md §3.
//
// Each sublanguage is a closed variant: the marker methods below (spreNode,
// s4uNode, s4Node, s4mNode) are unexported, so the set of implementations
// is fixed to this package, and callers are expected to use exhaustive
// type switches rather than open interfaces (spec.md §9, "Dynamic dispatch
// in AST").
package ast

import "github.com/cps-atlas/strem/spre/token"

// Spre is a node of the temporal sublanguage (`<spre>`).
type Spre interface {
	Node
	spreNode()
}

// Class is a temporal leaf: a bracketed `<s4u>` expression. Before atom
// extraction, AtomID is -1; the extractor rewrites every Class leaf in
// place to carry its assigned id (spec.md §4.2).
type Class struct {
	Pos    token.Pos
	Body   S4U
	AtomID int
}

// Concat is temporal concatenation by juxtaposition.
type Concat struct {
	Pos   token.Pos
	Parts []Spre
}

// Alt is temporal alternation, `a|b`.
type Alt struct {
	Pos   token.Pos
	Arms  []Spre
}

// Star is Kleene star, `a*`.
type Star struct {
	Pos  token.Pos
	Elem Spre
}

// Repeat is bounded repetition, `a{m}`, `a{m,}`, or `a{m,n}`. Max == nil
// means unbounded ("{m,}").
type Repeat struct {
	Pos  token.Pos
	Elem Spre
	Min  int
	Max  *int
}

func (*Class) spreNode()  {}
func (*Concat) spreNode() {}
func (*Alt) spreNode()    {}
func (*Star) spreNode()   {}
func (*Repeat) spreNode() {}

func (n *Class) Position() token.Pos  { return n.Pos }
func (n *Concat) Position() token.Pos { return n.Pos }
func (n *Alt) Position() token.Pos    { return n.Pos }
func (n *Star) Position() token.Pos   { return n.Pos }
func (n *Repeat) Position() token.Pos { return n.Pos }

// S4U is a node of the spatial-unary sublanguage (`<s4u>`).
type S4U interface {
	Node
	s4uNode()
}

// CompOp is a numeric comparator (spec.md §3).
type CompOp int

const (
	OpLT CompOp = iota
	OpLE
	OpGT
	OpGE
)

func (op CompOp) String() string {
	switch op {
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	default:
		return "?"
	}
}

// ClassUnary is shorthand for "some annotation of this class exists".
type ClassUnary struct {
	Pos  token.Pos
	Name string
}

// NonEmpty asserts that a set formula denotes a nonempty set.
type NonEmpty struct {
	Pos token.Pos
	Set S4
}

// Binding maps a binder variable name to the set formula it ranges over.
type Binding struct {
	Var string
	Set S4
}

// ExistsBinders is `E(v1:=s1, ...)(body)`.
type ExistsBinders struct {
	Pos      token.Pos
	Bindings []Binding
	Body     S4U
}

// ForallBinders is `A(v1:=s1, ...)(body)`.
type ForallBinders struct {
	Pos      token.Pos
	Bindings []Binding
	Body     S4U
}

// UnaryAnd is short-circuiting conjunction of `<s4u>` formulas.
type UnaryAnd struct {
	Pos   token.Pos
	Left  S4U
	Right S4U
}

// UnaryOr is short-circuiting disjunction of `<s4u>` formulas.
type UnaryOr struct {
	Pos   token.Pos
	Left  S4U
	Right S4U
}

// Cmp is a numeric comparison between two terms.
type Cmp struct {
	Pos   token.Pos
	Op    CompOp
	Left  S4M
	Right S4M
}

func (*ClassUnary) s4uNode()     {}
func (*NonEmpty) s4uNode()       {}
func (*ExistsBinders) s4uNode()  {}
func (*ForallBinders) s4uNode() {}
func (*UnaryAnd) s4uNode()      {}
func (*UnaryOr) s4uNode()       {}
func (*Cmp) s4uNode()           {}

func (n *ClassUnary) Position() token.Pos    { return n.Pos }
func (n *NonEmpty) Position() token.Pos      { return n.Pos }
func (n *ExistsBinders) Position() token.Pos { return n.Pos }
func (n *ForallBinders) Position() token.Pos { return n.Pos }
func (n *UnaryAnd) Position() token.Pos      { return n.Pos }
func (n *UnaryOr) Position() token.Pos       { return n.Pos }
func (n *Cmp) Position() token.Pos           { return n.Pos }

// S4 is a node of the spatial set sublanguage (`<s4>`), denoting a subset
// of a frame's annotations.
type S4 interface {
	Node
	s4Node()
}

// SetClass selects annotations by class name.
type SetClass struct {
	Pos  token.Pos
	Name string
}

// SetAnd is set intersection.
type SetAnd struct {
	Pos   token.Pos
	Left  S4
	Right S4
}

// SetOr is set union.
type SetOr struct {
	Pos   token.Pos
	Left  S4
	Right S4
}

// SetNot is set complement, relative to the frame's full annotation set.
type SetNot struct {
	Pos  token.Pos
	Elem S4
}

// Var refers to a binder variable. Only valid in a set position nested
// within that binder's body (spec.md §4.3.1); using it elsewhere is a
// static UnboundVariable error.
type Var struct {
	Pos  token.Pos
	Name string
}

func (*SetClass) s4Node() {}
func (*SetAnd) s4Node()   {}
func (*SetOr) s4Node()    {}
func (*SetNot) s4Node()   {}
func (*Var) s4Node()      {}

func (n *SetClass) Position() token.Pos { return n.Pos }
func (n *SetAnd) Position() token.Pos   { return n.Pos }
func (n *SetOr) Position() token.Pos    { return n.Pos }
func (n *SetNot) Position() token.Pos   { return n.Pos }
func (n *Var) Position() token.Pos      { return n.Pos }

// S4M is a node of the numeric-term sublanguage (`<s4m>`).
type S4M interface {
	Node
	s4mNode()
}

// Literal is a numeric constant.
type Literal struct {
	Pos   token.Pos
	Value float64
}

// Neg is unary numeric negation.
type Neg struct {
	Pos  token.Pos
	Elem S4M
}

// Sub is numeric subtraction.
type Sub struct {
	Pos         token.Pos
	Left, Right S4M
}

// Mul is numeric multiplication.
type Mul struct {
	Pos         token.Pos
	Left, Right S4M
}

// Div is numeric division.
type Div struct {
	Pos         token.Pos
	Left, Right S4M
}

// Area is `@area(s)`.
type Area struct {
	Pos token.Pos
	Set S4
}

// CentroidX is `@x(s)`.
type CentroidX struct {
	Pos token.Pos
	Set S4
}

// CentroidY is `@y(s)`.
type CentroidY struct {
	Pos token.Pos
	Set S4
}

// Dist1 is `@dist(s)`, the distance between the two members of a
// two-element set.
type Dist1 struct {
	Pos token.Pos
	Set S4
}

// Dist2 is `@dist(s1, s2)`.
type Dist2 struct {
	Pos         token.Pos
	Left, Right S4
}

func (*Literal) s4mNode()   {}
func (*Neg) s4mNode()       {}
func (*Sub) s4mNode()       {}
func (*Mul) s4mNode()       {}
func (*Div) s4mNode()       {}
func (*Area) s4mNode()      {}
func (*CentroidX) s4mNode() {}
func (*CentroidY) s4mNode() {}
func (*Dist1) s4mNode()     {}
func (*Dist2) s4mNode()     {}

func (n *Literal) Position() token.Pos   { return n.Pos }
func (n *Neg) Position() token.Pos       { return n.Pos }
func (n *Sub) Position() token.Pos       { return n.Pos }
func (n *Mul) Position() token.Pos       { return n.Pos }
func (n *Div) Position() token.Pos       { return n.Pos }
func (n *Area) Position() token.Pos      { return n.Pos }
func (n *CentroidX) Position() token.Pos { return n.Pos }
func (n *CentroidY) Position() token.Pos { return n.Pos }
func (n *Dist1) Position() token.Pos     { return n.Pos }
func (n *Dist2) Position() token.Pos     { return n.Pos }

// Node is the common interface implemented by every AST node across all
// four sublanguages.
type Node interface {
	Position() token.Pos
}
