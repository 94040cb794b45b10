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

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a Spre tree back to SpRE surface syntax. Reparsing the
// result must produce a structurally equal AST (spec.md §8, invariant 1);
// Print never needs to consult the original source positions.
func Print(n Spre) string {
	var b strings.Builder
	printSpre(&b, n)
	return b.String()
}

func printSpre(b *strings.Builder, n Spre) {
	switch v := n.(type) {
	case *Class:
		b.WriteByte('[')
		printS4U(b, v.Body)
		b.WriteByte(']')
	case *Concat:
		for _, p := range v.Parts {
			printSpreAtom(b, p)
		}
	case *Alt:
		for i, a := range v.Arms {
			if i > 0 {
				b.WriteByte('|')
			}
			printSpreAtom(b, a)
		}
	case *Star:
		printSpreAtom(b, v.Elem)
		b.WriteByte('*')
	case *Repeat:
		printSpreAtom(b, v.Elem)
		b.WriteByte('{')
		b.WriteString(strconv.Itoa(v.Min))
		if v.Max == nil {
			b.WriteString(",")
		} else if *v.Max != v.Min {
			fmt.Fprintf(b, ",%d", *v.Max)
		}
		b.WriteByte('}')
	}
}

// printSpreAtom parenthesizes compound children of Concat/Alt so that the
// printed form always re-parses to the same precedence structure.
func printSpreAtom(b *strings.Builder, n Spre) {
	switch n.(type) {
	case *Alt, *Concat:
		b.WriteByte('(')
		printSpre(b, n)
		b.WriteByte(')')
	default:
		printSpre(b, n)
	}
}

func printS4U(b *strings.Builder, n S4U) {
	switch v := n.(type) {
	case *ClassUnary:
		b.WriteString("[:")
		b.WriteString(v.Name)
		b.WriteString(":]")
	case *NonEmpty:
		b.WriteString("NE(")
		printS4(b, v.Set)
		b.WriteByte(')')
	case *ExistsBinders:
		b.WriteByte('E')
		printBindings(b, v.Bindings)
		b.WriteByte('(')
		printS4U(b, v.Body)
		b.WriteByte(')')
	case *ForallBinders:
		b.WriteByte('A')
		printBindings(b, v.Bindings)
		b.WriteByte('(')
		printS4U(b, v.Body)
		b.WriteByte(')')
	case *UnaryAnd:
		printS4UAtom(b, v.Left)
		b.WriteByte('&')
		printS4UAtom(b, v.Right)
	case *UnaryOr:
		printS4UAtom(b, v.Left)
		b.WriteByte('|')
		printS4UAtom(b, v.Right)
	case *Cmp:
		printS4M(b, v.Left)
		b.WriteString(v.Op.String())
		printS4M(b, v.Right)
	}
}

func printS4UAtom(b *strings.Builder, n S4U) {
	switch n.(type) {
	case *UnaryAnd, *UnaryOr:
		b.WriteByte('(')
		printS4U(b, n)
		b.WriteByte(')')
	default:
		printS4U(b, n)
	}
}

func printBindings(b *strings.Builder, bindings []Binding) {
	b.WriteByte('(')
	for i, bd := range bindings {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(bd.Var)
		b.WriteString(":=")
		printS4(b, bd.Set)
	}
	b.WriteByte(')')
}

func printS4(b *strings.Builder, n S4) {
	switch v := n.(type) {
	case *SetClass:
		b.WriteString("[:")
		b.WriteString(v.Name)
		b.WriteString(":]")
	case *SetAnd:
		printS4Atom(b, v.Left)
		b.WriteByte('&')
		printS4Atom(b, v.Right)
	case *SetOr:
		printS4Atom(b, v.Left)
		b.WriteByte('|')
		printS4Atom(b, v.Right)
	case *SetNot:
		b.WriteByte('!')
		printS4Atom(b, v.Elem)
	case *Var:
		b.WriteString(v.Name)
	}
}

func printS4Atom(b *strings.Builder, n S4) {
	switch n.(type) {
	case *SetAnd, *SetOr:
		b.WriteByte('(')
		printS4(b, n)
		b.WriteByte(')')
	default:
		printS4(b, n)
	}
}

func printS4M(b *strings.Builder, n S4M) {
	switch v := n.(type) {
	case *Literal:
		b.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	case *Neg:
		b.WriteByte('-')
		printS4MAtom(b, v.Elem)
	case *Sub:
		printS4MAtom(b, v.Left)
		b.WriteByte('-')
		printS4MAtom(b, v.Right)
	case *Mul:
		printS4MAtom(b, v.Left)
		b.WriteByte('*')
		printS4MAtom(b, v.Right)
	case *Div:
		printS4MAtom(b, v.Left)
		b.WriteByte('/')
		printS4MAtom(b, v.Right)
	case *Area:
		b.WriteString("@area(")
		printS4(b, v.Set)
		b.WriteByte(')')
	case *CentroidX:
		b.WriteString("@x(")
		printS4(b, v.Set)
		b.WriteByte(')')
	case *CentroidY:
		b.WriteString("@y(")
		printS4(b, v.Set)
		b.WriteByte(')')
	case *Dist1:
		b.WriteString("@dist(")
		printS4(b, v.Set)
		b.WriteByte(')')
	case *Dist2:
		b.WriteString("@dist(")
		printS4(b, v.Left)
		b.WriteByte(',')
		printS4(b, v.Right)
		b.WriteByte(')')
	}
}

func printS4MAtom(b *strings.Builder, n S4M) {
	switch n.(type) {
	case *Sub, *Mul, *Div, *Neg:
		b.WriteByte('(')
		printS4M(b, n)
		b.WriteByte(')')
	default:
		printS4M(b, n)
	}
}
