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

// Package parser implements a recursive-descent parser for the SpRE
// surface syntax (spec.md §4.1, §6.2), producing a spre/ast.Spre tree.
package parser

import (
	"strconv"

	"github.com/cps-atlas/strem/spre/ast"
	serrors "github.com/cps-atlas/strem/spre/errors"
	"github.com/cps-atlas/strem/spre/scanner"
	"github.com/cps-atlas/strem/spre/token"
)

// maxRepeat is the repetition-explosion bound of spec.md §4.4: a `{m,n}`
// with n greater than this is a RepeatTooLarge error.
const maxRepeat = 1024

// parser holds the state of one parse. It never recovers from a syntax
// error: the first one found is returned immediately, matching the
// teacher's single-pass recursive descent style.
type parser struct {
	sc   scanner.Scanner
	pos  token.Pos
	typ  token.Type
	lit  string
	errs []string // illegal-character messages collected by the scanner
}

// Parse parses src as a `<spre>` pattern (spec.md §6.2) and returns its
// AST, or a *serrors.Error of kind SyntaxError (RepeatTooLarge for a
// repetition bound above the limit).
func Parse(src string) (ast.Spre, error) {
	p := &parser{}
	p.sc.Init([]byte(src), func(pos token.Pos, msg string) {
		p.errs = append(p.errs, msg)
	})
	p.next()

	n, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if p.typ != token.EOF {
		return nil, p.errorf("unexpected %s, expected end of pattern", describe(p.typ, p.lit))
	}
	if len(p.errs) > 0 {
		return nil, serrors.Newf(serrors.SyntaxError, p.pos, "%s", p.errs[0])
	}
	return n, nil
}

func (p *parser) next() {
	p.pos, p.typ, p.lit = p.sc.Scan()
}

func describe(typ token.Type, lit string) string {
	if lit != "" {
		return typ.String() + " " + strconv.Quote(lit)
	}
	return typ.String()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return serrors.Newf(serrors.SyntaxError, p.pos, format, args...)
}

func (p *parser) expect(typ token.Type) (token.Pos, string, error) {
	if p.typ != typ {
		return token.Pos{}, "", p.errorf("expected %s, got %s", typ, describe(p.typ, p.lit))
	}
	pos, lit := p.pos, p.lit
	p.next()
	return pos, lit, nil
}

// --- <spre>: temporal sublanguage ---

func (p *parser) parseAlt() (ast.Spre, error) {
	pos := p.pos
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	arms := []ast.Spre{first}
	for p.typ == token.PIPE {
		p.next()
		n, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		arms = append(arms, n)
	}
	if len(arms) == 1 {
		return arms[0], nil
	}
	return &ast.Alt{Pos: pos, Arms: arms}, nil
}

func startsSprePrimary(typ token.Type) bool {
	return typ == token.LPAREN || typ == token.LBRACK || typ == token.CLASS
}

func (p *parser) parseConcat() (ast.Spre, error) {
	pos := p.pos
	var parts []ast.Spre
	for startsSprePrimary(p.typ) {
		n, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		parts = append(parts, n)
	}
	if len(parts) == 0 {
		return nil, p.errorf("expected a pattern, got %s", describe(p.typ, p.lit))
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return &ast.Concat{Pos: pos, Parts: parts}, nil
}

func (p *parser) parsePostfix() (ast.Spre, error) {
	n, err := p.parseSprePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.typ {
		case token.STAR:
			pos := p.pos
			p.next()
			n = &ast.Star{Pos: pos, Elem: n}
		case token.LBRACE:
			pos := p.pos
			n2, err := p.parseRepeat(pos, n)
			if err != nil {
				return nil, err
			}
			n = n2
		default:
			return n, nil
		}
	}
}

func (p *parser) parseRepeat(pos token.Pos, elem ast.Spre) (ast.Spre, error) {
	p.next() // consume '{'
	minPos, minLit, err := p.expect(token.NUMBER)
	if err != nil {
		return nil, err
	}
	min, err := strconv.Atoi(minLit)
	if err != nil {
		return nil, serrors.Newf(serrors.SyntaxError, minPos, "invalid repeat count %q", minLit)
	}

	var max *int
	if p.typ == token.COMMA {
		p.next()
		if p.typ == token.NUMBER {
			maxPos, maxLit, _ := p.expect(token.NUMBER)
			v, err := strconv.Atoi(maxLit)
			if err != nil {
				return nil, serrors.Newf(serrors.SyntaxError, maxPos, "invalid repeat count %q", maxLit)
			}
			max = &v
		}
		// else: "{m,}", unbounded above.
	} else {
		max = &min // "{m}" is "{m,m}"
	}
	if _, _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	if max != nil && min > *max {
		return nil, serrors.Newf(serrors.SyntaxError, pos, "repeat bounds {%d,%d} have min > max", min, *max)
	}
	bound := min
	if max != nil && *max > bound {
		bound = *max
	}
	if bound > maxRepeat {
		return nil, serrors.Newf(serrors.RepeatTooLarge, pos, "repeat bound %d exceeds limit of %d", bound, maxRepeat)
	}
	return &ast.Repeat{Pos: pos, Elem: elem, Min: min, Max: max}, nil
}

func (p *parser) parseSprePrimary() (ast.Spre, error) {
	switch p.typ {
	case token.LPAREN:
		p.next()
		n, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return n, nil
	case token.LBRACK:
		pos := p.pos
		p.next()
		body, err := p.parseS4UOr()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.expect(token.RBRACK); err != nil {
			return nil, err
		}
		return &ast.Class{Pos: pos, Body: body, AtomID: -1}, nil
	case token.CLASS:
		// A bare `[:name:]` is a temporal atom whose body is the
		// ClassUnary shorthand.
		pos, name, _ := p.expect(token.CLASS)
		return &ast.Class{Pos: pos, Body: &ast.ClassUnary{Pos: pos, Name: name}, AtomID: -1}, nil
	default:
		return nil, p.errorf("expected '(', '[' or a class, got %s", describe(p.typ, p.lit))
	}
}

// --- <s4u>: spatial-unary sublanguage ---

func (p *parser) parseS4UOr() (ast.S4U, error) {
	pos := p.pos
	left, err := p.parseS4UAnd()
	if err != nil {
		return nil, err
	}
	for p.typ == token.PIPE {
		p.next()
		right, err := p.parseS4UAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.UnaryOr{Pos: pos, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseS4UAnd() (ast.S4U, error) {
	pos := p.pos
	left, err := p.parseS4UUnary()
	if err != nil {
		return nil, err
	}
	for p.typ == token.AMP {
		p.next()
		right, err := p.parseS4UUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.UnaryAnd{Pos: pos, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseS4UUnary() (ast.S4U, error) {
	switch p.typ {
	case token.NE:
		return p.parseNonEmpty()
	case token.E:
		return p.parseBinder(false)
	case token.A:
		return p.parseBinder(true)
	case token.LPAREN:
		p.next()
		n, err := p.parseS4UOr()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return n, nil
	case token.CLASS:
		// Could be the start of a bare ClassUnary shorthand or the left
		// operand of a Cmp whose term starts with an implicit set
		// reference -- but <s4m> terms never start with CLASS directly
		// (sets only appear as function arguments), so CLASS here is
		// always the ClassUnary shorthand.
		pos, name, _ := p.expect(token.CLASS)
		return &ast.ClassUnary{Pos: pos, Name: name}, nil
	case token.AT, token.NUMBER, token.MINUS:
		return p.parseCmp()
	default:
		return nil, p.errorf("expected a spatial formula, got %s", describe(p.typ, p.lit))
	}
}

func (p *parser) parseNonEmpty() (ast.S4U, error) {
	pos, _, _ := p.expect(token.NE)
	if _, _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	set, err := p.parseS4Or()
	if err != nil {
		return nil, err
	}
	if _, _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.NonEmpty{Pos: pos, Set: set}, nil
}

func (p *parser) parseBinder(universal bool) (ast.S4U, error) {
	pos := p.pos
	p.next() // consume 'E' or 'A'
	if _, _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var bindings []ast.Binding
	for {
		varPos, name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, _, err := p.expect(token.COLONEQ); err != nil {
			return nil, err
		}
		set, err := p.parseS4Or()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Var: name, Set: set})
		_ = varPos
		if p.typ != token.COMMA {
			break
		}
		p.next()
	}
	if _, _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseS4UOr()
	if err != nil {
		return nil, err
	}
	if _, _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if universal {
		return &ast.ForallBinders{Pos: pos, Bindings: bindings, Body: body}, nil
	}
	return &ast.ExistsBinders{Pos: pos, Bindings: bindings, Body: body}, nil
}

func (p *parser) parseCmp() (ast.S4U, error) {
	pos := p.pos
	left, err := p.parseS4MAdditive()
	if err != nil {
		return nil, err
	}
	var op ast.CompOp
	switch p.typ {
	case token.LT:
		op = ast.OpLT
	case token.LE:
		op = ast.OpLE
	case token.GT:
		op = ast.OpGT
	case token.GE:
		op = ast.OpGE
	default:
		return nil, p.errorf("expected a comparator (<, <=, >, >=), got %s", describe(p.typ, p.lit))
	}
	p.next()
	right, err := p.parseS4MAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.Cmp{Pos: pos, Op: op, Left: left, Right: right}, nil
}

// --- <s4>: spatial set sublanguage ---

func (p *parser) parseS4Or() (ast.S4, error) {
	pos := p.pos
	left, err := p.parseS4And()
	if err != nil {
		return nil, err
	}
	for p.typ == token.PIPE {
		p.next()
		right, err := p.parseS4And()
		if err != nil {
			return nil, err
		}
		left = &ast.SetOr{Pos: pos, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseS4And() (ast.S4, error) {
	pos := p.pos
	left, err := p.parseS4Unary()
	if err != nil {
		return nil, err
	}
	for p.typ == token.AMP {
		p.next()
		right, err := p.parseS4Unary()
		if err != nil {
			return nil, err
		}
		left = &ast.SetAnd{Pos: pos, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseS4Unary() (ast.S4, error) {
	switch p.typ {
	case token.BANG:
		pos := p.pos
		p.next()
		elem, err := p.parseS4Unary()
		if err != nil {
			return nil, err
		}
		return &ast.SetNot{Pos: pos, Elem: elem}, nil
	case token.LPAREN:
		p.next()
		n, err := p.parseS4Or()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return n, nil
	case token.CLASS:
		pos, name, _ := p.expect(token.CLASS)
		return &ast.SetClass{Pos: pos, Name: name}, nil
	case token.IDENT:
		pos, name, _ := p.expect(token.IDENT)
		return &ast.Var{Pos: pos, Name: name}, nil
	default:
		return nil, p.errorf("expected a class, variable, '!', or '(', got %s", describe(p.typ, p.lit))
	}
}

// --- <s4m>: numeric term sublanguage ---

func (p *parser) parseS4MAdditive() (ast.S4M, error) {
	pos := p.pos
	left, err := p.parseS4MMul()
	if err != nil {
		return nil, err
	}
	for p.typ == token.MINUS {
		p.next()
		right, err := p.parseS4MMul()
		if err != nil {
			return nil, err
		}
		left = &ast.Sub{Pos: pos, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseS4MMul() (ast.S4M, error) {
	pos := p.pos
	left, err := p.parseS4MUnary()
	if err != nil {
		return nil, err
	}
	for p.typ == token.STAR || p.typ == token.SLASH {
		op := p.typ
		p.next()
		right, err := p.parseS4MUnary()
		if err != nil {
			return nil, err
		}
		if op == token.STAR {
			left = &ast.Mul{Pos: pos, Left: left, Right: right}
		} else {
			left = &ast.Div{Pos: pos, Left: left, Right: right}
		}
	}
	return left, nil
}

func (p *parser) parseS4MUnary() (ast.S4M, error) {
	if p.typ == token.MINUS {
		pos := p.pos
		p.next()
		elem, err := p.parseS4MUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Neg{Pos: pos, Elem: elem}, nil
	}
	return p.parseS4MPrimary()
}

func (p *parser) parseS4MPrimary() (ast.S4M, error) {
	switch p.typ {
	case token.NUMBER:
		pos, lit, _ := p.expect(token.NUMBER)
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, serrors.Newf(serrors.SyntaxError, pos, "invalid numeric literal %q", lit)
		}
		return &ast.Literal{Pos: pos, Value: v}, nil
	case token.LPAREN:
		p.next()
		n, err := p.parseS4MAdditive()
		if err != nil {
			return nil, err
		}
		if _, _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return n, nil
	case token.AT:
		return p.parseNumericFunc()
	default:
		return nil, p.errorf("expected a number or a numeric function, got %s", describe(p.typ, p.lit))
	}
}

func (p *parser) parseNumericFunc() (ast.S4M, error) {
	pos := p.pos
	p.next() // consume '@'
	namePos, name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	first, err := p.parseS4Or()
	if err != nil {
		return nil, err
	}
	switch name {
	case "area":
		if _, _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.Area{Pos: pos, Set: first}, nil
	case "x":
		if _, _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.CentroidX{Pos: pos, Set: first}, nil
	case "y":
		if _, _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.CentroidY{Pos: pos, Set: first}, nil
	case "dist":
		if p.typ == token.COMMA {
			p.next()
			second, err := p.parseS4Or()
			if err != nil {
				return nil, err
			}
			if _, _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return &ast.Dist2{Pos: pos, Left: first, Right: second}, nil
		}
		if _, _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.Dist1{Pos: pos, Set: first}, nil
	default:
		return nil, serrors.Newf(serrors.SyntaxError, namePos, "unknown numeric function @%s", name)
	}
}
