// Package atom implements atom extraction (spec.md §4.2): it walks a
// temporal AST, assigns each distinct spatial-unary leaf a stable small
// integer id, and rewrites the tree so every Class leaf carries its id.
package atom

import (
	"fmt"
	"sort"

	"github.com/cps-atlas/strem/spre/ast"
	serrors "github.com/cps-atlas/strem/spre/errors"
)

// MaxAtoms is the supported atom-id limit of spec.md §3: "k ≤ 64 is a
// supported limit; beyond this, fail".
const MaxAtoms = 64

// Table maps atom ids to the spatial-unary formula they were extracted
// from (spec.md §4.2, "retained separately, indexed by atom id").
type Table struct {
	Formulas []ast.S4U
}

// Extract rewrites spre in place, assigning an atom id to every Class
// leaf, and returns the atom table indexed by those ids. Structurally
// equal leaves (after canonicalization) receive the same id (spec.md §8,
// invariant 2).
func Extract(spre ast.Spre) (*Table, error) {
	e := &extractor{ids: map[string]int{}}
	if err := e.walk(spre); err != nil {
		return nil, err
	}
	return &Table{Formulas: e.formulas}, nil
}

type extractor struct {
	ids      map[string]int
	formulas []ast.S4U
}

func (e *extractor) walk(n ast.Spre) error {
	switch v := n.(type) {
	case *ast.Class:
		key := canonicalKey(v.Body)
		id, ok := e.ids[key]
		if !ok {
			if len(e.formulas) >= MaxAtoms {
				return serrors.Newf(serrors.AtomLimitExceeded, v.Pos,
					"pattern requires more than %d distinct spatial atoms", MaxAtoms)
			}
			id = len(e.formulas)
			e.ids[key] = id
			e.formulas = append(e.formulas, canonicalize(v.Body))
		}
		v.AtomID = id
		return nil
	case *ast.Concat:
		for _, p := range v.Parts {
			if err := e.walk(p); err != nil {
				return err
			}
		}
		return nil
	case *ast.Alt:
		for _, a := range v.Arms {
			if err := e.walk(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.Star:
		return e.walk(v.Elem)
	case *ast.Repeat:
		return e.walk(v.Elem)
	default:
		return fmt.Errorf("atom: unhandled spre node %T", n)
	}
}

// canonicalKey computes a structural-equality key for a <s4u> leaf: it
// sorts commutative children (And/Or, binder bindings), folds double
// negation, but leaves binder bodies unsorted (spec.md §4.2: "sort binder
// variables lexicographically inside a binder's binding list but *not* the
// body").
func canonicalKey(n ast.S4U) string {
	return s4uKey(canonicalize(n))
}

// canonicalize returns a structurally-normalized copy of n: children of
// commutative operators are ordered by their own canonical key, and
// binder bindings are sorted lexicographically by variable name.
func canonicalize(n ast.S4U) ast.S4U {
	switch v := n.(type) {
	case *ast.ClassUnary:
		return &ast.ClassUnary{Pos: v.Pos, Name: v.Name}
	case *ast.NonEmpty:
		return &ast.NonEmpty{Pos: v.Pos, Set: canonicalizeS4(v.Set)}
	case *ast.ExistsBinders:
		return &ast.ExistsBinders{Pos: v.Pos, Bindings: sortBindings(v.Bindings), Body: v.Body}
	case *ast.ForallBinders:
		return &ast.ForallBinders{Pos: v.Pos, Bindings: sortBindings(v.Bindings), Body: v.Body}
	case *ast.UnaryAnd:
		l, r := canonicalize(v.Left), canonicalize(v.Right)
		if s4uKey(l) > s4uKey(r) {
			l, r = r, l
		}
		return &ast.UnaryAnd{Pos: v.Pos, Left: l, Right: r}
	case *ast.UnaryOr:
		l, r := canonicalize(v.Left), canonicalize(v.Right)
		if s4uKey(l) > s4uKey(r) {
			l, r = r, l
		}
		return &ast.UnaryOr{Pos: v.Pos, Left: l, Right: r}
	case *ast.Cmp:
		return &ast.Cmp{Pos: v.Pos, Op: v.Op, Left: v.Left, Right: v.Right}
	default:
		return n
	}
}

func canonicalizeS4(n ast.S4) ast.S4 {
	switch v := n.(type) {
	case *ast.SetNot:
		// Fold double negation: !!s == s.
		if inner, ok := v.Elem.(*ast.SetNot); ok {
			return canonicalizeS4(inner.Elem)
		}
		return &ast.SetNot{Pos: v.Pos, Elem: canonicalizeS4(v.Elem)}
	case *ast.SetAnd:
		l, r := canonicalizeS4(v.Left), canonicalizeS4(v.Right)
		if s4Key(l) > s4Key(r) {
			l, r = r, l
		}
		return &ast.SetAnd{Pos: v.Pos, Left: l, Right: r}
	case *ast.SetOr:
		l, r := canonicalizeS4(v.Left), canonicalizeS4(v.Right)
		if s4Key(l) > s4Key(r) {
			l, r = r, l
		}
		return &ast.SetOr{Pos: v.Pos, Left: l, Right: r}
	default:
		return n
	}
}

func sortBindings(in []ast.Binding) []ast.Binding {
	out := make([]ast.Binding, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].Var < out[j].Var })
	return out
}

// s4uKey and s4Key print a node into a form distinguishing every
// structural shape, used both to sort commutative children and to key the
// extractor's lookup table.
func s4uKey(n ast.S4U) string {
	switch v := n.(type) {
	case *ast.ClassUnary:
		return "C:" + v.Name
	case *ast.NonEmpty:
		return "NE(" + s4Key(v.Set) + ")"
	case *ast.ExistsBinders:
		return "E" + bindingsKey(v.Bindings) + "(" + s4uKey(v.Body) + ")"
	case *ast.ForallBinders:
		return "A" + bindingsKey(v.Bindings) + "(" + s4uKey(v.Body) + ")"
	case *ast.UnaryAnd:
		return "(" + s4uKey(v.Left) + "&" + s4uKey(v.Right) + ")"
	case *ast.UnaryOr:
		return "(" + s4uKey(v.Left) + "|" + s4uKey(v.Right) + ")"
	case *ast.Cmp:
		return "(" + s4mKey(v.Left) + v.Op.String() + s4mKey(v.Right) + ")"
	default:
		return fmt.Sprintf("?%T", n)
	}
}

func bindingsKey(b []ast.Binding) string {
	s := "("
	for i, bd := range b {
		if i > 0 {
			s += ","
		}
		s += bd.Var + ":=" + s4Key(bd.Set)
	}
	return s + ")"
}

func s4Key(n ast.S4) string {
	switch v := n.(type) {
	case *ast.SetClass:
		return "c:" + v.Name
	case *ast.SetAnd:
		return "(" + s4Key(v.Left) + "&" + s4Key(v.Right) + ")"
	case *ast.SetOr:
		return "(" + s4Key(v.Left) + "|" + s4Key(v.Right) + ")"
	case *ast.SetNot:
		return "!" + s4Key(v.Elem)
	case *ast.Var:
		return "v:" + v.Name
	default:
		return fmt.Sprintf("?%T", n)
	}
}

func s4mKey(n ast.S4M) string {
	switch v := n.(type) {
	case *ast.Literal:
		return fmt.Sprintf("%g", v.Value)
	case *ast.Neg:
		return "-" + s4mKey(v.Elem)
	case *ast.Sub:
		return "(" + s4mKey(v.Left) + "-" + s4mKey(v.Right) + ")"
	case *ast.Mul:
		return "(" + s4mKey(v.Left) + "*" + s4mKey(v.Right) + ")"
	case *ast.Div:
		return "(" + s4mKey(v.Left) + "/" + s4mKey(v.Right) + ")"
	case *ast.Area:
		return "area(" + s4Key(v.Set) + ")"
	case *ast.CentroidX:
		return "x(" + s4Key(v.Set) + ")"
	case *ast.CentroidY:
		return "y(" + s4Key(v.Set) + ")"
	case *ast.Dist1:
		return "dist(" + s4Key(v.Set) + ")"
	case *ast.Dist2:
		return "dist(" + s4Key(v.Left) + "," + s4Key(v.Right) + ")"
	default:
		return fmt.Sprintf("?%T", n)
	}
}
