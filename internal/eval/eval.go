// Package eval implements the spatial evaluator (spec.md §4.3): given a
// frame's annotations and a spatial-unary formula, it computes a boolean,
// following the set-algebra, binder, and NaN-propagation rules specified
// there.
package eval

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/cps-atlas/strem/internal/detect"
	"github.com/cps-atlas/strem/internal/geom"
	"github.com/cps-atlas/strem/spre/ast"
	serrors "github.com/cps-atlas/strem/spre/errors"
)

// env is a flat stack of (name, annotation index) pairs, following the
// teacher-independent design note in spec.md §9: "Represent as a flat
// stack of (name, annotation_handle) pairs; shadowing follows lexical
// order."
type env []binding

type binding struct {
	name string
	idx  int
}

func (e env) lookup(name string) (int, bool) {
	for i := len(e) - 1; i >= 0; i-- {
		if e[i].name == name {
			return e[i].idx, true
		}
	}
	return 0, false
}

func (e env) push(name string, idx int) env {
	return append(e, binding{name: name, idx: idx})
}

// Eval evaluates a spatial-unary formula against a frame's annotations.
// formula must already have passed Validate.
func Eval(formula ast.S4U, frame []detect.Annotation) bool {
	return evalS4U(formula, frame, nil)
}

func evalS4U(n ast.S4U, frame []detect.Annotation, e env) bool {
	switch v := n.(type) {
	case *ast.ClassUnary:
		for _, a := range frame {
			if a.Class == v.Name {
				return true
			}
		}
		return false
	case *ast.NonEmpty:
		return len(evalS4(v.Set, frame, e)) > 0
	case *ast.UnaryAnd:
		return evalS4U(v.Left, frame, e) && evalS4U(v.Right, frame, e)
	case *ast.UnaryOr:
		return evalS4U(v.Left, frame, e) || evalS4U(v.Right, frame, e)
	case *ast.ExistsBinders:
		return evalExists(v, frame, e)
	case *ast.ForallBinders:
		return evalForall(v, frame, e)
	case *ast.Cmp:
		l := evalTerm(v.Left, frame, e)
		r := evalTerm(v.Right, frame, e)
		return compare(v.Op, l, r)
	default:
		panic("eval: unhandled s4u node")
	}
}

func compare(op ast.CompOp, l, r float64) bool {
	if math.IsNaN(l) || math.IsNaN(r) {
		return false
	}
	switch op {
	case ast.OpLT:
		return l < r
	case ast.OpLE:
		return l <= r
	case ast.OpGT:
		return l > r
	case ast.OpGE:
		return l >= r
	default:
		return false
	}
}

// evalExists implements E(v1:=s1,...,vk:=sk)(body): a Cartesian product
// search over each binding's set, evaluated in the enclosing environment
// (bindings do not see each other's variables, spec.md §4.3). Empty
// binding sets make the whole quantifier false.
func evalExists(v *ast.ExistsBinders, frame []detect.Annotation, e env) bool {
	sets := bindingSets(v.Bindings, frame, e)
	for _, s := range sets {
		if len(s) == 0 {
			return false
		}
	}
	found := false
	forEachTuple(v.Bindings, sets, e, func(e2 env) bool {
		if evalS4U(v.Body, frame, e2) {
			found = true
			return false // stop early
		}
		return true
	})
	return found
}

// evalForall implements A(v1:=s1,...,vk:=sk)(body): vacuously true if any
// binding set is empty, otherwise true iff body holds for every tuple.
func evalForall(v *ast.ForallBinders, frame []detect.Annotation, e env) bool {
	sets := bindingSets(v.Bindings, frame, e)
	for _, s := range sets {
		if len(s) == 0 {
			return true // vacuous truth, spec.md §4.3 / §8 invariant 4
		}
	}
	all := true
	forEachTuple(v.Bindings, sets, e, func(e2 env) bool {
		if !evalS4U(v.Body, frame, e2) {
			all = false
			return false
		}
		return true
	})
	return all
}

func bindingSets(bindings []ast.Binding, frame []detect.Annotation, e env) [][]int {
	sets := make([][]int, len(bindings))
	for i, b := range bindings {
		sets[i] = evalS4(b.Set, frame, e)
	}
	return sets
}

// forEachTuple walks the Cartesian product of sets, extending e with each
// binding in turn, and calls visit for every complete tuple. visit returns
// false to stop early.
func forEachTuple(bindings []ast.Binding, sets [][]int, e env, visit func(env) bool) {
	var rec func(i int, cur env) bool
	rec = func(i int, cur env) bool {
		if i == len(bindings) {
			return visit(cur)
		}
		for _, idx := range sets[i] {
			if !rec(i+1, cur.push(bindings[i].Var, idx)) {
				return false
			}
		}
		return true
	}
	rec(0, e)
}

// evalS4 evaluates a set formula to the (sorted, deduplicated) indices of
// the annotations it selects, so the result is independent of the input
// annotation order (spec.md §9, "Open questions").
func evalS4(n ast.S4, frame []detect.Annotation, e env) []int {
	switch v := n.(type) {
	case *ast.SetClass:
		var out []int
		for i, a := range frame {
			if a.Class == v.Name {
				out = append(out, i)
			}
		}
		return out
	case *ast.SetAnd:
		l, r := evalS4(v.Left, frame, e), evalS4(v.Right, frame, e)
		rSet := make(map[int]bool, len(r))
		for _, i := range r {
			rSet[i] = true
		}
		return sortedUnique(lo.Filter(l, func(i int, _ int) bool { return rSet[i] }))
	case *ast.SetOr:
		l, r := evalS4(v.Left, frame, e), evalS4(v.Right, frame, e)
		return sortedUnique(append(append([]int{}, l...), r...))
	case *ast.SetNot:
		inner := evalS4(v.Elem, frame, e)
		in := make(map[int]bool, len(inner))
		for _, i := range inner {
			in[i] = true
		}
		var out []int
		for i := range frame {
			if !in[i] {
				out = append(out, i)
			}
		}
		return out
	case *ast.Var:
		if idx, ok := e.lookup(v.Name); ok {
			return []int{idx}
		}
		// Validate rejects this statically; reaching here at eval time
		// would be an engine bug, not user error.
		return nil
	default:
		panic("eval: unhandled s4 node")
	}
}

func sortedUnique(in []int) []int {
	out := lo.Uniq(in)
	sort.Ints(out)
	return out
}

// evalTerm evaluates a numeric term (spec.md §4.3.2). Ill-defined
// operations (a function applied to a set of the wrong cardinality,
// division by zero) yield NaN, which propagates through arithmetic and
// makes every comparator false; this policy is centralized here rather
// than scattered across call sites (spec.md §9).
func evalTerm(n ast.S4M, frame []detect.Annotation, e env) float64 {
	switch v := n.(type) {
	case *ast.Literal:
		return v.Value
	case *ast.Neg:
		return -evalTerm(v.Elem, frame, e)
	case *ast.Sub:
		return evalTerm(v.Left, frame, e) - evalTerm(v.Right, frame, e)
	case *ast.Mul:
		return evalTerm(v.Left, frame, e) * evalTerm(v.Right, frame, e)
	case *ast.Div:
		r := evalTerm(v.Right, frame, e)
		if r == 0 {
			return math.NaN()
		}
		return evalTerm(v.Left, frame, e) / r
	case *ast.Area:
		idx, ok := singleton(v.Set, frame, e)
		if !ok {
			return math.NaN()
		}
		return geom.Area(frame[idx].BBox)
	case *ast.CentroidX:
		idx, ok := singleton(v.Set, frame, e)
		if !ok {
			return math.NaN()
		}
		return geom.X(frame[idx].BBox)
	case *ast.CentroidY:
		idx, ok := singleton(v.Set, frame, e)
		if !ok {
			return math.NaN()
		}
		return geom.Y(frame[idx].BBox)
	case *ast.Dist1:
		s := evalS4(v.Set, frame, e)
		if len(s) != 2 {
			return math.NaN()
		}
		return geom.Dist(frame[s[0]].BBox, frame[s[1]].BBox)
	case *ast.Dist2:
		i1, ok1 := singleton(v.Left, frame, e)
		i2, ok2 := singleton(v.Right, frame, e)
		if !ok1 || !ok2 {
			return math.NaN()
		}
		return geom.Dist(frame[i1].BBox, frame[i2].BBox)
	default:
		panic("eval: unhandled s4m node")
	}
}

func singleton(s ast.S4, frame []detect.Annotation, e env) (int, bool) {
	idx := evalS4(s, frame, e)
	if len(idx) != 1 {
		return 0, false
	}
	return idx[0], true
}

// Validate statically rejects a Var used outside the body of the binder
// that declares it (spec.md §4.3.1, §7 UnboundVariable). Binding set
// expressions are checked against the scope enclosing the binder, since
// they do not see the binder's own variables.
func Validate(formula ast.S4U) error {
	return validateS4U(formula, nil)
}

func validateS4U(n ast.S4U, scope []string) error {
	switch v := n.(type) {
	case *ast.ClassUnary:
		return nil
	case *ast.NonEmpty:
		return validateS4(v.Set, scope)
	case *ast.UnaryAnd:
		if err := validateS4U(v.Left, scope); err != nil {
			return err
		}
		return validateS4U(v.Right, scope)
	case *ast.UnaryOr:
		if err := validateS4U(v.Left, scope); err != nil {
			return err
		}
		return validateS4U(v.Right, scope)
	case *ast.Cmp:
		if err := validateS4M(v.Left, scope); err != nil {
			return err
		}
		return validateS4M(v.Right, scope)
	case *ast.ExistsBinders:
		return validateBinder(v.Bindings, v.Body, scope)
	case *ast.ForallBinders:
		return validateBinder(v.Bindings, v.Body, scope)
	default:
		return nil
	}
}

func validateBinder(bindings []ast.Binding, body ast.S4U, scope []string) error {
	for _, b := range bindings {
		if err := validateS4(b.Set, scope); err != nil {
			return err
		}
	}
	inner := make([]string, len(scope), len(scope)+len(bindings))
	copy(inner, scope)
	for _, b := range bindings {
		inner = append(inner, b.Var)
	}
	return validateS4U(body, inner)
}

func validateS4(n ast.S4, scope []string) error {
	switch v := n.(type) {
	case *ast.SetClass:
		return nil
	case *ast.SetAnd:
		if err := validateS4(v.Left, scope); err != nil {
			return err
		}
		return validateS4(v.Right, scope)
	case *ast.SetOr:
		if err := validateS4(v.Left, scope); err != nil {
			return err
		}
		return validateS4(v.Right, scope)
	case *ast.SetNot:
		return validateS4(v.Elem, scope)
	case *ast.Var:
		for _, s := range scope {
			if s == v.Name {
				return nil
			}
		}
		return serrors.Newf(serrors.UnboundVariable, v.Pos, "unbound variable %q", v.Name)
	default:
		return nil
	}
}

func validateS4M(n ast.S4M, scope []string) error {
	switch v := n.(type) {
	case *ast.Literal:
		return nil
	case *ast.Neg:
		return validateS4M(v.Elem, scope)
	case *ast.Sub:
		if err := validateS4M(v.Left, scope); err != nil {
			return err
		}
		return validateS4M(v.Right, scope)
	case *ast.Mul:
		if err := validateS4M(v.Left, scope); err != nil {
			return err
		}
		return validateS4M(v.Right, scope)
	case *ast.Div:
		if err := validateS4M(v.Left, scope); err != nil {
			return err
		}
		return validateS4M(v.Right, scope)
	case *ast.Area:
		return validateS4(v.Set, scope)
	case *ast.CentroidX:
		return validateS4(v.Set, scope)
	case *ast.CentroidY:
		return validateS4(v.Set, scope)
	case *ast.Dist1:
		return validateS4(v.Set, scope)
	case *ast.Dist2:
		if err := validateS4(v.Left, scope); err != nil {
			return err
		}
		return validateS4(v.Right, scope)
	default:
		return nil
	}
}
