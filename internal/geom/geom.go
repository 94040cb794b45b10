// Package geom implements the primitive geometric operations STREM needs
// over bounding boxes: area, centroid, and minimum distance between two
// rectangles. All boxes are treated uniformly as oriented rectangles, with
// an axis-aligned box being the degenerate theta == 0 case (spec.md §3).
package geom

import "math"

// Box is an oriented bounding box in image-plane pixel coordinates. An
// axis-aligned box is represented with Theta == 0.
type Box struct {
	CX, CY float64
	W, H   float64
	Theta  float64 // radians
}

// AABB builds an axis-aligned box.
func AABB(cx, cy, w, h float64) Box {
	return Box{CX: cx, CY: cy, W: w, H: h}
}

// OBB builds an oriented box.
func OBB(cx, cy, w, h, theta float64) Box {
	return Box{CX: cx, CY: cy, W: w, H: h, Theta: theta}
}

// Area returns w*h, irrespective of orientation.
func Area(b Box) float64 { return b.W * b.H }

// X returns the box's center x coordinate.
func X(b Box) float64 { return b.CX }

// Y returns the box's center y coordinate.
func Y(b Box) float64 { return b.CY }

// corners returns the four corners of b in order, accounting for rotation
// about its center.
func corners(b Box) [4][2]float64 {
	hw, hh := b.W/2, b.H/2
	local := [4][2]float64{
		{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh},
	}
	sin, cos := math.Sincos(b.Theta)
	var out [4][2]float64
	for i, p := range local {
		x, y := p[0], p[1]
		out[i] = [2]float64{
			b.CX + x*cos - y*sin,
			b.CY + x*sin + y*cos,
		}
	}
	return out
}

// axes returns the axes perpendicular to each of the box's two distinct
// edge directions, used for separating-axis polygon distance queries.
func axes(c [4][2]float64) [2][2]float64 {
	e0 := [2]float64{c[1][0] - c[0][0], c[1][1] - c[0][1]}
	e1 := [2]float64{c[3][0] - c[0][0], c[3][1] - c[0][1]}
	return [2][2]float64{normal(e0), normal(e1)}
}

func normal(v [2]float64) [2]float64 {
	n := [2]float64{-v[1], v[0]}
	l := math.Hypot(n[0], n[1])
	if l == 0 {
		return [2]float64{0, 0}
	}
	return [2]float64{n[0] / l, n[1] / l}
}

func project(c [4][2]float64, axis [2]float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, p := range c {
		d := p[0]*axis[0] + p[1]*axis[1]
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return
}

// gapOnAxis returns the signed gap between the two projections: a
// negative value means the projections overlap by that magnitude, and a
// positive value is the separation on this axis.
func gapOnAxis(a, b [4][2]float64, axis [2]float64) float64 {
	aMin, aMax := project(a, axis)
	bMin, bMax := project(b, axis)
	return math.Max(aMin-bMax, bMin-aMax)
}

// Dist returns the minimum Euclidean distance between the closed rectangles
// a and b, or 0 if they intersect or touch. Uses the separating-axis
// theorem: two convex polygons are disjoint iff some edge-normal axis of
// either polygon separates their projections, and the true minimum gap
// (when disjoint) is realized on one of those axes for rectangle pairs
// unless the closest features are a corner-to-corner pair, in which case
// the per-axis gap underestimates the true distance. So when some axis
// separates the boxes, the exact edge-to-edge polygon distance is also
// computed and the larger of the two values is returned; when no axis
// separates them the result is 0.
func Dist(a, b Box) float64 {
	ca, cb := corners(a), corners(b)
	axesA := axes(ca)
	axesB := axes(cb)

	best := math.Inf(-1)
	sepAxis := [2]float64{}
	separated := false
	for _, ax := range [][2]float64{axesA[0], axesA[1], axesB[0], axesB[1]} {
		g := gapOnAxis(ca, cb, ax)
		if g > best {
			best = g
			sepAxis = ax
		}
		if g > 0 {
			separated = true
		}
	}
	if !separated {
		return 0
	}

	// The separating axis found by SAT gives the correct minimum distance
	// whenever the closest features project cleanly onto it (edge-edge or
	// edge-vertex). For the remaining vertex-vertex case, refine with the
	// true minimum polygon-to-polygon vertex/edge distance, which is never
	// smaller than the SAT gap and agrees with it except in that case.
	exact := polygonDistance(ca, cb)
	if exact > best {
		return exact
	}
	_ = sepAxis
	return best
}

func polygonDistance(a, b [4][2]float64) float64 {
	min := math.Inf(1)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			d := segmentDistance(a[i], a[(i+1)%4], b[j], b[(j+1)%4])
			min = math.Min(min, d)
		}
	}
	return min
}

func segmentDistance(p1, p2, p3, p4 [2]float64) float64 {
	if segmentsIntersect(p1, p2, p3, p4) {
		return 0
	}
	d1 := pointSegmentDistance(p1, p3, p4)
	d2 := pointSegmentDistance(p2, p3, p4)
	d3 := pointSegmentDistance(p3, p1, p2)
	d4 := pointSegmentDistance(p4, p1, p2)
	return math.Min(math.Min(d1, d2), math.Min(d3, d4))
}

func pointSegmentDistance(p, a, b [2]float64) float64 {
	vx, vy := b[0]-a[0], b[1]-a[1]
	wx, wy := p[0]-a[0], p[1]-a[1]
	l2 := vx*vx + vy*vy
	if l2 == 0 {
		return math.Hypot(wx, wy)
	}
	t := (wx*vx + wy*vy) / l2
	t = math.Max(0, math.Min(1, t))
	px, py := a[0]+t*vx, a[1]+t*vy
	return math.Hypot(p[0]-px, p[1]-py)
}

func cross(o, a, b [2]float64) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func onSegment(p, q, r [2]float64) bool {
	return math.Min(p[0], r[0]) <= q[0] && q[0] <= math.Max(p[0], r[0]) &&
		math.Min(p[1], r[1]) <= q[1] && q[1] <= math.Max(p[1], r[1])
}

func segmentsIntersect(p1, p2, p3, p4 [2]float64) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p1, p4) {
		return true
	}
	if d2 == 0 && onSegment(p3, p2, p4) {
		return true
	}
	if d3 == 0 && onSegment(p1, p3, p2) {
		return true
	}
	if d4 == 0 && onSegment(p1, p4, p2) {
		return true
	}
	return false
}
