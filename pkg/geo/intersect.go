package geo

import "math"

// paramTolerance widens the accepted [0,1] parameter range so that
// intersections landing exactly on an endpoint are not lost to rounding.
const paramTolerance = 1e-9

// SegmentIntersection intersects segment p→p2 with segment q→q2 using the
// cross-product form p + t·r = q + u·s. It returns the parameters t and u
// (clamped into [0,1]) and ok=false when the segments are parallel, nearly
// parallel, or do not meet within their extents.
func SegmentIntersection(p, p2, q, q2 Point2D) (t, u float64, ok bool) {
	r := p2.Sub(p)
	s := q2.Sub(q)
	den := r.Cross(s)
	scale := r.Length() * s.Length()
	if scale < 1e-12 || math.Abs(den) < 1e-10*scale {
		return 0, 0, false
	}
	qp := q.Sub(p)
	t = qp.Cross(s) / den
	u = qp.Cross(r) / den
	if t < -paramTolerance || t > 1+paramTolerance || u < -paramTolerance || u > 1+paramTolerance {
		return 0, 0, false
	}
	return clamp01(t), clamp01(u), true
}

// LineIntersection returns the intersection of the infinite lines through
// p1 with direction d1 and p2 with direction d2, and the distance parameters
// along each direction vector.
func LineIntersection(p1, d1, p2, d2 Point2D) (Point2D, float64, float64, bool) {
	den := d1.Cross(d2)
	if math.Abs(den) < 1e-12 {
		return Point2D{}, 0, 0, false
	}
	diff := p2.Sub(p1)
	t := diff.Cross(d2) / den
	u := diff.Cross(d1) / den
	return p1.Add(d1.Scale(t)), t, u, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Clamp limits v to [lo, hi]. When lo > hi, hi wins.
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
