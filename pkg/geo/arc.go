package geo

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// NormalizeAngle maps a to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		a = 0
	}
	return a
}

// AngleInSpan reports whether angle a lies in the counterclockwise span
// [start, start+span], allowing eps radians of slack at either end.
func AngleInSpan(a, start, span, eps float64) bool {
	d := NormalizeAngle(a - start)
	if d <= span+eps {
		return true
	}
	// Slack below start wraps around to just under 2π.
	return d >= TwoPi-eps
}

// ArcSegmentCount returns how many chords approximate an arc of the given
// radius and signed sweep so that no chord spans more than maxStep radians.
func ArcSegmentCount(delta, maxStep float64) int {
	if maxStep <= 0 {
		maxStep = math.Pi / 16
	}
	n := int(math.Ceil(math.Abs(delta) / maxStep))
	if n < 1 {
		n = 1
	}
	return n
}

// ArcPoints samples the arc around center starting at angle start and
// sweeping delta radians (positive is counterclockwise). Both endpoints are
// included, so the result has segments+1 points.
func ArcPoints(center Point2D, radius, start, delta float64, segments int) []Point2D {
	if segments < 1 {
		segments = 1
	}
	pts := make([]Point2D, segments+1)
	for i := 0; i <= segments; i++ {
		a := start + delta*float64(i)/float64(segments)
		pts[i] = Polar(center, radius, a)
	}
	return pts
}

// RoundedRectMinCorner returns the rectangle [lo, hi] with only its lo/lo
// corner filleted by radius. The radius is limited by the rectangle size.
// Vertices are counterclockwise.
func RoundedRectMinCorner(lo, hi Point2D, radius float64, segments int) Polygon {
	w, h := hi.X-lo.X, hi.Z-lo.Z
	if w <= 0 || h <= 0 {
		return Polygon{}
	}
	radius = Clamp(radius, 0, math.Min(w, h))
	if radius < 1e-9 {
		return NewPolygon(lo, Pt(hi.X, lo.Z), hi, Pt(lo.X, hi.Z))
	}

	pts := []Point2D{
		Pt(lo.X+radius, lo.Z),
		Pt(hi.X, lo.Z),
		hi,
		Pt(lo.X, hi.Z),
	}
	// Fillet from the left edge down to the bottom edge, counterclockwise.
	center := Pt(lo.X+radius, lo.Z+radius)
	arc := ArcPoints(center, radius, math.Pi, math.Pi/2, segments)
	pts = append(pts, arc[:len(arc)-1]...)
	return Polygon{Vertices: pts}
}
