package geo

import "math"

// Polyline is an ordered sequence of points forming a path.
type Polyline struct {
	Points []Point2D `json:"points"`
}

// NewPolyline creates a polyline from a list of points.
func NewPolyline(pts ...Point2D) Polyline {
	return Polyline{Points: pts}
}

// Length returns the total arc length of the polyline.
func (pl Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(pl.Points); i++ {
		total += pl.Points[i-1].Distance(pl.Points[i])
	}
	return total
}

// Reverse returns the polyline walked from its last point to its first.
func (pl Polyline) Reverse() Polyline {
	return Polyline{Points: ReversePoints(pl.Points)}
}

// AppendDistinct appends pts, skipping any point within eps of the point
// before it.
func (pl *Polyline) AppendDistinct(eps float64, pts ...Point2D) {
	for _, p := range pts {
		if n := len(pl.Points); n > 0 && pl.Points[n-1].Near(p, eps) {
			continue
		}
		pl.Points = append(pl.Points, p)
	}
}

// IsClosed reports whether the first and last points coincide within eps.
func (pl Polyline) IsClosed(eps float64) bool {
	n := len(pl.Points)
	return n > 1 && pl.Points[0].Near(pl.Points[n-1], eps)
}

// NearestPoint returns the closest point on the polyline to p, and the distance.
func (pl Polyline) NearestPoint(p Point2D) (Point2D, float64) {
	if len(pl.Points) == 0 {
		return Point2D{}, math.MaxFloat64
	}
	if len(pl.Points) == 1 {
		return pl.Points[0], p.Distance(pl.Points[0])
	}

	bestPt := pl.Points[0]
	bestDist := p.Distance(pl.Points[0])
	for i := 1; i < len(pl.Points); i++ {
		pt, dist := NearestPointOnSegment(p, pl.Points[i-1], pl.Points[i])
		if dist < bestDist {
			bestDist = dist
			bestPt = pt
		}
	}
	return bestPt, bestDist
}

// NearestPointOnSegment returns the closest point on segment ab to p.
func NearestPointOnSegment(p, a, b Point2D) (Point2D, float64) {
	ab := b.Sub(a)
	abLen2 := ab.Dot(ab)
	if abLen2 < 1e-12 {
		return a, p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / abLen2
	t = math.Max(0, math.Min(1, t))
	closest := a.Add(ab.Scale(t))
	return closest, p.Distance(closest)
}
