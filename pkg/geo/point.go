package geo

import "math"

// Point2D is a point or vector in the XZ ground plane (Y is up).
// +X points east and +Z points north.
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Z float64 `json:"z" yaml:"z"`
}

// Origin is the zero point.
var Origin = Point2D{0, 0}

// Pt is a shorthand constructor for Point2D.
func Pt(x, z float64) Point2D {
	return Point2D{X: x, Z: z}
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{p.X + q.X, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{p.X - q.X, p.Z - q.Z}
}

// Scale returns p * s.
func (p Point2D) Scale(s float64) Point2D {
	return Point2D{p.X * s, p.Z * s}
}

// Mul multiplies component-wise. Used to mirror a canonical quadrant.
func (p Point2D) Mul(q Point2D) Point2D {
	return Point2D{p.X * q.X, p.Z * q.Z}
}

// Length returns the Euclidean length of the vector.
func (p Point2D) Length() float64 {
	return math.Hypot(p.X, p.Z)
}

// LengthSq returns the squared length of the vector.
func (p Point2D) LengthSq() float64 {
	return p.X*p.X + p.Z*p.Z
}

// Normalize returns the unit vector in the same direction.
// Returns zero vector if length is zero.
func (p Point2D) Normalize() Point2D {
	l := p.Length()
	if l < 1e-12 {
		return Point2D{}
	}
	return Point2D{p.X / l, p.Z / l}
}

// IsZero reports whether both components are (numerically) zero.
func (p Point2D) IsZero() bool {
	return math.Abs(p.X) < 1e-12 && math.Abs(p.Z) < 1e-12
}

// IsFinite reports whether neither component is NaN or infinite.
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Z) && !math.IsInf(p.X, 0) && !math.IsInf(p.Z, 0)
}

// Dot returns the dot product of p and q.
func (p Point2D) Dot(q Point2D) float64 {
	return p.X*q.X + p.Z*q.Z
}

// Cross returns the 2D cross product (z-component of 3D cross).
func (p Point2D) Cross(q Point2D) float64 {
	return p.X*q.Z - p.Z*q.X
}

// Distance returns the Euclidean distance from p to q.
func (p Point2D) Distance(q Point2D) float64 {
	return p.Sub(q).Length()
}

// DistanceSq returns the squared distance from p to q.
func (p Point2D) DistanceSq(q Point2D) float64 {
	return p.Sub(q).LengthSq()
}

// Near reports whether p and q are within eps of each other.
func (p Point2D) Near(q Point2D, eps float64) bool {
	return p.DistanceSq(q) <= eps*eps
}

// Angle returns the angle of the vector from the positive X axis in radians.
func (p Point2D) Angle() float64 {
	return math.Atan2(p.Z, p.X)
}

// Rotate returns p rotated by angle radians around the origin.
func (p Point2D) Rotate(angle float64) Point2D {
	c, s := math.Cos(angle), math.Sin(angle)
	return Point2D{
		X: p.X*c - p.Z*s,
		Z: p.X*s + p.Z*c,
	}
}

// Lerp returns the linear interpolation between p and q at t in [0,1].
func (p Point2D) Lerp(q Point2D, t float64) Point2D {
	return Point2D{
		X: p.X + (q.X-p.X)*t,
		Z: p.Z + (q.Z-p.Z)*t,
	}
}

// Perp returns a vector perpendicular to p (rotated 90 degrees counterclockwise).
// For a direction of travel, Perp points to the left-hand side.
func (p Point2D) Perp() Point2D {
	return Point2D{-p.Z, p.X}
}

// Polar returns the point at the given radius and angle around center.
func Polar(center Point2D, radius, angle float64) Point2D {
	return Point2D{
		X: center.X + radius*math.Cos(angle),
		Z: center.Z + radius*math.Sin(angle),
	}
}

// MidPoint returns the midpoint between p and q.
func MidPoint(p, q Point2D) Point2D {
	return p.Lerp(q, 0.5)
}
