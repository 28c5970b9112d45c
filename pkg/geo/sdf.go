package geo

import "math"

// BoxDistance returns the signed distance from p to the axis-aligned box
// centred on center with the given half extents. Negative inside.
func BoxDistance(p, center Point2D, halfX, halfZ float64) float64 {
	dx := math.Abs(p.X-center.X) - halfX
	dz := math.Abs(p.Z-center.Z) - halfZ
	outside := math.Hypot(math.Max(dx, 0), math.Max(dz, 0))
	inside := math.Min(math.Max(dx, dz), 0)
	return outside + inside
}

// AnnulusDistance returns the signed distance from p to the ring of the
// given centre-line radius and half width around center.
func AnnulusDistance(p, center Point2D, radius, halfWidth float64) float64 {
	return math.Abs(p.Distance(center)-radius) - halfWidth
}
