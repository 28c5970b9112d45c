// Package surface classifies wheel contact points as roadway, curb or
// off-road from tile metadata, falling back to the stitched junction loops
// where no tile has roadway. Distances are derived from the same
// tile.Params formulas the junction generator draws with, so classification
// and emitted asphalt agree.
package surface

import (
	"fmt"
	"math"
	"strings"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

// Surface is what a point rests on.
type Surface uint8

const (
	// Unknown is reported where no road tile is classified.
	Unknown Surface = iota
	Roadway
	Curb
	OffRoad
)

var surfaceNames = [...]string{"unknown", "roadway", "curb", "off_road"}

func (s Surface) String() string {
	if int(s) >= len(surfaceNames) {
		return fmt.Sprintf("Surface(%d)", int(s))
	}
	return surfaceNames[s]
}

// MarshalText encodes the surface by name.
func (s Surface) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSurface parses a surface name, case-insensitively.
func ParseSurface(name string) (Surface, error) {
	for i, n := range surfaceNames {
		if strings.EqualFold(name, n) {
			return Surface(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown surface %q", name)
}

// Sample is one classification. Distance is the signed distance to the
// roadway edge, negative inside.
type Sample struct {
	Surface  Surface `json:"surface"`
	Distance float64 `json:"distance"`
}

// Distance returns the signed distance from p to the roadway of t. It
// reports false for tiles without roadway.
func Distance(p geo.Point2D, t tile.Tile, params tile.Params) (float64, bool) {
	local := p.Sub(t.Center)
	switch t.Info.Axis {
	case tile.AxisEW:
		return math.Abs(local.Z) - params.StraightHalfWidth(t.Info), true
	case tile.AxisNS:
		return math.Abs(local.X) - params.StraightHalfWidth(t.Info), true
	case tile.AxisIntersection:
		// The box spans the whole tile, so the corner pads read as roadway.
		// This matches the full-tile asphalt square the emitter draws.
		hx, hz := params.IntersectionHalfExtents(t.Info)
		return geo.BoxDistance(local, geo.Origin, hx, hz), true
	case tile.AxisCorner:
		return cornerDistance(local, params.Corner(t.Info), params.Half()), true
	}
	return 0, false
}

// cornerDistance is the minimum over the two legs and the turn annulus,
// in tile-local coordinates. The annulus only counts inside its span;
// outside it the end caps bound the distance.
func cornerDistance(p geo.Point2D, c tile.Corner, h float64) float64 {
	hw, r := c.HalfWidth, c.Radius
	sign := c.Sign()
	d := math.Inf(1)

	if leg := h - r; leg > 1e-9 {
		mid := (r + h) / 2
		d = math.Min(d, geo.BoxDistance(p, geo.Pt(0, mid).Mul(sign), hw, leg/2))
		d = math.Min(d, geo.BoxDistance(p, geo.Pt(mid, 0).Mul(sign), leg/2, hw))
	}

	rel := p.Sub(c.ArcCenter)
	if geo.AngleInSpan(rel.Angle(), c.StartAngle, c.Span, 0) {
		d = math.Min(d, geo.AnnulusDistance(p, c.ArcCenter, r, hw))
	} else {
		for _, a := range [2]float64{c.StartAngle, c.StartAngle + c.Span} {
			_, end := geo.NearestPointOnSegment(p, geo.Polar(c.ArcCenter, r-hw, a), geo.Polar(c.ArcCenter, r+hw, a))
			d = math.Min(d, end)
		}
	}
	return d
}

// Classify turns the distance at p into a surface. Thresholds sit at
// -hysteresis and curbThickness+hysteresis; the surface of the previous
// sample moves the threshold it would cross outward by 2*hysteresis, so a
// point resting on a boundary keeps its surface.
func Classify(p geo.Point2D, t tile.Tile, params tile.Params, prev Surface) Sample {
	d, ok := Distance(p, t, params)
	if !ok {
		return Sample{Surface: Unknown}
	}
	return classifyDistance(d, params, prev)
}

// LoopDistance returns the signed distance from p to the boundary of a
// stitched loop, negative inside.
func LoopDistance(p geo.Point2D, loop geo.Polygon) float64 {
	if loop.Len() < 3 {
		return math.Inf(1)
	}
	ring := geo.NewPolyline(append(append([]geo.Point2D(nil), loop.Vertices...), loop.Vertices[0])...)
	_, d := ring.NearestPoint(p)
	if loop.Contains(p) {
		return -d
	}
	return d
}

// ClassifyLoops classifies p against the nearest stitched loop. It reports
// false when p lies beyond the curb band of every loop.
func ClassifyLoops(p geo.Point2D, loops []geo.Polygon, params tile.Params, prev Surface) (Sample, bool) {
	d := math.Inf(1)
	for _, l := range loops {
		d = math.Min(d, LoopDistance(p, l))
	}
	if d > params.CurbThickness+params.Hysteresis {
		return Sample{Surface: Unknown}, false
	}
	return classifyDistance(d, params, prev), true
}

// Locate classifies p against the tile under it, falling back to the
// stitched loops where the tile has no roadway or there is no tile. The
// returned tile is nil when no tile covers p.
func Locate(p geo.Point2D, tiles tile.Lookup, loops []geo.Polygon, params tile.Params, prev Surface) (Sample, *tile.Tile) {
	s := Sample{Surface: Unknown}
	var found *tile.Tile
	if t, ok := tiles.TileAt(p); ok {
		found = &t
		s = Classify(p, t, params, prev)
	}
	if s.Surface == Unknown && len(loops) > 0 {
		if ls, ok := ClassifyLoops(p, loops, params, prev); ok {
			s = ls
		}
	}
	return s, found
}

func classifyDistance(d float64, params tile.Params, prev Surface) Sample {
	h := params.Hysteresis
	roadLimit := -h
	offLimit := params.CurbThickness + h
	switch prev {
	case Roadway:
		roadLimit = h
	case OffRoad:
		offLimit = params.CurbThickness - h
	}

	s := Curb
	switch {
	case d < roadLimit || (prev == Roadway && d <= roadLimit):
		s = Roadway
	case d > offLimit || (prev == OffRoad && d >= offLimit):
		s = OffRoad
	}
	return Sample{Surface: s, Distance: d}
}

// Height returns the deck height of a surface.
func Height(s Surface, params tile.Params) float64 {
	switch s {
	case Curb, OffRoad:
		return params.CurbHeight
	}
	return 0
}
