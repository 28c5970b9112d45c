package tile

import (
	"math"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
)

// Params is the road cross-section and junction shaping configuration.
// Every formula that sizes roadway shapes lives on Params so that emitted
// geometry and runtime classification agree by construction.
type Params struct {
	TileSize      float64
	LaneWidth     float64
	Shoulder      float64
	CurbThickness float64
	CurbHeight    float64
	TurnRadius    float64
	MinFillet     float64
	MarkingWidth  float64
	DashLength    float64
	DashGap       float64
	ArcSegments   int
	RoundCorners  bool
	DebugOnly     bool
	Hysteresis    float64
}

// DefaultParams returns the standard cross-section for a tile size.
func DefaultParams(tileSize float64) Params {
	s := &spec.CitySpec{TileSize: tileSize}
	spec.ApplyDefaults(s)
	return ParamsFromSpec(s)
}

// ParamsFromSpec copies the road parameters of a (defaulted) city spec.
func ParamsFromSpec(s *spec.CitySpec) Params {
	r := s.Road
	round := r.RoundCorners == nil || *r.RoundCorners
	return Params{
		TileSize:      s.TileSize,
		LaneWidth:     r.LaneWidth,
		Shoulder:      r.Shoulder,
		CurbThickness: r.CurbThickness,
		CurbHeight:    r.CurbHeight,
		TurnRadius:    r.TurnRadius,
		MinFillet:     r.MinFillet,
		MarkingWidth:  r.MarkingWidth,
		DashLength:    r.DashLength,
		DashGap:       r.DashGap,
		ArcSegments:   r.ArcSegments,
		RoundCorners:  round,
		DebugOnly:     r.DebugOnly,
		Hysteresis:    s.Surface.Hysteresis,
	}
}

// Half returns half the tile size.
func (p Params) Half() float64 {
	return p.TileSize / 2
}

// HalfWidth returns the roadway half width for a lane count: half the lane
// span plus one shoulder. A one-way road is never narrower than two lanes,
// and a tile without lane data is treated as one lane each way.
func (p Params) HalfWidth(l LaneCount) float64 {
	lanes := l.Total()
	if (l.Forward == 0) != (l.Backward == 0) && lanes < 2 {
		lanes = 2
	}
	if lanes <= 0 {
		lanes = 2
	}
	return float64(lanes)*p.LaneWidth/2 + p.Shoulder
}

// LaneSpan returns the half width of the painted lanes without shoulder.
func (p Params) LaneSpan(l LaneCount) float64 {
	return p.HalfWidth(l) - p.Shoulder
}

// StraightLanes returns the lanes that run along a straight tile.
func StraightLanes(info Info) LaneCount {
	if info.Axis == AxisNS {
		return info.NS
	}
	return info.EW
}

// StraightHalfWidth returns the roadway half width of a straight tile.
func (p Params) StraightHalfWidth(info Info) float64 {
	return p.HalfWidth(StraightLanes(info))
}

// IntersectionHalfExtents returns the half extents of the roadway square
// covering an intersection tile.
func (p Params) IntersectionHalfExtents(Info) (halfX, halfZ float64) {
	return p.Half(), p.Half()
}

// CrossHalfWidths returns the half widths of the road running north-south
// (measured along X) and east-west (measured along Z).
func (p Params) CrossHalfWidths(info Info) (nsHalf, ewHalf float64) {
	return p.HalfWidth(info.NS), p.HalfWidth(info.EW)
}

// ClampTurnRadius limits the requested turn radius so that the inner curb
// stays on the near side of the arc centre and the legs fit in the tile.
func (p Params) ClampTurnRadius(halfWidth float64) float64 {
	r := p.TurnRadius
	if r <= 0 {
		r = p.Half()
	}
	return geo.Clamp(r, halfWidth+p.CurbThickness, p.Half())
}

// Fillet returns the rounded sidewalk corner radius for a turn of radius r
// between roads of the given half widths, clamped to
// [MinFillet, min(cornerXeff, cornerZeff)].
func (p Params) Fillet(r, halfWidth, cornerXeff, cornerZeff float64) float64 {
	return geo.Clamp(r-halfWidth-p.CurbThickness, p.MinFillet, math.Min(cornerXeff, cornerZeff))
}

// Corner is the resolved geometry of a corner tile, relative to the tile
// centre.
type Corner struct {
	SignX, SignZ float64
	HalfWidth    float64
	Radius       float64
	ArcCenter    geo.Point2D
	StartAngle   float64
	Span         float64
	CornerXEff   float64
	CornerZEff   float64
	Fillet       float64
}

// Sign returns the quadrant signs as a vector.
func (c Corner) Sign() geo.Point2D {
	return geo.Pt(c.SignX, c.SignZ)
}

// Corner resolves the turn for a corner tile. The arc centre sits at
// (signX·R, signZ·R) from the tile centre and the arc sweeps the quarter
// facing back toward the tile centre.
func (p Params) Corner(info Info) Corner {
	sx, sz := info.Mask.Signs()
	hw := math.Max(p.HalfWidth(info.EW), p.HalfWidth(info.NS))
	r := p.ClampTurnRadius(hw)
	eff := p.Half() - hw - p.CurbThickness
	return Corner{
		SignX:      sx,
		SignZ:      sz,
		HalfWidth:  hw,
		Radius:     r,
		ArcCenter:  geo.Pt(sx*r, sz*r),
		StartAngle: QuadrantStart(sx, sz),
		Span:       math.Pi / 2,
		CornerXEff: eff,
		CornerZEff: eff,
		Fillet:     p.Fillet(r, hw, eff, eff),
	}
}

// QuadrantStart returns the start angle of the quarter circle around a
// centre at (signX, signZ) that faces the origin.
func QuadrantStart(signX, signZ float64) float64 {
	return geo.NormalizeAngle(math.Atan2(-signZ, -signX) - math.Pi/4)
}

// ArcSegmentsFor scales the configured segment count to a sweep.
func (p Params) ArcSegmentsFor(span float64) int {
	n := p.ArcSegments
	if n <= 0 {
		n = 16
	}
	s := int(math.Ceil(float64(n) * math.Abs(span) / (math.Pi / 2)))
	if s < 1 {
		s = 1
	}
	return s
}
