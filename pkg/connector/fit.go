package connector

import (
	"math"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
)

// Family is the Dubins word of a fitted path: turn, straight, turn.
type Family uint8

const (
	FamilyNone Family = iota
	FamilyLSL
	FamilyRSR
	FamilyLSR
	FamilyRSL
)

var familyNames = [...]string{"none", "LSL", "RSR", "LSR", "RSL"}

func (f Family) String() string {
	if int(f) >= len(familyNames) {
		return "unknown"
	}
	return familyNames[f]
}

// SameHanded reports whether both turns go the same way.
func (f Family) SameHanded() bool {
	return f == FamilyLSL || f == FamilyRSR
}

func (f Family) turns() (s0, s1 float64) {
	switch f {
	case FamilyLSL:
		return 1, 1
	case FamilyRSR:
		return -1, -1
	case FamilyLSR:
		return 1, -1
	case FamilyRSL:
		return -1, 1
	}
	return 0, 0
}

// Kind is the type of a connector piece.
type Kind uint8

const (
	KindArc Kind = iota
	KindStraight
)

func (k Kind) String() string {
	if k == KindStraight {
		return "straight"
	}
	return "arc"
}

// Piece is one arc or straight of a connector. Arc pieces use Center,
// Radius, StartAngle, Turn (+1 counterclockwise, -1 clockwise) and the
// signed sweep Delta. Straight pieces use Start, End and Dir.
type Piece struct {
	Kind       Kind        `json:"kind"`
	Center     geo.Point2D `json:"center,omitempty"`
	Radius     float64     `json:"radius,omitempty"`
	StartAngle float64     `json:"start_angle,omitempty"`
	Turn       int         `json:"turn,omitempty"`
	Delta      float64     `json:"delta,omitempty"`
	Start      geo.Point2D `json:"start"`
	End        geo.Point2D `json:"end"`
	Dir        geo.Point2D `json:"dir,omitempty"`
}

// Length returns the path length of the piece.
func (p Piece) Length() float64 {
	if p.Kind == KindArc {
		return p.Radius * math.Abs(p.Delta)
	}
	return p.Start.Distance(p.End)
}

// StartTangent returns the unit travel direction at the start of the piece.
func (p Piece) StartTangent() geo.Point2D {
	if p.Kind == KindArc {
		return arcTangent(p.StartAngle, float64(p.Turn))
	}
	return p.Dir
}

// EndTangent returns the unit travel direction at the end of the piece.
func (p Piece) EndTangent() geo.Point2D {
	if p.Kind == KindArc {
		return arcTangent(p.StartAngle+p.Delta, float64(p.Turn))
	}
	return p.Dir
}

// Points samples the piece, including both ends.
func (p Piece) Points(angleStep float64) []geo.Point2D {
	if p.Kind == KindStraight {
		return []geo.Point2D{p.Start, p.End}
	}
	n := geo.ArcSegmentCount(p.Delta, angleStep)
	pts := geo.ArcPoints(p.Center, p.Radius, p.StartAngle, p.Delta, n)
	pts[0], pts[n] = p.Start, p.End
	return pts
}

func arcTangent(angle, turn float64) geo.Point2D {
	return geo.Pt(math.Cos(angle), math.Sin(angle)).Perp().Scale(turn)
}

// Connector is a fitted curb curve from pole A to pole B.
type Connector struct {
	A        Pole    `json:"a"`
	B        Pole    `json:"b"`
	Family   Family  `json:"family"`
	Pieces   []Piece `json:"pieces"`
	Radius   float64 `json:"radius"`
	StartDot float64 `json:"start_dot"`
	EndDot   float64 `json:"end_dot"`
	Valid    bool    `json:"valid"`
	Reason   string  `json:"reason,omitempty"`
}

// Length returns the total path length.
func (c Connector) Length() float64 {
	total := 0.0
	for _, p := range c.Pieces {
		total += p.Length()
	}
	return total
}

// Points flattens the connector into a polyline from A to B. Arcs are
// sampled with at most angleStep radians per chord.
func (c Connector) Points(angleStep float64) []geo.Point2D {
	var pl geo.Polyline
	for _, p := range c.Pieces {
		pl.AppendDistinct(1e-9, p.Points(angleStep)...)
	}
	return pl.Points
}

// Params bounds connector fitting.
type Params struct {
	MaxRadius      float64
	MinTangencyDot float64
	AngleStep      float64
}

// DefaultParams returns the fitting bounds for a turn radius.
func DefaultParams(maxRadius float64) Params {
	return Params{MaxRadius: maxRadius, MinTangencyDot: 0.92, AngleStep: math.Pi / 32}
}

// ParamsFromSpec copies the connector settings of a (defaulted) city spec.
func ParamsFromSpec(s *spec.CitySpec) Params {
	c := s.Connectors
	return Params{MaxRadius: c.MaxRadius, MinTangencyDot: c.MinTangencyDot, AngleStep: c.AngleStep}
}

const (
	fitEpsilon = 1e-9
	// endTolerance is the relative distance the fitted end may miss pole B by.
	endTolerance = 1e-6
)

// Fit joins pole A to pole B with the shortest two-arc-and-straight path
// of a single radius. The path leaves A heading into the junction and
// arrives at B heading out along B's road. Only same-handed paths (LSL,
// RSR) are valid; any other best path, excess turning or tangency below
// MinTangencyDot marks the connector invalid.
func Fit(a, b Pole, p Params) Connector {
	c := Connector{A: a, B: b}
	h0, h1 := a.Inward(), b.Outward()
	if h0.IsZero() || h1.IsZero() {
		c.Reason = "pole without road direction"
		return c
	}
	if a.Pos.Near(b.Pos, fitEpsilon) {
		c.Reason = "coincident poles"
		return c
	}

	r := turnRadius(a.Pos, h0, b.Pos, h1, p.MaxRadius)
	if !(r > fitEpsilon) {
		c.Reason = "degenerate radius"
		return c
	}
	c.Radius = r

	best := math.Inf(1)
	for _, f := range []Family{FamilyLSL, FamilyRSR, FamilyLSR, FamilyRSL} {
		pieces, ok := csc(a.Pos, h0, b.Pos, h1, r, f)
		if !ok {
			continue
		}
		l := 0.0
		for _, pc := range pieces {
			l += pc.Length()
		}
		if l < best-fitEpsilon {
			best = l
			c.Family = f
			c.Pieces = pieces
		}
	}
	if c.Family == FamilyNone {
		c.Reason = "no feasible path"
		return c
	}

	first, last := c.Pieces[0], c.Pieces[len(c.Pieces)-1]
	c.StartDot = first.StartTangent().Dot(h0)
	c.EndDot = last.EndTangent().Dot(h1)

	turning := 0.0
	for _, pc := range c.Pieces {
		if pc.Kind == KindArc {
			turning += math.Abs(pc.Delta)
		}
	}

	switch {
	case !c.Family.SameHanded():
		c.Reason = "mixed turn family " + c.Family.String()
	case turning > math.Pi+1e-9:
		c.Reason = "turns more than half a circle"
	case last.End.Distance(b.Pos) > endTolerance*math.Max(1, r):
		c.Reason = "end point mismatch"
	case c.StartDot < p.MinTangencyDot || c.EndDot < p.MinTangencyDot:
		c.Reason = "tangency below threshold"
	default:
		c.Valid = true
	}
	return c
}

// turnRadius picks the radius of the circle inscribed between the two
// pole tangent lines when they meet ahead of A and behind B, bounded by
// maxRadius. Otherwise the maximum radius is used.
func turnRadius(pa, h0, pb, h1 geo.Point2D, maxRadius float64) float64 {
	phi := math.Atan2(h0.Cross(h1), h0.Dot(h1))
	if math.Abs(phi) < 1e-6 {
		return maxRadius
	}
	_, t, u, ok := geo.LineIntersection(pa, h0, pb, h1)
	if !ok || t <= 0 || u >= 0 {
		return maxRadius
	}
	d := math.Min(t, -u)
	return math.Min(maxRadius, d/math.Tan(math.Abs(phi)/2))
}

// csc builds one Dubins word. Arc centres sit r to the turning side of
// each pole; the straight runs along an outer (same-handed) or inner
// (opposite-handed) tangent of the two circles.
func csc(pa, h0, pb, h1 geo.Point2D, r float64, f Family) ([]Piece, bool) {
	s0, s1 := f.turns()
	c0 := pa.Add(h0.Perp().Scale(s0 * r))
	c1 := pb.Add(h1.Perp().Scale(s1 * r))
	v := c1.Sub(c0)
	dist := v.Length()

	var u geo.Point2D
	if s0 == s1 {
		if dist < fitEpsilon {
			u = h1
		} else {
			u = v.Scale(1 / dist)
		}
	} else {
		if dist < 2*r {
			return nil, false
		}
		l := math.Sqrt(dist*dist - 4*r*r)
		beta := math.Atan2(2*r, l)
		u = v.Scale(1 / dist).Rotate(s0 * beta)
	}

	t0 := c0.Sub(u.Perp().Scale(s0 * r))
	t1 := c1.Sub(u.Perp().Scale(s1 * r))

	var pieces []Piece
	if arc, ok := arcPiece(c0, r, pa, t0, s0); ok {
		pieces = append(pieces, arc)
	}
	if t0.Distance(t1) > fitEpsilon {
		pieces = append(pieces, Piece{Kind: KindStraight, Start: t0, End: t1, Dir: t1.Sub(t0).Normalize()})
	}
	if arc, ok := arcPiece(c1, r, t1, pb, s1); ok {
		pieces = append(pieces, arc)
	}
	return pieces, len(pieces) > 0
}

// arcPiece sweeps from one point to another around center in the turn
// direction. A sweep that is numerically a full circle is treated as zero.
func arcPiece(center geo.Point2D, r float64, from, to geo.Point2D, turn float64) (Piece, bool) {
	a0 := from.Sub(center).Angle()
	a1 := to.Sub(center).Angle()
	sweep := geo.NormalizeAngle(turn * (a1 - a0))
	if sweep > geo.TwoPi-1e-9 {
		sweep = 0
	}
	if sweep < 1e-12 {
		return Piece{}, false
	}
	return Piece{
		Kind:       KindArc,
		Center:     center,
		Radius:     r,
		StartAngle: a0,
		Turn:       int(turn),
		Delta:      turn * sweep,
		Start:      from,
		End:        to,
	}, true
}
