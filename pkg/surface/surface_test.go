package surface

import (
	"math"
	"testing"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/junction"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func twoWay() tile.LaneCount { return tile.LaneCount{Forward: 1, Backward: 1} }

func straightTile(axis tile.Axis) tile.Tile {
	mask := tile.Mask(tile.East | tile.West)
	if axis == tile.AxisNS {
		mask = tile.Mask(tile.North | tile.South)
	}
	return tile.Tile{Center: geo.Origin, Info: tile.Info{Axis: axis, Mask: mask, EW: twoWay(), NS: twoWay()}}
}

func TestStraightBeyondHalfWidthIsCurb(t *testing.T) {
	p := tile.DefaultParams(20)
	tl := straightTile(tile.AxisEW)

	s := Classify(geo.Pt(2, 3.55+0.1), tl, p, Unknown)
	if s.Surface != Curb {
		t.Errorf("surface = %s, want curb", s.Surface)
	}
	if !approxEqual(s.Distance, 0.1, 1e-9) {
		t.Errorf("distance = %f, want 0.1", s.Distance)
	}
	if s := Classify(geo.Pt(-4, -3.4), tl, p, Unknown); s.Surface != Roadway {
		t.Errorf("inside lane = %s, want roadway", s.Surface)
	}
	if s := Classify(geo.Pt(0, 4.0), tl, p, Unknown); s.Surface != OffRoad {
		t.Errorf("sidewalk = %s, want off_road", s.Surface)
	}
}

func TestStraightNSUsesX(t *testing.T) {
	p := tile.DefaultParams(20)
	tl := straightTile(tile.AxisNS)
	d, ok := Distance(geo.Pt(-3.65, 7), tl, p)
	if !ok || !approxEqual(d, 0.1, 1e-9) {
		t.Errorf("distance = %f, %v", d, ok)
	}
}

func TestHysteresisKeepsPreviousSurface(t *testing.T) {
	p := tile.DefaultParams(20)
	tl := straightTile(tile.AxisEW)

	tests := []struct {
		name string
		z    float64
		prev Surface
		want Surface
	}{
		{"just outside edge, fresh", 3.57, Unknown, Curb},
		{"just outside edge, was roadway", 3.57, Roadway, Roadway},
		{"just inside edge, was curb", 3.52, Curb, Curb},
		{"well inside, was curb", 3.45, Curb, Roadway},
		{"curb outer band, fresh", 3.88, Unknown, Curb},
		{"curb outer band, was curb", 3.88, Curb, Curb},
		{"curb outer band, was off road", 3.88, OffRoad, OffRoad},
		{"back on curb, was off road", 3.75, OffRoad, Curb},
		{"far out, was roadway", 4.5, Roadway, OffRoad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(geo.Pt(0, tt.z), tl, p, tt.prev).Surface; got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIntersectionCoversTile(t *testing.T) {
	p := tile.DefaultParams(20)
	tl := tile.Tile{Center: geo.Pt(20, 20), Info: tile.Info{Axis: tile.AxisIntersection, Mask: 0x0f, EW: twoWay(), NS: twoWay()}}

	if s := Classify(geo.Pt(20, 20), tl, p, Unknown); s.Surface != Roadway || !approxEqual(s.Distance, -10, 1e-9) {
		t.Errorf("centre = %+v", s)
	}
	if s := Classify(geo.Pt(29.9, 29.9), tl, p, Unknown); s.Surface != Roadway {
		t.Errorf("corner = %+v", s)
	}
	if s := Classify(geo.Pt(30.2, 20), tl, p, Unknown); s.Surface != Curb {
		t.Errorf("past edge = %+v", s)
	}
}

func TestNoneTileIsUnknown(t *testing.T) {
	p := tile.DefaultParams(20)
	if s := Classify(geo.Origin, tile.Tile{}, p, Roadway); s.Surface != Unknown {
		t.Errorf("surface = %s, want unknown", s.Surface)
	}
}

type roadCapture struct {
	planes []junction.Plane
	rings  []junction.RingSector
}

func (c *roadCapture) AddPlane(p junction.Plane) { c.planes = append(c.planes, p) }
func (c *roadCapture) AddBox(junction.Box) {}
func (c *roadCapture) AddArcSolidKey(junction.ArcSolid) {}
func (c *roadCapture) AddRingSectorKey(r junction.RingSector) { c.rings = append(c.rings, r) }
func (c *roadCapture) AddGeometryKey(junction.Key, junction.Geometry) {}

// TestCornerAgreesWithEmittedAsphalt samples the boundary of the asphalt
// the generator emits for a corner and checks the classifier puts its zero
// crossing there.
func TestCornerAgreesWithEmittedAsphalt(t *testing.T) {
	p := tile.DefaultParams(20)
	p.TurnRadius = 6
	tl := tile.Tile{
		Center: geo.Pt(40, 20),
		Info:   tile.Info{Axis: tile.AxisCorner, Mask: tile.Mask(tile.North | tile.East), EW: twoWay(), NS: twoWay()},
	}
	road := &roadCapture{}
	if err := junction.Emit(tl, &junction.Context{Params: p, Palette: junction.DefaultPalette(), Road: road}); err != nil {
		t.Fatal(err)
	}
	if len(road.rings) != 1 || len(road.planes) != 2 {
		t.Fatalf("emitted %d rings and %d planes", len(road.rings), len(road.planes))
	}

	ring := road.rings[0]
	for i := 1; i < 8; i++ {
		a := ring.StartAngle + ring.Span*float64(i)/8
		for _, r := range []float64{ring.InnerRadius, ring.OuterRadius} {
			pt := geo.Polar(ring.Center, r, a)
			d, ok := Distance(pt, tl, p)
			if !ok || !approxEqual(d, 0, 1e-9) {
				t.Errorf("angle %.3f radius %.2f: distance %f, want 0", a, r, d)
			}
		}
		out := geo.Polar(ring.Center, ring.OuterRadius+0.1, a)
		if s := Classify(out, tl, p, Unknown); s.Surface != Curb {
			t.Errorf("angle %.3f: just outside = %s, want curb", a, s.Surface)
		}
		in := geo.Polar(ring.Center, ring.OuterRadius-0.1, a)
		if s := Classify(in, tl, p, Unknown); s.Surface != Roadway {
			t.Errorf("angle %.3f: just inside = %s, want roadway", a, s.Surface)
		}
		far := geo.Polar(ring.Center, ring.OuterRadius+p.CurbThickness+0.1, a)
		if s := Classify(far, tl, p, Unknown); s.Surface != OffRoad {
			t.Errorf("angle %.3f: beyond curb = %s, want off_road", a, s.Surface)
		}
	}

	hw := (ring.OuterRadius - ring.InnerRadius) / 2
	mid := geo.Polar(ring.Center, (ring.InnerRadius+ring.OuterRadius)/2, ring.StartAngle+ring.Span/2)
	if d, _ := Distance(mid, tl, p); !approxEqual(d, -hw, 1e-9) {
		t.Errorf("arc centre line distance = %f, want %f", d, -hw)
	}

	for _, leg := range road.planes {
		var edges [2]geo.Point2D
		if approxEqual(leg.Center.X, tl.Center.X, 1e-9) {
			edges = [2]geo.Point2D{leg.Center.Add(geo.Pt(leg.SizeX/2, 0)), leg.Center.Add(geo.Pt(-leg.SizeX/2, 0))}
		} else {
			edges = [2]geo.Point2D{leg.Center.Add(geo.Pt(0, leg.SizeZ/2)), leg.Center.Add(geo.Pt(0, -leg.SizeZ/2))}
		}
		for _, e := range edges {
			if d, _ := Distance(e, tl, p); !approxEqual(d, 0, 1e-9) {
				t.Errorf("leg edge %v: distance %f, want 0", e, d)
			}
		}
	}
}

func TestCornerOutsideSpanIsPositive(t *testing.T) {
	p := tile.DefaultParams(20)
	tl := tile.Tile{Info: tile.Info{Axis: tile.AxisCorner, Mask: tile.Mask(tile.South | tile.West), EW: twoWay(), NS: twoWay()}}
	// The south-west turn does not reach the north-east quarter.
	d, ok := Distance(geo.Pt(9, 9), tl, p)
	if !ok || d <= p.CurbThickness {
		t.Errorf("distance = %f, want off road", d)
	}
	if math.IsInf(d, 0) || math.IsNaN(d) {
		t.Errorf("distance = %f, want finite", d)
	}
}

func BenchmarkClassify(b *testing.B) {
	p := tile.DefaultParams(20)
	tl := tile.Tile{Info: tile.Info{Axis: tile.AxisCorner, Mask: tile.Mask(tile.North | tile.East), EW: twoWay(), NS: twoWay()}}
	pts := []geo.Point2D{geo.Pt(-3, 5), geo.Pt(2, 2), geo.Pt(8, -3.6), geo.Pt(-9, -9)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Classify(pts[i%len(pts)], tl, p, Roadway)
	}
}

func TestParseSurface(t *testing.T) {
	for _, s := range []Surface{Unknown, Roadway, Curb, OffRoad} {
		got, err := ParseSurface(s.String())
		if err != nil || got != s {
			t.Errorf("ParseSurface(%q) = %v, %v", s.String(), got, err)
		}
	}
	if got, err := ParseSurface("OFF_ROAD"); err != nil || got != OffRoad {
		t.Errorf("case-insensitive parse = %v, %v", got, err)
	}
	if _, err := ParseSurface("gravel"); err == nil {
		t.Error("expected error for unknown surface")
	}
}

func square(x0, z0, side float64) geo.Polygon {
	return geo.NewPolygon(geo.Pt(x0, z0), geo.Pt(x0+side, z0), geo.Pt(x0+side, z0+side), geo.Pt(x0, z0+side))
}

func TestLoopDistance(t *testing.T) {
	sq := square(0, 0, 10)
	tests := []struct {
		p    geo.Point2D
		want float64
	}{
		{geo.Pt(5, 5), -5},
		{geo.Pt(1, 5), -1},
		{geo.Pt(5, 12), 2},
		{geo.Pt(12, 12), math.Sqrt(8)},
	}
	for _, tt := range tests {
		if got := LoopDistance(tt.p, sq); !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("LoopDistance(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
	if d := LoopDistance(geo.Pt(0, 0), geo.NewPolygon(geo.Pt(0, 0), geo.Pt(1, 0))); !math.IsInf(d, 1) {
		t.Errorf("degenerate loop distance = %f, want +Inf", d)
	}
}

func TestLocateFallsBackToLoops(t *testing.T) {
	p := tile.DefaultParams(20)
	m := straightMap()
	loopsAt := []geo.Polygon{square(100, 100, 10)}

	s, tl := Locate(geo.Pt(0, 1), m, loopsAt, p, Unknown)
	if s.Surface != Roadway || tl == nil || tl.Coord != (tile.Coord{}) {
		t.Errorf("on tile: %+v tile %v", s, tl)
	}

	tests := []struct {
		p    geo.Point2D
		want Surface
	}{
		{geo.Pt(105, 105), Roadway},
		{geo.Pt(110+p.CurbThickness/2, 105), Curb},
		{geo.Pt(112, 105), Unknown},
	}
	for _, tt := range tests {
		s, tl := Locate(tt.p, m, loopsAt, p, Unknown)
		if s.Surface != tt.want || tl != nil {
			t.Errorf("Locate(%v) = %s tile %v, want %s and no tile", tt.p, s.Surface, tl, tt.want)
		}
	}
	if s, _ := Locate(geo.Pt(105, 105), m, nil, p, Unknown); s.Surface != Unknown {
		t.Errorf("without loops = %s, want unknown", s.Surface)
	}
}
