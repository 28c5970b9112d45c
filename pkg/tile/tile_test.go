package tile

import (
	"math"
	"testing"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
	"github.com/ChicagoDave/roadgrid/pkg/topology"
)

const tolerance = 1e-9

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestClassify(t *testing.T) {
	cases := []struct {
		mask Mask
		want Axis
	}{
		{0, AxisNone},
		{Mask(East), AxisEW},
		{Mask(East | West), AxisEW},
		{Mask(North), AxisNS},
		{Mask(North | South), AxisNS},
		{Mask(North | East), AxisCorner},
		{Mask(South | West), AxisCorner},
		{Mask(North | East | West), AxisIntersection},
		{Mask(North | East | South | West), AxisIntersection},
	}
	for _, c := range cases {
		if got := Classify(c.mask); got != c.want {
			t.Errorf("Classify(%s) = %s, want %s", c.mask, got, c.want)
		}
	}
}

func TestMaskSigns(t *testing.T) {
	cases := []struct {
		mask   Mask
		sx, sz float64
	}{
		{Mask(North | East), 1, 1},
		{Mask(North | West), -1, 1},
		{Mask(South | East), 1, -1},
		{Mask(South | West), -1, -1},
	}
	for _, c := range cases {
		sx, sz := c.mask.Signs()
		if sx != c.sx || sz != c.sz {
			t.Errorf("%s signs = (%v,%v), want (%v,%v)", c.mask, sx, sz, c.sx, c.sz)
		}
	}
}

func TestJunctionType(t *testing.T) {
	if Mask(North|South).Junction() != JunctionStraight {
		t.Error("N|S should be straight")
	}
	if Mask(North|East).Junction() != JunctionCorner {
		t.Error("N|E should be a corner")
	}
	if Mask(North|East|South).Junction() != JunctionTee {
		t.Error("three connections should be a tee")
	}
	if Mask(North|East|South|West).Junction() != JunctionCross {
		t.Error("four connections should be a cross")
	}
}

func TestHalfWidthTwoLanes(t *testing.T) {
	p := DefaultParams(20)
	got := p.HalfWidth(LaneCount{Forward: 1, Backward: 1})
	if !approxEqual(got, 3.55, tolerance) {
		t.Errorf("half width = %f, want 3.55", got)
	}
}

func TestHalfWidthOneWayMinimum(t *testing.T) {
	p := DefaultParams(20)
	oneWay := p.HalfWidth(LaneCount{Forward: 1})
	twoWay := p.HalfWidth(LaneCount{Forward: 1, Backward: 1})
	if !approxEqual(oneWay, twoWay, tolerance) {
		t.Errorf("one-way half width %f should be widened to %f", oneWay, twoWay)
	}
	if wide := p.HalfWidth(LaneCount{Forward: 3}); !approxEqual(wide, 3*3.2/2+0.35, tolerance) {
		t.Errorf("three-lane one-way half width = %f", wide)
	}
}

func TestCornerNorthEast(t *testing.T) {
	p := DefaultParams(20)
	c := p.Corner(Info{Axis: AxisCorner, Mask: Mask(North | East), EW: LaneCount{1, 1}, NS: LaneCount{1, 1}})
	if c.SignX != 1 || c.SignZ != 1 {
		t.Fatalf("signs = (%v,%v), want (1,1)", c.SignX, c.SignZ)
	}
	if !approxEqual(c.StartAngle, math.Pi, tolerance) {
		t.Errorf("start angle = %f, want pi", c.StartAngle)
	}
	if c.Radius < c.HalfWidth+p.CurbThickness || c.Radius > p.Half() {
		t.Errorf("radius %f outside [%f, %f]", c.Radius, c.HalfWidth+p.CurbThickness, p.Half())
	}
	lo, hi := p.MinFillet, math.Min(c.CornerXEff, c.CornerZEff)
	if c.Fillet < lo-tolerance || c.Fillet > hi+tolerance {
		t.Errorf("fillet %f outside [%f, %f]", c.Fillet, lo, hi)
	}
}

func TestCornerFilletClamped(t *testing.T) {
	p := DefaultParams(20)
	p.TurnRadius = 100 // clamped down to the tile half
	c := p.Corner(Info{Axis: AxisCorner, Mask: Mask(North | East)})
	if !approxEqual(c.Radius, 10, tolerance) {
		t.Errorf("radius = %f, want 10", c.Radius)
	}
	// R - hw - curb = 10 - 3.55 - 0.3 = 6.15 equals cornerEff.
	if !approxEqual(c.Fillet, 6.15, 1e-9) {
		t.Errorf("fillet = %f, want 6.15", c.Fillet)
	}

	p.TurnRadius = 0.1 // clamped up to hw + curb, fillet clamps to the minimum
	c = p.Corner(Info{Axis: AxisCorner, Mask: Mask(North | East)})
	if !approxEqual(c.Radius, 3.85, tolerance) {
		t.Errorf("radius = %f, want 3.85", c.Radius)
	}
	if !approxEqual(c.Fillet, 0.35, tolerance) {
		t.Errorf("fillet = %f, want 0.35", c.Fillet)
	}
}

func TestQuadrantStartFacesTileCentre(t *testing.T) {
	for _, s := range [][2]float64{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}} {
		start := QuadrantStart(s[0], s[1])
		mid := start + math.Pi/4
		dir := geo.Pt(math.Cos(mid), math.Sin(mid))
		want := geo.Pt(-s[0], -s[1]).Normalize()
		if !dir.Near(want, 1e-9) {
			t.Errorf("signs %v: bisector %v, want %v", s, dir, want)
		}
	}
}

func TestFromGraphClassifiesGrid(t *testing.T) {
	segs := []topology.Segment{
		{ID: "main", A: geo.Pt(0, 0), B: geo.Pt(4, 0), InTileSpace: true, LanesF: 1, LanesB: 1, Rendered: true},
		{ID: "side", A: geo.Pt(2, 0), B: geo.Pt(2, 3), InTileSpace: true, LanesF: 2, LanesB: 0, Rendered: true},
		{ID: "bend", A: geo.Pt(4, 0), B: geo.Pt(4, 2), InTileSpace: true, LanesF: 1, LanesB: 1, Rendered: true},
	}
	g, err := topology.Build(segs, geo.Origin, 20)
	if err != nil {
		t.Fatal(err)
	}
	m := FromGraph(g)

	check := func(c Coord, axis Axis, mask Mask) {
		t.Helper()
		tl, ok := m.Tile(c)
		if !ok {
			t.Fatalf("tile %v not classified", c)
		}
		if tl.Info.Axis != axis || tl.Info.Mask != mask {
			t.Errorf("tile %v = %s/%s, want %s/%s", c, tl.Info.Axis, tl.Info.Mask, axis, mask)
		}
	}
	check(Coord{0, 0}, AxisEW, Mask(East))
	check(Coord{1, 0}, AxisEW, Mask(East|West))
	check(Coord{2, 0}, AxisIntersection, Mask(East|West|North))
	check(Coord{2, 1}, AxisNS, Mask(North|South))
	check(Coord{4, 0}, AxisCorner, Mask(West|North))
	check(Coord{4, 2}, AxisNS, Mask(South))

	tl, _ := m.Tile(Coord{2, 1})
	if tl.Info.NS.Forward != 2 {
		t.Errorf("side road lanes = %+v", tl.Info.NS)
	}
	if at, _ := m.TileAt(geo.Pt(41, 19)); at.Coord != (Coord{2, 1}) {
		t.Errorf("TileAt = %v, want (2,1)", at.Coord)
	}
}

func TestFromGraphSkipsUnrenderedEdges(t *testing.T) {
	segs := []topology.Segment{
		{ID: "shown", A: geo.Pt(0, 0), B: geo.Pt(2, 0), InTileSpace: true, LanesF: 1, LanesB: 1, Rendered: true},
		{ID: "hidden", A: geo.Pt(1, 0), B: geo.Pt(1, 2), InTileSpace: true, LanesF: 1, LanesB: 1},
	}
	g, err := topology.Build(segs, geo.Origin, 20)
	if err != nil {
		t.Fatal(err)
	}
	m := FromGraph(g)
	if m.Len() != 3 {
		t.Errorf("classified %d tiles, want 3", m.Len())
	}
	if tl, _ := m.Tile(Coord{1, 0}); tl.Info.Axis != AxisEW {
		t.Errorf("tile (1,0) = %s, want EW", tl.Info.Axis)
	}
}

func TestApplyOverrides(t *testing.T) {
	m := NewMap(geo.Origin, 20)
	m.Set(Coord{0, 0}, Info{Axis: AxisEW, Mask: Mask(East | West), EW: LaneCount{2, 2}})
	err := m.ApplyOverrides([]spec.TileDef{
		{X: 0, Z: 0, Connections: []string{"N", "E"}},
		{X: 1, Z: 0, Axis: "intersection", Connections: []string{"N", "E", "S", "W"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	tl, _ := m.Tile(Coord{0, 0})
	if tl.Info.Axis != AxisCorner || tl.Info.EW.Total() != 4 {
		t.Errorf("override = %+v", tl.Info)
	}
	if err := m.ApplyOverrides([]spec.TileDef{{Connections: []string{"Q"}}}); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestFromGraphCornerIndependentOfOrder(t *testing.T) {
	grid := topology.Segment{ID: "grid", A: geo.Pt(0, 0), B: geo.Pt(0, 2), InTileSpace: true, LanesF: 1, LanesB: 1, Rendered: true}
	near := topology.Segment{ID: "near", A: geo.Pt(0.0004, 0), B: geo.Pt(40, 0), LanesF: 1, LanesB: 1, Rendered: true}

	for _, segs := range [][]topology.Segment{{grid, near}, {near, grid}} {
		g, err := topology.Build(segs, geo.Origin, 20)
		if err != nil {
			t.Fatal(err)
		}
		tl, ok := FromGraph(g).Tile(Coord{0, 0})
		if !ok || tl.Info.Axis != AxisCorner || tl.Info.Mask != Mask(North|East) {
			t.Errorf("order %s,%s: tile (0,0) = %v %s/%s, want CORNER/NE", segs[0].ID, segs[1].ID, ok, tl.Info.Axis, tl.Info.Mask)
		}
	}
}
