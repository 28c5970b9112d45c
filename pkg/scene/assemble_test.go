package scene

import (
	"sort"
	"testing"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/junction"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

func loadCity(t testing.TB) *spec.CitySpec {
	t.Helper()
	s, err := spec.LoadProject("../../examples/default-city")
	if err != nil {
		t.Fatalf("loading city: %v", err)
	}
	return s
}

func generateTestOutput(t *testing.T) *Output {
	t.Helper()
	out, err := Generate(loadCity(t), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return out
}

func TestGenerateProducesValidScene(t *testing.T) {
	out := generateTestOutput(t)
	if !out.Report.Valid {
		for _, e := range out.Report.Errors {
			t.Logf("  error: %s", e.Message)
		}
		t.Fatalf("report invalid: %s", out.Report.Summary)
	}
	for _, w := range out.Report.Warnings {
		t.Logf("  warning: %s", w.Message)
	}

	g := out.Scene
	if g.Metadata.Tiles != 20 {
		t.Errorf("tiles = %d, want 20", g.Metadata.Tiles)
	}
	if g.Metadata.Edges != len(out.Topology.Edges()) {
		t.Errorf("edges metadata = %d, topology has %d", g.Metadata.Edges, len(out.Topology.Edges()))
	}
	if g.Metadata.Fingerprint == "" {
		t.Error("fingerprint not set")
	}
	for _, layer := range Layers {
		if len(g.Groups.Layers[layer]) == 0 {
			t.Errorf("layer %s is empty", layer)
		}
	}
}

func TestGenerateClassifiesTiles(t *testing.T) {
	out := generateTestOutput(t)
	check := func(c tile.Coord, axis tile.Axis) {
		t.Helper()
		tl, ok := out.Tiles.Tile(c)
		if !ok {
			t.Fatalf("tile %v missing", c)
		}
		if tl.Info.Axis != axis {
			t.Errorf("tile %v = %s, want %s", c, tl.Info.Axis, axis)
		}
	}
	check(tile.Coord{X: 3, Z: 0}, tile.AxisIntersection)
	check(tile.Coord{X: 3, Z: 3}, tile.AxisIntersection)
	check(tile.Coord{X: 6, Z: 0}, tile.AxisCorner)
	check(tile.Coord{X: 6, Z: 3}, tile.AxisCorner)
	check(tile.Coord{X: 1, Z: 0}, tile.AxisEW)
	check(tile.Coord{X: 3, Z: 1}, tile.AxisNS)
	// Authored override turns the end of the one-way road into a corner.
	check(tile.Coord{X: 0, Z: 3}, tile.AxisCorner)
}

func TestGenerateStitchesFreeFormJunction(t *testing.T) {
	out := generateTestOutput(t)
	if len(out.Patches) != 1 {
		t.Fatalf("patches = %d, want 1 (the world-space three-way junction)", len(out.Patches))
	}
	p := out.Patches[0]
	n, _ := out.Topology.Node(p.Node)
	if !n.Pos.Near(geo.Pt(150, -100), 1e-9) {
		t.Errorf("patch node at %v", n.Pos)
	}
	if len(p.Valid()) != 3 {
		t.Errorf("valid connectors = %d, want 3", len(p.Valid()))
	}
	if len(out.Loops) != 1 || out.Scene.Metadata.Loops != 1 {
		t.Fatalf("loops = %d (metadata %d), want 1", len(out.Loops), out.Scene.Metadata.Loops)
	}

	var loopEntities int
	for key, m := range out.Scene.Meshes {
		if m.Type == EntityPolygon && len(out.Scene.Groups.Meshes[key]) > 0 {
			e := entityByID(out.Scene, out.Scene.Groups.Meshes[key][0])
			if e.Layer == LayerRoad {
				loopEntities++
				if !n.Pos.Near(geo.Pt(e.Position.X, e.Position.Z), 30) {
					t.Errorf("loop entity %s at (%f,%f) far from junction", e.ID, e.Position.X, e.Position.Z)
				}
			}
		}
	}
	if loopEntities != 1 {
		t.Errorf("road polygon meshes = %d, want 1", loopEntities)
	}
}

func entityByID(g *Graph, id string) Entity {
	for _, e := range g.Entities {
		if e.ID == id {
			return e
		}
	}
	return Entity{}
}

func meshKeys(g *Graph) []string {
	keys := make([]string, 0, len(g.Meshes))
	for k := range g.Meshes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestGenerateIsIdempotent(t *testing.T) {
	a := generateTestOutput(t)
	b := generateTestOutput(t)

	if a.Scene.Metadata.Fingerprint != b.Scene.Metadata.Fingerprint {
		t.Error("fingerprints differ between runs")
	}
	ka, kb := meshKeys(a.Scene), meshKeys(b.Scene)
	if len(ka) != len(kb) {
		t.Fatalf("mesh count %d vs %d", len(ka), len(kb))
	}
	for i := range ka {
		if ka[i] != kb[i] {
			t.Fatalf("mesh key %d: %q vs %q", i, ka[i], kb[i])
		}
		if a.Scene.Meshes[ka[i]].Uses != b.Scene.Meshes[kb[i]].Uses {
			t.Errorf("mesh %q uses differ", ka[i])
		}
	}
	if len(a.Scene.Entities) != len(b.Scene.Entities) {
		t.Fatalf("entity count %d vs %d", len(a.Scene.Entities), len(b.Scene.Entities))
	}
	for i := range a.Scene.Entities {
		ea, eb := a.Scene.Entities[i], b.Scene.Entities[i]
		if ea.ID != eb.ID || ea.Mesh != eb.Mesh || ea.Position != eb.Position {
			t.Fatalf("entity %d differs: %+v vs %+v", i, ea, eb)
		}
	}
}

func TestGenerateSharesCornerMeshes(t *testing.T) {
	s := loadCity(t)
	// Two identical north-east turns share every keyed mesh.
	s.Segments = []spec.SegmentDef{
		{ID: "a", A: [2]float64{0, 0}, B: [2]float64{0, 2}, Space: spec.SpaceTile, LanesF: 1, LanesB: 1},
		{ID: "b", A: [2]float64{0, 2}, B: [2]float64{2, 2}, Space: spec.SpaceTile, LanesF: 1, LanesB: 1},
		{ID: "c", A: [2]float64{5, 0}, B: [2]float64{5, 2}, Space: spec.SpaceTile, LanesF: 1, LanesB: 1},
		{ID: "d", A: [2]float64{5, 2}, B: [2]float64{7, 2}, Space: spec.SpaceTile, LanesF: 1, LanesB: 1},
	}
	s.Tiles = nil
	out, err := Generate(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Report.Valid {
		t.Fatalf("report: %s", out.Report.Summary)
	}
	if len(out.Scene.Meshes) == 0 {
		t.Fatal("no keyed meshes recorded")
	}
	for key, m := range out.Scene.Meshes {
		if m.Uses != 2 {
			t.Errorf("mesh %q used %d times, want 2", key, m.Uses)
		}
		if m.Conflicts != 0 {
			t.Errorf("mesh %q has %d conflicts", key, m.Conflicts)
		}
	}
}

func TestGenerateDebugOnlySkipsDetails(t *testing.T) {
	s := loadCity(t)
	s.Road.DebugOnly = true
	out, err := Generate(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(out.Scene.Groups.Layers[LayerCurbs]); n != 0 {
		t.Errorf("debug-only scene has %d curb entities", n)
	}
	if n := len(out.Scene.Groups.Layers[LayerSidewalks]); n != 0 {
		t.Errorf("debug-only scene has %d sidewalk entities", n)
	}
	if len(out.Scene.Groups.Layers[LayerRoad]) == 0 {
		t.Error("debug-only scene has no roadway")
	}
}

func TestGenerateRejectsBadTileSize(t *testing.T) {
	s := loadCity(t)
	s.TileSize = 0
	if _, err := Generate(s, nil); err == nil {
		t.Error("expected error for zero tile size")
	}
}

func TestGenerateReportsBadOverride(t *testing.T) {
	s := loadCity(t)
	s.Tiles = append(s.Tiles, spec.TileDef{X: 9, Z: 9, Connections: []string{"up"}})
	if _, err := Generate(s, nil); err == nil {
		t.Error("expected error for unknown override direction")
	}
}

func TestRecorderDedupsKeys(t *testing.T) {
	g := NewGraph()
	r := g.Recorder(LayerCurbs)
	arc := junction.ArcSolid{
		Key:          junction.Key{Shape: junction.ShapeArcSolid, Part: junction.PartCurbOuter, Dims: [3]int64{10150, 300, 16}},
		Center:       geo.Pt(10, 10),
		RadiusCenter: 10.15,
		Width:        0.3,
		Height:       0.15,
		Span:         1.5707963267948966,
		Segments:     16,
	}
	r.AddArcSolidKey(arc)
	arc.Center = geo.Pt(50, 10)
	r.AddArcSolidKey(arc)

	if len(g.Meshes) != 1 || len(g.Entities) != 2 {
		t.Fatalf("meshes = %d, entities = %d", len(g.Meshes), len(g.Entities))
	}
	m := g.Meshes[arc.Key.String()]
	if m.Uses != 2 || m.Conflicts != 0 {
		t.Errorf("mesh = %+v", m)
	}
	if g.Entities[0].ID == g.Entities[1].ID {
		t.Error("entity IDs collide")
	}

	arc.RadiusCenter = 12
	r.AddArcSolidKey(arc)
	if g.Meshes[arc.Key.String()].Conflicts != 1 {
		t.Error("expected a conflict for different geometry under one key")
	}
	g.Metadata.CityBounds = computeBounds(g.Entities)
	if rep := ValidateGraph(g); len(rep.Warnings) != 1 {
		t.Errorf("warnings = %d, want 1 for the key conflict", len(rep.Warnings))
	}
}

func TestRecorderGeometryBounds(t *testing.T) {
	g := NewGraph()
	g.Recorder(LayerSidewalks).AddGeometryKey(
		junction.Key{Shape: junction.ShapePolygon, Part: junction.PartSidewalkCorner},
		junction.Geometry{
			Polygon: geo.NewPolygon(geo.Pt(0, 0), geo.Pt(4, 0), geo.Pt(4, 2), geo.Pt(0, 2)),
			Offset:  geo.Pt(100, 50),
			Y:       0.15,
		},
	)
	e := g.Entities[0]
	if e.Position != (Vec3{X: 102, Y: 0.15, Z: 51}) {
		t.Errorf("position = %+v", e.Position)
	}
	if e.Dimensions.X != 4 || e.Dimensions.Z != 2 {
		t.Errorf("dimensions = %+v", e.Dimensions)
	}
	if origin := e.Metadata["origin"].([2]float64); origin != [2]float64{100, 50} {
		t.Errorf("origin = %v", origin)
	}
}
