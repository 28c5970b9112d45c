package scene

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/junction"
	"github.com/ChicagoDave/roadgrid/pkg/loops"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
	"github.com/ChicagoDave/roadgrid/pkg/surface"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
	"github.com/ChicagoDave/roadgrid/pkg/topology"
	"github.com/ChicagoDave/roadgrid/pkg/validation"
)

// Output is everything one generation produces.
type Output struct {
	Topology *topology.Graph
	Tiles    *tile.Map
	Params   tile.Params
	Patches  []loops.Patch
	Loops    []loops.Loop
	Scene    *Graph
	Report   *validation.Report
}

// LoopPolygons returns the closed stitched loops as polygons for surface
// queries.
func (o *Output) LoopPolygons() []geo.Polygon {
	var out []geo.Polygon
	for _, l := range o.Loops {
		if l.Closed() {
			out = append(out, l.Polygon())
		}
	}
	return out
}

// Classifier returns a wheel classifier over the generated road, with the
// stitched loops covering junctions no tile describes.
func (o *Output) Classifier(log *zap.Logger) *surface.Classifier {
	c := surface.NewClassifier(o.Params, log)
	c.SetLoops(o.LoopPolygons())
	return c
}

// Generate runs the full pipeline over a defaulted city spec: topology,
// tile classification with authored overrides, per-tile emission, and
// stitched loops for multi-road nodes that no intersection tile covers.
// Recoverable problems are collected in Output.Report.
func Generate(s *spec.CitySpec, log *zap.Logger) (*Output, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	report := validation.NewReport()

	tg, err := topology.NewBuilder(log).Build(
		topology.SegmentsFromSpec(s.Segments),
		geo.Pt(s.Origin.X, s.Origin.Z),
		s.TileSize,
	)
	if err != nil {
		return nil, fmt.Errorf("building topology: %w", err)
	}
	for _, id := range tg.Skipped() {
		report.AddWarning(validation.Result{
			Level:       validation.LevelTopology,
			Message:     fmt.Sprintf("segment %q skipped as malformed", id),
			SpecPath:    "segments",
			ActualValue: id,
		})
	}

	tm := tile.FromGraph(tg)
	if err := tm.ApplyOverrides(s.Tiles); err != nil {
		return nil, fmt.Errorf("applying tile overrides: %w", err)
	}

	params := tile.ParamsFromSpec(s)
	g := NewGraph()
	ctx := &junction.Context{
		Params:    params,
		Palette:   junction.DefaultPalette(),
		Tiles:     tm,
		Road:      g.Recorder(LayerRoad),
		Curbs:     g.Recorder(LayerCurbs),
		Sidewalks: g.Recorder(LayerSidewalks),
		Markings:  g.Recorder(LayerMarkings),
		Log:       log,
	}
	for _, t := range tm.Tiles() {
		if err := junction.Emit(t, ctx); err != nil {
			return nil, err
		}
	}

	out := &Output{Topology: tg, Tiles: tm, Params: params, Scene: g, Report: report}
	lp := loops.ParamsFromSpec(s)
	for _, n := range tg.Nodes() {
		if n.Degree() < 3 || coveredByTile(n, tm) {
			continue
		}
		patch, ok := loops.NodePatch(tg, n, lp)
		if !ok {
			continue
		}
		out.Patches = append(out.Patches, patch)
		for _, c := range patch.Connectors {
			if !c.Valid {
				report.AddWarning(validation.Result{
					Level:       validation.LevelGeometry,
					Message:     fmt.Sprintf("node %s: connector %s -> %s dropped: %s", n.ID, c.A.Road, c.B.Road, c.Reason),
					SpecPath:    fmt.Sprintf("nodes.%s", n.ID),
					ActualValue: c.Family.String(),
				})
			}
		}
		found := patch.Loops(lp.Connector.AngleStep)
		if len(found) == 0 {
			report.AddWarning(validation.Result{
				Level:    validation.LevelGeometry,
				Message:  fmt.Sprintf("node %s: no closed boundary loop", n.ID),
				SpecPath: fmt.Sprintf("nodes.%s", n.ID),
			})
			continue
		}
		for _, l := range found {
			if err := junction.EmitLoop(l, ctx); err != nil {
				return nil, fmt.Errorf("node %s: %w", n.ID, err)
			}
		}
		out.Loops = append(out.Loops, found...)
	}

	g.Metadata = Metadata{
		SpecVersion: s.SpecVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Fingerprint: tg.Fingerprint().String(),
		Tiles:       tm.Len(),
		Nodes:       len(tg.Nodes()),
		Edges:       len(tg.Edges()),
		Loops:       len(out.Loops),
		CityBounds:  computeBounds(g.Entities),
	}
	report.Merge(ValidateGraph(g))

	log.Info("generated scene",
		zap.String("fingerprint", g.Metadata.Fingerprint),
		zap.Int("tiles", g.Metadata.Tiles),
		zap.Int("entities", len(g.Entities)),
		zap.Int("meshes", len(g.Meshes)),
		zap.Int("loops", len(out.Loops)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// coveredByTile reports whether a node sits on a classified tile, whose
// emitted geometry already fills the junction.
func coveredByTile(n topology.Node, tm *tile.Map) bool {
	if n.Tile == nil {
		return false
	}
	_, ok := tm.Tile(tile.Coord{X: n.Tile.X, Z: n.Tile.Z})
	return ok
}
