package scene

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ChicagoDave/roadgrid/pkg/loops"
	"github.com/ChicagoDave/roadgrid/pkg/topology"
)

// Feature kinds in the GeoJSON export.
const (
	FeatureEdge = "edge"
	FeatureNode = "node"
	FeatureLoop = "loop"
)

// GraphGeoJSON exports the road graph and stitched loops. World X maps to
// GeoJSON x and world Z to y; coordinates are planar, not geographic.
func GraphGeoJSON(tg *topology.Graph, ls []loops.Loop) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if tg != nil {
		for _, e := range tg.Edges() {
			f := geojson.NewFeature(orb.LineString{
				{e.Centerline[0].X, e.Centerline[0].Z},
				{e.Centerline[1].X, e.Centerline[1].Z},
			})
			f.ID = e.ID
			f.Properties["kind"] = FeatureEdge
			f.Properties["source"] = e.Source
			f.Properties["piece"] = e.Piece
			f.Properties["a"] = e.A
			f.Properties["b"] = e.B
			f.Properties["tag"] = e.Tag
			f.Properties["rendered"] = e.Rendered
			f.Properties["lanes_f"] = e.LanesF
			f.Properties["lanes_b"] = e.LanesB
			f.Properties["length"] = e.Length
			fc.Append(f)
		}
		for _, n := range tg.Nodes() {
			f := geojson.NewFeature(orb.Point{n.Pos.X, n.Pos.Z})
			f.ID = n.ID
			f.Properties["kind"] = FeatureNode
			f.Properties["degree"] = n.Degree()
			if n.Tile != nil {
				f.Properties["tile"] = []int{n.Tile.X, n.Tile.Z}
			}
			fc.Append(f)
		}
	}
	for i, l := range ls {
		f := geojson.NewFeature(l.Orb())
		f.Properties["kind"] = FeatureLoop
		f.Properties["index"] = i
		f.Properties["area"] = l.Area()
		f.Properties["perimeter"] = l.Perimeter()
		fc.Append(f)
	}
	return fc
}
