package scene

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/junction"
)

// Recorder is a junction.Builder that records shape commands as entities
// on one layer of a Graph.
type Recorder struct {
	g     *Graph
	layer LayerType
}

var _ junction.Builder = (*Recorder)(nil)

// Recorder returns a builder writing to the given layer.
func (g *Graph) Recorder(layer LayerType) *Recorder {
	return &Recorder{g: g, layer: layer}
}

func (r *Recorder) nextID(t EntityType) string {
	if r.g.seq == nil {
		r.g.seq = make(map[LayerType]int)
	}
	r.g.seq[r.layer]++
	return fmt.Sprintf("%s-%s-%d", r.layer, t, r.g.seq[r.layer])
}

func (r *Recorder) AddPlane(p junction.Plane) {
	addEntity(r.g, Entity{
		ID:         r.nextID(EntityPlane),
		Type:       EntityPlane,
		Position:   Vec3{X: p.Center.X, Y: p.Y, Z: p.Center.Z},
		Dimensions: Vec3{X: p.SizeX, Z: p.SizeZ},
		Rotation:   yawQuat(p.RotationY),
		Material:   string(p.Color),
		Layer:      r.layer,
	})
}

func (r *Recorder) AddBox(b junction.Box) {
	addEntity(r.g, Entity{
		ID:         r.nextID(EntityBox),
		Type:       EntityBox,
		Position:   Vec3{X: b.Center.X, Y: b.Y, Z: b.Center.Z},
		Dimensions: Vec3{X: b.SizeX, Y: b.SizeY, Z: b.SizeZ},
		Rotation:   yawQuat(b.RotationY),
		Material:   string(b.Color),
		Layer:      r.layer,
	})
}

func (r *Recorder) AddArcSolidKey(a junction.ArcSolid) {
	key := a.Key.String()
	r.useMesh(key, Mesh{
		Type: EntityArcSolid,
		Params: map[string]any{
			"radius_center": a.RadiusCenter,
			"width":         a.Width,
			"height":        a.Height,
			"start_angle":   a.StartAngle,
			"span":          a.Span,
			"segments":      a.Segments,
		},
	})
	extent := 2 * (a.RadiusCenter + a.Width/2)
	addEntity(r.g, Entity{
		ID:         r.nextID(EntityArcSolid),
		Type:       EntityArcSolid,
		Position:   Vec3{X: a.Center.X, Y: a.Y, Z: a.Center.Z},
		Dimensions: Vec3{X: extent, Y: a.Height, Z: extent},
		Rotation:   identityQuat(),
		Material:   string(a.Color),
		Layer:      r.layer,
		Mesh:       key,
	})
}

func (r *Recorder) AddRingSectorKey(s junction.RingSector) {
	key := s.Key.String()
	r.useMesh(key, Mesh{
		Type: EntityRingSector,
		Params: map[string]any{
			"inner_radius": s.InnerRadius,
			"outer_radius": s.OuterRadius,
			"start_angle":  s.StartAngle,
			"span":         s.Span,
			"segments":     s.Segments,
		},
	})
	extent := 2 * s.OuterRadius
	addEntity(r.g, Entity{
		ID:         r.nextID(EntityRingSector),
		Type:       EntityRingSector,
		Position:   Vec3{X: s.Center.X, Y: s.Y, Z: s.Center.Z},
		Dimensions: Vec3{X: extent, Z: extent},
		Rotation:   identityQuat(),
		Material:   string(s.Color),
		Layer:      r.layer,
		Mesh:       key,
	})
}

// AddGeometryKey records a keyed polygon. The entity is centred on the
// polygon's world bounding box; the mesh origin is kept in metadata.
func (r *Recorder) AddGeometryKey(k junction.Key, geom junction.Geometry) {
	key := k.String()
	pts := make([][2]float64, geom.Polygon.Len())
	for i, v := range geom.Polygon.Vertices {
		pts[i] = [2]float64{v.X, v.Z}
	}
	r.useMesh(key, Mesh{Type: EntityPolygon, Polygon: pts})

	lo, hi := geom.World().BoundingBox()
	mid := geo.MidPoint(lo, hi)
	addEntity(r.g, Entity{
		ID:         r.nextID(EntityPolygon),
		Type:       EntityPolygon,
		Position:   Vec3{X: mid.X, Y: geom.Y, Z: mid.Z},
		Dimensions: Vec3{X: hi.X - lo.X, Z: hi.Z - lo.Z},
		Rotation:   identityQuat(),
		Material:   string(geom.Color),
		Layer:      r.layer,
		Mesh:       key,
		Metadata: map[string]any{
			"origin": [2]float64{geom.Offset.X, geom.Offset.Z},
			"area":   geom.Polygon.Area(),
		},
	})
}

// useMesh registers one reference to keyed geometry. The first geometry
// recorded under a key is kept.
func (r *Recorder) useMesh(key string, m Mesh) {
	prev, ok := r.g.Meshes[key]
	if !ok {
		m.Key = key
		m.Uses = 1
		r.g.Meshes[key] = m
		return
	}
	prev.Uses++
	if !sameMesh(prev, m) {
		prev.Conflicts++
	}
	r.g.Meshes[key] = prev
}

const meshTolerance = 1e-6

func sameMesh(a, b Mesh) bool {
	if a.Type != b.Type || len(a.Params) != len(b.Params) || len(a.Polygon) != len(b.Polygon) {
		return false
	}
	for k, av := range a.Params {
		bv, ok := b.Params[k]
		if !ok {
			return false
		}
		af, aok := toFloat(av)
		bf, bok := toFloat(bv)
		if !aok || !bok || math.Abs(af-bf) > meshTolerance {
			return false
		}
	}
	for i := range a.Polygon {
		if math.Abs(a.Polygon[i][0]-b.Polygon[i][0]) > meshTolerance ||
			math.Abs(a.Polygon[i][1]-b.Polygon[i][1]) > meshTolerance {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// addEntity appends an entity and updates all group indices.
func addEntity(g *Graph, e Entity) {
	g.Entities = append(g.Entities, e)
	id := e.ID

	g.Groups.Layers[e.Layer] = append(g.Groups.Layers[e.Layer], id)
	g.Groups.EntityTypes[e.Type] = append(g.Groups.EntityTypes[e.Type], id)
	if e.Mesh != "" {
		g.Groups.Meshes[e.Mesh] = append(g.Groups.Meshes[e.Mesh], id)
	}
}

// computeBounds calculates the AABB of all entities.
func computeBounds(entities []Entity) BoundingBox {
	if len(entities) == 0 {
		return BoundingBox{}
	}
	minV := Vec3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	maxV := Vec3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}

	for _, e := range entities {
		halfX := e.Dimensions.X / 2
		halfZ := e.Dimensions.Z / 2

		minV.X = math.Min(minV.X, e.Position.X-halfX)
		maxV.X = math.Max(maxV.X, e.Position.X+halfX)
		minV.Y = math.Min(minV.Y, e.Position.Y)
		maxV.Y = math.Max(maxV.Y, e.Position.Y+e.Dimensions.Y)
		minV.Z = math.Min(minV.Z, e.Position.Z-halfZ)
		maxV.Z = math.Max(maxV.Z, e.Position.Z+halfZ)
	}
	return BoundingBox{Min: minV, Max: maxV}
}

func identityQuat() [4]float64 {
	return [4]float64{0, 0, 0, 1}
}

func yawQuat(angle float64) [4]float64 {
	half := angle / 2
	return [4]float64{0, math.Sin(half), 0, math.Cos(half)}
}
