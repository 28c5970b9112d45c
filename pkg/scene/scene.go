package scene

// LayerType identifies the builder a shape was emitted to.
type LayerType string

const (
	LayerRoad      LayerType = "road"
	LayerCurbs     LayerType = "curbs"
	LayerSidewalks LayerType = "sidewalks"
	LayerMarkings  LayerType = "markings"
)

// Layers lists the layers in draw order.
var Layers = []LayerType{LayerRoad, LayerCurbs, LayerSidewalks, LayerMarkings}

// EntityType identifies the shape primitive of an entity.
type EntityType string

const (
	EntityPlane      EntityType = "plane"
	EntityBox        EntityType = "box"
	EntityArcSolid   EntityType = "arc_solid"
	EntityRingSector EntityType = "ring_sector"
	EntityPolygon    EntityType = "polygon"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BoundingBox defines an axis-aligned bounding box.
type BoundingBox struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Entity is one recorded shape command. Keyed shapes name their shared
// mesh in Mesh and carry only placement; Dimensions is the world-space
// extent of the shape.
type Entity struct {
	ID         string         `json:"id"`
	Type       EntityType     `json:"type"`
	Position   Vec3           `json:"position"`
	Dimensions Vec3           `json:"dimensions"`
	Rotation   [4]float64     `json:"rotation"` // quaternion [x, y, z, w]
	Material   string         `json:"material"`
	Layer      LayerType      `json:"layer"`
	Mesh       string         `json:"mesh,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Mesh is keyed local geometry shared by every entity with the same key.
// Uses counts the entities that reference it. Conflicts counts references
// whose geometry differed from the first one recorded under the key.
type Mesh struct {
	Key       string         `json:"key"`
	Type      EntityType     `json:"type"`
	Params    map[string]any `json:"params,omitempty"`
	Polygon   [][2]float64   `json:"polygon,omitempty"`
	Uses      int            `json:"uses"`
	Conflicts int            `json:"conflicts,omitempty"`
}

// Graph is the complete recorded output of one generation.
type Graph struct {
	Metadata Metadata        `json:"metadata"`
	Entities []Entity        `json:"entities"`
	Meshes   map[string]Mesh `json:"meshes"`
	Groups   Groups          `json:"groups"`

	seq map[LayerType]int
}

// Metadata holds scene-level information.
type Metadata struct {
	SpecVersion string      `json:"spec_version"`
	GeneratedAt string      `json:"generated_at"`
	Fingerprint string      `json:"fingerprint"`
	Tiles       int         `json:"tiles"`
	Nodes       int         `json:"nodes"`
	Edges       int         `json:"edges"`
	Loops       int         `json:"loops"`
	CityBounds  BoundingBox `json:"city_bounds"`
}

// Groups organizes entity IDs by various axes for fast filtering.
type Groups struct {
	Layers      map[LayerType][]string  `json:"layers"`
	EntityTypes map[EntityType][]string `json:"entity_types"`
	Meshes      map[string][]string     `json:"meshes"`
}

// NewGraph creates an empty scene graph.
func NewGraph() *Graph {
	return &Graph{
		Entities: []Entity{},
		Meshes:   make(map[string]Mesh),
		Groups: Groups{
			Layers:      make(map[LayerType][]string),
			EntityTypes: make(map[EntityType][]string),
			Meshes:      make(map[string][]string),
		},
		seq: make(map[LayerType]int),
	}
}
