package spec

// Space names the coordinate system a segment endpoint is written in.
type Space string

const (
	// SpaceTile points are tile-grid coordinates: world = origin + coord*tile_size.
	SpaceTile Space = "tile"
	// SpaceWorld points are already in world units.
	SpaceWorld Space = "world"
)

// CitySpec is the authored road layout of one city.
type CitySpec struct {
	SpecVersion string       `yaml:"spec_version" json:"spec_version"`
	Origin      OriginDef    `yaml:"origin" json:"origin"`
	TileSize    float64      `yaml:"tile_size" json:"tile_size"`
	Road        RoadDef      `yaml:"road" json:"road"`
	Connectors  ConnectorDef `yaml:"connectors" json:"connectors"`
	Surface     SurfaceDef   `yaml:"surface" json:"surface"`
	Segments    []SegmentDef `yaml:"segments" json:"segments"`
	Tiles       []TileDef    `yaml:"tiles" json:"tiles"`
}

type OriginDef struct {
	X float64 `yaml:"x" json:"x"`
	Z float64 `yaml:"z" json:"z"`
}

// SegmentDef is one authored road centerline.
type SegmentDef struct {
	ID       string     `yaml:"id" json:"id"`
	A        [2]float64 `yaml:"a" json:"a"`
	B        [2]float64 `yaml:"b" json:"b"`
	Space    Space      `yaml:"space" json:"space"`
	LanesF   int        `yaml:"lanes_f" json:"lanes_f"`
	LanesB   int        `yaml:"lanes_b" json:"lanes_b"`
	Tag      string     `yaml:"tag" json:"tag"`
	Rendered *bool      `yaml:"rendered" json:"rendered,omitempty"`
}

// IsRendered reports the rendered flag, which defaults to true.
func (s SegmentDef) IsRendered() bool {
	return s.Rendered == nil || *s.Rendered
}

// TileDef overrides the classification derived for one tile.
type TileDef struct {
	X           int      `yaml:"x" json:"x"`
	Z           int      `yaml:"z" json:"z"`
	Axis        string   `yaml:"axis" json:"axis"`
	Connections []string `yaml:"connections" json:"connections"`
	EW          LaneDef  `yaml:"ew" json:"ew"`
	NS          LaneDef  `yaml:"ns" json:"ns"`
}

type LaneDef struct {
	Forward  int `yaml:"forward" json:"forward"`
	Backward int `yaml:"backward" json:"backward"`
}

// RoadDef holds the cross-section and junction shaping parameters shared by
// the geometry generator and the surface classifier.
type RoadDef struct {
	LaneWidth     float64 `yaml:"lane_width" json:"lane_width"`
	Shoulder      float64 `yaml:"shoulder" json:"shoulder"`
	CurbThickness float64 `yaml:"curb_thickness" json:"curb_thickness"`
	CurbHeight    float64 `yaml:"curb_height" json:"curb_height"`
	TurnRadius    float64 `yaml:"turn_radius" json:"turn_radius"`
	MinFillet     float64 `yaml:"min_fillet" json:"min_fillet"`
	MarkingWidth  float64 `yaml:"marking_width" json:"marking_width"`
	DashLength    float64 `yaml:"dash_length" json:"dash_length"`
	DashGap       float64 `yaml:"dash_gap" json:"dash_gap"`
	ArcSegments   int     `yaml:"arc_segments" json:"arc_segments"`
	RoundCorners  *bool   `yaml:"round_corners" json:"round_corners,omitempty"`
	DebugOnly     bool    `yaml:"debug_only" json:"debug_only"`
}

// ConnectorDef configures curb connector fitting at multi-road junctions.
type ConnectorDef struct {
	MaxRadius      float64 `yaml:"max_radius" json:"max_radius"`
	MinTangencyDot float64 `yaml:"min_tangency_dot" json:"min_tangency_dot"`
	Setback        float64 `yaml:"setback" json:"setback"`
	AngleStep      float64 `yaml:"angle_step" json:"angle_step"`
}

type SurfaceDef struct {
	Hysteresis float64 `yaml:"hysteresis" json:"hysteresis"`
}
