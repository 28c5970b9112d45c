// Package junction emits per-tile road geometry as primitive shape
// commands: roadway, curbs, sidewalks and lane markings for straights,
// corners and intersections, plus asphalt fill for stitched junction loops.
package junction

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

// ErrNoRoadBuilder is returned when a context has no roadway builder.
var ErrNoRoadBuilder = errors.New("junction context has no road builder")

// Color is a hex RGB color.
type Color string

// Palette assigns colors to road parts.
type Palette struct {
	Asphalt       Color `json:"asphalt" yaml:"asphalt"`
	Curb          Color `json:"curb" yaml:"curb"`
	Sidewalk      Color `json:"sidewalk" yaml:"sidewalk"`
	MarkingWhite  Color `json:"marking_white" yaml:"marking_white"`
	MarkingYellow Color `json:"marking_yellow" yaml:"marking_yellow"`
}

// DefaultPalette returns the standard road colors.
func DefaultPalette() Palette {
	return Palette{
		Asphalt:       "#2b2b2e",
		Curb:          "#9a9a96",
		Sidewalk:      "#c8c4bb",
		MarkingWhite:  "#f2f2f2",
		MarkingYellow: "#e8b923",
	}
}

// Plane is a flat rectangle. Center is in world space.
type Plane struct {
	Center    geo.Point2D
	Y         float64
	SizeX     float64
	SizeZ     float64
	RotationY float64
	Color     Color
}

// Box is a solid block whose base sits at Y.
type Box struct {
	Center    geo.Point2D
	Y         float64
	SizeX     float64
	SizeY     float64
	SizeZ     float64
	RotationY float64
	Color     Color
}

// ArcSolid is a curved block of constant width along an arc of radius
// RadiusCenter.
type ArcSolid struct {
	Key          Key
	Center       geo.Point2D
	Y            float64
	RadiusCenter float64
	Width        float64
	Height       float64
	StartAngle   float64
	Span         float64
	Segments     int
	Color        Color
}

// RingSector is a flat annular sector.
type RingSector struct {
	Key         Key
	Center      geo.Point2D
	Y           float64
	InnerRadius float64
	OuterRadius float64
	StartAngle  float64
	Span        float64
	Segments    int
	Color       Color
}

// Geometry is a flat polygon in local coordinates placed at Offset.
type Geometry struct {
	Polygon geo.Polygon
	Offset  geo.Point2D
	Y       float64
	Color   Color
}

// World returns the polygon in world coordinates.
func (g Geometry) World() geo.Polygon {
	return g.Polygon.Translate(g.Offset)
}

// Builder receives shape commands. Keyed commands with equal keys
// describe identical local geometry and may share one cached mesh.
type Builder interface {
	AddPlane(Plane)
	AddBox(Box)
	AddArcSolidKey(ArcSolid)
	AddRingSectorKey(RingSector)
	AddGeometryKey(Key, Geometry)
}

// Shape is the primitive type of a keyed command.
type Shape uint8

const (
	ShapeArcSolid Shape = iota + 1
	ShapeRingSector
	ShapePolygon
)

var shapeNames = [...]string{"", "arc_solid", "ring_sector", "polygon"}

func (s Shape) String() string {
	if int(s) >= len(shapeNames) {
		return "shape"
	}
	return shapeNames[s]
}

// Part is the road element a keyed command draws.
type Part uint8

const (
	PartRoadway Part = iota + 1
	PartCurbOuter
	PartCurbInner
	PartCurbCorner
	PartSidewalkFill
	PartSidewalkCorner
	PartCenterLine
	PartLoop
)

var partNames = [...]string{"", "roadway", "curb_outer", "curb_inner", "curb_corner", "sidewalk_fill", "sidewalk_corner", "center_line", "loop"}

func (p Part) String() string {
	if int(p) >= len(partNames) {
		return "part"
	}
	return partNames[p]
}

// Key identifies keyed geometry. Orientation is the connection mask or
// quadrant, and Dims holds the shape's defining sizes in millimetres.
type Key struct {
	Shape       Shape
	Junction    tile.JunctionType
	Orientation uint8
	Part        Part
	Dims        [3]int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d:%s:%d:%d:%d", k.Shape, k.Junction, k.Orientation, k.Part, k.Dims[0], k.Dims[1], k.Dims[2])
}

func mm(v float64) int64 {
	return int64(math.Round(v * 1000))
}

// Context carries everything emission needs. Road is required; a nil
// Curbs, Sidewalks or Markings builder skips that layer.
type Context struct {
	Params    tile.Params
	Palette   Palette
	Tiles     tile.Lookup
	Road      Builder
	Curbs     Builder
	Sidewalks Builder
	Markings  Builder
	Log       *zap.Logger
}

func (ctx *Context) logger() *zap.Logger {
	if ctx.Log == nil {
		return zap.NewNop()
	}
	return ctx.Log
}

// details reports whether curbs and sidewalks are drawn.
func (ctx *Context) details() bool {
	return !ctx.Params.DebugOnly
}
