// Package tile holds per-tile road metadata (axis classification,
// connection mask, lane counts) and the cross-section formulas that both the
// junction geometry generator and the surface classifier evaluate.
package tile

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
)

// Axis classifies the road shape occupying a tile.
type Axis int

const (
	AxisNone Axis = iota
	AxisEW
	AxisNS
	AxisCorner
	AxisIntersection
)

var axisNames = [...]string{"NONE", "EW", "NS", "CORNER", "INTERSECTION"}

func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// MarshalText encodes the axis by name.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAxis parses an axis name, case-insensitively.
func ParseAxis(s string) (Axis, error) {
	for i, n := range axisNames {
		if strings.EqualFold(s, n) {
			return Axis(i), nil
		}
	}
	return AxisNone, fmt.Errorf("unknown tile axis %q", s)
}

// Dir is one cardinal connection. North is +Z and east is +X.
type Dir uint8

const (
	North Dir = 1 << iota
	East
	South
	West
)

// Dirs lists the cardinal directions in mask bit order.
var Dirs = [4]Dir{North, East, South, West}

// Offset returns the unit tile step toward d.
func (d Dir) Offset() (dx, dz int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	}
	return 0, 0
}

// Opposite returns the direction facing d.
func (d Dir) Opposite() Dir {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	}
	return 0
}

func (d Dir) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return "?"
}

// ParseDir parses N, E, S or W.
func ParseDir(s string) (Dir, error) {
	for _, d := range Dirs {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Mask is a set of connections.
type Mask uint8

// Has reports whether d is connected.
func (m Mask) Has(d Dir) bool { return m&Mask(d) != 0 }

// Count returns the number of connections.
func (m Mask) Count() int { return bits.OnesCount8(uint8(m) & 0x0f) }

func (m Mask) String() string {
	var sb strings.Builder
	for _, d := range Dirs {
		if m.Has(d) {
			sb.WriteString(d.String())
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// Signs returns the quadrant a corner turns into: +X for east, -X for
// west, +Z for north, -Z for south. Missing axes default to +1.
func (m Mask) Signs() (signX, signZ float64) {
	signX, signZ = 1, 1
	if m.Has(West) && !m.Has(East) {
		signX = -1
	}
	if m.Has(South) && !m.Has(North) {
		signZ = -1
	}
	return signX, signZ
}

// Classify derives the axis from a connection mask.
func Classify(m Mask) Axis {
	switch {
	case m.Count() == 0:
		return AxisNone
	case m.Count() >= 3:
		return AxisIntersection
	case m&^Mask(East|West) == 0:
		return AxisEW
	case m&^Mask(North|South) == 0:
		return AxisNS
	default:
		return AxisCorner
	}
}

// JunctionType names the connection pattern of a tile for geometry keys.
type JunctionType uint8

const (
	JunctionNone JunctionType = iota
	JunctionDeadEnd
	JunctionStraight
	JunctionCorner
	JunctionTee
	JunctionCross
	JunctionIrregular
)

var junctionNames = [...]string{"none", "dead_end", "straight", "corner", "tee", "cross", "irregular"}

func (j JunctionType) String() string {
	if int(j) >= len(junctionNames) {
		return fmt.Sprintf("JunctionType(%d)", int(j))
	}
	return junctionNames[j]
}

// Junction returns the connection pattern for a mask.
func (m Mask) Junction() JunctionType {
	switch m.Count() {
	case 0:
		return JunctionNone
	case 1:
		return JunctionDeadEnd
	case 2:
		if Classify(m) == AxisCorner {
			return JunctionCorner
		}
		return JunctionStraight
	case 3:
		return JunctionTee
	default:
		return JunctionCross
	}
}

// LaneCount is the number of lanes in each travel direction.
type LaneCount struct {
	Forward  int `json:"forward" yaml:"forward"`
	Backward int `json:"backward" yaml:"backward"`
}

// Total returns forward plus backward lanes.
func (l LaneCount) Total() int { return l.Forward + l.Backward }

// Bidirectional reports whether both directions carry lanes.
func (l LaneCount) Bidirectional() bool { return l.Forward > 0 && l.Backward > 0 }

// Info is the authoritative classification of one tile.
type Info struct {
	Axis Axis      `json:"axis"`
	Mask Mask      `json:"mask"`
	EW   LaneCount `json:"ew"`
	NS   LaneCount `json:"ns"`
}

// Coord is an integer tile position.
type Coord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Step returns the neighbouring coordinate toward d.
func (c Coord) Step(d Dir) Coord {
	dx, dz := d.Offset()
	return Coord{c.X + dx, c.Z + dz}
}

// Tile is a classified tile placed in the world.
type Tile struct {
	Coord  Coord       `json:"coord"`
	Center geo.Point2D `json:"center"`
	Info   Info        `json:"info"`
}

// Lookup resolves tiles by world position or grid coordinate.
type Lookup interface {
	TileAt(p geo.Point2D) (Tile, bool)
	Tile(c Coord) (Tile, bool)
}
