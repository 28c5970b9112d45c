package tile

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
	"github.com/ChicagoDave/roadgrid/pkg/topology"
)

// Map is a sparse grid of classified tiles. Tile (i,j) is centred on
// origin + (i,j)*size.
type Map struct {
	origin geo.Point2D
	size   float64
	tiles  map[Coord]Info
}

// NewMap returns an empty map.
func NewMap(origin geo.Point2D, size float64) *Map {
	return &Map{origin: origin, size: size, tiles: make(map[Coord]Info)}
}

// Set stores the classification of a tile.
func (m *Map) Set(c Coord, info Info) {
	m.tiles[c] = info
}

// Center returns the world centre of tile c.
func (m *Map) Center(c Coord) geo.Point2D {
	return m.origin.Add(geo.Pt(float64(c.X), float64(c.Z)).Scale(m.size))
}

// CoordAt returns the tile containing world point p.
func (m *Map) CoordAt(p geo.Point2D) Coord {
	d := p.Sub(m.origin).Scale(1 / m.size)
	return Coord{X: int(math.Round(d.X)), Z: int(math.Round(d.Z))}
}

// Tile returns the tile at c. Unknown tiles report AxisNone and false.
func (m *Map) Tile(c Coord) (Tile, bool) {
	info, ok := m.tiles[c]
	return Tile{Coord: c, Center: m.Center(c), Info: info}, ok
}

// TileAt returns the tile containing world point p.
func (m *Map) TileAt(p geo.Point2D) (Tile, bool) {
	return m.Tile(m.CoordAt(p))
}

// Tiles returns all classified tiles ordered by Z then X.
func (m *Map) Tiles() []Tile {
	coords := make([]Coord, 0, len(m.tiles))
	for c := range m.tiles {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Z != coords[j].Z {
			return coords[i].Z < coords[j].Z
		}
		return coords[i].X < coords[j].X
	})
	out := make([]Tile, len(coords))
	for i, c := range coords {
		out[i], _ = m.Tile(c)
	}
	return out
}

// Len returns the number of classified tiles.
func (m *Map) Len() int { return len(m.tiles) }

// FromGraph classifies the tiles crossed by rendered grid-aligned edges:
// edges whose endpoints both sit on tile positions in the same row or
// column. Other edges are left to the free-form junction stitcher.
func FromGraph(g *topology.Graph) *Map {
	m := NewMap(g.Origin(), g.TileSize())
	masks := make(map[Coord]Mask)
	ew := make(map[Coord]LaneCount)
	ns := make(map[Coord]LaneCount)

	for _, e := range g.Edges() {
		if !e.Rendered {
			continue
		}
		a, _ := g.Node(e.A)
		b, _ := g.Node(e.B)
		if a.Tile == nil || b.Tile == nil {
			continue
		}
		lanes := LaneCount{Forward: e.LanesF, Backward: e.LanesB}
		switch {
		case a.Tile.Z == b.Tile.Z && a.Tile.X != b.Tile.X:
			lo, hi := a.Tile.X, b.Tile.X
			if lo > hi {
				lo, hi = hi, lo
			}
			for x := lo; x <= hi; x++ {
				c := Coord{x, a.Tile.Z}
				if x > lo {
					masks[c] |= Mask(West)
				}
				if x < hi {
					masks[c] |= Mask(East)
				}
				ew[c] = wider(ew[c], lanes)
			}
		case a.Tile.X == b.Tile.X && a.Tile.Z != b.Tile.Z:
			lo, hi := a.Tile.Z, b.Tile.Z
			if lo > hi {
				lo, hi = hi, lo
			}
			for z := lo; z <= hi; z++ {
				c := Coord{a.Tile.X, z}
				if z > lo {
					masks[c] |= Mask(South)
				}
				if z < hi {
					masks[c] |= Mask(North)
				}
				ns[c] = wider(ns[c], lanes)
			}
		}
	}

	for c, mask := range masks {
		m.Set(c, Info{Axis: Classify(mask), Mask: mask, EW: ew[c], NS: ns[c]})
	}
	return m
}

// ApplyOverrides replaces derived classifications with authored ones.
// Authored tiles without lane data keep the derived lanes.
func (m *Map) ApplyOverrides(defs []spec.TileDef) error {
	for _, d := range defs {
		c := Coord{X: d.X, Z: d.Z}
		prev := m.tiles[c]
		var mask Mask
		for _, s := range d.Connections {
			dir, err := ParseDir(s)
			if err != nil {
				return fmt.Errorf("tile (%d,%d): %w", d.X, d.Z, err)
			}
			mask |= Mask(dir)
		}
		axis := Classify(mask)
		if d.Axis != "" {
			a, err := ParseAxis(d.Axis)
			if err != nil {
				return fmt.Errorf("tile (%d,%d): %w", d.X, d.Z, err)
			}
			axis = a
		}
		info := Info{Axis: axis, Mask: mask, EW: prev.EW, NS: prev.NS}
		if d.EW.Forward+d.EW.Backward > 0 {
			info.EW = LaneCount{Forward: d.EW.Forward, Backward: d.EW.Backward}
		}
		if d.NS.Forward+d.NS.Backward > 0 {
			info.NS = LaneCount{Forward: d.NS.Forward, Backward: d.NS.Backward}
		}
		m.Set(c, info)
	}
	return nil
}

func wider(a, b LaneCount) LaneCount {
	if b.Total() > a.Total() {
		return b
	}
	return a
}
