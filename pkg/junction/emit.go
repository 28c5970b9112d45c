package junction

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

// Emit issues the shape commands for one tile.
func Emit(t tile.Tile, ctx *Context) error {
	if ctx == nil || ctx.Road == nil {
		return fmt.Errorf("emitting tile (%d,%d): %w", t.Coord.X, t.Coord.Z, ErrNoRoadBuilder)
	}
	ctx.logger().Debug("emit tile",
		zap.Int("x", t.Coord.X),
		zap.Int("z", t.Coord.Z),
		zap.Stringer("axis", t.Info.Axis),
		zap.Stringer("mask", t.Info.Mask),
	)
	switch t.Info.Axis {
	case tile.AxisEW, tile.AxisNS:
		emitStraight(t, ctx)
	case tile.AxisCorner:
		emitCorner(t, ctx)
	case tile.AxisIntersection:
		emitIntersection(t, ctx)
	}
	return nil
}

// frame maps straight-tile local coordinates (along, across) to world
// space. For EW tiles along is +X; for NS tiles along is +Z.
type frame struct {
	center geo.Point2D
	ns     bool
}

func (f frame) point(along, across float64) geo.Point2D {
	if f.ns {
		return f.center.Add(geo.Pt(across, along))
	}
	return f.center.Add(geo.Pt(along, across))
}

func (f frame) size(along, across float64) (sx, sz float64) {
	if f.ns {
		return across, along
	}
	return along, across
}

func (f frame) plane(along, across, lenAlong, lenAcross, y float64, c Color) Plane {
	sx, sz := f.size(lenAlong, lenAcross)
	return Plane{Center: f.point(along, across), Y: y, SizeX: sx, SizeZ: sz, Color: c}
}

func (f frame) box(along, across, lenAlong, lenAcross, y, h float64, c Color) Box {
	sx, sz := f.size(lenAlong, lenAcross)
	return Box{Center: f.point(along, across), Y: y, SizeX: sx, SizeY: h, SizeZ: sz, Color: c}
}

// markingY lifts paint above the asphalt.
const markingY = 0.01

func emitStraight(t tile.Tile, ctx *Context) {
	p := ctx.Params
	pal := ctx.Palette
	f := frame{center: t.Center, ns: t.Info.Axis == tile.AxisNS}
	h := p.Half()
	hw := p.StraightHalfWidth(t.Info)
	lanes := tile.StraightLanes(t.Info)

	ctx.Road.AddPlane(f.plane(0, 0, p.TileSize, 2*hw, 0, pal.Asphalt))

	if ctx.details() && ctx.Sidewalks != nil {
		if w := h - hw - p.CurbThickness; w > 0 {
			off := hw + p.CurbThickness + w/2
			for _, side := range []float64{-1, 1} {
				ctx.Sidewalks.AddPlane(f.plane(0, side*off, p.TileSize, w, p.CurbHeight, pal.Sidewalk))
			}
		}
	}

	if ctx.details() && ctx.Curbs != nil {
		lo, hi := -h, h
		back, ahead := tile.West, tile.East
		if f.ns {
			back, ahead = tile.South, tile.North
		}
		if neighbourIsCorner(t, back, ctx.Tiles) {
			lo += p.CurbThickness
		}
		if neighbourIsCorner(t, ahead, ctx.Tiles) {
			hi -= p.CurbThickness
		}
		off := hw + p.CurbThickness/2
		for _, side := range []float64{-1, 1} {
			ctx.Curbs.AddBox(f.box((lo+hi)/2, side*off, hi-lo, p.CurbThickness, 0, p.CurbHeight, pal.Curb))
		}
	}

	if ctx.Markings != nil {
		emitStraightMarkings(f, lanes, hw, ctx)
	}
}

func neighbourIsCorner(t tile.Tile, d tile.Dir, tiles tile.Lookup) bool {
	if tiles == nil {
		return false
	}
	n, ok := tiles.Tile(t.Coord.Step(d))
	return ok && n.Info.Axis == tile.AxisCorner
}

func emitStraightMarkings(f frame, lanes tile.LaneCount, hw float64, ctx *Context) {
	p := ctx.Params
	pal := ctx.Palette
	mw := p.MarkingWidth

	if lanes.Bidirectional() {
		ctx.Markings.AddPlane(f.plane(0, 0, p.TileSize, mw, markingY, pal.MarkingYellow))
	} else {
		for _, d := range dashes(p.TileSize, p.DashLength, p.DashGap) {
			ctx.Markings.AddPlane(f.plane(d[0], 0, d[1], mw, markingY, pal.MarkingWhite))
		}
	}

	edge := p.LaneSpan(lanes) + mw/2
	if edge+mw/2 <= hw {
		for _, side := range []float64{-1, 1} {
			ctx.Markings.AddPlane(f.plane(0, side*edge, p.TileSize, mw, markingY, pal.MarkingWhite))
		}
	}
}

// dashes lays dashes centred along a tile of the given length and returns
// (centre, length) pairs. The pattern restarts on every tile so adjacent
// tiles line up.
func dashes(length, dash, gap float64) [][2]float64 {
	period := dash + gap
	if dash <= 0 || period <= 0 {
		return nil
	}
	n := int(math.Floor(length / period))
	if n < 1 {
		return [][2]float64{{0, math.Min(dash, length)}}
	}
	out := make([][2]float64, n)
	start := -length/2 + gap/2
	for i := range out {
		out[i] = [2]float64{start + float64(i)*period + dash/2, dash}
	}
	return out
}
