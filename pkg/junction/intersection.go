package junction

import (
	"math"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

// quadrants lists the corner signs in counterclockwise order from north-east.
var quadrants = [4]geo.Point2D{{X: 1, Z: 1}, {X: -1, Z: 1}, {X: -1, Z: -1}, {X: 1, Z: -1}}

// quadrantDirs returns the connections bordering a quadrant: the one whose
// road runs along Z (north or south) and the one whose road runs along X.
func quadrantDirs(q geo.Point2D) (alongZ, alongX tile.Dir) {
	alongZ, alongX = tile.North, tile.East
	if q.Z < 0 {
		alongZ = tile.South
	}
	if q.X < 0 {
		alongX = tile.West
	}
	return alongZ, alongX
}

// emitIntersection draws a full-tile roadway square and one sidewalk
// corner per quadrant. A quadrant between two connected roads gets the
// rounded corner when rounding is on; otherwise a square pad with its
// bounding curb boxes. Pads next to an unconnected side run to the tile
// axis so the sidewalk continues across it.
func emitIntersection(t tile.Tile, ctx *Context) {
	p := ctx.Params
	pal := ctx.Palette
	h := p.Half()
	junction := t.Info.Mask.Junction()

	ctx.Road.AddPlane(Plane{Center: t.Center, SizeX: p.TileSize, SizeZ: p.TileSize, Color: pal.Asphalt})

	if !ctx.details() {
		return
	}
	curb := p.CurbThickness
	nsHalf, ewHalf := p.CrossHalfWidths(t.Info)
	hw := math.Max(nsHalf, ewHalf)
	r := p.ClampTurnRadius(hw)
	fillet := p.Fillet(r, hw, h-nsHalf-curb, h-ewHalf-curb)
	segs := p.ArcSegmentsFor(math.Pi / 2)

	for i, q := range quadrants {
		zDir, xDir := quadrantDirs(q)
		zOn, xOn := t.Info.Mask.Has(zDir), t.Info.Mask.Has(xDir)
		orient := uint8(t.Info.Mask)<<2 | uint8(i)

		lo := geo.Pt(0, 0)
		if zOn {
			lo.X = nsHalf + curb
		}
		if xOn {
			lo.Z = ewHalf + curb
		}
		if lo.X >= h || lo.Z >= h {
			continue
		}

		if zOn && xOn && p.RoundCorners {
			emitRoundedCorner(t, ctx, q, lo, fillet, segs, Key{Junction: junction, Orientation: orient})
			continue
		}

		if ctx.Sidewalks != nil {
			mid := geo.Pt((lo.X+h)/2, (lo.Z+h)/2).Mul(q)
			ctx.Sidewalks.AddPlane(Plane{Center: t.Center.Add(mid), Y: p.CurbHeight, SizeX: h - lo.X, SizeZ: h - lo.Z, Color: pal.Sidewalk})
		}
		if ctx.Curbs != nil {
			if zOn {
				// Runs along Z beside the north or south road, down to the
				// east-west road edge.
				z0 := lo.Z - curb
				if !xOn {
					z0 = 0
				}
				mid := geo.Pt(nsHalf+curb/2, (z0+h)/2).Mul(q)
				ctx.Curbs.AddBox(Box{Center: t.Center.Add(mid), SizeX: curb, SizeY: p.CurbHeight, SizeZ: h - z0, Color: pal.Curb})
			}
			if xOn {
				mid := geo.Pt((lo.X+h)/2, ewHalf+curb/2).Mul(q)
				ctx.Curbs.AddBox(Box{Center: t.Center.Add(mid), SizeX: h - lo.X, SizeY: p.CurbHeight, SizeZ: curb, Color: pal.Curb})
			}
		}
	}
}

// emitRoundedCorner draws the filleted sidewalk corner of one quadrant and
// the curb that follows it: a quarter arc around the fillet centre and two
// straight runs to the tile edges.
func emitRoundedCorner(t tile.Tile, ctx *Context, q, lo geo.Point2D, fillet float64, segs int, base Key) {
	p := ctx.Params
	pal := ctx.Palette
	h := p.Half()
	curb := p.CurbThickness

	if ctx.Sidewalks != nil {
		poly := geo.RoundedRectMinCorner(lo, geo.Pt(h, h), fillet, segs).Mirror(q)
		if !poly.IsEmpty() {
			k := base
			k.Shape, k.Part = ShapePolygon, PartSidewalkCorner
			k.Dims = [3]int64{mm(fillet), mm(lo.X), mm(lo.Z)}
			ctx.Sidewalks.AddGeometryKey(k, Geometry{Polygon: poly, Offset: t.Center, Y: p.CurbHeight, Color: pal.Sidewalk})
		}
	}
	if ctx.Curbs == nil {
		return
	}

	f := math.Min(fillet, math.Min(h-lo.X, h-lo.Z))
	center := geo.Pt(lo.X+f, lo.Z+f).Mul(q)
	k := base
	k.Shape, k.Part = ShapeArcSolid, PartCurbCorner
	k.Dims = [3]int64{mm(f + curb/2), mm(curb), int64(segs)}
	ctx.Curbs.AddArcSolidKey(ArcSolid{
		Key:          k,
		Center:       t.Center.Add(center),
		RadiusCenter: f + curb/2,
		Width:        curb,
		Height:       p.CurbHeight,
		StartAngle:   tile.QuadrantStart(q.X, q.Z),
		Span:         math.Pi / 2,
		Segments:     segs,
		Color:        pal.Curb,
	})

	if run := h - (lo.Z + f); run > 1e-9 {
		mid := geo.Pt(lo.X-curb/2, lo.Z+f+run/2).Mul(q)
		ctx.Curbs.AddBox(Box{Center: t.Center.Add(mid), SizeX: curb, SizeY: p.CurbHeight, SizeZ: run, Color: pal.Curb})
	}
	if run := h - (lo.X + f); run > 1e-9 {
		mid := geo.Pt(lo.X+f+run/2, lo.Z-curb/2).Mul(q)
		ctx.Curbs.AddBox(Box{Center: t.Center.Add(mid), SizeX: run, SizeY: p.CurbHeight, SizeZ: curb, Color: pal.Curb})
	}
}
