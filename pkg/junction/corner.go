package junction

import (
	"math"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

// emitCorner draws a 90° turn. Every shape is built in the canonical
// north-east quadrant and mirrored by the corner signs, so roadway, curbs
// and sidewalks share one quadrant convention.
func emitCorner(t tile.Tile, ctx *Context) {
	p := ctx.Params
	pal := ctx.Palette
	c := p.Corner(t.Info)
	h := p.Half()
	hw, r := c.HalfWidth, c.Radius
	sign := c.Sign()
	arcCenter := t.Center.Add(c.ArcCenter)
	segs := p.ArcSegmentsFor(c.Span)
	junction := t.Info.Mask.Junction()
	orient := uint8(t.Info.Mask)

	// Legs run from each connected tile edge to where the arc meets the axis.
	if leg := h - r; leg > 1e-9 {
		mid := (r + h) / 2
		ctx.Road.AddPlane(Plane{Center: t.Center.Add(geo.Pt(0, mid).Mul(sign)), SizeX: 2 * hw, SizeZ: leg, Color: pal.Asphalt})
		ctx.Road.AddPlane(Plane{Center: t.Center.Add(geo.Pt(mid, 0).Mul(sign)), SizeX: leg, SizeZ: 2 * hw, Color: pal.Asphalt})
	}

	ctx.Road.AddRingSectorKey(RingSector{
		Key:         Key{Shape: ShapeRingSector, Junction: junction, Orientation: orient, Part: PartRoadway, Dims: [3]int64{mm(r), mm(hw), int64(segs)}},
		Center:      arcCenter,
		InnerRadius: r - hw,
		OuterRadius: r + hw,
		StartAngle:  c.StartAngle,
		Span:        c.Span,
		Segments:    segs,
		Color:       pal.Asphalt,
	})

	if ctx.Markings != nil {
		lanes := t.Info.EW
		if t.Info.NS.Total() > lanes.Total() {
			lanes = t.Info.NS
		}
		col := pal.MarkingWhite
		if lanes.Bidirectional() {
			col = pal.MarkingYellow
		}
		ctx.Markings.AddArcSolidKey(ArcSolid{
			Key:          Key{Shape: ShapeArcSolid, Junction: junction, Orientation: orient, Part: PartCenterLine, Dims: [3]int64{mm(r), mm(p.MarkingWidth), int64(segs)}},
			Center:       arcCenter,
			Y:            markingY,
			RadiusCenter: r,
			Width:        p.MarkingWidth,
			StartAngle:   c.StartAngle,
			Span:         c.Span,
			Segments:     segs,
			Color:        col,
		})
	}

	if !ctx.details() {
		return
	}
	curb := p.CurbThickness

	if ctx.Curbs != nil {
		for _, a := range []struct {
			part   Part
			radius float64
		}{
			{PartCurbOuter, r + hw + curb/2},
			{PartCurbInner, r - hw - curb/2},
		} {
			ctx.Curbs.AddArcSolidKey(ArcSolid{
				Key:          Key{Shape: ShapeArcSolid, Junction: junction, Orientation: orient, Part: a.part, Dims: [3]int64{mm(a.radius), mm(curb), int64(segs)}},
				Center:       arcCenter,
				RadiusCenter: a.radius,
				Width:        curb,
				Height:       p.CurbHeight,
				StartAngle:   c.StartAngle,
				Span:         c.Span,
				Segments:     segs,
				Color:        pal.Curb,
			})
		}
		if leg := h - r; leg > 1e-9 {
			mid := (r + h) / 2
			off := hw + curb/2
			for _, side := range []float64{-1, 1} {
				ctx.Curbs.AddBox(Box{Center: t.Center.Add(geo.Pt(side*off, mid).Mul(sign)), SizeX: curb, SizeY: p.CurbHeight, SizeZ: leg, Color: pal.Curb})
				ctx.Curbs.AddBox(Box{Center: t.Center.Add(geo.Pt(mid, side*off).Mul(sign)), SizeX: leg, SizeY: p.CurbHeight, SizeZ: curb, Color: pal.Curb})
			}
		}
	}

	if ctx.Sidewalks != nil {
		fill := outerSidewalk(h, r, hw+curb, segs).Mirror(sign)
		ctx.Sidewalks.AddGeometryKey(
			Key{Shape: ShapePolygon, Junction: junction, Orientation: orient, Part: PartSidewalkFill, Dims: [3]int64{mm(r), mm(hw), mm(h)}},
			Geometry{Polygon: fill, Offset: t.Center, Y: p.CurbHeight, Color: pal.Sidewalk},
		)
		edge := hw + curb
		inner := geo.RoundedRectMinCorner(geo.Pt(edge, edge), geo.Pt(h, h), c.Fillet, segs).Mirror(sign)
		if !inner.IsEmpty() {
			ctx.Sidewalks.AddGeometryKey(
				Key{Shape: ShapePolygon, Junction: junction, Orientation: orient, Part: PartSidewalkCorner, Dims: [3]int64{mm(c.Fillet), mm(edge), mm(h)}},
				Geometry{Polygon: inner, Offset: t.Center, Y: p.CurbHeight, Color: pal.Sidewalk},
			)
		}
	}
}

// outerSidewalk returns the sidewalk outside a north-east turn: the tile
// less the disc bounded by the outer curb and the strips beyond the legs'
// outer curbs. edge is the roadway half width plus curb.
func outerSidewalk(h, r, edge float64, segs int) geo.Polygon {
	ro := r + edge
	var pl geo.Polyline
	pl.AppendDistinct(1e-9,
		geo.Pt(-h, -h),
		geo.Pt(h, -h),
		geo.Pt(h, r-ro),
		geo.Pt(r, r-ro),
	)
	pl.AppendDistinct(1e-9, geo.ArcPoints(geo.Pt(r, r), ro, 3*math.Pi/2, -math.Pi/2, segs)...)
	pl.AppendDistinct(1e-9,
		geo.Pt(r-ro, h),
		geo.Pt(-h, h),
	)
	return geo.Polygon{Vertices: pl.Points}.EnsureCCW()
}
