package junction

import (
	"errors"
	"fmt"

	"github.com/ChicagoDave/roadgrid/pkg/loops"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

// ErrOpenLoop is returned for a loop that does not close.
var ErrOpenLoop = errors.New("loop is not closed")

// ErrDegenerateLoop is returned for a loop with a NaN or infinite point.
var ErrDegenerateLoop = errors.New("loop has non-finite points")

// EmitLoop fills a stitched junction boundary with asphalt. The polygon is
// keyed by its centroid and area, so regenerating the same junction yields
// the same key.
func EmitLoop(l loops.Loop, ctx *Context) error {
	if ctx == nil || ctx.Road == nil {
		return fmt.Errorf("emitting loop: %w", ErrNoRoadBuilder)
	}
	if !l.Closed() {
		return fmt.Errorf("emitting loop of %d points: %w", len(l.Points), ErrOpenLoop)
	}
	poly := l.Polygon()
	if !poly.IsFinite() {
		return fmt.Errorf("emitting loop of %d points: %w", len(l.Points), ErrDegenerateLoop)
	}
	c := poly.Centroid()
	key := Key{
		Shape:    ShapePolygon,
		Junction: tile.JunctionIrregular,
		Part:     PartLoop,
		Dims:     [3]int64{mm(c.X), mm(c.Z), mm(poly.Area())},
	}
	ctx.Road.AddGeometryKey(key, Geometry{
		Polygon: poly.Translate(c.Scale(-1)),
		Offset:  c,
		Color:   ctx.Palette.Asphalt,
	})
	return nil
}
