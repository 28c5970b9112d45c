package validation

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/roadgrid/pkg/spec"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

// ValidateSchema checks a parsed, defaulted CitySpec before any geometry
// is computed.
func ValidateSchema(s *spec.CitySpec) *Report {
	r := NewReport()
	if s == nil {
		r.AddError(Result{Level: LevelSchema, Message: "city spec is nil"})
		return r
	}

	validateGrid(s, r)
	validateRoad(s, r)
	validateConnectors(s, r)
	validateSegments(s, r)
	validateTiles(s, r)

	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateGrid(s *spec.CitySpec, r *Report) {
	if !(s.TileSize > 0) || !finite(s.TileSize) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "tile_size must be a positive finite number",
			SpecPath:    "tile_size",
			ActualValue: s.TileSize,
			Expected:    "> 0",
		})
	}
	if !finite(s.Origin.X) || !finite(s.Origin.Z) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "origin must be finite",
			SpecPath:    "origin",
			ActualValue: fmt.Sprintf("(%g, %g)", s.Origin.X, s.Origin.Z),
		})
	}
}

func validateRoad(s *spec.CitySpec, r *Report) {
	rd := s.Road
	positive := map[string]float64{
		"road.lane_width":     rd.LaneWidth,
		"road.curb_thickness": rd.CurbThickness,
		"road.marking_width":  rd.MarkingWidth,
	}
	for path, v := range positive {
		if !(v > 0) {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s must be greater than 0", path),
				SpecPath:    path,
				ActualValue: v,
				Expected:    "> 0",
			})
		}
	}
	for path, v := range map[string]float64{
		"road.shoulder":    rd.Shoulder,
		"road.curb_height": rd.CurbHeight,
		"road.turn_radius": rd.TurnRadius,
		"road.min_fillet":  rd.MinFillet,
	} {
		if v < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s must be non-negative", path),
				SpecPath:    path,
				ActualValue: v,
				Expected:    ">= 0",
			})
		}
	}
	if rd.ArcSegments < 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "road.arc_segments must be at least 1",
			SpecPath:    "road.arc_segments",
			ActualValue: rd.ArcSegments,
			Expected:    ">= 1",
		})
	}
	if s.TileSize > 0 {
		half := s.TileSize / 2
		hw := rd.LaneWidth + rd.Shoulder
		if hw+rd.CurbThickness >= half {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("a two-lane road (half width %.2f plus curb) fills half the tile (%.2f); sidewalks will be empty", hw, half),
				SpecPath:    "road.lane_width",
				ActualValue: rd.LaneWidth,
				Suggestions: []string{"Increase tile_size or reduce lane_width"},
			})
		}
		if rd.TurnRadius > half {
			r.AddInfo(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("turn_radius %.2f is clamped to half the tile (%.2f) at corners", rd.TurnRadius, half),
				SpecPath:    "road.turn_radius",
				ActualValue: rd.TurnRadius,
			})
		}
	}
	if s.Surface.Hysteresis < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "surface.hysteresis must be non-negative",
			SpecPath:    "surface.hysteresis",
			ActualValue: s.Surface.Hysteresis,
			Expected:    ">= 0",
		})
	}
}

func validateConnectors(s *spec.CitySpec, r *Report) {
	c := s.Connectors
	if c.MaxRadius < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "connectors.max_radius must be non-negative",
			SpecPath:    "connectors.max_radius",
			ActualValue: c.MaxRadius,
			Expected:    ">= 0",
		})
	}
	if c.MinTangencyDot < -1 || c.MinTangencyDot > 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "connectors.min_tangency_dot must lie in [-1, 1]",
			SpecPath:    "connectors.min_tangency_dot",
			ActualValue: c.MinTangencyDot,
			Expected:    "[-1, 1]",
		})
	}
	if c.Setback < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "connectors.setback must be non-negative",
			SpecPath:    "connectors.setback",
			ActualValue: c.Setback,
			Expected:    ">= 0",
		})
	}
	if !(c.AngleStep > 0) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "connectors.angle_step must be greater than 0",
			SpecPath:    "connectors.angle_step",
			ActualValue: c.AngleStep,
			Expected:    "> 0",
		})
	}
}

func validateSegments(s *spec.CitySpec, r *Report) {
	if len(s.Segments) == 0 {
		r.AddWarning(Result{
			Level:    LevelSchema,
			Message:  "no road segments defined",
			SpecPath: "segments",
		})
		return
	}

	seen := make(map[string]int, len(s.Segments))
	for i, seg := range s.Segments {
		path := fmt.Sprintf("segments[%d]", i)
		if seg.ID == "" {
			r.AddError(Result{
				Level:    LevelSchema,
				Message:  fmt.Sprintf("segment at index %d has empty id", i),
				SpecPath: path + ".id",
				Expected: "non-empty string",
			})
		} else if prev, ok := seen[seg.ID]; ok {
			r.AddError(Result{
				Level:        LevelSchema,
				Message:      fmt.Sprintf("duplicate segment id %q at indices %d and %d", seg.ID, prev, i),
				SpecPath:     path + ".id",
				ActualValue:  seg.ID,
				ConflictWith: fmt.Sprintf("segments[%d]", prev),
			})
		} else {
			seen[seg.ID] = i
		}

		if seg.Space != spec.SpaceTile && seg.Space != spec.SpaceWorld {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("segment %q has unknown space %q", seg.ID, seg.Space),
				SpecPath:    path + ".space",
				ActualValue: string(seg.Space),
				Expected:    "tile or world",
			})
		}
		for _, v := range [...]float64{seg.A[0], seg.A[1], seg.B[0], seg.B[1]} {
			if !finite(v) {
				r.AddError(Result{
					Level:    LevelSchema,
					Message:  fmt.Sprintf("segment %q has a non-finite endpoint", seg.ID),
					SpecPath: path,
				})
				break
			}
		}
		if seg.A == seg.B {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("segment %q has zero length and will be skipped", seg.ID),
				SpecPath:    path,
				ActualValue: seg.A,
			})
		}
		if seg.LanesF < 0 || seg.LanesB < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("segment %q has a negative lane count", seg.ID),
				SpecPath:    path,
				ActualValue: fmt.Sprintf("%d/%d", seg.LanesF, seg.LanesB),
				Expected:    ">= 0",
			})
		} else if seg.LanesF+seg.LanesB == 0 {
			r.AddInfo(Result{
				Level:    LevelSchema,
				Message:  fmt.Sprintf("segment %q has no lanes; it renders as a one-lane road", seg.ID),
				SpecPath: path,
			})
		}
	}
}

func validateTiles(s *spec.CitySpec, r *Report) {
	seen := make(map[tile.Coord]int, len(s.Tiles))
	for i, td := range s.Tiles {
		path := fmt.Sprintf("tiles[%d]", i)
		c := tile.Coord{X: td.X, Z: td.Z}
		if prev, ok := seen[c]; ok {
			r.AddWarning(Result{
				Level:        LevelSchema,
				Message:      fmt.Sprintf("tile (%d,%d) is overridden more than once; the last entry wins", td.X, td.Z),
				SpecPath:     path,
				ConflictWith: fmt.Sprintf("tiles[%d]", prev),
			})
		}
		seen[c] = i

		if td.Axis != "" {
			if _, err := tile.ParseAxis(td.Axis); err != nil {
				r.AddError(Result{
					Level:       LevelSchema,
					Message:     err.Error(),
					SpecPath:    path + ".axis",
					ActualValue: td.Axis,
					Expected:    "NONE, EW, NS, CORNER or INTERSECTION",
				})
			}
		}
		for j, conn := range td.Connections {
			if _, err := tile.ParseDir(conn); err != nil {
				r.AddError(Result{
					Level:       LevelSchema,
					Message:     err.Error(),
					SpecPath:    fmt.Sprintf("%s.connections[%d]", path, j),
					ActualValue: conn,
					Expected:    "N, E, S or W",
				})
			}
		}
	}
}
