package validation

import (
	"math"
	"testing"

	"github.com/ChicagoDave/roadgrid/pkg/spec"
)

func validSpec() *spec.CitySpec {
	s := &spec.CitySpec{
		SpecVersion: "0.1.0",
		TileSize:    20,
		Segments: []spec.SegmentDef{
			{ID: "main", A: [2]float64{0, 0}, B: [2]float64{4, 0}, Space: spec.SpaceTile, LanesF: 1, LanesB: 1},
			{ID: "cross", A: [2]float64{2, -2}, B: [2]float64{2, 2}, Space: spec.SpaceTile, LanesF: 1, LanesB: 1},
		},
		Tiles: []spec.TileDef{
			{X: 0, Z: 0, Connections: []string{"E"}},
		},
	}
	spec.ApplyDefaults(s)
	return s
}

func hasErrorAt(r *Report, path string) bool {
	for _, e := range r.Errors {
		if e.SpecPath == path {
			return true
		}
	}
	return false
}

func TestValidateSchema_Valid(t *testing.T) {
	r := ValidateSchema(validSpec())
	if !r.Valid {
		t.Errorf("expected valid, got %d errors", len(r.Errors))
		for _, e := range r.Errors {
			t.Logf("  error: %s", e.Message)
		}
	}
	if len(r.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", r.Warnings)
	}
}

func TestValidateSchema_Nil(t *testing.T) {
	if ValidateSchema(nil).Valid {
		t.Error("expected invalid for nil spec")
	}
}

func TestValidateSchema_TileSize(t *testing.T) {
	for _, size := range []float64{0, -5, math.Inf(1), math.NaN()} {
		s := validSpec()
		s.TileSize = size
		r := ValidateSchema(s)
		if !hasErrorAt(r, "tile_size") {
			t.Errorf("tile_size %v: expected error", size)
		}
	}
}

func TestValidateSchema_Origin(t *testing.T) {
	s := validSpec()
	s.Origin.X = math.NaN()
	if !hasErrorAt(ValidateSchema(s), "origin") {
		t.Error("expected error for non-finite origin")
	}
}

func TestValidateSchema_DuplicateSegmentID(t *testing.T) {
	s := validSpec()
	s.Segments[1].ID = "main"
	r := ValidateSchema(s)
	if !hasErrorAt(r, "segments[1].id") {
		t.Fatal("expected duplicate id error")
	}
	if r.Errors[0].ConflictWith != "segments[0]" {
		t.Errorf("ConflictWith = %q", r.Errors[0].ConflictWith)
	}
}

func TestValidateSchema_EmptySegmentID(t *testing.T) {
	s := validSpec()
	s.Segments[0].ID = ""
	if !hasErrorAt(ValidateSchema(s), "segments[0].id") {
		t.Error("expected empty id error")
	}
}

func TestValidateSchema_UnknownSpace(t *testing.T) {
	s := validSpec()
	s.Segments[0].Space = "polar"
	if !hasErrorAt(ValidateSchema(s), "segments[0].space") {
		t.Error("expected space error")
	}
}

func TestValidateSchema_ZeroLengthSegmentWarns(t *testing.T) {
	s := validSpec()
	s.Segments[0].B = s.Segments[0].A
	r := ValidateSchema(s)
	if !r.Valid {
		t.Error("zero-length segment should only warn")
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(r.Warnings))
	}
}

func TestValidateSchema_NegativeLanes(t *testing.T) {
	s := validSpec()
	s.Segments[0].LanesB = -1
	if !hasErrorAt(ValidateSchema(s), "segments[0]") {
		t.Error("expected negative lane error")
	}
}

func TestValidateSchema_BadTileOverride(t *testing.T) {
	s := validSpec()
	s.Tiles = append(s.Tiles, spec.TileDef{X: 1, Z: 1, Axis: "diagonal", Connections: []string{"N", "up"}})
	r := ValidateSchema(s)
	if !hasErrorAt(r, "tiles[1].axis") {
		t.Error("expected axis error")
	}
	if !hasErrorAt(r, "tiles[1].connections[1]") {
		t.Error("expected connection error")
	}
}

func TestValidateSchema_DuplicateTileOverrideWarns(t *testing.T) {
	s := validSpec()
	s.Tiles = append(s.Tiles, spec.TileDef{X: 0, Z: 0, Connections: []string{"W"}})
	r := ValidateSchema(s)
	if !r.Valid || len(r.Warnings) != 1 {
		t.Errorf("expected one warning and valid report, got %s", r.Summary)
	}
}

func TestValidateSchema_ConnectorParams(t *testing.T) {
	s := validSpec()
	s.Connectors.MinTangencyDot = 1.5
	s.Connectors.Setback = -1
	r := ValidateSchema(s)
	if !hasErrorAt(r, "connectors.min_tangency_dot") || !hasErrorAt(r, "connectors.setback") {
		t.Errorf("expected connector errors, got %+v", r.Errors)
	}
}

func TestValidateSchema_NarrowTileWarns(t *testing.T) {
	s := validSpec()
	s.TileSize = 6
	s.Road.TurnRadius = 3
	r := ValidateSchema(s)
	if !r.Valid {
		t.Fatalf("narrow tile should only warn: %+v", r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(r.Warnings))
	}
}
