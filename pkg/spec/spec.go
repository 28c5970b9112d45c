package spec

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrMissingTileSize is returned when a city spec has no positive tile size.
var ErrMissingTileSize = errors.New("tile_size must be set to a positive value")

// Load reads a city spec from a YAML file and fills unset parameters with
// their defaults.
func Load(path string) (*CitySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a city spec from YAML bytes. A missing tile size is a hard
// error since nothing downstream can be sized without it.
func Parse(data []byte) (*CitySpec, error) {
	var spec CitySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing spec YAML: %w", err)
	}
	if !(spec.TileSize > 0) {
		return nil, fmt.Errorf("parsing spec YAML: %w", ErrMissingTileSize)
	}
	ApplyDefaults(&spec)
	return &spec, nil
}

// LoadProject loads a city spec from a project directory.
// It looks for city.yaml in the given directory.
func LoadProject(projectDir string) (*CitySpec, error) {
	return Load(filepath.Join(projectDir, "city.yaml"))
}

// ApplyDefaults fills zero-valued parameters. The tile size has no default.
func ApplyDefaults(s *CitySpec) {
	r := &s.Road
	setDefault(&r.LaneWidth, 3.2)
	setDefault(&r.Shoulder, 0.35)
	setDefault(&r.CurbThickness, 0.3)
	setDefault(&r.CurbHeight, 0.15)
	setDefault(&r.MinFillet, 0.35)
	setDefault(&r.MarkingWidth, 0.15)
	setDefault(&r.DashLength, 3)
	setDefault(&r.DashGap, 3)
	if r.ArcSegments <= 0 {
		r.ArcSegments = 16
	}
	if r.TurnRadius == 0 && s.TileSize > 0 {
		r.TurnRadius = s.TileSize / 2
	}
	if r.RoundCorners == nil {
		on := true
		r.RoundCorners = &on
	}

	c := &s.Connectors
	setDefault(&c.MinTangencyDot, 0.92)
	setDefault(&c.AngleStep, math.Pi/32)
	if c.MaxRadius == 0 {
		c.MaxRadius = r.TurnRadius
	}

	setDefault(&s.Surface.Hysteresis, 0.05)

	for i := range s.Segments {
		if s.Segments[i].Space == "" {
			s.Segments[i].Space = SpaceWorld
		}
	}
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
