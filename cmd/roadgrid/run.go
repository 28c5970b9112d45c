package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/scene"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
	"github.com/ChicagoDave/roadgrid/pkg/surface"
	"github.com/ChicagoDave/roadgrid/pkg/validation"
)

// loadAndValidate loads the city file and runs schema validation.
func loadAndValidate(projectPath string) (*spec.CitySpec, *validation.Report, error) {
	citySpec, err := spec.LoadProject(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading spec: %w", err)
	}
	schemaReport := validation.ValidateSchema(citySpec)
	return citySpec, schemaReport, nil
}

// generate loads, validates and runs the pipeline. Schema errors are
// printed and returned combined into one error.
func generate(projectPath string, log *zap.Logger) (*scene.Output, *validation.Report, error) {
	citySpec, report, err := loadAndValidate(projectPath)
	if err != nil {
		return nil, nil, err
	}
	if !report.Valid {
		printValidationReport(report)
		return nil, report, fmt.Errorf("validating city: %w", report.Err())
	}
	out, err := scene.Generate(citySpec, log)
	if err != nil {
		return nil, report, err
	}
	report.Merge(out.Report)
	return out, report, nil
}

func runValidate(projectPath string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	citySpec, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if report.Valid {
		out, err := scene.Generate(citySpec, log)
		if err != nil {
			return err
		}
		report.Merge(out.Report)
	}

	printValidationReport(report)

	if !report.Valid {
		return fmt.Errorf("validating city: %w", report.Err())
	}
	return nil
}

func runBuild(projectPath, geojsonPath string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	out, report, err := generate(projectPath, log)
	if err != nil {
		return err
	}
	printBuildSummary(out)

	if geojsonPath != "" {
		data, err := scene.GraphGeoJSON(out.Topology, out.Loops).MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding geojson: %w", err)
		}
		if err := os.WriteFile(geojsonPath, data, 0o644); err != nil {
			return fmt.Errorf("writing geojson: %w", err)
		}
		fmt.Printf("\nWrote %s\n", geojsonPath)
	}

	if len(report.Warnings) > 0 || len(report.Errors) > 0 {
		fmt.Println()
		printValidationReport(report)
	}
	return nil
}

func runEmit(projectPath, outPath string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	out, report, err := generate(projectPath, log)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	output := map[string]any{
		"fingerprint": out.Topology.Fingerprint().String(),
		"tiles":       out.Tiles.Tiles(),
		"validation":  report,
		"scene_graph": out.Scene,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func runClassify(projectPath string, x, z float64, prevName string) error {
	prev := surface.Unknown
	if prevName != "" {
		p, err := surface.ParseSurface(prevName)
		if err != nil {
			return err
		}
		prev = p
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	out, _, err := generate(projectPath, log)
	if err != nil {
		return err
	}

	p := geo.Pt(x, z)
	sample, t := surface.Locate(p, out.Tiles, out.LoopPolygons(), out.Params, prev)
	if sample.Surface == surface.Unknown {
		fmt.Printf("(%.3f, %.3f): %s (no road here)\n", x, z, surface.Unknown)
		return nil
	}
	printSample(p, t, sample, surface.Height(sample.Surface, out.Params))
	return nil
}

// loadTrace reads a JSON array of ticks, each mapping wheel ids to world
// points.
func loadTrace(path string) ([]map[surface.WheelID]geo.Point2D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	var ticks []map[surface.WheelID]geo.Point2D
	if err := json.Unmarshal(data, &ticks); err != nil {
		return nil, fmt.Errorf("parsing trace %s: %w", path, err)
	}
	return ticks, nil
}

// runTrace replays a recorded drive through the wheel classifier and
// prints every surface transition.
func runTrace(projectPath, tracePath string) error {
	ticks, err := loadTrace(tracePath)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	out, _, err := generate(projectPath, log)
	if err != nil {
		return err
	}

	c := out.Classifier(log)
	results := c.Replay(ticks, out.Tiles)
	printTrace(results)
	if len(ticks) > 0 {
		printFinal(c, ticks[len(ticks)-1])
	}
	return nil
}
