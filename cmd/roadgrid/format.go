package main

import (
	"fmt"
	"sort"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/scene"
	"github.com/ChicagoDave/roadgrid/pkg/surface"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
	"github.com/ChicagoDave/roadgrid/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.SpecPath != "" {
				fmt.Printf("    -> %s = %v\n", e.SpecPath, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			if e.ConflictWith != "" {
				fmt.Printf("    conflicts with: %s\n", e.ConflictWith)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.SpecPath != "" {
				fmt.Printf("    -> %s = %v\n", w.SpecPath, w.ActualValue)
			}
			if w.Expected != "" {
				fmt.Printf("    expected: %s\n", w.Expected)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printBuildSummary(out *scene.Output) {
	tg := out.Topology
	fmt.Println("Road Graph")
	fmt.Println("==========")
	fmt.Printf("  Fingerprint:  %s\n", tg.Fingerprint())
	fmt.Printf("  Nodes:        %d\n", len(tg.Nodes()))
	fmt.Printf("  Edges:        %d\n", len(tg.Edges()))
	if skipped := tg.Skipped(); len(skipped) > 0 {
		fmt.Printf("  Skipped:      %v\n", skipped)
	}

	counts := make(map[tile.Axis]int)
	for _, t := range out.Tiles.Tiles() {
		counts[t.Info.Axis]++
	}
	fmt.Println()
	fmt.Println("Tiles")
	fmt.Println("-----")
	for _, a := range []tile.Axis{tile.AxisEW, tile.AxisNS, tile.AxisCorner, tile.AxisIntersection} {
		fmt.Printf("  %-14s %4d\n", a, counts[a])
	}
	fmt.Printf("  %-14s %4d\n", "total", out.Tiles.Len())

	if len(out.Patches) > 0 {
		fmt.Println()
		fmt.Println("Junction Patches")
		fmt.Println("----------------")
		for _, p := range out.Patches {
			fmt.Printf("  node %-8s connectors %d/%d\n", p.Node, len(p.Valid()), len(p.Connectors))
		}
		fmt.Printf("  loops: %d\n", len(out.Loops))
	}

	fmt.Println()
	fmt.Printf("Scene: %d entities, %d meshes\n", len(out.Scene.Entities), len(out.Scene.Meshes))
}

func printSample(p geo.Point2D, t *tile.Tile, s surface.Sample, height float64) {
	if t != nil && t.Info.Axis != tile.AxisNone {
		fmt.Printf("(%.3f, %.3f) on tile (%d,%d) %s\n", p.X, p.Z, t.Coord.X, t.Coord.Z, t.Info.Axis)
	} else {
		fmt.Printf("(%.3f, %.3f) by a stitched junction loop\n", p.X, p.Z)
	}
	fmt.Printf("  surface:   %s\n", s.Surface)
	fmt.Printf("  distance:  %.3f\n", s.Distance)
	fmt.Printf("  height:    %.3f\n", height)
}

func printTrace(results []surface.Result) {
	n := 0
	for i, res := range results {
		for _, tr := range res.Transitions {
			fmt.Printf("tick %4d  %-8s %-8s -> %-8s  %+.3f\n", i, tr.Wheel, tr.From, tr.To, tr.HeightDelta)
			n++
		}
	}
	fmt.Printf("%d ticks, %d transitions\n", len(results), n)
}

func printFinal(c *surface.Classifier, last map[surface.WheelID]geo.Point2D) {
	ids := make([]string, 0, len(last))
	for id := range last {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  %-8s %s\n", id, c.Surface(surface.WheelID(id)))
	}
}
