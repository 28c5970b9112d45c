package scene

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/roadgrid/pkg/validation"
)

// ValidateGraph performs structural validation on recorded output.
// It checks entity integrity, group index consistency, keyed mesh
// references, and bounds enclosure.
func ValidateGraph(g *Graph) *validation.Report {
	r := validation.NewReport()

	if g == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelGeometry,
			Message: "scene graph is nil",
		})
		return r
	}

	validateEntityIDs(g, r)
	validateGroupIndices(g, r)
	validateGroupMembership(g, r)
	validateMeshes(g, r)
	validateBoundsEnclosure(g, r)
	validateEntityDimensions(g, r)

	return r
}

func validateEntityIDs(g *Graph, r *validation.Report) {
	seen := make(map[string]int, len(g.Entities))

	for i, e := range g.Entities {
		if e.ID == "" {
			r.AddError(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity at index %d has empty ID", i),
				SpecPath:    fmt.Sprintf("entities[%d].id", i),
				ActualValue: "",
				Expected:    "non-empty string",
			})
			continue
		}
		if prev, exists := seen[e.ID]; exists {
			r.AddError(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("duplicate entity ID %q at indices %d and %d", e.ID, prev, i),
				SpecPath:    fmt.Sprintf("entities[%d].id", i),
				ActualValue: e.ID,
			})
		}
		seen[e.ID] = i
	}
}

func validateGroupIndices(g *Graph, r *validation.Report) {
	entityIDs := make(map[string]bool, len(g.Entities))
	for _, e := range g.Entities {
		entityIDs[e.ID] = true
	}

	checkGroup := func(groupType, groupName string, ids []string) {
		for _, id := range ids {
			if !entityIDs[id] {
				r.AddError(validation.Result{
					Level:       validation.LevelGeometry,
					Message:     fmt.Sprintf("group %s.%s references non-existent entity %q", groupType, groupName, id),
					SpecPath:    fmt.Sprintf("groups.%s.%s", groupType, groupName),
					ActualValue: id,
					Expected:    "existing entity ID",
				})
			}
		}
	}

	for name, ids := range g.Groups.Layers {
		checkGroup("layers", string(name), ids)
	}
	for name, ids := range g.Groups.EntityTypes {
		checkGroup("entity_types", string(name), ids)
	}
	for name, ids := range g.Groups.Meshes {
		checkGroup("meshes", name, ids)
	}
}

func membership[K comparable](groups map[K][]string) map[K]map[string]bool {
	out := make(map[K]map[string]bool, len(groups))
	for k, ids := range groups {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		out[k] = m
	}
	return out
}

func validateGroupMembership(g *Graph, r *validation.Report) {
	layerMembers := membership(g.Groups.Layers)
	typeMembers := membership(g.Groups.EntityTypes)
	meshMembers := membership(g.Groups.Meshes)

	for _, e := range g.Entities {
		if e.ID == "" {
			continue
		}

		if lm, ok := layerMembers[e.Layer]; ok {
			if !lm[e.ID] {
				r.AddError(validation.Result{
					Level:       validation.LevelGeometry,
					Message:     fmt.Sprintf("entity %q has layer %q but is not in layers group", e.ID, e.Layer),
					SpecPath:    fmt.Sprintf("groups.layers.%s", e.Layer),
					ActualValue: e.ID,
				})
			}
		} else {
			r.AddError(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity %q has layer %q but no such layer group exists", e.ID, e.Layer),
				SpecPath:    "groups.layers",
				ActualValue: string(e.Layer),
			})
		}

		if tm, ok := typeMembers[e.Type]; ok {
			if !tm[e.ID] {
				r.AddError(validation.Result{
					Level:       validation.LevelGeometry,
					Message:     fmt.Sprintf("entity %q has type %q but is not in entity_types group", e.ID, e.Type),
					SpecPath:    fmt.Sprintf("groups.entity_types.%s", e.Type),
					ActualValue: e.ID,
				})
			}
		} else {
			r.AddError(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity %q has type %q but no such entity_types group exists", e.ID, e.Type),
				SpecPath:    "groups.entity_types",
				ActualValue: string(e.Type),
			})
		}

		if e.Mesh != "" && !meshMembers[e.Mesh][e.ID] {
			r.AddError(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity %q uses mesh %q but is not in meshes group", e.ID, e.Mesh),
				SpecPath:    fmt.Sprintf("groups.meshes.%s", e.Mesh),
				ActualValue: e.ID,
			})
		}
	}
}

// validateMeshes checks that keyed entities resolve to a mesh of their own
// type and that no key was reused for different geometry.
func validateMeshes(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		if e.Mesh == "" {
			continue
		}
		m, ok := g.Meshes[e.Mesh]
		if !ok {
			r.AddError(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity %q references unknown mesh %q", e.ID, e.Mesh),
				SpecPath:    fmt.Sprintf("entities.%s.mesh", e.ID),
				ActualValue: e.Mesh,
			})
			continue
		}
		if m.Type != e.Type {
			r.AddError(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity %q of type %q uses %q mesh %q", e.ID, e.Type, m.Type, e.Mesh),
				SpecPath:    fmt.Sprintf("entities.%s.mesh", e.ID),
				ActualValue: string(m.Type),
				Expected:    string(e.Type),
			})
		}
	}
	for key, m := range g.Meshes {
		if m.Type == EntityPolygon && len(m.Polygon) < 3 {
			r.AddError(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("mesh %q has %d vertices", key, len(m.Polygon)),
				SpecPath:    fmt.Sprintf("meshes.%s.polygon", key),
				ActualValue: len(m.Polygon),
				Expected:    ">= 3",
			})
		}
		if m.Conflicts > 0 {
			r.AddWarning(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("mesh key %q reused for different geometry %d times", key, m.Conflicts),
				SpecPath:    fmt.Sprintf("meshes.%s", key),
				ActualValue: m.Conflicts,
			})
		}
	}
}

func validateBoundsEnclosure(g *Graph, r *validation.Report) {
	bounds := g.Metadata.CityBounds
	tolerance := 1.0

	for _, e := range g.Entities {
		halfX := e.Dimensions.X / 2
		halfZ := e.Dimensions.Z / 2

		if e.Position.X-halfX < bounds.Min.X-tolerance || e.Position.X+halfX > bounds.Max.X+tolerance {
			r.AddWarning(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity %q X extent [%.1f, %.1f] outside city bounds [%.1f, %.1f]", e.ID, e.Position.X-halfX, e.Position.X+halfX, bounds.Min.X, bounds.Max.X),
				SpecPath:    "metadata.city_bounds",
				ActualValue: e.Position.X,
			})
			break
		}
		if e.Position.Z-halfZ < bounds.Min.Z-tolerance || e.Position.Z+halfZ > bounds.Max.Z+tolerance {
			r.AddWarning(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity %q Z extent [%.1f, %.1f] outside city bounds [%.1f, %.1f]", e.ID, e.Position.Z-halfZ, e.Position.Z+halfZ, bounds.Min.Z, bounds.Max.Z),
				SpecPath:    "metadata.city_bounds",
				ActualValue: e.Position.Z,
			})
			break
		}
	}
}

// validateEntityDimensions requires a positive footprint everywhere and a
// positive height on boxes. Arc solids may be flat paint.
func validateEntityDimensions(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		d := e.Dimensions
		ok := d.X > 0 && d.Z > 0
		if e.Type == EntityBox {
			ok = ok && d.Y > 0
		}
		finite := !math.IsNaN(e.Position.X+e.Position.Y+e.Position.Z) && !math.IsInf(e.Position.X+e.Position.Y+e.Position.Z, 0)
		if !ok || !finite {
			r.AddWarning(validation.Result{
				Level:       validation.LevelGeometry,
				Message:     fmt.Sprintf("entity %q has degenerate placement or dimension (%.2f, %.2f, %.2f)", e.ID, d.X, d.Y, d.Z),
				SpecPath:    fmt.Sprintf("entities.%s.dimensions", e.ID),
				ActualValue: fmt.Sprintf("%.2f x %.2f x %.2f", d.X, d.Y, d.Z),
				Expected:    "positive footprint",
			})
		}
	}
}
