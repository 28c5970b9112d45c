package loops

import (
	"math"
	"sort"

	"github.com/ChicagoDave/roadgrid/pkg/connector"
	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
	"github.com/ChicagoDave/roadgrid/pkg/topology"
)

// Params sizes the poles and connectors of a node patch.
type Params struct {
	Tile      tile.Params
	Connector connector.Params
	// Setback is the distance from the node to the poles along each road.
	// Zero means road half width plus turn radius.
	Setback float64
}

// ParamsFromSpec collects patch parameters from a (defaulted) city spec.
func ParamsFromSpec(s *spec.CitySpec) Params {
	return Params{
		Tile:      tile.ParamsFromSpec(s),
		Connector: connector.ParamsFromSpec(s),
		Setback:   s.Connectors.Setback,
	}
}

// Patch is the curb layout around one multi-road node.
type Patch struct {
	Node       topology.NodeID
	Ends       []connector.Pole
	Connectors []connector.Connector
}

// Valid returns the connectors that passed fitting.
func (p Patch) Valid() []connector.Connector {
	out := make([]connector.Connector, 0, len(p.Connectors))
	for _, c := range p.Connectors {
		if c.Valid {
			out = append(out, c)
		}
	}
	return out
}

// Loops extracts the closed boundaries of the patch from its valid
// connectors.
func (p Patch) Loops(angleStep float64) []Loop {
	return Extract(p.Valid(), p.Ends, angleStep)
}

type approach struct {
	edge    topology.Edge
	out     geo.Point2D
	angle   float64
	center  geo.Point2D
	half    float64
	cut     float64
	ccwSide connector.Side
}

func (a approach) ccwPole() connector.Pole {
	return a.pole(a.center.Add(a.out.Perp().Scale(a.half)), a.ccwSide)
}

func (a approach) cwPole() connector.Pole {
	side := connector.SideLeft
	if a.ccwSide == connector.SideLeft {
		side = connector.SideRight
	}
	return a.pole(a.center.Sub(a.out.Perp().Scale(a.half)), side)
}

func (a approach) pole(pos geo.Point2D, side connector.Side) connector.Pole {
	return connector.Pole{
		Pos:     pos,
		Road:    a.edge.ID,
		Side:    side,
		Cut:     a.cut,
		RoadDir: a.edge.Dir,
	}
}

// NodePatch places left and right poles on every rendered road at a node
// of degree three or more and fits a curb connector across each gap
// between roads that are adjacent counterclockwise. It reports false when
// fewer than three rendered roads meet.
func NodePatch(g *topology.Graph, n topology.Node, p Params) (Patch, bool) {
	var edges []topology.Edge
	for _, e := range g.IncidentEdges(n.ID) {
		if e.Rendered {
			edges = append(edges, e)
		}
	}
	if len(edges) < 3 {
		return Patch{}, false
	}

	turn := p.Tile.TurnRadius
	if turn <= 0 {
		turn = p.Tile.Half()
	}
	roads := make([]approach, 0, len(edges))
	for _, e := range edges {
		hw := p.Tile.HalfWidth(tile.LaneCount{Forward: e.LanesF, Backward: e.LanesB})
		s := p.Setback
		if s <= 0 {
			s = hw + turn
		}
		s = math.Min(s, 0.49*e.Length)
		out := e.OutwardFrom(n.ID)
		a := approach{
			edge:    e,
			out:     out,
			angle:   geo.NormalizeAngle(out.Angle()),
			center:  n.Pos.Add(out.Scale(s)),
			half:    hw,
			cut:     s / e.Length,
			ccwSide: connector.SideLeft,
		}
		if e.B == n.ID {
			a.cut = 1 - a.cut
			a.ccwSide = connector.SideRight
		}
		roads = append(roads, a)
	}
	sort.SliceStable(roads, func(i, j int) bool { return roads[i].angle < roads[j].angle })

	patch := Patch{Node: n.ID}
	for _, r := range roads {
		patch.Ends = append(patch.Ends, r.cwPole(), r.ccwPole())
	}
	for i := range roads {
		j := (i + 1) % len(roads)
		patch.Connectors = append(patch.Connectors, connector.Fit(roads[i].ccwPole(), roads[j].cwPole(), p.Connector))
	}
	return patch, true
}
