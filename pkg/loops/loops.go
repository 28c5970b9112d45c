// Package loops stitches curb connectors into closed asphalt boundaries
// at junctions that the tile generator cannot express.
package loops

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/ChicagoDave/roadgrid/pkg/connector"
	"github.com/ChicagoDave/roadgrid/pkg/geo"
)

// closeEpsilon is how near the walk must come back to its first point.
const closeEpsilon = 1e-6

// Loop is a closed boundary. The last point repeats the first.
type Loop struct {
	Points []geo.Point2D        `json:"points"`
	Poles  []connector.PoleKey `json:"-"`
}

// Closed reports whether the loop returns to its first point and encloses
// at least three distinct points.
func (l Loop) Closed() bool {
	pl := geo.Polyline{Points: l.Points}
	return pl.IsClosed(closeEpsilon) && len(l.Points)-1 >= 3
}

// Polygon returns the loop as a counterclockwise polygon without the
// repeated closing point.
func (l Loop) Polygon() geo.Polygon {
	pts := l.Points
	if l.Closed() {
		pts = pts[:len(pts)-1]
	}
	return geo.Polygon{Vertices: append([]geo.Point2D(nil), pts...)}.EnsureCCW()
}

// Orb returns the loop as a single-ring orb polygon.
func (l Loop) Orb() orb.Polygon {
	ring := make(orb.Ring, len(l.Points))
	for i, p := range l.Points {
		ring[i] = orb.Point{p.X, p.Z}
	}
	return orb.Polygon{ring}
}

// Area returns the enclosed area.
func (l Loop) Area() float64 {
	return planar.Area(l.Orb())
}

// Perimeter returns the length of the boundary.
func (l Loop) Perimeter() float64 {
	return geo.NewPolyline(l.Points...).Length()
}

// Siblings pairs poles that sit at the same cut of the same road. An
// explicit left/right pair wins; otherwise the two candidates farthest
// apart are taken as the opposite sides of the gap, ties going to the
// earlier pair.
func Siblings(ends []connector.Pole) map[connector.PoleKey]connector.PoleKey {
	var order []connector.CutKey
	groups := make(map[connector.CutKey][]connector.Pole)
	for _, p := range ends {
		ck := p.CutKey()
		if _, ok := groups[ck]; !ok {
			order = append(order, ck)
		}
		groups[ck] = append(groups[ck], p)
	}

	out := make(map[connector.PoleKey]connector.PoleKey)
	for _, ck := range order {
		g := groups[ck]
		if len(g) < 2 {
			continue
		}
		a, b, ok := explicitPair(g)
		if !ok {
			a, b = farthestPair(g)
		}
		ka, kb := g[a].Key(), g[b].Key()
		if ka == kb {
			continue
		}
		out[ka] = kb
		out[kb] = ka
	}
	return out
}

func explicitPair(g []connector.Pole) (int, int, bool) {
	left, right := -1, -1
	for i, p := range g {
		switch {
		case p.Side == connector.SideLeft && left < 0:
			left = i
		case p.Side == connector.SideRight && right < 0:
			right = i
		}
	}
	if left < 0 || right < 0 {
		return 0, 0, false
	}
	return left, right, true
}

func farthestPair(g []connector.Pole) (int, int) {
	a, b, best := 0, 1, -1.0
	for i := 0; i < len(g); i++ {
		for j := i + 1; j < len(g); j++ {
			if d := g[i].Pos.DistanceSq(g[j].Pos); d > best {
				a, b, best = i, j, d
			}
		}
	}
	return a, b
}

// Extract walks pole → connector → pole → sibling → connector … from every
// unvisited pole and returns the walks that close. Every pole a walk
// touches is marked visited whether or not the walk succeeds, and each
// walk is bounded by the connector count.
func Extract(connectors []connector.Connector, ends []connector.Pole, angleStep float64) []Loop {
	byPole := make(map[connector.PoleKey]int, 2*len(connectors))
	for i, c := range connectors {
		for _, k := range []connector.PoleKey{c.A.Key(), c.B.Key()} {
			if _, ok := byPole[k]; !ok {
				byPole[k] = i
			}
		}
	}
	siblings := Siblings(ends)
	visited := make(map[connector.PoleKey]bool)
	maxSteps := 2*len(connectors) + 2

	var loops []Loop
	for _, c := range connectors {
		for _, start := range []connector.PoleKey{c.A.Key(), c.B.Key()} {
			if visited[start] {
				continue
			}
			if _, ok := siblings[start]; !ok {
				continue
			}
			w := walker{
				connectors: connectors,
				byPole:     byPole,
				siblings:   siblings,
				visited:    visited,
				angleStep:  angleStep,
			}
			if loop, ok := w.walk(start, maxSteps); ok {
				loops = append(loops, loop)
			}
		}
	}
	return loops
}

type walker struct {
	connectors []connector.Connector
	byPole     map[connector.PoleKey]int
	siblings   map[connector.PoleKey]connector.PoleKey
	visited    map[connector.PoleKey]bool
	angleStep  float64
}

func (w *walker) walk(start connector.PoleKey, maxSteps int) (Loop, bool) {
	var pl geo.Polyline
	var poles []connector.PoleKey
	var startPos geo.Point2D
	cur := start
	closed := false

	for steps := 0; steps < maxSteps; steps += 2 {
		w.visited[cur] = true
		poles = append(poles, cur)
		ci, ok := w.byPole[cur]
		if !ok {
			break
		}
		c := w.connectors[ci]
		seg := geo.NewPolyline(c.Points(w.angleStep)...)
		next := c.B.Key()
		if c.A.Key() != cur {
			seg = seg.Reverse()
			next = c.A.Key()
		}
		if len(pl.Points) == 0 && len(seg.Points) > 0 {
			startPos = seg.Points[0]
		}
		pl.AppendDistinct(closeEpsilon, seg.Points...)
		w.visited[next] = true
		poles = append(poles, next)

		sib, ok := w.siblings[next]
		if !ok {
			break
		}
		if sib == start {
			closed = true
			break
		}
		if w.visited[sib] {
			break
		}
		cur = sib
	}
	if !closed {
		return Loop{}, false
	}

	pl.AppendDistinct(closeEpsilon, startPos)
	loop := Loop{Points: pl.Points, Poles: poles}
	if !loop.Closed() {
		return Loop{}, false
	}
	return loop, true
}
