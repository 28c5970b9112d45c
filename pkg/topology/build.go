package topology

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
)

var (
	// ErrInvalidTileSize is returned when the tile size is missing or not positive.
	ErrInvalidTileSize = errors.New("tile size must be a positive finite number")
	// ErrInvalidOrigin is returned when the origin is not finite.
	ErrInvalidOrigin = errors.New("origin must be finite")
)

const (
	// DefaultEpsilon is the distance under which two points are one node.
	DefaultEpsilon = 1e-3
	// DefaultSnapTolerance is how close a point must be to a tile-grid
	// position to take that position and its tile coordinate.
	DefaultSnapTolerance = 1e-6
	// paramEpsilon collapses cut points with nearly equal parameters.
	paramEpsilon = 1e-9
)

// Segment is one authored centerline. When InTileSpace is set, A and B are
// tile-grid coordinates.
type Segment struct {
	ID          string
	A, B        geo.Point2D
	InTileSpace bool
	LanesF      int
	LanesB      int
	Tag         string
	Rendered    bool
}

// SegmentsFromSpec converts authored segment definitions.
func SegmentsFromSpec(defs []spec.SegmentDef) []Segment {
	out := make([]Segment, len(defs))
	for i, d := range defs {
		out[i] = Segment{
			ID:          d.ID,
			A:           geo.Pt(d.A[0], d.A[1]),
			B:           geo.Pt(d.B[0], d.B[1]),
			InTileSpace: d.Space == spec.SpaceTile,
			LanesF:      d.LanesF,
			LanesB:      d.LanesB,
			Tag:         d.Tag,
			Rendered:    d.IsRendered(),
		}
	}
	return out
}

// Builder builds graphs. The zero value is not usable; call NewBuilder.
type Builder struct {
	Epsilon       float64
	SnapTolerance float64
	log           *zap.Logger
}

// NewBuilder returns a builder with default tolerances. A nil logger
// disables logging.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		Epsilon:       DefaultEpsilon,
		SnapTolerance: DefaultSnapTolerance,
		log:           log,
	}
}

// Build runs a default builder over segments.
func Build(segments []Segment, origin geo.Point2D, tileSize float64) (*Graph, error) {
	return NewBuilder(nil).Build(segments, origin, tileSize)
}

// cut is a point along a segment at parameter t.
type cut struct {
	t   float64
	p   geo.Point2D
	end bool
}

type prepared struct {
	seg  Segment
	id   string
	a, b geo.Point2D
	cuts []cut
}

// Build converts segments into a graph. Malformed segments are skipped and
// listed in Graph.Skipped; only a bad tile size or origin is an error.
func (b *Builder) Build(segments []Segment, origin geo.Point2D, tileSize float64) (*Graph, error) {
	if !(tileSize > 0) || math.IsInf(tileSize, 0) {
		return nil, fmt.Errorf("building topology: %w (got %v)", ErrInvalidTileSize, tileSize)
	}
	if !origin.IsFinite() {
		return nil, fmt.Errorf("building topology: %w", ErrInvalidOrigin)
	}

	g := newGraph(origin, tileSize)
	st := &buildState{
		b:         b,
		g:         g,
		buckets:   make(map[[2]int64][]int),
		tileNodes: make(map[TileCoord]int),
		pairs:     make(map[[2]NodeID]bool),
	}

	segs := b.prepare(segments, origin, tileSize, g)
	splitAtIntersections(segs)

	cuts := make([][]cut, len(segs))
	for i := range segs {
		cuts[i] = b.dedupeCuts(segs[i].cuts)
	}
	// Grid vertices are resolved before any off-grid point, so a point
	// within epsilon of a vertex joins the tile node whatever the input order.
	for _, cs := range cuts {
		for _, c := range cs {
			if _, _, ok := st.snap(c.p); ok {
				st.resolve(c.p)
			}
		}
	}
	for i := range segs {
		st.emitEdges(&segs[i], cuts[i])
	}

	b.log.Debug("topology built",
		zap.Int("segments", len(segments)),
		zap.Int("skipped", len(g.skipped)),
		zap.Int("nodes", len(g.nodes)),
		zap.Int("edges", len(g.edges)),
	)
	return g, nil
}

// prepare normalizes endpoints to world space and drops malformed input.
func (b *Builder) prepare(segments []Segment, origin geo.Point2D, tileSize float64, g *Graph) []prepared {
	out := make([]prepared, 0, len(segments))
	seen := make(map[string]bool, len(segments))
	for i, s := range segments {
		id := s.ID
		if id == "" || seen[id] {
			id = fmt.Sprintf("%s~%d", s.ID, i)
		}
		seen[id] = true
		a, bb := s.A, s.B
		if s.InTileSpace {
			a = origin.Add(a.Scale(tileSize))
			bb = origin.Add(bb.Scale(tileSize))
		}
		if !a.IsFinite() || !bb.IsFinite() {
			b.log.Debug("skipping segment", zap.String("id", id), zap.String("reason", "non-finite endpoint"))
			g.skipped = append(g.skipped, id)
			continue
		}
		if a.Near(bb, b.Epsilon) {
			b.log.Debug("skipping segment", zap.String("id", id), zap.String("reason", "coincident endpoints"))
			g.skipped = append(g.skipped, id)
			continue
		}
		out = append(out, prepared{
			seg:  s,
			id:   id,
			a:    a,
			b:    bb,
			cuts: []cut{{t: 0, p: a, end: true}, {t: 1, p: bb, end: true}},
		})
	}
	return out
}

// splitAtIntersections records every pairwise crossing against both segments.
func splitAtIntersections(segs []prepared) {
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			t, u, ok := geo.SegmentIntersection(segs[i].a, segs[i].b, segs[j].a, segs[j].b)
			if !ok {
				continue
			}
			p := segs[i].a.Lerp(segs[i].b, t)
			segs[i].cuts = append(segs[i].cuts, cut{t: t, p: p})
			segs[j].cuts = append(segs[j].cuts, cut{t: u, p: p})
		}
	}
}

// dedupeCuts sorts cuts by parameter and merges neighbours that are closer
// than the parameter or distance epsilon. Endpoints win over crossings.
func (b *Builder) dedupeCuts(cuts []cut) []cut {
	sort.SliceStable(cuts, func(i, j int) bool { return cuts[i].t < cuts[j].t })
	out := make([]cut, 0, len(cuts))
	for _, c := range cuts {
		if n := len(out); n > 0 {
			last := out[n-1]
			if c.t-last.t < paramEpsilon || c.p.Near(last.p, b.Epsilon) {
				if c.end && !last.end {
					out[n-1] = c
				}
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

type buildState struct {
	b         *Builder
	g         *Graph
	buckets   map[[2]int64][]int
	tileNodes map[TileCoord]int
	pairs     map[[2]NodeID]bool
}

func (st *buildState) emitEdges(s *prepared, cuts []cut) {
	piece := 0
	for k := 1; k < len(cuts); k++ {
		p0, p1 := cuts[k-1].p, cuts[k].p
		if p0.Distance(p1) <= 0 {
			continue
		}
		a := st.resolve(p0)
		bn := st.resolve(p1)
		if a == bn {
			continue
		}
		pair := [2]NodeID{a, bn}
		if bn < a {
			pair = [2]NodeID{bn, a}
		}
		if st.pairs[pair] {
			st.b.log.Debug("dropping duplicate edge", zap.String("segment", s.id), zap.String("a", a), zap.String("b", bn))
			continue
		}
		st.pairs[pair] = true
		st.addEdge(s, piece, a, bn)
		piece++
	}
}

func (st *buildState) addEdge(s *prepared, piece int, a, b NodeID) {
	g := st.g
	pa := g.nodes[g.nodeIndex[a]].Pos
	pb := g.nodes[g.nodeIndex[b]].Pos
	d := pb.Sub(pa)
	e := Edge{
		ID:         fmt.Sprintf("%s#%d", s.id, piece),
		Source:     s.id,
		Piece:      piece,
		A:          a,
		B:          b,
		Tag:        s.seg.Tag,
		Rendered:   s.seg.Rendered,
		LanesF:     s.seg.LanesF,
		LanesB:     s.seg.LanesB,
		Centerline: [2]geo.Point2D{pa, pb},
		Dir:        d.Normalize(),
		Length:     d.Length(),
	}
	g.edgeIndex[e.ID] = len(g.edges)
	g.edges = append(g.edges, e)
	g.nodes[g.nodeIndex[a]].Edges = append(g.nodes[g.nodeIndex[a]].Edges, e.ID)
	g.nodes[g.nodeIndex[b]].Edges = append(g.nodes[g.nodeIndex[b]].Edges, e.ID)
}

// resolve returns the node for p, creating it when no existing node is
// within epsilon. Tile-grid positions take precedence so that segments
// authored independently share node ids at grid vertices.
func (st *buildState) resolve(p geo.Point2D) NodeID {
	g := st.g
	if tc, snapped, ok := st.snap(p); ok {
		if i, exists := st.tileNodes[tc]; exists {
			return g.nodes[i].ID
		}
		if i, found := st.nearest(snapped); found {
			return g.nodes[i].ID
		}
		i := st.newNode(snapped, &tc)
		st.tileNodes[tc] = i
		return g.nodes[i].ID
	}
	if i, found := st.nearest(p); found {
		return g.nodes[i].ID
	}
	return g.nodes[st.newNode(p, nil)].ID
}

// snap returns the tile-grid vertex within SnapTolerance of p.
func (st *buildState) snap(p geo.Point2D) (TileCoord, geo.Point2D, bool) {
	g := st.g
	fx := (p.X - g.origin.X) / g.tileSize
	fz := (p.Z - g.origin.Z) / g.tileSize
	tc := TileCoord{X: int(math.Round(fx)), Z: int(math.Round(fz))}
	grid := g.origin.Add(geo.Pt(float64(tc.X), float64(tc.Z)).Scale(g.tileSize))
	if !grid.Near(p, st.b.SnapTolerance) {
		return TileCoord{}, geo.Point2D{}, false
	}
	return tc, grid, true
}

func (st *buildState) cell(p geo.Point2D) [2]int64 {
	eps := st.b.Epsilon
	return [2]int64{int64(math.Floor(p.X / eps)), int64(math.Floor(p.Z / eps))}
}

// nearest probes the 3x3 bucket neighbourhood for the closest node within
// epsilon. Ties go to the earlier node.
func (st *buildState) nearest(p geo.Point2D) (int, bool) {
	key := st.cell(p)
	best, bestD := -1, math.MaxFloat64
	for dx := int64(-1); dx <= 1; dx++ {
		for dz := int64(-1); dz <= 1; dz++ {
			for _, i := range st.buckets[[2]int64{key[0] + dx, key[1] + dz}] {
				d := st.g.nodes[i].Pos.Distance(p)
				if d > st.b.Epsilon {
					continue
				}
				if d < bestD || (d == bestD && i < best) {
					best, bestD = i, d
				}
			}
		}
	}
	return best, best >= 0
}

func (st *buildState) newNode(p geo.Point2D, tc *TileCoord) int {
	g := st.g
	i := len(g.nodes)
	n := Node{ID: fmt.Sprintf("n%d", i), Pos: p, Edges: []EdgeID{}}
	if tc != nil {
		c := *tc
		n.Tile = &c
	}
	g.nodes = append(g.nodes, n)
	g.nodeIndex[n.ID] = i
	key := st.cell(p)
	st.buckets[key] = append(st.buckets[key], i)
	return i
}
