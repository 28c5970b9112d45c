// Package topology turns authored road segments into a planar graph of
// road centerlines: endpoints and crossings become shared nodes, and every
// segment is cut into edges at those nodes.
package topology

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
)

// NodeID and EdgeID are string identifiers assigned in build order.
type (
	NodeID = string
	EdgeID = string
)

// TileCoord is an integer tile-grid position.
type TileCoord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Node is a graph vertex. Tile is set only when the node sits exactly on a
// tile-grid position.
type Node struct {
	ID    NodeID      `json:"id"`
	Tile  *TileCoord  `json:"tile,omitempty"`
	Pos   geo.Point2D `json:"pos"`
	Edges []EdgeID    `json:"edges"`
}

// Degree returns the number of incident edges.
func (n Node) Degree() int {
	return len(n.Edges)
}

// Edge is one piece of an authored segment between two distinct nodes.
// Dir and Length are derived from the node positions when the edge is built.
type Edge struct {
	ID         EdgeID         `json:"id"`
	Source     string         `json:"source"`
	Piece      int            `json:"piece"`
	A          NodeID         `json:"a"`
	B          NodeID         `json:"b"`
	Tag        string         `json:"tag"`
	Rendered   bool           `json:"rendered"`
	LanesF     int            `json:"lanes_f"`
	LanesB     int            `json:"lanes_b"`
	Centerline [2]geo.Point2D `json:"centerline"`
	Dir        geo.Point2D    `json:"dir"`
	Length     float64        `json:"length"`
}

// Other returns the endpoint opposite n.
func (e Edge) Other(n NodeID) NodeID {
	if e.A == n {
		return e.B
	}
	return e.A
}

// OutwardFrom returns the unit direction leaving node n along the edge.
func (e Edge) OutwardFrom(n NodeID) geo.Point2D {
	if e.B == n {
		return e.Dir.Scale(-1)
	}
	return e.Dir
}

// Graph is the read-only result of a topology build.
type Graph struct {
	origin   geo.Point2D
	tileSize float64

	nodes     []Node
	edges     []Edge
	nodeIndex map[NodeID]int
	edgeIndex map[EdgeID]int
	skipped   []string
}

func newGraph(origin geo.Point2D, tileSize float64) *Graph {
	return &Graph{
		origin:    origin,
		tileSize:  tileSize,
		nodeIndex: make(map[NodeID]int),
		edgeIndex: make(map[EdgeID]int),
	}
}

// Origin returns the world position of tile (0,0).
func (g *Graph) Origin() geo.Point2D { return g.origin }

// TileSize returns the tile edge length the graph was built with.
func (g *Graph) TileSize() float64 { return g.tileSize }

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i].clone(), true
}

// clone copies the node's edge list and tile so callers cannot reach the
// graph's storage.
func (n Node) clone() Node {
	n.Edges = append(make([]EdgeID, 0, len(n.Edges)), n.Edges...)
	if n.Tile != nil {
		tc := *n.Tile
		n.Tile = &tc
	}
	return n
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Nodes returns all nodes in build order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}
	return out
}

// Edges returns all edges in build order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// IncidentEdges returns the edges touching node id.
func (g *Graph) IncidentEdges(id NodeID) []Edge {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	out := make([]Edge, 0, len(n.Edges))
	for _, eid := range n.Edges {
		out = append(out, g.edges[g.edgeIndex[eid]])
	}
	return out
}

// Skipped returns the ids of input segments dropped as malformed.
func (g *Graph) Skipped() []string {
	return append([]string(nil), g.skipped...)
}

// graphNamespace scopes fingerprint UUIDs.
var graphNamespace = uuid.MustParse("6f1c2a9e-3b7d-4c52-9a0e-8d4b1f6e2c31")

// Fingerprint returns a name-based UUID over the graph's nodes and edges.
// Identical builds produce identical fingerprints.
func (g *Graph) Fingerprint() uuid.UUID {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tile %.6f origin %.6f %.6f\n", g.tileSize, g.origin.X, g.origin.Z)
	for _, n := range g.nodes {
		fmt.Fprintf(&buf, "n %s %.6f %.6f\n", n.ID, n.Pos.X, n.Pos.Z)
	}
	for _, e := range g.edges {
		fmt.Fprintf(&buf, "e %s %s %s %s %d %d\n", e.ID, e.A, e.B, e.Tag, e.LanesF, e.LanesB)
	}
	return uuid.NewSHA1(graphNamespace, buf.Bytes())
}
