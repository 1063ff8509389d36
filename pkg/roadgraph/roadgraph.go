// Package roadgraph implements the planar road graph: stable-integer-id
// node/edge tables with snap-insert, angle-constrained edge insertion, and
// node merge. The graph never stores cross-pointers between nodes and
// edges; all references are ids into the two flat tables.
package roadgraph

import (
	"math"
	"sort"

	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/spatial"
)

// RoadClass is the classification of a road edge.
type RoadClass int

const (
	ClassHighway RoadClass = iota
	ClassAvenue
	ClassStreet
	ClassLocal
)

// NominalWidth returns the fixed nominal width in meters for the class.
func (c RoadClass) NominalWidth() float64 {
	switch c {
	case ClassHighway:
		return 24
	case ClassAvenue:
		return 16
	case ClassStreet:
		return 12
	case ClassLocal:
		return 8
	default:
		return 8
	}
}

// RoadMaterial is the surface material of a road edge.
type RoadMaterial int

const (
	MaterialDirt RoadMaterial = iota
	MaterialCobblestone
	MaterialAsphalt
	MaterialConcrete
)

// MIN_ANGLE, SNAP_THRESHOLD and friends are the generator's fixed kernel
// epsilons, exposed here as package-level variables (not consts) so a
// corespec.Config can override them ("floating-point
// tolerances... should expose them rather than hard-code").
var (
	MinAngle      = 30.0 * math.Pi / 180.0
	SnapThreshold = 15.0
)

// RoadNode is a stable-id node in the road graph.
type RoadNode struct {
	ID             int
	Position       geo.Point2D
	Incident       []int // edge ids, insertion order
	IsIntersection bool
}

// RoadEdge is a stable-id edge in the road graph.
type RoadEdge struct {
	ID       int
	A, B     int
	Class    RoadClass
	Material RoadMaterial
	Width    float64
	Length   float64
}

// RejectReason names why addEdge refused to create an edge, following the
// error taxonomy.
type RejectReason string

const (
	RejectNone           RejectReason = ""
	RejectDegenerate     RejectReason = "DegenerateGeometry"
	RejectAngleTooAcute  RejectReason = "AngleTooAcute"
)

// AddEdgeResult is addEdge's total-function return value: never a panic,
// always a concrete success/rejection.
type AddEdgeResult struct {
	OK     bool
	EdgeID int
	Reason RejectReason
}

// Graph is the road graph: flat node/edge tables plus a spatial index over
// node positions for snap-insert.
type Graph struct {
	nodes   map[int]*RoadNode
	edges   map[int]*RoadEdge
	nextNID int
	nextEID int
	index   *spatial.Index
}

// New returns an empty road graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[int]*RoadNode),
		edges: make(map[int]*RoadEdge),
		index: spatial.New(spatial.DefaultCellSize),
	}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id int) *RoadNode {
	return g.nodes[id]
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id int) *RoadEdge {
	return g.edges[id]
}

// Nodes returns every node, sorted by id.
func (g *Graph) Nodes() []*RoadNode {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*RoadNode, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns every edge, sorted by id.
func (g *Graph) Edges() []*RoadEdge {
	ids := make([]int, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*RoadEdge, len(ids))
	for i, id := range ids {
		out[i] = g.edges[id]
	}
	return out
}

// AddNode returns the id of the existing node within SnapThreshold of p, if
// any (the nearest one), otherwise allocates and returns a new node id.
func (g *Graph) AddNode(p geo.Point2D) int {
	candidates := g.index.Nearby(p, SnapThreshold)
	if len(candidates) > 0 {
		best := candidates[0]
		bestDist := g.nodes[best].Position.Distance(p)
		for _, id := range candidates[1:] {
			d := g.nodes[id].Position.Distance(p)
			if d < bestDist {
				best, bestDist = id, d
			}
		}
		return best
	}

	id := g.nextNID
	g.nextNID++
	g.nodes[id] = &RoadNode{ID: id, Position: p}
	g.index.Insert(id, p)
	return id
}

// EdgeBetween returns the id of the edge connecting a and b, if any. Used
// by pkg/blocks to resolve a cycle's node sequence into boundary edge ids.
func (g *Graph) EdgeBetween(a, b int) (int, bool) {
	return g.existingEdge(a, b)
}

// Nearby returns the ids of every node within radius of p, per the
// underlying spatial index. Used by pkg/procgen's adaptive grid and local
// infill scans, which need a "how populated is this region" query distinct
// from AddNode's snap-insert lookup.
func (g *Graph) Nearby(p geo.Point2D, radius float64) []int {
	return g.index.Nearby(p, radius)
}

// Jitter moves node id by delta and reinserts it into the spatial index,
// recomputing the length of every incident edge. Used by the intersection
// optimization pass to nudge nodes whose incident angles are below MinAngle
// apart without going through the angle-checked AddEdge path again.
func (g *Graph) Jitter(id int, delta geo.Point2D) {
	node := g.nodes[id]
	if node == nil {
		return
	}
	g.index.Remove(id, node.Position)
	node.Position = node.Position.Add(delta)
	g.index.Insert(id, node.Position)
	for _, eid := range node.Incident {
		e := g.edges[eid]
		other := e.A
		if other == id {
			other = e.B
		}
		e.Length = node.Position.Distance(g.nodes[other].Position)
	}
}

// Neighbors returns the ids of nodes directly connected to id by an edge.
func (g *Graph) Neighbors(id int) []int {
	node := g.nodes[id]
	if node == nil {
		return nil
	}
	out := make([]int, 0, len(node.Incident))
	for _, eid := range node.Incident {
		e := g.edges[eid]
		other := e.A
		if other == id {
			other = e.B
		}
		out = append(out, other)
	}
	return out
}

// existingEdge returns the id of an edge already connecting a and b, if any.
func (g *Graph) existingEdge(a, b int) (int, bool) {
	node := g.nodes[a]
	if node == nil {
		return 0, false
	}
	for _, eid := range node.Incident {
		e := g.edges[eid]
		if (e.A == a && e.B == b) || (e.A == b && e.B == a) {
			return eid, true
		}
	}
	return 0, false
}

// outwardAngleOK returns true iff direction dir makes an angle >= MinAngle
// with the outward direction of every edge already incident to node.
func (g *Graph) outwardAngleOK(nodeID int, dir geo.Point2D) bool {
	node := g.nodes[nodeID]
	for _, eid := range node.Incident {
		e := g.edges[eid]
		other := e.A
		if other == nodeID {
			other = e.B
		}
		otherDir := g.nodes[other].Position.Sub(node.Position)
		if angleBetween(dir, otherDir) < MinAngle-1e-9 {
			return false
		}
	}
	return true
}

func angleBetween(a, b geo.Point2D) float64 {
	la, lb := a.Length(), b.Length()
	if la < 1e-12 || lb < 1e-12 {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// AddEdge inserts an edge between a and b. Reject if a == b (zero-length,
// DegenerateGeometry) or if the angle invariant fails at either endpoint
// (AngleTooAcute). If an edge between a and b already exists, it is
// returned unchanged rather than duplicated. On success both endpoints'
// incidence lists are updated and their IsIntersection flag recomputed.
func (g *Graph) AddEdge(a, b int, class RoadClass, material RoadMaterial) AddEdgeResult {
	if a == b {
		return AddEdgeResult{OK: false, Reason: RejectDegenerate}
	}
	if eid, ok := g.existingEdge(a, b); ok {
		return AddEdgeResult{OK: true, EdgeID: eid}
	}

	nodeA, nodeB := g.nodes[a], g.nodes[b]
	dirAB := nodeB.Position.Sub(nodeA.Position)
	dirBA := nodeA.Position.Sub(nodeB.Position)

	if dirAB.Length() < 1e-9 {
		return AddEdgeResult{OK: false, Reason: RejectDegenerate}
	}
	if !g.outwardAngleOK(a, dirAB) || !g.outwardAngleOK(b, dirBA) {
		return AddEdgeResult{OK: false, Reason: RejectAngleTooAcute}
	}

	id := g.nextEID
	g.nextEID++
	e := &RoadEdge{
		ID:       id,
		A:        a,
		B:        b,
		Class:    class,
		Material: material,
		Width:    class.NominalWidth(),
		Length:   nodeA.Position.Distance(nodeB.Position),
	}
	g.edges[id] = e
	nodeA.Incident = append(nodeA.Incident, id)
	nodeB.Incident = append(nodeB.Incident, id)
	nodeA.IsIntersection = len(nodeA.Incident) >= 2
	nodeB.IsIntersection = len(nodeB.Incident) >= 2

	return AddEdgeResult{OK: true, EdgeID: id}
}

// SetEdgeAttrs overwrites an edge's class, material, and width in place.
// Used by pkg/procgen's era-evolution pass (material recompute, width
// rescale, street-to-avenue upgrades) which mutates existing edges rather
// than removing and reinserting them.
func (g *Graph) SetEdgeAttrs(id int, class RoadClass, material RoadMaterial, width float64) {
	e := g.edges[id]
	if e == nil {
		return
	}
	e.Class = class
	e.Material = material
	e.Width = width
}

// RemoveEdge deletes the edge, removing it from both endpoints' incidence
// and recomputing their IsIntersection flags.
func (g *Graph) RemoveEdge(id int) {
	e := g.edges[id]
	if e == nil {
		return
	}
	for _, nid := range []int{e.A, e.B} {
		node := g.nodes[nid]
		node.Incident = removeInt(node.Incident, id)
		node.IsIntersection = len(node.Incident) >= 2
	}
	delete(g.edges, id)
}

func removeInt(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// MergeNodes rewires every edge incident to from so that endpoint becomes
// to, drops edges that would duplicate an existing to-X edge, and deletes
// from. Used by the welder when two segment endpoints are found to
// coincide within tolerance.
func (g *Graph) MergeNodes(from, to int) {
	if from == to {
		return
	}
	fromNode := g.nodes[from]
	if fromNode == nil {
		return
	}
	toNode := g.nodes[to]

	for _, eid := range append([]int{}, fromNode.Incident...) {
		e := g.edges[eid]
		other := e.A
		if other == from {
			other = e.B
		}
		if other == to {
			// Edge from-to collapses to a self-loop; drop it.
			g.RemoveEdge(eid)
			continue
		}
		if _, dup := g.existingEdge(to, other); dup {
			g.RemoveEdge(eid)
			continue
		}
		if e.A == from {
			e.A = to
		} else {
			e.B = to
		}
		toNode.Incident = append(toNode.Incident, eid)
		otherNode := g.nodes[other]
		otherNode.Incident = removeInt(otherNode.Incident, eid)
		otherNode.Incident = append(otherNode.Incident, eid)
	}

	g.index.Remove(from, fromNode.Position)
	delete(g.nodes, from)
	toNode.IsIntersection = len(toNode.Incident) >= 2
}
