// Package welder implements the online intersection welder: when a new
// segment is added it finds mid-segment crossings against the existing
// segment table, splits both sides at those crossings, snap-inserts the
// resulting sub-segments into the road graph, and maintains an intersection
// table keyed by welded position.
package welder

import (
	"math"
	"sort"

	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

// IntersectionEps is the minimum distance a crossing point must keep from
// both segments' endpoints to be accepted as a genuine mid-span crossing.
const IntersectionEps = 2.0

// IntersectionType classifies an Intersection by its incident segment count.
type IntersectionType int

const (
	IntersectionEnd IntersectionType = iota
	IntersectionT
	IntersectionCross
	IntersectionComplex
)

func intersectionTypeForCount(n int) IntersectionType {
	switch {
	case n <= 2:
		return IntersectionEnd
	case n == 3:
		return IntersectionT
	case n == 4:
		return IntersectionCross
	default:
		return IntersectionComplex
	}
}

// Segment is the welder's own view of a road segment, independent of the
// road graph's edge table but backed by it: EdgeID is -1 when the segment
// was rejected by the graph's angle invariant (still tracked here so the
// welder can report it, never silently dropped).
type Segment struct {
	ID       int
	A, B     geo.Point2D
	NodeA    int
	NodeB    int
	EdgeID   int
	Class    roadgraph.RoadClass
	Material roadgraph.RoadMaterial
	Width    float64
	ParentID int // id of the pre-split segment this was cut from, or -1
}

// Intersection is the welder's intersection-table record.
type Intersection struct {
	ID          int
	Position    geo.Point2D
	Incident    []int // segment ids
	Type        IntersectionType
	Orientation float64
	Radius      float64
}

// AddSegmentResult reports what addSegment did: total function, never a
// panic.
type AddSegmentResult struct {
	OK            bool
	SegmentIDs    []int
	Intersections []int
	Reason        roadgraph.RejectReason
}

// Welder owns a road graph and the segment/intersection tables layered on
// top of it.
type Welder struct {
	Graph         *roadgraph.Graph
	segments      map[int]*Segment
	nextSegID     int
	intersections map[int]*Intersection
	nextIntID     int
}

// New returns a Welder over a fresh road graph.
func New() *Welder {
	return &Welder{
		Graph:         roadgraph.New(),
		segments:      make(map[int]*Segment),
		intersections: make(map[int]*Intersection),
	}
}

// Segment returns the segment with the given id, or nil.
func (w *Welder) Segment(id int) *Segment {
	return w.segments[id]
}

// Segments returns every segment, sorted by id.
func (w *Welder) Segments() []*Segment {
	ids := make([]int, 0, len(w.segments))
	for id := range w.segments {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Segment, len(ids))
	for i, id := range ids {
		out[i] = w.segments[id]
	}
	return out
}

// Intersections returns every intersection record, sorted by id.
func (w *Welder) Intersections() []*Intersection {
	ids := make([]int, 0, len(w.intersections))
	for id := range w.intersections {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Intersection, len(ids))
	for i, id := range ids {
		out[i] = w.intersections[id]
	}
	return out
}

type crossing struct {
	t          float64
	point      geo.Point2D
	otherSegID int
}

// AddSegment implements the welder's five-step add-segment algorithm.
func (w *Welder) AddSegment(p, q geo.Point2D, class roadgraph.RoadClass, material roadgraph.RoadMaterial) AddSegmentResult {
	if p.Distance(q) < 1e-9 {
		return AddSegmentResult{OK: false, Reason: roadgraph.RejectDegenerate}
	}

	width := class.NominalWidth()
	dir := q.Sub(p)
	dirLenSq := dir.Dot(dir)

	// Step 2+3: find and order mid-span crossings against existing segments.
	var crossings []crossing
	for _, seg := range w.Segments() {
		x, ok := geo.SegmentIntersect(p, q, seg.A, seg.B)
		if !ok {
			continue
		}
		if x.Distance(p) <= IntersectionEps || x.Distance(q) <= IntersectionEps {
			continue
		}
		if x.Distance(seg.A) <= IntersectionEps || x.Distance(seg.B) <= IntersectionEps {
			continue
		}
		t := x.Sub(p).Dot(dir) / dirLenSq
		crossings = append(crossings, crossing{t: t, point: x, otherSegID: seg.ID})
	}
	sort.Slice(crossings, func(i, j int) bool {
		if crossings[i].t != crossings[j].t {
			return crossings[i].t < crossings[j].t
		}
		return crossings[i].otherSegID < crossings[j].otherSegID
	})

	// Split each crossed existing segment once at its crossing point.
	for _, c := range crossings {
		w.splitSegmentAt(c.otherSegID, c.point)
	}

	// Build the ordered chain of points defining S's sub-segments.
	chain := []geo.Point2D{p}
	for _, c := range crossings {
		chain = append(chain, c.point)
	}
	chain = append(chain, q)

	var newIDs []int
	touchedPositions := []geo.Point2D{p, q}
	for i := 0; i+1 < len(chain); i++ {
		id, ok := w.insertSubSegment(chain[i], chain[i+1], -1, class, material, width)
		if ok {
			newIDs = append(newIDs, id)
		}
	}
	for _, c := range crossings {
		touchedPositions = append(touchedPositions, c.point)
	}

	// Step 5: recompute intersection records at every touched position.
	var touchedIntersections []int
	seenPos := make(map[[2]int]bool)
	for _, pos := range touchedPositions {
		key := [2]int{int(math.Round(pos.X * 1000)), int(math.Round(pos.Z * 1000))}
		if seenPos[key] {
			continue
		}
		seenPos[key] = true
		if id, ok := w.recomputeIntersectionAt(pos); ok {
			touchedIntersections = append(touchedIntersections, id)
		}
	}

	return AddSegmentResult{OK: true, SegmentIDs: newIDs, Intersections: touchedIntersections}
}

// splitSegmentAt cuts an existing welder segment into two at x, removing
// its graph edge (if any) and the segment record, then re-inserting both
// halves. Road class, material, and width propagate to both children.
func (w *Welder) splitSegmentAt(segID int, x geo.Point2D) {
	seg := w.segments[segID]
	if seg == nil {
		return
	}
	if seg.EdgeID >= 0 {
		w.Graph.RemoveEdge(seg.EdgeID)
	}
	delete(w.segments, segID)

	parent := seg.ParentID
	if parent < 0 {
		parent = segID
	}
	w.insertSubSegment(seg.A, x, parent, seg.Class, seg.Material, seg.Width)
	w.insertSubSegment(x, seg.B, parent, seg.Class, seg.Material, seg.Width)
}

// insertSubSegment snap-inserts a and b as road graph nodes (the graph's
// own SnapThreshold handles endpoint snapping per step 4), attempts the
// angle-constrained edge insertion, and records a Segment regardless of
// whether the graph accepted the edge (EdgeID is -1 on rejection).
func (w *Welder) insertSubSegment(a, b geo.Point2D, parentID int, class roadgraph.RoadClass, material roadgraph.RoadMaterial, width float64) (int, bool) {
	if a.Distance(b) < 1e-9 {
		return 0, false
	}
	nodeA := w.Graph.AddNode(a)
	nodeB := w.Graph.AddNode(b)

	res := w.Graph.AddEdge(nodeA, nodeB, class, material)
	edgeID := -1
	if res.OK {
		edgeID = res.EdgeID
		if existing, ok := w.segmentByEdgeID(edgeID); ok {
			// AddEdge returned a pre-existing edge unchanged: this call was
			// a duplicate paint of an already-welded segment. Don't grow
			// the segment table, preserving the idempotence property.
			return existing, true
		}
	}

	id := w.nextSegID
	w.nextSegID++
	w.segments[id] = &Segment{
		ID:       id,
		A:        a,
		B:        b,
		NodeA:    nodeA,
		NodeB:    nodeB,
		EdgeID:   edgeID,
		Class:    class,
		Material: material,
		Width:    width,
		ParentID: parentID,
	}
	return id, res.OK
}

// recomputeIntersectionAt gathers every segment with an endpoint within
// IntersectionEps of pos and creates or updates the Intersection record
// there. Returns ok=false and removes any stale record if fewer than 2
// segments are incident (an intersection needs at least an "end" pair).
func (w *Welder) recomputeIntersectionAt(pos geo.Point2D) (int, bool) {
	var incident []int
	var dirs []geo.Point2D
	maxWidth := 0.0
	for _, seg := range w.Segments() {
		var dir geo.Point2D
		matched := false
		if seg.A.Distance(pos) <= IntersectionEps {
			dir = seg.B.Sub(seg.A)
			matched = true
		} else if seg.B.Distance(pos) <= IntersectionEps {
			dir = seg.A.Sub(seg.B)
			matched = true
		}
		if !matched {
			continue
		}
		incident = append(incident, seg.ID)
		dirs = append(dirs, dir)
		if seg.Width > maxWidth {
			maxWidth = seg.Width
		}
	}

	existingID := w.findIntersectionNear(pos)
	if len(incident) < 2 {
		if existingID >= 0 {
			delete(w.intersections, existingID)
		}
		return 0, false
	}

	sumX, sumZ := 0.0, 0.0
	for _, d := range dirs {
		n := d.Normalize()
		sumX += n.X
		sumZ += n.Z
	}
	orientation := math.Atan2(sumZ, sumX)

	id := existingID
	if id < 0 {
		id = w.nextIntID
		w.nextIntID++
	}
	w.intersections[id] = &Intersection{
		ID:          id,
		Position:    pos,
		Incident:    incident,
		Type:        intersectionTypeForCount(len(incident)),
		Orientation: orientation,
		Radius:      0.75 * maxWidth,
	}
	return id, true
}

// IntersectionMergeDist and jitter magnitude are the intersection
// optimization pass parameters.
const (
	IntersectionMergeDist = 10.0
	jitterDistance        = 5.0
)

// OptimizeIntersections implements a bounded-to-one-pass
// intersection optimization: nodes flagged as intersections that sit closer
// than IntersectionMergeDist are merged, and any remaining intersection
// whose incident angles drop below roadgraph.MinAngle is nudged by
// jitterDistance. Touched positions have their welder Intersection records
// recomputed; segments referencing a moved or merged node have their
// endpoint coordinate updated to match so the segment table stays
// consistent with the graph.
func (w *Welder) OptimizeIntersections(rng JitterSource) {
	w.mergeCloseIntersections()
	w.jitterAcuteIntersections(rng)
}

// JitterSource is the minimal source OptimizeIntersections needs for its
// jitter direction; pkg/rng.Source satisfies this.
type JitterSource interface {
	Range(lo, hi float64) float64
}

func (w *Welder) mergeCloseIntersections() {
	nodes := w.Graph.Nodes()
	merged := make(map[int]bool)
	for i := 0; i < len(nodes); i++ {
		a := nodes[i]
		if !a.IsIntersection || merged[a.ID] {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			if !b.IsIntersection || merged[b.ID] {
				continue
			}
			if a.Position.Distance(b.Position) >= IntersectionMergeDist {
				continue
			}
			w.mergeGraphNodes(b.ID, a.ID)
			merged[b.ID] = true
		}
	}
}

func (w *Welder) jitterAcuteIntersections(rng JitterSource) {
	if rng == nil {
		return
	}
	for _, node := range w.Graph.Nodes() {
		if !node.IsIntersection || !w.hasAcuteIncidence(node.ID) {
			continue
		}
		delta := geo.Pt(rng.Range(-jitterDistance, jitterDistance), rng.Range(-jitterDistance, jitterDistance))
		w.Graph.Jitter(node.ID, delta)
		w.syncSegmentsToNode(node.ID)
		w.recomputeIntersectionAt(node.Position)
	}
}

func (w *Welder) hasAcuteIncidence(nodeID int) bool {
	node := w.Graph.Node(nodeID)
	if node == nil || len(node.Incident) < 2 {
		return false
	}
	dirs := make([]geo.Point2D, 0, len(node.Incident))
	for _, eid := range node.Incident {
		e := w.Graph.Edge(eid)
		other := e.A
		if other == nodeID {
			other = e.B
		}
		dirs = append(dirs, w.Graph.Node(other).Position.Sub(node.Position))
	}
	for i := 0; i < len(dirs); i++ {
		for j := i + 1; j < len(dirs); j++ {
			if angleBetweenVecs(dirs[i], dirs[j]) < roadgraph.MinAngle-1e-9 {
				return true
			}
		}
	}
	return false
}

func angleBetweenVecs(a, b geo.Point2D) float64 {
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

// mergeGraphNodes merges node `from` into `to` at the graph level, then
// repoints every welder segment and the intersection table that referenced
// `from` so the segment table's explicit endpoint coordinates stay
// consistent with the now-merged position.
func (w *Welder) mergeGraphNodes(from, to int) {
	toNode := w.Graph.Node(to)
	if toNode == nil {
		return
	}
	toPos := toNode.Position
	w.Graph.MergeNodes(from, to)
	for _, seg := range w.segments {
		if seg.NodeA == from {
			seg.NodeA = to
			seg.A = toPos
		}
		if seg.NodeB == from {
			seg.NodeB = to
			seg.B = toPos
		}
	}
	for id, ix := range w.intersections {
		if ix.Position.Distance(toPos) <= IntersectionEps {
			delete(w.intersections, id)
		}
	}
	w.recomputeIntersectionAt(toPos)
}

// syncSegmentsToNode repoints every welder segment endpoint that references
// nodeID to the node's current (post-jitter) position.
func (w *Welder) syncSegmentsToNode(nodeID int) {
	node := w.Graph.Node(nodeID)
	if node == nil {
		return
	}
	for _, seg := range w.segments {
		if seg.NodeA == nodeID {
			seg.A = node.Position
		}
		if seg.NodeB == nodeID {
			seg.B = node.Position
		}
	}
}

func (w *Welder) segmentByEdgeID(edgeID int) (int, bool) {
	if edgeID < 0 {
		return 0, false
	}
	for _, seg := range w.segments {
		if seg.EdgeID == edgeID {
			return seg.ID, true
		}
	}
	return 0, false
}

func (w *Welder) findIntersectionNear(pos geo.Point2D) int {
	for id, ix := range w.intersections {
		if ix.Position.Distance(pos) <= IntersectionEps {
			return id
		}
	}
	return -1
}
