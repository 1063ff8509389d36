package welder

import (
	"math"
	"testing"

	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestCrossIntersectionScenario(t *testing.T) {
	w := New()
	r1 := w.AddSegment(geo.Pt(500, 500), geo.Pt(1500, 500), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	if !r1.OK {
		t.Fatalf("first paint-road rejected: %s", r1.Reason)
	}
	r2 := w.AddSegment(geo.Pt(1000, 100), geo.Pt(1000, 900), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	if !r2.OK {
		t.Fatalf("second paint-road rejected: %s", r2.Reason)
	}

	if len(w.Graph.Nodes()) != 5 {
		t.Errorf("expected 5 nodes after welding, got %d", len(w.Graph.Nodes()))
	}
	if len(w.Graph.Edges()) != 4 {
		t.Errorf("expected 4 edges after welding, got %d", len(w.Graph.Edges()))
	}

	var found *Intersection
	for _, ix := range w.Intersections() {
		if ix.Position.Distance(geo.Pt(1000, 500)) < 0.01 {
			found = ix
		}
	}
	if found == nil {
		t.Fatal("expected an intersection record at (1000,500)")
	}
	if found.Type != IntersectionCross {
		t.Errorf("expected cross intersection, got type %d", found.Type)
	}
	if !approxEqual(found.Radius, 9, 0.01) {
		t.Errorf("expected radius 9, got %f", found.Radius)
	}
	if len(found.Incident) != 4 {
		t.Errorf("expected 4 incident segments, got %d", len(found.Incident))
	}
}

func TestDegenerateSegmentRejected(t *testing.T) {
	w := New()
	res := w.AddSegment(geo.Pt(500, 500), geo.Pt(500, 500), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	if res.OK {
		t.Error("expected zero-length segment to be rejected")
	}
	if res.Reason != roadgraph.RejectDegenerate {
		t.Errorf("expected RejectDegenerate, got %s", res.Reason)
	}
}

func TestPaintRoadTwiceIsIdempotent(t *testing.T) {
	w := New()
	w.AddSegment(geo.Pt(0, 0), geo.Pt(1000, 0), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	nodesAfterFirst := len(w.Graph.Nodes())
	edgesAfterFirst := len(w.Graph.Edges())

	w.AddSegment(geo.Pt(0, 0), geo.Pt(1000, 0), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)

	if len(w.Graph.Nodes()) != nodesAfterFirst {
		t.Errorf("expected node count unchanged, got %d -> %d", nodesAfterFirst, len(w.Graph.Nodes()))
	}
	if len(w.Graph.Edges()) != edgesAfterFirst {
		t.Errorf("expected edge count unchanged, got %d -> %d", edgesAfterFirst, len(w.Graph.Edges()))
	}
}

func TestHundredRandomSegmentsDeterministic(t *testing.T) {
	run := func(seed uint32) (int, int) {
		w := New()
		s := seedPoints(seed)
		for i := 0; i+1 < len(s); i += 2 {
			w.AddSegment(s[i], s[i+1], roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
		}
		return len(w.Graph.Nodes()), len(w.Graph.Edges())
	}
	n1, e1 := run(12345)
	n2, e2 := run(12345)
	if n1 != n2 || e1 != e2 {
		t.Errorf("expected deterministic replay, got (%d,%d) vs (%d,%d)", n1, e1, n2, e2)
	}
}

// seedPoints generates a small deterministic set of segment endpoints from
// a linear congruential sequence, used only to drive the determinism test
// above without importing pkg/rng (kept dependency-free for this test).
func seedPoints(seed uint32) []geo.Point2D {
	state := seed
	next := func() float64 {
		state = state*1664525 + 1013904223
		return float64(state%2000) - 1000
	}
	pts := make([]geo.Point2D, 0, 200)
	for i := 0; i < 200; i++ {
		pts = append(pts, geo.Pt(next(), next()))
	}
	return pts
}
