package blocks

import (
	"math"
	"testing"

	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/welder"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func buildGridGraph() *roadgraph.Graph {
	w := welder.New()
	// A 2x2 grid of ~150x150 blocks (22,500 m^2, inside the 100..50000
	// default block-area bound): three verticals x three horizontals. Each
	// line runs 50 m past the outer lines so that every crossing, the border
	// ones included, lies mid-span on both segments; the welder splits only
	// at such crossings, not at an endpoint touching another segment.
	for x := 0.0; x <= 300; x += 150 {
		w.AddSegment(geo.Pt(x, -50), geo.Pt(x, 350), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	}
	for z := 0.0; z <= 300; z += 150 {
		w.AddSegment(geo.Pt(-50, z), geo.Pt(350, z), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	}
	return w.Graph
}

func TestFindBlocksGrid(t *testing.T) {
	g := buildGridGraph()
	found := Find(g, 100, 50000)
	if len(found) == 0 {
		t.Fatal("expected at least one block in a 2x2 grid")
	}
	for _, b := range found {
		if b.Outer.Len() < 3 {
			t.Errorf("block %d has degenerate polygon", b.ID)
		}
		if b.Area <= 100 || b.Area >= 50000 {
			t.Errorf("block %d area %f outside bounds", b.ID, b.Area)
		}
		if len(b.RoadEdges) != b.Outer.Len() {
			t.Errorf("block %d: expected one road edge per vertex, got %d edges for %d vertices", b.ID, len(b.RoadEdges), b.Outer.Len())
		}
	}
}

func TestFindBlocksSingleCellArea(t *testing.T) {
	g := buildGridGraph()
	found := Find(g, 100, 50000)
	// Each grid cell is 150x150 = 22,500 m^2, inside the default bound
	// passed here; check that the blocks found carry sane geometry rather
	// than asserting an exact cell count, since the cycle extractor is a
	// heuristic, not an enumerator of all faces.
	for _, b := range found {
		if !approxEqual(b.Area, b.Outer.Area(), 0.01) {
			t.Errorf("cached area %f does not match recomputed area %f", b.Area, b.Outer.Area())
		}
	}
}

func TestFindBlocksEmptyGraph(t *testing.T) {
	g := roadgraph.New()
	found := Find(g, 100, 50000)
	if len(found) != 0 {
		t.Errorf("expected no blocks in an empty graph, got %d", len(found))
	}
}
