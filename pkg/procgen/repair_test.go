package procgen

import (
	"testing"

	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/welder"
)

func TestRepairConnectivityLinksDisjointComponents(t *testing.T) {
	w := welder.New()
	w.AddSegment(geo.Pt(0, 0), geo.Pt(100, 0), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	w.AddSegment(geo.Pt(100, 400), geo.Pt(200, 400), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)

	if got := len(connectedComponents(w.Graph)); got != 2 {
		t.Fatalf("expected 2 disjoint components before repair, got %d", got)
	}

	cfg := testConfig(1, "1950s")
	sum := &Summary{}
	repairConnectivity(w, cfg, sum)

	if got := len(connectedComponents(w.Graph)); got != 1 {
		t.Errorf("expected repair to merge into 1 component, got %d", got)
	}
}

func TestRepairConnectivityLeavesFarComponentsAlone(t *testing.T) {
	w := welder.New()
	w.AddSegment(geo.Pt(0, 0), geo.Pt(100, 0), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	// Farther apart than bounds.Width/4 (500m for a 2000-wide config).
	w.AddSegment(geo.Pt(1900, 1900), geo.Pt(1950, 1900), roadgraph.ClassStreet, roadgraph.MaterialAsphalt)

	cfg := testConfig(1, "1950s")
	sum := &Summary{}
	repairConnectivity(w, cfg, sum)

	if got := len(connectedComponents(w.Graph)); got != 2 {
		t.Errorf("expected components beyond maxLinkDist to stay disjoint, got %d components", got)
	}
}

func TestEvolveEraAppliesWidthScale(t *testing.T) {
	w := welder.New()
	w.AddSegment(geo.Pt(0, 0), geo.Pt(100, 0), roadgraph.ClassStreet, roadgraph.MaterialDirt)

	evolveEra(w.Graph, "1900s")

	edges := w.Graph.Edges()
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].Width >= roadgraph.ClassStreet.NominalWidth() {
		t.Errorf("expected a pre-1950 width scale below nominal, got %f", edges[0].Width)
	}
}
