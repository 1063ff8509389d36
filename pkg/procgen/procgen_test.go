package procgen

import (
	"testing"

	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/welder"
)

func testConfig(seed uint32, era string) *corespec.Config {
	cfg := &corespec.Config{Seed: seed, Era: era, Bounds: corespec.Bounds{Width: 2000, Height: 2000}, Density: 0.5}
	cfg.Apply()
	return cfg
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := testConfig(12345, "1950s")

	w1 := welder.New()
	s1 := Generate(w1, cfg)

	w2 := welder.New()
	s2 := Generate(w2, cfg)

	if len(w1.Graph.Nodes()) != len(w2.Graph.Nodes()) {
		t.Fatalf("node count mismatch across identical seeds: %d vs %d", len(w1.Graph.Nodes()), len(w2.Graph.Nodes()))
	}
	if len(w1.Graph.Edges()) != len(w2.Graph.Edges()) {
		t.Fatalf("edge count mismatch across identical seeds: %d vs %d", len(w1.Graph.Edges()), len(w2.Graph.Edges()))
	}
	if s1.SegmentsEmitted != s2.SegmentsEmitted {
		t.Errorf("segments emitted differ: %d vs %d", s1.SegmentsEmitted, s2.SegmentsEmitted)
	}
	for i := range s1.Centers {
		if s1.Centers[i].Distance(s2.Centers[i]) > 1e-9 {
			t.Errorf("center %d differs: %v vs %v", i, s1.Centers[i], s2.Centers[i])
		}
	}
}

func TestGenerateProducesConnectedGraph(t *testing.T) {
	cfg := testConfig(777, "1950s")
	w := welder.New()
	Generate(w, cfg)

	if len(w.Graph.Nodes()) == 0 {
		t.Fatal("expected a non-empty road graph")
	}
	comps := connectedComponents(w.Graph)
	if len(comps) != 1 {
		t.Errorf("expected repairConnectivity to leave a single component, got %d", len(comps))
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	w1 := welder.New()
	s1 := Generate(w1, testConfig(1, "1950s"))

	w2 := welder.New()
	s2 := Generate(w2, testConfig(2, "1950s"))

	if len(w1.Graph.Nodes()) == len(w2.Graph.Nodes()) &&
		len(w1.Graph.Edges()) == len(w2.Graph.Edges()) &&
		len(s1.Centers) == len(s2.Centers) {
		differ := false
		for i := range s1.Centers {
			if s1.Centers[i].Distance(s2.Centers[i]) > 1e-6 {
				differ = true
				break
			}
		}
		if !differ {
			t.Error("expected different seeds to produce different layouts")
		}
	}
}

func TestEvolveEraUpgradesSomeStreetsPost1950(t *testing.T) {
	w := welder.New()
	Generate(w, testConfig(12345, "2020s"))

	sawAvenue := false
	for _, e := range w.Graph.Edges() {
		if e.Class.NominalWidth() == 16 {
			sawAvenue = true
		}
	}
	if !sawAvenue {
		t.Error("expected at least one avenue-width edge after a post-1950 era evolution pass")
	}
}
