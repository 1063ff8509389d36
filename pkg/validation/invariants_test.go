package validation

import (
	"testing"

	"github.com/bneidlinger/webcity/pkg/blocks"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

func TestValidateRoadGraphAcceptsCleanGraph(t *testing.T) {
	g := roadgraph.New()
	a := g.AddNode(geo.Pt(0, 0))
	b := g.AddNode(geo.Pt(100, 0))
	c := g.AddNode(geo.Pt(100, 100))
	g.AddEdge(a, b, roadgraph.ClassStreet, roadgraph.MaterialAsphalt)
	g.AddEdge(b, c, roadgraph.ClassStreet, roadgraph.MaterialAsphalt)

	report := ValidateRoadGraph(g)
	if !report.Valid {
		t.Errorf("expected a clean 90-degree graph to validate, got: %s", report.Summary)
	}
}

func TestValidateIntersectionIncidenceCatchesMismatch(t *testing.T) {
	incident := map[int]int{1: 4}
	typeOf := map[int]string{1: "T"}

	report := ValidateIntersectionIncidence(incident, typeOf)
	if report.Valid {
		t.Error("expected a 4-incident intersection classified as T to fail")
	}
}

func TestValidateIntersectionIncidenceAcceptsMatch(t *testing.T) {
	incident := map[int]int{1: 4, 2: 3}
	typeOf := map[int]string{1: "cross", 2: "T"}

	report := ValidateIntersectionIncidence(incident, typeOf)
	if !report.Valid {
		t.Errorf("expected matching incidence/type to pass, got: %s", report.Summary)
	}
}

func TestValidateBlockCatchesSelfIntersection(t *testing.T) {
	bowtie := geo.NewPolygon(geo.Pt(0, 0), geo.Pt(100, 100), geo.Pt(100, 0), geo.Pt(0, 100))
	b := blocks.CityBlock{ID: 1, Outer: bowtie, Area: bowtie.Area()}

	report := ValidateBlock(b, 100, 50000)
	if report.Valid {
		t.Error("expected a self-intersecting block outline to fail")
	}
}

func TestValidateBlockCatchesAreaOutsideBounds(t *testing.T) {
	square := geo.NewPolygon(geo.Pt(0, 0), geo.Pt(1, 0), geo.Pt(1, 1), geo.Pt(0, 1))
	b := blocks.CityBlock{ID: 1, Outer: square, Area: square.Area()}

	report := ValidateBlock(b, 100, 50000)
	if report.Valid {
		t.Error("expected a 1m^2 block to fail the minArea bound")
	}
}

func TestValidateParcelCatchesUndersizedArea(t *testing.T) {
	p := parcel.Parcel{
		ID:      1,
		Polygon: geo.NewPolygon(geo.Pt(0, 0), geo.Pt(5, 0), geo.Pt(5, 5), geo.Pt(0, 5)),
		Area:    25,
	}
	report := ValidateParcel(p)
	if report.Valid {
		t.Error("expected a 25m^2 parcel to fail MinParcelArea")
	}
}
