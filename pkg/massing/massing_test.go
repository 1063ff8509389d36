package massing

import (
	"testing"

	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/mesh"
	"github.com/bneidlinger/webcity/pkg/parcel"
)

func squareParcel(id int) parcel.Parcel {
	poly := geo.NewPolygon(
		geo.Pt(0, 0), geo.Pt(30, 0), geo.Pt(30, 30), geo.Pt(0, 30),
	).EnsureCCW()
	return parcel.Parcel{
		ID:       id,
		Polygon:  poly,
		ZoneType: parcel.ZoneResidential,
		Density:  parcel.DensityMedium,
		Area:     poly.Area(),
		Centroid: poly.Centroid(),
	}
}

func testConfig() *corespec.Config {
	cfg := &corespec.Config{Seed: 12345}
	return cfg
}

func TestGenerateProducesHeightComponentsThatSumToTotal(t *testing.T) {
	b, ok := Generate(squareParcel(1), testConfig(), "1950s", 1, LODFull)
	if !ok {
		t.Fatal("expected successful massing generation")
	}
	sum := b.BaseHeight + b.BodyHeight + b.RoofHeight
	if diff := sum - b.TotalHeight; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("base+body+roof = %f, want total height %f", sum, b.TotalHeight)
	}
}

func TestGenerateIsDeterministicForSameInputs(t *testing.T) {
	a, okA := Generate(squareParcel(7), testConfig(), "1950s", 1, LODFull)
	b, okB := Generate(squareParcel(7), testConfig(), "1950s", 1, LODFull)
	if !okA || !okB {
		t.Fatal("expected both generations to succeed")
	}
	if a.TotalHeight != b.TotalHeight || a.Style != b.Style || a.RoofShape != b.RoofShape {
		t.Errorf("expected identical massing for identical inputs, got %+v vs %+v", a, b)
	}
}

func TestGenerateUpgradeLevelIncreasesHeight(t *testing.T) {
	lvl1, _ := Generate(squareParcel(3), testConfig(), "1950s", 1, LODFull)
	lvl3, _ := Generate(squareParcel(3), testConfig(), "1950s", 3, LODFull)
	if lvl3.TotalHeight <= lvl1.TotalHeight {
		t.Errorf("expected level 3 height %f > level 1 height %f", lvl3.TotalHeight, lvl1.TotalHeight)
	}
}

func TestGenerateAbortsOnTinyParcel(t *testing.T) {
	tiny := squareParcel(9)
	tiny.Polygon = geo.NewPolygon(geo.Pt(0, 0), geo.Pt(3, 0), geo.Pt(3, 3), geo.Pt(0, 3)).EnsureCCW()
	_, ok := Generate(tiny, testConfig(), "1950s", 1, LODFull)
	if ok {
		t.Error("expected abort (no massing) for a parcel too small to survive setback offset")
	}
}

func TestGenerateLODLowEmitsSingleBox(t *testing.T) {
	b, ok := Generate(squareParcel(4), testConfig(), "1950s", 1, LODLow)
	if !ok {
		t.Fatal("expected successful massing generation")
	}
	if len(b.Mesh.Positions) != 8 {
		t.Errorf("expected an 8-vertex box at LODLow, got %d vertices", len(b.Mesh.Positions))
	}
}

func TestGeneratedMeshValidates(t *testing.T) {
	b, ok := Generate(squareParcel(5), testConfig(), "1950s", 1, LODFull)
	if !ok {
		t.Fatal("expected successful massing generation")
	}
	report := mesh.Validate(b.Mesh)
	if !report.Valid {
		t.Fatalf("expected valid generated mesh, got errors: %v", report.Errors)
	}
}

func TestIndustrialZoneBiasesSawtoothRoof(t *testing.T) {
	hits := 0
	for seed := uint32(0); seed < 30; seed++ {
		p := squareParcel(int(seed))
		p.ZoneType = parcel.ZoneIndustrial
		cfg := &corespec.Config{Seed: seed}
		b, ok := Generate(p, cfg, "1950s", 1, LODFull)
		if ok && b.RoofShape == mesh.RoofSawtooth {
			hits++
		}
	}
	if hits == 0 {
		t.Error("expected at least some industrial parcels to bias toward a sawtooth roof across seeds")
	}
}
