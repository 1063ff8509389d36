package parcel

import (
	"testing"

	"github.com/bneidlinger/webcity/pkg/blocks"
	"github.com/bneidlinger/webcity/pkg/geo"
)

func rectBlock(id int, w, h float64, roadEdges []int) blocks.CityBlock {
	poly := geo.NewPolygon(
		geo.Pt(0, 0),
		geo.Pt(w, 0),
		geo.Pt(w, h),
		geo.Pt(0, h),
	).EnsureCCW()
	return blocks.CityBlock{
		ID:        id,
		Outer:     poly,
		RoadEdges: roadEdges,
		Area:      poly.Area(),
		Perimeter: poly.Perimeter(),
	}
}

func TestSubdivideSkeletonRectangularBlock(t *testing.T) {
	block := rectBlock(1, 100, 60, []int{10, 11, 12, 13})
	parcels := Subdivide(block, ZoneResidential, DensityMedium, MethodSkeleton, 1)

	if len(parcels) == 0 {
		t.Fatal("expected at least one parcel")
	}
	total := 0.0
	for _, p := range parcels {
		if p.Area < MinParcelArea {
			t.Errorf("parcel %v area %f below MinParcelArea", p.Polygon, p.Area)
		}
		if p.BlockID != block.ID {
			t.Errorf("expected BlockID %d, got %d", block.ID, p.BlockID)
		}
		total += p.Area
	}
	if total > block.Area+1e-6 {
		t.Errorf("parcel area sum %f exceeds block area %f", total, block.Area)
	}
}

func TestSubdivideSkeletonSecondRowOnDeepBlock(t *testing.T) {
	// Deep enough (150m) relative to a medium-density target depth that a
	// second row should be emitted (low density never emits a second row).
	block := rectBlock(2, 100, 150, []int{10, 11, 12, 13})
	parcels := Subdivide(block, ZoneResidential, DensityMedium, MethodSkeleton, 1)
	if len(parcels) == 0 {
		t.Fatal("expected at least one parcel")
	}

	maxZ := 0.0
	for _, p := range parcels {
		for _, v := range p.Polygon.Vertices {
			if v.Z > maxZ {
				maxZ = v.Z
			}
		}
	}
	// targetDepth for Residential/Medium = meanWidth(20)*0.85*1.5 = 25.5; a
	// second row should push coverage well past the first row's depth.
	if maxZ <= 45 {
		t.Errorf("expected a second row of parcels reaching past z=45, max z was %f", maxZ)
	}
}

func TestSubdivideVoronoiBlock(t *testing.T) {
	block := rectBlock(3, 200, 150, []int{10, 11, 12, 13})
	parcels := Subdivide(block, ZoneCommercial, DensityHigh, MethodVoronoi, 42)
	if len(parcels) < 2 {
		t.Fatalf("expected at least 2 parcels from Voronoi subdivision, got %d", len(parcels))
	}
	for _, p := range parcels {
		if p.Area < MinParcelArea {
			t.Errorf("parcel area %f below MinParcelArea", p.Area)
		}
		if p.Area > block.Area {
			t.Errorf("parcel area %f exceeds block area %f", p.Area, block.Area)
		}
	}
}

func TestVoronoiDeterministicForSameSeed(t *testing.T) {
	block := rectBlock(4, 200, 150, []int{10, 11, 12, 13})
	a := Subdivide(block, ZoneCommercial, DensityHigh, MethodVoronoi, 42)
	b := Subdivide(block, ZoneCommercial, DensityHigh, MethodVoronoi, 42)
	if len(a) != len(b) {
		t.Fatalf("expected same parcel count for same seed, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Centroid.Distance(b[i].Centroid) > 1e-9 {
			t.Errorf("parcel %d centroid differs between runs: %v vs %v", i, a[i].Centroid, b[i].Centroid)
		}
	}
}

func TestComputeFrontageMatchesRoadEdge(t *testing.T) {
	block := rectBlock(5, 100, 60, []int{10, 11, 12, 13})
	// A parcel occupying the middle third, sharing the block's bottom
	// (frontage) edge from x=33 to x=66 and no other block edge.
	parcelPoly := geo.NewPolygon(
		geo.Pt(33, 0),
		geo.Pt(66, 0),
		geo.Pt(66, 25),
		geo.Pt(33, 25),
	).EnsureCCW()

	frontage, corner, edgeID := computeFrontage(parcelPoly, block)
	if frontage < 32 || frontage > 34 {
		t.Errorf("expected frontage ~33, got %f", frontage)
	}
	if corner {
		t.Error("expected not a corner parcel (only one block edge touched)")
	}
	if edgeID != 10 {
		t.Errorf("expected frontage edge id 10, got %d", edgeID)
	}
}

func TestComputeFrontageCornerParcel(t *testing.T) {
	block := rectBlock(6, 100, 60, []int{10, 11, 12, 13})
	// A parcel at the corner touching both the bottom (10) and left (13)
	// block edges.
	parcelPoly := geo.NewPolygon(
		geo.Pt(0, 0),
		geo.Pt(20, 0),
		geo.Pt(20, 20),
		geo.Pt(0, 20),
	).EnsureCCW()

	_, corner, _ := computeFrontage(parcelPoly, block)
	if !corner {
		t.Error("expected corner parcel touching two block edges")
	}
}

func TestComputeFrontageFallbackWithoutRoadEdges(t *testing.T) {
	block := rectBlock(7, 100, 60, nil) // virtual block: no road edges
	parcelPoly := geo.NewPolygon(
		geo.Pt(10, 10),
		geo.Pt(50, 10),
		geo.Pt(50, 30),
		geo.Pt(10, 30),
	).EnsureCCW()

	frontage, corner, edgeID := computeFrontage(parcelPoly, block)
	if frontage != 40 {
		t.Errorf("expected fallback frontage = longest edge 40, got %f", frontage)
	}
	if corner {
		t.Error("fallback path should never report a corner")
	}
	if edgeID != -1 {
		t.Errorf("expected no frontage edge id in fallback path, got %d", edgeID)
	}
}

func TestSubdivideTinyBlockYieldsNoParcels(t *testing.T) {
	block := rectBlock(8, 4, 4, []int{10, 11, 12, 13})
	parcels := Subdivide(block, ZoneResidential, DensityMedium, MethodSkeleton, 1)
	for _, p := range parcels {
		if p.Area < MinParcelArea {
			t.Errorf("parcel slipped through below MinParcelArea: %f", p.Area)
		}
	}
}
