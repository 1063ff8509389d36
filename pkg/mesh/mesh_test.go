package mesh

import (
	"testing"

	"github.com/bneidlinger/webcity/pkg/geo"
)

func TestExtrudeFootprintBoxProducesValidMesh(t *testing.T) {
	footprint := geo.NewPolygon(
		geo.Pt(0, 0), geo.Pt(10, 0), geo.Pt(10, 10), geo.Pt(0, 10),
	).EnsureCCW()

	b := NewBuilder()
	ExtrudeFootprintBox(b, footprint, 0, 9, 1)
	m := b.Finish()

	if len(m.Positions) != 8 {
		t.Fatalf("expected 8 vertices for a box, got %d", len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		t.Fatalf("indices length %d not a multiple of 3", len(m.Indices))
	}

	report := Validate(m)
	if !report.Valid {
		t.Fatalf("expected valid mesh, got errors: %v", report.Errors)
	}
}

func TestExtrudePitchedRoofPyramid(t *testing.T) {
	footprint := geo.NewPolygon(
		geo.Pt(0, 0), geo.Pt(10, 0), geo.Pt(10, 10), geo.Pt(0, 10),
	).EnsureCCW()

	b := NewBuilder()
	ExtrudePitchedRoof(b, footprint, 9, 4, RoofPyramid, 2)
	m := b.Finish()

	report := Validate(m)
	if !report.Valid {
		t.Fatalf("expected valid roof mesh, got errors: %v", report.Errors)
	}
	if len(m.Indices)/3 != 4 {
		t.Errorf("expected 4 triangles for a 4-sided pyramid roof, got %d", len(m.Indices)/3)
	}
}

func TestExtrudePitchedRoofSawtoothHasMultipleTeeth(t *testing.T) {
	footprint := geo.NewPolygon(
		geo.Pt(0, 0), geo.Pt(20, 0), geo.Pt(20, 6), geo.Pt(0, 6),
	).EnsureCCW()

	b := NewBuilder()
	ExtrudePitchedRoof(b, footprint, 9, 3, RoofSawtooth, 2)
	m := b.Finish()

	report := Validate(m)
	if !report.Valid {
		t.Fatalf("expected valid sawtooth roof mesh, got errors: %v", report.Errors)
	}
	if len(m.Positions) <= 8 {
		t.Errorf("expected more than a single pyramid's worth of vertices for a sawtooth roof, got %d", len(m.Positions))
	}
}

func TestExtrudePitchedRoofBarrelVariesHeight(t *testing.T) {
	footprint := geo.NewPolygon(
		geo.Pt(0, 0), geo.Pt(20, 0), geo.Pt(20, 6), geo.Pt(0, 6),
	).EnsureCCW()

	b := NewBuilder()
	ExtrudePitchedRoof(b, footprint, 9, 3, RoofBarrel, 2)
	m := b.Finish()

	report := Validate(m)
	if !report.Valid {
		t.Fatalf("expected valid barrel roof mesh, got errors: %v", report.Errors)
	}

	minY, maxY := m.Positions[0].Y, m.Positions[0].Y
	for _, p := range m.Positions {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	if maxY-minY < 2 {
		t.Errorf("expected the vault crown to rise well above the base, got height span %f", maxY-minY)
	}
}

func TestExtrudePitchedRoofMansardHasTwoSlopes(t *testing.T) {
	footprint := geo.NewPolygon(
		geo.Pt(0, 0), geo.Pt(20, 0), geo.Pt(20, 20), geo.Pt(0, 20),
	).EnsureCCW()

	b := NewBuilder()
	ExtrudePitchedRoof(b, footprint, 9, 4, RoofMansard, 2)
	m := b.Finish()

	report := Validate(m)
	if !report.Valid {
		t.Fatalf("expected valid mansard roof mesh, got errors: %v", report.Errors)
	}
	// base ring + shoulder ring + cap ring, each distinct, so more vertices
	// than a single flat-cap roof would emit.
	if len(m.Positions) < 12 {
		t.Errorf("expected a two-level mansard to emit more than a single ring's worth of vertices, got %d", len(m.Positions))
	}
}

func TestAddNGonFanTriangulation(t *testing.T) {
	b := NewBuilder()
	p0 := b.AddVertex(Vec3{0, 0, 0}, [2]float64{0, 0})
	p1 := b.AddVertex(Vec3{1, 0, 0}, [2]float64{1, 0})
	p2 := b.AddVertex(Vec3{1, 0, 1}, [2]float64{1, 1})
	p3 := b.AddVertex(Vec3{0, 0, 1}, [2]float64{0, 1})
	p4 := b.AddVertex(Vec3{-1, 0, 0.5}, [2]float64{-1, 0.5})
	b.AddNGon([]uint32{p0, p1, p2, p3, p4}, 0)
	m := b.Finish()

	if len(m.Indices)/3 != 3 {
		t.Errorf("expected 3 triangles fanning a 5-gon, got %d", len(m.Indices)/3)
	}
}

func TestValidateCatchesIndexOutOfBounds(t *testing.T) {
	m := Mesh{
		Positions:   []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		Normals:     []Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		UVs:         [][2]float64{{0, 0}, {1, 0}, {0, 1}},
		Indices:     []uint32{0, 1, 5},
		MaterialIDs: []uint8{0},
	}
	report := Validate(m)
	if report.Valid {
		t.Fatal("expected validation error for out-of-bounds index")
	}
}

func TestValidateCatchesLengthMismatch(t *testing.T) {
	m := Mesh{
		Positions:   []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		Normals:     []Vec3{{0, 1, 0}},
		UVs:         [][2]float64{{0, 0}, {1, 0}, {0, 1}},
		Indices:     []uint32{0, 1, 2},
		MaterialIDs: []uint8{0},
	}
	report := Validate(m)
	if report.Valid {
		t.Fatal("expected validation error for normals length mismatch")
	}
}
