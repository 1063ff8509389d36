package massing

import (
	"testing"

	"github.com/bneidlinger/webcity/pkg/mesh"
)

func TestValidateBuildingCatchesHeightMismatch(t *testing.T) {
	b := Building{
		BaseHeight: 3, BodyHeight: 10, RoofHeight: 2,
		TotalHeight: 20,
		Mesh:        mesh.Mesh{},
	}
	report := ValidateBuilding(b)
	if report.Valid {
		t.Error("expected mismatched height sum to fail")
	}
}

func TestValidateBuildingAcceptsConsistentHeights(t *testing.T) {
	b := Building{BaseHeight: 3, BodyHeight: 10, RoofHeight: 2, TotalHeight: 15}
	report := ValidateBuilding(b)
	if !report.Valid {
		t.Errorf("expected consistent height sum to pass, got: %s", report.Summary)
	}
}
