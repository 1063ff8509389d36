package massing

import (
	"fmt"
	"math"

	"github.com/bneidlinger/webcity/pkg/validation"
)

// ValidateBuilding checks that a building's base/body/roof heights sum to
// its total height within floating-point tolerance.
func ValidateBuilding(b Building) *validation.Report {
	report := validation.NewReport()
	sum := b.BaseHeight + b.BodyHeight + b.RoofHeight
	if math.Abs(sum-b.TotalHeight) > 1e-3 {
		report.AddError(validation.Result{
			Level: validation.LevelAnalytical,
			Message: fmt.Sprintf("building for parcel %d: base+body+roof %.3f != total %.3f",
				b.ParcelID, sum, b.TotalHeight),
			SpecPath: "massing.height.sum", ActualValue: sum,
			Expected: fmt.Sprintf("%.3f", b.TotalHeight),
		})
	}
	return report
}
