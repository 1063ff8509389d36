package procgen

import (
	"math"

	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/rng"
)

// marginFrac and maxAttemptsPerCenter are the center-placement
// parameters.
const (
	marginFrac           = 0.15
	maxAttemptsPerCenter = 30
)

// centerCount picks 1-3 centers from the layout density. Only the
// count as "1 to 3 per era" without giving the mapping from era/density to
// count; this implementation derives it from density (documented in
// DESIGN.md), since density is already the dial callers use to scale every
// other per-era quantity (radial ray count, parcel size).
func centerCount(density float64) int {
	n := 1 + int(math.Round(clamp01(density)*2))
	return clampInt(n, 1, 3)
}

// placeCenters rejection-samples 1-3 Poisson-disk centers inside a
// 15%-margin inset of the width x height planning area, with minimum
// spacing min(W,H)/(n+1), up to 30 attempts per center. A center that can't
// find a valid position within its attempt budget is simply skipped, so the
// returned slice may be shorter than n on a tightly packed small map.
func placeCenters(src *rng.Source, width, height, density float64) []geo.Point2D {
	n := centerCount(density)
	minSpacing := math.Min(width, height) / float64(n+1)

	marginX := width * marginFrac
	marginZ := height * marginFrac
	loX, hiX := marginX, width-marginX
	loZ, hiZ := marginZ, height-marginZ

	var centers []geo.Point2D
	for i := 0; i < n; i++ {
		for attempt := 0; attempt < maxAttemptsPerCenter; attempt++ {
			candidate := geo.Pt(src.Range(loX, hiX), src.Range(loZ, hiZ))
			ok := true
			for _, c := range centers {
				if c.Distance(candidate) < minSpacing {
					ok = false
					break
				}
			}
			if ok {
				centers = append(centers, candidate)
				break
			}
		}
	}
	return centers
}
