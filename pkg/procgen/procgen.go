// Package procgen implements the era-parameterized procedural road layout:
// seeded center placement, organic highway/ring connections between
// centers, golden-angle radial roads, an adaptive grid that fills empty
// regions, local infill clusters, connectivity repair, intersection
// optimization, and an era-evolution pass over materials and widths. It
// drives pkg/welder's AddSegment exclusively — every road it emits goes
// through the same online welding pipeline as a hand-painted segment.
package procgen

import (
	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/rng"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/welder"
)

// Summary reports what Generate did, for the boot/set-era reply.
type Summary struct {
	Centers          []geo.Point2D
	SegmentsEmitted  int
	SegmentsRejected int
}

// Generate runs the full procedural layout pipeline against w, using cfg's seed,
// era, bounds, and density. It is additive only: it never removes a
// segment, so calling it twice compounds layout rather than replacing it —
// callers that want a clean re-layout (e.g. set-era) should start from a
// fresh *welder.Welder.
func Generate(w *welder.Welder, cfg *corespec.Config) Summary {
	src := rng.New(cfg.Seed)
	bounds := geo.NewPolygon(
		geo.Pt(0, 0),
		geo.Pt(cfg.Bounds.Width, 0),
		geo.Pt(cfg.Bounds.Width, cfg.Bounds.Height),
		geo.Pt(0, cfg.Bounds.Height),
	)

	sum := &Summary{}
	centers := placeCenters(src, cfg.Bounds.Width, cfg.Bounds.Height, cfg.Density)
	sum.Centers = centers

	buildHighwayNetwork(w, src, centers, cfg.Era, sum)
	if len(centers) >= 2 {
		buildRing(w, src, centers[0], centers[1], cfg.Era, sum)
	}
	for _, c := range centers {
		buildRadialRoads(w, src, c, centers, cfg, sum)
	}

	adaptiveGrid(w, src, bounds, cfg, sum)
	localInfill(w, src, bounds, cfg, sum)

	repairConnectivity(w, cfg, sum)
	w.OptimizeIntersections(src)

	evolveEra(w.Graph, cfg.Era)

	return *sum
}

// emit wraps welder.AddSegment, bookkeeping Summary counts. It is the only
// path by which this package's generators touch the welder.
func emit(w *welder.Welder, sum *Summary, a, b geo.Point2D, class roadgraph.RoadClass, era string) {
	if a.Distance(b) < 1e-6 {
		return
	}
	material := corespec.EraMaterial(era, class)
	res := w.AddSegment(a, b, class, material)
	if res.OK {
		sum.SegmentsEmitted += len(res.SegmentIDs)
	} else {
		sum.SegmentsRejected++
	}
}

// classForDistance implements the "class degrades with distance"
// rule for radial rays: avenue inside 100m, street inside 300m, local
// beyond.
func classForDistance(d float64) roadgraph.RoadClass {
	switch {
	case d < 100:
		return roadgraph.ClassAvenue
	case d < 300:
		return roadgraph.ClassStreet
	default:
		return roadgraph.ClassLocal
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mapCenter(width, height float64) geo.Point2D {
	return geo.Pt(width/2, height/2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
