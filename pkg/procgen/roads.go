package procgen

import (
	"math"

	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/rng"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/welder"
)

// highwaySegmentSpan and sinAmplitude are the highway-polyline
// parameters: one control point roughly every 150m of straight-line
// distance, perpendicular sinusoidal offset of amplitude 15m.
const (
	highwaySegmentSpan = 150.0
	sinAmplitude       = 15.0
)

// buildHighwayNetwork connects every unordered pair of centers with an
// organic polyline: a straight baseline split into dist/150 control
// points, each displaced along the baseline's perpendicular by a
// sinusoidal offset, then emitted as a chain of highway segments.
func buildHighwayNetwork(w *welder.Welder, src *rng.Source, centers []geo.Point2D, era string, sum *Summary) {
	for i := 0; i < len(centers); i++ {
		for j := i + 1; j < len(centers); j++ {
			emitOrganicPolyline(w, src, centers[i], centers[j], roadgraph.ClassHighway, era, sum)
		}
	}
}

// emitOrganicPolyline builds a polyline from a to b with segment count
// ~= dist/150 and a sinusoidal perpendicular offset of amplitude 15m, then
// emits each resulting leg as a segment of the given class.
func emitOrganicPolyline(w *welder.Welder, src *rng.Source, a, b geo.Point2D, class roadgraph.RoadClass, era string, sum *Summary) {
	dist := a.Distance(b)
	n := int(math.Round(dist / highwaySegmentSpan))
	if n < 1 {
		n = 1
	}
	dir := b.Sub(a).Normalize()
	normal := dir.Perp()
	phase := src.Range(0, 2*math.Pi)

	pts := make([]geo.Point2D, n+1)
	pts[0] = a
	pts[n] = b
	for k := 1; k < n; k++ {
		t := float64(k) / float64(n)
		base := a.Lerp(b, t)
		offset := sinAmplitude * math.Sin(t*math.Pi*2+phase)
		pts[k] = base.Add(normal.Scale(offset))
	}

	for k := 0; k+1 < len(pts); k++ {
		emit(w, sum, pts[k], pts[k+1], class, era)
	}
}

// ringNodeCount, ringBaseRadius, ringRadiusJitter, and ringPerturb are
// the ring-road parameters: 16 nodes at radius 200+U[0,100]m,
// each perturbed by 30m, closed into a loop.
const (
	ringNodeCount    = 16
	ringBaseRadius   = 200.0
	ringRadiusJitter = 100.0
	ringPerturb      = 30.0
)

// buildRing emits a ring road for the first two centers
// placed, anchored at their midpoint (the implementer decision recorded in
// DESIGN.md: no other anchor for "the first two centers" is specified).
func buildRing(w *welder.Welder, src *rng.Source, c1, c2 geo.Point2D, era string, sum *Summary) {
	center := geo.MidPoint(c1, c2)
	radius := ringBaseRadius + src.Range(0, ringRadiusJitter)

	pts := make([]geo.Point2D, ringNodeCount)
	for i := 0; i < ringNodeCount; i++ {
		angle := 2 * math.Pi * float64(i) / float64(ringNodeCount)
		p := geo.Pt(center.X+radius*math.Cos(angle), center.Z+radius*math.Sin(angle))
		perturb := geo.Pt(src.Range(-ringPerturb, ringPerturb), src.Range(-ringPerturb, ringPerturb))
		pts[i] = p.Add(perturb)
	}

	for i := 0; i < ringNodeCount; i++ {
		emit(w, sum, pts[i], pts[(i+1)%ringNodeCount], roadgraph.ClassAvenue, era)
	}
}

// goldenAngle is the golden-angle increment used to distribute radial rays
// without axis bias.
const goldenAngle = math.Pi * (3 - 1.6180339887498949)

// rayJitter is the per-ray angular jitter.
const rayJitter = 0.2

// buildRadialRoads emits per-center radial rays: 5 +
// floor(4*density) + U{0,2} rays at golden-angle increments jittered
// ±0.2rad, dropping any ray within roadgraph.MinAngle of an already-placed
// ray at this center. Ray length scales with a centrality factor (closer to
// the map center => longer), and each ray degrades class with distance from
// its center (avenue <100m, street <300m, local beyond).
func buildRadialRoads(w *welder.Welder, src *rng.Source, center geo.Point2D, allCenters []geo.Point2D, cfg *corespec.Config, sum *Summary) {
	rayCount := 5 + int(4*clamp01(cfg.Density)) + src.IntRange(0, 2)

	centrality := centralityFactor(center, allCenters, cfg.Bounds.Width, cfg.Bounds.Height)
	maxLen := 150 + 550*centrality

	var placedAngles []float64
	startAngle := src.Range(0, 2*math.Pi)

	for i := 0; i < rayCount; i++ {
		angle := startAngle + float64(i)*goldenAngle + src.Range(-rayJitter, rayJitter)
		if tooCloseToExisting(angle, placedAngles) {
			continue
		}
		placedAngles = append(placedAngles, angle)

		dir := geo.Pt(math.Cos(angle), math.Sin(angle))
		length := maxLen * src.Range(0.6, 1.0)
		emitRadialRay(w, center, dir, length, cfg.Era, sum)
	}
}

// tooCloseToExisting reports whether angle lies within roadgraph.MinAngle of
// any angle already placed for this center.
func tooCloseToExisting(angle float64, placed []float64) bool {
	for _, p := range placed {
		d := math.Mod(math.Abs(angle-p), 2*math.Pi)
		if d > math.Pi {
			d = 2*math.Pi - d
		}
		if d < roadgraph.MinAngle {
			return true
		}
	}
	return false
}

// centralityFactor returns how close center is to the overall map center
// relative to the farthest any center could plausibly sit (half the map
// diagonal), in [0,1]: 1 at the map center, trending to 0 at the corners.
func centralityFactor(center geo.Point2D, allCenters []geo.Point2D, width, height float64) float64 {
	mc := mapCenter(width, height)
	maxDist := geo.Pt(0, 0).Distance(mc)
	if maxDist < 1e-9 {
		return 1
	}
	return clamp01(1 - center.Distance(mc)/maxDist)
}

// emitRadialRay walks outward from center along dir for length meters,
// splitting into avenue/street/local legs at the 100m and 300m class
// breakpoints used by the layout pipeline.
func emitRadialRay(w *welder.Welder, center geo.Point2D, dir geo.Point2D, length float64, era string, sum *Summary) {
	breakpoints := []float64{100, 300, length}
	prevD := 0.0
	prevPt := center
	for _, d := range breakpoints {
		if d > length {
			d = length
		}
		if d <= prevD {
			continue
		}
		pt := center.Add(dir.Scale(d))
		class := classForDistance((prevD + d) / 2)
		emit(w, sum, prevPt, pt, class, era)
		prevPt = pt
		prevD = d
	}
}
