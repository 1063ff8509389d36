package procgen

import (
	"math"

	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/rng"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/welder"
)

// minRoadSeparation is the adaptive-grid separation guard.
const minRoadSeparation = 20.0

// adaptiveGrid implements the empty-region fill: the planning
// area is scanned on a 2*block_max grid, and every cell whose Nearby query
// returns fewer than 3 nodes becomes an empty region, filled with a small
// rotated street grid sized to the mean block dimension, oriented by the
// mean direction of whatever roads already pass nearby.
func adaptiveGrid(w *welder.Welder, src *rng.Source, bounds geo.Polygon, cfg *corespec.Config, sum *Summary) {
	blockMin, blockMax := cfg.BlockMin(), cfg.BlockMax()
	scanStep := 2 * blockMax
	bbMin, bbMax := bounds.BoundingBox()

	for x := bbMin.X; x < bbMax.X; x += scanStep {
		for z := bbMin.Z; z < bbMax.Z; z += scanStep {
			center := geo.Pt(x+scanStep/2, z+scanStep/2)
			if !bounds.Contains(center) {
				continue
			}
			nearby := w.Graph.Nearby(center, scanStep)
			if len(nearby) >= 3 {
				continue
			}
			orientation := meanEdgeOrientation(w.Graph, nearby)
			fillEmptyRegion(w, src, center, orientation, blockMin, blockMax, scanStep, cfg.Era, sum)
		}
	}
}

// meanEdgeOrientation averages the direction angle of every edge incident
// to any of the given nearby node ids. Returns 0 if none are incident to
// any edge (a genuinely empty region with no road fragments at all).
func meanEdgeOrientation(g *roadgraph.Graph, nearbyNodes []int) float64 {
	sumX, sumZ := 0.0, 0.0
	count := 0
	for _, nid := range nearbyNodes {
		node := g.Node(nid)
		if node == nil {
			continue
		}
		for _, eid := range node.Incident {
			e := g.Edge(eid)
			other := e.A
			if other == nid {
				other = e.B
			}
			dir := g.Node(other).Position.Sub(node.Position).Normalize()
			sumX += dir.X
			sumZ += dir.Z
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Atan2(sumZ, sumX)
}

// fillEmptyRegion emits a small rotated grid of street segments centered on
// center, spacing ~= mean(block_min, block_max) jittered by
// ±(block_max-block_min)/2, rotated by orientation. Each candidate endpoint
// is skipped if an existing node already lies within minRoadSeparation.
func fillEmptyRegion(w *welder.Welder, src *rng.Source, center geo.Point2D, orientation, blockMin, blockMax, extent float64, era string, sum *Summary) {
	spacing := (blockMin+blockMax)/2 + src.Range(-(blockMax-blockMin)/2, (blockMax-blockMin)/2)
	if spacing < 10 {
		spacing = 10
	}
	lines := int(extent / spacing)
	if lines < 2 {
		lines = 2
	}

	u := geo.Pt(math.Cos(orientation), math.Sin(orientation))
	v := u.Perp()

	grid := func(i, j float64) geo.Point2D {
		return center.Add(u.Scale(i * spacing)).Add(v.Scale(j * spacing))
	}

	for i := -lines / 2; i <= lines/2; i++ {
		for j := -lines / 2; j < lines/2; j++ {
			a := grid(float64(i), float64(j))
			b := grid(float64(i), float64(j+1))
			emitIfClear(w, a, b, roadgraph.ClassLocal, era, sum)
		}
	}
	for j := -lines / 2; j <= lines/2; j++ {
		for i := -lines / 2; i < lines/2; i++ {
			a := grid(float64(i), float64(j))
			b := grid(float64(i+1), float64(j))
			emitIfClear(w, a, b, roadgraph.ClassLocal, era, sum)
		}
	}
}

// emitIfClear emits a, b as a road segment only if neither endpoint already
// has an existing node within minRoadSeparation, per the
// adaptive-grid guard.
func emitIfClear(w *welder.Welder, a, b geo.Point2D, class roadgraph.RoadClass, era string, sum *Summary) {
	if len(w.Graph.Nearby(a, minRoadSeparation)) > 0 || len(w.Graph.Nearby(b, minRoadSeparation)) > 0 {
		return
	}
	emit(w, sum, a, b, class, era)
}

// localInfillStep and localInfillRadiusFactor are the local
// infill scan parameters.
const (
	localInfillStep          = 50.0
	localInfillRadiusFactor = 1.5
)

// localInfill scans the planning area on a 50m step and seeds a small
// 3-5-ray local cluster at any position with no neighbors within
// block_max*1.5 — catching pockets the coarser adaptive grid pass skipped.
func localInfill(w *welder.Welder, src *rng.Source, bounds geo.Polygon, cfg *corespec.Config, sum *Summary) {
	radius := cfg.BlockMax() * localInfillRadiusFactor
	bbMin, bbMax := bounds.BoundingBox()

	for x := bbMin.X; x < bbMax.X; x += localInfillStep {
		for z := bbMin.Z; z < bbMax.Z; z += localInfillStep {
			p := geo.Pt(x, z)
			if !bounds.Contains(p) {
				continue
			}
			if len(w.Graph.Nearby(p, radius)) > 0 {
				continue
			}
			seedLocalCluster(w, src, p, cfg.Era, sum)
		}
	}
}

// seedLocalCluster emits 3-5 short local-class rays from p at even angular
// spacing with a small jitter.
func seedLocalCluster(w *welder.Welder, src *rng.Source, p geo.Point2D, era string, sum *Summary) {
	rayCount := src.IntRange(3, 5)
	length := src.Range(40, 90)
	startAngle := src.Range(0, 2*math.Pi)
	for i := 0; i < rayCount; i++ {
		angle := startAngle + float64(i)*2*math.Pi/float64(rayCount) + src.Range(-0.1, 0.1)
		dir := geo.Pt(math.Cos(angle), math.Sin(angle))
		emit(w, sum, p, p.Add(dir.Scale(length)), roadgraph.ClassLocal, era)
	}
}
