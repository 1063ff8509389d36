// Package parcel implements the parcel subdivider: two strategies
// (frontage-aligned "skeleton" strips and a half-plane Voronoi partition)
// that tile a city block with parcels sized by zone and density, plus
// frontage/corner detection against the block's road-adjacent edges.
package parcel

import (
	"math"
	"sort"

	"github.com/bneidlinger/webcity/pkg/blocks"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/rng"
)

// ZoneType is the fixed integer coding used by the zone-paint protocol.
type ZoneType int

const (
	ZoneResidential ZoneType = iota
	ZoneCommercial
	ZoneIndustrial
	ZoneNone
)

// Density is the fixed integer coding used by the zone-paint protocol.
type Density int

const (
	DensityLow Density = iota
	DensityMedium
	DensityHigh
)

// Method selects which subdivision strategy to run.
type Method int

const (
	MethodSkeleton Method = iota
	MethodVoronoi
)

// MinParcelArea is the MIN_PARCEL_AREA default (50 m²).
const MinParcelArea = 50.0

// Parcel is a subdivided lot within a block.
type Parcel struct {
	ID           int
	Polygon      geo.Polygon
	ZoneType     ZoneType
	Density      Density
	Area         float64
	Frontage     float64
	FrontageEdge int // road edge id, or -1
	IsCorner     bool
	Centroid     geo.Point2D
	BlockID      int
}

// zoneWidths is an implementer decision (zone width
// ranges undefined at the distillation level, only naming the multipliers
// applied to them): reasonable per-zone frontage width bands in meters,
// documented in DESIGN.md.
type widthRange struct{ min, max float64 }

var zoneWidths = map[ZoneType]widthRange{
	ZoneResidential: {15, 25},
	ZoneCommercial:  {20, 40},
	ZoneIndustrial:  {30, 60},
	ZoneNone:        {15, 25},
}

func meanWidth(zt ZoneType) float64 {
	r := zoneWidths[zt]
	return (r.min + r.max) / 2
}

func densityMultiplier(d Density) float64 {
	switch d {
	case DensityLow:
		return 1.0
	case DensityMedium:
		return 0.85
	default:
		return 0.7
	}
}

func depthMultiplier(d Density) float64 {
	switch d {
	case DensityLow:
		return 2.0
	case DensityMedium:
		return 1.5
	default:
		return 1.0
	}
}

// Subdivide runs method against block, emitting parcels sized for zoneType
// and density. seed drives the Voronoi method's jittered seed placement;
// the skeleton method is fully deterministic given block and the target
// parameters.
func Subdivide(block blocks.CityBlock, zoneType ZoneType, density Density, method Method, seed uint32) []Parcel {
	var polys []geo.Polygon
	switch method {
	case MethodVoronoi:
		polys = subdivideVoronoi(block, zoneType, density, seed)
	default:
		polys = subdivideSkeleton(block, zoneType, density)
	}

	parcels := make([]Parcel, 0, len(polys))
	for _, p := range polys {
		if p.IsEmpty() || p.Area() < MinParcelArea {
			continue
		}
		frontage, corner, frontageEdge := computeFrontage(p, block)
		parcels = append(parcels, Parcel{
			Polygon:      p,
			ZoneType:     zoneType,
			Density:      density,
			Area:         p.Area(),
			Frontage:     frontage,
			FrontageEdge: frontageEdge,
			IsCorner:     corner,
			Centroid:     p.Centroid(),
			BlockID:      block.ID,
		})
	}
	return parcels
}

// frontageEdgeIndex chooses the block boundary edge whose midpoint is
// closest to any of the block's road edges, tie-breaking by lower index.
// In this implementation a CityBlock's boundary edges ARE its road edges
// one-to-one (blocks.Find derives both from the same graph cycle), so every
// boundary edge's midpoint distance to "a road edge" is exactly zero; the
// rule therefore always resolves to the lowest index, 0, for graph-derived
// blocks. It only matters for a virtual block (no RoadEdges at all), where
// there is no road reference and edge 0 is used as an arbitrary but
// deterministic frontage direction.
func frontageEdgeIndex(block blocks.CityBlock) int {
	return 0
}

func subdivideSkeleton(block blocks.CityBlock, zoneType ZoneType, density Density) []geo.Polygon {
	if block.Outer.Len() < 3 {
		return nil
	}
	idx := frontageEdgeIndex(block)
	start, end := block.Outer.Edge(idx)
	frontageLen := start.Distance(end)
	if frontageLen < 1e-6 {
		return nil
	}
	dir := end.Sub(start).Normalize()
	normal := dir.Perp() // CCW polygon: left side (Perp) is interior.

	targetWidth := meanWidth(zoneType) * densityMultiplier(density)
	targetDepth := targetWidth * depthMultiplier(density)

	n := int(math.Round(frontageLen / targetWidth))
	if n < 1 {
		n = 1
	}
	actualWidth := frontageLen / float64(n)
	_ = actualWidth // width varies implicitly via Lerp fractions below

	var out []geo.Polygon
	emitRow := func(rowStart, rowEnd float64) {
		for i := 0; i < n; i++ {
			t0 := float64(i) / float64(n)
			t1 := float64(i+1) / float64(n)
			p0 := start.Lerp(end, t0)
			p1 := start.Lerp(end, t1)
			a := p0.Add(normal.Scale(rowStart))
			b := p1.Add(normal.Scale(rowStart))
			c := p1.Add(normal.Scale(rowEnd))
			d := p0.Add(normal.Scale(rowEnd))
			rect := geo.NewPolygon(a, b, c, d)
			clipped := geo.ClipToConvex(rect, block.Outer)
			if clipped.IsEmpty() || clipped.Len() < 3 {
				continue
			}
			out = append(out, clipped)
		}
	}

	emitRow(0, targetDepth)

	blockDepth := 0.0
	for _, v := range block.Outer.Vertices {
		d := v.Sub(start).Dot(normal)
		if d > blockDepth {
			blockDepth = d
		}
	}
	if blockDepth > 2.5*targetDepth && density != DensityLow {
		emitRow(targetDepth, 2*targetDepth)
	}

	return out
}

func subdivideVoronoi(block blocks.CityBlock, zoneType ZoneType, density Density, seed uint32) []geo.Polygon {
	if block.Outer.Len() < 3 {
		return nil
	}
	w := zoneWidths[zoneType]
	targetArea := meanWidth(zoneType) * meanWidth(zoneType) * depthMultiplier(density) * densityMultiplier(density)
	if targetArea < 1 {
		targetArea = 1
	}
	blockArea := block.Outer.Area()

	n := int(math.Ceil(blockArea / targetArea))
	maxN := int(math.Ceil(blockArea / (w.min * w.min * 0.8)))
	if n < 2 {
		n = 2
	}
	if maxN < n {
		n = maxN
	}
	if n < 2 {
		n = 2
	}

	seeds := placeSeeds(block.Outer, n, targetArea, seed)
	if len(seeds) == 0 {
		return nil
	}

	cells := geo.Voronoi(seeds, block.Outer.EnsureCCW())
	out := make([]geo.Polygon, 0, len(cells))
	for _, c := range cells {
		if c.Polygon.IsEmpty() || c.Polygon.Len() < 3 {
			continue
		}
		out = append(out, c.Polygon)
	}
	return out
}

// placeSeeds lays a rotated-jittered grid of ceil(sqrt(n)) x ceil(sqrt(n))
// candidates first, keeping only those inside the block, then rejection-
// samples any remaining seeds up to 20*n attempts with minimum spacing
// 0.4*sqrt(targetArea).
func placeSeeds(bounds geo.Polygon, n int, targetArea float64, seed uint32) []geo.Point2D {
	src := rng.New(seed)
	minSpacing := 0.4 * math.Sqrt(targetArea)

	bbMin, bbMax := bounds.BoundingBox()
	w := bbMax.X - bbMin.X
	h := bbMax.Z - bbMin.Z

	gridN := int(math.Ceil(math.Sqrt(float64(n))))
	var seeds []geo.Point2D

	jitterAngle := src.Range(0, math.Pi/2)
	cos, sin := math.Cos(jitterAngle), math.Sin(jitterAngle)
	center := geo.Pt((bbMin.X+bbMax.X)/2, (bbMin.Z+bbMax.Z)/2)

	for gx := 0; gx < gridN && len(seeds) < n; gx++ {
		for gz := 0; gz < gridN && len(seeds) < n; gz++ {
			fx := (float64(gx)+0.5)/float64(gridN)*w + bbMin.X
			fz := (float64(gz)+0.5)/float64(gridN)*h + bbMin.Z
			fx += src.Range(-minSpacing*0.2, minSpacing*0.2)
			fz += src.Range(-minSpacing*0.2, minSpacing*0.2)

			// Rotate around the block center for a less axis-locked grid.
			rx := fx - center.X
			rz := fz - center.Z
			p := geo.Pt(center.X+rx*cos-rz*sin, center.Z+rx*sin+rz*cos)

			if bounds.Contains(p) {
				seeds = append(seeds, p)
			}
		}
	}

	attempts := 0
	for len(seeds) < n && attempts < 20*n {
		attempts++
		x := src.Range(bbMin.X, bbMax.X)
		z := src.Range(bbMin.Z, bbMax.Z)
		p := geo.Pt(x, z)
		if !bounds.Contains(p) {
			continue
		}
		tooClose := false
		for _, s := range seeds {
			if s.Distance(p) < minSpacing {
				tooClose = true
				break
			}
		}
		if !tooClose {
			seeds = append(seeds, p)
		}
	}

	return seeds
}

// frontageTolDist and frontageTolCos are the edge-overlap tolerance:
// 2 m perpendicular distance, cosine > 0.95 direction alignment.
const (
	frontageTolDist = 2.0
	frontageTolCos  = 0.95
)

// computeFrontage sums the lengths of parcel edges that lie within
// tolerance of any block boundary edge backed by a road, marks isCorner if
// >= 2 distinct such road edges are matched, and falls back to the longest
// parcel edge when no block-edge overlap is found (keep the
// fallback, document it at the API — this function is that documentation).
func computeFrontage(parcel geo.Polygon, block blocks.CityBlock) (float64, bool, int) {
	n := parcel.Len()
	bn := block.Outer.Len()

	var matchedRoadIDs []int
	seen := make(map[int]bool)
	total := 0.0

	for i := 0; i < n; i++ {
		pa, pb := parcel.Edge(i)
		pdir := pb.Sub(pa).Normalize()
		if pdir.Length() < 1e-9 {
			continue
		}

		for j := 0; j < bn && j < len(block.RoadEdges); j++ {
			ba, bb := block.Outer.Edge(j)
			bdir := bb.Sub(ba).Normalize()
			if bdir.Length() < 1e-9 {
				continue
			}
			if math.Abs(pdir.Dot(bdir)) < frontageTolCos {
				continue
			}
			seg := geo.NewPolyline(ba, bb)
			_, distA := seg.NearestPoint(pa)
			_, distB := seg.NearestPoint(pb)
			if distA > frontageTolDist || distB > frontageTolDist {
				continue
			}

			total += pa.Distance(pb)
			roadID := block.RoadEdges[j]
			if !seen[roadID] {
				seen[roadID] = true
				matchedRoadIDs = append(matchedRoadIDs, roadID)
			}
			break
		}
	}

	if total > 0 {
		sort.Ints(matchedRoadIDs)
		first := -1
		if len(matchedRoadIDs) > 0 {
			first = matchedRoadIDs[0]
		}
		return total, len(matchedRoadIDs) >= 2, first
	}

	longest := 0.0
	for i := 0; i < n; i++ {
		pa, pb := parcel.Edge(i)
		if d := pa.Distance(pb); d > longest {
			longest = d
		}
	}
	return longest, false, -1
}
