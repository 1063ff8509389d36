// Package massing implements the per-parcel procedural building generator:
// setback footprint, tripartite (base/body/roof) height split by style and
// era, and dispatch of the resulting volumes to pkg/mesh.
package massing

import (
	"math"

	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/mesh"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/rng"
)

// Component names the three vertical massing tiers, also used as part of
// the material id encoding.
type Component int

const (
	ComponentBase Component = iota
	ComponentBody
	ComponentRoof
)

// LOD is the level of detail requested for mesh emission.
type LOD int

const (
	LODFull    LOD = iota // 0: per-floor subdivisions and style features
	LODMedium             // 1: same as Full in this implementation
	LODLow                // 2: extruded footprint box plus a top cap
)

// Building is the result of generating massing for one parcel.
type Building struct {
	ParcelID    int
	Style       string
	RoofShape   mesh.RoofShape
	Setback     float64
	TotalHeight float64
	BaseHeight  float64
	BodyHeight  float64
	RoofHeight  float64
	FloorCount  int
	LOD         LOD
	Mesh        mesh.Mesh
}

var styleCode = map[string]int{
	"victorian":    0,
	"art-deco":     1,
	"modern":       2,
	"brutalist":    3,
	"postmodern":   4,
	"contemporary": 5,
	"futuristic":   6,
}

var roofCode = map[string]mesh.RoofShape{
	"flat":     mesh.RoofFlat,
	"gable":    mesh.RoofGable,
	"hip":      mesh.RoofHip,
	"mansard":  mesh.RoofMansard,
	"pyramid":  mesh.RoofPyramid,
	"barrel":   mesh.RoofBarrel,
	"sawtooth": mesh.RoofSawtooth,
	"green":    mesh.RoofGreen,
}

type ratio struct{ base, roof float64 }

// tripartiteRatios is the per-style base/roof height ratio table
// (fractions of total height); body is the remainder. Unlisted styles use
// "default".
var tripartiteRatios = map[string]ratio{
	"victorian":    {0.15, 0.20},
	"art-deco":     {0.20, 0.15},
	"modern":       {0.10, 0.05},
	"contemporary": {0.10, 0.05},
	"brutalist":    {0.08, 0.03},
	"postmodern":   {0.12, 0.10},
	"futuristic":   {0.05, 0.08},
	"default":      {0.10, 0.10},
}

type heightRange struct{ min, max float64 }

var heightByDensity = map[parcel.Density]heightRange{
	parcel.DensityLow:    {3, 6},
	parcel.DensityMedium: {9, 15},
	parcel.DensityHigh:   {18, 60},
}

var setbackByDensity = map[parcel.Density]heightRange{
	parcel.DensityLow:    {4, 6},
	parcel.DensityMedium: {2, 4},
	parcel.DensityHigh:   {1, 2},
}

// Generate builds massing and mesh geometry for one parcel at the given
// upgrade level (1 = initial), for the given era, at lod. Returns ok=false
// (no massing emitted) if the setback footprint collapses to fewer than 3
// vertices.
func Generate(p parcel.Parcel, cfg *corespec.Config, era string, level int, lod LOD) (Building, bool) {
	salt := uint32(p.ID) + uint32(level)*1000
	src := rng.Derive(cfg.Seed, salt)

	setbackRange := setbackByDensity[p.Density]
	setback := src.Range(setbackRange.min, setbackRange.max)

	// OffsetPolygonInward never drops vertices, even past the point where a
	// polygon collapses through itself (its doc comment warns callers to
	// check the result). A setback at or beyond the parcel's inscribed-
	// radius estimate (2*Area/Perimeter) would invert rather than shrink the
	// footprint, so reject before offsetting.
	if perim := p.Polygon.Perimeter(); perim > 0 {
		inradius := 2 * p.Polygon.Area() / perim
		if setback >= inradius {
			return Building{}, false
		}
	}

	footprint := geo.OffsetPolygonInward(p.Polygon, setback)
	if footprint.Len() < 3 {
		return Building{}, false
	}

	hr := heightByDensity[p.Density]
	height := src.Range(hr.min, hr.max)
	height *= 1 + 0.3*float64(level-1)
	switch p.ZoneType {
	case parcel.ZoneCommercial:
		height *= 1.1
	case parcel.ZoneIndustrial:
		height *= 0.7
	}

	styles := cfg.Styles(era)
	style := styles[src.IntRange(0, len(styles)-1)]

	roofs := cfg.Roofs(era)
	roofName := roofs[src.IntRange(0, len(roofs)-1)]
	if p.ZoneType == parcel.ZoneIndustrial && src.Bool(0.6) {
		roofName = "sawtooth"
	} else if p.ZoneType == parcel.ZoneCommercial && p.Density == parcel.DensityHigh && src.Bool(0.6) {
		roofName = "flat"
	}
	shape, ok := roofCode[roofName]
	if !ok {
		shape = mesh.RoofFlat
	}

	r, ok := tripartiteRatios[style]
	if !ok {
		r = tripartiteRatios["default"]
	}
	baseFrac := clamp(r.base+src.Range(-0.05, 0.05), 0.05, 0.25)
	roofFrac := clamp(r.roof+src.Range(-0.05, 0.05), 0.03, 0.25)
	baseH := height * baseFrac
	roofH := height * roofFrac
	bodyH := height - baseH - roofH
	if bodyH < 0 {
		bodyH = 0
	}

	floorCount := int(math.Round(bodyH / 3))
	if floorCount < 1 {
		floorCount = 1
	}
	sc := styleCode[style]

	b := mesh.NewBuilder()
	switch lod {
	case LODLow:
		mesh.ExtrudeFootprintBox(b, footprint, 0, height, materialID(p.ZoneType, sc, ComponentBody, shape))
	default:
		emitBase(b, footprint, baseH, p.ZoneType, sc, shape)
		emitBody(b, footprint, baseH, bodyH, floorCount, p, sc, shape)
		emitRoof(b, footprint, baseH+bodyH, roofH, shape, p.ZoneType, sc)
	}

	return Building{
		ParcelID:    p.ID,
		Style:       style,
		RoofShape:   shape,
		Setback:     setback,
		TotalHeight: height,
		BaseHeight:  baseH,
		BodyHeight:  bodyH,
		RoofHeight:  roofH,
		FloorCount:  floorCount,
		LOD:         lod,
		Mesh:        b.Finish(),
	}, true
}

func emitBase(b *mesh.Builder, footprint geo.Polygon, baseH float64, zt parcel.ZoneType, sc int, shape mesh.RoofShape) {
	if baseH <= 0 {
		return
	}
	mesh.ExtrudeFootprintBox(b, footprint, 0, baseH, materialID(zt, sc, ComponentBase, shape))
}

// emitBody emits the body tier as one box per floor, so LOD0/1 output has a
// seam at every floor line, plus the style-conditional features this package
// names: residential balconies on even floors at medium/high density,
// commercial ground floor 1.5x height, industrial clerestory monitor along
// the roofline and loading dock at the base of the body.
func emitBody(b *mesh.Builder, footprint geo.Polygon, baseY, bodyH float64, floorCount int, p parcel.Parcel, sc int, shape mesh.RoofShape) {
	if bodyH <= 0 || floorCount < 1 {
		return
	}
	matID := materialID(p.ZoneType, sc, ComponentBody, shape)

	groundBoost := 0.0
	if p.ZoneType == parcel.ZoneCommercial {
		groundBoost = 0.5 // ground floor is emitted at 1.5x the plain per-floor height
	}
	plainFloorH := bodyH / (float64(floorCount) + groundBoost)

	y := baseY
	for f := 0; f < floorCount; f++ {
		floorH := plainFloorH
		if f == 0 {
			floorH *= 1 + groundBoost
		}
		mesh.ExtrudeFootprintBox(b, footprint, y, floorH, matID)

		if p.ZoneType == parcel.ZoneResidential && p.Density != parcel.DensityLow && f%2 == 1 {
			addBalcony(b, footprint, y, floorH, matID)
		}
		y += floorH
	}

	if p.ZoneType == parcel.ZoneIndustrial {
		addLoadingDock(b, footprint, baseY, matID)
		addClerestory(b, footprint, baseY+bodyH, matID)
	}
}

// addClerestory attaches a raised glazed monitor band along the body's
// roofline, centered on the footprint's longer axis — the light-admitting
// raised section typical of industrial sawtooth and flat roofs.
func addClerestory(b *mesh.Builder, footprint geo.Polygon, topY float64, matID uint8) {
	minPt, maxPt := footprint.BoundingBox()
	alongX := (maxPt.X - minPt.X) >= (maxPt.Z - minPt.Z)

	length, width := maxPt.X-minPt.X, maxPt.Z-minPt.Z
	if !alongX {
		length, width = width, length
	}
	halfLen := length * 0.35
	halfWid := math.Min(width*0.15, halfLen*0.3)
	if halfLen < 1 || halfWid < 0.5 {
		return
	}

	dir := geo.Pt(1, 0)
	if !alongX {
		dir = geo.Pt(0, 1)
	}
	perp := dir.Perp()
	center := footprint.Centroid()

	monitor := geo.NewPolygon(
		center.Sub(dir.Scale(halfLen)).Sub(perp.Scale(halfWid)),
		center.Add(dir.Scale(halfLen)).Sub(perp.Scale(halfWid)),
		center.Add(dir.Scale(halfLen)).Add(perp.Scale(halfWid)),
		center.Sub(dir.Scale(halfLen)).Add(perp.Scale(halfWid)),
	)
	mesh.ExtrudeFootprintBox(b, monitor, topY, 1.5, matID)
}

// addBalcony attaches a shallow box to the footprint's longest edge at the
// given floor's midheight.
func addBalcony(b *mesh.Builder, footprint geo.Polygon, floorY, floorH float64, matID uint8) {
	i := longestEdgeIndex(footprint)
	a, c := footprint.Edge(i)
	dir := c.Sub(a).Normalize()
	length := a.Distance(c)
	if length < 2 {
		return
	}
	normal := dir.Perp().Scale(-1) // outward, away from interior
	mid := geo.MidPoint(a, c)
	half := length * 0.15
	p0 := mid.Sub(dir.Scale(half))
	p1 := mid.Add(dir.Scale(half))
	depth := 1.0
	balconyFootprint := geo.NewPolygon(
		p0, p1, p1.Add(normal.Scale(depth)), p0.Add(normal.Scale(depth)),
	)
	mesh.ExtrudeFootprintBox(b, balconyFootprint, floorY+floorH*0.1, floorH*0.8, matID)
}

// addLoadingDock attaches a low wide box along the footprint's longest edge
// at ground level.
func addLoadingDock(b *mesh.Builder, footprint geo.Polygon, baseY float64, matID uint8) {
	i := longestEdgeIndex(footprint)
	a, c := footprint.Edge(i)
	dir := c.Sub(a).Normalize()
	length := a.Distance(c)
	normal := dir.Perp().Scale(-1)
	half := length * 0.25
	mid := geo.MidPoint(a, c)
	p0 := mid.Sub(dir.Scale(half))
	p1 := mid.Add(dir.Scale(half))
	depth := 3.0
	dockFootprint := geo.NewPolygon(
		p0, p1, p1.Add(normal.Scale(depth)), p0.Add(normal.Scale(depth)),
	)
	mesh.ExtrudeFootprintBox(b, dockFootprint, baseY, 3.0, matID)
}

func longestEdgeIndex(p geo.Polygon) int {
	best := 0
	bestLen := -1.0
	for i := 0; i < p.Len(); i++ {
		a, c := p.Edge(i)
		if d := a.Distance(c); d > bestLen {
			bestLen = d
			best = i
		}
	}
	return best
}

func emitRoof(b *mesh.Builder, footprint geo.Polygon, baseY, roofH float64, shape mesh.RoofShape, zt parcel.ZoneType, sc int) {
	if roofH <= 0 {
		return
	}
	mesh.ExtrudePitchedRoof(b, footprint, baseY, roofH, shape, materialID(zt, sc, ComponentRoof, shape))
}

// materialID packs {zone, style, component, roof} into a single byte. This
// is an implementer decision (only the lookup axes are fixed, not the
// encoding); documented in DESIGN.md.
func materialID(zt parcel.ZoneType, styleCode int, component Component, roof mesh.RoofShape) uint8 {
	id := int(zt)*41 + styleCode*17 + int(component)*7 + int(roof)*3
	return uint8(id % 256)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
