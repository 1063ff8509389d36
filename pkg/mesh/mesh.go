// Package mesh assembles component geometry (prismatic and pitched
// building volumes) into flat vertex/index buffers ready for the wire
// payload: positions, normals, uvs, a triangle index list, and a
// per-triangle material id. Builder accumulates one component at a time;
// Mesh is the flattened result.
package mesh

import (
	"math"

	"github.com/bneidlinger/webcity/pkg/geo"
)

// Vec3 is a position or normal in 3D (X, Y up, Z), kept separate from
// geo.Point2D since mesh geometry carries real height.
type Vec3 struct {
	X, Y, Z float64
}

// Mesh is the flattened output buffer set for one or more components.
type Mesh struct {
	Positions   []Vec3
	Normals     []Vec3
	UVs         [][2]float64
	Indices     []uint32
	MaterialIDs []uint8 // one per triangle (len(Indices)/3)
}

// Builder accumulates faces across one or more components into a single
// Mesh, deferring normal computation until Finish.
type Builder struct {
	positions   []Vec3
	uvs         [][2]float64
	indices     []uint32
	materialIDs []uint8
	faceNormals [][3]uint32 // per-triangle vertex indices, for normal accumulation
}

// NewBuilder returns an empty mesh builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddVertex appends a new vertex at position p with uv, returning its index.
func (b *Builder) AddVertex(p Vec3, uv [2]float64) uint32 {
	idx := uint32(len(b.positions))
	b.positions = append(b.positions, p)
	b.uvs = append(b.uvs, uv)
	return idx
}

// AddQuad triangulates a quad face (a, b, c, d in order) into two triangles
// and records materialID for both.
func (b *Builder) AddQuad(a, bb, c, d uint32, materialID uint8) {
	b.AddTriangle(a, bb, c, materialID)
	b.AddTriangle(a, c, d, materialID)
}

// AddNGon triangulates an arbitrary n-gon face (indices in order, n >= 3)
// as a fan from the first vertex.
func (b *Builder) AddNGon(indices []uint32, materialID uint8) {
	if len(indices) < 3 {
		return
	}
	for i := 1; i < len(indices)-1; i++ {
		b.AddTriangle(indices[0], indices[i], indices[i+1], materialID)
	}
}

// AddTriangle records one triangle face and queues it for normal
// accumulation.
func (b *Builder) AddTriangle(a, bIdx, c uint32, materialID uint8) {
	b.indices = append(b.indices, a, bIdx, c)
	b.materialIDs = append(b.materialIDs, materialID)
	b.faceNormals = append(b.faceNormals, [3]uint32{a, bIdx, c})
}

// Finish computes per-vertex normals by face-normal accumulation and
// normalization, and returns the flattened Mesh.
func (b *Builder) Finish() Mesh {
	normals := make([]Vec3, len(b.positions))
	for _, tri := range b.faceNormals {
		pa, pb, pc := b.positions[tri[0]], b.positions[tri[1]], b.positions[tri[2]]
		n := faceNormal(pa, pb, pc)
		normals[tri[0]] = normals[tri[0]].add(n)
		normals[tri[1]] = normals[tri[1]].add(n)
		normals[tri[2]] = normals[tri[2]].add(n)
	}
	for i := range normals {
		normals[i] = normals[i].normalize()
	}

	return Mesh{
		Positions:   b.positions,
		Normals:     normals,
		UVs:         b.uvs,
		Indices:     b.indices,
		MaterialIDs: b.materialIDs,
	}
}

func faceNormal(a, b, c Vec3) Vec3 {
	u := b.sub(a)
	v := c.sub(a)
	return Vec3{
		X: u.Y*v.Z - u.Z*v.Y,
		Y: u.Z*v.X - u.X*v.Z,
		Z: u.X*v.Y - u.Y*v.X,
	}
}

func (v Vec3) add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) normalize() Vec3 {
	l := v.X*v.X + v.Y*v.Y + v.Z*v.Z
	if l < 1e-18 {
		return Vec3{}
	}
	inv := 1.0 / math.Sqrt(l)
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// ExtrudeFootprintBox emits a prismatic volume over footprint from baseY to
// baseY+height: a bottom cap, four (or n) wall quads, and a top cap. Used by
// the LOD 2 "extruded box" path and as a building block for setback/step
// massing components.
func ExtrudeFootprintBox(b *Builder, footprint geo.Polygon, baseY, height float64, materialID uint8) {
	n := footprint.Len()
	if n < 3 {
		return
	}

	bottom := make([]uint32, n)
	top := make([]uint32, n)
	for i, v := range footprint.Vertices {
		bottom[i] = b.AddVertex(Vec3{v.X, baseY, v.Z}, [2]float64{0, 0})
		top[i] = b.AddVertex(Vec3{v.X, baseY + height, v.Z}, [2]float64{0, 1})
	}

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		// Wall quad, wound so the outward face normal points away from the
		// footprint interior (CCW footprint => outward wall winding below).
		b.AddQuad(bottom[i], bottom[j], top[j], top[i], materialID)
	}

	b.AddNGon(reverseCopy(bottom), materialID)
	b.AddNGon(top, materialID)
}

func reverseCopy(idx []uint32) []uint32 {
	out := make([]uint32, len(idx))
	for i, v := range idx {
		out[len(idx)-1-i] = v
	}
	return out
}

// ExtrudePitchedRoof emits a roof volume over footprint from baseY, rising
// to an apex (or ridge, for a two-slope gable) at baseY+height. shape
// selects the silhouette; unrecognized shapes fall back to a flat cap at
// baseY+height.
func ExtrudePitchedRoof(b *Builder, footprint geo.Polygon, baseY, height float64, shape RoofShape, materialID uint8) {
	n := footprint.Len()
	if n < 3 {
		return
	}

	base := make([]uint32, n)
	for i, v := range footprint.Vertices {
		base[i] = b.AddVertex(Vec3{v.X, baseY, v.Z}, [2]float64{0, 0})
	}

	switch shape {
	case RoofPyramid, RoofHip:
		apex := footprint.Centroid()
		apexIdx := b.AddVertex(Vec3{apex.X, baseY + height, apex.Z}, [2]float64{0.5, 1})
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			b.AddTriangle(base[i], base[j], apexIdx, materialID)
		}
	case RoofGable:
		emitRidgedSlopes(b, footprint, base, baseY, height, materialID)
	case RoofBarrel:
		emitBarrelVault(b, footprint, base, baseY, height, materialID)
	case RoofMansard:
		emitMansard(b, footprint, base, baseY, height, materialID)
	case RoofSawtooth:
		emitSawtooth(b, footprint, baseY, height, materialID)
	default: // flat, green (a color/material variant of flat): a flat top cap
		emitFlatCap(b, footprint, baseY+height, materialID)
	}
}

// emitRidgedSlopes builds a gable/hip-style ridge roof: each wall edge
// slopes up to whichever of the two farthest-apart edge-midpoints (the
// ridge line) is nearer.
func emitRidgedSlopes(b *Builder, footprint geo.Polygon, base []uint32, baseY, height float64, materialID uint8) {
	n := footprint.Len()
	mid := ridgeMidpoints(footprint)
	r0 := b.AddVertex(Vec3{mid[0].X, baseY + height, mid[0].Z}, [2]float64{0, 1})
	r1 := b.AddVertex(Vec3{mid[1].X, baseY + height, mid[1].Z}, [2]float64{1, 1})
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		ra, rb := r0, r1
		if footprint.Vertices[i].Distance(mid[1]) < footprint.Vertices[i].Distance(mid[0]) {
			ra = r1
		}
		if footprint.Vertices[j].Distance(mid[1]) < footprint.Vertices[j].Distance(mid[0]) {
			rb = r1
		}
		if ra == rb {
			b.AddTriangle(base[i], base[j], ra, materialID)
		} else {
			b.AddQuad(base[i], base[j], rb, ra, materialID)
		}
	}
}

// emitBarrelVault emits a half-cylinder vault along the footprint's long
// axis: every vertex rises toward the ridge line following a circular
// cross-section profile rather than the gable's flat ridge plane.
func emitBarrelVault(b *Builder, footprint geo.Polygon, base []uint32, baseY, height float64, materialID uint8) {
	n := footprint.Len()
	mid := ridgeMidpoints(footprint)
	ridgeDir := mid[1].Sub(mid[0]).Normalize()
	perp := ridgeDir.Perp()

	halfWidth := 0.0
	for _, v := range footprint.Vertices {
		if d := math.Abs(v.Sub(mid[0]).Dot(perp)); d > halfWidth {
			halfWidth = d
		}
	}
	if halfWidth < 1e-6 {
		emitFlatCap(b, footprint, baseY+height, materialID)
		return
	}

	crown := make([]uint32, n)
	for i, v := range footprint.Vertices {
		u := v.Sub(mid[0]).Dot(perp) / halfWidth
		u = clampUnit(u)
		y := baseY + height*math.Sqrt(math.Max(0, 1-u*u))
		crown[i] = b.AddVertex(Vec3{v.X, y, v.Z}, [2]float64{0, 1})
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b.AddQuad(base[i], base[j], crown[j], crown[i], materialID)
	}
	// The vault surface is cut into strips across its width, each lifted by
	// the same profile, so it rises between the eaves as well.
	const strips = 6
	for s := 0; s < strips; s++ {
		lo := mid[0].Add(perp.Scale(halfWidth * (2*float64(s)/strips - 1)))
		hi := lo.Add(perp.Scale(2 * halfWidth / strips))
		strip := geo.ClipByHalfPlane(geo.ClipByHalfPlane(footprint, lo, perp), hi, perp.Scale(-1))
		top := make([]uint32, strip.Len())
		for i, v := range strip.Vertices {
			u := clampUnit(v.Sub(mid[0]).Dot(perp) / halfWidth)
			top[i] = b.AddVertex(Vec3{v.X, baseY + height*math.Sqrt(math.Max(0, 1-u*u)), v.Z}, [2]float64{0, 1})
		}
		b.AddNGon(top, materialID)
	}
}

// emitMansard builds a two-level mansard slope: a steep lower slope from
// base up to an inset shoulder ring at 65% of height, then a shallower
// upper slope from the shoulder to a smaller flat cap.
func emitMansard(b *Builder, footprint geo.Polygon, base []uint32, baseY, height float64, materialID uint8) {
	n := footprint.Len()
	inradius := polygonInradius(footprint)

	shoulderPoly := geo.OffsetPolygonInward(footprint, 0.3*inradius)
	shoulderY := baseY + height*0.65
	if shoulderPoly.Len() != n {
		emitFlatCap(b, footprint, baseY+height, materialID)
		return
	}
	shoulder := make([]uint32, n)
	for i, v := range shoulderPoly.Vertices {
		shoulder[i] = b.AddVertex(Vec3{v.X, shoulderY, v.Z}, [2]float64{0, 0.65})
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b.AddQuad(base[i], base[j], shoulder[j], shoulder[i], materialID)
	}

	capPoly := geo.OffsetPolygonInward(shoulderPoly, 0.3*polygonInradius(shoulderPoly))
	capY := baseY + height
	if capPoly.Len() != n {
		b.AddNGon(shoulder, materialID)
		return
	}
	cap := make([]uint32, n)
	for i, v := range capPoly.Vertices {
		cap[i] = b.AddVertex(Vec3{v.X, capY, v.Z}, [2]float64{0, 1})
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		b.AddQuad(shoulder[i], shoulder[j], cap[j], cap[i], materialID)
	}
	b.AddNGon(cap, materialID)
}

// emitSawtooth slices footprint into parallel strips along its shorter
// bounding-box axis and emits each as a single-slope tooth rising from
// baseY to baseY+height, dropping back to baseY at the next strip — the
// repeating-triangle profile of an industrial sawtooth roof (the vertical
// drop faces are where clerestory glazing would sit).
func emitSawtooth(b *Builder, footprint geo.Polygon, baseY, height float64, materialID uint8) {
	minPt, maxPt := footprint.BoundingBox()
	alongX := (maxPt.X - minPt.X) >= (maxPt.Z - minPt.Z)

	var lo, hi float64
	if alongX {
		lo, hi = minPt.Z, maxPt.Z
	} else {
		lo, hi = minPt.X, maxPt.X
	}
	span := hi - lo
	if span < 1e-6 {
		emitFlatCap(b, footprint, baseY+height, materialID)
		return
	}

	teeth := int(span / 3)
	if teeth < 2 {
		teeth = 2
	}
	if teeth > 6 {
		teeth = 6
	}
	stripW := span / float64(teeth)

	for t := 0; t < teeth; t++ {
		sLo := lo + float64(t)*stripW
		sHi := sLo + stripW

		var p1, p2, n1, n2 geo.Point2D
		if alongX {
			p1, n1 = geo.Pt(0, sLo), geo.Pt(0, 1)
			p2, n2 = geo.Pt(0, sHi), geo.Pt(0, -1)
		} else {
			p1, n1 = geo.Pt(sLo, 0), geo.Pt(1, 0)
			p2, n2 = geo.Pt(sHi, 0), geo.Pt(-1, 0)
		}
		strip := geo.ClipByHalfPlane(geo.ClipByHalfPlane(footprint, p1, n1), p2, n2)
		sn := strip.Len()
		if sn < 3 {
			continue
		}

		base := make([]uint32, sn)
		top := make([]uint32, sn)
		for i, v := range strip.Vertices {
			coord := v.Z
			if !alongX {
				coord = v.X
			}
			tt := clamp01((coord - sLo) / stripW)
			base[i] = b.AddVertex(Vec3{v.X, baseY, v.Z}, [2]float64{0, 0})
			top[i] = b.AddVertex(Vec3{v.X, baseY + tt*height, v.Z}, [2]float64{0, tt})
		}
		for i := 0; i < sn; i++ {
			j := (i + 1) % sn
			b.AddQuad(base[i], base[j], top[j], top[i], materialID)
		}
		b.AddNGon(top, materialID)
	}
}

func emitFlatCap(b *Builder, footprint geo.Polygon, y float64, materialID uint8) {
	n := footprint.Len()
	if n < 3 {
		return
	}
	top := make([]uint32, n)
	for i, v := range footprint.Vertices {
		top[i] = b.AddVertex(Vec3{v.X, y, v.Z}, [2]float64{0, 1})
	}
	b.AddNGon(top, materialID)
}

// polygonInradius estimates the radius of the largest circle a convex-ish
// polygon could inscribe, the same 2*Area/Perimeter approximation
// pkg/massing uses to guard setback collapse.
func polygonInradius(p geo.Polygon) float64 {
	perim := p.Perimeter()
	if perim <= 0 {
		return 0
	}
	return 2 * p.Area() / perim
}

// clampUnit clamps v to [-1, 1].
func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// clamp01 clamps v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ridgeMidpoints returns the two footprint-edge midpoints that are farthest
// apart, used as a gable/barrel roof's ridge line endpoints.
func ridgeMidpoints(footprint geo.Polygon) [2]geo.Point2D {
	n := footprint.Len()
	best := [2]geo.Point2D{}
	bestDist := -1.0
	for i := 0; i < n; i++ {
		a1, a2 := footprint.Edge(i)
		mi := geo.MidPoint(a1, a2)
		for j := i + 1; j < n; j++ {
			b1, b2 := footprint.Edge(j)
			mj := geo.MidPoint(b1, b2)
			if d := mi.Distance(mj); d > bestDist {
				bestDist = d
				best = [2]geo.Point2D{mi, mj}
			}
		}
	}
	return best
}

// RoofShape names the roof silhouette, matching the massing package's roof coding.
type RoofShape int

const (
	RoofFlat RoofShape = iota
	RoofGable
	RoofHip
	RoofMansard
	RoofPyramid
	RoofBarrel
	RoofSawtooth
	RoofGreen
)
