package core

import (
	"github.com/bneidlinger/webcity/pkg/blocks"
	"github.com/bneidlinger/webcity/pkg/mesh"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/welder"
)

// parcelVertexSeparator marks the gap between one parcel's vertex run and
// the next in a flattened parcel-vertex buffer.
const parcelVertexSeparator = -999999.0

// EncodeRoadSegments flattens segs into the stride-6 road-segments reply
// payload: startX, startZ, endX, endZ, width, classCode.
func EncodeRoadSegments(segs []*welder.Segment) []float32 {
	out := make([]float32, 0, len(segs)*6)
	for _, s := range segs {
		out = append(out,
			float32(s.A.X), float32(s.A.Z),
			float32(s.B.X), float32(s.B.Z),
			float32(s.Width), float32(s.Class),
		)
	}
	return out
}

// EncodeIntersections converts every welder.Intersection into the reply's
// summary shape.
func EncodeIntersections(ixs []*welder.Intersection) []IntersectionSummary {
	out := make([]IntersectionSummary, 0, len(ixs))
	for _, ix := range ixs {
		out = append(out, IntersectionSummary{
			ID:          ix.ID,
			X:           ix.Position.X,
			Z:           ix.Position.Z,
			Type:        intersectionTypeName(ix.Type),
			Orientation: ix.Orientation,
			Radius:      ix.Radius,
			Incident:    append([]int{}, ix.Incident...),
		})
	}
	return out
}

func intersectionTypeName(t welder.IntersectionType) string {
	switch t {
	case welder.IntersectionEnd:
		return "end"
	case welder.IntersectionT:
		return "T"
	case welder.IntersectionCross:
		return "cross"
	default:
		return "complex"
	}
}

// EncodeParcelHeaders flattens parcels into the stride-9 parcel-headers
// buffer: id, zoneTypeCode, densityCode, area, frontage, cornerFlag,
// centroidX, centroidZ, blockId.
func EncodeParcelHeaders(ps []parcel.Parcel) []float32 {
	out := make([]float32, 0, len(ps)*9)
	for _, p := range ps {
		corner := float32(0)
		if p.IsCorner {
			corner = 1
		}
		out = append(out,
			float32(p.ID), float32(p.ZoneType), float32(p.Density),
			float32(p.Area), float32(p.Frontage), corner,
			float32(p.Centroid.X), float32(p.Centroid.Z), float32(p.BlockID),
		)
	}
	return out
}

// EncodeParcelVertices flattens every parcel's polygon vertices into the
// stride-2 parcel-vertices buffer, with a (-999999, -999999) separator
// between parcels.
func EncodeParcelVertices(ps []parcel.Parcel) []float32 {
	out := make([]float32, 0)
	for i, p := range ps {
		if i > 0 {
			out = append(out, parcelVertexSeparator, parcelVertexSeparator)
		}
		for _, v := range p.Polygon.Vertices {
			out = append(out, float32(v.X), float32(v.Z))
		}
	}
	return out
}

// EncodeBlockHeaders flattens blocks into the stride-4 block-headers
// buffer: id, area, perimeter, parcelCount.
func EncodeBlockHeaders(bs []blocks.CityBlock) []float32 {
	out := make([]float32, 0, len(bs)*4)
	for _, b := range bs {
		out = append(out, float32(b.ID), float32(b.Area), float32(b.Perimeter), float32(len(b.ParcelIDs)))
	}
	return out
}

// EncodeMesh flattens a mesh.Mesh into the buffer set used by mesh replies.
func EncodeMesh(m mesh.Mesh) EncodedMesh {
	positions := make([]float32, 0, len(m.Positions)*3)
	normals := make([]float32, 0, len(m.Normals)*3)
	for i := range m.Positions {
		p := m.Positions[i]
		positions = append(positions, float32(p.X), float32(p.Y), float32(p.Z))
		if i < len(m.Normals) {
			n := m.Normals[i]
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	uvs := make([]float32, 0, len(m.UVs)*2)
	for _, uv := range m.UVs {
		uvs = append(uvs, float32(uv[0]), float32(uv[1]))
	}
	return EncodedMesh{
		Positions:   positions,
		Normals:     normals,
		UVs:         uvs,
		Indices:     append([]uint32{}, m.Indices...),
		MaterialIDs: append([]uint8{}, m.MaterialIDs...),
	}
}
