package core

import (
	"github.com/google/uuid"

	"github.com/bneidlinger/webcity/pkg/massing"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

// Reply is the tagged reply variant the core's run loop produces, matched to
// its request by CorrelationID.
type Reply interface {
	Kind() string
	CorrelationID() uuid.UUID
}

type replyBase struct {
	ID uuid.UUID
}

func (r replyBase) CorrelationID() uuid.UUID { return r.ID }

// IntersectionSummary is the welder's Intersection record flattened for a
// reply payload (no stride encoding here: typed-array strides only cover
// segments/parcels/blocks/mesh, not intersections).
type IntersectionSummary struct {
	ID          int
	X, Z        float64
	Type        string
	Orientation float64
	Radius      float64
	Incident    []int
}

// RoadsGeneratedReply answers boot, shuffle-seed, set-era, and get-roads.
type RoadsGeneratedReply struct {
	replyBase
	Segments      []float32 // stride 6: startX, startZ, endX, endZ, width, classCode
	Intersections []IntersectionSummary
}

func (RoadsGeneratedReply) Kind() string { return "roads-generated" }

// RoadPaintedReply answers a single paint-road request.
type RoadPaintedReply struct {
	replyBase
	Success       bool
	Reason        roadgraph.RejectReason
	SegmentIDs    []int
	Intersections []int
}

func (RoadPaintedReply) Kind() string { return "road-painted" }

// ZonePaintedReply answers paint-zone and regenerate-with-zone's paint step.
type ZonePaintedReply struct {
	replyBase
	AffectedParcels []int
	ParcelHeaders   []float32 // stride 9, see EncodeParcelHeaders
	ParcelVertices  []float32 // stride 2 with (-999999,-999999) separators
	BlockHeaders    []float32 // stride 4, see EncodeBlockHeaders
	VirtualBlockID  int       // set if the virtual-block fallback path ran, else -1
}

func (ZonePaintedReply) Kind() string { return "zone-painted" }

// ParcelsReply answers get-parcels.
type ParcelsReply struct {
	replyBase
	ParcelHeaders  []float32
	ParcelVertices []float32
}

func (ParcelsReply) Kind() string { return "parcels" }

// BlocksReply answers get-blocks.
type BlocksReply struct {
	replyBase
	BlockHeaders []float32
}

func (BlocksReply) Kind() string { return "blocks" }

// ZonesClearedReply answers clear-zones.
type ZonesClearedReply struct {
	replyBase
	BlockHeaders []float32
}

func (ZonesClearedReply) Kind() string { return "zones-cleared" }

// EncodedMesh is the flattened mesh buffer set returned in mesh replies.
type EncodedMesh struct {
	Positions   []float32 // stride 3
	Normals     []float32 // stride 3
	UVs         []float32 // stride 2
	Indices     []uint32
	MaterialIDs []uint8
}

// BuildingSpawnedReply answers generate-building-for-zone.
type BuildingSpawnedReply struct {
	replyBase
	Success  bool
	Reason   string // IndexMiss or DegenerateGeometry, or empty on success
	ParcelID int
	Building massing.Building
	MeshData EncodedMesh
	LOD      massing.LOD
}

func (BuildingSpawnedReply) Kind() string { return "building-spawned" }

// BuildingsGeneratedReply answers generate-buildings and set-building-lod.
type BuildingsGeneratedReply struct {
	replyBase
	Emitted  int
	Dropped  int
	ParcelID []int
	LOD      massing.LOD
}

func (BuildingsGeneratedReply) Kind() string { return "buildings-generated" }

// BuildingMeshReply answers get-building-mesh.
type BuildingMeshReply struct {
	replyBase
	Success  bool
	Reason   string
	ParcelID int
	MeshData EncodedMesh
	LOD      massing.LOD
}

func (BuildingMeshReply) Kind() string { return "building-mesh" }

// ErrorReply is returned for a request that cannot be fulfilled at all
// (e.g. a lookup miss with no partial result to report) — every failure is
// a concrete reply value rather than an unwound exception.
type ErrorReply struct {
	replyBase
	Reason  string
	Message string
}

func (ErrorReply) Kind() string { return "error" }

func errorReply(id uuid.UUID, reason, message string) ErrorReply {
	return ErrorReply{replyBase: replyBase{ID: id}, Reason: reason, Message: message}
}
