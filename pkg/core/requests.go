package core

import (
	"github.com/google/uuid"

	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/massing"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

// Request is the tagged request variant accepted by the core's run loop, in
// place of a dynamic union message: every concrete type below names its own
// Kind and carries only the fields that request needs.
type Request interface {
	Kind() string
	correlationID() uuid.UUID
}

// base carries the correlation id every request needs so a reply can be
// matched back to its request across the channel boundary.
type base struct {
	ID uuid.UUID
}

func (b base) correlationID() uuid.UUID { return b.ID }

// newBase returns a base with a fresh correlation id if id is the zero
// UUID, otherwise keeps the caller-supplied one.
func newBase(id uuid.UUID) base {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return base{ID: id}
}

// BootRequest initializes the RNG and optionally runs the procedural layout.
type BootRequest struct {
	base
	Seed      uint32
	Era       string
	RunLayout bool
}

func NewBootRequest(seed uint32, era string, runLayout bool) BootRequest {
	return BootRequest{base: newBase(uuid.Nil), Seed: seed, Era: era, RunLayout: runLayout}
}
func (BootRequest) Kind() string { return "boot" }

// ShuffleSeedRequest rebuilds the layout from a new seed.
type ShuffleSeedRequest struct {
	base
	Seed uint32
}

func NewShuffleSeedRequest(seed uint32) ShuffleSeedRequest {
	return ShuffleSeedRequest{base: newBase(uuid.Nil), Seed: seed}
}
func (ShuffleSeedRequest) Kind() string { return "shuffle-seed" }

// SetEraRequest re-runs the layout for a new era.
type SetEraRequest struct {
	base
	Era string
}

func NewSetEraRequest(era string) SetEraRequest {
	return SetEraRequest{base: newBase(uuid.Nil), Era: era}
}
func (SetEraRequest) Kind() string { return "set-era" }

// PaintRoadRequest adds one segment via the welder.
type PaintRoadRequest struct {
	base
	Start, End geo.Point2D
	Class      roadgraph.RoadClass
}

func NewPaintRoadRequest(start, end geo.Point2D, class roadgraph.RoadClass) PaintRoadRequest {
	return PaintRoadRequest{base: newBase(uuid.Nil), Start: start, End: end, Class: class}
}
func (PaintRoadRequest) Kind() string { return "paint-road" }

// GetRoadsRequest asks for the current segment/intersection table.
type GetRoadsRequest struct{ base }

func NewGetRoadsRequest() GetRoadsRequest { return GetRoadsRequest{base: newBase(uuid.Nil)} }
func (GetRoadsRequest) Kind() string      { return "get-roads" }

// PaintZoneRequest subdivides every block (or a virtual block) intersecting
// polygon into parcels of the given zone type and density.
type PaintZoneRequest struct {
	base
	Polygon  geo.Polygon
	ZoneType parcel.ZoneType
	Density  parcel.Density
	Method   parcel.Method
}

func NewPaintZoneRequest(poly geo.Polygon, zt parcel.ZoneType, density parcel.Density, method parcel.Method) PaintZoneRequest {
	return PaintZoneRequest{base: newBase(uuid.Nil), Polygon: poly, ZoneType: zt, Density: density, Method: method}
}
func (PaintZoneRequest) Kind() string { return "paint-zone" }

// GetParcelsRequest asks for every parcel currently held by the core.
type GetParcelsRequest struct{ base }

func NewGetParcelsRequest() GetParcelsRequest { return GetParcelsRequest{base: newBase(uuid.Nil)} }
func (GetParcelsRequest) Kind() string        { return "get-parcels" }

// GetBlocksRequest asks for every block currently held by the core.
type GetBlocksRequest struct{ base }

func NewGetBlocksRequest() GetBlocksRequest { return GetBlocksRequest{base: newBase(uuid.Nil)} }
func (GetBlocksRequest) Kind() string       { return "get-blocks" }

// ClearZonesRequest drops all parcels and massings and rebuilds blocks from
// the current road graph.
type ClearZonesRequest struct{ base }

func NewClearZonesRequest() ClearZonesRequest { return ClearZonesRequest{base: newBase(uuid.Nil)} }
func (ClearZonesRequest) Kind() string        { return "clear-zones" }

// GenerateBuildingForZoneRequest requests massing for the parcel located at
// position (ZoneID is an opaque caller-side identifier; it is not used for
// lookup, since location is purely spatial, and the reply does not carry it).
type GenerateBuildingForZoneRequest struct {
	base
	ZoneID   int
	Position geo.Point2D
	Level    int
	Event    string
	LOD      massing.LOD
}

func NewGenerateBuildingForZoneRequest(zoneID int, pos geo.Point2D, level int, event string, lod massing.LOD) GenerateBuildingForZoneRequest {
	return GenerateBuildingForZoneRequest{base: newBase(uuid.Nil), ZoneID: zoneID, Position: pos, Level: level, Event: event, LOD: lod}
}
func (GenerateBuildingForZoneRequest) Kind() string { return "generate-building-for-zone" }

// GenerateBuildingsRequest bulk-generates massing for every zoned parcel.
type GenerateBuildingsRequest struct {
	base
	LOD massing.LOD
}

func NewGenerateBuildingsRequest(lod massing.LOD) GenerateBuildingsRequest {
	return GenerateBuildingsRequest{base: newBase(uuid.Nil), LOD: lod}
}
func (GenerateBuildingsRequest) Kind() string { return "generate-buildings" }

// GetBuildingMeshRequest asks for a parcel's building mesh at a LOD,
// generating it on first request if not already cached.
type GetBuildingMeshRequest struct {
	base
	BuildingID int
	LOD        massing.LOD
}

func NewGetBuildingMeshRequest(buildingID int, lod massing.LOD) GetBuildingMeshRequest {
	return GetBuildingMeshRequest{base: newBase(uuid.Nil), BuildingID: buildingID, LOD: lod}
}
func (GetBuildingMeshRequest) Kind() string { return "get-building-mesh" }

// SetBuildingLODRequest regenerates every already-generated building's mesh
// at a new LOD.
type SetBuildingLODRequest struct {
	base
	LOD massing.LOD
}

func NewSetBuildingLODRequest(lod massing.LOD) SetBuildingLODRequest {
	return SetBuildingLODRequest{base: newBase(uuid.Nil), LOD: lod}
}
func (SetBuildingLODRequest) Kind() string { return "set-building-lod" }

// RegenerateWithZoneRequest re-paints a zone, then bulk-generates massing for
// every zoned parcel (the same pass as generate-buildings), not only the
// parcels the paint affected.
type RegenerateWithZoneRequest struct {
	base
	Zone PaintZoneRequest
	LOD  massing.LOD
}

func NewRegenerateWithZoneRequest(zone PaintZoneRequest, lod massing.LOD) RegenerateWithZoneRequest {
	return RegenerateWithZoneRequest{base: newBase(uuid.Nil), Zone: zone, LOD: lod}
}
func (RegenerateWithZoneRequest) Kind() string { return "regenerate-with-zone" }
