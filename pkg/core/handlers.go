package core

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bneidlinger/webcity/pkg/blocks"
	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/massing"
	"github.com/bneidlinger/webcity/pkg/mesh"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/procgen"
	"github.com/bneidlinger/webcity/pkg/rng"
	"github.com/bneidlinger/webcity/pkg/welder"
)

// handle dispatches a tagged request to its handler. This is the single
// entry point the owner loop calls; every handler below runs to completion
// before the next request is read off the channel.
func (c *Core) handle(req Request) Reply {
	id := req.correlationID()
	switch r := req.(type) {
	case BootRequest:
		return c.handleBoot(id, r)
	case ShuffleSeedRequest:
		return c.handleShuffleSeed(id, r)
	case SetEraRequest:
		return c.handleSetEra(id, r)
	case PaintRoadRequest:
		return c.handlePaintRoad(id, r)
	case GetRoadsRequest:
		return c.handleGetRoads(id)
	case PaintZoneRequest:
		return c.handlePaintZone(id, r)
	case GetParcelsRequest:
		return c.handleGetParcels(id)
	case GetBlocksRequest:
		return c.handleGetBlocks(id)
	case ClearZonesRequest:
		return c.handleClearZones(id)
	case GenerateBuildingForZoneRequest:
		return c.handleGenerateBuildingForZone(id, r)
	case GenerateBuildingsRequest:
		return c.handleGenerateBuildings(id, r.LOD)
	case GetBuildingMeshRequest:
		return c.handleGetBuildingMesh(id, r)
	case SetBuildingLODRequest:
		return c.handleGenerateBuildings(id, r.LOD)
	case RegenerateWithZoneRequest:
		return c.handleRegenerateWithZone(id, r)
	default:
		return errorReply(id, "UnknownRequest", fmt.Sprintf("unrecognized request kind %q", req.Kind()))
	}
}

// resetState drops every derived (non-road) piece of city state: parcels,
// buildings, and the mesh cache. Used by boot, shuffle-seed, and set-era,
// all of which start a fresh layout.
func (c *Core) resetState() {
	c.parcels = make(map[int]*parcel.Parcel)
	c.buildings = make(map[int]*massing.Building)
	c.buildingLevel = make(map[int]int)
	c.meshCache = make(map[meshKey]mesh.Mesh)
}

func (c *Core) handleBoot(id uuid.UUID, r BootRequest) Reply {
	c.cfg.Seed = r.Seed
	if r.Era != "" {
		c.cfg.Era = r.Era
	}
	c.rng = rng.New(c.cfg.Seed)
	c.resetState()

	var summary procgen.Summary
	if r.RunLayout {
		summary = c.runLayout()
	} else {
		c.welder = welder.New()
		c.recomputeRealBlocks()
	}
	c.log.Info("boot", "seed", c.cfg.Seed, "era", c.cfg.Era, "centers", len(summary.Centers))
	return c.roadsGenerated(id)
}

func (c *Core) handleShuffleSeed(id uuid.UUID, r ShuffleSeedRequest) Reply {
	c.cfg.Seed = r.Seed
	c.rng = rng.New(c.cfg.Seed)
	c.resetState()
	summary := c.runLayout()
	c.log.Info("shuffle-seed", "seed", c.cfg.Seed, "centers", len(summary.Centers))
	return c.roadsGenerated(id)
}

func (c *Core) handleSetEra(id uuid.UUID, r SetEraRequest) Reply {
	c.cfg.Era = r.Era
	c.resetState()
	summary := c.runLayout()
	c.log.Info("set-era", "era", c.cfg.Era, "centers", len(summary.Centers))
	return c.roadsGenerated(id)
}

func (c *Core) roadsGenerated(id uuid.UUID) Reply {
	return RoadsGeneratedReply{
		replyBase:     replyBase{ID: id},
		Segments:      EncodeRoadSegments(c.welder.Segments()),
		Intersections: EncodeIntersections(c.welder.Intersections()),
	}
}

func (c *Core) handlePaintRoad(id uuid.UUID, r PaintRoadRequest) Reply {
	material := corespec.EraMaterial(c.cfg.Era, r.Class)
	res := c.welder.AddSegment(r.Start, r.End, r.Class, material)
	if res.OK {
		c.recomputeRealBlocks()
	}
	c.log.Info("paint-road", "ok", res.OK, "reason", res.Reason)
	return RoadPaintedReply{
		replyBase:     replyBase{ID: id},
		Success:       res.OK,
		Reason:        res.Reason,
		SegmentIDs:    res.SegmentIDs,
		Intersections: res.Intersections,
	}
}

func (c *Core) handleGetRoads(id uuid.UUID) Reply {
	return c.roadsGenerated(id)
}

func (c *Core) handleGetParcels(id uuid.UUID) Reply {
	ps := c.sortedParcels()
	return ParcelsReply{
		replyBase:      replyBase{ID: id},
		ParcelHeaders:  EncodeParcelHeaders(ps),
		ParcelVertices: EncodeParcelVertices(ps),
	}
}

func (c *Core) handleGetBlocks(id uuid.UUID) Reply {
	return BlocksReply{replyBase: replyBase{ID: id}, BlockHeaders: EncodeBlockHeaders(c.sortedBlocks())}
}

func (c *Core) handleClearZones(id uuid.UUID) Reply {
	c.resetState()
	c.recomputeRealBlocks()
	c.log.Info("clear-zones")
	return ZonesClearedReply{replyBase: replyBase{ID: id}, BlockHeaders: EncodeBlockHeaders(c.sortedBlocks())}
}

// handlePaintZone finds every block intersecting r.Polygon and re-subdivides
// it into parcels. If no block intersects, it falls back to a standalone
// virtual block shaped like the paint polygon itself (the EmptyIntersection
// case) rather than failing the request outright.
func (c *Core) handlePaintZone(id uuid.UUID, r PaintZoneRequest) Reply {
	targets := c.blocksIntersecting(r.Polygon)
	virtualID := -1
	if len(targets) == 0 {
		vb := c.newVirtualBlock(r.Polygon)
		targets = []*storedBlock{vb}
		virtualID = vb.ID
	}

	var affected []int
	for _, b := range targets {
		c.clearParcelsForBlock(b.ID)
		polys := parcel.Subdivide(b.CityBlock, r.ZoneType, r.Density, r.Method, c.cfg.Seed^uint32(b.ID))
		var ids []int
		for i := range polys {
			p := polys[i]
			p.ID = c.nextParcelID
			c.nextParcelID++
			stored := p
			c.parcels[stored.ID] = &stored
			ids = append(ids, stored.ID)
		}
		b.ParcelIDs = ids
		affected = append(affected, ids...)
	}

	ps := c.parcelsByIDs(affected)
	c.log.Info("paint-zone", "affected", len(affected), "virtual", virtualID >= 0)
	return ZonePaintedReply{
		replyBase:       replyBase{ID: id},
		AffectedParcels: affected,
		ParcelHeaders:   EncodeParcelHeaders(ps),
		ParcelVertices:  EncodeParcelVertices(ps),
		BlockHeaders:    EncodeBlockHeaders(c.sortedBlocks()),
		VirtualBlockID:  virtualID,
	}
}

func (c *Core) blocksIntersecting(poly geo.Polygon) []*storedBlock {
	var out []*storedBlock
	for _, b := range c.blocks {
		if geo.PolygonIntersects(b.Outer, poly) {
			out = append(out, b)
		}
	}
	return out
}

func (c *Core) newVirtualBlock(poly geo.Polygon) *storedBlock {
	id := virtualBlockIDBase + c.nextVirtualBlockID
	c.nextVirtualBlockID++
	ccw := poly.EnsureCCW()
	b := &storedBlock{
		CityBlock: blocks.CityBlock{
			ID:        id,
			Outer:     ccw,
			Area:      ccw.Area(),
			Perimeter: ccw.Perimeter(),
		},
		Virtual: true,
	}
	c.blocks[id] = b
	return b
}

func (c *Core) clearParcelsForBlock(blockID int) {
	for pid, p := range c.parcels {
		if p.BlockID == blockID {
			delete(c.parcels, pid)
			delete(c.buildings, pid)
			delete(c.buildingLevel, pid)
			for lod := massing.LODFull; lod <= massing.LODLow; lod++ {
				delete(c.meshCache, meshKey{ParcelID: pid, LOD: lod})
			}
		}
	}
}

func (c *Core) parcelsByIDs(ids []int) []parcel.Parcel {
	out := make([]parcel.Parcel, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.parcels[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// locateParcel resolves a spatial position to a parcel for
// generate-building-for-zone: exact point-in-polygon first, then a centroid
// match within 5 m, then the nearest parcel within 100 m. Returns false
// (IndexMiss) if nothing is found within that radius.
func (c *Core) locateParcel(pos geo.Point2D) (*parcel.Parcel, bool) {
	for _, p := range c.parcels {
		if p.Polygon.Contains(pos) {
			return p, true
		}
	}
	for _, p := range c.parcels {
		if p.Centroid.Distance(pos) <= 5 {
			return p, true
		}
	}
	var best *parcel.Parcel
	bestDist := 100.0
	for _, p := range c.parcels {
		if d := p.Centroid.Distance(pos); d <= bestDist {
			bestDist = d
			best = p
		}
	}
	return best, best != nil
}

func (c *Core) handleGenerateBuildingForZone(id uuid.UUID, r GenerateBuildingForZoneRequest) Reply {
	p, ok := c.locateParcel(r.Position)
	if !ok {
		c.log.Info("generate-building-for-zone", "result", "index-miss")
		return BuildingSpawnedReply{replyBase: replyBase{ID: id}, Success: false, Reason: "IndexMiss"}
	}

	level := r.Level
	if level < 1 {
		level = 1
	}
	b, ok := massing.Generate(*p, c.cfg, c.cfg.Era, level, r.LOD)
	if !ok {
		return BuildingSpawnedReply{replyBase: replyBase{ID: id}, Success: false, Reason: "DegenerateGeometry", ParcelID: p.ID}
	}

	c.buildings[p.ID] = &b
	c.buildingLevel[p.ID] = level
	c.meshCache[meshKey{ParcelID: p.ID, LOD: r.LOD}] = b.Mesh

	c.log.Info("generate-building-for-zone", "parcel", p.ID, "level", level, "lod", r.LOD)
	return BuildingSpawnedReply{
		replyBase: replyBase{ID: id},
		Success:   true,
		ParcelID:  p.ID,
		Building:  b,
		MeshData:  EncodeMesh(b.Mesh),
		LOD:       r.LOD,
	}
}

// handleGenerateBuildings bulk-generates massing for every zoned parcel. It
// also backs set-building-lod: every parcel that already has a building
// gets its massing regenerated at the new LOD.
func (c *Core) handleGenerateBuildings(id uuid.UUID, lod massing.LOD) Reply {
	ps := c.sortedParcels()
	emitted, dropped := 0, 0
	var touched []int
	for _, p := range ps {
		if p.ZoneType == parcel.ZoneNone {
			continue
		}
		level := c.buildingLevel[p.ID]
		if level < 1 {
			level = 1
		}
		b, ok := massing.Generate(p, c.cfg, c.cfg.Era, level, lod)
		if !ok {
			dropped++
			continue
		}
		c.buildings[p.ID] = &b
		c.buildingLevel[p.ID] = level
		c.meshCache[meshKey{ParcelID: p.ID, LOD: lod}] = b.Mesh
		emitted++
		touched = append(touched, p.ID)
	}
	c.log.Info("generate-buildings", "emitted", emitted, "dropped", dropped, "lod", lod)
	return BuildingsGeneratedReply{
		replyBase: replyBase{ID: id},
		Emitted:   emitted,
		Dropped:   dropped,
		ParcelID:  touched,
		LOD:       lod,
	}
}

func (c *Core) handleGetBuildingMesh(id uuid.UUID, r GetBuildingMeshRequest) Reply {
	key := meshKey{ParcelID: r.BuildingID, LOD: r.LOD}
	if m, ok := c.meshCache[key]; ok {
		return BuildingMeshReply{replyBase: replyBase{ID: id}, Success: true, ParcelID: r.BuildingID, MeshData: EncodeMesh(m), LOD: r.LOD}
	}

	p, ok := c.parcels[r.BuildingID]
	if !ok {
		return BuildingMeshReply{replyBase: replyBase{ID: id}, Success: false, Reason: "IndexMiss", ParcelID: r.BuildingID}
	}
	level := c.buildingLevel[p.ID]
	if level < 1 {
		level = 1
	}
	b, ok := massing.Generate(*p, c.cfg, c.cfg.Era, level, r.LOD)
	if !ok {
		return BuildingMeshReply{replyBase: replyBase{ID: id}, Success: false, Reason: "DegenerateGeometry", ParcelID: r.BuildingID}
	}
	c.buildings[p.ID] = &b
	c.meshCache[key] = b.Mesh
	return BuildingMeshReply{replyBase: replyBase{ID: id}, Success: true, ParcelID: r.BuildingID, MeshData: EncodeMesh(b.Mesh), LOD: r.LOD}
}

func (c *Core) handleRegenerateWithZone(id uuid.UUID, r RegenerateWithZoneRequest) Reply {
	zoneReply := c.handlePaintZone(id, r.Zone)
	zp, ok := zoneReply.(ZonePaintedReply)
	if !ok {
		return zoneReply
	}
	if _, ok := c.handleGenerateBuildings(id, r.LOD).(BuildingsGeneratedReply); !ok {
		return errorReply(id, "DegenerateGeometry", "building generation failed after zone paint")
	}
	zp.ParcelHeaders = EncodeParcelHeaders(c.parcelsByIDs(zp.AffectedParcels))
	return zp
}
