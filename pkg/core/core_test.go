package core

import (
	"context"
	"testing"
	"time"

	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

func newTestCore(t *testing.T) (*Core, context.Context) {
	t.Helper()
	cfg := &corespec.Config{Seed: 12345, Era: "1950s", Bounds: corespec.Bounds{Width: 2000, Height: 2000}, Density: 0.5}
	c := New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	c.Start(ctx)
	return c, ctx
}

func submit(t *testing.T, c *Core, ctx context.Context, req Request) Reply {
	t.Helper()
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	reply, err := c.Submit(callCtx, req)
	if err != nil {
		t.Fatalf("Submit(%s) failed: %v", req.Kind(), err)
	}
	return reply
}

func TestBootProducesRoads(t *testing.T) {
	c, ctx := newTestCore(t)

	reply := submit(t, c, ctx, NewBootRequest(12345, "1950s", true))
	roads, ok := reply.(RoadsGeneratedReply)
	if !ok {
		t.Fatalf("expected RoadsGeneratedReply, got %T", reply)
	}
	if len(roads.Segments) == 0 {
		t.Error("expected boot with RunLayout to emit road segments")
	}
	if len(roads.Segments)%6 != 0 {
		t.Errorf("expected segment buffer length to be a multiple of 6, got %d", len(roads.Segments))
	}
}

func TestPaintRoadThenGetRoadsReflectsIt(t *testing.T) {
	c, ctx := newTestCore(t)
	submit(t, c, ctx, NewBootRequest(1, "1950s", false))

	paintReply := submit(t, c, ctx, NewPaintRoadRequest(geo.Pt(0, 0), geo.Pt(200, 0), roadgraph.ClassStreet))
	painted, ok := paintReply.(RoadPaintedReply)
	if !ok {
		t.Fatalf("expected RoadPaintedReply, got %T", paintReply)
	}
	if !painted.Success {
		t.Fatalf("expected paint-road to succeed, got reason %q", painted.Reason)
	}

	getReply := submit(t, c, ctx, NewGetRoadsRequest())
	roads, ok := getReply.(RoadsGeneratedReply)
	if !ok {
		t.Fatalf("expected RoadsGeneratedReply, got %T", getReply)
	}
	if len(roads.Segments) == 0 {
		t.Error("expected get-roads to reflect the painted segment")
	}
}

func TestPaintZoneCreatesVirtualBlockWhenNoneIntersect(t *testing.T) {
	c, ctx := newTestCore(t)
	submit(t, c, ctx, NewBootRequest(1, "1950s", false))

	poly := geo.NewPolygon(geo.Pt(10, 10), geo.Pt(60, 10), geo.Pt(60, 60), geo.Pt(10, 60))
	reply := submit(t, c, ctx, NewPaintZoneRequest(poly, parcel.ZoneResidential, parcel.DensityLow, parcel.MethodSkeleton))
	zoned, ok := reply.(ZonePaintedReply)
	if !ok {
		t.Fatalf("expected ZonePaintedReply, got %T", reply)
	}
	if zoned.VirtualBlockID < virtualBlockIDBase {
		t.Errorf("expected a virtual block id >= %d, got %d", virtualBlockIDBase, zoned.VirtualBlockID)
	}
	if len(zoned.AffectedParcels) == 0 {
		t.Error("expected the virtual block to be subdivided into at least one parcel")
	}
}

func TestGenerateBuildingForZoneIndexMissFarFromAnyParcel(t *testing.T) {
	c, ctx := newTestCore(t)
	submit(t, c, ctx, NewBootRequest(1, "1950s", false))

	reply := submit(t, c, ctx, NewGenerateBuildingForZoneRequest(0, geo.Pt(9000, 9000), 1, "spawn", 0))
	spawned, ok := reply.(BuildingSpawnedReply)
	if !ok {
		t.Fatalf("expected BuildingSpawnedReply, got %T", reply)
	}
	if spawned.Success {
		t.Error("expected a position far from any parcel to miss")
	}
	if spawned.Reason != "IndexMiss" {
		t.Errorf("expected IndexMiss reason, got %q", spawned.Reason)
	}
}

func TestClearZonesDropsParcels(t *testing.T) {
	c, ctx := newTestCore(t)
	submit(t, c, ctx, NewBootRequest(1, "1950s", false))

	poly := geo.NewPolygon(geo.Pt(10, 10), geo.Pt(60, 10), geo.Pt(60, 60), geo.Pt(10, 60))
	submit(t, c, ctx, NewPaintZoneRequest(poly, parcel.ZoneResidential, parcel.DensityLow, parcel.MethodSkeleton))

	submit(t, c, ctx, NewClearZonesRequest())

	reply := submit(t, c, ctx, NewGetParcelsRequest())
	parcels, ok := reply.(ParcelsReply)
	if !ok {
		t.Fatalf("expected ParcelsReply, got %T", reply)
	}
	if len(parcels.ParcelHeaders) != 0 {
		t.Errorf("expected clear-zones to drop every parcel, got %d header floats", len(parcels.ParcelHeaders))
	}
}
