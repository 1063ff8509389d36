package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bneidlinger/webcity/pkg/core"
	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/massing"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/validation"
)

// bootCore loads the project config, applies any CLI overrides, and boots a
// Core against it. Callers get back a live owner goroutine; cancel() must be
// called once the command is done with it.
func bootCore(projectPath string, seedOverride uint32, eraOverride string, runLayout bool) (*core.Core, context.Context, context.CancelFunc, error) {
	cfg, err := corespec.LoadProject(projectPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading project: %w", err)
	}
	if seedOverride != 0 {
		cfg.Seed = seedOverride
	}
	if eraOverride != "" {
		cfg.Era = eraOverride
	}

	c := core.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	callCtx, callCancel := context.WithTimeout(ctx, 30*time.Second)
	defer callCancel()
	if _, err := c.Submit(callCtx, core.NewBootRequest(cfg.Seed, cfg.Era, runLayout)); err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("booting core: %w", err)
	}
	return c, ctx, cancel, nil
}

func roadClassFromString(s string) (roadgraph.RoadClass, error) {
	switch s {
	case "highway":
		return roadgraph.ClassHighway, nil
	case "avenue":
		return roadgraph.ClassAvenue, nil
	case "street":
		return roadgraph.ClassStreet, nil
	case "local":
		return roadgraph.ClassLocal, nil
	default:
		return 0, fmt.Errorf("unknown road class %q", s)
	}
}

func zoneTypeFromString(s string) (parcel.ZoneType, error) {
	switch s {
	case "residential":
		return parcel.ZoneResidential, nil
	case "commercial":
		return parcel.ZoneCommercial, nil
	case "industrial":
		return parcel.ZoneIndustrial, nil
	default:
		return 0, fmt.Errorf("unknown zone type %q", s)
	}
}

func densityFromString(s string) (parcel.Density, error) {
	switch s {
	case "low":
		return parcel.DensityLow, nil
	case "medium":
		return parcel.DensityMedium, nil
	case "high":
		return parcel.DensityHigh, nil
	default:
		return 0, fmt.Errorf("unknown density %q", s)
	}
}

func methodFromString(s string) (parcel.Method, error) {
	switch s {
	case "skeleton":
		return parcel.MethodSkeleton, nil
	case "voronoi":
		return parcel.MethodVoronoi, nil
	default:
		return 0, fmt.Errorf("unknown subdivision method %q", s)
	}
}

func parseFloats(vals ...string) ([]float64, error) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as a number: %w", v, err)
		}
		out[i] = f
	}
	return out, nil
}

func runBoot(projectPath string, seed uint32, era string) error {
	c, _, cancel, err := bootCore(projectPath, seed, era, true)
	if err != nil {
		return err
	}
	defer cancel()

	printRoadSummary(c.Graph())
	return nil
}

func runPaintRoad(projectPath, sx, sz, ex, ez, class string) error {
	coords, err := parseFloats(sx, sz, ex, ez)
	if err != nil {
		return err
	}
	roadClass, err := roadClassFromString(class)
	if err != nil {
		return err
	}

	c, ctx, cancel, err := bootCore(projectPath, 0, "", true)
	if err != nil {
		return err
	}
	defer cancel()

	callCtx, callCancel := context.WithTimeout(ctx, 10*time.Second)
	defer callCancel()
	reply, err := c.Submit(callCtx, core.NewPaintRoadRequest(geo.Pt(coords[0], coords[1]), geo.Pt(coords[2], coords[3]), roadClass))
	if err != nil {
		return err
	}
	painted, ok := reply.(core.RoadPaintedReply)
	if !ok {
		return fmt.Errorf("unexpected reply type %T", reply)
	}
	printRoadPainted(painted)
	return nil
}

func runPaintZone(projectPath, minX, minZ, maxX, maxZ, zoneType, density, method string) error {
	coords, err := parseFloats(minX, minZ, maxX, maxZ)
	if err != nil {
		return err
	}
	zt, err := zoneTypeFromString(zoneType)
	if err != nil {
		return err
	}
	d, err := densityFromString(density)
	if err != nil {
		return err
	}
	m, err := methodFromString(method)
	if err != nil {
		return err
	}

	c, ctx, cancel, err := bootCore(projectPath, 0, "", true)
	if err != nil {
		return err
	}
	defer cancel()

	rect := geo.NewPolygon(
		geo.Pt(coords[0], coords[1]), geo.Pt(coords[2], coords[1]),
		geo.Pt(coords[2], coords[3]), geo.Pt(coords[0], coords[3]),
	)
	callCtx, callCancel := context.WithTimeout(ctx, 10*time.Second)
	defer callCancel()
	reply, err := c.Submit(callCtx, core.NewPaintZoneRequest(rect, zt, d, m))
	if err != nil {
		return err
	}
	zoned, ok := reply.(core.ZonePaintedReply)
	if !ok {
		return fmt.Errorf("unexpected reply type %T", reply)
	}
	printZonePainted(zoned)
	return nil
}

// runSolve boots the layout, zones the whole planning area residential, and
// generates massing for every parcel that produced — the CLI's one-shot
// equivalent of painting a city by hand.
func runSolve(projectPath string) error {
	cfg, err := corespec.LoadProject(projectPath)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	c, ctx, cancel, err := bootCore(projectPath, 0, "", true)
	if err != nil {
		return err
	}
	defer cancel()

	whole := geo.NewPolygon(
		geo.Pt(0, 0), geo.Pt(cfg.Bounds.Width, 0),
		geo.Pt(cfg.Bounds.Width, cfg.Bounds.Height), geo.Pt(0, cfg.Bounds.Height),
	)

	callCtx, callCancel := context.WithTimeout(ctx, 30*time.Second)
	defer callCancel()
	zoneReply, err := c.Submit(callCtx, core.NewRegenerateWithZoneRequest(
		core.NewPaintZoneRequest(whole, parcel.ZoneResidential, parcel.DensityMedium, parcel.MethodSkeleton),
		massing.LODFull,
	))
	if err != nil {
		return err
	}
	zoned, ok := zoneReply.(core.ZonePaintedReply)
	if !ok {
		return fmt.Errorf("unexpected reply type %T", zoneReply)
	}

	printRoadSummary(c.Graph())
	printZonePainted(zoned)
	fmt.Printf("buildings: generated for %d parcels\n", len(zoned.AffectedParcels))
	return nil
}

func runValidate(projectPath string) error {
	c, _, cancel, err := bootCore(projectPath, 0, "", true)
	if err != nil {
		return err
	}
	defer cancel()

	report := validation.ValidateRoadGraph(c.Graph())
	report.Merge(validation.ValidateSnapping(c.Graph()))

	printValidationReport(report)
	if !report.Valid {
		return fmt.Errorf("road graph has validation errors")
	}
	return nil
}
