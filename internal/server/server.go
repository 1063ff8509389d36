// Package server implements the thin JSON-over-HTTP edge in front of one
// pkg/core.Core: every handler decodes a request body, builds the matching
// tagged request, submits it to the core, and encodes whatever reply comes
// back. No city semantics live here.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bneidlinger/webcity/pkg/core"
	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/massing"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

// Server is the local development server for interactive design. It owns
// exactly one core.Core for the lifetime of the process.
type Server struct {
	projectPath string
	port        int
	core        *core.Core
	cancel      context.CancelFunc
	log         *slog.Logger
}

// New loads the project config at projectPath and boots a core against it
// (without running the procedural layout — callers hit POST /api/boot for
// that).
func New(projectPath string, port int) (*Server, error) {
	cfg, err := corespec.LoadProject(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	c := core.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	return &Server{
		projectPath: projectPath,
		port:        port,
		core:        c,
		cancel:      cancel,
		log:         slog.Default().With("component", "server"),
	}, nil
}

// Start launches the HTTP server. It blocks until ListenAndServe returns.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/boot", s.handleBoot)
	mux.HandleFunc("POST /api/shuffle-seed", s.handleShuffleSeed)
	mux.HandleFunc("POST /api/set-era", s.handleSetEra)
	mux.HandleFunc("POST /api/paint-road", s.handlePaintRoad)
	mux.HandleFunc("GET /api/roads", s.handleGetRoads)
	mux.HandleFunc("POST /api/paint-zone", s.handlePaintZone)
	mux.HandleFunc("GET /api/parcels", s.handleGetParcels)
	mux.HandleFunc("GET /api/blocks", s.handleGetBlocks)
	mux.HandleFunc("POST /api/clear-zones", s.handleClearZones)
	mux.HandleFunc("POST /api/generate-building", s.handleGenerateBuildingForZone)
	mux.HandleFunc("POST /api/generate-buildings", s.handleGenerateBuildings)
	mux.HandleFunc("GET /api/building-mesh", s.handleGetBuildingMesh)
	mux.HandleFunc("POST /api/set-building-lod", s.handleSetBuildingLOD)
	mux.HandleFunc("POST /api/regenerate-zone", s.handleRegenerateWithZone)
	mux.HandleFunc("GET /", s.handleIndex)

	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("server starting", "addr", addr, "project", s.projectPath)

	return http.ListenAndServe(addr, mux)
}

// Close cancels the owner goroutine. Not called by Start (which runs
// forever), but available to callers embedding Server in a test harness.
func (s *Server) Close() { s.cancel() }

func (s *Server) submit(w http.ResponseWriter, r *http.Request, req core.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	reply, err := s.core.Submit(ctx, req)
	if err != nil {
		s.log.Error("submit failed", "kind", req.Kind(), "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		s.log.Error("encoding reply failed", "kind", req.Kind(), "err", err)
	}
}

func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if r.Body == nil {
		return v, true
	}
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, fmt.Sprintf("decoding request body: %v", err), http.StatusBadRequest)
		return v, false
	}
	return v, true
}

type bootBody struct {
	Seed      uint32 `json:"seed"`
	Era       string `json:"era"`
	RunLayout bool   `json:"runLayout"`
}

func (s *Server) handleBoot(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[bootBody](w, r)
	if !ok {
		return
	}
	s.submit(w, r, core.NewBootRequest(body.Seed, body.Era, body.RunLayout))
}

type shuffleSeedBody struct {
	Seed uint32 `json:"seed"`
}

func (s *Server) handleShuffleSeed(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[shuffleSeedBody](w, r)
	if !ok {
		return
	}
	s.submit(w, r, core.NewShuffleSeedRequest(body.Seed))
}

type setEraBody struct {
	Era string `json:"era"`
}

func (s *Server) handleSetEra(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[setEraBody](w, r)
	if !ok {
		return
	}
	s.submit(w, r, core.NewSetEraRequest(body.Era))
}

type paintRoadBody struct {
	Start geo.Point2D         `json:"start"`
	End   geo.Point2D         `json:"end"`
	Class roadgraph.RoadClass `json:"class"`
}

func (s *Server) handlePaintRoad(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[paintRoadBody](w, r)
	if !ok {
		return
	}
	s.submit(w, r, core.NewPaintRoadRequest(body.Start, body.End, body.Class))
}

func (s *Server) handleGetRoads(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, core.NewGetRoadsRequest())
}

type paintZoneBody struct {
	Polygon  geo.Polygon    `json:"polygon"`
	ZoneType parcel.ZoneType `json:"zoneType"`
	Density  parcel.Density  `json:"density"`
	Method   parcel.Method   `json:"method"`
}

func (s *Server) handlePaintZone(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[paintZoneBody](w, r)
	if !ok {
		return
	}
	s.submit(w, r, core.NewPaintZoneRequest(body.Polygon, body.ZoneType, body.Density, body.Method))
}

func (s *Server) handleGetParcels(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, core.NewGetParcelsRequest())
}

func (s *Server) handleGetBlocks(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, core.NewGetBlocksRequest())
}

func (s *Server) handleClearZones(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, core.NewClearZonesRequest())
}

type generateBuildingBody struct {
	ZoneID   int         `json:"zoneId"`
	Position geo.Point2D `json:"position"`
	Level    int         `json:"level"`
	Event    string      `json:"event"`
	LOD      massing.LOD `json:"lod"`
}

func (s *Server) handleGenerateBuildingForZone(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[generateBuildingBody](w, r)
	if !ok {
		return
	}
	s.submit(w, r, core.NewGenerateBuildingForZoneRequest(body.ZoneID, body.Position, body.Level, body.Event, body.LOD))
}

type generateBuildingsBody struct {
	LOD massing.LOD `json:"lod"`
}

func (s *Server) handleGenerateBuildings(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[generateBuildingsBody](w, r)
	if !ok {
		return
	}
	s.submit(w, r, core.NewGenerateBuildingsRequest(body.LOD))
}

func (s *Server) handleGetBuildingMesh(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var id int
	fmt.Sscanf(q.Get("buildingId"), "%d", &id)
	var lod massing.LOD
	fmt.Sscanf(q.Get("lod"), "%d", &lod)
	s.submit(w, r, core.NewGetBuildingMeshRequest(id, lod))
}

func (s *Server) handleSetBuildingLOD(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[generateBuildingsBody](w, r)
	if !ok {
		return
	}
	s.submit(w, r, core.NewSetBuildingLODRequest(body.LOD))
}

type regenerateZoneBody struct {
	Zone paintZoneBody `json:"zone"`
	LOD  massing.LOD   `json:"lod"`
}

func (s *Server) handleRegenerateWithZone(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeJSON[regenerateZoneBody](w, r)
	if !ok {
		return
	}
	zoneReq := core.NewPaintZoneRequest(body.Zone.Polygon, body.Zone.ZoneType, body.Zone.Density, body.Zone.Method)
	s.submit(w, r, core.NewRegenerateWithZoneRequest(zoneReq, body.LOD))
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>webcity</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>webcity</h1>
<p>Renderer not embedded here. The API is mounted under /api.</p>
</div>
</body></html>`)
}
