// Package core implements the single-owner cooperative context: one
// goroutine owns the road graph, welder, block list, parcel store, massing
// store, and mesh cache, and processes tagged requests to completion one at
// a time off a channel, emitting a tagged reply for each. No other
// goroutine touches that state directly — external collaborators (the HTTP
// edge, the CLI) only ever call Submit.
package core

import (
	"context"
	"log/slog"
	"sort"

	"github.com/bneidlinger/webcity/pkg/blocks"
	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/massing"
	"github.com/bneidlinger/webcity/pkg/mesh"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/procgen"
	"github.com/bneidlinger/webcity/pkg/rng"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/welder"
)

// virtualBlockIDBase separates virtual (zone-paint-created) block ids from
// real block ids returned by blocks.Find each recompute, which restarts
// numbering at 0. Block ids are not guaranteed stable across a recompute
// triggered by further road edits; this is an accepted tradeoff since
// nothing here requires incremental block ids, only that a reply's
// blockId resolve against the current get-blocks snapshot.
const virtualBlockIDBase = 1_000_000_000

// storedBlock is a CityBlock plus the core's own bookkeeping of whether it
// came from the road graph (real) or from a zone-paint's standalone-parcel
// fallback (virtual, the EmptyIntersection handling).
type storedBlock struct {
	blocks.CityBlock
	Virtual bool
}

// meshKey identifies one cached mesh by the parcel it was built for and the
// LOD it was built at.
type meshKey struct {
	ParcelID int
	LOD      massing.LOD
}

// Core owns every piece of mutable city state. Zero value is not usable;
// construct with New.
type Core struct {
	cfg    *corespec.Config
	welder *welder.Welder
	rng    *rng.Source
	log    *slog.Logger

	blocks              map[int]*storedBlock
	nextVirtualBlockID  int
	parcels             map[int]*parcel.Parcel
	nextParcelID        int
	buildings           map[int]*massing.Building
	buildingLevel       map[int]int
	meshCache           map[meshKey]mesh.Mesh

	reqCh chan envelope
}

type envelope struct {
	req   Request
	reply chan Reply
}

// New returns a Core over cfg, with an empty road graph and no layout run
// yet — callers issue a BootRequest to seed it.
func New(cfg *corespec.Config) *Core {
	cfg.Apply()
	return &Core{
		cfg:           cfg,
		welder:        welder.New(),
		rng:           rng.New(cfg.Seed),
		log:           slog.Default().With("component", "core"),
		blocks:        make(map[int]*storedBlock),
		parcels:       make(map[int]*parcel.Parcel),
		buildings:     make(map[int]*massing.Building),
		buildingLevel: make(map[int]int),
		meshCache:     make(map[meshKey]mesh.Mesh),
		reqCh:         make(chan envelope),
	}
}

// Start runs the owner loop in its own goroutine until ctx is canceled.
// Requests submitted after cancellation return ctx.Err() from Submit.
func (c *Core) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Core) run(ctx context.Context) {
	c.log.Info("core run loop started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("core run loop stopped")
			return
		case env := <-c.reqCh:
			reply := c.handle(env.req)
			env.reply <- reply
		}
	}
}

// Submit enqueues req and blocks until the owner loop has processed it to
// completion and produced a reply, or ctx is canceled. Requests are
// processed in arrival order and a request's reply is emitted before any
// reply for a later request affecting the same parcel or block —
// guaranteed here because the owner loop never begins a second request
// before finishing the first.
func (c *Core) Submit(ctx context.Context, req Request) (Reply, error) {
	replyCh := make(chan Reply, 1)
	select {
	case c.reqCh <- envelope{req: req, reply: replyCh}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-replyCh:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recomputeRealBlocks re-derives every real block from the current road
// graph via pkg/blocks, preserving any virtual blocks already held (they
// don't depend on the road graph at all).
func (c *Core) recomputeRealBlocks() {
	real := blocks.Find(c.welder.Graph, c.cfg.Epsilons.MinBlockArea, c.cfg.Epsilons.MaxBlockArea)
	next := make(map[int]*storedBlock)
	for id, b := range c.blocks {
		if b.Virtual {
			next[id] = b
		}
	}
	for _, b := range real {
		bb := b
		next[bb.ID] = &storedBlock{CityBlock: bb}
	}
	c.blocks = next
}

// runLayout resets the welder and re-runs the procedural generator against
// cfg, then recomputes blocks. Used by boot and set-era, both of which
// described as starting from a clean layout rather than compounding onto
// whatever was painted before.
func (c *Core) runLayout() procgen.Summary {
	c.welder = welder.New()
	summary := procgen.Generate(c.welder, c.cfg)
	c.recomputeRealBlocks()
	return summary
}

func (c *Core) sortedParcels() []parcel.Parcel {
	out := make([]parcel.Parcel, 0, len(c.parcels))
	for _, p := range c.parcels {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Core) sortedBlocks() []blocks.CityBlock {
	out := make([]blocks.CityBlock, 0, len(c.blocks))
	for _, b := range c.blocks {
		out = append(out, b.CityBlock)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Graph, BlocksSnapshot, and ParcelsSnapshot give a caller that has already
// completed a Submit round trip (and so knows the owner goroutine is idle) a
// typed view of the current state, for reporting and validation that the
// encoded reply payloads don't carry (polygon vertices, graph topology).
// They are not safe to call concurrently with an in-flight Submit.
func (c *Core) Graph() *roadgraph.Graph { return c.welder.Graph }

func (c *Core) BlocksSnapshot() []blocks.CityBlock { return c.sortedBlocks() }

func (c *Core) ParcelsSnapshot() []parcel.Parcel { return c.sortedParcels() }
