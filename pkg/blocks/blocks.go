// Package blocks implements the block finder: a bounded-depth cycle
// extractor over the road graph, not a true planar-face enumerator (see
// DESIGN.md's Open Question decisions). It biases toward small faces and is
// acceptable because downstream zone-painting tolerates missing blocks via
// a standalone virtual-block fallback.
package blocks

import (
	"sort"

	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

const (
	minCycleNodes = 3
	maxCycleNodes = 12
	maxCycles     = 500
	maxDFSDepth   = 14
)

// CityBlock is a bounded face of the road graph, used as the domain for
// parcel subdivision.
type CityBlock struct {
	ID        int
	Outer     geo.Polygon
	Holes     []geo.Polygon
	RoadEdges []int
	Area      float64
	Perimeter float64
	ParcelIDs []int
}

// Find enumerates candidate city blocks from the road graph's cycles.
// minArea/maxArea bound accepted block area (defaults: 100..50000).
func Find(g *roadgraph.Graph, minArea, maxArea float64) []CityBlock {
	finder := &finder{
		graph:     g,
		minArea:   minArea,
		maxArea:   maxArea,
		pathIndex: make(map[int]int),
		seen:      make(map[string]bool),
	}
	for _, n := range g.Nodes() {
		if finder.count >= maxCycles {
			break
		}
		finder.dfs(n.ID, -1)
	}
	sort.Slice(finder.blocks, func(i, j int) bool { return finder.blocks[i].ID < finder.blocks[j].ID })
	return finder.blocks
}

type finder struct {
	graph     *roadgraph.Graph
	minArea   float64
	maxArea   float64
	path      []int
	pathIndex map[int]int
	seen      map[string]bool
	blocks    []CityBlock
	count     int
	nextID    int
}

func (f *finder) dfs(node, parent int) {
	if f.count >= maxCycles {
		return
	}
	if idx, ok := f.pathIndex[node]; ok {
		cycle := append([]int{}, f.path[idx:]...)
		f.tryEmit(cycle)
		return
	}
	if len(f.path) >= maxDFSDepth {
		return
	}

	f.pathIndex[node] = len(f.path)
	f.path = append(f.path, node)

	for _, next := range f.graph.Neighbors(node) {
		if next == parent {
			continue
		}
		if f.count >= maxCycles {
			break
		}
		f.dfs(next, node)
	}

	f.path = f.path[:len(f.path)-1]
	delete(f.pathIndex, node)
}

func (f *finder) tryEmit(cycle []int) {
	if len(cycle) < minCycleNodes || len(cycle) > maxCycleNodes {
		return
	}
	key := canonicalKey(cycle)
	if f.seen[key] {
		return
	}
	f.seen[key] = true

	verts := make([]geo.Point2D, len(cycle))
	edgeIDs := make([]int, len(cycle))
	for i, nid := range cycle {
		node := f.graph.Node(nid)
		if node == nil {
			return
		}
		verts[i] = node.Position
		next := cycle[(i+1)%len(cycle)]
		eid, ok := f.graph.EdgeBetween(nid, next)
		if !ok {
			return
		}
		edgeIDs[i] = eid
	}

	poly := geo.Polygon{Vertices: verts}.EnsureCCW()
	area := poly.Area()
	if area <= f.minArea || area >= f.maxArea {
		return
	}

	f.count++
	id := f.nextID
	f.nextID++
	f.blocks = append(f.blocks, CityBlock{
		ID:        id,
		Outer:     poly,
		RoadEdges: edgeIDs,
		Area:      area,
		Perimeter: poly.Perimeter(),
	})
}

// canonicalKey returns a rotation- and reflection-invariant key for a
// cycle's node-id set, used to dedupe cycles discovered repeatedly from
// different DFS starting points.
func canonicalKey(cycle []int) string {
	sorted := append([]int{}, cycle...)
	sort.Ints(sorted)
	key := make([]byte, 0, len(sorted)*8)
	for _, id := range sorted {
		key = append(key, byte(id), byte(id>>8), byte(id>>16), byte(id>>24), ',')
	}
	return string(key)
}
