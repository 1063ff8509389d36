package procgen

import (
	"sort"

	"github.com/bneidlinger/webcity/pkg/corespec"
	"github.com/bneidlinger/webcity/pkg/rng"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/welder"
)

// repairConnectivity implements the connectivity repair pass: find
// connected components via DFS, then link every non-largest component to
// the largest by its closest node pair, via a street-class edge, only if
// that closest pair is within width/4.
func repairConnectivity(w *welder.Welder, cfg *corespec.Config, sum *Summary) {
	components := connectedComponents(w.Graph)
	if len(components) < 2 {
		return
	}

	largest := 0
	for i, c := range components {
		if len(c) > len(components[largest]) {
			largest = i
		}
	}

	maxLinkDist := cfg.Bounds.Width / 4
	for i, comp := range components {
		if i == largest {
			continue
		}
		a, b, dist := closestPair(w.Graph, components[largest], comp)
		if dist > maxLinkDist {
			continue
		}
		posA := w.Graph.Node(a).Position
		posB := w.Graph.Node(b).Position
		material := corespec.EraMaterial(cfg.Era, roadgraph.ClassStreet)
		res := w.AddSegment(posA, posB, roadgraph.ClassStreet, material)
		if res.OK {
			sum.SegmentsEmitted += len(res.SegmentIDs)
		} else {
			sum.SegmentsRejected++
		}
	}
}

// connectedComponents returns every connected component of the graph as a
// list of node ids, largest-agnostic (callers pick the largest).
func connectedComponents(g *roadgraph.Graph) [][]int {
	visited := make(map[int]bool)
	var components [][]int

	for _, n := range g.Nodes() {
		if visited[n.ID] {
			continue
		}
		var comp []int
		stack := []int{n.ID}
		visited[n.ID] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			for _, next := range g.Neighbors(cur) {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		sort.Ints(comp)
		components = append(components, comp)
	}
	return components
}

// closestPair finds the closest node in `from` to any node in `to`, by
// brute-force distance (component counts and sizes in this pipeline are
// small enough that this is not a bottleneck).
func closestPair(g *roadgraph.Graph, from, to []int) (int, int, float64) {
	bestA, bestB := from[0], to[0]
	bestDist := g.Node(bestA).Position.Distance(g.Node(bestB).Position)
	for _, a := range from {
		pa := g.Node(a).Position
		for _, b := range to {
			d := pa.Distance(g.Node(b).Position)
			if d < bestDist {
				bestDist = d
				bestA, bestB = a, b
			}
		}
	}
	return bestA, bestB, bestDist
}

// evolveEra implements the era-evolution pass: recompute every
// edge's material from era x class, rescale widths (x0.8 pre-1920, x1.1
// post-1960), and upgrade 20% of street edges to avenues post-1950.
func evolveEra(g *roadgraph.Graph, era string) {
	scale := corespec.WidthScale(era)
	upgrade := corespec.EraYear(era) > 1950
	src := rng.New(eraEvolutionSeed(era))

	for _, e := range g.Edges() {
		class := e.Class
		if upgrade && class == roadgraph.ClassStreet && src.Bool(0.2) {
			class = roadgraph.ClassAvenue
		}
		material := corespec.EraMaterial(era, class)
		width := class.NominalWidth() * scale
		g.SetEdgeAttrs(e.ID, class, material, width)
	}
}

// eraEvolutionSeed derives a small deterministic seed from the era string so
// the 20% street-upgrade roll is stable across runs without depending on
// edge iteration order touching the layout's main rng stream.
func eraEvolutionSeed(era string) uint32 {
	var h uint32 = 2166136261
	for _, c := range era {
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}
