// Package spatial implements a uniform-grid bucket index over 2D points,
// used by the road graph for snap-insert lookups and by the welder and
// procedural layout for radius queries.
package spatial

import (
	"math"
	"sort"

	"github.com/bneidlinger/webcity/pkg/geo"
)

// DefaultCellSize is the grid's default bucket size in meters, per spec.
const DefaultCellSize = 50.0

type cellKey [2]int

// Index is a uniform grid spatial index over points identified by int id.
// Not thread-safe: callers on the single-owner core context serialize
// access the same way the road graph itself does.
type Index struct {
	cellSize float64
	buckets  map[cellKey][]int
	points   map[int]geo.Point2D
}

// New returns an empty Index with the given cell size. A cellSize <= 0
// falls back to DefaultCellSize.
func New(cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Index{
		cellSize: cellSize,
		buckets:  make(map[cellKey][]int),
		points:   make(map[int]geo.Point2D),
	}
}

func (ix *Index) key(p geo.Point2D) cellKey {
	return cellKey{
		int(math.Floor(p.X / ix.cellSize)),
		int(math.Floor(p.Z / ix.cellSize)),
	}
}

// Insert adds id at position p. If id is already present, its old bucket
// entry is removed first (this is effectively a move).
func (ix *Index) Insert(id int, p geo.Point2D) {
	if old, ok := ix.points[id]; ok {
		ix.removeFromBucket(id, old)
	}
	ix.points[id] = p
	k := ix.key(p)
	ix.buckets[k] = append(ix.buckets[k], id)
}

// Remove deletes id from the index. p must be the position it was inserted
// at (callers that don't track position can look it up via Position first).
func (ix *Index) Remove(id int, p geo.Point2D) {
	ix.removeFromBucket(id, p)
	delete(ix.points, id)
}

func (ix *Index) removeFromBucket(id int, p geo.Point2D) {
	k := ix.key(p)
	bucket := ix.buckets[k]
	for i, existing := range bucket {
		if existing == id {
			bucket[i] = bucket[len(bucket)-1]
			ix.buckets[k] = bucket[:len(bucket)-1]
			break
		}
	}
	if len(ix.buckets[k]) == 0 {
		delete(ix.buckets, k)
	}
}

// Position returns the last position id was inserted at.
func (ix *Index) Position(id int) (geo.Point2D, bool) {
	p, ok := ix.points[id]
	return p, ok
}

// Nearby returns the ids of every indexed point within radius of p,
// including p itself if present. Scans the ceil(radius/cellSize)-ring of
// cells around p's cell and filters by exact Euclidean distance. Results
// are sorted by id for deterministic iteration.
func (ix *Index) Nearby(p geo.Point2D, radius float64) []int {
	ring := int(math.Ceil(radius / ix.cellSize))
	center := ix.key(p)

	seen := make(map[int]bool)
	var result []int
	for dx := -ring; dx <= ring; dx++ {
		for dz := -ring; dz <= ring; dz++ {
			k := cellKey{center[0] + dx, center[1] + dz}
			for _, id := range ix.buckets[k] {
				if seen[id] {
					continue
				}
				seen[id] = true
				if pt, ok := ix.points[id]; ok && pt.Distance(p) <= radius {
					result = append(result, id)
				}
			}
		}
	}
	sort.Ints(result)
	return result
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	return len(ix.points)
}
