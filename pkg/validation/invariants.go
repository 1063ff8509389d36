package validation

import (
	"fmt"
	"math"

	"github.com/bneidlinger/webcity/pkg/blocks"
	"github.com/bneidlinger/webcity/pkg/geo"
	"github.com/bneidlinger/webcity/pkg/parcel"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

// ValidateRoadGraph checks the two kernel invariants every accepted edge in
// g must already satisfy: no edge may be shorter than degenerate, and no
// edge may meet another incident edge at its shared node below MinAngle.
// Since roadgraph.AddEdge enforces both at insertion time, a violation here
// means the graph was built or mutated outside the normal AddEdge/AddNode
// path.
func ValidateRoadGraph(g *roadgraph.Graph) *Report {
	report := NewReport()
	for _, e := range g.Edges() {
		a, b := g.Node(e.A), g.Node(e.B)
		if a == nil || b == nil {
			report.AddError(Result{
				Level: LevelSpatial, Message: fmt.Sprintf("edge %d references missing node", e.ID),
				SpecPath: "roadgraph.edge", Expected: "both endpoints resolve to live nodes",
			})
			continue
		}
		if a.Position.Distance(b.Position) < 1e-9 {
			report.AddError(Result{
				Level: LevelSpatial, Message: fmt.Sprintf("edge %d is degenerate", e.ID),
				SpecPath: "roadgraph.edge.length", Expected: "> 0",
			})
		}
	}
	for _, n := range g.Nodes() {
		if len(n.Incident) < 2 {
			continue
		}
		for i := 0; i < len(n.Incident); i++ {
			for j := i + 1; j < len(n.Incident); j++ {
				ang := angleBetweenEdges(g, n.ID, n.Incident[i], n.Incident[j])
				if ang < roadgraph.MinAngle {
					report.AddWarning(Result{
						Level: LevelSpatial,
						Message: fmt.Sprintf("edges %d and %d meet at node %d at %.1f degrees",
							n.Incident[i], n.Incident[j], n.ID, ang*180/math.Pi),
						SpecPath:    "roadgraph.node.angle",
						ActualValue: ang * 180 / math.Pi,
						Expected:    fmt.Sprintf(">= %.1f degrees", roadgraph.MinAngle*180/math.Pi),
					})
				}
			}
		}
	}
	return report
}

func angleBetweenEdges(g *roadgraph.Graph, nodeID, edgeA, edgeB int) float64 {
	n := g.Node(nodeID)
	ea, eb := g.Edge(edgeA), g.Edge(edgeB)
	other := func(e *roadgraph.RoadEdge) geo.Point2D {
		if e.A == nodeID {
			return g.Node(e.B).Position
		}
		return g.Node(e.A).Position
	}
	va := other(ea).Sub(n.Position)
	vb := other(eb).Sub(n.Position)
	la, lb := math.Hypot(va.X, va.Z), math.Hypot(vb.X, vb.Z)
	if la < 1e-9 || lb < 1e-9 {
		return math.Pi
	}
	cos := va.Dot(vb) / (la * lb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}

// ValidateSnapping checks that no two nodes in g sit within SnapThreshold of
// each other without having been merged into one node — a violation means
// the snap-insert path was bypassed.
func ValidateSnapping(g *roadgraph.Graph) *Report {
	report := NewReport()
	nodes := g.Nodes()
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			d := nodes[i].Position.Distance(nodes[j].Position)
			if d < roadgraph.SnapThreshold {
				report.AddWarning(Result{
					Level: LevelSpatial,
					Message: fmt.Sprintf("nodes %d and %d are %.2fm apart, under the snap threshold",
						nodes[i].ID, nodes[j].ID, d),
					SpecPath:    "roadgraph.node.snap",
					ActualValue: d,
					Expected:    fmt.Sprintf(">= %.1fm or merged", roadgraph.SnapThreshold),
				})
			}
		}
	}
	return report
}

// ValidateIntersectionIncidence checks that every intersection's reported
// incident segment count matches its classified type (End<=2, T==3,
// Cross==4, Complex>4).
func ValidateIntersectionIncidence(incident map[int]int, typeOf map[int]string) *Report {
	report := NewReport()
	want := map[string]func(int) bool{
		"end":     func(n int) bool { return n <= 2 },
		"T":       func(n int) bool { return n == 3 },
		"cross":   func(n int) bool { return n == 4 },
		"complex": func(n int) bool { return n > 4 },
	}
	for id, n := range incident {
		kind := typeOf[id]
		check, ok := want[kind]
		if !ok || !check(n) {
			report.AddError(Result{
				Level: LevelAnalytical,
				Message: fmt.Sprintf("intersection %d has %d incident segments but is classified %q",
					id, n, kind),
				SpecPath:    "welder.intersection.incidence",
				ActualValue: n,
				Expected:    kind,
			})
		}
	}
	return report
}

// ValidateBlock checks that a block's outer ring is simple (no self-
// intersecting edges), its reported area matches its polygon's computed
// area within tolerance, and its area falls within [minArea, maxArea].
func ValidateBlock(b blocks.CityBlock, minArea, maxArea float64) *Report {
	report := NewReport()
	if !polygonIsSimple(b.Outer) {
		report.AddError(Result{
			Level: LevelSpatial, Message: fmt.Sprintf("block %d outer ring self-intersects", b.ID),
			SpecPath: "blocks.outer.simple",
		})
	}
	computed := b.Outer.Area()
	if math.Abs(computed-b.Area) > 1.0 {
		report.AddWarning(Result{
			Level: LevelAnalytical,
			Message: fmt.Sprintf("block %d stored area %.1f disagrees with polygon area %.1f",
				b.ID, b.Area, computed),
			SpecPath: "blocks.area", ActualValue: b.Area, Expected: fmt.Sprintf("%.1f", computed),
		})
	}
	if b.Area < minArea || b.Area > maxArea {
		report.AddError(Result{
			Level: LevelAnalytical,
			Message: fmt.Sprintf("block %d area %.1f outside [%.1f, %.1f]", b.ID, b.Area, minArea, maxArea),
			SpecPath: "blocks.area.bounds", ActualValue: b.Area,
			Expected: fmt.Sprintf("[%.1f, %.1f]", minArea, maxArea),
		})
	}
	return report
}

// ValidateParcel checks a parcel's polygon simplicity and its minimum-area
// floor, per parcel.MinParcelArea.
func ValidateParcel(p parcel.Parcel) *Report {
	report := NewReport()
	if !polygonIsSimple(p.Polygon) {
		report.AddError(Result{
			Level: LevelSpatial, Message: fmt.Sprintf("parcel %d polygon self-intersects", p.ID),
			SpecPath: "parcel.polygon.simple",
		})
	}
	if p.Area < parcel.MinParcelArea {
		report.AddError(Result{
			Level: LevelAnalytical,
			Message: fmt.Sprintf("parcel %d area %.1f is under MinParcelArea", p.ID, p.Area),
			SpecPath: "parcel.area", ActualValue: p.Area,
			Expected: fmt.Sprintf(">= %.1f", parcel.MinParcelArea),
		})
	}
	return report
}

// polygonIsSimple reports whether none of p's non-adjacent edges cross.
func polygonIsSimple(p geo.Polygon) bool {
	n := p.Len()
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := p.Edge(i)
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || i+1 == j {
				continue
			}
			b1, b2 := p.Edge(j)
			if _, ok := geo.SegmentIntersect(a1, a2, b1, b2); ok {
				return false
			}
		}
	}
	return true
}
