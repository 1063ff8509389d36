package geo

import "math"

// ApproximateCircle returns a polygon approximating a circle with the given
// center, radius, and number of segments. Vertices are in CCW order. Used by
// tests and by callers that need a convex bounding polygon for Voronoi/clip
// operations.
func ApproximateCircle(center Point2D, radius float64, segments int) Polygon {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Point2D, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Point2D{
			X: center.X + radius*math.Cos(angle),
			Z: center.Z + radius*math.Sin(angle),
		}
	}
	return Polygon{Vertices: pts}
}

// parallelEps is the cross-product magnitude below which two segments are
// treated as parallel.
const parallelEps = 1e-3

// intersectTEps is the slack applied to the [0,1] parameter bounds check in
// SegmentIntersect, to tolerate endpoint-touching intersections.
const intersectTEps = 1e-4

// SegmentIntersect returns the intersection point of segments a1a2 and b1b2
// when both intersection parameters t, u lie in [0,1] (within intersectTEps).
// Returns ok=false for parallel segments or an intersection outside either
// segment.
func SegmentIntersect(a1, a2, b1, b2 Point2D) (Point2D, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)

	denom := r.Cross(s)
	if math.Abs(denom) < parallelEps {
		return Point2D{}, false
	}

	diff := b1.Sub(a1)
	t := diff.Cross(s) / denom
	u := diff.Cross(r) / denom

	if t < -intersectTEps || t > 1+intersectTEps || u < -intersectTEps || u > 1+intersectTEps {
		return Point2D{}, false
	}

	return a1.Add(r.Scale(t)), true
}

// isInsideEdge returns true if the point is on the inside (left) of the
// directed edge from edgeStart to edgeEnd.
func isInsideEdge(p, edgeStart, edgeEnd Point2D) bool {
	return (edgeEnd.X-edgeStart.X)*(p.Z-edgeStart.Z)-
		(edgeEnd.Z-edgeStart.Z)*(p.X-edgeStart.X) >= 0
}

// lineIntersection returns the intersection point of lines (p1→p2) and (p3→p4).
func lineIntersection(p1, p2, p3, p4 Point2D) (Point2D, bool) {
	d := (p1.X-p2.X)*(p3.Z-p4.Z) - (p1.Z-p2.Z)*(p3.X-p4.X)
	if math.Abs(d) < 1e-12 {
		return Point2D{}, false
	}
	t := ((p1.X-p3.X)*(p3.Z-p4.Z) - (p1.Z-p3.Z)*(p3.X-p4.X)) / d
	return Point2D{
		X: p1.X + t*(p2.X-p1.X),
		Z: p1.Z + t*(p2.Z-p1.Z),
	}, true
}

// ClipToConvex clips the subject polygon to a convex clip polygon using
// the Sutherland-Hodgman algorithm. Returns the intersection polygon.
func ClipToConvex(subject, clipper Polygon) Polygon {
	if subject.IsEmpty() || clipper.IsEmpty() {
		return Polygon{}
	}
	output := make([]Point2D, len(subject.Vertices))
	copy(output, subject.Vertices)

	clipN := len(clipper.Vertices)
	for i := 0; i < clipN; i++ {
		if len(output) == 0 {
			return Polygon{}
		}
		edgeStart := clipper.Vertices[i]
		edgeEnd := clipper.Vertices[(i+1)%clipN]
		input := output
		output = make([]Point2D, 0, len(input))

		for j := 0; j < len(input); j++ {
			current := input[j]
			next := input[(j+1)%len(input)]
			curInside := isInsideEdge(current, edgeStart, edgeEnd)
			nextInside := isInsideEdge(next, edgeStart, edgeEnd)

			if curInside && nextInside {
				output = append(output, next)
			} else if curInside && !nextInside {
				if ix, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
					output = append(output, ix)
				}
			} else if !curInside && nextInside {
				if ix, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
					output = append(output, ix)
				}
				output = append(output, next)
			}
		}
	}
	if len(output) < 3 {
		return Polygon{}
	}
	return Polygon{Vertices: output}
}

// ClipByHalfPlane clips poly to the half-plane { v : (v - point)·normal >= 0 }.
func ClipByHalfPlane(poly Polygon, point, normal Point2D) Polygon {
	if poly.IsEmpty() {
		return Polygon{}
	}
	n := normal.Normalize()
	if n.Length() < 1e-9 {
		return poly
	}
	edgeStart := point
	edgeEnd := point.Add(n.Perp())

	vertCount := len(poly.Vertices)
	output := make([]Point2D, 0, vertCount)
	for i := 0; i < vertCount; i++ {
		curr := poly.Vertices[i]
		next := poly.Vertices[(i+1)%vertCount]
		currInside := n.Dot(curr.Sub(point)) >= 0
		nextInside := n.Dot(next.Sub(point)) >= 0

		if currInside && nextInside {
			output = append(output, next)
		} else if currInside && !nextInside {
			if ix, ok := lineIntersection(curr, next, edgeStart, edgeEnd); ok {
				output = append(output, ix)
			}
		} else if !currInside && nextInside {
			if ix, ok := lineIntersection(curr, next, edgeStart, edgeEnd); ok {
				output = append(output, ix)
			}
			output = append(output, next)
		}
	}
	if len(output) < 3 {
		return Polygon{}
	}
	return Polygon{Vertices: output}
}

// OffsetPolygonInward displaces each vertex along the averaged inward normal
// of its two incident edges, scaled so the perpendicular distance to each
// edge is d. A vertex whose bisector is near-degenerate (the two edge
// normals nearly cancel, or nearly parallel to the bisector) is left in
// place rather than pushed out to infinity. Callers must check the result
// for fewer than 3 vertices before using it; no topology repair is done for
// self-intersections caused by large d on tight corners.
func OffsetPolygonInward(poly Polygon, d float64) Polygon {
	n := len(poly.Vertices)
	if n < 3 {
		return Polygon{}
	}
	ccw := poly.EnsureCCW()
	result := make([]Point2D, n)

	for i := 0; i < n; i++ {
		prev := ccw.Vertices[(i-1+n)%n]
		curr := ccw.Vertices[i]
		next := ccw.Vertices[(i+1)%n]

		edgeIn := curr.Sub(prev).Normalize()
		edgeOut := next.Sub(curr).Normalize()

		// Inward normal of a CCW edge (direction dir) points to the left
		// of travel: (-dir.Z, dir.X).
		normalIn := Point2D{X: -edgeIn.Z, Z: edgeIn.X}
		normalOut := Point2D{X: -edgeOut.Z, Z: edgeOut.X}

		bisector := normalIn.Add(normalOut)
		blen := bisector.Length()
		if blen < 1e-3 {
			result[i] = curr
			continue
		}
		bisector = bisector.Scale(1 / blen)

		cosHalf := bisector.Dot(normalIn)
		if math.Abs(cosHalf) < 1e-3 {
			result[i] = curr
			continue
		}
		result[i] = curr.Add(bisector.Scale(d / cosHalf))
	}
	return Polygon{Vertices: result}
}

// PolygonIntersects returns true iff any vertex of a lies in b, any vertex
// of b lies in a, or any edge pair of the two polygons crosses.
func PolygonIntersects(a, b Polygon) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	for _, v := range a.Vertices {
		if b.Contains(v) {
			return true
		}
	}
	for _, v := range b.Vertices {
		if a.Contains(v) {
			return true
		}
	}
	an, bn := len(a.Vertices), len(b.Vertices)
	for i := 0; i < an; i++ {
		a1, a2 := a.Vertices[i], a.Vertices[(i+1)%an]
		for j := 0; j < bn; j++ {
			b1, b2 := b.Vertices[j], b.Vertices[(j+1)%bn]
			if _, ok := SegmentIntersect(a1, a2, b1, b2); ok {
				return true
			}
		}
	}
	return false
}
