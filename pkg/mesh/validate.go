package mesh

import (
	"fmt"
	"math"

	"github.com/bneidlinger/webcity/pkg/validation"
)

// Validate performs structural checks on an assembled Mesh: buffer length
// consistency, index bounds, repeated-vertex triangles, normal unit-length,
// and NaN/Inf positions. Triangle winding is not checked. It does not
// validate domain semantics (zone/style rules);
// those are checked where the massing generator builds the mesh.
func Validate(m Mesh) *validation.Report {
	r := validation.NewReport()

	validateBufferLengths(m, r)
	validateIndexBounds(m, r)
	validateNormals(m, r)
	validateNoNaN(m, r)

	return r
}

func validateBufferLengths(m Mesh, r *validation.Report) {
	nv := len(m.Positions)
	if len(m.Normals) != nv {
		r.AddError(validation.Result{
			Level:       validation.LevelSpatial,
			Message:     "normals length does not match positions length",
			SpecPath:    "mesh.normals",
			ActualValue: len(m.Normals),
			Expected:    fmt.Sprintf("%d", nv),
		})
	}
	if len(m.UVs) != nv {
		r.AddError(validation.Result{
			Level:       validation.LevelSpatial,
			Message:     "uvs length does not match positions length",
			SpecPath:    "mesh.uvs",
			ActualValue: len(m.UVs),
			Expected:    fmt.Sprintf("%d", nv),
		})
	}
	if len(m.Indices)%3 != 0 {
		r.AddError(validation.Result{
			Level:       validation.LevelSpatial,
			Message:     "indices length is not a multiple of 3",
			SpecPath:    "mesh.indices",
			ActualValue: len(m.Indices),
		})
	}
	if len(m.MaterialIDs) != len(m.Indices)/3 {
		r.AddError(validation.Result{
			Level:       validation.LevelSpatial,
			Message:     "materialIds length does not match triangle count",
			SpecPath:    "mesh.materialIds",
			ActualValue: len(m.MaterialIDs),
			Expected:    fmt.Sprintf("%d", len(m.Indices)/3),
		})
	}
}

func validateIndexBounds(m Mesh, r *validation.Report) {
	nv := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= nv {
			r.AddError(validation.Result{
				Level:       validation.LevelSpatial,
				Message:     fmt.Sprintf("index %d at position %d is out of bounds", idx, i),
				SpecPath:    fmt.Sprintf("mesh.indices[%d]", i),
				ActualValue: idx,
				Expected:    fmt.Sprintf("< %d", nv),
			})
		}
	}
	for t := 0; t+2 < len(m.Indices); t += 3 {
		if m.Indices[t] == m.Indices[t+1] || m.Indices[t+1] == m.Indices[t+2] || m.Indices[t] == m.Indices[t+2] {
			r.AddWarning(validation.Result{
				Level:       validation.LevelSpatial,
				Message:     fmt.Sprintf("degenerate triangle at index %d repeats a vertex", t/3),
				SpecPath:    fmt.Sprintf("mesh.indices[%d:%d]", t, t+3),
			})
		}
	}
}

func validateNormals(m Mesh, r *validation.Report) {
	const tol = 1e-3
	for i, n := range m.Normals {
		l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		if l < 1e-9 {
			// A vertex touched by no face, or by faces whose normals cancel
			// exactly; not fatal on its own but worth flagging.
			r.AddWarning(validation.Result{
				Level:    validation.LevelSpatial,
				Message:  fmt.Sprintf("vertex %d has a zero-length normal", i),
				SpecPath: fmt.Sprintf("mesh.normals[%d]", i),
			})
			continue
		}
		if math.Abs(l-1.0) > tol {
			r.AddWarning(validation.Result{
				Level:       validation.LevelSpatial,
				Message:     fmt.Sprintf("vertex %d normal is not unit length", i),
				SpecPath:    fmt.Sprintf("mesh.normals[%d]", i),
				ActualValue: l,
				Expected:    "1.0",
			})
		}
	}
}

func validateNoNaN(m Mesh, r *validation.Report) {
	bad := func(v Vec3) bool {
		return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) ||
			math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || math.IsInf(v.Z, 0)
	}
	for i, p := range m.Positions {
		if bad(p) {
			r.AddError(validation.Result{
				Level:    validation.LevelSpatial,
				Message:  fmt.Sprintf("position %d has a NaN/Inf component", i),
				SpecPath: fmt.Sprintf("mesh.positions[%d]", i),
			})
		}
	}
}
