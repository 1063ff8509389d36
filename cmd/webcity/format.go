package main

import (
	"fmt"

	"github.com/bneidlinger/webcity/pkg/core"
	"github.com/bneidlinger/webcity/pkg/roadgraph"
	"github.com/bneidlinger/webcity/pkg/validation"
)

func printRoadSummary(g *roadgraph.Graph) {
	fmt.Printf("road graph: %d nodes, %d edges\n", len(g.Nodes()), len(g.Edges()))
}

func printRoadPainted(r core.RoadPaintedReply) {
	if !r.Success {
		fmt.Printf("paint-road: rejected (%s)\n", r.Reason)
		return
	}
	fmt.Printf("paint-road: %d segment(s), %d intersection(s) touched\n", len(r.SegmentIDs), len(r.Intersections))
}

func printZonePainted(r core.ZonePaintedReply) {
	if r.VirtualBlockID >= 0 {
		fmt.Printf("paint-zone: no block intersected, created virtual block %d\n", r.VirtualBlockID)
	}
	fmt.Printf("paint-zone: %d parcel(s) affected\n", len(r.AffectedParcels))
}

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.SpecPath != "" {
				fmt.Printf("    -> %s = %v\n", e.SpecPath, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			if e.ConflictWith != "" {
				fmt.Printf("    conflicts with: %s\n", e.ConflictWith)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.SpecPath != "" {
				fmt.Printf("    -> %s = %v\n", w.SpecPath, w.ActualValue)
			}
			if w.Expected != "" {
				fmt.Printf("    expected: %s\n", w.Expected)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}
