package corespec

import (
	"strconv"

	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

// defaultStyles is the era→style pool table.
var defaultStyles = map[string][]string{
	"1890s": {"victorian"},
	"1910s": {"victorian", "art-deco"},
	"1930s": {"art-deco"},
	"1950s": {"modern", "brutalist"},
	"1970s": {"modern", "brutalist"},
	"1990s": {"postmodern", "contemporary"},
	"2010s": {"modern", "contemporary"},
	"2030s": {"contemporary", "futuristic"},
}

// defaultRoofs encodes "gable/hip/mansard early; flat
// increasingly dominant post-1930; pyramid/barrel transitional; green
// post-2010" rule, expressed as an explicit era table for determinism.
var defaultRoofs = map[string][]string{
	"1890s": {"gable", "hip", "mansard"},
	"1910s": {"gable", "hip", "mansard", "pyramid"},
	"1930s": {"flat", "pyramid", "barrel"},
	"1950s": {"flat", "barrel", "sawtooth"},
	"1970s": {"flat", "sawtooth"},
	"1990s": {"flat", "hip"},
	"2010s": {"flat", "green"},
	"2030s": {"flat", "green"},
}

// Styles returns the style pool for era, honoring any StyleOverrides in cfg.
func (c *Config) Styles(era string) []string {
	if ov, ok := c.StyleOverrides[era]; ok && len(ov.Styles) > 0 {
		return ov.Styles
	}
	if s, ok := defaultStyles[era]; ok {
		return s
	}
	return defaultStyles["1950s"]
}

// Roofs returns the roof pool for era, honoring any StyleOverrides in cfg.
func (c *Config) Roofs(era string) []string {
	if ov, ok := c.StyleOverrides[era]; ok && len(ov.Roofs) > 0 {
		return ov.Roofs
	}
	if r, ok := defaultRoofs[era]; ok {
		return r
	}
	return defaultRoofs["1950s"]
}

// EraMaterial implements the era x class material rule. Years
// are inclusive upper bounds: <=1900 dirt throughout; <=1930 cobblestone for
// highway/avenue and dirt elsewhere; <=1950 cobblestone except local (dirt);
// <=1990 asphalt except local (cobblestone); beyond that, concrete for
// highway and asphalt elsewhere.
func EraMaterial(era string, class roadgraph.RoadClass) roadgraph.RoadMaterial {
	year := EraYear(era)
	switch {
	case year <= 1900:
		return roadgraph.MaterialDirt
	case year <= 1930:
		if class == roadgraph.ClassHighway || class == roadgraph.ClassAvenue {
			return roadgraph.MaterialCobblestone
		}
		return roadgraph.MaterialDirt
	case year <= 1950:
		if class == roadgraph.ClassLocal {
			return roadgraph.MaterialDirt
		}
		return roadgraph.MaterialCobblestone
	case year <= 1990:
		if class == roadgraph.ClassLocal {
			return roadgraph.MaterialCobblestone
		}
		return roadgraph.MaterialAsphalt
	default:
		if class == roadgraph.ClassHighway {
			return roadgraph.MaterialConcrete
		}
		return roadgraph.MaterialAsphalt
	}
}

// WidthScale returns the era-driven width multiplier: 0.8 before
// 1920, 1.1 after 1960, 1.0 in between.
func WidthScale(era string) float64 {
	year := EraYear(era)
	switch {
	case year < 1920:
		return 0.8
	case year > 1960:
		return 1.1
	default:
		return 1.0
	}
}

// EraYear extracts the leading year from an era tag like "1950s" → 1950.
// Unparseable eras fall back to 1950, matching the "1950s" default era.
func EraYear(era string) int {
	if len(era) < 4 {
		return 1950
	}
	y, err := strconv.Atoi(era[:4])
	if err != nil {
		return 1950
	}
	return y
}
