// Package corespec loads the tunable configuration for a city project:
// seed, era, planning-area bounds, and the kernel epsilons and style/roof
// pools that are exposed as parameters rather than
// hard-coded constants.
package corespec

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

// Epsilons carries every kernel tolerance the generator depends on.
// Zero-valued fields are filled in from DefaultEpsilons by Load.
type Epsilons struct {
	MinAngleDegrees         float64 `yaml:"min_angle_degrees"`
	SnapThreshold           float64 `yaml:"snap_threshold"`
	IntersectionEps         float64 `yaml:"intersection_eps"`
	MinRoadSeparation       float64 `yaml:"min_road_separation"`
	IntersectionMergeDist   float64 `yaml:"intersection_merge_dist"`
	MinBlockArea            float64 `yaml:"min_block_area"`
	MaxBlockArea            float64 `yaml:"max_block_area"`
	MinParcelArea           float64 `yaml:"min_parcel_area"`
}

// DefaultEpsilons returns the baseline tolerance values.
func DefaultEpsilons() Epsilons {
	return Epsilons{
		MinAngleDegrees:       30,
		SnapThreshold:         15,
		IntersectionEps:       2,
		MinRoadSeparation:     20,
		IntersectionMergeDist: 10,
		MinBlockArea:          100,
		MaxBlockArea:          50000,
		MinParcelArea:         50,
	}
}

// Bounds is the axis-aligned planning area, in meters, origin at its
// min corner.
type Bounds struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// StylePools lets a project override the era-indexed style/roof lists from
// the built-in defaults for tuning or testing. A nil slice means "use the
// built-in default for this era."
type StylePools struct {
	Styles []string `yaml:"styles,omitempty"`
	Roofs  []string `yaml:"roofs,omitempty"`
}

// Config is the root of a city.yaml project file.
type Config struct {
	Seed    uint32  `yaml:"seed"`
	Era     string  `yaml:"era"`
	Bounds  Bounds  `yaml:"bounds"`
	Density float64 `yaml:"density"` // global layout density in [0,1], used by pkg/procgen

	Epsilons Epsilons `yaml:"epsilons,omitempty"`

	// StyleOverrides is keyed by era string, overriding the default pool
	// for that era only.
	StyleOverrides map[string]StylePools `yaml:"style_overrides,omitempty"`
}

// applyDefaults fills any zero-valued epsilon with the spec default,
// letting a city.yaml override a subset of tolerances without having to
// restate all of them.
func (c *Config) applyDefaults() {
	defaults := DefaultEpsilons()
	if c.Epsilons.MinAngleDegrees == 0 {
		c.Epsilons.MinAngleDegrees = defaults.MinAngleDegrees
	}
	if c.Epsilons.SnapThreshold == 0 {
		c.Epsilons.SnapThreshold = defaults.SnapThreshold
	}
	if c.Epsilons.IntersectionEps == 0 {
		c.Epsilons.IntersectionEps = defaults.IntersectionEps
	}
	if c.Epsilons.MinRoadSeparation == 0 {
		c.Epsilons.MinRoadSeparation = defaults.MinRoadSeparation
	}
	if c.Epsilons.IntersectionMergeDist == 0 {
		c.Epsilons.IntersectionMergeDist = defaults.IntersectionMergeDist
	}
	if c.Epsilons.MinBlockArea == 0 {
		c.Epsilons.MinBlockArea = defaults.MinBlockArea
	}
	if c.Epsilons.MaxBlockArea == 0 {
		c.Epsilons.MaxBlockArea = defaults.MaxBlockArea
	}
	if c.Epsilons.MinParcelArea == 0 {
		c.Epsilons.MinParcelArea = defaults.MinParcelArea
	}
	if c.Bounds.Width == 0 {
		c.Bounds.Width = 2000
	}
	if c.Bounds.Height == 0 {
		c.Bounds.Height = 2000
	}
	if c.Era == "" {
		c.Era = "1950s"
	}
	if c.Density == 0 {
		c.Density = 0.5
	}
}

// Apply fills zero-valued fields with their defaults (as Load does), then
// pushes the epsilon set onto pkg/roadgraph's tunable kernel tolerances
// (these are exposed as parameters, not hard-coded). Call once after Load
// or after building a Config in code, before building a graph.
func (c *Config) Apply() {
	c.applyDefaults()
	roadgraph.MinAngle = c.Epsilons.MinAngleDegrees * math.Pi / 180
	roadgraph.SnapThreshold = c.Epsilons.SnapThreshold
}

// BlockMin and BlockMax are linear block-dimension estimates derived from
// the area bounds (only MIN/MAX_BLOCK_AREA is fixed; the
// procedural layout's adaptive grid needs a linear spacing, so these take
// the square root of the area bounds as that estimate).
func (c *Config) BlockMin() float64 { return math.Sqrt(c.Epsilons.MinBlockArea) }
func (c *Config) BlockMax() float64 { return math.Sqrt(c.Epsilons.MaxBlockArea) }

// Load reads a city config from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadProject loads a city config from a project directory, looking for
// city.yaml within it.
func LoadProject(projectDir string) (*Config, error) {
	return Load(filepath.Join(projectDir, "city.yaml"))
}
