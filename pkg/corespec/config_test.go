package corespec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bneidlinger/webcity/pkg/roadgraph"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.yaml")
	if err := os.WriteFile(path, []byte("seed: 12345\nera: \"1950s\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Seed != 12345 {
		t.Errorf("expected seed 12345, got %d", cfg.Seed)
	}
	if cfg.Bounds.Width != 2000 || cfg.Bounds.Height != 2000 {
		t.Errorf("expected default 2000x2000 bounds, got %v", cfg.Bounds)
	}
	if cfg.Epsilons.MinAngleDegrees != 30 {
		t.Errorf("expected default MinAngleDegrees 30, got %f", cfg.Epsilons.MinAngleDegrees)
	}
}

func TestLoadProjectJoinsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.yaml")
	if err := os.WriteFile(path, []byte("seed: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if cfg.Seed != 1 {
		t.Errorf("expected seed 1, got %d", cfg.Seed)
	}
}

func TestEpsilonOverridePartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.yaml")
	yaml := "seed: 1\nepsilons:\n  snap_threshold: 20\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Epsilons.SnapThreshold != 20 {
		t.Errorf("expected overridden snap threshold 20, got %f", cfg.Epsilons.SnapThreshold)
	}
	if cfg.Epsilons.MinAngleDegrees != 30 {
		t.Errorf("expected untouched default MinAngleDegrees 30, got %f", cfg.Epsilons.MinAngleDegrees)
	}
}

func TestStylesAndRoofsDefaults(t *testing.T) {
	cfg := &Config{}
	styles := cfg.Styles("1950s")
	if len(styles) == 0 {
		t.Error("expected non-empty style pool for 1950s")
	}
	roofs := cfg.Roofs("1950s")
	if len(roofs) == 0 {
		t.Error("expected non-empty roof pool for 1950s")
	}
}

func TestStyleOverride(t *testing.T) {
	cfg := &Config{
		StyleOverrides: map[string]StylePools{
			"1950s": {Styles: []string{"futuristic"}},
		},
	}
	styles := cfg.Styles("1950s")
	if len(styles) != 1 || styles[0] != "futuristic" {
		t.Errorf("expected override [futuristic], got %v", styles)
	}
}

func TestDensityDefaultsToHalf(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	if cfg.Density != 0.5 {
		t.Errorf("expected default density 0.5, got %f", cfg.Density)
	}
}

func TestBlockMinMaxDeriveFromAreaBounds(t *testing.T) {
	cfg := &Config{Epsilons: DefaultEpsilons()}
	if got := cfg.BlockMin(); got != 10 {
		t.Errorf("expected BlockMin 10, got %f", got)
	}
	if got := cfg.BlockMax(); got < 223 || got > 224 {
		t.Errorf("expected BlockMax ~223.6, got %f", got)
	}
}

func TestApplyPushesEpsilonsToRoadgraph(t *testing.T) {
	cfg := &Config{Epsilons: Epsilons{MinAngleDegrees: 45, SnapThreshold: 25}}
	cfg.Apply()
	if roadgraph.SnapThreshold != 25 {
		t.Errorf("expected SnapThreshold 25, got %f", roadgraph.SnapThreshold)
	}
	// Restore defaults so other tests (and other packages in the same test
	// binary) aren't affected by this mutation of package-level state.
	defer func() {
		d := DefaultEpsilons()
		cfg := &Config{Epsilons: d}
		cfg.Apply()
	}()
}

func TestEraYear(t *testing.T) {
	if y := EraYear("1950s"); y != 1950 {
		t.Errorf("expected 1950, got %d", y)
	}
	if y := EraYear(""); y != 1950 {
		t.Errorf("expected fallback 1950 for empty era, got %d", y)
	}
}
