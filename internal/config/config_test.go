package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/handmade/internal/world"
)

func TestEmbeddedEngineMatchesDefaults(t *testing.T) {
	var cfg EngineConfig
	if err := yaml.Unmarshal(GetDefaultYAML("engine"), &cfg); err != nil {
		t.Fatalf("embedded engine.yaml does not parse: %v", err)
	}
	if cfg != DefaultEngineConfig() {
		t.Errorf("embedded engine.yaml = %+v, expected %+v", cfg, DefaultEngineConfig())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadEngineCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	data := []byte("audio:\n  device: virtual\ntiming:\n  refresh_hz: 120\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadEngine(path)
	if err != nil {
		t.Fatalf("LoadEngine() failed: %v", err)
	}
	if cfg.Audio.Device != "virtual" || cfg.Timing.RefreshHz != 120 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	// Keys the file does not mention keep their defaults.
	if cfg.Audio.SamplesPerSecond != 48000 || cfg.Timing.Divisor != 2 {
		t.Errorf("defaults lost: %+v", cfg)
	}

	if _, err := LoadEngine(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing custom path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *EngineConfig)
	}{
		{"zero width", func(c *EngineConfig) { c.Video.Width = 0 }},
		{"zero refresh", func(c *EngineConfig) { c.Timing.RefreshHz = 0 }},
		{"unknown device", func(c *EngineConfig) { c.Audio.Device = "alsa" }},
		{"zero sample rate", func(c *EngineConfig) { c.Audio.SamplesPerSecond = 0 }},
		{"buffer under two frames", func(c *EngineConfig) { c.Audio.BufferSeconds = 0.05 }},
		{"latency beyond buffer", func(c *EngineConfig) { c.Audio.LatencyMs = 5000 }},
		{"zero safety divisor", func(c *EngineConfig) { c.Audio.SafetyDivisor = 0 }},
		{"no permanent memory", func(c *EngineConfig) { c.Memory.PermanentKB = 0 }},
		{"deadzone too large", func(c *EngineConfig) { c.Input.Deadzone = 40000 }},
		{"threshold of one", func(c *EngineConfig) { c.Input.StickThreshold = 1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestFrameDuration(t *testing.T) {
	c := TimingConfig{RefreshHz: 60, Divisor: 2}
	if got := c.FrameDuration().Microseconds(); got != 33333 {
		t.Errorf("FrameDuration() = %dus, expected 33333us", got)
	}
}

func TestDefaultWorldBuilds(t *testing.T) {
	var cfg WorldConfig
	if err := yaml.Unmarshal(GetDefaultYAML("world"), &cfg); err != nil {
		t.Fatalf("embedded world.yaml does not parse: %v", err)
	}

	w, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if w.TileMapCountX != 2 || w.TileMapCountY != 2 || w.CountX != 17 || w.CountY != 9 {
		t.Errorf("world dims = %dx%d maps of %dx%d", w.TileMapCountX, w.TileMapCountY, w.CountX, w.CountY)
	}

	// Corners are walls, the right door of the first map is open.
	if v, _ := w.TileMap(0, 0).Tile(0, 0); v != world.TileSolid {
		t.Errorf("corner tile = %d, expected solid", v)
	}
	if v, _ := w.TileMap(0, 0).Tile(16, 4); v != world.TileEmpty {
		t.Errorf("door tile = %d, expected empty", v)
	}
	// Doors line up with the neighbour map.
	if v, _ := w.TileMap(1, 0).Tile(0, 4); v != world.TileEmpty {
		t.Errorf("neighbour door tile = %d, expected empty", v)
	}
}

func TestWorldBuildRejectsBadMaps(t *testing.T) {
	base := WorldConfig{
		TileWidth: 10, TileHeight: 10,
		TilesX: 3, TilesY: 2,
		MapsX: 1, MapsY: 1,
		Maps: [][]string{{"#.#", "..."}},
	}
	if _, err := base.Build(); err != nil {
		t.Fatalf("Build() of valid world failed: %v", err)
	}

	tests := []struct {
		name string
		maps [][]string
	}{
		{"short row", [][]string{{"#.", "..."}}},
		{"missing row", [][]string{{"#.#"}}},
		{"unknown tile", [][]string{{"#x#", "..."}}},
		{"missing map", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.Maps = tc.maps
			if _, err := cfg.Build(); err == nil {
				t.Error("Build() should fail")
			}
		})
	}
}

func TestLoadWorldCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	data := []byte("tile_width: 8\ntile_height: 8\ntiles_x: 2\ntiles_y: 1\nmaps_x: 1\nmaps_y: 1\nmaps:\n  - - \"#.\"\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWorld(path)
	if err != nil {
		t.Fatalf("LoadWorld() failed: %v", err)
	}
	w, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if v, _ := w.TileMap(0, 0).Tile(1, 0); v != world.TileEmpty {
		t.Errorf("tile (1,0) = %d, expected empty", v)
	}
}
