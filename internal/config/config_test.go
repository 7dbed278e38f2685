package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/driftfield/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Field.Count != DefaultCount {
		t.Errorf("expected %d particles, got %d", DefaultCount, cfg.Field.Count)
	}
	if cfg.ShockLifetime() != 400*time.Millisecond {
		t.Errorf("expected 400ms shock lifetime, got %v", cfg.ShockLifetime())
	}
	if cfg.Index.Capacity != 8 || cfg.Index.MaxDepth != 6 {
		t.Errorf("unexpected index config %+v", cfg.Index)
	}
	f := cfg.Forces()
	if f.HomeStrength != 0.005 || f.CursorRepulsion != 8000 {
		t.Errorf("unexpected forces %+v", f)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.yaml")
	data := []byte("seed: 7\nfield:\n  count: 25\n  spawn: rain\nloop:\n  fps: 30\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Seed != 7 || cfg.Field.Count != 25 || cfg.Field.Spawn != "rain" {
		t.Errorf("file values not applied: %+v", cfg.Field)
	}
	if cfg.Physics.Damping != 0.88 {
		t.Errorf("unset values should keep defaults, damping=%v", cfg.Physics.Damping)
	}
	if cfg.FrameInterval() != time.Second/30 {
		t.Errorf("unexpected frame interval %v", cfg.FrameInterval())
	}
}

func TestLoadOver_KeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweak.yaml")
	if err := os.WriteFile(path, []byte("seed: 9\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("dense")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Seed != 9 || cfg.Field.Count != 300 {
		t.Errorf("expected seed 9 over dense preset, got seed=%d count=%d", cfg.Seed, cfg.Field.Count)
	}
	if base.Seed == 9 {
		t.Error("base config was modified")
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("field:\n  count: -3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var cerr *dynamo.ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "field.count" {
		t.Errorf("expected field.count config error, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Field.Count = 77
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Field.Count != 77 {
		t.Errorf("expected 77 particles, got %d", loaded.Field.Count)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad spawn", func(c *Config) { c.Field.Spawn = "teleport" }, "field.spawn"},
		{"empty palette", func(c *Config) { c.Field.Palette = nil }, "field.palette"},
		{"bad palette", func(c *Config) { c.Field.Palette = []string{"chartreuse"} }, "field.palette"},
		{"zero damping", func(c *Config) { c.Physics.Damping = 0 }, "physics.damping"},
		{"zero fps", func(c *Config) { c.Loop.FPS = 0 }, "loop.fps"},
		{"zero capacity", func(c *Config) { c.Index.Capacity = 0 }, "index.capacity"},
		{"bad background", func(c *Config) { c.Render.Background = "nope" }, "render.background"},
		{"negative debounce", func(c *Config) { c.Loop.ResizeDebounceMs = -1 }, "loop.resize_debounce_ms"},
		{"negative throttle", func(c *Config) { c.Loop.ScrollThrottleMs = -5 }, "loop.scroll_throttle_ms"},
		{"zero pixel ratio", func(c *Config) { c.Viewport.PixelRatio = 0 }, "viewport.pixel_ratio"},
		{"pixel cap above 2x", func(c *Config) { c.Render.MaxPixelRatio = 4 }, "render.max_pixel_ratio"},
		{"zero pixel cap", func(c *Config) { c.Render.MaxPixelRatio = 0 }, "render.max_pixel_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cerr *dynamo.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cerr.Field)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("dense")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Field.Count != 300 {
		t.Errorf("expected 300 particles, got %d", cfg.Field.Count)
	}
	if GetPreset("default").Field.Count != DefaultCount {
		t.Error("presets must not leak into each other")
	}
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestLoadPreset_NotFound(t *testing.T) {
	_, err := LoadPreset("nonexistent")
	if !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestClone(t *testing.T) {
	a := DefaultConfig()
	b := a.Clone()
	b.Field.Palette[0] = "#000000"
	if a.Field.Palette[0] == "#000000" {
		t.Error("clone shares the palette slice")
	}
}

func TestStyle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.Background = "#102030"
	cfg.Render.GlowRadius = 80
	st := cfg.Style()
	if st.Background.R != 0x10 || st.Background.G != 0x20 || st.Background.B != 0x30 {
		t.Errorf("unexpected background %v", st.Background)
	}
	if st.GlowRadius != 80 || st.BaseAlpha != cfg.Render.BaseAlpha {
		t.Errorf("unexpected style %+v", st)
	}
}
