package config

import (
	"fmt"
	"os"
	"time"

	"github.com/san-kum/driftfield/internal/dynamo"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/input"
	"github.com/san-kum/driftfield/internal/integrators"
	"github.com/san-kum/driftfield/internal/physics"
	"github.com/san-kum/driftfield/internal/quadtree"
	"github.com/san-kum/driftfield/internal/render"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCount  = 120
	DefaultWidth  = 1280
	DefaultHeight = 720
	DefaultFPS    = 60
)

type Config struct {
	Seed     int64          `yaml:"seed"`
	Viewport ViewportConfig `yaml:"viewport"`
	Field    FieldConfig    `yaml:"field"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Index    IndexConfig    `yaml:"index"`
	Loop     LoopConfig     `yaml:"loop"`
	Render   RenderConfig   `yaml:"render"`
}

type ViewportConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	PixelRatio float64 `yaml:"pixel_ratio"`
}

type FieldConfig struct {
	Count   int      `yaml:"count"`
	Spawn   string   `yaml:"spawn"`
	Palette []string `yaml:"palette"`
}

type PhysicsConfig struct {
	HomeStrength       float64 `yaml:"home_strength"`
	DispersionStrength float64 `yaml:"dispersion_strength"`
	CursorRepulsion    float64 `yaml:"cursor_repulsion"`
	CursorRadius       float64 `yaml:"cursor_radius"`
	ShockRadius        float64 `yaml:"shock_radius"`
	ShockStrength      float64 `yaml:"shock_strength"`
	ShockLifetimeMs    int     `yaml:"shock_lifetime_ms"`
	CollisionStiffness float64 `yaml:"collision_stiffness"`
	CollisionMargin    float64 `yaml:"collision_margin"`
	Damping            float64 `yaml:"damping"`
	Bounce             float64 `yaml:"bounce"`
}

type IndexConfig struct {
	Capacity int `yaml:"capacity"`
	MaxDepth int `yaml:"max_depth"`
}

type LoopConfig struct {
	FPS              int `yaml:"fps"`
	Workers          int `yaml:"workers"`
	ResizeDebounceMs int `yaml:"resize_debounce_ms"`
	ScrollThrottleMs int `yaml:"scroll_throttle_ms"`
}

type RenderConfig struct {
	Background    string  `yaml:"background" json:"background"`
	BaseAlpha     float64 `yaml:"base_alpha" json:"base_alpha"`
	GlowRadius    float64 `yaml:"glow_radius" json:"glow_radius"`
	GlowBoost     float64 `yaml:"glow_boost" json:"glow_boost"`
	MaxPixelRatio float64 `yaml:"max_pixel_ratio" json:"max_pixel_ratio"`
}

func DefaultConfig() *Config {
	forces := physics.DefaultForces()
	return &Config{
		Seed: 1,
		Viewport: ViewportConfig{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			PixelRatio: 1,
		},
		Field: FieldConfig{
			Count:   DefaultCount,
			Spawn:   string(field.SpawnHome),
			Palette: append([]string(nil), field.DefaultPalette...),
		},
		Physics: PhysicsConfig{
			HomeStrength:       forces.HomeStrength,
			DispersionStrength: forces.DispersionStrength,
			CursorRepulsion:    forces.CursorRepulsion,
			CursorRadius:       forces.CursorRadius,
			ShockRadius:        forces.ShockRadius,
			ShockStrength:      forces.ShockStrength,
			ShockLifetimeMs:    int(forces.ShockLifetime / time.Millisecond),
			CollisionStiffness: forces.CollisionStiffness,
			CollisionMargin:    forces.CollisionMargin,
			Damping:            integrators.DefaultDamping,
			Bounce:             integrators.DefaultRestitution,
		},
		Index: IndexConfig{
			Capacity: quadtree.DefaultCapacity,
			MaxDepth: quadtree.DefaultMaxDepth,
		},
		Loop: LoopConfig{
			FPS:              DefaultFPS,
			Workers:          1,
			ResizeDebounceMs: int(input.ResizeDebounce / time.Millisecond),
			ScrollThrottleMs: int(input.ScrollThrottle / time.Millisecond),
		},
		Render: RenderConfig{
			Background:    "#0a0a0f",
			BaseAlpha:     0.6,
			GlowRadius:    150,
			GlowBoost:     0.3,
			MaxPixelRatio: input.MaxPixelRatio,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver overlays the file at path on a copy of base, so a config file
// can refine a preset.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be handed out safely.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Field.Palette = append([]string(nil), c.Field.Palette...)
	return &cp
}

// Validate reports the first field outside its valid range.
func (c *Config) Validate() error {
	switch {
	case c.Field.Count < 0:
		return &dynamo.ConfigError{Field: "field.count", Value: c.Field.Count, Message: "must not be negative"}
	case c.Field.Spawn != string(field.SpawnHome) && c.Field.Spawn != string(field.SpawnRain):
		return &dynamo.ConfigError{Field: "field.spawn", Value: c.Field.Spawn, Message: "must be home or rain"}
	case len(c.Field.Palette) == 0:
		return &dynamo.ConfigError{Field: "field.palette", Value: c.Field.Palette, Message: "needs at least one colour"}
	case c.Physics.Damping <= 0 || c.Physics.Damping > 1:
		return &dynamo.ConfigError{Field: "physics.damping", Value: c.Physics.Damping, Message: "must be in (0, 1]"}
	case c.Physics.Bounce < 0 || c.Physics.Bounce > 1:
		return &dynamo.ConfigError{Field: "physics.bounce", Value: c.Physics.Bounce, Message: "must be in [0, 1]"}
	case c.Physics.ShockLifetimeMs <= 0:
		return &dynamo.ConfigError{Field: "physics.shock_lifetime_ms", Value: c.Physics.ShockLifetimeMs, Message: "must be positive"}
	case c.Physics.CursorRadius < 0 || c.Physics.ShockRadius <= 0:
		return &dynamo.ConfigError{Field: "physics.shock_radius", Value: c.Physics.ShockRadius, Message: "radii must be positive"}
	case c.Index.Capacity < 1:
		return &dynamo.ConfigError{Field: "index.capacity", Value: c.Index.Capacity, Message: "must be at least 1"}
	case c.Index.MaxDepth < 0:
		return &dynamo.ConfigError{Field: "index.max_depth", Value: c.Index.MaxDepth, Message: "must not be negative"}
	case c.Loop.FPS <= 0:
		return &dynamo.ConfigError{Field: "loop.fps", Value: c.Loop.FPS, Message: "must be positive"}
	case c.Loop.ResizeDebounceMs < 0:
		return &dynamo.ConfigError{Field: "loop.resize_debounce_ms", Value: c.Loop.ResizeDebounceMs, Message: "must not be negative"}
	case c.Loop.ScrollThrottleMs < 0:
		return &dynamo.ConfigError{Field: "loop.scroll_throttle_ms", Value: c.Loop.ScrollThrottleMs, Message: "must not be negative"}
	case !(c.Viewport.PixelRatio > 0):
		return &dynamo.ConfigError{Field: "viewport.pixel_ratio", Value: c.Viewport.PixelRatio, Message: "must be positive"}
	case !(c.Render.MaxPixelRatio >= 1 && c.Render.MaxPixelRatio <= input.MaxPixelRatio):
		return &dynamo.ConfigError{Field: "render.max_pixel_ratio", Value: c.Render.MaxPixelRatio, Message: fmt.Sprintf("must be in [1, %g]", input.MaxPixelRatio)}
	case c.Render.BaseAlpha < 0 || c.Render.BaseAlpha > 1:
		return &dynamo.ConfigError{Field: "render.base_alpha", Value: c.Render.BaseAlpha, Message: "must be in [0, 1]"}
	}
	if _, err := field.ParsePalette(c.Field.Palette); err != nil {
		return &dynamo.ConfigError{Field: "field.palette", Value: c.Field.Palette, Message: err.Error()}
	}
	if _, err := field.ParsePalette([]string{c.Render.Background}); err != nil {
		return &dynamo.ConfigError{Field: "render.background", Value: c.Render.Background, Message: err.Error()}
	}
	return nil
}

// Forces converts the physics section into force model constants.
func (c *Config) Forces() physics.Forces {
	return physics.Forces{
		HomeStrength:       c.Physics.HomeStrength,
		DispersionStrength: c.Physics.DispersionStrength,
		CursorRepulsion:    c.Physics.CursorRepulsion,
		CursorRadius:       c.Physics.CursorRadius,
		ShockRadius:        c.Physics.ShockRadius,
		ShockStrength:      c.Physics.ShockStrength,
		ShockLifetime:      c.ShockLifetime(),
		CollisionStiffness: c.Physics.CollisionStiffness,
		CollisionMargin:    c.Physics.CollisionMargin,
	}
}

func (c *Config) ShockLifetime() time.Duration {
	return time.Duration(c.Physics.ShockLifetimeMs) * time.Millisecond
}

// FrameInterval is the wall-clock duration of one frame.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Loop.FPS)
}

func (c *Config) ResizeDebounce() time.Duration {
	return time.Duration(c.Loop.ResizeDebounceMs) * time.Millisecond
}

func (c *Config) ScrollThrottle() time.Duration {
	return time.Duration(c.Loop.ScrollThrottleMs) * time.Millisecond
}

// Style converts the render section into renderer appearance constants.
func (c *Config) Style() render.Style {
	return c.Render.Style()
}

// Style converts r into renderer appearance constants. An unparsable
// background keeps the default.
func (r RenderConfig) Style() render.Style {
	st := render.DefaultStyle()
	if bg, err := field.ParsePalette([]string{r.Background}); err == nil {
		st.Background = bg[0]
	}
	st.BaseAlpha = r.BaseAlpha
	st.GlowRadius = r.GlowRadius
	st.GlowBoost = r.GlowBoost
	return st
}
