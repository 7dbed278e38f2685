package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/driftfield/internal/dynamo"
)

// Presets are named tweaks applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"dense": func(c *Config) {
		c.Field.Count = 300
	},
	"sparse": func(c *Config) {
		c.Field.Count = 40
		c.Physics.HomeStrength = 0.003
	},
	"rain": func(c *Config) {
		c.Field.Spawn = "rain"
	},
	"jelly": func(c *Config) {
		c.Physics.Damping = 0.95
		c.Physics.CollisionStiffness = 0.15
		c.Physics.Bounce = 0.8
	},
	"terminal": func(c *Config) {
		c.Viewport.Width, c.Viewport.Height = 160, 96
		c.Field.Count = 30
		c.Physics.CursorRadius = 40
		c.Physics.CursorRepulsion = 400
		c.Physics.ShockRadius = 60
		c.Render.GlowRadius = 30
	},
}

// GetPreset returns a fresh config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// LoadPreset is GetPreset with an error for unknown names.
func LoadPreset(name string) (*Config, error) {
	cfg := GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownPreset, name, ListPresets())
	}
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
