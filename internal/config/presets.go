package config

import "sort"

var presets = map[string]func(*Config){
	// Plain 940x600 canvas.
	"gates": func(*Config) {},
	"dense": func(c *Config) {
		c.Canvas = CanvasConfig{Width: 1280, Height: 720}
		c.Scale.MaxRadius = 60
		c.Force.ChargeDivisor = 10
		c.Force.Theta = 0.9
		c.Force.Workers = 4
		c.Layout.CaptionMargin = 200
	},
	"airy": func(c *Config) {
		c.Scale.MaxRadius = 70
		c.Force.ChargeDivisor = 4
		c.Force.Gravity = -0.02
		c.Force.Friction = 0.85
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
