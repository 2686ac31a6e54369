package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/force"
	"github.com/psmith94/gates-bubbles/internal/layout"
	"github.com/psmith94/gates-bubbles/internal/scale"
)

const (
	DefaultWidth      = 940.0
	DefaultHeight     = 600.0
	DefaultFPS        = 60
	DefaultStoreDir   = ".bubbles"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultHoverColor = "black"
)

type Config struct {
	Canvas    CanvasConfig `yaml:"canvas" toml:"canvas"`
	Scale     ScaleConfig  `yaml:"scale" toml:"scale"`
	Force     ForceConfig  `yaml:"force" toml:"force"`
	Layout    LayoutConfig `yaml:"layout" toml:"layout"`
	Data      DataConfig   `yaml:"data" toml:"data"`
	Hover     HoverConfig  `yaml:"hover" toml:"hover"`
	Seed      int64        `yaml:"seed" toml:"seed"`
	FPS       int          `yaml:"fps" toml:"fps" validate:"min=1,max=240"`
	StoreDir  string       `yaml:"store_dir" toml:"store_dir" validate:"required"`
	LogLevel  string       `yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat string       `yaml:"log_format" toml:"log_format" validate:"omitempty,oneof=text json"`
}

type CanvasConfig struct {
	Width  float64 `yaml:"width" toml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" toml:"height" validate:"gt=0"`
}

type ScaleConfig struct {
	MinRadius float64   `yaml:"min_radius" toml:"min_radius" validate:"gte=0"`
	MaxRadius float64   `yaml:"max_radius" toml:"max_radius" validate:"gtfield=MinRadius"`
	Exponent  float64   `yaml:"exponent" toml:"exponent" validate:"gt=0"`
	Breaks    []float64 `yaml:"breaks" toml:"breaks" validate:"min=2"`
	Colors    []string  `yaml:"colors" toml:"colors" validate:"min=2,dive,hexcolor"`
}

type ForceConfig struct {
	Alpha         float64 `yaml:"alpha" toml:"alpha" validate:"gt=0"`
	Decay         float64 `yaml:"decay" toml:"decay" validate:"gt=0,lt=1"`
	StopAlpha     float64 `yaml:"stop_alpha" toml:"stop_alpha" validate:"gt=0,ltfield=Alpha"`
	SettleAlpha   float64 `yaml:"settle_alpha" toml:"settle_alpha" validate:"gte=0"`
	ChargeDivisor float64 `yaml:"charge_divisor" toml:"charge_divisor" validate:"gt=0"`
	Friction      float64 `yaml:"friction" toml:"friction" validate:"gte=0,lte=1"`
	Gravity       float64 `yaml:"gravity" toml:"gravity"`
	Damper        float64 `yaml:"damper" toml:"damper" validate:"gte=0"`
	CenterBoost   float64 `yaml:"center_boost" toml:"center_boost" validate:"gte=0"`
	GroupGain     float64 `yaml:"group_gain" toml:"group_gain" validate:"gt=0"`
	Theta         float64 `yaml:"theta" toml:"theta" validate:"gte=0,lte=2"`
	Workers       int     `yaml:"workers" toml:"workers" validate:"gte=0,lte=256"`
}

type PointConfig struct {
	X float64 `yaml:"x" toml:"x"`
	Y float64 `yaml:"y" toml:"y"`
}

// ModeConfig declares an extra grouped view.
type ModeConfig struct {
	Key          string                 `yaml:"key" toml:"key" validate:"required"`
	GroupBy      string                 `yaml:"group_by" toml:"group_by" validate:"required"`
	CaptionClass string                 `yaml:"caption_class" toml:"caption_class"`
	Gain         float64                `yaml:"gain" toml:"gain" validate:"gte=0"`
	Centers      map[string]PointConfig `yaml:"centers,omitempty" toml:"centers,omitempty"`
}

type LayoutConfig struct {
	DefaultMode   string                 `yaml:"default_mode" toml:"default_mode" validate:"required"`
	CaptionY      float64                `yaml:"caption_y" toml:"caption_y"`
	CaptionMargin float64                `yaml:"caption_margin" toml:"caption_margin" validate:"gte=0"`
	Groups        map[string]PointConfig `yaml:"groups,omitempty" toml:"groups,omitempty"`
	Modes         []ModeConfig           `yaml:"modes" toml:"modes" validate:"dive"`
}

// FieldMap names the input columns each record field is read from.
type FieldMap struct {
	ID         string   `yaml:"id" toml:"id" validate:"required"`
	Value      string   `yaml:"value" toml:"value" validate:"required"`
	Category   string   `yaml:"category" toml:"category"`
	Name       string   `yaml:"name" toml:"name"`
	Confidence string   `yaml:"confidence" toml:"confidence"`
	Meta       []string `yaml:"meta" toml:"meta"`
}

type DataConfig struct {
	Path   string   `yaml:"path" toml:"path"`
	Format string   `yaml:"format" toml:"format" validate:"omitempty,oneof=csv json"`
	Fields FieldMap `yaml:"fields" toml:"fields"`
}

type HoverConfig struct {
	Stroke string `yaml:"stroke" toml:"stroke"`
}

func DefaultFields() FieldMap {
	return FieldMap{
		ID:         "id",
		Value:      "replacement_value",
		Category:   "asset_class",
		Name:       "asset",
		Confidence: "data_confidence",
		Meta:       []string{"inventory"},
	}
}

func DefaultConfig() *Config {
	so := scale.DefaultOptions()
	fp := force.DefaultParams()
	ls := layout.DefaultSettings()
	return &Config{
		Canvas: CanvasConfig{Width: DefaultWidth, Height: DefaultHeight},
		Scale: ScaleConfig{
			MinRadius: so.MinRadius,
			MaxRadius: so.MaxRadius,
			Exponent:  so.Exponent,
			Breaks:    append([]float64(nil), so.Breaks...),
			Colors:    append([]string(nil), so.Colors...),
		},
		Force: ForceConfig{
			Alpha:         fp.InitialAlpha,
			Decay:         fp.Decay,
			StopAlpha:     fp.StopAlpha,
			SettleAlpha:   fp.SettleAlpha,
			ChargeDivisor: fp.ChargeDivisor,
			Friction:      fp.Friction,
			Gravity:       fp.Gravity,
			Damper:        fp.Damper,
			CenterBoost:   fp.CenterBoost,
			GroupGain:     1.1,
			Theta:         fp.Theta,
			Workers:       fp.Workers,
		},
		Layout: LayoutConfig{
			DefaultMode:   ls.DefaultMode,
			CaptionY:      ls.CaptionY,
			CaptionMargin: ls.CaptionMargin,
			Modes: []ModeConfig{
				{Key: "confidence", GroupBy: "confidence", CaptionClass: "confidence", Gain: 1.1},
			},
		},
		Data:      DataConfig{Fields: DefaultFields()},
		Hover:     HoverConfig{Stroke: DefaultHoverColor},
		Seed:      1,
		FPS:       DefaultFPS,
		StoreDir:  DefaultStoreDir,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file (chosen by extension) over the defaults
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(cfg, path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto decodes a YAML or TOML file over cfg, so keys the file leaves
// out keep their current values. The result is not validated.
func LoadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) ScaleOptions() scale.Options {
	return scale.Options{
		MinRadius: c.Scale.MinRadius,
		MaxRadius: c.Scale.MaxRadius,
		Exponent:  c.Scale.Exponent,
		Breaks:    append([]float64(nil), c.Scale.Breaks...),
		Colors:    append([]string(nil), c.Scale.Colors...),
	}
}

func (c *Config) ForceParams() force.Params {
	return force.Params{
		Width:         c.Canvas.Width,
		Height:        c.Canvas.Height,
		InitialAlpha:  c.Force.Alpha,
		Decay:         c.Force.Decay,
		StopAlpha:     c.Force.StopAlpha,
		SettleAlpha:   c.Force.SettleAlpha,
		ChargeDivisor: c.Force.ChargeDivisor,
		Friction:      c.Force.Friction,
		Gravity:       c.Force.Gravity,
		Damper:        c.Force.Damper,
		CenterBoost:   c.Force.CenterBoost,
		Theta:         c.Force.Theta,
		Workers:       c.Force.Workers,
	}
}

func (c *Config) LayoutSettings() layout.Settings {
	return layout.Settings{
		Width:         c.Canvas.Width,
		Height:        c.Canvas.Height,
		CaptionY:      c.Layout.CaptionY,
		CaptionMargin: c.Layout.CaptionMargin,
		DefaultMode:   c.Layout.DefaultMode,
	}
}

// LayoutModes returns the built-in views with the configured group gain
// and pinned year centers applied, followed by the extra modes.
func (c *Config) LayoutModes() []layout.Mode {
	modes := layout.DefaultModes()
	for i := range modes {
		if modes[i].Kind != layout.Grouped {
			continue
		}
		modes[i].Gain = c.Force.GroupGain
		if len(c.Layout.Groups) > 0 {
			modes[i].Centers = points(c.Layout.Groups)
		}
	}
	for _, mc := range c.Layout.Modes {
		gain := mc.Gain
		if gain == 0 {
			gain = c.Force.GroupGain
		}
		modes = append(modes, layout.Mode{
			Key:          mc.Key,
			Kind:         layout.Grouped,
			Gain:         gain,
			GroupBy:      mc.GroupBy,
			CaptionClass: mc.CaptionClass,
			Centers:      points(mc.Centers),
		})
	}
	return modes
}

func points(in map[string]PointConfig) map[string]bubble.Point {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]bubble.Point, len(in))
	for k, p := range in {
		out[k] = bubble.Point{X: p.X, Y: p.Y}
	}
	return out
}
