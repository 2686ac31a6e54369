// Package scale maps raw values onto bubble radii and fill colors.
package scale

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidScale indicates an unusable breakpoint/color configuration.
var ErrInvalidScale = errors.New("scale: invalid scale configuration")

// darkerFactor is d3's rgb.darker() step.
const darkerFactor = 0.7

var (
	DefaultBreaks = []float64{0, 3, 8, 20, 50, 100, 4106, 4692, 6000}
	DefaultColors = []string{"#fff7fb", "#ece7f2", "#d0d1e6", "#a6bddb", "#74a9cf", "#3690c0", "#0570b0", "#045a8d", "#023858"}
)

// Options configures a Scaler. Breaks and Colors pair up index by index.
type Options struct {
	MinRadius float64
	MaxRadius float64
	Exponent  float64
	Breaks    []float64
	Colors    []string
}

func DefaultOptions() Options {
	return Options{
		MinRadius: 2,
		MaxRadius: 85,
		Exponent:  0.5,
		Breaks:    append([]float64(nil), DefaultBreaks...),
		Colors:    append([]string(nil), DefaultColors...),
	}
}

// Scaler holds two independent monotonic mappings. It has no mutable state
// after New returns.
type Scaler struct {
	minRadius float64
	maxRadius float64
	exponent  float64
	maxValue  float64
	breaks    []float64
	colors    []colorful.Color
}

// New builds a scaler whose radius domain is [0, maxValue].
func New(opts Options, maxValue float64) (*Scaler, error) {
	if opts.MinRadius < 0 || opts.MaxRadius < opts.MinRadius {
		return nil, fmt.Errorf("%w: radius range [%g, %g]", ErrInvalidScale, opts.MinRadius, opts.MaxRadius)
	}
	if opts.Exponent <= 0 {
		return nil, fmt.Errorf("%w: exponent %g", ErrInvalidScale, opts.Exponent)
	}
	if len(opts.Breaks) < 2 || len(opts.Breaks) != len(opts.Colors) {
		return nil, fmt.Errorf("%w: %d breakpoints for %d colors", ErrInvalidScale, len(opts.Breaks), len(opts.Colors))
	}
	for i := 1; i < len(opts.Breaks); i++ {
		if !(opts.Breaks[i] > opts.Breaks[i-1]) {
			return nil, fmt.Errorf("%w: breakpoints not strictly increasing at %d", ErrInvalidScale, i)
		}
	}
	colors := make([]colorful.Color, len(opts.Colors))
	for i, hex := range opts.Colors {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("%w: color %q: %v", ErrInvalidScale, hex, err)
		}
		colors[i] = c
	}
	if math.IsNaN(maxValue) || math.IsInf(maxValue, 0) || maxValue < 0 {
		maxValue = 0
	}

	return &Scaler{
		minRadius: opts.MinRadius,
		maxRadius: opts.MaxRadius,
		exponent:  opts.Exponent,
		maxValue:  maxValue,
		breaks:    append([]float64(nil), opts.Breaks...),
		colors:    colors,
	}, nil
}

func (s *Scaler) MinRadius() float64 { return s.minRadius }
func (s *Scaler) MaxRadius() float64 { return s.maxRadius }
func (s *Scaler) MaxValue() float64  { return s.maxValue }

// Radius maps v through a power scale so that area, not radius, grows
// linearly with v. Out-of-domain values clamp to the radius range.
func (s *Scaler) Radius(v float64) float64 {
	if s.maxValue <= 0 || math.IsNaN(v) || v <= 0 {
		return s.minRadius
	}
	if v >= s.maxValue {
		return s.maxRadius
	}
	t := math.Pow(v/s.maxValue, s.exponent)
	return s.minRadius + (s.maxRadius-s.minRadius)*t
}

// Color interpolates the color ramp in RGB space between the two
// surrounding breakpoints.
func (s *Scaler) Color(v float64) string {
	last := len(s.breaks) - 1
	if math.IsNaN(v) || v <= s.breaks[0] {
		return s.colors[0].Hex()
	}
	if v >= s.breaks[last] {
		return s.colors[last].Hex()
	}
	i := 1
	for s.breaks[i] < v {
		i++
	}
	lo, hi := s.breaks[i-1], s.breaks[i]
	t := (v - lo) / (hi - lo)
	return s.colors[i-1].BlendRgb(s.colors[i], t).Clamped().Hex()
}

// Stroke is the outline color of a resting node.
func (s *Scaler) Stroke(v float64) string {
	return Darker(s.Color(v))
}

// Darker scales every 8-bit channel by 0.7, truncating like d3's
// rgb.darker(). Strings that are not #rrggbb colors are returned unchanged.
func Darker(hex string) string {
	r, g, b, err := Channels(hex)
	if err != nil {
		return hex
	}
	return fmt.Sprintf("#%02x%02x%02x", darken(r), darken(g), darken(b))
}

func darken(c uint8) uint8 { return uint8(darkerFactor * float64(c)) }

// Channels splits a #rrggbb color into 0-255 channels.
func Channels(hex string) (r, g, b uint8, err error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, 0, 0, err
	}
	r, g, b = c.RGB255()
	return r, g, b, nil
}
