// Package layout decides where bubbles are pulled to. A mode either pulls
// everything to the canvas center or splits nodes into groups by one
// attribute, each with its own center and caption.
package layout

import (
	"github.com/psmith94/gates-bubbles/internal/bubble"
)

type Kind int

const (
	Unified Kind = iota
	Grouped
)

func (k Kind) String() string {
	if k == Grouped {
		return "grouped"
	}
	return "unified"
}

const (
	AllKey  = "all"
	YearKey = "year"
)

// Mode describes one view. Centers, when set, pins group centers instead
// of spreading the observed groups across the canvas.
type Mode struct {
	Key          string
	Kind         Kind
	Gain         float64
	GroupBy      string
	CaptionClass string
	Centers      map[string]bubble.Point
}

func DefaultModes() []Mode {
	return []Mode{
		{Key: AllKey, Kind: Unified, Gain: 1.0},
		{Key: YearKey, Kind: Grouped, Gain: 1.1, GroupBy: "category", CaptionClass: "years"},
	}
}

type Settings struct {
	Width         float64
	Height        float64
	CaptionY      float64
	CaptionMargin float64
	DefaultMode   string
}

func DefaultSettings() Settings {
	return Settings{
		Width:         940,
		Height:        600,
		CaptionY:      40,
		CaptionMargin: 160,
		DefaultMode:   AllKey,
	}
}

func (s Settings) Center() bubble.Point {
	return bubble.Point{X: s.Width / 2, Y: s.Height / 2}
}

type Caption struct {
	Text string
	X    float64
	Y    float64
}
