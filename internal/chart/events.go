package chart

import (
	"fmt"

	"github.com/psmith94/gates-bubbles/internal/render"
)

type EventKind int

const (
	HoverStart EventKind = iota
	HoverEnd
	Toggle
	Pause
	Resume
	Reheat
)

func (k EventKind) String() string {
	switch k {
	case HoverStart:
		return "hover_start"
	case HoverEnd:
		return "hover_end"
	case Toggle:
		return "toggle"
	case Pause:
		return "pause"
	case Resume:
		return "resume"
	case Reheat:
		return "reheat"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is an input applied between ticks. ID and At are used by hover
// events, Mode by Toggle.
type Event struct {
	Kind EventKind
	ID   string
	Mode string
	At   render.Pointer
}

// Handle applies one event.
func (c *Chart) Handle(ev Event) error {
	if !c.initialized {
		return errNotInitialized()
	}
	switch ev.Kind {
	case HoverStart:
		return c.Hover(ev.ID, ev.At)
	case HoverEnd:
		return c.Unhover(ev.ID, ev.At)
	case Toggle:
		_, err := c.ToggleView(ev.Mode)
		return err
	case Pause:
		c.sim.Stop()
	case Resume:
		c.sim.Start()
	case Reheat:
		c.sim.Restart(c.sim.Targeting())
	default:
		return fmt.Errorf("chart: unknown event %s", ev.Kind)
	}
	return nil
}
