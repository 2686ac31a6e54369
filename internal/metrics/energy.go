package metrics

import (
	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/force"
)

// Energy is the kinetic energy per node at the latest tick. Peak keeps the
// largest value seen since the last reset.
type Energy struct {
	name    string
	current float64
	peak    float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(nodes []bubble.Node, r force.TickReport) {
	if len(nodes) == 0 {
		e.current = 0
		return
	}
	e.current = r.Energy / float64(len(nodes))
	if e.current > e.peak {
		e.peak = e.current
	}
}

func (e *Energy) Value() float64 { return e.current }
func (e *Energy) Peak() float64  { return e.peak }

func (e *Energy) Reset() {
	e.current = 0
	e.peak = 0
}
