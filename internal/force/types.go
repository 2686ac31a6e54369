package force

import (
	"github.com/psmith94/gates-bubbles/internal/bubble"
)

type Phase int

const (
	Idle Phase = iota
	Running
	Settling
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Settling:
		return "settling"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Active reports whether a tick in this phase moves nodes.
func (p Phase) Active() bool {
	return p == Running || p == Settling
}

// Params tunes the engine. Zero Theta selects the exact pairwise charge
// pass.
type Params struct {
	Width         float64
	Height        float64
	InitialAlpha  float64
	Decay         float64
	StopAlpha     float64
	SettleAlpha   float64
	ChargeDivisor float64
	Friction      float64
	Gravity       float64
	Damper        float64
	CenterBoost   float64
	Theta         float64
	Workers       int
}

func DefaultParams() Params {
	return Params{
		Width:         940,
		Height:        600,
		InitialAlpha:  1.0,
		Decay:         0.99,
		StopAlpha:     0.005,
		SettleAlpha:   0.1,
		ChargeDivisor: 8,
		Friction:      0.9,
		Gravity:       -0.01,
		Damper:        0.1,
		CenterBoost:   0.02,
		Theta:         0.8,
		Workers:       1,
	}
}

func (p Params) Center() bubble.Point {
	return bubble.Point{X: p.Width / 2, Y: p.Height / 2}
}

// Targeting maps every node to the point it is pulled towards. Nodes whose
// group has no entry in Centers use Fallback.
type Targeting struct {
	GroupBy  string
	Centers  map[string]bubble.Point
	Fallback bubble.Point
	Gain     float64
}

// Unified pulls every node to one point.
func Unified(center bubble.Point) Targeting {
	return Targeting{Fallback: center, Gain: 1.0}
}

func (t Targeting) Target(n *bubble.Node) bubble.Point {
	if len(t.Centers) > 0 {
		if c, ok := t.Centers[n.Attr(t.GroupBy)]; ok {
			return c
		}
	}
	return t.Fallback
}

func (t Targeting) gain() float64 {
	if t.Gain <= 0 {
		return 1.0
	}
	return t.Gain
}

type State struct {
	Nodes []bubble.Node
	Alpha float64
	Phase Phase
	Tick  int
}

func (s State) Clone() State {
	c := s
	c.Nodes = bubble.CloneNodes(s.Nodes)
	return c
}

// TickReport summarises one tick. Energy is half the summed squared
// per-tick displacement.
type TickReport struct {
	Tick   int
	Alpha  float64
	Phase  Phase
	Moved  int
	Energy float64
	Faults []error
}

type Observer interface {
	OnTick(nodes []bubble.Node, r TickReport)
}

type ObserverFunc func(nodes []bubble.Node, r TickReport)

func (f ObserverFunc) OnTick(nodes []bubble.Node, r TickReport) { f(nodes, r) }
