package force

import (
	"math"

	"github.com/psmith94/gates-bubbles/internal/bubble"
)

// minChunk keeps tiny layouts on one goroutine.
const minChunk = 64

type Engine struct {
	params Params
}

func NewEngine(p Params) *Engine {
	return &Engine{params: p}
}

func (e *Engine) Params() Params { return e.params }

// Step advances s by one tick towards the targets in t. s is not modified.
// Steps on an idle or stopped state return an unchanged copy.
func (e *Engine) Step(s State, t Targeting) (State, TickReport) {
	p := e.params
	out := s.Clone()

	if !out.Phase.Active() {
		return out, TickReport{Tick: out.Tick, Alpha: out.Alpha, Phase: out.Phase}
	}

	out.Tick++
	out.Alpha *= p.Decay
	switch {
	case out.Alpha < p.StopAlpha:
		out.Alpha = 0
		out.Phase = Stopped
		return out, TickReport{Tick: out.Tick, Phase: Stopped}
	case out.Alpha < p.SettleAlpha:
		out.Phase = Settling
	default:
		out.Phase = Running
	}

	alpha := out.Alpha
	nodes := out.Nodes
	report := TickReport{Tick: out.Tick, Alpha: alpha, Phase: out.Phase}

	for i := range nodes {
		if !nodes[i].HasValidPosition() {
			e.reseat(&nodes[i], t)
			report.Faults = append(report.Faults, fault(&nodes[i], out.Tick, "position"))
		}
	}

	if k := alpha * p.Gravity; k != 0 {
		c := p.Center()
		for i := range nodes {
			nodes[i].X += (c.X - nodes[i].X) * k
			nodes[i].Y += (c.Y - nodes[i].Y) * k
		}
	}

	n := len(nodes)
	xs := make([]float64, n)
	ys := make([]float64, n)
	charges := make([]float64, n)
	for i := range nodes {
		xs[i], ys[i] = nodes[i].X, nodes[i].Y
		r := nodes[i].Radius
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			report.Faults = append(report.Faults, fault(&nodes[i], out.Tick, "radius"))
			continue
		}
		if p.ChargeDivisor != 0 {
			charges[i] = alpha * -(r * r) / p.ChargeDivisor
		}
	}

	dpx := make([]float64, n)
	dpy := make([]float64, n)
	var tree *quadtree
	if p.Theta > 0 {
		tree = newQuadtree(xs, ys, charges, p.Theta)
	}
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	ParallelFor(n, minChunk, workers, func(start, end int) {
		for i := start; i < end; i++ {
			if tree != nil {
				dpx[i], dpy[i] = tree.impulse(i)
			} else {
				dpx[i], dpy[i] = exactImpulse(xs, ys, charges, i)
			}
		}
	})

	gain := t.gain()
	pull := (p.Damper + p.CenterBoost) * alpha * gain
	for i := range nodes {
		nd := &nodes[i]
		nd.PX += dpx[i]
		nd.PY += dpy[i]

		ox, oy := nd.X, nd.Y
		nd.X -= (nd.PX - nd.X) * p.Friction
		nd.Y -= (nd.PY - nd.Y) * p.Friction
		nd.PX, nd.PY = ox, oy

		target := t.Target(nd)
		nd.X += (target.X - nd.X) * pull
		nd.Y += (target.Y - nd.Y) * pull

		if !nd.HasValidPosition() {
			e.reseat(nd, t)
			report.Faults = append(report.Faults, fault(nd, out.Tick, "position"))
		}

		if nd.X != s.Nodes[i].X || nd.Y != s.Nodes[i].Y {
			report.Moved++
		}
		dx, dy := nd.X-nd.PX, nd.Y-nd.PY
		report.Energy += 0.5 * (dx*dx + dy*dy)
	}

	return out, report
}

func (e *Engine) reseat(n *bubble.Node, t Targeting) {
	c := t.Target(n)
	if !c.IsValid() {
		c = e.params.Center()
	}
	n.X, n.Y = c.X, c.Y
	n.PX, n.PY = c.X, c.Y
}

func fault(n *bubble.Node, tick int, field string) error {
	return &bubble.NumericFault{NodeID: n.ID, Tick: tick, Field: field, Err: bubble.ErrNumericInstability}
}
