// Package metrics measures layout quality per tick and exports runtime
// counters to Prometheus.
package metrics

import (
	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/force"
)

type Metric interface {
	Name() string
	Observe(nodes []bubble.Node, r force.TickReport)
	Value() float64
	Reset()
}

// Set feeds every tick to its metrics. It satisfies force.Observer.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

// Standard returns the metrics recorded for every run.
func Standard() *Set {
	return NewSet(NewEnergy(), NewOverlap(0.5), NewStability())
}

func (s *Set) Add(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Set) OnTick(nodes []bubble.Node, r force.TickReport) {
	for _, m := range s.metrics {
		m.Observe(nodes, r)
	}
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
