package metrics

import (
	"math"
	"testing"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/force"
)

func TestEnergyPerNode(t *testing.T) {
	m := NewEnergy()
	nodes := make([]bubble.Node, 4)

	m.Observe(nodes, force.TickReport{Energy: 8})
	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("expected energy 2, got %f", m.Value())
	}

	m.Observe(nodes, force.TickReport{Energy: 4})
	if m.Value() != 1 {
		t.Errorf("expected latest energy 1, got %f", m.Value())
	}
	if m.Peak() != 2 {
		t.Errorf("expected peak 2, got %f", m.Peak())
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy()
	m.Observe(make([]bubble.Node, 1), force.TickReport{Energy: 3})
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 || m.Peak() != 0 {
		t.Error("expected zero energy after reset")
	}

	m.Observe(nil, force.TickReport{Energy: 3})
	if m.Value() != 0 {
		t.Error("empty layout has no energy")
	}
}

func TestEnergyFallsAsLayoutSettles(t *testing.T) {
	nodes := []bubble.Node{
		{ID: "a", Radius: 10, X: 100, Y: 100, PX: 100, PY: 100},
		{ID: "b", Radius: 10, X: 800, Y: 500, PX: 800, PY: 500},
		{ID: "c", Radius: 10, X: 470, Y: 300, PX: 470, PY: 300},
	}
	p := force.DefaultParams()
	sim := force.NewSimulation(force.NewEngine(p), nodes, force.Unified(p.Center()), nil)
	m := NewEnergy()
	sim.AddObserver(NewSet(m))
	sim.Start()

	sim.Settle(20)
	early := m.Peak()
	sim.Settle(1000)
	if m.Value() >= early {
		t.Errorf("energy did not fall: peak %f, final %f", early, m.Value())
	}
}
