package force

import (
	"log/slog"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/logging"
)

// Simulation is the single owner of node positions. Readers get copies.
type Simulation struct {
	engine    *Engine
	state     State
	targeting Targeting
	index     map[string]int
	observers []Observer
	log       *slog.Logger
}

func NewSimulation(engine *Engine, nodes []bubble.Node, t Targeting, logger *slog.Logger) *Simulation {
	s := &Simulation{
		engine:    engine,
		state:     State{Nodes: bubble.CloneNodes(nodes), Phase: Idle},
		targeting: t,
		index:     make(map[string]int, len(nodes)),
		observers: make([]Observer, 0),
		log:       logging.Component(logger, "force"),
	}
	for i, n := range nodes {
		s.index[n.ID] = i
	}
	return s
}

func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Start begins ticking from Idle, or re-energises a stopped layout.
// It does nothing while the layout is already moving.
func (s *Simulation) Start() {
	if s.state.Phase.Active() {
		return
	}
	s.energise()
}

// Restart swaps the targeting and re-energises from any phase. Positions
// are kept.
func (s *Simulation) Restart(t Targeting) {
	s.targeting = t
	s.energise()
}

func (s *Simulation) Stop() {
	if s.state.Phase == Stopped {
		return
	}
	s.state.Alpha = 0
	s.state.Phase = Stopped
	s.log.Debug("stopped", slog.Int("tick", s.state.Tick))
}

func (s *Simulation) energise() {
	s.state.Alpha = s.engine.params.InitialAlpha
	s.state.Phase = Running
	s.log.Debug("started", slog.Float64("alpha", s.state.Alpha), slog.Int("nodes", len(s.state.Nodes)))
}

// Tick applies one step. Observers are only notified for ticks that ran.
func (s *Simulation) Tick() TickReport {
	if !s.state.Phase.Active() {
		return TickReport{Tick: s.state.Tick, Alpha: s.state.Alpha, Phase: s.state.Phase}
	}

	prev := s.state.Phase
	next, report := s.engine.Step(s.state, s.targeting)
	s.state = next

	for _, err := range report.Faults {
		s.log.Warn("numeric fault", slog.String("error", err.Error()))
	}
	if prev != next.Phase {
		s.log.Debug("phase", slog.String("from", prev.String()), slog.String("to", next.Phase.String()), slog.Int("tick", next.Tick))
	}

	if len(s.observers) > 0 {
		snapshot := bubble.CloneNodes(s.state.Nodes)
		for _, o := range s.observers {
			o.OnTick(snapshot, report)
		}
	}
	return report
}

// Settle ticks until the layout stops or maxTicks have run, returning the
// number of ticks taken.
func (s *Simulation) Settle(maxTicks int) int {
	n := 0
	for s.state.Phase.Active() && n < maxTicks {
		s.Tick()
		n++
	}
	return n
}

func (s *Simulation) Phase() Phase         { return s.state.Phase }
func (s *Simulation) Alpha() float64       { return s.state.Alpha }
func (s *Simulation) TickCount() int       { return s.state.Tick }
func (s *Simulation) Len() int             { return len(s.state.Nodes) }
func (s *Simulation) Targeting() Targeting { return s.targeting }
func (s *Simulation) Engine() *Engine      { return s.engine }
func (s *Simulation) State() State         { return s.state.Clone() }
func (s *Simulation) Nodes() []bubble.Node { return bubble.CloneNodes(s.state.Nodes) }

func (s *Simulation) Node(id string) (bubble.Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return bubble.Node{}, false
	}
	return s.state.Nodes[i].Clone(), true
}
