// Package chart wires records, the force simulation, layout modes and
// pointer interaction into one bubble chart.
//
// A Chart is driven from a single goroutine: either call Tick from a render
// loop or let Run own the loop. It is not safe for concurrent use.
package chart

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/config"
	"github.com/psmith94/gates-bubbles/internal/force"
	"github.com/psmith94/gates-bubbles/internal/interact"
	"github.com/psmith94/gates-bubbles/internal/layout"
	"github.com/psmith94/gates-bubbles/internal/logging"
	"github.com/psmith94/gates-bubbles/internal/metrics"
	"github.com/psmith94/gates-bubbles/internal/nodes"
	"github.com/psmith94/gates-bubbles/internal/render"
	"github.com/psmith94/gates-bubbles/internal/scale"
)

// growFrequency makes the grow-in last roughly two seconds.
const growFrequency = 4.0

type Option func(*Chart)

func WithLogger(l *slog.Logger) Option {
	return func(c *Chart) { c.log = logging.OrDiscard(l) }
}

func WithMetrics(r *metrics.Registry) Option {
	return func(c *Chart) { c.prom = r }
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Chart) { c.rng = rng }
}

func WithObserver(o force.Observer) Option {
	return func(c *Chart) { c.observers = append(c.observers, o) }
}

// WithoutGrowth draws bubbles at full size from the first frame.
func WithoutGrowth() Option {
	return func(c *Chart) { c.grow = false }
}

type Chart struct {
	cfg       *config.Config
	surface   render.Surface
	tooltip   render.Tooltip
	log       *slog.Logger
	prom      *metrics.Registry
	rng       *rand.Rand
	observers []force.Observer
	grow      bool

	initialized bool
	batch       *nodes.Batch
	sim         *force.Simulation
	layout      *layout.Controller
	bridge      *interact.Bridge
	growth      *growth
	alpha       []float64
	modes       []string
}

func New(cfg *config.Config, surface render.Surface, tooltip render.Tooltip, opts ...Option) *Chart {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &Chart{
		cfg:     cfg,
		surface: surface,
		tooltip: tooltip,
		log:     logging.Discard(),
		grow:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(cfg.Seed))
	}
	c.log = logging.Component(c.log, "chart")
	return c
}

func errNotInitialized() error {
	return fmt.Errorf("chart: %w", bubble.ErrNotInitialized)
}

// Init builds the nodes, draws them and starts the simulation in the
// default mode. It can only succeed once per chart.
func (c *Chart) Init(records []bubble.Record) error {
	if c.initialized {
		return fmt.Errorf("chart: %w", bubble.ErrAlreadyInitialized)
	}

	w, h := c.cfg.Canvas.Width, c.cfg.Canvas.Height
	factory := nodes.NewFactory(c.cfg.ScaleOptions(), w, h, c.rng, c.log)
	batch, err := factory.Build(records)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	c.prom.Dropped(batch.Dropped)
	if len(batch.Nodes) == 0 {
		return fmt.Errorf("chart: %w: %d records, none usable", bubble.ErrEmptyDataset, len(records))
	}

	params := c.cfg.ForceParams()
	sim := force.NewSimulation(force.NewEngine(params), batch.Nodes, force.Unified(params.Center()), c.log)
	for _, o := range c.observers {
		sim.AddObserver(o)
	}

	ctrl := layout.NewController(c.cfg.LayoutSettings(), sim, c.surface, c.log)
	for _, m := range c.cfg.LayoutModes() {
		if err := ctrl.Register(m); err != nil {
			return fmt.Errorf("chart: %w", err)
		}
	}

	c.batch = batch
	c.sim = sim
	c.layout = ctrl
	c.bridge = interact.NewBridge(sim, batch.Scaler, c.surface, c.tooltip, c.cfg.Hover.Stroke, c.log)

	radii := make([]float64, len(batch.Nodes))
	for i, n := range batch.Nodes {
		radii[i] = n.Radius
		c.surface.CreateNode(n.ID)
		c.surface.SetPosition(n.ID, n.X, n.Y)
		c.surface.SetFillColor(n.ID, n.Fill)
		c.surface.SetStrokeColor(n.ID, n.Stroke)
		c.surface.OnEnter(n.ID, c.onEnter)
		c.surface.OnLeave(n.ID, c.onLeave)
		if c.grow {
			c.surface.SetRadius(n.ID, 0)
		} else {
			c.surface.SetRadius(n.ID, n.Radius)
		}
	}
	if c.grow {
		c.growth = newGrowth(c.cfg.FPS, growFrequency, radii)
	}

	c.initialized = true
	c.log.Info("chart initialised", slog.Int("nodes", len(batch.Nodes)), slog.Int("dropped", len(batch.Dropped)))

	m := c.layout.SetMode(c.cfg.Layout.DefaultMode)
	c.modes = append(c.modes, m.Key)
	c.prom.ModeSwitched(m.Key)
	return nil
}

// ToggleView switches the layout mode. Unknown keys fall back to the
// unified view; the returned Mode is the one in effect.
func (c *Chart) ToggleView(key string) (layout.Mode, error) {
	if !c.initialized {
		return layout.Mode{}, errNotInitialized()
	}
	m := c.layout.SetMode(key)
	c.modes = append(c.modes, m.Key)
	c.prom.ModeSwitched(m.Key)
	return m, nil
}

// Tick advances the simulation one step and pushes positions and radii to
// the surface. It satisfies force.Ticker.
func (c *Chart) Tick() force.TickReport {
	if !c.initialized {
		return force.TickReport{}
	}
	active := c.sim.Phase().Active()
	start := time.Now()
	rep := c.sim.Tick()
	if active {
		c.prom.ObserveTick(rep, time.Since(start), c.sim.Len())
		c.alpha = append(c.alpha, rep.Alpha)
	}
	c.draw(active)
	return rep
}

func (c *Chart) draw(moved bool) {
	growing := c.growth != nil && !c.growth.done
	if !moved && !growing {
		return
	}
	if growing {
		c.growth.step()
	}
	for i, n := range c.sim.Nodes() {
		if moved {
			c.surface.SetPosition(n.ID, n.X, n.Y)
		}
		if growing {
			c.surface.SetRadius(n.ID, c.growth.radius(i))
		}
	}
}

// Settle ticks until the layout has stopped and every bubble reached full
// size, or maxTicks ran out. It returns the number of ticks taken.
func (c *Chart) Settle(maxTicks int) int {
	n := 0
	for n < maxTicks && !c.Settled() {
		c.Tick()
		n++
	}
	return n
}

func (c *Chart) Settled() bool {
	if !c.initialized {
		return false
	}
	return c.sim.Phase() == force.Stopped && (c.growth == nil || c.growth.done)
}

// Run ticks at the configured frame rate until ctx is done. Events queued
// on the channel are applied between ticks, never during one.
func (c *Chart) Run(ctx context.Context, events <-chan Event) error {
	if !c.initialized {
		return errNotInitialized()
	}
	fps := c.cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return force.Run(ctx, c, time.Second/time.Duration(fps), func() {
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					events = nil
					return
				}
				if err := c.Handle(ev); err != nil {
					c.log.Warn("event rejected", slog.String("kind", ev.Kind.String()), slog.String("error", err.Error()))
				}
			default:
				return
			}
		}
	})
}

func (c *Chart) Hover(id string, at render.Pointer) error {
	if !c.initialized {
		return errNotInitialized()
	}
	if err := c.bridge.HoverStart(id, at); err != nil {
		return err
	}
	c.prom.Hover("start")
	return nil
}

func (c *Chart) Unhover(id string, at render.Pointer) error {
	if !c.initialized {
		return errNotInitialized()
	}
	if err := c.bridge.HoverEnd(id, at); err != nil {
		return err
	}
	c.prom.Hover("end")
	return nil
}

func (c *Chart) onEnter(id string, at render.Pointer) {
	if err := c.Hover(id, at); err != nil {
		c.log.Warn("hover", slog.String("id", id), slog.String("error", err.Error()))
	}
}

func (c *Chart) onLeave(id string, at render.Pointer) {
	if err := c.Unhover(id, at); err != nil {
		c.log.Warn("unhover", slog.String("id", id), slog.String("error", err.Error()))
	}
}

func (c *Chart) Initialized() bool { return c.initialized }

func (c *Chart) Config() *config.Config { return c.cfg }

// Nodes returns a copy of the current node sequence.
func (c *Chart) Nodes() []bubble.Node {
	if !c.initialized {
		return nil
	}
	return c.sim.Nodes()
}

func (c *Chart) Node(id string) (bubble.Node, bool) {
	if !c.initialized {
		return bubble.Node{}, false
	}
	return c.sim.Node(id)
}

func (c *Chart) Mode() layout.Mode {
	if !c.initialized {
		return layout.Mode{}
	}
	return c.layout.Current()
}

func (c *Chart) Modes() []layout.Mode {
	if !c.initialized {
		return layout.DefaultModes()
	}
	return c.layout.Modes()
}

// ModeHistory lists every mode applied since Init, in order.
func (c *Chart) ModeHistory() []string { return append([]string(nil), c.modes...) }

func (c *Chart) Phase() force.Phase {
	if !c.initialized {
		return force.Idle
	}
	return c.sim.Phase()
}

func (c *Chart) Alpha() float64 {
	if !c.initialized {
		return 0
	}
	return c.sim.Alpha()
}

func (c *Chart) Ticks() int {
	if !c.initialized {
		return 0
	}
	return c.sim.TickCount()
}

// AlphaTrace holds alpha after every tick that ran.
func (c *Chart) AlphaTrace() []float64 { return append([]float64(nil), c.alpha...) }

func (c *Chart) Dropped() []error {
	if c.batch == nil {
		return nil
	}
	return append([]error(nil), c.batch.Dropped...)
}

func (c *Chart) Scaler() *scale.Scaler {
	if c.batch == nil {
		return nil
	}
	return c.batch.Scaler
}

func (c *Chart) Hovered() (string, bool) {
	if !c.initialized {
		return "", false
	}
	return c.bridge.Hovered()
}

// TooltipText renders the tooltip for id as plain lines.
func (c *Chart) TooltipText(id string) []string {
	n, ok := c.Node(id)
	if !ok {
		return nil
	}
	return interact.PlainText(c.bridge.Content(n))
}
