package layout

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/force"
	"github.com/psmith94/gates-bubbles/internal/logging"
	"github.com/psmith94/gates-bubbles/internal/render"
)

// Controller switches the simulation between modes and keeps the group
// captions on the surface in step. Not safe for concurrent use.
type Controller struct {
	settings Settings
	modes    map[string]Mode
	order    []string
	current  Mode
	sim      *force.Simulation
	surface  render.Surface
	log      *slog.Logger
}

func NewController(settings Settings, sim *force.Simulation, surface render.Surface, logger *slog.Logger) *Controller {
	c := &Controller{
		settings: settings,
		modes:    make(map[string]Mode),
		order:    make([]string, 0),
		sim:      sim,
		surface:  surface,
		log:      logging.Component(logger, "layout"),
	}
	for _, m := range DefaultModes() {
		_ = c.Register(m)
	}
	c.current = c.defaultMode()
	return c
}

// Register adds or replaces a mode.
func (c *Controller) Register(m Mode) error {
	if m.Key == "" {
		return fmt.Errorf("layout: mode without key")
	}
	if m.Kind == Grouped && m.GroupBy == "" {
		m.GroupBy = "category"
	}
	if m.Gain <= 0 {
		m.Gain = 1.0
	}
	if _, ok := c.modes[m.Key]; !ok {
		c.order = append(c.order, m.Key)
	}
	c.modes[m.Key] = m
	return nil
}

// Modes lists registered modes in registration order.
func (c *Controller) Modes() []Mode {
	out := make([]Mode, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.modes[k])
	}
	return out
}

func (c *Controller) Current() Mode { return c.current }

func (c *Controller) defaultMode() Mode {
	if m, ok := c.modes[c.settings.DefaultMode]; ok {
		return m
	}
	return c.modes[AllKey]
}

// unifiedMode is the recovery target for unknown keys: the "all" view, or
// the first unified mode if "all" was replaced.
func (c *Controller) unifiedMode() Mode {
	if m, ok := c.modes[AllKey]; ok && m.Kind == Unified {
		return m
	}
	for _, k := range c.order {
		if m := c.modes[k]; m.Kind == Unified {
			return m
		}
	}
	return Mode{Key: AllKey, Kind: Unified, Gain: 1.0}
}

// Resolve looks a mode up. Unknown keys yield the unified mode, whatever
// the configured default, together with an error wrapping
// bubble.ErrUnknownMode.
func (c *Controller) Resolve(key string) (Mode, error) {
	if m, ok := c.modes[key]; ok {
		return m, nil
	}
	return c.unifiedMode(), fmt.Errorf("%w: %q", bubble.ErrUnknownMode, key)
}

// SetMode retargets the simulation and redraws captions. Node positions are
// kept; the layout is re-energised from them.
func (c *Controller) SetMode(key string) Mode {
	m, err := c.Resolve(key)
	if err != nil {
		c.log.Warn("unknown layout mode", slog.String("key", key), slog.String("using", m.Key), slog.String("error", err.Error()))
	}

	nodes := c.sim.Nodes()
	t := c.Targeting(m, nodes)

	for _, class := range c.captionClasses() {
		c.surface.RemoveLabels(class)
	}
	if m.Kind == Grouped {
		for _, cap := range c.Captions(m, nodes) {
			c.surface.AddLabel(m.CaptionClass, cap.Text, cap.X, cap.Y)
		}
	}

	c.sim.Restart(t)
	c.current = m
	c.log.Info("layout mode", slog.String("mode", m.Key), slog.String("kind", m.Kind.String()), slog.Int("groups", len(t.Centers)))
	return m
}

// Targeting builds the force targets for m over the given nodes.
func (c *Controller) Targeting(m Mode, nodes []bubble.Node) force.Targeting {
	t := force.Targeting{
		GroupBy:  m.GroupBy,
		Fallback: c.settings.Center(),
		Gain:     m.Gain,
	}
	if m.Kind == Grouped {
		t.Centers = c.Centers(m, nodes)
	}
	return t
}

// Centers places each group. Observed groups are sorted and spread evenly
// across the middle third of the canvas.
func (c *Controller) Centers(m Mode, nodes []bubble.Node) map[string]bubble.Point {
	if m.Kind != Grouped {
		return nil
	}
	centers := make(map[string]bubble.Point)
	if len(m.Centers) > 0 {
		for k, p := range m.Centers {
			centers[k] = p
		}
		return centers
	}

	w, h := c.settings.Width, c.settings.Height
	groups := bubble.Categories(nodes, m.GroupBy)
	for i, g := range groups {
		centers[g] = bubble.Point{X: spread(i, len(groups), w/3, 2*w/3), Y: h / 2}
	}
	return centers
}

// Captions labels each group of a grouped mode.
func (c *Controller) Captions(m Mode, nodes []bubble.Node) []Caption {
	if m.Kind != Grouped {
		return nil
	}
	y := c.settings.CaptionY

	if len(m.Centers) > 0 {
		keys := make([]string, 0, len(m.Centers))
		for k := range m.Centers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Caption, len(keys))
		for i, k := range keys {
			out[i] = Caption{Text: k, X: m.Centers[k].X, Y: y}
		}
		return out
	}

	groups := bubble.Categories(nodes, m.GroupBy)
	lo, hi := c.settings.CaptionMargin, c.settings.Width-c.settings.CaptionMargin
	out := make([]Caption, len(groups))
	for i, g := range groups {
		out[i] = Caption{Text: g, X: spread(i, len(groups), lo, hi), Y: y}
	}
	return out
}

func (c *Controller) captionClasses() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range c.order {
		class := c.modes[k].CaptionClass
		if class == "" {
			continue
		}
		if _, ok := seen[class]; ok {
			continue
		}
		seen[class] = struct{}{}
		out = append(out, class)
	}
	return out
}

func spread(i, n int, lo, hi float64) float64 {
	if n <= 1 {
		return (lo + hi) / 2
	}
	return lo + float64(i)*(hi-lo)/float64(n-1)
}
