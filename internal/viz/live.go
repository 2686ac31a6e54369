package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/psmith94/gates-bubbles/internal/chart"
	"github.com/psmith94/gates-bubbles/internal/layout"
	"github.com/psmith94/gates-bubbles/internal/render"
)

const (
	defaultCols  = 80
	defaultRows  = 24
	panelWidth   = 50
	alphaHistory = 120
)

type TickMsg time.Time

type keyMap struct {
	All     key.Binding
	Year    key.Binding
	Cycle   key.Binding
	Next    key.Binding
	Prev    key.Binding
	Unhover key.Binding
	Pause   key.Binding
	Reheat  key.Binding
	Theme   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Year:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "by year")),
		Cycle:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "next mode")),
		Next:    key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next bubble")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev bubble")),
		Unhover: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Reheat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reheat")),
		Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.All, k.Year, k.Next, k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.All, k.Year, k.Cycle},
		{k.Next, k.Prev, k.Unhover},
		{k.Pause, k.Reheat, k.Theme},
		{k.Help, k.Quit},
	}
}

// Model drives a chart from the terminal. The chart must draw into scene.
type Model struct {
	chart    *chart.Chart
	scene    *render.Scene
	canvas   *Canvas
	theme    Theme
	styles   styles
	keys     keyMap
	help     help.Model
	interval time.Duration
	paused   bool
	selected int
	status   string
}

// NewModel wraps an initialised chart. fps <= 0 means 30 frames a second.
func NewModel(c *chart.Chart, scene *render.Scene, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	theme := ThemeRamp
	return Model{
		chart:    c,
		scene:    scene,
		canvas:   NewCanvas(defaultCols, defaultRows),
		theme:    theme,
		styles:   newStyles(theme),
		keys:     defaultKeys(),
		help:     help.New(),
		interval: time.Second / time.Duration(fps),
		selected: -1,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles keys, resizes and frame ticks. Chart events are only
// applied here, between ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cols := msg.Width - panelWidth - 4
		rows := msg.Height - 3
		if cols < 10 {
			cols = 10
		}
		if rows < 5 {
			rows = 5
		}
		m.canvas = NewCanvas(cols, rows)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.All):
			m.toggle(layout.AllKey)
		case key.Matches(msg, m.keys.Year):
			m.toggle(layout.YearKey)
		case key.Matches(msg, m.keys.Cycle):
			m.toggle(m.nextMode())
		case key.Matches(msg, m.keys.Next):
			m.move(1)
		case key.Matches(msg, m.keys.Prev):
			m.move(-1)
		case key.Matches(msg, m.keys.Unhover):
			m.unhover()
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Reheat):
			if err := m.chart.Handle(chart.Event{Kind: chart.Reheat}); err != nil {
				m.status = err.Error()
			}
		case key.Matches(msg, m.keys.Theme):
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case TickMsg:
		if !m.paused {
			m.chart.Tick()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) toggle(k string) {
	mode, err := m.chart.ToggleView(k)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = "mode " + mode.Key
}

func (m Model) nextMode() string {
	modes := m.chart.Modes()
	if len(modes) == 0 {
		return ""
	}
	cur := m.chart.Mode().Key
	for i, md := range modes {
		if md.Key == cur {
			return modes[(i+1)%len(modes)].Key
		}
	}
	return modes[0].Key
}

// move hovers the next or previous bubble in value order, leaving the one
// currently hovered first.
func (m *Model) move(dir int) {
	nodes := m.chart.Nodes()
	if len(nodes) == 0 {
		return
	}
	m.unhover()
	next := m.selected + dir
	if m.selected < 0 && dir < 0 {
		next = len(nodes) - 1
	}
	next = (next%len(nodes) + len(nodes)) % len(nodes)
	m.selected = next
	n := nodes[next]
	m.scene.Enter(n.ID, render.Pointer{X: n.X, Y: n.Y})
}

func (m *Model) unhover() {
	id, ok := m.chart.Hovered()
	if !ok {
		return
	}
	n, _ := m.chart.Node(id)
	m.scene.Leave(id, render.Pointer{X: n.X, Y: n.Y})
}

// Selected returns the index of the keyboard-selected bubble, or -1.
func (m Model) Selected() int { return m.selected }

func (m Model) Paused() bool { return m.paused }

func (m Model) Theme() Theme { return m.theme }

// project maps scene coordinates to canvas dots with one scale on both
// axes so circles stay round.
func (m Model) project() (scale, offX, offY float64) {
	w, h := m.scene.Size()
	dw, dh := m.canvas.Dots()
	if w <= 0 || h <= 0 {
		return 1, 0, 0
	}
	scale = math.Min(float64(dw)/w, float64(dh)/h)
	offX = (float64(dw) - w*scale) / 2
	offY = (float64(dh) - h*scale) / 2
	return scale, offX, offY
}

func (m Model) draw() {
	m.canvas.Clear()
	scale, offX, offY := m.project()
	hovered, _ := m.chart.Hovered()
	for _, s := range m.scene.Shapes() {
		cx := int(math.Round(s.X*scale + offX))
		cy := int(math.Round(s.Y*scale + offY))
		r := int(math.Round(s.Radius * scale))
		switch {
		case s.ID == hovered:
			m.canvas.Pen(string(m.theme.Accent))
		case m.theme.Mono:
			m.canvas.Pen(string(m.theme.Primary))
		default:
			m.canvas.Pen(s.Fill)
		}
		if s.ID == hovered {
			m.canvas.FillCircle(cx, cy, r)
		} else {
			m.canvas.DrawCircle(cx, cy, r)
		}
	}
	m.canvas.Pen("")
}

func (m Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

// View renders the canvas and the side panel.
func (m Model) View() string {
	m.draw()
	canvasView := m.styles.canvas.Render(m.canvas.Render())

	var s strings.Builder
	mode := m.chart.Mode()
	s.WriteString(m.styles.header.Render("BUBBLES · "+strings.ToUpper(mode.Key)) + "\n")

	phase := m.chart.Phase().String()
	if m.paused {
		phase = "paused"
	}
	s.WriteString(m.row("Phase", phase))
	s.WriteString(m.row("Alpha", fmt.Sprintf("%.4f", m.chart.Alpha())))
	s.WriteString(m.row("Ticks", fmt.Sprintf("%d", m.chart.Ticks())))
	s.WriteString(m.row("Bubbles", fmt.Sprintf("%d", len(m.chart.Nodes()))))
	s.WriteString(m.row("Dropped", fmt.Sprintf("%d", len(m.chart.Dropped()))))
	s.WriteString(m.row("Cooling", ProgressBar(1-m.chart.Alpha(), 20)))

	if mode.CaptionClass != "" {
		var texts []string
		for _, l := range m.scene.LabelsOf(mode.CaptionClass) {
			texts = append(texts, l.Text)
		}
		s.WriteString(m.row("Groups", strings.Join(texts, " ")))
	}

	trace := m.chart.AlphaTrace()
	if len(trace) > alphaHistory {
		trace = trace[len(trace)-alphaHistory:]
	}
	if len(trace) > 1 {
		plot := asciigraph.Plot(trace, asciigraph.Height(4), asciigraph.Width(36), asciigraph.Caption("alpha"))
		s.WriteString(m.styles.graph.Render(plot) + "\n")
	}

	if id, ok := m.chart.Hovered(); ok {
		lines := m.chart.TooltipText(id)
		s.WriteString("\n" + m.styles.tooltip.Render(strings.Join(lines, "\n")) + "\n")
	}
	if m.status != "" {
		s.WriteString("\n" + m.styles.active.Render(m.status) + "\n")
	}
	s.WriteString(m.styles.help.Render(m.help.View(m.keys)))

	panel := m.styles.panel.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
}
