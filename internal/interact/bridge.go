// Package interact turns pointer events on bubbles into tooltip and
// highlight changes. It only reads the simulation.
package interact

import (
	"fmt"
	"html"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/logging"
	"github.com/psmith94/gates-bubbles/internal/render"
	"github.com/psmith94/gates-bubbles/internal/scale"
)

const DefaultHoverStroke = "black"

// Lookup finds a node snapshot by id. *force.Simulation satisfies it.
type Lookup interface {
	Node(id string) (bubble.Node, bool)
}

type Bridge struct {
	nodes       Lookup
	scaler      *scale.Scaler
	surface     render.Surface
	tooltip     render.Tooltip
	hoverStroke string
	printer     *message.Printer
	log         *slog.Logger
	hovered     string
}

func NewBridge(nodes Lookup, scaler *scale.Scaler, surface render.Surface, tooltip render.Tooltip, hoverStroke string, logger *slog.Logger) *Bridge {
	if hoverStroke == "" {
		hoverStroke = DefaultHoverStroke
	}
	return &Bridge{
		nodes:       nodes,
		scaler:      scaler,
		surface:     surface,
		tooltip:     tooltip,
		hoverStroke: hoverStroke,
		printer:     message.NewPrinter(language.English),
		log:         logging.Component(logger, "interact"),
	}
}

// HoverStart shows the tooltip for id and highlights its outline.
func (b *Bridge) HoverStart(id string, at render.Pointer) error {
	n, ok := b.nodes.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", bubble.ErrUnknownNode, id)
	}
	b.tooltip.Show(b.Content(n), at)
	b.surface.SetStrokeColor(id, b.hoverStroke)
	b.hovered = id
	b.log.Debug("hover start", slog.String("id", id))
	return nil
}

// HoverEnd restores the outline of id and hides the tooltip.
func (b *Bridge) HoverEnd(id string, at render.Pointer) error {
	n, ok := b.nodes.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", bubble.ErrUnknownNode, id)
	}
	b.surface.SetStrokeColor(id, b.scaler.Stroke(n.Value))
	b.tooltip.Hide()
	if b.hovered == id {
		b.hovered = ""
	}
	b.log.Debug("hover end", slog.String("id", id))
	return nil
}

// Hovered returns the node currently under the pointer, if any.
func (b *Bridge) Hovered() (string, bool) {
	return b.hovered, b.hovered != ""
}

// Content renders the tooltip body for n.
func (b *Bridge) Content(n bubble.Node) string {
	var sb strings.Builder
	row := func(name, value string) {
		sb.WriteString(`<span class="name">`)
		sb.WriteString(name)
		sb.WriteString(`:</span><span class="value"> `)
		sb.WriteString(html.EscapeString(value))
		sb.WriteString(`</span>`)
	}
	row("Asset Name", n.Name)
	sb.WriteString("<br/>")
	row("Replacement Value", b.Money(n.Value))
	sb.WriteString("<br/>")
	row("Asset Class", n.Category)
	return sb.String()
}

// Money formats v as dollars with thousands separators. Cents are only
// shown when v is not whole.
func (b *Bridge) Money(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return b.printer.Sprintf("$%d", int64(v))
	}
	return b.printer.Sprintf("$%.2f", v)
}
