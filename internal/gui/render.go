package gui

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/psmith94/gates-bubbles/internal/interact"
)

// toColor parses a hex colour, falling back to fallback for anything that
// is not one (including "none").
func toColor(hex string, fallback rl.Color) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	r, g, b := c.Clamped().RGB255()
	return rl.NewColor(r, g, b, 255)
}

func (a *App) drawBubbles() {
	for _, s := range a.Scene.Shapes() {
		if s.Radius <= 0 {
			continue
		}
		center := rl.NewVector2(float32(s.X), float32(s.Y))
		rl.DrawCircleV(center, float32(s.Radius), toColor(s.Fill, ColTextDim))
		rl.DrawCircleLines(int32(s.X), int32(s.Y), float32(s.Radius), toColor(s.Stroke, ColText))
		if s.ID == a.hover {
			rl.DrawCircleLines(int32(s.X), int32(s.Y), float32(s.Radius)+1, toColor(s.Stroke, ColText))
		}
	}
}

func (a *App) drawLabels() {
	for _, l := range a.Scene.Labels() {
		size := int32(18)
		w := rl.MeasureText(l.Text, size)
		a.drawText(l.Text, int(l.X)-int(w)/2, int(l.Y), int(size), ColText)
	}
}

func (a *App) drawTooltip() {
	tip := a.Scene.Tooltip()
	if !tip.Visible {
		return
	}
	lines := interact.PlainText(tip.HTML)
	if len(lines) == 0 {
		return
	}
	const size, pad, lineH = 14, 8, 18
	var w int32
	for _, line := range lines {
		if lw := rl.MeasureText(line, size); lw > w {
			w = lw
		}
	}
	box := rl.NewRectangle(0, 0, float32(w+2*pad), float32(len(lines)*lineH+2*pad))
	box.X = float32(a.mouse.X) + 14
	box.Y = float32(a.mouse.Y) + 14
	if box.X+box.Width > float32(a.Width) {
		box.X = float32(a.mouse.X) - box.Width - 14
	}
	if box.Y+box.Height > float32(a.Height) {
		box.Y = float32(a.mouse.Y) - box.Height - 14
	}
	rl.DrawRectangleRec(box, ColTooltip)
	rl.DrawRectangleLinesEx(box, 1, ColTextDim)
	for i, line := range lines {
		a.drawText(strings.TrimSpace(line), int(box.X)+pad, int(box.Y)+pad+i*lineH, size, ColText)
	}
}

// drawTrace plots the alpha history inside the given rectangle.
func (a *App) drawTrace(x, y, width, height int) {
	trace := a.Chart.AlphaTrace()
	if len(trace) > traceLimit {
		trace = trace[len(trace)-traceLimit:]
	}
	if len(trace) < 2 {
		return
	}
	points := make([]rl.Vector2, len(trace))
	for i, v := range trace {
		px := float32(x) + float32(i)/float32(len(trace)-1)*float32(width)
		py := float32(y+height) - float32(v)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, ColAccent)
}
