package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/psmith94/gates-bubbles/internal/chart"
	"github.com/psmith94/gates-bubbles/internal/layout"
	"github.com/psmith94/gates-bubbles/internal/render"
)

var (
	ColBg      = rl.NewColor(250, 250, 250, 255)
	ColText    = rl.NewColor(60, 60, 60, 255)
	ColTextDim = rl.NewColor(150, 150, 150, 255)
	ColTooltip = rl.NewColor(255, 255, 255, 235)
	ColAccent  = rl.NewColor(54, 144, 192, 255)
)

const (
	hudHeight  = 70
	fontPath   = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	traceLimit = 300
)

// App shows a chart in a raylib window. The window maps one pixel to one
// scene unit, with a status strip below the canvas.
type App struct {
	Chart   *chart.Chart
	Scene   *render.Scene
	Width   int32
	Height  int32
	Running bool
	Font    rl.Font

	hover string
	mouse render.Pointer
}

func initWindow(w, h int32, fps int) {
	rl.InitWindow(w, h+hudHeight, "bubbles")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	if !rl.FileExists(fontPath) {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(c *chart.Chart, scene *render.Scene) *App {
	w, h := scene.Size()
	return &App{
		Chart:   c,
		Scene:   scene,
		Width:   int32(w),
		Height:  int32(h),
		Running: true,
		Font:    loadFont(),
	}
}

// Run opens the window and blocks until it is closed or q is pressed.
func Run(c *chart.Chart, scene *render.Scene, fps int) {
	w, h := scene.Size()
	initWindow(int32(w), int32(h), fps)
	defer rl.CloseWindow()
	app := NewApp(c, scene)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

// Update applies input for this frame, then ticks the chart once.
func (a *App) Update() {
	switch {
	case rl.IsKeyPressed(rl.KeyA):
		a.Chart.ToggleView(layout.AllKey)
	case rl.IsKeyPressed(rl.KeyY):
		a.Chart.ToggleView(layout.YearKey)
	case rl.IsKeyPressed(rl.KeyM):
		a.Chart.ToggleView(a.nextMode())
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		a.Chart.Handle(chart.Event{Kind: chart.Reheat})
	}

	pos := rl.GetMousePosition()
	a.pointer(render.Pointer{X: float64(pos.X), Y: float64(pos.Y)})

	if a.Running {
		a.Chart.Tick()
	}
}

// pointer moves the hover to whatever bubble is under p.
func (a *App) pointer(p render.Pointer) {
	a.mouse = p
	id, ok := a.Scene.HitTest(p)
	if !ok {
		id = ""
	}
	if id == a.hover {
		return
	}
	if a.hover != "" {
		a.Scene.Leave(a.hover, p)
	}
	if id != "" {
		a.Scene.Enter(id, p)
	}
	a.hover = id
}

func (a *App) nextMode() string {
	modes := a.Chart.Modes()
	cur := a.Chart.Mode().Key
	for i, m := range modes {
		if m.Key == cur {
			return modes[(i+1)%len(modes)].Key
		}
	}
	return layout.AllKey
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawBubbles()
	a.drawLabels()
	a.drawTooltip()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	top := int(a.Height)
	rl.DrawLine(0, a.Height, a.Width, a.Height, ColTextDim)

	mode := a.Chart.Mode()
	a.drawText("bubbles", 20, top+12, 20, ColText)
	a.drawText(fmt.Sprintf(":: %s", mode.Key), 120, top+15, 16, ColTextDim)

	status := a.Chart.Phase().String()
	col := ColAccent
	if !a.Running {
		status = "paused"
		col = ColTextDim
	}
	a.drawText(status, int(a.Width)-120, top+12, 16, col)
	a.drawText(fmt.Sprintf("alpha %.4f  tick %d  %d bubbles", a.Chart.Alpha(), a.Chart.Ticks(), len(a.Chart.Nodes())), 20, top+40, 14, ColTextDim)
	a.drawText("[A] ALL  [Y] YEAR  [M] MODE  [SPACE] PAUSE  [R] REHEAT  [Q] QUIT", int(a.Width)-560, top+40, 14, ColTextDim)

	a.drawTrace(int(a.Width)/2-100, top+8, 200, 26)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
