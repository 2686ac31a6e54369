package render

import "math"

type Shape struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
	Fill   string  `json:"fill"`
	Stroke string  `json:"stroke"`
}

type Label struct {
	Class string  `json:"class"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// TooltipState records what the tooltip shows and how often it was toggled.
type TooltipState struct {
	Visible bool
	HTML    string
	At      Pointer
	Shows   int
	Hides   int
}

// Scene keeps everything a Surface and Tooltip are told in memory. Shapes
// are kept in creation order, which is also the paint order.
type Scene struct {
	width   float64
	height  float64
	shapes  []Shape
	index   map[string]int
	labels  []Label
	enter   map[string]PointerHandler
	leave   map[string]PointerHandler
	tooltip TooltipState
}

func NewScene(width, height float64) *Scene {
	return &Scene{
		width:  width,
		height: height,
		index:  make(map[string]int),
		enter:  make(map[string]PointerHandler),
		leave:  make(map[string]PointerHandler),
	}
}

func (s *Scene) Size() (float64, float64) { return s.width, s.height }

func (s *Scene) CreateNode(id string) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.shapes)
	s.shapes = append(s.shapes, Shape{ID: id})
}

func (s *Scene) shape(id string) *Shape {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return &s.shapes[i]
}

func (s *Scene) SetRadius(id string, r float64) {
	if sh := s.shape(id); sh != nil {
		sh.Radius = r
	}
}

func (s *Scene) SetPosition(id string, x, y float64) {
	if sh := s.shape(id); sh != nil {
		sh.X, sh.Y = x, y
	}
}

func (s *Scene) SetFillColor(id string, color string) {
	if sh := s.shape(id); sh != nil {
		sh.Fill = color
	}
}

func (s *Scene) SetStrokeColor(id string, color string) {
	if sh := s.shape(id); sh != nil {
		sh.Stroke = color
	}
}

func (s *Scene) RemoveLabels(class string) {
	kept := s.labels[:0]
	for _, l := range s.labels {
		if l.Class != class {
			kept = append(kept, l)
		}
	}
	s.labels = kept
}

func (s *Scene) AddLabel(class, text string, x, y float64) {
	s.labels = append(s.labels, Label{Class: class, Text: text, X: x, Y: y})
}

func (s *Scene) OnEnter(id string, h PointerHandler) { s.enter[id] = h }
func (s *Scene) OnLeave(id string, h PointerHandler) { s.leave[id] = h }

func (s *Scene) Show(html string, at Pointer) {
	s.tooltip.Visible = true
	s.tooltip.HTML = html
	s.tooltip.At = at
	s.tooltip.Shows++
}

func (s *Scene) Hide() {
	s.tooltip.Visible = false
	s.tooltip.Hides++
}

func (s *Scene) Tooltip() TooltipState { return s.tooltip }

// Shapes returns a copy in paint order.
func (s *Scene) Shapes() []Shape {
	out := make([]Shape, len(s.shapes))
	copy(out, s.shapes)
	return out
}

func (s *Scene) Shape(id string) (Shape, bool) {
	if sh := s.shape(id); sh != nil {
		return *sh, true
	}
	return Shape{}, false
}

func (s *Scene) Labels() []Label {
	out := make([]Label, len(s.labels))
	copy(out, s.labels)
	return out
}

func (s *Scene) LabelsOf(class string) []Label {
	var out []Label
	for _, l := range s.labels {
		if l.Class == class {
			out = append(out, l)
		}
	}
	return out
}

// Enter fires the enter handler registered for id, if any.
func (s *Scene) Enter(id string, p Pointer) bool {
	h, ok := s.enter[id]
	if ok && h != nil {
		h(id, p)
	}
	return ok
}

func (s *Scene) Leave(id string, p Pointer) bool {
	h, ok := s.leave[id]
	if ok && h != nil {
		h(id, p)
	}
	return ok
}

// HitTest returns the topmost shape under p. Later shapes paint over
// earlier ones, so the search runs backwards.
func (s *Scene) HitTest(p Pointer) (string, bool) {
	for i := len(s.shapes) - 1; i >= 0; i-- {
		sh := s.shapes[i]
		if sh.Radius <= 0 {
			continue
		}
		if math.Hypot(p.X-sh.X, p.Y-sh.Y) <= sh.Radius {
			return sh.ID, true
		}
	}
	return "", false
}
