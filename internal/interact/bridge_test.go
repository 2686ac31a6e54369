package interact

import (
	"errors"
	"testing"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/render"
	"github.com/psmith94/gates-bubbles/internal/scale"
)

type nodeMap map[string]bubble.Node

func (m nodeMap) Node(id string) (bubble.Node, bool) {
	n, ok := m[id]
	return n, ok
}

type fakeTooltip struct {
	shows []string
	hides int
}

func (f *fakeTooltip) Show(html string, _ render.Pointer) { f.shows = append(f.shows, html) }
func (f *fakeTooltip) Hide()                              { f.hides++ }

func setup(t *testing.T) (*Bridge, *render.Scene, *fakeTooltip, *scale.Scaler) {
	t.Helper()
	sc, err := scale.New(scale.DefaultOptions(), 6000)
	if err != nil {
		t.Fatal(err)
	}
	nodes := nodeMap{
		"p1": {ID: "p1", Name: "Pump <A>", Value: 1250, Category: "2009"},
		"p2": {ID: "p2", Name: "Valve", Value: 12.5, Category: "2010"},
	}
	scene := render.NewScene(940, 600)
	for id, n := range nodes {
		scene.CreateNode(id)
		scene.SetStrokeColor(id, sc.Stroke(n.Value))
	}
	tip := &fakeTooltip{}
	return NewBridge(nodes, sc, scene, tip, "", nil), scene, tip, sc
}

func TestHoverRoundTrip(t *testing.T) {
	b, scene, tip, sc := setup(t)

	if err := b.HoverStart("p1", render.Pointer{X: 10, Y: 10}); err != nil {
		t.Fatal(err)
	}
	sh, _ := scene.Shape("p1")
	if sh.Stroke != "black" {
		t.Errorf("hover stroke = %q, want black", sh.Stroke)
	}
	if id, ok := b.Hovered(); !ok || id != "p1" {
		t.Errorf("hovered = %q %v", id, ok)
	}

	if err := b.HoverEnd("p1", render.Pointer{}); err != nil {
		t.Fatal(err)
	}
	sh, _ = scene.Shape("p1")
	want := scale.Darker(sc.Color(1250))
	if sh.Stroke != want {
		t.Errorf("restored stroke = %q, want %q", sh.Stroke, want)
	}
	if tip.hides != 1 {
		t.Errorf("hide called %d times, want 1", tip.hides)
	}
	if len(tip.shows) != 1 {
		t.Errorf("show called %d times, want 1", len(tip.shows))
	}
	if _, ok := b.Hovered(); ok {
		t.Error("still hovered after HoverEnd")
	}
}

func TestUnknownNodeHasNoSideEffects(t *testing.T) {
	b, scene, tip, _ := setup(t)
	before := scene.Shapes()

	err := b.HoverStart("ghost", render.Pointer{})
	if !errors.Is(err, bubble.ErrUnknownNode) {
		t.Fatalf("err = %v", err)
	}
	err = b.HoverEnd("ghost", render.Pointer{})
	if !errors.Is(err, bubble.ErrUnknownNode) {
		t.Fatalf("err = %v", err)
	}
	if len(tip.shows) != 0 || tip.hides != 0 {
		t.Errorf("tooltip touched: %d shows, %d hides", len(tip.shows), tip.hides)
	}
	after := scene.Shapes()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("shape %s changed", before[i].ID)
		}
	}
}

func TestContent(t *testing.T) {
	b, _, _, _ := setup(t)
	got := b.Content(bubble.Node{Name: "Pump <A>", Value: 1250, Category: "2009"})
	want := `<span class="name">Asset Name:</span><span class="value"> Pump &lt;A&gt;</span><br/>` +
		`<span class="name">Replacement Value:</span><span class="value"> $1,250</span><br/>` +
		`<span class="name">Asset Class:</span><span class="value"> 2009</span>`
	if got != want {
		t.Errorf("content =\n%s\nwant\n%s", got, want)
	}
}

func TestMoney(t *testing.T) {
	b, _, _, _ := setup(t)
	tests := []struct {
		v    float64
		want string
	}{
		{0, "$0"},
		{999, "$999"},
		{1000, "$1,000"},
		{4106000, "$4,106,000"},
		{12.5, "$12.50"},
		{1234.567, "$1,234.57"},
	}
	for _, tt := range tests {
		if got := b.Money(tt.v); got != tt.want {
			t.Errorf("Money(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
