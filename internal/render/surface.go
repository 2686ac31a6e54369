// Package render defines the drawing collaborators the chart talks to and
// an in-memory scene that implements them.
package render

type Pointer struct {
	X float64
	Y float64
}

type PointerHandler func(id string, p Pointer)

// Surface draws one circle per node plus free-standing text labels.
type Surface interface {
	CreateNode(id string)
	SetRadius(id string, r float64)
	SetPosition(id string, x, y float64)
	SetFillColor(id string, color string)
	SetStrokeColor(id string, color string)
	RemoveLabels(class string)
	AddLabel(class, text string, x, y float64)
	OnEnter(id string, h PointerHandler)
	OnLeave(id string, h PointerHandler)
}

type Tooltip interface {
	Show(html string, at Pointer)
	Hide()
}
