package bubble

import (
	"math"
	"sort"
)

// Record is one input row after ingestion. Value is kept as text; turning it
// into a number is the node factory's job.
type Record struct {
	ID         string            `json:"id"`
	Value      string            `json:"value"`
	Category   string            `json:"category,omitempty"`
	Name       string            `json:"name,omitempty"`
	Confidence string            `json:"confidence,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) IsValid() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Node is a record turned into a circle. PX and PY hold the previous
// position; the simulation derives velocity from X-PX.
type Node struct {
	ID         string            `json:"id"`
	Value      float64           `json:"value"`
	Radius     float64           `json:"radius"`
	Category   string            `json:"category,omitempty"`
	Name       string            `json:"name,omitempty"`
	Confidence string            `json:"confidence,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
	Fill       string            `json:"fill"`
	Stroke     string            `json:"stroke"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	PX         float64           `json:"px"`
	PY         float64           `json:"py"`
}

func (n Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// Attr returns a grouping attribute by name. The fixed fields win over Meta.
func (n Node) Attr(name string) string {
	switch name {
	case "category", "":
		return n.Category
	case "confidence":
		return n.Confidence
	case "name":
		return n.Name
	case "id":
		return n.ID
	}
	return n.Meta[name]
}

// HasValidPosition reports whether both the current and previous positions
// are finite.
func (n Node) HasValidPosition() bool {
	return isFinite(n.X) && isFinite(n.Y) && isFinite(n.PX) && isFinite(n.PY)
}

// Clone returns a copy that shares nothing mutable with n.
func (n Node) Clone() Node {
	c := n
	if n.Meta != nil {
		c.Meta = make(map[string]string, len(n.Meta))
		for k, v := range n.Meta {
			c.Meta[k] = v
		}
	}
	return c
}

// CloneNodes deep-copies a node sequence.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Categories returns the distinct values of attr across nodes, sorted.
// Empty values are skipped.
func Categories(nodes []Node, attr string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, n := range nodes {
		v := n.Attr(attr)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
