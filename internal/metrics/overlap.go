package metrics

import (
	"math"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/force"
)

// Overlap is the fraction of nodes that intrude into a neighbour by more
// than tolerance pixels at the latest tick.
type Overlap struct {
	name      string
	tolerance float64
	ratio     float64
}

func NewOverlap(tolerance float64) *Overlap {
	return &Overlap{name: "overlap", tolerance: tolerance}
}

func (o *Overlap) Name() string { return o.name }

func (o *Overlap) Observe(nodes []bubble.Node, _ force.TickReport) {
	o.ratio = OverlapRatio(nodes, o.tolerance)
}

func (o *Overlap) Value() float64 { return o.ratio }
func (o *Overlap) Reset()         { o.ratio = 0 }

func OverlapRatio(nodes []bubble.Node, tolerance float64) float64 {
	if len(nodes) == 0 {
		return 0
	}
	hit := make([]bool, len(nodes))
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			d := math.Hypot(nodes[i].X-nodes[j].X, nodes[i].Y-nodes[j].Y)
			if nodes[i].Radius+nodes[j].Radius-d > tolerance {
				hit[i] = true
				hit[j] = true
			}
		}
	}
	n := 0
	for _, h := range hit {
		if h {
			n++
		}
	}
	return float64(n) / float64(len(nodes))
}
