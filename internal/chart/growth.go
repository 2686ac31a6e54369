package chart

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// growth eases every bubble's radius from zero to its final size.
type growth struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
	target []float64
	done   bool
}

func newGrowth(fps int, frequency float64, targets []float64) *growth {
	g := &growth{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, 1.0),
		pos:    make([]float64, len(targets)),
		vel:    make([]float64, len(targets)),
		target: append([]float64(nil), targets...),
	}
	g.done = len(targets) == 0
	return g
}

// step advances every spring one frame and reports whether all of them
// have arrived.
func (g *growth) step() bool {
	if g.done {
		return true
	}
	done := true
	for i := range g.pos {
		p, v := g.spring.Update(g.pos[i], g.vel[i], g.target[i])
		if math.Abs(p-g.target[i]) < 0.01 && math.Abs(v) < 0.01 {
			p, v = g.target[i], 0
		} else {
			done = false
		}
		g.pos[i], g.vel[i] = p, v
	}
	g.done = done
	return done
}

func (g *growth) radius(i int) float64 { return g.pos[i] }
