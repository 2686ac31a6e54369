package force

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/psmith94/gates-bubbles/internal/bubble"
)

func running(nodes []bubble.Node) State {
	return State{Nodes: nodes, Alpha: 1, Phase: Running}
}

func stepN(e *Engine, s State, t Targeting, n int) State {
	for i := 0; i < n; i++ {
		s, _ = e.Step(s, t)
	}
	return s
}

var _ = Describe("Engine", func() {
	var t Targeting

	BeforeEach(func() {
		t = Unified(DefaultParams().Center())
	})

	It("does not touch its input", func() {
		in := running(scatter(20, 2))
		snapshot := in.Clone()
		out, r := NewEngine(DefaultParams()).Step(in, t)
		Expect(in).To(Equal(snapshot))
		Expect(out.Tick).To(Equal(1))
		Expect(r.Moved).To(Equal(20))
		Expect(out.Alpha).To(BeNumerically("~", 0.99, 1e-12))
	})

	It("returns stopped states unchanged", func() {
		in := State{Nodes: scatter(5, 2), Phase: Stopped}
		out, r := NewEngine(DefaultParams()).Step(in, t)
		Expect(out).To(Equal(in))
		Expect(r.Moved).To(BeZero())
	})

	It("stops without moving once alpha falls below the floor", func() {
		in := running(scatter(5, 2))
		in.Alpha = 0.005
		out, r := NewEngine(DefaultParams()).Step(in, t)
		Expect(r.Phase).To(Equal(Stopped))
		Expect(out.Alpha).To(BeZero())
		Expect(out.Nodes).To(Equal(in.Nodes))
	})

	It("matches the exact pass when theta is tiny", func() {
		exact := DefaultParams()
		exact.Theta = 0
		tree := DefaultParams()
		tree.Theta = 1e-6

		a := stepN(NewEngine(exact), running(scatter(80, 4)), t, 25)
		b := stepN(NewEngine(tree), running(scatter(80, 4)), t, 25)
		for i := range a.Nodes {
			Expect(b.Nodes[i].X).To(BeNumerically("~", a.Nodes[i].X, 1e-6))
			Expect(b.Nodes[i].Y).To(BeNumerically("~", a.Nodes[i].Y, 1e-6))
		}
	})

	It("stays close to the exact pass at the default theta", func() {
		exact := DefaultParams()
		exact.Theta = 0

		a, _ := NewEngine(exact).Step(running(scatter(150, 6)), t)
		b, _ := NewEngine(DefaultParams()).Step(running(scatter(150, 6)), t)
		for i := range a.Nodes {
			Expect(b.Nodes[i].X).To(BeNumerically("~", a.Nodes[i].X, 2.0))
			Expect(b.Nodes[i].Y).To(BeNumerically("~", a.Nodes[i].Y, 2.0))
		}
	})

	It("gives identical results with several workers", func() {
		serial := DefaultParams()
		parallel := DefaultParams()
		parallel.Workers = 4

		a := stepN(NewEngine(serial), running(scatter(400, 8)), t, 10)
		b := stepN(NewEngine(parallel), running(scatter(400, 8)), t, 10)
		Expect(b).To(Equal(a))
	})

	It("skips coincident nodes instead of dividing by zero", func() {
		nodes := []bubble.Node{
			{ID: "a", Radius: 10, X: 100, Y: 100, PX: 100, PY: 100},
			{ID: "b", Radius: 10, X: 100, Y: 100, PX: 100, PY: 100},
			{ID: "c", Radius: 10, X: 300, Y: 100, PX: 300, PY: 100},
		}
		out, r := NewEngine(DefaultParams()).Step(running(nodes), t)
		Expect(r.Faults).To(BeEmpty())
		for _, n := range out.Nodes {
			Expect(n.HasValidPosition()).To(BeTrue())
		}
	})

	It("routes nodes without a group center to the fallback", func() {
		grouped := Targeting{
			Centers:  map[string]bubble.Point{"x": {X: 10, Y: 10}},
			Fallback: bubble.Point{X: 500, Y: 500},
		}
		n := bubble.Node{Category: "y"}
		Expect(grouped.Target(&n)).To(Equal(bubble.Point{X: 500, Y: 500}))
		n.Category = "x"
		Expect(grouped.Target(&n)).To(Equal(bubble.Point{X: 10, Y: 10}))
	})
})
