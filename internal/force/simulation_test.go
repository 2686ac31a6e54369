package force

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/psmith94/gates-bubbles/internal/bubble"
)

func scatter(n int, seed int64, categories ...string) []bubble.Node {
	rng := rand.New(rand.NewSource(seed))
	nodes := make([]bubble.Node, n)
	for i := range nodes {
		x, y := rng.Float64()*940, rng.Float64()*600
		nodes[i] = bubble.Node{
			ID:     fmt.Sprintf("n%d", i),
			Radius: 2 + rng.Float64()*20,
			X:      x, Y: y, PX: x, PY: y,
		}
		if len(categories) > 0 {
			nodes[i].Category = categories[i%len(categories)]
		}
	}
	return nodes
}

func centroid(nodes []bubble.Node, keep func(bubble.Node) bool) bubble.Point {
	var sx, sy float64
	count := 0
	for _, n := range nodes {
		if keep != nil && !keep(n) {
			continue
		}
		sx += n.X
		sy += n.Y
		count++
	}
	return bubble.Point{X: sx / float64(count), Y: sy / float64(count)}
}

var _ = Describe("Simulation", func() {
	var (
		params Params
		sim    *Simulation
	)

	BeforeEach(func() {
		params = DefaultParams()
		sim = NewSimulation(NewEngine(params), scatter(40, 1), Unified(params.Center()), nil)
	})

	Describe("phases", func() {
		It("starts idle and does not tick", func() {
			Expect(sim.Phase()).To(Equal(Idle))
			before := sim.Nodes()
			r := sim.Tick()
			Expect(r.Phase).To(Equal(Idle))
			Expect(sim.Nodes()).To(Equal(before))
			Expect(sim.TickCount()).To(BeZero())
		})

		It("runs with full energy after Start", func() {
			sim.Start()
			Expect(sim.Phase()).To(Equal(Running))
			Expect(sim.Alpha()).To(Equal(1.0))
		})

		It("decays alpha strictly until it stops", func() {
			sim.Start()
			prev := sim.Alpha()
			sawSettling := false
			for sim.Phase() != Stopped {
				r := sim.Tick()
				if r.Phase == Stopped {
					Expect(r.Alpha).To(BeZero())
					break
				}
				Expect(r.Alpha).To(BeNumerically("<", prev))
				if r.Phase == Settling {
					sawSettling = true
					Expect(r.Alpha).To(BeNumerically("<", params.SettleAlpha))
				}
				prev = r.Alpha
			}
			Expect(sawSettling).To(BeTrue())
			expected := int(math.Ceil(math.Log(params.StopAlpha) / math.Log(params.Decay)))
			Expect(sim.TickCount()).To(BeNumerically("~", expected, 1))
		})

		It("keeps a stopped layout still", func() {
			sim.Start()
			sim.Settle(10000)
			Expect(sim.Phase()).To(Equal(Stopped))

			before := sim.Nodes()
			for i := 0; i < 5; i++ {
				r := sim.Tick()
				Expect(r.Moved).To(BeZero())
			}
			Expect(sim.Nodes()).To(Equal(before))
		})

		It("re-energises a stopped layout on Start", func() {
			sim.Start()
			sim.Settle(10000)
			sim.Start()
			Expect(sim.Phase()).To(Equal(Running))
			Expect(sim.Alpha()).To(Equal(1.0))
		})

		It("ignores Start while running", func() {
			sim.Start()
			sim.Tick()
			alpha := sim.Alpha()
			sim.Start()
			Expect(sim.Alpha()).To(Equal(alpha))
		})

		It("stops on request", func() {
			sim.Start()
			sim.Tick()
			sim.Stop()
			Expect(sim.Phase()).To(Equal(Stopped))
			Expect(sim.Alpha()).To(BeZero())
		})

		It("restarts from any phase with new targets", func() {
			sim.Start()
			for i := 0; i < 50; i++ {
				sim.Tick()
			}
			before := sim.Nodes()
			t := Unified(bubble.Point{X: 100, Y: 100})
			sim.Restart(t)
			Expect(sim.Alpha()).To(Equal(1.0))
			Expect(sim.Phase()).To(Equal(Running))
			Expect(sim.Targeting().Fallback).To(Equal(t.Fallback))
			Expect(sim.Nodes()).To(Equal(before))
		})
	})

	Describe("layout", func() {
		It("gathers nodes around the unified center", func() {
			sim.Start()
			sim.Settle(10000)
			c := centroid(sim.Nodes(), nil)
			Expect(c.X).To(BeNumerically("~", 470, 25))
			Expect(c.Y).To(BeNumerically("~", 300, 25))
		})

		It("separates groups towards their centers", func() {
			nodes := scatter(60, 3, "2008", "2009")
			t := Targeting{
				Centers: map[string]bubble.Point{
					"2008": {X: 313, Y: 300},
					"2009": {X: 627, Y: 300},
				},
				Fallback: params.Center(),
				Gain:     1.1,
			}
			s := NewSimulation(NewEngine(params), nodes, t, nil)
			s.Start()
			s.Settle(10000)

			left := centroid(s.Nodes(), func(n bubble.Node) bool { return n.Category == "2008" })
			right := centroid(s.Nodes(), func(n bubble.Node) bool { return n.Category == "2009" })
			Expect(left.X).To(BeNumerically("<", right.X))
			Expect(left.X).To(BeNumerically("~", 313, 60))
			Expect(right.X).To(BeNumerically("~", 627, 60))
		})

		It("pushes overlapping nodes apart", func() {
			nodes := []bubble.Node{
				{ID: "a", Radius: 20, X: 469, Y: 300, PX: 469, PY: 300},
				{ID: "b", Radius: 20, X: 471, Y: 300, PX: 471, PY: 300},
			}
			s := NewSimulation(NewEngine(params), nodes, Unified(params.Center()), nil)
			s.Start()
			for i := 0; i < 30; i++ {
				s.Tick()
			}
			a, _ := s.Node("a")
			b, _ := s.Node("b")
			Expect(b.X - a.X).To(BeNumerically(">", 2))
		})
	})

	Describe("observers", func() {
		It("receives every tick with a private copy", func() {
			var reports []TickReport
			sim.AddObserver(ObserverFunc(func(nodes []bubble.Node, r TickReport) {
				Expect(nodes).To(HaveLen(40))
				nodes[0].X = -1e9
				reports = append(reports, r)
			}))
			sim.Start()
			sim.Tick()
			sim.Tick()
			Expect(reports).To(HaveLen(2))
			Expect(reports[1].Tick).To(Equal(2))
			n, ok := sim.Node("n0")
			Expect(ok).To(BeTrue())
			Expect(n.X).NotTo(Equal(-1e9))
		})

		It("is not told about idle ticks", func() {
			called := 0
			sim.AddObserver(ObserverFunc(func([]bubble.Node, TickReport) { called++ }))
			sim.Tick()
			Expect(called).To(BeZero())
		})
	})

	Describe("faults", func() {
		It("isolates a node with a broken position", func() {
			nodes := scatter(10, 5)
			nodes[3].X = math.NaN()
			s := NewSimulation(NewEngine(params), nodes, Unified(params.Center()), nil)
			s.Start()
			r := s.Tick()

			Expect(r.Faults).NotTo(BeEmpty())
			Expect(errors.Is(r.Faults[0], bubble.ErrNumericInstability)).To(BeTrue())
			var nf *bubble.NumericFault
			Expect(errors.As(r.Faults[0], &nf)).To(BeTrue())
			Expect(nf.NodeID).To(Equal("n3"))

			for _, n := range s.Nodes() {
				Expect(n.HasValidPosition()).To(BeTrue(), n.ID)
			}
			bad, _ := s.Node("n3")
			Expect(bad.X).To(BeNumerically("~", 470, 50))

			for i := 0; i < 20; i++ {
				s.Tick()
			}
			Expect(s.Phase()).To(Equal(Running))
		})

		It("treats a bad radius as chargeless", func() {
			nodes := scatter(5, 9)
			nodes[0].Radius = -4
			nodes[1].Radius = math.Inf(1)
			s := NewSimulation(NewEngine(params), nodes, Unified(params.Center()), nil)
			s.Start()
			r := s.Tick()
			Expect(r.Faults).To(HaveLen(2))
			for _, n := range s.Nodes() {
				Expect(n.HasValidPosition()).To(BeTrue())
			}
		})
	})

	Describe("Run", func() {
		It("ticks until the context ends and interleaves the callback", func() {
			sim.Start()
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
			defer cancel()

			between := 0
			err := Run(ctx, sim, time.Millisecond, func() {
				between++
				Expect(between).To(Equal(sim.TickCount()))
			})
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
			Expect(between).To(BeNumerically(">", 0))
		})
	})
})
