package layout

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/force"
	"github.com/psmith94/gates-bubbles/internal/render"
)

func yearNodes() []bubble.Node {
	years := []string{"2010", "2008", "2009"}
	confidence := []string{"High", "Low"}
	nodes := make([]bubble.Node, 12)
	for i := range nodes {
		x, y := float64(50+i*60), float64(100+i*30)
		nodes[i] = bubble.Node{
			ID:         fmt.Sprintf("a%d", i),
			Radius:     8,
			Category:   years[i%3],
			Confidence: confidence[i%2],
			X:          x, Y: y, PX: x, PY: y,
		}
	}
	nodes[11].Category = ""
	return nodes
}

func ids(nodes []bubble.Node) map[string]string {
	out := make(map[string]string, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n.Category
	}
	return out
}

var _ = Describe("Controller", func() {
	var (
		scene *render.Scene
		sim   *force.Simulation
		ctrl  *Controller
	)

	BeforeEach(func() {
		scene = render.NewScene(940, 600)
		p := force.DefaultParams()
		sim = force.NewSimulation(force.NewEngine(p), yearNodes(), force.Unified(p.Center()), nil)
		ctrl = NewController(DefaultSettings(), sim, scene, nil)
	})

	It("starts in the default mode with the two built-in views", func() {
		Expect(ctrl.Current().Key).To(Equal(AllKey))
		keys := []string{}
		for _, m := range ctrl.Modes() {
			keys = append(keys, m.Key)
		}
		Expect(keys).To(Equal([]string{AllKey, YearKey}))
	})

	It("spreads sorted groups across the middle third", func() {
		m := ctrl.SetMode(YearKey)
		Expect(m.Kind).To(Equal(Grouped))

		t := sim.Targeting()
		Expect(t.Gain).To(Equal(1.1))
		Expect(t.Centers).To(HaveLen(3))
		Expect(t.Centers["2008"].X).To(BeNumerically("~", 940.0/3, 1e-9))
		Expect(t.Centers["2009"].X).To(BeNumerically("~", 470, 1e-9))
		Expect(t.Centers["2010"].X).To(BeNumerically("~", 2*940.0/3, 1e-9))
		Expect(t.Centers["2009"].Y).To(Equal(300.0))

		labels := scene.LabelsOf("years")
		Expect(labels).To(HaveLen(3))
		Expect(labels[0]).To(Equal(render.Label{Class: "years", Text: "2008", X: 160, Y: 40}))
		Expect(labels[1].X).To(Equal(470.0))
		Expect(labels[2].X).To(Equal(780.0))
	})

	It("sends ungrouped nodes to the canvas center", func() {
		ctrl.SetMode(YearKey)
		t := sim.Targeting()
		n, ok := sim.Node("a11")
		Expect(ok).To(BeTrue())
		Expect(t.Target(&n)).To(Equal(bubble.Point{X: 470, Y: 300}))
	})

	It("clears captions when returning to the unified view", func() {
		ctrl.SetMode(YearKey)
		m := ctrl.SetMode(AllKey)
		Expect(m.Kind).To(Equal(Unified))
		Expect(scene.LabelsOf("years")).To(BeEmpty())
		Expect(sim.Targeting().Centers).To(BeEmpty())
		Expect(sim.Targeting().Gain).To(Equal(1.0))
	})

	It("does not pile up captions on repeated switches", func() {
		ctrl.SetMode(YearKey)
		ctrl.SetMode(YearKey)
		Expect(scene.LabelsOf("years")).To(HaveLen(3))
	})

	It("falls back to the unified view for unknown keys", func() {
		ctrl.SetMode(YearKey)
		m := ctrl.SetMode("decade")
		Expect(m.Key).To(Equal(AllKey))
		Expect(ctrl.Current().Key).To(Equal(AllKey))
		Expect(scene.LabelsOf("years")).To(BeEmpty())

		_, err := ctrl.Resolve("decade")
		Expect(errors.Is(err, bubble.ErrUnknownMode)).To(BeTrue())
	})

	It("recovers to the unified view even when the default is grouped", func() {
		settings := DefaultSettings()
		settings.DefaultMode = YearKey
		ctrl = NewController(settings, sim, scene, nil)
		Expect(ctrl.Current().Key).To(Equal(YearKey))

		ctrl.SetMode(YearKey)
		m := ctrl.SetMode("decade")
		Expect(m.Key).To(Equal(AllKey))
		Expect(m.Kind).To(Equal(Unified))
		Expect(sim.Targeting().Centers).To(BeEmpty())
		Expect(scene.LabelsOf("years")).To(BeEmpty())
	})

	It("keeps positions and re-energises on a switch", func() {
		sim.Start()
		for i := 0; i < 100; i++ {
			sim.Tick()
		}
		before := sim.Nodes()
		ctrl.SetMode(YearKey)
		Expect(sim.Nodes()).To(Equal(before))
		Expect(sim.Alpha()).To(Equal(1.0))
		Expect(sim.Phase()).To(Equal(force.Running))
	})

	It("keeps the node set through a round trip", func() {
		sim.Start()
		before := ids(sim.Nodes())
		for _, key := range []string{YearKey, AllKey, YearKey, "bogus", AllKey} {
			ctrl.SetMode(key)
			for i := 0; i < 40; i++ {
				sim.Tick()
			}
			Expect(sim.Len()).To(Equal(12))
			Expect(ids(sim.Nodes())).To(Equal(before))
		}
	})

	It("groups by any attribute through extra modes", func() {
		Expect(ctrl.Register(Mode{Key: "confidence", Kind: Grouped, Gain: 1.1, GroupBy: "confidence", CaptionClass: "confidence"})).To(Succeed())
		ctrl.SetMode(YearKey)
		ctrl.SetMode("confidence")

		Expect(scene.LabelsOf("years")).To(BeEmpty())
		labels := scene.LabelsOf("confidence")
		Expect(labels).To(HaveLen(2))
		Expect(labels[0].Text).To(Equal("High"))
		Expect(labels[0].X).To(Equal(160.0))
		Expect(labels[1].X).To(Equal(780.0))
		Expect(sim.Targeting().Centers).To(HaveKey("Low"))
	})

	It("honours pinned centers", func() {
		pinned := map[string]bubble.Point{"2008": {X: 200, Y: 300}, "2009": {X: 700, Y: 300}}
		Expect(ctrl.Register(Mode{Key: YearKey, Kind: Grouped, Gain: 1.1, CaptionClass: "years", Centers: pinned})).To(Succeed())
		ctrl.SetMode(YearKey)

		t := sim.Targeting()
		Expect(t.Centers).To(Equal(pinned))
		Expect(t.GroupBy).To(Equal("category"))
		labels := scene.LabelsOf("years")
		Expect(labels).To(HaveLen(2))
		Expect(labels[1]).To(Equal(render.Label{Class: "years", Text: "2009", X: 700, Y: 40}))
	})

	It("centers a single group", func() {
		nodes := []bubble.Node{{ID: "x", Category: "2008"}, {ID: "y", Category: "2008"}}
		centers := ctrl.Centers(DefaultModes()[1], nodes)
		Expect(centers["2008"].X).To(Equal(470.0))
		caps := ctrl.Captions(DefaultModes()[1], nodes)
		Expect(caps).To(ConsistOf(Caption{Text: "2008", X: 470, Y: 40}))
	})

	It("rejects modes without a key", func() {
		Expect(ctrl.Register(Mode{Kind: Unified})).NotTo(Succeed())
	})
})
