package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

var _ = Describe("TickEngine", func() {
	var setup engine.Setup

	BeforeEach(func() {
		setup = engine.Setup{
			Dims:         [3]int{40, 11, 11},
			Boundary:     lattice.Reflect,
			Connectivity: 6,
		}
	})

	Describe("tick discipline", func() {
		It("moves every pattern at most one node per tick", func() {
			setup.InitialEcho = engine.InitialEcho{Shape: engine.GradientField, Axis: 0, Slope: 2.0}
			setup.Placements = []engine.Placement{
				{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 8, Y: 5, Z: 5}},
				{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 24, Y: 5, Z: 5}},
			}
			e, err := engine.New(setup)
			Expect(err).NotTo(HaveOccurred())

			prev := map[string]lattice.Coord{}
			for _, p := range e.Patterns() {
				prev[p.ID()] = p.Anchor()
			}
			for i := 0; i < 20; i++ {
				e.Advance()
				for _, p := range e.Patterns() {
					Expect(lattice.Chebyshev(prev[p.ID()], p.Anchor())).To(BeNumerically("<=", 1))
					prev[p.ID()] = p.Anchor()
				}
			}
		})

		It("owes nothing to history beyond the committed state", func() {
			setup.InitialEcho = engine.InitialEcho{Shape: engine.GradientField, Axis: 0, Slope: 1.2}
			setup.Placements = []engine.Placement{
				{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 20, Y: 5, Z: 5}, Displacement: lattice.Coord{X: 1}},
			}
			e, err := engine.New(setup)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 4; i++ {
				e.Advance()
			}
			c := e.Clone()
			for i := 0; i < 16; i++ {
				e.Advance()
				c.Advance()
				orig := e.Patterns()
				copied := c.Patterns()
				Expect(copied).To(HaveLen(len(orig)))
				for j := range orig {
					Expect(copied[j].Anchor()).To(Equal(orig[j].Anchor()))
				}
			}
		})
	})

	Describe("conservation", func() {
		It("keeps total pattern energy constant through annihilation and absorption", func() {
			setup.DetectionEvents = true
			setup.Placements = []engine.Placement{
				{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
				{Species: pattern.Positron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
				{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 30, Y: 5, Z: 5}},
			}
			e, err := engine.New(setup)
			Expect(err).NotTo(HaveOccurred())

			before := e.TotalEnergy()
			for i := 0; i < 10; i++ {
				e.Advance()
				Expect(e.TotalEnergy()).To(BeNumerically("~", before, 1e-4))
			}
			events := e.Events()
			Expect(events).NotTo(BeEmpty())
			Expect(events[0].Type).To(Equal(engine.EventAnnihilation))
		})
	})
})
