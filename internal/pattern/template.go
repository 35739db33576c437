package pattern

import "github.com/san-kum/etmsim/internal/lattice"

// FootNode is one active node of a footprint: an offset from the anchor and
// the timing rate deposited there.
type FootNode struct {
	Offset lattice.Coord
	Rate   float64
}

// Template carries everything a species defines: footprint, polarity,
// return period, and steering mode. Instances copy a template at creation.
type Template struct {
	Species      Species
	Charge       int
	Period       int
	CoreRate     float64
	Steering     Steering
	FlavorPeriod int
	Nodes        []FootNode
}

// TemplateFor returns the species template. The footprints follow the
// validated node layouts: a compact core with symmetric interface shells
// for the charged species, a single node for the photon, and sparse
// mediator nodes for the neutrino.
func TemplateFor(s Species) (Template, error) {
	switch s {
	case Electron:
		return Template{
			Species:  Electron,
			Charge:   -1,
			Period:   4,
			CoreRate: 0.7,
			Steering: ChargeSteered,
			Nodes:    electronNodes(),
		}, nil
	case Positron:
		return Template{
			Species:  Positron,
			Charge:   1,
			Period:   4,
			CoreRate: 0.7,
			Steering: ChargeSteered,
			Nodes:    electronNodes(),
		}, nil
	case Photon:
		return Template{
			Species:  Photon,
			Charge:   0,
			Period:   1,
			CoreRate: 1.5,
			Steering: GradientSteered,
			Nodes: []FootNode{
				{lattice.Coord{}, 1.5},
			},
		}, nil
	case Proton:
		return Template{
			Species:  Proton,
			Charge:   1,
			Period:   12,
			CoreRate: 1.0,
			Steering: ChargeSteered,
			Nodes:    protonNodes(),
		}, nil
	case Neutron:
		return Template{
			Species:  Neutron,
			Charge:   0,
			Period:   14,
			CoreRate: 1.0,
			Steering: Inert,
			Nodes:    neutronNodes(),
		}, nil
	case Neutrino:
		return Template{
			Species:      Neutrino,
			Charge:       0,
			Period:       2,
			CoreRate:     0.1,
			Steering:     GradientSteered,
			FlavorPeriod: 1000,
			Nodes: []FootNode{
				{lattice.Coord{}, 0.1},
				{lattice.Coord{X: 3}, 0.05},
				{lattice.Coord{Y: 3}, 0.05},
			},
		}, nil
	default:
		return Template{}, ErrUnknownSpecies
	}
}

// electronNodes is the seven-node orbital-compatible footprint: core,
// four orbital interface nodes, two outer cloud nodes.
func electronNodes() []FootNode {
	return []FootNode{
		{lattice.Coord{}, 0.7},
		{lattice.Coord{X: 1}, 0.5},
		{lattice.Coord{X: -1}, 0.5},
		{lattice.Coord{Y: 1}, 0.5},
		{lattice.Coord{Y: -1}, 0.5},
		{lattice.Coord{X: 2}, 0.3},
		{lattice.Coord{X: -2}, 0.3},
	}
}

// protonNodes is the 23-node multi-shell footprint: nuclear core, primary
// stabilizing shell, intermediate shell, and outer edge connectors.
func protonNodes() []FootNode {
	return []FootNode{
		{lattice.Coord{}, 1.0},

		{lattice.Coord{X: 1}, 0.95},
		{lattice.Coord{X: -1}, 0.95},
		{lattice.Coord{Y: 1}, 0.95},
		{lattice.Coord{Y: -1}, 0.95},
		{lattice.Coord{Z: 1}, 0.95},
		{lattice.Coord{Z: -1}, 0.95},
		{lattice.Coord{X: 1, Y: 1}, 0.95},
		{lattice.Coord{X: -1, Y: -1}, 0.95},

		{lattice.Coord{X: 1, Z: 1}, 0.85},
		{lattice.Coord{X: -1, Z: -1}, 0.85},
		{lattice.Coord{Y: 1, Z: 1}, 0.85},
		{lattice.Coord{Y: -1, Z: -1}, 0.85},
		{lattice.Coord{X: 1, Y: 1, Z: 1}, 0.85},
		{lattice.Coord{X: -1, Y: -1, Z: -1}, 0.85},
		{lattice.Coord{X: 1, Y: -1}, 0.85},
		{lattice.Coord{X: -1, Y: 1}, 0.85},

		{lattice.Coord{X: 2}, 0.75},
		{lattice.Coord{X: -2}, 0.75},
		{lattice.Coord{Y: 2}, 0.75},
		{lattice.Coord{Y: -2}, 0.75},
		{lattice.Coord{X: 2, Y: 1}, 0.75},
		{lattice.Coord{X: -2, Y: -1}, 0.75},
	}
}

// neutronNodes is the eleven-node composite footprint: a weakened nuclear
// core shell, a bound-electron interface pair, and two sparse coordination
// mediator nodes.
func neutronNodes() []FootNode {
	return []FootNode{
		{lattice.Coord{}, 1.0},

		{lattice.Coord{X: 1}, 0.9},
		{lattice.Coord{X: -1}, 0.9},
		{lattice.Coord{Y: 1}, 0.9},
		{lattice.Coord{Y: -1}, 0.9},
		{lattice.Coord{Z: 1}, 0.9},
		{lattice.Coord{Z: -1}, 0.9},

		{lattice.Coord{X: 1, Y: 1}, 0.8},
		{lattice.Coord{X: -1, Y: -1}, 0.8},

		{lattice.Coord{X: 3}, 0.05},
		{lattice.Coord{Y: 3}, 0.05},
	}
}

// StabilityScore evaluates a species' coherence under a reference echo
// field strength. The field term saturates at strength 100.
func (t Template) StabilityScore(fieldStrength float64) float64 {
	field := fieldStrength / 100.0
	if field > 1 {
		field = 1
	}
	return t.CoreRate*0.8 + field*0.2
}
