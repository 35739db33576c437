package diag

import (
	"math"

	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/lattice"
)

type EnergyDrift struct {
	name    string
	initial float64
	max     float64
	samples int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (d *EnergyDrift) Name() string { return d.name }

func (d *EnergyDrift) Observe(e *engine.TickEngine) {
	total := e.TotalEnergy()
	if d.samples == 0 {
		d.initial = total
	}
	d.samples++
	if d.initial != 0 {
		drift := math.Abs(total-d.initial) / math.Abs(d.initial)
		d.max = math.Max(d.max, drift)
	}
}

func (d *EnergyDrift) Value() float64 { return d.max }

func (d *EnergyDrift) Reset() {
	d.initial = 0
	d.max = 0
	d.samples = 0
}

type Separation struct {
	name string
	idA  string
	idB  string
	last float64
}

func NewSeparation(idA, idB string) *Separation {
	return &Separation{name: "separation", idA: idA, idB: idB, last: -1}
}

func (s *Separation) Name() string { return s.name }

func (s *Separation) Observe(e *engine.TickEngine) {
	a, okA := e.AnchorOf(s.idA)
	b, okB := e.AnchorOf(s.idB)
	if !okA || !okB {
		return
	}
	s.last = lattice.Distance(a, b)
}

// Value is the most recent observed distance, -1 before any observation.
func (s *Separation) Value() float64 { return s.last }

func (s *Separation) Reset() { s.last = -1 }

type AnchorDrift struct {
	name    string
	id      string
	start   lattice.Coord
	started bool
	max     float64
}

func NewAnchorDrift(id string) *AnchorDrift {
	return &AnchorDrift{name: "anchor_drift", id: id}
}

func (d *AnchorDrift) Name() string { return d.name }

func (d *AnchorDrift) Observe(e *engine.TickEngine) {
	anchor, ok := e.AnchorOf(d.id)
	if !ok {
		return
	}
	if !d.started {
		d.start = anchor
		d.started = true
	}
	d.max = math.Max(d.max, lattice.Distance(d.start, anchor))
}

func (d *AnchorDrift) Value() float64 { return d.max }

func (d *AnchorDrift) Reset() {
	d.started = false
	d.max = 0
}
