package pattern

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/san-kum/etmsim/internal/lattice"
)

// Pattern is one live identity on the lattice: a species template scaled to
// a resolution factor, plus the phase memory and anchor the recurrence rule
// works from. It carries no velocity; all repositioning derives from the
// echo field and the phase counter.
type Pattern struct {
	id    string
	tmpl  Template
	scale int
	nodes []FootNode // template offsets pre-multiplied by scale

	anchor   lattice.Coord
	phase    int
	lastMove lattice.Coord
	hasMoved bool

	content  float64 // photon energy content
	absorbed float64
}

// New instantiates a species at an anchor. Scale stretches the footprint
// offsets by an integer factor; scale 1 is the baseline resolution.
func New(s Species, scale int, anchor lattice.Coord) (*Pattern, error) {
	if scale < 1 {
		return nil, errors.Wrapf(ErrScale, "got %d", scale)
	}
	tmpl, err := TemplateFor(s)
	if err != nil {
		return nil, err
	}
	nodes := make([]FootNode, len(tmpl.Nodes))
	for i, n := range tmpl.Nodes {
		nodes[i] = FootNode{Offset: n.Offset.Scale(scale), Rate: n.Rate}
	}
	return &Pattern{
		id:     uuid.NewString()[:8],
		tmpl:   tmpl,
		scale:  scale,
		nodes:  nodes,
		anchor: anchor,
	}, nil
}

func (p *Pattern) ID() string { return p.id }

func (p *Pattern) Species() Species { return p.tmpl.Species }

func (p *Pattern) Charge() int { return p.tmpl.Charge }

func (p *Pattern) Period() int { return p.tmpl.Period }

func (p *Pattern) CoreRate() float64 { return p.tmpl.CoreRate }

func (p *Pattern) Scale() int { return p.scale }

func (p *Pattern) Steering() Steering { return p.tmpl.Steering }

func (p *Pattern) Anchor() lattice.Coord { return p.anchor }

func (p *Pattern) SetAnchor(c lattice.Coord) { p.anchor = c }

// Nodes returns the scaled footprint relative to the anchor. Callers must
// not modify the returned slice.
func (p *Pattern) Nodes() []FootNode { return p.nodes }

// Footprint returns the absolute coordinates of every active node.
func (p *Pattern) Footprint() []lattice.Coord {
	out := make([]lattice.Coord, len(p.nodes))
	for i, n := range p.nodes {
		out[i] = p.anchor.Add(n.Offset)
	}
	return out
}

// Reach is the largest per-axis extent of the scaled footprint, used to
// judge whether a placement fits inside the lattice.
func (p *Pattern) Reach() int {
	r := 0
	for _, n := range p.nodes {
		if d := lattice.Chebyshev(lattice.Coord{}, n.Offset); d > r {
			r = d
		}
	}
	return r
}

// AppendDeposits appends this tick's echo contributions to dst. Charged
// species sign their deposits with their polarity; neutral species leave
// the field untouched and influence others only through their footprint
// signature.
func (p *Pattern) AppendDeposits(dst []lattice.Deposit, reinforcement float64) []lattice.Deposit {
	if p.tmpl.Charge == 0 {
		return dst
	}
	sign := float64(p.tmpl.Charge)
	for _, n := range p.nodes {
		dst = append(dst, lattice.Deposit{
			At:     p.anchor.Add(n.Offset),
			Amount: sign * n.Rate * reinforcement,
		})
	}
	return dst
}

// AdvancePhase moves the phase counter one tick and reports whether the
// pattern has reached its return threshold. The counter saturates at the
// period; it resets only when a return actually commits.
func (p *Pattern) AdvancePhase() bool {
	if p.phase < p.tmpl.Period {
		p.phase++
	}
	return p.phase >= p.tmpl.Period
}

func (p *Pattern) ResetPhase() { p.phase = 0 }

// SetPhase seeds the counter at placement so pattern returns can be
// staggered across a trial.
func (p *Pattern) SetPhase(v int) {
	if v < 0 {
		v = 0
	}
	if v > p.tmpl.Period {
		v = p.tmpl.Period
	}
	p.phase = v
}

func (p *Pattern) Phase() int { return p.phase }

// LastMove returns the most recent return direction, when one exists. It is
// tie-break memory only and never drives motion by itself.
func (p *Pattern) LastMove() (lattice.Coord, bool) {
	return p.lastMove, p.hasMoved
}

func (p *Pattern) RecordMove(d lattice.Coord) {
	p.lastMove = d
	p.hasMoved = true
}

// Flavor reports the oscillating identity at a tick. Only the neutrino
// cycles; other species report an empty flavor.
func (p *Pattern) Flavor(tick int) string {
	if p.tmpl.FlavorPeriod <= 0 {
		return ""
	}
	return FlavorCycle[(tick/p.tmpl.FlavorPeriod)%len(FlavorCycle)]
}

// SetContent fixes a photon's carried energy.
func (p *Pattern) SetContent(e float64) { p.content = e }

func (p *Pattern) Content() float64 { return p.content }

// Absorb credits captured energy to the pattern's ledger.
func (p *Pattern) Absorb(e float64) { p.absorbed += e }

// Release debits the ledger for an emission.
func (p *Pattern) Release(e float64) error {
	if e > p.absorbed {
		return errors.Wrapf(ErrEnergy, "have %.4f, need %.4f", p.absorbed, e)
	}
	p.absorbed -= e
	return nil
}

func (p *Pattern) AbsorbedEnergy() float64 { return p.absorbed }

// Energy is the conserved timing energy of the pattern. Photons carry their
// content directly; other species combine the kinetic term (timing rate over
// return period), the calibrated stability term, and any absorbed energy.
func (p *Pattern) Energy(kineticScale, stabilityScale float64) float64 {
	if p.tmpl.Species == Photon {
		return p.content
	}
	kinetic := kineticScale * p.tmpl.CoreRate / float64(p.tmpl.Period)
	stability := stabilityScale * p.tmpl.StabilityScore(100.0)
	return kinetic + stability + p.absorbed
}

// StabilityScore exposes the template evaluation for diagnostics.
func (p *Pattern) StabilityScore(fieldStrength float64) float64 {
	return p.tmpl.StabilityScore(fieldStrength)
}

// Clone copies the live state. Footprint data is immutable and shared.
func (p *Pattern) Clone() *Pattern {
	c := *p
	return &c
}
