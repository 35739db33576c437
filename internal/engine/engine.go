package engine

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/san-kum/etmsim/internal/coupling"
	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

// FieldShape selects the initial echo profile injected before tick zero.
type FieldShape int

const (
	// FlatField fills every node with the same value.
	FlatField FieldShape = iota
	// GradientField fills nodes with a linear ramp along one axis.
	GradientField
)

// InitialEcho describes the echo profile present before the first tick.
// Value is the flat level; Axis and Slope apply to GradientField only.
type InitialEcho struct {
	Shape FieldShape
	Value float64
	Axis  int
	Slope float64
}

// Placement seeds one pattern into the engine. Displacement, if nonzero,
// replaces the pattern's first recurrence step and is consumed on tick
// one. SeedEcho adds echo at the anchor before the run starts. Energy is
// the photon content; zero means the engine's quantum.
type Placement struct {
	Species      pattern.Species
	Scale        int
	Anchor       lattice.Coord
	Displacement lattice.Coord
	PhaseOffset  int
	SeedEcho     float64
	Energy       float64
}

// Setup carries everything needed to construct a TickEngine. Zero values
// for the tunables select the standard run: decay 0.95, reinforcement 1.0,
// coupling threshold 0.405, quantum 13.6, kinetic scale 1000, stability
// scale 2.63, no echo floor, detection off.
type Setup struct {
	Dims         [3]int
	Boundary     lattice.BoundaryPolicy
	Connectivity int

	DecayFactor    float64
	InheritAlpha   float64
	HybridLocal    float64
	HybridNeighbor float64
	Reinforcement  float64
	EchoFloor      float64

	InitialEcho InitialEcho
	Placements  []Placement

	CouplingThreshold float64
	Quantum           float64
	DetectionEvents   bool

	KineticScale   float64
	StabilityScale float64
}

// TickEngine advances one lattice, one echo field, and a set of patterns
// in lockstep. It is not safe for concurrent use.
type TickEngine struct {
	lat     *lattice.Lattice
	field   *lattice.EchoField
	coupler *coupling.Evaluator

	patterns []*pattern.Pattern
	pending  map[string]lattice.Coord

	tick           int
	reinforcement  float64
	floor          float64
	threshold      float64
	quantum        float64
	kineticScale   float64
	stabilityScale float64
	detection      bool

	events []Event

	deposits []lattice.Deposit
	eligible []bool
	skip     []bool
}

// New validates the setup and builds an engine positioned before tick
// zero: the initial echo is injected, seeds applied, and ownership
// stamped, but no tick has run.
func New(s Setup) (*TickEngine, error) {
	lat, err := lattice.New(s.Dims[0], s.Dims[1], s.Dims[2], s.Boundary, s.Connectivity)
	if err != nil {
		return nil, err
	}

	decay := s.DecayFactor
	if decay == 0 {
		decay = 0.95
	}
	if decay <= 0 || decay > 1 {
		return nil, errors.Wrapf(ErrSetup, "decay factor %v", decay)
	}
	alpha := s.InheritAlpha
	if alpha < 0 || alpha >= 1 {
		return nil, errors.Wrapf(ErrSetup, "inheritance alpha %v", alpha)
	}
	reinforcement := s.Reinforcement
	if reinforcement == 0 {
		reinforcement = 1.0
	}
	if reinforcement < 0 {
		return nil, errors.Wrapf(ErrSetup, "reinforcement %v", reinforcement)
	}
	if s.EchoFloor < 0 {
		return nil, errors.Wrapf(ErrSetup, "echo floor %v", s.EchoFloor)
	}
	if s.CouplingThreshold < 0 || s.CouplingThreshold > 1 {
		return nil, errors.Wrapf(ErrThreshold, "%v", s.CouplingThreshold)
	}

	field := lattice.NewEchoField(lat, decay, alpha)
	if s.HybridLocal != 0 || s.HybridNeighbor != 0 {
		field.SetHybridWeights(s.HybridLocal, s.HybridNeighbor)
	}
	switch s.InitialEcho.Shape {
	case FlatField:
		if s.InitialEcho.Value != 0 {
			field.InjectFlat(s.InitialEcho.Value)
		}
	case GradientField:
		if err := field.InjectGradient(s.InitialEcho.Axis, s.InitialEcho.Slope); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrSetup, "field shape %d", s.InitialEcho.Shape)
	}

	e := &TickEngine{
		lat:            lat,
		field:          field,
		coupler:        coupling.New(s.Quantum),
		reinforcement:  reinforcement,
		floor:          s.EchoFloor,
		threshold:      s.CouplingThreshold,
		quantum:        s.Quantum,
		kineticScale:   s.KineticScale,
		stabilityScale: s.StabilityScale,
		detection:      s.DetectionEvents,
	}
	if e.quantum <= 0 {
		e.quantum = 13.6
	}
	if e.threshold == 0 {
		e.threshold = 0.405
	}
	if e.kineticScale == 0 {
		e.kineticScale = 1000.0
	}
	if e.stabilityScale == 0 {
		e.stabilityScale = 2.63
	}

	for i, pl := range s.Placements {
		p, err := pattern.New(pl.Species, pl.Scale, pl.Anchor)
		if err != nil {
			return nil, errors.Wrapf(err, "placement %d", i)
		}
		if !lat.Contains(pl.Anchor) {
			return nil, errors.Wrapf(ErrPlacement, "placement %d: anchor %v outside %v lattice", i, pl.Anchor, s.Dims)
		}
		if !unitStep(pl.Displacement) {
			return nil, errors.Wrapf(ErrDisplacement, "placement %d: %v", i, pl.Displacement)
		}
		if lat.Boundary() != lattice.Periodic {
			for _, node := range p.Footprint() {
				if !lat.Contains(node) {
					return nil, errors.Wrapf(ErrFootprint, "placement %d: node %v", i, node)
				}
			}
		}
		p.SetPhase(pl.PhaseOffset)
		if pl.Species == pattern.Photon {
			content := pl.Energy
			if content <= 0 {
				content = e.quantum
			}
			p.SetContent(content)
		}
		if pl.SeedEcho > 0 {
			field.AddAt(pl.Anchor, pl.SeedEcho)
		}
		if !pl.Displacement.IsZero() {
			if e.pending == nil {
				e.pending = make(map[string]lattice.Coord)
			}
			e.pending[p.ID()] = pl.Displacement
		}
		e.patterns = append(e.patterns, p)
	}

	e.restamp()
	return e, nil
}

func unitStep(d lattice.Coord) bool {
	ok := func(v int) bool { return v >= -1 && v <= 1 }
	return ok(d.X) && ok(d.Y) && ok(d.Z)
}

// Advance runs exactly one tick: phase memory, field commit, recurrence,
// ownership, detection.
func (e *TickEngine) Advance() {
	e.tick++

	if cap(e.eligible) < len(e.patterns) {
		e.eligible = make([]bool, len(e.patterns))
		e.skip = make([]bool, len(e.patterns))
	}
	e.eligible = e.eligible[:len(e.patterns)]
	e.skip = e.skip[:len(e.patterns)]
	for i, p := range e.patterns {
		e.eligible[i] = p.AdvancePhase()
		e.skip[i] = false
	}

	e.deposits = e.deposits[:0]
	for _, p := range e.patterns {
		e.deposits = p.AppendDeposits(e.deposits, e.reinforcement)
	}
	e.field.Advance(e.deposits)

	if e.pending != nil {
		e.applyDisplacements()
	}
	e.runRecurrence()

	e.restamp()
	if e.detection {
		e.runDetection()
	}
}

// applyDisplacements consumes the one-shot initial steps. A displaced
// pattern takes that step instead of a scored one and does not score again
// this tick.
func (e *TickEngine) applyDisplacements() {
	var gone []int
	for i, p := range e.patterns {
		d, ok := e.pending[p.ID()]
		if !ok {
			continue
		}
		target, inside := e.lat.Resolve(p.Anchor().Add(d))
		if !inside {
			e.events = append(e.events, Event{
				Tick:     e.tick,
				Type:     EventBoundaryExit,
				At:       p.Anchor(),
				Patterns: []string{p.ID()},
				Energy:   p.Energy(e.kineticScale, e.stabilityScale),
			})
			gone = append(gone, i)
			continue
		}
		p.SetAnchor(target)
		p.RecordMove(d)
		p.ResetPhase()
		e.skip[i] = true
	}
	e.pending = nil
	e.remove(gone)
}

// remove drops the patterns at the given indices, preserving creation
// order, and keeps the scratch slices aligned.
func (e *TickEngine) remove(idx []int) {
	if len(idx) == 0 {
		return
	}
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		drop[i] = true
	}
	kept := e.patterns[:0]
	keptEligible := e.eligible[:0]
	keptSkip := e.skip[:0]
	for i, p := range e.patterns {
		if drop[i] {
			continue
		}
		kept = append(kept, p)
		keptEligible = append(keptEligible, e.eligible[i])
		keptSkip = append(keptSkip, e.skip[i])
	}
	for i := len(kept); i < len(e.patterns); i++ {
		e.patterns[i] = nil
	}
	e.patterns = kept
	e.eligible = keptEligible
	e.skip = keptSkip
}

// restamp rewrites node ownership from the live footprints.
func (e *TickEngine) restamp() {
	e.lat.ClearOwners()
	for i, p := range e.patterns {
		for _, node := range p.Footprint() {
			e.lat.StampOwner(node, i, p.Phase())
		}
	}
}

// Tick reports how many ticks have run.
func (e *TickEngine) Tick() int { return e.tick }

// Lattice exposes the engine's lattice for read-only inspection.
func (e *TickEngine) Lattice() *lattice.Lattice { return e.lat }

// Patterns returns the live patterns in creation order. The slice is a
// copy; the patterns are shared.
func (e *TickEngine) Patterns() []*pattern.Pattern {
	out := make([]*pattern.Pattern, len(e.patterns))
	copy(out, e.patterns)
	return out
}

// PatternByID returns the live pattern with the given id.
func (e *TickEngine) PatternByID(id string) (*pattern.Pattern, error) {
	for _, p := range e.patterns {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownPattern, "%s", id)
}

// AnchorOf reports the anchor of the pattern with the given id.
func (e *TickEngine) AnchorOf(id string) (lattice.Coord, bool) {
	for _, p := range e.patterns {
		if p.ID() == id {
			return p.Anchor(), true
		}
	}
	return lattice.Coord{}, false
}

// EchoAt reports the committed echo at c, zero outside the lattice.
func (e *TickEngine) EchoAt(c lattice.Coord) float64 { return e.field.Sample(c) }

// HybridEchoAt reports the blended local/neighbor echo at c.
func (e *TickEngine) HybridEchoAt(c lattice.Coord) float64 { return e.field.HybridAt(c) }

// Field exposes the echo field for read-only inspection.
func (e *TickEngine) Field() *lattice.EchoField { return e.field }

// Coupling evaluates the instantaneous coupling strength between two live
// patterns.
func (e *TickEngine) Coupling(idA, idB string) (float64, error) {
	a, err := e.PatternByID(idA)
	if err != nil {
		return 0, err
	}
	b, err := e.PatternByID(idB)
	if err != nil {
		return 0, err
	}
	return e.coupler.Strength(a, b), nil
}

// Events returns the recorded detection events in order.
func (e *TickEngine) Events() []Event {
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// Quantum reports the energy quantum used for photon defaults and
// resonance.
func (e *TickEngine) Quantum() float64 { return e.quantum }

// EnergyScales reports the kinetic and stability scale factors.
func (e *TickEngine) EnergyScales() (kinetic, stability float64) {
	return e.kineticScale, e.stabilityScale
}

// TotalEnergy sums the conserved energy of every live pattern.
func (e *TickEngine) TotalEnergy() float64 {
	total := 0.0
	for _, p := range e.patterns {
		total += p.Energy(e.kineticScale, e.stabilityScale)
	}
	return total
}

// TotalEcho sums the committed field.
func (e *TickEngine) TotalEcho() float64 { return e.field.Total() }

// Clone returns an independent engine at the same committed state.
// Advancing the clone and the original produces identical trajectories.
func (e *TickEngine) Clone() *TickEngine {
	nx, ny, nz := e.lat.Dims()
	lat, _ := lattice.New(nx, ny, nz, e.lat.Boundary(), e.lat.Connectivity())
	field := lattice.NewEchoField(lat, e.field.Decay(), e.field.Alpha())
	field.SetHybridWeights(e.field.HybridWeights())
	field.Restore(e.field.Snapshot())

	c := &TickEngine{
		lat:            lat,
		field:          field,
		coupler:        coupling.New(e.quantum),
		tick:           e.tick,
		reinforcement:  e.reinforcement,
		floor:          e.floor,
		threshold:      e.threshold,
		quantum:        e.quantum,
		kineticScale:   e.kineticScale,
		stabilityScale: e.stabilityScale,
		detection:      e.detection,
	}
	c.patterns = make([]*pattern.Pattern, len(e.patterns))
	for i, p := range e.patterns {
		c.patterns[i] = p.Clone()
	}
	if e.pending != nil {
		c.pending = make(map[string]lattice.Coord, len(e.pending))
		for id, d := range e.pending {
			c.pending[id] = d
		}
	}
	c.events = make([]Event, len(e.events))
	copy(c.events, e.events)
	c.restamp()
	return c
}

// Emit debits energy from the pattern with the given id and spawns a
// photon one step away carrying it. The photon must couple to the source
// at or above the engine threshold, checked before any energy moves.
func (e *TickEngine) Emit(id string, energy float64, dir lattice.Coord) (string, error) {
	src, err := e.PatternByID(id)
	if err != nil {
		return "", err
	}
	if energy <= 0 {
		return "", errors.Wrapf(ErrEmission, "energy %v", energy)
	}
	if dir.IsZero() || !unitStep(dir) {
		return "", errors.Wrapf(ErrEmission, "direction %v is not a unit step", dir)
	}
	target, inside := e.lat.Resolve(src.Anchor().Add(dir))
	if !inside {
		return "", errors.Wrapf(ErrEmission, "target %v outside lattice", src.Anchor().Add(dir))
	}
	ph, err := pattern.New(pattern.Photon, 1, target)
	if err != nil {
		return "", err
	}
	ph.SetContent(energy)
	if s := e.coupler.Strength(src, ph); s < e.threshold {
		return "", errors.Wrapf(ErrCouplingWeak, "%.3f < %.3f", s, e.threshold)
	}
	if err := src.Release(energy); err != nil {
		return "", err
	}
	e.patterns = append(e.patterns, ph)
	e.events = append(e.events, Event{
		Tick:     e.tick,
		Type:     EventEmission,
		At:       target,
		Patterns: []string{src.ID(), ph.ID()},
		Energy:   energy,
	})
	e.restamp()
	return ph.ID(), nil
}

// supported reports whether the local echo clears the floor; with the
// floor disabled everything is supported.
func (e *TickEngine) supported(p *pattern.Pattern) bool {
	if e.floor <= 0 {
		return true
	}
	return math.Abs(e.field.HybridAt(p.Anchor())) >= e.floor
}
