// Package coupling measures how strongly two identity patterns interact,
// the gate for photon absorption and emission.
package coupling

import (
	"math"

	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

// Evaluator computes pair interaction strength from the overlap of the two
// patterns' echo signatures at their current anchors. The same value gates
// absorption and emission, so eligibility is symmetric by construction.
type Evaluator struct {
	quantum float64
}

// New builds an evaluator. quantum is the reference photon energy for the
// resonance factor; a photon at exactly that energy couples at its
// geometric overlap, detuned photons couple weaker or saturate at twice
// the reference.
func New(quantum float64) *Evaluator {
	if quantum <= 0 {
		quantum = 13.6
	}
	return &Evaluator{quantum: quantum}
}

func (e *Evaluator) Quantum() float64 { return e.quantum }

// Strength returns the normalized signature overlap of two patterns in
// [0, 1]. Disjoint footprints couple at zero; identical aligned footprints
// at one.
func (e *Evaluator) Strength(a, b *pattern.Pattern) float64 {
	sa := signature(a)
	sb := signature(b)

	dot := 0.0
	for c, ra := range sa {
		if rb, ok := sb[c]; ok {
			dot += ra * rb
		}
	}
	if dot == 0 {
		return 0
	}

	s := dot / (norm(sa) * norm(sb))
	s *= e.resonance(a) * e.resonance(b)

	if s > 1 {
		return 1
	}
	return s
}

// resonance is the energy matching factor for photons: unity at the
// reference quantum, clamped at twice it.
func (e *Evaluator) resonance(p *pattern.Pattern) float64 {
	if p.Species() != pattern.Photon || p.Content() <= 0 {
		return 1
	}
	f := p.Content() / e.quantum
	if f > 2 {
		f = 2
	}
	return f
}

func signature(p *pattern.Pattern) map[lattice.Coord]float64 {
	sig := make(map[lattice.Coord]float64, len(p.Nodes()))
	anchor := p.Anchor()
	for _, n := range p.Nodes() {
		sig[anchor.Add(n.Offset)] = math.Abs(n.Rate)
	}
	return sig
}

func norm(sig map[lattice.Coord]float64) float64 {
	t := 0.0
	for _, r := range sig {
		t += r * r
	}
	return math.Sqrt(t)
}
