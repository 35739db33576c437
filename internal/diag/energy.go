package diag

import (
	"math"

	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/lattice"
)

// OrbitalParams calibrates the bound-state energy estimate. The defaults
// put the hydrogen-like ground state near -13.6 in field units.
type OrbitalParams struct {
	KineticScale   float64
	PotentialCoeff float64
	StabilityScale float64
	CoulombK       float64
}

func DefaultOrbitalParams() OrbitalParams {
	return OrbitalParams{
		KineticScale:   1000.0,
		PotentialCoeff: 0.003723,
		StabilityScale: 2.63,
		CoulombK:       13.6,
	}
}

// OrbitalEnergy estimates the binding energy of the pattern with the given
// id relative to a nuclear origin. It combines the pattern's timing rate,
// the local echo it sits in, its distance from the origin, and its
// structural stability.
func OrbitalEnergy(e *engine.TickEngine, id string, origin lattice.Coord, p OrbitalParams) (float64, error) {
	pat, err := e.PatternByID(id)
	if err != nil {
		return 0, err
	}
	kinetic := pat.CoreRate() / float64(pat.Period()) * p.KineticScale
	potential := -e.EchoAt(pat.Anchor()) * p.PotentialCoeff
	dist := lattice.Distance(pat.Anchor(), origin)
	radius := -p.CoulombK / math.Max(dist, 0.1)
	stability := pat.StabilityScore(100.0) * p.StabilityScale
	return kinetic + potential + radius + stability, nil
}
