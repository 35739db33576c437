package diag

import (
	"github.com/cockroachdb/errors"
)

// Physical reference values used to translate lattice units.
const (
	// ElectronVoltJoules converts eV to joules.
	ElectronVoltJoules = 1.60218e-19
	// PlanckJouleSeconds is the Planck constant.
	PlanckJouleSeconds = 6.62607015e-34
)

// ErrNoRuns is returned when a constant estimate gets no usable input.
var ErrNoRuns = errors.New("diag: no convergence runs to estimate from")

// ConvergenceRun is one attraction trial: the starting separation of an
// opposite-charge pair and the tick count until they met.
type ConvergenceRun struct {
	Separation float64
	Ticks      int
}

// CoulombEstimate derives the lattice coupling constant from convergence
// runs. Under constant echo-driven closure, separation grows with the
// square of the convergence time, so each run contributes
// separation/ticks^2 and the estimate is their mean.
func CoulombEstimate(runs []ConvergenceRun) (float64, error) {
	sum, n := 0.0, 0
	for _, r := range runs {
		if r.Ticks <= 0 {
			continue
		}
		t := float64(r.Ticks)
		sum += r.Separation / (t * t)
		n++
	}
	if n == 0 {
		return 0, ErrNoRuns
	}
	return sum / float64(n), nil
}

// FineStructure forms the dimensionless ratio of the coupling constant to
// the action quantum times the hop speed. On the lattice the hop speed is
// one node per tick.
func FineStructure(coulombK, quantum, hopSpeed float64) float64 {
	if quantum == 0 || hopSpeed == 0 {
		return 0
	}
	return coulombK / (quantum * hopSpeed)
}

// TickDurationSeconds maps one lattice tick to physical time by treating
// the energy quantum as a photon energy: the quantum's oscillation period
// divided by the pattern's timing rate.
func TickDurationSeconds(quantumEV, coreRate float64) float64 {
	if quantumEV <= 0 || coreRate <= 0 {
		return 0
	}
	joules := quantumEV * ElectronVoltJoules
	frequency := joules / PlanckJouleSeconds
	return (1.0 / frequency) / coreRate
}

// DerivedConstants bundles the calibration outputs of a convergence
// study.
type DerivedConstants struct {
	CoulombK      float64
	FineStructure float64
	TickSeconds   float64
	Runs          []ConvergenceRun
}

// DeriveConstants runs the full estimate chain over convergence runs.
// quantumEV is the energy quantum in eV and coreRate the timing rate of
// the converging species.
func DeriveConstants(runs []ConvergenceRun, quantumEV, coreRate float64) (DerivedConstants, error) {
	k, err := CoulombEstimate(runs)
	if err != nil {
		return DerivedConstants{}, err
	}
	return DerivedConstants{
		CoulombK:      k,
		FineStructure: FineStructure(k, quantumEV, 1.0),
		TickSeconds:   TickDurationSeconds(quantumEV, coreRate),
		Runs:          runs,
	}, nil
}
