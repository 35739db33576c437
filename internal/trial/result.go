package trial

import (
	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/lattice"
)

// PatternState is one pattern's recorded state at a sampled tick.
type PatternState struct {
	ID      string  `json:"id"`
	Species string  `json:"species"`
	Scale   int     `json:"scale"`
	Anchor  [3]int  `json:"anchor"`
	Phase   int     `json:"phase"`
	Energy  float64 `json:"energy"`
	Flavor  string  `json:"flavor,omitempty"`
}

// Sample is the recorded engine state at one tick.
type Sample struct {
	Tick        int            `json:"tick"`
	TotalEnergy float64        `json:"total_energy"`
	TotalEcho   float64        `json:"total_echo"`
	Patterns    []PatternState `json:"patterns"`
}

// Validation holds the post-run consistency flags. Flags, not errors: a
// flagged run still returns its full record and the caller decides what a
// flag means for its study.
type Validation struct {
	EnergyDrift    float64 `json:"energy_drift"`
	DriftTolerance float64 `json:"drift_tolerance"`
	DriftExceeded  bool    `json:"drift_exceeded"`
	// LostPatterns is the net drop in live pattern count over the run.
	// Detection events account for the intentional removals.
	LostPatterns int `json:"lost_patterns"`
}

// Result is the full record of one trial.
type Result struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Ticks      int                `json:"ticks"`
	Dims       [3]int             `json:"dims"`
	Samples    []Sample           `json:"samples"`
	Events     []engine.Event     `json:"events"`
	Metrics    map[string]float64 `json:"metrics"`
	Validation Validation         `json:"validation"`
	FinalEcho  []float64          `json:"-"`
}

// FinalSample returns the last recorded sample, nil when nothing was
// recorded.
func (r *Result) FinalSample() *Sample {
	if len(r.Samples) == 0 {
		return nil
	}
	return &r.Samples[len(r.Samples)-1]
}

// Trajectory extracts one pattern's anchor path across the samples. Ticks
// where the pattern was not live are skipped.
func (r *Result) Trajectory(id string) []lattice.Coord {
	var path []lattice.Coord
	for _, s := range r.Samples {
		for _, p := range s.Patterns {
			if p.ID == id {
				path = append(path, lattice.Coord{X: p.Anchor[0], Y: p.Anchor[1], Z: p.Anchor[2]})
				break
			}
		}
	}
	return path
}

// EnergySeries returns total pattern energy per sample, for plotting.
func (r *Result) EnergySeries() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.TotalEnergy
	}
	return out
}

// EchoSeries returns total field echo per sample, for plotting.
func (r *Result) EchoSeries() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.TotalEcho
	}
	return out
}
