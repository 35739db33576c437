// Package optim sweeps trial parameters over value grids, the workflow
// behind resolution scans and threshold calibration.
package optim

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/san-kum/etmsim/internal/config"
)

// ErrParam is returned for a sweep parameter with no configuration field.
var ErrParam = errors.New("optim: unknown sweep parameter")

// Axis is one swept dimension: a named parameter and its trial values.
type Axis struct {
	Param  string
	Values []float64
}

// Point is one grid assignment with the metrics its trial produced. Err is
// set when the trial could not run, which happens on grid corners that
// violate setup validation; such points stay in the report but never win.
type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
	Err     error
}

// RunFunc executes one trial for a parameter assignment.
type RunFunc func(ctx context.Context, params map[string]float64) (map[string]float64, error)

// GridSweep enumerates the cartesian product of its axes in declaration
// order, later axes varying fastest.
type GridSweep struct {
	axes []Axis
}

func NewGridSweep(axes ...Axis) *GridSweep { return &GridSweep{axes: axes} }

// Size returns the number of grid assignments.
func (g *GridSweep) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Run executes every assignment in order. Cancellation returns the points
// finished so far along with the context error.
func (g *GridSweep) Run(ctx context.Context, run RunFunc) ([]Point, error) {
	points := make([]Point, 0, g.Size())
	err := g.runRecursive(ctx, 0, map[string]float64{}, run, &points)
	return points, err
}

func (g *GridSweep) runRecursive(ctx context.Context, depth int, current map[string]float64, run RunFunc, points *[]Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		assignment := make(map[string]float64, len(current))
		for k, v := range current {
			assignment[k] = v
		}
		metrics, err := run(ctx, assignment)
		*points = append(*points, Point{Params: assignment, Metrics: metrics, Err: err})
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		current[axis.Param] = val
		if err := g.runRecursive(ctx, depth+1, current, run, points); err != nil {
			return err
		}
	}
	delete(current, axis.Param)
	return nil
}

// Best returns the point with the lowest (or highest) value of one metric.
// Failed points and points missing the metric are skipped; ok reports
// whether any point qualified.
func Best(points []Point, metric string, maximize bool) (Point, bool) {
	best := math.Inf(1)
	if maximize {
		best = math.Inf(-1)
	}
	var winner Point
	found := false
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		v, ok := p.Metrics[metric]
		if !ok {
			continue
		}
		if (maximize && v > best) || (!maximize && v < best) {
			best = v
			winner = p
			found = true
		}
	}
	return winner, found
}

// Linspace builds n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	return vals
}

// ApplyParam writes one named value into a trial configuration. Names map
// onto the yaml fields a sweep is allowed to touch; unknown names error so
// a mistyped axis fails before any trial runs.
func ApplyParam(cfg *config.Config, name string, value float64) error {
	switch name {
	case "decay":
		cfg.Field.Decay = value
	case "alpha":
		cfg.Field.Alpha = value
	case "hybrid_local":
		cfg.Field.HybridLocal = value
	case "hybrid_neighbor":
		cfg.Field.HybridNeighbor = value
	case "value":
		cfg.Field.Value = value
	case "slope":
		cfg.Field.Slope = value
	case "reinforcement":
		cfg.Recurrence.Reinforcement = value
	case "floor":
		cfg.Recurrence.Floor = value
	case "threshold":
		cfg.Detection.Threshold = value
	case "quantum":
		cfg.Detection.Quantum = value
	case "kinetic_scale":
		cfg.Energy.KineticScale = value
	case "stability_scale":
		cfg.Energy.StabilityScale = value
	case "ticks":
		cfg.Ticks = int(value)
	case "size":
		n := int(value)
		cfg.Lattice.Size = [3]int{n, n, n}
	case "connectivity":
		cfg.Lattice.Connectivity = int(value)
	case "scale":
		for i := range cfg.Patterns {
			cfg.Patterns[i].Scale = int(value)
		}
	default:
		return errors.Wrapf(ErrParam, "%q", name)
	}
	return nil
}
