package trial

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/san-kum/etmsim/internal/config"
	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

// ErrFieldShape is returned for an unrecognized initial field shape.
var ErrFieldShape = errors.New("unknown field shape")

// Metric observes committed engine state once per sampled tick.
type Metric interface {
	Name() string
	Observe(e *engine.TickEngine)
	Value() float64
	Reset()
}

// Runner executes one configured trial.
type Runner struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics []Metric
}

func NewRunner(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

func (r *Runner) AddMetric(m Metric) { r.metrics = append(r.metrics, m) }

// BuildSetup translates a file configuration into an engine setup. Empty
// strings and zero sizes fall back to the package defaults.
func BuildSetup(cfg *config.Config) (engine.Setup, error) {
	var s engine.Setup

	size := cfg.Lattice.Size
	if size == ([3]int{}) {
		size = [3]int{config.DefaultSize, config.DefaultSize, config.DefaultSize}
	}
	s.Dims = size

	boundary := cfg.Lattice.Boundary
	if boundary == "" {
		boundary = "reflect"
	}
	b, err := lattice.ParseBoundary(boundary)
	if err != nil {
		return engine.Setup{}, err
	}
	s.Boundary = b

	s.Connectivity = cfg.Lattice.Connectivity
	if s.Connectivity == 0 {
		s.Connectivity = config.DefaultConnectivity
	}

	s.DecayFactor = cfg.Field.Decay
	s.InheritAlpha = cfg.Field.Alpha
	s.HybridLocal = cfg.Field.HybridLocal
	s.HybridNeighbor = cfg.Field.HybridNeighbor
	s.Reinforcement = cfg.Recurrence.Reinforcement
	s.EchoFloor = cfg.Recurrence.Floor
	s.CouplingThreshold = cfg.Detection.Threshold
	s.Quantum = cfg.Detection.Quantum
	s.DetectionEvents = cfg.Detection.Enabled
	s.KineticScale = cfg.Energy.KineticScale
	s.StabilityScale = cfg.Energy.StabilityScale

	switch cfg.Field.Shape {
	case "", "flat":
		s.InitialEcho = engine.InitialEcho{Shape: engine.FlatField, Value: cfg.Field.Value}
	case "gradient":
		s.InitialEcho = engine.InitialEcho{Shape: engine.GradientField, Axis: cfg.Field.Axis, Slope: cfg.Field.Slope}
	default:
		return engine.Setup{}, errors.Wrapf(ErrFieldShape, "%q", cfg.Field.Shape)
	}

	for i, pc := range cfg.Patterns {
		species, err := pattern.ParseSpecies(pc.Species)
		if err != nil {
			return engine.Setup{}, errors.Wrapf(err, "pattern %d", i)
		}
		scale := pc.Scale
		if scale == 0 {
			scale = 1
		}
		s.Placements = append(s.Placements, engine.Placement{
			Species:      species,
			Scale:        scale,
			Anchor:       lattice.Coord{X: pc.Anchor[0], Y: pc.Anchor[1], Z: pc.Anchor[2]},
			Displacement: lattice.Coord{X: pc.Displacement[0], Y: pc.Displacement[1], Z: pc.Displacement[2]},
			PhaseOffset:  pc.Phase,
			SeedEcho:     pc.SeedEcho,
			Energy:       pc.Energy,
		})
	}
	return s, nil
}

// Run builds the engine, advances it for the configured tick budget, and
// returns the recorded result. The context cancels between ticks.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	setup, err := BuildSetup(r.cfg)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(setup)
	if err != nil {
		return nil, err
	}

	ticks := r.cfg.Ticks
	if ticks <= 0 {
		ticks = config.DefaultTicks
	}
	sample := r.cfg.Sample
	if sample <= 0 {
		sample = 1
	}

	result := &Result{
		ID:      uuid.NewString()[:8],
		Name:    r.cfg.Name,
		Ticks:   ticks,
		Dims:    setup.Dims,
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}
	r.observe(eng)
	result.Samples = append(result.Samples, r.record(eng))

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		eng.Advance()
		if eng.Tick()%sample == 0 {
			r.observe(eng)
			result.Samples = append(result.Samples, r.record(eng))
		}
		if r.cfg.LogEvery > 0 && eng.Tick()%r.cfg.LogEvery == 0 {
			r.log.Info("progress",
				zap.Int("tick", eng.Tick()),
				zap.Int("patterns", len(eng.Patterns())),
				zap.Float64("energy", eng.TotalEnergy()),
			)
		}
	}

	result.Events = eng.Events()
	result.FinalEcho = eng.Field().Snapshot()
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Validation = r.validate(result, len(setup.Placements), len(eng.Patterns()))

	r.log.Info("trial complete",
		zap.String("name", result.Name),
		zap.String("id", result.ID),
		zap.Int("ticks", ticks),
		zap.Int("patterns", len(eng.Patterns())),
		zap.Int("events", len(result.Events)),
	)
	return result, nil
}

// validate compares the first and last samples. Energy drift is relative
// to the starting total, with a floor of 1 so near-zero starts do not
// inflate the ratio.
func (r *Runner) validate(res *Result, placed, live int) Validation {
	tol := r.cfg.Energy.DriftTolerance
	if tol <= 0 {
		tol = config.DefaultDriftTolerance
	}
	v := Validation{DriftTolerance: tol}
	if placed > live {
		v.LostPatterns = placed - live
	}
	series := res.EnergySeries()
	if len(series) >= 2 {
		first, last := series[0], series[len(series)-1]
		ref := math.Abs(first)
		if ref < 1 {
			ref = 1
		}
		v.EnergyDrift = math.Abs(last-first) / ref
		v.DriftExceeded = v.EnergyDrift > tol
	}
	if v.DriftExceeded {
		r.log.Warn("energy drift above tolerance",
			zap.Float64("drift", v.EnergyDrift),
			zap.Float64("tolerance", tol),
		)
	}
	if v.LostPatterns > 0 {
		r.log.Warn("patterns lost", zap.Int("count", v.LostPatterns))
	}
	return v
}

func (r *Runner) observe(eng *engine.TickEngine) {
	for _, m := range r.metrics {
		m.Observe(eng)
	}
}

func (r *Runner) record(eng *engine.TickEngine) Sample {
	kinetic, stability := eng.EnergyScales()
	s := Sample{
		Tick:        eng.Tick(),
		TotalEnergy: eng.TotalEnergy(),
		TotalEcho:   eng.TotalEcho(),
	}
	for _, p := range eng.Patterns() {
		anchor := p.Anchor()
		s.Patterns = append(s.Patterns, PatternState{
			ID:      p.ID(),
			Species: p.Species().String(),
			Scale:   p.Scale(),
			Anchor:  [3]int{anchor.X, anchor.Y, anchor.Z},
			Phase:   p.Phase(),
			Energy:  p.Energy(kinetic, stability),
			Flavor:  p.Flavor(eng.Tick()),
		})
	}
	return s
}
