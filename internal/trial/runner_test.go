package trial

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/san-kum/etmsim/internal/config"
	"github.com/san-kum/etmsim/internal/diag"
	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

func gradientConfig() *config.Config {
	return &config.Config{
		Name:  "gradient_run",
		Ticks: 10,
		Lattice: config.LatticeConfig{
			Size:         [3]int{40, 9, 9},
			Boundary:     "reflect",
			Connectivity: 6,
		},
		Field: config.FieldConfig{Shape: "gradient", Axis: 0, Slope: 1.0},
		Patterns: []config.PatternConfig{
			{Species: "photon", Scale: 1, Anchor: [3]int{10, 4, 4}},
		},
	}
}

func TestBuildSetup(t *testing.T) {
	s, err := BuildSetup(gradientConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dims != [3]int{40, 9, 9} {
		t.Errorf("expected dims (40,9,9), got %v", s.Dims)
	}
	if s.Boundary != lattice.Reflect {
		t.Errorf("expected reflect boundary, got %v", s.Boundary)
	}
	if s.InitialEcho.Shape != engine.GradientField {
		t.Errorf("expected gradient field, got %v", s.InitialEcho.Shape)
	}
	if len(s.Placements) != 1 || s.Placements[0].Species != pattern.Photon {
		t.Fatalf("placements not translated: %+v", s.Placements)
	}
}

func TestBuildSetup_Defaults(t *testing.T) {
	cfg := &config.Config{
		Patterns: []config.PatternConfig{{Species: "electron", Anchor: [3]int{15, 15, 15}}},
	}
	s, err := BuildSetup(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [3]int{config.DefaultSize, config.DefaultSize, config.DefaultSize}
	if s.Dims != want {
		t.Errorf("expected default dims %v, got %v", want, s.Dims)
	}
	if s.Connectivity != config.DefaultConnectivity {
		t.Errorf("expected default connectivity, got %d", s.Connectivity)
	}
	if s.Placements[0].Scale != 1 {
		t.Errorf("expected scale defaulted to 1, got %d", s.Placements[0].Scale)
	}
}

func TestBuildSetup_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{
			name:    "bad species",
			mutate:  func(c *config.Config) { c.Patterns[0].Species = "tachyon" },
			wantErr: pattern.ErrUnknownSpecies,
		},
		{
			name:    "bad boundary",
			mutate:  func(c *config.Config) { c.Lattice.Boundary = "sticky" },
			wantErr: lattice.ErrBoundary,
		},
		{
			name:    "bad field shape",
			mutate:  func(c *config.Config) { c.Field.Shape = "spiral" },
			wantErr: ErrFieldShape,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := gradientConfig()
			tt.mutate(cfg)
			if _, err := BuildSetup(cfg); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRun_RecordsSamples(t *testing.T) {
	r := NewRunner(gradientConfig(), nil)
	r.AddMetric(diag.NewEnergyDrift())

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Samples) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(res.Samples))
	}
	if res.Samples[0].Tick != 0 || res.Samples[10].Tick != 10 {
		t.Errorf("sample ticks wrong: first %d last %d", res.Samples[0].Tick, res.Samples[10].Tick)
	}
	if _, ok := res.Metrics["energy_drift"]; !ok {
		t.Error("expected energy_drift metric in result")
	}
	if res.ID == "" || res.Name != "gradient_run" {
		t.Errorf("result identity missing: %q %q", res.ID, res.Name)
	}
	if len(res.FinalEcho) != 40*9*9 {
		t.Errorf("expected final echo snapshot of %d nodes, got %d", 40*9*9, len(res.FinalEcho))
	}

	id := res.Samples[0].Patterns[0].ID
	path := res.Trajectory(id)
	if len(path) != 11 {
		t.Fatalf("expected trajectory of 11 anchors, got %d", len(path))
	}
	if path[0] != (lattice.Coord{X: 10, Y: 4, Z: 4}) || path[10] != (lattice.Coord{X: 20, Y: 4, Z: 4}) {
		t.Errorf("gradient path wrong: start %v end %v", path[0], path[10])
	}
}

func TestRun_SampleInterval(t *testing.T) {
	cfg := gradientConfig()
	cfg.Sample = 2
	res, err := NewRunner(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Samples) != 6 {
		t.Errorf("expected 6 samples at interval 2, got %d", len(res.Samples))
	}
	if res.Samples[1].Tick != 2 {
		t.Errorf("expected second sample at tick 2, got %d", res.Samples[1].Tick)
	}
}

func TestRun_DetectionEventsRecorded(t *testing.T) {
	cfg := &config.Config{
		Name:  "pair",
		Ticks: 5,
		Lattice: config.LatticeConfig{
			Size:         [3]int{24, 11, 11},
			Connectivity: 6,
		},
		Detection: config.DetectionConfig{Enabled: true, Threshold: config.DefaultThreshold},
		Patterns: []config.PatternConfig{
			{Species: "electron", Scale: 1, Anchor: [3]int{11, 5, 5}},
			{Species: "positron", Scale: 1, Anchor: [3]int{12, 5, 5}},
		},
	}
	res, err := NewRunner(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].Type != engine.EventAnnihilation {
		t.Fatalf("expected one annihilation event, got %v", res.Events)
	}
	final := res.FinalSample()
	if final == nil || len(final.Patterns) != 1 || final.Patterns[0].Species != "photon" {
		t.Errorf("expected a lone photon in the final sample, got %+v", final)
	}
}

func TestRun_NeutrinoFlavorRecorded(t *testing.T) {
	cfg := &config.Config{
		Name:  "nu",
		Ticks: 3,
		Lattice: config.LatticeConfig{
			Size:         [3]int{24, 11, 11},
			Connectivity: 6,
		},
		Patterns: []config.PatternConfig{
			{Species: "neutrino", Scale: 1, Anchor: [3]int{12, 5, 5}},
		},
	}
	res, err := NewRunner(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Samples[1].Patterns[0].Flavor; got != "electron" {
		t.Errorf("expected electron flavor in the first cycle, got %q", got)
	}
}

func TestRun_ValidationClean(t *testing.T) {
	res, err := NewRunner(gradientConfig(), nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := res.Validation
	if v.DriftTolerance != config.DefaultDriftTolerance {
		t.Errorf("expected default tolerance, got %v", v.DriftTolerance)
	}
	if v.EnergyDrift != 0 || v.DriftExceeded {
		t.Errorf("photon content is fixed, expected zero drift: %+v", v)
	}
	if v.LostPatterns != 0 {
		t.Errorf("expected no lost patterns, got %d", v.LostPatterns)
	}
}

func exitConfig() *config.Config {
	return &config.Config{
		Name:  "exit",
		Ticks: 4,
		Lattice: config.LatticeConfig{
			Size:         [3]int{24, 9, 9},
			Boundary:     "absorb",
			Connectivity: 6,
		},
		Patterns: []config.PatternConfig{
			{Species: "photon", Scale: 1, Anchor: [3]int{0, 4, 4}, Displacement: [3]int{-1, 0, 0}},
		},
	}
}

func TestRun_ValidationFlagsLoss(t *testing.T) {
	res, err := NewRunner(exitConfig(), nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := res.Validation
	if v.LostPatterns != 1 {
		t.Errorf("expected 1 lost pattern after the boundary exit, got %d", v.LostPatterns)
	}
	if v.EnergyDrift != 1.0 || !v.DriftExceeded {
		t.Errorf("expected full energy drift to be flagged: %+v", v)
	}
}

func TestRun_ValidationToleranceOverride(t *testing.T) {
	cfg := exitConfig()
	cfg.Energy.DriftTolerance = 2.0
	res, err := NewRunner(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Validation.DriftExceeded {
		t.Errorf("drift %v within tolerance %v should not be flagged",
			res.Validation.EnergyDrift, res.Validation.DriftTolerance)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewRunner(gradientConfig(), nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res == nil || len(res.Samples) != 1 {
		t.Errorf("expected the partial result with the initial sample")
	}
}

func TestRunBatch(t *testing.T) {
	a := gradientConfig()
	b := gradientConfig()
	b.Name = "second"

	results, err := RunBatch(context.Background(), []*config.Config{a, b}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "gradient_run" || results[1].Name != "second" {
		t.Errorf("batch order not preserved: %q %q", results[0].Name, results[1].Name)
	}
}

func TestRunBatch_FailureCancels(t *testing.T) {
	good := gradientConfig()
	bad := gradientConfig()
	bad.Patterns[0].Species = "tachyon"

	if _, err := RunBatch(context.Background(), []*config.Config{good, bad}, nil); !errors.Is(err, pattern.ErrUnknownSpecies) {
		t.Errorf("expected species error from batch, got %v", err)
	}
}
