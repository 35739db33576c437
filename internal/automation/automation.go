// Package automation scripts multi-step trial sequences and perturbation
// studies from YAML scenario files.
package automation

import (
	"context"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/etmsim/internal/config"
	"github.com/san-kum/etmsim/internal/optim"
	"github.com/san-kum/etmsim/internal/storage"
	"github.com/san-kum/etmsim/internal/trial"
)

// ErrStep is returned when a scenario step names neither a preset nor a
// config file.
var ErrStep = errors.New("automation: step needs a preset or config path")

// ErrPreset is returned for a preset reference that does not resolve.
var ErrPreset = errors.New("automation: unknown preset")

// Scenario defines a scripted trial sequence.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single trial in a scenario. Preset takes the form
// family/variant; Config is a yaml path used when Preset is empty. Params
// override individual values by sweep-parameter name, and Ticks overrides
// the tick budget when positive.
type Step struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Ticks  int                `yaml:"ticks"`
	Params map[string]float64 `yaml:"params"`
	Save   bool               `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// StepResult pairs a step with its trial outcome. RunID is empty unless
// the step asked to be saved.
type StepResult struct {
	Step   string
	RunID  string
	Result *trial.Result
}

// Runner executes scenarios, saving flagged steps to a store.
type Runner struct {
	store *storage.Store
	log   *zap.Logger
}

func NewRunner(store *storage.Store, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{store: store, log: log}
}

// Run executes all steps in order. The first failing step aborts the
// scenario, returning the results finished before it.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := resolveStep(step)
		if err != nil {
			return results, errors.Wrapf(err, "step %d", i+1)
		}

		r.log.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("trial", cfg.Name),
		)

		res, err := trial.NewRunner(cfg, r.log).Run(ctx)
		if err != nil {
			return results, errors.Wrapf(err, "step %d", i+1)
		}

		runID := ""
		if step.Save && r.store != nil {
			runID, err = r.store.Save(res)
			if err != nil {
				return results, errors.Wrapf(err, "step %d save", i+1)
			}
		}

		name := step.Name
		if name == "" {
			name = cfg.Name
		}
		results = append(results, StepResult{Step: name, RunID: runID, Result: res})
	}

	return results, nil
}

// resolveStep builds the step's configuration: preset or file, cloned,
// then overrides applied.
func resolveStep(step Step) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case step.Preset != "":
		family, variant := splitPreset(step.Preset)
		base := config.GetPreset(family, variant)
		if base == nil {
			return nil, errors.Wrapf(ErrPreset, "%q", step.Preset)
		}
		cfg = base.Clone()
	case step.Config != "":
		loaded, err := config.Load(step.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		return nil, ErrStep
	}

	if step.Ticks > 0 {
		cfg.Ticks = step.Ticks
	}
	for name, value := range step.Params {
		if err := optim.ApplyParam(cfg, name, value); err != nil {
			return nil, err
		}
	}
	if step.Name != "" {
		cfg.Name = step.Name
	}
	return cfg, nil
}

func splitPreset(ref string) (family, variant string) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '/' {
			return ref[:i], ref[i+1:]
		}
	}
	return ref, ""
}

// ScatterConfig perturbs pattern anchors around a base configuration,
// checking how placement noise affects survival.
type ScatterConfig struct {
	Base   *config.Config
	Jitter int // max per-axis anchor offset
	Trials int
	Seed   int64
}

// ScatterResult records one perturbed trial.
type ScatterResult struct {
	Trial       int
	Anchors     [][3]int
	Survived    bool // every placed pattern still present at the end
	FinalEnergy float64
}

// RunScatter executes perturbed copies of the base trial concurrently.
// Each trial derives its own seed from the base seed, so a batch is
// reproducible regardless of goroutine scheduling.
func RunScatter(ctx context.Context, cfg *ScatterConfig, log *zap.Logger) ([]ScatterResult, error) {
	if log == nil {
		log = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	results := make([]ScatterResult, cfg.Trials)
	errs := make([]error, cfg.Trials)

	var wg sync.WaitGroup
	for n := 0; n < cfg.Trials; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(seed + int64(n)))
			c := cfg.Base.Clone()
			anchors := make([][3]int, len(c.Patterns))
			for i := range c.Patterns {
				for axis := 0; axis < 3; axis++ {
					c.Patterns[i].Anchor[axis] += rng.Intn(2*cfg.Jitter+1) - cfg.Jitter
				}
				anchors[i] = c.Patterns[i].Anchor
			}

			res, err := trial.NewRunner(c, log).Run(ctx)
			if err != nil {
				errs[n] = errors.Wrapf(err, "scatter trial %d", n)
				return
			}

			survived := false
			finalEnergy := 0.0
			if final := res.FinalSample(); final != nil {
				survived = len(final.Patterns) == len(c.Patterns)
				finalEnergy = final.TotalEnergy
			}
			results[n] = ScatterResult{
				Trial:       n,
				Anchors:     anchors,
				Survived:    survived,
				FinalEnergy: finalEnergy,
			}
		}(n)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ScatterStats counts surviving and lost trials.
func ScatterStats(results []ScatterResult) (survived, lost int) {
	for _, r := range results {
		if r.Survived {
			survived++
		} else {
			lost++
		}
	}
	return
}
