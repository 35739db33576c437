package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTicks          = 100
	DefaultSize           = 30
	DefaultConnectivity   = 8
	DefaultDecay          = 0.95
	DefaultAlpha          = 0.10
	DefaultHybridLocal    = 0.6
	DefaultHybridNeighbor = 0.4
	DefaultReinforcement  = 1.0
	DefaultFloor          = 25.0
	DefaultThreshold      = 0.405
	DefaultQuantum        = 13.6
	DefaultKineticScale   = 1000.0
	DefaultStabilityScale = 2.63
	DefaultDriftTolerance = 1e-4
)

type Config struct {
	Name       string           `yaml:"name"`
	Ticks      int              `yaml:"ticks"`
	Sample     int              `yaml:"sample"`
	LogEvery   int              `yaml:"log_every"`
	Lattice    LatticeConfig    `yaml:"lattice"`
	Field      FieldConfig      `yaml:"field"`
	Recurrence RecurrenceConfig `yaml:"recurrence"`
	Detection  DetectionConfig  `yaml:"detection"`
	Energy     EnergyConfig     `yaml:"energy"`
	Patterns   []PatternConfig  `yaml:"patterns"`
}

type LatticeConfig struct {
	Size         [3]int `yaml:"size"`
	Boundary     string `yaml:"boundary"`
	Connectivity int    `yaml:"connectivity"`
}

type FieldConfig struct {
	Decay          float64 `yaml:"decay"`
	Alpha          float64 `yaml:"alpha"`
	HybridLocal    float64 `yaml:"hybrid_local"`
	HybridNeighbor float64 `yaml:"hybrid_neighbor"`
	Shape          string  `yaml:"shape"`
	Value          float64 `yaml:"value"`
	Axis           int     `yaml:"axis"`
	Slope          float64 `yaml:"slope"`
}

type RecurrenceConfig struct {
	Reinforcement float64 `yaml:"reinforcement"`
	Floor         float64 `yaml:"floor"`
}

type DetectionConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
	Quantum   float64 `yaml:"quantum"`
}

type EnergyConfig struct {
	KineticScale   float64 `yaml:"kinetic_scale"`
	StabilityScale float64 `yaml:"stability_scale"`
	DriftTolerance float64 `yaml:"drift_tolerance"`
}

type PatternConfig struct {
	Species      string  `yaml:"species"`
	Scale        int     `yaml:"scale"`
	Anchor       [3]int  `yaml:"anchor"`
	Displacement [3]int  `yaml:"displacement"`
	Phase        int     `yaml:"phase"`
	SeedEcho     float64 `yaml:"seed_echo"`
	Energy       float64 `yaml:"energy"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:   "run",
		Ticks:  DefaultTicks,
		Sample: 1,
		Lattice: LatticeConfig{
			Size:         [3]int{DefaultSize, DefaultSize, DefaultSize},
			Boundary:     "reflect",
			Connectivity: DefaultConnectivity,
		},
		Field: FieldConfig{
			Decay:          DefaultDecay,
			Alpha:          DefaultAlpha,
			HybridLocal:    DefaultHybridLocal,
			HybridNeighbor: DefaultHybridNeighbor,
			Shape:          "flat",
		},
		Recurrence: RecurrenceConfig{
			Reinforcement: DefaultReinforcement,
		},
		Detection: DetectionConfig{
			Enabled:   true,
			Threshold: DefaultThreshold,
			Quantum:   DefaultQuantum,
		},
		Energy: EnergyConfig{
			KineticScale:   DefaultKineticScale,
			StabilityScale: DefaultStabilityScale,
			DriftTolerance: DefaultDriftTolerance,
		},
	}
}

// Clone returns an independent copy. Presets are shared package values;
// callers must clone before applying overrides.
func (c *Config) Clone() *Config {
	out := *c
	out.Patterns = append([]PatternConfig(nil), c.Patterns...)
	return &out
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
