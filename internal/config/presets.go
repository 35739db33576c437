package config

var Presets = map[string]map[string]*Config{
	"photon": {
		"flat": {
			Name: "photon_flat", Ticks: 50,
			Lattice: LatticeConfig{Size: [3]int{24, 11, 11}, Connectivity: 6},
			Field:   FieldConfig{Shape: "flat", Value: 40},
			Patterns: []PatternConfig{
				{Species: "photon", Scale: 1, Anchor: [3]int{12, 5, 5}},
			},
		},
		"gradient": {
			Name: "photon_gradient", Ticks: 25,
			Lattice: LatticeConfig{Size: [3]int{40, 11, 11}, Connectivity: 6},
			Field:   FieldConfig{Shape: "gradient", Axis: 0, Slope: 1.0},
			Patterns: []PatternConfig{
				{Species: "photon", Scale: 1, Anchor: [3]int{8, 5, 5}},
			},
		},
		"deflection": {
			Name: "photon_deflection", Ticks: 30,
			Lattice: LatticeConfig{Size: [3]int{40, 21, 11}, Connectivity: 6},
			Field:   FieldConfig{Shape: "gradient", Axis: 1, Slope: 0.8},
			Patterns: []PatternConfig{
				{Species: "photon", Scale: 1, Anchor: [3]int{8, 6, 5}, Displacement: [3]int{1, 0, 0}},
			},
		},
	},
	"charge": {
		"repulsion": {
			Name: "charge_repulsion", Ticks: 40,
			Lattice: LatticeConfig{Size: [3]int{48, 11, 11}, Connectivity: 6},
			Patterns: []PatternConfig{
				{Species: "electron", Scale: 1, Anchor: [3]int{20, 5, 5}},
				{Species: "electron", Scale: 1, Anchor: [3]int{27, 5, 5}},
			},
		},
		"attraction": {
			Name: "charge_attraction", Ticks: 60,
			Lattice: LatticeConfig{Size: [3]int{48, 11, 11}, Connectivity: 6},
			Patterns: []PatternConfig{
				{Species: "electron", Scale: 1, Anchor: [3]int{16, 5, 5}},
				{Species: "proton", Scale: 1, Anchor: [3]int{26, 5, 5}},
			},
		},
		"annihilation": {
			Name: "pair_annihilation", Ticks: 20,
			Lattice:   LatticeConfig{Size: [3]int{24, 11, 11}, Connectivity: 6},
			Detection: DetectionConfig{Enabled: true, Threshold: DefaultThreshold, Quantum: DefaultQuantum},
			Patterns: []PatternConfig{
				{Species: "electron", Scale: 1, Anchor: [3]int{11, 5, 5}},
				{Species: "positron", Scale: 1, Anchor: [3]int{12, 5, 5}},
			},
		},
	},
	"hydrogen": {
		"ground": {
			Name: "hydrogen_ground", Ticks: 100,
			Lattice:    LatticeConfig{Size: [3]int{30, 30, 30}, Connectivity: 8},
			Recurrence: RecurrenceConfig{Reinforcement: 1.0, Floor: DefaultFloor},
			Detection:  DetectionConfig{Enabled: true, Threshold: DefaultThreshold, Quantum: DefaultQuantum},
			Patterns: []PatternConfig{
				{Species: "proton", Scale: 1, Anchor: [3]int{15, 15, 15}, SeedEcho: 100},
				{Species: "electron", Scale: 1, Anchor: [3]int{17, 15, 15}, SeedEcho: 100},
			},
		},
		"absorption": {
			Name: "hydrogen_absorption", Ticks: 30,
			Lattice:   LatticeConfig{Size: [3]int{30, 30, 30}, Connectivity: 8},
			Detection: DetectionConfig{Enabled: true, Threshold: 0.37, Quantum: DefaultQuantum},
			Patterns: []PatternConfig{
				{Species: "electron", Scale: 1, Anchor: [3]int{15, 15, 15}},
				{Species: "photon", Scale: 1, Anchor: [3]int{16, 15, 15}, Energy: DefaultQuantum},
			},
		},
	},
	"neutrino": {
		"oscillation": {
			Name: "neutrino_oscillation", Ticks: 3500,
			Lattice: LatticeConfig{Size: [3]int{24, 11, 11}, Connectivity: 6},
			Patterns: []PatternConfig{
				{Species: "neutrino", Scale: 1, Anchor: [3]int{12, 5, 5}},
			},
		},
	},
	"stability": {
		"scales": {
			Name: "scale_stability", Ticks: 50,
			Lattice: LatticeConfig{Size: [3]int{45, 17, 17}, Connectivity: 6},
			Patterns: []PatternConfig{
				{Species: "electron", Scale: 1, Anchor: [3]int{8, 8, 8}},
				{Species: "electron", Scale: 2, Anchor: [3]int{22, 8, 8}},
				{Species: "electron", Scale: 3, Anchor: [3]int{36, 8, 8}},
			},
		},
	},
}

func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	cfg, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	return names
}
