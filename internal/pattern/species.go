package pattern

import "github.com/cockroachdb/errors"

// Species tags one of the closed set of identity patterns.
type Species int

const (
	Electron Species = iota
	Positron
	Photon
	Proton
	Neutron
	Neutrino
)

var speciesNames = [...]string{"electron", "positron", "photon", "proton", "neutron", "neutrino"}

func (s Species) String() string {
	if s < 0 || int(s) >= len(speciesNames) {
		return "unknown"
	}
	return speciesNames[s]
}

// ParseSpecies maps a species name to its tag.
func ParseSpecies(name string) (Species, error) {
	for i, n := range speciesNames {
		if n == name {
			return Species(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownSpecies, "%q", name)
}

// Steering selects how a species reads the echo field when choosing a
// return direction.
type Steering int

const (
	// ChargeSteered patterns climb or descend the echo gradient according
	// to their polarity.
	ChargeSteered Steering = iota
	// GradientSteered patterns follow the gradient regardless of sign.
	GradientSteered
	// Inert patterns never move on their own.
	Inert
)

// FlavorCycle is the deterministic oscillation sequence for neutrinos.
var FlavorCycle = [3]string{"electron", "muon", "tau"}
