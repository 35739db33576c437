package pattern

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownSpecies indicates a species tag outside the closed set.
	ErrUnknownSpecies = errors.New("pattern: unknown species")

	// ErrScale indicates a non-positive footprint scale factor.
	ErrScale = errors.New("pattern: scale factor must be at least 1")

	// ErrEnergy indicates an energy ledger operation that would go negative.
	ErrEnergy = errors.New("pattern: insufficient absorbed energy")
)
