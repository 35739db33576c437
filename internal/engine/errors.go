package engine

import "github.com/cockroachdb/errors"

// ErrSetup is returned when a scalar setup parameter is outside its
// admissible range.
var ErrSetup = errors.New("invalid engine setup")

// ErrPlacement is returned when a pattern placement cannot be realized on
// the configured lattice.
var ErrPlacement = errors.New("invalid placement")

// ErrDisplacement is returned when an initial displacement is not a unit
// lattice step.
var ErrDisplacement = errors.New("displacement components must be -1, 0, or 1")

// ErrFootprint is returned when a placement's footprint does not fit
// inside a non-periodic lattice.
var ErrFootprint = errors.New("footprint exceeds lattice bounds")

// ErrThreshold is returned when the coupling threshold is outside [0, 1].
var ErrThreshold = errors.New("coupling threshold must be in [0, 1]")

// ErrUnknownPattern is returned when an operation names a pattern id that
// is not live in the engine.
var ErrUnknownPattern = errors.New("unknown pattern")

// ErrEmission is returned when an emission request is malformed.
var ErrEmission = errors.New("invalid emission")

// ErrCouplingWeak is returned when an emission target does not couple to
// the source strongly enough to transfer energy.
var ErrCouplingWeak = errors.New("coupling below threshold")
