package lattice

import "github.com/cockroachdb/errors"

// Domain errors for lattice construction and addressing.
var (
	// ErrDimensions indicates a non-positive lattice dimension.
	ErrDimensions = errors.New("lattice: dimensions must be positive")

	// ErrConnectivity indicates an unsupported neighbor count.
	ErrConnectivity = errors.New("lattice: connectivity must be 6, 8, or 12")

	// ErrBoundary indicates an unrecognized boundary policy name.
	ErrBoundary = errors.New("lattice: unknown boundary policy")

	// ErrBounds indicates a coordinate outside the lattice.
	ErrBounds = errors.New("lattice: coordinate outside lattice bounds")

	// ErrAxis indicates a gradient axis other than 0, 1, or 2.
	ErrAxis = errors.New("lattice: gradient axis must be 0, 1, or 2")
)
