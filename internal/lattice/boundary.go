package lattice

import "github.com/cockroachdb/errors"

// BoundaryPolicy controls how coordinates and echo contributions behave at
// the lattice edge.
type BoundaryPolicy int

const (
	// Reflect mirrors out-of-range coordinates back inside.
	Reflect BoundaryPolicy = iota
	// Absorb drops anything that crosses the edge.
	Absorb
	// Periodic wraps coordinates around to the opposite face.
	Periodic
)

func (b BoundaryPolicy) String() string {
	switch b {
	case Reflect:
		return "reflect"
	case Absorb:
		return "absorb"
	case Periodic:
		return "periodic"
	default:
		return "unknown"
	}
}

// ParseBoundary maps a policy name to its BoundaryPolicy value.
func ParseBoundary(name string) (BoundaryPolicy, error) {
	switch name {
	case "reflect":
		return Reflect, nil
	case "absorb":
		return Absorb, nil
	case "periodic":
		return Periodic, nil
	default:
		return 0, errors.Wrapf(ErrBoundary, "%q", name)
	}
}
