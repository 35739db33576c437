package lattice

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Coord addresses a single lattice node. The coordinate is the node's
// identity; nodes are never referenced any other way.
type Coord struct {
	X, Y, Z int
}

func (c Coord) Add(d Coord) Coord { return Coord{c.X + d.X, c.Y + d.Y, c.Z + d.Z} }

func (c Coord) Sub(d Coord) Coord { return Coord{c.X - d.X, c.Y - d.Y, c.Z - d.Z} }

func (c Coord) Neg() Coord { return Coord{-c.X, -c.Y, -c.Z} }

func (c Coord) Scale(k int) Coord { return Coord{c.X * k, c.Y * k, c.Z * k} }

func (c Coord) IsZero() bool { return c.X == 0 && c.Y == 0 && c.Z == 0 }

// Distance returns the Euclidean distance between two node coordinates.
func Distance(a, b Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Chebyshev returns the maximum per-axis separation of two coordinates.
func Chebyshev(a, b Coord) int {
	d := 0
	for _, v := range [3]int{a.X - b.X, a.Y - b.Y, a.Z - b.Z} {
		if v < 0 {
			v = -v
		}
		if v > d {
			d = v
		}
	}
	return d
}

// offsetTable is ordered so each connectivity level takes a prefix: the six
// face directions with x before y before z, then xy-plane edges, then the
// first xz-plane edges. A level keeps exactly its first N entries.
var offsetTable = [...]Coord{
	{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1},
	{-1, -1, 0}, {-1, 1, 0}, {1, -1, 0}, {1, 1, 0},
	{-1, 0, -1}, {-1, 0, 1},
}

// Offsets returns the neighbor directions for a connectivity level.
func Offsets(connectivity int) ([]Coord, error) {
	switch connectivity {
	case 6, 8, 12:
		return offsetTable[:connectivity], nil
	default:
		return nil, errors.Wrapf(ErrConnectivity, "got %d", connectivity)
	}
}

// Lattice is the fixed 3D grid of timing nodes. It owns the bounds, the
// boundary policy, the neighbor set, and the per-node ownership slots.
type Lattice struct {
	nx, ny, nz   int
	boundary     BoundaryPolicy
	connectivity int
	offsets      []Coord

	// owner holds the slot of the pattern occupying each node (-1 free);
	// phase mirrors the owner's phase counter at the last commit.
	owner []int32
	phase []int32
}

// New constructs a lattice. Dimensions must be positive and connectivity one
// of the supported levels.
func New(nx, ny, nz int, boundary BoundaryPolicy, connectivity int) (*Lattice, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, errors.Wrapf(ErrDimensions, "got %dx%dx%d", nx, ny, nz)
	}
	offs, err := Offsets(connectivity)
	if err != nil {
		return nil, err
	}
	n := nx * ny * nz
	l := &Lattice{
		nx:           nx,
		ny:           ny,
		nz:           nz,
		boundary:     boundary,
		connectivity: connectivity,
		offsets:      offs,
		owner:        make([]int32, n),
		phase:        make([]int32, n),
	}
	l.ClearOwners()
	return l, nil
}

func (l *Lattice) Dims() (int, int, int) { return l.nx, l.ny, l.nz }

func (l *Lattice) Size() int { return l.nx * l.ny * l.nz }

func (l *Lattice) Boundary() BoundaryPolicy { return l.boundary }

func (l *Lattice) Connectivity() int { return l.connectivity }

// NeighborOffsets returns the direction set for this lattice's connectivity.
// Callers must not modify the returned slice.
func (l *Lattice) NeighborOffsets() []Coord { return l.offsets }

func (l *Lattice) Contains(c Coord) bool {
	return c.X >= 0 && c.X < l.nx && c.Y >= 0 && c.Y < l.ny && c.Z >= 0 && c.Z < l.nz
}

// Index flattens an in-bounds coordinate to a buffer position.
func (l *Lattice) Index(c Coord) int {
	return (c.Z*l.ny+c.Y)*l.nx + c.X
}

// CoordAt is the inverse of Index.
func (l *Lattice) CoordAt(i int) Coord {
	x := i % l.nx
	y := (i / l.nx) % l.ny
	z := i / (l.nx * l.ny)
	return Coord{x, y, z}
}

// Resolve applies the boundary policy to a possibly out-of-range coordinate.
// The boolean reports whether the coordinate survives; absorbing edges drop
// anything that crossed them.
func (l *Lattice) Resolve(c Coord) (Coord, bool) {
	if l.Contains(c) {
		return c, true
	}
	switch l.boundary {
	case Absorb:
		return c, false
	case Periodic:
		return Coord{wrap(c.X, l.nx), wrap(c.Y, l.ny), wrap(c.Z, l.nz)}, true
	default:
		return Coord{mirror(c.X, l.nx), mirror(c.Y, l.ny), mirror(c.Z, l.nz)}, true
	}
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// mirror folds v into [0, n) by reflecting about the boundary nodes.
func mirror(v, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	v = wrap(v, period)
	if v >= n {
		v = period - v
	}
	return v
}

// AppendNeighbors appends the resolved neighbors of c to dst and returns the
// extended slice. Absorbed neighbors are omitted.
func (l *Lattice) AppendNeighbors(c Coord, dst []Coord) []Coord {
	for _, d := range l.offsets {
		if nc, ok := l.Resolve(c.Add(d)); ok {
			dst = append(dst, nc)
		}
	}
	return dst
}

// OwnerAt reports which pattern slot occupies a node, or -1 when free.
func (l *Lattice) OwnerAt(c Coord) int {
	if !l.Contains(c) {
		return -1
	}
	return int(l.owner[l.Index(c)])
}

// PhaseAt reports the phase-memory slot stamped by the owning pattern.
func (l *Lattice) PhaseAt(c Coord) int {
	if !l.Contains(c) {
		return 0
	}
	return int(l.phase[l.Index(c)])
}

// StampOwner marks a node as occupied by a pattern slot at a given phase.
// Out-of-range coordinates are ignored; footprints crossing an edge resolve
// through the boundary policy before stamping.
func (l *Lattice) StampOwner(c Coord, slot, phase int) {
	rc, ok := l.Resolve(c)
	if !ok {
		return
	}
	i := l.Index(rc)
	l.owner[i] = int32(slot)
	l.phase[i] = int32(phase)
}

// ClearOwners frees every node slot.
func (l *Lattice) ClearOwners() {
	for i := range l.owner {
		l.owner[i] = -1
		l.phase[i] = 0
	}
}
