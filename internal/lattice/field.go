package lattice

import "github.com/cockroachdb/errors"

// Deposit is one active-node echo contribution for the coming tick.
type Deposit struct {
	At     Coord
	Amount float64
}

// EchoField holds the committed per-node disturbance values plus the scratch
// buffer used to build the next tick. Values are signed: a pattern's polarity
// signs its contributions.
type EchoField struct {
	lat     *Lattice
	cur     []float64
	scratch []float64

	decay    float64
	alpha    float64
	hybridW  float64 // weight of the local value in hybrid sampling
	hybridN  float64 // weight of the neighbor mean in hybrid sampling
	parChunk int
}

// NewEchoField builds a zeroed field over the lattice. decay is the per-tick
// retention factor, alpha the neighbor-inheritance fraction.
func NewEchoField(lat *Lattice, decay, alpha float64) *EchoField {
	n := lat.Size()
	return &EchoField{
		lat:      lat,
		cur:      make([]float64, n),
		scratch:  make([]float64, n),
		decay:    decay,
		alpha:    alpha,
		hybridW:  0.6,
		hybridN:  0.4,
		parChunk: 4096,
	}
}

// SetHybridWeights overrides the local/neighbor mix used by HybridAt.
func (f *EchoField) SetHybridWeights(local, neighbor float64) {
	f.hybridW = local
	f.hybridN = neighbor
}

func (f *EchoField) Decay() float64 { return f.decay }

func (f *EchoField) Alpha() float64 { return f.alpha }

// HybridWeights reports the local/neighbor mix used by HybridAt.
func (f *EchoField) HybridWeights() (local, neighbor float64) {
	return f.hybridW, f.hybridN
}

// At returns the committed echo value of an in-bounds coordinate.
func (f *EchoField) At(c Coord) float64 {
	return f.cur[f.lat.Index(c)]
}

// Sample reads the committed field through the boundary policy. Absorbed
// coordinates read as zero.
func (f *EchoField) Sample(c Coord) float64 {
	rc, ok := f.lat.Resolve(c)
	if !ok {
		return 0
	}
	return f.cur[f.lat.Index(rc)]
}

// HybridAt blends the local value with the neighbor mean, the sampling used
// when judging whether a node can support a pattern's return.
func (f *EchoField) HybridAt(c Coord) float64 {
	rc, ok := f.lat.Resolve(c)
	if !ok {
		return 0
	}
	local := f.cur[f.lat.Index(rc)]
	sum, n := 0.0, 0
	for _, d := range f.lat.offsets {
		nc, ok := f.lat.Resolve(rc.Add(d))
		if !ok {
			continue
		}
		sum += f.cur[f.lat.Index(nc)]
		n++
	}
	if n == 0 {
		return local
	}
	return f.hybridW*local + f.hybridN*(sum/float64(n))
}

// InjectFlat sets every node to a single value. Used once at trial setup.
func (f *EchoField) InjectFlat(v float64) {
	for i := range f.cur {
		f.cur[i] = v
	}
}

// InjectGradient writes a linear ramp along one axis (0=x, 1=y, 2=z),
// centered on the lattice midpoint. Used once at trial setup to model an
// external timing gradient; it evolves under the normal rule afterwards.
func (f *EchoField) InjectGradient(axis int, slope float64) error {
	if axis < 0 || axis > 2 {
		return errors.Wrapf(ErrAxis, "axis %d", axis)
	}
	nx, ny, nz := f.lat.Dims()
	for i := range f.cur {
		c := f.lat.CoordAt(i)
		switch axis {
		case 0:
			f.cur[i] = slope * float64(c.X-nx/2)
		case 1:
			f.cur[i] = slope * float64(c.Y-ny/2)
		case 2:
			f.cur[i] = slope * float64(c.Z-nz/2)
		}
	}
	return nil
}

// AddAt seeds extra echo at one node. Placement seeding only; per-tick
// contributions go through Advance deposits.
func (f *EchoField) AddAt(c Coord, v float64) {
	if rc, ok := f.lat.Resolve(c); ok {
		f.cur[f.lat.Index(rc)] += v
	}
}

// Advance commits the next field: decay plus deposits in one pass, then
// neighbor inheritance computed entirely from that pass's snapshot. Nothing
// reads a next-tick value while it is being written.
func (f *EchoField) Advance(deposits []Deposit) {
	n := len(f.cur)

	ParallelFor(n, f.parChunk, func(start, end int) {
		for i := start; i < end; i++ {
			f.scratch[i] = f.decay * f.cur[i]
		}
	})
	for _, d := range deposits {
		if rc, ok := f.lat.Resolve(d.At); ok {
			f.scratch[f.lat.Index(rc)] += d.Amount
		}
	}

	if f.alpha <= 0 {
		copy(f.cur, f.scratch)
		return
	}

	ParallelFor(n, f.parChunk, func(start, end int) {
		for i := start; i < end; i++ {
			c := f.lat.CoordAt(i)
			sum, cnt := 0.0, 0
			for _, d := range f.lat.offsets {
				nc, ok := f.lat.Resolve(c.Add(d))
				if !ok {
					continue
				}
				sum += f.scratch[f.lat.Index(nc)]
				cnt++
			}
			v := f.scratch[i]
			if cnt > 0 {
				v += f.alpha * (sum / float64(cnt))
			}
			f.cur[i] = v
		}
	})
}

// Snapshot copies the committed field values.
func (f *EchoField) Snapshot() []float64 {
	out := make([]float64, len(f.cur))
	copy(out, f.cur)
	return out
}

// Restore overwrites the committed field with a previously taken snapshot.
func (f *EchoField) Restore(values []float64) {
	copy(f.cur, values)
}

// Total sums the committed field, a cheap bulk diagnostic.
func (f *EchoField) Total() float64 {
	t := 0.0
	for _, v := range f.cur {
		t += v
	}
	return t
}
