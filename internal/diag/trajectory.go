package diag

import (
	"math"

	"github.com/san-kum/etmsim/internal/lattice"
)

// ConvergenceTime reports the first tick index at which two recorded paths
// come within proximity of each other. The second return is false when
// they never do.
func ConvergenceTime(a, b []lattice.Coord, proximity float64) (int, bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if lattice.Distance(a[i], b[i]) <= proximity {
			return i, true
		}
	}
	return 0, false
}

// DeflectionAngle measures the angle in radians between a path's net
// displacement and a baseline direction. The second return is false when
// the path never moved or the baseline is zero.
func DeflectionAngle(path []lattice.Coord, baseline lattice.Coord) (float64, bool) {
	if len(path) < 2 || baseline.IsZero() {
		return 0, false
	}
	net := path[len(path)-1].Sub(path[0])
	if net.IsZero() {
		return 0, false
	}
	dot := float64(net.X*baseline.X + net.Y*baseline.Y + net.Z*baseline.Z)
	cos := dot / (norm(net) * norm(baseline))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos), true
}

func norm(c lattice.Coord) float64 {
	return math.Sqrt(float64(c.X*c.X + c.Y*c.Y + c.Z*c.Z))
}
