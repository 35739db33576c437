// Package analysis provides frequency analysis over recorded tick series.
//
// Pattern anchors and phases are integer-valued per tick; the spectral
// helpers here recover recurrence periods from those series, such as the
// return period of a bound electron or the flavor cycle of a neutrino.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/etmsim/internal/lattice"
)

// FFT computes the radix-2 discrete Fourier transform. The input length
// must be a power of two; use Pad to extend arbitrary series.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// Pad extends data with zeros to the next power of two.
func Pad(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

// PowerSpectrum returns spectral magnitudes for the first half of the
// transform. The series mean is removed first so the DC bin does not bury
// the recurrence peaks, and the series is padded to a power of two.
func PowerSpectrum(data []float64) []float64 {
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := FFT(Pad(centered))
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantPeriod finds the strongest non-DC spectral bin and converts it
// to a period in ticks. Returns false when the series is too short or has
// no oscillatory content.
func DominantPeriod(data []float64) (float64, bool) {
	if len(data) < 4 {
		return 0, false
	}
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, false
	}

	maxPower, maxIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 || maxPower == 0 {
		return 0, false
	}

	n := len(ps) * 2 // padded series length
	return float64(n) / float64(maxIdx), true
}

// AxisSeries extracts one coordinate axis from a recorded anchor path.
func AxisSeries(path []lattice.Coord, axis int) []float64 {
	out := make([]float64, len(path))
	for i, c := range path {
		switch axis % 3 {
		case 0:
			out[i] = float64(c.X)
		case 1:
			out[i] = float64(c.Y)
		default:
			out[i] = float64(c.Z)
		}
	}
	return out
}
