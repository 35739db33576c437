package coupling

import (
	"math"
	"testing"

	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

func mustPattern(t *testing.T, s pattern.Species, anchor lattice.Coord) *pattern.Pattern {
	t.Helper()
	p, err := pattern.New(s, 1, anchor)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestStrength_Symmetric(t *testing.T) {
	ev := New(13.6)
	center := lattice.Coord{X: 10, Y: 10, Z: 10}

	pairs := []struct {
		a, b pattern.Species
		off  lattice.Coord
	}{
		{pattern.Photon, pattern.Electron, lattice.Coord{}},
		{pattern.Photon, pattern.Electron, lattice.Coord{X: 1}},
		{pattern.Electron, pattern.Proton, lattice.Coord{X: 2}},
		{pattern.Photon, pattern.Proton, lattice.Coord{Y: 1}},
	}

	for _, tt := range pairs {
		a := mustPattern(t, tt.a, center)
		b := mustPattern(t, tt.b, center.Add(tt.off))
		ab := ev.Strength(a, b)
		ba := ev.Strength(b, a)
		if math.Abs(ab-ba) > 1e-12 {
			t.Errorf("%v/%v at %v: asymmetric coupling %f vs %f", tt.a, tt.b, tt.off, ab, ba)
		}
	}
}

func TestStrength_Range(t *testing.T) {
	ev := New(13.6)
	center := lattice.Coord{X: 10, Y: 10, Z: 10}
	e1 := mustPattern(t, pattern.Electron, center)
	e2 := mustPattern(t, pattern.Electron, center)

	if got := ev.Strength(e1, e2); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("identical aligned footprints should couple at 1, got %f", got)
	}

	far := mustPattern(t, pattern.Electron, center.Add(lattice.Coord{X: 10}))
	if got := ev.Strength(e1, far); got != 0 {
		t.Errorf("disjoint footprints should couple at 0, got %f", got)
	}
}

func TestStrength_DecaysWithSeparation(t *testing.T) {
	ev := New(13.6)
	center := lattice.Coord{X: 10, Y: 10, Z: 10}
	el := mustPattern(t, pattern.Electron, center)

	prev := math.Inf(1)
	for dx := 0; dx <= 3; dx++ {
		ph := mustPattern(t, pattern.Photon, center.Add(lattice.Coord{X: dx}))
		ph.SetContent(13.6)
		got := ev.Strength(el, ph)
		if got > prev {
			t.Errorf("coupling should not grow with separation: %f at dx=%d after %f", got, dx, prev)
		}
		prev = got
	}
}

func TestStrength_AbsorptionWindow(t *testing.T) {
	// A hydrogen-quantum photon on the electron core clears the default
	// absorption threshold; one orbital step away it falls just short.
	ev := New(13.6)
	center := lattice.Coord{X: 10, Y: 10, Z: 10}
	el := mustPattern(t, pattern.Electron, center)

	onCore := mustPattern(t, pattern.Photon, center)
	onCore.SetContent(13.6)
	if got := ev.Strength(el, onCore); got < 0.405 {
		t.Errorf("core overlap should clear 0.405, got %f", got)
	}

	onInterface := mustPattern(t, pattern.Photon, center.Add(lattice.Coord{X: 1}))
	onInterface.SetContent(13.6)
	got := ev.Strength(el, onInterface)
	if got >= 0.405 || got < 0.3 {
		t.Errorf("interface overlap should land between 0.3 and 0.405, got %f", got)
	}
}

func TestStrength_ResonanceFactor(t *testing.T) {
	ev := New(13.6)
	center := lattice.Coord{X: 10, Y: 10, Z: 10}
	el := mustPattern(t, pattern.Electron, center)

	weak := mustPattern(t, pattern.Photon, center)
	weak.SetContent(6.8)
	strong := mustPattern(t, pattern.Photon, center)
	strong.SetContent(13.6)

	if ws, ss := ev.Strength(el, weak), ev.Strength(el, strong); ws >= ss {
		t.Errorf("detuned photon should couple weaker: %f vs %f", ws, ss)
	}

	// Saturation: far above the quantum the factor clamps at 2.
	hot := mustPattern(t, pattern.Photon, center)
	hot.SetContent(1000)
	hotter := mustPattern(t, pattern.Photon, center)
	hotter.SetContent(2000)
	if a, b := ev.Strength(el, hot), ev.Strength(el, hotter); a != b {
		t.Errorf("resonance should saturate, got %f vs %f", a, b)
	}
}
