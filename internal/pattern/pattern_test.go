package pattern

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/san-kum/etmsim/internal/lattice"
)

func TestParseSpecies(t *testing.T) {
	tests := []struct {
		name  string
		want  Species
		valid bool
	}{
		{"electron", Electron, true},
		{"positron", Positron, true},
		{"photon", Photon, true},
		{"proton", Proton, true},
		{"neutron", Neutron, true},
		{"neutrino", Neutrino, true},
		{"muon", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseSpecies(tt.name)
		if tt.valid && (err != nil || got != tt.want) {
			t.Errorf("%s: expected %v, got %v (err %v)", tt.name, tt.want, got, err)
		}
		if !tt.valid && !errors.Is(err, ErrUnknownSpecies) {
			t.Errorf("%s: expected ErrUnknownSpecies, got %v", tt.name, err)
		}
	}
}

func TestTemplateFootprints(t *testing.T) {
	tests := []struct {
		species Species
		nodes   int
		charge  int
		period  int
	}{
		{Electron, 7, -1, 4},
		{Positron, 7, 1, 4},
		{Photon, 1, 0, 1},
		{Proton, 23, 1, 12},
		{Neutron, 11, 0, 14},
		{Neutrino, 3, 0, 2},
	}

	for _, tt := range tests {
		tmpl, err := TemplateFor(tt.species)
		if err != nil {
			t.Fatalf("%v: %v", tt.species, err)
		}
		if len(tmpl.Nodes) != tt.nodes {
			t.Errorf("%v: expected %d nodes, got %d", tt.species, tt.nodes, len(tmpl.Nodes))
		}
		if tmpl.Charge != tt.charge {
			t.Errorf("%v: expected charge %d, got %d", tt.species, tt.charge, tmpl.Charge)
		}
		if tmpl.Period != tt.period {
			t.Errorf("%v: expected period %d, got %d", tt.species, tt.period, tmpl.Period)
		}
	}
}

func TestChargedFootprintsAreSymmetric(t *testing.T) {
	// Charged species must have centrally symmetric footprints so a lone
	// pattern's own field cancels in the return-direction scoring.
	for _, s := range []Species{Electron, Positron, Proton} {
		tmpl, err := TemplateFor(s)
		if err != nil {
			t.Fatal(err)
		}
		rates := make(map[lattice.Coord]float64, len(tmpl.Nodes))
		for _, n := range tmpl.Nodes {
			rates[n.Offset] = n.Rate
		}
		for _, n := range tmpl.Nodes {
			if got, ok := rates[n.Offset.Neg()]; !ok || got != n.Rate {
				t.Errorf("%v: offset %v has no mirrored node at the same rate", s, n.Offset)
			}
		}
	}
}

func TestNew_ScaleValidation(t *testing.T) {
	if _, err := New(Electron, 0, lattice.Coord{}); !errors.Is(err, ErrScale) {
		t.Errorf("expected ErrScale, got %v", err)
	}
	if _, err := New(Electron, -2, lattice.Coord{}); !errors.Is(err, ErrScale) {
		t.Errorf("expected ErrScale, got %v", err)
	}
}

func TestScaleStretchesFootprint(t *testing.T) {
	p, err := New(Electron, 2, lattice.Coord{X: 10, Y: 10, Z: 10})
	if err != nil {
		t.Fatal(err)
	}
	if p.Reach() != 4 {
		t.Errorf("expected reach 4 at scale 2, got %d", p.Reach())
	}

	found := false
	for _, c := range p.Footprint() {
		if c == (lattice.Coord{X: 14, Y: 10, Z: 10}) {
			found = true
		}
	}
	if !found {
		t.Error("outer cloud node should sit at anchor.x + 4 for scale 2")
	}
}

func TestAdvancePhase_SaturatesUntilReset(t *testing.T) {
	p, err := New(Electron, 1, lattice.Coord{})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < p.Period(); i++ {
		if p.AdvancePhase() {
			t.Fatalf("eligible after %d ticks, period is %d", i, p.Period())
		}
	}
	if !p.AdvancePhase() {
		t.Fatal("expected eligibility at the return period")
	}
	// Saturated: stays eligible until a return commits.
	if !p.AdvancePhase() {
		t.Error("expected eligibility to persist while saturated")
	}

	p.ResetPhase()
	if p.AdvancePhase() {
		t.Error("expected a fresh count after reset")
	}
}

func TestDeposits_ChargeSigns(t *testing.T) {
	anchor := lattice.Coord{X: 5, Y: 5, Z: 5}

	el, _ := New(Electron, 1, anchor)
	deps := el.AppendDeposits(nil, 1.0)
	if len(deps) != 7 {
		t.Fatalf("expected 7 deposits, got %d", len(deps))
	}
	for _, d := range deps {
		if d.Amount >= 0 {
			t.Errorf("electron deposit at %v should be negative, got %f", d.At, d.Amount)
		}
	}

	po, _ := New(Positron, 1, anchor)
	for _, d := range po.AppendDeposits(nil, 1.0) {
		if d.Amount <= 0 {
			t.Errorf("positron deposit at %v should be positive, got %f", d.At, d.Amount)
		}
	}

	ph, _ := New(Photon, 1, anchor)
	if deps := ph.AppendDeposits(nil, 1.0); len(deps) != 0 {
		t.Errorf("photon should deposit nothing, got %d deposits", len(deps))
	}
}

func TestFlavorOscillation(t *testing.T) {
	n, err := New(Neutrino, 1, lattice.Coord{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tick int
		want string
	}{
		{0, "electron"},
		{999, "electron"},
		{1000, "muon"},
		{1999, "muon"},
		{2000, "tau"},
		{3000, "electron"},
	}
	for _, tt := range tests {
		if got := n.Flavor(tt.tick); got != tt.want {
			t.Errorf("tick %d: expected %s, got %s", tt.tick, tt.want, got)
		}
	}

	el, _ := New(Electron, 1, lattice.Coord{})
	if got := el.Flavor(500); got != "" {
		t.Errorf("non-oscillating species should report no flavor, got %q", got)
	}
}

func TestEnergyLedger(t *testing.T) {
	p, err := New(Electron, 1, lattice.Coord{})
	if err != nil {
		t.Fatal(err)
	}

	base := p.Energy(1000.0, 2.63)
	wantKinetic := 1000.0 * 0.7 / 4.0
	wantStability := 2.63 * (0.7*0.8 + 0.2)
	if math.Abs(base-(wantKinetic+wantStability)) > 1e-9 {
		t.Errorf("expected base energy %f, got %f", wantKinetic+wantStability, base)
	}

	p.Absorb(13.6)
	if got := p.Energy(1000.0, 2.63); math.Abs(got-base-13.6) > 1e-9 {
		t.Errorf("absorbed energy should raise the total by 13.6, got delta %f", got-base)
	}

	if err := p.Release(20.0); !errors.Is(err, ErrEnergy) {
		t.Errorf("expected ErrEnergy on overdraw, got %v", err)
	}
	if err := p.Release(13.6); err != nil {
		t.Errorf("release within ledger should succeed, got %v", err)
	}
}

func TestPhotonEnergyIsContent(t *testing.T) {
	p, err := New(Photon, 1, lattice.Coord{})
	if err != nil {
		t.Fatal(err)
	}
	p.SetContent(27.2)
	if got := p.Energy(1000.0, 2.63); got != 27.2 {
		t.Errorf("photon energy should equal its content, got %f", got)
	}
}

func TestClone_IndependentState(t *testing.T) {
	p, err := New(Proton, 1, lattice.Coord{X: 3})
	if err != nil {
		t.Fatal(err)
	}
	p.RecordMove(lattice.Coord{X: 1})

	c := p.Clone()
	c.SetAnchor(lattice.Coord{X: 9})
	c.ResetPhase()

	if p.Anchor() == c.Anchor() {
		t.Error("clone anchor change leaked into the original")
	}
	if d, ok := c.LastMove(); !ok || d != (lattice.Coord{X: 1}) {
		t.Error("clone should keep the recorded move")
	}
}
