package engine

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

func baseSetup() Setup {
	return Setup{
		Dims:         [3]int{24, 11, 11},
		Boundary:     lattice.Reflect,
		Connectivity: 6,
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Setup)
		wantErr error
	}{
		{
			name:    "bad connectivity",
			mutate:  func(s *Setup) { s.Connectivity = 10 },
			wantErr: lattice.ErrConnectivity,
		},
		{
			name:    "decay above one",
			mutate:  func(s *Setup) { s.DecayFactor = 1.5 },
			wantErr: ErrSetup,
		},
		{
			name:    "negative alpha",
			mutate:  func(s *Setup) { s.InheritAlpha = -0.1 },
			wantErr: ErrSetup,
		},
		{
			name:    "threshold above one",
			mutate:  func(s *Setup) { s.CouplingThreshold = 1.2 },
			wantErr: ErrThreshold,
		},
		{
			name: "anchor outside lattice",
			mutate: func(s *Setup) {
				s.Placements = []Placement{{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 99, Y: 5, Z: 5}}}
			},
			wantErr: ErrPlacement,
		},
		{
			name: "footprint overhangs edge",
			mutate: func(s *Setup) {
				s.Placements = []Placement{{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 1, Y: 5, Z: 5}}}
			},
			wantErr: ErrFootprint,
		},
		{
			name: "displacement not unit",
			mutate: func(s *Setup) {
				s.Placements = []Placement{{
					Species:      pattern.Electron,
					Scale:        1,
					Anchor:       lattice.Coord{X: 10, Y: 5, Z: 5},
					Displacement: lattice.Coord{X: 2},
				}}
			},
			wantErr: ErrDisplacement,
		},
		{
			name: "scale below one",
			mutate: func(s *Setup) {
				s.Placements = []Placement{{Species: pattern.Electron, Scale: 0, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}}}
			},
			wantErr: pattern.ErrScale,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSetup()
			tt.mutate(&s)
			_, err := New(s)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_PeriodicAllowsOverhang(t *testing.T) {
	s := baseSetup()
	s.Boundary = lattice.Periodic
	s.Placements = []Placement{{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 0, Y: 5, Z: 5}}}
	if _, err := New(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_PhotonContentDefaultsToQuantum(t *testing.T) {
	s := baseSetup()
	s.Placements = []Placement{{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ph := e.Patterns()[0]
	if ph.Content() != 13.6 {
		t.Errorf("expected content 13.6, got %v", ph.Content())
	}
}

func TestAdvance_PhotonStationaryInFlatField(t *testing.T) {
	s := baseSetup()
	s.InitialEcho = InitialEcho{Shape: FlatField, Value: 40}
	s.Placements = []Placement{{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 12, Y: 5, Z: 5}}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := e.Patterns()[0].ID()
	for i := 0; i < 20; i++ {
		e.Advance()
		got, ok := e.AnchorOf(id)
		if !ok {
			t.Fatalf("photon lost at tick %d", e.Tick())
		}
		if got != (lattice.Coord{X: 12, Y: 5, Z: 5}) {
			t.Fatalf("photon moved to %v at tick %d", got, e.Tick())
		}
	}
}

func TestAdvance_PhotonClimbsGradient(t *testing.T) {
	s := baseSetup()
	s.Dims = [3]int{40, 9, 9}
	s.InitialEcho = InitialEcho{Shape: GradientField, Axis: 0, Slope: 1.0}
	s.Placements = []Placement{{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 4, Z: 4}}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := e.Patterns()[0].ID()
	prev := lattice.Coord{X: 10, Y: 4, Z: 4}
	for i := 0; i < 15; i++ {
		e.Advance()
		got, ok := e.AnchorOf(id)
		if !ok {
			t.Fatalf("photon lost at tick %d", e.Tick())
		}
		if got.X != prev.X+1 || got.Y != 4 || got.Z != 4 {
			t.Fatalf("tick %d: expected +x step from %v, got %v", e.Tick(), prev, got)
		}
		prev = got
	}
}

func TestAdvance_OneStepPerTick(t *testing.T) {
	s := baseSetup()
	s.Dims = [3]int{40, 11, 11}
	s.InitialEcho = InitialEcho{Shape: GradientField, Axis: 0, Slope: 2.5}
	s.Placements = []Placement{
		{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 6, Y: 5, Z: 5}},
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 20, Y: 5, Z: 5}, Displacement: lattice.Coord{X: 1}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prev := make(map[string]lattice.Coord)
	for _, p := range e.Patterns() {
		prev[p.ID()] = p.Anchor()
	}
	for i := 0; i < 30; i++ {
		e.Advance()
		for _, p := range e.Patterns() {
			if d := lattice.Chebyshev(prev[p.ID()], p.Anchor()); d > 1 {
				t.Fatalf("tick %d: pattern %s jumped %d nodes", e.Tick(), p.ID(), d)
			}
			prev[p.ID()] = p.Anchor()
		}
	}
}

func TestAdvance_DisplacementConsumedOnce(t *testing.T) {
	s := baseSetup()
	s.Placements = []Placement{{
		Species:      pattern.Electron,
		Scale:        1,
		Anchor:       lattice.Coord{X: 10, Y: 5, Z: 5},
		Displacement: lattice.Coord{X: 1},
	}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := e.Patterns()[0].ID()

	e.Advance()
	got, _ := e.AnchorOf(id)
	if got != (lattice.Coord{X: 11, Y: 5, Z: 5}) {
		t.Fatalf("expected displaced anchor (11,5,5), got %v", got)
	}

	// The eligibility window reopens at tick 5; ticks 2 through 4 must not
	// replay the initial step.
	for i := 0; i < 3; i++ {
		e.Advance()
		got, _ = e.AnchorOf(id)
		if got != (lattice.Coord{X: 11, Y: 5, Z: 5}) {
			t.Fatalf("tick %d: anchor moved to %v before eligibility", e.Tick(), got)
		}
	}
}

func TestClone_TrajectoriesMatch(t *testing.T) {
	s := baseSetup()
	s.Dims = [3]int{40, 11, 11}
	s.InitialEcho = InitialEcho{Shape: GradientField, Axis: 0, Slope: 1.5}
	s.Placements = []Placement{
		{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 8, Y: 5, Z: 5}},
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 24, Y: 5, Z: 5}, Displacement: lattice.Coord{X: -1}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Run past the one-shot displacement so the clone starts from committed
	// state only.
	for i := 0; i < 3; i++ {
		e.Advance()
	}
	c := e.Clone()
	for i := 0; i < 25; i++ {
		e.Advance()
		c.Advance()
		orig := e.Patterns()
		copied := c.Patterns()
		if len(orig) != len(copied) {
			t.Fatalf("tick %d: pattern counts diverged, %d vs %d", e.Tick(), len(orig), len(copied))
		}
		for j := range orig {
			if orig[j].Anchor() != copied[j].Anchor() {
				t.Fatalf("tick %d: anchors diverged, %v vs %v", e.Tick(), orig[j].Anchor(), copied[j].Anchor())
			}
			if orig[j].Phase() != copied[j].Phase() {
				t.Fatalf("tick %d: phases diverged", e.Tick())
			}
		}
	}
}

func TestClone_IsIndependent(t *testing.T) {
	s := baseSetup()
	s.Placements = []Placement{{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := e.Clone()
	for i := 0; i < 5; i++ {
		c.Advance()
	}
	if e.Tick() != 0 {
		t.Errorf("advancing clone moved original to tick %d", e.Tick())
	}
	if c.Tick() != 5 {
		t.Errorf("expected clone at tick 5, got %d", c.Tick())
	}
}

func TestAdvance_ElectronsRepel(t *testing.T) {
	s := baseSetup()
	s.Dims = [3]int{48, 11, 11}
	s.Placements = []Placement{
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 20, Y: 5, Z: 5}},
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 27, Y: 5, Z: 5}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := e.Patterns()[0].ID()
	b := e.Patterns()[1].ID()
	start := separation(t, e, a, b)
	for i := 0; i < 24; i++ {
		e.Advance()
	}
	end := separation(t, e, a, b)
	if end <= start {
		t.Errorf("expected electrons to separate, distance went %.2f -> %.2f", start, end)
	}
}

func TestAdvance_OppositeChargesApproach(t *testing.T) {
	s := baseSetup()
	s.Dims = [3]int{48, 11, 11}
	s.Placements = []Placement{
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 16, Y: 5, Z: 5}},
		{Species: pattern.Proton, Scale: 1, Anchor: lattice.Coord{X: 26, Y: 5, Z: 5}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := e.Patterns()[0].ID()
	b := e.Patterns()[1].ID()
	start := separation(t, e, a, b)
	for i := 0; i < 30; i++ {
		e.Advance()
	}
	end := separation(t, e, a, b)
	if end >= start {
		t.Errorf("expected approach, distance went %.2f -> %.2f", start, end)
	}
}

func separation(t *testing.T, e *TickEngine, a, b string) float64 {
	t.Helper()
	ca, ok := e.AnchorOf(a)
	if !ok {
		t.Fatalf("pattern %s not live", a)
	}
	cb, ok := e.AnchorOf(b)
	if !ok {
		t.Fatalf("pattern %s not live", b)
	}
	return lattice.Distance(ca, cb)
}

func TestAdvance_AnnihilationConservesEnergy(t *testing.T) {
	s := baseSetup()
	s.DetectionEvents = true
	s.KineticScale = 1000.0
	s.StabilityScale = 2.63
	s.Placements = []Placement{
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
		{Species: pattern.Positron, Scale: 1, Anchor: lattice.Coord{X: 11, Y: 5, Z: 5}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := e.TotalEnergy()
	e.Advance()
	after := e.TotalEnergy()
	if math.Abs(before-after) > 1e-4 {
		t.Errorf("energy drifted across annihilation: %.6f -> %.6f", before, after)
	}
	live := e.Patterns()
	if len(live) != 1 || live[0].Species() != pattern.Photon {
		t.Fatalf("expected a single photon, got %d patterns", len(live))
	}
	if live[0].Content() != before {
		t.Errorf("expected photon content %.4f, got %.4f", before, live[0].Content())
	}
	events := e.Events()
	if len(events) != 1 || events[0].Type != EventAnnihilation {
		t.Fatalf("expected one annihilation event, got %v", events)
	}
	if events[0].At != (lattice.Coord{X: 10, Y: 5, Z: 5}) {
		t.Errorf("expected event at pair midpoint, got %v", events[0].At)
	}
}

func TestAdvance_NoAnnihilationBeyondOneStep(t *testing.T) {
	s := baseSetup()
	s.DetectionEvents = true
	s.Placements = []Placement{
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
		{Species: pattern.Positron, Scale: 1, Anchor: lattice.Coord{X: 12, Y: 5, Z: 5}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Advance()
	if len(e.Patterns()) != 2 {
		t.Errorf("expected both patterns to survive at distance 2, got %d", len(e.Patterns()))
	}
}

func TestAdvance_PhotonAbsorption(t *testing.T) {
	s := baseSetup()
	s.DetectionEvents = true
	s.CouplingThreshold = 0.405
	s.KineticScale = 1000.0
	s.StabilityScale = 2.63
	s.Placements = []Placement{
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
		{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := e.TotalEnergy()
	e.Advance()
	after := e.TotalEnergy()
	if math.Abs(before-after) > 1e-4 {
		t.Errorf("energy drifted across absorption: %.6f -> %.6f", before, after)
	}
	live := e.Patterns()
	if len(live) != 1 || live[0].Species() != pattern.Electron {
		t.Fatalf("expected the photon to be absorbed, got %d patterns", len(live))
	}
	if live[0].AbsorbedEnergy() != 13.6 {
		t.Errorf("expected absorbed ledger 13.6, got %v", live[0].AbsorbedEnergy())
	}
	events := e.Events()
	if len(events) != 1 || events[0].Type != EventAbsorption {
		t.Fatalf("expected one absorption event, got %v", events)
	}
}

func TestAdvance_NoAbsorptionOutsideWindow(t *testing.T) {
	s := baseSetup()
	s.DetectionEvents = true
	s.CouplingThreshold = 0.405
	s.Placements = []Placement{
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
		{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 12, Y: 5, Z: 5}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Advance()
	if len(e.Patterns()) != 2 {
		t.Errorf("expected photon to survive outside the core window, got %d patterns", len(e.Patterns()))
	}
}

func TestEmit(t *testing.T) {
	s := baseSetup()
	s.CouplingThreshold = 0.3
	s.KineticScale = 1000.0
	s.StabilityScale = 2.63
	s.Placements = []Placement{{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := e.Patterns()[0]

	if _, err := e.Emit(src.ID(), 13.6, lattice.Coord{X: 1}); !errors.Is(err, pattern.ErrEnergy) {
		t.Errorf("expected ledger overdraw error, got %v", err)
	}

	src.Absorb(20.0)
	before := e.TotalEnergy()
	id, err := e.Emit(src.ID(), 13.6, lattice.Coord{X: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := e.TotalEnergy()
	if math.Abs(before-after) > 1e-9 {
		t.Errorf("energy drifted across emission: %.6f -> %.6f", before, after)
	}
	ph, err := e.PatternByID(id)
	if err != nil {
		t.Fatalf("emitted photon not live: %v", err)
	}
	if ph.Content() != 13.6 {
		t.Errorf("expected photon content 13.6, got %v", ph.Content())
	}
	if got := ph.Anchor(); got != (lattice.Coord{X: 11, Y: 5, Z: 5}) {
		t.Errorf("expected photon at (11,5,5), got %v", got)
	}
	if math.Abs(src.AbsorbedEnergy()-6.4) > 1e-9 {
		t.Errorf("expected ledger 6.4 after emission, got %v", src.AbsorbedEnergy())
	}
	events := e.Events()
	if len(events) != 1 || events[0].Type != EventEmission {
		t.Fatalf("expected one emission event, got %v", events)
	}
}

func TestEmit_Errors(t *testing.T) {
	s := baseSetup()
	s.CouplingThreshold = 0.5
	s.Placements = []Placement{{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := e.Patterns()[0]
	src.Absorb(50.0)

	if _, err := e.Emit("nope", 1.0, lattice.Coord{X: 1}); !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("expected unknown pattern error, got %v", err)
	}
	if _, err := e.Emit(src.ID(), -1.0, lattice.Coord{X: 1}); !errors.Is(err, ErrEmission) {
		t.Errorf("expected emission error for negative energy, got %v", err)
	}
	if _, err := e.Emit(src.ID(), 1.0, lattice.Coord{}); !errors.Is(err, ErrEmission) {
		t.Errorf("expected emission error for zero direction, got %v", err)
	}
	if _, err := e.Emit(src.ID(), 1.0, lattice.Coord{X: 1}); !errors.Is(err, ErrCouplingWeak) {
		t.Errorf("expected weak coupling error, got %v", err)
	}
	if src.AbsorbedEnergy() != 50.0 {
		t.Errorf("failed emissions must not debit the ledger, got %v", src.AbsorbedEnergy())
	}
}

func TestAdvance_BoundaryExitOnAbsorbingEdge(t *testing.T) {
	s := baseSetup()
	s.Boundary = lattice.Absorb
	s.Placements = []Placement{{
		Species:      pattern.Photon,
		Scale:        1,
		Anchor:       lattice.Coord{X: 0, Y: 5, Z: 5},
		Displacement: lattice.Coord{X: -1},
	}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Advance()
	if len(e.Patterns()) != 0 {
		t.Fatalf("expected pattern to leave the lattice, got %d live", len(e.Patterns()))
	}
	events := e.Events()
	if len(events) != 1 || events[0].Type != EventBoundaryExit {
		t.Fatalf("expected one boundary exit event, got %v", events)
	}
}

func TestAdvance_EchoFloorFreezesUnsupportedPattern(t *testing.T) {
	run := func(floor float64) lattice.Coord {
		s := baseSetup()
		s.Dims = [3]int{40, 11, 11}
		s.EchoFloor = floor
		s.Placements = []Placement{{
			Species:      pattern.Electron,
			Scale:        1,
			Anchor:       lattice.Coord{X: 12, Y: 5, Z: 5},
			Displacement: lattice.Coord{X: 1},
		}}
		e, err := New(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		id := e.Patterns()[0].ID()
		for i := 0; i < 20; i++ {
			e.Advance()
		}
		got, ok := e.AnchorOf(id)
		if !ok {
			t.Fatalf("pattern lost")
		}
		return got
	}

	frozen := run(200.0)
	free := run(0)
	if frozen != (lattice.Coord{X: 13, Y: 5, Z: 5}) {
		t.Errorf("expected unsupported pattern to hold its displaced anchor, got %v", frozen)
	}
	if free.X <= 13 {
		t.Errorf("expected supported pattern to keep drifting past x=13, got %v", free)
	}
}

func TestAdvance_ScaleStability(t *testing.T) {
	for _, scale := range []int{1, 2, 3} {
		s := baseSetup()
		s.Dims = [3]int{31, 17, 17}
		s.Placements = []Placement{{
			Species: pattern.Electron,
			Scale:   scale,
			Anchor:  lattice.Coord{X: 15, Y: 8, Z: 8},
		}}
		e, err := New(s)
		if err != nil {
			t.Fatalf("scale %d: unexpected error: %v", scale, err)
		}
		id := e.Patterns()[0].ID()
		for i := 0; i < 50; i++ {
			e.Advance()
		}
		got, ok := e.AnchorOf(id)
		if !ok {
			t.Fatalf("scale %d: pattern dissolved", scale)
		}
		if got != (lattice.Coord{X: 15, Y: 8, Z: 8}) {
			t.Errorf("scale %d: isolated pattern drifted to %v", scale, got)
		}
	}
}

func TestAdvance_NeutronStaysInert(t *testing.T) {
	s := baseSetup()
	s.Dims = [3]int{40, 11, 11}
	s.InitialEcho = InitialEcho{Shape: GradientField, Axis: 0, Slope: 3.0}
	s.Placements = []Placement{{Species: pattern.Neutron, Scale: 1, Anchor: lattice.Coord{X: 20, Y: 5, Z: 5}}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := e.Patterns()[0].ID()
	for i := 0; i < 30; i++ {
		e.Advance()
	}
	got, _ := e.AnchorOf(id)
	if got != (lattice.Coord{X: 20, Y: 5, Z: 5}) {
		t.Errorf("expected inert pattern to hold anchor, got %v", got)
	}
}

func TestOwnershipStampsFollowAnchors(t *testing.T) {
	s := baseSetup()
	s.Dims = [3]int{40, 9, 9}
	s.InitialEcho = InitialEcho{Shape: GradientField, Axis: 0, Slope: 1.0}
	s.Placements = []Placement{{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 4, Z: 4}}}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Lattice().OwnerAt(lattice.Coord{X: 10, Y: 4, Z: 4}) != 0 {
		t.Fatalf("expected initial anchor to be stamped")
	}
	e.Advance()
	if e.Lattice().OwnerAt(lattice.Coord{X: 10, Y: 4, Z: 4}) != -1 {
		t.Errorf("expected vacated node to be free")
	}
	if e.Lattice().OwnerAt(lattice.Coord{X: 11, Y: 4, Z: 4}) != 0 {
		t.Errorf("expected new anchor to be stamped")
	}
}

func TestCoupling_QueryMatchesEvaluator(t *testing.T) {
	s := baseSetup()
	s.Placements = []Placement{
		{Species: pattern.Electron, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
		{Species: pattern.Photon, Scale: 1, Anchor: lattice.Coord{X: 10, Y: 5, Z: 5}},
	}
	e, err := New(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := e.Patterns()[0].ID()
	b := e.Patterns()[1].ID()
	got, err := e.Coupling(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got < 0.405 {
		t.Errorf("expected core overlap coupling >= 0.405, got %v", got)
	}
	if _, err := e.Coupling(a, "nope"); !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("expected unknown pattern error, got %v", err)
	}
}
