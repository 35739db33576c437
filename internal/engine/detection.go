package engine

import (
	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

// EventType tags a recorded engine event.
type EventType int

const (
	// EventAnnihilation records an electron/positron pair collapsing into
	// a photon.
	EventAnnihilation EventType = iota
	// EventAbsorption records a photon transferring its content into a
	// coupled charged pattern.
	EventAbsorption
	// EventEmission records a charged pattern shedding energy as a new
	// photon.
	EventEmission
	// EventBoundaryExit records a pattern stepping off an absorbing edge.
	EventBoundaryExit
)

var eventNames = map[EventType]string{
	EventAnnihilation: "annihilation",
	EventAbsorption:   "absorption",
	EventEmission:     "emission",
	EventBoundaryExit: "boundary_exit",
}

func (t EventType) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return "unknown"
}

// Event is one recorded detection outcome. Patterns lists the ids
// involved, sources before products. Energy is the amount that moved.
type Event struct {
	Tick     int
	Type     EventType
	At       lattice.Coord
	Patterns []string
	Energy   float64
}

// runDetection scans the committed tick for annihilation pairs and then
// for photon absorption. Photons created by annihilation this tick do not
// participate in absorption until the next tick.
func (e *TickEngine) runDetection() {
	preexisting := len(e.patterns)
	removed := make(map[int]bool)
	var spawned []*pattern.Pattern

	for i := 0; i < preexisting; i++ {
		if removed[i] {
			continue
		}
		a := e.patterns[i]
		if !annihilable(a.Species()) {
			continue
		}
		for j := i + 1; j < preexisting; j++ {
			if removed[j] {
				continue
			}
			b := e.patterns[j]
			if !antipair(a.Species(), b.Species()) {
				continue
			}
			if lattice.Distance(a.Anchor(), b.Anchor()) > 1.0 {
				continue
			}
			total := a.Energy(e.kineticScale, e.stabilityScale) + b.Energy(e.kineticScale, e.stabilityScale)
			mid := midpoint(a.Anchor(), b.Anchor())
			ph, err := pattern.New(pattern.Photon, 1, mid)
			if err != nil {
				continue
			}
			ph.SetContent(total)
			removed[i] = true
			removed[j] = true
			spawned = append(spawned, ph)
			e.events = append(e.events, Event{
				Tick:     e.tick,
				Type:     EventAnnihilation,
				At:       mid,
				Patterns: []string{a.ID(), b.ID(), ph.ID()},
				Energy:   total,
			})
			break
		}
	}

	for i := 0; i < preexisting; i++ {
		if removed[i] {
			continue
		}
		ph := e.patterns[i]
		if ph.Species() != pattern.Photon {
			continue
		}
		for j := 0; j < preexisting; j++ {
			if j == i || removed[j] {
				continue
			}
			partner := e.patterns[j]
			if partner.Charge() == 0 {
				continue
			}
			s := e.coupler.Strength(ph, partner)
			if s < e.threshold {
				continue
			}
			content := ph.Content()
			partner.Absorb(content)
			removed[i] = true
			e.events = append(e.events, Event{
				Tick:     e.tick,
				Type:     EventAbsorption,
				At:       ph.Anchor(),
				Patterns: []string{ph.ID(), partner.ID()},
				Energy:   content,
			})
			break
		}
	}

	if len(removed) == 0 && len(spawned) == 0 {
		return
	}
	var gone []int
	for i := range e.patterns {
		if removed[i] {
			gone = append(gone, i)
		}
	}
	e.remove(gone)
	e.patterns = append(e.patterns, spawned...)
	e.restamp()
}

func annihilable(s pattern.Species) bool {
	return s == pattern.Electron || s == pattern.Positron
}

func antipair(a, b pattern.Species) bool {
	return (a == pattern.Electron && b == pattern.Positron) ||
		(a == pattern.Positron && b == pattern.Electron)
}

// midpoint is the integer midpoint of two anchors; for adjacent anchors
// it lands on the lower coordinate of the split axis.
func midpoint(a, b lattice.Coord) lattice.Coord {
	return lattice.Coord{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}
