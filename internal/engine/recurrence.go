package engine

import (
	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

// move is a committed recurrence decision, applied only after every
// pattern has scored against the same field snapshot.
type move struct {
	idx    int
	dir    lattice.Coord
	target lattice.Coord
	inside bool
}

// runRecurrence scores every eligible pattern against the committed field
// and applies at most one step each. Scoring reads only the field, so all
// decisions see the state as of this tick's commit regardless of order.
func (e *TickEngine) runRecurrence() {
	var moves []move
	for i, p := range e.patterns {
		if e.skip[i] || !e.eligible[i] {
			continue
		}
		if p.Steering() == pattern.Inert {
			continue
		}
		if !e.supported(p) {
			continue
		}
		dir, ok := e.chooseStep(p)
		if !ok {
			continue
		}
		target, inside := e.lat.Resolve(p.Anchor().Add(dir))
		moves = append(moves, move{idx: i, dir: dir, target: target, inside: inside})
	}

	var gone []int
	for _, m := range moves {
		p := e.patterns[m.idx]
		if !m.inside {
			e.events = append(e.events, Event{
				Tick:     e.tick,
				Type:     EventBoundaryExit,
				At:       p.Anchor(),
				Patterns: []string{p.ID()},
				Energy:   p.Energy(e.kineticScale, e.stabilityScale),
			})
			gone = append(gone, m.idx)
			continue
		}
		p.SetAnchor(m.target)
		p.RecordMove(m.dir)
		p.ResetPhase()
	}
	e.remove(gone)
}

// chooseStep picks the neighbor direction with the strongest positive
// pull. Charged patterns descend same-sign echo and climb opposite-sign
// echo; gradient riders climb magnitude. Ties keep the last committed
// direction when it is among the winners, otherwise the first winner in
// neighbor order. A best score at or below zero means the pattern
// reforms in place.
func (e *TickEngine) chooseStep(p *pattern.Pattern) (lattice.Coord, bool) {
	var steer float64
	switch p.Steering() {
	case pattern.ChargeSteered:
		steer = -float64(p.Charge())
	case pattern.GradientSteered:
		steer = 1
	default:
		return lattice.Coord{}, false
	}

	a := p.Anchor()
	last, hasLast := p.LastMove()

	best := 0.0
	var bestDir lattice.Coord
	found := false
	lastWins := false
	for _, d := range e.lat.NeighborOffsets() {
		score := steer * (e.field.Sample(a.Add(d)) - e.field.Sample(a.Sub(d)))
		switch {
		case !found || score > best:
			found = true
			best = score
			bestDir = d
			lastWins = hasLast && d == last
		case score == best && hasLast && d == last:
			lastWins = true
		}
	}
	if !found || best <= 0 {
		return lattice.Coord{}, false
	}
	if lastWins {
		return last, true
	}
	return bestDir, true
}
