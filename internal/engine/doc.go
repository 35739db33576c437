// Package engine drives the tick loop that couples patterns to the echo
// field. A TickEngine owns one lattice, one field, and the set of live
// patterns; Advance moves all of them through exactly one tick.
//
// The tick is phased so that every pattern observes the same committed
// field state: phases advance, deposits are composed and the field update
// is committed, then recurrence decisions are scored against the committed
// snapshot and applied together. Ownership stamps and detection events run
// last. Nothing in the engine stores velocity or momentum; the only
// persistent state between ticks is the field, the anchors, the phase
// counters, and each pattern's last committed step.
package engine
