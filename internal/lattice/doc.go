// Package lattice provides the 3D node grid and echo field for timing
// simulations.
//
// The package defines the spatial substrate every other component builds on:
//
//   - [Coord]: integer node address, the sole node identity
//   - [Lattice]: fixed-size grid with a boundary policy and neighbor set
//   - [EchoField]: double-buffered per-node scalar disturbance values
//
// # Tick discipline
//
// EchoField keeps two buffers. [EchoField.Advance] computes the entire next
// field from the committed one plus the deposits for the tick, then commits
// it in one step. No node update ever observes another node's next-tick
// value, so the result is independent of evaluation order and the per-node
// work may be split across workers with [ParallelFor].
package lattice
