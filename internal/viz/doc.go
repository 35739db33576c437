// Package viz renders lattice trials in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: tick-by-tick view of a running engine with an echo heatmap
//   - [NewPicker]: preset browser that launches the live view
//   - [Canvas]: Braille-based pixel canvas for trajectory plots
//
// # Key Bindings
//
//	Space - Pause/Resume ticking
//	S     - Advance one tick while paused
//	R     - Reset to the initial placement
//	[ ]   - Move the slice plane
//	A     - Cycle the slice axis
//	T     - Cycle heatmap palettes
//	?     - Show help overlay
//
// # Slices
//
// The echo field is three dimensional; the live view shows one plane at a
// time, selected by [SliceSpec]. Pattern anchors on the plane are drawn as
// species glyphs over the heatmap.
package viz
