// Package pattern defines particle identities as recurring activation
// patterns: a species template (footprint offsets with per-node timing
// rates, polarity, return period) plus the live per-instance state the
// recurrence rule needs: anchor, phase counter, and last-move memory.
// Species are a closed set; they differ only in data, never in engine
// behavior.
package pattern
