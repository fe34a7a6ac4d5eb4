// Package combo extracts cycle structure from the typed graph: a
// per-component skeleton (cyclomatic number, smallest cycle, bounded
// triangle and 4-cycle enumeration) and the lifted combo candidates that
// carry typed-edge evidence for downstream ranking.
//
// Enumeration is capped, never sampled. Caps cut sorted ascending-index
// enumeration at a fixed count, so the surviving cycles are the same on
// every run. The skeleton hash chains from the graph fingerprints and the
// candidate fingerprint chains from both the skeleton and the graph.
package combo
