// Package analysis holds the three sibling analyzers over the typed graph:
// motifs (named structural patterns), disruption (articulation nodes and
// bridge edges via removal simulation), and pathways (commander-rooted
// reachability).
//
// Every analyzer treats the graph as read-only and returns an independent
// result struct with its own fingerprint, chained from the graph's two
// fingerprints. Emission order inside every result is fully determined by
// documented sort keys, never by map iteration.
package analysis
