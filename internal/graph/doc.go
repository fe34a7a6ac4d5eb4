// Package graph builds the structural layers of the pipeline: the
// slot-primitive bipartite graph, the bounded candidate-edge expansion, and
// the typed slot graph with its connected components.
//
// # Architecture
//
// Three artifacts, each immutable once built:
//
//   - Bipartite: one node per slot, one per referenced primitive, one
//     has_primitive edge per ownership. Pure restatement of the primitive
//     index in graph form.
//   - Expansion: slot-slot candidate edges derived from shared primitives
//     under three caps (primitives per slot, slots per primitive, total
//     edges). Truncation is sort-then-truncate, never arbitrary selection;
//     cap activation is reported in stats flags.
//   - Typed: the slot graph proper. Full pairwise primitive intersection
//     over playable slots, closed-world rule classification on every edge,
//     BFS components, and two fingerprints (structure only, structure plus
//     typed-match metadata).
//
// Ordering contracts: nodes sort by slot id, edges by (a, b), bipartite
// collections by (kind, id) / (kind, a, b). Component ids follow BFS
// discovery order of the first unvisited node in sorted slot-id order.
// Nothing in this package reads a clock or randomness; identical input
// yields byte-identical canonical payloads.
package graph
