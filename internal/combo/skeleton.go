package combo

import (
	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/graph"
)

// SkeletonHashDomain separates skeleton fingerprints from other layers.
const SkeletonHashDomain = "synergraph/skeleton/v1"

// SkipReasonSizeCap marks a component too large for cycle search.
const SkipReasonSizeCap = "skipped: size cap"

// Cycle is one enumerated small cycle. Slots holds the node sequence in
// ascending-index enumeration order; the cycle closes from the last slot
// back to the first.
type Cycle struct {
	ComponentID string
	Length      int
	Slots       []string
}

// ComponentEntry is the cycle summary for one component. SmallestCycle is
// zero when the component is acyclic or when the search was skipped; the
// skip is explicit in SearchSkipped and SkipReason.
type ComponentEntry struct {
	ComponentID   string
	Nodes         int
	Edges         int
	Cyclomatic    int
	HasCycle      bool
	SmallestCycle int
	SearchSkipped bool
	SkipReason    string
	Cycles        []Cycle
}

// SkeletonTotals summarizes the skeleton. The cap-reached flags record
// that enumeration stopped at the configured maximum.
type SkeletonTotals struct {
	Components          int
	CyclicComponents    int
	SkippedComponents   int
	Triangles           int
	FourCycles          int
	TriangleCapReached  bool
	FourCycleCapReached bool
}

// Skeleton is the full per-component cycle analysis.
type Skeleton struct {
	Entries []ComponentEntry
	Bounds  Bounds
	Totals  SkeletonTotals
	Hash    string
	Payload canon.Object
}

// BuildSkeleton computes the per-component cyclomatic numbers, smallest
// cycle lengths, and the bounded triangle and 4-cycle enumerations. The
// two cycle caps are global: components are processed in id order and
// enumeration halts the moment a cap is reached.
func BuildSkeleton(g *graph.Typed, bounds Bounds) *Skeleton {
	sk := &Skeleton{Bounds: bounds.Sanitize()}

	edgeCount := make(map[string]int, len(g.Components))
	for _, e := range g.Edges {
		edgeCount[g.NodeComponent[e.A]]++
	}

	triangleBudget := sk.Bounds.TriangleCap
	fourCycleBudget := sk.Bounds.FourCycleCap
	adj := g.Adjacency()

	for _, c := range g.Components {
		entry := ComponentEntry{
			ComponentID: c.ID,
			Nodes:       len(c.Nodes),
			Edges:       edgeCount[c.ID],
		}
		entry.Cyclomatic = entry.Edges - entry.Nodes + 1
		if entry.Cyclomatic < 0 {
			entry.Cyclomatic = 0
		}
		entry.HasCycle = entry.Cyclomatic > 0
		if entry.HasCycle {
			sk.Totals.CyclicComponents++
		}

		if entry.Nodes > sk.Bounds.BFSNodeCap {
			entry.SearchSkipped = true
			entry.SkipReason = SkipReasonSizeCap
			sk.Totals.SkippedComponents++
		} else {
			entry.SmallestCycle = smallestCycle(c.Nodes, adj)

			triangles, triCapped := enumerateTriangles(c.Nodes, adj, triangleBudget)
			for _, tri := range triangles {
				entry.Cycles = append(entry.Cycles, Cycle{ComponentID: c.ID, Length: 3, Slots: tri})
			}
			triangleBudget -= len(triangles)
			sk.Totals.Triangles += len(triangles)
			sk.Totals.TriangleCapReached = sk.Totals.TriangleCapReached || triCapped

			quads, quadCapped := enumerateFourCycles(c.Nodes, adj, fourCycleBudget)
			for _, quad := range quads {
				entry.Cycles = append(entry.Cycles, Cycle{ComponentID: c.ID, Length: 4, Slots: quad})
			}
			fourCycleBudget -= len(quads)
			sk.Totals.FourCycles += len(quads)
			sk.Totals.FourCycleCapReached = sk.Totals.FourCycleCapReached || quadCapped
		}

		sk.Entries = append(sk.Entries, entry)
	}

	sk.Totals.Components = len(sk.Entries)
	sk.Payload = sk.payload(g)
	sk.Hash = canon.MustHashPayload(SkeletonHashDomain, sk.Payload)
	return sk
}

// smallestCycle returns the length of the shortest cycle touching the
// given nodes, or zero when none exists. One BFS per start node: an edge
// to an already-visited non-parent closes a cycle of length
// dist[u] + dist[v] + 1, and the minimum over all starts is exact.
func smallestCycle(nodes []string, adj map[string][]string) int {
	best := 0
	for _, start := range nodes {
		dist := map[string]int{start: 0}
		parent := map[string]string{start: ""}
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if d, seen := dist[next]; seen {
					if next != parent[cur] {
						if length := dist[cur] + d + 1; best == 0 || length < best {
							best = length
						}
					}
					continue
				}
				dist[next] = dist[cur] + 1
				parent[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return best
}

// enumerateTriangles emits node triples i<j<k whose three edges all exist,
// in ascending index order, stopping the moment the budget is exhausted.
// The capped flag reports that the budget cut enumeration short.
func enumerateTriangles(nodes []string, adj map[string][]string, budget int) ([][]string, bool) {
	var out [][]string
	has := adjacencySet(nodes, adj)
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if !has[nodes[i]][nodes[j]] {
				continue
			}
			for k := j + 1; k < len(nodes); k++ {
				if !has[nodes[j]][nodes[k]] || !has[nodes[i]][nodes[k]] {
					continue
				}
				if len(out) == budget {
					return out, true
				}
				out = append(out, []string{nodes[i], nodes[j], nodes[k]})
			}
		}
	}
	return out, false
}

// enumerateFourCycles emits node quadruples i<j<k<l forming the canonical
// i-j-k-l-i adjacency pattern, in ascending index order, stopping the
// moment the budget is exhausted. Quadruples whose cycle order differs
// from the sorted order are intentionally not matched.
func enumerateFourCycles(nodes []string, adj map[string][]string, budget int) ([][]string, bool) {
	var out [][]string
	has := adjacencySet(nodes, adj)
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if !has[nodes[i]][nodes[j]] {
				continue
			}
			for k := j + 1; k < len(nodes); k++ {
				if !has[nodes[j]][nodes[k]] {
					continue
				}
				for l := k + 1; l < len(nodes); l++ {
					if !has[nodes[k]][nodes[l]] || !has[nodes[l]][nodes[i]] {
						continue
					}
					if len(out) == budget {
						return out, true
					}
					out = append(out, []string{nodes[i], nodes[j], nodes[k], nodes[l]})
				}
			}
		}
	}
	return out, false
}

// adjacencySet builds constant-time edge membership for one component.
func adjacencySet(nodes []string, adj map[string][]string) map[string]map[string]bool {
	has := make(map[string]map[string]bool, len(nodes))
	for _, n := range nodes {
		has[n] = make(map[string]bool, len(adj[n]))
		for _, next := range adj[n] {
			has[n][next] = true
		}
	}
	return has
}

func (sk *Skeleton) payload(g *graph.Typed) canon.Object {
	entries := make(canon.Array, 0, len(sk.Entries))
	for _, entry := range sk.Entries {
		cycles := make(canon.Array, 0, len(entry.Cycles))
		for _, cy := range entry.Cycles {
			cycles = append(cycles, canon.Object{
				"length": canon.Int(int64(cy.Length)),
				"slots":  canon.StringArray(cy.Slots),
			})
		}
		entries = append(entries, canon.Object{
			"component_id":   canon.String(entry.ComponentID),
			"nodes":          canon.Int(int64(entry.Nodes)),
			"edges":          canon.Int(int64(entry.Edges)),
			"cyclomatic":     canon.Int(int64(entry.Cyclomatic)),
			"has_cycle":      canon.Bool(entry.HasCycle),
			"smallest_cycle": canon.Int(int64(entry.SmallestCycle)),
			"search_skipped": canon.Bool(entry.SearchSkipped),
			"skip_reason":    canon.String(entry.SkipReason),
			"cycles":         cycles,
		})
	}

	return canon.Object{
		"schema":               canon.String(canon.SchemaVersion),
		"graph_structure_hash": canon.String(g.StructureHash),
		"graph_typed_hash":     canon.String(g.TypedHash),
		"bounds": canon.Object{
			"bfs_node_cap":   canon.Int(int64(sk.Bounds.BFSNodeCap)),
			"triangle_cap":   canon.Int(int64(sk.Bounds.TriangleCap)),
			"four_cycle_cap": canon.Int(int64(sk.Bounds.FourCycleCap)),
		},
		"components": entries,
		"totals": canon.Object{
			"components":             canon.Int(int64(sk.Totals.Components)),
			"cyclic_components":      canon.Int(int64(sk.Totals.CyclicComponents)),
			"skipped_components":     canon.Int(int64(sk.Totals.SkippedComponents)),
			"triangles":              canon.Int(int64(sk.Totals.Triangles)),
			"four_cycles":            canon.Int(int64(sk.Totals.FourCycles)),
			"triangle_cap_reached":   canon.Bool(sk.Totals.TriangleCapReached),
			"four_cycle_cap_reached": canon.Bool(sk.Totals.FourCycleCapReached),
		},
	}
}

// CyclesInOrder returns every enumerated cycle across all components, in
// entry order. The candidate lift consumes this.
func (sk *Skeleton) CyclesInOrder() []Cycle {
	var out []Cycle
	for _, entry := range sk.Entries {
		out = append(out, entry.Cycles...)
	}
	return out
}
