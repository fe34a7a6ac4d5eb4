package graph

import (
	"sort"

	"github.com/manaforge/synergraph/internal/primitive"
)

// Bipartite node and edge kinds.
const (
	KindSlot         = "slot"
	KindPrimitive    = "primitive"
	KindHasPrimitive = "has_primitive"
	KindSharedPrim   = "shared_primitive"
)

// BipartiteNode is one node of the slot-primitive graph.
type BipartiteNode struct {
	Kind string // KindSlot or KindPrimitive
	ID   string
}

// BipartiteEdge links a slot to a primitive it carries.
type BipartiteEdge struct {
	Kind string // always KindHasPrimitive
	A    string // slot id
	B    string // primitive token
}

// BipartiteStats summarizes the bipartite graph.
type BipartiteStats struct {
	SlotNodes      int
	PrimitiveNodes int
	Edges          int
}

// Bipartite is the slot-primitive graph: one node per given slot, one node
// per primitive referenced by at least one of them, one edge per ownership.
// Nodes are sorted by (kind, id), edges by (kind, a, b).
type Bipartite struct {
	Nodes []BipartiteNode
	Edges []BipartiteEdge
	Stats BipartiteStats
}

// BuildBipartite restates the primitive index as a bipartite graph over the
// given slots. Slots with no primitives still appear as nodes; primitives
// referenced by none of the given slots do not.
func BuildBipartite(slotIDs []string, idx *primitive.Index) *Bipartite {
	sorted := append([]string(nil), slotIDs...)
	sort.Strings(sorted)

	bip := &Bipartite{}
	primSeen := make(map[string]bool)

	for _, id := range sorted {
		bip.Nodes = append(bip.Nodes, BipartiteNode{Kind: KindSlot, ID: id})
		for _, p := range idx.Primitives(id) {
			primSeen[p] = true
			bip.Edges = append(bip.Edges, BipartiteEdge{Kind: KindHasPrimitive, A: id, B: p})
		}
	}

	prims := make([]string, 0, len(primSeen))
	for p := range primSeen {
		prims = append(prims, p)
	}
	sort.Strings(prims)
	for _, p := range prims {
		bip.Nodes = append(bip.Nodes, BipartiteNode{Kind: KindPrimitive, ID: p})
	}

	// (kind, id) puts primitive nodes before slot nodes; edges share one
	// kind so (a, b) decides.
	sort.Slice(bip.Nodes, func(i, j int) bool {
		if bip.Nodes[i].Kind != bip.Nodes[j].Kind {
			return bip.Nodes[i].Kind < bip.Nodes[j].Kind
		}
		return bip.Nodes[i].ID < bip.Nodes[j].ID
	})
	sort.Slice(bip.Edges, func(i, j int) bool {
		if bip.Edges[i].A != bip.Edges[j].A {
			return bip.Edges[i].A < bip.Edges[j].A
		}
		return bip.Edges[i].B < bip.Edges[j].B
	})

	bip.Stats = BipartiteStats{
		SlotNodes:      len(sorted),
		PrimitiveNodes: len(prims),
		Edges:          len(bip.Edges),
	}
	return bip
}

// slotPrimitives returns each slot's sorted primitive list, truncated to
// maxPerSlot. The boolean reports whether any slot was truncated.
func slotPrimitives(slotIDs []string, idx *primitive.Index, maxPerSlot int) (map[string][]string, bool) {
	capped := false
	out := make(map[string][]string, len(slotIDs))
	for _, id := range slotIDs {
		prims := idx.Primitives(id)
		if len(prims) > maxPerSlot {
			prims = prims[:maxPerSlot]
			capped = true
		}
		out[id] = prims
	}
	return out, capped
}
