package graph

import (
	"sort"

	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/primitive"
)

// ExpansionHashDomain separates graph_v1 digests.
const ExpansionHashDomain = "synergraph/expansion/v1"

// CandidateEdge pairs two slots sharing at least one retained primitive.
// A < B under slot-id ordering; Shared is sorted.
type CandidateEdge struct {
	Kind   string // always KindSharedPrim
	A      string
	B      string
	Shared []string
}

// ExpansionStats reports sizes and which caps actually truncated. Downstream
// consumers use the flags to detect lossy expansion.
type ExpansionStats struct {
	PairsBeforeCap int
	EdgesEmitted   int

	PrimsPerSlotCapped bool
	SlotsPerPrimCapped bool
	EdgeCapApplied     bool
}

// Expansion is the graph_v1 artifact: the bipartite graph plus the bounded
// candidate-edge set, the sanitized bounds that produced it, and its
// fingerprint.
type Expansion struct {
	Bipartite      *Bipartite
	CandidateEdges []CandidateEdge
	Bounds         Bounds
	Stats          ExpansionStats
	Hash           string
	Payload        canon.Object
}

// ExpandCandidateEdges derives the bounded slot-slot candidate edges.
//
// Cap order is part of the deterministic contract:
//  1. each slot's sorted primitive list truncates to MaxPrimitivesPerSlot
//  2. each primitive's sorted slot list truncates to MaxSlotsPerPrimitive
//  3. pairs accumulate per retained primitive, sort by (a, b), and truncate
//     to MaxCandidateEdges
//
// Bounds are sanitized here; callers may pass zero values.
func ExpandCandidateEdges(slotIDs []string, idx *primitive.Index, bip *Bipartite, bounds Bounds) *Expansion {
	bounds = bounds.Sanitize()

	exp := &Expansion{
		Bipartite: bip,
		Bounds:    bounds,
	}

	perSlot, primsCapped := slotPrimitives(slotIDs, idx, bounds.MaxPrimitivesPerSlot)
	exp.Stats.PrimsPerSlotCapped = primsCapped

	// Rebuild primitive → slots from the truncated per-slot sets, in
	// sorted slot order so each list is born sorted.
	sorted := make([]string, 0, len(perSlot))
	for id := range perSlot {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	perPrim := make(map[string][]string)
	for _, id := range sorted {
		for _, p := range perSlot[id] {
			perPrim[p] = append(perPrim[p], id)
		}
	}
	for p, ids := range perPrim {
		if len(ids) > bounds.MaxSlotsPerPrimitive {
			perPrim[p] = ids[:bounds.MaxSlotsPerPrimitive]
			exp.Stats.SlotsPerPrimCapped = true
		}
	}

	// Accumulate shared primitives per unordered slot pair.
	type pairKey struct{ a, b string }
	shared := make(map[pairKey]map[string]bool)
	for p, ids := range perPrim {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				k := pairKey{ids[i], ids[j]}
				if shared[k] == nil {
					shared[k] = make(map[string]bool)
				}
				shared[k][p] = true
			}
		}
	}

	pairs := make([]pairKey, 0, len(shared))
	for k := range shared {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
	exp.Stats.PairsBeforeCap = len(pairs)

	if len(pairs) > bounds.MaxCandidateEdges {
		pairs = pairs[:bounds.MaxCandidateEdges]
		exp.Stats.EdgeCapApplied = true
	}

	for _, k := range pairs {
		prims := make([]string, 0, len(shared[k]))
		for p := range shared[k] {
			prims = append(prims, p)
		}
		sort.Strings(prims)
		exp.CandidateEdges = append(exp.CandidateEdges, CandidateEdge{
			Kind:   KindSharedPrim,
			A:      k.a,
			B:      k.b,
			Shared: prims,
		})
	}
	exp.Stats.EdgesEmitted = len(exp.CandidateEdges)

	exp.Payload = exp.payload()
	exp.Hash = canon.MustHashPayload(ExpansionHashDomain, exp.Payload)
	return exp
}

// payload is the canonical graph_v1 payload: bipartite, candidate edges,
// bounds, stats.
func (exp *Expansion) payload() canon.Object {
	bipNodes := make(canon.Array, 0, len(exp.Bipartite.Nodes))
	for _, n := range exp.Bipartite.Nodes {
		bipNodes = append(bipNodes, canon.Object{
			"kind": canon.String(n.Kind),
			"id":   canon.String(n.ID),
		})
	}
	bipEdges := make(canon.Array, 0, len(exp.Bipartite.Edges))
	for _, e := range exp.Bipartite.Edges {
		bipEdges = append(bipEdges, canon.Object{
			"kind": canon.String(e.Kind),
			"a":    canon.String(e.A),
			"b":    canon.String(e.B),
		})
	}
	candidates := make(canon.Array, 0, len(exp.CandidateEdges))
	for _, e := range exp.CandidateEdges {
		candidates = append(candidates, canon.Object{
			"kind":   canon.String(e.Kind),
			"a":      canon.String(e.A),
			"b":      canon.String(e.B),
			"shared": canon.StringArray(e.Shared),
		})
	}

	return canon.Object{
		"schema": canon.String(canon.SchemaVersion),
		"bipartite": canon.Object{
			"nodes": bipNodes,
			"edges": bipEdges,
			"stats": canon.Object{
				"slot_nodes":      canon.Int(int64(exp.Bipartite.Stats.SlotNodes)),
				"primitive_nodes": canon.Int(int64(exp.Bipartite.Stats.PrimitiveNodes)),
				"edges":           canon.Int(int64(exp.Bipartite.Stats.Edges)),
			},
		},
		"candidate_edges": candidates,
		"bounds": canon.Object{
			"max_primitives_per_slot": canon.Int(int64(exp.Bounds.MaxPrimitivesPerSlot)),
			"max_slots_per_primitive": canon.Int(int64(exp.Bounds.MaxSlotsPerPrimitive)),
			"max_candidate_edges":     canon.Int(int64(exp.Bounds.MaxCandidateEdges)),
		},
		"stats": canon.Object{
			"pairs_before_cap":      canon.Int(int64(exp.Stats.PairsBeforeCap)),
			"edges_emitted":         canon.Int(int64(exp.Stats.EdgesEmitted)),
			"prims_per_slot_capped": canon.Bool(exp.Stats.PrimsPerSlotCapped),
			"slots_per_prim_capped": canon.Bool(exp.Stats.SlotsPerPrimCapped),
			"edge_cap_applied":      canon.Bool(exp.Stats.EdgeCapApplied),
		},
	}
}
