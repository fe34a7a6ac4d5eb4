package combo

import (
	"fmt"
	"sort"

	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/graph"
	"github.com/manaforge/synergraph/internal/rules"
)

// Per-candidate and whole-list hash domains.
const (
	CandidateHashDomain  = "synergraph/candidate/v1"
	CandidatesHashDomain = "synergraph/candidates/v1"
)

// Candidate types, derived from cycle length.
const (
	TypeTriangle  = "triangle"
	TypeFourCycle = "four_cycle"
)

// EdgeEvidence carries one cycle edge's typed matches.
type EdgeEvidence struct {
	EdgeKey       string
	Shared        []string
	Matches       []rules.TypedMatch
	RawMatchCount int
}

// Candidate is one lifted cycle. Slots is the cyclic node sequence,
// OracleIDs aligns with it, and EdgeKeys closes the loop from the last
// slot back to the first. A cycle edge absent from the graph's edge index
// lands in MissingEdges instead of Evidence.
//
// Hash covers only the identity fields (type, length, component, slots,
// oracle ids, edge keys, rule indices), so evidence-only additions leave
// it unchanged.
type Candidate struct {
	ID           string
	Type         string
	Length       int
	ComponentID  string
	Slots        []string
	OracleIDs    []string
	EdgeKeys     []string
	Evidence     []EdgeEvidence
	MissingEdges []string
	Primitives   []string
	EdgeTypes    []string
	RuleIndices  []int
	Hash         string
}

// CandidateTotals summarizes the candidate list.
type CandidateTotals struct {
	Candidates       int
	Triangles        int
	FourCycles       int
	WithMissingEdges int
}

// Candidates is the full lift output. ByComponent and ByLength group
// candidate ids for downstream consumers; both preserve list order.
type Candidates struct {
	List        []Candidate
	ByComponent map[string][]string
	ByLength    map[int][]string
	Totals      CandidateTotals
	Hash        string
	Payload     canon.Object
}

// BuildCandidates lifts every enumerated cycle into a combo candidate.
// Ids are assigned in skeleton entry order, so the same graph and bounds
// always produce the same id for the same cycle.
func BuildCandidates(g *graph.Typed, sk *Skeleton) *Candidates {
	c := &Candidates{
		ByComponent: make(map[string][]string),
		ByLength:    make(map[int][]string),
	}

	nodes := make(map[string]graph.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.SlotID] = n
	}

	for i, cycle := range sk.CyclesInOrder() {
		cand := liftCycle(g, nodes, cycle)
		cand.ID = fmt.Sprintf("cand_%03d", i)
		c.List = append(c.List, cand)
		c.ByComponent[cand.ComponentID] = append(c.ByComponent[cand.ComponentID], cand.ID)
		c.ByLength[cand.Length] = append(c.ByLength[cand.Length], cand.ID)

		switch cand.Type {
		case TypeTriangle:
			c.Totals.Triangles++
		case TypeFourCycle:
			c.Totals.FourCycles++
		}
		if len(cand.MissingEdges) > 0 {
			c.Totals.WithMissingEdges++
		}
	}

	c.Totals.Candidates = len(c.List)
	c.Payload = c.payload(g, sk)
	c.Hash = canon.MustHashPayload(CandidatesHashDomain, c.Payload)
	return c
}

// liftCycle resolves one cycle's edges, evidence, and unions. The
// candidate hash is computed here, before the id is assigned, so renumbering
// neighbors never changes it.
func liftCycle(g *graph.Typed, nodes map[string]graph.Node, cycle Cycle) Candidate {
	cand := Candidate{
		Type:         TypeTriangle,
		Length:       cycle.Length,
		ComponentID:  cycle.ComponentID,
		Slots:        append([]string(nil), cycle.Slots...),
		MissingEdges: []string{},
	}
	if cycle.Length == 4 {
		cand.Type = TypeFourCycle
	}

	prims := map[string]bool{}
	for _, slot := range cand.Slots {
		node := nodes[slot]
		cand.OracleIDs = append(cand.OracleIDs, node.OracleID)
		for _, p := range node.Primitives {
			prims[p] = true
		}
	}

	edgeTypes := map[string]bool{}
	ruleIndices := map[int]bool{}
	for i, slot := range cand.Slots {
		next := cand.Slots[(i+1)%len(cand.Slots)]
		key := graph.EdgeKey(slot, next)
		cand.EdgeKeys = append(cand.EdgeKeys, key)

		edge, ok := g.EdgeByKey(key)
		if !ok {
			cand.MissingEdges = append(cand.MissingEdges, key)
			continue
		}
		cand.Evidence = append(cand.Evidence, EdgeEvidence{
			EdgeKey:       key,
			Shared:        append([]string(nil), edge.Shared...),
			Matches:       append([]rules.TypedMatch(nil), edge.Matches...),
			RawMatchCount: edge.RawMatchCount,
		})
		for _, m := range edge.Matches {
			edgeTypes[m.EdgeType] = true
			ruleIndices[m.RuleIndex] = true
		}
	}

	cand.Primitives = sortedStringSet(prims)
	cand.EdgeTypes = sortedStringSet(edgeTypes)
	cand.RuleIndices = sortedIntSet(ruleIndices)
	cand.Hash = canon.MustHashPayload(CandidateHashDomain, cand.identityPayload())
	return cand
}

// identityPayload is the hashed subset of candidate fields. Evidence,
// primitive unions, and totals are deliberately excluded: they derive from
// the same graph and would only make the hash brittle.
func (cand *Candidate) identityPayload() canon.Object {
	indices := make(canon.Array, 0, len(cand.RuleIndices))
	for _, i := range cand.RuleIndices {
		indices = append(indices, canon.Int(int64(i)))
	}
	return canon.Object{
		"schema":       canon.String(canon.SchemaVersion),
		"type":         canon.String(cand.Type),
		"length":       canon.Int(int64(cand.Length)),
		"component_id": canon.String(cand.ComponentID),
		"slots":        canon.StringArray(cand.Slots),
		"oracle_ids":   canon.StringArray(cand.OracleIDs),
		"edge_keys":    canon.StringArray(cand.EdgeKeys),
		"rule_indices": indices,
	}
}

func (c *Candidates) payload(g *graph.Typed, sk *Skeleton) canon.Object {
	list := make(canon.Array, 0, len(c.List))
	for _, cand := range c.List {
		list = append(list, canon.Object{
			"id":   canon.String(cand.ID),
			"hash": canon.String(cand.Hash),
		})
	}

	return canon.Object{
		"schema":               canon.String(canon.SchemaVersion),
		"graph_structure_hash": canon.String(g.StructureHash),
		"graph_typed_hash":     canon.String(g.TypedHash),
		"skeleton_hash":        canon.String(sk.Hash),
		"candidates":           list,
		"totals": canon.Object{
			"candidates":         canon.Int(int64(c.Totals.Candidates)),
			"triangles":          canon.Int(int64(c.Totals.Triangles)),
			"four_cycles":        canon.Int(int64(c.Totals.FourCycles)),
			"with_missing_edges": canon.Int(int64(c.Totals.WithMissingEdges)),
		},
	}
}

func sortedStringSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func sortedIntSet(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
