package pipeline

import (
	"sort"

	"github.com/manaforge/synergraph/internal/graph"
)

// Report statuses.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Validation codes, in check order. The first code found becomes the
// report's ReasonCode.
const (
	CodeDuplicateNodeID     = "E_DUP_NODE_ID"
	CodePlayableSetMismatch = "E_PLAYABLE_SET_MISMATCH"
	CodeDanglingEdge        = "E_DANGLING_EDGE"
	CodeSelfLoop            = "E_SELF_LOOP"
	CodeMissingCycleEdge    = "E_MISSING_CYCLE_EDGE"
	CodeUnsortedCollection  = "E_UNSORTED_COLLECTION"
)

// Report is the invariant-validation outcome: a data shape, never an
// error. Codes holds every violated invariant once, in check order.
type Report struct {
	Status     string
	Codes      []string
	ReasonCode string
}

// OK reports whether the pass found no violations.
func (r Report) OK() bool {
	return r.Status == StatusOK
}

// Validate runs the assertion-only invariant pass over one pipeline
// result. It belongs in tests, CI gates, and explicit --check runs, not on
// the hot path: Run's own outputs are expected to pass, and a violation
// here means a bug, not bad user input.
func Validate(req Request, res *Result) Report {
	v := &validator{}

	v.checkNodeIDUniqueness(res)
	v.checkPlayableSet(req, res)
	v.checkEdgeValidity(res)
	v.checkCandidateCycleEdges(res)
	v.checkSortedCollections(res)

	report := Report{Status: StatusOK, Codes: v.codes}
	if len(v.codes) > 0 {
		report.Status = StatusError
		report.ReasonCode = v.codes[0]
	}
	return report
}

type validator struct {
	codes []string
}

// add records a code once, preserving first-seen order.
func (v *validator) add(code string) {
	for _, c := range v.codes {
		if c == code {
			return
		}
	}
	v.codes = append(v.codes, code)
}

func (v *validator) checkNodeIDUniqueness(res *Result) {
	seen := make(map[string]bool, len(res.Graph.Nodes))
	for _, n := range res.Graph.Nodes {
		if seen[n.SlotID] {
			v.add(CodeDuplicateNodeID)
		}
		seen[n.SlotID] = true
	}
}

func (v *validator) checkPlayableSet(req Request, res *Result) {
	declared := make([]string, 0, len(req.Slots))
	for _, s := range req.Slots {
		if s.IsPlayable() {
			declared = append(declared, s.SlotID)
		}
	}
	sort.Strings(declared)

	actual := res.Graph.NodeIDs()
	if len(declared) != len(actual) {
		v.add(CodePlayableSetMismatch)
		return
	}
	for i := range declared {
		if declared[i] != actual[i] {
			v.add(CodePlayableSetMismatch)
			return
		}
	}
}

func (v *validator) checkEdgeValidity(res *Result) {
	nodes := make(map[string]bool, len(res.Graph.Nodes))
	for _, n := range res.Graph.Nodes {
		nodes[n.SlotID] = true
	}
	for _, e := range res.Graph.Edges {
		if e.A == e.B {
			v.add(CodeSelfLoop)
		}
		if !nodes[e.A] || !nodes[e.B] {
			v.add(CodeDanglingEdge)
		}
	}

	for _, e := range res.Expansion.CandidateEdges {
		if e.A == e.B {
			v.add(CodeSelfLoop)
		}
		if !nodes[e.A] || !nodes[e.B] {
			v.add(CodeDanglingEdge)
		}
	}

	bipNodes := make(map[string]map[string]bool)
	for _, n := range res.Expansion.Bipartite.Nodes {
		if bipNodes[n.Kind] == nil {
			bipNodes[n.Kind] = make(map[string]bool)
		}
		bipNodes[n.Kind][n.ID] = true
	}
	for _, e := range res.Expansion.Bipartite.Edges {
		if !bipNodes[graph.KindSlot][e.A] || !bipNodes[graph.KindPrimitive][e.B] {
			v.add(CodeDanglingEdge)
		}
	}
}

func (v *validator) checkCandidateCycleEdges(res *Result) {
	for _, cand := range res.Candidates.List {
		for _, key := range cand.EdgeKeys {
			if _, ok := res.Graph.EdgeByKey(key); !ok {
				v.add(CodeMissingCycleEdge)
			}
		}
	}
}

// checkSortedCollections re-verifies every documented emission order.
func (v *validator) checkSortedCollections(res *Result) {
	unsorted := func(ok bool) {
		if !ok {
			v.add(CodeUnsortedCollection)
		}
	}

	g := res.Graph
	unsorted(sort.SliceIsSorted(g.Nodes, func(i, j int) bool { return g.Nodes[i].SlotID < g.Nodes[j].SlotID }))
	unsorted(sort.SliceIsSorted(g.Edges, func(i, j int) bool {
		if g.Edges[i].A != g.Edges[j].A {
			return g.Edges[i].A < g.Edges[j].A
		}
		return g.Edges[i].B < g.Edges[j].B
	}))
	unsorted(sort.SliceIsSorted(g.Components, func(i, j int) bool { return g.Components[i].ID < g.Components[j].ID }))
	for _, c := range g.Components {
		unsorted(sort.StringsAreSorted(c.Nodes))
	}

	bip := res.Expansion.Bipartite
	unsorted(sort.SliceIsSorted(bip.Nodes, func(i, j int) bool {
		if bip.Nodes[i].Kind != bip.Nodes[j].Kind {
			return bip.Nodes[i].Kind < bip.Nodes[j].Kind
		}
		return bip.Nodes[i].ID < bip.Nodes[j].ID
	}))
	unsorted(sort.SliceIsSorted(bip.Edges, func(i, j int) bool {
		if bip.Edges[i].A != bip.Edges[j].A {
			return bip.Edges[i].A < bip.Edges[j].A
		}
		return bip.Edges[i].B < bip.Edges[j].B
	}))
	ce := res.Expansion.CandidateEdges
	unsorted(sort.SliceIsSorted(ce, func(i, j int) bool {
		if ce[i].A != ce[j].A {
			return ce[i].A < ce[j].A
		}
		return ce[i].B < ce[j].B
	}))
	for _, e := range ce {
		unsorted(sort.StringsAreSorted(e.Shared))
	}

	m := res.Motifs
	unsorted(sort.SliceIsSorted(m.Records, func(i, j int) bool { return m.Records[i].ID < m.Records[j].ID }))
	for _, r := range m.Records {
		unsorted(sort.StringsAreSorted(r.EdgeKeys))
		unsorted(sort.StringsAreSorted(r.SlotIDs))
	}

	d := res.Disruption
	unsorted(sort.SliceIsSorted(d.Impacts, func(i, j int) bool { return d.Impacts[i].SlotID < d.Impacts[j].SlotID }))
	unsorted(sort.SliceIsSorted(d.Articulations, func(i, j int) bool {
		if d.Articulations[i].DeltaComponents != d.Articulations[j].DeltaComponents {
			return d.Articulations[i].DeltaComponents > d.Articulations[j].DeltaComponents
		}
		return d.Articulations[i].SlotID < d.Articulations[j].SlotID
	}))
	unsorted(sort.SliceIsSorted(d.Bridges, func(i, j int) bool {
		if d.Bridges[i].DeltaComponents != d.Bridges[j].DeltaComponents {
			return d.Bridges[i].DeltaComponents > d.Bridges[j].DeltaComponents
		}
		if d.Bridges[i].A != d.Bridges[j].A {
			return d.Bridges[i].A < d.Bridges[j].A
		}
		return d.Bridges[i].B < d.Bridges[j].B
	}))

	p := res.Pathways
	unsorted(sort.SliceIsSorted(p.Distances, func(i, j int) bool {
		if p.Distances[i].Distance != p.Distances[j].Distance {
			return p.Distances[i].Distance < p.Distances[j].Distance
		}
		return p.Distances[i].SlotID < p.Distances[j].SlotID
	}))
	unsorted(sort.StringsAreSorted(p.Reachable))
	unsorted(sort.StringsAreSorted(p.Unreachable))

	sk := res.Skeleton
	unsorted(sort.SliceIsSorted(sk.Entries, func(i, j int) bool { return sk.Entries[i].ComponentID < sk.Entries[j].ComponentID }))

	cands := res.Candidates.List
	unsorted(sort.SliceIsSorted(cands, func(i, j int) bool { return cands[i].ID < cands[j].ID }))
	for _, cand := range cands {
		unsorted(sort.StringsAreSorted(cand.Primitives))
		unsorted(sort.StringsAreSorted(cand.EdgeTypes))
		unsorted(sort.IntsAreSorted(cand.RuleIndices))
	}
}
