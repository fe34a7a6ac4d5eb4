package graph

import (
	"fmt"
	"sort"

	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/primitive"
	"github.com/manaforge/synergraph/internal/rules"
)

// Typed graph hash domains. Structure covers nodes, edges, and components;
// the typed domain additionally covers match metadata.
const (
	StructureHashDomain = "synergraph/graph/v1"
	TypedHashDomain     = "synergraph/graph/v1/typed"
)

// Node is one playable slot in the typed graph.
type Node struct {
	SlotID         string
	NodeType       string
	OracleID       string
	Primitives     []string
	Degree         int
	PrimitiveCount int
	IsIsolated     bool
}

// Edge is an undirected typed edge between two playable slots, A < B.
type Edge struct {
	A      string
	B      string
	Key    string
	Shared []string

	// Matches holds enabled typed matches in rule-table order.
	Matches []rules.TypedMatch

	// RawMatchCount counts matches before disable flags, so rule toggles
	// remain auditable on the edge itself.
	RawMatchCount int
}

// Component is a maximal connected subgraph. Nodes are sorted by slot id.
type Component struct {
	ID    string
	Nodes []string
}

// TypedTotals summarizes the typed graph.
type TypedTotals struct {
	Nodes          int
	Edges          int
	Components     int
	IsolatedNodes  int
	EnabledMatches int
	RawMatches     int
}

// Typed is the slot graph every analyzer consumes. It is immutable after
// Build; analyzers that need mutable views copy via Adjacency.
type Typed struct {
	Nodes      []Node
	Edges      []Edge
	Components []Component

	// NodeComponent maps slot id to owning component id.
	NodeComponent map[string]string

	// TypeCounts counts enabled matches per edge type; TypeEdges indexes
	// sorted edge keys per edge type. Absent types are absent keys.
	TypeCounts map[string]int
	TypeEdges  map[string][]string

	Totals TypedTotals

	// StructureHash fingerprints nodes, edges, and components only.
	// TypedHash additionally covers typed-match metadata and the rule
	// table's disabled set. Both feed every downstream layer hash.
	// Payload is the full typed payload behind TypedHash.
	StructureHash string
	TypedHash     string
	Payload       canon.Object

	edgeByKey map[string]int
	commander string
}

// EdgeKey builds the canonical undirected edge key for two slot ids.
func EdgeKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Build constructs the typed graph from the playable slots in the given
// list. This stage cannot fail: no commander, no edges, or a fully
// disconnected graph are all valid outputs.
func Build(slots []deck.Slot, idx *primitive.Index, table *rules.Table) *Typed {
	g := &Typed{
		NodeComponent: make(map[string]string),
		TypeCounts:    make(map[string]int),
		TypeEdges:     make(map[string][]string),
		edgeByKey:     make(map[string]int),
	}

	playable := make([]deck.Slot, 0, len(slots))
	for _, s := range slots {
		if s.IsPlayable() {
			playable = append(playable, s)
		}
	}
	sort.Slice(playable, func(i, j int) bool { return playable[i].SlotID < playable[j].SlotID })

	sets := make(map[string]rules.Set, len(playable))
	for _, s := range playable {
		prims := append([]string(nil), idx.Primitives(s.SlotID)...)
		g.Nodes = append(g.Nodes, Node{
			SlotID:         s.SlotID,
			NodeType:       s.NodeType,
			OracleID:       s.OracleID,
			Primitives:     prims,
			PrimitiveCount: len(prims),
		})
		sets[s.SlotID] = rules.NewSet(prims)
		if s.IsCommander() {
			g.commander = s.SlotID
		}
	}

	// Full pairwise intersection in sorted order. The expansion's
	// candidate edges are a separately bounded artifact; the typed graph
	// is exact.
	for i := 0; i < len(g.Nodes); i++ {
		for j := i + 1; j < len(g.Nodes); j++ {
			a, b := g.Nodes[i].SlotID, g.Nodes[j].SlotID
			shared := intersectSorted(g.Nodes[i].Primitives, g.Nodes[j].Primitives)
			if len(shared) == 0 {
				continue
			}
			eval := table.Evaluate(sets[a], sets[b])
			edge := Edge{
				A:             a,
				B:             b,
				Key:           EdgeKey(a, b),
				Shared:        shared,
				Matches:       eval.Matches,
				RawMatchCount: eval.RawCount,
			}
			g.edgeByKey[edge.Key] = len(g.Edges)
			g.Edges = append(g.Edges, edge)

			g.Nodes[i].Degree++
			g.Nodes[j].Degree++
			g.Totals.RawMatches += eval.RawCount
			for _, m := range eval.Matches {
				g.TypeCounts[m.EdgeType]++
				g.TypeEdges[m.EdgeType] = append(g.TypeEdges[m.EdgeType], edge.Key)
				g.Totals.EnabledMatches++
			}
		}
	}

	for i := range g.Nodes {
		g.Nodes[i].IsIsolated = g.Nodes[i].Degree == 0
		if g.Nodes[i].IsIsolated {
			g.Totals.IsolatedNodes++
		}
	}
	for edgeType := range g.TypeEdges {
		sort.Strings(g.TypeEdges[edgeType])
	}

	g.buildComponents()

	g.Totals.Nodes = len(g.Nodes)
	g.Totals.Edges = len(g.Edges)
	g.Totals.Components = len(g.Components)

	g.StructureHash = canon.MustHashPayload(StructureHashDomain, g.structurePayload())
	g.Payload = g.typedPayload(table)
	g.TypedHash = canon.MustHashPayload(TypedHashDomain, g.Payload)
	return g
}

// buildComponents assigns components by BFS. The first unvisited node in
// sorted slot-id order seeds the next component, so numbering never depends
// on map iteration.
func (g *Typed) buildComponents() {
	adj := g.Adjacency()
	visited := make(map[string]bool, len(g.Nodes))

	for _, n := range g.Nodes {
		if visited[n.SlotID] {
			continue
		}
		id := fmt.Sprintf("comp_%03d", len(g.Components))
		members := bfsFrom(n.SlotID, adj, visited)
		sort.Strings(members)
		g.Components = append(g.Components, Component{ID: id, Nodes: members})
		for _, m := range members {
			g.NodeComponent[m] = id
		}
	}
}

// bfsFrom collects the connected component containing start, marking
// visited nodes. Neighbors expand in sorted order.
func bfsFrom(start string, adj map[string][]string, visited map[string]bool) []string {
	visited[start] = true
	queue := []string{start}
	members := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
			members = append(members, next)
		}
	}
	return members
}

// Adjacency returns a fresh sorted adjacency list. Callers may mutate the
// result freely; the graph itself stays immutable.
func (g *Typed) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n.SlotID] = nil
	}
	for _, e := range g.Edges {
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}
	for id := range adj {
		sort.Strings(adj[id])
	}
	return adj
}

// EdgeByKey looks up an edge by its canonical key.
func (g *Typed) EdgeByKey(key string) (Edge, bool) {
	i, ok := g.edgeByKey[key]
	if !ok {
		return Edge{}, false
	}
	return g.Edges[i], true
}

// CommanderID returns the commander's slot id, or "" when no playable
// commander exists.
func (g *Typed) CommanderID() string {
	return g.commander
}

// NodeIDs returns all slot ids in sorted order.
func (g *Typed) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.SlotID
	}
	return ids
}

// intersectSorted intersects two sorted string slices, producing a sorted
// result.
func intersectSorted(a, b []string) []string {
	var out []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// StructurePayload rebuilds the canonical payload behind StructureHash.
// Unlike Payload it is not cached; callers wanting the bytes rather than
// the fingerprint pay the rebuild.
func (g *Typed) StructurePayload() canon.Object {
	return g.structurePayload()
}

// structurePayload covers nodes, edges, and components. Rule toggles must
// not change this payload.
func (g *Typed) structurePayload() canon.Object {
	nodes := make(canon.Array, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, canon.Object{
			"slot_id":         canon.String(n.SlotID),
			"node_type":       canon.String(n.NodeType),
			"degree":          canon.Int(int64(n.Degree)),
			"primitive_count": canon.Int(int64(n.PrimitiveCount)),
			"is_isolated":     canon.Bool(n.IsIsolated),
			"primitives":      canon.StringArray(n.Primitives),
		})
	}
	edges := make(canon.Array, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, canon.Object{
			"a":      canon.String(e.A),
			"b":      canon.String(e.B),
			"key":    canon.String(e.Key),
			"shared": canon.StringArray(e.Shared),
		})
	}
	components := make(canon.Array, 0, len(g.Components))
	for _, c := range g.Components {
		components = append(components, canon.Object{
			"id":    canon.String(c.ID),
			"nodes": canon.StringArray(c.Nodes),
		})
	}

	return canon.Object{
		"schema":     canon.String(canon.SchemaVersion),
		"nodes":      nodes,
		"edges":      edges,
		"components": components,
		"totals": canon.Object{
			"nodes":          canon.Int(int64(g.Totals.Nodes)),
			"edges":          canon.Int(int64(g.Totals.Edges)),
			"components":     canon.Int(int64(g.Totals.Components)),
			"isolated_nodes": canon.Int(int64(g.Totals.IsolatedNodes)),
		},
	}
}

// typedPayload extends the structure payload with match metadata: per-edge
// matches, per-type counts and edge keys, and the table's version and
// disabled set.
func (g *Typed) typedPayload(table *rules.Table) canon.Object {
	payload := g.structurePayload()

	matches := make(canon.Array, 0, len(g.Edges))
	for _, e := range g.Edges {
		edgeMatches := make(canon.Array, 0, len(e.Matches))
		for _, m := range e.Matches {
			edgeMatches = append(edgeMatches, canon.Object{
				"edge_type":            canon.String(m.EdgeType),
				"rule_index":           canon.Int(int64(m.RuleIndex)),
				"matched_rule_version": canon.String(m.MatchedRuleVersion),
				"evidence_primitives":  canon.StringArray(m.EvidencePrimitives),
			})
		}
		matches = append(matches, canon.Object{
			"key":             canon.String(e.Key),
			"matches":         edgeMatches,
			"raw_match_count": canon.Int(int64(e.RawMatchCount)),
		})
	}

	types := make(canon.Array, 0, len(g.TypeCounts))
	for _, edgeType := range sortedKeys(g.TypeCounts) {
		types = append(types, canon.Object{
			"edge_type": canon.String(edgeType),
			"count":     canon.Int(int64(g.TypeCounts[edgeType])),
			"edge_keys": canon.StringArray(g.TypeEdges[edgeType]),
		})
	}

	disabled := make(canon.Array, 0)
	for _, i := range table.DisabledIndices() {
		disabled = append(disabled, canon.Int(int64(i)))
	}

	payload["typed"] = canon.Object{
		"rule_version":    canon.String(table.Version),
		"disabled_rules":  disabled,
		"edge_matches":    matches,
		"type_counts":     types,
		"enabled_matches": canon.Int(int64(g.Totals.EnabledMatches)),
		"raw_matches":     canon.Int(int64(g.Totals.RawMatches)),
	}
	return payload
}

// sortedKeys returns map keys in sorted order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
