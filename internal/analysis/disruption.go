package analysis

import (
	"sort"

	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/graph"
)

// DisruptionHashDomain separates disruption fingerprints from other layers.
const DisruptionHashDomain = "synergraph/disruption/v1"

// Commander risk flags, emitted in this fixed order.
const (
	FlagCommanderIsolated     = "COMMANDER_ISOLATED"
	FlagCommanderArticulation = "COMMANDER_ARTICULATION"
)

// NodeImpact records the graph recount after removing one node and its
// incident edges. DeltaComponents is measured against the intact graph and
// goes negative when an isolated node disappears.
type NodeImpact struct {
	SlotID          string
	ComponentsAfter int
	DeltaComponents int
	IsolatedAfter   int
	LargestAfter    int
	Articulation    bool
}

// BridgeEdge is an edge whose removal splits a component. Both endpoints
// stay in the graph.
type BridgeEdge struct {
	A               string
	B               string
	Key             string
	ComponentsAfter int
	DeltaComponents int
}

// CommanderRisk summarizes how exposed the commander node is.
type CommanderRisk struct {
	Present      bool
	SlotID       string
	Isolated     bool
	Articulation bool
	Flags        []string
}

// DisruptionTotals summarizes the removal sweep.
type DisruptionTotals struct {
	NodesEvaluated    int
	EdgesEvaluated    int
	ArticulationNodes int
	BridgeEdges       int
}

// Disruption is the full analyzer output. Impacts covers every node in
// slot-id order; Articulations re-ranks the articulation subset by
// severity.
type Disruption struct {
	Impacts       []NodeImpact
	Articulations []NodeImpact
	Bridges       []BridgeEdge
	Risk          CommanderRisk
	Totals        DisruptionTotals
	Hash          string
	Payload       canon.Object
}

// BuildDisruption simulates the removal of every node and every edge in
// turn, recounting components each time. The sweep is quadratic in graph
// size, which deck-sized inputs keep comfortably small.
func BuildDisruption(g *graph.Typed) *Disruption {
	d := &Disruption{Risk: CommanderRisk{Flags: []string{}}}
	baseline := g.Totals.Components
	ids := g.NodeIDs()
	adj := g.Adjacency()

	for _, id := range ids {
		components, isolated, largest := removalStats(ids, adj, id, "")
		impact := NodeImpact{
			SlotID:          id,
			ComponentsAfter: components,
			DeltaComponents: components - baseline,
			IsolatedAfter:   isolated,
			LargestAfter:    largest,
			Articulation:    components > baseline,
		}
		d.Impacts = append(d.Impacts, impact)
		if impact.Articulation {
			d.Articulations = append(d.Articulations, impact)
			d.Totals.ArticulationNodes++
		}
	}
	sort.Slice(d.Articulations, func(i, j int) bool {
		if d.Articulations[i].DeltaComponents != d.Articulations[j].DeltaComponents {
			return d.Articulations[i].DeltaComponents > d.Articulations[j].DeltaComponents
		}
		return d.Articulations[i].SlotID < d.Articulations[j].SlotID
	})

	for _, e := range g.Edges {
		components, _, _ := removalStats(ids, adj, "", e.Key)
		if components <= baseline {
			continue
		}
		d.Bridges = append(d.Bridges, BridgeEdge{
			A:               e.A,
			B:               e.B,
			Key:             e.Key,
			ComponentsAfter: components,
			DeltaComponents: components - baseline,
		})
		d.Totals.BridgeEdges++
	}
	sort.Slice(d.Bridges, func(i, j int) bool {
		if d.Bridges[i].DeltaComponents != d.Bridges[j].DeltaComponents {
			return d.Bridges[i].DeltaComponents > d.Bridges[j].DeltaComponents
		}
		if d.Bridges[i].A != d.Bridges[j].A {
			return d.Bridges[i].A < d.Bridges[j].A
		}
		return d.Bridges[i].B < d.Bridges[j].B
	})

	d.Totals.NodesEvaluated = len(ids)
	d.Totals.EdgesEvaluated = len(g.Edges)
	d.buildRisk(g)

	d.Payload = d.payload(g)
	d.Hash = canon.MustHashPayload(DisruptionHashDomain, d.Payload)
	return d
}

func (d *Disruption) buildRisk(g *graph.Typed) {
	cmd := g.CommanderID()
	if cmd == "" {
		return
	}
	d.Risk.Present = true
	d.Risk.SlotID = cmd
	for _, n := range g.Nodes {
		if n.SlotID == cmd {
			d.Risk.Isolated = n.IsIsolated
		}
	}
	for _, a := range d.Articulations {
		if a.SlotID == cmd {
			d.Risk.Articulation = true
		}
	}
	if d.Risk.Isolated {
		d.Risk.Flags = append(d.Risk.Flags, FlagCommanderIsolated)
	}
	if d.Risk.Articulation {
		d.Risk.Flags = append(d.Risk.Flags, FlagCommanderArticulation)
	}
}

// removalStats recounts components over the graph with either one node
// (skipNode) or one edge (skipEdge, canonical key) excluded. It returns
// the component count, the number of singleton components, and the largest
// component size. Traversal order follows the sorted id list, so equal
// inputs always produce equal counts.
func removalStats(ids []string, adj map[string][]string, skipNode, skipEdge string) (components, isolated, largest int) {
	visited := make(map[string]bool, len(ids))
	for _, start := range ids {
		if start == skipNode || visited[start] {
			continue
		}
		size := 0
		visited[start] = true
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			size++
			for _, next := range adj[cur] {
				if next == skipNode || visited[next] {
					continue
				}
				if skipEdge != "" && graph.EdgeKey(cur, next) == skipEdge {
					continue
				}
				visited[next] = true
				queue = append(queue, next)
			}
		}
		components++
		if size == 1 {
			isolated++
		}
		if size > largest {
			largest = size
		}
	}
	return components, isolated, largest
}

func (d *Disruption) payload(g *graph.Typed) canon.Object {
	impactObj := func(i NodeImpact) canon.Object {
		return canon.Object{
			"slot_id":          canon.String(i.SlotID),
			"components_after": canon.Int(int64(i.ComponentsAfter)),
			"delta_components": canon.Int(int64(i.DeltaComponents)),
			"isolated_after":   canon.Int(int64(i.IsolatedAfter)),
			"largest_after":    canon.Int(int64(i.LargestAfter)),
			"articulation":     canon.Bool(i.Articulation),
		}
	}

	impacts := make(canon.Array, 0, len(d.Impacts))
	for _, i := range d.Impacts {
		impacts = append(impacts, impactObj(i))
	}
	articulations := make(canon.Array, 0, len(d.Articulations))
	for _, i := range d.Articulations {
		articulations = append(articulations, impactObj(i))
	}
	bridges := make(canon.Array, 0, len(d.Bridges))
	for _, b := range d.Bridges {
		bridges = append(bridges, canon.Object{
			"a":                canon.String(b.A),
			"b":                canon.String(b.B),
			"key":              canon.String(b.Key),
			"components_after": canon.Int(int64(b.ComponentsAfter)),
			"delta_components": canon.Int(int64(b.DeltaComponents)),
		})
	}

	return canon.Object{
		"schema":               canon.String(canon.SchemaVersion),
		"graph_structure_hash": canon.String(g.StructureHash),
		"graph_typed_hash":     canon.String(g.TypedHash),
		"impacts":              impacts,
		"articulation_nodes":   articulations,
		"bridges":              bridges,
		"commander_risk": canon.Object{
			"present":      canon.Bool(d.Risk.Present),
			"slot_id":      canon.String(d.Risk.SlotID),
			"isolated":     canon.Bool(d.Risk.Isolated),
			"articulation": canon.Bool(d.Risk.Articulation),
			"flags":        canon.StringArray(d.Risk.Flags),
		},
		"totals": canon.Object{
			"nodes_evaluated":    canon.Int(int64(d.Totals.NodesEvaluated)),
			"edges_evaluated":    canon.Int(int64(d.Totals.EdgesEvaluated)),
			"articulation_nodes": canon.Int(int64(d.Totals.ArticulationNodes)),
			"bridge_edges":       canon.Int(int64(d.Totals.BridgeEdges)),
		},
	}
}
