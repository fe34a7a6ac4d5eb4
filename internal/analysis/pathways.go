package analysis

import (
	"sort"

	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/graph"
)

// PathwaysHashDomain separates pathway fingerprints from other layers.
const PathwaysHashDomain = "synergraph/pathways/v1"

// Ranking bounds for the advisory lists.
const (
	DefaultHubLimit             = 5
	DefaultBridgeCandidateLimit = 3
)

// Distance is one row of the commander-rooted distance table.
type Distance struct {
	SlotID   string
	Distance int
}

// Hub is a high-connectivity node.
type Hub struct {
	SlotID         string
	Degree         int
	PrimitiveCount int
}

// BridgeCandidate is a repair suggestion: a well-connected node in the
// largest component the commander cannot reach. Advisory only.
type BridgeCandidate struct {
	SlotID      string
	Degree      int
	ComponentID string
}

// PathwayTotals summarizes reachability.
type PathwayTotals struct {
	Reachable        int
	Unreachable      int
	MaxDistance      int
	Hubs             int
	BridgeCandidates int
}

// Pathways is the full analyzer output. Reachable and Unreachable cover
// the non-commander nodes; the distance table includes the commander at
// distance zero.
type Pathways struct {
	CommanderPlayable bool
	CommanderID       string
	Distances         []Distance
	Reachable         []string
	Unreachable       []string
	Hubs              []Hub
	BridgeCandidates  []BridgeCandidate
	Totals            PathwayTotals
	Hash              string
	Payload           canon.Object
}

// BuildPathways runs a single-source BFS from the commander node. Without
// a playable commander every node lands in the unreachable list and the
// distance table stays empty. Unreached nodes are always listed
// explicitly, never just omitted.
func BuildPathways(g *graph.Typed) *Pathways {
	p := &Pathways{
		CommanderID: g.CommanderID(),
		Reachable:   []string{},
		Unreachable: []string{},
	}
	p.CommanderPlayable = p.CommanderID != ""

	dist := map[string]int{}
	if p.CommanderPlayable {
		adj := g.Adjacency()
		dist[p.CommanderID] = 0
		queue := []string{p.CommanderID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if _, seen := dist[next]; seen {
					continue
				}
				dist[next] = dist[cur] + 1
				queue = append(queue, next)
			}
		}
	}

	for _, id := range g.NodeIDs() {
		d, reached := dist[id]
		if reached {
			p.Distances = append(p.Distances, Distance{SlotID: id, Distance: d})
			if d > p.Totals.MaxDistance {
				p.Totals.MaxDistance = d
			}
		}
		if id == p.CommanderID {
			continue
		}
		if reached {
			p.Reachable = append(p.Reachable, id)
		} else {
			p.Unreachable = append(p.Unreachable, id)
		}
	}
	sort.Slice(p.Distances, func(i, j int) bool {
		if p.Distances[i].Distance != p.Distances[j].Distance {
			return p.Distances[i].Distance < p.Distances[j].Distance
		}
		return p.Distances[i].SlotID < p.Distances[j].SlotID
	})

	p.buildHubs(g)
	p.buildBridgeCandidates(g)

	p.Totals.Reachable = len(p.Reachable)
	p.Totals.Unreachable = len(p.Unreachable)
	p.Totals.Hubs = len(p.Hubs)
	p.Totals.BridgeCandidates = len(p.BridgeCandidates)

	p.Payload = p.payload(g)
	p.Hash = canon.MustHashPayload(PathwaysHashDomain, p.Payload)
	return p
}

// buildHubs ranks every node by descending degree, then descending
// primitive count, then slot id, keeping the top entries.
func (p *Pathways) buildHubs(g *graph.Typed) {
	ranked := append([]graph.Node(nil), g.Nodes...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Degree != ranked[j].Degree {
			return ranked[i].Degree > ranked[j].Degree
		}
		if ranked[i].PrimitiveCount != ranked[j].PrimitiveCount {
			return ranked[i].PrimitiveCount > ranked[j].PrimitiveCount
		}
		return ranked[i].SlotID < ranked[j].SlotID
	})
	if len(ranked) > DefaultHubLimit {
		ranked = ranked[:DefaultHubLimit]
	}
	for _, n := range ranked {
		p.Hubs = append(p.Hubs, Hub{SlotID: n.SlotID, Degree: n.Degree, PrimitiveCount: n.PrimitiveCount})
	}
}

// buildBridgeCandidates proposes nodes that would reconnect the commander:
// the highest-degree members of the largest component the commander is not
// in. Only emitted when the commander is isolated or some node is
// unreached.
func (p *Pathways) buildBridgeCandidates(g *graph.Typed) {
	isolated := false
	for _, n := range g.Nodes {
		if n.SlotID == p.CommanderID && p.CommanderPlayable {
			isolated = n.IsIsolated
		}
	}
	if !isolated && len(p.Unreachable) == 0 {
		return
	}

	cmdComponent := ""
	if p.CommanderPlayable {
		cmdComponent = g.NodeComponent[p.CommanderID]
	}
	var target *graph.Component
	for i := range g.Components {
		c := &g.Components[i]
		if c.ID == cmdComponent {
			continue
		}
		if target == nil || len(c.Nodes) > len(target.Nodes) {
			target = c
		}
	}
	if target == nil {
		return
	}

	degrees := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		degrees[n.SlotID] = n.Degree
	}
	members := append([]string(nil), target.Nodes...)
	sort.Slice(members, func(i, j int) bool {
		if degrees[members[i]] != degrees[members[j]] {
			return degrees[members[i]] > degrees[members[j]]
		}
		return members[i] < members[j]
	})
	if len(members) > DefaultBridgeCandidateLimit {
		members = members[:DefaultBridgeCandidateLimit]
	}
	for _, id := range members {
		p.BridgeCandidates = append(p.BridgeCandidates, BridgeCandidate{
			SlotID:      id,
			Degree:      degrees[id],
			ComponentID: target.ID,
		})
	}
}

func (p *Pathways) payload(g *graph.Typed) canon.Object {
	distances := make(canon.Array, 0, len(p.Distances))
	for _, d := range p.Distances {
		distances = append(distances, canon.Object{
			"slot_id":  canon.String(d.SlotID),
			"distance": canon.Int(int64(d.Distance)),
		})
	}
	hubs := make(canon.Array, 0, len(p.Hubs))
	for _, h := range p.Hubs {
		hubs = append(hubs, canon.Object{
			"slot_id":         canon.String(h.SlotID),
			"degree":          canon.Int(int64(h.Degree)),
			"primitive_count": canon.Int(int64(h.PrimitiveCount)),
		})
	}
	candidates := make(canon.Array, 0, len(p.BridgeCandidates))
	for _, c := range p.BridgeCandidates {
		candidates = append(candidates, canon.Object{
			"slot_id":      canon.String(c.SlotID),
			"degree":       canon.Int(int64(c.Degree)),
			"component_id": canon.String(c.ComponentID),
		})
	}

	return canon.Object{
		"schema":               canon.String(canon.SchemaVersion),
		"graph_structure_hash": canon.String(g.StructureHash),
		"graph_typed_hash":     canon.String(g.TypedHash),
		"commander": canon.Object{
			"playable": canon.Bool(p.CommanderPlayable),
			"slot_id":  canon.String(p.CommanderID),
		},
		"distances":         distances,
		"reachable":         canon.StringArray(p.Reachable),
		"unreachable":       canon.StringArray(p.Unreachable),
		"hubs":              hubs,
		"bridge_candidates": candidates,
		"totals": canon.Object{
			"reachable":         canon.Int(int64(p.Totals.Reachable)),
			"unreachable":       canon.Int(int64(p.Totals.Unreachable)),
			"max_distance":      canon.Int(int64(p.Totals.MaxDistance)),
			"hubs":              canon.Int(int64(p.Totals.Hubs)),
			"bridge_candidates": canon.Int(int64(p.Totals.BridgeCandidates)),
		},
	}
}
