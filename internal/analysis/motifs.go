package analysis

import (
	"fmt"
	"sort"

	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/graph"
)

// MotifsHashDomain separates motif fingerprints from other layers.
const MotifsHashDomain = "synergraph/motifs/v1"

// Meta motif ids. Label motifs derive theirs from the edge type
// (M0_<edge_type>), so the full list stays sorted with labels first.
const (
	MotifCommanderLink  = "M1_commander_link"
	MotifFragmentation  = "M2_fragmentation"
	MotifOverlapDensity = "M3_overlap_density"
)

// Motif is one named structural pattern. Label motifs carry edge-key and
// slot-id evidence; the three meta motifs add their own fields on top.
type Motif struct {
	ID      string
	Present bool
	Count   int

	// EdgeKeys and SlotIDs are the shared evidence shape, both sorted.
	EdgeKeys []string
	SlotIDs  []string

	// ComponentID is set for the commander-link motif, Components for the
	// fragmentation motif, AvgDegree and MaxDegree for overlap density.
	ComponentID string
	Components  []graph.Component
	AvgDegree   string
	MaxDegree   int
}

// MotifTotals summarizes the motif list.
type MotifTotals struct {
	Motifs      int
	LabelMotifs int
	MetaMotifs  int
	Present     int
}

// Motifs is the full analyzer output with its chained fingerprint.
type Motifs struct {
	Records []Motif
	Totals  MotifTotals
	Hash    string
	Payload canon.Object
}

// BuildMotifs scans the typed graph for named structural patterns. One
// label motif is emitted per edge type present in the graph; absent types
// produce no record. The three meta motifs are always emitted, with
// Present reflecting whether the pattern holds.
func BuildMotifs(g *graph.Typed) *Motifs {
	m := &Motifs{}

	for _, edgeType := range sortedLabelKeys(g.TypeEdges) {
		m.Records = append(m.Records, labelMotif(g, edgeType))
		m.Totals.LabelMotifs++
	}
	m.Records = append(m.Records, commanderLinkMotif(g), fragmentationMotif(g), overlapDensityMotif(g))
	m.Totals.MetaMotifs = 3

	sort.Slice(m.Records, func(i, j int) bool { return m.Records[i].ID < m.Records[j].ID })
	m.Totals.Motifs = len(m.Records)
	for _, r := range m.Records {
		if r.Present {
			m.Totals.Present++
		}
	}

	m.Payload = m.payload(g)
	m.Hash = canon.MustHashPayload(MotifsHashDomain, m.Payload)
	return m
}

// labelMotif builds the record for one edge type. Count is the enabled
// match count; evidence is the deduplicated edge keys plus their sorted
// endpoints.
func labelMotif(g *graph.Typed, edgeType string) Motif {
	keys := dedupeSorted(g.TypeEdges[edgeType])
	slots := map[string]bool{}
	for _, key := range keys {
		if e, ok := g.EdgeByKey(key); ok {
			slots[e.A] = true
			slots[e.B] = true
		}
	}
	return Motif{
		ID:       "M0_" + edgeType,
		Present:  true,
		Count:    g.TypeCounts[edgeType],
		EdgeKeys: keys,
		SlotIDs:  sortedSlotSet(slots),
	}
}

// commanderLinkMotif is present when a playable commander shares a
// component with at least one deck slot. Evidence lists the commander's
// incident edges and the deck members of its component.
func commanderLinkMotif(g *graph.Typed) Motif {
	motif := Motif{ID: MotifCommanderLink, EdgeKeys: []string{}, SlotIDs: []string{}}
	cmd := g.CommanderID()
	if cmd == "" {
		return motif
	}

	motif.ComponentID = g.NodeComponent[cmd]
	for _, e := range g.Edges {
		if e.A == cmd || e.B == cmd {
			motif.EdgeKeys = append(motif.EdgeKeys, e.Key)
		}
	}
	sort.Strings(motif.EdgeKeys)

	for _, c := range g.Components {
		if c.ID != motif.ComponentID {
			continue
		}
		for _, id := range c.Nodes {
			if id != cmd {
				motif.SlotIDs = append(motif.SlotIDs, id)
			}
		}
	}
	motif.Count = len(motif.SlotIDs)
	motif.Present = motif.Count > 0
	return motif
}

// fragmentationMotif is present when the graph splits into more than one
// component. The full component listing rides along as evidence either way.
func fragmentationMotif(g *graph.Typed) Motif {
	motif := Motif{
		ID:       MotifFragmentation,
		Present:  len(g.Components) > 1,
		Count:    len(g.Components),
		EdgeKeys: []string{},
		SlotIDs:  append([]string(nil), g.NodeIDs()...),
	}
	for _, c := range g.Components {
		motif.Components = append(motif.Components, graph.Component{
			ID:    c.ID,
			Nodes: append([]string(nil), c.Nodes...),
		})
	}
	return motif
}

// overlapDensityMotif reports global degree statistics. Present means the
// graph has at least one overlap edge; evidence lists the slots attaining
// the maximum degree.
func overlapDensityMotif(g *graph.Typed) Motif {
	maxDegree := 0
	for _, n := range g.Nodes {
		if n.Degree > maxDegree {
			maxDegree = n.Degree
		}
	}
	slots := map[string]bool{}
	for _, n := range g.Nodes {
		if n.Degree == maxDegree && maxDegree > 0 {
			slots[n.SlotID] = true
		}
	}
	return Motif{
		ID:        MotifOverlapDensity,
		Present:   g.Totals.Edges > 0,
		Count:     g.Totals.Edges,
		EdgeKeys:  []string{},
		SlotIDs:   sortedSlotSet(slots),
		AvgDegree: fixedPointAvg(2*g.Totals.Edges, g.Totals.Nodes),
		MaxDegree: maxDegree,
	}
}

func (m *Motifs) payload(g *graph.Typed) canon.Object {
	records := make(canon.Array, 0, len(m.Records))
	for _, r := range m.Records {
		obj := canon.Object{
			"id":      canon.String(r.ID),
			"present": canon.Bool(r.Present),
			"count":   canon.Int(int64(r.Count)),
			"evidence": canon.Object{
				"edge_keys": canon.StringArray(r.EdgeKeys),
				"slot_ids":  canon.StringArray(r.SlotIDs),
			},
		}
		switch r.ID {
		case MotifCommanderLink:
			obj["component_id"] = canon.String(r.ComponentID)
		case MotifFragmentation:
			components := make(canon.Array, 0, len(r.Components))
			for _, c := range r.Components {
				components = append(components, canon.Object{
					"id":    canon.String(c.ID),
					"nodes": canon.StringArray(c.Nodes),
				})
			}
			obj["components"] = components
		case MotifOverlapDensity:
			obj["avg_degree"] = canon.String(r.AvgDegree)
			obj["max_degree"] = canon.Int(int64(r.MaxDegree))
		}
		records = append(records, obj)
	}

	return canon.Object{
		"schema":               canon.String(canon.SchemaVersion),
		"graph_structure_hash": canon.String(g.StructureHash),
		"graph_typed_hash":     canon.String(g.TypedHash),
		"motifs":               records,
		"totals": canon.Object{
			"motifs":       canon.Int(int64(m.Totals.Motifs)),
			"label_motifs": canon.Int(int64(m.Totals.LabelMotifs)),
			"meta_motifs":  canon.Int(int64(m.Totals.MetaMotifs)),
			"present":      canon.Int(int64(m.Totals.Present)),
		},
	}
}

// fixedPointAvg renders numer/denom with two fixed decimal digits, rounding
// half up, using integer arithmetic only. A zero denominator yields "0.00".
func fixedPointAvg(numer, denom int) string {
	if denom == 0 {
		return "0.00"
	}
	scaled := (numer*100 + denom/2) / denom
	return fmt.Sprintf("%d.%02d", scaled/100, scaled%100)
}

func sortedLabelKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSlotSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func dedupeSorted(in []string) []string {
	out := make([]string, 0, len(in))
	var last string
	for i, s := range in {
		if i == 0 || s != last {
			out = append(out, s)
			last = s
		}
	}
	return out
}
