package pipeline

import (
	"sort"

	"github.com/manaforge/synergraph/internal/analysis"
	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/combo"
	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/graph"
	"github.com/manaforge/synergraph/internal/primitive"
	"github.com/manaforge/synergraph/internal/rules"
)

// Layer names, in pipeline order. The journal and the verify diff key
// their rows on these.
const (
	LayerPrimitiveIndex = "primitive_index"
	LayerExpansion      = "expansion"
	LayerGraphStructure = "graph_structure"
	LayerGraphTyped     = "graph_typed"
	LayerMotifs         = "motifs"
	LayerDisruption     = "disruption"
	LayerPathways       = "pathways"
	LayerSkeleton       = "skeleton"
	LayerCandidates     = "candidates"
)

// Layers returns every layer name in pipeline order.
func Layers() []string {
	return []string{
		LayerPrimitiveIndex,
		LayerExpansion,
		LayerGraphStructure,
		LayerGraphTyped,
		LayerMotifs,
		LayerDisruption,
		LayerPathways,
		LayerSkeleton,
		LayerCandidates,
	}
}

// Request is one pipeline invocation's full input: the canonical slot
// list, per-slot primitive sources, override patches, optional vocabulary,
// the rule table, and the bound configuration. A nil Table selects the
// built-in default table; zero-valued bounds sanitize to defaults.
type Request struct {
	Slots      []deck.Slot
	Sources    map[string][]string
	Overrides  []deck.Override
	Vocabulary *rules.Vocabulary
	Table      *rules.Table
	Expansion  graph.Bounds
	Combo      combo.Bounds
}

// RequestFromDeck builds a request from a loaded deck file, leaving the
// table, vocabulary, and bounds at their defaults.
func RequestFromDeck(d *deck.Deck) Request {
	return Request{
		Slots:     d.Slots,
		Sources:   d.Sources,
		Overrides: d.Overrides,
	}
}

// LayerHash is one link of the fingerprint chain.
type LayerHash struct {
	Layer string
	Hash  string
}

// Result bundles every stage output of one pipeline pass.
type Result struct {
	Index      *primitive.Index
	Expansion  *graph.Expansion
	Graph      *graph.Typed
	Motifs     *analysis.Motifs
	Disruption *analysis.Disruption
	Pathways   *analysis.Pathways
	Skeleton   *combo.Skeleton
	Candidates *combo.Candidates

	// Table is the rule table the pass actually used.
	Table *rules.Table
}

// Run executes one full pipeline pass. It cannot fail: empty decks,
// missing commanders, and disconnected graphs are all valid inputs, and
// invalid bounds are repaired rather than rejected.
func Run(req Request) *Result {
	table := req.Table
	if table == nil {
		table = rules.DefaultTable()
	}

	idx := primitive.Build(primitive.Input{
		Slots:      req.Slots,
		Sources:    req.Sources,
		Overrides:  req.Overrides,
		Vocabulary: req.Vocabulary,
	})

	playable := make([]string, 0, len(req.Slots))
	for _, s := range req.Slots {
		if s.IsPlayable() {
			playable = append(playable, s.SlotID)
		}
	}
	sort.Strings(playable)

	bip := graph.BuildBipartite(playable, idx)
	exp := graph.ExpandCandidateEdges(playable, idx, bip, req.Expansion)
	g := graph.Build(req.Slots, idx, table)

	sk := combo.BuildSkeleton(g, req.Combo)

	return &Result{
		Index:      idx,
		Expansion:  exp,
		Graph:      g,
		Motifs:     analysis.BuildMotifs(g),
		Disruption: analysis.BuildDisruption(g),
		Pathways:   analysis.BuildPathways(g),
		Skeleton:   sk,
		Candidates: combo.BuildCandidates(g, sk),
		Table:      table,
	}
}

// HashChain returns the per-layer fingerprints in pipeline order.
func (r *Result) HashChain() []LayerHash {
	return []LayerHash{
		{LayerPrimitiveIndex, r.Index.Hash},
		{LayerExpansion, r.Expansion.Hash},
		{LayerGraphStructure, r.Graph.StructureHash},
		{LayerGraphTyped, r.Graph.TypedHash},
		{LayerMotifs, r.Motifs.Hash},
		{LayerDisruption, r.Disruption.Hash},
		{LayerPathways, r.Pathways.Hash},
		{LayerSkeleton, r.Skeleton.Hash},
		{LayerCandidates, r.Candidates.Hash},
	}
}

// LayerHashByName looks up one layer's fingerprint.
func (r *Result) LayerHashByName(layer string) (string, bool) {
	for _, lh := range r.HashChain() {
		if lh.Layer == layer {
			return lh.Hash, true
		}
	}
	return "", false
}

// LayerPayload looks up the canonical payload behind one layer's
// fingerprint. The second result is false for unknown layer names.
func (r *Result) LayerPayload(layer string) (canon.Object, bool) {
	switch layer {
	case LayerPrimitiveIndex:
		return r.Index.Payload, true
	case LayerExpansion:
		return r.Expansion.Payload, true
	case LayerGraphStructure:
		return r.Graph.StructurePayload(), true
	case LayerGraphTyped:
		return r.Graph.Payload, true
	case LayerMotifs:
		return r.Motifs.Payload, true
	case LayerDisruption:
		return r.Disruption.Payload, true
	case LayerPathways:
		return r.Pathways.Payload, true
	case LayerSkeleton:
		return r.Skeleton.Payload, true
	case LayerCandidates:
		return r.Candidates.Payload, true
	}
	return nil, false
}
