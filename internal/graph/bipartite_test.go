package graph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/primitive"
)

// indexOf builds a primitive index from a slot → tokens map with playable
// deck slots (plus c00 as commander when present).
func indexOf(t *testing.T, sources map[string][]string) *primitive.Index {
	t.Helper()
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	slots := make([]deck.Slot, 0, len(ids))
	for _, id := range ids {
		nodeType := deck.NodeTypeDeck
		if id == "c00" {
			nodeType = deck.NodeTypeCommander
		}
		slots = append(slots, deck.Slot{
			SlotID:   id,
			Status:   deck.StatusPlayable,
			NodeType: nodeType,
		})
	}
	return primitive.Build(primitive.Input{Slots: slots, Sources: sources})
}

func slotIDsOf(sources map[string][]string) []string {
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func TestBuildBipartiteNodesAndEdges(t *testing.T) {
	sources := map[string][]string{
		"c00":  {"token_gen"},
		"d001": {"token_gen", "ramp"},
	}
	idx := indexOf(t, sources)

	bip := BuildBipartite(slotIDsOf(sources), idx)

	// (kind, id) ordering puts primitive nodes first.
	require.Len(t, bip.Nodes, 4)
	assert.Equal(t, BipartiteNode{Kind: KindPrimitive, ID: "ramp"}, bip.Nodes[0])
	assert.Equal(t, BipartiteNode{Kind: KindPrimitive, ID: "token_gen"}, bip.Nodes[1])
	assert.Equal(t, BipartiteNode{Kind: KindSlot, ID: "c00"}, bip.Nodes[2])
	assert.Equal(t, BipartiteNode{Kind: KindSlot, ID: "d001"}, bip.Nodes[3])

	require.Len(t, bip.Edges, 3)
	assert.Equal(t, BipartiteEdge{Kind: KindHasPrimitive, A: "c00", B: "token_gen"}, bip.Edges[0])
	assert.Equal(t, BipartiteEdge{Kind: KindHasPrimitive, A: "d001", B: "ramp"}, bip.Edges[1])
	assert.Equal(t, BipartiteEdge{Kind: KindHasPrimitive, A: "d001", B: "token_gen"}, bip.Edges[2])

	assert.Equal(t, BipartiteStats{SlotNodes: 2, PrimitiveNodes: 2, Edges: 3}, bip.Stats)
}

func TestBuildBipartiteEmptySlotStillNode(t *testing.T) {
	sources := map[string][]string{
		"d001": {},
		"d002": {"draw"},
	}
	idx := indexOf(t, sources)

	bip := BuildBipartite(slotIDsOf(sources), idx)

	assert.Equal(t, 2, bip.Stats.SlotNodes)
	assert.Equal(t, 1, bip.Stats.PrimitiveNodes)
	assert.Equal(t, 1, bip.Stats.Edges)
}

func TestBuildBipartiteNoPrimitives(t *testing.T) {
	sources := map[string][]string{"d001": {}}
	idx := indexOf(t, sources)

	bip := BuildBipartite(slotIDsOf(sources), idx)

	assert.Len(t, bip.Nodes, 1)
	assert.Empty(t, bip.Edges)
}
