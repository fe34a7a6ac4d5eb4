// Package primitive builds the primitive index: the per-slot normalized,
// deduplicated primitive sets every later stage reads.
//
// Normalization is total. Malformed or absent sources yield an empty set,
// never an error. Token order in the source is irrelevant; the index emits
// sorted sets only.
package primitive

import (
	"sort"
	"strings"

	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/rules"
)

// HashDomain separates primitive-index digests from every other layer.
const HashDomain = "synergraph/primitive-index/v1"

// Input carries everything the index stage reads. The stage never mutates
// any of it.
type Input struct {
	Slots     []deck.Slot
	Sources   map[string][]string
	Overrides []deck.Override

	// Vocabulary optionally filters tokens to the closed vocabulary,
	// resolving aliases to canonical form. Nil means no filtering.
	Vocabulary *rules.Vocabulary
}

// Index is the stage output: forward and reverse indices, totals, and the
// layer fingerprint. The primitive index is the root of the hash chain and
// has no upstream hash.
type Index struct {
	// BySlot maps slot id to its sorted unique primitive set. Every input
	// slot has an entry, possibly empty.
	BySlot map[string][]string

	// ByPrimitive maps each primitive to the sorted slot ids carrying it.
	ByPrimitive map[string][]string

	Totals Totals

	// Hash is the fingerprint over Payload, the canonical index payload
	// emitted to downstream consumers.
	Hash    string
	Payload canon.Object
}

// Totals summarizes the index.
type Totals struct {
	// SlotsWithPrimitives counts slots owning at least one primitive.
	SlotsWithPrimitives int

	// UniquePrimitives counts distinct primitives across all slots.
	UniquePrimitives int
}

// Build normalizes sources, applies overrides, and produces the index.
//
// Per-slot processing order:
// 1. basic token normalization (trim, lowercase, drop empties)
// 2. override patches for the slot's oracle id (remove, then add)
// 3. vocabulary resolution when a vocabulary is supplied
// 4. dedupe and sort
//
// Overrides patch a set, so reapplying the same override table is
// idempotent.
func Build(in Input) *Index {
	idx := &Index{
		BySlot:      make(map[string][]string, len(in.Slots)),
		ByPrimitive: make(map[string][]string),
	}

	for _, slot := range in.Slots {
		prims := normalizeSlot(in, slot)
		idx.BySlot[slot.SlotID] = prims
		if len(prims) > 0 {
			idx.Totals.SlotsWithPrimitives++
		}
	}

	// Reverse index in sorted slot-id order so the per-primitive slot
	// lists come out sorted without a second pass.
	slotIDs := make([]string, 0, len(idx.BySlot))
	for id := range idx.BySlot {
		slotIDs = append(slotIDs, id)
	}
	sort.Strings(slotIDs)
	for _, id := range slotIDs {
		for _, p := range idx.BySlot[id] {
			idx.ByPrimitive[p] = append(idx.ByPrimitive[p], id)
		}
	}
	idx.Totals.UniquePrimitives = len(idx.ByPrimitive)

	idx.Payload = idx.payload()
	idx.Hash = canon.MustHashPayload(HashDomain, idx.Payload)
	return idx
}

// Primitives returns the sorted primitive set for a slot. Unknown slots
// yield an empty set.
func (idx *Index) Primitives(slotID string) []string {
	return idx.BySlot[slotID]
}

// SetFor returns the slot's primitives as a membership set for rule
// evaluation and intersection.
func (idx *Index) SetFor(slotID string) rules.Set {
	return rules.NewSet(idx.BySlot[slotID])
}

// normalizeSlot produces one slot's final sorted primitive set.
func normalizeSlot(in Input, slot deck.Slot) []string {
	working := make(map[string]bool)
	for _, raw := range in.Sources[slot.SlotID] {
		if tok := normalizeToken(raw); tok != "" {
			working[tok] = true
		}
	}

	for _, o := range in.Overrides {
		if slot.OracleID == "" || o.OracleID != slot.OracleID {
			continue
		}
		for _, raw := range o.Remove {
			if tok := normalizeToken(raw); tok != "" {
				delete(working, tok)
			}
		}
		for _, raw := range o.Add {
			if tok := normalizeToken(raw); tok != "" {
				working[tok] = true
			}
		}
	}

	final := make(map[string]bool, len(working))
	for tok := range working {
		if in.Vocabulary != nil {
			canonical, ok := in.Vocabulary.Resolve(tok)
			if !ok {
				continue
			}
			tok = canonical
		}
		final[tok] = true
	}

	prims := make([]string, 0, len(final))
	for tok := range final {
		prims = append(prims, tok)
	}
	sort.Strings(prims)
	return prims
}

// normalizeToken trims and lowercases one raw token. Empty results are
// dropped by callers.
func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// payload builds the canonical fingerprint payload: slots in sorted id
// order with their primitive sets, plus totals.
func (idx *Index) payload() canon.Object {
	slotIDs := make([]string, 0, len(idx.BySlot))
	for id := range idx.BySlot {
		slotIDs = append(slotIDs, id)
	}
	sort.Strings(slotIDs)

	slots := make(canon.Array, 0, len(slotIDs))
	for _, id := range slotIDs {
		slots = append(slots, canon.Object{
			"slot_id":    canon.String(id),
			"primitives": canon.StringArray(idx.BySlot[id]),
		})
	}

	return canon.Object{
		"schema": canon.String(canon.SchemaVersion),
		"slots":  slots,
		"totals": canon.Object{
			"slots_with_primitives": canon.Int(int64(idx.Totals.SlotsWithPrimitives)),
			"unique_primitives":     canon.Int(int64(idx.Totals.UniquePrimitives)),
		},
	}
}
