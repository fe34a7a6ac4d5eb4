package store

import (
	"path/filepath"
	"testing"

	"github.com/manaforge/synergraph/internal/pipeline"
)

// createTestJournal creates a journal backed by a temp file.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// createTestRun creates a run record with fixed metadata.
func createTestRun(token, deckName, createdAt string) Run {
	return Run{
		Token:         token,
		DeckName:      deckName,
		SlotCount:     9,
		SchemaVersion: "v1",
		CreatedAt:     createdAt,
	}
}

// createTestChain builds a layer hash chain with synthetic hashes.
func createTestChain(hashes map[string]string) []pipeline.LayerHash {
	chain := make([]pipeline.LayerHash, 0, len(pipeline.Layers()))
	for _, layer := range pipeline.Layers() {
		hash := hashes[layer]
		if hash == "" {
			hash = "hash-" + layer
		}
		chain = append(chain, pipeline.LayerHash{Layer: layer, Hash: hash})
	}
	return chain
}
