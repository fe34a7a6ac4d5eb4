package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaforge/synergraph/internal/pipeline"
	"github.com/manaforge/synergraph/internal/store"
)

// seedJournal records three runs across two decks with fixed tokens and
// timestamps, so listing order is deterministic.
func seedJournal(t *testing.T, dbPath string) {
	t.Helper()

	j, err := store.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	chain := []pipeline.LayerHash{
		{Layer: "primitive_index", Hash: strings.Repeat("a", 64)},
		{Layer: "expansion", Hash: strings.Repeat("b", 64)},
	}

	runs := []store.Run{
		{Token: "run-alpha-1", DeckName: "alpha", SlotCount: 3, SchemaVersion: "v1", CreatedAt: "2026-08-20T10:00:00Z"},
		{Token: "run-alpha-2", DeckName: "alpha", SlotCount: 3, SchemaVersion: "v1", CreatedAt: "2026-08-21T10:00:00Z"},
		{Token: "run-beta-1", DeckName: "beta", SlotCount: 4, SchemaVersion: "v1", CreatedAt: "2026-08-19T10:00:00Z"},
	}
	for _, run := range runs {
		require.NoError(t, j.RecordRun(ctx, run, chain))
	}
}

func TestJournalListText(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")
	seedJournal(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJournalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Journal: 2 deck(s), 3 run(s)")
	assert.Contains(t, output, "alpha:")
	assert.Contains(t, output, "beta:")

	// Newest run first within a deck
	assert.Less(t, strings.Index(output, "run-alpha-2"), strings.Index(output, "run-alpha-1"))
}

func TestJournalListDeckFilter(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")
	seedJournal(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJournalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", dbPath, "--deck", "alpha"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "run-alpha-1")
	assert.Contains(t, output, "run-alpha-2")
	assert.NotContains(t, output, "run-beta-1")
}

func TestJournalListJSON(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")
	seedJournal(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewJournalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   JournalListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.TotalRuns)
	require.Len(t, resp.Data.Decks, 2)
	assert.Equal(t, "alpha", resp.Data.Decks[0].Deck)
	require.Len(t, resp.Data.Decks[0].Runs, 2)
	assert.Equal(t, "run-alpha-2", resp.Data.Decks[0].Runs[0].Token)
}

func TestJournalListEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")

	j, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJournalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", dbPath})

	err = cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No runs recorded.")
}

func TestJournalListMissingDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ghost.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJournalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"list", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	// Inspection must not create an empty database
	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestJournalShowText(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")
	seedJournal(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJournalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"show", dbPath, "run-alpha-1"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Run: run-alpha-1")
	assert.Contains(t, output, "Deck: alpha (3 slots)")
	assert.Contains(t, output, "Schema: v1")
	assert.Contains(t, output, "Recorded: 2026-08-20T10:00:00Z")
	assert.Contains(t, output, "=== Fingerprints ===")
	assert.Contains(t, output, "primitive_index")
	assert.Contains(t, output, strings.Repeat("a", 64))
}

func TestJournalShowUnknownRun(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")
	seedJournal(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewJournalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"show", dbPath, "run-nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found: run-nope")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestJournalShowJSON(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "journal.db")
	seedJournal(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewJournalCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"show", dbPath, "run-beta-1"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   JournalShowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-beta-1", resp.Data.Run.Token)
	assert.Equal(t, 4, resp.Data.Run.SlotCount)
	require.Len(t, resp.Data.Chain, 2)
	assert.Equal(t, "primitive_index", resp.Data.Chain[0].Layer)
}
