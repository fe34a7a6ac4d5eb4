package store

import (
	"context"
	"fmt"

	"github.com/manaforge/synergraph/internal/pipeline"
)

// GetRun retrieves a single run's metadata by token.
// The wrapped error is sql.ErrNoRows if the token is unknown.
func (j *Journal) GetRun(ctx context.Context, token string) (Run, error) {
	var run Run
	err := j.db.QueryRowContext(ctx, `
		SELECT run_token, deck_name, slot_count, schema_version, created_at
		FROM runs
		WHERE run_token = ?
	`, token).Scan(&run.Token, &run.DeckName, &run.SlotCount, &run.SchemaVersion, &run.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", token, err)
	}
	return run, nil
}

// ReadChain returns the recorded layer hash chain for a run in pipeline
// order: ORDER BY position ASC, layer ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the run has no fingerprints.
func (j *Journal) ReadChain(ctx context.Context, token string) ([]pipeline.LayerHash, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT layer, hash
		FROM fingerprints
		WHERE run_token = ?
		ORDER BY position ASC, layer COLLATE BINARY ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query chain: %w", err)
	}
	defer rows.Close()

	var chain []pipeline.LayerHash
	for rows.Next() {
		var lh pipeline.LayerHash
		if err := rows.Scan(&lh.Layer, &lh.Hash); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		chain = append(chain, lh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}

	// Return empty slice instead of nil
	if chain == nil {
		chain = []pipeline.LayerHash{}
	}

	return chain, nil
}

// ListRuns returns every recorded run for a deck, newest first. Ties on
// created_at break by run token so listings stay deterministic.
//
// Returns an empty slice (not nil) if the deck has no runs.
func (j *Journal) ListRuns(ctx context.Context, deckName string) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_token, deck_name, slot_count, schema_version, created_at
		FROM runs
		WHERE deck_name = ?
		ORDER BY created_at DESC, run_token COLLATE BINARY ASC
	`, deckName)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.Token, &run.DeckName, &run.SlotCount, &run.SchemaVersion, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// LatestRun returns the most recent run for a deck. Used by verify to
// pick the baseline.
// The wrapped error is sql.ErrNoRows if the deck has never been recorded.
func (j *Journal) LatestRun(ctx context.Context, deckName string) (Run, error) {
	var run Run
	err := j.db.QueryRowContext(ctx, `
		SELECT run_token, deck_name, slot_count, schema_version, created_at
		FROM runs
		WHERE deck_name = ?
		ORDER BY created_at DESC, run_token COLLATE BINARY ASC
		LIMIT 1
	`, deckName).Scan(&run.Token, &run.DeckName, &run.SlotCount, &run.SchemaVersion, &run.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("latest run for %s: %w", deckName, err)
	}
	return run, nil
}

// ListDecks returns all distinct deck names in the journal.
// Results ordered alphabetically.
func (j *Journal) ListDecks(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT DISTINCT deck_name FROM runs
		ORDER BY deck_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan deck name: %w", err)
		}
		decks = append(decks, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deck names: %w", err)
	}

	if decks == nil {
		decks = []string{}
	}

	return decks, nil
}
