package store

import (
	"context"
	"fmt"
	"time"

	"github.com/manaforge/synergraph/internal/pipeline"
)

// Run is the journal metadata for one recorded pipeline run.
type Run struct {
	Token         string
	DeckName      string
	SlotCount     int
	SchemaVersion string
	CreatedAt     string // RFC 3339 UTC
}

// RecordRun inserts a run and its ordered layer hash chain in a single
// transaction. Uses ON CONFLICT DO NOTHING for idempotency - recording
// the same run token twice is silently ignored. Other constraint
// violations (e.g. NOT NULL) still return errors.
//
// An empty CreatedAt defaults to the current UTC time. Hashes are
// stored verbatim; the journal never recomputes them.
func (j *Journal) RecordRun(ctx context.Context, run Run, chain []pipeline.LayerHash) error {
	createdAt := run.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_token, deck_name, slot_count, schema_version, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_token) DO NOTHING
	`,
		run.Token,
		run.DeckName,
		run.SlotCount,
		run.SchemaVersion,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("record run: insert run: %w", err)
	}

	// Position preserves pipeline order for chain reads
	for i, lh := range chain {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO fingerprints
			(run_token, position, layer, hash)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(run_token, layer) DO NOTHING
		`,
			run.Token,
			i,
			lh.Layer,
			lh.Hash,
		)
		if err != nil {
			return fmt.Errorf("record run: insert fingerprint %s: %w", lh.Layer, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: commit: %w", err)
	}

	return nil
}
