// Package store provides the SQLite-backed fingerprint journal.
//
// The journal records one row per pipeline run plus the run's ordered
// layer hash chain:
//   - Runs: run token, deck name, slot count, payload schema version
//   - Fingerprints: (run, position, layer, hash) rows, one per layer
//
// # Write Discipline
//
// Idempotent Writes
//   - PRIMARY KEY (run_token, layer) on fingerprints
//   - All inserts use ON CONFLICT DO NOTHING
//   - Re-recording a run token is a silent no-op, never an error
//
// Deterministic Query Results
//   - Chain reads: ORDER BY position ASC, layer ASC COLLATE BINARY
//   - Run listings: ORDER BY created_at DESC, run_token ASC
//   - Identical journals produce identical reads
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: fingerprints always reference a run
//
// Hashes are computed upstream by the pipeline (RFC 8785 canonical JSON,
// SHA-256 with domain separation); the journal stores the hex strings
// verbatim and never recomputes them.
package store
