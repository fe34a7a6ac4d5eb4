package store

import (
	"context"
	"testing"
)

func TestRecordRun_WritesRunAndChain(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := createTestRun("run-001", "goblin-tokens", "2026-08-24T10:00:00Z")
	chain := createTestChain(nil)

	if err := j.RecordRun(ctx, run, chain); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	got, err := j.GetRun(ctx, "run-001")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got != run {
		t.Errorf("GetRun() = %+v, expected %+v", got, run)
	}

	gotChain, err := j.ReadChain(ctx, "run-001")
	if err != nil {
		t.Fatalf("ReadChain() failed: %v", err)
	}
	if len(gotChain) != len(chain) {
		t.Fatalf("ReadChain() returned %d layers, expected %d", len(gotChain), len(chain))
	}
	for i := range chain {
		if gotChain[i] != chain[i] {
			t.Errorf("chain[%d] = %+v, expected %+v", i, gotChain[i], chain[i])
		}
	}
}

func TestRecordRun_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := createTestRun("run-001", "goblin-tokens", "2026-08-24T10:00:00Z")
	chain := createTestChain(nil)

	// Record the same run twice
	if err := j.RecordRun(ctx, run, chain); err != nil {
		t.Fatalf("first RecordRun() failed: %v", err)
	}
	if err := j.RecordRun(ctx, run, chain); err != nil {
		t.Fatalf("second RecordRun() failed: %v", err)
	}

	var count int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("count runs failed: %v", err)
	}
	if count != 1 {
		t.Errorf("runs count = %d, expected 1", count)
	}

	if err := j.db.QueryRow("SELECT COUNT(*) FROM fingerprints").Scan(&count); err != nil {
		t.Fatalf("count fingerprints failed: %v", err)
	}
	if count != len(chain) {
		t.Errorf("fingerprints count = %d, expected %d", count, len(chain))
	}
}

func TestRecordRun_ConflictKeepsFirstWrite(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := createTestRun("run-001", "goblin-tokens", "2026-08-24T10:00:00Z")
	if err := j.RecordRun(ctx, run, createTestChain(nil)); err != nil {
		t.Fatalf("first RecordRun() failed: %v", err)
	}

	// Same token with different hashes is silently ignored
	altered := createTestChain(map[string]string{"motifs": "tampered"})
	if err := j.RecordRun(ctx, run, altered); err != nil {
		t.Fatalf("conflicting RecordRun() failed: %v", err)
	}

	chain, err := j.ReadChain(ctx, "run-001")
	if err != nil {
		t.Fatalf("ReadChain() failed: %v", err)
	}
	for _, lh := range chain {
		if lh.Layer == "motifs" && lh.Hash != "hash-motifs" {
			t.Errorf("motifs hash = %q, expected first write to win", lh.Hash)
		}
	}
}

func TestRecordRun_DefaultsCreatedAt(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := createTestRun("run-001", "goblin-tokens", "")
	if err := j.RecordRun(ctx, run, createTestChain(nil)); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	got, err := j.GetRun(ctx, "run-001")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.CreatedAt == "" {
		t.Error("CreatedAt was not defaulted")
	}
}

func TestRecordRun_EmptyChain(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := createTestRun("run-001", "goblin-tokens", "2026-08-24T10:00:00Z")
	if err := j.RecordRun(ctx, run, nil); err != nil {
		t.Fatalf("RecordRun() with empty chain failed: %v", err)
	}

	chain, err := j.ReadChain(ctx, "run-001")
	if err != nil {
		t.Fatalf("ReadChain() failed: %v", err)
	}
	if chain == nil {
		t.Error("ReadChain() returned nil, expected empty slice")
	}
	if len(chain) != 0 {
		t.Errorf("ReadChain() returned %d layers, expected 0", len(chain))
	}
}
