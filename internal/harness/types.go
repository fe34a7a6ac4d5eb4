package harness

import (
	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/pipeline"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// RunToken labels this execution. Never part of any hashed payload.
	RunToken string

	// Pass indicates overall scenario success.
	// True if the invariant report is OK and all expectations match.
	Pass bool

	// Errors contains expectation and invariant failure messages.
	// Empty if Pass is true.
	Errors []string

	// Deck is the loaded deck the scenario ran against.
	Deck *deck.Deck

	// Pipeline holds every layer of the first pass, for snapshots and
	// direct inspection in tests.
	Pipeline *pipeline.Result

	// Report is the invariant-validation outcome of the first pass.
	Report pipeline.Report

	// Chain is the first pass's per-layer fingerprint chain.
	Chain []pipeline.LayerHash
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult(runToken string) *Result {
	return &Result{
		RunToken: runToken,
		Pass:     true,
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
