package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/pipeline"
	"github.com/manaforge/synergraph/internal/store"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Journal string
	Rules   string // optional CUE ruleset path
}

// DriftRow is one layer whose hash changed since the recorded baseline.
type DriftRow struct {
	Layer    string `json:"layer"`
	Recorded string `json:"recorded,omitempty"`
	Current  string `json:"current,omitempty"`
}

// VerifyResult holds the verification outcome.
type VerifyResult struct {
	Deck          string     `json:"deck"`
	BaselineToken string     `json:"baseline_token"`
	BaselineTime  string     `json:"baseline_time"`
	Match         bool       `json:"match"`
	Drifts        []DriftRow `json:"drifts,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <deck.yaml>",
		Short: "Re-run a deck and diff against its recorded hash chain",
		Long: `Re-run the analysis pipeline over a deck and compare the resulting
hash chain against the most recent run recorded for that deck.

Any layer whose fingerprint differs is reported as drift. Pass the same
--rules the recorded run used; a different rule table is itself drift.

Exit codes:
  0 - hash chain matches the recorded baseline
  1 - drift detected
  2 - command error (no recorded runs, journal missing, etc.)

Examples:
  synergraph verify deck.yaml --journal ./synergraph.db
  synergraph verify deck.yaml --journal ./synergraph.db --rules ./ruleset`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "path to CUE ruleset file or directory")

	return cmd
}

func runVerify(opts *VerifyOptions, deckPath string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	ctx := context.Background()

	slog.Debug("loading deck", "path", deckPath)
	d, err := deck.Load(deckPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load deck", err)
	}

	req := pipeline.RequestFromDeck(d)
	if opts.Rules != "" {
		rs, err := compileRuleset(opts.Rules)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load ruleset", err)
		}
		req.Table = rs.Table
		req.Vocabulary = rs.Vocabulary
	}

	j, err := openExistingJournal(opts.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	baseline, err := j.LatestRun(ctx, d.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("no recorded runs for deck %q", d.Name))
		}
		return WrapExitError(ExitCommandError, "failed to find baseline run", err)
	}

	recorded, err := j.ReadChain(ctx, baseline.Token)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read recorded chain", err)
	}

	if baseline.SlotCount != len(d.Slots) {
		slog.Warn("slot count changed since baseline",
			"recorded", baseline.SlotCount, "current", len(d.Slots))
	}

	res := pipeline.Run(req)
	slog.Debug("pipeline complete", "deck", d.Name, "baseline", baseline.Token)

	result := VerifyResult{
		Deck:          d.Name,
		BaselineToken: baseline.Token,
		BaselineTime:  baseline.CreatedAt,
		Drifts:        []DriftRow{},
	}
	for _, drift := range store.DiffChains(recorded, res.HashChain()) {
		result.Drifts = append(result.Drifts, DriftRow{
			Layer:    drift.Layer,
			Recorded: drift.HashA,
			Current:  drift.HashB,
		})
	}
	result.Match = len(result.Drifts) == 0

	if opts.Format == "json" {
		return outputVerifyJSON(cmd, result)
	}

	return outputVerifyText(cmd, result)
}

// outputVerifyJSON outputs the verification result as JSON.
func outputVerifyJSON(cmd *cobra.Command, result VerifyResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.Match {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DRIFT",
			Message: "hash drift detected",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.Match {
		// Drift = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("hash drift in %d layer(s)", len(result.Drifts)))
	}
	return nil
}

// outputVerifyText outputs the verification result as text.
func outputVerifyText(cmd *cobra.Command, result VerifyResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Verifying %s against run %s (recorded %s)\n",
		result.Deck, result.BaselineToken, result.BaselineTime)
	fmt.Fprintln(w)

	if result.Match {
		fmt.Fprintln(w, "✓ Hash chain matches")
		return nil
	}

	fmt.Fprintf(w, "✗ Hash drift detected in %d layer(s)\n", len(result.Drifts))
	fmt.Fprintln(w)

	for _, drift := range result.Drifts {
		fmt.Fprintf(w, "  %s\n", drift.Layer)
		fmt.Fprintf(w, "    recorded: %s\n", formatDriftHash(drift.Recorded))
		fmt.Fprintf(w, "    current:  %s\n", formatDriftHash(drift.Current))
	}
	fmt.Fprintln(w)

	// Drift = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("hash drift in %d layer(s)", len(result.Drifts)))
}

// formatDriftHash marks a side that has no hash for the layer at all.
func formatDriftHash(hash string) string {
	if hash == "" {
		return "(absent)"
	}
	return hash
}
