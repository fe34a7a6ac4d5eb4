package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/pipeline"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Rules string // optional CUE ruleset path
}

// ValidationResult holds the invariant-validation outcome for one deck.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Status string   `json:"status"`
	Codes  []string `json:"codes,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <deck.yaml>",
		Short: "Run the pipeline and check structural invariants",
		Long: `Run the full analysis pipeline over a deck and check every structural
invariant on the outputs: node id uniqueness, playable-set agreement,
edge validity, candidate cycle closure, and collection ordering.

Intended as a CI gate: the command is quiet on success and lists every
violated invariant code on failure.

Exit codes:
  0 - all invariants hold
  1 - invariant violations found
  2 - command error (deck unreadable, ruleset broken, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rules, "rules", "", "path to CUE ruleset file or directory")

	return cmd
}

func runValidate(opts *ValidateOptions, deckPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	d, err := deck.Load(deckPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load deck", err)
	}
	formatter.VerboseLog("Loaded deck %q with %d slot(s)", d.Name, len(d.Slots))

	req := pipeline.RequestFromDeck(d)
	if opts.Rules != "" {
		rs, err := compileRuleset(opts.Rules)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load ruleset", err)
		}
		req.Table = rs.Table
		req.Vocabulary = rs.Vocabulary
		formatter.VerboseLog("Using rule table %s", rs.Table.Version)
	}

	res := pipeline.Run(req)
	report := pipeline.Validate(req, res)

	if !report.OK() {
		return outputInvariantErrors(formatter, report)
	}

	return outputValidateSuccess(formatter)
}

// outputValidateSuccess outputs a passing validation report.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true, Status: pipeline.StatusOK}
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ All invariants hold")
	return nil
}

// outputInvariantErrors outputs a failing validation report.
func outputInvariantErrors(formatter *OutputFormatter, report pipeline.Report) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Status: report.Status,
			Codes:  report.Codes,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    report.ReasonCode,
				Message: "invariant validation failed",
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Invariant violations = exit code 1 (validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(report.Codes)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, code := range report.Codes {
		fmt.Fprintf(formatter.Writer, "  %s\n", code)
	}
	fmt.Fprintln(formatter.Writer)

	// Invariant violations = exit code 1 (validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(report.Codes)))
}
