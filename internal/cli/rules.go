package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manaforge/synergraph/internal/rulecue"
	"github.com/manaforge/synergraph/internal/rules"
)

// RuleSummary is one rule table entry in CLI output.
type RuleSummary struct {
	Index    int      `json:"index"`
	EdgeType string   `json:"edge_type"`
	SideA    []string `json:"side_a"`
	SideB    []string `json:"side_b"`
	Reason   string   `json:"reason,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
}

// RulesetSummary holds the compiled ruleset for CLI output.
type RulesetSummary struct {
	Version  string            `json:"version"`
	Rules    []RuleSummary     `json:"rules"`
	Disabled []int             `json:"disabled,omitempty"`
	Tokens   []string          `json:"tokens"`
	Aliases  map[string]string `json:"aliases,omitempty"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules <ruleset>",
		Short: "Compile and display a CUE ruleset",
		Long: `Compile a CUE ruleset file or package directory and display the rule
table and vocabulary.

The compile pass checks structure (required fields, types); the validate
pass checks semantics (closed-world tokens, duplicate edge types, alias
cycles) and reports every violation at once.

Exit codes:
  0 - ruleset compiles and validates
  1 - semantic validation errors
  2 - compile errors (syntax, structure) or path problems`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRules(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result, loadErrors := LoadRuleset(path)

	// Structural failures: nothing to display
	if result == nil && len(loadErrors) > 0 {
		return outputRulesetLoadErrors(formatter, loadErrors)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, path)

	// Semantic failures: the table compiled but violates the closed world
	if len(loadErrors) > 0 {
		return outputRulesetValidationErrors(formatter, loadErrors)
	}

	return outputRulesetSuccess(formatter, summarizeRuleset(result.Ruleset))
}

// summarizeRuleset flattens a compiled ruleset into the CLI output shape.
func summarizeRuleset(rs *rulecue.Ruleset) *RulesetSummary {
	summary := &RulesetSummary{
		Version:  rs.Table.Version,
		Disabled: rs.Table.DisabledIndices(),
		Tokens:   sortedTokens(rs.Vocabulary),
		Aliases:  rs.Vocabulary.Aliases,
	}

	for i, r := range rs.Table.Rules {
		summary.Rules = append(summary.Rules, RuleSummary{
			Index:    i,
			EdgeType: r.EdgeType,
			SideA:    r.SideA,
			SideB:    r.SideB,
			Reason:   r.Reason,
			Disabled: !rs.Table.Enabled(i),
		})
	}

	return summary
}

// sortedTokens returns the vocabulary's canonical tokens in sorted order.
func sortedTokens(vocab *rules.Vocabulary) []string {
	tokens := make([]string, 0, len(vocab.Tokens))
	for tok := range vocab.Tokens {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// outputRulesetSuccess displays the compiled table and vocabulary.
func outputRulesetSuccess(formatter *OutputFormatter, summary *RulesetSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled rule table %s: %d rule(s), %d token(s)\n\n",
		summary.Version, len(summary.Rules), len(summary.Tokens))

	fmt.Fprintln(formatter.Writer, "Rules:")
	for _, r := range summary.Rules {
		suffix := ""
		if r.Disabled {
			suffix = " (disabled)"
		}
		fmt.Fprintf(formatter.Writer, "  [%d] %s: %s <-> %s%s\n",
			r.Index, r.EdgeType, strings.Join(r.SideA, "+"), strings.Join(r.SideB, "+"), suffix)
	}
	fmt.Fprintln(formatter.Writer)

	fmt.Fprintln(formatter.Writer, "Vocabulary:")
	fmt.Fprintf(formatter.Writer, "  tokens: %s\n", strings.Join(summary.Tokens, ", "))
	if len(summary.Aliases) > 0 {
		keys := make([]string, 0, len(summary.Aliases))
		for k := range summary.Aliases {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(formatter.Writer, "  alias:  %s -> %s\n", k, summary.Aliases[k])
		}
	}

	return nil
}

// outputRulesetLoadErrors outputs structural compile errors with source
// positions where available.
func outputRulesetLoadErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseRulesetError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Compile errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseRulesetError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compile errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// outputRulesetValidationErrors outputs semantic validation errors.
func outputRulesetValidationErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseRulesetError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Semantic failures = exit code 1 (validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseRulesetError(err)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Semantic failures = exit code 1 (validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// parseRulesetError extracts error code and message from an error.
func parseRulesetError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var valErr rulecue.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Code, fmt.Sprintf("%s: %s", valErr.Field, valErr.Message)
	}
	return ErrCodeGeneric, err.Error()
}
