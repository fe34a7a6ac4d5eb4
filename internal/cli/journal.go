package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manaforge/synergraph/internal/store"
)

// JournalOptions holds flags for the journal subcommands.
type JournalOptions struct {
	*RootOptions
	Deck string // optional - filter listing to one deck
}

// JournalRun is one recorded run in CLI output.
type JournalRun struct {
	Token         string `json:"run_token"`
	Deck          string `json:"deck"`
	SlotCount     int    `json:"slot_count"`
	SchemaVersion string `json:"schema_version"`
	CreatedAt     string `json:"created_at"`
}

// JournalDeck groups a deck's recorded runs, newest first.
type JournalDeck struct {
	Deck string       `json:"deck"`
	Runs []JournalRun `json:"runs"`
}

// JournalListResult holds the listing output.
type JournalListResult struct {
	Decks     []JournalDeck `json:"decks"`
	TotalRuns int           `json:"total_runs"`
}

// JournalShowResult holds one run with its recorded hash chain.
type JournalShowResult struct {
	Run   JournalRun  `json:"run"`
	Chain []ChainLink `json:"chain"`
}

// NewJournalCommand creates the journal command group.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the fingerprint journal",
		Long: `Inspect runs recorded in a fingerprint journal database.

The journal must already exist; analyze --journal creates it.`,
	}

	cmd.AddCommand(newJournalListCommand(rootOpts))
	cmd.AddCommand(newJournalShowCommand(rootOpts))

	return cmd
}

// newJournalListCommand creates the journal list subcommand.
func newJournalListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <db>",
		Short: "List recorded runs per deck",
		Long: `List every recorded run, grouped by deck with the newest run first.

Examples:
  synergraph journal list ./synergraph.db
  synergraph journal list ./synergraph.db --deck token-web
  synergraph journal list ./synergraph.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Deck, "deck", "", "filter to one deck")

	return cmd
}

// newJournalShowCommand creates the journal show subcommand.
func newJournalShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <db> <run-token>",
		Short: "Show one run's recorded hash chain",
		Long: `Show a recorded run's metadata and its full per-layer hash chain.

Examples:
  synergraph journal show ./synergraph.db 0198f0a2-1c3d-7e4f-8a21-93b7cc01d544
  synergraph journal show ./synergraph.db 0198f0a2-1c3d-7e4f-8a21-93b7cc01d544 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalShow(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

// openExistingJournal opens a journal database, refusing to create one.
// Read-only inspectors use this so a typoed path never leaves an empty
// database behind.
func openExistingJournal(path string) (*store.Journal, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path))
		}
		return nil, WrapExitError(ExitCommandError, "failed to access journal", err)
	}

	j, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

func runJournalList(opts *JournalOptions, dbPath string, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := openExistingJournal(dbPath)
	if err != nil {
		return err
	}
	defer j.Close()

	var decks []string
	if opts.Deck != "" {
		decks = []string{opts.Deck}
	} else {
		decks, err = j.ListDecks(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list decks", err)
		}
	}

	result := JournalListResult{Decks: []JournalDeck{}}
	for _, name := range decks {
		runs, err := j.ListRuns(ctx, name)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to list runs for %s", name), err)
		}
		if len(runs) == 0 {
			continue
		}

		entry := JournalDeck{Deck: name}
		for _, run := range runs {
			entry.Runs = append(entry.Runs, journalRun(run))
		}
		result.Decks = append(result.Decks, entry)
		result.TotalRuns += len(runs)
	}

	if opts.Format == "json" {
		return outputJournalJSON(cmd, result)
	}

	return outputJournalListText(cmd, result)
}

func runJournalShow(opts *JournalOptions, dbPath, runToken string, cmd *cobra.Command) error {
	ctx := context.Background()

	j, err := openExistingJournal(dbPath)
	if err != nil {
		return err
	}
	defer j.Close()

	run, err := j.GetRun(ctx, runToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runToken))
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	chain, err := j.ReadChain(ctx, runToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read hash chain", err)
	}

	result := JournalShowResult{
		Run:   journalRun(run),
		Chain: chainLinks(chain),
	}

	if opts.Format == "json" {
		return outputJournalJSON(cmd, result)
	}

	return outputJournalShowText(cmd, result)
}

// journalRun converts a stored run to the CLI output shape.
func journalRun(run store.Run) JournalRun {
	return JournalRun{
		Token:         run.Token,
		Deck:          run.DeckName,
		SlotCount:     run.SlotCount,
		SchemaVersion: run.SchemaVersion,
		CreatedAt:     run.CreatedAt,
	}
}

// outputJournalJSON outputs a journal result as JSON.
func outputJournalJSON(cmd *cobra.Command, result interface{}) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputJournalListText outputs the run listing as text.
func outputJournalListText(cmd *cobra.Command, result JournalListResult) error {
	w := cmd.OutOrStdout()

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "Journal: %d deck(s), %d run(s)\n", len(result.Decks), result.TotalRuns)
	fmt.Fprintln(w)

	for _, entry := range result.Decks {
		fmt.Fprintf(w, "%s:\n", entry.Deck)
		for _, run := range entry.Runs {
			fmt.Fprintf(w, "  %s  %s  %d slot(s)  %s\n",
				run.CreatedAt, run.Token, run.SlotCount, run.SchemaVersion)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// outputJournalShowText outputs one run's chain as text.
func outputJournalShowText(cmd *cobra.Command, result JournalShowResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Run: %s\n", result.Run.Token)
	fmt.Fprintf(w, "Deck: %s (%d slots)\n", result.Run.Deck, result.Run.SlotCount)
	fmt.Fprintf(w, "Schema: %s\n", result.Run.SchemaVersion)
	fmt.Fprintf(w, "Recorded: %s\n", result.Run.CreatedAt)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Fingerprints ===")
	if len(result.Chain) == 0 {
		fmt.Fprintln(w, "  (no fingerprints)")
	} else {
		for _, link := range result.Chain {
			fmt.Fprintf(w, "  %-16s %s\n", link.Layer, link.Hash)
		}
	}

	return nil
}
