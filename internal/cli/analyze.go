package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/manaforge/synergraph/internal/canon"
	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/pipeline"
	"github.com/manaforge/synergraph/internal/store"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Rules   string // optional CUE ruleset path
	Layer   string // optional - print one layer's canonical payload
	Journal string // optional - journal database to record the hash chain
	Check   bool   // also run invariant validation

	// TokenGenerator allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator pipeline.TokenGenerator
}

// ChainLink is one layer fingerprint in CLI output.
type ChainLink struct {
	Layer string `json:"layer"`
	Hash  string `json:"hash"`
}

// CheckResult holds the invariant-validation outcome for CLI output.
type CheckResult struct {
	Status string   `json:"status"`
	Codes  []string `json:"codes,omitempty"`
}

// AnalyzeResult holds the full analysis summary.
type AnalyzeResult struct {
	Deck          string       `json:"deck"`
	TableVersion  string       `json:"table_version"`
	Slots         int          `json:"slots"`
	Nodes         int          `json:"nodes"`
	Edges         int          `json:"edges"`
	Components    int          `json:"components"`
	MotifsPresent int          `json:"motifs_present"`
	Articulations int          `json:"articulations"`
	Bridges       int          `json:"bridges"`
	Reachable     int          `json:"reachable"`
	Unreachable   int          `json:"unreachable"`
	Triangles     int          `json:"triangles"`
	FourCycles    int          `json:"four_cycles"`
	Candidates    int          `json:"candidates"`
	Chain         []ChainLink  `json:"chain"`
	RunToken      string       `json:"run_token,omitempty"`
	Validation    *CheckResult `json:"validation,omitempty"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <deck.yaml>",
		Short: "Run the full analysis pipeline over a deck",
		Long: `Run the layered analysis pipeline over a deck file.

Builds the primitive index, the typed synergy graph, the structural
analytics (motifs, disruption, pathways), and the bounded combo layers,
then prints a summary with the per-layer hash chain.

With --layer, prints the selected layer's canonical payload instead of
the summary. With --journal, records the hash chain under a fresh run
token; when --check is also set, the run is only recorded if validation
passes.

Examples:
  synergraph analyze deck.yaml
  synergraph analyze deck.yaml --rules ./ruleset
  synergraph analyze deck.yaml --layer graph_typed
  synergraph analyze deck.yaml --journal ./synergraph.db --check`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rules, "rules", "", "path to CUE ruleset file or directory")
	cmd.Flags().StringVar(&opts.Layer, "layer", "", "print one layer's canonical payload")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the hash chain to this journal database")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "also run invariant validation")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, deckPath string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	slog.Debug("loading deck", "path", deckPath)
	d, err := deck.Load(deckPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load deck", err)
	}

	req := pipeline.RequestFromDeck(d)
	if opts.Rules != "" {
		slog.Debug("loading ruleset", "path", opts.Rules)
		rs, err := compileRuleset(opts.Rules)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load ruleset", err)
		}
		req.Table = rs.Table
		req.Vocabulary = rs.Vocabulary
	}

	res := pipeline.Run(req)
	slog.Debug("pipeline complete",
		"deck", d.Name,
		"slots", len(d.Slots),
		"edges", res.Graph.Totals.Edges,
		"components", res.Graph.Totals.Components)

	if opts.Layer != "" {
		return outputLayerPayload(cmd, res, opts.Layer)
	}

	result := summarizeAnalysis(d, res)

	var report pipeline.Report
	if opts.Check {
		report = pipeline.Validate(req, res)
		result.Validation = &CheckResult{Status: report.Status, Codes: report.Codes}
	}

	if opts.Journal != "" && (!opts.Check || report.OK()) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		token, err := recordRun(ctx, opts, d, res)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.RunToken = token
	}

	return outputAnalyzeResult(formatter, result)
}

// summarizeAnalysis flattens a pipeline result into the CLI summary.
func summarizeAnalysis(d *deck.Deck, res *pipeline.Result) *AnalyzeResult {
	return &AnalyzeResult{
		Deck:          d.Name,
		TableVersion:  res.Table.Version,
		Slots:         len(d.Slots),
		Nodes:         res.Graph.Totals.Nodes,
		Edges:         res.Graph.Totals.Edges,
		Components:    res.Graph.Totals.Components,
		MotifsPresent: res.Motifs.Totals.Present,
		Articulations: res.Disruption.Totals.ArticulationNodes,
		Bridges:       res.Disruption.Totals.BridgeEdges,
		Reachable:     res.Pathways.Totals.Reachable,
		Unreachable:   res.Pathways.Totals.Unreachable,
		Triangles:     res.Skeleton.Totals.Triangles,
		FourCycles:    res.Skeleton.Totals.FourCycles,
		Candidates:    res.Candidates.Totals.Candidates,
		Chain:         chainLinks(res.HashChain()),
	}
}

// chainLinks converts a hash chain to the CLI output shape.
func chainLinks(chain []pipeline.LayerHash) []ChainLink {
	links := make([]ChainLink, 0, len(chain))
	for _, lh := range chain {
		links = append(links, ChainLink{Layer: lh.Layer, Hash: lh.Hash})
	}
	return links
}

// outputLayerPayload prints one layer's canonical payload bytes. The
// output is exactly what the layer hash covers, minus the domain prefix.
func outputLayerPayload(cmd *cobra.Command, res *pipeline.Result, layer string) error {
	payload, ok := res.LayerPayload(layer)
	if !ok {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown layer %q: must be one of %v", layer, pipeline.Layers()))
	}

	data, err := canon.MarshalCanonical(payload)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to marshal layer payload", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// recordRun opens the journal, tags the result with a fresh run token,
// and stores the hash chain.
func recordRun(ctx context.Context, opts *AnalyzeOptions, d *deck.Deck, res *pipeline.Result) (string, error) {
	gen := opts.TokenGenerator
	if gen == nil {
		gen = pipeline.UUIDv7Generator{}
	}
	token := gen.Generate()

	j, err := store.Open(opts.Journal)
	if err != nil {
		return "", fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	run := store.Run{
		Token:         token,
		DeckName:      d.Name,
		SlotCount:     len(d.Slots),
		SchemaVersion: canon.SchemaVersion,
	}
	if err := j.RecordRun(ctx, run, res.HashChain()); err != nil {
		return "", err
	}

	slog.Debug("run recorded", "token", token, "journal", opts.Journal)
	return token, nil
}

// outputAnalyzeResult renders the summary. A failed --check pass still
// prints the full summary before returning the failure exit code.
func outputAnalyzeResult(formatter *OutputFormatter, result *AnalyzeResult) error {
	checkFailed := result.Validation != nil && result.Validation.Status != pipeline.StatusOK

	if formatter.Format == "json" {
		response := CLIResponse{
			Status:   "ok",
			Data:     result,
			RunToken: result.RunToken,
		}
		if checkFailed {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    result.Validation.Codes[0],
				Message: "invariant validation failed",
			}
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		if checkFailed {
			return NewExitError(ExitFailure,
				fmt.Sprintf("validation failed with %d violation(s)", len(result.Validation.Codes)))
		}
		return nil
	}

	outputAnalyzeText(formatter.Writer, result)

	if checkFailed {
		return NewExitError(ExitFailure,
			fmt.Sprintf("validation failed with %d violation(s)", len(result.Validation.Codes)))
	}
	return nil
}

// outputAnalyzeText renders the human-readable summary.
func outputAnalyzeText(w interface{ Write([]byte) (int, error) }, result *AnalyzeResult) {
	fmt.Fprintf(w, "Deck: %s (%d slots)\n", result.Deck, result.Slots)
	fmt.Fprintf(w, "Rule table: %s\n", result.TableVersion)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Graph ===")
	fmt.Fprintf(w, "  Nodes: %d\n", result.Nodes)
	fmt.Fprintf(w, "  Edges: %d\n", result.Edges)
	fmt.Fprintf(w, "  Components: %d\n", result.Components)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Analysis ===")
	fmt.Fprintf(w, "  Motifs present: %d\n", result.MotifsPresent)
	fmt.Fprintf(w, "  Articulation points: %d\n", result.Articulations)
	fmt.Fprintf(w, "  Bridge edges: %d\n", result.Bridges)
	fmt.Fprintf(w, "  Reachable from commander: %d (unreachable %d)\n", result.Reachable, result.Unreachable)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Combos ===")
	fmt.Fprintf(w, "  Triangles: %d\n", result.Triangles)
	fmt.Fprintf(w, "  Four-cycles: %d\n", result.FourCycles)
	fmt.Fprintf(w, "  Candidates: %d\n", result.Candidates)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Fingerprints ===")
	for _, link := range result.Chain {
		fmt.Fprintf(w, "  %-16s %s\n", link.Layer, link.Hash)
	}

	if result.Validation != nil {
		fmt.Fprintln(w)
		if result.Validation.Status == pipeline.StatusOK {
			fmt.Fprintln(w, "✓ All invariants hold")
		} else {
			fmt.Fprintln(w, "✗ Validation failed")
			for _, code := range result.Validation.Codes {
				fmt.Fprintf(w, "  %s\n", code)
			}
		}
	}

	if result.RunToken != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Recorded run %s\n", result.RunToken)
	}
}
