package harness

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/manaforge/synergraph/internal/deck"
	"github.com/manaforge/synergraph/internal/pipeline"
	"github.com/manaforge/synergraph/internal/rulecue"
	"github.com/manaforge/synergraph/internal/rules"
	"github.com/manaforge/synergraph/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Resolve the deck (file or inline document)
//  2. Compile and validate the CUE ruleset, if the scenario names one
//  3. Apply config overrides (bounds, disabled rules)
//  4. Run the full pipeline and the invariant validation pass
//  5. Evaluate expectations against the outcome
//
// A returned error means the scenario could not run at all (bad deck,
// bad ruleset, out-of-range disable index). Expectation and invariant
// failures land in Result.Errors with Pass set to false.
func Run(scenario *Scenario) (*Result, error) {
	d, err := resolveDeck(scenario)
	if err != nil {
		return nil, err
	}

	req := pipeline.RequestFromDeck(d)
	req.Expansion = scenario.Config.Expansion
	req.Combo = scenario.Config.Cycles

	if scenario.Rules != "" {
		rs, err := rulecue.Load(scenario.Rules)
		if err != nil {
			return nil, fmt.Errorf("failed to load ruleset: %w", err)
		}
		if verrs := rulecue.Validate(rs); len(verrs) > 0 {
			msgs := make([]string, len(verrs))
			for i, ve := range verrs {
				msgs[i] = ve.Error()
			}
			return nil, fmt.Errorf("invalid ruleset %s: %s", scenario.Rules, strings.Join(msgs, "; "))
		}
		req.Table = rs.Table
		req.Vocabulary = rs.Vocabulary
	}

	if len(scenario.Config.DisabledRules) > 0 {
		table := req.Table
		if table == nil {
			table = rules.DefaultTable()
		}
		for i, idx := range scenario.Config.DisabledRules {
			if idx >= len(table.Rules) {
				return nil, fmt.Errorf("config.disabled_rules[%d]: index %d out of range (table has %d rules)",
					i, idx, len(table.Rules))
			}
		}
		req.Table = table.WithDisabled(scenario.Config.DisabledRules...)
	}

	// The fixed generator keeps golden snapshots deterministic; CLI runs
	// use UUIDv7 tokens instead.
	gen := testutil.NewFixedTokenGenerator(scenario.RunToken)

	res := pipeline.Run(req)
	report := pipeline.Validate(req, res)

	result := NewResult(gen.Generate())
	result.Deck = d
	result.Pipeline = res
	result.Report = report
	result.Chain = res.HashChain()

	if !report.OK() {
		result.AddError(fmt.Sprintf("invariant validation failed: status %s, codes %s",
			report.Status, strings.Join(report.Codes, ", ")))
	}

	for _, msg := range EvaluateExpectations(req, res, scenario.Expectations) {
		result.AddError(msg)
	}

	return result, nil
}

// resolveDeck loads the scenario's deck from its file or inline document.
func resolveDeck(s *Scenario) (*deck.Deck, error) {
	if s.DeckInline != nil {
		// Re-encode the captured node and run it through the deck
		// parser, so inline decks get the same strict validation as
		// deck files.
		data, err := yaml.Marshal(s.DeckInline)
		if err != nil {
			return nil, fmt.Errorf("failed to encode inline deck: %w", err)
		}
		d, err := deck.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("inline deck: %w", err)
		}
		return d, nil
	}
	return deck.Load(s.Deck)
}
