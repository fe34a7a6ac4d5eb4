package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manaforge/synergraph/internal/pipeline"
)

// loadExampleScenario loads one scenario from the example corpus, with
// deck and ruleset paths resolved against testdata/.
func loadExampleScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenarioWithBasePath(filepath.Join("testdata", "scenarios", name+".yaml"), "testdata")
	require.NoError(t, err)
	return scenario
}

func TestRun_TokenWebScenario(t *testing.T) {
	scenario := loadExampleScenario(t, "token_web")

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, "errors: %s", strings.Join(result.Errors, "; "))
	assert.Empty(t, result.Errors)
	assert.Equal(t, "golden-token-web", result.RunToken)
	assert.Equal(t, "token-web", result.Deck.Name)
	assert.True(t, result.Report.OK())

	// One fingerprint per pipeline layer, in pipeline order.
	require.Len(t, result.Chain, len(pipeline.Layers()))
	for i, lh := range result.Chain {
		assert.Equal(t, pipeline.Layers()[i], lh.Layer)
		assert.Len(t, lh.Hash, 64)
	}
}

func TestRun_InlineDeck(t *testing.T) {
	scenario := loadExampleScenario(t, "commander_chain")

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %s", strings.Join(result.Errors, "; "))
	assert.Equal(t, "chain", result.Deck.Name)
	assert.Len(t, result.Deck.Slots, 4)
}

func TestRun_InlineDeckRejectedByDeckParser(t *testing.T) {
	// Inline decks go through the same strict parser as deck files, so a
	// missing card name fails the run before the pipeline starts.
	scenario := loadExampleScenario(t, "commander_chain")
	scenario.DeckInline.Content = scenario.DeckInline.Content[:0]

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inline deck")
}

func TestRun_CustomRuleset(t *testing.T) {
	scenario := loadExampleScenario(t, "chain_rules")

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %s", strings.Join(result.Errors, "; "))
	assert.Equal(t, "chain/v1", result.Pipeline.Table.Version)

	// The single alpha_link rule annotates the first two path edges.
	found := false
	for _, r := range result.Pipeline.Motifs.Records {
		if r.ID == "M0_alpha_link" {
			found = true
			assert.True(t, r.Present)
			assert.Equal(t, 2, r.Count)
		}
	}
	assert.True(t, found, "expected an M0_alpha_link record")
}

func TestRun_RulesetLoadFailure(t *testing.T) {
	scenario := loadExampleScenario(t, "chain_rules")
	scenario.Rules = filepath.Join("testdata", "ruleset", "missing.cue")

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load ruleset")
}

func TestRun_MissingDeckFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_deck",
		Description: "Deck path points nowhere at run time",
		Deck:        filepath.Join("testdata", "decks", "missing.yaml"),
		Expectations: []Expectation{
			{Type: ExpectComponentCount, Count: 1},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read deck file")
}

func TestRun_FailingExpectation(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing_expectation",
		Description: "Component count deliberately wrong",
		Deck:        filepath.Join("testdata", "decks", "token_web.yaml"),
		Expectations: []Expectation{
			{Type: ExpectComponentCount, Count: 7},
			{Type: ExpectCandidateCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expectation failed: component_count")
	assert.Contains(t, result.Errors[0], "Expected: 7 components")
	assert.Contains(t, result.Errors[0], "comp_000=[c00 d001 d002]")
}

func TestRun_DisabledRulesChangeTypedLayerOnly(t *testing.T) {
	base := &Scenario{
		Name:        "all_rules",
		Description: "Token web with the full default table",
		Deck:        filepath.Join("testdata", "decks", "token_web.yaml"),
		Expectations: []Expectation{
			{Type: ExpectMotifPresent, Motif: "M0_token_engine"},
		},
	}
	toggled := &Scenario{
		Name:        "no_token_engine",
		Description: "Token web with the token_engine rule disabled",
		Deck:        filepath.Join("testdata", "decks", "token_web.yaml"),
		Config:      Config{DisabledRules: []int{0}},
		Expectations: []Expectation{
			{Type: ExpectMotifAbsent, Motif: "M0_token_engine"},
			{Type: ExpectMotifPresent, Motif: "M0_sacrifice_loop"},
		},
	}

	baseResult, err := Run(base)
	require.NoError(t, err)
	require.True(t, baseResult.Pass, "errors: %s", strings.Join(baseResult.Errors, "; "))

	toggledResult, err := Run(toggled)
	require.NoError(t, err)
	require.True(t, toggledResult.Pass, "errors: %s", strings.Join(toggledResult.Errors, "; "))

	// Shared primitives still draw the same edges; only the annotation
	// layer and everything chained off it moves.
	baseStructure, _ := baseResult.Pipeline.LayerHashByName(pipeline.LayerGraphStructure)
	toggledStructure, _ := toggledResult.Pipeline.LayerHashByName(pipeline.LayerGraphStructure)
	assert.Equal(t, baseStructure, toggledStructure)

	baseTyped, _ := baseResult.Pipeline.LayerHashByName(pipeline.LayerGraphTyped)
	toggledTyped, _ := toggledResult.Pipeline.LayerHashByName(pipeline.LayerGraphTyped)
	assert.NotEqual(t, baseTyped, toggledTyped)
}

func TestRun_DisabledRuleOutOfRange(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_disable",
		Description: "Disable index beyond the default table",
		Deck:        filepath.Join("testdata", "decks", "token_web.yaml"),
		Config:      Config{DisabledRules: []int{12}},
		Expectations: []Expectation{
			{Type: ExpectComponentCount, Count: 3},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.disabled_rules[0]: index 12 out of range")
}

func TestRun_DefaultRunToken(t *testing.T) {
	scenario := &Scenario{
		Name:        "default_token",
		Description: "No run token in the scenario",
		Deck:        filepath.Join("testdata", "decks", "chain.yaml"),
		Expectations: []Expectation{
			{Type: ExpectComponentCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, "test-run-default", result.RunToken)
}

// TestRun_ExampleScenarios runs every scenario in testdata/scenarios and
// requires a clean pass. New example scenarios join the suite by being
// dropped into the directory.
func TestRun_ExampleScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no example scenarios found")

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenarioWithBasePath(path, "testdata")
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %s", strings.Join(result.Errors, "; "))
		})
	}
}

func TestResult_AddError(t *testing.T) {
	result := NewResult("test-token")

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)

	result.AddError("first failure")
	assert.False(t, result.Pass)

	result.AddError("second failure")
	assert.Equal(t, []string{"first failure", "second failure"}, result.Errors)
}
