package harness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manaforge/synergraph/internal/canon"
)

func TestRunWithGolden_TokenWeb(t *testing.T) {
	scenario := loadExampleScenario(t, "token_web")

	err := RunWithGolden(t, scenario)
	require.NoError(t, err)
}

func TestRunWithGolden_CommanderChain(t *testing.T) {
	scenario := loadExampleScenario(t, "commander_chain")

	err := RunWithGolden(t, scenario)
	require.NoError(t, err)
}

func TestAssertGolden_FromResult(t *testing.T) {
	// Run the scenario once, then compare the already-built result.
	scenario := loadExampleScenario(t, "commander_chain")

	result, err := Run(scenario)
	require.NoError(t, err)

	err = AssertGolden(t, "commander_chain", result)
	require.NoError(t, err)
}

func TestCanonicalJSONDeterminism(t *testing.T) {
	// Verify that marshaling the same snapshot twice produces identical
	// bytes. This test doesn't use golden files - it directly compares
	// marshaled output.
	scenario := loadExampleScenario(t, "token_web")

	result, err := Run(scenario)
	require.NoError(t, err)

	snapshot := ReportSnapshot{
		ScenarioName: scenario.Name,
		RunToken:     result.RunToken,
		Result:       result,
	}

	obj := snapshot.toCanonicalObject()
	json1, err := canon.MarshalCanonical(obj)
	require.NoError(t, err)

	json2, err := canon.MarshalCanonical(obj)
	require.NoError(t, err)

	require.Equal(t, json1, json2, "canonical JSON must be deterministic")
}

func TestReportSnapshotJSON(t *testing.T) {
	// Test that ReportSnapshot marshals to the expected format.
	scenario := loadExampleScenario(t, "token_web")

	result, err := Run(scenario)
	require.NoError(t, err)

	snapshot := ReportSnapshot{
		ScenarioName: scenario.Name,
		RunToken:     result.RunToken,
		Result:       result,
	}

	jsonBytes, err := canon.MarshalCanonical(snapshot.toCanonicalObject())
	require.NoError(t, err)

	// Verify it's canonical JSON with the expected fields
	jsonStr := string(jsonBytes)
	require.Contains(t, jsonStr, `"scenario":"token_web"`)
	require.Contains(t, jsonStr, `"run_token":"golden-token-web"`)
	require.Contains(t, jsonStr, `"deck":"token-web"`)
	require.Contains(t, jsonStr, `"candidates":[{"id":"cand_000","slots":["c00","d001","d002"],"type":"triangle"}]`)
	require.Contains(t, jsonStr, `"validation":{"codes":[],"status":"OK"}`)

	// Layer fingerprints never enter the snapshot.
	require.NotContains(t, jsonStr, `"hash"`)
}
