// Package harness provides scenario testing for the analysis pipeline.
//
// The harness loads deck scenarios, runs the full pipeline over them, and
// validates structural expectations as executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	deck: decks/token_web.yaml
//	rules: ruleset            # optional CUE ruleset file or directory
//	config:
//	  expansion:
//	    max_candidate_edges: 100
//	  cycles:
//	    triangle_cap: 5
//	  disabled_rules: [2]
//	expectations:
//	  - type: component_count
//	    count: 3
//	  - type: articulation_slots
//	    slots: [d001, d002]
//	  - type: determinism
//	    count: 3
//
// A deck can also be embedded directly under deck_inline, using the same
// document shape as a deck file.
//
// # Expectation Types
//
// The following expectation types are supported:
//
//   - component_count: the typed graph has exactly N components
//   - articulation_slots: the articulation set is exactly these slots
//   - motif_present: the motif with this id is present
//   - motif_absent: the motif with this id is absent
//   - reachable_count: exactly N slots are commander-reachable
//   - candidate_count: exactly N combo candidates were lifted
//   - determinism: N full passes produce identical hash chains
//
// # Deterministic Snapshots
//
// Every scenario additionally runs the invariant validation pass, and its
// structural report can be compared against a golden fixture. Snapshots
// serialize through the same canonical JSON as the fingerprint layer, so
// fixture bytes are stable across runs and platforms. Run tokens come
// from a fixed generator (scenario.run_token or "test-run-default"), never
// from UUIDs, keeping fixtures reproducible.
//
// # Usage
//
// Load a scenario:
//
//	scenario, err := harness.LoadScenarioWithBasePath("testdata/scenarios/token_web.yaml", "testdata")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Execute it:
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
