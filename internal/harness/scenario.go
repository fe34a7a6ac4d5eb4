package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/manaforge/synergraph/internal/combo"
	"github.com/manaforge/synergraph/internal/graph"
)

// Scenario defines one analysis test scenario.
// Scenarios run a deck through the full pipeline and check expectations
// against the resulting layers and invariant report.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden fixtures are keyed
	// on it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Deck is the path to a deck YAML file.
	// Mutually exclusive with DeckInline.
	Deck string `yaml:"deck,omitempty"`

	// DeckInline embeds a complete deck document in the scenario file.
	// The node is parsed with the same strict rules as a deck file.
	DeckInline *yaml.Node `yaml:"deck_inline,omitempty"`

	// Rules is an optional path to a CUE ruleset file or directory.
	// When empty, the built-in rule table is used with no vocabulary.
	Rules string `yaml:"rules,omitempty"`

	// Config overrides the expansion and cycle-search bounds and can
	// disable rule table entries by index.
	Config Config `yaml:"config,omitempty"`

	// RunToken is an optional fixed run token for the result and the
	// golden snapshot. If empty, defaults to "test-run-default" so golden
	// comparison stays deterministic.
	RunToken string `yaml:"run_token,omitempty"`

	// Expectations validate the pipeline outcome.
	// Supported types: component_count, articulation_slots, motif_present,
	// motif_absent, reachable_count, candidate_count, determinism.
	Expectations []Expectation `yaml:"expectations"`
}

// Config is the scenario's pipeline configuration. Zero-valued bounds
// sanitize to the documented defaults, so partial overrides are fine.
type Config struct {
	// Expansion caps the candidate-edge expansion.
	Expansion graph.Bounds `yaml:"expansion,omitempty"`

	// Cycles caps the combo cycle search.
	Cycles combo.Bounds `yaml:"cycles,omitempty"`

	// DisabledRules lists rule table indices to disable for the run.
	DisabledRules []int `yaml:"disabled_rules,omitempty"`
}

// Expectation validates one aspect of the pipeline outcome.
type Expectation struct {
	// Type specifies the expectation type:
	//   - "component_count": the typed graph has exactly N components
	//   - "articulation_slots": the articulation set is exactly these slots
	//   - "motif_present": the motif with this id is present
	//   - "motif_absent": the motif with this id is absent
	//   - "reachable_count": exactly N slots are commander-reachable
	//   - "candidate_count": exactly N combo candidates were lifted
	//   - "determinism": N full passes produce identical hash chains
	Type string `yaml:"type"`

	// Count is the expected value for the counting types, and the number
	// of passes for determinism.
	Count int `yaml:"count,omitempty"`

	// Slots is the expected slot id set (used by articulation_slots).
	// Order does not matter; comparison is against the sorted sets.
	Slots []string `yaml:"slots,omitempty"`

	// Motif is the motif id (used by motif_present, motif_absent).
	Motif string `yaml:"motif,omitempty"`
}

// Expectation type constants.
const (
	ExpectComponentCount    = "component_count"
	ExpectArticulationSlots = "articulation_slots"
	ExpectMotifPresent      = "motif_present"
	ExpectMotifAbsent       = "motif_absent"
	ExpectReachableCount    = "reachable_count"
	ExpectCandidateCount    = "candidate_count"
	ExpectDeterminism       = "determinism"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expectation:" vs "expectations:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the deck and ruleset paths relative to the provided base path.
// This is useful when scenario files reference decks using relative paths.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos)
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve referenced paths relative to base path BEFORE validation
	if basePath != "" {
		if scenario.Deck != "" && !filepath.IsAbs(scenario.Deck) {
			scenario.Deck = filepath.Join(basePath, scenario.Deck)
		}
		if scenario.Rules != "" && !filepath.IsAbs(scenario.Rules) {
			scenario.Rules = filepath.Join(basePath, scenario.Rules)
		}
	}

	// Validate required fields (now with resolved paths)
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Deck == "" && s.DeckInline == nil {
		return fmt.Errorf("deck or deck_inline is required")
	}

	if s.Deck != "" && s.DeckInline != nil {
		return fmt.Errorf("deck and deck_inline are mutually exclusive")
	}

	if s.DeckInline != nil && s.DeckInline.Kind != yaml.MappingNode {
		return fmt.Errorf("deck_inline must be a mapping")
	}

	if len(s.Expectations) == 0 {
		return fmt.Errorf("expectations list is required and must be non-empty")
	}

	// Validate referenced paths exist
	if s.Deck != "" {
		if _, err := os.Stat(s.Deck); os.IsNotExist(err) {
			return fmt.Errorf("deck file not found: %s", s.Deck)
		}
	}
	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); os.IsNotExist(err) {
			return fmt.Errorf("ruleset path not found: %s", s.Rules)
		}
	}

	// Disabling a rule that the table doesn't have is checked at run
	// time, once the table is known; only the sign is checkable here.
	for i, idx := range s.Config.DisabledRules {
		if idx < 0 {
			return fmt.Errorf("config.disabled_rules[%d]: rule index must be non-negative", i)
		}
	}

	// Validate expectations
	for i := range s.Expectations {
		if err := validateExpectation(i, &s.Expectations[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateExpectation validates a single expectation based on its type.
func validateExpectation(index int, e *Expectation) error {
	if e.Type == "" {
		return fmt.Errorf("expectations[%d]: type is required", index)
	}

	switch e.Type {
	case ExpectComponentCount, ExpectReachableCount, ExpectCandidateCount:
		if e.Count < 0 {
			return fmt.Errorf("expectations[%d]: count must be non-negative for %s", index, e.Type)
		}
	case ExpectArticulationSlots:
		if e.Slots == nil {
			return fmt.Errorf("expectations[%d]: slots is required for articulation_slots (use [] for none)", index)
		}
	case ExpectMotifPresent, ExpectMotifAbsent:
		if e.Motif == "" {
			return fmt.Errorf("expectations[%d]: motif is required for %s", index, e.Type)
		}
	case ExpectDeterminism:
		if e.Count < 2 {
			return fmt.Errorf("expectations[%d]: count must be at least 2 for determinism", index)
		}
	default:
		return fmt.Errorf("expectations[%d]: unknown expectation type %q", index, e.Type)
	}

	return nil
}
