// Package rules defines the closed-world typed-edge rule table and its
// evaluation against slot primitive sets.
//
// Rules are plain data: an ordered slice of records, never polymorphic
// types. The table order is part of the deterministic contract (rule index
// appears in typed matches and candidate hashes), so rules must never be
// reordered within a version. Individual rules can be disabled without
// removal; disabling changes which matches are emitted but not which raw
// matches are counted, keeping toggles auditable.
package rules

import "sort"

// Rule classifies one edge relationship from primitive evidence. A rule
// matches an edge when one endpoint's primitives cover SideA and the other
// endpoint's cover SideB, in either direction.
type Rule struct {
	// EdgeType is the relationship label this rule assigns.
	EdgeType string

	// SideA and SideB are the primitive requirements for the two
	// endpoints. Sides are not fixed to a specific endpoint.
	SideA []string
	SideB []string

	// Reason is a human-readable template for downstream explanation
	// tooling. Never hashed.
	Reason string
}

// Table is the ordered rule table plus its version and per-rule disable
// flags.
type Table struct {
	// Version tags every match produced from this table.
	Version string

	// Rules is the ordered rule list. Index identity is stable.
	Rules []Rule

	// Disabled marks rule indices excluded from enabled-match emission.
	Disabled map[int]bool
}

// Enabled reports whether the rule at index i participates in match
// emission.
func (t *Table) Enabled(i int) bool {
	return !t.Disabled[i]
}

// DisabledIndices returns the disabled rule indices in ascending order,
// for payloads and reports.
func (t *Table) DisabledIndices() []int {
	indices := make([]int, 0, len(t.Disabled))
	for i, off := range t.Disabled {
		if off {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	return indices
}

// WithDisabled returns a copy of the table with the given rule indices
// disabled. The receiver is not modified.
func (t *Table) WithDisabled(indices ...int) *Table {
	out := &Table{
		Version:  t.Version,
		Rules:    t.Rules,
		Disabled: make(map[int]bool, len(t.Disabled)+len(indices)),
	}
	for i, off := range t.Disabled {
		if off {
			out.Disabled[i] = true
		}
	}
	for _, i := range indices {
		out.Disabled[i] = true
	}
	return out
}

// DefaultTable returns the built-in rule table used when no compiled
// ruleset is supplied.
func DefaultTable() *Table {
	return &Table{
		Version: "rules/v1",
		Rules: []Rule{
			{
				EdgeType: "token_engine",
				SideA:    []string{"token_gen"},
				SideB:    []string{"damage_trigger"},
				Reason:   "token production feeds a per-creature damage trigger",
			},
			{
				EdgeType: "sacrifice_loop",
				SideA:    []string{"sac_outlet"},
				SideB:    []string{"token_gen"},
				Reason:   "sacrifice outlet consumes generated tokens",
			},
			{
				EdgeType: "resource_engine",
				SideA:    []string{"ramp"},
				SideB:    []string{"draw"},
				Reason:   "mana acceleration converts into card flow",
			},
			{
				EdgeType: "recursion_engine",
				SideA:    []string{"recursion"},
				SideB:    []string{"sac_outlet"},
				Reason:   "recursion returns what the outlet consumes",
			},
			{
				EdgeType: "shared_function",
				SideA:    []string{"removal"},
				SideB:    []string{"removal"},
				Reason:   "redundant interaction pieces",
			},
		},
		Disabled: map[int]bool{},
	}
}
