package rules

import "sort"

// TypedMatch records one rule matching one edge.
type TypedMatch struct {
	// EdgeType is the matched rule's relationship label.
	EdgeType string

	// RuleIndex is the rule's position in the table.
	RuleIndex int

	// MatchedRuleVersion is the table version at match time.
	MatchedRuleVersion string

	// EvidencePrimitives is the sorted union of the rule's two side
	// requirements: the primitives that had to be present for the match.
	EvidencePrimitives []string
}

// Evaluation is the result of running a table against one edge.
type Evaluation struct {
	// Matches holds one record per matching enabled rule, in table order.
	Matches []TypedMatch

	// RawCount counts matching rules ignoring disable flags. Tracked so
	// toggling a rule is auditable: RawCount is stable across toggles.
	RawCount int
}

// Evaluate runs every rule against an edge's endpoint primitive sets.
//
// A rule matches when:
// 1. one endpoint covers SideA and the other covers SideB, or
// 2. the same holds with sides swapped.
//
// A rule matching in both directions still contributes exactly one match.
func (t *Table) Evaluate(a, b Set) Evaluation {
	var eval Evaluation
	for i, rule := range t.Rules {
		if !ruleMatches(rule, a, b) {
			continue
		}
		eval.RawCount++
		if !t.Enabled(i) {
			continue
		}
		eval.Matches = append(eval.Matches, TypedMatch{
			EdgeType:           rule.EdgeType,
			RuleIndex:          i,
			MatchedRuleVersion: t.Version,
			EvidencePrimitives: evidenceUnion(rule.SideA, rule.SideB),
		})
	}
	return eval
}

// ruleMatches checks the superset condition in both directions.
func ruleMatches(rule Rule, a, b Set) bool {
	if a.HasAll(rule.SideA) && b.HasAll(rule.SideB) {
		return true
	}
	if a.HasAll(rule.SideB) && b.HasAll(rule.SideA) {
		return true
	}
	return false
}

// evidenceUnion returns the sorted deduplicated union of two requirement
// lists.
func evidenceUnion(sideA, sideB []string) []string {
	seen := make(map[string]bool, len(sideA)+len(sideB))
	for _, p := range sideA {
		seen[p] = true
	}
	for _, p := range sideB {
		seen[p] = true
	}
	union := make([]string, 0, len(seen))
	for p := range seen {
		union = append(union, p)
	}
	sort.Strings(union)
	return union
}
