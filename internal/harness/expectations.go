package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/manaforge/synergraph/internal/pipeline"
	"github.com/manaforge/synergraph/internal/store"
)

// ExpectationError is returned when an expectation fails.
// It includes the layer fingerprints to identify exactly which pipeline
// state the failure was observed against.
type ExpectationError struct {
	Type     string               // Expectation type for categorization
	Expected string               // Human-readable expected outcome
	Actual   string               // Human-readable actual outcome
	Chain    []pipeline.LayerHash // Fingerprint chain for debugging context
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder

	// Header with expectation type
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Fingerprint chain for context
	fmt.Fprintf(&buf, "\nLayer fingerprints:\n")
	for _, lh := range e.Chain {
		fmt.Fprintf(&buf, "  %s %s\n", lh.Hash, lh.Layer)
	}

	return buf.String()
}

// EvaluateExpectations evaluates all expectations against the pipeline
// result. Returns a slice of error messages for failed expectations.
// The request is needed so determinism expectations can re-run the pass.
func EvaluateExpectations(req pipeline.Request, res *pipeline.Result, expectations []Expectation) []string {
	var errors []string

	for i, exp := range expectations {
		var err error

		switch exp.Type {
		case ExpectComponentCount:
			err = expectComponentCount(res, exp)
		case ExpectArticulationSlots:
			err = expectArticulationSlots(res, exp)
		case ExpectMotifPresent:
			err = expectMotif(res, exp, true)
		case ExpectMotifAbsent:
			err = expectMotif(res, exp, false)
		case ExpectReachableCount:
			err = expectReachableCount(res, exp)
		case ExpectCandidateCount:
			err = expectCandidateCount(res, exp)
		case ExpectDeterminism:
			err = expectDeterminism(req, res, exp)
		default:
			err = fmt.Errorf("expectations[%d]: unknown expectation type %q", i, exp.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// expectComponentCount checks the typed graph's component count.
func expectComponentCount(res *pipeline.Result, exp Expectation) error {
	actual := len(res.Graph.Components)
	if actual == exp.Count {
		return nil
	}
	return &ExpectationError{
		Type:     ExpectComponentCount,
		Expected: fmt.Sprintf("%d components", exp.Count),
		Actual:   fmt.Sprintf("%d components: %s", actual, formatComponents(res)),
		Chain:    res.HashChain(),
	}
}

// expectArticulationSlots checks that the articulation set is exactly the
// expected slot set. Both sides compare sorted, so severity ranking and
// YAML listing order are irrelevant.
func expectArticulationSlots(res *pipeline.Result, exp Expectation) error {
	actual := make([]string, 0, len(res.Disruption.Articulations))
	for _, a := range res.Disruption.Articulations {
		actual = append(actual, a.SlotID)
	}
	sort.Strings(actual)

	expected := append([]string(nil), exp.Slots...)
	sort.Strings(expected)

	if slicesEqual(actual, expected) {
		return nil
	}
	return &ExpectationError{
		Type:     ExpectArticulationSlots,
		Expected: fmt.Sprintf("articulation slots %v", expected),
		Actual:   fmt.Sprintf("articulation slots %v", actual),
		Chain:    res.HashChain(),
	}
}

// expectMotif checks one motif's presence. A motif is absent when it has
// no record at all (label motifs for unmatched edge types) or when its
// record carries Present=false (meta motifs).
func expectMotif(res *pipeline.Result, exp Expectation, wantPresent bool) error {
	expType := ExpectMotifPresent
	if !wantPresent {
		expType = ExpectMotifAbsent
	}

	for _, r := range res.Motifs.Records {
		if r.ID != exp.Motif {
			continue
		}
		if r.Present == wantPresent {
			return nil
		}
		return &ExpectationError{
			Type:     expType,
			Expected: fmt.Sprintf("motif %s present=%t", exp.Motif, wantPresent),
			Actual:   fmt.Sprintf("motif %s present=%t", exp.Motif, r.Present),
			Chain:    res.HashChain(),
		}
	}

	// No record: absent by construction.
	if !wantPresent {
		return nil
	}

	ids := make([]string, 0, len(res.Motifs.Records))
	for _, r := range res.Motifs.Records {
		ids = append(ids, r.ID)
	}
	return &ExpectationError{
		Type:     expType,
		Expected: fmt.Sprintf("motif %s present=true", exp.Motif),
		Actual:   fmt.Sprintf("no record for motif %s (records: %v)", exp.Motif, ids),
		Chain:    res.HashChain(),
	}
}

// expectReachableCount checks how many slots the commander reaches.
func expectReachableCount(res *pipeline.Result, exp Expectation) error {
	actual := len(res.Pathways.Reachable)
	if actual == exp.Count {
		return nil
	}
	return &ExpectationError{
		Type:     ExpectReachableCount,
		Expected: fmt.Sprintf("%d reachable slots", exp.Count),
		Actual:   fmt.Sprintf("%d reachable slots %v (unreachable %v)", actual, res.Pathways.Reachable, res.Pathways.Unreachable),
		Chain:    res.HashChain(),
	}
}

// expectCandidateCount checks how many combo candidates were lifted.
func expectCandidateCount(res *pipeline.Result, exp Expectation) error {
	actual := len(res.Candidates.List)
	if actual == exp.Count {
		return nil
	}
	ids := make([]string, 0, actual)
	for _, cand := range res.Candidates.List {
		ids = append(ids, fmt.Sprintf("%s(%s)", cand.ID, cand.Type))
	}
	return &ExpectationError{
		Type:     ExpectCandidateCount,
		Expected: fmt.Sprintf("%d candidates", exp.Count),
		Actual:   fmt.Sprintf("%d candidates %v", actual, ids),
		Chain:    res.HashChain(),
	}
}

// expectDeterminism re-runs the pipeline and diffs each rerun's hash
// chain against the first pass. Any drift fails on the first differing
// layer.
func expectDeterminism(req pipeline.Request, res *pipeline.Result, exp Expectation) error {
	first := res.HashChain()
	for pass := 2; pass <= exp.Count; pass++ {
		next := pipeline.Run(req).HashChain()
		drifts := store.DiffChains(first, next)
		if len(drifts) == 0 {
			continue
		}
		d := drifts[0]
		return &ExpectationError{
			Type:     ExpectDeterminism,
			Expected: fmt.Sprintf("identical hash chains across %d passes", exp.Count),
			Actual:   fmt.Sprintf("layer %s drifted on pass %d: %s != %s", d.Layer, pass, d.HashA, d.HashB),
			Chain:    first,
		}
	}
	return nil
}

// formatComponents renders component membership for failure messages.
func formatComponents(res *pipeline.Result) string {
	parts := make([]string, 0, len(res.Graph.Components))
	for _, c := range res.Graph.Components {
		parts = append(parts, fmt.Sprintf("%s=%v", c.ID, c.Nodes))
	}
	return strings.Join(parts, ", ")
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
