package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/manaforge/synergraph/internal/canon"
)

// ReportSnapshot captures the structural outcome of a scenario execution:
// component membership, typed edges, motif presence, disruption and
// reachability results, lifted candidates, and the invariant report.
// Layer fingerprints are deliberately excluded so fixtures stay readable
// and reviewable; the fingerprints themselves are pinned by determinism
// expectations instead.
type ReportSnapshot struct {
	ScenarioName string
	RunToken     string
	Result       *Result
}

// toCanonicalObject converts the snapshot into a canon.Object so golden
// comparison runs over the same canonical JSON the hash layer uses.
func (s *ReportSnapshot) toCanonicalObject() canon.Object {
	res := s.Result.Pipeline

	components := make(canon.Array, 0, len(res.Graph.Components))
	for _, c := range res.Graph.Components {
		components = append(components, canon.Object{
			"id":    canon.String(c.ID),
			"nodes": canon.StringArray(c.Nodes),
		})
	}

	edges := make(canon.Array, 0, len(res.Graph.Edges))
	for _, e := range res.Graph.Edges {
		types := make([]string, 0, len(e.Matches))
		for _, m := range e.Matches {
			types = append(types, m.EdgeType)
		}
		edges = append(edges, canon.Object{
			"key":   canon.String(e.Key),
			"types": canon.StringArray(types),
		})
	}

	motifs := make(canon.Array, 0, len(res.Motifs.Records))
	for _, r := range res.Motifs.Records {
		motifs = append(motifs, canon.Object{
			"id":      canon.String(r.ID),
			"present": canon.Bool(r.Present),
			"count":   canon.Int(int64(r.Count)),
		})
	}

	articulations := make([]string, 0, len(res.Disruption.Articulations))
	for _, a := range res.Disruption.Articulations {
		articulations = append(articulations, a.SlotID)
	}

	candidates := make(canon.Array, 0, len(res.Candidates.List))
	for _, cand := range res.Candidates.List {
		candidates = append(candidates, canon.Object{
			"id":    canon.String(cand.ID),
			"type":  canon.String(cand.Type),
			"slots": canon.StringArray(cand.Slots),
		})
	}

	return canon.Object{
		"scenario":      canon.String(s.ScenarioName),
		"run_token":     canon.String(s.RunToken),
		"deck":          canon.String(s.Result.Deck.Name),
		"slots":         canon.Int(int64(len(s.Result.Deck.Slots))),
		"components":    components,
		"edges":         edges,
		"motifs":        motifs,
		"articulations": canon.StringArray(articulations),
		"reachable":     canon.StringArray(res.Pathways.Reachable),
		"unreachable":   canon.StringArray(res.Pathways.Unreachable),
		"candidates":    candidates,
		"validation": canon.Object{
			"status": canon.String(s.Result.Report.Status),
			"codes":  canon.StringArray(s.Result.Report.Codes),
		},
	}
}

// RunWithGolden executes a scenario and compares the structural report
// against a golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the report doesn't match the golden file. Expectation
// failures do not error here; they are part of the snapshot's inputs and
// should be asserted separately.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's structural report against a
// golden file. This is useful when you've already run a scenario and want
// to compare the result without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := ReportSnapshot{
		ScenarioName: scenarioName,
		RunToken:     result.RunToken,
		Result:       result,
	}

	reportJSON, err := canon.MarshalCanonical(snapshot.toCanonicalObject())
	if err != nil {
		return err
	}
	// Fixtures stay POSIX text files.
	reportJSON = append(reportJSON, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, reportJSON)

	return nil
}
