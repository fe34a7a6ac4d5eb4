package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPathwaysDistances(t *testing.T) {
	p := BuildPathways(graphOf(t, pathGraph(t), nil))

	assert.True(t, p.CommanderPlayable)
	assert.Equal(t, "c00", p.CommanderID)
	require.Len(t, p.Distances, 4)
	assert.Equal(t, Distance{SlotID: "c00", Distance: 0}, p.Distances[0])
	assert.Equal(t, Distance{SlotID: "d001", Distance: 1}, p.Distances[1])
	assert.Equal(t, Distance{SlotID: "d002", Distance: 2}, p.Distances[2])
	assert.Equal(t, Distance{SlotID: "d003", Distance: 3}, p.Distances[3])

	assert.Equal(t, []string{"d001", "d002", "d003"}, p.Reachable)
	assert.Empty(t, p.Unreachable)
	assert.Equal(t, 3, p.Totals.MaxDistance)
}

func TestBuildPathwaysIsolatedCommander(t *testing.T) {
	p := BuildPathways(graphOf(t, map[string][]string{
		"c00":  {"ramp"},
		"d001": {"glue"},
		"d002": {"glue"},
	}, nil))

	assert.True(t, p.CommanderPlayable)
	require.Len(t, p.Distances, 1)
	assert.Equal(t, Distance{SlotID: "c00", Distance: 0}, p.Distances[0])
	assert.Empty(t, p.Reachable)
	assert.Equal(t, []string{"d001", "d002"}, p.Unreachable)

	require.Len(t, p.BridgeCandidates, 2)
	assert.Equal(t, "d001", p.BridgeCandidates[0].SlotID)
	assert.Equal(t, "comp_001", p.BridgeCandidates[0].ComponentID)
}

func TestBuildPathwaysNoCommander(t *testing.T) {
	p := BuildPathways(graphOf(t, map[string][]string{
		"d001": {"glue"},
		"d002": {"glue"},
		"d003": {"alone"},
	}, nil))

	assert.False(t, p.CommanderPlayable)
	assert.Empty(t, p.CommanderID)
	assert.Empty(t, p.Distances)
	assert.Empty(t, p.Reachable)
	assert.Equal(t, []string{"d001", "d002", "d003"}, p.Unreachable)

	// The largest component overall becomes the repair target.
	require.Len(t, p.BridgeCandidates, 2)
	assert.Equal(t, "d001", p.BridgeCandidates[0].SlotID)
	assert.Equal(t, "comp_000", p.BridgeCandidates[0].ComponentID)
}

func TestBuildPathwaysHubRanking(t *testing.T) {
	// Star around c00; d002 carries an extra primitive to win its tie.
	p := BuildPathways(graphOf(t, map[string][]string{
		"c00":  {"p1", "p2", "p3", "p4", "p5"},
		"d001": {"p1"},
		"d002": {"p2", "extra"},
		"d003": {"p3"},
		"d004": {"p4"},
		"d005": {"p5"},
	}, nil))

	require.Len(t, p.Hubs, DefaultHubLimit)
	assert.Equal(t, Hub{SlotID: "c00", Degree: 5, PrimitiveCount: 5}, p.Hubs[0])
	assert.Equal(t, "d002", p.Hubs[1].SlotID)
	assert.Equal(t, "d001", p.Hubs[2].SlotID)
	assert.Equal(t, "d003", p.Hubs[3].SlotID)
	assert.Equal(t, "d004", p.Hubs[4].SlotID)
}

func TestBuildPathwaysNoBridgeCandidatesWhenConnected(t *testing.T) {
	p := BuildPathways(graphOf(t, map[string][]string{
		"c00":  {"glue"},
		"d001": {"glue"},
		"d002": {"glue"},
	}, nil))

	assert.Empty(t, p.Unreachable)
	assert.Empty(t, p.BridgeCandidates)
}

func TestBuildPathwaysUnreachedComponent(t *testing.T) {
	p := BuildPathways(graphOf(t, map[string][]string{
		"c00":  {"p1"},
		"d001": {"p1"},
		"d002": {"far", "wide"},
		"d003": {"far"},
		"d004": {"wide"},
	}, nil))

	assert.Equal(t, []string{"d001"}, p.Reachable)
	assert.Equal(t, []string{"d002", "d003", "d004"}, p.Unreachable)

	require.Len(t, p.BridgeCandidates, 3)
	assert.Equal(t, "d002", p.BridgeCandidates[0].SlotID)
	assert.Equal(t, 2, p.BridgeCandidates[0].Degree)
	assert.Equal(t, "comp_001", p.BridgeCandidates[0].ComponentID)
	assert.Equal(t, "d003", p.BridgeCandidates[1].SlotID)
	assert.Equal(t, "d004", p.BridgeCandidates[2].SlotID)
}

func TestBuildPathwaysSingleNode(t *testing.T) {
	p := BuildPathways(graphOf(t, map[string][]string{
		"c00": {"ramp"},
	}, nil))

	assert.True(t, p.CommanderPlayable)
	require.Len(t, p.Distances, 1)
	assert.Empty(t, p.Reachable)
	assert.Empty(t, p.Unreachable)
	assert.Empty(t, p.BridgeCandidates)
}

func TestBuildPathwaysTotals(t *testing.T) {
	p := BuildPathways(graphOf(t, pathGraph(t), nil))

	assert.Equal(t, 3, p.Totals.Reachable)
	assert.Equal(t, 0, p.Totals.Unreachable)
	assert.Equal(t, 3, p.Totals.MaxDistance)
	assert.Equal(t, 4, p.Totals.Hubs)
	assert.Equal(t, 0, p.Totals.BridgeCandidates)
}

func TestBuildPathwaysHashDeterminism(t *testing.T) {
	first := BuildPathways(graphOf(t, pathGraph(t), nil))
	assert.Len(t, first.Hash, 64)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Hash, BuildPathways(graphOf(t, pathGraph(t), nil)).Hash)
	}
}

func TestBuildPathwaysHashSensitivity(t *testing.T) {
	a := BuildPathways(graphOf(t, pathGraph(t), nil))
	b := BuildPathways(graphOf(t, map[string][]string{
		"c00":  {"p1"},
		"d001": {"p1"},
	}, nil))

	assert.NotEqual(t, a.Hash, b.Hash)
}
