package store

import (
	"context"
	"fmt"

	"github.com/manaforge/synergraph/internal/pipeline"
)

// Drift is one layer whose hash differs between two chains. An empty
// hash means the layer is absent from that side.
type Drift struct {
	Layer string
	HashA string
	HashB string
}

// DiffRuns compares the recorded chains of two runs and returns one
// drift row per differing layer, in pipeline order. Identical runs
// return an empty slice.
func (j *Journal) DiffRuns(ctx context.Context, tokenA, tokenB string) ([]Drift, error) {
	chainA, err := j.ReadChain(ctx, tokenA)
	if err != nil {
		return nil, fmt.Errorf("diff runs: %w", err)
	}
	chainB, err := j.ReadChain(ctx, tokenB)
	if err != nil {
		return nil, fmt.Errorf("diff runs: %w", err)
	}
	return DiffChains(chainA, chainB), nil
}

// DiffChains compares two layer hash chains. Layers walk in a's order
// with b-only layers appended in b's order, so drift rows follow the
// pipeline stages. Verify uses this directly with a freshly computed
// chain as b.
func DiffChains(a, b []pipeline.LayerHash) []Drift {
	bByLayer := make(map[string]string, len(b))
	for _, lh := range b {
		bByLayer[lh.Layer] = lh.Hash
	}

	seen := make(map[string]bool, len(a))
	drifts := []Drift{}
	for _, lh := range a {
		seen[lh.Layer] = true
		if other, ok := bByLayer[lh.Layer]; !ok || other != lh.Hash {
			drifts = append(drifts, Drift{Layer: lh.Layer, HashA: lh.Hash, HashB: other})
		}
	}
	for _, lh := range b {
		if !seen[lh.Layer] {
			drifts = append(drifts, Drift{Layer: lh.Layer, HashB: lh.Hash})
		}
	}

	return drifts
}
