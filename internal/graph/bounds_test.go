package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKeepsValidBounds(t *testing.T) {
	b := Bounds{
		MaxPrimitivesPerSlot: 5,
		MaxSlotsPerPrimitive: 10,
		MaxCandidateEdges:    50,
	}
	assert.Equal(t, b, b.Sanitize())
}

func TestSanitizeReplacesInvalidBounds(t *testing.T) {
	tests := []struct {
		name  string
		input Bounds
	}{
		{"all zero", Bounds{}},
		{"negative", Bounds{MaxPrimitivesPerSlot: -1, MaxSlotsPerPrimitive: -5, MaxCandidateEdges: -100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Sanitize()
			assert.Equal(t, DefaultBounds(), got)
		})
	}
}

func TestSanitizeReplacesOnlyInvalidFields(t *testing.T) {
	got := Bounds{MaxPrimitivesPerSlot: 3}.Sanitize()

	assert.Equal(t, 3, got.MaxPrimitivesPerSlot)
	assert.Equal(t, DefaultMaxSlotsPerPrimitive, got.MaxSlotsPerPrimitive)
	assert.Equal(t, DefaultMaxCandidateEdges, got.MaxCandidateEdges)
}

func TestSanitizeDoesNotMutateReceiver(t *testing.T) {
	b := Bounds{}
	_ = b.Sanitize()
	assert.Equal(t, Bounds{}, b)
}
