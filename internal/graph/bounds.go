package graph

// Default expansion caps. Chosen so a 100-slot deck with a dense shared
// vocabulary stays well under a millisecond of pairing work.
const (
	DefaultMaxPrimitivesPerSlot = 12
	DefaultMaxSlotsPerPrimitive = 40
	DefaultMaxCandidateEdges    = 600
)

// Bounds caps the candidate-edge expansion. Bounds are configuration, never
// a failure source: out-of-range values fall back to defaults in Sanitize.
type Bounds struct {
	// MaxPrimitivesPerSlot truncates each slot's sorted primitive list
	// before pairing.
	MaxPrimitivesPerSlot int `yaml:"max_primitives_per_slot,omitempty"`

	// MaxSlotsPerPrimitive truncates each primitive's sorted slot list
	// before pairing.
	MaxSlotsPerPrimitive int `yaml:"max_slots_per_primitive,omitempty"`

	// MaxCandidateEdges truncates the final (a, b)-sorted candidate edge
	// list.
	MaxCandidateEdges int `yaml:"max_candidate_edges,omitempty"`
}

// DefaultBounds returns the documented default caps.
func DefaultBounds() Bounds {
	return Bounds{
		MaxPrimitivesPerSlot: DefaultMaxPrimitivesPerSlot,
		MaxSlotsPerPrimitive: DefaultMaxSlotsPerPrimitive,
		MaxCandidateEdges:    DefaultMaxCandidateEdges,
	}
}

// Sanitize replaces non-positive caps with the documented defaults and
// returns the result. The receiver is unchanged; malformed configuration
// recovers locally and never surfaces as an error.
func (b Bounds) Sanitize() Bounds {
	if b.MaxPrimitivesPerSlot <= 0 {
		b.MaxPrimitivesPerSlot = DefaultMaxPrimitivesPerSlot
	}
	if b.MaxSlotsPerPrimitive <= 0 {
		b.MaxSlotsPerPrimitive = DefaultMaxSlotsPerPrimitive
	}
	if b.MaxCandidateEdges <= 0 {
		b.MaxCandidateEdges = DefaultMaxCandidateEdges
	}
	return b
}
