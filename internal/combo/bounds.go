package combo

// Default cycle-search caps. Cycle enumeration is cubic to quartic in
// component size, so both the per-component node cap and the global cycle
// caps stay small.
const (
	DefaultBFSNodeCap   = 40
	DefaultTriangleCap  = 20
	DefaultFourCycleCap = 20
)

// Bounds caps the cycle search. Like the expansion bounds, these are
// configuration, not a failure source: Sanitize repairs out-of-range
// values.
type Bounds struct {
	// BFSNodeCap skips smallest-cycle search and enumeration for
	// components with more nodes than this.
	BFSNodeCap int `yaml:"bfs_node_cap,omitempty"`

	// TriangleCap and FourCycleCap bound the two enumerations globally,
	// across all components.
	TriangleCap  int `yaml:"triangle_cap,omitempty"`
	FourCycleCap int `yaml:"four_cycle_cap,omitempty"`
}

// DefaultBounds returns the documented default caps.
func DefaultBounds() Bounds {
	return Bounds{
		BFSNodeCap:   DefaultBFSNodeCap,
		TriangleCap:  DefaultTriangleCap,
		FourCycleCap: DefaultFourCycleCap,
	}
}

// Sanitize replaces non-positive caps with the documented defaults and
// returns the result. The receiver is unchanged.
func (b Bounds) Sanitize() Bounds {
	if b.BFSNodeCap <= 0 {
		b.BFSNodeCap = DefaultBFSNodeCap
	}
	if b.TriangleCap <= 0 {
		b.TriangleCap = DefaultTriangleCap
	}
	if b.FourCycleCap <= 0 {
		b.FourCycleCap = DefaultFourCycleCap
	}
	return b
}
