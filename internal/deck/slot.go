package deck

import "fmt"

// Slot statuses. Any status other than StatusPlayable is non-playable and
// excluded from the typed graph.
const (
	StatusPlayable = "PLAYABLE"
	StatusExcluded = "EXCLUDED"
)

// Node types.
const (
	NodeTypeCommander = "COMMANDER"
	NodeTypeDeck      = "DECK"
)

// Slot identifies one card occupying one deck position. Slots are created
// once at load time and are immutable for the duration of a pipeline run.
type Slot struct {
	// SlotID is the stable, sortable slot token ("c00", "d001", ...).
	SlotID string

	// Name is the display name from the deck file. Opaque to the core.
	Name string

	// OracleID is the catalog identity, if resolved. May be empty.
	OracleID string

	// Status is StatusPlayable or a non-playable status token.
	Status string

	// NodeType is NodeTypeCommander or NodeTypeDeck.
	NodeType string
}

// IsPlayable reports whether the slot participates in the graph.
func (s Slot) IsPlayable() bool {
	return s.Status == StatusPlayable
}

// IsCommander reports whether the slot is the commander slot.
func (s Slot) IsCommander() bool {
	return s.NodeType == NodeTypeCommander
}

// MakeSlotID builds the stable slot id for a position. The commander id is
// "c00"; deck ids are "d001", "d002", ... numbered from 1 in input order.
func MakeSlotID(nodeType string, index int) string {
	if nodeType == NodeTypeCommander {
		return "c00"
	}
	return fmt.Sprintf("d%03d", index)
}
