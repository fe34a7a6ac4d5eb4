package deck

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Deck is the loaded, validated form of a deck file: the ordered slot list,
// the raw primitive source per slot, and the override patch table. Sources
// are pre-override and may contain duplicates; normalization belongs to the
// primitive index.
type Deck struct {
	// Name identifies the deck, used by the journal and reports.
	Name string

	// Slots is the canonical ordered slot list: commander first (when
	// present), then deck slots in input order.
	Slots []Slot

	// Sources maps slot id to the raw primitive token list from the file.
	Sources map[string][]string

	// Overrides are add/remove patches keyed by oracle id, applied by the
	// primitive index before normalization.
	Overrides []Override
}

// Override patches a slot's primitive source by catalog identity. A patch
// applies to every slot sharing the oracle id.
type Override struct {
	OracleID string
	Add      []string
	Remove   []string
}

// CommanderSlotID returns the commander's slot id, or "" when the deck has
// no commander.
func (d *Deck) CommanderSlotID() string {
	for _, s := range d.Slots {
		if s.IsCommander() {
			return s.SlotID
		}
	}
	return ""
}

// PlayableSlotIDs returns the ids of playable slots in slot-id order.
func (d *Deck) PlayableSlotIDs() []string {
	ids := make([]string, 0, len(d.Slots))
	for _, s := range d.Slots {
		if s.IsPlayable() {
			ids = append(ids, s.SlotID)
		}
	}
	return ids
}

// deckFile is the YAML wire shape. It is mapped onto Deck after validation
// so the rest of the module only sees the flattened slot model.
type deckFile struct {
	Name      string          `yaml:"name"`
	Commander *cardEntry      `yaml:"commander,omitempty"`
	Cards     []cardEntry     `yaml:"cards"`
	Overrides []overrideEntry `yaml:"overrides,omitempty"`
}

type cardEntry struct {
	Name       string   `yaml:"name"`
	OracleID   string   `yaml:"oracle_id,omitempty"`
	Primitives []string `yaml:"primitives,omitempty"`
	Status     string   `yaml:"status,omitempty"`
}

type overrideEntry struct {
	OracleID string   `yaml:"oracle_id"`
	Add      []string `yaml:"add,omitempty"`
	Remove   []string `yaml:"remove,omitempty"`
}

// Load reads and parses a deck YAML file. Returns an error if the file
// doesn't exist, is malformed, contains unknown fields (typos), or is
// missing required fields.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck file: %w", err)
	}
	return Parse(data)
}

// Parse parses deck YAML bytes with strict field validation.
func Parse(data []byte) (*Deck, error) {
	var file deckFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateDeckFile(&file); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}

	return buildDeck(&file), nil
}

// validateDeckFile checks that required fields are present and valid.
func validateDeckFile(f *deckFile) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}

	if f.Commander == nil && len(f.Cards) == 0 {
		return fmt.Errorf("deck must have a commander or at least one card")
	}

	if f.Commander != nil {
		if err := validateCard("commander", f.Commander); err != nil {
			return err
		}
	}

	for i := range f.Cards {
		if err := validateCard(fmt.Sprintf("cards[%d]", i), &f.Cards[i]); err != nil {
			return err
		}
	}

	for i, o := range f.Overrides {
		if o.OracleID == "" {
			return fmt.Errorf("overrides[%d]: oracle_id is required", i)
		}
		if len(o.Add) == 0 && len(o.Remove) == 0 {
			return fmt.Errorf("overrides[%d]: at least one of add or remove is required", i)
		}
	}

	return nil
}

func validateCard(where string, c *cardEntry) error {
	if c.Name == "" {
		return fmt.Errorf("%s: name is required", where)
	}
	// Primitives may be empty: a slot with no primitives is a valid
	// isolated node candidate, not an error.
	return nil
}

// buildDeck flattens the validated file into the slot model, assigning slot
// ids in input order.
func buildDeck(f *deckFile) *Deck {
	d := &Deck{
		Name:    f.Name,
		Sources: make(map[string][]string),
	}

	add := func(nodeType string, index int, c *cardEntry) {
		status := c.Status
		if status == "" {
			status = StatusPlayable
		}
		slot := Slot{
			SlotID:   MakeSlotID(nodeType, index),
			Name:     c.Name,
			OracleID: c.OracleID,
			Status:   status,
			NodeType: nodeType,
		}
		d.Slots = append(d.Slots, slot)
		d.Sources[slot.SlotID] = append([]string(nil), c.Primitives...)
	}

	if f.Commander != nil {
		add(NodeTypeCommander, 0, f.Commander)
	}
	for i := range f.Cards {
		add(NodeTypeDeck, i+1, &f.Cards[i])
	}

	for _, o := range f.Overrides {
		d.Overrides = append(d.Overrides, Override{
			OracleID: o.OracleID,
			Add:      append([]string(nil), o.Add...),
			Remove:   append([]string(nil), o.Remove...),
		})
	}

	return d
}
