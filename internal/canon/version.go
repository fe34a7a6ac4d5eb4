package canon

// Version constants for the payload schema and the tool.
const (
	// SchemaVersion is the payload schema version. Bumping it invalidates
	// every recorded fingerprint, so it changes only with payload shape.
	SchemaVersion = "v1"

	// ToolVersion is the synergraph release version.
	ToolVersion = "0.1.0"
)
