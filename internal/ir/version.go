package ir

// Version constants for stored records and the engine.
const (
	// SchemaVersion is the version of the persisted run record layout.
	SchemaVersion = "1"

	// EngineVersion is the tollsim engine version. Bump when the tick
	// semantics change, since stored runs replay only against the same rules.
	EngineVersion = "0.1.0"
)
