package ir

// Version constants for the analyzer and its persisted formats.
const (
	// SchemaVersion is the version of the suite, golden, and run log formats.
	SchemaVersion = "1"

	// Version is the literality release version.
	Version = "0.1.0"
)
