package ir

// Version constants for IR schema and transpiler.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// TranspilerVersion is the Ferrule core version.
	TranspilerVersion = "0.1.0"
)
