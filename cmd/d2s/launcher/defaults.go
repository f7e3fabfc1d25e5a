package launcher

// Defaults bundles the baseline values the launcher uses before the config
// file, the profile and the flags override them.
type Defaults struct {
	Logging   LoggingDefaults
	Save      SaveDefaults
	Reference ReferenceDefaults
}

// LoggingDefaults controls log verbosity and format.
type LoggingDefaults struct {
	Verbosity int    // 0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace
	Format    string // text or json
	Color     bool
}

// SaveDefaults controls how modified characters are written.
type SaveDefaults struct {
	Profile string // named profile from the integration package
	Strict  bool   // refuse files with a mismatched checksum
}

// ReferenceDefaults locates the reference tables.
type ReferenceDefaults struct {
	Path string // empty selects the built-in tables
}

// DefaultConfig returns a fully populated Defaults instance.
func DefaultConfig() Defaults {
	return Defaults{
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
		Save: SaveDefaults{
			Profile: "default",
		},
	}
}
