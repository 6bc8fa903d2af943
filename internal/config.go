package config

// Config represents user settings stored on disk.
type Config struct {
	// GeneratorCommand and GeneratorArgs describe the external code
	// generator invoked by `sharpmerge generate`.
	GeneratorCommand string   `json:"generator_command,omitempty"`
	GeneratorArgs    []string `json:"generator_args,omitempty"`

	// Include/Exclude override the scaffold walker's default globs.
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`

	// KeepBackups retains .backup files after a successful merge so a later
	// rollback can still restore them. Defaults to true.
	KeepBackups *bool `json:"keep_backups,omitempty"`

	// BatchDecision is the default policy for --batch runs:
	// "accept-all" or "skip-conflicts".
	BatchDecision string `json:"batch_decision,omitempty"`
}

// ShouldKeepBackups resolves the KeepBackups default.
func (c Config) ShouldKeepBackups() bool {
	return c.KeepBackups == nil || *c.KeepBackups
}
