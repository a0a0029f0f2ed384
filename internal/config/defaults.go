package config

const (
	defaultConfigPath       = "~/.config/photoorg/config.toml"
	defaultStateDirFallback = "~/.local/state/photoorg"
	defaultUnprocessedDir   = "Unprocessed"
	defaultOverwrite        = true
	defaultHistoryEnabled   = true
	defaultHistoryKeepRuns  = 50
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Organize: Organize{
			Overwrite:      defaultOverwrite,
			UnprocessedDir: defaultUnprocessedDir,
		},
		History: History{
			Enabled:  defaultHistoryEnabled,
			KeepRuns: defaultHistoryKeepRuns,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
