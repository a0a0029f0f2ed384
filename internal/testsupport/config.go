package testsupport

import (
	"path/filepath"
	"testing"

	"photoorg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp state directory per
// test. History is disabled unless WithHistory is passed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.History.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithHistory enables run history recording.
func WithHistory() ConfigOption {
	return func(c *config.Config) {
		c.History.Enabled = true
	}
}

// WithOverwrite sets the default overwrite policy.
func WithOverwrite(overwrite bool) ConfigOption {
	return func(c *config.Config) {
		c.Organize.Overwrite = overwrite
	}
}
