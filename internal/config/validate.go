package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOrganize() error {
	name := c.Organize.UnprocessedDir
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("organize.unprocessed_dir must be a single folder name, got %q", name)
	}
	if isYearName(name) {
		return fmt.Errorf("organize.unprocessed_dir %q collides with a year folder", name)
	}
	src := c.Organize.SourceDir
	dst := c.Organize.TargetDir
	if src != "" && dst != "" && filepath.Clean(src) == filepath.Clean(dst) {
		return errors.New("organize.source_dir and organize.target_dir must differ")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.KeepRuns < 0 {
		return errors.New("history.keep_runs must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

func isYearName(name string) bool {
	if len(name) != 4 {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
