package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeOrganize(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganize() error {
	if strings.TrimSpace(c.Organize.SourceDir) == "" {
		if value, ok := os.LookupEnv("PHOTOORG_SOURCE_DIR"); ok {
			c.Organize.SourceDir = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Organize.TargetDir) == "" {
		if value, ok := os.LookupEnv("PHOTOORG_TARGET_DIR"); ok {
			c.Organize.TargetDir = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Organize.SourceDir, err = expandPath(strings.TrimSpace(c.Organize.SourceDir)); err != nil {
		return fmt.Errorf("organize.source_dir: %w", err)
	}
	if c.Organize.TargetDir, err = expandPath(strings.TrimSpace(c.Organize.TargetDir)); err != nil {
		return fmt.Errorf("organize.target_dir: %w", err)
	}
	c.Organize.UnprocessedDir = strings.TrimSpace(c.Organize.UnprocessedDir)
	if c.Organize.UnprocessedDir == "" {
		c.Organize.UnprocessedDir = defaultUnprocessedDir
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
