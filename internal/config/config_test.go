package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"photoorg/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("PHOTOORG_SOURCE_DIR", "")
	t.Setenv("PHOTOORG_TARGET_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "photoorg")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !cfg.Organize.Overwrite {
		t.Fatal("expected overwrite enabled by default")
	}
	if cfg.Organize.UnprocessedDir != "Unprocessed" {
		t.Fatalf("unexpected unprocessed dir: %q", cfg.Organize.UnprocessedDir)
	}
	if cfg.Organize.SourceDir != "" || cfg.Organize.TargetDir != "" {
		t.Fatalf("expected empty default directories, got %q %q", cfg.Organize.SourceDir, cfg.Organize.TargetDir)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.StateDir)
	if err != nil {
		t.Fatalf("expected state dir to exist: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %q to be directory", cfg.Paths.StateDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "photoorg.toml")

	type payload struct {
		Organize struct {
			SourceDir string `toml:"source_dir"`
			TargetDir string `toml:"target_dir"`
			Overwrite bool   `toml:"overwrite"`
		} `toml:"organize"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Organize.SourceDir = filepath.Join(tempDir, "camera")
	custom.Organize.TargetDir = filepath.Join(tempDir, "library")
	custom.Organize.Overwrite = false
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Organize.Overwrite {
		t.Fatal("expected overwrite disabled from file")
	}
	if cfg.Organize.SourceDir != custom.Organize.SourceDir {
		t.Fatalf("unexpected source dir: %q", cfg.Organize.SourceDir)
	}
	if cfg.Organize.TargetDir != custom.Organize.TargetDir {
		t.Fatalf("unexpected target dir: %q", cfg.Organize.TargetDir)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging values, got %+v", cfg.Logging)
	}
}

func TestLoadUsesEnvDirectories(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base := t.TempDir()
	t.Setenv("PHOTOORG_SOURCE_DIR", filepath.Join(base, "in"))
	t.Setenv("PHOTOORG_TARGET_DIR", filepath.Join(base, "out"))

	cfg, _, _, err := config.Load(filepath.Join(base, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Organize.SourceDir != filepath.Join(base, "in") {
		t.Fatalf("expected source dir from env, got %q", cfg.Organize.SourceDir)
	}
	if cfg.Organize.TargetDir != filepath.Join(base, "out") {
		t.Fatalf("expected target dir from env, got %q", cfg.Organize.TargetDir)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "photoorg.toml")
	if err := os.WriteFile(configPath, []byte("[organize]\nrecursive = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "nested unprocessed dir",
			mutate: func(c *config.Config) { c.Organize.UnprocessedDir = "a/b" },
			want:   "single folder name",
		},
		{
			name:   "year-shaped unprocessed dir",
			mutate: func(c *config.Config) { c.Organize.UnprocessedDir = "2020" },
			want:   "collides with a year folder",
		},
		{
			name: "same source and target",
			mutate: func(c *config.Config) {
				c.Organize.SourceDir = "/photos"
				c.Organize.TargetDir = "/photos/"
			},
			want: "must differ",
		},
		{
			name:   "negative keep runs",
			mutate: func(c *config.Config) { c.History.KeepRuns = -1 },
			want:   "keep_runs",
		},
		{
			name:   "unknown log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
		{
			name:   "unknown log level",
			mutate: func(c *config.Config) { c.Logging.Level = "trace" },
			want:   "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Organize.UnprocessedDir != "Unprocessed" {
		t.Fatalf("unexpected unprocessed dir from sample: %q", cfg.Organize.UnprocessedDir)
	}
}
