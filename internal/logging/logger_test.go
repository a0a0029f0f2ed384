package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photoorg/internal/config"
	"photoorg/internal/logging"
	"photoorg/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	logger, _, err := logging.NewFromConfig(&cfg, &buf, "")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")
	logger.Info("info message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Fatalf("expected debug to be filtered at info level, got %q", out)
	}
	if !strings.Contains(out, "INFO info message") {
		t.Fatalf("expected info line, got %q", out)
	}
}

func TestNewFromConfigLevelOverride(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	logger, _, err := logging.NewFromConfig(&cfg, &buf, "debug")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "DEBUG debug message") {
		t.Fatalf("expected debug line with override, got %q", buf.String())
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerPromotesComponentAndFile(t *testing.T) {
	var buf bytes.Buffer
	base, _, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithSourceFile(ctx, "a.jpg")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "organizer"))
	logger.Info("file organized", logging.Int("year", 2020), logging.Error(errors.New("disk full")))

	line := buf.String()
	if !strings.Contains(line, "organizer: file organized [a.jpg]") {
		t.Fatalf("expected component and file prefix, got %q", line)
	}
	if strings.Contains(line, "run_id=") {
		t.Fatalf("expected run id hidden on console, got %q", line)
	}
	if !strings.Contains(line, "year=2020") {
		t.Fatalf("expected year attribute, got %q", line)
	}
	if !strings.Contains(line, `error="disk full"`) {
		t.Fatalf("expected quoted error attribute, got %q", line)
	}
}

func TestJSONLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-2")
	logging.WithContext(ctx, logger).Info("run completed", logging.Int("total", 3))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["msg"] != "run completed" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["run_id"] != "run-2" {
		t.Fatalf("expected run id, got %v", payload["run_id"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestLoggerTeesToFile(t *testing.T) {
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "logs", "photoorg.log")

	logger, closeLog, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &console, FilePath: logPath})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("debug detail")
	logger.Warn("warning")
	if err := closeLog(); err != nil {
		t.Fatalf("close log file: %v", err)
	}
	if err := closeLog(); err == nil {
		t.Fatal("expected second close to report the file as already closed")
	}

	if strings.Contains(console.String(), "debug detail") {
		t.Fatalf("console should filter debug, got %q", console.String())
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "debug detail") || !strings.Contains(string(data), "warning") {
		t.Fatalf("expected file to receive all records, got %q", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected no-op logger")
	}
	logger.Info("discarded")
}
