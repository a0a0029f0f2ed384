// Package logging assembles the structured slog loggers used across photoorg.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so organizer code automatically
// tags log lines with the run ID, the run phase, and the file being processed.
// An optional JSON log file can be teed alongside the console output. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
