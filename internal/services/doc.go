// Package services defines shared utilities consumed by the organizer, the
// metadata resolver, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, phase names, and the file being
//     processed for logging.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (malformed metadata, I/O, collisions, setup) with errors.Is.
//
// Use these helpers when wiring new logic so error handling and observability
// stay uniform across the tool.
package services
