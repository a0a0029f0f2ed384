// Package main hosts the photoorg CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, builds the structured
// logger, and hands organize runs to the internal organizer package. Around
// each run it takes the per-target lock, runs preflight checks, renders
// progress and a summary, and records the run in the history database.
//
// Keep this package lean: behaviour belongs in the internal packages, and
// commands here only translate flags and present results.
package main
