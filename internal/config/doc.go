// Package config loads, normalizes, and validates photoorg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PHOTOORG_TARGET_DIR. The Config type centralizes every knob the CLI and the
// organizer need so source/target directories, overwrite policy, and the state
// directory are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
