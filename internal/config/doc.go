// Package config loads, normalizes, and validates loom configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the CLI and the
// generation pipeline need: checkpoint and output locations, the conditioning
// dataset manifest, and the run-wide sampling parameters.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
