// Package config loads, normalizes, and validates unmix configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs so output directories, model selection, and encoding settings are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical device names, and clear validation errors.
package config
