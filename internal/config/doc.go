// Package config loads, normalizes, and validates daapshare configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DAAPSHARE_SHARE_NAME. The Config type centralizes every knob the daemon and
// CLI need so the library database, log directory, and server bind address
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
