// Package config loads, normalizes, and validates ytscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HF_TOKEN. The Config type centralizes every knob the pipeline steps need so
// the CLI can merge flags on top of one resolved value.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical audio formats, and clear validation errors.
package config
