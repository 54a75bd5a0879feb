// Package config loads, normalizes, and validates basintab configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates the product/variable wiring
// before any table is touched. The Config type centralizes every knob the CLI
// needs: table and log directories, the external engine command, and one
// product block per raster product with its variables.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, compiled-checked scene patterns, and clear validation
// errors.
package config
