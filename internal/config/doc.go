// Package config loads, validates, and normalizes lookout's TOML
// configuration.
//
// Configuration resolves from an explicit --config path, then
// ~/.config/lookout/config.toml, then ./lookout.toml, falling back to
// compiled defaults. All path fields are tilde-expanded and made absolute
// during load so downstream code never deals with relative paths.
package config
