// Package config loads renmod configuration: built-in TOML defaults
// (embedded at build time) optionally overridden by a renmod.toml or
// .renmod.toml file in the working root.
package config
