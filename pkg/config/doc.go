// Package config defines the engine's YAML configuration surface.
//
// Configuration is loaded from a single YAML file, then overlaid with
// ELEU_* environment variables, then validated. Every field has a default
// so an empty file yields a runnable single-node setup with in-memory
// storage and a SQLite audit trail.
package config
