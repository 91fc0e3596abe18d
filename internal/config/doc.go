// Package config provides configuration loading and validation for the
// audiobook pipeline. It handles YAML-based configuration with per-section
// validation, sensible defaults for every stage, and the speaker catalogue
// mapping voice names to engine voice identifiers.
package config
