// Package config loads and validates Sensory Core configuration.
//
// Configuration is layered: hardcoded defaults, then a YAML file, then
// SENSORY_* environment variable overrides. Validation runs last, so a
// config that defaults fine can still be broken by a bad override.
package config
