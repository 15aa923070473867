// Package config defines the application configuration structure and
// loading logic. Configuration is sourced from environment variables
// (BOARDGEN_ prefix) and an optional YAML config file, then validated
// before the application starts.
package config
