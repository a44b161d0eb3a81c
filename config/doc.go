// Package config loads the application configuration. Values come from a
// YAML file plus environment overrides; a .env file is honored when present.
package config
