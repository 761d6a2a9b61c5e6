// Package config loads domspec project configuration.
//
// The configuration lives in .domspec.json, domspec.json, domspec.toml or
// .domspec.toml at the project root. It names the default environment, the
// per-environment variables available to check files, the reporters and
// the runner defaults. Command-line flags override it.
package config
