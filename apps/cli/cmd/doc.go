// Package cmd implements the domspec CLI commands using Cobra.
//
// Available commands:
//   - run: execute checks from domspec files
//   - validate: check file syntax and schema without executing
//   - list: display the checks defined in files
//   - coverage: report which assertion words the checks use
//   - history: show results recorded with run --history
//   - init: create a config file and an example check file
//   - version: show version information
//   - completion: shell completion scripts, from cobra
//
// The CLI supports flags for filtering, output formatting, parallel
// execution and a watch mode that re-runs checks when files change.
package cmd
