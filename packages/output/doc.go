// Package output provides formatters for check results.
//
// Supported output formats:
//   - Console: human-readable colored terminal output
//   - JSON: machine-readable JSON output
//   - JUnit: JUnit XML format for CI integration
//   - TAP: Test Anything Protocol format
//   - HTML: a standalone report page
//
// Every formatter accepts one runner.RunResult per file through
// FormatResult. JSON, JUnit, TAP and HTML accumulate results and write
// them on Flush.
package output
