// Package runner executes domspec check files.
//
// For each file it loads the environment and the page, then runs every
// selected check against a freshly parsed copy of the page: it resolves
// the target, applies the actions and walks the expectation chain through
// a chain registry with the domassert vocabulary registered.
//
// It provides:
//   - only/skip markers and name and tag filters
//   - dependency ordering with a topological sort
//   - parallel execution of independent checks
//   - captures that later checks reference as {{name}}
//   - waitFor polling and before/after shell hooks
//   - markup snapshots of the target element
package runner
