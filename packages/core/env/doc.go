// Package env resolves {{ }} placeholders in check files.
//
// A placeholder names a variable from the active config environment or a
// .env file, a value captured by an earlier check ({{check.name}} or just
// {{name}}), an OS environment variable ({{$HOME}}), or a builtin function
// call ({{uuid()}}). Unresolved placeholders are left in place and reported
// through the resolver's warn hook.
package env
