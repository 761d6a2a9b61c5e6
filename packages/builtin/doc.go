// Package builtin provides the functions check files can call inside
// {{ }} placeholders.
//
// Available functions:
//   - uuid(): a random UUID v4, handy for unique ids in generated markup
//   - now(): current time in RFC 3339
//   - date(layout): current UTC date, "2006-01-02" by default
//   - timestamp(): current Unix timestamp
//   - randomString(length): random alphanumeric string
//   - upper(s), lower(s), trim(s): case and whitespace helpers
//   - htmlEscape(s): escape markup special characters
//   - urlEncode(s), base64(s): encodings for attribute values
//   - env(name): an environment variable, empty when unset
package builtin
