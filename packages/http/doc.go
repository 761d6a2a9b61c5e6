// Package http fetches server-rendered pages for check files that name a
// url instead of a local page.
//
// It wraps the standard library client with timeouts, redirect limits,
// default headers, optional TLS verification bypass and a proxy, and reads
// the whole body so the caller can parse it as HTML.
package http
