// Package parser reads domspec check files.
//
// A check file is YAML. It names the page under test (a file next to the
// check file, a URL, or inline markup) and a list of checks:
//
//	name: Login page
//	page: login.html
//	variables:
//	  user: jane
//	checks:
//	  - name: submit starts disabled
//	    tags: [smoke]
//	    target: {testid: submit}
//	    expect:
//	      - to.be.disabled
//	      - and.to.have.attribute: type
//	      - that.equals: submit
//
// An expect step is either a dotted property path or a single-key map whose
// key is a dotted path ending in a method and whose value is the argument.
// A null value calls the method with no arguments and {args: [...]} passes
// several. Actions (focus, blur, click, set-attribute, remove-attribute,
// set-value, set-indeterminate) run against the target before the
// expectations.
//
// A file may also poll a dev server before fetching its url (waitFor) and
// run shell commands before and after its checks (before, after).
//
// Files are checked against an embedded JSON schema before decoding.
package parser
