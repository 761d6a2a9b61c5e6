// Package domassert extends a chain.Registry with assertions about DOM
// elements: state (disabled, visible, checked, valid), accessibility
// metadata (accessible name and description, aria error messages), classes,
// attributes, focus, form values, inline style, text and control values.
//
//	reg := chain.NewRegistry()
//	domassert.Register(reg)
//	reg.Expect(t, button).Chain("to.have.class.that.contains").Call("members", []string{"btn"})
//
// The state and content checks delegate to a Matchers implementation and
// the accessibility checks to an Accessibility implementation; both can be
// replaced with WithMatchers and WithAccessibility.
package domassert
