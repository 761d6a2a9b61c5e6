// Package expect offers typed, compile-checked access to the DOM assertion
// vocabulary.
//
// Each word of the chain is a method. Words that chai-style chains use both
// as a property and as a call (A, An, In, HTML, Class, Contain and friends)
// take variadic arguments: called without arguments they read as the
// property, with arguments as the method.
//
//	expect.Expect(t, button).To().Have().Class().That().Contains("btn-danger")
//	expect.Expect(t, input).Not().To().Be().Disabled()
//	expect.Expect(t, el).To().Be().In().Document()
//
// Every builder shares one registry with the domassert vocabulary
// registered. Use New to evaluate against a registry of your own.
package expect
