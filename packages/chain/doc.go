// Package chain is a small fluent assertion library built around named
// properties and methods.
//
// A Registry maps vocabulary words to handlers. An Assertion walks a chain of
// those words over one subject:
//
//	reg := chain.NewRegistry()
//	reg.Expect(t, "Text Content").Get("to").Get("have").Call("lengthOf", 12)
//
// Handlers read and update the assertion's subject and Flags, then report an
// outcome with Assert. Plugins extend a registry with AddProperty,
// AddMethod and AddChainableMethod, and wrap existing words with the
// Overwrite variants, which hand the previous handler to the wrapper.
//
// A failed chain stops evaluating: every later link is a no-op and Err
// returns the first failure. When the assertion was created with a TestingT
// the failure is also reported through Errorf.
package chain
