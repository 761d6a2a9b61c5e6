package expect

import (
	"sync"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/domassert"
)

var shared = sync.OnceValue(func() *chain.Registry {
	r := chain.NewRegistry()
	domassert.Register(r)
	return r
})

// Registry returns the registry Expect evaluates against.
func Registry() *chain.Registry {
	return shared()
}

// Assertion is a typed builder over a chain.Assertion.
type Assertion struct {
	chain *chain.Assertion
}

// Expect starts a chain over subject using the shared registry. Failures
// are reported through t and t may be nil.
func Expect(t chain.TestingT, subject any) *Assertion {
	return New(shared(), t, subject)
}

// New starts a chain over subject using r.
func New(r *chain.Registry, t chain.TestingT, subject any) *Assertion {
	return &Assertion{chain: r.Expect(t, subject)}
}

// Err returns the first failure of the chain.
func (a *Assertion) Err() error { return a.chain.Err() }

// Failed reports whether the chain has failed.
func (a *Assertion) Failed() bool { return a.chain.Failed() }

// Object returns the current subject.
func (a *Assertion) Object() any { return a.chain.Object() }

// Chain exposes the underlying chain for words the facade does not name.
func (a *Assertion) Chain() *chain.Assertion { return a.chain }

// Get evaluates any registered property by name.
func (a *Assertion) Get(name string) *Assertion {
	a.chain.Get(name)
	return a
}

// Call evaluates any registered method by name.
func (a *Assertion) Call(name string, args ...any) *Assertion {
	a.chain.Call(name, args...)
	return a
}

// chainable reads name as a property without args and calls it otherwise.
func (a *Assertion) chainable(name string, args []any) *Assertion {
	if len(args) == 0 {
		return a.Get(name)
	}
	return a.Call(name, args...)
}

// Language chains.

func (a *Assertion) To() *Assertion    { return a.Get("to") }
func (a *Assertion) Be() *Assertion    { return a.Get("be") }
func (a *Assertion) Been() *Assertion  { return a.Get("been") }
func (a *Assertion) Is() *Assertion    { return a.Get("is") }
func (a *Assertion) That() *Assertion  { return a.Get("that") }
func (a *Assertion) Which() *Assertion { return a.Get("which") }
func (a *Assertion) And() *Assertion   { return a.Get("and") }
func (a *Assertion) Has() *Assertion   { return a.Get("has") }
func (a *Assertion) Have() *Assertion  { return a.Get("have") }
func (a *Assertion) With() *Assertion  { return a.Get("with") }
func (a *Assertion) At() *Assertion    { return a.Get("at") }
func (a *Assertion) Of() *Assertion    { return a.Get("of") }
func (a *Assertion) Same() *Assertion  { return a.Get("same") }
func (a *Assertion) But() *Assertion   { return a.Get("but") }
func (a *Assertion) Does() *Assertion  { return a.Get("does") }
func (a *Assertion) Still() *Assertion { return a.Get("still") }
func (a *Assertion) Also() *Assertion  { return a.Get("also") }

// Flags.

func (a *Assertion) Not() *Assertion           { return a.Get("not") }
func (a *Assertion) Exact() *Assertion         { return a.Get("exact") }
func (a *Assertion) NotNormalized() *Assertion { return a.Get("notNormalized") }
func (a *Assertion) Display() *Assertion       { return a.Get("display") }
func (a *Assertion) Partially() *Assertion     { return a.Get("partially") }

// A asserts the subject's type name, or reads as a language chain without
// arguments.
func (a *Assertion) A(typeName ...any) *Assertion  { return a.chainable("a", typeName) }
func (a *Assertion) An(typeName ...any) *Assertion { return a.chainable("an", typeName) }

// In asserts the element sits inside container. Without arguments it sets
// the flag that Document reads.
func (a *Assertion) In(container ...any) *Assertion { return a.chainable("in", container) }

// HTML asserts the element contains markup.
func (a *Assertion) HTML(markup ...any) *Assertion { return a.chainable("html", markup) }

// Class asserts the element carries every given class. Without arguments
// the subject becomes the element's class tokens.
func (a *Assertion) Class(names ...any) *Assertion { return a.chainable("class", names) }

// AnyClass asserts the element has at least one class.
func (a *Assertion) AnyClass() *Assertion { return a.Call("class") }

func (a *Assertion) Include(v ...any) *Assertion  { return a.chainable("include", v) }
func (a *Assertion) Includes(v ...any) *Assertion { return a.chainable("includes", v) }
func (a *Assertion) Contain(v ...any) *Assertion  { return a.chainable("contain", v) }
func (a *Assertion) Contains(v ...any) *Assertion { return a.chainable("contains", v) }

func (a *Assertion) Members(v any) *Assertion { return a.Call("members", v) }
func (a *Assertion) Equal(v any) *Assertion   { return a.Call("equal", v) }
func (a *Assertion) Equals(v any) *Assertion  { return a.Call("equals", v) }
func (a *Assertion) Eq(v any) *Assertion      { return a.Call("eq", v) }

// Match accepts a *regexp.Regexp, a "/pattern/flags" string or a bare
// pattern.
func (a *Assertion) Match(pattern any) *Assertion   { return a.Call("match", pattern) }
func (a *Assertion) Matches(pattern any) *Assertion { return a.Call("matches", pattern) }
func (a *Assertion) LengthOf(n int) *Assertion      { return a.Call("lengthOf", n) }

func (a *Assertion) Empty() *Assertion { return a.Get("empty") }
func (a *Assertion) Exist() *Assertion { return a.Get("exist") }
func (a *Assertion) Ok() *Assertion    { return a.Get("ok") }
func (a *Assertion) True() *Assertion  { return a.Get("true") }
func (a *Assertion) False() *Assertion { return a.Get("false") }
func (a *Assertion) Null() *Assertion  { return a.Get("null") }

// DOM vocabulary.

func (a *Assertion) Element() *Assertion  { return a.Get("element") }
func (a *Assertion) Disabled() *Assertion { return a.Get("disabled") }
func (a *Assertion) Enabled() *Assertion  { return a.Get("enabled") }
func (a *Assertion) Document() *Assertion { return a.Get("document") }
func (a *Assertion) Invalid() *Assertion  { return a.Get("invalid") }
func (a *Assertion) Valid() *Assertion    { return a.Get("valid") }
func (a *Assertion) Required() *Assertion { return a.Get("required") }
func (a *Assertion) Visible() *Assertion  { return a.Get("visible") }
func (a *Assertion) Checked() *Assertion  { return a.Get("checked") }
func (a *Assertion) Focus() *Assertion    { return a.Get("focus") }
func (a *Assertion) Focused() *Assertion  { return a.Get("focused") }

// Description asserts an accessible description exists and makes it the
// subject.
func (a *Assertion) Description() *Assertion { return a.Get("description") }

// AccessibleName asserts an accessible name exists and makes it the
// subject.
func (a *Assertion) AccessibleName() *Assertion { return a.Get("accessibleName") }

// Attribute asserts the attribute is present and makes its value the
// subject.
func (a *Assertion) Attribute(name string) *Assertion { return a.Call("attribute", name) }

// FormValues takes a map[string]any or map[string]string keyed by control
// name.
func (a *Assertion) FormValues(values any) *Assertion { return a.Call("formValues", values) }

// Style takes CSS declaration text or a map of properties.
func (a *Assertion) Style(css any) *Assertion { return a.Call("style", css) }

func (a *Assertion) Text() *Assertion  { return a.Get("text") }
func (a *Assertion) Value() *Assertion { return a.Get("value") }

// ErrorMessage asserts the element is marked invalid for assistive
// technology and makes its aria-errormessage text the subject.
func (a *Assertion) ErrorMessage() *Assertion { return a.Get("error") }
