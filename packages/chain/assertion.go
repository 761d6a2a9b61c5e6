package chain

import (
	"fmt"
	"strings"
)

// TestingT is the subset of *testing.T used to report failures.
type TestingT interface {
	Errorf(format string, args ...any)
}

type tHelper interface {
	Helper()
}

// Flags is the per-chain state consulted by later links.
type Flags struct {
	Negate        bool
	Exact         bool
	Partially     bool
	NotNormalized bool
	Display       bool
	// Class is set once the subject was replaced by the element's class
	// tokens.
	Class    bool
	In       bool
	HTML     bool
	Contains bool
}

// Assertion is one chain of words evaluated against a subject.
type Assertion struct {
	Flags Flags

	registry *Registry
	t        TestingT
	object   any
	err      *AssertionError
}

// Expect starts a chain over subject. t may be nil, in which case failures
// are only available through Err.
func (r *Registry) Expect(t TestingT, subject any) *Assertion {
	return &Assertion{registry: r, t: t, object: subject}
}

// Object returns the current subject.
func (a *Assertion) Object() any {
	return a.object
}

// SetObject replaces the subject for the following links.
func (a *Assertion) SetObject(v any) {
	a.object = v
}

// Registry returns the registry the chain resolves words against.
func (a *Assertion) Registry() *Registry {
	return a.registry
}

// Err returns the first failure of the chain, or nil.
func (a *Assertion) Err() error {
	if a.err == nil {
		return nil
	}
	return a.err
}

// Failed reports whether the chain has failed.
func (a *Assertion) Failed() bool {
	return a.err != nil
}

// Assert records a failure when ok disagrees with the negate flag. Messages
// may reference #{this} (the subject), #{exp} and #{act}. expected and actual
// are shown with the failure when either is non-nil.
func (a *Assertion) Assert(ok bool, msg, negMsg string, expected, actual any) {
	if a.err != nil || ok != a.Flags.Negate {
		return
	}
	if a.Flags.Negate {
		msg = negMsg
	}
	a.record(&AssertionError{
		Kind:      KindMismatch,
		Message:   a.render(msg, expected, actual),
		Expected:  expected,
		Actual:    actual,
		HasValues: expected != nil || actual != nil,
	})
}

// Fail records a type-mismatch failure regardless of negation. The message
// is a format string and may also reference #{this}.
func (a *Assertion) Fail(format string, args ...any) {
	if a.err != nil {
		return
	}
	a.record(&AssertionError{
		Kind:    KindTypeMismatch,
		Message: a.render(fmt.Sprintf(format, args...), nil, nil),
	})
}

func (a *Assertion) record(err *AssertionError) {
	a.err = err
	if a.t == nil {
		return
	}
	if h, ok := a.t.(tHelper); ok {
		h.Helper()
	}
	a.t.Errorf("%s", err.Error())
}

func (a *Assertion) render(msg string, expected, actual any) string {
	return strings.NewReplacer(
		"#{this}", Inspect(a.object),
		"#{exp}", Inspect(expected),
		"#{act}", Inspect(actual),
	).Replace(msg)
}

// Get evaluates a property. Chainable methods read as properties run their
// chaining behaviour.
func (a *Assertion) Get(name string) *Assertion {
	if a.err != nil {
		return a
	}
	e, ok := a.registry.lookup(name)
	switch {
	case !ok:
		a.Fail("unknown assertion %q", name)
	case e.property != nil:
		e.property(a)
	default:
		a.Fail("%q is a method and takes arguments", name)
	}
	return a
}

// Call evaluates a method with args. Chainable methods run only their
// method behaviour.
func (a *Assertion) Call(name string, args ...any) *Assertion {
	if a.err != nil {
		return a
	}
	e, ok := a.registry.lookup(name)
	switch {
	case !ok:
		a.Fail("unknown assertion %q", name)
	case e.method != nil:
		e.method(a, args...)
	default:
		a.Fail("%q is a property and takes no arguments", name)
	}
	return a
}

// Chain evaluates a dotted sequence of properties such as "to.be.visible".
func (a *Assertion) Chain(path string) *Assertion {
	for _, name := range strings.Split(path, ".") {
		if name = strings.TrimSpace(name); name != "" {
			a.Get(name)
		}
	}
	return a
}
