package domassert

import (
	"github.com/abdul-hamid-achik/domspec/packages/a11y"
	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/dom"
	"github.com/abdul-hamid-achik/domspec/packages/matchers"
)

// Matchers evaluates the DOM predicates the assertions delegate to.
// *matchers.Library implements it.
type Matchers interface {
	Disabled(el *dom.Element) matchers.Result
	Enabled(el *dom.Element) matchers.Result
	EmptyDOMElement(el *dom.Element) matchers.Result
	InTheDocument(el *dom.Element, negated bool) matchers.Result
	Invalid(el *dom.Element) matchers.Result
	Valid(el *dom.Element) matchers.Result
	Required(el *dom.Element) matchers.Result
	Visible(el *dom.Element) matchers.Result
	Checked(el *dom.Element) matchers.Result
	PartiallyChecked(el *dom.Element) matchers.Result
	ContainsHTML(el *dom.Element, markup string) matchers.Result
	HasClass(el *dom.Element, classes []string, exact bool) matchers.Result
	HasFormValues(el *dom.Element, values map[string]any) matchers.Result
	HasStyle(el *dom.Element, css any) matchers.Result
}

// Accessibility computes accessible names and descriptions. *a11y.Computer
// implements it.
type Accessibility interface {
	Name(el *dom.Element) string
	Description(el *dom.Element) string
}

// Option configures Register.
type Option func(*plugin)

// WithMatchers replaces the default matcher library.
func WithMatchers(m Matchers) Option {
	return func(p *plugin) {
		p.matchers = m
	}
}

// WithAccessibility replaces the default accessible name computation.
func WithAccessibility(acc Accessibility) Option {
	return func(p *plugin) {
		p.a11y = acc
	}
}

type plugin struct {
	matchers Matchers
	a11y     Accessibility
}

// Register attaches the DOM vocabulary to r. Words r already defines
// (empty, include and its aliases, members, equal and its aliases,
// attribute) are wrapped: element subjects, or class tokens for the
// collection words, take the DOM path and every other subject reaches the
// previous definition.
func Register(r *chain.Registry, opts ...Option) {
	p := &plugin{
		matchers: matchers.New(),
		a11y:     a11y.New(),
	}
	for _, opt := range opts {
		opt(p)
	}

	r.AddProperty("element", p.element)
	r.AddProperty("disabled", p.disabled)
	r.AddProperty("enabled", p.enabled)
	r.OverwriteProperty("empty", p.empty)
	r.AddChainableMethod("in", p.in, setFlag(func(f *chain.Flags) { f.In = true }))
	r.AddChainableMethod("html", p.html, setFlag(func(f *chain.Flags) { f.HTML = true }))
	r.AddProperty("document", p.document)
	r.AddProperty("invalid", p.invalid)
	r.AddProperty("valid", p.valid)
	r.AddProperty("required", p.required)
	r.AddProperty("visible", p.visible)
	r.AddProperty("checked", p.checked)

	for _, word := range []string{"include", "includes", "contain", "contains"} {
		r.OverwriteChainableMethod(word, p.include, passThrough)
	}
	r.OverwriteMethod("members", p.members)
	for _, word := range []string{"equal", "equals", "eq"} {
		r.OverwriteMethod(word, p.equal)
	}

	r.AddProperty("description", p.description)
	r.AddProperty("accessibleName", p.accessibleName)
	r.OverwriteMethod("attribute", p.attribute)
	r.OverwriteChainableMethod("class", p.classMethod, p.classProperty)
	r.AddProperty("focus", p.focus)
	r.AddProperty("focused", p.focus)
	r.OverwriteMethod("formValues", p.formValues)
	r.OverwriteMethod("style", p.style)
	r.AddProperty("text", p.text)
	r.AddProperty("value", p.value)
	r.AddProperty("error", p.ariaError)

	r.AddProperty("exact", setFlag(func(f *chain.Flags) { f.Exact = true }))
	r.AddProperty("notNormalized", setFlag(func(f *chain.Flags) { f.NotNormalized = true }))
	r.AddProperty("display", setFlag(func(f *chain.Flags) { f.Display = true }))
	r.AddProperty("partially", setFlag(func(f *chain.Flags) { f.Partially = true }))
}

func setFlag(set func(*chain.Flags)) chain.PropertyFunc {
	return func(a *chain.Assertion) {
		set(&a.Flags)
	}
}

func passThrough(super chain.PropertyFunc) chain.PropertyFunc {
	return super
}
