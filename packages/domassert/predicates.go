package domassert

import (
	"strings"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/dom"
	"github.com/abdul-hamid-achik/domspec/packages/matchers"
)

// asElement returns the subject when it is a non-nil element.
func asElement(v any) (*dom.Element, bool) {
	el, ok := v.(*dom.Element)
	return el, ok && el != nil
}

// requireElement fails the chain with a type mismatch unless the subject is
// an element.
func requireElement(a *chain.Assertion, check string) (*dom.Element, bool) {
	el, ok := asElement(a.Object())
	if !ok {
		a.Fail("expected #{this} to be an HTML or SVG element to check %s", check)
	}
	return el, ok
}

// report forwards a matcher result. Usage errors fail regardless of
// negation.
func report(a *chain.Assertion, r matchers.Result, msg, negMsg string, expected, actual any) {
	if r.Err != nil {
		a.Fail("%v", r.Err)
		return
	}
	a.Assert(r.Pass, msg, negMsg, expected, actual)
}

func (p *plugin) element(a *chain.Assertion) {
	el, ok := asElement(a.Object())
	a.Assert(ok && (el.IsHTML() || el.IsSVG()),
		"expected #{this} to be an HTML or SVG element",
		"expected #{this} not to be an HTML or SVG element",
		nil, nil)
}

func (p *plugin) disabled(a *chain.Assertion) {
	el, ok := requireElement(a, "disabled")
	if !ok {
		return
	}
	report(a, p.matchers.Disabled(el),
		"expected #{this} to be disabled",
		"expected #{this} not to be disabled",
		"[disabled=true]", "[disabled=false]")
}

func (p *plugin) enabled(a *chain.Assertion) {
	el, ok := requireElement(a, "enabled")
	if !ok {
		return
	}
	report(a, p.matchers.Enabled(el),
		"expected #{this} to be enabled",
		"expected #{this} not to be enabled",
		"[disabled=false]", "[disabled=true]")
}

func (p *plugin) empty(super chain.PropertyFunc) chain.PropertyFunc {
	return func(a *chain.Assertion) {
		el, ok := asElement(a.Object())
		if !ok {
			super(a)
			return
		}
		report(a, p.matchers.EmptyDOMElement(el),
			"expected #{this} to be empty",
			"expected #{this} not to be empty",
			nil, nil)
	}
}

func (p *plugin) in(a *chain.Assertion, args ...any) {
	el, ok := requireElement(a, "containment")
	if !ok {
		return
	}
	if len(args) != 1 {
		a.Fail("in expects one container, got %d arguments", len(args))
		return
	}
	container, ok := asElement(args[0])
	if !ok {
		a.Fail("in expects an element container, got %s", chain.Inspect(args[0]))
		return
	}
	a.Assert(container.Contains(el),
		"expected #{this} to be in #{exp}",
		"expected #{this} not to be in #{exp}",
		container, nil)
}

func (p *plugin) html(a *chain.Assertion, args ...any) {
	el, ok := requireElement(a, "HTML content")
	if !ok {
		return
	}
	markup, ok := singleString(args)
	if !ok {
		a.Fail("html expects one markup string")
		return
	}
	report(a, p.matchers.ContainsHTML(el, markup),
		"expected #{this} to contain HTML #{exp}",
		"expected #{this} not to contain HTML #{exp}",
		markup, el.OuterHTML())
}

func singleString(args []any) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}

// document tolerates a nil subject: it does not pass, so only the negated
// form succeeds.
func (p *plugin) document(a *chain.Assertion) {
	var el *dom.Element
	if !chain.IsNil(a.Object()) {
		var ok bool
		if el, ok = requireElement(a, "document membership"); !ok {
			return
		}
	}
	report(a, p.matchers.InTheDocument(el, a.Flags.Negate),
		"expected #{this} to be in the document",
		"expected #{this} not to be in the document",
		nil, nil)
}

func (p *plugin) invalid(a *chain.Assertion) {
	if el, ok := requireElement(a, "validity"); ok {
		report(a, p.matchers.Invalid(el), "expected #{this} to be invalid", "expected #{this} not to be invalid", nil, nil)
	}
}

func (p *plugin) valid(a *chain.Assertion) {
	if el, ok := requireElement(a, "validity"); ok {
		report(a, p.matchers.Valid(el), "expected #{this} to be valid", "expected #{this} not to be valid", nil, nil)
	}
}

func (p *plugin) required(a *chain.Assertion) {
	if el, ok := requireElement(a, "required"); ok {
		report(a, p.matchers.Required(el), "expected #{this} to be required", "expected #{this} not to be required", nil, nil)
	}
}

func (p *plugin) visible(a *chain.Assertion) {
	if el, ok := requireElement(a, "visibility"); ok {
		report(a, p.matchers.Visible(el), "expected #{this} to be visible", "expected #{this} not to be visible", nil, nil)
	}
}

func (p *plugin) checked(a *chain.Assertion) {
	el, ok := requireElement(a, "checkedness")
	if !ok {
		return
	}
	if a.Flags.Partially {
		report(a, p.matchers.PartiallyChecked(el),
			"expected #{this} to be partially checked",
			"expected #{this} not to be partially checked",
			nil, nil)
		return
	}
	report(a, p.matchers.Checked(el), "expected #{this} to be checked", "expected #{this} not to be checked", nil, nil)
}

// include checks element containment, or class tokens once the class
// property switched the subject.
func (p *plugin) include(super chain.MethodFunc) chain.MethodFunc {
	return func(a *chain.Assertion, args ...any) {
		if tokens, ok := classSubject(a); ok {
			expected, ok := classArgs(a, "include", args)
			if !ok {
				return
			}
			pass := SubsetOf(expected, tokens)
			if a.Flags.Exact {
				pass = SameMembers(expected, tokens)
			}
			a.Assert(pass,
				"expected #{this} to include classes #{exp}",
				"expected #{this} not to include classes #{exp}",
				expected, tokens)
			return
		}
		el, ok := asElement(a.Object())
		if !ok {
			super(a, args...)
			return
		}
		if len(args) != 1 {
			a.Fail("include expects one argument, got %d", len(args))
			return
		}
		child, ok := asElement(args[0])
		if !ok && !chain.IsNil(args[0]) {
			a.Fail("an element can only contain elements, got %s", chain.Inspect(args[0]))
			return
		}
		a.Assert(el.Contains(child),
			"expected #{this} to contain #{exp}",
			"expected #{this} not to contain #{exp}",
			child, nil)
	}
}

func (p *plugin) members(super chain.MethodFunc) chain.MethodFunc {
	return func(a *chain.Assertion, args ...any) {
		tokens, ok := classSubject(a)
		if !ok {
			super(a, args...)
			return
		}
		expected, ok := classArgs(a, "members", args)
		if !ok {
			return
		}
		if a.Flags.Contains {
			a.Assert(SubsetOf(expected, tokens),
				"expected #{this} to contain the classes #{exp}",
				"expected #{this} not to contain the classes #{exp}",
				expected, tokens)
			return
		}
		a.Assert(SameMembers(expected, tokens),
			"expected #{this} to have exactly the classes #{exp}",
			"expected #{this} not to have exactly the classes #{exp}",
			expected, tokens)
	}
}

func (p *plugin) equal(super chain.MethodFunc) chain.MethodFunc {
	return func(a *chain.Assertion, args ...any) {
		tokens, ok := classSubject(a)
		if !ok {
			super(a, args...)
			return
		}
		expected, ok := classArgs(a, "equal", args)
		if !ok {
			return
		}
		a.Assert(SameMembers(expected, tokens),
			"expected #{this} to equal the classes #{exp}",
			"expected #{this} not to equal the classes #{exp}",
			expected, tokens)
	}
}

func classSubject(a *chain.Assertion) ([]string, bool) {
	if !a.Flags.Class {
		return nil, false
	}
	tokens, ok := a.Object().([]string)
	return tokens, ok
}

func classArgs(a *chain.Assertion, word string, args []any) ([]string, bool) {
	if len(args) != 1 {
		a.Fail("%s expects one argument, got %d", word, len(args))
		return nil, false
	}
	tokens, ok := classTokens(args[0])
	if !ok {
		a.Fail("%s expects class names as a string or a list of strings, got %s", word, chain.Inspect(args[0]))
	}
	return tokens, ok
}

func (p *plugin) description(a *chain.Assertion) {
	el, ok := requireElement(a, "an accessible description")
	if !ok {
		return
	}
	desc := p.a11y.Description(el)
	a.Assert(desc != "",
		"expected #{this} to have an accessible description",
		"expected #{this} not to have an accessible description",
		nil, nil)
	a.SetObject(desc)
}

func (p *plugin) accessibleName(a *chain.Assertion) {
	el, ok := requireElement(a, "an accessible name")
	if !ok {
		return
	}
	name := p.a11y.Name(el)
	a.Assert(name != "",
		"expected #{this} to have an accessible name",
		"expected #{this} not to have an accessible name",
		nil, nil)
	a.SetObject(name)
}

func (p *plugin) attribute(super chain.MethodFunc) chain.MethodFunc {
	return func(a *chain.Assertion, args ...any) {
		el, ok := asElement(a.Object())
		if !ok {
			super(a, args...)
			return
		}
		name, ok := singleString(args)
		if !ok {
			a.Fail("attribute expects one attribute name")
			return
		}
		value, present := el.GetAttribute(name)
		a.Assert(present,
			"expected #{this} to have an attribute with name #{exp}",
			"expected #{this} not to have an attribute with name #{exp}",
			name, nil)
		if present {
			a.SetObject(value)
		} else {
			a.SetObject(nil)
		}
	}
}

// classProperty switches the subject to the element's class tokens for the
// collection words that follow. It asserts nothing itself.
func (p *plugin) classProperty(super chain.PropertyFunc) chain.PropertyFunc {
	return func(a *chain.Assertion) {
		el, ok := asElement(a.Object())
		if !ok {
			super(a)
			return
		}
		a.Flags.Class = true
		a.SetObject(SplitClassNames(el.ClassName()))
	}
}

func (p *plugin) classMethod(super chain.MethodFunc) chain.MethodFunc {
	return func(a *chain.Assertion, args ...any) {
		el, ok := asElement(a.Object())
		if !ok {
			super(a, args...)
			return
		}
		var classes []string
		for _, arg := range args {
			tokens, ok := classTokens(arg)
			if !ok {
				a.Fail("class expects class names, got %s", chain.Inspect(arg))
				return
			}
			classes = append(classes, tokens...)
		}
		report(a, p.matchers.HasClass(el, classes, a.Flags.Exact),
			"expected #{this} to have a class #{exp}",
			"expected #{this} not to have a class #{exp}",
			strings.Join(classes, " "), el.ClassName())
	}
}

func (p *plugin) focus(a *chain.Assertion) {
	el, ok := requireElement(a, "focus")
	if !ok {
		return
	}
	a.Assert(el.Document().ActiveElement().Is(el),
		"expected #{this} to have focus",
		"expected #{this} not to have focus",
		nil, nil)
}

func (p *plugin) formValues(super chain.MethodFunc) chain.MethodFunc {
	return func(a *chain.Assertion, args ...any) {
		el, ok := asElement(a.Object())
		if !ok || !(el.IsForm() || el.IsFieldset()) {
			a.Fail("expected #{this} to be either a form or fieldset element")
			return
		}
		if len(args) != 1 {
			a.Fail("formValues expects one map of values, got %d arguments", len(args))
			return
		}
		values, ok := toValueMap(args[0])
		if !ok {
			a.Fail("formValues expects a map of values, got %s", chain.Inspect(args[0]))
			return
		}
		report(a, p.matchers.HasFormValues(el, values),
			"expected #{this} to have form values: #{exp}",
			"expected #{this} not to have form values: #{exp}",
			values, nil)
	}
}

func toValueMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	}
	return nil, false
}

func (p *plugin) style(super chain.MethodFunc) chain.MethodFunc {
	return func(a *chain.Assertion, args ...any) {
		el, ok := requireElement(a, "style")
		if !ok {
			return
		}
		if len(args) != 1 {
			a.Fail("style expects CSS text or a property map, got %d arguments", len(args))
			return
		}
		report(a, p.matchers.HasStyle(el, args[0]),
			"expected #{this} to have style: #{exp}",
			"expected #{this} not to have style: #{exp}",
			args[0], el.Attribute("style"))
	}
}

func (p *plugin) text(a *chain.Assertion) {
	el, ok := requireElement(a, "text content")
	if !ok {
		return
	}
	text := el.TextContent()
	if a.Flags.NotNormalized {
		text = strings.ReplaceAll(text, "\u00a0", " ")
	} else {
		text = NormalizeWhitespace(text)
	}
	// An element always has text content, so only the positive form can
	// pass.
	a.Assert(true,
		"expected #{this} to have text content",
		"expected #{this} not to have text content",
		nil, nil)
	a.SetObject(text)
}

func (p *plugin) value(a *chain.Assertion) {
	el, ok := requireElement(a, "a value")
	if !ok {
		return
	}
	if el.TagName() == "input" && (el.Type() == "checkbox" || el.Type() == "radio") {
		a.Fail("#{this} is a %s input; check it with checked instead of value", el.Type())
		return
	}
	var v any
	if a.Flags.Display {
		v = DisplayedValues(el)
	} else {
		v = SingleElementValue(el)
	}
	a.Assert(chain.Truthy(v),
		"expected #{this} to have a value",
		"expected #{this} not to have a value",
		nil, nil)
	a.SetObject(v)
}

// ariaError passes when aria-invalid is set to anything but "false". The
// subject becomes the text of the elements named by aria-errormessage.
func (p *plugin) ariaError(a *chain.Assertion) {
	el, ok := requireElement(a, "an error message")
	if !ok {
		return
	}
	v, present := el.GetAttribute("aria-invalid")
	a.Assert(present && v != "false",
		"expected #{this} to have an error",
		"expected #{this} not to have an error",
		nil, nil)

	var parts []string
	for _, id := range strings.Fields(el.Attribute("aria-errormessage")) {
		if ref := el.Document().GetElementByID(id); ref != nil {
			parts = append(parts, NormalizeWhitespace(ref.TextContent()))
		}
	}
	a.SetObject(strings.Join(parts, " "))
}
