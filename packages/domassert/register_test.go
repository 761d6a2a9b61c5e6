package domassert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/dom"
	"github.com/abdul-hamid-achik/domspec/packages/matchers"
)

func newRegistry(opts ...Option) *chain.Registry {
	r := chain.NewRegistry()
	Register(r, opts...)
	return r
}

func mount(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc := dom.NewDocument()
	div := doc.CreateElement("div")
	require.NoError(t, div.SetInnerHTML(markup))
	doc.Body().AppendChild(div)
	return doc
}

// passes evaluates path against subject and requires success.
func passes(t *testing.T, r *chain.Registry, subject any, path string, call ...any) {
	t.Helper()
	a := r.Expect(nil, subject).Chain(path)
	if len(call) > 0 {
		a.Call(call[0].(string), call[1:]...)
	}
	assert.NoError(t, a.Err(), path)
}

func fails(t *testing.T, r *chain.Registry, subject any, path string, call ...any) error {
	t.Helper()
	a := r.Expect(nil, subject).Chain(path)
	if len(call) > 0 {
		a.Call(call[0].(string), call[1:]...)
	}
	assert.Error(t, a.Err(), path)
	return a.Err()
}

func TestElement(t *testing.T) {
	r := newRegistry()
	doc := dom.NewDocument()

	passes(t, r, doc.CreateElement("svg"), "to.be.an.element")
	passes(t, r, doc.CreateElementNS("http://www.w3.org/2000/svg", "svg"), "to.be.an.element")
	passes(t, r, "div", "to.not.be.an.element")
	fails(t, r, 42, "to.be.an.element")
}

func TestDisabledEnabled(t *testing.T) {
	r := newRegistry()
	doc := dom.NewDocument()
	enabled := doc.CreateElement("textarea")
	disabled := doc.CreateElement("input")
	disabled.SetAttribute("disabled", "")

	passes(t, r, disabled, "to.be.disabled")
	passes(t, r, disabled, "to.not.be.enabled")
	passes(t, r, enabled, "to.not.be.disabled")
	passes(t, r, enabled, "to.be.enabled")

	var ae *chain.AssertionError
	err := fails(t, r, enabled, "to.be.disabled")
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "[disabled=true]", ae.Expected)
	assert.Equal(t, "[disabled=false]", ae.Actual)
	assert.Contains(t, ae.Message, "expected <textarea> to be disabled")
}

func TestTypeMismatchIgnoresNegation(t *testing.T) {
	r := newRegistry()
	for _, path := range []string{"to.be.disabled", "to.not.be.visible", "to.not.have.focus", "to.not.have.text", "to.not.have.value", "to.not.have.description", "to.not.have.accessibleName"} {
		t.Run(path, func(t *testing.T) {
			err := fails(t, r, "not an element", path)
			assert.True(t, errors.Is(err, chain.ErrTypeMismatch))
		})
	}

	err := fails(t, r, "x", "to.not.have", "style", "display: none")
	assert.True(t, errors.Is(err, chain.ErrTypeMismatch))
}

func TestEmpty(t *testing.T) {
	r := newRegistry()
	doc := dom.NewDocument()
	div := doc.CreateElement("div")

	passes(t, r, div, "to.be.empty")
	div.AppendChild(doc.CreateElement("span"))
	passes(t, r, div, "to.not.be.empty")

	passes(t, r, "", "to.be.empty")
	passes(t, r, []int{1}, "to.not.be.empty")
}

func TestInContainerAndDocument(t *testing.T) {
	r := newRegistry()
	doc := dom.NewDocument()
	element := doc.CreateElement("span")
	container := doc.CreateElement("hi")

	passes(t, r, element, "not.to.be", "in", container)
	container.AppendChild(element)
	passes(t, r, element, "to.be", "in", container)

	passes(t, r, nil, "to.not.be.in.document")
	fails(t, r, nil, "to.be.in.document")
	passes(t, r, element, "to.not.be.in.document")
	doc.Body().AppendChild(container)
	passes(t, r, element, "to.be.in.document")

	a := r.Expect(nil, element).Get("in")
	assert.True(t, a.Flags.In)
}

func TestInvalidValid(t *testing.T) {
	r := newRegistry()
	input := dom.NewDocument().CreateElement("input")

	passes(t, r, input, "to.not.be.invalid")
	passes(t, r, input, "to.be.valid")

	input.SetAttribute("required", "")
	passes(t, r, input, "to.be.invalid")
	passes(t, r, input, "to.not.be.valid")
	fails(t, r, input, "to.be.valid")

	input.RemoveAttribute("required")
	input.SetAttribute("aria-invalid", "true")
	passes(t, r, input, "to.be.invalid")
	passes(t, r, input, "to.not.be.valid")
}

func TestRequired(t *testing.T) {
	r := newRegistry()
	input := dom.NewDocument().CreateElement("input")

	passes(t, r, input, "to.not.be.required")
	input.SetAttribute("required", "")
	passes(t, r, input, "to.be.required")
	input.RemoveAttribute("required")
	input.SetAttribute("aria-required", "true")
	passes(t, r, input, "to.be.required")
}

func TestVisible(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `
<div data-testid="zero-opacity" style="opacity: 0">Zero Opacity Example</div>
<div style="opacity: 0"><span>Hidden Parent Example</span></div>
<div>Visible Example</div>`)

	passes(t, r, doc.QueryByText("Zero Opacity Example"), "not.to.be.visible")
	passes(t, r, doc.QueryByText("Hidden Parent Example"), "not.to.be.visible")
	passes(t, r, doc.QueryByText("Visible Example"), "to.be.visible")
}

func TestChecked(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `
<input type="checkbox" checked data-testid="on">
<input type="checkbox" aria-checked="mixed" data-testid="mixed">
<div data-testid="div"></div>`)

	passes(t, r, doc.QueryByTestID("on"), "to.be.checked")
	passes(t, r, doc.QueryByTestID("mixed"), "to.not.be.checked")
	passes(t, r, doc.QueryByTestID("mixed"), "to.be.partially.checked")
	passes(t, r, doc.QueryByTestID("on"), "to.not.be.partially.checked")

	err := fails(t, r, doc.QueryByTestID("div"), "to.not.be.checked")
	assert.True(t, errors.Is(err, chain.ErrTypeMismatch), "matcher usage errors ignore negation")
}

func TestContainsElement(t *testing.T) {
	r := newRegistry()
	doc := dom.NewDocument()
	div := doc.CreateElement("div")
	child := doc.CreateElement("div")
	div.AppendChild(child)
	outside := doc.CreateElement("div")

	passes(t, r, div, "to", "contain", child)
	passes(t, r, div, "to.not", "contain", outside)
	passes(t, r, div, "to", "includes", child)
	passes(t, r, "string subject", "to", "contains", "subject")
	passes(t, r, []string{"a"}, "to", "include", "a")
}

func TestContainsHTML(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `<span data-testid="parent"><span data-testid="child"></span></span>`)
	parent := doc.QueryByTestID("parent")

	passes(t, r, parent, "to.contain", "html", `<span data-testid="child"></span>`)
	passes(t, r, parent, "to.contain", "html", `<span data-testid="child" />`)
	passes(t, r, parent, "not.to.contain", "html", `<br />`)

	a := r.Expect(nil, parent).Get("html")
	assert.True(t, a.Flags.HTML)
}

func TestAccessibleDescription(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `
<a data-testid="link" href="/" aria-label="Home page" title="A link to start over">Start</a>
<a data-testid="extra-link" href="/about" aria-label="About page">About</a>
<img src="avatar.jpg" data-testid="avatar" alt="User profile pic" />
<img src="logo.jpg" data-testid="logo" alt="Company logo" aria-describedby="t1" />
<span id="t1" role="presentation">The logo of Our Company</span>`)

	link := doc.QueryByTestID("link")
	logo := doc.QueryByTestID("logo")

	passes(t, r, link, "to.have.a.description")
	passes(t, r, link, "to.have.a.description.that", "equals", "A link to start over")
	passes(t, r, link, "to.have.a.description.that.does.not", "equal", "Home page")
	passes(t, r, doc.QueryByTestID("extra-link"), "not.to.have.a.description")
	passes(t, r, doc.QueryByTestID("avatar"), "not.to.have.a.description")
	passes(t, r, logo, "to.have.a.description.that.does.not", "equal", "Compay logo")
	passes(t, r, logo, "to.have.a.description.that", "equals", "The logo of Our Company")
	passes(t, r, logo, "to.have.a.description.that", "contains", "Our Company")
}

func TestAccessibleName(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `
<img data-testid="img-alt" src="" alt="Test alt" />
<img data-testid="img-empty-alt" src="" alt="" />
<svg data-testid="svg-title"><title>Test title</title></svg>
<button data-testid="button-img-alt"><img src="" alt="Test" /></button>
<input data-testid="input-title" title="test" />`)

	passes(t, r, doc.QueryByTestID("img-alt"), "to.have.an.accessibleName.that", "equals", "Test alt")
	passes(t, r, doc.QueryByTestID("img-empty-alt"), "not.to.have.an.accessibleName")
	passes(t, r, doc.QueryByTestID("svg-title"), "to.have.an.accessibleName.that", "equals", "Test title")
	passes(t, r, doc.QueryByTestID("button-img-alt"), "to.have.an.accessibleName")
	passes(t, r, doc.QueryByTestID("input-title"), "to.have.an.accessibleName")
}

type stubAccessibility struct{ name string }

func (s stubAccessibility) Name(*dom.Element) string        { return s.name }
func (s stubAccessibility) Description(*dom.Element) string { return "" }

func TestWithAccessibility(t *testing.T) {
	r := newRegistry(WithAccessibility(stubAccessibility{name: "stubbed"}))
	el := dom.NewDocument().CreateElement("div")

	passes(t, r, el, "to.have.an.accessibleName.that", "equals", "stubbed")
	passes(t, r, el, "not.to.have.a.description")
}

type countingMatchers struct {
	*matchers.Library
	visible int
}

func (c *countingMatchers) Visible(el *dom.Element) matchers.Result {
	c.visible++
	return matchers.Result{Pass: true}
}

func TestWithMatchers(t *testing.T) {
	m := &countingMatchers{Library: matchers.New()}
	r := newRegistry(WithMatchers(m))

	passes(t, r, dom.NewDocument().CreateElement("div"), "to.be.visible")
	assert.Equal(t, 1, m.visible)
}

func TestAttribute(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `<button data-testid="ok-button" type="submit" disabled>ok</button>`)
	button := doc.QueryByTestID("ok-button")

	passes(t, r, button, "to.have", "attribute", "disabled")
	passes(t, r, button, "to.not.have", "attribute", "title")

	for _, name := range []string{"type", "disabled", "data-testid", "title"} {
		a := r.Expect(nil, button).Call("attribute", name)
		value, present := button.GetAttribute(name)
		assert.Equal(t, present, a.Err() == nil, name)
		if present {
			assert.Equal(t, value, a.Object(), name)
		} else {
			assert.Nil(t, a.Object(), name)
		}
	}

	assert.NoError(t, r.Expect(nil, button).Call("attribute", "type").Get("that").Call("equals", "submit").Err())
	assert.NoError(t, r.Expect(nil, button).Call("attribute", "type").Chain("that.does.not").Call("equal", "button").Err())
	assert.NoError(t, r.Expect(nil, button).Call("attribute", "type").Get("that").Call("contains", "sub").Err())
	assert.NoError(t, r.Expect(nil, button).Call("attribute", "type").Chain("that.does.not").Call("contain", "butt").Err())

	assert.NoError(t, r.Expect(nil, map[string]any{"type": "submit"}).Call("attribute", "type").Err(), "maps keep the built-in")
}

func TestClass(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `
<button data-testid="delete-button" class="btn extra btn-danger">Delete item</button>
<button data-testid="no-classes">No Classes</button>`)
	deleteButton := doc.QueryByTestID("delete-button")
	noClasses := doc.QueryByTestID("no-classes")

	passes(t, r, deleteButton, "to.have.class.that", "contains", "extra")
	passes(t, r, deleteButton, "to.have.class.that", "contains", "btn-danger btn")
	passes(t, r, deleteButton, "to.have.class.that.contains", "members", []string{"btn-danger", "btn"})
	passes(t, r, deleteButton, "not.to.have.class.that", "contains", "btn-link")
	passes(t, r, deleteButton, "to.have.class.that.has", "members", []string{"btn-danger", "extra btn"})
	passes(t, r, deleteButton, "to.have.class.that.does.not.have", "members", []string{"btn-danger", "extra"})
	passes(t, r, deleteButton, "to.have.class.that", "equals", "extra btn-danger btn")

	passes(t, r, deleteButton, "to.have", "class", "btn")
	passes(t, r, deleteButton, "to.have.exact", "class", "btn", "extra", "btn-danger")
	passes(t, r, deleteButton, "to.not.have.exact", "class", "btn", "extra")
	passes(t, r, noClasses, "not.to.have", "class")
	passes(t, r, deleteButton, "to.have.exact.class.that", "contains", "btn btn-danger extra")

	a := r.Expect(nil, deleteButton).Chain("to.have.class")
	assert.True(t, a.Flags.Class)
	assert.Equal(t, []string{"btn", "extra", "btn-danger"}, a.Object())
}

func TestExactClassMembership(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `<button class="btn extra btn-danger" data-testid="b">x</button>`)
	b := doc.QueryByTestID("b")

	passes(t, r, b, "to.have.class.that.has", "members", []string{"btn", "extra", "btn-danger"})
	fails(t, r, b, "to.have.class.that.has", "members", []string{"btn", "extra"})
}

func TestFocus(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `<div><input type="text" data-testid="element-to-focus" /></div>`)
	input := doc.QueryByTestID("element-to-focus")

	input.Focus()
	passes(t, r, input, "to.have.focus")
	passes(t, r, input, "to.be.focused")

	input.Blur()
	passes(t, r, input, "not.to.have.focus")
	passes(t, r, input, "not.to.be.focused")
}

func TestFormValues(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `
<form data-testid="login-form">
  <input type="text" name="username" value="jane.doe" />
  <input type="password" name="password" value="12345678" />
  <input type="checkbox" name="rememberMe" checked />
  <button type="submit">Sign in</button>
</form>`)
	form := doc.QueryByTestID("login-form")

	passes(t, r, form, "to.have", "formValues", map[string]any{"username": "jane.doe", "rememberMe": true})
	passes(t, r, form, "to.not.have", "formValues", map[string]string{"username": "john"})

	err := fails(t, r, doc.Body(), "to.not.have", "formValues", map[string]any{})
	assert.True(t, errors.Is(err, chain.ErrTypeMismatch))
	assert.Contains(t, err.Error(), "either a form or fieldset element")
}

func TestStyle(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `<button data-testid="delete-button" style="display: none; background-color: red">Delete item</button>`)
	button := doc.QueryByTestID("delete-button")

	passes(t, r, button, "to.have", "style", "display: none")
	passes(t, r, button, "to.have", "style", map[string]any{"display": "none"})
	passes(t, r, button, "to.have", "style", "\n  background-color: red;\n  display: none;\n")
	passes(t, r, button, "to.have", "style", map[string]any{"backgroundColor": "red", "display": "none"})
	passes(t, r, button, "not.to.have", "style", "\n  background-color: blue;\n  display: none;\n")
	passes(t, r, button, "not.to.have", "style", map[string]any{"backgroundColor": "blue", "display": "none"})
}

func TestText(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `<span data-testid="text-content">Text  Content</span><p data-testid="nbsp">a&nbsp;b  c</p>`)
	el := doc.QueryByTestID("text-content")

	passes(t, r, el, "to.have.text.that", "contains", "Content")
	passes(t, r, el, "to.have.text.that", "matches", "/^Text Content$/")
	passes(t, r, el, "to.have.text.that", "matches", "/content$/i")
	passes(t, r, el, "to.have.text.that.does.not", "contain", "content")

	passes(t, r, doc.QueryByTestID("nbsp"), "to.have.notNormalized.text.that", "equals", "a b  c")
	passes(t, r, doc.QueryByTestID("nbsp"), "to.have.text.that", "equals", "a b c")
}

func TestValue(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `
<input type="text" value="text" data-testid="input-text" />
<input type="number" value="5" data-testid="input-number" />
<input type="text" data-testid="input-empty" />
<input type="checkbox" data-testid="checkbox" />
<select multiple data-testid="select-number">
  <option value="first">First Value</option>
  <option value="second" selected>Second Value</option>
  <option value="third" selected>Third Value</option>
</select>`)

	passes(t, r, doc.QueryByTestID("input-text"), "to.have.value.that", "equals", "text")
	passes(t, r, doc.QueryByTestID("input-number"), "to.have.value.that", "equals", 5)
	passes(t, r, doc.QueryByTestID("input-empty"), "not.to.have.value")
	passes(t, r, doc.QueryByTestID("select-number"), "to.have.value.that.has", "members", []string{"second", "third"})
	passes(t, r, doc.QueryByTestID("select-number"), "to.have.display.value.that.has", "members", []string{"Third Value", "Second Value"})

	a := r.Expect(nil, doc.QueryByTestID("input-number")).Chain("to.have.value")
	assert.IsType(t, float64(0), a.Object(), "number inputs yield numbers")

	err := fails(t, r, doc.QueryByTestID("checkbox"), "to.not.have.value")
	assert.True(t, errors.Is(err, chain.ErrTypeMismatch))
}

func TestAriaError(t *testing.T) {
	r := newRegistry()
	doc := mount(t, `
<input data-testid="invalid" aria-invalid="true" aria-errormessage="e1 e2">
<p id="e1">  Email is
  required </p><p id="e2">Try again</p>
<input data-testid="false" aria-invalid="false">
<input data-testid="plain">`)

	passes(t, r, doc.QueryByTestID("invalid"), "to.have.an.error.that", "equals", "Email is required Try again")
	passes(t, r, doc.QueryByTestID("false"), "not.to.have.an.error")
	passes(t, r, doc.QueryByTestID("plain"), "not.to.have.an.error")
}

func TestUnknownWordOnNonElement(t *testing.T) {
	r := newRegistry()
	err := fails(t, r, 5, "to.have.class")
	assert.Contains(t, err.Error(), `unknown assertion "class"`)
}
