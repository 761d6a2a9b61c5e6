package matchers

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// Disabled passes when el is actually disabled: a form control or custom
// element carrying the disabled attribute, one inside a disabled fieldset
// (outside its first legend), or an option in a disabled select or
// optgroup. Elements that cannot be disabled never are, whatever their
// attributes.
func (l *Library) Disabled(el *dom.Element) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	ok := disabled(el)
	return pass(ok, "received element %s disabled: %s", isOrNot(ok), el)
}

// Enabled is the inverse of Disabled.
func (l *Library) Enabled(el *dom.Element) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	ok := !disabled(el)
	return pass(ok, "received element %s enabled: %s", isOrNot(ok), el)
}

func disabled(el *dom.Element) bool {
	if !canBeDisabled(el) {
		return false
	}
	if el.Disabled() {
		return true
	}
	for p := el.Parent(); p != nil; p = p.Parent() {
		switch p.TagName() {
		case "select", "optgroup", "button":
			if p.IsHTML() && p.HasAttribute("disabled") {
				return true
			}
		}
	}
	return false
}

func canBeDisabled(el *dom.Element) bool {
	if !el.IsHTML() {
		return false
	}
	switch el.TagName() {
	case "button", "fieldset", "input", "optgroup", "option", "select", "textarea":
		return true
	}
	return el.IsCustomElement()
}

// EmptyDOMElement passes when el has no child nodes other than comments.
func (l *Library) EmptyDOMElement(el *dom.Element) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	ok := true
	for c := el.Node().FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.CommentNode {
			ok = false
			break
		}
	}
	return pass(ok, "received element %s empty: %s", isOrNot(ok), el.InnerHTML())
}

// InTheDocument passes when el is attached to its document. A nil element
// is a usage error unless the check is negated, in which case it simply
// does not pass.
func (l *Library) InTheDocument(el *dom.Element, negated bool) Result {
	if el == nil {
		if negated {
			return pass(false, "received value is null")
		}
		return unsupported("received value must be an HTMLElement or an SVGElement")
	}
	ok := el.IsConnected()
	if ok {
		return pass(true, "element could be found in the document")
	}
	return pass(false, "element could not be found in the document")
}

// Visible passes when el is in the document and neither it nor an ancestor
// is hidden by display, visibility, opacity, the hidden attribute or a
// closed <details>.
func (l *Library) Visible(el *dom.Element) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	if !el.IsConnected() {
		return pass(false, "received element is not visible (element is not in the document): %s", el)
	}
	var from *dom.Element
	for cur := el; cur != nil; from, cur = cur, cur.Parent() {
		if reason := hiddenBy(cur, from); reason != "" {
			return pass(false, "received element is not visible (%s on %s): %s", reason, cur, el)
		}
	}
	return pass(true, "received element is visible: %s", el)
}

// hiddenBy names what hides el, or returns "". from is the child the walk
// came from, nil for the element under test.
func hiddenBy(el, from *dom.Element) string {
	style := el.Style()
	switch {
	case style["display"] == "none":
		return "display: none"
	case style["visibility"] == "hidden", style["visibility"] == "collapse":
		return "visibility: " + style["visibility"]
	case zeroOpacity(style["opacity"]):
		return "opacity: 0"
	case el.HasAttribute("hidden"):
		return "hidden attribute"
	case el.TagName() == "details" && from != nil && from.TagName() != "summary" && !el.HasAttribute("open"):
		return "closed details"
	}
	return ""
}

func zeroOpacity(v string) bool {
	if v == "" {
		return false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	return err == nil && f == 0
}

var checkableRoles = map[string]bool{
	"checkbox":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"radio":            true,
	"switch":           true,
}

// Checked passes for a checked checkbox or radio input, or for an element
// with a checkable role whose aria-checked is "true".
func (l *Library) Checked(el *dom.Element) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	var ok bool
	switch {
	case el.TagName() == "input" && (el.Type() == "checkbox" || el.Type() == "radio"):
		ok = el.Checked()
	case checkableRoles[el.Attribute("role")] && validAriaChecked(el.Attribute("aria-checked")):
		ok = el.Attribute("aria-checked") == "true"
	default:
		return unsupported(`only inputs with type="checkbox" or type="radio" or elements with a checkable role and a valid aria-checked attribute can be checked: %s`, el)
	}
	return pass(ok, "received element %s checked: %s", isOrNot(ok), el)
}

func validAriaChecked(v string) bool {
	return v == "true" || v == "false" || v == "mixed"
}

// PartiallyChecked passes for an indeterminate checkbox input, or a checkbox
// (input or role) whose aria-checked is "mixed".
func (l *Library) PartiallyChecked(el *dom.Element) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	var ok bool
	switch {
	case el.TagName() == "input" && el.Type() == "checkbox":
		ok = el.Indeterminate() || el.Attribute("aria-checked") == "mixed"
	case el.Attribute("role") == "checkbox" && validAriaChecked(el.Attribute("aria-checked")):
		ok = el.Attribute("aria-checked") == "mixed"
	default:
		return unsupported(`only inputs with type="checkbox" or elements with role=checkbox and a valid aria-checked attribute can be partially checked: %s`, el)
	}
	return pass(ok, "received element %s partially checked: %s", isOrNot(ok), el)
}

var (
	unsupportedRequiredInputs = map[string]bool{
		"color": true, "hidden": true, "range": true, "submit": true,
		"image": true, "reset": true, "button": true,
	}
	ariaRequiredRoles = map[string]bool{
		"combobox": true, "gridcell": true, "listbox": true, "radiogroup": true,
		"spinbutton": true, "textbox": true, "tree": true,
	}
)

// Required passes for a control carrying the required attribute where the
// control supports it, or an element that supports aria-required with
// aria-required="true".
func (l *Library) Required(el *dom.Element) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	ok := requiredAttribute(el) || ariaRequired(el)
	return pass(ok, "received element %s required: %s", isOrNot(ok), el)
}

func requiredAttribute(el *dom.Element) bool {
	if !el.IsHTML() || !el.HasAttribute("required") {
		return false
	}
	switch el.TagName() {
	case "select", "textarea":
		return true
	case "input":
		return !unsupportedRequiredInputs[el.Type()]
	}
	return false
}

func ariaRequired(el *dom.Element) bool {
	if el.Attribute("aria-required") != "true" {
		return false
	}
	if role, ok := el.GetAttribute("role"); ok {
		return ariaRequiredRoles[role]
	}
	switch el.TagName() {
	case "input", "select", "textarea":
		return true
	}
	return false
}

func isOrNot(ok bool) string {
	if ok {
		return "is"
	}
	return "is not"
}
