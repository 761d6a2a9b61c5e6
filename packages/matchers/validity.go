package matchers

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// Invalid passes when el carries an aria-invalid value other than "false",
// or when el is a form, input, select or textarea failing constraint
// validation. A form fails when any of its controls does.
func (l *Library) Invalid(el *dom.Element) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	if ariaInvalid(el) {
		return pass(true, "received element has aria-invalid=%q: %s", el.Attribute("aria-invalid"), el)
	}
	if problem := Validate(el); problem != "" {
		return pass(true, "received element is invalid (%s): %s", problem, el)
	}
	return pass(false, "received element is valid: %s", el)
}

// Valid is the inverse of Invalid.
func (l *Library) Valid(el *dom.Element) Result {
	r := l.Invalid(el)
	if r.Err != nil {
		return r
	}
	r.Pass = !r.Pass
	return r
}

func ariaInvalid(el *dom.Element) bool {
	v, ok := el.GetAttribute("aria-invalid")
	return ok && v != "false"
}

// Validate runs constraint validation on a form control, or on every control
// of a form, and returns the first violated constraint ("" when valid).
// Elements that take no part in constraint validation are always valid.
func Validate(el *dom.Element) string {
	if el == nil || !el.IsHTML() {
		return ""
	}
	switch el.TagName() {
	case "form":
		for _, control := range el.Elements() {
			if problem := Validate(control); problem != "" {
				return fmt.Sprintf("%s: %s", control, problem)
			}
		}
		return ""
	case "input", "select", "textarea":
		if barred(el) {
			return ""
		}
		return violation(el)
	}
	return ""
}

func barred(el *dom.Element) bool {
	if el.Disabled() {
		return true
	}
	if el.TagName() == "input" {
		switch el.Type() {
		case "hidden", "reset", "button", "submit", "image":
			return true
		}
	}
	return el.TagName() != "select" && el.HasAttribute("readonly")
}

func violation(el *dom.Element) string {
	if valueMissing(el) {
		return "value missing"
	}
	if el.TagName() != "input" {
		return ""
	}
	value := el.Value()
	if value == "" {
		return ""
	}
	if typeMismatch(el, value) {
		return "type mismatch"
	}
	if patternMismatch(el, value) {
		return "pattern mismatch"
	}
	if el.Type() == "number" {
		return numberViolation(el, value)
	}
	return ""
}

func valueMissing(el *dom.Element) bool {
	if !el.HasAttribute("required") {
		return false
	}
	switch el.TagName() {
	case "select":
		for _, opt := range el.SelectedOptions() {
			if opt.Value() != "" {
				return false
			}
		}
		return true
	case "textarea":
		return el.Value() == ""
	}
	switch el.Type() {
	case "checkbox":
		return !el.Checked()
	case "radio":
		return !radioGroupChecked(el)
	case "color", "range":
		return false
	}
	return el.Value() == ""
}

func radioGroupChecked(el *dom.Element) bool {
	if el.Checked() {
		return true
	}
	name := el.Attribute("name")
	if name == "" {
		return false
	}
	scope := el.Form()
	if scope == nil {
		scope = el.Document().DocumentElement()
	}
	if scope == nil {
		return false
	}
	for _, other := range scope.Descendants() {
		if other.TagName() == "input" && other.Type() == "radio" && other.Attribute("name") == name && other.Checked() {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func typeMismatch(el *dom.Element, value string) bool {
	switch el.Type() {
	case "email":
		addresses := []string{value}
		if el.HasAttribute("multiple") {
			addresses = strings.Split(value, ",")
		}
		for _, a := range addresses {
			if !emailPattern.MatchString(strings.TrimSpace(a)) {
				return true
			}
		}
	case "url":
		u, err := url.Parse(strings.TrimSpace(value))
		return err != nil || u.Scheme == ""
	}
	return false
}

var patternTypes = map[string]bool{
	"text": true, "search": true, "url": true, "tel": true, "email": true, "password": true,
}

func patternMismatch(el *dom.Element, value string) bool {
	pattern, ok := el.GetAttribute("pattern")
	if !ok || !patternTypes[el.Type()] {
		return false
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		// Invalid patterns are ignored.
		return false
	}
	return !re.MatchString(value)
}

func numberViolation(el *dom.Element, value string) string {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "bad input"
	}
	minimum, hasMin := numberAttribute(el, "min")
	if maximum, ok := numberAttribute(el, "max"); ok && n > maximum {
		return "range overflow"
	}
	if hasMin && n < minimum {
		return "range underflow"
	}
	step := 1.0
	if raw := strings.ToLower(el.Attribute("step")); raw == "any" {
		return ""
	} else if s, ok := numberAttribute(el, "step"); ok && s > 0 {
		step = s
	}
	base := 0.0
	if hasMin {
		base = minimum
	}
	q := (n - base) / step
	if math.Abs(q-math.Round(q)) > 1e-9 {
		return "step mismatch"
	}
	return ""
}

func numberAttribute(el *dom.Element, name string) (float64, bool) {
	raw, ok := el.GetAttribute(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
