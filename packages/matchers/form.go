package matchers

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// HasFormValues passes when every entry of expected equals the value of the
// same-named controls of a form or fieldset. Arrays compare as sets and a
// trailing "[]" on a control name is ignored.
func (l *Library) HasFormValues(el *dom.Element, expected map[string]any) Result {
	if el == nil || !(el.IsForm() || el.IsFieldset()) {
		return unsupported("form values can only be checked on a form or fieldset: %s", describe(el))
	}
	values, err := FormValues(el)
	if err != nil {
		return unsupported("%v", err)
	}
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !formValueEqual(values[name], expected[name]) {
			return pass(false, "form value %q is %s, expected %s", name, show(values[name]), show(expected[name]))
		}
	}
	return pass(true, "form values match")
}

// FormValues collects the values of the named controls below a form or
// fieldset. A lone control yields its single value; several controls
// sharing a name must share a type: radios yield the checked value,
// checkboxes the values of the checked ones, anything else every value.
func FormValues(el *dom.Element) (map[string]any, error) {
	groups := make(map[string][]*dom.Element)
	var order []string
	for _, control := range el.Elements() {
		name := control.Attribute("name")
		if name == "" {
			continue
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], control)
	}

	values := make(map[string]any, len(groups))
	for _, name := range order {
		controls := groups[name]
		key := strings.TrimSuffix(name, "[]")
		if len(controls) == 1 {
			values[key] = controlValue(controls[0])
			continue
		}
		v, err := groupValue(controls)
		if err != nil {
			return nil, fmt.Errorf("form value %q: %w", name, err)
		}
		values[key] = v
	}
	return values, nil
}

func controlValue(el *dom.Element) any {
	switch el.TagName() {
	case "input":
		switch el.Type() {
		case "radio":
			if el.Checked() {
				return el.Value()
			}
			return nil
		case "checkbox":
			return el.Checked()
		case "number":
			n, err := strconv.ParseFloat(el.Value(), 64)
			if err != nil {
				return nil
			}
			return n
		}
		return el.Value()
	case "select":
		var selected []string
		for _, opt := range el.SelectedOptions() {
			selected = append(selected, opt.Value())
		}
		if el.Multiple() {
			if selected == nil {
				selected = []string{}
			}
			return selected
		}
		if len(selected) == 0 {
			return nil
		}
		return selected[0]
	}
	return el.Value()
}

func groupValue(controls []*dom.Element) (any, error) {
	kind := controls[0].Type()
	for _, c := range controls[1:] {
		if c.Type() != kind {
			return nil, fmt.Errorf("multiple form elements with the same name must be of the same type")
		}
	}
	switch kind {
	case "radio":
		for _, c := range controls {
			if c.Checked() {
				return c.Value(), nil
			}
		}
		return nil, nil
	case "checkbox":
		checked := []string{}
		for _, c := range controls {
			if c.Checked() {
				checked = append(checked, c.Value())
			}
		}
		return checked, nil
	}
	all := make([]string, 0, len(controls))
	for _, c := range controls {
		all = append(all, c.Value())
	}
	return all, nil
}

// formValueEqual compares a collected form value with an expected one.
// Numbers compare numerically and sequences as sets.
func formValueEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if a, ok := toFloat(actual); ok {
		e, ok := toFloat(expected)
		return ok && a == e
	}
	if a, ok := actual.([]string); ok {
		e, ok := toStrings(expected)
		return ok && len(a) == len(e) && subset(a, e) && subset(e, a)
	}
	return reflect.DeepEqual(actual, expected)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

func show(v any) string {
	switch s := v.(type) {
	case nil:
		return "undefined"
	case string:
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", v)
}
