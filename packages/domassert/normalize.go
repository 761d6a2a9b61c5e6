package domassert

import (
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// SplitClassNames returns the distinct whitespace-separated tokens of s in
// first-occurrence order. It never returns nil.
func SplitClassNames(s string) []string {
	tokens := []string{}
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// NormalizeWhitespace collapses whitespace runs to a single space and trims
// the result.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SingleElementValue returns a control's value in its natural type: a
// float64 (or nil) for number inputs, the checkedness of a checkbox, the
// selected value of a select ([]string for multiple selects, nil when
// nothing is selected), and the string value of anything else.
func SingleElementValue(el *dom.Element) any {
	if el == nil {
		return nil
	}
	switch el.TagName() {
	case "input":
		switch el.Type() {
		case "number":
			n, err := strconv.ParseFloat(el.Value(), 64)
			if err != nil {
				return nil
			}
			return n
		case "checkbox":
			return el.Checked()
		}
		return el.Value()
	case "select":
		selected := el.SelectedOptions()
		if el.Multiple() {
			values := make([]string, 0, len(selected))
			for _, opt := range selected {
				values = append(values, opt.Value())
			}
			return values
		}
		if len(selected) == 0 {
			return nil
		}
		return selected[0].Value()
	}
	return el.Value()
}

// DisplayedValues returns the text shown for a control: the label of each
// selected option of a select, otherwise the control's value alone.
func DisplayedValues(el *dom.Element) []string {
	if el == nil {
		return nil
	}
	if el.TagName() != "select" {
		return []string{el.Value()}
	}
	labels := []string{}
	for _, opt := range el.SelectedOptions() {
		labels = append(labels, opt.Label())
	}
	return labels
}

// SameMembers reports whether a and b hold the same strings regardless of
// order and repetition.
func SameMembers(a, b []string) bool {
	return SubsetOf(a, b) && SubsetOf(b, a)
}

// SubsetOf reports whether every string of sub appears in set.
func SubsetOf(sub, set []string) bool {
	have := make(map[string]bool, len(set))
	for _, s := range set {
		have[s] = true
	}
	for _, s := range sub {
		if !have[s] {
			return false
		}
	}
	return true
}

// classTokens flattens a class argument (a string, or a sequence of
// strings each possibly holding several names) into tokens.
func classTokens(v any) ([]string, bool) {
	var parts []string
	switch x := v.(type) {
	case string:
		parts = []string{x}
	case []string:
		parts = x
	case []any:
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			parts = append(parts, s)
		}
	default:
		return nil, false
	}
	return SplitClassNames(strings.Join(parts, " ")), true
}
