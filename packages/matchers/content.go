package matchers

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// ContainsHTML passes when the serialized form of markup, parsed in the
// context of el, appears in el's outer HTML. Parsing first makes
// equivalent spellings such as <span/> and <span></span> compare equal.
func (l *Library) ContainsHTML(el *dom.Element, markup string) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	normalized, err := NormalizeHTML(el, markup)
	if err != nil {
		return unsupported("%v", err)
	}
	ok := strings.Contains(el.OuterHTML(), normalized)
	return pass(ok, "expected %s to contain %s", el.OuterHTML(), normalized)
}

// NormalizeHTML parses markup as a fragment in el's context and serializes
// it again.
func NormalizeHTML(el *dom.Element, markup string) (string, error) {
	nodes, err := el.ParseFragment(markup)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("rendering fragment: %w", err)
		}
	}
	return buf.String(), nil
}

// HasClass checks el's class tokens against classes, each of which may hold
// several whitespace-separated names. Without exact the expected tokens must
// be a subset; with exact the two token sets must be equal. With no expected
// tokens the element passes when it has at least one class.
func (l *Library) HasClass(el *dom.Element, classes []string, exact bool) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	received := strings.Fields(el.ClassName())
	var expected []string
	for _, c := range classes {
		expected = append(expected, strings.Fields(c)...)
	}

	var ok bool
	switch {
	case exact:
		ok = subset(expected, received) && subset(received, expected)
	case len(expected) == 0:
		ok = len(received) > 0
	default:
		ok = subset(expected, received)
	}
	return pass(ok, "expected the element to have class %q, received %q", strings.Join(expected, " "), el.ClassName())
}

func subset(sub, set []string) bool {
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

// HasStyle compares el's inline style with css, which is either a CSS
// declaration block or a map from property name (CSS or camelCase form) to
// value. Every expected declaration must be present; values compare
// case-insensitively after whitespace is collapsed.
func (l *Library) HasStyle(el *dom.Element, css any) Result {
	if el == nil {
		return unsupported("received value must be an element")
	}
	expected, err := ExpectedStyle(css)
	if err != nil {
		return unsupported("%v", err)
	}
	style := el.Style()
	var missing []string
	for prop, want := range expected {
		if got, ok := style[prop]; !ok || !strings.EqualFold(got, want) {
			missing = append(missing, prop+": "+want)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		return pass(false, "expected style %s, received %q", strings.Join(missing, "; "), el.Attribute("style"))
	}
	return pass(true, "received style %q", el.Attribute("style"))
}

// ExpectedStyle turns the accepted style argument forms into a property map
// keyed by CSS property names.
func ExpectedStyle(css any) (map[string]string, error) {
	out := make(map[string]string)
	switch v := css.(type) {
	case string:
		for _, d := range dom.ParseDeclarations(v) {
			out[d.Property] = d.Value
		}
	case map[string]string:
		for k, val := range v {
			out[dom.CSSPropertyName(k)] = strings.Join(strings.Fields(val), " ")
		}
	case map[string]any:
		for k, val := range v {
			out[dom.CSSPropertyName(k)] = strings.Join(strings.Fields(fmt.Sprint(val)), " ")
		}
	default:
		return nil, fmt.Errorf("style must be a CSS string or a property map, got %T", css)
	}
	return out, nil
}
