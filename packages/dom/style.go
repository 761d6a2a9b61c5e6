package dom

import (
	"strings"
	"unicode"
)

// Declaration is a single CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// ParseDeclarations parses a CSS declaration block such as
// "display: none; background-color: red". Property names are lower-cased,
// values are trimmed with inner whitespace collapsed, and a trailing
// !important is dropped. Separators inside quotes or parentheses, as in
// url(data:...;base64,...), belong to the value. Malformed entries are
// skipped.
func ParseDeclarations(css string) []Declaration {
	var decls []Declaration
	for _, part := range splitTopLevel(css, ';') {
		i := indexTopLevel(part, ':')
		if i < 0 {
			continue
		}
		prop, value := part[:i], part[i+1:]
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = collapseSpace(value)
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if prop == "" || value == "" {
			continue
		}
		decls = append(decls, Declaration{Property: prop, Value: value})
	}
	return decls
}

// indexTopLevel returns the index of the first sep in s that is outside
// quotes and parentheses, or -1.
func indexTopLevel(s string, sep byte) int {
	var quote byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '\\':
			i++
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			return i
		}
	}
	return -1
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	for {
		i := indexTopLevel(s, sep)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}

// Style returns the element's inline style as a property map. Later
// declarations of the same property win.
func (e *Element) Style() map[string]string {
	style := make(map[string]string)
	for _, d := range ParseDeclarations(e.Attribute("style")) {
		style[d.Property] = d.Value
	}
	return style
}

// StyleProperty returns one inline style value, or "".
func (e *Element) StyleProperty(property string) string {
	return e.Style()[CSSPropertyName(property)]
}

// CSSPropertyName converts a camelCase property name (backgroundColor) to
// its CSS form (background-color). Names already in CSS form are
// lower-cased; custom properties (--x) are kept as is.
func CSSPropertyName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
