package a11y

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// Computer computes accessible names and descriptions. The zero value is
// ready to use.
type Computer struct{}

// New returns a Computer.
func New() *Computer {
	return &Computer{}
}

// Name returns the accessible name of el.
func (c *Computer) Name(el *dom.Element) string {
	return ComputeAccessibleName(el)
}

// Description returns the accessible description of el.
func (c *Computer) Description(el *dom.Element) string {
	return ComputeAccessibleDescription(el)
}

// ComputeAccessibleName follows the text alternative computation of the
// accname recommendation, restricted to what static markup can express:
// aria-labelledby, aria-label, native labelling (alt, label, legend, caption,
// svg title, button values), name from content, and finally title and
// placeholder.
func ComputeAccessibleName(el *dom.Element) string {
	if el == nil {
		return ""
	}
	w := &walker{visited: make(map[*html.Node]bool)}
	return normalize(w.textAlternative(el, step{}))
}

// ComputeAccessibleDescription returns the text of the elements referenced
// by aria-describedby, else aria-description, else the title attribute when
// it did not already provide the name.
func ComputeAccessibleDescription(el *dom.Element) string {
	if el == nil {
		return ""
	}
	if ids := strings.Fields(el.Attribute("aria-describedby")); len(ids) > 0 {
		w := &walker{visited: map[*html.Node]bool{el.Node(): true}}
		var parts []string
		for _, id := range ids {
			if ref := el.Document().GetElementByID(id); ref != nil {
				parts = append(parts, w.textAlternative(ref, step{referenced: true}))
			}
		}
		if d := normalize(strings.Join(parts, " ")); d != "" {
			return d
		}
	}
	if d := normalize(el.Attribute("aria-description")); d != "" {
		return d
	}
	if title := normalize(el.Attribute("title")); title != "" && title != ComputeAccessibleName(el) {
		return title
	}
	return ""
}

type step struct {
	// referenced is set while following aria-labelledby/aria-describedby.
	referenced bool
	// recursing is set while computing a name from descendants.
	recursing bool
}

type walker struct {
	visited map[*html.Node]bool
}

func (w *walker) textAlternative(el *dom.Element, s step) string {
	if w.visited[el.Node()] {
		return ""
	}
	w.visited[el.Node()] = true

	if !s.referenced && hidden(el) {
		return ""
	}

	if !s.referenced {
		if ids := strings.Fields(el.Attribute("aria-labelledby")); len(ids) > 0 {
			var parts []string
			for _, id := range ids {
				if ref := el.Document().GetElementByID(id); ref != nil {
					parts = append(parts, w.textAlternative(ref, step{referenced: true, recursing: true}))
				}
			}
			if name := normalize(strings.Join(parts, " ")); name != "" {
				return name
			}
		}
	}

	if label := strings.TrimSpace(el.Attribute("aria-label")); label != "" {
		return label
	}

	role := Role(el)
	if role != "presentation" && role != "none" {
		if name, ok := w.native(el, s); ok {
			return name
		}
	}

	if s.recursing && role == "textbox" {
		return el.Value()
	}
	if s.recursing && (role == "combobox" || role == "listbox") {
		var labels []string
		for _, opt := range el.SelectedOptions() {
			labels = append(labels, opt.Label())
		}
		return strings.Join(labels, " ")
	}

	if s.recursing || s.referenced || namedFromContent[role] {
		if name := normalize(w.fromContent(el)); name != "" {
			return name
		}
	}

	if title := strings.TrimSpace(el.Attribute("title")); title != "" {
		return title
	}
	return strings.TrimSpace(el.Attribute("placeholder"))
}

// native applies the host-language labelling rules. ok is false when the
// element has no native text alternative.
func (w *walker) native(el *dom.Element, s step) (string, bool) {
	if el.IsSVG() {
		for _, child := range el.Children() {
			if child.TagName() == "title" {
				return normalize(child.TextContent()), true
			}
		}
		return "", false
	}

	switch el.TagName() {
	case "img", "area":
		if alt, ok := el.GetAttribute("alt"); ok {
			return alt, true
		}
	case "input":
		switch el.Type() {
		case "button", "submit", "reset":
			if v, ok := el.GetAttribute("value"); ok && v != "" {
				return v, true
			}
			switch el.Type() {
			case "submit":
				return "Submit", true
			case "reset":
				return "Reset", true
			}
			return "", false
		case "image":
			if alt, ok := el.GetAttribute("alt"); ok {
				return alt, true
			}
		}
		return w.labels(el, s)
	case "select", "textarea", "meter", "output", "progress", "button":
		if name, ok := w.labels(el, s); ok {
			return name, true
		}
	case "fieldset":
		return w.firstChildText(el, "legend")
	case "table":
		return w.firstChildText(el, "caption")
	case "figure":
		return w.firstChildText(el, "figcaption")
	case "optgroup":
		if label := el.Attribute("label"); label != "" {
			return label, true
		}
	}
	return "", false
}

func (w *walker) labels(el *dom.Element, s step) (string, bool) {
	if s.recursing {
		return "", false
	}
	var parts []string
	for _, label := range el.Labels() {
		parts = append(parts, w.fromContent(label))
	}
	name := normalize(strings.Join(parts, " "))
	return name, name != ""
}

func (w *walker) firstChildText(el *dom.Element, tag string) (string, bool) {
	for _, child := range el.Children() {
		if child.TagName() == tag {
			name := normalize(w.textAlternative(child, step{recursing: true}))
			return name, name != ""
		}
	}
	return "", false
}

// fromContent concatenates the text alternatives of el's child nodes.
func (w *walker) fromContent(el *dom.Element) string {
	var b strings.Builder
	for c := el.Node().FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			child := el.Document().Wrap(c)
			text := w.textAlternative(child, step{recursing: true})
			if blockLevel[child.TagName()] {
				text = " " + text + " "
			}
			b.WriteString(text)
		}
	}
	return b.String()
}

var blockLevel = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

func hidden(el *dom.Element) bool {
	if el.HasAttribute("hidden") || strings.EqualFold(el.Attribute("aria-hidden"), "true") {
		return true
	}
	style := el.Style()
	return style["display"] == "none" || style["visibility"] == "hidden" || style["visibility"] == "collapse"
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
