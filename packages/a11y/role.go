package a11y

import (
	"strings"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// Role returns the element's ARIA role: the first token of an explicit role
// attribute, else the implicit role of the tag. Elements without a role
// return "".
func Role(el *dom.Element) string {
	if el == nil {
		return ""
	}
	if explicit := strings.Fields(strings.ToLower(el.Attribute("role"))); len(explicit) > 0 {
		return explicit[0]
	}
	if el.IsSVG() {
		if el.TagName() == "svg" {
			return "graphics-document"
		}
		return ""
	}
	if !el.IsHTML() {
		return ""
	}

	switch tag := el.TagName(); tag {
	case "a", "area":
		if el.HasAttribute("href") {
			return "link"
		}
	case "article", "button", "dialog", "form", "main", "option", "table":
		return tag
	case "nav":
		return "navigation"
	case "aside":
		return "complementary"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "hr":
		return "separator"
	case "img":
		if alt, ok := el.GetAttribute("alt"); ok && alt == "" {
			return "presentation"
		}
		return "img"
	case "li":
		return "listitem"
	case "ol", "ul":
		return "list"
	case "select":
		if el.Multiple() {
			return "listbox"
		}
		return "combobox"
	case "textarea":
		return "textbox"
	case "td":
		return "cell"
	case "th":
		return "columnheader"
	case "tr":
		return "row"
	case "fieldset":
		return "group"
	case "progress":
		return "progressbar"
	case "output":
		return "status"
	case "input":
		return inputRole(el)
	}
	return ""
}

func inputRole(el *dom.Element) string {
	switch el.Type() {
	case "button", "image", "reset", "submit":
		return "button"
	case "checkbox":
		return "checkbox"
	case "radio":
		return "radio"
	case "range":
		return "slider"
	case "number":
		return "spinbutton"
	case "search":
		if el.HasAttribute("list") {
			return "combobox"
		}
		return "searchbox"
	case "email", "tel", "text", "url":
		if el.HasAttribute("list") {
			return "combobox"
		}
		return "textbox"
	}
	return ""
}

// namedFromContent lists the roles whose name may be computed from their
// descendants.
var namedFromContent = map[string]bool{
	"button": true, "cell": true, "checkbox": true, "columnheader": true,
	"gridcell": true, "heading": true, "link": true, "menuitem": true,
	"menuitemcheckbox": true, "menuitemradio": true, "option": true,
	"radio": true, "row": true, "rowheader": true, "switch": true, "tab": true,
	"tooltip": true, "treeitem": true,
}
