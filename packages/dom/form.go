package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Type returns the lower-cased type of an input ("text" when missing or
// unknown) or button ("submit" by default). Other elements return "".
func (e *Element) Type() string {
	switch {
	case e.isHTML(atom.Input):
		t := strings.ToLower(strings.TrimSpace(e.Attribute("type")))
		if !knownInputTypes[t] {
			return "text"
		}
		return t
	case e.isHTML(atom.Button):
		t := strings.ToLower(strings.TrimSpace(e.Attribute("type")))
		if t == "button" || t == "reset" {
			return t
		}
		return "submit"
	}
	return ""
}

var knownInputTypes = map[string]bool{
	"hidden": true, "text": true, "search": true, "tel": true, "url": true,
	"email": true, "password": true, "date": true, "month": true, "week": true,
	"time": true, "datetime-local": true, "number": true, "range": true,
	"color": true, "checkbox": true, "radio": true, "file": true,
	"submit": true, "image": true, "reset": true, "button": true,
}

// IsFormControl reports whether the element is a listed form control.
func (e *Element) IsFormControl() bool {
	if !e.IsHTML() {
		return false
	}
	switch e.node.DataAtom {
	case atom.Button, atom.Fieldset, atom.Input, atom.Object, atom.Output, atom.Select, atom.Textarea:
		return true
	}
	return false
}

// Value returns the control's current value as a browser would expose it
// through the value property.
func (e *Element) Value() string {
	switch {
	case e.isHTML(atom.Input):
		v, ok := e.GetAttribute("value")
		switch e.Type() {
		case "checkbox", "radio":
			if !ok {
				return "on"
			}
			return v
		case "number":
			v = strings.TrimSpace(v)
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return ""
			}
			return v
		case "email", "url", "text", "search", "tel", "password":
			return strings.NewReplacer("\r", "", "\n", "").Replace(v)
		}
		return v
	case e.isHTML(atom.Textarea):
		return e.TextContent()
	case e.isHTML(atom.Select):
		if opts := e.SelectedOptions(); len(opts) > 0 {
			return opts[0].Value()
		}
		return ""
	case e.isHTML(atom.Option):
		if v, ok := e.GetAttribute("value"); ok {
			return v
		}
		return collapseSpace(e.TextContent())
	}
	return e.Attribute("value")
}

// SetValue updates the control's value. For selects, options whose value
// equals v become selected and every other option is deselected.
func (e *Element) SetValue(v string) {
	switch {
	case e.isHTML(atom.Textarea):
		e.SetTextContent(v)
	case e.isHTML(atom.Select):
		for _, opt := range e.Options() {
			opt.ToggleAttribute("selected", opt.Value() == v)
		}
	default:
		e.SetAttribute("value", v)
	}
}

// Checked reports the checkedness of a checkbox or radio input.
func (e *Element) Checked() bool {
	return e.isHTML(atom.Input) && e.HasAttribute("checked")
}

// SetChecked sets checkedness. Checking a radio unchecks the other radios of
// its group.
func (e *Element) SetChecked(on bool) {
	e.ToggleAttribute("checked", on)
	if !on || e.Type() != "radio" {
		return
	}
	name := e.Attribute("name")
	if name == "" {
		return
	}
	var group []*Element
	if form := e.Form(); form != nil {
		group = form.Descendants()
	} else if root := e.doc.DocumentElement(); root != nil {
		group = root.Descendants()
	}
	for _, other := range group {
		if !other.Is(e) && other.isHTML(atom.Input) && other.Type() == "radio" && other.Attribute("name") == name {
			other.RemoveAttribute("checked")
		}
	}
}

// Indeterminate reports the indeterminate flag of a checkbox.
func (e *Element) Indeterminate() bool {
	return e.doc.indeterminate[e.node]
}

// SetIndeterminate sets the indeterminate flag, which has no markup form.
func (e *Element) SetIndeterminate(on bool) {
	if on {
		e.doc.indeterminate[e.node] = true
		return
	}
	delete(e.doc.indeterminate, e.node)
}

// Multiple reports whether a select allows several selected options.
func (e *Element) Multiple() bool {
	return e.isHTML(atom.Select) && e.HasAttribute("multiple")
}

// Options returns the option elements of a select, including those nested
// in optgroups.
func (e *Element) Options() []*Element {
	var opts []*Element
	for _, el := range e.Descendants() {
		if el.isHTML(atom.Option) {
			opts = append(opts, el)
		}
	}
	return opts
}

// SelectedOptions applies the browser selectedness rules: in single mode the
// last option marked selected wins and, with none marked, the first enabled
// option is selected.
func (e *Element) SelectedOptions() []*Element {
	opts := e.Options()
	var selected []*Element
	for _, opt := range opts {
		if opt.HasAttribute("selected") {
			selected = append(selected, opt)
		}
	}
	if e.Multiple() {
		return selected
	}
	if len(selected) > 0 {
		return selected[len(selected)-1:]
	}
	for _, opt := range opts {
		if !opt.Disabled() {
			return []*Element{opt}
		}
	}
	return nil
}

// Selected reports whether an option is currently selected.
func (e *Element) Selected() bool {
	sel := e.Closest(func(el *Element) bool { return el.isHTML(atom.Select) })
	if sel == nil {
		return e.HasAttribute("selected")
	}
	for _, opt := range sel.SelectedOptions() {
		if opt.Is(e) {
			return true
		}
	}
	return false
}

// Label returns an option's display text.
func (e *Element) Label() string {
	if v, ok := e.GetAttribute("label"); ok && v != "" {
		return v
	}
	return collapseSpace(e.TextContent())
}

// Form returns the form that owns a control: the element referenced by the
// form attribute, else the nearest form ancestor.
func (e *Element) Form() *Element {
	if id, ok := e.GetAttribute("form"); ok {
		return e.doc.GetElementByID(id)
	}
	if p := e.Parent(); p != nil {
		return p.Closest(func(el *Element) bool { return el.isHTML(atom.Form) })
	}
	return nil
}

// IsForm reports whether the element is a <form>.
func (e *Element) IsForm() bool { return e.isHTML(atom.Form) }

// IsFieldset reports whether the element is a <fieldset>.
func (e *Element) IsFieldset() bool { return e.isHTML(atom.Fieldset) }

// Elements returns the listed form controls below a form or fieldset.
func (e *Element) Elements() []*Element {
	var controls []*Element
	for _, el := range e.Descendants() {
		if el.IsFormControl() && !el.isHTML(atom.Object) {
			controls = append(controls, el)
		}
	}
	return controls
}

// Disabled reports whether the element is actually disabled: a form control,
// custom element or option/optgroup with the disabled attribute, or a
// control or custom element inside a disabled fieldset but outside its
// first legend.
func (e *Element) Disabled() bool {
	if !e.IsHTML() {
		return false
	}
	switch e.node.DataAtom {
	case atom.Option:
		if e.HasAttribute("disabled") {
			return true
		}
		p := e.Parent()
		return p != nil && p.isHTML(atom.Optgroup) && p.HasAttribute("disabled")
	case atom.Optgroup:
		return e.HasAttribute("disabled")
	}
	if !e.IsFormControl() && !e.IsCustomElement() {
		return false
	}
	if e.HasAttribute("disabled") {
		return true
	}
	child := e.node
	for p := e.node.Parent; p != nil; child, p = p, p.Parent {
		if p.Type != html.ElementNode || p.Namespace != "" || p.DataAtom != atom.Fieldset {
			continue
		}
		if !e.doc.Wrap(p).HasAttribute("disabled") {
			continue
		}
		if child.DataAtom == atom.Legend && child == firstLegend(p) {
			continue
		}
		return true
	}
	return false
}

func firstLegend(fieldset *html.Node) *html.Node {
	for c := fieldset.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Legend {
			return c
		}
	}
	return nil
}

// Labels returns the label elements associated with a labelable control:
// labels whose for attribute names the control's id, then the nearest
// label ancestor.
func (e *Element) Labels() []*Element {
	if !e.labelable() {
		return nil
	}
	var labels []*Element
	if id := e.ID(); id != "" && e.IsConnected() {
		found, _ := e.doc.QueryAll("//label[@for=" + xpathLiteral(id) + "]")
		labels = append(labels, found...)
	}
	ancestor := e.Closest(func(el *Element) bool { return el.isHTML(atom.Label) })
	if ancestor != nil {
		if target, ok := ancestor.GetAttribute("for"); !ok || target == e.ID() {
			duplicate := false
			for _, l := range labels {
				duplicate = duplicate || l.Is(ancestor)
			}
			if !duplicate {
				labels = append(labels, ancestor)
			}
		}
	}
	return labels
}

func (e *Element) labelable() bool {
	if !e.IsHTML() {
		return false
	}
	switch e.node.DataAtom {
	case atom.Input:
		return e.Type() != "hidden"
	case atom.Button, atom.Meter, atom.Output, atom.Progress, atom.Select, atom.Textarea:
		return true
	}
	return false
}

// IsCustomElement reports whether the element is an HTML element with a
// valid custom element name, i.e. one containing a hyphen.
func (e *Element) IsCustomElement() bool {
	return e.IsHTML() && strings.Contains(e.TagName(), "-")
}
