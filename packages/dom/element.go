package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on an element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the document that owns the element.
func (e *Element) Document() *Document {
	return e.doc
}

// Is reports whether e and other refer to the same node.
func (e *Element) Is(other *Element) bool {
	if e == nil || other == nil {
		return e == nil && other == nil
	}
	return e.node == other.node
}

// TagName returns the lower-case local name.
func (e *Element) TagName() string {
	return strings.ToLower(e.node.Data)
}

// Namespace returns "" for HTML elements, "svg" or "math" otherwise.
func (e *Element) Namespace() string {
	return e.node.Namespace
}

// IsHTML reports whether the element is in the HTML namespace.
func (e *Element) IsHTML() bool {
	return e.node.Namespace == ""
}

// IsSVG reports whether the element is in the SVG namespace.
func (e *Element) IsSVG() bool {
	return e.node.Namespace == "svg"
}

func (e *Element) isHTML(a atom.Atom) bool {
	return e.node.Namespace == "" && e.node.DataAtom == a
}

// GetAttribute returns the named attribute's value and whether it is present.
func (e *Element) GetAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.node.Attr {
		if strings.ToLower(a.Key) == name {
			return a.Val, true
		}
	}
	return "", false
}

// Attribute returns the named attribute's value, or "" when absent.
func (e *Element) Attribute(name string) string {
	v, _ := e.GetAttribute(name)
	return v
}

// HasAttribute reports whether the named attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// SetAttribute sets or replaces the named attribute.
func (e *Element) SetAttribute(name, value string) {
	lower := strings.ToLower(name)
	for i, a := range e.node.Attr {
		if strings.ToLower(a.Key) == lower {
			e.node.Attr[i].Val = value
			return
		}
	}
	if e.IsHTML() {
		name = lower
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttribute removes the named attribute if present.
func (e *Element) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if strings.ToLower(a.Key) != name {
			attrs = append(attrs, a)
		}
	}
	e.node.Attr = attrs
}

// ToggleAttribute sets a boolean attribute when on, removes it otherwise.
func (e *Element) ToggleAttribute(name string, on bool) {
	if on {
		if !e.HasAttribute(name) {
			e.SetAttribute(name, "")
		}
		return
	}
	e.RemoveAttribute(name)
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return e.Attribute("id")
}

// ClassName returns the raw class attribute.
func (e *Element) ClassName() string {
	return e.Attribute("class")
}

// TextContent concatenates the data of every descendant text node.
func (e *Element) TextContent() string {
	var b strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces every child with a single text node.
func (e *Element) SetTextContent(text string) {
	e.removeChildren()
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// OuterHTML serializes the element and its descendants.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// ParseFragment parses markup in the context of the element without
// attaching the result.
func (e *Element) ParseFragment(markup string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	return nodes, nil
}

// SetInnerHTML replaces the element's children with the parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := e.ParseFragment(markup)
	if err != nil {
		return err
	}
	e.removeChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func (e *Element) removeChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// Parent returns the parent element, or nil.
func (e *Element) Parent() *Element {
	return e.doc.Wrap(e.node.Parent)
}

// Children returns the element children.
func (e *Element) Children() []*Element {
	var children []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if el := e.doc.Wrap(c); el != nil {
			children = append(children, el)
		}
	}
	return children
}

// Descendants returns every element below e in document order.
func (e *Element) Descendants() []*Element {
	var out []*Element
	walk(e.node, func(n *html.Node) bool {
		if n != e.node {
			if el := e.doc.Wrap(n); el != nil {
				out = append(out, el)
			}
		}
		return true
	})
	return out
}

// Closest returns the nearest inclusive ancestor for which match is true.
func (e *Element) Closest(match func(*Element) bool) *Element {
	for n := e.node; n != nil; n = n.Parent {
		if el := e.doc.Wrap(n); el != nil && match(el) {
			return el
		}
	}
	return nil
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// IsConnected reports whether the element is attached to its document.
func (e *Element) IsConnected() bool {
	return connected(e.doc.root, e.node)
}

// Focus makes the element the document's active element when it is
// connected and focusable.
func (e *Element) Focus() {
	if e.IsConnected() && e.IsFocusable() {
		e.doc.active = e.node
	}
}

// Blur removes focus from the element if it has it.
func (e *Element) Blur() {
	if e.doc.active == e.node {
		e.doc.active = nil
	}
}

// IsFocusable reports whether Focus can move focus to the element.
func (e *Element) IsFocusable() bool {
	if e.HasAttribute("tabindex") {
		return !e.Disabled()
	}
	if v, ok := e.GetAttribute("contenteditable"); ok && !strings.EqualFold(v, "false") {
		return true
	}
	if !e.IsHTML() {
		return false
	}
	switch e.node.DataAtom {
	case atom.Input:
		return e.Type() != "hidden" && !e.Disabled()
	case atom.Button, atom.Select, atom.Textarea:
		return !e.Disabled()
	case atom.A, atom.Area:
		return e.HasAttribute("href")
	case atom.Iframe, atom.Summary:
		return true
	}
	return false
}

// String renders the opening tag, which is how elements appear in
// assertion messages.
func (e *Element) String() string {
	if e == nil {
		return "null"
	}
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(e.node.Data)
	for _, a := range e.node.Attr {
		b.WriteString(" ")
		b.WriteString(a.Key)
		if a.Val != "" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.Val))
			b.WriteString(`"`)
		}
	}
	b.WriteString(">")
	return b.String()
}
