package dom

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNotFound is returned by the Get* queries when no element matches.
var ErrNotFound = errors.New("element not found")

const blankDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document is a parsed HTML document plus the browser state that lives
// outside the markup.
type Document struct {
	root          *html.Node
	active        *html.Node
	indeterminate map[*html.Node]bool
}

// NewDocument returns an empty document with html, head and body elements.
func NewDocument() *Document {
	doc, err := Parse(blankDocument)
	if err != nil {
		// the blank template always parses
		panic(err)
	}
	return doc
}

// Parse parses a complete HTML document.
func Parse(markup string) (*Document, error) {
	return ParseReader(strings.NewReader(markup))
}

// ParseReader parses a complete HTML document from r.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{
		root:          root,
		indeterminate: make(map[*html.Node]bool),
	}, nil
}

// ParseFile reads and parses the HTML document at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open page: %w", err)
	}
	defer f.Close()
	return ParseReader(f)
}

// Root returns the underlying document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Wrap returns the element handle for n, or nil when n is not an element.
func (d *Document) Wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return &Element{doc: d, node: n}
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Element {
	return d.Wrap(childByAtom(d.root, atom.Html))
}

// Head returns the <head> element.
func (d *Document) Head() *Element {
	return d.Wrap(childByAtom(childByAtom(d.root, atom.Html), atom.Head))
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.Wrap(childByAtom(childByAtom(d.root, atom.Html), atom.Body))
}

// CreateElement creates a detached HTML element owned by d.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return d.Wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// CreateElementNS creates a detached element in a foreign namespace
// ("svg" or "math"), or an HTML element when namespace is empty.
func (d *Document) CreateElementNS(namespace, tag string) *Element {
	namespace = strings.ToLower(namespace)
	switch namespace {
	case "", "html", "http://www.w3.org/1999/xhtml":
		return d.CreateElement(tag)
	case "http://www.w3.org/2000/svg":
		namespace = "svg"
	case "http://www.w3.org/1998/math/mathml":
		namespace = "math"
	}
	return d.Wrap(&html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		Namespace: namespace,
	})
}

// ActiveElement returns the focused element, or the body when nothing
// connected has focus.
func (d *Document) ActiveElement() *Element {
	if d.active != nil && connected(d.root, d.active) {
		return d.Wrap(d.active)
	}
	if body := d.Body(); body != nil {
		return body
	}
	return d.DocumentElement()
}

// Query returns the first connected element matching the XPath expression,
// or nil.
func (d *Document) Query(expr string) (*Element, error) {
	n, err := htmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return d.Wrap(n), nil
}

// QueryAll returns every connected element matching the XPath expression.
func (d *Document) QueryAll(expr string) ([]*Element, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	elements := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if el := d.Wrap(n); el != nil {
			elements = append(elements, el)
		}
	}
	return elements, nil
}

// GetElementByID returns the connected element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	el, _ := d.Query("//*[@id=" + xpathLiteral(id) + "]")
	return el
}

// QueryByTestID returns the element whose data-testid is id, or nil.
func (d *Document) QueryByTestID(id string) *Element {
	el, _ := d.Query("//*[@data-testid=" + xpathLiteral(id) + "]")
	return el
}

// GetByTestID is QueryByTestID that fails when nothing matches.
func (d *Document) GetByTestID(id string) (*Element, error) {
	if el := d.QueryByTestID(id); el != nil {
		return el, nil
	}
	return nil, fmt.Errorf("data-testid %q: %w", id, ErrNotFound)
}

// QueryByText returns the first element whose own text nodes, with
// whitespace collapsed, equal text. Script and style elements are ignored.
func (d *Document) QueryByText(text string) *Element {
	want := collapseSpace(text)
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return true
		}
		var own strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				own.WriteString(c.Data)
			}
		}
		if collapseSpace(own.String()) == want {
			found = n
			return false
		}
		return true
	})
	return d.Wrap(found)
}

// GetByText is QueryByText that fails when nothing matches.
func (d *Document) GetByText(text string) (*Element, error) {
	if el := d.QueryByText(text); el != nil {
		return el, nil
	}
	return nil, fmt.Errorf("text %q: %w", text, ErrNotFound)
}

func childByAtom(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

// walk visits n and its descendants in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func connected(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// xpathLiteral quotes s as an XPath 1.0 string literal.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
