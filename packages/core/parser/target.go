package parser

import (
	"fmt"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// Resolve finds the target element in doc. A Missing target resolves to a
// nil element and no error.
func (t Target) Resolve(doc *dom.Document) (*dom.Element, error) {
	switch {
	case t.Missing:
		return nil, nil
	case t.TestID != "":
		return doc.GetByTestID(t.TestID)
	case t.XPath != "":
		el, err := doc.Query(t.XPath)
		if err != nil {
			return nil, err
		}
		if el == nil {
			return nil, fmt.Errorf("xpath %q: %w", t.XPath, dom.ErrNotFound)
		}
		return el, nil
	case t.Text != "":
		return doc.GetByText(t.Text)
	case t.ID != "":
		if el := doc.GetElementByID(t.ID); el != nil {
			return el, nil
		}
		return nil, fmt.Errorf("id %q: %w", t.ID, dom.ErrNotFound)
	case t.Document:
		return doc.DocumentElement(), nil
	}
	return doc.Body(), nil
}

// Map applies fn to each locator field, for placeholder resolution.
func (t Target) Map(fn func(string) string) Target {
	t.TestID = fn(t.TestID)
	t.XPath = fn(t.XPath)
	t.Text = fn(t.Text)
	t.ID = fn(t.ID)
	return t
}
