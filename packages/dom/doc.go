// Package dom provides the document model that domspec assertions run against.
//
// Documents are parsed with golang.org/x/net/html and queried with
// github.com/antchfx/htmlquery. On top of the raw node tree the package keeps
// the small amount of browser state tests care about:
//   - Focus (the active element)
//   - Form control state (value, checkedness, indeterminate, selectedness)
//   - Inline style declarations
//
// Elements are lightweight handles; two handles are the same element when
// Is reports true.
package dom
