// Package matchers implements DOM-testing predicates over packages/dom
// elements: disabled and enabled state, emptiness, document membership,
// visibility, constraint validity, required-ness, checkedness, HTML
// containment, classes, form values and inline style.
//
// Every matcher returns a Result. Pass is the predicate's outcome; Message
// describes what was received. Err is set when the matcher cannot be used on
// the given element at all (a usage error), which callers report regardless
// of negation.
package matchers
