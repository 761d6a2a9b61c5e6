package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrMismatch is the sentinel for a predicate whose outcome disagreed
	// with the chain's polarity.
	ErrMismatch = errors.New("assertion failed")
	// ErrTypeMismatch is the sentinel for a subject of the wrong kind, an
	// unknown word, or a word used the wrong way.
	ErrTypeMismatch = errors.New("type mismatch")
)

// Kind classifies assertion failures.
type Kind int

const (
	// KindMismatch is a semantic failure with expected and actual values.
	KindMismatch Kind = iota
	// KindTypeMismatch is raised before a predicate runs and ignores
	// negation.
	KindTypeMismatch
)

func (k Kind) String() string {
	switch k {
	case KindMismatch:
		return "mismatch"
	case KindTypeMismatch:
		return "type mismatch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// AssertionError is the failure recorded by an Assertion.
type AssertionError struct {
	Kind     Kind
	Message  string
	Expected any
	Actual   any
	// HasValues is set when Expected and Actual carry diagnostic values.
	HasValues bool
}

// Error returns the failure message, followed by the expected and actual
// values when they were supplied.
func (e *AssertionError) Error() string {
	if e == nil {
		return ErrMismatch.Error()
	}
	if !e.HasValues {
		return e.Message
	}
	return fmt.Sprintf("%s\n  expected: %s\n  actual:   %s", e.Message, Inspect(e.Expected), Inspect(e.Actual))
}

// Unwrap returns ErrMismatch or ErrTypeMismatch for errors.Is.
func (e *AssertionError) Unwrap() error {
	if e != nil && e.Kind == KindTypeMismatch {
		return ErrTypeMismatch
	}
	return ErrMismatch
}
