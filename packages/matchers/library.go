package matchers

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/domspec/packages/dom"
)

// ErrUnsupportedElement marks a matcher applied to an element it does not
// apply to, for example a checked test on a <div> without a role.
var ErrUnsupportedElement = errors.New("unsupported element")

// Result is the outcome of one matcher.
type Result struct {
	Pass    bool
	Message string
	Err     error
}

func pass(ok bool, format string, args ...any) Result {
	return Result{Pass: ok, Message: fmt.Sprintf(format, args...)}
}

func unsupported(format string, args ...any) Result {
	err := fmt.Errorf("%w: %s", ErrUnsupportedElement, fmt.Sprintf(format, args...))
	return Result{Message: err.Error(), Err: err}
}

// Library is the default matcher implementation. The zero value is ready to
// use.
type Library struct{}

// New returns a Library.
func New() *Library {
	return &Library{}
}

func describe(el *dom.Element) string {
	if el == nil {
		return "null"
	}
	return el.String()
}
