package output

import (
	"fmt"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
)

// failure is the first failing step of a check, flattened for reporters.
type failure struct {
	Step     string
	Line     int
	Kind     string
	Message  string
	Expected string
	Actual   string
	// HasValues is set when Expected and Actual carry diagnostic values.
	HasValues bool
}

func failureOf(r *runner.CheckResult) *failure {
	for _, s := range r.Steps {
		if s.Err == nil {
			continue
		}
		f := &failure{Step: s.Step, Line: s.Line, Message: s.Err.Error()}
		if ae := r.Failure(); ae != nil {
			f.Kind = ae.Kind.String()
			f.Message = ae.Message
			if ae.HasValues {
				f.HasValues = true
				f.Expected = formatValue(ae.Expected, 100)
				f.Actual = formatValue(ae.Actual, 100)
			}
		}
		return f
	}
	return nil
}

func (f *failure) String() string {
	s := fmt.Sprintf("line %d: %s: %s", f.Line, f.Step, f.Message)
	if f.HasValues {
		s += fmt.Sprintf(" (expected %s, got %s)", f.Expected, f.Actual)
	}
	return s
}

// formatValue formats a value for display, inspecting it the way failure
// messages do and truncating long results.
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		if len(val) > 10 {
			return fmt.Sprintf("[array with %d items]", len(val))
		}
	case map[string]any:
		if len(val) > 10 {
			return fmt.Sprintf("{object with %d keys}", len(val))
		}
	}
	return chain.Truncate(chain.Inspect(v), maxLen)
}

func shownSkipReason(reason string) string {
	if reason == "filtered out" {
		return ""
	}
	return reason
}
