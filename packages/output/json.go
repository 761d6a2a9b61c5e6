package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Version  string      `json:"version,omitempty"`
	Summary  JSONSummary `json:"summary"`
	Checks   []JSONCheck `json:"checks"`
	Timing   *Timing     `json:"timing,omitempty"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type JSONCheck struct {
	Name       string         `json:"name"`
	File       string         `json:"file"`
	Tags       []string       `json:"tags,omitempty"`
	Target     string         `json:"target,omitempty"`
	Passed     bool           `json:"passed"`
	Skipped    bool           `json:"skipped,omitempty"`
	SkipReason string         `json:"skipReason,omitempty"`
	Duration   float64        `json:"duration"`
	Error      string         `json:"error,omitempty"`
	Steps      []JSONStep     `json:"steps,omitempty"`
	Failure    *JSONFailure   `json:"failure,omitempty"`
	Captures   map[string]any `json:"captures,omitempty"`
}

type JSONStep struct {
	Step   string `json:"step"`
	Line   int    `json:"line"`
	Passed bool   `json:"passed"`
}

type JSONFailure struct {
	Step     string `json:"step"`
	Line     int    `json:"line"`
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// JSONFormatter formats check results as JSON
type JSONFormatter struct {
	writer  io.Writer
	runID   string
	version string
	results []JSONCheck
	timings *timings
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		runID:   uuid.NewString(),
		results: make([]JSONCheck, 0),
		timings: newTimings(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithRunID replaces the generated run id.
func JSONWithRunID(id string) JSONOption {
	return func(f *JSONFormatter) {
		f.runID = id
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	f.timings.add(result)
	for _, r := range result.Results {
		check := JSONCheck{
			Name:       r.Name,
			File:       result.File,
			Tags:       r.Tags,
			Target:     r.Target,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			SkipReason: shownSkipReason(r.SkipReason),
			Duration:   float64(r.Duration.Milliseconds()),
		}

		if r.Error != nil {
			check.Error = r.Error.Error()
		}

		for _, s := range r.Steps {
			check.Steps = append(check.Steps, JSONStep{Step: s.Step, Line: s.Line, Passed: s.Passed})
		}

		if fail := failureOf(r); fail != nil {
			check.Failure = &JSONFailure{
				Step:     fail.Step,
				Line:     fail.Line,
				Kind:     fail.Kind,
				Message:  fail.Message,
				Expected: fail.Expected,
				Actual:   fail.Actual,
			}
		}

		if len(r.Captures) > 0 {
			check.Captures = r.Captures
		}

		f.results = append(f.results, check)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual check results
}

func (f *JSONFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, c := range f.results {
		switch {
		case c.Skipped:
			skipped++
		case c.Passed:
			passed++
		default:
			failed++
		}
	}

	output := JSONOutput{
		RunID:   f.runID,
		Version: f.version,
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Checks:   f.results,
		Timing:   f.timings.summary(),
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
