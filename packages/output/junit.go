package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
)

type junitReport struct {
	XMLName   xml.Name     `xml:"testsuites"`
	Name      string       `xml:"name,attr,omitempty"`
	Tests     int          `xml:"tests,attr"`
	Failures  int          `xml:"failures,attr"`
	Errors    int          `xml:"errors,attr"`
	Skipped   int          `xml:"skipped,attr"`
	Time      float64      `xml:"time,attr"`
	Timestamp string       `xml:"timestamp,attr,omitempty"`
	Suites    []junitSuite `xml:"testsuite"`
}

// junitSuite holds the checks of one file.
type junitSuite struct {
	Name      string      `xml:"name,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Errors    int         `xml:"errors,attr"`
	Skipped   int         `xml:"skipped,attr"`
	Time      float64     `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr,omitempty"`
	Cases     []junitCase `xml:"testcase"`

	// Err is set for files that could not be loaded.
	Err *junitProblem `xml:"error,omitempty"`
}

type junitCase struct {
	Name       string          `xml:"name,attr"`
	ClassName  string          `xml:"classname,attr"`
	Time       float64         `xml:"time,attr"`
	Properties []junitProperty `xml:"properties>property,omitempty"`
	Failure    *junitProblem   `xml:"failure,omitempty"`
	Err        *junitProblem   `xml:"error,omitempty"`
	Skipped    *junitSkip      `xml:"skipped,omitempty"`
	SystemOut  string          `xml:"system-out,omitempty"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// junitProblem is the body of both <failure> and <error>.
type junitProblem struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Detail  string `xml:",chardata"`
}

type junitSkip struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter collects one suite per check file and writes them as
// JUnit XML on Flush.
type JUnitFormatter struct {
	writer io.Writer
	suites []junitSuite
	now    func() time.Time
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{writer: os.Stdout, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	suite := junitSuite{
		Name:      result.File,
		Tests:     len(result.Results),
		Failures:  result.Failed,
		Skipped:   result.Skipped,
		Time:      result.Duration.Seconds(),
		Timestamp: f.now().Format(time.RFC3339),
	}
	for _, r := range result.Results {
		tc := newJUnitCase(result.File, r)
		if tc.Err != nil {
			suite.Errors++
		}
		suite.Cases = append(suite.Cases, tc)
	}
	f.suites = append(f.suites, suite)
}

func newJUnitCase(file string, r *runner.CheckResult) junitCase {
	tc := junitCase{Name: r.Name, ClassName: file, Time: r.Duration.Seconds()}
	if r.Target != "" {
		tc.Properties = append(tc.Properties, junitProperty{Name: "target", Value: r.Target})
	}
	for _, tag := range r.Tags {
		tc.Properties = append(tc.Properties, junitProperty{Name: "tag", Value: tag})
	}

	switch {
	case r.Skipped:
		tc.Skipped = &junitSkip{Message: r.SkipReason}
		return tc
	case r.Error != nil:
		tc.Err = &junitProblem{Message: r.Error.Error(), Type: "Error"}
	case !r.Passed:
		tc.Failure = &junitProblem{Message: "assertion failed", Type: "AssertionError"}
		if fail := failureOf(r); fail != nil {
			tc.Failure.Message = fail.Message
			tc.Failure.Detail = fail.String()
			if fail.Kind == "type mismatch" {
				tc.Failure.Type = "TypeMismatch"
			}
		}
	}

	var out strings.Builder
	for _, s := range r.Steps {
		mark := "ok"
		if !s.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(&out, "%-4s line %d: %s\n", mark, s.Line, s.Step)
	}
	tc.SystemOut = out.String()
	return tc
}

// FormatError records a file that failed to load as a suite with an
// error and no cases.
func (f *JUnitFormatter) FormatError(err error) {
	f.suites = append(f.suites, junitSuite{
		Name:      "load",
		Errors:    1,
		Timestamp: f.now().Format(time.RFC3339),
		Err:       &junitProblem{Message: err.Error(), Type: "LoadError"},
	})
}

func (f *JUnitFormatter) FormatHeader(version string) {}

func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	report := junitReport{
		Name:      "domspec",
		Time:      totalDuration.Seconds(),
		Timestamp: f.now().Format(time.RFC3339),
		Suites:    f.suites,
	}
	for _, s := range f.suites {
		report.Tests += s.Tests
		report.Failures += s.Failures
		report.Errors += s.Errors
		report.Skipped += s.Skipped
	}

	if _, err := io.WriteString(f.writer, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f.writer)
	enc.Indent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}
