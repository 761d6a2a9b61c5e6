package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
)

// TAPFormatter writes TAP version 13. Each check is a test point; files
// are separated by comment lines.
type TAPFormatter struct {
	writer io.Writer
	points []tapPoint
}

type tapPoint struct {
	file      string
	name      string
	ok        bool
	directive string
	diag      *tapDiagnostic
}

// tapDiagnostic is the YAML block under a failed test point.
type tapDiagnostic struct {
	Message  string `yaml:"message"`
	Severity string `yaml:"severity"`
	File     string `yaml:"file"`
	Step     string `yaml:"step,omitempty"`
	Line     int    `yaml:"line,omitempty"`
	Target   string `yaml:"target,omitempty"`
	Expected string `yaml:"expected,omitempty"`
	Actual   string `yaml:"actual,omitempty"`
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		p := tapPoint{file: result.File, name: r.Name, ok: r.Passed || r.Skipped}
		switch {
		case r.Skipped:
			p.directive = "SKIP"
			if reason := shownSkipReason(r.SkipReason); reason != "" {
				p.directive += " " + reason
			}
		case r.Error != nil:
			p.diag = &tapDiagnostic{Message: r.Error.Error(), Severity: "error", File: result.File, Target: r.Target}
		case !r.Passed:
			p.diag = &tapDiagnostic{Message: r.Message(), Severity: "fail", File: result.File, Target: r.Target}
			if fail := failureOf(r); fail != nil {
				p.diag.Message = fail.Message
				p.diag.Step = fail.Step
				p.diag.Line = fail.Line
				if fail.HasValues {
					p.diag.Expected = fail.Expected
					p.diag.Actual = fail.Actual
				}
			}
		}
		f.points = append(f.points, p)
	}
}

func (f *TAPFormatter) FormatError(err error) {
	// Files that fail to load produce no test points.
}

func (f *TAPFormatter) FormatHeader(version string) {}

// Flush writes the plan and every test point.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n1..%d\n", len(f.points))

	file := ""
	for i, p := range f.points {
		if p.file != file {
			file = p.file
			fmt.Fprintf(f.writer, "# %s\n", file)
		}

		status := "ok"
		if !p.ok {
			status = "not ok"
		}
		fmt.Fprintf(f.writer, "%s %d - %s", status, i+1, p.name)
		if p.directive != "" {
			fmt.Fprintf(f.writer, " # %s", p.directive)
		}
		fmt.Fprintln(f.writer)

		if p.diag != nil {
			if err := writeTAPDiagnostic(f.writer, p.diag); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(f.writer, "# time %dms\n", totalDuration.Milliseconds())
	return nil
}

func writeTAPDiagnostic(w io.Writer, d *tapDiagnostic) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "  ---")
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w, "  ...")
	return nil
}
