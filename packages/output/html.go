package output

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
)

//go:embed report.html.tmpl
var htmlTemplate string

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(part, total int) string {
		if total == 0 {
			return "0"
		}
		return fmt.Sprintf("%.1f", float64(part)/float64(total)*100)
	},
}).Parse(htmlTemplate))

// htmlReport is the data the report template renders.
type htmlReport struct {
	Version  string
	Summary  JSONSummary
	Files    []htmlFile
	Errors   []string
	Duration int64
	Timing   *Timing
	Time     string
}

// htmlFile groups the checks of one check file.
type htmlFile struct {
	Path   string
	Name   string
	Checks []htmlCheck
	Failed int
}

type htmlCheck struct {
	Name       string
	Status     string
	Target     string
	Tags       []string
	SkipReason string
	Duration   int64
	Error      string
	Steps      []JSONStep
	Failure    *failure
	Captures   map[string]string
}

// HTMLFormatter renders a standalone HTML report.
type HTMLFormatter struct {
	writer  io.Writer
	version string
	report  htmlReport
	timings *timings
}

type HTMLOption func(*HTMLFormatter)

func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{writer: os.Stdout, timings: newTimings()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

func (f *HTMLFormatter) FormatResult(result *runner.RunResult) {
	file := htmlFile{Path: result.File, Name: result.Name, Failed: result.Failed}
	for _, r := range result.Results {
		file.Checks = append(file.Checks, newHTMLCheck(r))
	}
	f.report.Files = append(f.report.Files, file)
	f.report.Summary.Passed += result.Passed
	f.report.Summary.Failed += result.Failed
	f.report.Summary.Skipped += result.Skipped
	f.report.Summary.Total += len(result.Results)
	f.timings.add(result)
}

func newHTMLCheck(r *runner.CheckResult) htmlCheck {
	c := htmlCheck{
		Name:       r.Name,
		Status:     "failed",
		Target:     r.Target,
		Tags:       r.Tags,
		SkipReason: shownSkipReason(r.SkipReason),
		Duration:   r.Duration.Milliseconds(),
		Failure:    failureOf(r),
	}
	switch {
	case r.Skipped:
		c.Status = "skipped"
	case r.Passed:
		c.Status = "passed"
	}
	if r.Error != nil {
		c.Error = r.Error.Error()
	}
	for _, s := range r.Steps {
		c.Steps = append(c.Steps, JSONStep{Step: s.Step, Line: s.Line, Passed: s.Passed})
	}
	if len(r.Captures) > 0 {
		c.Captures = make(map[string]string, len(r.Captures))
		for name, v := range r.Captures {
			c.Captures[name] = formatValue(v, 200)
		}
	}
	return c
}

// FormatError lists files that could not be loaded above the results.
func (f *HTMLFormatter) FormatError(err error) {
	f.report.Errors = append(f.report.Errors, err.Error())
}

// FormatHeader captures the version for the report footer.
func (f *HTMLFormatter) FormatHeader(version string) {
	f.version = version
}

func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	report := f.report
	report.Version = f.version
	report.Duration = totalDuration.Milliseconds()
	report.Timing = f.timings.summary()
	report.Time = time.Now().Format("2006-01-02 15:04:05")
	return reportTemplate.Execute(f.writer, report)
}
