package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
)

// palette holds the color functions of one console formatter.
type palette struct {
	pass, fail, skip, info, faint, bold func(a ...any) string
}

func newPalette() palette {
	return palette{
		pass:  color.New(color.FgGreen).SprintFunc(),
		fail:  color.New(color.FgRed).SprintFunc(),
		skip:  color.New(color.FgYellow).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		faint: color.New(color.Faint).SprintFunc(),
		bold:  color.New(color.Bold).SprintFunc(),
	}
}

func (p palette) mark(ok bool) string {
	if ok {
		return p.pass("✓")
	}
	return p.fail("✗")
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	colors  palette
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	f.colors = newPalette()
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithVerbose prints targets, every evaluated step and captures.
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	title := result.File
	if result.Name != "" {
		title = fmt.Sprintf("%s (%s)", result.Name, result.File)
	}
	fmt.Fprintf(f.writer, "\n%s\n\n", f.colors.bold("Checking: "+title))

	for _, r := range result.Results {
		f.writeCheck(r)
	}
	f.writeSummary(result)
}

func (f *ConsoleFormatter) writeCheck(r *runner.CheckResult) {
	c := f.colors
	switch {
	case r.Skipped:
		line := fmt.Sprintf("  %s %s", c.skip("-"), r.Name)
		if reason := shownSkipReason(r.SkipReason); reason != "" {
			line += " (" + reason + ")"
		}
		fmt.Fprintln(f.writer, line)
		return
	case r.Error != nil:
		fmt.Fprintf(f.writer, "  %s %s %s\n", c.fail("x"), r.Name, c.fail("("+r.Error.Error()+")"))
		return
	}

	fmt.Fprintf(f.writer, "  %s %s %s\n", c.mark(r.Passed), r.Name, c.info(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
	if f.verbose {
		fmt.Fprintf(f.writer, "    %s %s\n", c.faint("target:"), r.Target)
		for _, s := range r.Steps {
			fmt.Fprintf(f.writer, "    %s %s\n", c.mark(s.Passed), c.faint(s.Step))
		}
	}

	if fail := failureOf(r); fail != nil {
		fmt.Fprintf(f.writer, "    %s line %d: %s\n", c.fail("→"), fail.Line, fail.Step)
		fmt.Fprintf(f.writer, "      %s\n", fail.Message)
		if fail.HasValues {
			fmt.Fprintf(f.writer, "      Expected: %s\n      Actual:   %s\n", fail.Expected, fail.Actual)
		}
	}

	if !f.verbose || len(r.Captures) == 0 {
		return
	}
	names := make([]string, 0, len(r.Captures))
	for name := range r.Captures {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(f.writer, "    Captures:")
	for _, name := range names {
		fmt.Fprintf(f.writer, "      %s = %s\n", name, formatValue(r.Captures[name], 100))
	}
}

func (f *ConsoleFormatter) writeSummary(result *runner.RunResult) {
	c := f.colors
	var parts []string
	for _, n := range []struct {
		count int
		label string
		paint func(a ...any) string
	}{
		{result.Passed, "passed", c.pass},
		{result.Failed, "failed", c.fail},
		{result.Skipped, "skipped", c.skip},
	} {
		if n.count > 0 {
			parts = append(parts, n.paint(fmt.Sprintf("%d %s", n.count, n.label)))
		}
	}
	parts = append(parts, fmt.Sprintf("%d total", result.Passed+result.Failed+result.Skipped))

	fmt.Fprintf(f.writer, "\nChecks: %s\n", strings.Join(parts, ", "))
	fmt.Fprintf(f.writer, "Time:   %dms\n", result.Duration.Milliseconds())
	if f.verbose {
		t := newTimings()
		t.add(result)
		if s := t.summary(); s != nil {
			fmt.Fprintf(f.writer, "Timing: p50 %.1fms, p95 %.1fms, max %.1fms\n", s.P50, s.P95, s.Max)
		}
	}
	fmt.Fprintln(f.writer)
}

func (f *ConsoleFormatter) FormatError(err error) {
	fmt.Fprintf(f.writer, "%s %v\n", f.colors.fail("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	fmt.Fprintf(f.writer, "%s %s\n", f.colors.bold("domspec"), version)
}
