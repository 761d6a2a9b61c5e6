package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	neturl "net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/domspec/packages/core/config"
	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
	"github.com/abdul-hamid-achik/domspec/packages/http"
	"github.com/abdul-hamid-achik/domspec/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run [file|directory]...",
	Short: "Run checks from domspec files",
	Long: `Run checks defined in .domspec.yaml files. Without arguments the
include globs from the config file are used.

Examples:
  domspec run
  domspec run login.domspec.yaml
  domspec run ./checks/ --env staging
  domspec run ./checks/ --tags smoke --parallel
  domspec run ./checks/ --name "submit*" -o junit --output-file report.xml
  domspec run ./checks/ --watch
  domspec run ./checks/ --update-snapshots`,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var errChecksFailed = errors.New("checks failed")

var (
	envFlag         string
	configFlag      string
	nameFlag        string
	tagsFlag        string
	verboseFlag     int // 0=off, 1=-v, 2=-vv, 3=-vvv
	quietFlag       bool
	bailFlag        bool
	timeoutFlag     string
	noColorFlag     bool
	dryRunFlag      bool
	outputFlag      string
	outputFileFlag  string
	parallelFlag    bool
	concurrencyFlag int
	watchFlag       bool
	proxyFlag       string
	insecureFlag    bool
	updateSnapsFlag bool
	rateFlag        float64
	historyFlag     string
)

func init() {
	// Core flags
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("DOMSPEC_ENV", ""), "Environment to use (env: DOMSPEC_ENV)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only checks matching name pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("DOMSPEC_TAGS", ""), "Run only checks with specified tags (comma-separated) (env: DOMSPEC_TAGS)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v steps, -vv debug logs, -vvv with callers)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("DOMSPEC_QUIET", false), "Suppress all output except errors (env: DOMSPEC_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("DOMSPEC_NO_COLOR", false), "Disable colored output (env: DOMSPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("DOMSPEC_OUTPUT", ""), "Output formats, comma-separated: console, json, junit, tap, html (env: DOMSPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("DOMSPEC_OUTPUT_FILE", ""), "Write a single output format to file (default: stdout) (env: DOMSPEC_OUTPUT_FILE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("DOMSPEC_BAIL", false), "Stop on first failure (env: DOMSPEC_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("DOMSPEC_TIMEOUT", "30s"), "Page fetch timeout (e.g., 30s, 1m) (env: DOMSPEC_TIMEOUT)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without executing")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("DOMSPEC_PARALLEL", false), "Run checks in parallel (when no dependencies) (env: DOMSPEC_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("DOMSPEC_CONCURRENCY", runner.DefaultConcurrency), "Number of concurrent checks when running in parallel (env: DOMSPEC_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run checks")
	runCmd.Flags().BoolVarP(&updateSnapsFlag, "update-snapshots", "u", false, "Write markup snapshots instead of comparing them")

	// Network flags
	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("DOMSPEC_PROXY", ""), "Proxy URL for page fetches (env: DOMSPEC_PROXY)")
	runCmd.Flags().StringVar(&historyFlag, "history", getEnvString("DOMSPEC_HISTORY", ""), "Record results in this SQLite database (env: DOMSPEC_HISTORY)")
	runCmd.Flags().Float64Var(&rateFlag, "rate", getEnvFloat("DOMSPEC_RATE", 0), "Maximum page fetches per second, 0 for no limit (env: DOMSPEC_RATE)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("DOMSPEC_INSECURE", false), "Disable SSL certificate validation (env: DOMSPEC_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// reporterSet fans results out to every selected formatter.
type reporterSet struct {
	formatters []Formatter
	closers    []io.Closer
}

func (s *reporterSet) FormatResult(result *runner.RunResult) {
	for _, f := range s.formatters {
		f.FormatResult(result)
	}
}

func (s *reporterSet) FormatError(err error) {
	for _, f := range s.formatters {
		f.FormatError(err)
	}
}

func (s *reporterSet) FormatHeader(version string) {
	for _, f := range s.formatters {
		f.FormatHeader(version)
	}
}

func (s *reporterSet) Flush(totalDuration time.Duration) error {
	var firstErr error
	for _, f := range s.formatters {
		if flushable, ok := f.(Flushable); ok {
			if err := flushable.Flush(totalDuration); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *reporterSet) Close() {
	for _, c := range s.closers {
		_ = c.Close()
	}
}

var reportExtensions = map[string]string{
	"json":  ".json",
	"junit": ".xml",
	"tap":   ".tap",
	"html":  ".html",
}

// newReporters builds one formatter per name. With a single name the
// output file is used; otherwise non-console formats go to outputDir as
// domspec-report.<ext>, or stdout when no directory is configured.
func newReporters(names []string, outputFile, outputDir string, verbose, noColor bool) (*reporterSet, error) {
	set := &reporterSet{}

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		var w io.Writer = os.Stdout
		target := ""
		switch {
		case len(names) == 1 && outputFile != "":
			target = outputFile
		case name != "console" && outputDir != "":
			ext, ok := reportExtensions[name]
			if !ok {
				return nil, fmt.Errorf("unknown output format %q", name)
			}
			target = filepath.Join(outputDir, "domspec-report"+ext)
		}
		if target != "" {
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("cannot create output directory: %w", err)
			}
			f, err := os.Create(target)
			if err != nil {
				return nil, fmt.Errorf("cannot create output file: %w", err)
			}
			set.closers = append(set.closers, f)
			w = f
		}

		switch name {
		case "json":
			set.formatters = append(set.formatters, output.NewJSONFormatter(output.JSONWithWriter(w)))
		case "junit":
			set.formatters = append(set.formatters, output.NewJUnitFormatter(output.JUnitWithWriter(w)))
		case "tap":
			set.formatters = append(set.formatters, output.NewTAPFormatter(output.TAPWithWriter(w)))
		case "html":
			set.formatters = append(set.formatters, output.NewHTMLFormatter(output.HTMLWithWriter(w)))
		case "console":
			set.formatters = append(set.formatters, output.NewConsoleFormatter(
				output.WithWriter(w),
				output.WithVerbose(verbose),
				output.WithNoColor(noColor),
			))
		default:
			set.Close()
			return nil, fmt.Errorf("unknown output format %q", name)
		}
	}

	if len(set.formatters) == 0 {
		return nil, fmt.Errorf("no output format selected")
	}
	return set, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// runSummary is the outcome of one pass over the collected files.
type runSummary struct {
	passed, failed, skipped int
	parseErrors             int
	networkErrors           int
	otherErrors             int
	duration                time.Duration
}

func (s runSummary) exitCode() int {
	switch {
	case s.parseErrors > 0:
		return ExitParseError
	case s.networkErrors > 0:
		return ExitNetworkError
	case s.failed > 0 || s.otherErrors > 0:
		return ExitTestFailure
	}
	return ExitSuccess
}

func runCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	flags := cmd.Flags()
	environment := envFlag
	if environment == "" {
		environment = fileConfig.DefaultEnvironment
	}
	bail := bailFlag || (!flags.Changed("bail") && fileConfig.GetBail())
	parallel := parallelFlag || (!flags.Changed("parallel") && fileConfig.GetParallel())
	noColor := noColorFlag || quietFlag || fileConfig.GetNoColor()
	verbose := verboseFlag > 0 || fileConfig.GetVerbose()
	concurrency := concurrencyFlag
	if !flags.Changed("concurrency") && fileConfig.Concurrency > 0 {
		concurrency = fileConfig.Concurrency
	}
	reporterNames := fileConfig.Reporters
	if outputFlag != "" {
		reporterNames = splitList(outputFlag)
	}
	if len(reporterNames) == 0 {
		reporterNames = []string{"console"}
	}

	timeout, err := time.ParseDuration(timeoutFlag)
	if err != nil {
		return withExitCode(ExitUsageError, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err))
	}

	logger, err := newLogger(verboseFlag, quietFlag, noColor)
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("creating logger: %w", err))
	}
	defer func() { _ = logger.Sync() }()

	files, err := collectFiles(args, fileConfig.Include)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no .domspec.yaml files found"))
	}

	clientOpts := []http.ClientOption{
		http.WithTimeout(timeout),
		http.WithValidateSSL(!insecureFlag),
		http.WithDefaultHeader("User-Agent", "domspec/"+version),
	}
	if proxyFlag != "" {
		clientOpts = append(clientOpts, http.WithProxy(proxyFlag))
	}
	if rateFlag > 0 {
		clientOpts = append(clientOpts, http.WithRateLimit(rateFlag, 1))
	}

	cfg := &runner.Config{
		Environment:  environment,
		Environments: fileConfig.Environments,
		Bail:         bail,
		NameFilter:   nameFlag,
		TagsFilter:   splitList(tagsFlag),
		Parallel:     parallel,
		Concurrency:  concurrency,
		Timeout:      timeout,

		UpdateSnapshots: updateSnapsFlag,
	}
	r := runner.NewRunner(cfg,
		runner.WithLogger(logger),
		runner.WithHTTPClient(http.NewClient(clientOpts...)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func() (runSummary, error) {
		reporters, err := newReporters(reporterNames, outputFileFlag, fileConfig.OutputDir, verbose, noColor)
		if err != nil {
			return runSummary{}, withExitCode(ExitUsageError, err)
		}
		defer reporters.Close()
		if historyFlag != "" && !dryRunFlag {
			reporters.formatters = append(reporters.formatters, newHistoryRecorder(ctx, historyFlag))
		}

		summary := runFiles(ctx, cmd, r, files, reporters, bail, logger)
		if err := reporters.Flush(summary.duration); err != nil {
			return summary, fmt.Errorf("error writing output: %w", err)
		}
		return summary, nil
	}

	summary, err := runOnce()
	if err != nil {
		return err
	}

	if !watchFlag {
		if code := summary.exitCode(); code != ExitSuccess {
			return withExitCode(code, errChecksFailed)
		}
		return nil
	}

	return watch(ctx, cmd, args, files, logger, func() {
		if _, err := runOnce(); err != nil {
			logger.Error("re-run failed", zap.Error(err))
		}
	})
}

func runFiles(ctx context.Context, cmd *cobra.Command, r *runner.Runner, files []string, reporters Formatter, bail bool, logger *zap.Logger) runSummary {
	var summary runSummary
	start := time.Now()
	reporters.FormatHeader(version)

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		if dryRunFlag {
			fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s\n", file)
			continue
		}

		result, err := r.RunFile(ctx, file)
		if err != nil {
			logger.Debug("file failed", zap.String("file", file), zap.Error(err))
			reporters.FormatError(fmt.Errorf("%s: %w", file, err))
			var urlErr *neturl.Error
			switch {
			case errors.Is(err, runner.ErrParse):
				summary.parseErrors++
			case errors.As(err, &urlErr), errors.Is(err, http.ErrBodyTooLarge):
				summary.networkErrors++
			default:
				summary.otherErrors++
			}
			if bail {
				break
			}
			continue
		}

		reporters.FormatResult(result)
		summary.passed += result.Passed
		summary.failed += result.Failed
		summary.skipped += result.Skipped

		if bail && result.Failed > 0 {
			break
		}
	}

	summary.duration = time.Since(start)
	return summary
}

// watch re-runs checks when a check file or a page next to one changes,
// until ctx ends.
func watch(ctx context.Context, cmd *cobra.Command, args, files []string, logger *zap.Logger, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	addDir := func(dir string) {
		if watchedDirs[dir] {
			return
		}
		watchedDirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	for _, file := range files {
		addDir(filepath.Dir(file))
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					addDir(path)
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isCheckFile(event.Name) && !isPageFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running checks...\n\n", name)
				rerun()
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func isPageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".env":
		return true
	}
	return strings.HasPrefix(filepath.Base(path), ".env.")
}
