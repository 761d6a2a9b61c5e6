package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/core/env"
	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
	"github.com/abdul-hamid-achik/domspec/packages/dom"
	"github.com/abdul-hamid-achik/domspec/packages/domassert"
	"github.com/abdul-hamid-achik/domspec/packages/http"
	"github.com/abdul-hamid-achik/domspec/packages/snapshot"
)

const (
	// DefaultConcurrency is the default number of checks run at once in
	// parallel mode.
	DefaultConcurrency = 4
)

var (
	// ErrCircularDependency is returned when depends entries form a cycle.
	ErrCircularDependency = errors.New("circular dependency between checks")
	// ErrParse wraps check files that do not parse or validate.
	ErrParse = errors.New("parsing file")
)

type Runner struct {
	registry  *chain.Registry
	fetcher   *http.Client
	resolver  *env.Resolver
	snapshots *snapshot.Store
	config    *Config
	logger    *zap.Logger
}

type Config struct {
	Environment  string
	Environments map[string]map[string]any
	Bail         bool
	NameFilter   string
	TagsFilter   []string
	Parallel     bool
	Concurrency  int
	Timeout      time.Duration // page fetch timeout
	Headers      map[string]string

	// UpdateSnapshots rewrites stored markup snapshots instead of failing.
	UpdateSnapshots bool
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l.Named("runner")
	}
}

// WithRegistry evaluates expectations against reg instead of a fresh
// registry with the domassert vocabulary.
func WithRegistry(reg *chain.Registry) Option {
	return func(r *Runner) {
		r.registry = reg
	}
}

// WithHTTPClient sets the client that fetches url pages.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) {
		r.fetcher = c
	}
}

func NewRunner(cfg *Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	r := &Runner{
		resolver:  env.NewResolver(),
		snapshots: snapshot.NewStore(cfg.UpdateSnapshots),
		config:    cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.registry == nil {
		r.registry = chain.NewRegistry()
		domassert.Register(r.registry)
	}
	if r.fetcher == nil {
		clientOpts := []http.ClientOption{http.WithDefaultHeaders(cfg.Headers)}
		if cfg.Timeout > 0 {
			clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
		}
		r.fetcher = http.NewClient(clientOpts...)
	}
	r.resolver.SetWarnFunc(func(format string, args ...any) {
		r.logger.Warn(fmt.Sprintf(format, args...))
	})

	return r
}

type RunResult struct {
	File     string
	Name     string
	Results  []*CheckResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

type CheckResult struct {
	Name       string
	Tags       []string
	Target     string
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Steps      []*StepResult
	Captures   map[string]any
	Error      error
}

// StepResult is one evaluated expectation step. Steps after the first
// failure are not evaluated and have no result.
type StepResult struct {
	Step   string
	Line   int
	Passed bool
	Err    error
}

// Failure returns the assertion failure of the check, if any.
func (c *CheckResult) Failure() *chain.AssertionError {
	for _, s := range c.Steps {
		var ae *chain.AssertionError
		if errors.As(s.Err, &ae) {
			return ae
		}
	}
	return nil
}

// Message describes why the check failed, or "".
func (c *CheckResult) Message() string {
	if c.Error != nil {
		return c.Error.Error()
	}
	for _, s := range c.Steps {
		if s.Err != nil {
			return fmt.Sprintf("%s: %v", s.Step, s.Err)
		}
	}
	return ""
}

func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	file, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return r.Run(ctx, file)
}

// Run executes a parsed file. Page paths and hooks are relative to the
// file's directory.
func (r *Runner) Run(ctx context.Context, file *parser.File) (*RunResult, error) {
	baseDir := filepath.Dir(file.Path)

	environment, err := env.LoadEnvironment(baseDir, r.config.Environment, r.config.Environments)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	r.resolver.SetVariables(environment.Variables)
	for name, value := range file.Variables {
		r.resolver.SetVariable(name, r.resolver.ResolveValue(value))
	}

	logger := r.logger.With(zap.String("file", file.Path))

	if err := r.runBeforeHooks(ctx, file.Before, baseDir, r.resolver.Resolve); err != nil {
		return nil, err
	}
	defer func() {
		if err := r.runAfterHooks(context.WithoutCancel(ctx), file.After, baseDir, r.resolver.Resolve); err != nil {
			logger.Warn("after hooks", zap.Error(err))
		}
	}()

	markup, err := r.loadPage(ctx, file, baseDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("page loaded", zap.Int("bytes", len(markup)))

	return r.runChecks(ctx, file, markup, logger)
}

func (r *Runner) loadPage(ctx context.Context, file *parser.File, baseDir string) (string, error) {
	switch {
	case file.HTML != "":
		return r.resolver.Resolve(file.HTML), nil
	case file.Page != "":
		path := r.resolver.Resolve(file.Page)
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading page: %w", err)
		}
		return string(data), nil
	case file.URL != "":
		if err := r.waitForService(ctx, file.WaitFor, r.resolver.Resolve); err != nil {
			return "", err
		}
		url := r.resolver.Resolve(file.URL)
		headers := make(map[string]string, len(file.Headers))
		for k, v := range file.Headers {
			headers[k] = r.resolver.Resolve(v)
		}
		resp, err := r.fetcher.Fetch(ctx, url, headers)
		if err != nil {
			return "", err
		}
		if !resp.IsSuccess() {
			return "", fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
		}
		if !resp.IsHTML() {
			return "", fmt.Errorf("fetching %s: not an HTML page (%s)", url, resp.ContentType())
		}
		return resp.Text()
	}
	return "", fmt.Errorf("%s: no page, url or html", file.Path)
}

func (r *Runner) runChecks(ctx context.Context, file *parser.File, markup string, logger *zap.Logger) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		File: file.Path,
		Name: file.Name,
	}

	hasOnly := false
	for _, check := range file.Checks {
		if check.Only {
			hasOnly = true
			break
		}
	}

	sorted, err := topologicalSort(file.Checks)
	if err != nil {
		return nil, err
	}

	var selected []*parser.Check
	for _, check := range sorted {
		if !r.shouldRun(check, hasOnly) {
			result.add(skipped(check, "filtered out"))
			continue
		}
		if check.Skip != "" {
			result.add(skipped(check, check.Skip))
			continue
		}
		selected = append(selected, check)
	}

	hasDependencies := false
	for _, check := range selected {
		if len(check.Depends) > 0 {
			hasDependencies = true
			break
		}
	}

	if r.config.Parallel && !hasDependencies {
		for _, res := range r.runParallel(ctx, file.Path, selected, markup, logger) {
			result.add(res)
		}
		result.Duration = time.Since(start)
		return result, nil
	}

	executed := make(map[string]*CheckResult)
	for _, check := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if dep := failedDependency(check, executed); dep != "" {
			res := skipped(check, fmt.Sprintf("dependency %q did not pass", dep))
			executed[check.Name] = res
			result.add(res)
			continue
		}

		res := r.runCheck(file.Path, check, markup, r.resolver, true, logger)
		executed[check.Name] = res
		result.add(res)

		if !res.Passed && r.config.Bail {
			logger.Debug("bail after failure", zap.String("check", check.Name))
			break
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (res *RunResult) add(c *CheckResult) {
	res.Results = append(res.Results, c)
	switch {
	case c.Skipped:
		res.Skipped++
	case c.Passed:
		res.Passed++
	default:
		res.Failed++
	}
}

func skipped(check *parser.Check, reason string) *CheckResult {
	return &CheckResult{
		Name:       check.Name,
		Tags:       check.Tags,
		Target:     check.Target.String(),
		Skipped:    true,
		SkipReason: reason,
	}
}

func failedDependency(check *parser.Check, executed map[string]*CheckResult) string {
	for _, dep := range check.Depends {
		if res, ok := executed[dep]; !ok || !res.Passed {
			return dep
		}
	}
	return ""
}

// runParallel gives each check its own resolver clone, so captures are not
// shared between them.
func (r *Runner) runParallel(ctx context.Context, path string, checks []*parser.Check, markup string, logger *zap.Logger) []*CheckResult {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*CheckResult, len(checks))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, check := range checks {
		if ctx.Err() != nil {
			results[i] = skipped(check, "canceled")
			continue
		}
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, check *parser.Check) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = r.runCheck(path, check, markup, r.resolver.Clone(), false, logger)
		}(i, check)
	}

	wg.Wait()
	return results
}

// topologicalSort orders checks so each follows its dependencies, keeping
// file order otherwise.
func topologicalSort(checks []*parser.Check) ([]*parser.Check, error) {
	byName := make(map[string]*parser.Check, len(checks))
	for _, check := range checks {
		byName[check.Name] = check
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(checks))
	sorted := make([]*parser.Check, 0, len(checks))

	var visit func(check *parser.Check) error
	visit = func(check *parser.Check) error {
		switch state[check.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %q", ErrCircularDependency, check.Name)
		}
		state[check.Name] = visiting
		for _, dep := range check.Depends {
			if d, ok := byName[dep]; ok {
				if err := visit(d); err != nil {
					return err
				}
			}
		}
		state[check.Name] = done
		sorted = append(sorted, check)
		return nil
	}

	for _, check := range checks {
		if err := visit(check); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

func (r *Runner) shouldRun(check *parser.Check, hasOnly bool) bool {
	if hasOnly && !check.Only {
		return false
	}
	if r.config.NameFilter != "" && !matchesPattern(check.Name, r.config.NameFilter) {
		return false
	}
	if len(r.config.TagsFilter) > 0 && !hasAnyTag(check.Tags, r.config.TagsFilter) {
		return false
	}
	return true
}

func (r *Runner) runCheck(path string, check *parser.Check, markup string, resolver *env.Resolver, capture bool, logger *zap.Logger) *CheckResult {
	start := time.Now()
	target := check.Target.Map(resolver.Resolve)
	result := &CheckResult{
		Name:     check.Name,
		Tags:     check.Tags,
		Target:   target.String(),
		Captures: make(map[string]any),
	}
	defer func() {
		result.Duration = time.Since(start)
		logger.Debug("check finished",
			zap.String("check", check.Name),
			zap.Bool("passed", result.Passed),
			zap.Duration("duration", result.Duration),
			zap.Error(result.Error))
	}()

	// Every check gets its own document so actions never leak.
	doc, err := dom.Parse(markup)
	if err != nil {
		result.Error = err
		return result
	}

	el, err := target.Resolve(doc)
	if err != nil {
		result.Error = fmt.Errorf("target %s: %w", target, err)
		return result
	}

	for _, action := range check.Actions {
		if err := applyAction(el, action, resolver); err != nil {
			result.Error = fmt.Errorf("line %d: %s: %w", action.Line, action.Kind, err)
			return result
		}
	}

	var subject any
	if el != nil {
		subject = el
	}
	a := r.registry.Expect(nil, subject)
	for _, step := range check.Expect {
		for _, word := range step.Path {
			a.Get(word)
		}
		if step.Method != "" {
			args, err := stepArgs(doc, step, resolver)
			if err != nil {
				result.Error = fmt.Errorf("line %d: %w", step.Line, err)
				return result
			}
			a.Call(step.Method, args...)
		}
		result.Steps = append(result.Steps, &StepResult{
			Step:   step.String(),
			Line:   step.Line,
			Passed: !a.Failed(),
			Err:    a.Err(),
		})
		if a.Failed() {
			return result
		}
	}

	if check.Snapshot {
		step := r.compareSnapshot(path, check, el)
		result.Steps = append(result.Steps, step)
		if !step.Passed {
			return result
		}
	}

	result.Passed = true
	if check.Capture != "" {
		result.Captures[check.Capture] = a.Object()
		if capture {
			resolver.SetCapture(check.Name, check.Capture, a.Object())
		}
	}
	return result
}

// elementArgMethods take elements, so target maps among their arguments
// resolve against the check's document.
var elementArgMethods = map[string]bool{
	"in": true, "include": true, "includes": true, "contain": true, "contains": true,
}

func stepArgs(doc *dom.Document, step parser.Step, resolver *env.Resolver) ([]any, error) {
	args := make([]any, len(step.Args))
	for i, arg := range step.Args {
		if elementArgMethods[step.Method] {
			if t, ok := parser.IsTargetMap(arg); ok {
				t = t.Map(resolver.Resolve)
				el, err := t.Resolve(doc)
				if err != nil {
					return nil, fmt.Errorf("%s argument: %w", step.Method, err)
				}
				args[i] = el
				continue
			}
		}
		args[i] = resolver.ResolveValue(arg)
	}
	return args, nil
}

func applyAction(el *dom.Element, action parser.Action, resolver *env.Resolver) error {
	if el == nil {
		return fmt.Errorf("needs an element target")
	}
	switch action.Kind {
	case parser.ActionFocus:
		el.Focus()
	case parser.ActionBlur:
		el.Blur()
	case parser.ActionClick:
		click(el)
	case parser.ActionSetAttribute:
		value, _ := action.Value.(string)
		el.SetAttribute(resolver.Resolve(action.Name), resolver.Resolve(value))
	case parser.ActionRemoveAttribute:
		el.RemoveAttribute(resolver.Resolve(action.Name))
	case parser.ActionSetValue:
		return setValue(el, resolver.ResolveValue(action.Value))
	case parser.ActionSetIndeterminate:
		on, ok := action.Value.(bool)
		if !ok {
			return fmt.Errorf("expects true or false, got %v", action.Value)
		}
		el.SetIndeterminate(on)
	default:
		return fmt.Errorf("unknown action")
	}
	return nil
}

// click focuses the element and toggles checkable inputs. Disabled
// elements ignore it.
func click(el *dom.Element) {
	if el.Disabled() {
		return
	}
	if el.IsFocusable() {
		el.Focus()
	}
	if el.TagName() != "input" {
		return
	}
	switch el.Type() {
	case "checkbox":
		el.SetIndeterminate(false)
		el.SetChecked(!el.Checked())
	case "radio":
		el.SetChecked(true)
	}
}

func setValue(el *dom.Element, v any) error {
	list, isList := v.([]any)
	if !isList {
		el.SetValue(fmt.Sprint(v))
		return nil
	}
	if el.TagName() != "select" || !el.Multiple() {
		return fmt.Errorf("a list of values needs a multiple select")
	}
	want := make(map[string]bool, len(list))
	for _, item := range list {
		want[fmt.Sprint(item)] = true
	}
	for _, opt := range el.Options() {
		opt.ToggleAttribute("selected", want[opt.Value()])
	}
	return nil
}

// matchesPattern supports a single leading or trailing * or both.
func matchesPattern(name, pattern string) bool {
	switch {
	case pattern == "" || pattern == "*":
		return true
	case len(pattern) > 1 && strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
		return strings.Contains(name, pattern[1:len(pattern)-1])
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}
	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}

// compareSnapshot checks the target's markup, after actions, against the
// snapshot stored under the check name.
func (r *Runner) compareSnapshot(path string, check *parser.Check, el *dom.Element) *StepResult {
	step := &StepResult{Step: "snapshot", Line: check.Line}
	if el == nil {
		step.Err = errors.New("snapshot: target is not in the document")
		return step
	}

	res, err := r.snapshots.Compare(path, check.Name, el.OuterHTML())
	if err != nil {
		step.Err = err
		return step
	}
	if res.Status == snapshot.Created || res.Status == snapshot.Updated {
		r.logger.Info("snapshot written",
			zap.String("check", check.Name),
			zap.Stringer("status", res.Status),
			zap.String("file", snapshot.Path(path)))
	}
	if !res.Passed() {
		step.Err = &chain.AssertionError{
			Kind:      chain.KindMismatch,
			Message:   "expected markup to match the stored snapshot",
			Expected:  res.Expected,
			Actual:    res.Actual,
			HasValues: true,
		}
		return step
	}
	step.Passed = true
	return step
}
