package runner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
	"github.com/abdul-hamid-achik/domspec/packages/snapshot"
)

const formPage = `<html><body>
<form data-testid="form">
  <label for="user">User</label>
  <input id="user" name="user" data-testid="user" type="text" placeholder="name">
  <input data-testid="agree" name="agree" type="checkbox">
  <select data-testid="colors" name="colors" multiple>
    <option value="red">Red</option><option value="green">Green</option><option value="blue">Blue</option>
  </select>
  <button data-testid="submit" type="submit" disabled>Send</button>
</form>
</body></html>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runChecks(t *testing.T, cfg *Config, content string, opts ...Option) *RunResult {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "form.html", formPage)
	path := writeFile(t, dir, "form.domspec.yaml", content)

	result, err := NewRunner(cfg, opts...).RunFile(context.Background(), path)
	require.NoError(t, err)
	return result
}

func TestNewRunner(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		r := NewRunner(nil)
		assert.NotNil(t, r.registry)
		assert.NotNil(t, r.fetcher)
		assert.NotNil(t, r.resolver)
		assert.True(t, r.registry.Has("visible"))
	})

	t.Run("with custom registry", func(t *testing.T) {
		reg := chain.NewRegistry()
		r := NewRunner(&Config{Environment: "test"}, WithRegistry(reg))
		assert.Same(t, reg, r.registry)
		assert.Equal(t, "test", r.config.Environment)
		assert.False(t, r.registry.Has("visible"))
	})
}

func TestRunner_RunFile(t *testing.T) {
	result := runChecks(t, nil, `name: Form
page: form.html
checks:
  - name: submit is disabled
    target: {testid: submit}
    expect:
      - to.be.disabled
      - and.to.have.attribute: type
      - that.equals: submit

  - name: submit is enabled
    target: {testid: submit}
    expect: [to.be.enabled]

  - name: form contains the button
    target: {testid: form}
    expect:
      - to.contain: {testid: submit}
`)

	assert.Equal(t, "Form", result.Name)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)

	first := result.Results[0]
	assert.True(t, first.Passed)
	assert.Equal(t, "testid=submit", first.Target)
	require.Len(t, first.Steps, 3)
	assert.Equal(t, "and.to.have.attribute(1 args)", first.Steps[1].Step)

	failed := result.Results[1]
	assert.False(t, failed.Passed)
	require.NotNil(t, failed.Failure())
	assert.True(t, errors.Is(failed.Steps[0].Err, chain.ErrMismatch))
	assert.Contains(t, failed.Message(), "to be enabled")

	assert.True(t, result.Results[2].Passed)
	assert.Empty(t, result.Results[2].Message())
}

func TestRunner_InlineHTMLAndMissingTarget(t *testing.T) {
	result := runChecks(t, nil, `html: <main><p data-testid="msg">Hello {{who}}</p></main>
variables:
  who: world
checks:
  - name: greeting text
    target: {testid: msg}
    expect:
      - to.have.text
      - that.equals: Hello world

  - name: nothing targeted
    target: none
    expect: [not.to.be.in.document]

  - name: unknown target
    target: {testid: nope}
    expect: [to.be.visible]
`)

	assert.True(t, result.Results[0].Passed)
	assert.True(t, result.Results[1].Passed)

	unknown := result.Results[2]
	assert.False(t, unknown.Passed)
	assert.ErrorContains(t, unknown.Error, "target testid=nope")
	assert.Empty(t, unknown.Steps)
}

func TestRunner_Actions(t *testing.T) {
	result := runChecks(t, nil, `page: form.html
variables:
  name: jane
checks:
  - name: typing a name
    target: {testid: user}
    actions:
      - focus
      - set-value: "{{name}}"
      - remove-attribute: placeholder
      - set-attribute: {name: aria-invalid, value: "true"}
    expect:
      - to.have.focus
      - to.be.invalid
      - to.have.value
      - that.equals: jane

  - name: clicking the checkbox
    target: {testid: agree}
    actions: [click]
    expect: [to.be.checked]

  - name: clicking a disabled button
    target: {testid: submit}
    actions: [click]
    expect: [not.to.have.focus]

  - name: multiple select
    target: {testid: colors}
    actions:
      - set-value: [red, blue]
    expect:
      - to.have.attribute: multiple

  - name: actions do not leak between checks
    target: {testid: agree}
    expect: [not.to.be.checked]
`)

	for _, res := range result.Results {
		assert.True(t, res.Passed, "%s: %s", res.Name, res.Message())
	}
}

func TestRunner_SetValueListNeedsMultipleSelect(t *testing.T) {
	result := runChecks(t, nil, `page: form.html
checks:
  - name: list into text input
    target: {testid: user}
    actions:
      - set-value: [a, b]
    expect: [to.be.visible]
`)

	require.Len(t, result.Results, 1)
	assert.ErrorContains(t, result.Results[0].Error, "multiple select")
}

func TestRunner_Captures(t *testing.T) {
	result := runChecks(t, nil, `page: form.html
checks:
  - name: read type
    target: {testid: submit}
    expect:
      - to.have.attribute: type
    capture: kind

  - name: use type
    depends: [read type]
    target: {xpath: "//button[@type='{{kind}}']"}
    expect:
      - to.have.attribute: type
      - that.equals: "{{read type.kind}}"
`)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "submit", result.Results[0].Captures["kind"])
	assert.True(t, result.Results[1].Passed, result.Results[1].Message())
}

func TestRunner_WithSkip(t *testing.T) {
	result := runChecks(t, nil, `page: form.html
checks:
  - name: later
    skip: not ready
    expect: [to.be.visible]
  - name: now
    expect: [to.be.visible]
`)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, "not ready", result.Results[0].SkipReason)
}

func TestRunner_Only(t *testing.T) {
	result := runChecks(t, nil, `page: form.html
checks:
  - name: a
    expect: [to.be.visible]
  - name: b
    only: true
    expect: [to.be.visible]
`)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "filtered out", result.Results[0].SkipReason)
}

func TestRunner_TopologicalSort_CircularDependency(t *testing.T) {
	_, err := topologicalSort([]*parser.Check{
		{Name: "a", Depends: []string{"b"}},
		{Name: "b", Depends: []string{"a"}},
	})
	assert.True(t, errors.Is(err, ErrCircularDependency))
}

func TestRunner_DependencyOrder(t *testing.T) {
	result := runChecks(t, nil, `page: form.html
checks:
  - name: third
    depends: [second]
    expect: [to.be.visible]
  - name: first
    expect: [to.be.visible]
  - name: second
    depends: [first]
    expect: [to.be.visible]
`)

	var names []string
	for _, res := range result.Results {
		names = append(names, res.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestRunner_FailedDependencySkips(t *testing.T) {
	result := runChecks(t, nil, `page: form.html
checks:
  - name: broken
    target: {testid: submit}
    expect: [to.be.enabled]
  - name: after broken
    depends: [broken]
    expect: [to.be.visible]
`)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Contains(t, result.Results[1].SkipReason, `"broken"`)
}

func TestRunner_NameFilter(t *testing.T) {
	result := runChecks(t, &Config{NameFilter: "login*"}, `page: form.html
checks:
  - name: login works
    expect: [to.be.visible]
  - name: logout works
    expect: [to.be.visible]
`)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Skipped)
}

func TestRunner_TagsFilter(t *testing.T) {
	result := runChecks(t, &Config{TagsFilter: []string{"smoke"}}, `page: form.html
checks:
  - name: a
    tags: [smoke]
    expect: [to.be.visible]
  - name: b
    tags: [slow]
    expect: [to.be.visible]
  - name: c
    expect: [to.be.visible]
`)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Skipped)
}

func TestRunner_Bail(t *testing.T) {
	result := runChecks(t, &Config{Bail: true}, `page: form.html
checks:
  - name: ok
    expect: [to.be.visible]
  - name: fails
    target: {testid: submit}
    expect: [to.be.enabled]
  - name: never runs
    expect: [to.be.visible]
`)

	assert.Len(t, result.Results, 2)
	assert.Equal(t, 1, result.Failed)
}

func TestRunner_Parallel(t *testing.T) {
	result := runChecks(t, &Config{Parallel: true, Concurrency: 2}, `page: form.html
checks:
  - name: one
    target: {testid: user}
    actions: [focus]
    expect: [to.have.focus]
  - name: two
    target: {testid: agree}
    actions: [click]
    expect: [to.be.checked]
  - name: three
    target: {testid: submit}
    expect: [to.be.disabled]
  - name: four
    target: {testid: agree}
    expect: [not.to.be.checked]
`)

	require.Len(t, result.Results, 4)
	assert.Equal(t, 4, result.Passed)
	assert.Equal(t, "one", result.Results[0].Name)
	assert.Equal(t, "four", result.Results[3].Name)
}

func TestRunner_URL(t *testing.T) {
	var healthChecks atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if healthChecks.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "session=abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(formPage))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dir := t.TempDir()
	writeFile(t, dir, ".env", "BASE_URL="+server.URL+"\n")
	path := writeFile(t, dir, "remote.domspec.yaml", `url: "{{BASE_URL}}/login"
headers:
  Cookie: session={{session}}
variables:
  session: abc
waitFor:
  url: "{{BASE_URL}}/health"
  status: 204
  interval: 10
  timeout: 5000
checks:
  - name: served page
    target: {testid: submit}
    expect: [to.be.disabled]
`)

	result, err := NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.GreaterOrEqual(t, healthChecks.Load(), int32(3))
}

func TestRunner_URLRejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := writeFile(t, dir, "api.domspec.yaml", "url: "+server.URL+"\nchecks:\n  - name: a\n    expect: [ok]\n")

	_, err := NewRunner(nil).RunFile(context.Background(), path)
	assert.ErrorContains(t, err, "not an HTML page")
}

func TestRunner_WaitForTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	r := NewRunner(nil)
	err := r.waitForService(context.Background(), &parser.WaitFor{URL: server.URL, Timeout: 50, Interval: 10}, func(s string) string { return s })
	assert.ErrorContains(t, err, "got status 503, expected 200")
}

func TestRunner_Hooks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "form.html", formPage)
	writeFile(t, dir, "setup.sh", "#!/bin/sh\necho ready > before.txt\n")
	require.NoError(t, os.Chmod(filepath.Join(dir, "setup.sh"), 0o755))
	path := writeFile(t, dir, "hooks.domspec.yaml", `page: form.html
before: [./setup.sh]
after: ["echo {{word}} > after.txt"]
variables:
  word: done
checks:
  - name: a
    expect: [to.be.visible]
`)

	result, err := NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)

	before, err := os.ReadFile(filepath.Join(dir, "before.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ready\n", string(before))

	after, err := os.ReadFile(filepath.Join(dir, "after.txt"))
	require.NoError(t, err)
	assert.Equal(t, "done\n", string(after))
}

func TestRunner_BeforeHookFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hooks.domspec.yaml", `html: <p>x</p>
before: ["exit 3"]
checks:
  - name: a
    expect: [to.be.visible]
`)

	_, err := NewRunner(nil).RunFile(context.Background(), path)
	assert.ErrorContains(t, err, "before hook failed")
}

func TestRunner_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	runChecks(t, nil, `page: form.html
checks:
  - name: a
    expect: [to.be.visible]
  - name: b
    expect: [to.be.visible]
`, WithLogger(zap.New(core)))

	finished := logs.FilterMessage("check finished")
	assert.Equal(t, 2, finished.Len())
	assert.Equal(t, "runner", finished.All()[0].LoggerName)
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name, pattern string
		want          bool
	}{
		{"login works", "", true},
		{"login works", "*", true},
		{"login works", "login*", true},
		{"login works", "*works", true},
		{"login works", "*in w*", true},
		{"login works", "logout*", false},
		{"login works", "login works", true},
		{"login works", "login", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesPattern(tt.name, tt.pattern), tt.pattern)
	}
}

func TestHasAnyTag(t *testing.T) {
	assert.True(t, hasAnyTag([]string{"smoke", "form"}, []string{"form"}))
	assert.False(t, hasAnyTag([]string{"smoke"}, []string{"slow"}))
	assert.False(t, hasAnyTag(nil, []string{"slow"}))
}

func TestRunner_RunFileParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.domspec.yaml", "page: a.html\nchecks: []\n")

	_, err := NewRunner(nil).RunFile(context.Background(), path)
	assert.True(t, errors.Is(err, ErrParse))
	assert.True(t, errors.Is(err, parser.ErrSchema))
}

func TestRunner_Snapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "form.html", formPage)
	path := writeFile(t, dir, "form.domspec.yaml", `page: form.html
checks:
  - name: submit markup
    target: {testid: submit}
    snapshot: true
    expect: [to.be.disabled]
`)

	result, err := NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 0, result.Passed)
	assert.ErrorIs(t, result.Results[0].Steps[1].Err, snapshot.ErrMissing)

	result, err = NewRunner(&Config{UpdateSnapshots: true}).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)

	data, err := os.ReadFile(filepath.Join(dir, snapshot.Dir, "form"+snapshot.Ext))
	require.NoError(t, err)
	assert.Contains(t, gjson.GetBytes(data, "submit markup").String(), ">Send</button>")

	result, err = NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)

	writeFile(t, dir, "form.html", strings.Replace(formPage, ">Send<", ">Submit<", 1))
	result, err = NewRunner(nil).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	failure := result.Results[0].Failure()
	require.NotNil(t, failure)
	assert.Contains(t, failure.Expected, ">Send</button>")
	assert.Contains(t, failure.Actual, ">Submit</button>")
}
