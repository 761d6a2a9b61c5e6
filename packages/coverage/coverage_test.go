package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
	"github.com/abdul-hamid-achik/domspec/packages/domassert"
)

func testRegistry() *chain.Registry {
	reg := chain.NewEmptyRegistry()
	noop := func(*chain.Assertion) {}
	reg.AddProperty("to", noop)
	reg.AddProperty("visible", noop)
	reg.AddProperty("disabled", noop)
	reg.AddMethod("attribute", func(*chain.Assertion, ...any) {})
	reg.AddChainableMethod("class", func(*chain.Assertion, ...any) {}, noop)
	return reg
}

const coverageChecks = `html: <button disabled>Go</button>
checks:
  - name: one
    expect:
      - to.be.visible
      - to.have.attribute: type
  - name: two
    expect:
      - to.be.visible
      - to.be.shiny
`

func analyze(t *testing.T, reg *chain.Registry) *Report {
	t.Helper()
	file, err := parser.Parse([]byte(coverageChecks), "cov.domspec.yaml")
	require.NoError(t, err)

	a := NewAnalyzer(reg)
	a.AddFile(file)
	return a.Analyze()
}

func TestAnalyze(t *testing.T) {
	report := analyze(t, testRegistry())

	assert.Equal(t, 4, report.TotalWords, "language chains are not counted")
	assert.Equal(t, 2, report.CoveredWords)
	assert.Equal(t, 50.0, report.CoveragePercent)
	assert.Equal(t, []string{"be", "have", "shiny"}, report.Unknown)

	require.Len(t, report.Words, 4)
	assert.Equal(t, WordStatus{Name: "attribute", Kind: KindMethod, Covered: true, Uses: 1}, report.Words[0])
	assert.Equal(t, WordStatus{Name: "class", Kind: KindChainable}, report.Words[1])
	assert.Equal(t, WordStatus{Name: "disabled", Kind: KindProperty}, report.Words[2])
	assert.Equal(t, WordStatus{Name: "visible", Kind: KindProperty, Covered: true, Uses: 2}, report.Words[3])

	require.Contains(t, report.ByKind, KindProperty)
	assert.Equal(t, 2, report.ByKind[KindProperty].TotalWords)
	assert.Equal(t, 50.0, report.ByKind[KindProperty].CoveragePercent)
	assert.Equal(t, 100.0, report.ByKind[KindMethod].CoveragePercent)
	assert.Equal(t, 0.0, report.ByKind[KindChainable].CoveragePercent)
}

func TestAnalyzeDOMVocabulary(t *testing.T) {
	reg := chain.NewRegistry()
	domassert.Register(reg)

	report := analyze(t, reg)
	assert.Equal(t, []string{"shiny"}, report.Unknown)
	assert.Greater(t, report.TotalWords, report.CoveredWords)
}

func TestAnalyzeEmpty(t *testing.T) {
	report := NewAnalyzer(chain.NewEmptyRegistry()).Analyze()
	assert.Zero(t, report.TotalWords)
	assert.Zero(t, report.CoveragePercent)
}

func TestFormatConsole(t *testing.T) {
	out := analyze(t, testRegistry()).FormatConsole()

	assert.Contains(t, out, "Vocabulary Coverage Report")
	assert.Contains(t, out, "Coverage:      50.0%")
	assert.Contains(t, out, "property: 1/2 (50.0%)")
	assert.Contains(t, out, "[x] visible (x2)")
	assert.Contains(t, out, "[ ] disabled")
	assert.Contains(t, out, "Unknown words: be, have, shiny")
}

func TestFormatJSON(t *testing.T) {
	out, err := analyze(t, testRegistry()).FormatJSON()
	require.NoError(t, err)

	assert.Equal(t, int64(4), gjson.Get(out, "totalWords").Int())
	assert.Equal(t, "attribute", gjson.Get(out, "words.0.name").String())
	assert.Equal(t, int64(2), gjson.Get(out, "byKind.property.totalWords").Int())
}

func TestFormatYAML(t *testing.T) {
	out, err := analyze(t, testRegistry()).FormatYAML()
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 2, decoded.CoveredWords)
	assert.Len(t, decoded.Words, 4)
}
