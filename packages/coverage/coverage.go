// Package coverage reports which assertion words a set of check files
// exercises.
package coverage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/domspec/packages/chain"
	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
)

// Word kinds.
const (
	KindProperty  = "property"
	KindMethod    = "method"
	KindChainable = "chainable"
)

// Report is a vocabulary coverage report.
type Report struct {
	TotalWords      int                    `json:"totalWords" yaml:"totalWords"`
	CoveredWords    int                    `json:"coveredWords" yaml:"coveredWords"`
	CoveragePercent float64                `json:"coveragePercent" yaml:"coveragePercent"`
	ByKind          map[string]*KindReport `json:"byKind,omitempty" yaml:"byKind,omitempty"`
	Words           []WordStatus           `json:"words" yaml:"words"`
	Unknown         []string               `json:"unknown,omitempty" yaml:"unknown,omitempty"`
}

// KindReport is the coverage of one kind of word.
type KindReport struct {
	Kind            string  `json:"kind" yaml:"kind"`
	TotalWords      int     `json:"totalWords" yaml:"totalWords"`
	CoveredWords    int     `json:"coveredWords" yaml:"coveredWords"`
	CoveragePercent float64 `json:"coveragePercent" yaml:"coveragePercent"`
}

// WordStatus is the coverage of a single word.
type WordStatus struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Covered bool   `json:"covered" yaml:"covered"`
	Uses    int    `json:"uses" yaml:"uses"`
}

// Analyzer counts word uses across check files.
type Analyzer struct {
	registry *chain.Registry
	uses     map[string]int
}

// NewAnalyzer measures coverage of every word in reg except the language
// chains, which assert nothing.
func NewAnalyzer(reg *chain.Registry) *Analyzer {
	return &Analyzer{
		registry: reg,
		uses:     make(map[string]int),
	}
}

// AddFile counts the words used by the expectations of file.
func (a *Analyzer) AddFile(file *parser.File) {
	for _, check := range file.Checks {
		for _, step := range check.Expect {
			for _, word := range step.Path {
				a.uses[word]++
			}
			if step.Method != "" {
				a.uses[step.Method]++
			}
		}
	}
}

func (a *Analyzer) kind(name string) string {
	switch prop, method := a.registry.IsProperty(name), a.registry.IsMethod(name); {
	case prop && method:
		return KindChainable
	case method:
		return KindMethod
	default:
		return KindProperty
	}
}

// Analyze builds the report from the files added so far.
func (a *Analyzer) Analyze() *Report {
	chains := make(map[string]bool, len(chain.LanguageChains))
	for _, word := range chain.LanguageChains {
		chains[word] = true
	}

	report := &Report{
		ByKind: make(map[string]*KindReport),
		Words:  make([]WordStatus, 0),
	}
	for _, name := range a.registry.Names() {
		if chains[name] {
			continue
		}
		status := WordStatus{
			Name:    name,
			Kind:    a.kind(name),
			Uses:    a.uses[name],
			Covered: a.uses[name] > 0,
		}
		report.Words = append(report.Words, status)
		report.TotalWords++

		kr, ok := report.ByKind[status.Kind]
		if !ok {
			kr = &KindReport{Kind: status.Kind}
			report.ByKind[status.Kind] = kr
		}
		kr.TotalWords++
		if status.Covered {
			report.CoveredWords++
			kr.CoveredWords++
		}
	}

	for word := range a.uses {
		if !a.registry.Has(word) {
			report.Unknown = append(report.Unknown, word)
		}
	}
	sort.Strings(report.Unknown)

	report.CoveragePercent = percent(report.CoveredWords, report.TotalWords)
	for _, kr := range report.ByKind {
		kr.CoveragePercent = percent(kr.CoveredWords, kr.TotalWords)
	}
	return report
}

func percent(covered, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(covered) / float64(total) * 100
}

// FormatConsole formats the report for the terminal.
func (r *Report) FormatConsole() string {
	var sb strings.Builder

	sb.WriteString("\nVocabulary Coverage Report\n")
	sb.WriteString("==========================\n\n")

	fmt.Fprintf(&sb, "Total Words:   %d\n", r.TotalWords)
	fmt.Fprintf(&sb, "Covered Words: %d\n", r.CoveredWords)
	fmt.Fprintf(&sb, "Coverage:      %.1f%%\n\n", r.CoveragePercent)

	if len(r.ByKind) > 0 {
		sb.WriteString("Coverage by Kind:\n")
		kinds := make([]string, 0, len(r.ByKind))
		for kind := range r.ByKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			kr := r.ByKind[kind]
			fmt.Fprintf(&sb, "  %s: %d/%d (%.1f%%)\n", kind, kr.CoveredWords, kr.TotalWords, kr.CoveragePercent)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Words:\n")
	for _, w := range r.Words {
		mark := "[ ]"
		if w.Covered {
			mark = "[x]"
		}
		fmt.Fprintf(&sb, "  %s %s", mark, w.Name)
		if w.Uses > 1 {
			fmt.Fprintf(&sb, " (x%d)", w.Uses)
		}
		sb.WriteString("\n")
	}

	if len(r.Unknown) > 0 {
		fmt.Fprintf(&sb, "\nUnknown words: %s\n", strings.Join(r.Unknown, ", "))
	}
	return sb.String()
}

// FormatJSON formats the report as JSON.
func (r *Report) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatYAML formats the report as YAML.
func (r *Report) FormatYAML() (string, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
