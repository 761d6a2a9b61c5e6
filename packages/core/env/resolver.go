package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/domspec/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc receives resolution warnings such as unknown variables.
type WarnFunc func(format string, args ...any)

// Resolver substitutes placeholders. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	captures  map[string]any
	funcs     *builtin.Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
		funcs:     builtin.NewRegistry(),
	}
}

func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetCapture stores a value captured by a check under both "check.name"
// and the bare name.
func (r *Resolver) SetCapture(checkName, captureName string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if checkName != "" {
		r.captures[checkName+"."+captureName] = value
	}
	r.captures[captureName] = value
}

func (r *Resolver) GetCapture(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.captures[name]
	return v, ok
}

// lookup returns the value of a placeholder expression. Captures shadow
// variables.
func (r *Resolver) lookup(expr string) (any, bool) {
	if name, ok := strings.CutPrefix(expr, "$"); ok {
		v, set := os.LookupEnv(name)
		return v, set
	}
	if strings.Contains(expr, "(") {
		v, ok, err := r.funcs.Call(expr)
		if err != nil {
			r.warn("%v", err)
			return nil, false
		}
		return v, ok
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.captures[expr]; ok {
		return v, true
	}
	v, ok := r.variables[expr]
	return v, ok
}

// Resolve substitutes every placeholder in input.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := r.lookup(expr); ok {
			return fmt.Sprintf("%v", v)
		}
		r.warn("unresolved variable: %s", expr)
		return match
	})
}

// ResolveValue resolves placeholders in the strings of a decoded YAML
// value. A string that is exactly one placeholder keeps the type of the
// value it names, so {{count}} may resolve to a number.
func (r *Resolver) ResolveValue(v any) any {
	switch x := v.(type) {
	case string:
		if m := variablePattern.FindStringSubmatchIndex(x); m != nil && m[0] == 0 && m[1] == len(x) {
			if val, ok := r.lookup(strings.TrimSpace(x[m[2]:m[3]])); ok {
				return val
			}
		}
		return r.Resolve(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = r.ResolveValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = r.ResolveValue(item)
		}
		return out
	}
	return v
}

// HasUnresolvedVariables reports whether input names any placeholder the
// resolver cannot satisfy.
func (r *Resolver) HasUnresolvedVariables(input string) bool {
	return len(r.GetUnresolvedVariables(input)) > 0
}

// GetUnresolvedVariables lists the unresolvable placeholder expressions of
// input in order of appearance, or nil.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	var missing []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if _, ok := r.lookup(expr); !ok {
			missing = append(missing, expr)
		}
	}
	return missing
}

func (r *Resolver) HasVariable(name string) bool {
	_, ok := r.GetVariable(name)
	return ok
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.captures[name]; ok {
		return v, true
	}
	v, ok := r.variables[name]
	return v, ok
}

// Clone copies the variables and captures so a parallel check can resolve
// without seeing later captures.
func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	clone.warnFunc = r.warnFunc
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	for k, v := range r.captures {
		clone.captures[k] = v
	}
	return clone
}
