package chain

import (
	"sort"
	"sync"
)

// PropertyFunc implements a word used without arguments.
type PropertyFunc func(a *Assertion)

// MethodFunc implements a word called with arguments.
type MethodFunc func(a *Assertion, args ...any)

type entry struct {
	property PropertyFunc
	method   MethodFunc
}

// Registry is the table of vocabulary words. It is safe for concurrent use;
// registration normally happens once before chains are evaluated.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns a registry holding the built-in vocabulary.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	registerBuiltins(r)
	return r
}

// NewEmptyRegistry returns a registry without any words.
func NewEmptyRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

func (r *Registry) lookup(name string) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

func (r *Registry) set(name string, e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = e
}

// AddProperty registers a word used without arguments, replacing any
// previous definition.
func (r *Registry) AddProperty(name string, fn PropertyFunc) {
	r.set(name, entry{property: fn})
}

// AddMethod registers a word called with arguments, replacing any previous
// definition.
func (r *Registry) AddMethod(name string, fn MethodFunc) {
	r.set(name, entry{method: fn})
}

// AddChainableMethod registers a word usable both ways: chaining runs when
// the word is read as a property, method when it is called.
func (r *Registry) AddChainableMethod(name string, method MethodFunc, chaining PropertyFunc) {
	r.set(name, entry{property: chaining, method: method})
}

// OverwriteProperty replaces the property name with the result of wrap,
// which receives the previous implementation.
func (r *Registry) OverwriteProperty(name string, wrap func(super PropertyFunc) PropertyFunc) {
	e, _ := r.lookup(name)
	e.property = wrap(superProperty(name, e.property))
	r.set(name, e)
}

// OverwriteMethod replaces the method name with the result of wrap, which
// receives the previous implementation.
func (r *Registry) OverwriteMethod(name string, wrap func(super MethodFunc) MethodFunc) {
	e, _ := r.lookup(name)
	e.method = wrap(superMethod(name, e.method))
	r.set(name, e)
}

// OverwriteChainableMethod replaces both behaviours of a chainable method.
func (r *Registry) OverwriteChainableMethod(name string, wrapMethod func(super MethodFunc) MethodFunc, wrapChaining func(super PropertyFunc) PropertyFunc) {
	e, _ := r.lookup(name)
	e.method = wrapMethod(superMethod(name, e.method))
	e.property = wrapChaining(superProperty(name, e.property))
	r.set(name, e)
}

// superProperty returns prev, or a handler failing with an unknown-word
// error when there was no previous definition.
func superProperty(name string, prev PropertyFunc) PropertyFunc {
	if prev != nil {
		return prev
	}
	return func(a *Assertion) {
		a.Fail("unknown assertion %q for #{this}", name)
	}
}

func superMethod(name string, prev MethodFunc) MethodFunc {
	if prev != nil {
		return prev
	}
	return func(a *Assertion, _ ...any) {
		a.Fail("unknown assertion %q for #{this}", name)
	}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// IsProperty reports whether name can be read without arguments.
func (r *Registry) IsProperty(name string) bool {
	e, ok := r.lookup(name)
	return ok && e.property != nil
}

// IsMethod reports whether name can be called with arguments.
func (r *Registry) IsMethod(name string) bool {
	e, ok := r.lookup(name)
	return ok && e.method != nil
}

// Names returns every registered word in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
