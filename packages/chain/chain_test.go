package chain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a TestingT that keeps reported failures.
type recorder struct {
	helpers  int
	failures []string
}

func (r *recorder) Helper() { r.helpers++ }

func (r *recorder) Errorf(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func TestAssert_Polarity(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		negate  bool
		ok      bool
		wantErr bool
	}{
		{"pass", false, true, false},
		{"fail", false, false, true},
		{"negated pass", true, false, false},
		{"negated fail", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := reg.Expect(nil, "subject")
			a.Flags.Negate = tt.negate
			a.Assert(tt.ok, "expected #{this} to be fine", "expected #{this} not to be fine", nil, nil)
			assert.Equal(t, tt.wantErr, a.Failed())
		})
	}
}

func TestAssert_MessageTemplates(t *testing.T) {
	reg := NewRegistry()
	rec := &recorder{}

	a := reg.Expect(rec, 3)
	a.Assert(false, "expected #{this} to equal #{exp} but got #{act}", "", 4, 3)

	require.Len(t, rec.failures, 1)
	assert.Equal(t, 1, rec.helpers)
	assert.Contains(t, rec.failures[0], "expected 3 to equal 4 but got 3")

	var ae *AssertionError
	require.True(t, errors.As(a.Err(), &ae))
	assert.Equal(t, KindMismatch, ae.Kind)
	assert.Equal(t, 4, ae.Expected)
	assert.True(t, errors.Is(a.Err(), ErrMismatch))
}

func TestFail_IgnoresNegation(t *testing.T) {
	a := NewRegistry().Expect(nil, 42)
	a.Get("not").Call("match", "/x/")

	require.Error(t, a.Err())
	assert.True(t, errors.Is(a.Err(), ErrTypeMismatch))
	assert.Contains(t, a.Err().Error(), "expected 42 to be a string")
}

func TestChain_StopsAfterFirstFailure(t *testing.T) {
	rec := &recorder{}
	a := NewRegistry().Expect(rec, "abc")
	a.Call("equal", "x").Call("equal", "y").Get("ok")

	assert.Len(t, rec.failures, 1)
	assert.Contains(t, a.Err().Error(), `"x"`)
}

func TestUnknownWords(t *testing.T) {
	reg := NewRegistry()

	a := reg.Expect(nil, 1).Get("shiny")
	assert.True(t, errors.Is(a.Err(), ErrTypeMismatch))
	assert.Contains(t, a.Err().Error(), `unknown assertion "shiny"`)

	a = reg.Expect(nil, 1).Get("equal")
	assert.Contains(t, a.Err().Error(), "is a method")

	a = reg.Expect(nil, 1).Call("ok", true)
	assert.Contains(t, a.Err().Error(), "is a property")
}

func TestChainPath(t *testing.T) {
	reg := NewRegistry()
	assert.NoError(t, reg.Expect(nil, "x").Chain("to.be.ok").Err())
	assert.Error(t, reg.Expect(nil, "").Chain("to.be.ok").Err())
	assert.NoError(t, reg.Expect(nil, "").Chain("to.not.be.ok").Err())
}

func TestOverwrite_ReceivesSuper(t *testing.T) {
	reg := NewRegistry()
	var calls []string

	reg.OverwriteProperty("empty", func(super PropertyFunc) PropertyFunc {
		return func(a *Assertion) {
			if n, ok := a.Object().(int); ok {
				calls = append(calls, "override")
				a.Assert(n == 0, "expected #{this} to be zero", "expected #{this} not to be zero", nil, nil)
				return
			}
			calls = append(calls, "super")
			super(a)
		}
	})

	assert.NoError(t, reg.Expect(nil, 0).Get("empty").Err())
	assert.NoError(t, reg.Expect(nil, "").Get("empty").Err())
	assert.Error(t, reg.Expect(nil, []int{1}).Get("empty").Err())
	assert.Equal(t, []string{"override", "super", "super"}, calls)
}

func TestOverwrite_MissingSuperFails(t *testing.T) {
	reg := NewRegistry()
	reg.OverwriteMethod("style", func(super MethodFunc) MethodFunc {
		return func(a *Assertion, args ...any) { super(a, args...) }
	})

	a := reg.Expect(nil, 1).Call("style", "display: none")
	assert.True(t, errors.Is(a.Err(), ErrTypeMismatch))
}

func TestOverwriteChainableMethod(t *testing.T) {
	reg := NewRegistry()
	reg.OverwriteChainableMethod("contain",
		func(super MethodFunc) MethodFunc {
			return func(a *Assertion, args ...any) {
				if args[0] == "magic" {
					a.Assert(true, "", "", nil, nil)
					return
				}
				super(a, args...)
			}
		},
		func(super PropertyFunc) PropertyFunc { return super },
	)

	assert.NoError(t, reg.Expect(nil, 1).Call("contain", "magic").Err())
	assert.NoError(t, reg.Expect(nil, "abc").Call("contain", "b").Err())

	a := reg.Expect(nil, []string{"a", "b"})
	a.Get("contain").Call("members", []string{"b"})
	assert.NoError(t, a.Err())
	assert.True(t, a.Flags.Contains)
}

func TestRegistry_Introspection(t *testing.T) {
	reg := NewRegistry()
	reg.AddChainableMethod("twice", func(*Assertion, ...any) {}, func(*Assertion) {})

	assert.True(t, reg.Has("twice"))
	assert.True(t, reg.IsProperty("twice"))
	assert.True(t, reg.IsMethod("twice"))
	assert.False(t, reg.IsMethod("ok"))
	assert.Contains(t, reg.Names(), "members")
	assert.Empty(t, NewEmptyRegistry().Names())
}

func TestBuiltins(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		subject any
		run     func(a *Assertion) *Assertion
		wantErr bool
	}{
		{"equal string", "submit", func(a *Assertion) *Assertion { return a.Call("equals", "submit") }, false},
		{"equal numbers across types", 5.0, func(a *Assertion) *Assertion { return a.Call("eq", 5) }, false},
		{"equal string is not a number", "5", func(a *Assertion) *Assertion { return a.Call("equal", 5) }, true},
		{"equal sequences", []string{"a"}, func(a *Assertion) *Assertion { return a.Call("equal", []any{"a"}) }, false},
		{"not equal", "submit", func(a *Assertion) *Assertion { return a.Get("not").Call("equal", "button") }, false},
		{"include substring", "submit", func(a *Assertion) *Assertion { return a.Call("contains", "sub") }, false},
		{"not include substring", "submit", func(a *Assertion) *Assertion { return a.Get("not").Call("contain", "butt") }, false},
		{"include element", []int{1, 2}, func(a *Assertion) *Assertion { return a.Call("include", 2) }, false},
		{"include map subset", map[string]any{"a": 1, "b": 2}, func(a *Assertion) *Assertion { return a.Call("include", map[string]any{"a": 1}) }, false},
		{"include bad subject", 3, func(a *Assertion) *Assertion { return a.Call("include", 3) }, true},
		{"members same", []string{"second", "third"}, func(a *Assertion) *Assertion { return a.Call("members", []string{"third", "second"}) }, false},
		{"members extra", []string{"a", "b", "c"}, func(a *Assertion) *Assertion { return a.Call("members", []string{"a", "b"}) }, true},
		{"contains members", []string{"a", "b", "c"}, func(a *Assertion) *Assertion { return a.Get("contains").Call("members", []string{"a", "b"}) }, false},
		{"match literal case-insensitive", "Text Content", func(a *Assertion) *Assertion { return a.Call("matches", "/content$/i") }, false},
		{"match regexp", "Text Content", func(a *Assertion) *Assertion { return a.Call("match", regexp.MustCompile(`^Text Content$`)) }, false},
		{"match fails", "Text", func(a *Assertion) *Assertion { return a.Call("match", "^x") }, true},
		{"empty string", "", func(a *Assertion) *Assertion { return a.Get("empty") }, false},
		{"empty on number", 1, func(a *Assertion) *Assertion { return a.Get("not").Get("empty") }, true},
		{"exist", 0, func(a *Assertion) *Assertion { return a.Get("exist") }, false},
		{"null", nil, func(a *Assertion) *Assertion { return a.Get("null") }, false},
		{"typed nil is null", (*int)(nil), func(a *Assertion) *Assertion { return a.Get("null") }, false},
		{"ok empty slice", []string{}, func(a *Assertion) *Assertion { return a.Get("ok") }, false},
		{"ok zero", 0, func(a *Assertion) *Assertion { return a.Get("not").Get("ok") }, false},
		{"true", true, func(a *Assertion) *Assertion { return a.Get("true") }, false},
		{"a string", "x", func(a *Assertion) *Assertion { return a.Call("a", "string") }, false},
		{"an array", []int{}, func(a *Assertion) *Assertion { return a.Call("an", "array") }, false},
		{"a number", 1.5, func(a *Assertion) *Assertion { return a.Get("not").Call("a", "string") }, false},
		{"lengthOf", "Text", func(a *Assertion) *Assertion { return a.Call("lengthOf", 4) }, false},
		{"attribute on map", map[string]string{"type": "submit"}, func(a *Assertion) *Assertion {
			return a.Call("attribute", "type").Call("equals", "submit")
		}, false},
		{"attribute missing", map[string]string{}, func(a *Assertion) *Assertion { return a.Call("attribute", "type") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(reg.Expect(nil, tt.subject)).Err()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	assert.Equal(t, "null", Inspect(nil))
	assert.Equal(t, `"a"`, Inspect("a"))
	assert.Equal(t, `[ "a", 1 ]`, Inspect([]any{"a", 1}))
	assert.Equal(t, `{ a: 1, b: "x" }`, Inspect(map[string]any{"b": "x", "a": 1}))
	assert.Equal(t, "boom", Inspect(errors.New("boom")))

	long := Inspect(strings.Repeat("é", 120))
	assert.True(t, utf8.ValidString(long), long)
	assert.True(t, strings.HasSuffix(long, "..."))
	assert.LessOrEqual(t, len(long), maxInspectLength+len("..."))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "a...", Truncate("aé", 2), "a cut inside a rune backs off to its start")
	assert.Equal(t, "日...", Truncate("日本", 4))
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{nil, "", 0, 0.0, false} {
		assert.False(t, Truthy(v), "%#v", v)
	}
	for _, v := range []any{"x", 5, true, []string{}, map[string]int{}} {
		assert.True(t, Truthy(v), "%#v", v)
	}
}

func TestCompilePattern(t *testing.T) {
	re, err := CompilePattern("/^a.b$/s")
	require.NoError(t, err)
	assert.True(t, re.MatchString("a\nb"))

	_, err = CompilePattern("/x/q")
	assert.Error(t, err)

	_, err = CompilePattern(3)
	assert.Error(t, err)
}
