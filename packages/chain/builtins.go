package chain

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// LanguageChains are the words that only improve readability.
var LanguageChains = []string{
	"to", "be", "been", "is", "that", "which", "and", "has", "have", "with",
	"at", "of", "same", "but", "does", "still", "also",
}

func registerBuiltins(r *Registry) {
	noop := func(*Assertion) {}
	for _, word := range LanguageChains {
		r.AddProperty(word, noop)
	}

	r.AddProperty("not", func(a *Assertion) { a.Flags.Negate = true })

	for _, word := range []string{"a", "an"} {
		r.AddChainableMethod(word, assertType, noop)
	}

	for _, word := range []string{"include", "includes", "contain", "contains"} {
		r.AddChainableMethod(word, assertInclude, func(a *Assertion) { a.Flags.Contains = true })
	}

	r.AddMethod("members", assertMembers)

	for _, word := range []string{"equal", "equals", "eq"} {
		r.AddMethod(word, assertEqual)
	}

	r.AddMethod("match", assertMatch)
	r.AddMethod("matches", assertMatch)
	r.AddMethod("lengthOf", assertLength)

	r.AddProperty("empty", assertEmpty)
	r.AddProperty("exist", func(a *Assertion) {
		a.Assert(!IsNil(a.Object()), "expected #{this} to exist", "expected #{this} to not exist", nil, nil)
	})
	r.AddProperty("ok", func(a *Assertion) {
		a.Assert(Truthy(a.Object()), "expected #{this} to be truthy", "expected #{this} to be falsy", nil, nil)
	})
	r.AddProperty("true", func(a *Assertion) {
		a.Assert(a.Object() == true, "expected #{this} to be true", "expected #{this} to be false", true, a.Object())
	})
	r.AddProperty("false", func(a *Assertion) {
		a.Assert(a.Object() == false, "expected #{this} to be false", "expected #{this} to be true", false, a.Object())
	})
	r.AddProperty("null", func(a *Assertion) {
		a.Assert(IsNil(a.Object()), "expected #{this} to be null", "expected #{this} not to be null", nil, nil)
	})

	r.AddMethod("attribute", assertMapKey)
}

func stringArg(a *Assertion, word string, args []any) (string, bool) {
	if len(args) != 1 {
		a.Fail("%s expects one argument, got %d", word, len(args))
		return "", false
	}
	s, ok := args[0].(string)
	if !ok {
		a.Fail("%s expects a string argument, got %T", word, args[0])
		return "", false
	}
	return s, true
}

func assertType(a *Assertion, args ...any) {
	want, ok := stringArg(a, "a", args)
	if !ok {
		return
	}
	want = strings.ToLower(want)
	got := TypeName(a.Object())
	article := "a "
	if strings.ContainsAny(want[:min(1, len(want))], "aeiou") {
		article = "an "
	}
	a.Assert(got == want || fmt.Sprintf("%T", a.Object()) == want,
		"expected #{this} to be "+article+want,
		"expected #{this} not to be "+article+want,
		want, got)
}

func assertInclude(a *Assertion, args ...any) {
	if len(args) != 1 {
		a.Fail("include expects one argument, got %d", len(args))
		return
	}
	val := args[0]
	obj := a.Object()

	if subject, ok := obj.(string); ok {
		s, ok := val.(string)
		if !ok {
			a.Fail("the given combination of arguments (string and %T) is invalid for include", val)
			return
		}
		a.Assert(strings.Contains(subject, s),
			"expected #{this} to include #{exp}",
			"expected #{this} to not include #{exp}",
			val, nil)
		return
	}

	if items, ok := AsSlice(obj); ok {
		a.Assert(containsValue(items, val),
			"expected #{this} to include #{exp}",
			"expected #{this} to not include #{exp}",
			val, nil)
		return
	}

	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Map {
		want := reflect.ValueOf(val)
		if want.Kind() != reflect.Map {
			a.Fail("the given combination of arguments (map and %T) is invalid for include", val)
			return
		}
		ok := true
		for _, k := range want.MapKeys() {
			got := rv.MapIndex(k)
			if !got.IsValid() || !Equal(got.Interface(), want.MapIndex(k).Interface()) {
				ok = false
				break
			}
		}
		a.Assert(ok,
			"expected #{this} to have properties #{exp}",
			"expected #{this} to not have properties #{exp}",
			val, nil)
		return
	}

	a.Fail("#{this} is not a string, sequence or map and cannot include anything")
}

func assertMembers(a *Assertion, args ...any) {
	if len(args) != 1 {
		a.Fail("members expects one argument, got %d", len(args))
		return
	}
	subject, ok := AsSlice(a.Object())
	if !ok {
		a.Fail("expected #{this} to be a sequence")
		return
	}
	expected, ok := AsSlice(args[0])
	if !ok {
		a.Fail("members expects a sequence, got %T", args[0])
		return
	}

	if a.Flags.Contains {
		a.Assert(everyIn(expected, subject),
			"expected #{this} to be a superset of #{exp}",
			"expected #{this} to not be a superset of #{exp}",
			args[0], a.Object())
		return
	}
	a.Assert(SameMembers(subject, expected),
		"expected #{this} to have the same members as #{exp}",
		"expected #{this} to not have the same members as #{exp}",
		args[0], a.Object())
}

// SameMembers reports whether a and b hold the same elements regardless of
// order.
func SameMembers(a, b []any) bool {
	return len(a) == len(b) && everyIn(a, b) && everyIn(b, a)
}

func everyIn(sub, set []any) bool {
	for _, v := range sub {
		if !containsValue(set, v) {
			return false
		}
	}
	return true
}

func assertEqual(a *Assertion, args ...any) {
	if len(args) != 1 {
		a.Fail("equal expects one argument, got %d", len(args))
		return
	}
	a.Assert(Equal(a.Object(), args[0]),
		"expected #{this} to equal #{exp}",
		"expected #{this} to not equal #{exp}",
		args[0], a.Object())
}

var regexpLiteral = regexp.MustCompile(`^/(.*)/([a-z]*)$`)

// CompilePattern accepts a *regexp.Regexp, a "/pattern/flags" literal (flags
// i, m and s) or a bare pattern.
func CompilePattern(v any) (*regexp.Regexp, error) {
	switch p := v.(type) {
	case *regexp.Regexp:
		return p, nil
	case string:
		if m := regexpLiteral.FindStringSubmatch(p); m != nil {
			pattern := m[1]
			var flags string
			for _, f := range m[2] {
				switch f {
				case 'i', 'm', 's':
					flags += string(f)
				case 'g', 'u', 'y':
				default:
					return nil, fmt.Errorf("unsupported regexp flag %q", f)
				}
			}
			if flags != "" {
				pattern = "(?" + flags + ")" + pattern
			}
			return regexp.Compile(pattern)
		}
		return regexp.Compile(p)
	}
	return nil, fmt.Errorf("expected a regexp or pattern string, got %T", v)
}

func assertMatch(a *Assertion, args ...any) {
	if len(args) != 1 {
		a.Fail("match expects one argument, got %d", len(args))
		return
	}
	re, err := CompilePattern(args[0])
	if err != nil {
		a.Fail("%v", err)
		return
	}
	s, ok := a.Object().(string)
	if !ok {
		a.Fail("expected #{this} to be a string")
		return
	}
	a.Assert(re.MatchString(s),
		"expected #{this} to match "+re.String(),
		"expected #{this} not to match "+re.String(),
		nil, nil)
}

func assertLength(a *Assertion, args ...any) {
	if len(args) != 1 {
		a.Fail("lengthOf expects one argument, got %d", len(args))
		return
	}
	want, ok := ToFloat64(args[0])
	if !ok {
		a.Fail("lengthOf expects a number, got %T", args[0])
		return
	}
	rv := reflect.ValueOf(a.Object())
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
	default:
		a.Fail("expected #{this} to have a length")
		return
	}
	got := rv.Len()
	if s, ok := a.Object().(string); ok {
		got = len([]rune(s))
	}
	a.Assert(float64(got) == want,
		"expected #{this} to have a length of #{exp} but got #{act}",
		"expected #{this} to not have a length of #{act}",
		int(want), got)
}

func assertEmpty(a *Assertion) {
	rv := reflect.ValueOf(a.Object())
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		a.Assert(rv.Len() == 0, "expected #{this} to be empty", "expected #{this} not to be empty", nil, nil)
	default:
		a.Fail(".empty was passed %s #{this}", TypeName(a.Object()))
	}
}

func assertMapKey(a *Assertion, args ...any) {
	name, ok := stringArg(a, "attribute", args)
	if !ok {
		return
	}
	rv := reflect.ValueOf(a.Object())
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		a.Fail("expected #{this} to be a map with string keys")
		return
	}
	v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	a.Assert(v.IsValid(),
		"expected #{this} to have an attribute with name #{exp}",
		"expected #{this} not to have an attribute with name #{exp}",
		name, nil)
	if v.IsValid() {
		a.SetObject(v.Interface())
	}
}
