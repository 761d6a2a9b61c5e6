package chain

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxInspectLength = 200

// Inspect renders a value for failure messages: nil as null, Stringers via
// String, strings quoted, sequences element by element.
func Inspect(v any) string {
	return Truncate(inspect(v), maxInspectLength)
}

// Truncate shortens s to at most n bytes plus "...", cutting on a rune
// boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func inspect(v any) string {
	if IsNil(v) {
		return "null"
	}
	switch x := v.(type) {
	case fmt.Stringer:
		return x.String()
	case string:
		return strconv.Quote(x)
	case error:
		return x.Error()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = inspect(rv.Index(i).Interface())
		}
		return "[ " + strings.Join(parts, ", ") + " ]"
	case reflect.Map:
		keys := rv.MapKeys()
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%v: %s", k.Interface(), inspect(rv.MapIndex(k).Interface())))
		}
		sort.Strings(parts)
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return fmt.Sprintf("%v", v)
}

// IsNil reports whether v is nil or a typed nil pointer, interface, slice,
// map, channel or function.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Truthy reports whether v counts as true: everything except nil, false,
// zero, NaN and the empty string. Empty slices and maps are truthy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := ToFloat64(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func:
		return !rv.IsNil()
	}
	return true
}

// ToFloat64 converts Go numeric kinds to float64. Strings are not numbers.
func ToFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Equal is deep equality, except that numbers of different Go types compare
// by value and sequences of different element types compare element-wise.
func Equal(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	as, aok := AsSlice(actual)
	es, eok := AsSlice(expected)
	if aok || eok {
		if !aok || !eok || len(as) != len(es) {
			return false
		}
		for i := range as {
			if !Equal(as[i], es[i]) {
				return false
			}
		}
		return true
	}
	if IsNil(actual) || IsNil(expected) {
		return IsNil(actual) && IsNil(expected)
	}
	a, aok := ToFloat64(actual)
	e, eok := ToFloat64(expected)
	return aok && eok && a == e
}

func isSlice(v any) bool {
	_, ok := AsSlice(v)
	return ok
}

// AsSlice returns the elements of a slice or array.
func AsSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// containsValue reports whether some element of set equals v.
func containsValue(set []any, v any) bool {
	for _, item := range set {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

// TypeName names v's kind the way type assertions (a/an) spell it: null,
// string, number, boolean, array, object, function, error; anything else
// gets its Go type name.
func TypeName(v any) string {
	if IsNil(v) && !isSlice(v) {
		return "null"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case error:
		return "error"
	}
	if _, ok := ToFloat64(v); ok {
		return "number"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Func:
		return "function"
	}
	return fmt.Sprintf("%T", v)
}
