package coerce

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// nullValue is the type of Null.
type nullValue struct{}

func (nullValue) String() string { return "null" }

// Null is the explicit null value. A Go nil stands for undefined.
var Null any = nullValue{}

// IsNullish reports whether v is undefined (nil) or Null.
func IsNullish(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(nullValue)
	return ok
}

// maxJoinDepth bounds recursion when stringifying nested sequences.
const maxJoinDepth = 32

// String converts v to a string the way JavaScript's String(v) does for the
// value kinds the runtime deals with. It never panics and tolerates cyclic
// sequences.
func String(v any) string {
	return stringify(v, nil, 0)
}

func stringify(v any, seen map[uintptr]bool, depth int) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case nullValue:
		return "null"
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return FormatNumber(float64(x))
	case float64:
		return FormatNumber(x)
	case error:
		return x.Error()
	case fmt.Stringer:
		return safeStringer(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if depth >= maxJoinDepth {
			return ""
		}
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return ""
			}
			ptr := rv.Pointer()
			if seen[ptr] {
				return ""
			}
			if seen == nil {
				seen = make(map[uintptr]bool)
			}
			seen[ptr] = true
			defer delete(seen, ptr)
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			elem := rv.Index(i).Interface()
			if IsNullish(elem) {
				continue
			}
			parts[i] = stringify(elem, seen, depth+1)
		}
		return strings.Join(parts, ",")
	case reflect.Func:
		return "function"
	case reflect.Pointer:
		if rv.IsNil() {
			return "null"
		}
		return "[object Object]"
	}
	return "[object Object]"
}

func safeStringer(s fmt.Stringer) (out string) {
	defer func() {
		if recover() != nil {
			out = "[object Object]"
		}
	}()
	return s.String()
}

// FormatNumber formats a float64 like JavaScript's Number.prototype.toString.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits ("1e-07"); JavaScript does not.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy reports whether v is truthy under JavaScript rules: undefined,
// null, false, 0, NaN and "" are falsy; everything else is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil, nullValue:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := numeric(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// numeric returns v as a float64 if v is a Go number.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// IsNumber reports whether v is a Go numeric value.
func IsNumber(v any) bool {
	_, ok := numeric(v)
	return ok
}

// Number converts v to a float64 the way JavaScript's Number(v) does.
func Number(v any) float64 {
	if f, ok := numeric(v); ok {
		return f
	}
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case nullValue:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// StrictEqual compares like JavaScript's === operator.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, aNum := numeric(a)
	fb, bNum := numeric(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	return identical(a, b)
}

// LooseEqual compares like JavaScript's == operator for primitives.
func LooseEqual(a, b any) bool {
	if IsNullish(a) || IsNullish(b) {
		return IsNullish(a) && IsNullish(b)
	}
	_, aStr := a.(string)
	_, bStr := b.(string)
	_, aBool := a.(bool)
	_, bBool := b.(bool)
	aNum, bNum := IsNumber(a), IsNumber(b)
	if (aNum || aStr || aBool) && (bNum || bStr || bBool) {
		if aStr && bStr {
			return a.(string) == b.(string)
		}
		if aBool && bBool {
			return a.(bool) == b.(bool)
		}
		return Number(a) == Number(b)
	}
	return StrictEqual(a, b)
}

// identical compares values of the same dynamic type; reference types
// compare by identity.
func identical(a, b any) (eq bool) {
	defer func() {
		// == on a struct holding an uncomparable interface value panics.
		if recover() != nil {
			eq = false
		}
	}()
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	}
	if ra.Type().Comparable() {
		return a == b
	}
	return false
}
