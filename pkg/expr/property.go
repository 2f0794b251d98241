package expr

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/vango-dev/drizzle/pkg/coerce"
)

// GetProperty reads obj[key] with JavaScript-like leniency: nil, Null and
// values without the property yield nil instead of an error.
//
// Supported receivers: Scope values (component instances), string-keyed
// maps, slices and arrays (numeric index, length), strings (index, length)
// and structs (exported field by name or json tag, or method by name).
func GetProperty(obj any, key string) any {
	if coerce.IsNullish(obj) {
		return nil
	}

	switch o := obj.(type) {
	case Scope:
		v, _ := o.Lookup(key)
		return v
	case map[string]any:
		return o[key]
	case string:
		if key == "length" {
			return len(utf16.Encode([]rune(o)))
		}
		if i, ok := arrayIndex(key); ok {
			runes := []rune(o)
			if i < len(runes) {
				return string(runes[i])
			}
		}
		return nil
	}

	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	case reflect.Slice, reflect.Array:
		if key == "length" {
			return rv.Len()
		}
		if i, ok := arrayIndex(key); ok && i < rv.Len() {
			return rv.Index(i).Interface()
		}
		return nil
	}

	if m := method(rv, key); m.IsValid() {
		return m.Interface()
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		if f, ok := structField(rv, key); ok {
			return f.Interface()
		}
	}
	return nil
}

func arrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// method finds an exported method named key (or Key).
func method(rv reflect.Value, key string) reflect.Value {
	if key == "" || !rv.IsValid() {
		return reflect.Value{}
	}
	if m := rv.MethodByName(key); m.IsValid() {
		return m
	}
	return rv.MethodByName(exported(key))
}

func structField(rv reflect.Value, key string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag == key {
			return rv.Field(i), true
		}
	}
	if f := rv.FieldByName(key); f.IsValid() && f.CanInterface() {
		return f, true
	}
	if f := rv.FieldByName(exported(key)); f.IsValid() && f.CanInterface() {
		return f, true
	}
	return reflect.Value{}, false
}

func exported(name string) string {
	if name == "" {
		return ""
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
