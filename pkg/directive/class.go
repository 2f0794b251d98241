package directive

import (
	"reflect"
	"sort"
	"strings"

	"github.com/vango-dev/drizzle/pkg/coerce"
	"github.com/vango-dev/drizzle/pkg/dom"
)

// ClassResult is what a data-class expression evaluates to: either Toggles
// or ReplaceAll. The two are mutually exclusive and chosen from the runtime
// type of the value each time the expression is evaluated.
type ClassResult interface {
	apply(el *dom.Element)
}

// Toggles adds each class whose value is true and removes each class whose
// value is false. Keys may hold several space-separated classes.
type Toggles map[string]bool

// ReplaceAll sets the class attribute wholesale.
type ReplaceAll string

func (t Toggles) apply(el *dom.Element) {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cl := el.ClassList()
	for _, k := range keys {
		for _, name := range strings.Fields(k) {
			cl.Toggle(name, t[k])
		}
	}
}

func (r ReplaceAll) apply(el *dom.Element) {
	if el.ClassName() != string(r) {
		el.SetClassName(string(r))
	}
}

// NewClassResult classifies an evaluated value. Strings become a
// ReplaceAll and objects become Toggles with truthiness-coerced values.
// Every other value, nil and undefined included, yields nil (no change).
func NewClassResult(v any) ClassResult {
	if coerce.IsNullish(v) {
		return nil
	}
	switch x := v.(type) {
	case ClassResult:
		return x
	case string:
		return ReplaceAll(x)
	case map[string]bool:
		return Toggles(x)
	case map[string]any:
		t := make(Toggles, len(x))
		for k, val := range x {
			t[k] = coerce.Truthy(val)
		}
		return t
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		t := make(Toggles, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			t[iter.Key().String()] = coerce.Truthy(iter.Value().Interface())
		}
		return t
	}
	return nil
}
