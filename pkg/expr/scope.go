package expr

// Scope resolves free identifiers. A component instance is a Scope; so is a
// plain Vars map of locals.
type Scope interface {
	Lookup(name string) (any, bool)
}

// ThisScope is implemented by scopes that bind `this` to something other
// than themselves.
type ThisScope interface {
	Scope
	This() any
}

// Vars is a Scope over a fixed set of names.
type Vars map[string]any

// Lookup implements Scope.
func (v Vars) Lookup(name string) (any, bool) {
	val, ok := v[name]
	return val, ok
}

type chain []Scope

// Chain returns a scope that tries each scope in order. `this` resolves to
// the first scope that is a ThisScope, or to the last scope otherwise.
func Chain(scopes ...Scope) Scope {
	out := make(chain, 0, len(scopes))
	for _, s := range scopes {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (c chain) Lookup(name string) (any, bool) {
	for _, s := range c {
		if v, ok := s.Lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (c chain) This() any {
	for _, s := range c {
		if t, ok := s.(ThisScope); ok {
			return t.This()
		}
	}
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

// thisOf returns the value `this` evaluates to in scope.
func thisOf(scope Scope) any {
	if scope == nil {
		return nil
	}
	if t, ok := scope.(ThisScope); ok {
		return t.This()
	}
	return scope
}
