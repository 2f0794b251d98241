package vdom

// Props holds the attributes passed to an element or component.
type Props map[string]any

// FuncComponent is a component: a pure function from props to a renderable
// value (a *VNode, a string, a slice of children, or nil).
type FuncComponent func(props Props) any

// fragmentMarker is the type of the Fragment sentinel.
type fragmentMarker struct{}

func (fragmentMarker) String() string { return "Fragment" }

// Fragment is the node type meaning "emit children only, no wrapping element".
// It is a sentinel value, so no string tag can ever collide with it.
var Fragment any = fragmentMarker{}

// VNode describes one element, component invocation, or fragment.
// A VNode is never mutated after construction; every render builds a new tree.
type VNode struct {
	// Type is a tag name (string), a FuncComponent, or Fragment.
	Type any

	// Props are the node's attributes; never nil for nodes built with H.
	Props Props

	// Children are kept exactly as passed to H. Nil entries are preserved
	// here and dropped by the renderer.
	Children []any
}

// H builds a VNode. It only allocates: no validation of typ or props happens
// here, invalid input surfaces at render time.
//
//	H("button", Props{"data-click": "increment"}, "+")
//	H(Fragment, nil, H("p", nil, "x"))
func H(typ any, props Props, children ...any) *VNode {
	if props == nil {
		props = Props{}
	}
	return &VNode{Type: typ, Props: props, Children: children}
}

// IsFragment reports whether typ is the Fragment marker.
func IsFragment(typ any) bool {
	_, ok := typ.(fragmentMarker)
	return ok
}

// ComponentFunc returns the component function behind typ, accepting both
// FuncComponent and a plain func(Props) any.
func ComponentFunc(typ any) (FuncComponent, bool) {
	switch fn := typ.(type) {
	case FuncComponent:
		return fn, fn != nil
	case func(Props) any:
		return fn, fn != nil
	}
	return nil, false
}

// Tag returns the element tag name, or "" if the node is not an element.
func (v *VNode) Tag() string {
	if v == nil {
		return ""
	}
	s, _ := v.Type.(string)
	return s
}

// ComponentProps returns the props a component receives: a shallow copy of
// the node props with "children" set to the node children.
func (v *VNode) ComponentProps() Props {
	out := make(Props, len(v.Props)+1)
	for k, val := range v.Props {
		out[k] = val
	}
	out["children"] = v.Children
	return out
}
