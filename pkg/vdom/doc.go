// Package vdom provides the vnode model used for server-side rendering.
//
// A VNode is plain data: a type (tag name, component function, or the
// Fragment marker), props, and children. Component functions are resolved
// by the renderer, not here.
//
//	Counter := func(p vdom.Props) any {
//	    return vdom.H("button", vdom.Props{"data-click": "increment"}, p["count"])
//	}
//	tree := vdom.H(vdom.FuncComponent(Counter), vdom.Props{"count": 3})
//
// # Islands
//
// IslandIDs hands out per-document ids for hydrated islands so that the
// page renderer and the hydration bridge agree on which container belongs
// to which component.
package vdom
