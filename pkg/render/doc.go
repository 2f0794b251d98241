// Package render provides server-side rendering of vnode trees.
//
// RenderToString is total: it never panics and never returns an error. A
// component that panics renders as an empty string and the rest of the
// page is unaffected; a tree deeper than MaxDepth (a cycle) renders as "".
//
//	html := render.RenderToString(vdom.H(vdom.Fragment, nil, vdom.H("p", nil, "x")))
//	// "<p>x</p>"
//
// # Escaping
//
// Attribute values have & < > " replaced by entities. Text children are
// written verbatim; callers that interpolate user input into text must
// escape it themselves.
//
// # Pages
//
// RenderPage wraps a rendered body in a full document: the island
// container, a JSON payload with the page props, the directive runtime
// script and the per-page hydration call.
package render
