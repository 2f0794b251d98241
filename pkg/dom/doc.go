// Package dom is a small headless DOM over golang.org/x/net/html.
//
// It provides the subset of the browser document API the directive
// runtime needs: attributes, inline style, classList, form control
// properties, bubbling events with preventDefault, CSS selectors (via
// cascadia) and removal observers. Each html.Node has exactly one
// *Element wrapper, so element identity is pointer identity.
//
// Form properties reflect to attributes (value, checked, disabled,
// required), which keeps the serialized document in sync with what a
// user would see.
package dom
