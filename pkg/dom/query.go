package dom

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Compile parses a CSS selector.
func Compile(selector string) (cascadia.Selector, error) {
	return cascadia.Compile(selector)
}

// QuerySelector returns the first descendant of e matching selector, or
// nil. An invalid selector matches nothing.
func (e *Element) QuerySelector(selector string) *Element {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return e.doc.wrap(firstMatch(e.node, sel, false))
}

// QuerySelectorAll returns every descendant of e matching selector in
// document order. An invalid selector matches nothing.
func (e *Element) QuerySelectorAll(selector string) []*Element {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return e.doc.wrapAll(allMatches(e.node, sel, false))
}

// Matches reports whether e matches selector.
func (e *Element) Matches(selector string) bool {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return false
	}
	return sel.Match(e.node)
}

// Closest returns the nearest inclusive ancestor matching selector.
func (e *Element) Closest(selector string) *Element {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && sel.Match(n) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// QuerySelector returns the first element in the document matching
// selector, or nil.
func (d *Document) QuerySelector(selector string) *Element {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return d.wrap(firstMatch(d.root, sel, true))
}

// QuerySelectorAll returns every element in the document matching
// selector in document order.
func (d *Document) QuerySelectorAll(selector string) []*Element {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return d.wrapAll(allMatches(d.root, sel, true))
}

// firstMatch and allMatches walk below root; cascadia's own helpers
// include root itself, which element-scoped queries must not.
func firstMatch(root *html.Node, sel cascadia.Selector, inclusive bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && (inclusive || n != root) && sel.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func allMatches(root *html.Node, sel cascadia.Selector, inclusive bool) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (inclusive || n != root) && sel.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}
