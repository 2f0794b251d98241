package dom

import (
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document with a small browser-like element
// API. It is not safe for concurrent use; drive it from one goroutine
// (see reactive.Loop).
type Document struct {
	root     *html.Node
	elements map[*html.Node]*Element
	logger   *slog.Logger

	removalObservers []func(*Element)
	insertObservers  []func(*Element)
	afterDispatch    []func()

	dispatchDepth int
	listenerCount int
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for recovered listener panics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// Parse parses an HTML document from r.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return newDocument(root, opts...), nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

func newDocument(root *html.Node, opts ...Option) *Document {
	d := &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Logger returns the document logger.
func (d *Document) Logger() *slog.Logger {
	return d.logger
}

// wrap returns the unique Element for n, or nil if n is not an element.
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Head returns the <head> element.
func (d *Document) Head() *Element {
	return d.findTop(atom.Head)
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.findTop(atom.Body)
}

func (d *Document) findTop(a atom.Atom) *Element {
	docEl := d.DocumentElement()
	if docEl == nil {
		return nil
	}
	for c := docEl.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return d.wrap(c)
		}
	}
	return nil
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return d.wrap(n)
}

// GetElementByID returns the first element with the given id.
func (d *Document) GetElementByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode {
			if v, ok := attr(n, "id"); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return d.wrap(found)
}

// OnRemove registers fn to be called with the root of every element
// subtree detached from the document.
func (d *Document) OnRemove(fn func(removed *Element)) {
	d.removalObservers = append(d.removalObservers, fn)
}

// OnInsert registers fn to be called with every element subtree inserted
// into the document by AppendChild or SetInnerHTML.
func (d *Document) OnInsert(fn func(inserted *Element)) {
	d.insertObservers = append(d.insertObservers, fn)
}

// OnAfterDispatch registers fn to run after every outermost event
// dispatch. The directive runtime flushes its effects here.
func (d *Document) OnAfterDispatch(fn func()) {
	d.afterDispatch = append(d.afterDispatch, fn)
}

func (d *Document) notifyRemoved(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}
	el := d.wrap(n)
	for _, fn := range d.removalObservers {
		fn(el)
	}
}

func (d *Document) notifyInserted(n *html.Node) {
	if n.Type != html.ElementNode || !d.contains(n) {
		return
	}
	el := d.wrap(n)
	for _, fn := range d.insertObservers {
		fn(el)
	}
}

// contains reports whether n is attached to this document.
func (d *Document) contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// ListenerCount returns the number of event listeners registered in the
// document. Removed elements keep theirs until they are removed
// explicitly, so this is the figure teardown tests look at.
func (d *Document) ListenerCount() int {
	return d.listenerCount
}

// Render writes the serialized document to w.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String returns the serialized document.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// walk visits n and its descendants depth first, element before children.
// Returning false from fn skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, fn)
		c = next
	}
}
