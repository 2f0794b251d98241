package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element wraps one element node. Each node has exactly one Element, so
// Elements can be compared with == and used as map keys.
type Element struct {
	doc       *Document
	node      *html.Node
	listeners map[string][]*listener
}

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Node returns the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Tag returns the lower-case tag name.
func (e *Element) Tag() string { return e.node.Data }

// ID returns the id attribute.
func (e *Element) ID() string {
	v, _ := attr(e.node, "id")
	return v
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// GetAttribute returns the attribute value and whether it is present.
func (e *Element) GetAttribute(name string) (string, bool) {
	return attr(e.node, strings.ToLower(name))
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	v, _ := e.GetAttribute(name)
	return v
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// SetAttr sets an attribute, appending it when new.
func (e *Element) SetAttr(name, value string) {
	name = strings.ToLower(name)
	for i := range e.node.Attr {
		if e.node.Attr[i].Namespace == "" && e.node.Attr[i].Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	name = strings.ToLower(name)
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

// Attribute is a name/value pair in document order.
type Attribute struct {
	Name  string
	Value string
}

// Attrs returns the element attributes in document order.
func (e *Element) Attrs() []Attribute {
	out := make([]Attribute, 0, len(e.node.Attr))
	for _, a := range e.node.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		out = append(out, Attribute{Name: name, Value: a.Val})
	}
	return out
}

// setBoolAttr sets or removes a boolean attribute.
func (e *Element) setBoolAttr(name string, on bool) {
	if on {
		if !e.HasAttr(name) {
			e.SetAttr(name, "")
		}
		return
	}
	e.RemoveAttr(name)
}

// ---------------------------------------------------------------------------
// Class and style
// ---------------------------------------------------------------------------

// ClassName returns the class attribute.
func (e *Element) ClassName() string { return e.Attr("class") }

// SetClassName replaces the class attribute wholesale.
func (e *Element) SetClassName(v string) { e.SetAttr("class", v) }

// ClassList returns a live view of the class attribute.
func (e *Element) ClassList() ClassList { return ClassList{el: e} }

// Style returns a live view of the style attribute.
func (e *Element) Style() Style { return Style{el: e} }

// ---------------------------------------------------------------------------
// Form properties
// ---------------------------------------------------------------------------

// Type returns the control type: the lower-cased type attribute, "text"
// for inputs without one and "submit" for buttons without one.
func (e *Element) Type() string {
	t := strings.ToLower(strings.TrimSpace(e.Attr("type")))
	if t != "" {
		return t
	}
	switch e.node.DataAtom {
	case atom.Input:
		return "text"
	case atom.Button:
		return "submit"
	}
	return ""
}

// IsCheckable reports whether the element is a checkbox or radio input.
func (e *Element) IsCheckable() bool {
	if e.node.DataAtom != atom.Input {
		return false
	}
	t := e.Type()
	return t == "checkbox" || t == "radio"
}

// Value returns the control value. Inputs reflect the value attribute,
// textareas their text, and selects the value of the selected option
// (the first option when none is selected).
func (e *Element) Value() string {
	switch e.node.DataAtom {
	case atom.Textarea:
		return e.TextContent()
	case atom.Select:
		opts := e.options()
		for _, o := range opts {
			if o.HasAttr("selected") {
				return o.optionValue()
			}
		}
		if len(opts) > 0 {
			return opts[0].optionValue()
		}
		return ""
	case atom.Option:
		return e.optionValue()
	}
	return e.Attr("value")
}

// SetValue sets the control value.
func (e *Element) SetValue(v string) {
	switch e.node.DataAtom {
	case atom.Textarea:
		if e.TextContent() != v {
			e.SetTextContent(v)
		}
	case atom.Select:
		for _, o := range e.options() {
			o.setBoolAttr("selected", o.optionValue() == v)
		}
	default:
		e.SetAttr("value", v)
	}
}

func (e *Element) optionValue() string {
	if v, ok := e.GetAttribute("value"); ok {
		return v
	}
	return strings.TrimSpace(e.TextContent())
}

func (e *Element) options() []*Element {
	var out []*Element
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			out = append(out, e.doc.wrap(n))
			return false
		}
		return true
	})
	return out
}

// Checked reports the checked state of a checkbox or radio input.
func (e *Element) Checked() bool { return e.HasAttr("checked") }

// SetChecked sets the checked state. Checking a radio input unchecks the
// other radios of the same name within its form (or document).
func (e *Element) SetChecked(on bool) {
	if on && e.Type() == "radio" {
		if name := e.Attr("name"); name != "" {
			scope := e.Closest("form")
			if scope == nil {
				scope = e.doc.DocumentElement()
			}
			if scope != nil {
				for _, other := range scope.QuerySelectorAll("input[type=radio]") {
					if other != e && other.Attr("name") == name {
						other.setBoolAttr("checked", false)
					}
				}
			}
		}
	}
	e.setBoolAttr("checked", on)
}

// Disabled reports the disabled property.
func (e *Element) Disabled() bool { return e.HasAttr("disabled") }

// SetDisabled sets the disabled property.
func (e *Element) SetDisabled(on bool) { e.setBoolAttr("disabled", on) }

// Required reports the required property.
func (e *Element) Required() bool { return e.HasAttr("required") }

// SetRequired sets the required property.
func (e *Element) SetRequired(on bool) { e.setBoolAttr("required", on) }

// Form returns the enclosing form, or nil.
func (e *Element) Form() *Element {
	if e.node.DataAtom == atom.Form {
		return e
	}
	return e.Closest("form")
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// Parent returns the parent element, or nil at the top or when detached.
func (e *Element) Parent() *Element {
	return e.doc.wrap(e.node.Parent)
}

// Children returns the element children in order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// Connected reports whether the element is attached to its document.
func (e *Element) Connected() bool {
	return e.doc.contains(e.node)
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.detach()
	}
	e.node.AppendChild(child.node)
	e.doc.notifyInserted(child.node)
}

// Remove detaches the element from its parent. Removal observers are
// notified when the element was attached to the document.
func (e *Element) Remove() {
	if e.node.Parent == nil {
		return
	}
	e.detach()
}

func (e *Element) detach() {
	connected := e.Connected()
	e.node.Parent.RemoveChild(e.node)
	if connected {
		e.doc.notifyRemoved(e.node)
	}
}

// removeChildren detaches every child node, notifying observers once per
// removed element subtree.
func (e *Element) removeChildren() {
	connected := e.Connected()
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		if connected {
			e.doc.notifyRemoved(c)
		}
		c = next
	}
}

// TextContent returns the concatenated text of all descendants.
func (e *Element) TextContent() string {
	var b strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces all children with a single text node.
func (e *Element) SetTextContent(s string) {
	e.removeChildren()
	if s != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
}

// SetInnerHTML parses s as a fragment in e's context and replaces the
// children with the result.
func (e *Element) SetInnerHTML(s string) error {
	nodes, err := html.ParseFragment(strings.NewReader(s), e.node)
	if err != nil {
		return err
	}
	e.removeChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	for _, n := range nodes {
		e.doc.notifyInserted(n)
	}
	return nil
}

// InnerHTML serializes the children.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return ""
		}
	}
	return b.String()
}

// OuterHTML serializes the element itself.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	if err := html.Render(&b, e.node); err != nil {
		return ""
	}
	return b.String()
}

// Descendants returns every element below e in document order.
func (e *Element) Descendants() []*Element {
	var out []*Element
	walk(e.node, func(n *html.Node) bool {
		if n != e.node && n.Type == html.ElementNode {
			out = append(out, e.doc.wrap(n))
		}
		return true
	})
	return out
}

// DataAttrs returns the data-* attributes with the prefix stripped, in
// document order.
func (e *Element) DataAttrs() []Attribute {
	var out []Attribute
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.HasPrefix(a.Key, "data-") && len(a.Key) > len("data-") {
			out = append(out, Attribute{Name: a.Key[len("data-"):], Value: a.Val})
		}
	}
	return out
}
