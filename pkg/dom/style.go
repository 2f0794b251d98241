package dom

import "strings"

// Style is a live view of an element's inline style attribute.
// Declarations keep their order; setting an existing property updates it
// in place.
type Style struct {
	el *Element
}

type declaration struct {
	prop, value string
}

func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, declaration{prop: prop, value: strings.TrimSpace(value)})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value + ";"
	}
	return strings.Join(parts, " ")
}

// Get returns the value of prop, or "".
func (s Style) Get(prop string) string {
	prop = strings.ToLower(prop)
	for _, d := range parseStyle(s.el.Attr("style")) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// Set sets prop to value. An empty value removes the declaration, as
// assigning "" to a style property does in the browser.
func (s Style) Set(prop, value string) {
	prop = strings.ToLower(strings.TrimSpace(prop))
	if value == "" {
		s.Remove(prop)
		return
	}
	decls := parseStyle(s.el.Attr("style"))
	found := false
	for i := range decls {
		if decls[i].prop == prop {
			decls[i].value = value
			found = true
		}
	}
	if !found {
		decls = append(decls, declaration{prop: prop, value: value})
	}
	s.el.SetAttr("style", formatStyle(decls))
}

// Remove deletes prop. The style attribute is dropped once empty.
func (s Style) Remove(prop string) {
	if !s.el.HasAttr("style") {
		return
	}
	prop = strings.ToLower(prop)
	decls := parseStyle(s.el.Attr("style"))
	kept := decls[:0]
	for _, d := range decls {
		if d.prop != prop {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		s.el.RemoveAttr("style")
		return
	}
	s.el.SetAttr("style", formatStyle(kept))
}

// Display returns the display property.
func (s Style) Display() string { return s.Get("display") }

// SetDisplay sets the display property.
func (s Style) SetDisplay(v string) { s.Set("display", v) }

// String returns the serialized declarations.
func (s Style) String() string {
	return formatStyle(parseStyle(s.el.Attr("style")))
}
