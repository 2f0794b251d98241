package dom

import "strings"

// ClassList is a live view of an element's class attribute.
type ClassList struct {
	el *Element
}

// Values returns the class tokens in order, without duplicates.
func (c ClassList) Values() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.Fields(c.el.Attr("class")) {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// Len returns the number of distinct class tokens.
func (c ClassList) Len() int { return len(c.Values()) }

// Contains reports whether the class token is present.
func (c ClassList) Contains(token string) bool {
	for _, tok := range strings.Fields(c.el.Attr("class")) {
		if tok == token {
			return true
		}
	}
	return false
}

// Add adds each token that is not already present.
func (c ClassList) Add(tokens ...string) {
	values := c.Values()
	changed := false
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || contains(values, tok) {
			continue
		}
		values = append(values, tok)
		changed = true
	}
	if changed {
		c.el.SetAttr("class", strings.Join(values, " "))
	}
}

// Remove removes each token.
func (c ClassList) Remove(tokens ...string) {
	if !c.el.HasAttr("class") {
		return
	}
	values := c.Values()
	kept := values[:0]
	for _, v := range values {
		if !contains(tokens, v) {
			kept = append(kept, v)
		}
	}
	if len(kept) != len(values) || strings.Join(kept, " ") != c.el.Attr("class") {
		c.el.SetAttr("class", strings.Join(kept, " "))
	}
}

// Toggle adds or removes token according to on and reports the result.
func (c ClassList) Toggle(token string, on bool) bool {
	if on {
		c.Add(token)
	} else {
		c.Remove(token)
	}
	return on
}

func (c ClassList) String() string {
	return strings.Join(c.Values(), " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
