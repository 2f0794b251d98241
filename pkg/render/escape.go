package render

import "strings"

// attrEscaper replaces exactly the four characters the attribute contract
// covers. Single quotes pass through: attributes are always double-quoted.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// escapeAttr escapes text for inclusion in a double-quoted attribute value.
//
// Text children are not escaped by the renderer at all. That asymmetry is
// kept for output parity with existing pages and is tracked as a known gap.
func escapeAttr(s string) string {
	if !strings.ContainsAny(s, `&<>"`) {
		return s
	}
	return attrEscaper.Replace(s)
}

// escapeJSString quotes s as a single-quoted JavaScript string literal.
func escapeJSString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '<':
			b.WriteString(`\x3c`)
		case '>':
			b.WriteString(`\x3e`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
