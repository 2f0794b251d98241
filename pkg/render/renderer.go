package render

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/vango-dev/drizzle/internal/errors"
	"github.com/vango-dev/drizzle/pkg/coerce"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

// MaxDepth bounds the nesting of a rendered tree. Anything deeper is
// treated as a cycle and fails the whole render.
const MaxDepth = 512

// Config configures a Renderer.
type Config struct {
	// Logger receives a warning for every recovered subtree failure.
	// Nil discards them.
	Logger *slog.Logger

	// OnError is called with every recovered failure (E010 or E011).
	OnError func(err error)
}

// Renderer serializes vnode trees to HTML strings.
// A Renderer holds no per-render state and is safe for concurrent use.
type Renderer struct {
	config Config
	logger *slog.Logger
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config Config) *Renderer {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{config: config, logger: logger}
}

var defaultRenderer = NewRenderer(Config{})

// RenderToString renders node with a silent default renderer.
func RenderToString(node any) string {
	return defaultRenderer.RenderToString(node)
}

// depthExceeded is the panic value used to unwind a too-deep render.
type depthExceeded struct{}

// RenderToString renders node to HTML. It never panics: a failing subtree
// renders as "" and a tree deeper than MaxDepth renders as "" entirely.
func (r *Renderer) RenderToString(node any) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(depthExceeded); ok {
				r.fail(errors.New("E011").WithDetail(fmt.Sprintf("depth > %d", MaxDepth)))
			} else {
				r.fail(errors.New("E010").Wrap(fmt.Errorf("panic: %v", rec)))
			}
			out = ""
		}
	}()
	return r.render(node, 0)
}

// RenderToWriter renders node and writes the result to w. The only error
// it returns is the writer's.
func (r *Renderer) RenderToWriter(w io.Writer, node any) error {
	_, err := io.WriteString(w, r.RenderToString(node))
	return err
}

func (r *Renderer) fail(err *errors.DrizzleError) {
	r.logger.Warn(err.Message, err.LogAttrs()...)
	if r.config.OnError != nil {
		r.config.OnError(err)
	}
}

// render renders one node. Panics below this node are recovered here so a
// broken subtree becomes "", except depth overflows which unwind to the top.
func (r *Renderer) render(node any, depth int) (out string) {
	if depth > MaxDepth {
		panic(depthExceeded{})
	}
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(depthExceeded); ok {
				panic(rec)
			}
			r.fail(errors.New("E010").Wrap(fmt.Errorf("panic: %v", rec)))
			out = ""
		}
	}()

	switch n := node.(type) {
	case nil:
		return ""
	case string:
		return n
	case bool:
		// Conditional children ({cond && node}) leave booleans behind.
		return ""
	case *vdom.VNode:
		if n == nil {
			return ""
		}
		return r.renderVNode(n, depth)
	case []any:
		return r.renderList(n, depth)
	case []*vdom.VNode:
		var b strings.Builder
		for _, child := range n {
			b.WriteString(r.render(child, depth+1))
		}
		return b.String()
	}

	if coerce.IsNullish(node) {
		return ""
	}
	if coerce.IsNumber(node) {
		return coerce.String(node)
	}

	rv := reflect.ValueOf(node)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		var b strings.Builder
		for i := 0; i < rv.Len(); i++ {
			b.WriteString(r.render(rv.Index(i).Interface(), depth+1))
		}
		return b.String()
	}

	panic(fmt.Sprintf("cannot render value of type %T", node))
}

func (r *Renderer) renderList(children []any, depth int) string {
	var b strings.Builder
	for _, child := range children {
		b.WriteString(r.render(child, depth+1))
	}
	return b.String()
}

func (r *Renderer) renderVNode(n *vdom.VNode, depth int) string {
	if fn, ok := vdom.ComponentFunc(n.Type); ok {
		return r.render(fn(n.ComponentProps()), depth+1)
	}

	if vdom.IsFragment(n.Type) {
		return r.renderList(n.Children, depth)
	}

	tag := "div"
	switch t := n.Type.(type) {
	case nil:
	case string:
		if t != "" {
			tag = t
		}
	default:
		panic(fmt.Sprintf("invalid vnode type %T", n.Type))
	}

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tag)
	renderAttributes(&b, n.Props)
	b.WriteByte('>')
	b.WriteString(r.renderList(n.Children, depth))
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
	return b.String()
}

// renderAttributes writes ` name="value"` for every emitted prop, in
// sorted key order for deterministic output.
func renderAttributes(b *strings.Builder, props vdom.Props) {
	if len(props) == 0 {
		return
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "children" {
			continue
		}
		value := props[key]
		if coerce.IsNullish(value) {
			continue
		}
		if v, ok := value.(bool); ok && !v {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(coerce.String(value)))
		b.WriteByte('"')
	}
}
