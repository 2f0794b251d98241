package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/drizzle/internal/errors"
)

const (
	// DefaultContainer is the tag of the element an island is rendered into.
	DefaultContainer = "main"

	// DefaultRuntimeScript is the path of the browser directive runtime.
	DefaultRuntimeScript = "/_drizzle/runtime.js"

	// PagePayloadID is the id of the JSON script carrying the page props.
	PagePayloadID = "drizzle-page"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Title is the page title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Meta contains meta tags for the page.
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Scripts contains extra script tags, emitted after the runtime script.
	Scripts []ScriptTag

	// Body is the vnode tree rendered inside the container.
	Body any

	// Component names the island hydrated over Body. Empty renders a
	// static page without a hydration call.
	Component string

	// Props is the hydration payload handed to the component on the client.
	Props map[string]any

	// Container is the container tag. Defaults to DefaultContainer.
	Container string

	// RuntimeScript is the directive runtime path. Defaults to
	// DefaultRuntimeScript.
	RuntimeScript string

	// Nonce is copied onto every script tag when set (CSP).
	Nonce string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name     string // name attribute
	Content  string // content attribute
	Property string // property attribute (for OpenGraph)
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Defer  bool   // defer attribute
	Module bool   // type="module"
}

// RenderPage renders a complete HTML document to w. Body rendering is
// fail-safe like RenderToString; only payload encoding and the writer can
// produce an error.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	var payload []byte
	if page.Component != "" {
		props := page.Props
		if props == nil {
			props = map[string]any{}
		}
		var err error
		payload, err = json.Marshal(props)
		if err != nil {
			return errors.New("E044").Wrap(err)
		}
	}

	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	container := page.Container
	if container == "" {
		container = DefaultContainer
	}
	runtime := page.RuntimeScript
	if runtime == "" {
		runtime = DefaultRuntimeScript
	}
	nonce := ""
	if page.Nonce != "" {
		nonce = ` nonce="` + escapeAttr(page.Nonce) + `"`
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=\"%s\">\n", escapeAttr(lang))

	b.WriteString("<head>\n")
	b.WriteString(`  <meta charset="utf-8">` + "\n")
	b.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	for _, meta := range page.Meta {
		renderMeta(&b, meta)
	}
	if page.Title != "" {
		fmt.Fprintf(&b, "  <title>%s</title>\n", escapeAttr(page.Title))
	}
	for _, href := range page.StyleSheets {
		fmt.Fprintf(&b, "  <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href))
	}
	b.WriteString("</head>\n")

	b.WriteString("<body>\n")
	b.WriteString("<" + container)
	if page.Component != "" {
		fmt.Fprintf(&b, ` data-island="%s"`, escapeAttr(page.Component))
	}
	b.WriteString(">")
	b.WriteString(r.RenderToString(page.Body))
	b.WriteString("</" + container + ">\n")

	if page.Component != "" {
		fmt.Fprintf(&b, "<script type=\"application/json\" id=\"%s\" data-hydrate=\"%s\" data-container=\"%s\"%s>%s</script>\n",
			PagePayloadID, escapeAttr(page.Component), escapeAttr(container), nonce, payload)
	}
	fmt.Fprintf(&b, "<script src=\"%s\"%s></script>\n", escapeAttr(runtime), nonce)
	for _, script := range page.Scripts {
		renderScript(&b, script, nonce)
	}
	if page.Component != "" {
		writeHydrationCall(&b, page.Component, container, nonce)
	}

	b.WriteString("</body>\n</html>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeHydrationCall emits the per-page bootstrap: publish the page props
// and hand the island to window.hydrateApp. A throwing hydration is logged
// by the browser and leaves the page static.
func writeHydrationCall(b *strings.Builder, component, container, nonce string) {
	name := escapeJSString(component)
	fmt.Fprintf(b, "<script%s>\n", nonce)
	fmt.Fprintf(b, "window.pageData = JSON.parse(document.getElementById(%s).textContent);\n", escapeJSString(PagePayloadID))
	b.WriteString("try {\n")
	fmt.Fprintf(b, "  window.hydrateApp(%s, Object.assign({}, window.pageData, { page: window.pageData || {}, container: %s }));\n",
		name, escapeJSString(container))
	b.WriteString("} catch (e) {\n")
	b.WriteString("  console.error('hydration error:', e);\n")
	b.WriteString("}\n")
	b.WriteString("</script>\n")
}

func renderMeta(b *strings.Builder, meta MetaTag) {
	b.WriteString("  <meta")
	if meta.Name != "" {
		fmt.Fprintf(b, ` name="%s"`, escapeAttr(meta.Name))
	}
	if meta.Property != "" {
		fmt.Fprintf(b, ` property="%s"`, escapeAttr(meta.Property))
	}
	fmt.Fprintf(b, ` content="%s">`+"\n", escapeAttr(meta.Content))
}

func renderScript(b *strings.Builder, script ScriptTag, nonce string) {
	if script.Src == "" {
		return
	}
	b.WriteString("<script")
	if script.Module {
		b.WriteString(` type="module"`)
	}
	fmt.Fprintf(b, ` src="%s"`, escapeAttr(script.Src))
	if script.Defer {
		b.WriteString(" defer")
	}
	b.WriteString(nonce)
	b.WriteString("></script>\n")
}
