package render

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/vango-dev/drizzle/internal/errors"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

func TestRenderPage(t *testing.T) {
	renderer := NewRenderer(Config{})

	page := PageData{
		Body:  vdom.H("div", nil, "Hello, World!"),
		Title: "Test Page",
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Errorf("should start with DOCTYPE, got %q", html)
	}
	if !strings.Contains(html, `<html lang="en">`) {
		t.Errorf("should contain html tag with lang, got %q", html)
	}
	if !strings.Contains(html, "<title>Test Page</title>") {
		t.Errorf("should contain title, got %q", html)
	}
	if !strings.Contains(html, "<main><div>Hello, World!</div></main>") {
		t.Errorf("should contain rendered body in container, got %q", html)
	}
	if !strings.Contains(html, `<script src="/_drizzle/runtime.js"></script>`) {
		t.Errorf("should include runtime script, got %q", html)
	}
	if strings.Contains(html, "hydrateApp") {
		t.Errorf("static page should not hydrate, got %q", html)
	}
}

func TestRenderPageHydration(t *testing.T) {
	renderer := NewRenderer(Config{})

	page := PageData{
		Body:      vdom.H("span", vdom.Props{"data-text": "count"}, "3"),
		Component: "Counter",
		Props:     map[string]any{"count": 3, "label": "</script><b>"},
		Nonce:     "abc",
	}

	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := buf.String()

	checks := []string{
		`<main data-island="Counter"><span data-text="count">3</span></main>`,
		`id="drizzle-page" data-hydrate="Counter" data-container="main" nonce="abc">`,
		`"count":3`,
		`"label":"\u003c/script\u003e\u003cb\u003e"`,
		`window.hydrateApp('Counter', Object.assign({}, window.pageData, { page: window.pageData || {}, container: 'main' }));`,
		`<script nonce="abc">`,
	}
	for _, want := range checks {
		if !strings.Contains(html, want) {
			t.Errorf("page should contain %q\n%s", want, html)
		}
	}

	if strings.Count(html, "</script>") != strings.Count(html, "<script") {
		t.Errorf("payload must not close a script tag early\n%s", html)
	}

	payload := strings.Index(html, PagePayloadID)
	runtime := strings.Index(html, DefaultRuntimeScript)
	call := strings.Index(html, "window.hydrateApp")
	if !(payload < runtime && runtime < call) {
		t.Errorf("expected payload, runtime, call order; got %d %d %d", payload, runtime, call)
	}
}

func TestRenderPageCustomContainer(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(Config{}).RenderPage(&buf, PageData{
		Body:          "x",
		Component:     "Login",
		Container:     "section",
		RuntimeScript: "/static/rt.js",
	})
	if err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.Contains(html, `<section data-island="Login">x</section>`) {
		t.Errorf("got %q", html)
	}
	if !strings.Contains(html, `container: 'section'`) {
		t.Errorf("hydration call should target the container, got %q", html)
	}
	if !strings.Contains(html, `src="/static/rt.js"`) {
		t.Errorf("custom runtime script missing, got %q", html)
	}
}

func TestRenderPageMetaAndAssets(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(Config{}).RenderPage(&buf, PageData{
		Lang:        "fr",
		Meta:        []MetaTag{{Name: "description", Content: `a "quoted" page`}, {Property: "og:title", Content: "T"}},
		StyleSheets: []string{"/app.css"},
		Scripts:     []ScriptTag{{Src: "/app.js", Defer: true}, {Src: "/mod.js", Module: true}, {}},
	})
	if err != nil {
		t.Fatal(err)
	}
	html := buf.String()

	for _, want := range []string{
		`<html lang="fr">`,
		`<meta name="description" content="a &quot;quoted&quot; page">`,
		`<meta property="og:title" content="T">`,
		`<link rel="stylesheet" href="/app.css">`,
		`<script src="/app.js" defer></script>`,
		`<script type="module" src="/mod.js"></script>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page should contain %q\n%s", want, html)
		}
	}
	if strings.Count(html, "<script") != 3 {
		t.Errorf("script without src should be skipped\n%s", html)
	}
}

func TestRenderPageBadPayload(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(Config{}).RenderPage(&buf, PageData{
		Component: "Counter",
		Props:     map[string]any{"n": math.Inf(1)},
	})
	if errors.CodeOf(err) != "E044" {
		t.Fatalf("err = %v, want E044", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written on payload failure")
	}
}
