package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/drizzle/internal/demo"
	"github.com/vango-dev/drizzle/pkg/directive"
	"github.com/vango-dev/drizzle/pkg/dom"
	"github.com/vango-dev/drizzle/pkg/hydrate"
	"github.com/vango-dev/drizzle/pkg/middleware"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

func newTestServer(t *testing.T, config *ServerConfig) (*Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	if config == nil {
		config = &ServerConfig{}
	}
	config.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	return New(config), &buf
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func countProps(r *http.Request) (map[string]any, error) {
	return map[string]any{"count": 3}, nil
}

func TestPage(t *testing.T) {
	s, _ := newTestServer(t, &ServerConfig{MetricsPath: "/metrics"})
	s.Page("/", demo.Counter(), countProps, WithTitle("Counter"), WithStyleSheets("/static/app.css"))

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Counter</title>",
		`<link rel="stylesheet" href="/static/app.css">`,
		`<main data-island="Counter">`,
		`data-hydrate="Counter"`,
		`{"count":3}`,
		`<script src="/_drizzle/runtime.js"></script>`,
		"window.hydrateApp(",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	metrics := get(t, s, "/metrics").Body.String()
	for _, want := range []string{
		`drizzle_page_renders_total{component="Counter"} 1`,
		`drizzle_http_requests_total{method="GET",route="/",status="200"} 1`,
	} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestPageHydratesHeadlessly(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.Page("/", demo.Counter(), countProps)

	doc, err := dom.ParseString(get(t, s, "/").Body.String())
	if err != nil {
		t.Fatal(err)
	}
	dirs := directive.NewRegistry()
	dirs.RegisterBuiltins()
	reg := hydrate.NewRegistry()
	reg.Register(demo.Counter())
	rt := directive.New(doc, directive.WithRegistry(dirs))

	islands := hydrate.Boot(rt, hydrate.WithRegistry(reg))
	if len(islands) != 1 || islands[0].State() != hydrate.Bound {
		t.Fatalf("islands = %s", hydrate.Summary(islands))
	}
	doc.QuerySelector("button.increment").Click()
	if got := doc.QuerySelector("span").TextContent(); got != "4" {
		t.Errorf("count after click = %q, want 4", got)
	}
}

func TestPagePropsErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		logged bool
	}{
		{"not found", ErrNotFound, http.StatusNotFound, false},
		{"wrapped not found", fmt.Errorf("user 7: %w", ErrNotFound), http.StatusNotFound, false},
		{"failure", fmt.Errorf("database down"), http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, log := newTestServer(t, nil)
			s.Page("/", demo.Counter(), func(*http.Request) (map[string]any, error) { return nil, tt.err })

			rec := get(t, s, "/")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := strings.Contains(log.String(), "page props failed"); got != tt.logged {
				t.Errorf("logged = %v, want %v: %q", got, tt.logged, log.String())
			}
		})
	}
}

func TestPageUnencodableProps(t *testing.T) {
	s, log := newTestServer(t, nil)
	s.Page("/", hydrate.Component{Name: "Bad"}, func(*http.Request) (map[string]any, error) {
		return map[string]any{"ch": make(chan int)}, nil
	})
	if rec := get(t, s, "/"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(log.String(), "page render failed") {
		t.Errorf("render failure not logged: %q", log.String())
	}
}

func TestPageRenderFailureIsRecovered(t *testing.T) {
	s, log := newTestServer(t, &ServerConfig{MetricsPath: "/metrics"})
	s.Page("/", hydrate.Component{
		Name: "Flaky",
		Render: func(vdom.Props) any {
			return vdom.H("div", nil,
				vdom.H("p", nil, "kept"),
				vdom.H(vdom.FuncComponent(func(vdom.Props) any { panic("boom") }), nil),
			)
		},
	}, nil)

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<p>kept</p>") {
		t.Errorf("healthy siblings should render: %s", rec.Body.String())
	}
	if !strings.Contains(log.String(), "code=E010") {
		t.Errorf("render failure not logged: %q", log.String())
	}
	if !strings.Contains(get(t, s, "/metrics").Body.String(), `drizzle_render_failures_total{code="E010"} 1`) {
		t.Error("render failure not counted")
	}
}

func TestStaticPage(t *testing.T) {
	s, _ := newTestServer(t, &ServerConfig{Container: "section", Lang: "de"})
	s.Page("/about", demo.Counter(), nil, Static())

	body := get(t, s, "/about").Body.String()
	if strings.Contains(body, "data-hydrate") || strings.Contains(body, "hydrateApp") {
		t.Error("static page should not hydrate")
	}
	if !strings.Contains(body, `<html lang="de">`) || !strings.Contains(body, "<section>") {
		t.Errorf("config not applied: %s", body)
	}
}

func TestCSPNonce(t *testing.T) {
	s, _ := newTestServer(t, &ServerConfig{CSP: true})
	s.Page("/", demo.Counter(), countProps)

	rec := get(t, s, "/")
	policy := rec.Header().Get("Content-Security-Policy")
	nonce := strings.TrimSuffix(strings.TrimPrefix(policy, "script-src 'nonce-"), "'")
	if nonce == "" || nonce == policy {
		t.Fatalf("policy = %q", policy)
	}
	if n := strings.Count(rec.Body.String(), `nonce="`+nonce+`"`); n != 3 {
		t.Errorf("nonce on %d scripts, want 3 (payload, runtime, hydration call)", n)
	}
	if other := get(t, s, "/").Header().Get("Content-Security-Policy"); other == policy {
		t.Error("nonce reused across requests")
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if get(t, s, "/metrics").Code != http.StatusNotFound {
		t.Error("metrics should be off without MetricsPath")
	}
}

func TestNewWithNilConfig(t *testing.T) {
	s := New(nil)
	if s.Config().Registry == nil || s.Logger() == nil {
		t.Fatalf("config = %+v", s.Config())
	}
	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0644); err != nil {
		t.Fatal(err)
	}
	s, _ := newTestServer(t, &ServerConfig{StaticDir: dir, StaticPrefix: "/assets"})

	rec := get(t, s, "/assets/app.css")
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Errorf("static = %d %q", rec.Code, rec.Body.String())
	}
	if get(t, s, "/assets/missing.css").Code != http.StatusNotFound {
		t.Error("missing file should 404")
	}
}

func TestServeGracefulShutdown(t *testing.T) {
	s, log := newTestServer(t, &ServerConfig{ShutdownTimeout: time.Second})
	s.Page("/", demo.Counter(), countProps)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok\n" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if !strings.Contains(log.String(), "server shutdown complete") {
		t.Errorf("shutdown not logged: %q", log.String())
	}
}

func TestDefaultServerConfig(t *testing.T) {
	var nilConfig *ServerConfig
	c := nilConfig.withDefaults()
	if c.Address != "localhost:3000" || c.StaticPrefix != "/static/" || c.Registry == nil || c.Logger == nil {
		t.Errorf("defaults = %+v", c)
	}

	orig := &ServerConfig{Address: ":9090"}
	c = orig.withDefaults()
	if c.Address != ":9090" || orig.Registry != nil {
		t.Error("withDefaults must not mutate its receiver")
	}
}
