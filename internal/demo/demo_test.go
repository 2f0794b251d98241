package demo

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/vango-dev/drizzle/pkg/directive"
	"github.com/vango-dev/drizzle/pkg/dom"
	"github.com/vango-dev/drizzle/pkg/hydrate"
	"github.com/vango-dev/drizzle/pkg/reactive"
	"github.com/vango-dev/drizzle/pkg/render"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

type page struct {
	doc     *dom.Document
	rt      *directive.Runtime
	islands []*hydrate.Island
	log     *bytes.Buffer
}

// boot renders comp server-side, parses the result and hydrates it.
func boot(t *testing.T, comp hydrate.Component, props map[string]any) *page {
	t.Helper()
	var out bytes.Buffer
	err := render.NewRenderer(render.Config{}).RenderPage(&out, render.PageData{
		Body:      vdom.H(comp.Render, vdom.Props(props)),
		Component: comp.Name,
		Props:     props,
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	doc, err := dom.ParseString(out.String(), dom.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	dirs := directive.NewRegistry()
	dirs.RegisterBuiltins()
	reg := hydrate.NewRegistry()
	reg.Register(comp)

	rt := directive.New(doc, directive.WithRegistry(dirs), directive.WithLogger(logger))
	islands := hydrate.Boot(rt, hydrate.WithRegistry(reg), hydrate.WithVerify())
	if len(islands) != 1 || islands[0].State() != hydrate.Bound {
		t.Fatalf("islands = %s, log %q", hydrate.Summary(islands), buf.String())
	}
	if strings.Contains(buf.String(), "E043") {
		t.Errorf("server markup differs from a fresh render: %q", buf.String())
	}
	return &page{doc: doc, rt: rt, islands: islands, log: &buf}
}

func (p *page) find(t *testing.T, sel string) *dom.Element {
	t.Helper()
	el := p.doc.QuerySelector(sel)
	if el == nil {
		t.Fatalf("no element matches %q", sel)
	}
	return el
}

func TestCounter(t *testing.T) {
	p := boot(t, Counter(), map[string]any{"count": 5})

	count := p.find(t, "span")
	reset := p.find(t, "button.reset")
	if count.TextContent() != "5" || !reset.Disabled() {
		t.Fatalf("initial count=%q reset disabled=%v", count.TextContent(), reset.Disabled())
	}

	steps := []struct {
		button    string
		want      string
		resetable bool
	}{
		{"button.increment", "6", true},
		{"button.increment", "7", true},
		{"button.decrement", "6", true},
		{"button.reset", "5", false},
		{"button.reset", "5", false},
		{"button.decrement", "4", true},
	}
	for i, step := range steps {
		p.find(t, step.button).Click()
		if got := count.TextContent(); got != step.want {
			t.Errorf("step %d (%s): count = %q, want %q", i, step.button, got, step.want)
		}
		if reset.Disabled() == step.resetable {
			t.Errorf("step %d: reset disabled = %v", i, reset.Disabled())
		}
	}
}

func TestLoginForm(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		message  string
		class    string
	}{
		{"missing email", "", "", "Email is required", "error"},
		{"bad password", "ada@example.com", "short", ErrInvalidCredentials.Error(), "error"},
		{"success", "ada@example.com", "correct horse", "Welcome back, ada@example.com", "success"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := boot(t, LoginForm(LoginOptions{}), map[string]any{})

			p.find(t, "#email").Input(tt.email)
			p.find(t, "#password").Input(tt.password)
			p.find(t, "button").Click()

			msg := p.find(t, ".form-message")
			if got := msg.TextContent(); got != tt.message {
				t.Errorf("message = %q, want %q", got, tt.message)
			}
			if !msg.ClassList().Contains(tt.class) || !msg.ClassList().Contains("form-message") {
				t.Errorf("class = %q, want form-message and %s", msg.ClassName(), tt.class)
			}
			if p.find(t, "button").Disabled() {
				t.Error("button still disabled after the attempt finished")
			}
		})
	}
}

func TestLoginFormPrefill(t *testing.T) {
	p := boot(t, LoginForm(LoginOptions{}), map[string]any{"email": "ada@example.com", "error": "Session expired"})

	if got := p.find(t, "#email").Value(); got != "ada@example.com" {
		t.Errorf("email = %q", got)
	}
	msg := p.find(t, ".form-message")
	if msg.TextContent() != "Session expired" || !msg.ClassList().Contains("error") {
		t.Errorf("message = %q class = %q", msg.TextContent(), msg.ClassName())
	}
	if !p.find(t, "#password").Required() {
		t.Error("password should be required until login succeeds")
	}
}

func TestLoginFormOnLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	auth := func(ctx context.Context, email, password string) error {
		mu.Lock()
		calls++
		mu.Unlock()
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	sched := reactive.NewScheduler()
	loop := reactive.NewLoop(sched)
	comp := LoginForm(LoginOptions{Authenticate: auth, Loop: loop})

	var out bytes.Buffer
	if err := render.NewRenderer(render.Config{}).RenderPage(&out, render.PageData{
		Body:      vdom.H(comp.Render, vdom.Props{}),
		Component: comp.Name,
	}); err != nil {
		t.Fatal(err)
	}
	doc, err := dom.ParseString(out.String())
	if err != nil {
		t.Fatal(err)
	}
	dirs := directive.NewRegistry()
	dirs.RegisterBuiltins()
	reg := hydrate.NewRegistry()
	reg.Register(comp)
	rt := directive.New(doc, directive.WithRegistry(dirs), directive.WithScheduler(sched))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	do := func(fn func()) {
		t.Helper()
		if err := loop.Do(ctx, fn); err != nil {
			t.Fatal(err)
		}
	}

	do(func() {
		hydrate.Boot(rt, hydrate.WithRegistry(reg))
		doc.QuerySelector("#email").Input("ada@example.com")
		doc.QuerySelector("#password").Input("anything")
		doc.QuerySelector("button").Click()
	})

	var label string
	var disabled bool
	do(func() {
		label = doc.QuerySelector("button span").TextContent()
		disabled = doc.QuerySelector("button").Disabled()
		// Submitting again while loading is ignored, and a disabled
		// button does not click.
		doc.QuerySelector("form").Dispatch(dom.NewEvent("submit"))
	})
	if label != "Signing in..." || !disabled {
		t.Errorf("while loading: label=%q disabled=%v", label, disabled)
	}

	close(release)

	deadline := time.Now().Add(2 * time.Second)
	var msg string
	for time.Now().Before(deadline) {
		do(func() { msg = doc.QuerySelector(".form-message").TextContent() })
		if msg != "" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if msg != "Welcome back, ada@example.com" {
		t.Errorf("message = %q", msg)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("authenticate called %d times, want 1", calls)
	}
}

func TestRegister(t *testing.T) {
	hydrate.Reset()
	t.Cleanup(hydrate.Reset)

	Register(LoginOptions{})
	for _, name := range []string{CounterName, LoginFormName} {
		if _, ok := hydrate.Lookup(name); !ok {
			t.Errorf("%s not registered", name)
		}
	}
}

func TestDefaultAuthenticator(t *testing.T) {
	tests := []struct {
		email, password string
		ok              bool
	}{
		{"ada@example.com", "12345678", true},
		{"ada@example.com", "1234567", false},
		{"not an address", "12345678", false},
	}
	for _, tt := range tests {
		err := DefaultAuthenticator(context.Background(), tt.email, tt.password)
		if (err == nil) != tt.ok {
			t.Errorf("DefaultAuthenticator(%q, %q) = %v", tt.email, tt.password, err)
		}
	}
}

func TestCounterWithoutCount(t *testing.T) {
	p := boot(t, Counter(), map[string]any{})
	if got := p.find(t, "span").TextContent(); got != "0" {
		t.Errorf("count = %q, want 0", got)
	}
	p.find(t, "button.decrement").Click()
	if got := p.find(t, "span").TextContent(); got != "-1" {
		t.Errorf("count = %q, want -1", got)
	}
}
