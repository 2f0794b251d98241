package directive

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/drizzle/internal/errors"
	"github.com/vango-dev/drizzle/pkg/coerce"
	"github.com/vango-dev/drizzle/pkg/dom"
	"github.com/vango-dev/drizzle/pkg/reactive"
)

var discard = slog.New(slog.DiscardHandler)

type fixture struct {
	doc *dom.Document
	rt  *Runtime
	log *bytes.Buffer
}

func setup(t *testing.T, src string, opts ...Option) *fixture {
	t.Helper()
	doc, err := dom.ParseString(src, dom.WithLogger(discard))
	if err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry()
	reg.RegisterBuiltins()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	opts = append([]Option{WithRegistry(reg), WithLogger(logger)}, opts...)
	rt := New(doc, opts...)
	return &fixture{doc: doc, rt: rt, log: &buf}
}

func (f *fixture) q(sel string) *dom.Element {
	el := f.doc.QuerySelector(sel)
	if el == nil {
		panic("no element for " + sel)
	}
	return el
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	if err := f.rt.Flush(); err != nil {
		t.Fatal(err)
	}
}

func TestShow(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"false hides", `<p data-show="false">x</p>`, "none"},
		{"true shows", `<p data-show="true" style="display: none">x</p>`, ""},
		{"truthy expression", `<p data-scope="{n: 2}" data-show="n > 1">x</p>`, ""},
		{"missing property is falsy", `<p data-show="nothing.here">x</p>`, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.src)
			f.rt.Scan(nil)
			if got := f.q("p").Style().Display(); got != tt.want {
				t.Errorf("display = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShowReactsToWrites(t *testing.T) {
	f := setup(t, `<div data-scope="{open: false}"><p data-show="open">x</p></div>`)
	f.rt.Scan(nil)
	p := f.q("p")
	inst := f.rt.Instance(p)

	inst.Set("open", true)
	f.flush(t)
	if p.HasAttr("style") {
		t.Errorf("shown element style = %q", p.Attr("style"))
	}
	inst.Set("open", false)
	f.flush(t)
	if p.Style().Display() != "none" {
		t.Error("element should be hidden again")
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name, expr, want string
	}{
		{"string", `'hello'`, "hello"},
		{"number", `n + 1`, "1"},
		{"zero is blank", `n`, ""},
		{"empty string is blank", `''`, ""},
		{"missing is blank", `missing`, ""},
		{"ternary", `n ? 'some' : 'none'`, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, `<div data-scope="{n: 0}"><span data-text="`+tt.expr+`">old</span></div>`)
			f.rt.Scan(nil)
			if got := f.q("span").TextContent(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClass(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"object toggles", `<div class="hidden x" data-class="{active: true, hidden: false}"></div>`, "x active"},
		{"object ignores prior state", `<div class="active" data-class="{active: true, hidden: false}"></div>`, "active"},
		{"string replaces", `<div class="a b" data-class="'c d'"></div>`, "c d"},
		{"className alias", `<div class="a" data-className="{b: 1}"></div>`, "a b"},
		{"multi-class key", `<div data-class="{'x y': true}"></div>`, "x y"},
		{"nil is a no-op", `<div class="keep" data-class="missing"></div>`, "keep"},
		{"number is a no-op", `<div class="a b" data-class="1 + 2"></div>`, "a b"},
		{"bool is a no-op", `<div class="a b" data-class="true"></div>`, "a b"},
		{"array is a no-op", `<div class="a b" data-class="['x', 'y']"></div>`, "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.src)
			f.rt.Scan(nil)
			if got := f.q("div").ClassName(); got != tt.want {
				t.Errorf("class = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClassResult(t *testing.T) {
	tests := []struct {
		in   any
		want ClassResult
	}{
		{nil, nil},
		{coerce.Null, nil},
		{"a b", ReplaceAll("a b")},
		{map[string]any{"a": 1, "b": ""}, Toggles{"a": true, "b": false}},
		{map[string]bool{"a": true}, Toggles{"a": true}},
		{map[string]int{"z": 0}, Toggles{"z": false}},
		{42, nil},
		{true, nil},
		{[]any{"x", "y"}, nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, NewClassResult(tt.in)); diff != "" {
			t.Errorf("NewClassResult(%v) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestModelRoundTrip(t *testing.T) {
	f := setup(t, `<form data-scope="{name: 'ann', agree: false}">
		<input id="name" data-model="name">
		<input id="agree" type="checkbox" data-model="this.agree">
		<input id="ghost" data-model="ghost">
	</form>`)
	f.rt.Scan(nil)
	name, agree, ghost := f.q("#name"), f.q("#agree"), f.q("#ghost")
	inst := f.rt.Instance(name)

	if name.Value() != "ann" {
		t.Fatalf("initial value = %q", name.Value())
	}

	inst.Set("name", "bob")
	f.flush(t)
	if name.Value() != "bob" {
		t.Errorf("property write did not reach the input: %q", name.Value())
	}

	name.Input("carl")
	if inst.Get("name") != "carl" {
		t.Errorf("typing did not reach the property: %v", inst.Get("name"))
	}

	agree.Click()
	if inst.Get("agree") != true {
		t.Errorf("checkbox did not write back: %v", inst.Get("agree"))
	}

	before := inst.Keys()
	ghost.Input("boo")
	if inst.Has("ghost") {
		t.Error("model must not create properties")
	}
	if diff := cmp.Diff(before, inst.Keys()); diff != "" {
		t.Errorf("instance changed (-before +after):\n%s", diff)
	}
}

func TestModelKeepsServerValueWhenEqual(t *testing.T) {
	f := setup(t, `<div data-scope="{q: 'pre'}"><input value="pre" data-model="q"></div>`)
	f.rt.Scan(nil)
	if got := f.q("input").Value(); got != "pre" {
		t.Errorf("value = %q", got)
	}
}

func TestModelFalsyValuesRenderEmpty(t *testing.T) {
	f := setup(t, `<div data-scope="{n: 0, b: false, s: 'x'}">
		<input id="n" value="stale" data-model="n"><input id="b" data-model="b"><input id="s" data-model="s">
	</div>`)
	f.rt.Scan(nil)
	for _, id := range []string{"#n", "#b"} {
		if got := f.q(id).Value(); got != "" {
			t.Errorf("%s value = %q, want empty", id, got)
		}
	}
	inst := f.rt.Instance(f.q("#s"))
	inst.Set("s", 7)
	f.flush(t)
	if got := f.q("#s").Value(); got != "7" {
		t.Errorf("#s value = %q, want 7", got)
	}
}

func TestDisabledAndRequired(t *testing.T) {
	f := setup(t, `<div data-scope="{busy: true, must: 0}">
		<button data-disabled="busy">go</button><input data-required="must" required>
	</div>`)
	f.rt.Scan(nil)
	btn, in := f.q("button"), f.q("input")
	if !btn.Disabled() || in.Required() {
		t.Fatalf("disabled=%v required=%v", btn.Disabled(), in.Required())
	}
	inst := f.rt.Instance(btn)
	inst.Set("busy", false)
	inst.Set("must", "yes")
	f.flush(t)
	if btn.Disabled() || !in.Required() {
		t.Errorf("after writes disabled=%v required=%v", btn.Disabled(), in.Required())
	}
}

func counter(s *reactive.Scheduler, calls *int) *reactive.Instance {
	return reactive.NewInstance(s, reactive.Data{
		"count": 3,
		"increment": reactive.Method(func(this *reactive.Instance, args ...any) any {
			*calls++
			this.Set("count", coerce.Number(this.Get("count"))+1)
			return nil
		}),
	})
}

func TestClickRunsOncePerEvent(t *testing.T) {
	f := setup(t, `<div id="app"><button data-click="increment" data-text="count">3</button></div>`)
	calls := 0
	if err := f.rt.Mount(f.q("#app"), counter(f.rt.Scheduler(), &calls)); err != nil {
		t.Fatal(err)
	}
	btn := f.q("button")

	btn.Click()
	if calls != 1 || btn.TextContent() != "4" {
		t.Errorf("after one click calls=%d text=%q", calls, btn.TextContent())
	}
	btn.Click()
	if calls != 2 || btn.TextContent() != "5" {
		t.Errorf("after two clicks calls=%d text=%q", calls, btn.TextContent())
	}
}

func TestClickCallExpressionAndEvent(t *testing.T) {
	f := setup(t, `<div id="app"><a data-click="record($event.Type)">x</a></div>`)
	var got []any
	inst := reactive.NewInstance(f.rt.Scheduler(), reactive.Data{
		"record": reactive.Method(func(this *reactive.Instance, args ...any) any {
			got = append(got, args...)
			return nil
		}),
	})
	if err := f.rt.Mount(f.q("#app"), inst); err != nil {
		t.Fatal(err)
	}
	f.q("a").Click()
	if diff := cmp.Diff([]any{"click"}, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestPreventVariants(t *testing.T) {
	f := setup(t, `<form data-submit-prevent="noop"><a data-click-prevent="noop">x</a><b data-click="noop">y</b></form>`)
	f.rt.Scan(nil)

	if f.q("a").Dispatch(dom.NewEvent("click")) {
		t.Error("click-prevent should prevent the default")
	}
	if !f.q("b").Dispatch(dom.NewEvent("click")) {
		t.Error("click should not prevent the default")
	}
	if f.q("form").Submit() {
		t.Error("submit-prevent should prevent the default")
	}
}

func TestSubmitHandlerWritesFlushOnce(t *testing.T) {
	f := setup(t, `<form id="f" data-submit-prevent="save"><p data-text="status + ':' + loading"></p></form>`)
	s := f.rt.Scheduler()
	inst := reactive.NewInstance(s, reactive.Data{
		"status":  "idle",
		"loading": false,
		"save": reactive.Method(func(this *reactive.Instance, args ...any) any {
			this.Set("loading", true)
			this.Set("status", "saving")
			return nil
		}),
	})
	if err := f.rt.Mount(f.q("#f"), inst); err != nil {
		t.Fatal(err)
	}
	seen := 0
	s.Effect(nil, func() reactive.Cleanup {
		_ = inst.Get("status")
		_ = inst.Get("loading")
		seen++
		return nil
	})

	f.q("#f").Submit()
	if seen != 2 {
		t.Errorf("two writes in one handler ran dependents %d times, want 2 (initial + one flush)", seen)
	}
	if got := f.q("p").TextContent(); got != "saving:true" {
		t.Errorf("text = %q", got)
	}
}

func TestUnknownDirectivesAreInert(t *testing.T) {
	f := setup(t, `<div data-foo="boom()" data-testid="x"><p data-text="'ok'"></p></div>`)
	f.rt.Scan(nil)
	if f.q("p").TextContent() != "ok" || f.rt.Bindings() != 1 {
		t.Errorf("bindings=%d", f.rt.Bindings())
	}
	if f.log.Len() != 0 {
		t.Errorf("unexpected log output %q", f.log.String())
	}
}

func TestRescanIsNoop(t *testing.T) {
	f := setup(t, `<div data-scope="{n: 1}"><button data-click="noop" data-text="n"></button></div>`)
	f.rt.Scan(nil)
	bindings, listeners := f.rt.Bindings(), f.doc.ListenerCount()
	inst := f.rt.Instance(f.q("button"))

	f.rt.Scan(nil)
	f.rt.Scan(f.q("button"))
	if f.rt.Bindings() != bindings || f.doc.ListenerCount() != listeners {
		t.Errorf("rescan changed bindings %d->%d listeners %d->%d",
			bindings, f.rt.Bindings(), listeners, f.doc.ListenerCount())
	}
	if f.rt.Instance(f.q("button")) != inst {
		t.Error("rescan replaced the scope instance")
	}
}

func TestTeardownOnRemoval(t *testing.T) {
	f := setup(t, `<main><section id="s" data-scope="{n: 0}">
		<button data-click="noop" data-text="n"></button><input data-model="n">
	</section></main>`)
	f.rt.Scan(nil)
	s := f.q("#s")
	btn := f.q("button")
	inst := f.rt.Instance(btn)
	if f.doc.ListenerCount() != 2 {
		t.Fatalf("ListenerCount() = %d", f.doc.ListenerCount())
	}

	s.Remove()
	if f.doc.ListenerCount() != 0 || f.rt.Bindings() != 0 || f.rt.HasScope(s) {
		t.Errorf("after removal listeners=%d bindings=%d", f.doc.ListenerCount(), f.rt.Bindings())
	}
	if inst.Subscribers("n") != 0 {
		t.Errorf("n still has %d subscribers", inst.Subscribers("n"))
	}

	btn.Click()
	inst.Set("n", 5)
	f.flush(t)
	if btn.TextContent() == "5" {
		t.Error("removed binding still updates")
	}
}

func TestSetInnerHTMLTearsDownAndBindsNewMarkup(t *testing.T) {
	f := setup(t, `<div id="box" data-scope="{msg: 'hi'}"><p data-text="msg"></p></div>`)
	f.rt.Scan(nil)
	box := f.q("#box")

	if err := box.SetInnerHTML(`<em data-text="msg + '!'"></em>`); err != nil {
		t.Fatal(err)
	}
	if f.rt.Bindings() != 1 {
		t.Errorf("Bindings() = %d, want 1", f.rt.Bindings())
	}
	if got := f.q("em").TextContent(); got != "hi!" {
		t.Errorf("inserted markup text = %q", got)
	}
}

func TestSyntaxErrorIsLoggedAndInert(t *testing.T) {
	f := setup(t, `<div><p id="bad" data-text="a +"></p><p id="good" data-text="'fine'"></p></div>`)
	f.rt.Scan(nil)
	if f.q("#good").TextContent() != "fine" {
		t.Error("a bad binding must not stop the scan")
	}
	if !strings.Contains(f.log.String(), "code=E060") {
		t.Errorf("expected E060, got %q", f.log.String())
	}
}

func TestCallingNonFunctionIsLogged(t *testing.T) {
	f := setup(t, `<div data-scope="{n: 1}"><p data-text="n()"></p></div>`)
	f.rt.Scan(nil)
	if !strings.Contains(f.log.String(), "code=E061") {
		t.Errorf("expected E061, got %q", f.log.String())
	}
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterBuiltins()
	reg.Register("explode", func(*dom.Element, Directive, *Utilities) { panic("kaboom") })
	f := setup(t, `<div><i data-explode="x"></i><p data-text="'after'"></p></div>`, WithRegistry(reg))
	f.rt.Scan(nil)

	if f.q("p").TextContent() != "after" {
		t.Error("scan should continue after a panicking handler")
	}
	if !strings.Contains(f.log.String(), "code=E080") || !strings.Contains(f.log.String(), "directive=explode") {
		t.Errorf("expected E080 log, got %q", f.log.String())
	}
}

func TestSkipChildrenAndIgnore(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterBuiltins()
	reg.Register("template", func(el *dom.Element, d Directive, u *Utilities) { u.SkipChildren() })
	f := setup(t, `<div>
		<section data-template=""><p id="a" data-text="'a'"></p></section>
		<section data-ignore><p id="b" data-text="'b'"></p></section>
		<p id="c" data-text="'c'"></p>
	</div>`, WithRegistry(reg))
	f.rt.Scan(nil)

	if f.q("#a").TextContent() != "" || f.q("#b").TextContent() != "" {
		t.Error("skipped subtrees were bound")
	}
	if f.q("#c").TextContent() != "c" {
		t.Error("siblings should still be bound")
	}
}

func TestCleanupRunsOnTeardown(t *testing.T) {
	reg := NewRegistry()
	cleaned := 0
	reg.Register("track", func(el *dom.Element, d Directive, u *Utilities) {
		u.Cleanup(func() { cleaned++ })
	})
	f := setup(t, `<div><i data-track></i></div>`, WithRegistry(reg))
	f.rt.Scan(nil)
	f.q("i").Remove()
	if cleaned != 1 {
		t.Errorf("cleanup ran %d times", cleaned)
	}
}

func TestIslandsWaitForMount(t *testing.T) {
	f := setup(t, `<body><main data-island="Counter"><b data-text="count">3</b></main><p data-text="'static'"></p></body>`)
	f.rt.Scan(nil)
	b := f.q("b")
	if f.rt.Bound(b, "text") {
		t.Fatal("unmounted island was scanned")
	}
	if f.q("p").TextContent() != "static" {
		t.Error("directives outside islands should bind")
	}

	calls := 0
	main := f.q("main")
	if err := f.rt.Mount(main, counter(f.rt.Scheduler(), &calls)); err != nil {
		t.Fatal(err)
	}
	if !f.rt.Bound(b, "text") || b.TextContent() != "3" {
		t.Errorf("mounted island not bound: %q", b.TextContent())
	}

	err := f.rt.Mount(main, counter(f.rt.Scheduler(), &calls))
	if errors.CodeOf(err) != "E082" {
		t.Errorf("second Mount = %v, want E082", err)
	}
}

func TestMountRebindsEarlierBindings(t *testing.T) {
	f := setup(t, `<div id="app"><span data-text="greeting"></span></div>`)
	f.rt.Scan(nil)
	span := f.q("span")
	if span.TextContent() != "" {
		t.Fatalf("unbound greeting = %q", span.TextContent())
	}

	inst := reactive.NewInstance(f.rt.Scheduler(), reactive.Data{"greeting": "hello"})
	if err := f.rt.Mount(f.q("#app"), inst); err != nil {
		t.Fatal(err)
	}
	if span.TextContent() != "hello" || f.rt.Bindings() != 1 {
		t.Errorf("text=%q bindings=%d", span.TextContent(), f.rt.Bindings())
	}
}

func TestNestedScopesFallThrough(t *testing.T) {
	f := setup(t, `<div data-scope="{theme: 'dark', name: 'outer'}">
		<div data-scope="{name: 'inner'}"><p data-text="name + '/' + theme"></p><input data-model="theme"></div>
	</div>`)
	f.rt.Scan(nil)
	if got := f.q("p").TextContent(); got != "inner/dark" {
		t.Errorf("text = %q", got)
	}
	f.q("input").Input("light")
	if got := f.q("p").TextContent(); got != "inner/light" {
		t.Errorf("model should write the outer property, text = %q", got)
	}
}

func TestGlobals(t *testing.T) {
	f := setup(t, `<p data-text="site">x</p>`, WithGlobals(reactive.Data{"site": "drizzle"}))
	f.rt.Scan(nil)
	if f.q("p").TextContent() != "drizzle" {
		t.Errorf("text = %q", f.q("p").TextContent())
	}
}

func TestCloseDisposesEverything(t *testing.T) {
	f := setup(t, `<div data-scope="{n: 1}"><button data-click="noop"></button></div>`)
	f.rt.Scan(nil)
	f.rt.Close()
	if f.doc.ListenerCount() != 0 || f.rt.Bindings() != 0 {
		t.Errorf("listeners=%d bindings=%d", f.doc.ListenerCount(), f.rt.Bindings())
	}
	f.rt.Scan(nil)
	if f.rt.Bindings() != 0 {
		t.Error("closed runtime must not bind")
	}
}

func TestDefaultRegistryInitAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if len(Default().Names()) != 0 {
		t.Fatal("Reset should empty the registry")
	}
	Init()
	want := []string{"class", "classname", "click", "click-prevent", "disabled", "model", "required", "show", "submit", "submit-prevent", "text"}
	if diff := cmp.Diff(want, Default().Names()); diff != "" {
		t.Errorf("built-ins mismatch (-want +got):\n%s", diff)
	}

	custom := func(*dom.Element, Directive, *Utilities) {}
	Register("text", custom)
	Init()
	if h, _ := Default().Lookup("text"); h == nil {
		t.Fatal("text missing")
	}
	Register("extra", custom)
	Init()
	if _, ok := Default().Lookup("extra"); !ok {
		t.Error("Init must not reinitialize the registry")
	}
}
