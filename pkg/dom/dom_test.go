package dom

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := ParseString(src, WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestParseAndQuery(t *testing.T) {
	d := mustParse(t, `<html><head><title>x</title></head><body>
		<main id="app" class="a b"><p class="x">one</p><p>two</p></main></body></html>`)

	if d.Head() == nil || d.Body() == nil || d.DocumentElement().Tag() != "html" {
		t.Fatal("document structure missing")
	}
	app := d.GetElementByID("app")
	if app == nil || app.Tag() != "main" {
		t.Fatalf("GetElementByID = %v", app)
	}
	if d.QuerySelector("main") != app {
		t.Error("wrappers must be unique per node")
	}
	if got := len(app.QuerySelectorAll("p")); got != 2 {
		t.Errorf("QuerySelectorAll(p) = %d", got)
	}
	if app.QuerySelector("main") != nil {
		t.Error("element queries exclude the element itself")
	}
	if p := app.QuerySelector("p.x"); p == nil || p.TextContent() != "one" || !p.Matches(".x") {
		t.Error("QuerySelector(p.x) failed")
	}
	if app.QuerySelector("p[") != nil {
		t.Error("invalid selectors match nothing")
	}
	if p := app.QuerySelector("p"); p.Closest("main") != app || p.Closest("table") != nil {
		t.Error("Closest failed")
	}
}

func TestAttributes(t *testing.T) {
	d := mustParse(t, `<div data-show="open" data-className="x" title="t"></div>`)
	el := d.QuerySelector("div")

	// The parser lower-cases attribute names.
	want := []Attribute{{"show", "open"}, {"classname", "x"}}
	if diff := cmp.Diff(want, el.DataAttrs()); diff != "" {
		t.Errorf("DataAttrs mismatch (-want +got):\n%s", diff)
	}

	el.SetAttr("title", "u")
	el.SetAttr("Lang", "en")
	if el.Attr("title") != "u" || el.Attr("lang") != "en" {
		t.Error("SetAttr failed")
	}
	el.RemoveAttr("title")
	if el.HasAttr("title") {
		t.Error("RemoveAttr failed")
	}
}

func TestStyle(t *testing.T) {
	d := mustParse(t, `<div style="color: red; display:block"></div>`)
	el := d.QuerySelector("div")
	s := el.Style()

	if s.Display() != "block" || s.Get("color") != "red" {
		t.Fatalf("parsed style = %q", s.String())
	}
	s.SetDisplay("none")
	if el.Attr("style") != "color: red; display: none;" {
		t.Errorf("style = %q", el.Attr("style"))
	}
	s.SetDisplay("")
	if s.Display() != "" || el.Attr("style") != "color: red;" {
		t.Errorf("style after clearing display = %q", el.Attr("style"))
	}
	s.Remove("color")
	if el.HasAttr("style") {
		t.Error("empty style attribute should be dropped")
	}
}

func TestClassList(t *testing.T) {
	d := mustParse(t, `<div class="a  b a"></div>`)
	el := d.QuerySelector("div")
	cl := el.ClassList()

	if diff := cmp.Diff([]string{"a", "b"}, cl.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
	cl.Add("c", "a")
	cl.Remove("b")
	cl.Toggle("d", true)
	cl.Toggle("a", false)
	if el.ClassName() != "c d" {
		t.Errorf("class = %q", el.ClassName())
	}
	if !cl.Contains("c") || cl.Contains("a") {
		t.Error("Contains failed")
	}
	el.SetClassName("wholesale")
	if cl.String() != "wholesale" {
		t.Errorf("class = %q", cl.String())
	}
}

func TestFormProperties(t *testing.T) {
	d := mustParse(t, `<form>
		<input id="name" value="ann">
		<input id="agree" type="checkbox">
		<input id="r1" type="radio" name="r" checked><input id="r2" type="radio" name="r">
		<textarea id="bio">hi</textarea>
		<select id="pick"><option>a</option><option value="B">b</option></select>
		<button id="go">Go</button>
	</form>`)

	name := d.GetElementByID("name")
	if name.Type() != "text" || name.Value() != "ann" {
		t.Errorf("input type=%q value=%q", name.Type(), name.Value())
	}
	name.SetValue("bob")
	if name.Attr("value") != "bob" {
		t.Error("value should reflect to the attribute")
	}

	bio := d.GetElementByID("bio")
	bio.SetValue("hello")
	if bio.Value() != "hello" {
		t.Errorf("textarea value = %q", bio.Value())
	}

	pick := d.GetElementByID("pick")
	if pick.Value() != "a" {
		t.Errorf("select defaults to the first option, got %q", pick.Value())
	}
	pick.SetValue("B")
	if pick.Value() != "B" {
		t.Errorf("select value = %q", pick.Value())
	}

	r2 := d.GetElementByID("r2")
	r2.SetChecked(true)
	if d.GetElementByID("r1").Checked() || !r2.Checked() {
		t.Error("checking a radio unchecks its group")
	}

	goBtn := d.GetElementByID("go")
	if goBtn.Type() != "submit" || goBtn.Form() == nil {
		t.Error("button defaults to submit inside its form")
	}
	goBtn.SetDisabled(true)
	name.SetRequired(true)
	if !goBtn.Disabled() || !name.Required() {
		t.Error("boolean properties failed")
	}
	goBtn.SetDisabled(false)
	if goBtn.HasAttr("disabled") {
		t.Error("clearing a boolean property removes the attribute")
	}
}

func TestEventsBubbleAndRemove(t *testing.T) {
	d := mustParse(t, `<div id="outer"><button id="b">x</button></div>`)
	outer, b := d.GetElementByID("outer"), d.GetElementByID("b")

	var log []string
	removeInner := b.AddEventListener("click", func(ev *Event) {
		log = append(log, "inner:"+ev.CurrentTarget.ID())
	})
	outer.AddEventListener("click", func(ev *Event) {
		log = append(log, "outer:"+ev.Target.ID())
	})
	if d.ListenerCount() != 2 {
		t.Fatalf("ListenerCount() = %d", d.ListenerCount())
	}

	b.Dispatch(NewEvent("click"))
	removeInner()
	removeInner()
	b.Dispatch(NewEvent("click"))

	want := "inner:b outer:b outer:b"
	if got := strings.Join(log, " "); got != want {
		t.Errorf("log = %q, want %q", got, want)
	}
	if d.ListenerCount() != 1 || b.ListenerCount("") != 0 {
		t.Errorf("listener counts = %d, %d", d.ListenerCount(), b.ListenerCount(""))
	}
}

func TestStopPropagationAndPrevent(t *testing.T) {
	d := mustParse(t, `<div id="outer"><a id="a">x</a></div>`)
	outer, a := d.GetElementByID("outer"), d.GetElementByID("a")

	reached := false
	outer.AddEventListener("click", func(*Event) { reached = true })
	a.AddEventListener("click", func(ev *Event) {
		ev.StopPropagation()
		ev.PreventDefault()
	})

	if a.Dispatch(NewEvent("click")) {
		t.Error("Dispatch should report a prevented default")
	}
	if reached {
		t.Error("stopped event reached the ancestor")
	}
}

func TestListenerPanicIsRecovered(t *testing.T) {
	var buf bytes.Buffer
	d, err := ParseString(`<button>x</button>`, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	if err != nil {
		t.Fatal(err)
	}
	b := d.QuerySelector("button")
	ran := false
	b.AddEventListener("click", func(*Event) { panic("boom") })
	b.AddEventListener("click", func(*Event) { ran = true })

	b.Dispatch(NewEvent("click"))
	if !ran {
		t.Error("second listener should still run")
	}
	if !strings.Contains(buf.String(), "code=E080") {
		t.Errorf("expected E080 log, got %q", buf.String())
	}
}

func TestAfterDispatchRunsOncePerOutermostDispatch(t *testing.T) {
	d := mustParse(t, `<form><input type="checkbox"></form>`)
	box := d.QuerySelector("input")

	var events []string
	for _, typ := range []string{"click", "input", "change"} {
		box.AddEventListener(typ, func(ev *Event) { events = append(events, ev.Type) })
	}
	flushes := 0
	d.OnAfterDispatch(func() { flushes++ })

	box.Click()
	if !box.Checked() {
		t.Error("click should check the box")
	}
	if got := strings.Join(events, " "); got != "click input change" {
		t.Errorf("events = %q", got)
	}
	if flushes != 3 {
		t.Errorf("after-dispatch ran %d times, want 3", flushes)
	}
}

func TestClickBehaviour(t *testing.T) {
	d := mustParse(t, `<form><input id="c" type="checkbox"><button id="s">go</button><button id="off" disabled>no</button></form>`)
	form := d.QuerySelector("form")
	box := d.GetElementByID("c")

	box.AddEventListener("click", func(ev *Event) { ev.PreventDefault() })
	box.Click()
	if box.Checked() {
		t.Error("prevented click should revert the checkbox")
	}

	submits := 0
	form.AddEventListener("submit", func(*Event) { submits++ })
	d.GetElementByID("s").Click()
	d.GetElementByID("off").Click()
	if submits != 1 {
		t.Errorf("submits = %d, want 1", submits)
	}
}

func TestInputFiresInputAndChange(t *testing.T) {
	d := mustParse(t, `<input>`)
	in := d.QuerySelector("input")
	var events []string
	in.AddEventListener("input", func(ev *Event) { events = append(events, ev.Type+"="+ev.Target.Value()) })
	in.AddEventListener("change", func(ev *Event) { events = append(events, ev.Type) })

	in.Input("typed")
	if got := strings.Join(events, " "); got != "input=typed change" {
		t.Errorf("events = %q", got)
	}
}

func TestRemovalAndInsertObservers(t *testing.T) {
	d := mustParse(t, `<main><section id="s"><p>a</p></section><div id="d"><i>x</i></div></main>`)

	var removed, inserted []string
	d.OnRemove(func(el *Element) { removed = append(removed, el.Tag()) })
	d.OnInsert(func(el *Element) { inserted = append(inserted, el.Tag()) })

	s := d.GetElementByID("s")
	s.Remove()
	s.Remove()
	if s.Connected() {
		t.Error("removed element still connected")
	}

	div := d.GetElementByID("d")
	div.SetTextContent("plain")
	if div.InnerHTML() != "plain" {
		t.Errorf("InnerHTML = %q", div.InnerHTML())
	}
	if err := div.SetInnerHTML(`<b>1</b><u>2</u>`); err != nil {
		t.Fatal(err)
	}

	// Detached trees do not notify.
	orphan := d.CreateElement("span")
	orphan.AppendChild(d.CreateElement("em"))
	d.QuerySelector("main").AppendChild(orphan)

	if diff := cmp.Diff([]string{"section", "i"}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "u", "span"}, inserted); diff != "" {
		t.Errorf("inserted mismatch (-want +got):\n%s", diff)
	}
	if got := d.QuerySelector("main").OuterHTML(); got != `<main><div id="d"><b>1</b><u>2</u></div><span><em></em></span></main>` {
		t.Errorf("OuterHTML = %q", got)
	}
}

func TestRenderDocument(t *testing.T) {
	d := mustParse(t, `<p>x</p>`)
	if got := d.String(); got != "<html><head></head><body><p>x</p></body></html>" {
		t.Errorf("String() = %q", got)
	}
}
