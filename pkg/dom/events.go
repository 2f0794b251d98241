package dom

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html/atom"

	"github.com/vango-dev/drizzle/internal/errors"
)

// Event is a DOM event dispatched through Element.Dispatch.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element
	Bubbles       bool
	Detail        any

	defaultPrevented bool
	stopped          bool
}

// NewEvent returns a bubbling event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: true}
}

// PreventDefault cancels the default action of the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

type listener struct {
	fn      func(*Event)
	removed bool
}

// AddEventListener registers fn for events of type typ on e and returns a
// function that removes it. Calling the returned function more than once
// is a no-op.
func (e *Element) AddEventListener(typ string, fn func(*Event)) (remove func()) {
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	e.listeners[typ] = append(e.listeners[typ], l)
	e.doc.listenerCount++

	return func() {
		if l.removed {
			return
		}
		l.removed = true
		e.doc.listenerCount--
		list := e.listeners[typ]
		for i, other := range list {
			if other == l {
				e.listeners[typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(e.listeners[typ]) == 0 {
			delete(e.listeners, typ)
		}
	}
}

// ListenerCount returns the number of listeners registered on e for typ,
// or for every type when typ is "".
func (e *Element) ListenerCount(typ string) int {
	if typ != "" {
		return len(e.listeners[typ])
	}
	n := 0
	for _, list := range e.listeners {
		n += len(list)
	}
	return n
}

// Dispatch delivers ev to e and, when it bubbles, to each ancestor in
// turn. A panicking listener is logged and skipped. After the outermost
// dispatch returns, the document's after-dispatch hooks run. Dispatch
// reports whether the default action was not prevented.
func (e *Element) Dispatch(ev *Event) bool {
	ev.Target = e
	d := e.doc
	d.dispatchDepth++
	defer func() {
		d.dispatchDepth--
		if d.dispatchDepth == 0 {
			for _, fn := range d.afterDispatch {
				fn()
			}
		}
	}()

	for cur := e; cur != nil; cur = cur.Parent() {
		ev.CurrentTarget = cur
		cur.invoke(ev)
		if ev.stopped || !ev.Bubbles {
			break
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}

func (e *Element) invoke(ev *Event) {
	list := e.listeners[ev.Type]
	if len(list) == 0 {
		return
	}
	snapshot := make([]*listener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		e.doc.call(l, ev)
	}
}

func (d *Document) call(l *listener, ev *Event) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.New("E080").Wrap(fmt.Errorf("%s listener panic: %v", ev.Type, rec))
			d.logger.Error(err.Message, append(err.LogAttrs(), slog.String("event", ev.Type))...)
		}
	}()
	l.fn(ev)
}

// Click simulates a user click. Disabled controls ignore it. A checkbox or
// radio input toggles before listeners run, reverts when the click is
// prevented, and otherwise fires input and change. A submit button inside
// a form submits the form.
func (e *Element) Click() {
	if e.Disabled() && isFormControl(e) {
		return
	}

	checkable := e.IsCheckable()
	was := false
	if checkable {
		was = e.Checked()
		if e.Type() == "radio" {
			e.SetChecked(true)
		} else {
			e.SetChecked(!was)
		}
	}

	if !e.Dispatch(NewEvent("click")) {
		if checkable {
			e.setBoolAttr("checked", was)
		}
		return
	}

	switch {
	case checkable:
		if e.Checked() != was {
			e.Dispatch(NewEvent("input"))
			e.Dispatch(NewEvent("change"))
		}
	case e.isSubmitter():
		if form := e.Form(); form != nil {
			form.Submit()
		}
	}
}

func (e *Element) isSubmitter() bool {
	switch e.node.DataAtom {
	case atom.Button:
		return e.Type() == "submit"
	case atom.Input:
		return e.Type() == "submit" || e.Type() == "image"
	}
	return false
}

func isFormControl(e *Element) bool {
	switch e.node.DataAtom {
	case atom.Button, atom.Input, atom.Select, atom.Textarea, atom.Option, atom.Fieldset:
		return true
	}
	return false
}

// Input simulates typing: the control value becomes value, then input and
// change events fire. Checkable inputs are set checked when value is
// "on" or "true".
func (e *Element) Input(value string) {
	if e.Disabled() {
		return
	}
	if e.IsCheckable() {
		e.SetChecked(value == "on" || value == "true")
	} else {
		e.SetValue(value)
	}
	e.Dispatch(NewEvent("input"))
	e.Dispatch(NewEvent("change"))
}

// Submit dispatches a submit event on the element's form. It reports
// whether the default action (navigation) would proceed.
func (e *Element) Submit() bool {
	form := e.Form()
	if form == nil {
		return false
	}
	return form.Dispatch(NewEvent("submit"))
}
