package directive

import (
	"log/slog"

	"github.com/vango-dev/drizzle/pkg/dom"
	"github.com/vango-dev/drizzle/pkg/expr"
	"github.com/vango-dev/drizzle/pkg/reactive"
)

// Utilities is handed to a Handler while it installs one directive.
// Everything registered through it belongs to that binding and is
// disposed with it.
type Utilities struct {
	rt    *Runtime
	el    *dom.Element
	owner *reactive.Owner
	name  string
	skip  bool
}

// EvaluateLater compiles expression and returns a function that
// evaluates it and passes the result to cb. The nearest instance for el is
// resolved on every call, not when EvaluateLater is called. Syntax errors
// are logged once and make the returned function a no-op; evaluation
// errors are logged and cb is not called.
func (u *Utilities) EvaluateLater(el *dom.Element, expression string) func(cb func(any)) {
	eval := u.EvaluateLaterWith(el, expression)
	return func(cb func(any)) { eval(nil, cb) }
}

// EvaluateLaterWith is EvaluateLater with extra locals, such as $event,
// supplied per call.
func (u *Utilities) EvaluateLaterWith(el *dom.Element, expression string) func(locals expr.Vars, cb func(any)) {
	d := Directive{Name: u.name, Expression: expression}
	prog, err := u.rt.compile(el, d)
	if err != nil {
		return func(expr.Vars, func(any)) {}
	}
	return func(locals expr.Vars, cb func(any)) {
		v, err := prog.Eval(u.rt.scopeFor(el, locals))
		if err != nil {
			u.rt.logEvalError(el, d, err)
			return
		}
		cb(v)
	}
}

// Effect runs fn now and again whenever a property it read changes, until
// the binding is disposed.
func (u *Utilities) Effect(fn func()) *reactive.Effect {
	return u.rt.sched.Effect(u.owner, func() reactive.Cleanup {
		fn()
		return nil
	})
}

// Cleanup registers fn to run when the binding is disposed.
func (u *Utilities) Cleanup(fn func()) {
	u.owner.OnCleanup(fn)
}

// On adds an event listener to the bound element that is removed with the
// binding.
func (u *Utilities) On(typ string, fn func(*dom.Event)) {
	u.Cleanup(u.el.AddEventListener(typ, fn))
}

// SkipChildren stops the scanner from descending into the element.
func (u *Utilities) SkipChildren() {
	u.skip = true
}

// Instance returns the nearest component instance of the bound element.
func (u *Utilities) Instance() *reactive.Instance {
	return u.rt.Instance(u.el)
}

// Runtime returns the runtime doing the installation.
func (u *Utilities) Runtime() *Runtime {
	return u.rt
}

// Logger returns the runtime logger.
func (u *Utilities) Logger() *slog.Logger {
	return u.rt.logger
}
