package directive

import (
	"github.com/vango-dev/drizzle/pkg/coerce"
	"github.com/vango-dev/drizzle/pkg/dom"
	"github.com/vango-dev/drizzle/pkg/expr"
	"github.com/vango-dev/drizzle/pkg/reactive"
)

func builtins() map[string]Handler {
	return map[string]Handler{
		"show":           show,
		"text":           text,
		"class":          class,
		"classname":      class,
		"model":          model,
		"disabled":       disabled,
		"required":       required,
		"click":          listen("click", false),
		"submit":         listen("submit", false),
		"click-prevent":  listen("click", true),
		"submit-prevent": listen("submit", true),
	}
}

// show toggles display between "" and "none".
func show(el *dom.Element, d Directive, u *Utilities) {
	eval := u.EvaluateLater(el, d.Expression)
	u.Effect(func() {
		eval(func(v any) {
			if coerce.Truthy(v) {
				el.Style().SetDisplay("")
			} else {
				el.Style().SetDisplay("none")
			}
		})
	})
}

// text sets textContent to the result, or "" when the result is falsy.
func text(el *dom.Element, d Directive, u *Utilities) {
	eval := u.EvaluateLater(el, d.Expression)
	u.Effect(func() {
		eval(func(v any) {
			s := ""
			if coerce.Truthy(v) {
				s = coerce.String(v)
			}
			if el.TextContent() == s && len(el.Children()) == 0 {
				return
			}
			el.SetTextContent(s)
		})
	})
}

// class toggles classes from an object or replaces them from a string.
func class(el *dom.Element, d Directive, u *Utilities) {
	eval := u.EvaluateLater(el, d.Expression)
	u.Effect(func() {
		eval(func(v any) {
			if r := NewClassResult(v); r != nil {
				r.apply(el)
			}
		})
	})
}

func disabled(el *dom.Element, d Directive, u *Utilities) {
	eval := u.EvaluateLater(el, d.Expression)
	u.Effect(func() {
		eval(func(v any) { el.SetDisabled(coerce.Truthy(v)) })
	})
}

func required(el *dom.Element, d Directive, u *Utilities) {
	eval := u.EvaluateLater(el, d.Expression)
	u.Effect(func() {
		eval(func(v any) { el.SetRequired(coerce.Truthy(v)) })
	})
}

// model binds a form control to an instance property in both directions.
// The property is written back only when it already exists on an instance
// visible from the element.
func model(el *dom.Element, d Directive, u *Utilities) {
	eval := u.EvaluateLater(el, d.Expression)
	u.Effect(func() {
		eval(func(v any) { pushValue(el, v) })
	})

	name := modelTarget(d.Expression)
	u.On("input", func(*dom.Event) {
		if name == "" {
			return
		}
		for _, inst := range u.rt.Instances(el) {
			if inst.Has(name) {
				writeValue(el, inst, name)
				return
			}
		}
	})
}

// modelTarget returns the property a model expression names: a bare
// identifier or this.name. Other expressions are read-only bindings.
func modelTarget(expression string) string {
	node, err := expr.Parse(expression)
	if err != nil {
		return ""
	}
	switch n := node.(type) {
	case *expr.Ident:
		return n.Name
	case *expr.Member:
		if _, ok := n.Object.(*expr.This); ok {
			return n.Name
		}
	}
	return ""
}

func pushValue(el *dom.Element, v any) {
	switch {
	case el.IsCheckable() && el.Type() == "radio":
		el.SetChecked(!coerce.IsNullish(v) && coerce.String(v) == el.Value())
	case el.IsCheckable():
		el.SetChecked(coerce.Truthy(v))
	default:
		s := ""
		if coerce.Truthy(v) {
			s = coerce.String(v)
		}
		if el.Value() != s {
			el.SetValue(s)
		}
	}
}

func writeValue(el *dom.Element, inst *reactive.Instance, name string) {
	switch {
	case el.IsCheckable() && el.Type() == "radio":
		if el.Checked() {
			inst.Set(name, el.Value())
		}
	case el.IsCheckable():
		inst.Set(name, el.Checked())
	default:
		inst.Set(name, el.Value())
	}
}

// listen returns a handler that evaluates the expression once per event
// and, when the result is callable, calls it with the event. The event is
// also visible to the expression as $event.
func listen(event string, prevent bool) Handler {
	return func(el *dom.Element, d Directive, u *Utilities) {
		eval := u.EvaluateLaterWith(el, d.Expression)
		u.On(event, func(ev *dom.Event) {
			if prevent {
				ev.PreventDefault()
			}
			eval(expr.Vars{"$event": ev}, func(v any) {
				if !expr.IsCallable(v) {
					return
				}
				if _, err := expr.Call(v, ev); err != nil {
					u.rt.logEvalError(el, d, err)
				}
			})
		})
	}
}
