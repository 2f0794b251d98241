package demo

import (
	"math"

	"github.com/vango-dev/drizzle/pkg/coerce"
	"github.com/vango-dev/drizzle/pkg/hydrate"
	"github.com/vango-dev/drizzle/pkg/reactive"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

// CounterName is the registered name of the counter island.
const CounterName = "Counter"

// Counter returns the counter island. Props: count (initial value).
func Counter() hydrate.Component {
	return hydrate.Component{
		Name:   CounterName,
		Render: counterView,
		Data:   counterData,
	}
}

// startCount reads the count prop. A missing or non-numeric count starts
// at zero.
func startCount(props vdom.Props) float64 {
	n := coerce.Number(props["count"])
	if math.IsNaN(n) {
		return 0
	}
	return n
}

func counterView(props vdom.Props) any {
	count := startCount(props)
	// data-text blanks falsy results, so the count is concatenated to keep
	// a zero visible.
	return vdom.H("div", vdom.Props{"class": "counter-component"},
		vdom.H("h2", nil, "Counter: ", vdom.H("span", vdom.Props{"data-text": "'' + count"}, coerce.String(count))),
		vdom.H("button", vdom.Props{"class": "increment", "data-click": "increment"}, "+"),
		vdom.H("button", vdom.Props{"class": "decrement", "data-click": "decrement"}, "-"),
		vdom.H("button", vdom.Props{
			"class":         "reset",
			"data-click":    "reset",
			"data-disabled": "!dirty",
			"disabled":      true,
		}, "Reset"),
	)
}

func counterData(props vdom.Props) reactive.Data {
	start := startCount(props)
	step := func(delta float64) reactive.Method {
		return func(this *reactive.Instance, _ ...any) any {
			this.Set("count", coerce.Number(this.Get("count"))+delta)
			return nil
		}
	}
	return reactive.Data{
		"count":     start,
		"increment": step(1),
		"decrement": step(-1),
		"reset": reactive.Method(func(this *reactive.Instance, _ ...any) any {
			this.Set("count", start)
			return nil
		}),
		"dirty": reactive.Getter(func(this *reactive.Instance) any {
			return coerce.Number(this.Get("count")) != start
		}),
	}
}
