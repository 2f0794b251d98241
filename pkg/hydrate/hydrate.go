package hydrate

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/drizzle/internal/errors"
	"github.com/vango-dev/drizzle/pkg/directive"
	"github.com/vango-dev/drizzle/pkg/dom"
	"github.com/vango-dev/drizzle/pkg/reactive"
	"github.com/vango-dev/drizzle/pkg/render"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

// State is the hydration state of an island.
type State int

const (
	Unhydrated State = iota
	Scanning
	Bound
	Failed
)

func (s State) String() string {
	switch s {
	case Unhydrated:
		return "unhydrated"
	case Scanning:
		return "scanning"
	case Bound:
		return "bound"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Island is the result of one hydration attempt. Bound and Failed are
// terminal; a failed island is never retried.
type Island struct {
	Name      string
	ID        string
	Container *dom.Element
	Instance  *reactive.Instance
	Props     vdom.Props

	state State
	err   error
}

// State returns the island state.
func (i *Island) State() State { return i.state }

// Err returns the failure of a Failed island, or nil.
func (i *Island) Err() error { return i.err }

type options struct {
	container string
	verify    bool
	logger    *slog.Logger
	registry  *Registry
	ids       *vdom.IslandIDs
}

// Option configures HydrateApp and Boot.
type Option func(*options)

// WithContainer sets the container selector, overriding the props.
func WithContainer(selector string) Option {
	return func(o *options) { o.container = selector }
}

// WithVerify re-renders the component and logs an E043 warning when the
// container markup differs. Binding proceeds either way.
func WithVerify() Option {
	return func(o *options) { o.verify = true }
}

// WithLogger sets the logger. The default is the runtime's.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry looks components up in r instead of the process-wide
// registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithIDs sets the island id generator.
func WithIDs(ids *vdom.IslandIDs) Option {
	return func(o *options) { o.ids = ids }
}

var defaultIDs = vdom.NewIslandIDs()

func buildOptions(rt *directive.Runtime, opts []Option) *options {
	o := &options{registry: global, ids: defaultIDs}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = rt.Logger()
	}
	return o
}

// HydrateApp binds the component registered as name to its server-rendered
// container. The container selector comes from WithContainer, then the
// "container" prop, then render.DefaultContainer; when it matches several
// elements the one whose data-island is name wins.
//
// Failures (E040 unknown component, E041 no container, E042 already
// hydrated) are logged once and leave the island Failed; they never panic
// and never affect other bindings.
func HydrateApp(rt *directive.Runtime, name string, props vdom.Props, opts ...Option) *Island {
	o := buildOptions(rt, opts)
	if props == nil {
		props = vdom.Props{}
	}
	island := &Island{Name: name, ID: o.ids.Next(), Props: props}

	comp, ok := o.registry.Lookup(name)
	if !ok {
		return island.fail(o.logger, errors.New("E040").WithDetail(fmt.Sprintf("component %q is not registered", name)))
	}

	sel := o.container
	if sel == "" {
		sel, _ = props["container"].(string)
	}
	if sel == "" {
		sel = render.DefaultContainer
	}
	el := findContainer(rt.Document(), sel, name)
	if el == nil {
		return island.fail(o.logger, errors.New("E041").WithDetail(fmt.Sprintf("selector %q matched nothing", sel)))
	}
	island.Container = el
	if rt.HasScope(el) {
		return island.fail(o.logger, errors.New("E042").WithDetail(fmt.Sprintf("container %q", sel)))
	}

	island.state = Scanning
	if o.verify && comp.Render != nil {
		verify(o.logger, el, comp, props)
	}

	data := reactive.Data{}
	if comp.Data != nil {
		data = comp.Data(props)
	} else {
		for k, v := range props {
			if k != "container" && k != "children" {
				data[k] = v
			}
		}
	}
	inst := reactive.NewInstance(rt.Scheduler(), data)
	if err := rt.Mount(el, inst); err != nil {
		return island.fail(o.logger, errors.FromError(err, "E042"))
	}
	island.Instance = inst
	island.state = Bound
	o.logger.Debug("island hydrated",
		slog.String("component", name),
		slog.String("island", island.ID),
		slog.Int("bindings", rt.Bindings()))
	return island
}

func (i *Island) fail(logger *slog.Logger, err *errors.DrizzleError) *Island {
	i.state = Failed
	i.err = err
	logger.Warn(err.Message, append(err.LogAttrs(),
		slog.String("component", i.Name),
		slog.String("island", i.ID))...)
	return i
}

func findContainer(doc *dom.Document, sel, name string) *dom.Element {
	matches := doc.QuerySelectorAll(sel)
	for _, el := range matches {
		if el.Attr("data-island") == name {
			return el
		}
	}
	if len(matches) > 0 {
		return matches[0]
	}
	return nil
}

// verify compares the container's markup against a fresh render. Both
// sides go through the HTML parser so serialization differences (attribute
// quoting, entity forms) do not count.
func verify(logger *slog.Logger, el *dom.Element, comp Component, props vdom.Props) {
	fresh := render.RenderToString(vdom.H(comp.Render, props))
	want, err := normalize(el, fresh)
	if err != nil {
		return
	}
	if got := el.InnerHTML(); got != want {
		e := errors.New("E043").WithDetail(firstDifference(got, want))
		logger.Warn(e.Message, append(e.LogAttrs(), slog.String("component", comp.Name))...)
	}
}

func normalize(context *dom.Element, markup string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), context.Node())
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func firstDifference(got, want string) string {
	i := 0
	for i < len(got) && i < len(want) && got[i] == want[i] {
		i++
	}
	snippet := func(s string) string {
		end := i + 40
		if end > len(s) {
			end = len(s)
		}
		return s[i:end]
	}
	return fmt.Sprintf("at offset %d: dom %q, render %q", i, snippet(got), snippet(want))
}
