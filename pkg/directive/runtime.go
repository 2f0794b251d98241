package directive

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/drizzle/internal/errors"
	"github.com/vango-dev/drizzle/pkg/dom"
	"github.com/vango-dev/drizzle/pkg/expr"
	"github.com/vango-dev/drizzle/pkg/reactive"
)

// Attributes the scanner interprets itself.
const (
	AttrScope  = "scope"
	AttrIsland = "island"
	AttrIgnore = "ignore"
)

// Runtime binds directives in one document. It is single-threaded like the
// document and scheduler it drives.
type Runtime struct {
	doc      *dom.Document
	sched    *reactive.Scheduler
	registry *Registry
	cache    *expr.Cache
	logger   *slog.Logger

	root     *reactive.Owner
	globals  reactive.Data
	global   *reactive.Instance
	bindings map[*dom.Element]map[string]*reactive.Owner
	scopes   map[*dom.Element]*scope
	islands  map[*dom.Element]bool
	closed   bool
}

type scope struct {
	inst  *reactive.Instance
	owner *reactive.Owner
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithScheduler sets the scheduler. By default the runtime creates its own.
func WithScheduler(s *reactive.Scheduler) Option {
	return func(rt *Runtime) { rt.sched = s }
}

// WithRegistry sets the directive registry. The default is the
// process-wide registry, which must have been initialized with Init.
func WithRegistry(r *Registry) Option {
	return func(rt *Runtime) { rt.registry = r }
}

// WithCache sets the compiled expression cache, which may be shared
// between runtimes.
func WithCache(c *expr.Cache) Option {
	return func(rt *Runtime) { rt.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithGlobals sets the data visible to directives outside any scope.
func WithGlobals(data reactive.Data) Option {
	return func(rt *Runtime) { rt.globals = data }
}

// New creates a runtime for doc. It observes removals to tear bindings
// down, observes insertions to bind new markup, and flushes pending
// effects after every dispatched event. Call Scan to bind the document.
func New(doc *dom.Document, opts ...Option) *Runtime {
	rt := &Runtime{
		doc:      doc,
		registry: defaultRegistry,
		logger:   slog.Default(),
		root:     reactive.NewOwner(nil),
		bindings: make(map[*dom.Element]map[string]*reactive.Owner),
		scopes:   make(map[*dom.Element]*scope),
		islands:  make(map[*dom.Element]bool),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.sched == nil {
		rt.sched = reactive.NewScheduler(reactive.WithLogger(rt.logger))
	}
	rt.global = reactive.NewInstance(rt.sched, rt.globals)
	if rt.cache == nil {
		rt.cache = expr.NewCache(expr.DefaultCacheSize)
	}

	doc.OnRemove(rt.teardown)
	doc.OnInsert(func(el *dom.Element) { rt.Scan(el) })
	doc.OnAfterDispatch(func() { _ = rt.Flush() })
	return rt
}

// Document returns the bound document.
func (rt *Runtime) Document() *dom.Document { return rt.doc }

// Scheduler returns the scheduler effects run on.
func (rt *Runtime) Scheduler() *reactive.Scheduler { return rt.sched }

// Registry returns the directive registry.
func (rt *Runtime) Registry() *Registry { return rt.registry }

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Flush runs pending effects.
func (rt *Runtime) Flush() error {
	return rt.sched.Flush()
}

// Close disposes every binding and scope. The runtime ignores the document
// afterwards.
func (rt *Runtime) Close() {
	if rt.closed {
		return
	}
	rt.closed = true
	rt.root.Dispose()
	rt.bindings = make(map[*dom.Element]map[string]*reactive.Owner)
	rt.scopes = make(map[*dom.Element]*scope)
	rt.islands = make(map[*dom.Element]bool)
}

// Scan binds every directive in the subtree rooted at root, or in the whole
// document when root is nil. Elements are visited before their
// descendants. Bindings that already exist are left alone, so scanning
// twice is a no-op. Subtrees inside an island that has not been mounted
// are skipped.
func (rt *Runtime) Scan(root *dom.Element) {
	if rt.closed {
		return
	}
	if root == nil {
		root = rt.doc.DocumentElement()
		if root == nil {
			return
		}
	}
	if rt.blocked(root.Parent()) {
		return
	}
	rt.scan(root)
}

// blocked reports whether el or an ancestor stops scanning: an ignored
// element or an unmounted island.
func (rt *Runtime) blocked(el *dom.Element) bool {
	for ; el != nil; el = el.Parent() {
		if el.HasAttr("data-"+AttrIgnore) || (el.HasAttr("data-"+AttrIsland) && !rt.islands[el]) {
			return true
		}
	}
	return false
}

func (rt *Runtime) scan(el *dom.Element) {
	if el.HasAttr("data-" + AttrIgnore) {
		return
	}
	if el.HasAttr("data-"+AttrIsland) && !rt.islands[el] {
		return
	}
	if src, ok := el.GetAttribute("data-" + AttrScope); ok && rt.scopes[el] == nil {
		rt.declareScope(el, src)
	}

	skip := false
	for _, a := range el.DataAttrs() {
		switch a.Name {
		case AttrScope, AttrIsland, AttrIgnore:
			continue
		}
		h, ok := rt.registry.Lookup(a.Name)
		if !ok {
			continue
		}
		if _, bound := rt.bindings[el][a.Name]; bound {
			continue
		}
		if rt.install(el, Directive{Name: a.Name, Expression: a.Value}, h) {
			skip = true
		}
		if !el.Connected() {
			// The handler removed its own element.
			return
		}
	}
	if skip {
		return
	}
	for _, child := range el.Children() {
		rt.scan(child)
	}
}

// install runs h and records the binding. It reports whether the handler
// asked to skip the element's children.
func (rt *Runtime) install(el *dom.Element, d Directive, h Handler) (skip bool) {
	owner := reactive.NewOwner(rt.ownerFor(el))
	if rt.bindings[el] == nil {
		rt.bindings[el] = make(map[string]*reactive.Owner)
	}
	rt.bindings[el][d.Name] = owner

	u := &Utilities{rt: rt, el: el, owner: owner, name: d.Name}
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.New("E080").Wrap(fmt.Errorf("%v", rec))
			rt.logger.Error(err.Message, append(err.LogAttrs(), directiveAttrs(el, d)...)...)
			owner.Dispose()
			skip = false
		}
	}()
	h(el, d, u)
	return u.skip
}

// ownerFor returns the owner new bindings on el belong to: the nearest
// scope's owner, or the runtime root.
func (rt *Runtime) ownerFor(el *dom.Element) *reactive.Owner {
	for p := el; p != nil; p = p.Parent() {
		if s := rt.scopes[p]; s != nil {
			return s.owner
		}
	}
	return rt.root
}

func (rt *Runtime) declareScope(el *dom.Element, src string) {
	data := reactive.Data{}
	rt.sched.Untracked(func() {
		prog, err := rt.compile(el, Directive{Name: AttrScope, Expression: src})
		if err != nil {
			return
		}
		v, err := prog.Eval(rt.scopeFor(el.Parent(), nil))
		if err != nil {
			rt.logEvalError(el, Directive{Name: AttrScope, Expression: src}, err)
			return
		}
		m, ok := v.(map[string]any)
		if !ok {
			rt.logEvalError(el, Directive{Name: AttrScope, Expression: src},
				fmt.Errorf("scope must be an object, got %T", v))
			return
		}
		for k, val := range m {
			data[k] = val
		}
	})
	rt.scopes[el] = &scope{inst: reactive.NewInstance(rt.sched, data), owner: reactive.NewOwner(rt.root)}
}

// Mount makes inst the component instance of el. Bindings made earlier in
// el's subtree are torn down and the subtree is rescanned, so directives
// bound before the mount resolve against inst. If el is an island it is
// marked mounted. An element keeps one instance for its lifetime, so
// mounting twice fails with E082.
func (rt *Runtime) Mount(el *dom.Element, inst *reactive.Instance) error {
	if rt.closed {
		return errors.New("E082").WithDetail("runtime closed")
	}
	if rt.scopes[el] != nil {
		return errors.New("E082")
	}
	rt.disposeBindings(el)
	for _, d := range el.Descendants() {
		rt.disposeBindings(d)
	}
	rt.scopes[el] = &scope{inst: inst, owner: reactive.NewOwner(rt.root)}
	if el.HasAttr("data-" + AttrIsland) {
		rt.islands[el] = true
	}
	rt.Scan(el)
	return nil
}

// Instance returns the nearest component instance for el: its own scope,
// an ancestor's, or the runtime's global instance.
func (rt *Runtime) Instance(el *dom.Element) *reactive.Instance {
	for p := el; p != nil; p = p.Parent() {
		if s := rt.scopes[p]; s != nil {
			return s.inst
		}
	}
	return rt.global
}

// Instances returns the instances visible from el, nearest first, ending
// with the global instance.
func (rt *Runtime) Instances(el *dom.Element) []*reactive.Instance {
	var out []*reactive.Instance
	for p := el; p != nil; p = p.Parent() {
		if s := rt.scopes[p]; s != nil {
			out = append(out, s.inst)
		}
	}
	return append(out, rt.global)
}

// HasScope reports whether el carries a component instance.
func (rt *Runtime) HasScope(el *dom.Element) bool {
	return rt.scopes[el] != nil
}

// Bound reports whether directive name is bound on el.
func (rt *Runtime) Bound(el *dom.Element, name string) bool {
	_, ok := rt.bindings[el][name]
	return ok
}

// Bindings returns the number of live bindings.
func (rt *Runtime) Bindings() int {
	n := 0
	for _, m := range rt.bindings {
		n += len(m)
	}
	return n
}

// scopeFor builds the evaluation scope for el: extra locals, then every
// visible instance, nearest first. `this` is the nearest instance.
func (rt *Runtime) scopeFor(el *dom.Element, extra expr.Vars) expr.Scope {
	var scopes []expr.Scope
	if extra != nil {
		scopes = append(scopes, extra)
	}
	if el == nil {
		return expr.Chain(append(scopes, rt.global)...)
	}
	for _, inst := range rt.Instances(el) {
		scopes = append(scopes, inst)
	}
	return expr.Chain(scopes...)
}

func (rt *Runtime) compile(el *dom.Element, d Directive) (*expr.Program, error) {
	prog, _, err := rt.cache.Compile(d.Expression)
	if err != nil {
		e := errors.New("E060").Wrap(err)
		rt.logger.Warn(e.Message, append(e.LogAttrs(), directiveAttrs(el, d)...)...)
		return nil, e
	}
	return prog, nil
}

func (rt *Runtime) logEvalError(el *dom.Element, d Directive, err error) {
	e := errors.New("E061").Wrap(err)
	rt.logger.Warn(e.Message, append(e.LogAttrs(), directiveAttrs(el, d)...)...)
}

// teardown disposes the bindings and scopes of a removed subtree.
func (rt *Runtime) teardown(removed *dom.Element) {
	if rt.closed {
		return
	}
	rt.disposeElement(removed)
	for _, el := range removed.Descendants() {
		rt.disposeElement(el)
	}
}

func (rt *Runtime) disposeElement(el *dom.Element) {
	rt.disposeBindings(el)
	if s := rt.scopes[el]; s != nil {
		s.owner.Dispose()
		delete(rt.scopes, el)
	}
	delete(rt.islands, el)
}

func (rt *Runtime) disposeBindings(el *dom.Element) {
	for _, owner := range rt.bindings[el] {
		owner.Dispose()
	}
	delete(rt.bindings, el)
}

func directiveAttrs(el *dom.Element, d Directive) []any {
	return []any{
		slog.String("directive", d.Name),
		slog.String("expression", d.Expression),
		slog.String("element", el.Tag()),
	}
}
