package reactive

import (
	"sort"

	"github.com/vango-dev/drizzle/pkg/coerce"
)

// Data is the initial content of a component instance. Values may be plain
// values, Getter (computed properties) or Method.
type Data map[string]any

// Getter is a computed property. Reads made by the getter are tracked, so
// an effect that reads a getter re-runs when any of its inputs change.
type Getter func(this *Instance) any

// Method is a function property. Expressions see methods bound to their
// instance, so `increment` and `this.increment` both call it with this set.
type Method func(this *Instance, args ...any) any

// Instance is a reactive component instance: a mapping from property
// names to values with per-property change tracking. It is the scope
// directive expressions are evaluated against.
//
// An Instance belongs to one Scheduler and shares its threading rules.
type Instance struct {
	id      uint64
	sched   *Scheduler
	values  map[string]any
	getters map[string]Getter
	methods map[string]Method
	cells   map[string]*cell
}

// NewInstance creates an instance from data. The map is copied.
func NewInstance(s *Scheduler, data Data) *Instance {
	inst := &Instance{
		id:      nextID(),
		sched:   s,
		values:  make(map[string]any, len(data)),
		getters: make(map[string]Getter),
		methods: make(map[string]Method),
		cells:   make(map[string]*cell),
	}
	for k, v := range data {
		switch fn := v.(type) {
		case Getter:
			inst.getters[k] = fn
		case func(*Instance) any:
			inst.getters[k] = fn
		case Method:
			inst.methods[k] = fn
		case func(*Instance, ...any) any:
			inst.methods[k] = fn
		default:
			inst.values[k] = v
		}
	}
	return inst
}

// ID returns the unique identifier for this instance.
func (i *Instance) ID() uint64 {
	return i.id
}

// Scheduler returns the scheduler the instance belongs to.
func (i *Instance) Scheduler() *Scheduler {
	return i.sched
}

func (i *Instance) cell(name string) *cell {
	c, ok := i.cells[name]
	if !ok {
		c = newCell(i.sched)
		i.cells[name] = c
	}
	return c
}

// Has reports whether name is a property of the instance (value, getter
// or method).
func (i *Instance) Has(name string) bool {
	if _, ok := i.values[name]; ok {
		return true
	}
	if _, ok := i.getters[name]; ok {
		return true
	}
	_, ok := i.methods[name]
	return ok
}

// Get returns the value of name and, inside an effect, subscribes the
// effect to it. Getters are computed on every call. Methods are returned
// bound to the instance as func(...any) any. Missing properties return nil
// and are still tracked, so a later Set that creates them re-runs readers.
func (i *Instance) Get(name string) any {
	if g, ok := i.getters[name]; ok {
		return g(i)
	}
	if m, ok := i.methods[name]; ok {
		return i.bind(m)
	}
	i.cell(name).track()
	return i.values[name]
}

// Peek returns the value of name without tracking.
func (i *Instance) Peek(name string) any {
	var v any
	i.sched.Untracked(func() { v = i.Get(name) })
	return v
}

// Set stores value under name and queues the effects that read it. Setting
// an equal value (===) is a no-op, so is setting a getter or method name.
// Set reports whether the value changed.
func (i *Instance) Set(name string, value any) bool {
	if _, ok := i.getters[name]; ok {
		return false
	}
	if _, ok := i.methods[name]; ok {
		return false
	}
	old, existed := i.values[name]
	if existed && coerce.StrictEqual(old, value) {
		return false
	}
	i.values[name] = value
	if c, ok := i.cells[name]; ok {
		c.notify()
	}
	return true
}

// Update sets name to fn(current value), reading without tracking.
func (i *Instance) Update(name string, fn func(any) any) bool {
	return i.Set(name, fn(i.Peek(name)))
}

// Call invokes the method name with args. It returns nil if name is not a
// method.
func (i *Instance) Call(name string, args ...any) any {
	m, ok := i.methods[name]
	if !ok {
		return nil
	}
	return m(i, args...)
}

func (i *Instance) bind(m Method) func(...any) any {
	return func(args ...any) any { return m(i, args...) }
}

// Lookup implements the expression Scope interface.
func (i *Instance) Lookup(name string) (any, bool) {
	if !i.Has(name) {
		// Track the miss so the binding wakes up if the property appears.
		i.cell(name).track()
		return nil, false
	}
	return i.Get(name), true
}

// This returns the instance; expressions evaluate `this` to it.
func (i *Instance) This() any {
	return i
}

// Keys returns every property name in sorted order.
func (i *Instance) Keys() []string {
	keys := make([]string, 0, len(i.values)+len(i.getters)+len(i.methods))
	for k := range i.values {
		keys = append(keys, k)
	}
	for k := range i.getters {
		keys = append(keys, k)
	}
	for k := range i.methods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns the plain values and computed getters, untracked.
// Methods are omitted.
func (i *Instance) Snapshot() map[string]any {
	out := make(map[string]any, len(i.values)+len(i.getters))
	i.sched.Untracked(func() {
		for k, v := range i.values {
			out[k] = v
		}
		for k, g := range i.getters {
			out[k] = g(i)
		}
	})
	return out
}

// Subscribers returns the number of listeners tracking name.
func (i *Instance) Subscribers(name string) int {
	c, ok := i.cells[name]
	if !ok {
		return 0
	}
	return c.subscribers()
}
