package hydrate

import (
	"sort"
	"sync"

	"github.com/vango-dev/drizzle/pkg/reactive"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

// Component is a hydratable island: the render function the server used
// and the constructor of the client instance's data.
type Component struct {
	// Name is the global name the page hydration call uses.
	Name string

	// Render builds the island markup from props. Used for server
	// rendering and for the mismatch check.
	Render vdom.FuncComponent

	// Data builds the initial instance data from the hydration props.
	// When nil the instance is created from the props themselves.
	Data func(props vdom.Props) reactive.Data
}

// Registry maps names to components.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Component
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]Component)}
}

// Register adds or replaces a component.
func (r *Registry) Register(c Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[c.Name] = c
}

// Lookup returns the component registered under name.
func (r *Registry) Lookup(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes every component.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = make(map[string]Component)
}

var global = NewRegistry()

// Global returns the process-wide component registry.
func Global() *Registry { return global }

// Register publishes c in the process-wide registry.
func Register(c Component) { global.Register(c) }

// Lookup finds a component in the process-wide registry.
func Lookup(name string) (Component, bool) { return global.Lookup(name) }

// Reset empties the process-wide registry. Tests use it for isolation.
func Reset() { global.Reset() }
