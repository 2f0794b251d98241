package directive

import (
	"sort"
	"sync"

	"github.com/vango-dev/drizzle/pkg/dom"
)

// Directive is one data-* attribute found by the scanner.
type Directive struct {
	// Name is the attribute name without the data- prefix.
	Name string
	// Expression is the attribute value.
	Expression string
}

// Handler installs a directive on an element. Effects, listeners and
// cleanups registered through u are disposed together when the element
// leaves the document.
type Handler func(el *dom.Element, d Directive, u *Utilities)

// Registry maps directive names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler for name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins adds the built-in directives to r.
func (r *Registry) RegisterBuiltins() {
	for name, h := range builtins() {
		r.Register(name, h)
	}
}

// Process-wide registry.
var (
	defaultMu          sync.Mutex
	defaultRegistry    = NewRegistry()
	defaultInitialized bool
)

// Default returns the process-wide registry used by runtimes created
// without WithRegistry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a handler to the process-wide registry.
func Register(name string, h Handler) {
	defaultRegistry.Register(name, h)
}

// Init registers the built-in directives in the process-wide registry.
// Only the first call has an effect; handlers registered afterwards under a
// built-in name are kept.
func Init() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultInitialized {
		return
	}
	defaultRegistry.RegisterBuiltins()
	defaultInitialized = true
}

// Reset empties the process-wide registry and forgets Init. Tests use it
// for isolation.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry.mu.Lock()
	defaultRegistry.handlers = make(map[string]Handler)
	defaultRegistry.mu.Unlock()
	defaultInitialized = false
}
