package reactive

// Owner is a disposal scope. An Owner collects the effects and cleanups
// created under it (one per directive binding, one per component instance)
// and releases all of them, and all child owners, on Dispose.
//
// Owners form a hierarchy mirroring the DOM: a binding's owner is a child
// of its scope's owner, so tearing down a scope tears down every binding
// under it.
type Owner struct {
	id       uint64
	parent   *Owner
	children []*Owner
	effects  []*Effect
	cleanups []func()
	disposed bool
}

// NewOwner creates an Owner registered as a child of parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{id: nextID(), parent: parent}
	if parent != nil {
		if parent.disposed {
			o.disposed = true
			return o
		}
		parent.children = append(parent.children, o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether the Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed
}

// Len returns the number of live effects, cleanups and children.
func (o *Owner) Len() int {
	return len(o.effects) + len(o.cleanups) + len(o.children)
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Owner) registerEffect(e *Effect) {
	o.effects = append(o.effects, e)
}

// OnCleanup registers fn to run when the Owner is disposed. On an already
// disposed Owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// Dispose disposes children (last created first), then effects, then runs
// cleanups in reverse registration order. After disposal the Owner cannot
// be used.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	effects := o.effects
	o.effects = nil
	for _, e := range effects {
		e.Dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
