package reactive

import "sync/atomic"

// Listener is anything that can be notified when a dependency changes.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// For effects this queues a re-run on the next flush.
	MarkDirty()

	// ID returns a unique identifier used for deduplication.
	ID() uint64
}

// Cleanup is returned by effect functions. It is called before the effect
// re-runs and when the effect is disposed.
type Cleanup func()

var globalIDCounter uint64

// nextID returns the next unique id for a reactive primitive.
// IDs are monotonically increasing and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
