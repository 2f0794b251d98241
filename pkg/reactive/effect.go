package reactive

// Effect is a re-runnable side effect. It runs once when created and again
// on the next flush after any property it read during its last run
// changes. Writes never run it synchronously.
type Effect struct {
	id    uint64
	sched *Scheduler
	owner *Owner

	// fn is the effect function.
	fn func() Cleanup

	// cleanup is the cleanup returned by the last run.
	cleanup Cleanup

	// sources are the cells read during the last run.
	sources []*cell

	// pending is set while the effect sits in the scheduler queue.
	pending bool

	disposed bool

	// runs counts executions, for tests and debugging.
	runs int
}

// MarkDirty queues the effect for the next flush. Implements Listener.
func (e *Effect) MarkDirty() {
	if e.disposed || e.pending {
		return
	}
	e.pending = true
	e.sched.enqueue(e)
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Runs returns how many times the effect function has executed.
func (e *Effect) Runs() int {
	return e.runs
}

// Disposed reports whether the effect has been disposed.
func (e *Effect) Disposed() bool {
	return e.disposed
}

// run executes the effect function with dependency tracking.
func (e *Effect) run() {
	if e.disposed {
		return
	}
	e.pending = false

	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		cleanup()
	}

	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]

	old := e.sched.setCurrent(e)
	defer e.sched.setCurrent(old)

	e.runs++
	e.cleanup = e.fn()
}

// addSource records a cell read during the current run.
func (e *Effect) addSource(c *cell) {
	for _, s := range e.sources {
		if s == c {
			return
		}
	}
	e.sources = append(e.sources, c)
}

// Dispose stops the effect: it runs the pending cleanup and unsubscribes
// from every source. Disposing twice is a no-op.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.pending = false

	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		cleanup()
	}

	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
}
