package reactive

// cell is one tracked property: the subscriber list behind a value.
type cell struct {
	id    uint64
	sched *Scheduler
	subs  []Listener
}

func newCell(s *Scheduler) *cell {
	return &cell{id: nextID(), sched: s}
}

// subscribe adds a listener. Deduplicates by listener id.
func (c *cell) subscribe(l Listener) {
	if l == nil {
		return
	}
	lid := l.ID()
	for _, existing := range c.subs {
		if existing.ID() == lid {
			return
		}
	}
	c.subs = append(c.subs, l)
}

// unsubscribe removes a listener.
func (c *cell) unsubscribe(l Listener) {
	lid := l.ID()
	for i, existing := range c.subs {
		if existing.ID() == lid {
			// Order doesn't matter.
			c.subs[i] = c.subs[len(c.subs)-1]
			c.subs = c.subs[:len(c.subs)-1]
			return
		}
	}
}

// track subscribes the scheduler's current listener, if any.
func (c *cell) track() {
	l := c.sched.current
	if l == nil {
		return
	}
	c.subscribe(l)
	if e, ok := l.(*Effect); ok {
		e.addSource(c)
	}
}

// notify marks every subscriber dirty. Subscribers are copied first since
// MarkDirty can run arbitrary code.
func (c *cell) notify() {
	subs := make([]Listener, len(c.subs))
	copy(subs, c.subs)
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// subscribers returns the number of listeners; tests use it to check
// teardown.
func (c *cell) subscribers() int {
	return len(c.subs)
}
