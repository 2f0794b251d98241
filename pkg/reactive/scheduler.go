package reactive

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/drizzle/internal/errors"
)

// DefaultMaxFlushRounds is the number of flush rounds after which effects
// that keep re-triggering each other are dropped.
const DefaultMaxFlushRounds = 100

// Scheduler owns one reactive graph: the current tracking listener and the
// queue of dirty effects. It is the "next tick" of the runtime: writes
// enqueue effects and Flush runs them.
//
// A Scheduler is not safe for concurrent use. Use a Loop to feed it work
// from other goroutines.
type Scheduler struct {
	current   Listener
	queue     []*Effect
	flushing  bool
	maxRounds int
	logger    *slog.Logger
	dropped   int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for recovered effect panics and dropped
// queues.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxFlushRounds overrides DefaultMaxFlushRounds.
func WithMaxFlushRounds(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		maxRounds: DefaultMaxFlushRounds,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Logger returns the scheduler's logger.
func (s *Scheduler) Logger() *slog.Logger {
	return s.logger
}

func (s *Scheduler) setCurrent(l Listener) Listener {
	old := s.current
	s.current = l
	return old
}

func (s *Scheduler) enqueue(e *Effect) {
	s.queue = append(s.queue, e)
}

// Effect creates an effect owned by owner and runs it immediately, outside
// any enclosing tracking context. owner may be nil for an unowned effect
// that the caller disposes.
//
//	s.Effect(owner, func() reactive.Cleanup {
//	    el.SetTextContent(coerce.String(inst.Get("count")))
//	    return nil
//	})
func (s *Scheduler) Effect(owner *Owner, fn func() Cleanup) *Effect {
	e := &Effect{id: nextID(), sched: s, owner: owner, fn: fn}
	if owner != nil {
		if owner.disposed {
			e.disposed = true
			return e
		}
		owner.registerEffect(e)
	}
	s.runEffect(e)
	return e
}

// Untracked runs fn without recording reads as dependencies.
func (s *Scheduler) Untracked(fn func()) {
	old := s.setCurrent(nil)
	defer s.setCurrent(old)
	fn()
}

// Tracking reports whether reads are currently recorded.
func (s *Scheduler) Tracking() bool {
	return s.current != nil
}

// Pending returns the number of queued effects.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Dropped returns the total number of effect runs dropped by the flush
// limit.
func (s *Scheduler) Dropped() int {
	return s.dropped
}

// Flush runs queued effects until the queue is empty. Effects queued while
// flushing run in a later round. Each effect runs at most once per round,
// in the order it was first queued. If effects are still queued after the
// round limit, the rest of the queue is dropped and an E081 error is
// returned. A nested Flush (from inside an effect) is a no-op.
func (s *Scheduler) Flush() error {
	if s.flushing {
		return nil
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	for round := 0; len(s.queue) > 0; round++ {
		if round >= s.maxRounds {
			n := len(s.queue)
			for _, e := range s.queue {
				e.pending = false
			}
			s.queue = nil
			s.dropped += n
			err := errors.New("E081").WithDetail(fmt.Sprintf("%d effects still queued after %d rounds", n, s.maxRounds))
			s.logger.Warn(err.Message, err.LogAttrs()...)
			return err
		}

		batch := s.queue
		s.queue = nil
		for _, e := range batch {
			if e.pending {
				s.runEffect(e)
			}
		}
	}
	return nil
}

// runEffect runs e with no outer listener, recovering panics. A panicking
// effect keeps the dependencies it read before panicking.
func (s *Scheduler) runEffect(e *Effect) {
	old := s.setCurrent(nil)
	defer s.setCurrent(old)
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.New("E080").Wrap(fmt.Errorf("effect panic: %v", rec))
			s.logger.Error(err.Message, err.LogAttrs()...)
		}
	}()
	e.run()
}
