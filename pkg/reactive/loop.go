package reactive

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/vango-dev/drizzle/internal/errors"
)

// ErrLoopClosed is returned by Do after the loop has stopped.
var ErrLoopClosed = stderrors.New("reactive: loop closed")

// Loop serializes work onto one goroutine, the way a browser main thread
// does. Other goroutines (an HTTP call started by a submit handler, a
// timer) Post their completion and Run executes it followed by a Flush.
type Loop struct {
	sched *Scheduler

	mu      sync.Mutex
	tasks   []func()
	wake    chan struct{}
	closed  bool
	running bool
}

// NewLoop creates a loop driving s.
func NewLoop(s *Scheduler) *Loop {
	return &Loop{sched: s, wake: make(chan struct{}, 1)}
}

// Scheduler returns the scheduler the loop drives.
func (l *Loop) Scheduler() *Scheduler {
	return l.sched
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine and never blocks. Post reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do posts fn and waits until it has run.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted tasks until ctx is done. Each task is followed by a
// Flush, so writes made by one task are visible in the DOM before the next
// task starts. Tasks still queued when ctx ends are discarded.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("reactive: loop already running")
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.closed = true
		l.running = false
		l.tasks = nil
		l.mu.Unlock()
	}()

	for {
		for {
			task := l.next()
			if task == nil {
				break
			}
			l.runTask(task)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil
	}
	task := l.tasks[0]
	l.tasks = l.tasks[1:]
	return task
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.New("E080").Wrap(fmt.Errorf("loop task panic: %v", rec))
			l.sched.logger.Error(err.Message, err.LogAttrs()...)
		}
		_ = l.sched.Flush()
	}()
	task()
}
