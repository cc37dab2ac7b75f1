// Package sched runs the single UI goroutine that owns all widget state.
package sched

import (
	"context"
	"sync"
)

// DefaultDepth bounds the inbound queue so memory stays bounded under
// message storms.
const DefaultDepth = 256

// Loop serializes work onto one goroutine. It is the only shared mutable
// resource crossing threads; everything it runs executes in posting order,
// except that the oldest pending item is dropped when the queue is full.
type Loop struct {
	ch     chan func()
	onDrop func()

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithDropHandler registers a callback invoked once per dropped item.
func WithDropHandler(fn func()) Option {
	return func(l *Loop) { l.onDrop = fn }
}

// New creates a loop with the given queue depth. Depth <= 0 uses
// DefaultDepth.
func New(depth int, opts ...Option) *Loop {
	if depth <= 0 {
		depth = DefaultDepth
	}
	l := &Loop{
		ch:   make(chan func(), depth),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post enqueues fn without blocking. When the queue is full the oldest
// pending item is dropped to make room (drop-oldest policy: live control
// values make stale queued work worse than loss). Reports false when a
// drop occurred or the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.ch <- fn:
		return true
	default:
	}

	// Queue full: evict the oldest and retry once.
	select {
	case <-l.ch:
		if l.onDrop != nil {
			l.onDrop()
		}
	default:
	}
	select {
	case l.ch <- fn:
	default:
		if l.onDrop != nil {
			l.onDrop()
		}
	}
	return false
}

// Run drains the queue on the calling goroutine until ctx is done.
// It must be called exactly once; the calling goroutine becomes the UI
// thread.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		panic("sched: Run called twice")
	}
	l.started = true
	l.mu.Unlock()

	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.ch:
			fn()
		}
	}
}

// Drain synchronously executes all currently queued work on the calling
// goroutine. Intended for tests, where the test goroutine stands in for
// the UI thread.
func (l *Loop) Drain() {
	for {
		select {
		case fn := <-l.ch:
			fn()
		default:
			return
		}
	}
}
