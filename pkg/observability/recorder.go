package observability

import (
	"context"
	"sync"

	"github.com/apkaudio/openair/pkg/domain"
)

// Recorder keeps the most recent topic events in a bounded ring. It is
// safe for concurrent use; hooks fire from both the panel goroutine and
// broker delivery goroutines.
type Recorder struct {
	mu     sync.Mutex
	events []domain.TopicEvent
	next   int
	full   bool
}

// NewRecorder creates a recorder holding up to capacity events.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 128
	}
	return &Recorder{events: make([]domain.TopicEvent, capacity)}
}

func (r *Recorder) record(e *domain.TopicEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = *e
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
}

// Hooks returns a hook set that records publish, remote-apply and discard
// events.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPublish:     func(ctx context.Context, e *domain.TopicEvent) { r.record(e) },
		OnRemoteApply: func(ctx context.Context, e *domain.TopicEvent) { r.record(e) },
		OnDiscard:     func(ctx context.Context, e *domain.TopicEvent) { r.record(e) },
	}
}

// Events returns the recorded events, oldest first.
func (r *Recorder) Events() []domain.TopicEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]domain.TopicEvent, r.next)
		copy(out, r.events[:r.next])
		return out
	}
	out := make([]domain.TopicEvent, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	out = append(out, r.events[:r.next]...)
	return out
}
