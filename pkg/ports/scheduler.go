package ports

import "github.com/apkaudio/openair/pkg/domain"

// Scheduler is the hand-off boundary into the single UI goroutine that owns
// all canvas drawing and ValueModel mutation. Work posted from other
// goroutines (bus delivery, animations, HTTP handlers) runs serialized on
// that goroutine.
type Scheduler interface {
	// Post enqueues fn for execution on the UI goroutine. It never
	// blocks; when the queue is full the oldest pending item is dropped
	// and Post reports false.
	Post(fn func()) bool
}

// TreeLoader is the source of the declarative widget tree.
type TreeLoader interface {
	// Load returns the root nodes of a panel document, in declaration
	// order.
	Load() ([]domain.Node, error)
}
