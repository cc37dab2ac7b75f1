// Package memory provides an in-process message bus used by tests and by
// standalone panels that run without a broker.
package memory

import (
	"context"
	"sync"

	"github.com/apkaudio/openair/pkg/ports"
)

// Message is one recorded publication.
type Message struct {
	Topic   string
	Payload []byte
}

// Bus implements ports.Bus with synchronous in-process delivery. Handlers
// run on the publisher's goroutine, which keeps tests deterministic.
type Bus struct {
	mu        sync.Mutex
	subs      map[string]map[int64]ports.MessageFunc
	nextID    int64
	published []Message
	closed    bool
}

// NewBus creates an empty in-memory bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int64]ports.MessageFunc)}
}

// Publish records the message and delivers it to every subscriber of the
// topic. Publishing after Close is a no-op.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.published = append(b.published, Message{Topic: topic, Payload: payload})
	handlers := make([]ports.MessageFunc, 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(topic, payload)
	}
	return nil
}

// Subscribe registers fn for a topic. The returned cancel function is
// idempotent.
func (b *Bus) Subscribe(ctx context.Context, topic string, fn ports.MessageFunc) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int64]ports.MessageFunc)
	}
	b.nextID++
	id := b.nextID
	b.subs[topic][id] = fn

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
		})
	}
	return cancel, nil
}

// Close drops all subscriptions.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[string]map[int64]ports.MessageFunc)
	return nil
}

// Published returns a copy of every message published so far, in order.
func (b *Bus) Published() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.published))
	copy(out, b.published)
	return out
}

// PublishedTo filters Published by topic.
func (b *Bus) PublishedTo(topic string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Message
	for _, m := range b.published {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Inject delivers a payload to subscribers without recording it as a local
// publication. Tests use it to simulate remote peers.
func (b *Bus) Inject(topic string, payload []byte) {
	b.mu.Lock()
	handlers := make([]ports.MessageFunc, 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()
	for _, fn := range handlers {
		fn(topic, payload)
	}
}
