// Package redis adapts Redis Pub/Sub to the panel's message bus port.
package redis

import (
	"context"
	"fmt"
	"sync"

	backend "github.com/redis/go-redis/v9"

	"github.com/apkaudio/openair/pkg/ports"
)

// Bus implements ports.Bus over Redis Pub/Sub. Each subscription owns a
// dedicated PubSub connection and a receive goroutine.
type Bus struct {
	client *backend.Client
	prefix string

	mu     sync.Mutex
	subs   map[*backend.PubSub]struct{}
	closed bool
}

type Option func(*Bus)

// WithPrefix namespaces every topic on the wire.
func WithPrefix(prefix string) Option {
	return func(b *Bus) {
		b.prefix = prefix
	}
}

// New creates a bus with its own Redis client.
func New(address, password string, db int, opts ...Option) *Bus {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a bus from an existing client. The bus takes
// ownership and closes the client on Close.
func NewFromClient(client *backend.Client, opts ...Option) *Bus {
	bus := &Bus{
		client: client,
		subs:   make(map[*backend.PubSub]struct{}),
	}
	for _, opt := range opts {
		opt(bus)
	}
	return bus
}

func (b *Bus) channel(topic string) string {
	return b.prefix + topic
}

// Publish sends the payload to the topic's channel.
func (b *Bus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel(topic), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Subscribe opens a PubSub connection for the topic and pumps messages to
// fn on a dedicated goroutine. The cancel function is idempotent and stops
// the pump.
func (b *Bus) Subscribe(ctx context.Context, topic string, fn ports.MessageFunc) (func(), error) {
	sub := b.client.Subscribe(ctx, b.channel(topic))

	// Force the SUBSCRIBE round trip so a broken broker fails here, not
	// on first delivery.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to redis: %w", err)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = sub.Close()
		return nil, fmt.Errorf("bus is closed")
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		for msg := range sub.Channel() {
			fn(topic, []byte(msg.Payload))
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
			_ = sub.Close()
		})
	}
	return cancel, nil
}

// Close stops every subscription and closes the underlying client.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*backend.PubSub, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.subs = make(map[*backend.PubSub]struct{})
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return b.client.Close()
}
