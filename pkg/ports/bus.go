package ports

import "context"

// MessageFunc handles one inbound bus message. It executes on the broker's
// delivery goroutine; implementations must hand off to the UI scheduler
// rather than mutating widget state directly.
type MessageFunc func(topic string, payload []byte)

// Bus defines the message-broker capability consumed by the state mirror.
// Delivery is at-least-once with no ordering guarantee across topics.
type Bus interface {
	// Publish sends a payload to a topic.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers a handler for a topic and returns a cancel
	// function that releases the subscription. Safe to cancel twice.
	Subscribe(ctx context.Context, topic string, fn MessageFunc) (func(), error)

	// Close releases the broker connection.
	Close() error
}
