package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRegister    EventType = "register"
	EventUnregister  EventType = "unregister"
	EventPublish     EventType = "publish"
	EventRemoteApply EventType = "remote_apply"
	EventDiscard     EventType = "discard"
	EventNodeSkipped EventType = "node_skipped"
)

// TopicEvent describes activity on a single registered topic.
type TopicEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Topic     string    `json:"topic"`
	Value     float64   `json:"value,omitempty"`
}

// NodeEvent describes a composition-time event for a declarative node.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Path      string    `json:"path"`
	Reason    string    `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// All hooks are optional; nil hooks are skipped.
type LifecycleHooks struct {
	OnRegister    func(context.Context, *TopicEvent)
	OnPublish     func(context.Context, *TopicEvent)
	OnRemoteApply func(context.Context, *TopicEvent)
	OnDiscard     func(context.Context, *TopicEvent)
	OnNodeSkipped func(context.Context, *NodeEvent)
}
