// Package mirror implements the State Mirror: the synchronization authority
// binding exactly one ValueModel to exactly one Topic with echo-free
// publish/apply semantics.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/ports"
)

// payload is the wire format carried on the bus for every state change.
// GUID identifies the publishing process so that at-least-once delivery of
// our own messages cannot echo back into the model.
type payload struct {
	Val  any     `json:"val"`
	TS   float64 `json:"ts"`
	GUID string  `json:"guid"`
}

type registration struct {
	topic string
	model *domain.ValueModel
	unsub func()
	// last mirrors the model's applied value under the mirror's lock so
	// foreign goroutines (HTTP, MCP) can snapshot state without touching
	// the UI-thread-owned model.
	last float64
}

// Mirror is the single source of truth for "who may publish for this
// topic". Local-origin changes update the owned model synchronously and
// publish exactly once; remote-origin changes update the model and redraw,
// and never re-publish.
type Mirror struct {
	bus   ports.Bus
	sched ports.Scheduler
	log   *slog.Logger
	hooks domain.LifecycleHooks
	guid  string

	mu   sync.Mutex
	regs map[string]*registration
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mirror) { m.log = l }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(m *Mirror) { m.hooks = h }
}

// New creates a mirror bound to a bus and the UI scheduler.
func New(bus ports.Bus, sched ports.Scheduler, opts ...Option) *Mirror {
	m := &Mirror{
		bus:   bus,
		sched: sched,
		log:   slog.Default(),
		guid:  uuid.NewString(),
		regs:  make(map[string]*registration),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GUID returns the process identity carried in published payloads.
func (m *Mirror) GUID() string { return m.guid }

// Registration is the handle returned by Register. Unregister is
// idempotent.
type Registration struct {
	mirror *Mirror
	topic  string
	once   sync.Once
}

// Topic returns the registered topic.
func (r *Registration) Topic() string { return r.topic }

// Unregister releases the binding and the bus subscription.
func (r *Registration) Unregister() {
	r.once.Do(func() { r.mirror.unregister(r.topic) })
}

// Register binds a ValueModel to a topic and subscribes to remote changes.
// A topic may have at most one owner at any time: a second registration is
// a fatal configuration defect and fails with ErrDuplicateTopic regardless
// of registration order.
func (m *Mirror) Register(ctx context.Context, topic string, model *domain.ValueModel) (*Registration, error) {
	if topic == "" {
		return nil, domain.NewConfigError("", "empty topic")
	}

	m.mu.Lock()
	if _, exists := m.regs[topic]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("%q: %w", topic, domain.ErrDuplicateTopic)
	}
	reg := &registration{topic: topic, model: model, last: model.Current()}
	m.regs[topic] = reg
	m.mu.Unlock()

	unsub, err := m.bus.Subscribe(ctx, topic, func(_ string, raw []byte) {
		m.onRemoteMessage(topic, raw)
	})
	if err != nil {
		m.mu.Lock()
		delete(m.regs, topic)
		m.mu.Unlock()
		return nil, fmt.Errorf("subscribe %q: %w", topic, err)
	}
	m.mu.Lock()
	reg.unsub = unsub
	m.mu.Unlock()

	if m.hooks.OnRegister != nil {
		m.hooks.OnRegister(ctx, &domain.TopicEvent{
			Timestamp: time.Now(), Type: domain.EventRegister, Topic: topic, Value: model.Current(),
		})
	}
	return &Registration{mirror: m, topic: topic}, nil
}

func (m *Mirror) unregister(topic string) {
	m.mu.Lock()
	reg, ok := m.regs[topic]
	if ok {
		delete(m.regs, topic)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	if reg.unsub != nil {
		reg.unsub()
	}
	m.log.Debug("topic unregistered", "topic", topic)
}

// PublishLocal applies a local-origin change: the owned model is updated
// synchronously before returning, so widget state and the outbound message
// can never disagree. Exactly one message is sent per value-changing call;
// a call that does not change the applied value publishes nothing.
// Must be called from the UI goroutine.
func (m *Mirror) PublishLocal(ctx context.Context, topic string, raw float64) (float64, error) {
	m.mu.Lock()
	reg, ok := m.regs[topic]
	m.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%q: %w", topic, domain.ErrTopicNotFound)
	}

	prev := reg.model.Current()
	applied := reg.model.Set(raw)
	if applied == prev {
		return applied, nil
	}

	m.mu.Lock()
	reg.last = applied
	m.mu.Unlock()

	m.send(ctx, topic, applied)
	return applied, nil
}

// Broadcast publishes the model's current value unconditionally. Used for
// initial-state announcement and reset gestures, which publish exactly once
// regardless of prior state.
func (m *Mirror) Broadcast(ctx context.Context, topic string) error {
	m.mu.Lock()
	reg, ok := m.regs[topic]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%q: %w", topic, domain.ErrTopicNotFound)
	}
	v := reg.model.Current()
	m.mu.Lock()
	reg.last = v
	m.mu.Unlock()
	m.send(ctx, topic, v)
	return nil
}

// send publishes one payload. Publish failures are dropped with a logged
// warning: these are live control values, and stale queued values are worse
// than loss. The local model and canvas keep working.
func (m *Mirror) send(ctx context.Context, topic string, v float64) {
	data, err := json.Marshal(payload{Val: v, TS: float64(time.Now().UnixNano()) / 1e9, GUID: m.guid})
	if err != nil {
		m.log.Warn("payload marshal failed", "topic", topic, "err", err)
		return
	}
	if err := m.bus.Publish(ctx, topic, data); err != nil {
		m.log.Warn("publish dropped", "topic", topic, "err", err)
		return
	}
	if m.hooks.OnPublish != nil {
		m.hooks.OnPublish(ctx, &domain.TopicEvent{
			Timestamp: time.Now(), Type: domain.EventPublish, Topic: topic, Value: v,
		})
	}
}

// onRemoteMessage runs on the bus delivery goroutine. It validates the
// payload there, then hands the model mutation off to the UI scheduler.
// It never publishes: remote update means redraw only, which is the
// mechanism that prevents echo loops.
func (m *Mirror) onRemoteMessage(topic string, raw []byte) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		m.discard(topic, fmt.Errorf("unparsable payload: %w", err))
		return
	}
	if p.GUID == m.guid {
		// Echo of our own publication; at-least-once delivery makes
		// these routine.
		return
	}
	v, err := domain.Coerce(p.Val)
	if err != nil {
		m.discard(topic, err)
		return
	}

	m.sched.Post(func() {
		m.mu.Lock()
		reg, ok := m.regs[topic]
		m.mu.Unlock()
		if !ok {
			return
		}
		applied := reg.model.Set(v)
		m.mu.Lock()
		reg.last = applied
		m.mu.Unlock()
		if m.hooks.OnRemoteApply != nil {
			m.hooks.OnRemoteApply(context.Background(), &domain.TopicEvent{
				Timestamp: time.Now(), Type: domain.EventRemoteApply, Topic: topic, Value: applied,
			})
		}
	})
}

func (m *Mirror) discard(topic string, err error) {
	m.log.Warn("inbound message discarded", "topic", topic, "err", err)
	if m.hooks.OnDiscard != nil {
		m.hooks.OnDiscard(context.Background(), &domain.TopicEvent{
			Timestamp: time.Now(), Type: domain.EventDiscard, Topic: topic,
		})
	}
}

// Dispatch posts a local-origin change from a foreign goroutine (HTTP or
// MCP surface) onto the UI scheduler, where it follows the normal
// PublishLocal path. Returns before the change is applied.
func (m *Mirror) Dispatch(topic string, raw float64) error {
	m.mu.Lock()
	_, ok := m.regs[topic]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%q: %w", topic, domain.ErrTopicNotFound)
	}
	m.sched.Post(func() {
		if _, err := m.PublishLocal(context.Background(), topic, raw); err != nil {
			m.log.Warn("dispatch failed", "topic", topic, "err", err)
		}
	})
	return nil
}

// Topics lists the registered topics.
func (m *Mirror) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.regs))
	for t := range m.regs {
		out = append(out, t)
	}
	return out
}

// Value returns the last applied value for a topic, readable from any
// goroutine.
func (m *Mirror) Value(topic string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.regs[topic]
	if !ok {
		return 0, false
	}
	return reg.last, true
}

// Snapshot returns the last applied value per topic.
func (m *Mirror) Snapshot() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.regs))
	for t, reg := range m.regs {
		out[t] = reg.last
	}
	return out
}
