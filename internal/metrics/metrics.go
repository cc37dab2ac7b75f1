// Package metrics publishes panel activity counters to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apkaudio/openair/pkg/domain"
)

// Metrics holds the panel's Prometheus collectors.
type Metrics struct {
	registrations prometheus.Counter
	publishes     *prometheus.CounterVec
	remoteApplies *prometheus.CounterVec
	discards      prometheus.Counter
	skippedNodes  prometheus.Counter
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer
// for the process-global registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "openair_topic_registrations_total",
			Help: "Topics registered with the state mirror.",
		}),
		publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "openair_publishes_total",
			Help: "Local-origin state publications by topic.",
		}, []string{"topic"}),
		remoteApplies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "openair_remote_applies_total",
			Help: "Remote-origin state applications by topic.",
		}, []string{"topic"}),
		discards: factory.NewCounter(prometheus.CounterOpts{
			Name: "openair_discarded_messages_total",
			Help: "Inbound messages discarded as malformed or unparseable.",
		}),
		skippedNodes: factory.NewCounter(prometheus.CounterOpts{
			Name: "openair_skipped_nodes_total",
			Help: "Declarative nodes skipped during composition.",
		}),
	}
}

// Hooks adapts the collectors to the lifecycle hook points.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRegister: func(ctx context.Context, e *domain.TopicEvent) {
			m.registrations.Inc()
		},
		OnPublish: func(ctx context.Context, e *domain.TopicEvent) {
			m.publishes.WithLabelValues(e.Topic).Inc()
		},
		OnRemoteApply: func(ctx context.Context, e *domain.TopicEvent) {
			m.remoteApplies.WithLabelValues(e.Topic).Inc()
		},
		OnDiscard: func(ctx context.Context, e *domain.TopicEvent) {
			m.discards.Inc()
		},
		OnNodeSkipped: func(ctx context.Context, e *domain.NodeEvent) {
			m.skippedNodes.Inc()
		},
	}
}
