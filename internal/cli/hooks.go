package cli

import (
	"context"
	"log/slog"

	"github.com/apkaudio/openair/pkg/domain"
)

// debugHooks logs every lifecycle event at debug level.
func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRegister: func(ctx context.Context, e *domain.TopicEvent) {
			logger.Debug("topic registered", "topic", e.Topic)
		},
		OnPublish: func(ctx context.Context, e *domain.TopicEvent) {
			logger.Debug("published", "topic", e.Topic, "value", e.Value)
		},
		OnRemoteApply: func(ctx context.Context, e *domain.TopicEvent) {
			logger.Debug("remote applied", "topic", e.Topic, "value", e.Value)
		},
		OnDiscard: func(ctx context.Context, e *domain.TopicEvent) {
			logger.Debug("message discarded", "topic", e.Topic)
		},
		OnNodeSkipped: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("node skipped", "path", e.Path, "reason", e.Reason)
		},
	}
}
