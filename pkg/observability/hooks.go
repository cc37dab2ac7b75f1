package observability

import (
	"context"

	"github.com/apkaudio/openair/pkg/domain"
)

// Combine fans each lifecycle event out to every hook set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRegister: func(ctx context.Context, e *domain.TopicEvent) {
			for _, s := range sets {
				if s.OnRegister != nil {
					s.OnRegister(ctx, e)
				}
			}
		},
		OnPublish: func(ctx context.Context, e *domain.TopicEvent) {
			for _, s := range sets {
				if s.OnPublish != nil {
					s.OnPublish(ctx, e)
				}
			}
		},
		OnRemoteApply: func(ctx context.Context, e *domain.TopicEvent) {
			for _, s := range sets {
				if s.OnRemoteApply != nil {
					s.OnRemoteApply(ctx, e)
				}
			}
		},
		OnDiscard: func(ctx context.Context, e *domain.TopicEvent) {
			for _, s := range sets {
				if s.OnDiscard != nil {
					s.OnDiscard(ctx, e)
				}
			}
		},
		OnNodeSkipped: func(ctx context.Context, e *domain.NodeEvent) {
			for _, s := range sets {
				if s.OnNodeSkipped != nil {
					s.OnNodeSkipped(ctx, e)
				}
			}
		},
	}
}
