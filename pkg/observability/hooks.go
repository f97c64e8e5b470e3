package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/botflow/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRuleMatched: func(ctx context.Context, e *domain.ResolutionEvent) {
			logger.InfoContext(ctx, "rule_matched", "user_id", e.UserID, "node_id", e.NodeID, "rule_id", e.RuleID)
		},
		OnFallback: func(ctx context.Context, e *domain.ResolutionEvent) {
			logger.InfoContext(ctx, "fallback", "user_id", e.UserID, "node_id", e.NodeID)
		},
		OnWaitEntered: func(ctx context.Context, e *domain.WaitEvent) {
			logger.InfoContext(ctx, "wait_entered",
				"user_id", e.UserID,
				"node_id", e.NodeID,
				"variable", e.Variable,
				"kind", e.Kind,
				"conditional", e.Conditional,
			)
		},
		OnInputConsumed: func(ctx context.Context, e *domain.WaitEvent) {
			logger.InfoContext(ctx, "input_consumed",
				"user_id", e.UserID,
				"variable", e.Variable,
				"kind", e.Kind,
				"conditional", e.Conditional,
			)
		},
		OnTierDegraded: func(ctx context.Context, e *domain.EventBase, err error) {
			logger.WarnContext(ctx, "tier_degraded", "user_id", e.UserID, "err", err)
		},
	}
}

// Chain merges hook sets; each event reaches every non-nil callback in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnRuleMatched = chainResolution(out.OnRuleMatched, h.OnRuleMatched)
		out.OnFallback = chainResolution(out.OnFallback, h.OnFallback)
		out.OnWaitEntered = chainWait(out.OnWaitEntered, h.OnWaitEntered)
		out.OnInputConsumed = chainWait(out.OnInputConsumed, h.OnInputConsumed)
		out.OnTierDegraded = chainError(out.OnTierDegraded, h.OnTierDegraded)
	}
	return out
}

func chainResolution(a, b func(context.Context, *domain.ResolutionEvent)) func(context.Context, *domain.ResolutionEvent) {
	if a == nil || b == nil {
		if a == nil {
			return b
		}
		return a
	}
	return func(ctx context.Context, e *domain.ResolutionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainWait(a, b func(context.Context, *domain.WaitEvent)) func(context.Context, *domain.WaitEvent) {
	if a == nil || b == nil {
		if a == nil {
			return b
		}
		return a
	}
	return func(ctx context.Context, e *domain.WaitEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainError(a, b func(context.Context, *domain.EventBase, error)) func(context.Context, *domain.EventBase, error) {
	if a == nil || b == nil {
		if a == nil {
			return b
		}
		return a
	}
	return func(ctx context.Context, e *domain.EventBase, err error) {
		a(ctx, e, err)
		b(ctx, e, err)
	}
}
