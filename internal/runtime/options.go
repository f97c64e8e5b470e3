package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/botflow/pkg/domain"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithColumnPolicy replaces DefaultColumns.
func WithColumnPolicy(policy ColumnPolicy) EngineOption {
	return func(e *Engine) {
		if policy != nil {
			e.columns = policy
		}
	}
}

// WithClock overrides the time source used for state timestamps and events.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
