package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRuleMatched   EventType = "rule_matched"
	EventFallback      EventType = "fallback"
	EventWaitEntered   EventType = "wait_entered"
	EventInputConsumed EventType = "input_consumed"
	EventTierDegraded  EventType = "tier_degraded"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
}

// ResolutionEvent reports the outcome of one evaluation.
type ResolutionEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	RuleID string `json:"rule_id,omitempty"`
}

// WaitEvent reports a waiting flag being set or consumed.
type WaitEvent struct {
	EventBase
	NodeID   string    `json:"node_id"`
	Variable string    `json:"variable"`
	Kind     InputMode `json:"kind"`
	// Conditional is true for rule-triggered waits.
	Conditional bool `json:"conditional"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRuleMatched   func(context.Context, *ResolutionEvent)
	OnFallback      func(context.Context, *ResolutionEvent)
	OnWaitEntered   func(context.Context, *WaitEvent)
	OnInputConsumed func(context.Context, *WaitEvent)
	OnTierDegraded  func(context.Context, *EventBase, error)
}
