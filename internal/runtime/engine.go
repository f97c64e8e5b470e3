package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/internal/variables"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

// Engine resolves the response of a node for a user and records the
// resulting conversation state.
type Engine struct {
	variables *variables.Store
	states    ports.StateStore
	columns   ColumnPolicy
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	now       func() time.Time
}

// Resolution is the pure outcome of evaluating a node, before any state change.
type Resolution struct {
	Response *domain.Response
	Match    *Match
}

// NewEngine creates an engine over a variable store and a state store.
func NewEngine(vars *variables.Store, states ports.StateStore, opts ...EngineOption) *Engine {
	e := &Engine{
		variables: vars,
		states:    states,
		columns:   DefaultColumns,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve evaluates the node's rules for userID and renders the response.
// It reads variables but never writes state.
func (e *Engine) Resolve(ctx context.Context, node *domain.Node, userID string) Resolution {
	scope := e.variables.Load(ctx, userID)
	known := scope.Known()

	if node.Conditions != nil && len(node.Conditions.Rules) > 0 {
		if match, ok := Evaluate(*node.Conditions, scope); ok {
			rule := match.Rule
			kb := rule.Keyboard
			if kb == nil {
				kb = node.Keyboard
			}
			format := rule.FormatMode
			if format == domain.FormatUnset {
				format = node.FormatMode
			}
			return Resolution{
				Match: match,
				Response: &domain.Response{
					NodeID:     node.ID,
					Text:       Render(SelectTemplate(rule, node), match.Resolved, known),
					FormatMode: concreteFormat(format),
					Keyboard:   BuildKeyboard(kb, e.columns),
					RuleID:     rule.ID,
					Matched:    true,
				},
			}
		}
	}

	return Resolution{
		Response: &domain.Response{
			NodeID:     node.ID,
			Text:       Render(node.FallbackText(), nil, known),
			FormatMode: concreteFormat(node.FormatMode),
			Keyboard:   BuildKeyboard(node.FallbackKeyboard(), e.columns),
		},
	}
}

// Respond resolves the node and applies the waiting-state transitions:
// a matched rule may arm a conditional wait and skip buttons, and a node
// declaring input arms the generic wait. A fallback never clears existing waits.
func (e *Engine) Respond(ctx context.Context, node *domain.Node, userID string) (*domain.Response, error) {
	if node == nil {
		return nil, fmt.Errorf("respond for %s: %w", userID, domain.ErrNodeNotFound)
	}

	res := e.Resolve(ctx, node, userID)

	state, err := e.LoadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.LastNodeID = node.ID

	var waits []*domain.WaitEvent
	if res.Match != nil {
		rule := res.Match.Rule
		e.logger.Debug("rule matched", "user_id", userID, "node_id", node.ID, "rule_id", rule.ID)
		if e.hooks.OnRuleMatched != nil {
			e.hooks.OnRuleMatched(ctx, &domain.ResolutionEvent{
				EventBase: e.event(domain.EventRuleMatched, userID),
				NodeID:    node.ID,
				RuleID:    rule.ID,
			})
		}
		if EnterConditionalWait(state, rule) {
			waits = append(waits, &domain.WaitEvent{
				EventBase:   e.event(domain.EventWaitEntered, userID),
				NodeID:      node.ID,
				Variable:    state.Conditional.InputVariable,
				Kind:        domain.InputText,
				Conditional: true,
			})
		}
		ArmSkipButtons(state, rule)
	} else if node.Conditions != nil && len(node.Conditions.Rules) > 0 {
		e.logger.Debug("no rule matched, using fallback", "user_id", userID, "node_id", node.ID)
		if e.hooks.OnFallback != nil {
			e.hooks.OnFallback(ctx, &domain.ResolutionEvent{
				EventBase: e.event(domain.EventFallback, userID),
				NodeID:    node.ID,
			})
		}
	}

	if EnterInputWait(state, node) {
		waits = append(waits, &domain.WaitEvent{
			EventBase: e.event(domain.EventWaitEntered, userID),
			NodeID:    node.ID,
			Variable:  state.Input.Variable,
			Kind:      state.Input.Kind,
		})
	}

	if err := e.SaveState(ctx, state); err != nil {
		return nil, err
	}
	res.Response.AwaitingInput = len(waits) > 0

	if e.hooks.OnWaitEntered != nil {
		for _, w := range waits {
			e.hooks.OnWaitEntered(ctx, w)
		}
	}
	return res.Response, nil
}

// LoadState returns the stored state for userID, or a fresh idle state.
func (e *Engine) LoadState(ctx context.Context, userID string) (*domain.ConversationState, error) {
	state, err := e.states.Load(ctx, userID)
	if errors.Is(err, domain.ErrStateNotFound) {
		return domain.NewConversationState(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state for %s: %w", userID, err)
	}
	return state, nil
}

// SaveState stamps and persists the state.
func (e *Engine) SaveState(ctx context.Context, state *domain.ConversationState) error {
	state.UpdatedAt = e.now().UTC()
	if err := e.states.Save(ctx, state.UserID, state); err != nil {
		return fmt.Errorf("save state for %s: %w", state.UserID, err)
	}
	return nil
}

// Variables exposes the variable store the engine resolves against.
func (e *Engine) Variables() *variables.Store {
	return e.variables
}

// Hooks returns the registered lifecycle hooks.
func (e *Engine) Hooks() domain.LifecycleHooks {
	return e.hooks
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Columns returns the column policy in use.
func (e *Engine) Columns() ColumnPolicy {
	return e.columns
}

func (e *Engine) event(t domain.EventType, userID string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, UserID: userID}
}

func concreteFormat(mode domain.FormatMode) domain.FormatMode {
	if mode == domain.FormatUnset {
		return domain.FormatNone
	}
	return mode
}
