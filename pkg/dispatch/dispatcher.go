package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
	"github.com/aretw0/botflow/pkg/session"
)

// DefaultMaxChain caps automatic Next transitions per event.
const DefaultMaxChain = 10

// Dispatcher handles events for every user of one flow.
type Dispatcher struct {
	loader   ports.FlowLoader
	engine   *runtime.Engine
	sessions *session.Manager
	logger   *slog.Logger
	maxChain int
	maxInput int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMaxChain sets how many Next transitions one event may follow.
func WithMaxChain(n int) Option {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.maxChain = n
		}
	}
}

// WithMaxInputSize sets the largest accepted text, in bytes.
func WithMaxInputSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxInput = n
		}
	}
}

// New creates a Dispatcher. The session manager must wrap the same state
// store the engine writes to.
func New(loader ports.FlowLoader, engine *runtime.Engine, sessions *session.Manager, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		loader:   loader,
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
		maxChain: DefaultMaxChain,
		maxInput: DefaultMaxInputSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes one event under the user's session lock.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) (*Result, error) {
	if strings.TrimSpace(ev.UserID) == "" {
		return nil, ErrEmptyUserID
	}
	if ev.Kind == EventText {
		clean, err := SanitizeInput(ev.Text, d.maxInput)
		if err != nil {
			return nil, err
		}
		ev.Text = clean
	}

	var res *Result
	err := d.sessions.WithLock(ctx, ev.UserID, func(ctx context.Context) error {
		var err error
		switch ev.Kind {
		case EventCommand:
			res, err = d.handleCommand(ctx, ev.UserID, ev.Command)
		case EventCallback:
			res, err = d.handleCallback(ctx, ev.UserID, ev.Data)
		case EventText:
			res, err = d.handleInput(ctx, ev.UserID, domain.InputText, ev.Text)
		case EventMedia:
			res, err = d.handleInput(ctx, ev.UserID, ev.Media, ev.FileID)
		default:
			err = fmt.Errorf("%w: %q", ErrUnsupportedEvent, ev.Kind)
		}
		return err
	})
	if err != nil {
		d.logger.Warn("event failed", "user_id", ev.UserID, "kind", ev.Kind, "err", err)
		return nil, err
	}
	return res, nil
}

// handleCommand clears every wait, then shows the command's node.
func (d *Dispatcher) handleCommand(ctx context.Context, userID, command string) (*Result, error) {
	node, err := d.loader.NodeByCommand(command)
	if errors.Is(err, domain.ErrNodeNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
	if err != nil {
		return nil, err
	}

	state, err := d.engine.LoadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !state.Idle() || len(state.PendingSkipButtons) > 0 {
		runtime.ClearWaits(state)
		if err := d.engine.SaveState(ctx, state); err != nil {
			return nil, err
		}
	}
	return d.show(ctx, userID, node, &Result{})
}

func (d *Dispatcher) handleCallback(ctx context.Context, userID, data string) (*Result, error) {
	if cmd, ok := strings.CutPrefix(data, runtime.CallbackCommandPrefix); ok {
		return d.handleCommand(ctx, userID, cmd)
	}

	state, err := d.engine.LoadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	if skip, ok := runtime.MatchSkipTarget(state, data); ok {
		runtime.ClearWaits(state)
		if err := d.engine.SaveState(ctx, state); err != nil {
			return nil, err
		}
		d.logger.Debug("skip button pressed", "user_id", userID, "target", skip.TargetNodeID)
		return d.goTo(ctx, userID, skip.TargetNodeID, &Result{})
	}

	var current *domain.Node
	if state.LastNodeID != "" {
		if n, err := d.loader.GetNode(state.LastNodeID); err == nil {
			current = n
		}
	}

	if strings.HasPrefix(data, runtime.CallbackConditionalPrefix) {
		button, ok := findButton(current, func(b domain.ButtonSpec) bool {
			return b.SetVariable != "" && runtime.SelectionToken(b) == data
		})
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCallback, data)
		}
		return d.applySelection(ctx, state, current, button)
	}

	if button, ok := findButton(current, func(b domain.ButtonSpec) bool {
		return runtime.CallbackData(b) == data
	}); ok && button.Target != "" {
		data = button.Target
	}

	node, err := d.loader.GetNode(data)
	if errors.Is(err, domain.ErrNodeNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCallback, data)
	}
	if err != nil {
		return nil, err
	}
	return d.show(ctx, userID, node, &Result{})
}

// applySelection stores a selection button's value, then moves to the button target,
// the node's Next, or back to the same node so its rules see the new value.
func (d *Dispatcher) applySelection(ctx context.Context, state *domain.ConversationState, current *domain.Node, b domain.ButtonSpec) (*Result, error) {
	value := b.SetValue
	if value == "" {
		value = b.Text
	}
	res := &Result{Consumed: &Consumption{Variable: b.SetVariable, Value: value}}

	if state.Conditional != nil && state.Conditional.InputVariable == b.SetVariable {
		runtime.ConsumeConditional(state)
		res.Consumed.Conditional = true
	}
	if state.Input != nil && state.Input.Variable == b.SetVariable {
		runtime.ConsumeInput(state)
	}
	if err := d.engine.SaveState(ctx, state); err != nil {
		return nil, err
	}
	d.store(ctx, state.UserID, b.SetVariable, value)

	next := b.Target
	if next == "" {
		next = current.Next
	}
	if next == "" {
		next = current.ID
	}
	return d.goTo(ctx, state.UserID, next, res)
}

// handleInput routes free text or media to the active wait.
// Skip buttons win over waits; a conditional wait wins over node input.
func (d *Dispatcher) handleInput(ctx context.Context, userID string, mode domain.InputMode, value string) (*Result, error) {
	state, err := d.engine.LoadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	if mode == domain.InputText {
		if skip, ok := runtime.MatchSkipButton(state, value); ok {
			runtime.ClearWaits(state)
			if err := d.engine.SaveState(ctx, state); err != nil {
				return nil, err
			}
			d.logger.Debug("skip button pressed", "user_id", userID, "target", skip.TargetNodeID)
			return d.goTo(ctx, userID, skip.TargetNodeID, &Result{})
		}

		if state.Conditional != nil {
			wait := runtime.ConsumeConditional(state)
			if err := d.engine.SaveState(ctx, state); err != nil {
				return nil, err
			}
			d.store(ctx, userID, wait.InputVariable, value)
			d.consumed(ctx, userID, state.LastNodeID, wait.InputVariable, mode, true)

			res := &Result{Consumed: &Consumption{Variable: wait.InputVariable, Value: value, Conditional: true}}
			if wait.NextNodeID == "" {
				return res, nil
			}
			return d.goTo(ctx, userID, wait.NextNodeID, res)
		}
	}

	if state.Input == nil || !state.Input.Accepts(mode) {
		d.logger.Debug("input ignored, nothing waiting", "user_id", userID, "mode", mode)
		return &Result{Ignored: true}, nil
	}

	wait := runtime.ConsumeInput(state)
	if err := d.engine.SaveState(ctx, state); err != nil {
		return nil, err
	}
	d.store(ctx, userID, wait.Variable, value)
	d.consumed(ctx, userID, wait.NodeID, wait.Variable, mode, false)

	res := &Result{Consumed: &Consumption{Variable: wait.Variable, Value: value}}
	next := ""
	if n, err := d.loader.GetNode(wait.NodeID); err == nil {
		if n.Input != nil {
			next = n.Input.Next
		}
		if next == "" {
			next = n.Next
		}
	}
	if next == "" {
		return res, nil
	}
	return d.goTo(ctx, userID, next, res)
}

func (d *Dispatcher) goTo(ctx context.Context, userID, nodeID string, res *Result) (*Result, error) {
	node, err := d.loader.GetNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("transition to %q: %w", nodeID, err)
	}
	return d.show(ctx, userID, node, res)
}

// show responds with node, then follows Next links while nothing is awaited.
func (d *Dispatcher) show(ctx context.Context, userID string, node *domain.Node, res *Result) (*Result, error) {
	for hops := 0; ; hops++ {
		resp, err := d.engine.Respond(ctx, node, userID)
		if err != nil {
			return nil, err
		}
		res.Responses = append(res.Responses, resp)

		if resp.AwaitingInput || node.Next == "" {
			return res, nil
		}
		if hops >= d.maxChain {
			d.logger.Warn("transition chain cut short", "user_id", userID, "node_id", node.ID, "max", d.maxChain)
			return res, nil
		}
		next := node.Next
		if node, err = d.loader.GetNode(next); err != nil {
			return nil, fmt.Errorf("transition to %q: %w", next, err)
		}
	}
}

// store writes a collected value. A durable-tier failure is logged, not
// returned: the volatile tier already holds the value.
func (d *Dispatcher) store(ctx context.Context, userID, name, value string) {
	if err := d.engine.Variables().Set(ctx, userID, name, value); err != nil {
		d.logger.Warn("variable kept in session only", "user_id", userID, "variable", name, "err", err)
	}
}

func (d *Dispatcher) consumed(ctx context.Context, userID, nodeID, variable string, mode domain.InputMode, conditional bool) {
	hook := d.engine.Hooks().OnInputConsumed
	if hook == nil {
		return
	}
	hook(ctx, &domain.WaitEvent{
		EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventInputConsumed, UserID: userID},
		NodeID:      nodeID,
		Variable:    variable,
		Kind:        mode,
		Conditional: conditional,
	})
}

// findButton searches every keyboard a node can render: its own, its
// fallback and each rule's.
func findButton(node *domain.Node, match func(domain.ButtonSpec) bool) (domain.ButtonSpec, bool) {
	if node == nil {
		return domain.ButtonSpec{}, false
	}
	specs := []*domain.KeyboardSpec{node.Keyboard, node.FallbackKeyboard()}
	if node.Conditions != nil {
		for _, r := range node.Conditions.Rules {
			specs = append(specs, r.Keyboard)
		}
	}
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		for _, b := range spec.Buttons {
			if match(b) {
				return b, true
			}
		}
	}
	return domain.ButtonSpec{}, false
}
