package domain

import "time"

// ConditionalWait records that the next text input fills a rule's variable.
type ConditionalWait struct {
	RuleID        string       `json:"rule_id"`
	InputVariable string       `json:"input_variable"`
	NextNodeID    string       `json:"next_node_id,omitempty"`
	SkipButtons   []SkipButton `json:"skip_buttons,omitempty"`
}

// InputWait records node-level input collection.
type InputWait struct {
	Kind        InputMode    `json:"kind"`
	Variable    string       `json:"variable"`
	Modes       []InputMode  `json:"modes"`
	NodeID      string       `json:"node_id,omitempty"`
	SkipButtons []SkipButton `json:"skip_buttons,omitempty"`
}

// Accepts reports whether the wait collects the given input mode.
func (w *InputWait) Accepts(mode InputMode) bool {
	for _, m := range w.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// ConversationState is the per-user mutable state.
// Conditional and Input are independent; setting either overwrites the previous value.
// Nothing here expires on its own.
type ConversationState struct {
	UserID             string           `json:"user_id"`
	LastNodeID         string           `json:"last_node_id,omitempty"`
	Conditional        *ConditionalWait `json:"waiting_for_conditional_input,omitempty"`
	PendingSkipButtons []SkipButton     `json:"pending_skip_buttons,omitempty"`
	Input              *InputWait       `json:"waiting_for_input,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// NewConversationState creates an idle state for a user.
func NewConversationState(userID string) *ConversationState {
	return &ConversationState{UserID: userID}
}

// Idle reports whether no waiting flag is set.
func (s *ConversationState) Idle() bool {
	return s.Conditional == nil && s.Input == nil
}

// Clone returns a deep copy of the state.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Conditional != nil {
		c := *s.Conditional
		c.SkipButtons = cloneSkipButtons(s.Conditional.SkipButtons)
		out.Conditional = &c
	}
	if s.Input != nil {
		in := *s.Input
		in.Modes = append([]InputMode(nil), s.Input.Modes...)
		in.SkipButtons = cloneSkipButtons(s.Input.SkipButtons)
		out.Input = &in
	}
	out.PendingSkipButtons = cloneSkipButtons(s.PendingSkipButtons)
	return &out
}

func cloneSkipButtons(in []SkipButton) []SkipButton {
	if in == nil {
		return nil
	}
	return append([]SkipButton(nil), in...)
}
