package runtime

import (
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// EnterConditionalWait arms the rule-triggered wait when the rule collects input.
// It overwrites any previous conditional wait and ignores whether the variable
// already has a value. The input variable defaults to the rule's first variable.
func EnterConditionalWait(state *domain.ConversationState, rule domain.ConditionRule) bool {
	if !rule.WaitForInput {
		return false
	}
	variable := rule.InputVariable
	if variable == "" && len(rule.VariableNames) > 0 {
		variable = rule.VariableNames[0]
	}
	if variable == "" {
		return false
	}
	state.Conditional = &domain.ConditionalWait{
		RuleID:        rule.ID,
		InputVariable: variable,
		NextNodeID:    rule.NextNodeID,
		SkipButtons:   cloneSkips(rule.SkipButtons),
	}
	return true
}

// ArmSkipButtons records the rule's skip buttons as pending.
func ArmSkipButtons(state *domain.ConversationState, rule domain.ConditionRule) bool {
	if len(rule.SkipButtons) == 0 {
		return false
	}
	state.PendingSkipButtons = cloneSkips(rule.SkipButtons)
	return true
}

// EnterInputWait arms node-level input collection when the node declares it.
func EnterInputWait(state *domain.ConversationState, node *domain.Node) bool {
	if node == nil || node.Input == nil || node.Input.Variable == "" {
		return false
	}
	modes := append([]domain.InputMode(nil), node.Input.Modes...)
	if len(modes) == 0 {
		modes = []domain.InputMode{domain.InputText}
	}
	state.Input = &domain.InputWait{
		Kind:        modes[0],
		Variable:    node.Input.Variable,
		Modes:       modes,
		NodeID:      node.ID,
		SkipButtons: cloneSkips(node.Input.SkipButtons),
	}
	return true
}

// ConsumeConditional clears the conditional wait and its pending skip buttons,
// returning the wait that was active.
func ConsumeConditional(state *domain.ConversationState) *domain.ConditionalWait {
	wait := state.Conditional
	state.Conditional = nil
	state.PendingSkipButtons = nil
	return wait
}

// ConsumeInput clears the node-level input wait, returning the wait that was active.
func ConsumeInput(state *domain.ConversationState) *domain.InputWait {
	wait := state.Input
	state.Input = nil
	return wait
}

// MatchSkipButton finds a skip button whose label equals text.
// Pending buttons are checked first, then those of the active waits.
func MatchSkipButton(state *domain.ConversationState, text string) (domain.SkipButton, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.SkipButton{}, false
	}
	return findSkip(state, func(b domain.SkipButton) bool {
		return strings.TrimSpace(b.Text) == text
	})
}

// MatchSkipTarget finds a skip button whose target equals the callback data
// of a pressed inline button.
func MatchSkipTarget(state *domain.ConversationState, data string) (domain.SkipButton, bool) {
	if data == "" {
		return domain.SkipButton{}, false
	}
	return findSkip(state, func(b domain.SkipButton) bool {
		return b.TargetNodeID == data
	})
}

func findSkip(state *domain.ConversationState, match func(domain.SkipButton) bool) (domain.SkipButton, bool) {
	groups := [][]domain.SkipButton{state.PendingSkipButtons}
	if state.Conditional != nil {
		groups = append(groups, state.Conditional.SkipButtons)
	}
	if state.Input != nil {
		groups = append(groups, state.Input.SkipButtons)
	}
	for _, group := range groups {
		for _, b := range group {
			if match(b) {
				return b, true
			}
		}
	}
	return domain.SkipButton{}, false
}

// ClearWaits resets every waiting flag.
func ClearWaits(state *domain.ConversationState) {
	state.Conditional = nil
	state.PendingSkipButtons = nil
	state.Input = nil
}

func cloneSkips(in []domain.SkipButton) []domain.SkipButton {
	if len(in) == 0 {
		return nil
	}
	return append([]domain.SkipButton(nil), in...)
}
