package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/botflow/pkg/domain"
)

func TestEnterConditionalWait(t *testing.T) {
	state := domain.NewConversationState("u1")

	assert.False(t, EnterConditionalWait(state, domain.ConditionRule{ID: "r"}))
	assert.Nil(t, state.Conditional)

	ok := EnterConditionalWait(state, domain.ConditionRule{
		ID:            "ask_email",
		VariableNames: []string{"email"},
		WaitForInput:  true,
		NextNodeID:    "done",
	})
	require.True(t, ok)
	assert.Equal(t, "email", state.Conditional.InputVariable)
	assert.Equal(t, "done", state.Conditional.NextNodeID)

	EnterConditionalWait(state, domain.ConditionRule{ID: "ask_phone", WaitForInput: true, InputVariable: "phone"})
	assert.Equal(t, "ask_phone", state.Conditional.RuleID, "a new wait overwrites the previous one")
}

func TestEnterInputWait_DefaultsToText(t *testing.T) {
	state := domain.NewConversationState("u1")
	node := &domain.Node{ID: "ask", Input: &domain.InputConfig{Variable: "bio"}}

	require.True(t, EnterInputWait(state, node))
	assert.Equal(t, domain.InputText, state.Input.Kind)
	assert.True(t, state.Input.Accepts(domain.InputText))
	assert.False(t, state.Input.Accepts(domain.InputPhoto))
	assert.Equal(t, "ask", state.Input.NodeID)
}

func TestConsumeConditional_ClearsSkipButtons(t *testing.T) {
	state := domain.NewConversationState("u1")
	rule := domain.ConditionRule{
		ID: "r", InputVariable: "email", WaitForInput: true,
		SkipButtons: []domain.SkipButton{{Text: "Skip", TargetNodeID: "menu"}},
	}
	EnterConditionalWait(state, rule)
	ArmSkipButtons(state, rule)

	wait := ConsumeConditional(state)
	require.NotNil(t, wait)
	assert.Equal(t, "email", wait.InputVariable)
	assert.Nil(t, state.Conditional)
	assert.Empty(t, state.PendingSkipButtons)
}

func TestMatchSkipButton(t *testing.T) {
	state := domain.NewConversationState("u1")
	state.PendingSkipButtons = []domain.SkipButton{{Text: "Later", TargetNodeID: "menu"}}
	state.Input = &domain.InputWait{Variable: "bio", SkipButtons: []domain.SkipButton{{Text: "No bio", TargetNodeID: "end"}}}

	b, ok := MatchSkipButton(state, " Later ")
	require.True(t, ok)
	assert.Equal(t, "menu", b.TargetNodeID)

	b, ok = MatchSkipButton(state, "No bio")
	require.True(t, ok)
	assert.Equal(t, "end", b.TargetNodeID)

	_, ok = MatchSkipButton(state, "hello")
	assert.False(t, ok)

	ClearWaits(state)
	assert.True(t, state.Idle())
	assert.Empty(t, state.PendingSkipButtons)
}

func TestMatchSkipTarget(t *testing.T) {
	state := domain.NewConversationState("u1")
	state.Conditional = &domain.ConditionalWait{
		RuleID:        "ask",
		InputVariable: "city",
		SkipButtons:   []domain.SkipButton{{Text: "Skip", TargetNodeID: "menu"}},
	}

	b, ok := MatchSkipTarget(state, "menu")
	require.True(t, ok)
	assert.Equal(t, "Skip", b.Text)

	_, ok = MatchSkipTarget(state, "Skip")
	assert.False(t, ok)
	_, ok = MatchSkipTarget(state, "")
	assert.False(t, ok)
}
