package validator

import (
	"testing"

	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlow(t *testing.T) {
	t.Run("Valid Flow", func(t *testing.T) {
		nodes := []domain.Node{
			{ID: "start", Type: domain.NodeTypeStart, Command: "/start", Next: "a"},
			{ID: "a", Keyboard: &domain.KeyboardSpec{Type: domain.KeyboardInline, Buttons: []domain.ButtonSpec{{Text: "B", Target: "b"}}}},
			{ID: "b"},
		}
		report := ValidateFlow(nodes)
		assert.NoError(t, report.Err())
		assert.Empty(t, report.Warnings)
	})

	t.Run("Broken Links", func(t *testing.T) {
		nodes := []domain.Node{
			{
				ID:      "start",
				Type:    domain.NodeTypeStart,
				Command: "/start",
				Conditions: &domain.RuleSet{Rules: []domain.ConditionRule{
					{ID: "r1", Condition: domain.NotExists{}, VariableNames: []string{"city"}, NextNodeID: "ghost"},
				}},
				Input: &domain.InputConfig{Variable: "x", SkipButtons: []domain.SkipButton{{Text: "Skip", TargetNodeID: "phantom"}}},
			},
		}
		report := ValidateFlow(nodes)
		require.Error(t, report.Err())
		assert.Contains(t, report.Err().Error(), "Missing node 'ghost'")
		assert.Contains(t, report.Err().Error(), "Missing node 'phantom'")
	})

	t.Run("Rule Problems", func(t *testing.T) {
		nodes := []domain.Node{
			{
				ID:   "start",
				Type: domain.NodeTypeStart,
				Conditions: &domain.RuleSet{Rules: []domain.ConditionRule{
					{ID: "dup", Condition: domain.Exists{}, VariableNames: []string{"a"}},
					{ID: "dup", Condition: domain.Unsupported{Raw: "regex", Reason: "unknown condition kind"}, VariableNames: []string{"a"}},
					{ID: "wait", Condition: domain.Exists{}, WaitForInput: true},
				}},
			},
		}
		report := ValidateFlow(nodes)
		require.Len(t, report.Errors, 2)
		assert.Contains(t, report.Errors[0].Message, "duplicate rule id")
		assert.Contains(t, report.Errors[1].Message, "waits for input without a variable")
		assert.Len(t, report.Warnings, 2)
	})

	t.Run("Selection Without Variable", func(t *testing.T) {
		nodes := []domain.Node{
			{ID: "start", Type: domain.NodeTypeStart, Keyboard: &domain.KeyboardSpec{
				Type:    domain.KeyboardInline,
				Buttons: []domain.ButtonSpec{{Text: "Pro", Action: domain.ActionSelection}},
			}},
		}
		report := ValidateFlow(nodes)
		assert.NoError(t, report.Err())
		require.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0].Message, "selection button 'Pro' has no setVariable")
	})

	t.Run("Unreachable Node", func(t *testing.T) {
		nodes := []domain.Node{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "orphan"},
		}
		report := ValidateFlow(nodes)
		assert.NoError(t, report.Err())
		require.Len(t, report.Warnings, 1)
		assert.Equal(t, "orphan", report.Warnings[0].NodeID)
	})

	t.Run("No Entry Point", func(t *testing.T) {
		report := ValidateFlow([]domain.Node{{ID: "a"}})
		require.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0].Message, "no start or command node")
	})
}

func TestValidateLoader(t *testing.T) {
	loader, err := memory.NewFromNodes(
		domain.Node{ID: "start", Type: domain.NodeTypeStart, Command: "/start", Next: "ghost"},
	)
	require.NoError(t, err)
	report, err := ValidateLoader(loader)
	require.NoError(t, err)
	assert.Error(t, report.Err())
}
