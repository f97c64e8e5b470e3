package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/botflow/pkg/domain"
)

type mapScope map[string]*string

func (m mapScope) Resolve(name string) domain.VariableRecord {
	v, ok := m[name]
	if !ok || v == nil {
		return domain.Missing()
	}
	return domain.NewVariableRecord(*v)
}

func str(s string) *string { return &s }

func TestEvaluate_PriorityWins(t *testing.T) {
	rs := domain.RuleSet{Rules: []domain.ConditionRule{
		{ID: "b", Priority: 5, Condition: domain.NotExists{}, VariableNames: []string{"city"}},
		{ID: "a", Priority: 10, Condition: domain.Exists{}, VariableNames: []string{"city"}},
	}}

	match, ok := Evaluate(rs, mapScope{"city": str("Paris")})
	require.True(t, ok)
	assert.Equal(t, "a", match.Rule.ID)
}

func TestEvaluate_EqualPriorityKeepsListOrder(t *testing.T) {
	rs := domain.RuleSet{Rules: []domain.ConditionRule{
		{ID: "first", Condition: domain.Exists{}, VariableNames: []string{"x"}},
		{ID: "second", Condition: domain.Exists{}, VariableNames: []string{"x"}},
		{ID: "third", Condition: domain.Exists{}, VariableNames: []string{"x"}},
	}}

	match, ok := Evaluate(rs, mapScope{"x": str("1")})
	require.True(t, ok)
	assert.Equal(t, "first", match.Rule.ID)
}

func TestEvaluate_DoesNotReorderInput(t *testing.T) {
	rules := []domain.ConditionRule{
		{ID: "low", Priority: 1},
		{ID: "high", Priority: 9},
	}
	sorted := SortRules(rules)

	assert.Equal(t, "high", sorted[0].ID)
	assert.Equal(t, "low", rules[0].ID)
}

func TestEvaluate_Equals(t *testing.T) {
	rule := domain.ConditionRule{
		ID:            "pro",
		Condition:     domain.Equals{Value: "pro"},
		VariableNames: []string{"plan"},
		Operator:      domain.OperatorAnd,
	}
	rs := domain.RuleSet{Rules: []domain.ConditionRule{rule}}

	_, ok := Evaluate(rs, mapScope{"plan": str("pro")})
	assert.True(t, ok)

	_, ok = Evaluate(rs, mapScope{"plan": str("pro ")})
	assert.False(t, ok, "equals must not trim")

	_, ok = Evaluate(rs, mapScope{})
	assert.False(t, ok)
}

func TestEvaluate_Contains(t *testing.T) {
	rs := domain.RuleSet{Rules: []domain.ConditionRule{{
		ID:            "c",
		Condition:     domain.Contains{Substring: "art"},
		VariableNames: []string{"hobby"},
	}}}

	_, ok := Evaluate(rs, mapScope{"hobby": str("martial arts")})
	assert.True(t, ok)

	_, ok = Evaluate(rs, mapScope{"hobby": str("Chess")})
	assert.False(t, ok)
}

func TestEvaluate_Operators(t *testing.T) {
	scope := mapScope{"name": str("Ana")}
	tests := []struct {
		name     string
		kind     domain.Condition
		operator domain.LogicOperator
		want     bool
	}{
		{"exists AND partial", domain.Exists{}, domain.OperatorAnd, false},
		{"exists OR partial", domain.Exists{}, domain.OperatorOr, true},
		{"not_exists AND partial", domain.NotExists{}, domain.OperatorAnd, false},
		{"not_exists OR partial", domain.NotExists{}, domain.OperatorOr, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := domain.RuleSet{Rules: []domain.ConditionRule{{
				ID:            "r",
				Condition:     tt.kind,
				VariableNames: []string{"name", "email"},
				Operator:      tt.operator,
			}}}
			_, ok := Evaluate(rs, scope)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestEvaluate_EmptyVariableListNeverMatches(t *testing.T) {
	for _, cond := range []domain.Condition{domain.Exists{}, domain.NotExists{}, domain.Equals{}, domain.Contains{}} {
		rs := domain.RuleSet{Rules: []domain.ConditionRule{{ID: "r", Condition: cond}}}
		_, ok := Evaluate(rs, mapScope{})
		assert.False(t, ok, "kind %s", cond.Kind())
	}
}

func TestEvaluate_EmptyStringIsNotExisting(t *testing.T) {
	rs := domain.RuleSet{Rules: []domain.ConditionRule{{
		ID:            "missing",
		Condition:     domain.NotExists{},
		VariableNames: []string{"phone"},
	}}}

	_, ok := Evaluate(rs, mapScope{"phone": str("   ")})
	assert.True(t, ok)
}

func TestEvaluate_MalformedRulesNeverPanic(t *testing.T) {
	rs := domain.RuleSet{Rules: []domain.ConditionRule{
		{},
		{ID: "nil-condition", VariableNames: []string{"x"}},
		{ID: "unsupported", Condition: domain.Unsupported{Raw: "between"}, VariableNames: []string{"x"}},
		{ID: "good", Condition: domain.Exists{}, VariableNames: []string{"x"}},
	}}

	var (
		match *Match
		ok    bool
	)
	require.NotPanics(t, func() { match, ok = Evaluate(rs, mapScope{"x": str("1")}) })
	require.True(t, ok)
	assert.Equal(t, "good", match.Rule.ID)

	require.NotPanics(t, func() { _, ok = Evaluate(domain.RuleSet{}, nil) })
	assert.False(t, ok)
}

func TestEvaluate_NilScopeTreatsAllAsMissing(t *testing.T) {
	rs := domain.RuleSet{Rules: []domain.ConditionRule{{
		ID: "r", Condition: domain.NotExists{}, VariableNames: []string{"a"},
	}}}
	match, ok := Evaluate(rs, nil)
	require.True(t, ok)
	assert.False(t, match.Resolved["a"].Exists)
}
