package runtime

import (
	"sort"

	"github.com/aretw0/botflow/pkg/domain"
)

// VariableScope resolves variable names for one user during one evaluation.
type VariableScope interface {
	Resolve(name string) domain.VariableRecord
}

// Match is the single rule selected by Evaluate and the records it was judged on.
type Match struct {
	Rule     domain.ConditionRule
	Resolved map[string]domain.VariableRecord
}

// Evaluate selects the first rule, by descending priority, whose predicate holds.
// Equal priorities keep list order. Later rules are never evaluated once one matches.
// It returns false when no rule matches; malformed rules simply never match.
func Evaluate(rs domain.RuleSet, scope VariableScope) (*Match, bool) {
	for _, rule := range SortRules(rs.Rules) {
		resolved := resolveAll(rule.VariableNames, scope)
		if Holds(rule, resolved) {
			return &Match{Rule: rule, Resolved: resolved}, true
		}
	}
	return nil, false
}

// SortRules returns a copy of rules ordered by priority, highest first, stable on ties.
func SortRules(rules []domain.ConditionRule) []domain.ConditionRule {
	sorted := make([]domain.ConditionRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

// Holds evaluates a rule's predicate against resolved records.
// A rule without variables or without a condition never holds.
func Holds(rule domain.ConditionRule, resolved map[string]domain.VariableRecord) bool {
	if rule.Condition == nil || len(rule.VariableNames) == 0 {
		return false
	}
	if _, ok := rule.Condition.(domain.Unsupported); ok {
		return false
	}

	or := rule.Operator == domain.OperatorOr
	for _, name := range rule.VariableNames {
		v := rule.Condition.Holds(resolved[name])
		if or && v {
			return true
		}
		if !or && !v {
			return false
		}
	}
	return !or
}

func resolveAll(names []string, scope VariableScope) map[string]domain.VariableRecord {
	resolved := make(map[string]domain.VariableRecord, len(names))
	for _, name := range names {
		if _, done := resolved[name]; done {
			continue
		}
		if scope == nil {
			resolved[name] = domain.Missing()
			continue
		}
		resolved[name] = scope.Resolve(name)
	}
	return resolved
}
