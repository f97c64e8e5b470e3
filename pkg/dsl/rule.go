package dsl

import "github.com/aretw0/botflow/pkg/domain"

// RuleBuilder configures one conditional rule of a node.
type RuleBuilder struct {
	parent *NodeBuilder
	index  int
}

func (r *RuleBuilder) rule() *domain.ConditionRule {
	return &r.parent.node.Conditions.Rules[r.index]
}

func (r *RuleBuilder) when(c domain.Condition, vars []string) *RuleBuilder {
	rule := r.rule()
	rule.Condition = c
	rule.VariableNames = vars
	return r
}

// Exists holds when the variables have non-empty values.
func (r *RuleBuilder) Exists(vars ...string) *RuleBuilder {
	return r.when(domain.Exists{}, vars)
}

// NotExists holds when the variables have no value.
func (r *RuleBuilder) NotExists(vars ...string) *RuleBuilder {
	return r.when(domain.NotExists{}, vars)
}

// Equals holds when the variables equal value exactly.
func (r *RuleBuilder) Equals(value string, vars ...string) *RuleBuilder {
	return r.when(domain.Equals{Value: value}, vars)
}

// Contains holds when the variables contain substring.
func (r *RuleBuilder) Contains(substring string, vars ...string) *RuleBuilder {
	return r.when(domain.Contains{Substring: substring}, vars)
}

// Any combines the rule's variables with OR instead of AND.
func (r *RuleBuilder) Any() *RuleBuilder {
	r.rule().Operator = domain.OperatorOr
	return r
}

// Template sets the rule's message. An empty template reuses the node text.
func (r *RuleBuilder) Template(text string) *RuleBuilder {
	r.rule().Template = text
	return r
}

// Format sets the rule's format mode.
func (r *RuleBuilder) Format(mode domain.FormatMode) *RuleBuilder {
	r.rule().FormatMode = mode
	return r
}

// Keyboard attaches a keyboard to the rule's response.
func (r *RuleBuilder) Keyboard(kind domain.KeyboardType, buttons ...domain.ButtonSpec) *RuleBuilder {
	r.rule().Keyboard = &domain.KeyboardSpec{Type: kind, Buttons: buttons}
	return r
}

// WaitForInput makes the next text message fill variable.
func (r *RuleBuilder) WaitForInput(variable string) *RuleBuilder {
	rule := r.rule()
	rule.WaitForInput = true
	rule.InputVariable = variable
	return r
}

// Then sets the node shown after the awaited input arrives.
func (r *RuleBuilder) Then(target string) *RuleBuilder {
	r.rule().NextNodeID = target
	return r
}

// Skip adds a button that leaves the wait without storing anything.
func (r *RuleBuilder) Skip(text, target string) *RuleBuilder {
	rule := r.rule()
	rule.SkipButtons = append(rule.SkipButtons, domain.SkipButton{Text: text, TargetNodeID: target})
	return r
}

// End returns to the node builder.
func (r *RuleBuilder) End() *NodeBuilder {
	return r.parent
}
