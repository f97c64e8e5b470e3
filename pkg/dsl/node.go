package dsl

import "github.com/aretw0/botflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Start marks the node as the flow's entry point, reached through command.
func (n *NodeBuilder) Start(command string) *NodeBuilder {
	n.node.Type = domain.NodeTypeStart
	n.node.Command = command
	return n
}

// Command binds the node to a command such as "/help".
func (n *NodeBuilder) Command(command string) *NodeBuilder {
	if n.node.Type == domain.NodeTypeMessage {
		n.node.Type = domain.NodeTypeCommand
	}
	n.node.Command = command
	return n
}

// Text sets the node's message text.
func (n *NodeBuilder) Text(text string) *NodeBuilder {
	n.node.Text = text
	return n
}

// Format sets how the transport parses the node's text.
func (n *NodeBuilder) Format(mode domain.FormatMode) *NodeBuilder {
	n.node.FormatMode = mode
	return n
}

// Keyboard attaches a keyboard to the node.
func (n *NodeBuilder) Keyboard(kind domain.KeyboardType, buttons ...domain.ButtonSpec) *NodeBuilder {
	n.node.Keyboard = &domain.KeyboardSpec{Type: kind, Buttons: buttons}
	return n
}

// Input makes the node collect a variable. Modes default to text.
func (n *NodeBuilder) Input(variable string, modes ...domain.InputMode) *NodeBuilder {
	if len(modes) == 0 {
		modes = []domain.InputMode{domain.InputText}
	}
	n.node.Type = domain.NodeTypeInput
	n.node.Input = &domain.InputConfig{Variable: variable, Modes: modes, Next: n.inputNext()}
	return n
}

// InputNext sets where the conversation continues after the node's input is collected.
func (n *NodeBuilder) InputNext(target string) *NodeBuilder {
	if n.node.Input != nil {
		n.node.Input.Next = target
	}
	return n
}

// SkipInput adds a button that leaves the node's input wait.
func (n *NodeBuilder) SkipInput(text, target string) *NodeBuilder {
	if n.node.Input != nil {
		n.node.Input.SkipButtons = append(n.node.Input.SkipButtons, domain.SkipButton{Text: text, TargetNodeID: target})
	}
	return n
}

// Next sets the node reached automatically after this one.
func (n *NodeBuilder) Next(target string) *NodeBuilder {
	n.node.Next = target
	return n
}

// Fallback sets the text shown when no rule matches.
func (n *NodeBuilder) Fallback(text string, keyboard ...domain.ButtonSpec) *NodeBuilder {
	rs := n.ruleSet()
	rs.FallbackTemplate = text
	if len(keyboard) > 0 {
		rs.FallbackKeyboard = &domain.KeyboardSpec{Type: domain.KeyboardInline, Buttons: keyboard}
	}
	return n
}

// Rule appends a conditional rule and returns its builder. Call End to get back to the node.
func (n *NodeBuilder) Rule(id string, priority int) *RuleBuilder {
	rs := n.ruleSet()
	rs.Rules = append(rs.Rules, domain.ConditionRule{ID: id, Priority: priority, Operator: domain.OperatorAnd})
	return &RuleBuilder{parent: n, index: len(rs.Rules) - 1}
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}

func (n *NodeBuilder) ruleSet() *domain.RuleSet {
	if n.node.Conditions == nil {
		n.node.Conditions = &domain.RuleSet{}
	}
	return n.node.Conditions
}

func (n *NodeBuilder) inputNext() string {
	if n.node.Input != nil {
		return n.node.Input.Next
	}
	return ""
}

// Goto returns an inline button that moves to target.
func Goto(text, target string) domain.ButtonSpec {
	return domain.ButtonSpec{Text: text, Action: domain.ActionGoto, Target: target}
}

// Select returns a button that stores value into variable when pressed.
func Select(text, variable, value string) domain.ButtonSpec {
	return domain.ButtonSpec{Text: text, Action: domain.ActionSelection, SetVariable: variable, SetValue: value}
}

// URL returns an inline button that opens a link.
func URL(text, url string) domain.ButtonSpec {
	return domain.ButtonSpec{Text: text, Action: domain.ActionURL, URL: url}
}
