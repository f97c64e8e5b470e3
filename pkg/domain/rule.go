package domain

import "strings"

// ConditionKind names the fixed set of condition kinds.
type ConditionKind string

const (
	KindExists    ConditionKind = "exists"
	KindNotExists ConditionKind = "not_exists"
	KindEquals    ConditionKind = "equals"
	KindContains  ConditionKind = "contains"
)

// LogicOperator combines per-variable truth values.
type LogicOperator string

const (
	OperatorAnd LogicOperator = "AND"
	OperatorOr  LogicOperator = "OR"
)

// ParseLogicOperator normalises an operator, defaulting to AND.
func ParseLogicOperator(s string) LogicOperator {
	if strings.EqualFold(strings.TrimSpace(s), string(OperatorOr)) {
		return OperatorOr
	}
	return OperatorAnd
}

// FormatMode selects how the transport should parse the message text.
type FormatMode string

const (
	// FormatUnset inherits the enclosing node's mode.
	FormatUnset    FormatMode = ""
	FormatNone     FormatMode = "none"
	FormatHTML     FormatMode = "html"
	FormatMarkdown FormatMode = "markdown"
)

// ParseFormatMode maps loose editor values onto a FormatMode.
// A blank value stays unset; anything unrecognised is FormatNone.
func ParseFormatMode(s string) FormatMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatUnset
	case "html":
		return FormatHTML
	case "markdown", "markdownv2", "md":
		return FormatMarkdown
	default:
		return FormatNone
	}
}

// Condition is the predicate variant of a rule.
// Implementations are Exists, NotExists, Equals, Contains and Unsupported.
type Condition interface {
	Kind() ConditionKind
	// Holds reports the truth value of the condition for a single variable.
	Holds(rec VariableRecord) bool
	isCondition()
}

// Exists holds when the variable has a non-empty value.
type Exists struct{}

func (Exists) Kind() ConditionKind { return KindExists }
func (Exists) Holds(rec VariableRecord) bool { return rec.Exists }
func (Exists) isCondition() {}

// NotExists holds when the variable has no non-empty value.
type NotExists struct{}

func (NotExists) Kind() ConditionKind { return KindNotExists }
func (NotExists) Holds(rec VariableRecord) bool { return !rec.Exists }
func (NotExists) isCondition() {}

// Equals holds when the variable exists and equals Value exactly (no trimming).
type Equals struct {
	Value string
}

func (Equals) Kind() ConditionKind { return KindEquals }
func (c Equals) Holds(rec VariableRecord) bool {
	v, ok := rec.String()
	return rec.Exists && ok && v == c.Value
}
func (Equals) isCondition() {}

// Contains holds when the variable exists and contains Substring.
type Contains struct {
	Substring string
}

func (Contains) Kind() ConditionKind { return KindContains }
func (c Contains) Holds(rec VariableRecord) bool {
	v, ok := rec.String()
	return rec.Exists && ok && strings.Contains(v, c.Substring)
}
func (Contains) isCondition() {}

// Unsupported is what unknown kinds and malformed rules decode to. It never holds.
type Unsupported struct {
	Raw    string
	Reason string
}

func (Unsupported) Kind() ConditionKind { return ConditionKind("unsupported") }
func (Unsupported) Holds(VariableRecord) bool { return false }
func (Unsupported) isCondition() {}

// SkipButton is a button exempt from the "collect this input" behaviour.
type SkipButton struct {
	Text         string `json:"text" yaml:"text" mapstructure:"text"`
	TargetNodeID string `json:"targetNodeId" yaml:"targetNodeId" mapstructure:"targetNodeId"`
}

// ConditionRule is one declarative branch of a conditional response.
type ConditionRule struct {
	ID            string
	Priority      int
	Condition     Condition
	VariableNames []string
	Operator      LogicOperator
	Template      string
	FormatMode    FormatMode
	Keyboard      *KeyboardSpec
	WaitForInput  bool
	InputVariable string
	NextNodeID    string
	SkipButtons   []SkipButton
}

// RuleSet is the ordered collection of rules plus fallback owned by a node.
// It is treated as immutable during an evaluation pass.
type RuleSet struct {
	Rules            []ConditionRule
	FallbackTemplate string
	FallbackKeyboard *KeyboardSpec
}
