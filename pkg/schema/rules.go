package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// wireRule mirrors the editor's rule object. Several fields have two spellings
// because older editor versions used different names.
type wireRule struct {
	ID       string `mapstructure:"id"`
	Priority int    `mapstructure:"priority"`

	Kind      string `mapstructure:"kind"`
	Condition string `mapstructure:"condition"`

	VariableNames any    `mapstructure:"variableNames"`
	VariableName  string `mapstructure:"variableName"`
	LogicOperator string `mapstructure:"logicOperator"`
	ExpectedValue string `mapstructure:"expectedValue"`

	MessageTemplate string `mapstructure:"messageTemplate"`
	MessageText     string `mapstructure:"messageText"`
	FormatMode      string `mapstructure:"formatMode"`

	Keyboard     *domain.KeyboardSpec `mapstructure:"keyboard"`
	KeyboardType string               `mapstructure:"keyboardType"`
	Buttons      []domain.ButtonSpec  `mapstructure:"buttons"`

	WaitForInput       bool   `mapstructure:"waitForInput"`
	WaitForTextInput   bool   `mapstructure:"waitForTextInput"`
	InputVariable      string `mapstructure:"inputVariable"`
	TextInputVariable  string `mapstructure:"textInputVariable"`
	NextNodeID         string `mapstructure:"nextNodeId"`
	NextNodeAfterInput string `mapstructure:"nextNodeAfterInput"`

	SkipButtons []domain.SkipButton `mapstructure:"skipButtons"`
}

type wireRuleSet struct {
	Rules            any                  `mapstructure:"rules"`
	FallbackTemplate string               `mapstructure:"fallbackTemplate"`
	FallbackKeyboard *domain.KeyboardSpec `mapstructure:"fallbackKeyboard"`
}

// DecodeRuleSet decodes a rule set from editor data.
// raw may be an object with "rules", "fallbackTemplate" and "fallbackKeyboard", or a bare
// list of rules. Anything else yields an empty rule set. It never fails.
func DecodeRuleSet(raw any) domain.RuleSet {
	switch v := raw.(type) {
	case []any:
		return domain.RuleSet{Rules: DecodeRules(v)}
	case map[string]any:
		var w wireRuleSet
		if err := decode(v, &w); err != nil {
			// Salvage the rules even when the fallback fields are mistyped.
			return domain.RuleSet{Rules: decodeRuleList(v["rules"])}
		}
		return domain.RuleSet{
			Rules:            decodeRuleList(w.Rules),
			FallbackTemplate: w.FallbackTemplate,
			FallbackKeyboard: normaliseKeyboard(w.FallbackKeyboard),
		}
	default:
		return domain.RuleSet{}
	}
}

func decodeRuleList(raw any) []domain.ConditionRule {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	return DecodeRules(list)
}

// DecodeRules decodes each entry independently; malformed entries become
// rules that never match, keeping their position in the list.
func DecodeRules(raw []any) []domain.ConditionRule {
	rules := make([]domain.ConditionRule, 0, len(raw))
	for i, entry := range raw {
		rules = append(rules, DecodeRule(entry, i))
	}
	return rules
}

// DecodeRule decodes a single rule. index is used to name rules that lack an id.
func DecodeRule(raw any, index int) domain.ConditionRule {
	obj, ok := raw.(map[string]any)
	if !ok {
		return unsupportedRule(fmt.Sprintf("rule_%d", index), fmt.Sprintf("%v", raw), fmt.Sprintf("rule is %T, not an object", raw))
	}

	var w wireRule
	if err := decode(obj, &w); err != nil {
		id, _ := obj["id"].(string)
		if id == "" {
			id = fmt.Sprintf("rule_%d", index)
		}
		return unsupportedRule(id, "", err.Error())
	}
	if w.ID == "" {
		w.ID = fmt.Sprintf("rule_%d", index)
	}

	rule := domain.ConditionRule{
		ID:            w.ID,
		Priority:      w.Priority,
		Operator:      domain.ParseLogicOperator(w.LogicOperator),
		Template:      firstNonEmpty(w.MessageTemplate, w.MessageText),
		FormatMode:    domain.ParseFormatMode(w.FormatMode),
		Keyboard:      ruleKeyboard(w),
		WaitForInput:  w.WaitForInput || w.WaitForTextInput,
		InputVariable: firstNonEmpty(w.InputVariable, w.TextInputVariable),
		NextNodeID:    firstNonEmpty(w.NextNodeID, w.NextNodeAfterInput),
		SkipButtons:   w.SkipButtons,
	}

	names, err := variableNames(w.VariableNames, w.VariableName)
	if err != nil {
		rule.Condition = domain.Unsupported{Raw: firstNonEmpty(w.Kind, w.Condition), Reason: err.Error()}
		return rule
	}
	rule.VariableNames = names
	rule.Condition = parseCondition(firstNonEmpty(w.Kind, w.Condition), w.ExpectedValue)
	return rule
}

func parseCondition(kind, expected string) domain.Condition {
	switch domain.ConditionKind(strings.TrimSpace(kind)) {
	case domain.KindExists:
		return domain.Exists{}
	case domain.KindNotExists:
		return domain.NotExists{}
	case domain.KindEquals:
		return domain.Equals{Value: expected}
	case domain.KindContains:
		return domain.Contains{Substring: expected}
	default:
		return domain.Unsupported{Raw: kind, Reason: "unknown condition kind"}
	}
}

// variableNames accepts a list of strings, or the legacy single variableName.
func variableNames(raw any, single string) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		if single != "" {
			return []string{single}, nil
		}
		return nil, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("variableNames contains %T, not a string", item)
			}
			names = append(names, s)
		}
		return names, nil
	default:
		return nil, fmt.Errorf("variableNames is %T, not a list", raw)
	}
}

func ruleKeyboard(w wireRule) *domain.KeyboardSpec {
	if w.Keyboard != nil {
		return normaliseKeyboard(w.Keyboard)
	}
	switch domain.KeyboardType(w.KeyboardType) {
	case domain.KeyboardInline, domain.KeyboardReply:
		if len(w.Buttons) == 0 {
			return nil
		}
		return &domain.KeyboardSpec{Type: domain.KeyboardType(w.KeyboardType), Buttons: w.Buttons}
	default:
		return nil
	}
}

// normaliseKeyboard drops keyboards of type "none" or without buttons.
func normaliseKeyboard(spec *domain.KeyboardSpec) *domain.KeyboardSpec {
	if spec == nil || len(spec.Buttons) == 0 {
		return nil
	}
	if spec.Type != domain.KeyboardInline && spec.Type != domain.KeyboardReply {
		return nil
	}
	return spec
}

func unsupportedRule(id, raw, reason string) domain.ConditionRule {
	return domain.ConditionRule{
		ID:        id,
		Operator:  domain.OperatorAnd,
		Condition: domain.Unsupported{Raw: raw, Reason: reason},
	}
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
