package mcp

import "github.com/aretw0/botflow/pkg/domain"

// nodeView is the introspection shape of a node, with its rules spelled out.
type nodeView struct {
	domain.Node
	Rules    []ruleView `json:"rules,omitempty"`
	Fallback string     `json:"fallback,omitempty"`
}

type ruleView struct {
	ID        string               `json:"id"`
	Priority  int                  `json:"priority"`
	Kind      domain.ConditionKind `json:"kind"`
	Expected  string               `json:"expected,omitempty"`
	Variables []string             `json:"variables"`
	Operator  domain.LogicOperator `json:"operator,omitempty"`
	Template  string               `json:"template,omitempty"`
	WaitInput string               `json:"waitForInput,omitempty"`
	Next      string               `json:"next,omitempty"`
}

func viewNodes(nodes []domain.Node) []nodeView {
	out := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		v := nodeView{Node: n}
		if n.Conditions != nil {
			v.Fallback = n.Conditions.FallbackTemplate
			for _, r := range n.Conditions.Rules {
				rv := ruleView{
					ID:        r.ID,
					Priority:  r.Priority,
					Kind:      r.Condition.Kind(),
					Variables: r.VariableNames,
					Operator:  r.Operator,
					Template:  r.Template,
					Next:      r.NextNodeID,
				}
				switch c := r.Condition.(type) {
				case domain.Equals:
					rv.Expected = c.Value
				case domain.Contains:
					rv.Expected = c.Substring
				}
				if r.WaitForInput {
					rv.WaitInput = r.InputVariable
				}
				v.Rules = append(v.Rules, rv)
			}
		}
		out = append(out, v)
	}
	return out
}
