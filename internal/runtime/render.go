package runtime

import (
	"sort"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// Render substitutes {name} placeholders in two passes.
//
// The first pass uses the matched rule's variables and only replaces those with a
// non-null value. The second pass replaces any placeholder still present with the
// user's other known variables. Placeholders are literal substrings: there is no
// escaping and no nesting. Names are processed in sorted order so output is stable.
func Render(template string, ruleVars map[string]domain.VariableRecord, known map[string]string) string {
	out := template

	for _, name := range sortedKeys(ruleVars) {
		value, ok := ruleVars[name].String()
		if !ok {
			continue
		}
		out = strings.ReplaceAll(out, placeholder(name), value)
	}

	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ph := placeholder(name)
		if strings.Contains(out, ph) {
			out = strings.ReplaceAll(out, ph, known[name])
		}
	}
	return out
}

// SelectTemplate returns the rule template, or the node's own text when the rule
// template is blank. A blank rule template means "inherit", never "send nothing".
func SelectTemplate(rule domain.ConditionRule, node *domain.Node) string {
	if strings.TrimSpace(rule.Template) == "" {
		return node.Text
	}
	return rule.Template
}

func placeholder(name string) string {
	return "{" + name + "}"
}

func sortedKeys(m map[string]domain.VariableRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
