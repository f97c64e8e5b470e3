// Package validator checks a flow for problems that would only surface at
// conversation time: dangling targets, unreachable nodes and rules that can
// never match.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

// Issue is a single finding about a node.
type Issue struct {
	NodeID  string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.NodeID, i.Message)
}

// Report collects the findings of a validation pass.
// Errors break conversations; warnings are suspicious but legal.
type Report struct {
	Errors   []Issue
	Warnings []Issue
}

// Err returns nil when the report has no errors.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	lines := make([]string, len(r.Errors))
	for i, issue := range r.Errors {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(lines, "\n- "))
}

// ValidateLoader validates every node the loader exposes.
func ValidateLoader(loader ports.FlowLoader) (*Report, error) {
	nodes, err := loader.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return ValidateFlow(nodes), nil
}

// ValidateFlow checks every edge of the flow and crawls it from its entry
// points (start and command nodes) to find unreachable nodes.
func ValidateFlow(nodes []domain.Node) *Report {
	report := &Report{}
	byID := make(map[string]*domain.Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	var entries []string
	for _, n := range nodes {
		if n.Type == domain.NodeTypeStart || n.Command != "" {
			entries = append(entries, n.ID)
		}
		for _, target := range targets(n) {
			if _, ok := byID[target]; !ok {
				report.Errors = append(report.Errors, Issue{NodeID: n.ID, Message: fmt.Sprintf("Missing node '%s'", target)})
			}
		}
		checkRules(n, report)
		checkButtons(n, report)
	}

	if len(entries) == 0 {
		report.Warnings = append(report.Warnings, Issue{NodeID: "-", Message: "flow has no start or command node"})
		return report
	}

	visited := make(map[string]bool)
	queue := entries
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, ok := byID[currentID]
		if !ok {
			continue
		}
		for _, target := range targets(*node) {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, n := range nodes {
		if !visited[n.ID] {
			report.Warnings = append(report.Warnings, Issue{NodeID: n.ID, Message: "unreachable from any start or command node"})
		}
	}
	return report
}

func checkRules(n domain.Node, report *Report) {
	if n.Conditions == nil {
		return
	}
	seen := make(map[string]bool)
	for i, r := range n.Conditions.Rules {
		ref := r.ID
		if ref == "" {
			ref = fmt.Sprintf("#%d", i)
		} else if seen[r.ID] {
			report.Errors = append(report.Errors, Issue{NodeID: n.ID, Message: fmt.Sprintf("duplicate rule id '%s'", r.ID)})
		}
		seen[r.ID] = true

		if u, ok := r.Condition.(domain.Unsupported); ok {
			report.Warnings = append(report.Warnings, Issue{NodeID: n.ID, Message: fmt.Sprintf("rule %s never matches: %s", ref, u.Reason)})
		} else if r.Condition == nil || len(r.VariableNames) == 0 {
			report.Warnings = append(report.Warnings, Issue{NodeID: n.ID, Message: fmt.Sprintf("rule %s never matches: no variables", ref)})
		}
		if r.WaitForInput && r.InputVariable == "" && len(r.VariableNames) == 0 {
			report.Errors = append(report.Errors, Issue{NodeID: n.ID, Message: fmt.Sprintf("rule %s waits for input without a variable", ref)})
		}
	}
}

func checkButtons(n domain.Node, report *Report) {
	check := func(kb *domain.KeyboardSpec) {
		if kb == nil {
			return
		}
		for _, b := range kb.Buttons {
			if b.Action == domain.ActionSelection && b.SetVariable == "" {
				report.Warnings = append(report.Warnings, Issue{NodeID: n.ID, Message: fmt.Sprintf("selection button '%s' has no setVariable", b.Text)})
			}
		}
	}
	check(n.Keyboard)
	if n.Conditions != nil {
		check(n.Conditions.FallbackKeyboard)
		for _, r := range n.Conditions.Rules {
			check(r.Keyboard)
		}
	}
}

// targets lists every node id a node can hand the conversation to.
func targets(n domain.Node) []string {
	var out []string
	add := func(id string) {
		if id != "" {
			out = append(out, id)
		}
	}
	addKeyboard := func(kb *domain.KeyboardSpec) {
		if kb == nil {
			return
		}
		for _, b := range kb.Buttons {
			add(b.Target)
		}
	}

	add(n.Next)
	addKeyboard(n.Keyboard)
	if n.Input != nil {
		add(n.Input.Next)
		for _, s := range n.Input.SkipButtons {
			add(s.TargetNodeID)
		}
	}
	if n.Conditions != nil {
		addKeyboard(n.Conditions.FallbackKeyboard)
		for _, r := range n.Conditions.Rules {
			add(r.NextNodeID)
			addKeyboard(r.Keyboard)
			for _, s := range r.SkipButtons {
				add(s.TargetNodeID)
			}
		}
	}
	return out
}
