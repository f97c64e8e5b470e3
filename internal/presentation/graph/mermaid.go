package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/pkg/domain"
)

// GraphOverlay contains per-user state data to visualize on the graph.
type GraphOverlay struct {
	// CurrentNode is the user's last shown node.
	CurrentNode string
	// WaitingNode is the node a pending conditional wait will continue to.
	WaitingNode string
}

// GenerateMermaid produces a Mermaid flowchart from a flow's nodes.
// Shapes follow the node type:
// - Start: ((Circle))
// - Command: [[Subroutine]]
// - Input: [/Parallelogram/]
// - Message: [Rectangle]
// Edges are drawn for Next, input continuation, rule continuations,
// button targets and skip buttons. Overlay styles are applied if provided.
func GenerateMermaid(nodes []domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart:
			opener, closer = "((", "))"
		case domain.NodeTypeCommand:
			opener, closer = "[[", "]]"
		case domain.NodeTypeInput:
			opener, closer = "[/", "/]"
		}

		label := node.ID
		if node.Command != "" {
			label = fmt.Sprintf("%s <br/> %s", node.ID, node.Command)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))

		for _, e := range edges(node) {
			arrow := "-->"
			if e.dotted {
				arrow = "-.->"
			}
			if e.label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.label))
				if e.dotted {
					arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(e.label))
				}
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(e.to)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef waiting fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if overlay.WaitingNode != "" && overlay.WaitingNode != overlay.CurrentNode {
			sb.WriteString(fmt.Sprintf("    class %s waiting;\n", sanitizeMermaidID(overlay.WaitingNode)))
		}
		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

type edge struct {
	to     string
	label  string
	dotted bool
}

// edges lists a node's outgoing edges in a stable order. Duplicates of the
// same target and label are drawn once.
func edges(node domain.Node) []edge {
	var out []edge
	seen := make(map[edge]bool)
	add := func(e edge) {
		if e.to == "" || seen[e] {
			return
		}
		seen[e] = true
		out = append(out, e)
	}

	if node.Conditions != nil {
		for _, r := range runtime.SortRules(node.Conditions.Rules) {
			add(edge{to: r.NextNodeID, label: ruleLabel(r)})
			if r.Keyboard != nil {
				for _, b := range r.Keyboard.Buttons {
					add(edge{to: b.Target, label: b.Text})
				}
			}
			for _, s := range r.SkipButtons {
				add(edge{to: s.TargetNodeID, label: s.Text, dotted: true})
			}
		}
	}
	if kb := node.FallbackKeyboard(); kb != nil {
		for _, b := range kb.Buttons {
			add(edge{to: b.Target, label: b.Text})
		}
	}
	if node.Input != nil {
		add(edge{to: node.Input.Next, label: "input: " + node.Input.Variable})
		for _, s := range node.Input.SkipButtons {
			add(edge{to: s.TargetNodeID, label: s.Text, dotted: true})
		}
	}
	add(edge{to: node.Next})
	return out
}

func ruleLabel(r domain.ConditionRule) string {
	kind := "?"
	if r.Condition != nil {
		kind = string(r.Condition.Kind())
	}
	return fmt.Sprintf("%s %s", kind, strings.Join(r.VariableNames, ","))
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
