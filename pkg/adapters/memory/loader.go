package memory

import (
	"fmt"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// Loader implements ports.FlowLoader over an in-memory list of nodes.
// It is read-only after construction and therefore safe for concurrent use.
type Loader struct {
	order    []string
	nodes    map[string]domain.Node
	commands map[string]string
}

// NewFromNodes creates a Loader from domain nodes, keeping their order.
func NewFromNodes(nodes ...domain.Node) (*Loader, error) {
	l := &Loader{
		nodes:    make(map[string]domain.Node, len(nodes)),
		commands: make(map[string]string),
	}
	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node missing ID")
		}
		if _, dup := l.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node ID: %s", n.ID)
		}
		l.order = append(l.order, n.ID)
		l.nodes[n.ID] = n
		if cmd := normaliseCommand(n.Command); cmd != "" {
			l.commands[cmd] = n.ID
		} else if n.Type == domain.NodeTypeStart {
			l.commands["start"] = n.ID
		}
	}
	return l, nil
}

// GetNode retrieves a node by ID.
func (l *Loader) GetNode(id string) (*domain.Node, error) {
	n, ok := l.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return &n, nil
}

// NodeByCommand finds the node bound to a command.
func (l *Loader) NodeByCommand(command string) (*domain.Node, error) {
	id, ok := l.commands[normaliseCommand(command)]
	if !ok {
		return nil, fmt.Errorf("%w: command %s", domain.ErrNodeNotFound, command)
	}
	return l.GetNode(id)
}

// ListNodes returns all nodes in definition order.
func (l *Loader) ListNodes() ([]domain.Node, error) {
	out := make([]domain.Node, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.nodes[id])
	}
	return out, nil
}

// normaliseCommand strips the slash and any "@botname" suffix.
func normaliseCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	cmd = strings.TrimPrefix(cmd, "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}
