package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

// FlowLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.FlowLoader.
// expected maps node ids to their command (empty for non-command nodes).
func FlowLoaderContractTest(t *testing.T, loader ports.FlowLoader, expected map[string]string) {
	t.Helper()

	t.Run("GetNode_Success", func(t *testing.T) {
		for id := range expected {
			node, err := loader.GetNode(id)
			if err != nil {
				t.Fatalf("unexpected error getting node %s: %v", id, err)
			}
			if node.ID != id {
				t.Errorf("id mismatch: got %q, want %q", node.ID, id)
			}
		}
	})

	t.Run("GetNode_NotFound", func(t *testing.T) {
		_, err := loader.GetNode("non-existent-node")
		if !errors.Is(err, domain.ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})

	t.Run("NodeByCommand", func(t *testing.T) {
		for id, cmd := range expected {
			if cmd == "" {
				continue
			}
			node, err := loader.NodeByCommand(cmd)
			if err != nil {
				t.Fatalf("unexpected error for command %s: %v", cmd, err)
			}
			if node.ID != id {
				t.Errorf("command %s resolved to %q, want %q", cmd, node.ID, id)
			}
		}
	})

	t.Run("ListNodes", func(t *testing.T) {
		nodes, err := loader.ListNodes()
		if err != nil {
			t.Fatalf("unexpected error listing nodes: %v", err)
		}
		if len(nodes) != len(expected) {
			t.Errorf("expected %d nodes, got %d", len(expected), len(nodes))
		}
	})
}
