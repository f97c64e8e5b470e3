package ports

import (
	"context"

	"github.com/aretw0/botflow/pkg/domain"
)

// FlowLoader defines how the engine retrieves node definitions.
type FlowLoader interface {
	// GetNode retrieves a node by id.
	// Returns domain.ErrNodeNotFound if it does not exist.
	GetNode(id string) (*domain.Node, error)

	// NodeByCommand finds the node triggered by a command (with or without the leading slash).
	NodeByCommand(command string) (*domain.Node, error)

	// ListNodes returns every node of the flow in definition order.
	ListNodes() ([]domain.Node, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}
