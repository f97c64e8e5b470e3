package ports

import (
	"context"

	"github.com/aretw0/botflow/pkg/domain"
)

// StateStore persists per-user conversation state.
type StateStore interface {
	// Save persists the state for a user.
	Save(ctx context.Context, userID string, state *domain.ConversationState) error

	// Load retrieves the state for a user.
	// Returns domain.ErrStateNotFound if none exists.
	Load(ctx context.Context, userID string) (*domain.ConversationState, error)

	// Delete removes the state for a user.
	Delete(ctx context.Context, userID string) error

	// List returns the ids of users with stored state.
	List(ctx context.Context) ([]string, error)
}
