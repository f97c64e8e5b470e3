package ports

import (
	"context"

	"github.com/aretw0/botflow/pkg/domain"
)

// UserRecordStore is the durable variable tier.
type UserRecordStore interface {
	// LoadUser returns the durable document for a user.
	// Returns domain.ErrUserNotFound if the user has no record.
	LoadUser(ctx context.Context, userID string) (domain.UserRecord, error)

	// SaveVariable merges name=value into the user's user_data, creating the record if needed.
	SaveVariable(ctx context.Context, userID, name, value string) error
}

// VolatileStore is the session-scoped variable cache.
type VolatileStore interface {
	// Variables returns a copy of the user's cached variables.
	Variables(ctx context.Context, userID string) map[string]string

	// Set stores a variable for a user.
	Set(ctx context.Context, userID, name, value string)

	// Clear drops all cached variables of a user.
	Clear(ctx context.Context, userID string)
}
