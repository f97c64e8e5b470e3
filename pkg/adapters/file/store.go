package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/botflow/pkg/domain"
)

// ErrEmptyUserID is returned when a file path would be built from an empty id.
var ErrEmptyUserID = errors.New("user id cannot be empty")

// Store implements ports.StateStore as one JSON file per user.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath, defaulting to ".botflow/state".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".botflow", "state")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.BasePath, userID+".json")
}

// Save writes the state atomically.
func (s *Store) Save(ctx context.Context, userID string, state *domain.ConversationState) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := writeAtomic(s.BasePath, s.path(userID), data); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Load reads the user's state file.
func (s *Store) Load(ctx context.Context, userID string) (*domain.ConversationState, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state domain.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes the state file. Deleting a missing state is not an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	if err := os.Remove(s.path(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// List returns every user with a state file.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := listJSON(s.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	return ids, nil
}
