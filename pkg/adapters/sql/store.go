package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/botflow/pkg/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements ports.StateStore over the conversation_states table.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Save upserts the user's state.
func (s *Store) Save(ctx context.Context, userID string, state *domain.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	row := StateRow{UserID: userID, State: datatypes.JSON(data)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save state for %s: %w", userID, err)
	}
	return nil
}

// Load reads the user's state.
func (s *Store) Load(ctx context.Context, userID string) (*domain.ConversationState, error) {
	var row StateRow
	err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state for %s: %w", userID, err)
	}

	var state domain.ConversationState
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes the user's state.
func (s *Store) Delete(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Delete(&StateRow{}, "user_id = ?", userID).Error
	if err != nil {
		return fmt.Errorf("failed to delete state for %s: %w", userID, err)
	}
	return nil
}

// List returns users with stored state.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&StateRow{}).Order("user_id").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	return ids, nil
}
