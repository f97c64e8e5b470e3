package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/botflow/pkg/domain"
)

// UserStore implements ports.UserRecordStore in memory.
// Records are kept as JSON so readers always receive an independent copy,
// matching what a database-backed tier returns.
type UserStore struct {
	mu    sync.RWMutex
	users map[string][]byte
}

// NewUserStore creates an empty durable tier.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string][]byte)}
}

// Put replaces a user's whole record. It is intended for seeding and tests.
func (s *UserStore) Put(userID string, rec domain.UserRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = data
	return nil
}

// LoadUser returns the user's record.
func (s *UserStore) LoadUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	s.mu.RLock()
	data, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	var rec domain.UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user record: %w", err)
	}
	return rec, nil
}

// SaveVariable merges a value into user_data.
func (s *UserStore) SaveVariable(ctx context.Context, userID, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := domain.UserRecord{"user_id": userID}
	if data, ok := s.users[userID]; ok {
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal user record: %w", err)
		}
	}

	rec.SetVariable(name, value)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	s.users[userID] = data
	return nil
}
