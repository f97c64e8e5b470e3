package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/botflow/pkg/domain"
)

// UserStore implements ports.UserRecordStore as one JSON file per user.
// Writes within a process are serialised; it is not meant to be shared
// between processes.
type UserStore struct {
	BasePath string
	mu       sync.Mutex
}

// NewUserStore creates a UserStore rooted at basePath, defaulting to ".botflow/users".
func NewUserStore(basePath string) *UserStore {
	if basePath == "" {
		basePath = filepath.Join(".botflow", "users")
	}
	return &UserStore{BasePath: basePath}
}

func (s *UserStore) path(userID string) string {
	return filepath.Join(s.BasePath, userID+".json")
}

// LoadUser reads the user's record.
func (s *UserStore) LoadUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return s.read(userID)
}

// SaveVariable merges name=value into user_data and rewrites the record.
func (s *UserStore) SaveVariable(ctx context.Context, userID, name, value string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(userID)
	if err == domain.ErrUserNotFound {
		rec, err = domain.UserRecord{"user_id": userID}, nil
	}
	if err != nil {
		return err
	}
	rec.SetVariable(name, value)
	return s.write(userID, rec)
}

// Put replaces the user's whole record.
func (s *UserStore) Put(userID string, rec domain.UserRecord) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(userID, rec)
}

func (s *UserStore) read(userID string) (domain.UserRecord, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}
	var rec domain.UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user record: %w", err)
	}
	return rec, nil
}

func (s *UserStore) write(userID string, rec domain.UserRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	if err := writeAtomic(s.BasePath, s.path(userID), data); err != nil {
		return fmt.Errorf("failed to save user record: %w", err)
	}
	return nil
}
