package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/botflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// maxMergeRetries bounds optimistic retries when two writers race on one record.
const maxMergeRetries = 5

// UserStore implements ports.UserRecordStore with one JSON document per user.
type UserStore struct {
	client *backend.Client
	prefix string
}

// NewUserStore creates a durable variable tier over an existing client.
func NewUserStore(client *backend.Client, opts ...Option) *UserStore {
	o := buildOptions(opts)
	return &UserStore{client: client, prefix: o.prefix + "user:"}
}

func (s *UserStore) key(userID string) string {
	return s.prefix + userID
}

// Put replaces a user's whole record.
func (s *UserStore) Put(ctx context.Context, userID string, rec domain.UserRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	return s.client.Set(ctx, s.key(userID), data, 0).Err()
}

// LoadUser returns the user's record.
func (s *UserStore) LoadUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user from redis: %w", err)
	}

	var rec domain.UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user record: %w", err)
	}
	return rec, nil
}

// SaveVariable merges name=value into user_data under WATCH so concurrent
// writers never drop each other's values.
func (s *UserStore) SaveVariable(ctx context.Context, userID, name, value string) error {
	key := s.key(userID)

	txf := func(tx *backend.Tx) error {
		rec := domain.UserRecord{"user_id": userID}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, backend.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal user record: %w", err)
			}
		}

		rec.SetVariable(name, value)
		out, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal user record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxMergeRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to save variable %q: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("failed to save variable %q: %w", name, backend.TxFailedErr)
}
