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

// UserStore implements ports.UserRecordStore over the bot_users table.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore wraps an open database.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Upsert creates or replaces a user profile, keeping nothing from the old row.
func (s *UserStore) Upsert(ctx context.Context, user *BotUser) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.UserID, err)
	}
	return nil
}

// LoadUser returns the profile columns as flat fields plus user_data.
// Undecodable user_data is passed through as its raw text so it degrades at
// resolution time instead of failing the load.
func (s *UserStore) LoadUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	var user BotUser
	err := s.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return toRecord(user), nil
}

// SaveVariable merges name=value into user_data, creating the user if needed.
func (s *UserStore) SaveVariable(ctx context.Context, userID, name, value string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user BotUser
		err := tx.First(&user, "user_id = ?", userID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = BotUser{UserID: userID}
		case err != nil:
			return fmt.Errorf("failed to load user %s: %w", userID, err)
		}

		rec := domain.UserRecord{}
		if len(user.UserData) > 0 {
			rec[domain.UserDataKey] = string(user.UserData)
		}
		rec.SetVariable(name, value)

		data, err := json.Marshal(rec[domain.UserDataKey])
		if err != nil {
			return fmt.Errorf("failed to marshal user_data: %w", err)
		}
		user.UserData = datatypes.JSON(data)

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to save variable %q: %w", name, err)
		}
		return nil
	})
}

func toRecord(u BotUser) domain.UserRecord {
	rec := domain.UserRecord{"user_id": u.UserID}
	for k, v := range map[string]string{
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"username":      u.Username,
		"language_code": u.LanguageCode,
	} {
		if v != "" {
			rec[k] = v
		}
	}
	if len(u.UserData) > 0 {
		var data map[string]any
		if err := json.Unmarshal(u.UserData, &data); err == nil {
			rec[domain.UserDataKey] = data
		} else {
			rec[domain.UserDataKey] = string(u.UserData)
		}
	}
	return rec
}
