package sql

import (
	"time"

	"gorm.io/datatypes"
)

// BotUser is the durable profile of a chat user.
// UserData holds the variables collected during conversations.
type BotUser struct {
	UserID       string         `gorm:"column:user_id;primaryKey" json:"user_id"`
	FirstName    string         `gorm:"column:first_name" json:"first_name,omitempty"`
	LastName     string         `gorm:"column:last_name" json:"last_name,omitempty"`
	Username     string         `gorm:"column:username" json:"username,omitempty"`
	LanguageCode string         `gorm:"column:language_code" json:"language_code,omitempty"`
	UserData     datatypes.JSON `gorm:"column:user_data" json:"user_data,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName implements gorm's tabler.
func (BotUser) TableName() string { return "bot_users" }

// StateRow persists one user's conversation state as a JSON document.
type StateRow struct {
	UserID    string         `gorm:"column:user_id;primaryKey"`
	State     datatypes.JSON `gorm:"column:state"`
	UpdatedAt time.Time
}

// TableName implements gorm's tabler.
func (StateRow) TableName() string { return "conversation_states" }
