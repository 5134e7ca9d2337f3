package models

import (
	"time"

	"gorm.io/datatypes"
)

// User mirrors the identity minted by the auth layer; ID is the token subject.
type User struct {
	ID              string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name            string `gorm:"column:name;type:text" json:"name"`
	Email           string `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	AvatarURL       string `gorm:"column:avatar_url;type:text" json:"avatarUrl"`
	PasswordHash    string `gorm:"column:password_hash;type:text" json:"-"`
	IsEmailVerified bool   `gorm:"column:is_email_verified" json:"isEmailVerified"`

	// JSONB (raw JSON, flexible structure: preferred model, UI settings)
	Preferences datatypes.JSON `gorm:"column:preferences;type:jsonb" json:"preferences,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"createdAt"`
}

func (User) TableName() string { return "users" }
