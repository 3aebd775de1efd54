package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// UserName is the unique, email-shaped login name.
	UserName string `json:"userName"`

	// DisplayName is the human readable name shown to other users.
	DisplayName string `json:"name"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized.
	PasswordHash string `json:"-"`

	// IsAdmin grants top privilege on every list regardless of membership.
	IsAdmin bool `json:"isAdmin"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser builds a non-admin user with a fresh ID and timestamps.
func NewUser(userName, displayName, passwordHash string) *User {
	now := time.Now().UTC().Truncate(time.Second)
	return &User{
		ID:           uuid.New().String(),
		UserName:     userName,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
