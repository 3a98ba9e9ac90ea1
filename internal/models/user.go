package models

import "time"

// User is the profile of an authenticated account (PostgreSQL).
// ID is the Firebase UID.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;size:128"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email" gorm:"index"`
	Avatar      string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the subset of a user shown next to posts
type UserCompact struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, DisplayName: u.DisplayName, Avatar: u.Avatar}
}

// SessionRequest defines the request body for exchanging a Firebase ID token
type SessionRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}
