package models

import "time"

// UserTag is a custom tag a user added to their vocabulary (PostgreSQL)
type UserTag struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    string    `json:"-" gorm:"size:128;index;uniqueIndex:idx_user_tag"`
	Tag       string    `json:"tag" gorm:"size:50;uniqueIndex:idx_user_tag"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTagRequest defines the request body for adding a custom tag
type CreateTagRequest struct {
	Tag string `json:"tag" validate:"required,max=50"`
}

// PredefinedTags are offered to every user
var PredefinedTags = []string{
	"Travel",
	"Food",
	"Family",
	"Friends",
	"Work",
	"Events",
	"Hobbies",
	"Fitness",
	"Nature",
	"Celebration",
}
