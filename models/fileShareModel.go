package models

import (
	"time"

	"github.com/google/uuid"
)

// FileShare grants a named user access to someone else's file.
// (FileID, UserID) is the identity; re-sharing upserts the permission.
type FileShare struct {
	FileID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"file_id"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Permission string    `gorm:"not null" json:"permission"` // "editor" or "viewer"
	CreatedAt  time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
