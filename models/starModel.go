package models

import (
	"time"

	"github.com/google/uuid"
)

// Star marks a file or folder as a favorite. Existence is the whole
// state; toggling deletes or inserts the row.
type Star struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ResourceID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"resource_id"`
	ResourceType string    `gorm:"not null" json:"resource_type"` // "file" or "folder"
	CreatedAt    time.Time `json:"created_at"`
}
