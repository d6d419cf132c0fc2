package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileVersion is an append-only archive of a File's prior content.
// Rows are written before the live record is overwritten and never
// updated afterwards.
type FileVersion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileID     uuid.UUID `gorm:"type:uuid;not null;index" json:"file_id"`
	StorageKey string    `gorm:"not null" json:"-"`
	SizeBytes  int64     `json:"size_bytes"`
	MimeType   string    `json:"mime_type"`
	Version    int       `gorm:"not null" json:"version"`
	UserID     uuid.UUID `gorm:"type:uuid" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (v *FileVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
