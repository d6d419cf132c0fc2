package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is the live record of an uploaded object. Exactly one storage key
// is current at any time; prior keys live in FileVersion rows.
type File struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	FolderID   *uuid.UUID `gorm:"type:uuid;index" json:"folder_id"`
	Name       string     `gorm:"not null" json:"name"`
	SizeBytes  int64      `json:"size_bytes"`
	MimeType   string     `json:"mime_type"`
	StorageKey string     `gorm:"not null" json:"-"`
	Version    int        `gorm:"default:1" json:"version"`
	IsDeleted  bool       `gorm:"default:false;index" json:"is_deleted"`

	// Public-link state. A nil token means the link is disabled.
	PublicToken   *string    `gorm:"uniqueIndex" json:"-"`
	LinkPassword  *string    `json:"-"`
	LinkExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
