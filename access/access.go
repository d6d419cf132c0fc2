// Package access computes a caller's permission level over a file.
package access

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/models"
)

// Level is a closed, totally ordered permission level:
// Owner > Editor > Viewer > None.
type Level int

const (
	None Level = iota
	Viewer
	Editor
	Owner
)

func (l Level) String() string {
	switch l {
	case Owner:
		return "owner"
	case Editor:
		return "editor"
	case Viewer:
		return "viewer"
	default:
		return "none"
	}
}

// AtLeast reports whether l grants at least the rights of min.
func (l Level) AtLeast(min Level) bool { return l >= min }

// FromPermission maps a stored share permission to a Level. Unknown
// values resolve to None.
func FromPermission(p string) Level {
	switch p {
	case "editor":
		return Editor
	case "viewer":
		return Viewer
	default:
		return None
	}
}

// Resolve returns callerID's level over fileID. First match wins:
// owning the file beats any share row. A missing file resolves to None,
// never to an error; only repository faults are surfaced.
func Resolve(db *gorm.DB, fileID, callerID uuid.UUID) (Level, error) {
	var file models.File
	err := db.Select("owner_id").First(&file, "id = ?", fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return None, nil
	}
	if err != nil {
		return None, apperr.Infrastructure(err)
	}
	if file.OwnerID == callerID {
		return Owner, nil
	}

	var share models.FileShare
	err = db.First(&share, "file_id = ? AND user_id = ?", fileID, callerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return None, nil
	}
	if err != nil {
		return None, apperr.Infrastructure(err)
	}
	return FromPermission(share.Permission), nil
}
