// Package versions governs how file content changes: every overwrite of
// a live file archives the current state as a FileVersion row before the
// swap, so history is append-only and version numbers never repeat.
package versions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/models"
	"github.com/farhan/clouddrive-backend/storage"
)

type Manager struct {
	DB    *gorm.DB
	Blobs storage.BlobStore
}

func NewManager(db *gorm.DB, blobs storage.BlobStore) *Manager {
	return &Manager{DB: db, Blobs: blobs}
}

// UploadInit is the outcome of ApplyUpload: where the client should PUT
// the bytes and which file record the upload belongs to.
type UploadInit struct {
	FileID     uuid.UUID
	StorageKey string
	NewVersion bool
}

// NewStorageKey builds an owner-namespaced, collision-resistant object
// key. The only load-bearing property is uniqueness.
func NewStorageKey(ownerID uuid.UUID, name string) string {
	return fmt.Sprintf("users/%s/%s-%s", ownerID, uuid.New(), name)
}

// ApplyUpload runs the upload state machine for (ownerID, folderID, name).
// No live file with that triple: a fresh File at version 1, nothing
// archived. A live file exists: archive its current state, then swap in
// the new key and bump the counter. Soft-deleted rows never collide.
//
// The swap is guarded by a compare-and-swap on the version counter, so
// two concurrent uploads racing on the same file cannot both win; the
// loser gets Conflict instead of silently orphaning a blob.
func (m *Manager) ApplyUpload(name string, sizeBytes int64, mimeType string, folderID *uuid.UUID, ownerID uuid.UUID) (*UploadInit, error) {
	query := m.DB.Where("owner_id = ? AND name = ? AND is_deleted = ?", ownerID, name, false)
	if folderID != nil {
		query = query.Where("folder_id = ?", *folderID)
	} else {
		query = query.Where("folder_id IS NULL")
	}

	var existing models.File
	err := query.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		file := models.File{
			Name:       name,
			SizeBytes:  sizeBytes,
			MimeType:   mimeType,
			StorageKey: NewStorageKey(ownerID, name),
			OwnerID:    ownerID,
			FolderID:   folderID,
			Version:    1,
		}
		if err := m.DB.Create(&file).Error; err != nil {
			return nil, apperr.Infrastructure(err)
		}
		return &UploadInit{FileID: file.ID, StorageKey: file.StorageKey}, nil
	}
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}

	newKey := NewStorageKey(ownerID, name)
	err = m.DB.Transaction(func(tx *gorm.DB) error {
		archive := models.FileVersion{
			FileID:     existing.ID,
			StorageKey: existing.StorageKey,
			SizeBytes:  existing.SizeBytes,
			MimeType:   existing.MimeType,
			Version:    existing.Version,
			UserID:     ownerID,
		}
		if err := tx.Create(&archive).Error; err != nil {
			return apperr.Infrastructure(err)
		}

		res := tx.Model(&models.File{}).
			Where("id = ? AND version = ?", existing.ID, existing.Version).
			Updates(map[string]interface{}{
				"storage_key": newKey,
				"size_bytes":  sizeBytes,
				"mime_type":   mimeType,
				"version":     existing.Version + 1,
			})
		if res.Error != nil {
			return apperr.Infrastructure(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("file changed concurrently, retry upload")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &UploadInit{FileID: existing.ID, StorageKey: newKey, NewVersion: true}, nil
}

// ListVersions returns fileID's archived versions, most recent first.
func (m *Manager) ListVersions(fileID uuid.UUID) ([]models.FileVersion, error) {
	var list []models.FileVersion
	if err := m.DB.Where("file_id = ?", fileID).Order("version desc").Find(&list).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return list, nil
}

// RestoreVersion makes versionID's content current again. The present
// state is archived first so the restore itself is undoable; the counter
// only ever moves forward.
func (m *Manager) RestoreVersion(fileID, versionID, actorID uuid.UUID) error {
	var old models.FileVersion
	err := m.DB.First(&old, "id = ? AND file_id = ?", versionID, fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("version not found")
	}
	if err != nil {
		return apperr.Infrastructure(err)
	}

	var current models.File
	err = m.DB.First(&current, "id = ?", fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("file not found")
	}
	if err != nil {
		return apperr.Infrastructure(err)
	}

	return m.DB.Transaction(func(tx *gorm.DB) error {
		archive := models.FileVersion{
			FileID:     current.ID,
			StorageKey: current.StorageKey,
			SizeBytes:  current.SizeBytes,
			MimeType:   current.MimeType,
			Version:    current.Version,
			UserID:     actorID,
		}
		if err := tx.Create(&archive).Error; err != nil {
			return apperr.Infrastructure(err)
		}

		res := tx.Model(&models.File{}).
			Where("id = ? AND version = ?", current.ID, current.Version).
			Updates(map[string]interface{}{
				"storage_key": old.StorageKey,
				"size_bytes":  old.SizeBytes,
				"mime_type":   old.MimeType,
				"version":     current.Version + 1,
			})
		if res.Error != nil {
			return apperr.Infrastructure(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("file changed concurrently, retry restore")
		}
		return nil
	})
}

// Purge hard-deletes files: every blob the file ever referenced (current
// plus archived versions), then the version rows and the file rows.
func (m *Manager) Purge(ctx context.Context, files []models.File) error {
	if len(files) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(files))
	keys := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
		keys = append(keys, f.StorageKey)
	}

	var archived []models.FileVersion
	if err := m.DB.Where("file_id IN ?", ids).Find(&archived).Error; err != nil {
		return apperr.Infrastructure(err)
	}
	for _, v := range archived {
		keys = append(keys, v.StorageKey)
	}

	if err := m.Blobs.Delete(ctx, keys); err != nil {
		return apperr.Infrastructure(err)
	}
	if err := m.DB.Where("file_id IN ?", ids).Delete(&models.FileVersion{}).Error; err != nil {
		return apperr.Infrastructure(err)
	}
	if err := m.DB.Where("id IN ?", ids).Delete(&models.File{}).Error; err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}
