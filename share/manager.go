// Package share manages the two capability channels on a file: named
// per-user grants and the anonymous public link.
package share

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

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

// requireOwned loads fileID and checks callerID is the owner id itself.
// Shares never grant sharing rights, so resolving to "owner" through any
// other path is not enough here.
func (m *Manager) requireOwned(fileID, callerID uuid.UUID) (*models.File, error) {
	var file models.File
	err := m.DB.First(&file, "id = ?", fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}
	if file.OwnerID != callerID {
		return nil, apperr.Forbidden("only the owner can manage sharing")
	}
	return &file, nil
}

// Invite grants granteeEmail access to fileID. Re-inviting the same user
// only changes the permission.
func (m *Manager) Invite(fileID, ownerID uuid.UUID, granteeEmail, permission string) error {
	if permission != "editor" && permission != "viewer" {
		return apperr.BadCredential("permission must be editor or viewer")
	}
	if _, err := m.requireOwned(fileID, ownerID); err != nil {
		return err
	}

	var grantee models.User
	err := m.DB.First(&grantee, "email = ?", granteeEmail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return apperr.Infrastructure(err)
	}

	row := models.FileShare{FileID: fileID, UserID: grantee.ID, Permission: permission}
	err = m.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission"}),
	}).Create(&row).Error
	if err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}

// Revoke removes granteeID's grant on fileID. Revoking a grant that does
// not exist is a no-op.
func (m *Manager) Revoke(fileID, ownerID, granteeID uuid.UUID) error {
	if _, err := m.requireOwned(fileID, ownerID); err != nil {
		return err
	}
	err := m.DB.Where("file_id = ? AND user_id = ?", fileID, granteeID).Delete(&models.FileShare{}).Error
	if err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}

// Grantee is one named user a file is shared with.
type Grantee struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Permission string    `json:"permission"`
}

// Status describes a file's share state. The link password hash is never
// included, only whether one is set.
type Status struct {
	PublicToken *string    `json:"publicToken"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	HasPassword bool       `json:"hasPassword"`
	Users       []Grantee  `json:"users"`
}

func (m *Manager) ShareStatus(fileID uuid.UUID) (*Status, error) {
	var file models.File
	err := m.DB.First(&file, "id = ?", fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}

	var shares []models.FileShare
	if err := m.DB.Preload("User").Where("file_id = ?", fileID).Find(&shares).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}

	status := &Status{
		PublicToken: file.PublicToken,
		ExpiresAt:   file.LinkExpiresAt,
		HasPassword: file.LinkPassword != nil,
		Users:       make([]Grantee, 0, len(shares)),
	}
	for _, s := range shares {
		status.Users = append(status.Users, Grantee{
			ID:         s.UserID,
			Email:      s.User.Email,
			FullName:   s.User.FullName,
			Permission: s.Permission,
		})
	}
	return status, nil
}

// LinkState is what the owner gets back after a link mutation.
type LinkState struct {
	PublicToken string     `json:"publicToken"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	HasPassword bool       `json:"hasPassword"`
}

// UpsertLink enables or updates fileID's public link. A token is minted
// only when none exists, so settings can change without rotating the
// URL. Expiry is always overwritten with the supplied value (nil clears
// it). A blank password leaves any existing password hash unchanged;
// there is no way to drop just the password short of disabling the link.
func (m *Manager) UpsertLink(fileID, ownerID uuid.UUID, password string, expiresAt *time.Time) (*LinkState, error) {
	file, err := m.requireOwned(fileID, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"link_expires_at": expiresAt,
	}
	token := file.PublicToken
	if token == nil {
		minted := shortuuid.New()
		token = &minted
		updates["public_token"] = minted
	}
	hasPassword := file.LinkPassword != nil
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Infrastructure(err)
		}
		updates["link_password"] = string(hash)
		hasPassword = true
	}

	res := m.DB.Model(&models.File{}).
		Where("id = ? AND owner_id = ?", fileID, ownerID).
		Updates(updates)
	if res.Error != nil {
		return nil, apperr.Infrastructure(res.Error)
	}
	return &LinkState{PublicToken: *token, ExpiresAt: expiresAt, HasPassword: hasPassword}, nil
}

// DisableLink revokes the public link. Token, password hash, and expiry
// are cleared in one UPDATE so the old token can never resolve with
// stale protection state left behind. Re-enabling mints a new token.
func (m *Manager) DisableLink(fileID, ownerID uuid.UUID) error {
	if _, err := m.requireOwned(fileID, ownerID); err != nil {
		return err
	}
	err := m.DB.Model(&models.File{}).
		Where("id = ? AND owner_id = ?", fileID, ownerID).
		Updates(map[string]interface{}{
			"public_token":    nil,
			"link_password":   nil,
			"link_expires_at": nil,
		}).Error
	if err != nil {
		return apperr.Infrastructure(err)
	}
	return nil
}

// PublicFile is what an anonymous caller sees after a successful link
// resolution.
type PublicFile struct {
	Name        string `json:"name"`
	SizeBytes   int64  `json:"size"`
	MimeType    string `json:"mimeType"`
	DownloadURL string `json:"downloadUrl"`
}

// ResolvePublicAccess checks a bearer token (and password, when the link
// is protected) and issues a short-lived download URL. Trashed files are
// unreachable through their link even while the token survives the row.
func (m *Manager) ResolvePublicAccess(ctx context.Context, token, password string) (*PublicFile, error) {
	var file models.File
	err := m.DB.First(&file, "public_token = ? AND is_deleted = ?", token, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.LinkInvalid("link invalid")
	}
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}

	if file.LinkExpiresAt != nil && file.LinkExpiresAt.Before(time.Now()) {
		return nil, apperr.LinkExpired("link has expired")
	}

	if file.LinkPassword != nil {
		if password == "" {
			return nil, apperr.PasswordRequired("password required")
		}
		if bcrypt.CompareHashAndPassword([]byte(*file.LinkPassword), []byte(password)) != nil {
			return nil, apperr.PasswordIncorrect("incorrect password")
		}
	}

	url, err := m.Blobs.PresignDownload(ctx, file.StorageKey, file.Name, false, storage.DownloadTTL)
	if err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return &PublicFile{
		Name:        file.Name,
		SizeBytes:   file.SizeBytes,
		MimeType:    file.MimeType,
		DownloadURL: url,
	}, nil
}
