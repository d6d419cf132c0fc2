package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhan/clouddrive-backend/access"
	"github.com/farhan/clouddrive-backend/activity"
	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
	"github.com/farhan/clouddrive-backend/storage"
	"github.com/farhan/clouddrive-backend/versions"
)

const storageLimitBytes = int64(1 << 30) // 1 GiB per account

func versionManager() *versions.Manager {
	return versions.NewManager(initializers.DB, initializers.Blobs)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// fileView is a File plus the per-caller decorations the UI needs.
type fileView struct {
	models.File
	IsStarred    bool    `json:"is_starred"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}

// decorate attaches star state and, for images, a short-lived inline
// thumbnail URL. Thumbnail failures degrade to plain entries.
func decorate(c *gin.Context, userID uuid.UUID, files []models.File) []fileView {
	views := make([]fileView, 0, len(files))
	if len(files) == 0 {
		return views
	}

	ids := make([]uuid.UUID, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	starred := map[uuid.UUID]bool{}
	var stars []models.Star
	if err := initializers.DB.
		Where("user_id = ? AND resource_type = ? AND resource_id IN ?", userID, "file", ids).
		Find(&stars).Error; err == nil {
		for _, s := range stars {
			starred[s.ResourceID] = true
		}
	}

	for _, f := range files {
		v := fileView{File: f, IsStarred: starred[f.ID]}
		if strings.HasPrefix(f.MimeType, "image/") {
			if url, err := initializers.Blobs.PresignDownload(c.Request.Context(), f.StorageKey, f.Name, true, storage.DownloadTTL); err == nil {
				v.ThumbnailURL = &url
			}
		}
		views = append(views, v)
	}
	return views
}

func applySort(q *gorm.DB, sortBy, order string) *gorm.DB {
	col := "created_at"
	switch sortBy {
	case "name", "size_bytes", "created_at":
		col = sortBy
	}
	dir := "desc"
	if order == "asc" {
		dir = "asc"
	}
	return q.Order(col + " " + dir)
}

// UploadInit reserves the upload: it runs the versioning state machine
// and hands back a presigned PUT URL. The client uploads bytes directly
// to the blob store.
func UploadInit(c *gin.Context) {
	userID := currentUserID(c)
	var body struct {
		Name      string     `json:"name" binding:"required"`
		SizeBytes int64      `json:"sizeBytes"`
		MimeType  string     `json:"mimeType"`
		FolderID  *uuid.UUID `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	init, err := versionManager().ApplyUpload(body.Name, body.SizeBytes, body.MimeType, body.FolderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	uploadURL, err := initializers.Blobs.PresignUpload(c.Request.Context(), init.StorageKey)
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	if init.NewVersion {
		activity.Record(initializers.DB, userID, "uploaded new version of", "file", body.Name)
	} else {
		activity.Record(initializers.DB, userID, "uploaded", "file", body.Name)
	}
	c.JSON(http.StatusOK, gin.H{
		"fileId":     init.FileID,
		"uploadUrl":  uploadURL,
		"storageKey": init.StorageKey,
	})
}

// ListFiles lists the caller's live files in a folder (root when no
// folderId), with optional name search, type filter, and sorting.
func ListFiles(c *gin.Context) {
	userID := currentUserID(c)

	q := initializers.DB.Where("owner_id = ? AND is_deleted = ?", userID, false)
	if search := c.Query("q"); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	} else if folderID := c.Query("folderId"); folderID != "" {
		q = q.Where("folder_id = ?", folderID)
	} else {
		q = q.Where("folder_id IS NULL")
	}
	if t := c.Query("type"); t != "" && t != "all" {
		q = q.Where("mime_type ILIKE ?", "%"+t+"%")
	}

	var files []models.File
	if err := applySort(q, c.Query("sortBy"), c.Query("order")).Find(&files).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, decorate(c, userID, files))
}

func SearchFiles(c *gin.Context) {
	userID := currentUserID(c)
	search := c.Query("q")
	if search == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query required"})
		return
	}

	var files []models.File
	err := initializers.DB.
		Where("owner_id = ? AND is_deleted = ? AND name ILIKE ?", userID, false, "%"+search+"%").
		Find(&files).Error
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, decorate(c, userID, files))
}

// SharedWithMe lists live files other users granted the caller.
func SharedWithMe(c *gin.Context) {
	userID := currentUserID(c)

	var shares []models.FileShare
	if err := initializers.DB.Where("user_id = ?", userID).Find(&shares).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	if len(shares) == 0 {
		c.JSON(http.StatusOK, []fileView{})
		return
	}
	fileIDs := make([]uuid.UUID, 0, len(shares))
	for _, s := range shares {
		fileIDs = append(fileIDs, s.FileID)
	}

	q := initializers.DB.Preload("Owner").Where("id IN ? AND is_deleted = ?", fileIDs, false)
	if search := c.Query("q"); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	if t := c.Query("type"); t != "" && t != "all" {
		q = q.Where("mime_type ILIKE ?", "%"+t+"%")
	}

	var files []models.File
	if err := applySort(q, c.Query("sortBy"), c.Query("order")).Find(&files).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, decorate(c, userID, files))
}

func RecentFiles(c *gin.Context) {
	userID := currentUserID(c)
	var files []models.File
	err := initializers.DB.
		Where("owner_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").Limit(20).
		Find(&files).Error
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, decorate(c, userID, files))
}

func StorageUsage(c *gin.Context) {
	var used int64
	err := initializers.DB.Model(&models.File{}).
		Where("owner_id = ?", currentUserID(c)).
		Select("COALESCE(SUM(size_bytes), 0)").Scan(&used).Error
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	pct := float64(used) / float64(storageLimitBytes) * 100
	if pct > 100 {
		pct = 100
	}
	c.JSON(http.StatusOK, gin.H{"used": used, "limit": storageLimitBytes, "percentage": pct})
}

// DownloadFile issues a short-lived signed URL for a file the caller can
// read. `preview=true` serves inline instead of as an attachment.
func DownloadFile(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "id")
	if !ok {
		return
	}

	role, err := access.Resolve(initializers.DB, fileID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == access.None {
		respondError(c, apperr.Forbidden("Access denied"))
		return
	}

	var file models.File
	err = initializers.DB.First(&file, "id = ? AND is_deleted = ?", fileID, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperr.NotFound("File not found"))
		return
	}
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	preview := c.Query("preview") == "true"
	url, err := initializers.Blobs.PresignDownload(c.Request.Context(), file.StorageKey, file.Name, preview, time.Minute)
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url, "mimeType": file.MimeType, "role": role.String()})
}

// UpdateFile renames and/or moves a file. Editors and owners only.
func UpdateFile(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Name     *string    `json:"name"`
		FolderID *uuid.UUID `json:"folderId"`
		Move     bool       `json:"move"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	role, err := access.Resolve(initializers.DB, fileID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !role.AtLeast(access.Editor) {
		respondError(c, apperr.Forbidden("Permission denied"))
		return
	}

	updates := map[string]interface{}{}
	action := ""
	if body.Name != nil && *body.Name != "" {
		updates["name"] = *body.Name
		action = "renamed"
	}
	if body.Move {
		updates["folder_id"] = body.FolderID
		if action == "" {
			action = "moved"
		} else {
			action = "updated"
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := initializers.DB.Model(&models.File{}).Where("id = ?", fileID).Updates(updates).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	var file models.File
	initializers.DB.First(&file, "id = ?", fileID)
	activity.Record(initializers.DB, userID, action, "file", file.Name)
	c.JSON(http.StatusOK, file)
}

// SoftDeleteFile moves a file to trash.
func SoftDeleteFile(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "id")
	if !ok {
		return
	}

	role, err := access.Resolve(initializers.DB, fileID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !role.AtLeast(access.Editor) {
		respondError(c, apperr.Forbidden("Permission denied"))
		return
	}

	var file models.File
	initializers.DB.Select("name").First(&file, "id = ?", fileID)
	if err := initializers.DB.Model(&models.File{}).Where("id = ?", fileID).Update("is_deleted", true).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	activity.Record(initializers.DB, userID, "moved to trash", "file", file.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Moved to trash"})
}

// RestoreFromTrash brings a trashed file back. Owner-direct: trash is
// scoped to the owner, so shares play no part here.
func RestoreFromTrash(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var file models.File
	err := initializers.DB.First(&file, "id = ? AND owner_id = ?", fileID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperr.NotFound("File not found"))
		return
	}
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	if err := initializers.DB.Model(&file).Update("is_deleted", false).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	activity.Record(initializers.DB, userID, "restored", "file", file.Name)
	c.JSON(http.StatusOK, gin.H{"message": "File restored"})
}

func ListTrash(c *gin.Context) {
	var files []models.File
	err := initializers.DB.
		Where("owner_id = ? AND is_deleted = ?", currentUserID(c), true).
		Order("created_at desc").
		Find(&files).Error
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, files)
}

// PurgeFile permanently deletes one trashed file, blobs included.
func PurgeFile(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var file models.File
	err := initializers.DB.First(&file, "id = ? AND owner_id = ?", fileID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperr.NotFound("File not found"))
		return
	}
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	if err := versionManager().Purge(c.Request.Context(), []models.File{file}); err != nil {
		respondError(c, err)
		return
	}
	activity.Record(initializers.DB, userID, "permanently deleted", "file", file.Name)
	c.JSON(http.StatusOK, gin.H{"message": "File permanently deleted"})
}

// EmptyTrash purges every trashed file the caller owns.
func EmptyTrash(c *gin.Context) {
	userID := currentUserID(c)

	var files []models.File
	err := initializers.DB.Where("owner_id = ? AND is_deleted = ?", userID, true).Find(&files).Error
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Trash is already empty"})
		return
	}

	if err := versionManager().Purge(c.Request.Context(), files); err != nil {
		respondError(c, err)
		return
	}
	activity.Record(initializers.DB, userID, "emptied trash", "folder", "Trash Bin")
	c.JSON(http.StatusOK, gin.H{"message": "Trash emptied successfully"})
}

// ListVersions returns a file's archived versions, newest first.
func ListVersions(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "id")
	if !ok {
		return
	}

	role, err := access.Resolve(initializers.DB, fileID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == access.None {
		respondError(c, apperr.Forbidden("Access denied"))
		return
	}

	list, err := versionManager().ListVersions(fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// RestoreVersion swaps an archived version back in as current content.
func RestoreVersion(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "id")
	if !ok {
		return
	}
	versionID, ok := parseID(c, "versionId")
	if !ok {
		return
	}

	role, err := access.Resolve(initializers.DB, fileID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !role.AtLeast(access.Editor) {
		respondError(c, apperr.Forbidden("Access denied"))
		return
	}

	var old models.FileVersion
	initializers.DB.Select("version").First(&old, "id = ?", versionID)
	if err := versionManager().RestoreVersion(fileID, versionID, userID); err != nil {
		respondError(c, err)
		return
	}

	var file models.File
	initializers.DB.Select("name").First(&file, "id = ?", fileID)
	activity.Record(initializers.DB, userID, fmt.Sprintf("restored version %d of", old.Version), "file", file.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Version restored successfully"})
}
