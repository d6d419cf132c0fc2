package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farhan/clouddrive-backend/activity"
	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
)

type batchSelection struct {
	FileIDs   []uuid.UUID `json:"fileIds"`
	FolderIDs []uuid.UUID `json:"folderIds"`
}

// BatchDelete soft-deletes a selection of files and folders the caller
// owns.
func BatchDelete(c *gin.Context) {
	userID := currentUserID(c)
	var body batchSelection
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if len(body.FileIDs) > 0 {
		err := initializers.DB.Model(&models.File{}).
			Where("id IN ? AND owner_id = ?", body.FileIDs, userID).
			Update("is_deleted", true).Error
		if err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
	}
	if len(body.FolderIDs) > 0 {
		err := initializers.DB.Model(&models.Folder{}).
			Where("id IN ? AND owner_id = ?", body.FolderIDs, userID).
			Update("is_deleted", true).Error
		if err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
	}

	total := len(body.FileIDs) + len(body.FolderIDs)
	activity.Record(initializers.DB, userID, "bulk deleted", "items", fmt.Sprintf("%d items", total))
	c.JSON(http.StatusOK, gin.H{"message": "Items deleted"})
}

// BatchMove re-parents a selection into targetFolderId (null → root).
// Folder moves that would create a cycle are refused.
func BatchMove(c *gin.Context) {
	userID := currentUserID(c)
	var body struct {
		batchSelection
		TargetFolderID *uuid.UUID `json:"targetFolderId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if len(body.FileIDs) > 0 {
		err := initializers.DB.Model(&models.File{}).
			Where("id IN ? AND owner_id = ?", body.FileIDs, userID).
			Update("folder_id", body.TargetFolderID).Error
		if err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
	}
	for _, folderID := range body.FolderIDs {
		cycle, err := wouldCycle(initializers.DB, userID, folderID, body.TargetFolderID)
		if err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
		if cycle {
			respondError(c, apperr.Conflict("Cannot move a folder into itself"))
			return
		}
		err = initializers.DB.Model(&models.Folder{}).
			Where("id = ? AND owner_id = ?", folderID, userID).
			Update("parent_id", body.TargetFolderID).Error
		if err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
	}

	total := len(body.FileIDs) + len(body.FolderIDs)
	activity.Record(initializers.DB, userID, "bulk moved", "items", fmt.Sprintf("%d items", total))
	c.JSON(http.StatusOK, gin.H{"message": "Items moved"})
}
