package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
)

// ToggleStar flips the starred state of a file or folder.
func ToggleStar(c *gin.Context) {
	userID := currentUserID(c)
	var body struct {
		ResourceID   uuid.UUID `json:"resourceId" binding:"required"`
		ResourceType string    `json:"resourceType" binding:"required,oneof=file folder"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var existing models.Star
	err := initializers.DB.First(&existing, "user_id = ? AND resource_id = ?", userID, body.ResourceID).Error
	switch {
	case err == nil:
		if err := initializers.DB.
			Where("user_id = ? AND resource_id = ?", userID, body.ResourceID).
			Delete(&models.Star{}).Error; err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"starred": false})
	case errors.Is(err, gorm.ErrRecordNotFound):
		star := models.Star{UserID: userID, ResourceID: body.ResourceID, ResourceType: body.ResourceType}
		if err := initializers.DB.Create(&star).Error; err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"starred": true})
	default:
		respondError(c, apperr.Infrastructure(err))
	}
}

// ListStarred returns the caller's starred files and folders, skipping
// anything sitting in trash.
func ListStarred(c *gin.Context) {
	userID := currentUserID(c)

	var stars []models.Star
	if err := initializers.DB.Where("user_id = ?", userID).Find(&stars).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	var fileIDs, folderIDs []uuid.UUID
	for _, s := range stars {
		if s.ResourceType == "file" {
			fileIDs = append(fileIDs, s.ResourceID)
		} else {
			folderIDs = append(folderIDs, s.ResourceID)
		}
	}

	files := []models.File{}
	if len(fileIDs) > 0 {
		if err := initializers.DB.Where("id IN ? AND is_deleted = ?", fileIDs, false).Find(&files).Error; err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
	}
	folders := []models.Folder{}
	if len(folderIDs) > 0 {
		if err := initializers.DB.Where("id IN ? AND is_deleted = ?", folderIDs, false).Find(&folders).Error; err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"files": decorate(c, userID, files), "folders": folders})
}
