package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhan/clouddrive-backend/activity"
	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
)

func CreateFolder(c *gin.Context) {
	userID := currentUserID(c)
	var body struct {
		Name     string     `json:"name" binding:"required"`
		ParentID *uuid.UUID `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	folder := models.Folder{Name: body.Name, ParentID: body.ParentID, OwnerID: userID}
	if err := initializers.DB.Create(&folder).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	activity.Record(initializers.DB, userID, "created", "folder", folder.Name)
	c.JSON(http.StatusOK, folder)
}

func ListFolders(c *gin.Context) {
	q := initializers.DB.Where("owner_id = ? AND is_deleted = ?", currentUserID(c), false)
	if c.Query("all") != "true" {
		if parentID := c.Query("parentId"); parentID != "" {
			q = q.Where("parent_id = ?", parentID)
		} else {
			q = q.Where("parent_id IS NULL")
		}
	}

	var folders []models.Folder
	if err := q.Find(&folders).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, folders)
}

// wouldCycle reports whether re-parenting folderID under newParent keeps
// the tree acyclic. It walks the ancestor chain from newParent to a
// root; meeting folderID on the way means the move closes a loop.
func wouldCycle(db *gorm.DB, ownerID, folderID uuid.UUID, newParent *uuid.UUID) (bool, error) {
	current := newParent
	for current != nil {
		if *current == folderID {
			return true, nil
		}
		var parent models.Folder
		err := db.Select("parent_id").First(&parent, "id = ? AND owner_id = ?", *current, ownerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		current = parent.ParentID
	}
	return false, nil
}

// UpdateFolder renames and/or moves a folder. A move that would make the
// folder its own ancestor is rejected.
func UpdateFolder(c *gin.Context) {
	userID := currentUserID(c)
	folderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Name     *string    `json:"name"`
		ParentID *uuid.UUID `json:"parentId"`
		Move     bool       `json:"move"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var folder models.Folder
	err := initializers.DB.First(&folder, "id = ? AND owner_id = ?", folderID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperr.NotFound("Folder not found"))
		return
	}
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil && *body.Name != "" {
		updates["name"] = *body.Name
	}
	if body.Move {
		cycle, err := wouldCycle(initializers.DB, userID, folderID, body.ParentID)
		if err != nil {
			respondError(c, apperr.Infrastructure(err))
			return
		}
		if cycle {
			respondError(c, apperr.Conflict("Cannot move a folder into itself"))
			return
		}
		updates["parent_id"] = body.ParentID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := initializers.DB.Model(&folder).Updates(updates).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Folder updated"})
}

// DeleteFolder soft-deletes the folder's files, then removes the folder.
func DeleteFolder(c *gin.Context) {
	userID := currentUserID(c)
	folderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var folder models.Folder
	err := initializers.DB.First(&folder, "id = ? AND owner_id = ?", folderID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperr.NotFound("Folder not found"))
		return
	}
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	err = initializers.DB.Model(&models.File{}).
		Where("folder_id = ? AND owner_id = ?", folderID, userID).
		Update("is_deleted", true).Error
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	if err := initializers.DB.Delete(&folder).Error; err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}

	activity.Record(initializers.DB, userID, "deleted", "folder", folder.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted"})
}

// FolderPath returns the breadcrumb chain from root to the folder.
func FolderPath(c *gin.Context) {
	userID := currentUserID(c)
	folderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var path []models.Folder
	current := &folderID
	for current != nil {
		var folder models.Folder
		err := initializers.DB.First(&folder, "id = ? AND owner_id = ?", *current, userID).Error
		if err != nil {
			break
		}
		path = append([]models.Folder{folder}, path...)
		current = folder.ParentID
	}
	c.JSON(http.StatusOK, path)
}
