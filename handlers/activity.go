package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
)

// RecentActivity returns the caller's latest 50 logged actions.
func RecentActivity(c *gin.Context) {
	var activities []models.Activity
	err := initializers.DB.
		Where("user_id = ?", currentUserID(c)).
		Order("created_at desc").Limit(50).
		Find(&activities).Error
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.JSON(http.StatusOK, activities)
}
