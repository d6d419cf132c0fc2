// Package activity appends to the best-effort action log. A failed write
// is logged and dropped; it must never fail the action that triggered it.
package activity

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhan/clouddrive-backend/models"
)

func Record(db *gorm.DB, userID uuid.UUID, action, resourceType, resourceName string) {
	entry := models.Activity{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("activity log error: %v", err)
	}
}
