package jobs

import (
	"context"
	"log"
	"time"

	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
	"github.com/farhan/clouddrive-backend/versions"
)

// trashRetention is how long a trashed file survives before the reaper
// hard-deletes it, blobs and version history included.
const trashRetention = 30 * 24 * time.Hour

func StartTrashReaper() {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for range ticker.C {
			reapExpiredTrash()
		}
	}()
}

func reapExpiredTrash() {
	cutoff := time.Now().Add(-trashRetention)

	var expired []models.File
	err := initializers.DB.
		Where("is_deleted = ? AND updated_at < ?", true, cutoff).
		Find(&expired).Error
	if err != nil {
		log.Printf("trash reaper: finding expired files: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	mgr := versions.NewManager(initializers.DB, initializers.Blobs)
	if err := mgr.Purge(context.Background(), expired); err != nil {
		log.Printf("trash reaper: purging %d files: %v", len(expired), err)
		return
	}
	log.Printf("trash reaper: purged %d files", len(expired))
}
