package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/auth/middleware"
	"github.com/farhan/clouddrive-backend/handlers"
)

func RegisterFileRoutes(r *gin.Engine, cfg *auth.Config) {
	group := r.Group("/api/files")
	group.Use(middleware.AuthRequired(cfg))

	group.POST("/init", handlers.UploadInit)
	group.GET("/", handlers.ListFiles)
	group.GET("/storage", handlers.StorageUsage)
	group.GET("/search", handlers.SearchFiles)
	group.GET("/shared", handlers.SharedWithMe)
	group.GET("/recent", handlers.RecentFiles)

	group.GET("/trash/all", handlers.ListTrash)
	group.DELETE("/trash/empty", handlers.EmptyTrash)
	group.DELETE("/trash/:id", handlers.PurgeFile)
	group.POST("/restore/:id", handlers.RestoreFromTrash)

	group.GET("/:id", handlers.DownloadFile)
	group.PATCH("/:id", handlers.UpdateFile)
	group.DELETE("/:id", handlers.SoftDeleteFile)
	group.GET("/:id/versions", handlers.ListVersions)
	group.POST("/:id/versions/:versionId/restore", handlers.RestoreVersion)
}
