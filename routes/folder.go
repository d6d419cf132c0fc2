package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/auth/middleware"
	"github.com/farhan/clouddrive-backend/handlers"
)

func RegisterFolderRoutes(r *gin.Engine, cfg *auth.Config) {
	group := r.Group("/api/folders")
	group.Use(middleware.AuthRequired(cfg))

	group.POST("/", handlers.CreateFolder)
	group.GET("/", handlers.ListFolders)
	group.PATCH("/:id", handlers.UpdateFolder)
	group.DELETE("/:id", handlers.DeleteFolder)
	group.GET("/:id/path", handlers.FolderPath)
}
