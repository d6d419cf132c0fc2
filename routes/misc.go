package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/auth/middleware"
	"github.com/farhan/clouddrive-backend/handlers"
)

func RegisterStarRoutes(r *gin.Engine, cfg *auth.Config) {
	group := r.Group("/api/stars")
	group.Use(middleware.AuthRequired(cfg))

	group.POST("/toggle", handlers.ToggleStar)
	group.GET("/", handlers.ListStarred)
}

func RegisterActivityRoutes(r *gin.Engine, cfg *auth.Config) {
	group := r.Group("/api/activities")
	group.Use(middleware.AuthRequired(cfg))

	group.GET("/", handlers.RecentActivity)
}

func RegisterBatchRoutes(r *gin.Engine, cfg *auth.Config) {
	group := r.Group("/api/batch")
	group.Use(middleware.AuthRequired(cfg))

	group.POST("/delete", handlers.BatchDelete)
	group.POST("/move", handlers.BatchMove)
}
