package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/auth/middleware"
	"github.com/farhan/clouddrive-backend/handlers"
)

func RegisterShareRoutes(r *gin.Engine, cfg *auth.Config) {
	group := r.Group("/api/share")
	// Anonymous: the link token is the credential.
	group.POST("/public/:token/access", handlers.PublicAccess)

	group.Use(middleware.AuthRequired(cfg))
	group.POST("/:fileId", handlers.InviteUser)
	group.GET("/:fileId/status", handlers.GetShareStatus)
	group.POST("/:fileId/public", handlers.UpdatePublicLink)
	group.GET("/:fileId/qr", handlers.LinkQR)
	group.DELETE("/:fileId/user/:uid", handlers.RevokeUser)
}
