package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/auth/middleware"
	"github.com/farhan/clouddrive-backend/auth/oauth"
	"github.com/farhan/clouddrive-backend/handlers"
)

func RegisterAuthRoutes(r *gin.Engine, cfg *auth.Config) {
	group := r.Group("/api/auth")

	group.POST("/register", handlers.Register)
	group.POST("/login", handlers.Login)
	group.POST("/oauth-sync", handlers.OAuthSync)
	group.POST("/refresh", handlers.RefreshToken)

	group.GET("/oauth/:provider", oauth.BeginAuth)
	group.GET("/oauth/:provider/callback", oauth.CompleteAuth(cfg))

	group.GET("/me", middleware.AuthRequired(cfg), handlers.Me)
	group.PUT("/profile", middleware.AuthRequired(cfg), handlers.UpdateProfile)
}
