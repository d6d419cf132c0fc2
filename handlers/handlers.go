package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/auth/middleware"
)

// Auth is the credential config, set once from main before routes are
// registered.
var Auth *auth.Config

func Init(cfg *auth.Config) {
	Auth = cfg
}

func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.UserIDKey).(uuid.UUID)
}

// respondError translates an error into its status/kind pair. Internal
// faults are logged and masked; PasswordRequired carries a `protected`
// flag so clients know to show a prompt rather than an error.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == 500 {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	body := gin.H{"error": err.Error()}
	if apperr.KindOf(err) == apperr.KindPasswordRequired {
		body["protected"] = true
	}
	c.JSON(status, body)
}
