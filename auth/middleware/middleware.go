package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farhan/clouddrive-backend/auth"
)

const UserIDKey = "userID"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	// Some clients send the raw token without the Bearer prefix.
	return header
}

// AuthRequired rejects requests without a valid bearer credential:
// missing → 401, malformed or unverifiable → 400.
func AuthRequired(cfg *auth.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied"})
			return
		}
		sub, err := cfg.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}
		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// AuthOptional attaches the caller identity when a valid credential is
// present and continues unauthenticated otherwise.
func AuthOptional(cfg *auth.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if sub, err := cfg.ValidateToken(token); err == nil {
				if userID, err := uuid.Parse(sub); err == nil {
					c.Set(UserIDKey, userID)
				}
			}
		}
		c.Next()
	}
}
