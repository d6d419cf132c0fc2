package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/farhan/clouddrive-backend/activity"
	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/share"
)

func shareManager() *share.Manager {
	return share.NewManager(initializers.DB, initializers.Blobs)
}

// InviteUser grants another account access to the caller's file.
func InviteUser(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "fileId")
	if !ok {
		return
	}
	var body struct {
		Email      string `json:"email" binding:"required,email"`
		Permission string `json:"permission" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := shareManager().Invite(fileID, userID, body.Email, body.Permission); err != nil {
		respondError(c, err)
		return
	}
	activity.Record(initializers.DB, userID, "shared", "file", body.Email)
	c.JSON(http.StatusOK, gin.H{"message": "User invited successfully"})
}

// RevokeUser removes a grant. Revoking a grant that never existed still
// succeeds.
func RevokeUser(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "fileId")
	if !ok {
		return
	}
	granteeID, ok := parseID(c, "uid")
	if !ok {
		return
	}

	if err := shareManager().Revoke(fileID, userID, granteeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Access revoked"})
}

// GetShareStatus reports the public-link state (never the password hash)
// and the named grantees.
func GetShareStatus(c *gin.Context) {
	fileID, ok := parseID(c, "fileId")
	if !ok {
		return
	}

	status, err := shareManager().ShareStatus(fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// UpdatePublicLink creates, updates, or removes a file's public link
// depending on the action field.
func UpdatePublicLink(c *gin.Context) {
	userID := currentUserID(c)
	fileID, ok := parseID(c, "fileId")
	if !ok {
		return
	}
	var body struct {
		Action   string     `json:"action"`
		Password string     `json:"password"`
		Expiry   *time.Time `json:"expiry"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if body.Action == "remove" {
		if err := shareManager().DisableLink(fileID, userID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"publicToken": nil, "expiresAt": nil, "hasPassword": false})
		return
	}

	state, err := shareManager().UpsertLink(fileID, userID, body.Password, body.Expiry)
	if err != nil {
		respondError(c, err)
		return
	}
	activity.Record(initializers.DB, userID, "updated public link for", "file", fileID.String())
	c.JSON(http.StatusOK, state)
}

// PublicAccess is the anonymous endpoint behind shared links. The token
// is the credential; no session is involved.
func PublicAccess(c *gin.Context) {
	var body struct {
		Password string `json:"password"`
	}
	// No body at all is fine: unprotected links need none.
	_ = c.ShouldBindJSON(&body)

	result, err := shareManager().ResolvePublicAccess(c.Request.Context(), c.Param("token"), body.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":        result.Name,
		"size":        result.SizeBytes,
		"mimeType":    result.MimeType,
		"downloadUrl": result.DownloadURL,
	})
}

// LinkQR renders the file's public link as a PNG QR code.
func LinkQR(c *gin.Context) {
	fileID, ok := parseID(c, "fileId")
	if !ok {
		return
	}

	status, err := shareManager().ShareStatus(fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	if status.PublicToken == nil {
		respondError(c, apperr.NotFound("No public link for this file"))
		return
	}

	link := fmt.Sprintf("%s/shared/%s", os.Getenv("BASE_URL"), *status.PublicToken)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		respondError(c, apperr.Infrastructure(err))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
