package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
)

func Register(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		FullName string `json:"fullName"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var existing models.User
	if err := initializers.DB.Select("id").First(&existing, "email = ?", body.Email).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:        body.Email,
		PasswordHash: string(hash),
		FullName:     body.FullName,
	}
	if err := initializers.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	token, _, err := Auth.GenerateTokens(user.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered", "token": token, "user": user})
}

func Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var user models.User
	err := initializers.DB.First(&user, "email = ?", body.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
		return
	}

	token, refresh, err := Auth.GenerateTokens(user.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	setRefreshCookie(c, refresh)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"full_name":  user.FullName,
			"avatar_url": user.AvatarURL,
		},
	})
}

// OAuthSync is the trusted-frontend variant of provider sign-in: the SPA
// completes the provider flow itself and posts the profile here to get
// an app token, creating the account on first sight.
func OAuthSync(c *gin.Context) {
	var body struct {
		Email      string `json:"email" binding:"required,email"`
		FullName   string `json:"fullName"`
		ProviderID string `json:"providerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email required from provider"})
		return
	}

	var user models.User
	err := initializers.DB.First(&user, "email = ?", body.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		name := body.FullName
		if name == "" {
			name = strings.Split(body.Email, "@")[0]
		}
		user = models.User{
			Email:        body.Email,
			FullName:     name,
			PasswordHash: strings.ToUpper(body.ProviderID) + "_AUTH_USER",
		}
		if err := initializers.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	token, _, err := Auth.GenerateTokens(user.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "full_name": user.FullName, "email": user.Email},
	})
}

// RefreshToken exchanges the refresh cookie for a fresh access token.
func RefreshToken(c *gin.Context) {
	cookie, err := c.Cookie("refresh_token")
	if err != nil || cookie == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied"})
		return
	}
	sub, err := Auth.ValidateToken(cookie)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
		return
	}
	token, refresh, err := Auth.GenerateTokens(sub)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	setRefreshCookie(c, refresh)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func setRefreshCookie(c *gin.Context, refresh string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("refresh_token", refresh, int(Auth.RefreshTTL.Seconds()), "/api/auth/refresh", "", true, true)
}

func Me(c *gin.Context) {
	var user models.User
	if err := initializers.DB.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"avatar_url": user.AvatarURL,
	})
}

func UpdateProfile(c *gin.Context) {
	var body struct {
		FullName  string  `json:"fullName"`
		AvatarURL *string `json:"avatarUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updates := map[string]interface{}{"full_name": body.FullName, "avatar_url": body.AvatarURL}
	if err := initializers.DB.Model(&models.User{}).Where("id = ?", currentUserID(c)).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}

	var user models.User
	initializers.DB.First(&user, "id = ?", currentUserID(c))
	c.JSON(http.StatusOK, user)
}
