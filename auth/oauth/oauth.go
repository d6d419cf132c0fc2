// Package oauth wires Google/GitHub sign-in through goth. A completed
// provider auth is folded into the local users table and exchanged for
// the same JWT pair password logins get.
package oauth

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"gorm.io/gorm"

	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
)

func InitStore() {
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   true,
	})
	gothic.Store = store

	goth.UseProviders(
		google.New(
			os.Getenv("GOOGLE_CLIENT_ID"),
			os.Getenv("GOOGLE_CLIENT_SECRET"),
			os.Getenv("GOOGLE_REDIRECT_URL"),
			"email", "profile",
		),
		github.New(
			os.Getenv("GITHUB_CLIENT_ID"),
			os.Getenv("GITHUB_CLIENT_SECRET"),
			os.Getenv("GITHUB_REDIRECT_URL"),
			"user:email",
		),
	)
}

// BeginAuth redirects to the provider's consent screen.
func BeginAuth(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Add("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CompleteAuth finishes the provider round trip, finds or creates the
// matching user, and redirects to the frontend with an access token.
func CompleteAuth(cfg *auth.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Add("provider", c.Param("provider"))
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			log.Printf("oauth error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}

		user, err := findOrCreateUser(gothUser)
		if err != nil {
			log.Printf("oauth user lookup error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process user data"})
			return
		}

		accessToken, refreshToken, err := cfg.GenerateTokens(user.ID.String())
		if err != nil {
			log.Printf("token generation error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
			return
		}

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     "refresh_token",
			Value:    refreshToken,
			HttpOnly: true,
			Secure:   true,
			Path:     "/api/auth/refresh",
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(cfg.RefreshTTL),
		})

		redirectURL := fmt.Sprintf("%s/auth/success?token=%s", os.Getenv("BASE_URL"), accessToken)
		c.Redirect(http.StatusTemporaryRedirect, redirectURL)
	}
}

func findOrCreateUser(gothUser goth.User) (*models.User, error) {
	var user models.User
	var err error

	switch gothUser.Provider {
	case "google":
		err = initializers.DB.Where("google_id = ?", gothUser.UserID).First(&user).Error
	case "github":
		err = initializers.DB.Where("git_hub_id = ?", gothUser.UserID).First(&user).Error
	default:
		return nil, fmt.Errorf("unsupported provider: %s", gothUser.Provider)
	}
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	// No account for this provider id yet; link by email when one exists.
	err = initializers.DB.Where("email = ?", gothUser.Email).First(&user).Error
	if err == nil {
		return linkProvider(&user, gothUser)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	name := gothUser.Name
	if name == "" {
		name = strings.Split(gothUser.Email, "@")[0]
	}
	user = models.User{
		Email:        gothUser.Email,
		FullName:     name,
		PasswordHash: strings.ToUpper(gothUser.Provider) + "_AUTH_USER",
		Provider:     &gothUser.Provider,
	}
	setProviderID(&user, gothUser)
	if err := initializers.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func linkProvider(user *models.User, gothUser goth.User) (*models.User, error) {
	setProviderID(user, gothUser)
	user.Provider = &gothUser.Provider
	if err := initializers.DB.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func setProviderID(user *models.User, gothUser goth.User) {
	id := gothUser.UserID
	switch gothUser.Provider {
	case "google":
		user.GoogleID = &id
	case "github":
		user.GitHubID = &id
	}
}
