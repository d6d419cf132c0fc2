package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds the credential-signing state. It is built once at process
// start and passed by reference everywhere tokens are minted or checked.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func LoadConfig() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return &Config{
		Secret:     []byte(secret),
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
	}, nil
}

// GenerateTokens mints an access/refresh token pair for userID.
func (c *Config) GenerateTokens(userID string) (accessToken string, refreshToken string, err error) {
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(c.AccessTTL).Unix(),
		"typ": "access",
	})
	accessToken, err = access.SignedString(c.Secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %v", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(c.RefreshTTL).Unix(),
		"typ": "refresh",
	})
	refreshToken, err = refresh.SignedString(c.Secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %v", err)
	}

	return accessToken, refreshToken, nil
}

// ValidateToken parses tokenStr and returns the subject user id.
func (c *Config) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.Secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %v", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["sub"].(string)
		if !ok {
			return "", fmt.Errorf("invalid sub claim")
		}
		return userID, nil
	}
	return "", fmt.Errorf("invalid token")
}
