package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	userID := uuid.New().String()

	access, refresh, err := cfg.GenerateTokens(userID)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	sub, err := cfg.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)

	sub, err = cfg.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	access, _, err := cfg.GenerateTokens(uuid.New().String())
	require.NoError(t, err)

	other := &Config{Secret: []byte("other-secret"), AccessTTL: time.Hour, RefreshTTL: time.Hour}
	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTL = -time.Minute

	access, _, err := cfg.GenerateTokens(uuid.New().String())
	require.NoError(t, err)

	_, err = cfg.ValidateToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := testConfig().ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
