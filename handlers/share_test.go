package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farhan/clouddrive-backend/auth"
	"github.com/farhan/clouddrive-backend/handlers"
	"github.com/farhan/clouddrive-backend/initializers"
	"github.com/farhan/clouddrive-backend/models"
	"github.com/farhan/clouddrive-backend/routes"
)

type fakeBlobs struct{}

func (fakeBlobs) PresignUpload(ctx context.Context, key string) (string, error) {
	return "https://blobs.test/put/" + key, nil
}

func (fakeBlobs) PresignDownload(ctx context.Context, key, fileName string, inline bool, ttl time.Duration) (string, error) {
	return "https://blobs.test/get/" + key, nil
}

func (fakeBlobs) Delete(ctx context.Context, keys []string) error { return nil }

func setupServer(t *testing.T) (*gin.Engine, *auth.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Folder{}, &models.File{}, &models.FileVersion{},
		&models.FileShare{}, &models.Star{}, &models.Activity{},
	))

	initializers.DB = db
	initializers.Blobs = fakeBlobs{}

	cfg := &auth.Config{Secret: []byte("test-secret"), AccessTTL: time.Hour, RefreshTTL: time.Hour}
	handlers.Init(cfg)

	router := gin.New()
	routes.RegisterFileRoutes(router, cfg)
	routes.RegisterShareRoutes(router, cfg)
	return router, cfg
}

func seedUser(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", FullName: "Test User"}
	require.NoError(t, initializers.DB.Create(&user).Error)
	return &user, user.ID.String()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// Walks the whole upload → share → public-link path: owner uploads twice
// (second upload archives v1), shares with a viewer who can download but
// not rename, then publishes a password-protected link an anonymous
// caller can resolve.
func TestUploadShareAndPublicLinkFlow(t *testing.T) {
	router, cfg := setupServer(t)

	userA, idA := seedUser(t, "a@example.com")
	_, _ = seedUser(t, "b@example.com")
	tokenA, _, err := cfg.GenerateTokens(idA)
	require.NoError(t, err)

	// First upload creates the file at version 1.
	rec := doJSON(t, router, http.MethodPost, "/api/files/init", tokenA, gin.H{
		"name": "report.pdf", "sizeBytes": 100, "mimeType": "application/pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode(t, rec)
	fileID := first["fileId"].(string)
	assert.Contains(t, first["uploadUrl"].(string), "https://blobs.test/put/")

	// Second upload of the same name bumps to version 2 and archives v1.
	rec = doJSON(t, router, http.MethodPost, "/api/files/init", tokenA, gin.H{
		"name": "report.pdf", "sizeBytes": 200, "mimeType": "application/pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode(t, rec)
	assert.Equal(t, fileID, second["fileId"])

	var file models.File
	require.NoError(t, initializers.DB.First(&file, "id = ?", fileID).Error)
	assert.Equal(t, 2, file.Version)
	assert.Equal(t, userA.ID, file.OwnerID)

	rec = doJSON(t, router, http.MethodGet, "/api/files/"+fileID+"/versions", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var versionList []models.FileVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &versionList))
	require.Len(t, versionList, 1)
	assert.Equal(t, 1, versionList[0].Version)

	// Share with B as viewer.
	rec = doJSON(t, router, http.MethodPost, "/api/share/"+fileID, tokenA, gin.H{
		"email": "b@example.com", "permission": "viewer",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var userB models.User
	require.NoError(t, initializers.DB.First(&userB, "email = ?", "b@example.com").Error)
	tokenB, _, err := cfg.GenerateTokens(userB.ID.String())
	require.NoError(t, err)

	// B can download the current content.
	rec = doJSON(t, router, http.MethodGet, "/api/files/"+fileID, tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	download := decode(t, rec)
	assert.Equal(t, "viewer", download["role"])
	assert.Equal(t, "https://blobs.test/get/"+file.StorageKey, download["downloadUrl"])

	// B cannot rename.
	rec = doJSON(t, router, http.MethodPatch, "/api/files/"+fileID, tokenB, gin.H{"name": "renamed.pdf"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A publishes a password-protected link.
	rec = doJSON(t, router, http.MethodPost, "/api/share/"+fileID+"/public", tokenA, gin.H{
		"action": "create", "password": "xyz",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	link := decode(t, rec)
	token := link["publicToken"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, true, link["hasPassword"])

	// Anonymous access without the password prompts for one.
	rec = doJSON(t, router, http.MethodPost, "/api/share/public/"+token+"/access", "", gin.H{})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, true, decode(t, rec)["protected"])

	// With the password it resolves to the current blob.
	rec = doJSON(t, router, http.MethodPost, "/api/share/public/"+token+"/access", "", gin.H{"password": "xyz"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	public := decode(t, rec)
	assert.Equal(t, "report.pdf", public["name"])
	assert.Equal(t, "https://blobs.test/get/"+file.StorageKey, public["downloadUrl"])
}

func TestPublicAccessUnknownToken(t *testing.T) {
	router, _ := setupServer(t)

	rec := doJSON(t, router, http.MethodPost, "/api/share/public/nope/access", "", gin.H{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrashedFileIsNotDownloadable(t *testing.T) {
	router, cfg := setupServer(t)

	_, idA := seedUser(t, "a@example.com")
	tokenA, _, err := cfg.GenerateTokens(idA)
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/files/init", tokenA, gin.H{
		"name": "report.pdf", "sizeBytes": 100, "mimeType": "application/pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	fileID := decode(t, rec)["fileId"].(string)

	rec = doJSON(t, router, http.MethodDelete, "/api/files/"+fileID, tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The owner still resolves the file for trash purposes, but the read
	// path treats it as gone.
	rec = doJSON(t, router, http.MethodGet, "/api/files/"+fileID, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Restore brings it back.
	rec = doJSON(t, router, http.MethodPost, "/api/files/restore/"+fileID, tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/api/files/"+fileID, tokenA, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEndpointsRequireCredential(t *testing.T) {
	router, _ := setupServer(t)

	rec := doJSON(t, router, http.MethodGet, "/api/files/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/files/", "garbage", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
