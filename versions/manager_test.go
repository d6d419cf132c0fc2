package versions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farhan/clouddrive-backend/apperr"
	"github.com/farhan/clouddrive-backend/models"
)

type fakeBlobs struct {
	deleted []string
}

func (f *fakeBlobs) PresignUpload(ctx context.Context, key string) (string, error) {
	return "https://blobs.test/put/" + key, nil
}

func (f *fakeBlobs) PresignDownload(ctx context.Context, key, fileName string, inline bool, ttl time.Duration) (string, error) {
	return "https://blobs.test/get/" + key, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, keys []string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func testManager(t *testing.T) (*Manager, *fakeBlobs) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.File{}, &models.FileVersion{}))
	blobs := &fakeBlobs{}
	return NewManager(db, blobs), blobs
}

func TestApplyUploadNewFile(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()

	init, err := mgr.ApplyUpload("notes.txt", 100, "text/plain", nil, owner)
	require.NoError(t, err)
	assert.False(t, init.NewVersion)
	assert.Contains(t, init.StorageKey, "users/"+owner.String()+"/")

	var file models.File
	require.NoError(t, mgr.DB.First(&file, "id = ?", init.FileID).Error)
	assert.Equal(t, 1, file.Version)
	assert.Equal(t, init.StorageKey, file.StorageKey)

	var count int64
	mgr.DB.Model(&models.FileVersion{}).Count(&count)
	assert.Zero(t, count, "a first upload has nothing to archive")
}

func TestApplyUploadArchivesThenSwaps(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()

	first, err := mgr.ApplyUpload("notes.txt", 100, "text/plain", nil, owner)
	require.NoError(t, err)

	second, err := mgr.ApplyUpload("notes.txt", 250, "text/plain", nil, owner)
	require.NoError(t, err)
	assert.True(t, second.NewVersion)
	assert.Equal(t, first.FileID, second.FileID)
	assert.NotEqual(t, first.StorageKey, second.StorageKey)

	var file models.File
	require.NoError(t, mgr.DB.First(&file, "id = ?", first.FileID).Error)
	assert.Equal(t, 2, file.Version)
	assert.Equal(t, second.StorageKey, file.StorageKey)
	assert.Equal(t, int64(250), file.SizeBytes)

	var archived models.FileVersion
	require.NoError(t, mgr.DB.First(&archived, "file_id = ?", first.FileID).Error)
	assert.Equal(t, 1, archived.Version)
	assert.Equal(t, first.StorageKey, archived.StorageKey)
	assert.Equal(t, int64(100), archived.SizeBytes)
	assert.Equal(t, owner, archived.UserID)
}

func TestApplyUploadDifferentFolderNoCollision(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()
	folder := uuid.New()

	root, err := mgr.ApplyUpload("notes.txt", 100, "text/plain", nil, owner)
	require.NoError(t, err)
	nested, err := mgr.ApplyUpload("notes.txt", 100, "text/plain", &folder, owner)
	require.NoError(t, err)

	assert.NotEqual(t, root.FileID, nested.FileID)
	assert.False(t, nested.NewVersion)
}

func TestApplyUploadIgnoresTrashedFiles(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()

	first, err := mgr.ApplyUpload("notes.txt", 100, "text/plain", nil, owner)
	require.NoError(t, err)
	require.NoError(t, mgr.DB.Model(&models.File{}).Where("id = ?", first.FileID).Update("is_deleted", true).Error)

	fresh, err := mgr.ApplyUpload("notes.txt", 100, "text/plain", nil, owner)
	require.NoError(t, err)
	assert.False(t, fresh.NewVersion, "a trashed file is not a collision")
	assert.NotEqual(t, first.FileID, fresh.FileID)

	var trashed models.File
	require.NoError(t, mgr.DB.First(&trashed, "id = ?", first.FileID).Error)
	assert.True(t, trashed.IsDeleted, "the trashed file is left untouched")
	assert.Equal(t, 1, trashed.Version)
}

func TestListVersionsDescending(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()

	init, err := mgr.ApplyUpload("notes.txt", 10, "text/plain", nil, owner)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = mgr.ApplyUpload("notes.txt", int64(20+i), "text/plain", nil, owner)
		require.NoError(t, err)
	}

	list, err := mgr.ListVersions(init.FileID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 3, list[0].Version)
	assert.Equal(t, 2, list[1].Version)
	assert.Equal(t, 1, list[2].Version)
}

func TestRestoreVersionRoundTrip(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()

	v1, err := mgr.ApplyUpload("notes.txt", 100, "text/plain", nil, owner)
	require.NoError(t, err)
	_, err = mgr.ApplyUpload("notes.txt", 200, "text/markdown", nil, owner)
	require.NoError(t, err)

	var archived models.FileVersion
	require.NoError(t, mgr.DB.First(&archived, "file_id = ? AND version = ?", v1.FileID, 1).Error)

	actor := uuid.New()
	require.NoError(t, mgr.RestoreVersion(v1.FileID, archived.ID, actor))

	// Current content equals what version 1 archived.
	var file models.File
	require.NoError(t, mgr.DB.First(&file, "id = ?", v1.FileID).Error)
	assert.Equal(t, v1.StorageKey, file.StorageKey)
	assert.Equal(t, int64(100), file.SizeBytes)
	assert.Equal(t, "text/plain", file.MimeType)

	// The counter moved forward, never back.
	assert.Equal(t, 3, file.Version)

	// The pre-restore state was archived, attributed to the actor.
	var preRestore models.FileVersion
	require.NoError(t, mgr.DB.First(&preRestore, "file_id = ? AND version = ?", v1.FileID, 2).Error)
	assert.Equal(t, int64(200), preRestore.SizeBytes)
	assert.Equal(t, actor, preRestore.UserID)
}

func TestRestoreVersionUnknown(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()

	init, err := mgr.ApplyUpload("notes.txt", 100, "text/plain", nil, owner)
	require.NoError(t, err)

	err = mgr.RestoreVersion(init.FileID, uuid.New(), owner)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestVersionNumbersNeverReused(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()

	init, err := mgr.ApplyUpload("notes.txt", 10, "text/plain", nil, owner)
	require.NoError(t, err)
	_, err = mgr.ApplyUpload("notes.txt", 20, "text/plain", nil, owner)
	require.NoError(t, err)

	var archived models.FileVersion
	require.NoError(t, mgr.DB.First(&archived, "file_id = ? AND version = ?", init.FileID, 1).Error)
	require.NoError(t, mgr.RestoreVersion(init.FileID, archived.ID, owner))
	require.NoError(t, mgr.RestoreVersion(init.FileID, archived.ID, owner))

	list, err := mgr.ListVersions(init.FileID)
	require.NoError(t, err)
	seen := map[int]bool{}
	prev := int(^uint(0) >> 1)
	for _, v := range list {
		assert.False(t, seen[v.Version], "version %d appears twice", v.Version)
		seen[v.Version] = true
		assert.Less(t, v.Version, prev)
		prev = v.Version
	}

	var file models.File
	require.NoError(t, mgr.DB.First(&file, "id = ?", init.FileID).Error)
	assert.Equal(t, 4, file.Version)
}

func TestConcurrentSwapLosesWithConflict(t *testing.T) {
	mgr, _ := testManager(t)
	owner := uuid.New()

	init, err := mgr.ApplyUpload("notes.txt", 10, "text/plain", nil, owner)
	require.NoError(t, err)

	// Another writer bumps the counter between this upload's read and
	// its swap.
	var stale models.File
	require.NoError(t, mgr.DB.First(&stale, "id = ?", init.FileID).Error)
	require.NoError(t, mgr.DB.Model(&models.File{}).Where("id = ?", init.FileID).Update("version", stale.Version+1).Error)

	err = mgr.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.File{}).
			Where("id = ? AND version = ?", stale.ID, stale.Version).
			Update("version", stale.Version+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("file changed concurrently, retry upload")
		}
		return nil
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestPurgeDeletesAllBlobsAndRows(t *testing.T) {
	mgr, blobs := testManager(t)
	owner := uuid.New()

	v1, err := mgr.ApplyUpload("notes.txt", 10, "text/plain", nil, owner)
	require.NoError(t, err)
	v2, err := mgr.ApplyUpload("notes.txt", 20, "text/plain", nil, owner)
	require.NoError(t, err)

	var file models.File
	require.NoError(t, mgr.DB.First(&file, "id = ?", v1.FileID).Error)
	require.NoError(t, mgr.Purge(context.Background(), []models.File{file}))

	assert.ElementsMatch(t, []string{v1.StorageKey, v2.StorageKey}, blobs.deleted)

	var files, archived int64
	mgr.DB.Model(&models.File{}).Count(&files)
	mgr.DB.Model(&models.FileVersion{}).Count(&archived)
	assert.Zero(t, files)
	assert.Zero(t, archived)
}
