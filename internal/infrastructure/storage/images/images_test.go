package images

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"surveysync/internal/infrastructure/storage"
)

func newTestStore(t *testing.T) (*FileStore, *storage.Handle, string) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := t.TempDir()
	handle, err := storage.Open(filepath.Join(root, "local.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	dir := filepath.Join(root, "images")
	return NewFileStore(handle, dir, log), handle, dir
}

func writeTempPhoto(t *testing.T, name string) string {
	t.Helper()

	src := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(src, []byte("jpeg-bytes"), 0600))
	return src
}

func TestStoreCopiesAndRecords(t *testing.T) {
	fs, handle, dir := newTestStore(t)

	src := writeTempPhoto(t, "camera-tmp.jpg")
	uri := fs.Store("survey_1_ab", src, "front")

	assert.NotEqual(t, src, uri)
	assert.Equal(t, dir, filepath.Dir(uri))
	assert.FileExists(t, uri)

	var count int
	require.NoError(t, handle.DB().QueryRow(
		"SELECT COUNT(*) FROM survey_images WHERE survey_id = 'survey_1_ab'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStoreDegradesOnCopyFailure(t *testing.T) {
	fs, handle, _ := newTestStore(t)

	// Source does not exist: the caller keeps the original URI and no
	// row appears.
	src := filepath.Join(t.TempDir(), "gone.jpg")
	uri := fs.Store("survey_1_ab", src, "front")

	assert.Equal(t, src, uri)

	var count int
	require.NoError(t, handle.DB().QueryRow("SELECT COUNT(*) FROM survey_images").Scan(&count))
	assert.Zero(t, count)
}

func TestStoreDegradesOnDirFailure(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := t.TempDir()
	handle, err := storage.Open(filepath.Join(root, "local.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	// A regular file where the image directory should be makes MkdirAll fail.
	blocked := filepath.Join(root, "images")
	require.NoError(t, os.WriteFile(blocked, []byte("not a dir"), 0600))

	fs := NewFileStore(handle, blocked, log)
	src := writeTempPhoto(t, "camera-tmp.jpg")

	uri := fs.Store("survey_1_ab", src, "front")
	assert.Equal(t, src, uri)
}

func TestListOrderedAndEmpty(t *testing.T) {
	fs, _, _ := newTestStore(t)

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	fs.now = func() time.Time { return now }

	fs.Store("survey_1_ab", writeTempPhoto(t, "a.jpg"), "front")
	now = now.Add(time.Minute)
	fs.Store("survey_1_ab", writeTempPhoto(t, "b.jpg"), "khasra")

	images := fs.List("survey_1_ab")
	require.Len(t, images, 2)
	assert.Equal(t, "front", images[0].Label)
	assert.Equal(t, "khasra", images[1].Label)

	assert.Empty(t, fs.List("survey_other"))
}

func TestDeleteRemovesFilesAndRows(t *testing.T) {
	fs, handle, _ := newTestStore(t)

	uri1 := fs.Store("survey_1_ab", writeTempPhoto(t, "a.jpg"), "front")
	uri2 := fs.Store("survey_1_ab", writeTempPhoto(t, "b.jpg"), "left")
	keep := fs.Store("survey_2_cd", writeTempPhoto(t, "c.jpg"), "front")

	// A missing file must not block row cleanup.
	require.NoError(t, os.Remove(uri2))

	require.NoError(t, fs.Delete("survey_1_ab"))

	assert.NoFileExists(t, uri1)
	assert.FileExists(t, keep)
	assert.Empty(t, fs.List("survey_1_ab"))
	assert.Len(t, fs.List("survey_2_cd"), 1)

	// Idempotent: a second delete is a no-op.
	require.NoError(t, fs.Delete("survey_1_ab"))

	var count int
	require.NoError(t, handle.DB().QueryRow("SELECT COUNT(*) FROM survey_images").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCleanupOrphans(t *testing.T) {
	fs, handle, dir := newTestStore(t)

	tracked := fs.Store("survey_1_ab", writeTempPhoto(t, "a.jpg"), "front")
	ghostRow := fs.Store("survey_1_ab", writeTempPhoto(t, "b.jpg"), "left")

	// Orphan file: on disk, no row.
	orphanFile := filepath.Join(dir, "stray.jpg")
	require.NoError(t, os.WriteFile(orphanFile, []byte("x"), 0600))

	// Orphan row: file deleted behind the store's back.
	require.NoError(t, os.Remove(ghostRow))

	fs.CleanupOrphans()

	assert.FileExists(t, tracked)
	assert.NoFileExists(t, orphanFile)

	var count int
	require.NoError(t, handle.DB().QueryRow(
		"SELECT COUNT(*) FROM survey_images WHERE photo_uri = ?", ghostRow).Scan(&count))
	assert.Zero(t, count)

	require.NoError(t, handle.DB().QueryRow("SELECT COUNT(*) FROM survey_images").Scan(&count))
	assert.Equal(t, 1, count)
}
