package storage

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage("image/jpeg", 1024, DefaultMaxImageBytes))
	assert.NoError(t, ValidateImage("image/png", DefaultMaxImageBytes, DefaultMaxImageBytes))
	assert.NoError(t, ValidateImage("image/webp", 0, DefaultMaxImageBytes))

	assert.ErrorIs(t, ValidateImage("image/gif", 1024, DefaultMaxImageBytes), ErrUnsupportedType)
	assert.ErrorIs(t, ValidateImage("application/pdf", 1024, DefaultMaxImageBytes), ErrUnsupportedType)
	assert.ErrorIs(t, ValidateImage("image/jpeg", DefaultMaxImageBytes+1, DefaultMaxImageBytes), ErrFileTooLarge)
	assert.ErrorIs(t, ValidateImage("image/jpeg", 2048, 1024), ErrFileTooLarge)
}

func TestDiskStorageUploadAndRemove(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir(), "/uploads/", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultMaxImageBytes), store.MaxBytes)

	body := strings.NewReader("fake image bytes")
	url, err := store.Upload(context.Background(), "image/png", int64(body.Len()), body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	require.NoError(t, store.Remove(context.Background(), url))

	// Second remove reports a missing object
	assert.Error(t, store.Remove(context.Background(), url))
}

func TestDiskStorageRejectsBadUploads(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir(), "/uploads", 0)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "image/gif", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Upload(context.Background(), "image/jpeg", DefaultMaxImageBytes+1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDiskStorageRejectsBodyLargerThanDeclared(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStorage(dir, "/uploads", 64)
	require.NoError(t, err)

	// Body is far larger than both the declared size and the ceiling:
	// the upload must fail and must not leave a partial object behind
	body := strings.NewReader(strings.Repeat("x", 4096))
	url, err := store.Upload(context.Background(), "image/png", 10, body)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, url)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStorageHonorsConfiguredCeiling(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir(), "/uploads", 8)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "image/png", 16, strings.NewReader("too big for eight"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	url, err := store.Upload(context.Background(), "image/png", 4, strings.NewReader("tiny"))
	require.NoError(t, err)
	assert.NotEmpty(t, url)
}

func TestDiskStorageRemoveRejectsTraversal(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir(), "/uploads", 0)
	require.NoError(t, err)

	assert.Error(t, store.Remove(context.Background(), "/uploads/../../etc/passwd/.."))
}
