package storage

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewLocalStorage(LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/files/",
	}, logger)
	require.NoError(t, err)
	return store
}

func TestLocalStorage_PutAndURL(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	key := PhotoKey(uuid.New(), "vinc.jpg")
	payload := []byte("jpeg payload")
	require.NoError(t, store.Put(ctx, key, bytes.NewReader(payload), PutOptions{ContentType: "image/jpeg"}))

	stored, err := os.ReadFile(filepath.Join(store.basePath, key))
	require.NoError(t, err)
	assert.Equal(t, payload, stored)

	url, err := store.URL(ctx, key, 0)
	require.NoError(t, err)
	// Trailing slash on the base URL is normalized away.
	assert.Equal(t, "http://localhost:8080/files/"+key, url)
}

func TestLocalStorage_PutEnforcesMaxSize(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	key := PhotoKey(uuid.New(), "big.png")
	err := store.Put(ctx, key, strings.NewReader("0123456789"), PutOptions{MaxSize: 4})

	require.Error(t, err)
	assert.True(t, IsTooLarge(err))
	// The oversized partial file must not remain on disk.
	_, statErr := os.Stat(filepath.Join(store.basePath, key))
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestLocalStorage_PutAtExactLimit(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	key := PhotoKey(uuid.New(), "fit.png")
	err := store.Put(ctx, key, strings.NewReader("1234"), PutOptions{MaxSize: 4})
	assert.NoError(t, err)
}

func TestLocalStorage_RejectsTraversalKeys(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "photos/../../escape.jpg"} {
		err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{})
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)

		_, err = store.URL(ctx, key, 0)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestPhotoKey(t *testing.T) {
	inspectionID := uuid.New()
	key := PhotoKey(inspectionID, "IMG_0042.HEIC")

	assert.True(t, strings.HasPrefix(key, "inspections/"+inspectionID.String()+"/photos/"))
	assert.True(t, strings.HasSuffix(key, ".HEIC"))
	// Fresh UUID per upload keeps keys collision-free.
	assert.NotEqual(t, key, PhotoKey(inspectionID, "IMG_0042.HEIC"))
}

func TestIsAllowedImageType(t *testing.T) {
	assert.True(t, IsAllowedImageType("image/jpeg"))
	assert.True(t, IsAllowedImageType("image/png; charset=binary"))
	assert.True(t, IsAllowedImageType("IMAGE/HEIC"))
	assert.False(t, IsAllowedImageType("application/pdf"))
	assert.False(t, IsAllowedImageType("text/html"))
	assert.False(t, IsAllowedImageType(""))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectContentType("image/jpeg", "x.bin", nil))
	assert.Equal(t, "image/png", DetectContentType("", "photo.png", nil))
	assert.Equal(t, "application/octet-stream", DetectContentType("", "noext", nil))
}
