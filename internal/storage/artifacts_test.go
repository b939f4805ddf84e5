package storage

import (
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArtifactStore(t *testing.T) *ArtifactStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewArtifactStore(t.TempDir(), 1024*1024, logger)
	require.NoError(t, err)
	return store
}

func TestArtifactStore_Paths(t *testing.T) {
	store := newTestArtifactStore(t)
	id := uuid.New()

	unsigned := store.UnsignedPath(id)
	signed := store.SignedPath(id)

	assert.Equal(t, filepath.Join(store.root, id.String(), "unsigned.pdf"), unsigned)
	assert.Equal(t, filepath.Join(store.root, id.String(), "signed.pdf"), signed)
	assert.NotEqual(t, unsigned, signed)

	// Deterministic: same report, same path
	assert.Equal(t, unsigned, store.UnsignedPath(id))
}

func TestArtifactStore_WriteAtomic(t *testing.T) {
	store := newTestArtifactStore(t)
	id := uuid.New()
	path := store.UnsignedPath(id)
	payload := []byte("%PDF-1.7 test content")

	// Parent directory does not exist yet
	require.NoError(t, store.WriteAtomic(path, payload))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Overwrite replaces content completely
	require.NoError(t, store.WriteAtomic(path, []byte("%PDF-1.7 v2")))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 v2"), got)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.Contains(entry.Name(), ".tmp-"), "leftover temp file: %s", entry.Name())
	}
}

func TestArtifactStore_Exists(t *testing.T) {
	store := newTestArtifactStore(t)
	id := uuid.New()
	path := store.UnsignedPath(id)

	assert.False(t, store.Exists(""))
	assert.False(t, store.Exists(path))

	require.NoError(t, store.WriteAtomic(path, []byte("%PDF-1.7")))
	assert.True(t, store.Exists(path))
}

func TestArtifactStore_ReadBase64(t *testing.T) {
	store := newTestArtifactStore(t)
	path := store.UnsignedPath(uuid.New())
	payload := []byte("%PDF-1.7 binary\x00data")
	require.NoError(t, store.WriteAtomic(path, payload))

	encoded, err := store.ReadBase64(path)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	_, err = store.ReadBase64(filepath.Join(store.root, "missing.pdf"))
	assert.Error(t, err)
}

func TestArtifactStore_HasPDFMagic(t *testing.T) {
	store := newTestArtifactStore(t)

	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"valid pdf prefix", []byte("%PDF-1.7\nrest of file"), true},
		{"exactly the magic", []byte("%PDF-"), true},
		{"html error page", []byte("<html>502 Bad Gateway</html>"), false},
		{"truncated", []byte("%PD"), false},
		{"empty file", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(store.root, uuid.NewString()+".pdf")
			require.NoError(t, os.WriteFile(path, tt.content, 0644))

			got, err := store.HasPDFMagic(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := store.HasPDFMagic(filepath.Join(store.root, "missing.pdf"))
	assert.Error(t, err)
}

func TestArtifactStore_RepairBase64(t *testing.T) {
	store := newTestArtifactStore(t)
	pdfBytes := []byte("%PDF-1.7\n1 0 obj\nendobj")

	t.Run("repairs base64 wrapped pdf", func(t *testing.T) {
		path := filepath.Join(store.root, uuid.NewString()+".pdf")
		encoded := base64.StdEncoding.EncodeToString(pdfBytes)
		require.NoError(t, os.WriteFile(path, []byte(encoded), 0644))

		repaired, err := store.RepairBase64(path)
		require.NoError(t, err)
		assert.True(t, repaired)

		// File now passes the magic check with original bytes
		ok, err := store.HasPDFMagic(path)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, pdfBytes, got)
	})

	t.Run("repairs payload with line breaks", func(t *testing.T) {
		path := filepath.Join(store.root, uuid.NewString()+".pdf")
		encoded := base64.StdEncoding.EncodeToString(pdfBytes)
		wrapped := encoded[:10] + "\r\n" + encoded[10:]
		require.NoError(t, os.WriteFile(path, []byte(wrapped), 0644))

		repaired, err := store.RepairBase64(path)
		require.NoError(t, err)
		assert.True(t, repaired)
	})

	t.Run("rejects non-base64 content", func(t *testing.T) {
		path := filepath.Join(store.root, uuid.NewString()+".pdf")
		require.NoError(t, os.WriteFile(path, []byte("<html>error</html>"), 0644))

		repaired, err := store.RepairBase64(path)
		require.NoError(t, err)
		assert.False(t, repaired)
	})

	t.Run("rejects base64 of non-pdf payload", func(t *testing.T) {
		path := filepath.Join(store.root, uuid.NewString()+".pdf")
		encoded := base64.StdEncoding.EncodeToString([]byte("just some text"))
		require.NoError(t, os.WriteFile(path, []byte(encoded), 0644))

		repaired, err := store.RepairBase64(path)
		require.NoError(t, err)
		assert.False(t, repaired)
	})

	t.Run("respects size ceiling", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		small, err := NewArtifactStore(t.TempDir(), 8, logger)
		require.NoError(t, err)

		path := filepath.Join(small.root, "big.pdf")
		encoded := base64.StdEncoding.EncodeToString(pdfBytes)
		require.NoError(t, os.WriteFile(path, []byte(encoded), 0644))

		repaired, err := small.RepairBase64(path)
		require.NoError(t, err)
		assert.False(t, repaired)

		// Oversized files are left untouched
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte(encoded), got)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := store.RepairBase64(filepath.Join(store.root, "missing.pdf"))
		assert.Error(t, err)
	})
}
