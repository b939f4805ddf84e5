// Package storage provides file storage for the Inspekta application.
//
// Two concerns live here:
//   - Storage: where inspection photos go (local filesystem in
//     development, Cloudflare R2 in production). Photos are uploaded by
//     technicians during an inspection and later resolved to URLs so the
//     rendered report can embed them.
//   - ArtifactStore: the report PDF artifact layout on the local disk,
//     with atomic writes and corruption repair.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage is the photo store. The upload handler writes through Put; the
// report renderer resolves keys to fetchable URLs through URL. Nothing in
// the report pipeline ever reads a photo back through this interface, so
// the surface stays this small.
type Storage interface {
	// Put stores a photo at the given key. Keys are generated by
	// PhotoKey and never collide, so an existing object at the key is
	// a bug, not a case to handle.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// URL returns a URL the rendering browser can fetch the photo from.
	// Local storage returns a permanent URL; R2 returns a presigned URL
	// valid for the given duration unless a public bucket domain is
	// configured.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how a photo is stored.
type PutOptions struct {
	// ContentType is the MIME type reported by the upload. If empty it
	// is detected from the key's extension.
	ContentType string

	// MaxSize caps the photo size in bytes. Exceeding it returns
	// ErrTooLarge. Zero means no limit.
	MaxSize int64
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where photos are stored.
	// Example: "./storage" or "/var/lib/inspekta/files"
	BasePath string

	// BaseURL is the public URL prefix the server exposes photos under.
	// Example: "http://localhost:8080/files"
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is a custom domain fronting the bucket, e.g.
	// "https://files.inspekta.io". When set, URL returns permanent links
	// instead of presigned ones.
	PublicURL string

	// Region is required by the AWS SDK; R2 accepts "auto".
	Region string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// =============================================================================
// Key Generation Helpers
// =============================================================================

// PhotoKey generates a storage key for an uploaded inspection photo.
// Format: inspections/{inspectionID}/photos/{uuid}.{ext}
func PhotoKey(inspectionID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	photoID := uuid.New()
	return fmt.Sprintf("inspections/%s/photos/%s%s", inspectionID, photoID, ext)
}
