package storage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// pdfMagic is the byte prefix every well-formed PDF starts with.
var pdfMagic = []byte("%PDF-")

// base64Text matches file content that plausibly holds a base64 payload
// (standard alphabet plus padding and line breaks).
var base64Text = regexp.MustCompile(`^[A-Za-z0-9+/=\r\n]+$`)

var whitespace = regexp.MustCompile(`\s+`)

// ErrNotPDF reports that a file failed the PDF magic check and could not
// be recovered by the base64 repair heuristic.
var ErrNotPDF = errors.New("storage: file is not a valid PDF")

// =============================================================================
// Artifact Store
// =============================================================================

// ArtifactStore owns the on-disk layout for report PDF artifacts:
// {root}/{reportID}/unsigned.pdf and {root}/{reportID}/signed.pdf.
// Each report directory is exclusively owned by the report row naming it;
// nothing else writes under that path.
type ArtifactStore struct {
	root           string
	repairMaxBytes int64
	logger         *slog.Logger
}

// NewArtifactStore creates the store rooted at the given directory,
// creating it if needed. repairMaxBytes caps the file size eligible for
// the base64 repair heuristic.
func NewArtifactStore(root string, repairMaxBytes int64, logger *slog.Logger) (*ArtifactStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	logger.Info("initialized report artifact store",
		"root", absRoot,
		"repair_max_bytes", repairMaxBytes,
	)
	return &ArtifactStore{
		root:           absRoot,
		repairMaxBytes: repairMaxBytes,
		logger:         logger,
	}, nil
}

// UnsignedPath returns the deterministic path of a report's unsigned PDF.
func (s *ArtifactStore) UnsignedPath(reportID uuid.UUID) string {
	return filepath.Join(s.root, reportID.String(), "unsigned.pdf")
}

// SignedPath returns the deterministic path of a report's signed PDF.
func (s *ArtifactStore) SignedPath(reportID uuid.UUID) string {
	return filepath.Join(s.root, reportID.String(), "signed.pdf")
}

// WriteAtomic writes data to path via a temp file in the same directory
// followed by a rename, so a concurrent reader never observes a partial
// file. Parent directories are created as needed.
func (s *ArtifactStore) WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp := fmt.Sprintf("%s.tmp-%d", path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// Exists reports whether a file is present at path.
func (s *ArtifactStore) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// ReadBase64 returns the file content base64 encoded, the transport shape
// used by external signing tools.
func (s *ArtifactStore) ReadBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Open opens an artifact for streaming.
func (s *ArtifactStore) Open(path string) (*os.File, error) {
	return os.Open(path)
}

// HasPDFMagic checks the first five bytes of the file for the %PDF-
// prefix.
func (s *ArtifactStore) HasPDFMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return n == len(pdfMagic) && bytes.Equal(head, pdfMagic), nil
}

// RepairBase64 handles a historical corruption mode: a PDF accidentally
// persisted as base64 text. If the file is within the repair ceiling and
// its content decodes to %PDF- prefixed bytes, the decoded payload
// atomically replaces the file. Returns true when the file ends up valid.
func (s *ArtifactStore) RepairBase64(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if stat.Size() > s.repairMaxBytes {
		return false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if !base64Text.Match(content) {
		return false, nil
	}

	stripped := whitespace.ReplaceAll(content, nil)
	decoded, err := base64.StdEncoding.DecodeString(string(stripped))
	if err != nil {
		return false, nil
	}
	if len(decoded) < len(pdfMagic) || !bytes.Equal(decoded[:len(pdfMagic)], pdfMagic) {
		return false, nil
	}

	if err := s.WriteAtomic(path, decoded); err != nil {
		return false, err
	}
	s.logger.Info("repaired base64-wrapped pdf artifact",
		"path", path,
		"decoded_bytes", len(decoded),
	)
	return true, nil
}
