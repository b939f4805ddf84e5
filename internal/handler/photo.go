// Package handler contains HTTP handlers for the Inspekta API.
//
// This file implements inspection photo upload.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/inspekta-io/inspekta/internal/auth"
	"github.com/inspekta-io/inspekta/internal/domain"
	"github.com/inspekta-io/inspekta/internal/service"
	"github.com/inspekta-io/inspekta/internal/storage"
)

// maxPhotoBytes caps a single uploaded photo at 15 MB.
const maxPhotoBytes = 15 << 20

// PhotoHandler stores inspection photos and hands back their keys.
type PhotoHandler struct {
	inspections service.InspectionService
	photos      storage.Storage
	logger      *slog.Logger
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(inspections service.InspectionService, photos storage.Storage, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		inspections: inspections,
		photos:      photos,
		logger:      logger,
	}
}

// Upload stores one photo for an inspection and returns its storage key.
// The client includes returned keys in the next data save's photoUrls.
// POST /inspections/{id}/photos (multipart, field "photo")
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "photo.upload"

	tech := auth.GetTechnicianFromRequest(r)
	if tech == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	inspectionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "invalid inspection identifier"))
		return
	}

	// Ownership check before touching storage.
	if _, err := h.inspections.Get(r.Context(), inspectionID, tech.CompanyID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "photo file is required"))
		return
	}
	defer file.Close()

	contentType := storage.DetectContentType(header.Header.Get("Content-Type"), header.Filename, nil)
	if !storage.IsAllowedImageType(contentType) {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "photo must be a JPEG, PNG, WebP or HEIC image"))
		return
	}

	key := storage.PhotoKey(inspectionID, header.Filename)
	err = h.photos.Put(r.Context(), key, file, storage.PutOptions{
		ContentType: contentType,
		MaxSize:     maxPhotoBytes,
	})
	if err != nil {
		if storage.IsTooLarge(err) {
			ErrorResponse(w, r, h.logger, domain.Invalid(op, "photo exceeds the 15 MB size limit"))
			return
		}
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "failed to store photo"))
		return
	}

	h.logger.Info("inspection photo stored",
		"inspection_id", inspectionID,
		"key", key,
		"size", header.Size,
	)
	respondJSON(w, http.StatusCreated, map[string]string{"key": key})
}
