// Package handler contains HTTP handlers for the Inspekta API.
//
// This file implements inspection capture endpoints: opening an
// inspection, saving field data, and completing it.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/inspekta-io/inspekta/internal/auth"
	"github.com/inspekta-io/inspekta/internal/domain"
	"github.com/inspekta-io/inspekta/internal/service"
)

// InspectionHandler handles HTTP requests related to inspections.
type InspectionHandler struct {
	inspections service.InspectionService
	logger      *slog.Logger
}

// NewInspectionHandler creates a new InspectionHandler.
func NewInspectionHandler(inspections service.InspectionService, logger *slog.Logger) *InspectionHandler {
	return &InspectionHandler{
		inspections: inspections,
		logger:      logger,
	}
}

// =============================================================================
// Response Shapes
// =============================================================================

type inspectionResponse struct {
	ID             string         `json:"id"`
	EquipmentID    string         `json:"equipmentId"`
	TechnicianID   string         `json:"technicianId"`
	Status         string         `json:"status"`
	CustomerName   string         `json:"customerName"`
	WorkOrderNo    string         `json:"workOrderNumber"`
	InspectionDate *time.Time     `json:"inspectionDate"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	Data           map[string]any `json:"inspectionData,omitempty"`
	PhotoURLs      []string       `json:"photoUrls,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func toInspectionResponse(insp *domain.Inspection) inspectionResponse {
	return inspectionResponse{
		ID:             insp.ID.String(),
		EquipmentID:    insp.EquipmentID.String(),
		TechnicianID:   insp.TechnicianID.String(),
		Status:         insp.Status.String(),
		CustomerName:   insp.CustomerName,
		WorkOrderNo:    insp.WorkOrderNo,
		InspectionDate: insp.InspectionDate,
		StartTime:      insp.StartTime,
		EndTime:        insp.EndTime,
		Data:           insp.Data,
		PhotoURLs:      insp.PhotoURLs,
		CreatedAt:      insp.CreatedAt,
		UpdatedAt:      insp.UpdatedAt,
	}
}

// =============================================================================
// Endpoints
// =============================================================================

// Create opens a new inspection and its paired report.
// POST /inspections
func (h *InspectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	tech := auth.GetTechnicianFromRequest(r)
	if tech == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req struct {
		EquipmentID    string `json:"equipmentId"`
		CustomerName   string `json:"customerName"`
		WorkOrderNo    string `json:"workOrderNumber"`
		InspectionDate string `json:"inspectionDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	equipmentID, err := uuid.Parse(req.EquipmentID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("inspection.create", "invalid equipment identifier"))
		return
	}

	var inspectionDate time.Time
	if req.InspectionDate != "" {
		inspectionDate, err = time.Parse("2006-01-02", req.InspectionDate)
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("inspection.create", "inspectionDate must be YYYY-MM-DD"))
			return
		}
	}

	insp, err := h.inspections.Create(r.Context(), tech.CompanyID, service.CreateInspectionInput{
		EquipmentID:    equipmentID,
		TechnicianID:   tech.ID,
		CustomerName:   req.CustomerName,
		WorkOrderNo:    req.WorkOrderNo,
		InspectionDate: inspectionDate,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toInspectionResponse(insp))
}

// Get returns a single inspection.
// GET /inspections/{id}
func (h *InspectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tech := auth.GetTechnicianFromRequest(r)
	if tech == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("inspection.get", "invalid inspection identifier"))
		return
	}

	insp, err := h.inspections.Get(r.Context(), id, tech.CompanyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toInspectionResponse(insp))
}

// SaveData stores a field data snapshot. Each save rotates the report's
// QR token and invalidates previously generated PDFs.
// PUT /inspections/{id}/data
func (h *InspectionHandler) SaveData(w http.ResponseWriter, r *http.Request) {
	tech := auth.GetTechnicianFromRequest(r)
	if tech == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("inspection.save", "invalid inspection identifier"))
		return
	}

	var req struct {
		InspectionData map[string]any `json:"inspectionData"`
		PhotoURLs      []string       `json:"photoUrls"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	insp, err := h.inspections.Save(r.Context(), tech.CompanyID, service.SaveInspectionInput{
		InspectionID: id,
		Data:         req.InspectionData,
		PhotoURLs:    req.PhotoURLs,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toInspectionResponse(insp))
}

// Complete marks the inspection completed after required-field validation.
// POST /inspections/{id}/complete
func (h *InspectionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	tech := auth.GetTechnicianFromRequest(r)
	if tech == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("inspection.complete", "invalid inspection identifier"))
		return
	}

	insp, err := h.inspections.Complete(r.Context(), id, tech.CompanyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toInspectionResponse(insp))
}
