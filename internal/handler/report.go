// Package handler contains HTTP handlers for the Inspekta API.
//
// This file implements the report lifecycle endpoints: PDF preparation
// (sync and queued), download, signing, delivery, styling, and the public
// QR verification surface.
package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/inspekta-io/inspekta/internal/auth"
	"github.com/inspekta-io/inspekta/internal/domain"
	"github.com/inspekta-io/inspekta/internal/metrics"
	"github.com/inspekta-io/inspekta/internal/service"
)

// ReportHandler handles HTTP requests related to reports.
type ReportHandler struct {
	reports service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

// =============================================================================
// Response Shapes
// =============================================================================

type reportResponse struct {
	ID               string          `json:"id"`
	ReportCode       string          `json:"reportCode"`
	InspectionID     string          `json:"inspectionId"`
	InspectionStatus string          `json:"inspectionStatus"`
	CustomerName     string          `json:"customerName"`
	WorkOrderNo      string          `json:"workOrderNumber"`
	InspectionDate   *time.Time      `json:"inspectionDate"`
	EquipmentName    string          `json:"equipmentName"`
	EquipmentType    string          `json:"equipmentType"`
	TechnicianName   string          `json:"technicianName"`
	Signed           bool            `json:"signed"`
	SignedAt         *time.Time      `json:"signedAt"`
	SentAt           *time.Time      `json:"sentAt"`
	SentTo           string          `json:"sentTo,omitempty"`
	Style            json.RawMessage `json:"reportStyle,omitempty"`
	QRPublicURL      string          `json:"qrPublicUrl,omitempty"`
}

func toReportResponse(rc *domain.ReportContext) reportResponse {
	return reportResponse{
		ID:               rc.Report.ID.String(),
		ReportCode:       rc.ReportNumber(),
		InspectionID:     rc.InspectionID.String(),
		InspectionStatus: rc.InspectionStatus.String(),
		CustomerName:     rc.CustomerName,
		WorkOrderNo:      rc.WorkOrderNo,
		InspectionDate:   rc.InspectionDate,
		EquipmentName:    rc.EquipmentName,
		EquipmentType:    rc.EquipmentType,
		TechnicianName:   rc.TechnicianName,
		Signed:           rc.Report.IsSigned(),
		SignedAt:         rc.SignedAt,
		SentAt:           rc.SentAt,
		SentTo:           rc.SentTo,
		Style:            rc.Style,
		QRPublicURL:      rc.QRPublicURL,
	}
}

type jobResponse struct {
	ID         string     `json:"id"`
	ReportID   string     `json:"reportId"`
	Status     string     `json:"status"`
	Attempts   int        `json:"attempts"`
	LastError  string     `json:"lastError,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	StartedAt  *time.Time `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
}

func toJobResponse(job *domain.ReportJob) jobResponse {
	return jobResponse{
		ID:         job.ID.String(),
		ReportID:   job.ReportID.String(),
		Status:     job.Status.String(),
		Attempts:   job.Attempts,
		LastError:  job.LastError,
		CreatedAt:  job.CreatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (h *ReportHandler) requireTechnician(w http.ResponseWriter, r *http.Request) *domain.Technician {
	tech := auth.GetTechnicianFromRequest(r)
	if tech == nil {
		UnauthorizedResponse(w, r, h.logger)
	}
	return tech
}

func (h *ReportHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.report", "invalid report identifier"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *ReportHandler) streamPDF(w http.ResponseWriter, r *http.Request, result *service.DownloadResult) {
	f, err := os.Open(result.Path)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, "report.download", "failed to open report PDF"))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, "report.download", "failed to stat report PDF"))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", contentDisposition(result.Filename))

	if _, err := io.Copy(w, f); err != nil {
		h.logger.Error("failed to stream report pdf", "path", result.Path, "error", err)
	}
}

// =============================================================================
// Authenticated Endpoints
// =============================================================================

// Get returns report metadata with the public verification link attached.
// GET /reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	rc, err := h.reports.Get(r.Context(), id, tech.CompanyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toReportResponse(rc))
}

// Prepare regenerates the unsigned PDF synchronously.
// POST /reports/{id}/prepare
func (h *ReportHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.reports.Prepare(r.Context(), id, tech.CompanyID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"reportId": id.String()})
}

// PrepareAsync enqueues background PDF regeneration. Returns 202 with the
// new job, or 200 when a pending or processing job already covers the
// report.
// POST /reports/{id}/prepare-async
func (h *ReportHandler) PrepareAsync(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.reports.Enqueue(r.Context(), id, tech.CompanyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusAccepted
	}
	respondJSON(w, status, map[string]string{
		"jobId":  result.Job.ID.String(),
		"status": result.Job.Status.String(),
	})
}

// JobStatus returns a snapshot of a queued generation job.
// GET /reports/jobs/{jobId}
func (h *ReportHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	jobID, err := uuid.Parse(r.PathValue("jobId"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("report.job_status", "invalid job identifier"))
		return
	}

	job, err := h.reports.JobStatus(r.Context(), jobID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toJobResponse(job))
}

// Download streams the report PDF. The unsigned artifact is served unless
// ?signed=true requests the signed one.
// GET /reports/{id}/download?signed=true|false
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	preferSigned := r.URL.Query().Get("signed") == "true"
	result, err := h.reports.Download(r.Context(), id, tech.CompanyID, preferSigned)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.streamPDF(w, r, result)
}

// SigningData returns the unsigned PDF as base64 for external signing.
// GET /reports/{id}/signing-data
func (h *ReportHandler) SigningData(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	b64, err := h.reports.SigningData(r.Context(), id, tech.CompanyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"pdfBase64": b64})
}

// Sign verifies the technician's PIN and stores the externally signed PDF.
// POST /reports/{id}/sign
func (h *ReportHandler) Sign(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		PIN             string `json:"pin"`
		SignedPDFBase64 string `json:"signedPdfBase64"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if len(req.PIN) < 4 || len(req.PIN) > 10 {
		ErrorResponse(w, r, h.logger, domain.Invalid("report.sign", "PIN must be between 4 and 10 characters"))
		return
	}
	if req.SignedPDFBase64 == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid("report.sign", "signedPdfBase64 is required"))
		return
	}

	report, err := h.reports.Sign(r.Context(), id, tech.CompanyID, tech.ID, req.PIN, req.SignedPDFBase64)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.ReportsSigned.Inc()
	respondJSON(w, http.StatusOK, map[string]any{
		"reportId": report.ID.String(),
		"signedAt": report.SignedAt,
	})
}

// Send emails the signed report to a customer address.
// POST /reports/{id}/send
func (h *ReportHandler) Send(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.reports.Send(r.Context(), id, tech.CompanyID, req.Email); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.ReportsSent.Inc()
	respondJSON(w, http.StatusOK, map[string]string{
		"reportId": id.String(),
		"sentTo":   req.Email,
	})
}

// UpdateStyle merges a style patch into the report's style document.
// PATCH /reports/{id}/style
func (h *ReportHandler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	tech := h.requireTechnician(w, r)
	if tech == nil {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Scale       *string        `json:"scale"`
		ReportStyle map[string]any `json:"reportStyle"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.Scale == nil && req.ReportStyle == nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("report.update_style", "specify scale or reportStyle"))
		return
	}

	merged, err := h.reports.UpdateStyle(r.Context(), id, tech.CompanyID, req.Scale, req.ReportStyle)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"reportId":    id.String(),
		"reportStyle": json.RawMessage(merged),
	})
}

// =============================================================================
// Public QR Endpoints
// =============================================================================

type publicReportResponse struct {
	ReportCode     string     `json:"reportCode"`
	CompanyName    string     `json:"companyName"`
	EquipmentName  string     `json:"equipmentName"`
	EquipmentType  string     `json:"equipmentType"`
	SerialNumber   string     `json:"serialNumber"`
	InspectionDate *time.Time `json:"inspectionDate"`
	TechnicianName string     `json:"technicianName"`
	Signed         bool       `json:"signed"`
	SignedAt       *time.Time `json:"signedAt"`
	QRCodeDataURL  string     `json:"qrCodeDataUrl,omitempty"`
	QRPublicURL    string     `json:"qrPublicUrl,omitempty"`
}

// PublicGet returns verification details for a scanned QR token.
// GET /reports/public/{qrToken}
func (h *ReportHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("qrToken")
	if token == "" {
		NotFoundResponse(w, r, h.logger)
		return
	}

	rc, err := h.reports.Public(r.Context(), token)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.PublicReportViews.Inc()
	respondJSON(w, http.StatusOK, publicReportResponse{
		ReportCode:     rc.ReportNumber(),
		CompanyName:    rc.CompanyName,
		EquipmentName:  rc.EquipmentName,
		EquipmentType:  rc.EquipmentType,
		SerialNumber:   rc.SerialNumber,
		InspectionDate: rc.InspectionDate,
		TechnicianName: rc.TechnicianName,
		Signed:         rc.Report.IsSigned(),
		SignedAt:       rc.SignedAt,
		QRCodeDataURL:  rc.QRCodeDataURL,
		QRPublicURL:    rc.QRPublicURL,
	})
}

// PublicDownload streams the PDF for a scanned QR token. The signed
// artifact is preferred unless ?signed=false opts out.
// GET /reports/public/{qrToken}/download?signed=true|false
func (h *ReportHandler) PublicDownload(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("qrToken")
	if token == "" {
		NotFoundResponse(w, r, h.logger)
		return
	}

	preferSigned := r.URL.Query().Get("signed") != "false"
	result, err := h.reports.DownloadPublic(r.Context(), token, preferSigned)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.streamPDF(w, r, result)
}
