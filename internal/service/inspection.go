// Package service contains the business logic layer.
//
// This file implements inspection data capture and completion, which drive
// the attached report's lifecycle.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/inspekta-io/inspekta/internal/domain"
	"github.com/inspekta-io/inspekta/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// CreateInspectionInput carries the fields needed to open a new inspection.
type CreateInspectionInput struct {
	EquipmentID    uuid.UUID
	TechnicianID   uuid.UUID
	CustomerName   string
	WorkOrderNo    string
	InspectionDate time.Time
}

// SaveInspectionInput carries a data snapshot from the field app.
type SaveInspectionInput struct {
	InspectionID uuid.UUID
	Data         map[string]any
	PhotoURLs    []string
}

// InspectionService defines inspection capture operations.
type InspectionService interface {
	// Create opens an inspection and its paired report row.
	Create(ctx context.Context, companyID uuid.UUID, input CreateInspectionInput) (*domain.Inspection, error)

	// Get returns an inspection scoped to the company.
	Get(ctx context.Context, inspectionID, companyID uuid.UUID) (*domain.Inspection, error)

	// Save persists a data snapshot and refreshes the paired report,
	// rotating its QR token and invalidating stale artifacts.
	Save(ctx context.Context, companyID uuid.UUID, input SaveInspectionInput) (*domain.Inspection, error)

	// Complete validates required fields, marks the inspection completed,
	// and kicks off best-effort PDF generation.
	Complete(ctx context.Context, inspectionID, companyID uuid.UUID) (*domain.Inspection, error)
}

// =============================================================================
// Implementation
// =============================================================================

type inspectionService struct {
	queries *repository.Queries
	reports ReportService
	logger  *slog.Logger
}

// NewInspectionService creates a new InspectionService. reports may be nil
// in tests; best-effort PDF generation is then skipped.
func NewInspectionService(queries *repository.Queries, reports ReportService, logger *slog.Logger) InspectionService {
	return &inspectionService{
		queries: queries,
		reports: reports,
		logger:  logger,
	}
}

func inspectionFromRow(row repository.Inspection) domain.Inspection {
	insp := domain.Inspection{
		ID:           row.ID,
		CompanyID:    row.CompanyID,
		EquipmentID:  row.EquipmentID,
		TechnicianID: row.TechnicianID,
		Status:       domain.InspectionStatus(row.Status),
		CustomerName: row.CustomerName,
		WorkOrderNo:  row.WorkOrderNo,
		PhotoURLs:    row.PhotoURLs,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.InspectionDate.Valid {
		t := row.InspectionDate.Time
		insp.InspectionDate = &t
	}
	insp.StartTime = row.StartTime
	insp.EndTime = row.EndTime
	if row.InspectionData.Valid {
		var data map[string]any
		if err := json.Unmarshal(row.InspectionData.RawMessage, &data); err == nil {
			insp.Data = data
		}
	}
	return insp
}

// =============================================================================
// Operations
// =============================================================================

func (s *inspectionService) Create(ctx context.Context, companyID uuid.UUID, input CreateInspectionInput) (*domain.Inspection, error) {
	const op = "inspection.create"

	if input.EquipmentID == uuid.Nil {
		return nil, domain.Invalid(op, "equipment is required")
	}
	if input.TechnicianID == uuid.Nil {
		return nil, domain.Invalid(op, "technician is required")
	}

	row, err := s.queries.CreateInspection(ctx, repository.CreateInspectionParams{
		CompanyID:      companyID,
		EquipmentID:    input.EquipmentID,
		TechnicianID:   input.TechnicianID,
		CustomerName:   input.CustomerName,
		WorkOrderNo:    input.WorkOrderNo,
		InspectionDate: sql.NullTime{Time: input.InspectionDate, Valid: !input.InspectionDate.IsZero()},
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create inspection")
	}

	token, err := domain.NewQRToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate QR token")
	}
	if _, err := s.queries.CreateReport(ctx, repository.CreateReportParams{
		CompanyID:    companyID,
		InspectionID: row.ID,
		ReportCode:   newReportCode(),
		QRToken:      token,
		ReportStyle:  s.defaultStyle(ctx, input.EquipmentID),
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to create report row")
	}

	insp := inspectionFromRow(row)
	s.logger.Info("inspection created",
		"inspection_id", insp.ID,
		"equipment_id", input.EquipmentID,
	)
	return &insp, nil
}

func (s *inspectionService) Get(ctx context.Context, inspectionID, companyID uuid.UUID) (*domain.Inspection, error) {
	const op = "inspection.get"
	row, err := s.queries.GetInspectionByIDAndCompanyID(ctx, repository.GetInspectionByIDAndCompanyIDParams{
		ID:        inspectionID,
		CompanyID: companyID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "inspection", inspectionID.String())
		}
		return nil, domain.Internal(err, op, "failed to load inspection")
	}
	insp := inspectionFromRow(row)
	return &insp, nil
}

func (s *inspectionService) Save(ctx context.Context, companyID uuid.UUID, input SaveInspectionInput) (*domain.Inspection, error) {
	const op = "inspection.save"

	current, err := s.Get(ctx, input.InspectionID, companyID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.InspectionStatusApproved {
		return nil, domain.Conflict(op, "approved inspections cannot be modified")
	}

	raw, err := json.Marshal(input.Data)
	if err != nil {
		return nil, domain.Invalid(op, "inspection data is not serializable")
	}
	row, err := s.queries.SaveInspectionData(ctx, repository.SaveInspectionDataParams{
		ID:             input.InspectionID,
		InspectionData: pqtype.NullRawMessage{RawMessage: raw, Valid: input.Data != nil},
		PhotoURLs:      input.PhotoURLs,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to save inspection data")
	}

	// Every save rotates the QR token and clears stale artifacts so a
	// previously shared link cannot show superseded content.
	token, err := domain.NewQRToken()
	if err != nil {
		return nil, domain.Internal(err, op, "failed to generate QR token")
	}
	if _, err := s.queries.UpsertReportOnSave(ctx, repository.UpsertReportOnSaveParams{
		CompanyID:    companyID,
		InspectionID: input.InspectionID,
		ReportCode:   newReportCode(),
		QRToken:      token,
		DefaultStyle: s.defaultStyle(ctx, current.EquipmentID),
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to refresh report row")
	}

	insp := inspectionFromRow(row)
	return &insp, nil
}

func (s *inspectionService) Complete(ctx context.Context, inspectionID, companyID uuid.UUID) (*domain.Inspection, error) {
	const op = "inspection.complete"

	insp, err := s.Get(ctx, inspectionID, companyID)
	if err != nil {
		return nil, err
	}
	if insp.IsCompleted() {
		return nil, domain.Conflict(op, "inspection is already completed")
	}

	tpl := s.loadTemplate(ctx, insp.EquipmentID)
	if missing := domain.ValidateInspectionCompletion(tpl, insp.Data); len(missing) > 0 {
		return nil, domain.Conflict(op, fmt.Sprintf("required fields are missing: %v", missing))
	}

	if err := s.queries.SetInspectionStatus(ctx, repository.SetInspectionStatusParams{
		ID:     inspectionID,
		Status: string(domain.InspectionStatusCompleted),
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to update inspection status")
	}

	// The existing PDF no longer reflects the data; drop it and try to
	// rebuild in the background. Completion succeeds either way.
	if err := s.queries.InvalidateReportArtifacts(ctx, inspectionID); err != nil {
		s.logger.Warn("failed to invalidate report artifacts",
			"inspection_id", inspectionID,
			"error", err,
		)
	}
	if s.reports != nil {
		if rep, err := s.queries.GetReportByInspectionID(ctx, inspectionID); err == nil {
			go s.reports.RegenerateBestEffort(context.WithoutCancel(ctx), rep.ID)
		}
	}

	insp.Status = domain.InspectionStatusCompleted
	s.logger.Info("inspection completed", "inspection_id", inspectionID)
	return insp, nil
}

// =============================================================================
// Helpers
// =============================================================================

// newReportCode derives a human-facing report number from the current
// time. Uniqueness is not required; the report ID is the real key.
func newReportCode() string {
	return fmt.Sprintf("RPR-%s", time.Now().Format("20060102-150405"))
}

func (s *inspectionService) loadTemplate(ctx context.Context, equipmentID uuid.UUID) *domain.Template {
	raw, err := s.queries.GetEquipmentTemplate(ctx, equipmentID)
	if err != nil || !raw.Valid {
		return nil
	}
	return domain.ParseTemplate(raw.RawMessage)
}

// defaultStyle seeds the report style from the equipment template's
// settings, when present.
func (s *inspectionService) defaultStyle(ctx context.Context, equipmentID uuid.UUID) pqtype.NullRawMessage {
	tpl := s.loadTemplate(ctx, equipmentID)
	if tpl == nil || tpl.Settings.ReportStyle.Scale == "" {
		return pqtype.NullRawMessage{}
	}
	scale, ok := domain.NormalizeScale(tpl.Settings.ReportStyle.Scale)
	if !ok {
		return pqtype.NullRawMessage{}
	}
	raw, err := json.Marshal(map[string]string{"scale": string(scale)})
	if err != nil {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}
