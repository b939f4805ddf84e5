// Package service contains the business logic layer.
//
// This file implements the report lifecycle: rendering, PDF generation,
// artifact resolution and repair, signing, and the public QR surface.
package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/inspekta-io/inspekta/internal/domain"
	"github.com/inspekta-io/inspekta/internal/metrics"
	"github.com/inspekta-io/inspekta/internal/pdf"
	"github.com/inspekta-io/inspekta/internal/report"
	"github.com/inspekta-io/inspekta/internal/repository"
	"github.com/inspekta-io/inspekta/internal/storage"
)

// photoURLTTL bounds the lifetime of presigned photo links embedded in a
// rendered document. Rendering happens immediately after, so one hour is
// plenty.
const photoURLTTL = time.Hour

// =============================================================================
// Interface Definition
// =============================================================================

// DownloadResult describes a resolved PDF artifact ready to stream.
type DownloadResult struct {
	Path     string // absolute path of the validated artifact
	Signed   bool   // whether the signed variant is being delivered
	Filename string // raw suggested filename, pre-sanitization
}

// EnqueueResult reports the outcome of an async prepare request.
type EnqueueResult struct {
	Job     domain.ReportJob
	Created bool // false when an active job already existed
}

// ReportService defines the report lifecycle operations.
type ReportService interface {
	// Get returns the full render context for a report, QR fields attached.
	Get(ctx context.Context, reportID, companyID uuid.UUID) (*domain.ReportContext, error)

	// Prepare regenerates the unsigned PDF synchronously and fails loudly
	// when rendering does.
	Prepare(ctx context.Context, reportID, companyID uuid.UUID) error

	// Enqueue requests async regeneration, deduplicating against an
	// existing pending or processing job for the same report.
	Enqueue(ctx context.Context, reportID, companyID uuid.UUID) (*EnqueueResult, error)

	// JobStatus returns a snapshot of an async job.
	JobStatus(ctx context.Context, jobID uuid.UUID) (*domain.ReportJob, error)

	// Download resolves, validates, and if needed repairs or regenerates
	// the requested artifact.
	Download(ctx context.Context, reportID, companyID uuid.UUID, preferSigned bool) (*DownloadResult, error)

	// DownloadPublic is Download keyed by QR token, unauthenticated.
	DownloadPublic(ctx context.Context, qrToken string, preferSigned bool) (*DownloadResult, error)

	// Public returns the render context for the unauthenticated QR view.
	Public(ctx context.Context, qrToken string) (*domain.ReportContext, error)

	// SigningData returns the unsigned PDF base64 encoded for external
	// signing tools. The inspection must be completed.
	SigningData(ctx context.Context, reportID, companyID uuid.UUID) (string, error)

	// Sign verifies the technician's PIN and persists the externally
	// signed PDF.
	Sign(ctx context.Context, reportID, companyID, technicianID uuid.UUID, pin, signedPDFBase64 string) (*domain.Report, error)

	// Send emails the signed report to the recipient and records sent_at.
	Send(ctx context.Context, reportID, companyID uuid.UUID, recipient string) error

	// UpdateStyle merges a style patch and/or scale change into the
	// report's style document.
	UpdateStyle(ctx context.Context, reportID, companyID uuid.UUID, scale *string, patch map[string]any) (json.RawMessage, error)

	// GenerateForJob regenerates the unsigned PDF for a claimed job; the
	// worker is the only caller.
	GenerateForJob(ctx context.Context, reportID uuid.UUID) error

	// RegenerateBestEffort regenerates the unsigned PDF and swallows any
	// failure; used after inspection completion where the triggering
	// operation must still succeed.
	RegenerateBestEffort(ctx context.Context, reportID uuid.UUID)
}

// ReportSender delivers a finished report to a recipient.
type ReportSender interface {
	SendReportEmail(ctx context.Context, to, companyName, reportCode string, pdfPath string) error
}

// ReportQueries is the slice of the repository surface the report
// lifecycle touches. *repository.Queries satisfies it; tests substitute
// an in-memory stub.
type ReportQueries interface {
	GetReportByIDAndCompanyID(ctx context.Context, id, companyID uuid.UUID) (repository.Report, error)
	GetReportDetailByIDAndCompanyID(ctx context.Context, arg repository.GetReportDetailByIDAndCompanyIDParams) (repository.ReportDetailRow, error)
	GetReportDetailByID(ctx context.Context, id uuid.UUID) (repository.ReportDetailRow, error)
	GetReportDetailByQRToken(ctx context.Context, qrToken string) (repository.ReportDetailRow, error)
	SetUnsignedPDFPath(ctx context.Context, arg repository.SetUnsignedPDFPathParams) error
	MarkReportSigned(ctx context.Context, arg repository.MarkReportSignedParams) error
	MarkReportSent(ctx context.Context, arg repository.MarkReportSentParams) error
	UpdateReportStyle(ctx context.Context, arg repository.UpdateReportStyleParams) error
	CreateReportJob(ctx context.Context, arg repository.CreateReportJobParams) (repository.ReportJob, error)
	GetReportJobByID(ctx context.Context, id uuid.UUID) (repository.ReportJob, error)
	GetActiveJobByReportID(ctx context.Context, reportID uuid.UUID) (repository.ReportJob, error)
	GetTechnicianByID(ctx context.Context, id uuid.UUID) (repository.Technician, error)
}

// =============================================================================
// Implementation
// =============================================================================

type reportService struct {
	queries        ReportQueries
	artifacts      *storage.ArtifactStore
	photos         storage.Storage
	engine         *pdf.Engine
	sender         ReportSender
	publicURL      string
	jobMaxAttempts int
	logger         *slog.Logger
}

// NewReportService creates a new ReportService. sender may be nil when
// outbound email is not configured; Send then reports a validation error.
func NewReportService(
	queries ReportQueries,
	artifacts *storage.ArtifactStore,
	photos storage.Storage,
	engine *pdf.Engine,
	sender ReportSender,
	publicBaseURL string,
	jobMaxAttempts int,
	logger *slog.Logger,
) ReportService {
	if jobMaxAttempts < 1 {
		jobMaxAttempts = 3
	}
	return &reportService{
		queries:        queries,
		artifacts:      artifacts,
		photos:         photos,
		engine:         engine,
		sender:         sender,
		publicURL:      publicBaseURL,
		jobMaxAttempts: jobMaxAttempts,
		logger:         logger,
	}
}

// =============================================================================
// Context Assembly
// =============================================================================

func reportFromRow(row repository.Report) domain.Report {
	r := domain.Report{
		ID:           row.ID,
		CompanyID:    row.CompanyID,
		InspectionID: row.InspectionID,
		ReportCode:   row.ReportCode,
		QRToken:      row.QRToken,
		SentTo:       row.SentTo,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.ReportStyle.Valid {
		r.Style = row.ReportStyle.RawMessage
	}
	if row.UnsignedPDFPath.Valid {
		r.UnsignedPDFPath = row.UnsignedPDFPath.String
	}
	if row.SignedPDFPath.Valid {
		r.SignedPDFPath = row.SignedPDFPath.String
	}
	if row.PDFGeneratedAt.Valid {
		t := row.PDFGeneratedAt.Time
		r.PDFGeneratedAt = &t
	}
	if row.SignedAt.Valid {
		t := row.SignedAt.Time
		r.SignedAt = &t
	}
	if row.SignedBy.Valid {
		id := row.SignedBy.UUID
		r.SignedBy = &id
	}
	if row.SentAt.Valid {
		t := row.SentAt.Time
		r.SentAt = &t
	}
	return r
}

func contextFromDetail(row repository.ReportDetailRow) *domain.ReportContext {
	rc := &domain.ReportContext{
		Report:           reportFromRow(row.Report),
		InspectionStatus: domain.InspectionStatus(row.InspectionStatus),
		CustomerName:     row.CustomerName,
		WorkOrderNo:      row.WorkOrderNo,
		StartTime:        row.StartTime,
		EndTime:          row.EndTime,
		PhotoURLs:        row.PhotoURLs,
		EquipmentName:    row.EquipmentName,
		EquipmentType:    row.EquipmentType,
		SerialNumber:     row.SerialNumber,
		TechnicianName:   row.TechnicianName,
		CompanyName:      row.CompanyName,
	}
	if row.InspectionDate.Valid {
		t := row.InspectionDate.Time
		rc.InspectionDate = &t
	}
	if row.InspectionData.Valid {
		var data map[string]any
		if err := json.Unmarshal(row.InspectionData.RawMessage, &data); err == nil {
			rc.InspectionData = data
		}
	}
	if row.Template.Valid {
		rc.Template = domain.ParseTemplate(row.Template.RawMessage)
	}
	return rc
}

// attachQR derives the public verification URL and QR image for a render
// context. QR generation failure is logged and leaves the plain-token
// footer fallback in place.
func (s *reportService) attachQR(rc *domain.ReportContext) {
	if rc.QRToken == "" {
		return
	}
	rc.QRPublicURL = report.PublicVerificationURL(s.publicURL, rc.QRToken)
	dataURL, err := report.QRCodeDataURL(rc.QRPublicURL)
	if err != nil {
		s.logger.Error("qr code generation failed",
			"report_id", rc.Report.ID,
			"error", err,
		)
		return
	}
	rc.QRCodeDataURL = dataURL
}

// resolvePhotoURLs swaps stored photo keys for presigned URLs so the
// browser rendering the document can actually fetch them. Values that are
// already absolute URLs pass through untouched.
func (s *reportService) resolvePhotoURLs(ctx context.Context, rc *domain.ReportContext) {
	if s.photos == nil || len(rc.PhotoURLs) == 0 {
		return
	}
	resolved := make([]string, len(rc.PhotoURLs))
	for i, key := range rc.PhotoURLs {
		if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") || strings.HasPrefix(key, "data:") {
			resolved[i] = key
			continue
		}
		url, err := s.photos.URL(ctx, key, photoURLTTL)
		if err != nil {
			s.logger.Warn("failed to resolve photo url",
				"report_id", rc.Report.ID,
				"key", key,
				"error", err,
			)
			resolved[i] = key
			continue
		}
		resolved[i] = url
	}
	rc.PhotoURLs = resolved
}

func (s *reportService) buildHTML(ctx context.Context, rc *domain.ReportContext) string {
	s.attachQR(rc)
	s.resolvePhotoURLs(ctx, rc)
	return report.BuildHTML(rc)
}

func (s *reportService) fetchDetail(ctx context.Context, op string, reportID, companyID uuid.UUID) (*domain.ReportContext, error) {
	row, err := s.queries.GetReportDetailByIDAndCompanyID(ctx, repository.GetReportDetailByIDAndCompanyIDParams{
		ID:        reportID,
		CompanyID: companyID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "report", reportID.String())
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}
	return contextFromDetail(row), nil
}

// =============================================================================
// Read Operations
// =============================================================================

func (s *reportService) Get(ctx context.Context, reportID, companyID uuid.UUID) (*domain.ReportContext, error) {
	const op = "report.get"
	rc, err := s.fetchDetail(ctx, op, reportID, companyID)
	if err != nil {
		return nil, err
	}
	s.attachQR(rc)
	return rc, nil
}

func (s *reportService) Public(ctx context.Context, qrToken string) (*domain.ReportContext, error) {
	const op = "report.public"
	row, err := s.queries.GetReportDetailByQRToken(ctx, qrToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENOTFOUND, op, "report not found")
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}
	rc := contextFromDetail(row)
	s.attachQR(rc)
	return rc, nil
}

func (s *reportService) JobStatus(ctx context.Context, jobID uuid.UUID) (*domain.ReportJob, error) {
	const op = "report.job_status"
	row, err := s.queries.GetReportJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "job", jobID.String())
		}
		return nil, domain.Internal(err, op, "failed to load job")
	}
	job := jobFromRow(row)
	return &job, nil
}

func jobFromRow(row repository.ReportJob) domain.ReportJob {
	j := domain.ReportJob{
		ID:          row.ID,
		ReportID:    row.ReportID,
		Status:      domain.JobStatus(row.Status),
		Priority:    row.Priority,
		Attempts:    row.Attempts,
		MaxAttempts: row.MaxAttempts,
		CreatedAt:   row.CreatedAt,
	}
	if row.LastError.Valid {
		j.LastError = row.LastError.String
	}
	if row.StartedAt.Valid {
		t := row.StartedAt.Time
		j.StartedAt = &t
	}
	if row.FinishedAt.Valid {
		t := row.FinishedAt.Time
		j.FinishedAt = &t
	}
	return j
}

// =============================================================================
// Generation
// =============================================================================

// regenerateUnsigned renders the document, prints it, atomically writes
// the unsigned artifact, and persists its path. Returns the path written.
func (s *reportService) regenerateUnsigned(ctx context.Context, rc *domain.ReportContext, htmlCache string) (string, error) {
	html := htmlCache
	if html == "" {
		html = s.buildHTML(ctx, rc)
	}

	start := time.Now()
	buf, err := s.engine.Render(ctx, html)
	if err != nil {
		metrics.RecordPDFRender("error", time.Since(start))
		return "", fmt.Errorf("render pdf: %w", err)
	}
	metrics.RecordPDFRender("success", time.Since(start))

	out := s.artifacts.UnsignedPath(rc.Report.ID)
	if err := s.artifacts.WriteAtomic(out, buf); err != nil {
		return "", fmt.Errorf("write unsigned artifact: %w", err)
	}
	if err := s.queries.SetUnsignedPDFPath(ctx, repository.SetUnsignedPDFPathParams{
		ID:   rc.Report.ID,
		Path: out,
	}); err != nil {
		return "", fmt.Errorf("persist unsigned path: %w", err)
	}

	rc.UnsignedPDFPath = out
	s.logger.Info("unsigned report pdf generated",
		"report_id", rc.Report.ID,
		"path", out,
		"size_bytes", len(buf),
	)
	return out, nil
}

func (s *reportService) Prepare(ctx context.Context, reportID, companyID uuid.UUID) error {
	const op = "report.prepare"
	rc, err := s.fetchDetail(ctx, op, reportID, companyID)
	if err != nil {
		return err
	}
	if _, err := s.regenerateUnsigned(ctx, rc, ""); err != nil {
		return domain.Internal(err, op, "failed to generate report PDF")
	}
	return nil
}

func (s *reportService) GenerateForJob(ctx context.Context, reportID uuid.UUID) error {
	row, err := s.queries.GetReportDetailByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("report %s not found for job", reportID)
		}
		return fmt.Errorf("load report: %w", err)
	}
	rc := contextFromDetail(row)
	_, err = s.regenerateUnsigned(ctx, rc, "")
	return err
}

func (s *reportService) RegenerateBestEffort(ctx context.Context, reportID uuid.UUID) {
	row, err := s.queries.GetReportDetailByID(ctx, reportID)
	if err != nil {
		s.logger.Warn("best-effort pdf generation skipped, report not loadable",
			"report_id", reportID,
			"error", err,
		)
		return
	}
	rc := contextFromDetail(row)
	if _, err := s.regenerateUnsigned(ctx, rc, ""); err != nil {
		// Completion already succeeded; the PDF can be produced later via
		// prepare or the job queue.
		s.logger.Error("best-effort pdf generation failed",
			"report_id", reportID,
			"error", err,
		)
	}
}

// =============================================================================
// Async Queue Entry
// =============================================================================

func (s *reportService) Enqueue(ctx context.Context, reportID, companyID uuid.UUID) (*EnqueueResult, error) {
	const op = "report.enqueue"

	if _, err := s.queries.GetReportByIDAndCompanyID(ctx, reportID, companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "report", reportID.String())
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}

	// One active job per report: return the existing one instead of
	// stacking duplicates. Best effort, a racing insert can still slip
	// through between this check and the insert below.
	existing, err := s.queries.GetActiveJobByReportID(ctx, reportID)
	if err == nil {
		job := jobFromRow(existing)
		return &EnqueueResult{Job: job, Created: false}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "failed to check active jobs")
	}

	created, err := s.queries.CreateReportJob(ctx, repository.CreateReportJobParams{
		ReportID:    reportID,
		Priority:    domain.DefaultJobPriority,
		MaxAttempts: s.jobMaxAttempts,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to enqueue job")
	}
	metrics.RecordJobEnqueued()
	job := jobFromRow(created)
	return &EnqueueResult{Job: job, Created: true}, nil
}

// =============================================================================
// Download Resolution
// =============================================================================

// resolvePDF picks the artifact to serve: the signed file when preferred
// and present, else the unsigned file, regenerating the unsigned artifact
// when it is missing entirely.
func (s *reportService) resolvePDF(ctx context.Context, rc *domain.ReportContext, preferSigned bool) (string, bool, error) {
	if preferSigned && rc.SignedPDFPath != "" && s.artifacts.Exists(rc.SignedPDFPath) {
		return rc.SignedPDFPath, true, nil
	}
	if rc.UnsignedPDFPath != "" && s.artifacts.Exists(rc.UnsignedPDFPath) {
		return rc.UnsignedPDFPath, false, nil
	}
	path, err := s.regenerateUnsigned(ctx, rc, "")
	if err != nil {
		return "", false, err
	}
	return path, false, nil
}

// ensureValidPDF runs the integrity ladder on an artifact: magic-byte
// check, base64 unwrap repair, and, for unsigned artifacts only, full
// regeneration. A signed artifact that fails repair is a hard error; the
// signature cannot be fabricated.
func (s *reportService) ensureValidPDF(ctx context.Context, rc *domain.ReportContext, path string, canRegen bool) error {
	ok, err := s.artifacts.HasPDFMagic(path)
	if err == nil && ok {
		return nil
	}

	repaired, repairErr := s.artifacts.RepairBase64(path)
	if repairErr == nil && repaired {
		metrics.RecordPDFRepair("base64")
		return nil
	}

	if canRegen {
		if _, err := s.regenerateUnsigned(ctx, rc, ""); err == nil {
			metrics.RecordPDFRepair("regenerated")
			return nil
		}
	}
	return storage.ErrNotPDF
}

func (s *reportService) download(ctx context.Context, op string, rc *domain.ReportContext, preferSigned bool) (*DownloadResult, error) {
	path, signed, err := s.resolvePDF(ctx, rc, preferSigned)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to produce report PDF")
	}
	if !s.artifacts.Exists(path) {
		return nil, domain.Errorf(domain.ENOTFOUND, op, "report PDF not found")
	}

	if err := s.ensureValidPDF(ctx, rc, path, !signed); err != nil {
		return nil, domain.InvalidPDF(op, "report PDF is corrupt and could not be recovered")
	}

	return &DownloadResult{
		Path:     path,
		Signed:   signed,
		Filename: downloadFilename(rc, signed),
	}, nil
}

// downloadFilename builds the raw attachment name; HTTP-level
// sanitization happens in the handler.
func downloadFilename(rc *domain.ReportContext, signed bool) string {
	date := ""
	if rc.InspectionDate != nil {
		date = rc.InspectionDate.Format("2006-01-02")
	}
	suffix := ""
	if signed {
		suffix = "_signed"
	}
	return fmt.Sprintf("%s_%s_%s%s.pdf", rc.EquipmentName, rc.WorkOrderNo, date, suffix)
}

func (s *reportService) Download(ctx context.Context, reportID, companyID uuid.UUID, preferSigned bool) (*DownloadResult, error) {
	const op = "report.download"
	rc, err := s.fetchDetail(ctx, op, reportID, companyID)
	if err != nil {
		return nil, err
	}
	return s.download(ctx, op, rc, preferSigned)
}

func (s *reportService) DownloadPublic(ctx context.Context, qrToken string, preferSigned bool) (*DownloadResult, error) {
	const op = "report.download_public"
	row, err := s.queries.GetReportDetailByQRToken(ctx, qrToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENOTFOUND, op, "report not found")
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}
	return s.download(ctx, op, contextFromDetail(row), preferSigned)
}

// =============================================================================
// Signing
// =============================================================================

func (s *reportService) SigningData(ctx context.Context, reportID, companyID uuid.UUID) (string, error) {
	const op = "report.signing_data"
	rc, err := s.fetchDetail(ctx, op, reportID, companyID)
	if err != nil {
		return "", err
	}
	if rc.InspectionStatus != domain.InspectionStatusCompleted {
		return "", domain.Conflict(op, "only reports of completed inspections can be signed")
	}

	path, _, err := s.resolvePDF(ctx, rc, false)
	if err != nil {
		return "", domain.Internal(err, op, "failed to produce report PDF")
	}
	if !s.artifacts.Exists(path) {
		return "", domain.Errorf(domain.ENOTFOUND, op, "no PDF available for signing")
	}

	b64, err := s.artifacts.ReadBase64(path)
	if err != nil {
		return "", domain.Internal(err, op, "failed to read report PDF")
	}
	return b64, nil
}

func (s *reportService) Sign(ctx context.Context, reportID, companyID, technicianID uuid.UUID, pin, signedPDFBase64 string) (*domain.Report, error) {
	const op = "report.sign"

	technician, err := s.queries.GetTechnicianByID(ctx, technicianID)
	if err != nil || technician.CompanyID != companyID || technician.SignaturePIN != pin {
		// Indistinguishable on purpose: a missing technician and a wrong
		// PIN both read as a bad credential.
		return nil, domain.Unauthorized(op, "invalid e-signature PIN")
	}

	rc, err := s.fetchDetail(ctx, op, reportID, companyID)
	if err != nil {
		return nil, err
	}
	if rc.InspectionStatus != domain.InspectionStatusCompleted {
		return nil, domain.Conflict(op, "only reports of completed inspections can be signed")
	}
	if rc.Report.IsSigned() {
		return nil, domain.Conflict(op, "report is already signed")
	}

	signedBytes, err := base64.StdEncoding.DecodeString(signedPDFBase64)
	if err != nil || len(signedBytes) == 0 {
		return nil, domain.Invalid(op, "signed PDF payload is not valid base64")
	}

	out := s.artifacts.SignedPath(reportID)
	if err := s.artifacts.WriteAtomic(out, signedBytes); err != nil {
		return nil, domain.Internal(err, op, "failed to store signed PDF")
	}
	if err := s.queries.MarkReportSigned(ctx, repository.MarkReportSignedParams{
		ID:            reportID,
		SignedPDFPath: out,
		SignedBy:      technicianID,
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to record signature")
	}

	s.logger.Info("report signed",
		"report_id", reportID,
		"signed_by", technicianID,
	)

	row, err := s.queries.GetReportByIDAndCompanyID(ctx, reportID, companyID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to reload report")
	}
	signed := reportFromRow(row)
	return &signed, nil
}

// =============================================================================
// Sending
// =============================================================================

func (s *reportService) Send(ctx context.Context, reportID, companyID uuid.UUID, recipient string) error {
	const op = "report.send"
	if s.sender == nil {
		return domain.Invalid(op, "outbound email is not configured")
	}
	if recipient == "" {
		return domain.Invalid(op, "recipient email is required")
	}

	rc, err := s.fetchDetail(ctx, op, reportID, companyID)
	if err != nil {
		return err
	}
	if !rc.Report.IsSigned() {
		return domain.Conflict(op, "only signed reports can be sent")
	}
	if !s.artifacts.Exists(rc.SignedPDFPath) {
		return domain.Errorf(domain.ENOTFOUND, op, "signed report PDF not found")
	}

	if err := s.sender.SendReportEmail(ctx, recipient, rc.CompanyName, rc.ReportNumber(), rc.SignedPDFPath); err != nil {
		return domain.Internal(err, op, "failed to send report email")
	}
	if err := s.queries.MarkReportSent(ctx, repository.MarkReportSentParams{
		ID:     reportID,
		SentTo: recipient,
	}); err != nil {
		return domain.Internal(err, op, "failed to record sent state")
	}

	s.logger.Info("report sent", "report_id", reportID, "recipient", recipient)
	return nil
}

// =============================================================================
// Style
// =============================================================================

func (s *reportService) UpdateStyle(ctx context.Context, reportID, companyID uuid.UUID, scale *string, patch map[string]any) (json.RawMessage, error) {
	const op = "report.update_style"

	if scale == nil && patch == nil {
		return nil, domain.Invalid(op, "specify a style change (e.g. scale)")
	}

	row, err := s.queries.GetReportByIDAndCompanyID(ctx, reportID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "report", reportID.String())
		}
		return nil, domain.Internal(err, op, "failed to load report")
	}

	current := map[string]any{}
	if row.ReportStyle.Valid {
		// A corrupt style document starts over from empty rather than
		// blocking the update.
		_ = json.Unmarshal(row.ReportStyle.RawMessage, &current)
	}

	// Shallow merge: patch keys override existing ones.
	for k, v := range patch {
		current[k] = v
	}
	if scale != nil {
		current["scale"] = *scale
	}

	resolved, isString := current["scale"].(string)
	if _, present := current["scale"]; present && !isString {
		return nil, domain.Invalid(op, "scale must be a string")
	}
	if strings.TrimSpace(resolved) == "" {
		current["scale"] = string(domain.ScaleMedium)
	} else {
		normalized, ok := domain.NormalizeScale(resolved)
		if !ok {
			return nil, domain.Invalid(op, "invalid scale value, allowed values: small, medium, large")
		}
		current["scale"] = string(normalized)
	}

	merged, err := json.Marshal(current)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode style")
	}
	if err := s.queries.UpdateReportStyle(ctx, repository.UpdateReportStyleParams{
		ID:          reportID,
		ReportStyle: pqtype.NullRawMessage{RawMessage: merged, Valid: true},
	}); err != nil {
		return nil, domain.Internal(err, op, "failed to persist style")
	}
	return merged, nil
}
