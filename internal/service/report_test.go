package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspekta-io/inspekta/internal/domain"
	"github.com/inspekta-io/inspekta/internal/repository"
	"github.com/inspekta-io/inspekta/internal/storage"
)

// =============================================================================
// Stub Queries
// =============================================================================

// stubQueries is an in-memory ReportQueries. Reads serve the configured
// rows; writes are recorded so tests can assert what was (not) persisted.
type stubQueries struct {
	report     repository.Report
	reportErr  error
	detail     repository.ReportDetailRow
	detailErr  error
	technician repository.Technician
	techErr    error

	activeJob    repository.ReportJob
	activeJobErr error

	createdJobs   []repository.CreateReportJobParams
	signedCalls   []repository.MarkReportSignedParams
	sentCalls     []repository.MarkReportSentParams
	unsignedPaths []repository.SetUnsignedPDFPathParams
}

func (q *stubQueries) GetReportByIDAndCompanyID(_ context.Context, _, _ uuid.UUID) (repository.Report, error) {
	return q.report, q.reportErr
}

func (q *stubQueries) GetReportDetailByIDAndCompanyID(_ context.Context, _ repository.GetReportDetailByIDAndCompanyIDParams) (repository.ReportDetailRow, error) {
	return q.detail, q.detailErr
}

func (q *stubQueries) GetReportDetailByID(_ context.Context, _ uuid.UUID) (repository.ReportDetailRow, error) {
	return q.detail, q.detailErr
}

func (q *stubQueries) GetReportDetailByQRToken(_ context.Context, _ string) (repository.ReportDetailRow, error) {
	return q.detail, q.detailErr
}

func (q *stubQueries) SetUnsignedPDFPath(_ context.Context, arg repository.SetUnsignedPDFPathParams) error {
	q.unsignedPaths = append(q.unsignedPaths, arg)
	return nil
}

func (q *stubQueries) MarkReportSigned(_ context.Context, arg repository.MarkReportSignedParams) error {
	q.signedCalls = append(q.signedCalls, arg)
	return nil
}

func (q *stubQueries) MarkReportSent(_ context.Context, arg repository.MarkReportSentParams) error {
	q.sentCalls = append(q.sentCalls, arg)
	return nil
}

func (q *stubQueries) UpdateReportStyle(_ context.Context, _ repository.UpdateReportStyleParams) error {
	return nil
}

func (q *stubQueries) CreateReportJob(_ context.Context, arg repository.CreateReportJobParams) (repository.ReportJob, error) {
	q.createdJobs = append(q.createdJobs, arg)
	job := repository.ReportJob{
		ID:          uuid.New(),
		ReportID:    arg.ReportID,
		Status:      string(domain.JobStatusPending),
		Priority:    arg.Priority,
		MaxAttempts: arg.MaxAttempts,
		CreatedAt:   time.Now(),
	}
	// The freshly inserted job is now the active one.
	q.activeJob = job
	q.activeJobErr = nil
	return job, nil
}

func (q *stubQueries) GetReportJobByID(_ context.Context, _ uuid.UUID) (repository.ReportJob, error) {
	return q.activeJob, q.activeJobErr
}

func (q *stubQueries) GetActiveJobByReportID(_ context.Context, _ uuid.UUID) (repository.ReportJob, error) {
	return q.activeJob, q.activeJobErr
}

func (q *stubQueries) GetTechnicianByID(_ context.Context, _ uuid.UUID) (repository.Technician, error) {
	return q.technician, q.techErr
}

// =============================================================================
// Helpers
// =============================================================================

func newTestReportService(t *testing.T, q *stubQueries) (*reportService, *storage.ArtifactStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	artifacts, err := storage.NewArtifactStore(t.TempDir(), 1024*1024, logger)
	require.NoError(t, err)
	svc := NewReportService(q, artifacts, nil, nil, nil, "https://dogrula.example.com", 3, logger)
	return svc.(*reportService), artifacts
}

func testDetailRow(reportID, companyID uuid.UUID, status domain.InspectionStatus) repository.ReportDetailRow {
	row := repository.ReportDetailRow{
		InspectionStatus: string(status),
		CustomerName:     "Acme İnşaat",
		WorkOrderNo:      "WO-42",
		InspectionDate:   sql.NullTime{Time: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC), Valid: true},
		EquipmentName:    "Kule Vinç",
		EquipmentType:    "Vinç",
		SerialNumber:     "SN-0042",
		TechnicianName:   "Mehmet Demir",
		CompanyName:      "Inspekta Muayene",
	}
	row.Report = repository.Report{
		ID:           reportID,
		CompanyID:    companyID,
		InspectionID: uuid.New(),
		ReportCode:   "RPT-2026-0001",
		QRToken:      "a1b2c3d4e5f60718a1b2c3d4e5f60718",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	return row
}

var pdfPayload = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

// =============================================================================
// Signing
// =============================================================================

func TestReportService_Sign_AlreadySignedConflict(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()
	technicianID := uuid.New()

	detail := testDetailRow(reportID, companyID, domain.InspectionStatusCompleted)
	detail.SignedPDFPath = sql.NullString{String: "/tmp/signed.pdf", Valid: true}
	detail.SignedAt = sql.NullTime{Time: time.Now(), Valid: true}
	detail.SignedBy = uuid.NullUUID{UUID: technicianID, Valid: true}

	q := &stubQueries{
		detail: detail,
		technician: repository.Technician{
			ID:           technicianID,
			CompanyID:    companyID,
			SignaturePIN: "1234",
		},
	}
	svc, _ := newTestReportService(t, q)

	payload := base64.StdEncoding.EncodeToString(pdfPayload)
	_, err := svc.Sign(context.Background(), reportID, companyID, technicianID, "1234", payload)

	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	// The existing signature must be left untouched.
	assert.Empty(t, q.signedCalls)
}

func TestReportService_Sign_WrongPIN(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()
	technicianID := uuid.New()

	q := &stubQueries{
		detail: testDetailRow(reportID, companyID, domain.InspectionStatusCompleted),
		technician: repository.Technician{
			ID:           technicianID,
			CompanyID:    companyID,
			SignaturePIN: "1234",
		},
	}
	svc, _ := newTestReportService(t, q)

	payload := base64.StdEncoding.EncodeToString(pdfPayload)
	_, err := svc.Sign(context.Background(), reportID, companyID, technicianID, "9999", payload)

	require.Error(t, err)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
	assert.Empty(t, q.signedCalls)
}

func TestReportService_Sign_StoresSignedArtifact(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()
	technicianID := uuid.New()

	q := &stubQueries{
		detail: testDetailRow(reportID, companyID, domain.InspectionStatusCompleted),
		report: repository.Report{ID: reportID, CompanyID: companyID},
		technician: repository.Technician{
			ID:           technicianID,
			CompanyID:    companyID,
			SignaturePIN: "1234",
		},
	}
	svc, artifacts := newTestReportService(t, q)

	payload := base64.StdEncoding.EncodeToString(pdfPayload)
	_, err := svc.Sign(context.Background(), reportID, companyID, technicianID, "1234", payload)
	require.NoError(t, err)

	require.Len(t, q.signedCalls, 1)
	assert.Equal(t, reportID, q.signedCalls[0].ID)
	assert.Equal(t, technicianID, q.signedCalls[0].SignedBy)
	assert.Equal(t, artifacts.SignedPath(reportID), q.signedCalls[0].SignedPDFPath)
	assert.True(t, artifacts.Exists(artifacts.SignedPath(reportID)))
}

// =============================================================================
// Async Enqueue
// =============================================================================

func TestReportService_Enqueue_DeduplicatesActiveJob(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()

	q := &stubQueries{
		report:       repository.Report{ID: reportID, CompanyID: companyID},
		activeJobErr: sql.ErrNoRows,
	}
	svc, _ := newTestReportService(t, q)

	first, err := svc.Enqueue(context.Background(), reportID, companyID)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, domain.JobStatusPending, first.Job.Status)

	second, err := svc.Enqueue(context.Background(), reportID, companyID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Job.ID, second.Job.ID)

	// Only one insert reached the database.
	assert.Len(t, q.createdJobs, 1)
}

func TestReportService_Enqueue_UsesConfiguredMaxAttempts(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()

	q := &stubQueries{
		report:       repository.Report{ID: reportID, CompanyID: companyID},
		activeJobErr: sql.ErrNoRows,
	}
	svc, _ := newTestReportService(t, q)

	result, err := svc.Enqueue(context.Background(), reportID, companyID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Job.MaxAttempts)
}

// =============================================================================
// Download Resolution
// =============================================================================

func TestReportService_Download_SignedFallsBackToUnsigned(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()

	q := &stubQueries{}
	svc, artifacts := newTestReportService(t, q)

	unsigned := artifacts.UnsignedPath(reportID)
	require.NoError(t, artifacts.WriteAtomic(unsigned, pdfPayload))

	detail := testDetailRow(reportID, companyID, domain.InspectionStatusCompleted)
	detail.UnsignedPDFPath = sql.NullString{String: unsigned, Valid: true}
	// A signed path is recorded but the artifact is gone.
	detail.SignedPDFPath = sql.NullString{String: artifacts.SignedPath(reportID), Valid: true}
	q.detail = detail

	result, err := svc.Download(context.Background(), reportID, companyID, true)
	require.NoError(t, err)

	assert.False(t, result.Signed)
	assert.Equal(t, unsigned, result.Path)
	assert.Equal(t, "Kule Vinç_WO-42_2026-02-10.pdf", result.Filename)
	assert.NotContains(t, result.Filename, "_signed")
}

func TestReportService_Download_SignedFilenameSuffix(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()

	q := &stubQueries{}
	svc, artifacts := newTestReportService(t, q)

	signed := artifacts.SignedPath(reportID)
	require.NoError(t, artifacts.WriteAtomic(signed, pdfPayload))

	detail := testDetailRow(reportID, companyID, domain.InspectionStatusCompleted)
	detail.SignedPDFPath = sql.NullString{String: signed, Valid: true}
	q.detail = detail

	result, err := svc.Download(context.Background(), reportID, companyID, true)
	require.NoError(t, err)

	assert.True(t, result.Signed)
	assert.Equal(t, "Kule Vinç_WO-42_2026-02-10_signed.pdf", result.Filename)
}

func TestReportService_Download_RepairsBase64Artifact(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()

	q := &stubQueries{}
	svc, artifacts := newTestReportService(t, q)

	// The artifact on disk is the PDF base64-wrapped, as a buggy writer
	// would leave it.
	unsigned := artifacts.UnsignedPath(reportID)
	wrapped := []byte(base64.StdEncoding.EncodeToString(pdfPayload))
	require.NoError(t, artifacts.WriteAtomic(unsigned, wrapped))

	detail := testDetailRow(reportID, companyID, domain.InspectionStatusCompleted)
	detail.UnsignedPDFPath = sql.NullString{String: unsigned, Valid: true}
	q.detail = detail

	result, err := svc.Download(context.Background(), reportID, companyID, false)
	require.NoError(t, err)
	assert.Equal(t, unsigned, result.Path)

	repaired, err := os.ReadFile(unsigned)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(repaired), "%PDF-"))
}

func TestReportService_Download_CorruptSignedIsHardError(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()

	q := &stubQueries{}
	svc, artifacts := newTestReportService(t, q)

	// Not a PDF and not base64 of one; a signed artifact cannot be
	// regenerated, so the download must fail.
	signed := artifacts.SignedPath(reportID)
	require.NoError(t, artifacts.WriteAtomic(signed, []byte("<html>not a pdf</html>")))

	detail := testDetailRow(reportID, companyID, domain.InspectionStatusCompleted)
	detail.SignedPDFPath = sql.NullString{String: signed, Valid: true}
	q.detail = detail

	_, err := svc.Download(context.Background(), reportID, companyID, true)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALIDPDF, domain.ErrorCode(err))
}

// =============================================================================
// Public QR View
// =============================================================================

func TestReportService_Public_AttachesQR(t *testing.T) {
	reportID := uuid.New()
	companyID := uuid.New()

	q := &stubQueries{detail: testDetailRow(reportID, companyID, domain.InspectionStatusCompleted)}
	svc, _ := newTestReportService(t, q)

	rc, err := svc.Public(context.Background(), q.detail.QRToken)
	require.NoError(t, err)

	assert.Equal(t, "https://dogrula.example.com/reports/public/"+q.detail.QRToken, rc.QRPublicURL)
	assert.True(t, strings.HasPrefix(rc.QRCodeDataURL, "data:image/png;base64,"))
}
