package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

// Report mirrors one row of the reports table.
type Report struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	InspectionID    uuid.UUID
	ReportCode      string
	QRToken         string
	ReportStyle     pqtype.NullRawMessage
	UnsignedPDFPath sql.NullString
	SignedPDFPath   sql.NullString
	PDFGeneratedAt  sql.NullTime
	SignedAt        sql.NullTime
	SignedBy        uuid.NullUUID
	SentAt          sql.NullTime
	SentTo          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const reportColumns = `
	r.id, r.company_id, r.inspection_id, r.report_code, r.qr_token, r.report_style,
	r.unsigned_pdf_path, r.signed_pdf_path, r.pdf_generated_at,
	r.signed_at, r.signed_by, r.sent_at, r.sent_to, r.created_at, r.updated_at`

func scanReport(row *sql.Row) (Report, error) {
	var r Report
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.InspectionID, &r.ReportCode, &r.QRToken, &r.ReportStyle,
		&r.UnsignedPDFPath, &r.SignedPDFPath, &r.PDFGeneratedAt,
		&r.SignedAt, &r.SignedBy, &r.SentAt, &r.SentTo, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

type CreateReportParams struct {
	CompanyID    uuid.UUID
	InspectionID uuid.UUID
	ReportCode   string
	QRToken      string
	ReportStyle  pqtype.NullRawMessage
}

func (q *Queries) CreateReport(ctx context.Context, arg CreateReportParams) (Report, error) {
	row := q.db.QueryRowContext(ctx, `
INSERT INTO reports AS r (company_id, inspection_id, report_code, qr_token, report_style)
VALUES ($1, $2, $3, $4, COALESCE($5, '{}'::jsonb))
RETURNING`+reportColumns,
		arg.CompanyID, arg.InspectionID, arg.ReportCode, arg.QRToken, arg.ReportStyle,
	)
	return scanReport(row)
}

func (q *Queries) GetReportByIDAndCompanyID(ctx context.Context, id, companyID uuid.UUID) (Report, error) {
	row := q.db.QueryRowContext(ctx, `
SELECT`+reportColumns+`
FROM reports r
WHERE r.id = $1 AND r.company_id = $2`,
		id, companyID,
	)
	return scanReport(row)
}

func (q *Queries) GetReportByInspectionID(ctx context.Context, inspectionID uuid.UUID) (Report, error) {
	row := q.db.QueryRowContext(ctx, `
SELECT`+reportColumns+`
FROM reports r
WHERE r.inspection_id = $1`,
		inspectionID,
	)
	return scanReport(row)
}

type UpsertReportOnSaveParams struct {
	CompanyID    uuid.UUID
	InspectionID uuid.UUID
	ReportCode   string
	QRToken      string
	DefaultStyle pqtype.NullRawMessage
}

// UpsertReportOnSave creates or refreshes the report row after an
// inspection save: the QR token is regenerated, every PDF and signature
// field is cleared, and the style document is seeded from the template
// default only when it has never been set.
func (q *Queries) UpsertReportOnSave(ctx context.Context, arg UpsertReportOnSaveParams) (Report, error) {
	row := q.db.QueryRowContext(ctx, `
INSERT INTO reports AS r (company_id, inspection_id, report_code, qr_token, report_style)
VALUES ($1, $2, $3, $4, COALESCE($5, '{}'::jsonb))
ON CONFLICT (inspection_id) DO UPDATE SET
	qr_token = EXCLUDED.qr_token,
	report_style = CASE
		WHEN r.report_style IS NULL OR r.report_style = '{}'::jsonb
		THEN COALESCE($5, '{}'::jsonb)
		ELSE r.report_style
	END,
	unsigned_pdf_path = NULL,
	signed_pdf_path = NULL,
	pdf_generated_at = NULL,
	signed_at = NULL,
	signed_by = NULL,
	updated_at = now()
RETURNING`+reportColumns,
		arg.CompanyID, arg.InspectionID, arg.ReportCode, arg.QRToken, arg.DefaultStyle,
	)
	return scanReport(row)
}

// InvalidateReportArtifacts clears the PDF and signature fields after the
// underlying inspection content changed. The stored files are stale once
// this runs; the paths must not be served again.
func (q *Queries) InvalidateReportArtifacts(ctx context.Context, inspectionID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE reports SET
	unsigned_pdf_path = NULL,
	signed_pdf_path = NULL,
	pdf_generated_at = NULL,
	signed_at = NULL,
	signed_by = NULL,
	updated_at = now()
WHERE inspection_id = $1`,
		inspectionID,
	)
	return err
}

type SetUnsignedPDFPathParams struct {
	ID   uuid.UUID
	Path string
}

func (q *Queries) SetUnsignedPDFPath(ctx context.Context, arg SetUnsignedPDFPathParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE reports SET
	unsigned_pdf_path = $2,
	pdf_generated_at = now(),
	updated_at = now()
WHERE id = $1`,
		arg.ID, arg.Path,
	)
	return err
}

type MarkReportSignedParams struct {
	ID            uuid.UUID
	SignedPDFPath string
	SignedBy      uuid.UUID
}

func (q *Queries) MarkReportSigned(ctx context.Context, arg MarkReportSignedParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE reports SET
	signed_pdf_path = $2,
	signed_at = now(),
	signed_by = $3,
	updated_at = now()
WHERE id = $1`,
		arg.ID, arg.SignedPDFPath, arg.SignedBy,
	)
	return err
}

type UpdateReportStyleParams struct {
	ID          uuid.UUID
	ReportStyle pqtype.NullRawMessage
}

func (q *Queries) UpdateReportStyle(ctx context.Context, arg UpdateReportStyleParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE reports SET
	report_style = COALESCE($2, '{}'::jsonb),
	updated_at = now()
WHERE id = $1`,
		arg.ID, arg.ReportStyle,
	)
	return err
}

type MarkReportSentParams struct {
	ID     uuid.UUID
	SentTo string
}

func (q *Queries) MarkReportSent(ctx context.Context, arg MarkReportSentParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE reports SET
	sent_at = now(),
	sent_to = $2,
	updated_at = now()
WHERE id = $1`,
		arg.ID, arg.SentTo,
	)
	return err
}

// ReportDetailRow carries a report joined with its inspection, equipment,
// technician, and company fields — everything the renderer consumes.
type ReportDetailRow struct {
	Report
	InspectionStatus string
	CustomerName     string
	WorkOrderNo      string
	InspectionDate   sql.NullTime
	StartTime        string
	EndTime          string
	InspectionData   pqtype.NullRawMessage
	PhotoURLs        []string
	EquipmentName    string
	EquipmentType    string
	SerialNumber     string
	Template         pqtype.NullRawMessage
	TechnicianName   string
	CompanyName      string
}

const reportDetailQuery = `
SELECT` + reportColumns + `,
	i.status, i.customer_name, i.work_order_no, i.inspection_date,
	i.start_time, i.end_time, i.inspection_data, i.photo_urls,
	e.name, e.equipment_type, e.serial_number, e.template,
	t.full_name, c.name
FROM reports r
JOIN inspections i ON i.id = r.inspection_id
JOIN equipment e ON e.id = i.equipment_id
JOIN technicians t ON t.id = i.technician_id
JOIN companies c ON c.id = r.company_id
`

func scanReportDetail(row *sql.Row) (ReportDetailRow, error) {
	var d ReportDetailRow
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.InspectionID, &d.ReportCode, &d.QRToken, &d.ReportStyle,
		&d.UnsignedPDFPath, &d.SignedPDFPath, &d.PDFGeneratedAt,
		&d.SignedAt, &d.SignedBy, &d.SentAt, &d.SentTo, &d.CreatedAt, &d.UpdatedAt,
		&d.InspectionStatus, &d.CustomerName, &d.WorkOrderNo, &d.InspectionDate,
		&d.StartTime, &d.EndTime, &d.InspectionData, pq.Array(&d.PhotoURLs),
		&d.EquipmentName, &d.EquipmentType, &d.SerialNumber, &d.Template,
		&d.TechnicianName, &d.CompanyName,
	)
	return d, err
}

type GetReportDetailByIDAndCompanyIDParams struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
}

func (q *Queries) GetReportDetailByIDAndCompanyID(ctx context.Context, arg GetReportDetailByIDAndCompanyIDParams) (ReportDetailRow, error) {
	row := q.db.QueryRowContext(ctx, reportDetailQuery+`WHERE r.id = $1 AND r.company_id = $2`,
		arg.ID, arg.CompanyID,
	)
	return scanReportDetail(row)
}

func (q *Queries) GetReportDetailByID(ctx context.Context, id uuid.UUID) (ReportDetailRow, error) {
	row := q.db.QueryRowContext(ctx, reportDetailQuery+`WHERE r.id = $1`, id)
	return scanReportDetail(row)
}

func (q *Queries) GetReportDetailByQRToken(ctx context.Context, qrToken string) (ReportDetailRow, error) {
	row := q.db.QueryRowContext(ctx, reportDetailQuery+`WHERE r.qr_token = $1`, qrToken)
	return scanReportDetail(row)
}
