package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

// Inspection mirrors one row of the inspections table.
type Inspection struct {
	ID             uuid.UUID
	CompanyID      uuid.UUID
	EquipmentID    uuid.UUID
	TechnicianID   uuid.UUID
	Status         string
	CustomerName   string
	WorkOrderNo    string
	InspectionDate sql.NullTime
	StartTime      string
	EndTime        string
	InspectionData pqtype.NullRawMessage
	PhotoURLs      []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const inspectionColumns = `
	id, company_id, equipment_id, technician_id, status,
	customer_name, work_order_no, inspection_date, start_time, end_time,
	inspection_data, photo_urls, created_at, updated_at`

func scanInspection(row *sql.Row) (Inspection, error) {
	var i Inspection
	err := row.Scan(
		&i.ID, &i.CompanyID, &i.EquipmentID, &i.TechnicianID, &i.Status,
		&i.CustomerName, &i.WorkOrderNo, &i.InspectionDate, &i.StartTime, &i.EndTime,
		&i.InspectionData, pq.Array(&i.PhotoURLs), &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

type CreateInspectionParams struct {
	CompanyID      uuid.UUID
	EquipmentID    uuid.UUID
	TechnicianID   uuid.UUID
	CustomerName   string
	WorkOrderNo    string
	InspectionDate sql.NullTime
	StartTime      string
	EndTime        string
}

func (q *Queries) CreateInspection(ctx context.Context, arg CreateInspectionParams) (Inspection, error) {
	row := q.db.QueryRowContext(ctx, `
INSERT INTO inspections (company_id, equipment_id, technician_id,
	customer_name, work_order_no, inspection_date, start_time, end_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING`+inspectionColumns,
		arg.CompanyID, arg.EquipmentID, arg.TechnicianID,
		arg.CustomerName, arg.WorkOrderNo, arg.InspectionDate, arg.StartTime, arg.EndTime,
	)
	return scanInspection(row)
}

type GetInspectionByIDAndCompanyIDParams struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
}

func (q *Queries) GetInspectionByIDAndCompanyID(ctx context.Context, arg GetInspectionByIDAndCompanyIDParams) (Inspection, error) {
	row := q.db.QueryRowContext(ctx, `
SELECT`+inspectionColumns+`
FROM inspections
WHERE id = $1 AND company_id = $2`,
		arg.ID, arg.CompanyID,
	)
	return scanInspection(row)
}

type SaveInspectionDataParams struct {
	ID             uuid.UUID
	InspectionData pqtype.NullRawMessage
	PhotoURLs      []string
}

// SaveInspectionData stores the technician's current form values and moves
// a not-started inspection into in_progress.
func (q *Queries) SaveInspectionData(ctx context.Context, arg SaveInspectionDataParams) (Inspection, error) {
	row := q.db.QueryRowContext(ctx, `
UPDATE inspections SET
	inspection_data = COALESCE($2, '{}'::jsonb),
	photo_urls = $3,
	status = CASE WHEN status = 'not_started' THEN 'in_progress' ELSE status END,
	updated_at = now()
WHERE id = $1
RETURNING`+inspectionColumns,
		arg.ID, arg.InspectionData, pq.Array(arg.PhotoURLs),
	)
	return scanInspection(row)
}

type SetInspectionStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) SetInspectionStatus(ctx context.Context, arg SetInspectionStatusParams) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE inspections SET
	status = $2,
	updated_at = now()
WHERE id = $1`,
		arg.ID, arg.Status,
	)
	return err
}

// GetEquipmentTemplate returns the template document embedded in an
// equipment row.
func (q *Queries) GetEquipmentTemplate(ctx context.Context, equipmentID uuid.UUID) (pqtype.NullRawMessage, error) {
	var tpl pqtype.NullRawMessage
	err := q.db.QueryRowContext(ctx, `
SELECT template FROM equipment WHERE id = $1`,
		equipmentID,
	).Scan(&tpl)
	return tpl, err
}
