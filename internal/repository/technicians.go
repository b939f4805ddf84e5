package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Technician mirrors one row of the technicians table.
type Technician struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	FullName     string
	Email        string
	SignaturePIN string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) GetTechnicianByID(ctx context.Context, id uuid.UUID) (Technician, error) {
	var t Technician
	err := q.db.QueryRowContext(ctx, `
SELECT id, company_id, full_name, email, signature_pin, created_at, updated_at
FROM technicians
WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.CompanyID, &t.FullName, &t.Email, &t.SignaturePIN, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (q *Queries) GetTechnicianByEmail(ctx context.Context, email string) (Technician, error) {
	var t Technician
	err := q.db.QueryRowContext(ctx, `
SELECT id, company_id, full_name, email, signature_pin, created_at, updated_at
FROM technicians
WHERE email = $1`,
		email,
	).Scan(&t.ID, &t.CompanyID, &t.FullName, &t.Email, &t.SignaturePIN, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
