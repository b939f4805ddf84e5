package domain

import (
	"time"

	"github.com/google/uuid"
)

// Technician is an authenticated field user. The signature PIN is kept out
// of this type on purpose: it never leaves the repository layer.
type Technician struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	FullName  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
