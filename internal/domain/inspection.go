// Package domain contains core business types and interfaces.
//
// This file defines the Inspection domain type: the filled-in instance of
// an equipment template, produced by a technician in the field.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Inspection Status
// =============================================================================

// InspectionStatus represents the lifecycle state of an inspection.
type InspectionStatus string

const (
	// InspectionStatusNotStarted indicates an inspection exists but the
	// technician has not recorded any data yet.
	InspectionStatusNotStarted InspectionStatus = "not_started"

	// InspectionStatusInProgress indicates the technician is actively
	// saving data and uploading photos.
	InspectionStatusInProgress InspectionStatus = "in_progress"

	// InspectionStatusCompleted indicates all required fields are filled
	// and the report can be signed.
	InspectionStatusCompleted InspectionStatus = "completed"

	// InspectionStatusApproved indicates an admin accepted the completed
	// inspection. The transition happens outside this service.
	InspectionStatusApproved InspectionStatus = "approved"
)

// String returns the string representation of the status.
func (s InspectionStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionStatusNotStarted, InspectionStatusInProgress,
		InspectionStatusCompleted, InspectionStatusApproved:
		return true
	}
	return false
}

// =============================================================================
// Inspection Domain Type
// =============================================================================

// Inspection represents one inspection of one piece of equipment.
type Inspection struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	EquipmentID  uuid.UUID
	TechnicianID uuid.UUID
	Status       InspectionStatus

	CustomerName   string
	WorkOrderNo    string
	InspectionDate *time.Time
	StartTime      string
	EndTime        string

	// Data is the free-form key/value mapping filled in by the technician,
	// keyed by section/field names from the equipment template.
	Data      map[string]any
	PhotoURLs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCompleted reports whether the inspection reached a signable state.
func (i *Inspection) IsCompleted() bool {
	return i.Status == InspectionStatusCompleted || i.Status == InspectionStatusApproved
}
