// Package domain contains core business types and interfaces.
//
// This file defines the Report domain types: the artifact-bearing record
// tied one-to-one to an inspection, holding PDF paths, signature state,
// and the QR verification token.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Style Scale
// =============================================================================

// StyleScale selects one of the rendered report's density presets.
type StyleScale string

const (
	ScaleSmall  StyleScale = "small"
	ScaleMedium StyleScale = "medium"
	ScaleLarge  StyleScale = "large"
)

// IsValid returns true if the scale is a recognized value.
func (s StyleScale) IsValid() bool {
	switch s {
	case ScaleSmall, ScaleMedium, ScaleLarge:
		return true
	}
	return false
}

// NormalizeScale lowercases and validates a user-supplied scale string.
func NormalizeScale(raw string) (StyleScale, bool) {
	s := StyleScale(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.IsValid()
}

// =============================================================================
// Report Domain Type
// =============================================================================

// Report represents the persisted report row for one inspection.
type Report struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	InspectionID uuid.UUID
	ReportCode   string
	QRToken      string

	// Style holds the raw report_style JSON document; an empty or "{}"
	// value means the style has not been seeded yet.
	Style json.RawMessage

	UnsignedPDFPath string // empty when no unsigned artifact exists
	SignedPDFPath   string // empty when the report is unsigned
	PDFGeneratedAt  *time.Time
	SignedAt        *time.Time
	SignedBy        *uuid.UUID
	SentAt          *time.Time
	SentTo          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsSigned reports whether the report carries an accepted signature.
func (r *Report) IsSigned() bool {
	return r.SignedAt != nil && r.SignedPDFPath != ""
}

// HasUnsignedPDF returns true if an unsigned artifact path is recorded.
func (r *Report) HasUnsignedPDF() bool {
	return r.UnsignedPDFPath != ""
}

// StyleScale extracts the scale stored in the style document, if any.
func (r *Report) StyleScale() string {
	if len(r.Style) == 0 {
		return ""
	}
	var style struct {
		Scale     string `json:"scale"`
		FontScale string `json:"fontScale"`
	}
	if err := json.Unmarshal(r.Style, &style); err != nil {
		return ""
	}
	if strings.TrimSpace(style.Scale) != "" {
		return style.Scale
	}
	return style.FontScale
}

// HasStyle reports whether the style document has been seeded.
func (r *Report) HasStyle() bool {
	trimmed := strings.TrimSpace(string(r.Style))
	return trimmed != "" && trimmed != "{}" && trimmed != "null"
}

// NewQRToken generates the random opaque token that grants unauthenticated
// read access to a report's public view. 16 random bytes, hex encoded.
func NewQRToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// =============================================================================
// Render Context
// =============================================================================

// ReportContext aggregates everything the HTML renderer needs: the report
// row plus fields denormalized from the inspection, equipment, technician,
// and company join chain. It is assembled by the repository, never rendered
// from partial data.
type ReportContext struct {
	Report

	// Inspection fields
	InspectionStatus InspectionStatus
	CustomerName     string
	WorkOrderNo      string
	InspectionDate   *time.Time
	StartTime        string
	EndTime          string
	InspectionData   map[string]any
	PhotoURLs        []string

	// Equipment fields
	EquipmentName string
	EquipmentType string
	SerialNumber  string

	// Technician and company fields
	TechnicianName string
	CompanyName    string

	// Template snapshot from the equipment row
	Template *Template

	// QR presentation fields, derived per render, never persisted
	QRPublicURL   string
	QRCodeDataURL string
}

// ReportNumber returns the human-facing report identifier for the header.
func (c *ReportContext) ReportNumber() string {
	if c.ReportCode != "" {
		return c.ReportCode
	}
	return c.Report.ID.String()
}

// TimeRange formats the inspection start/end time pair for display.
func (c *ReportContext) TimeRange() string {
	start := strings.TrimSpace(c.StartTime)
	end := strings.TrimSpace(c.EndTime)
	switch {
	case start == "" && end == "":
		return ""
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}
