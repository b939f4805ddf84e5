// Package email provides email sending functionality for the Inspekta API.
//
// This package defines an EmailService interface with an SMTP
// implementation that works with Mailhog in development and any
// authenticated SMTP relay in production.
package email

import (
	"context"
)

// =============================================================================
// Interface Definition
// =============================================================================

// EmailService defines the interface for sending transactional emails.
//
// All methods are context-aware for timeout and cancellation support.
type EmailService interface {
	// SendReportEmail delivers a signed inspection report to a customer.
	// Parameters:
	// - to: Recipient email address
	// - companyName: Inspection company name shown in the message
	// - reportCode: Human-facing report number used in subject and body
	// - pdfPath: Local path of the signed PDF to attach
	SendReportEmail(ctx context.Context, to, companyName, reportCode, pdfPath string) error
}

// =============================================================================
// Email Data Types
// =============================================================================

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Filename    string // Name shown to the recipient
	ContentType string // MIME type, e.g. "application/pdf"
	Content     []byte // Raw file bytes, base64 encoded on the wire
}

// Email represents a single email message.
type Email struct {
	To          string       // Recipient email address
	Subject     string       // Email subject line
	HTMLBody    string       // HTML content of the email
	TextBody    string       // Plain text fallback content
	Attachments []Attachment // Optional file attachments
}

// =============================================================================
// Configuration Types
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // SMTP authentication username (empty for Mailhog)
	Password string // SMTP authentication password (empty for Mailhog)
	From     string // Default sender email address
	FromName string // Default sender display name
}

// =============================================================================
// Common Constants
// =============================================================================

const (
	// DefaultFromEmail is the default sender email for transactional emails.
	DefaultFromEmail = "noreply@inspekta.io"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "Inspekta"
)
