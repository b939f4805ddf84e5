package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// SMTP Email Service Implementation
// =============================================================================

// SMTPEmailService sends emails via SMTP.
//
// This implementation works with:
// - Mailhog (development): No authentication required
// - Any standard SMTP relay (production): Uses username/password authentication
type SMTPEmailService struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPEmailService creates a new SMTP-based email service.
func NewSMTPEmailService(config SMTPConfig, logger *slog.Logger) *SMTPEmailService {
	// Set defaults
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}

	return &SMTPEmailService{
		config: config,
		logger: logger,
	}
}

// =============================================================================
// EmailService Interface Implementation
// =============================================================================

// reportEmailTemplate is the HTML body of the report delivery message.
// Recipients are Turkish customers of the inspection company.
var reportEmailTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="tr">
<body style="font-family: Arial, sans-serif; color: #1f2933;">
  <p>Sayın yetkili,</p>
  <p>{{.CompanyName}} tarafından gerçekleştirilen periyodik muayeneye ait
  <strong>{{.ReportCode}}</strong> numaralı imzalı rapor ektedir.</p>
  <p>Rapor üzerindeki QR kodu okutarak raporun güncelliğini dilediğiniz
  zaman doğrulayabilirsiniz.</p>
  <p>Saygılarımızla,<br>{{.CompanyName}}</p>
  <hr style="border: none; border-top: 1px solid #d2d6dc;">
  <p style="font-size: 12px; color: #7b8794;">&copy; {{.Year}} {{.CompanyName}}</p>
</body>
</html>`))

// SendReportEmail delivers a signed inspection report with the PDF attached.
func (s *SMTPEmailService) SendReportEmail(ctx context.Context, to, companyName, reportCode, pdfPath string) error {
	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("read report pdf: %w", err)
	}

	data := map[string]any{
		"CompanyName": companyName,
		"ReportCode":  reportCode,
		"Year":        time.Now().Year(),
	}
	var htmlBody bytes.Buffer
	if err := reportEmailTemplate.Execute(&htmlBody, data); err != nil {
		return fmt.Errorf("render report email template: %w", err)
	}

	textBody := fmt.Sprintf(`Sayın yetkili,

%s tarafından gerçekleştirilen periyodik muayeneye ait %s numaralı imzalı rapor ektedir.

Rapor üzerindeki QR kodu okutarak raporun güncelliğini dilediğiniz zaman doğrulayabilirsiniz.

Saygılarımızla,
%s
`, companyName, reportCode, companyName)

	msg := Email{
		To:       to,
		Subject:  fmt.Sprintf("Muayene Raporu - %s", reportCode),
		HTMLBody: htmlBody.String(),
		TextBody: textBody,
		Attachments: []Attachment{{
			Filename:    filepath.Base(pdfPath),
			ContentType: "application/pdf",
			Content:     pdfBytes,
		}},
	}

	return s.send(ctx, msg)
}

// =============================================================================
// Internal Methods
// =============================================================================

// send sends an email via SMTP.
func (s *SMTPEmailService) send(ctx context.Context, email Email) error {
	msg := s.buildMessage(email)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Auth only when credentials are configured (Mailhog has none).
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{email.To}, msg); err != nil {
		s.logger.Error("failed to send email",
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}

// buildMessage constructs the raw email message with headers.
func (s *SMTPEmailService) buildMessage(email Email) []byte {
	var buf bytes.Buffer

	fromHeader := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)

	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", email.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	mixedBoundary := "===============INSPEKTA_MIXED==============="
	altBoundary := "===============INSPEKTA_ALT==============="

	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", mixedBoundary))
	buf.WriteString("\r\n")

	// Body: multipart/alternative with text and HTML parts.
	buf.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", altBoundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", altBoundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.TextBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", altBoundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTMLBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", altBoundary))

	// Attachments, base64 encoded in 76-column lines.
	for _, att := range email.Attachments {
		buf.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
		buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", att.ContentType, att.Filename))
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", att.Filename))
		buf.WriteString("\r\n")

		encoded := base64.StdEncoding.EncodeToString(att.Content)
		for len(encoded) > 76 {
			buf.WriteString(encoded[:76])
			buf.WriteString("\r\n")
			encoded = encoded[76:]
		}
		buf.WriteString(encoded)
		buf.WriteString("\r\n")
	}

	buf.WriteString(fmt.Sprintf("--%s--\r\n", mixedBoundary))

	return buf.Bytes()
}

// =============================================================================
// Compile-time interface check
// =============================================================================

var _ EmailService = (*SMTPEmailService)(nil)
