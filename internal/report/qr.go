package report

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// PublicVerificationURL builds the unauthenticated verification link
// encoded into a report's QR code.
func PublicVerificationURL(baseURL, qrToken string) string {
	return fmt.Sprintf("%s/reports/public/%s", strings.TrimRight(baseURL, "/"), qrToken)
}

// QRCodeDataURL renders the verification URL as a PNG QR code and returns
// it as a data URL ready for an <img> src attribute. The image is derived
// from the token on every render, never cached.
func QRCodeDataURL(publicURL string) (string, error) {
	png, err := qrcode.Encode(publicURL, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
