package report

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicVerificationURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		token   string
		want    string
	}{
		{
			name:    "plain base",
			baseURL: "https://inspekta.io",
			token:   "abc123",
			want:    "https://inspekta.io/reports/public/abc123",
		},
		{
			name:    "trailing slash trimmed",
			baseURL: "https://inspekta.io/",
			token:   "abc123",
			want:    "https://inspekta.io/reports/public/abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicVerificationURL(tt.baseURL, tt.token))
		})
	}
}

func TestQRCodeDataURL(t *testing.T) {
	dataURL, err := QRCodeDataURL("https://inspekta.io/reports/public/abc123")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	payload := strings.TrimPrefix(dataURL, "data:image/png;base64,")
	png, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
