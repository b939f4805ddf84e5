package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Metrics Auth Middleware Tests
// =============================================================================

func scrapeOK() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("scrape data"))
	})
}

func TestMetricsAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		setAuth    func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "valid credentials pass",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("admin", "secret123") },
			wantStatus: http.StatusOK,
		},
		{
			name:       "no credentials rejected",
			setAuth:    func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong username rejected",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("wronguser", "secret123") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong password rejected",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("admin", "wrongpassword") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty credentials rejected",
			setAuth:    func(r *http.Request) { r.SetBasicAuth("", "") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed header rejected",
			setAuth: func(r *http.Request) {
				r.Header.Set("Authorization", "Basic notvalidbase64!!!")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "newline injection in credentials rejected",
			setAuth: func(r *http.Request) {
				payload := base64.StdEncoding.EncodeToString([]byte("admin:secret123\r\nX-Injected: header"))
				r.Header.Set("Authorization", "Basic "+payload)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	wrapped := NewMetricsAuthMiddleware("admin", "secret123").Handler(scrapeOK())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			tt.setAuth(req)
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestMetricsAuthMiddleware_ChallengeHeader(t *testing.T) {
	wrapped := NewMetricsAuthMiddleware("admin", "secret123").Handler(scrapeOK())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="metrics"`, rec.Header().Get("WWW-Authenticate"))
}

func TestMetricsAuthMiddleware_DisabledWithoutCredentials(t *testing.T) {
	// Both credentials empty means the endpoint is open.
	wrapped := NewMetricsAuthMiddleware("", "").Handler(scrapeOK())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scrape data", rec.Body.String())
}
