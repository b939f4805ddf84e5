package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspekta-io/inspekta/internal/domain"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINVALIDPDF, http.StatusInternalServerError},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("domain error maps to status and envelope", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/reports/123", nil)
		rec := httptest.NewRecorder()

		err := domain.NotFound("service.Get", "report", "123")
		ErrorResponse(rec, req, logger, err)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body JSONError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, domain.ENOTFOUND, body.Error.Code)
		assert.NotEmpty(t, body.Error.Message)
	})

	t.Run("plain error maps to 500 with generic message", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/reports", nil)
		rec := httptest.NewRecorder()

		ErrorResponse(rec, req, logger, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var body JSONError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, domain.EINTERNAL, body.Error.Code)
		// Internal details never leak to the client
		assert.NotContains(t, body.Error.Message, assert.AnError.Error())
	})
}

func TestUnauthorizedResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest("GET", "/reports", nil)
	rec := httptest.NewRecorder()

	UnauthorizedResponse(rec, req, logger)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body JSONError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, domain.EUNAUTHORIZED, body.Error.Code)
}

func TestNotFoundResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest("GET", "/missing", nil)
	rec := httptest.NewRecorder()

	NotFoundResponse(rec, req, logger)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
