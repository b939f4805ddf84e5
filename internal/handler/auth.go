// Package handler contains HTTP handlers for the Inspekta API.
//
// This file implements the login endpoint that exchanges technician
// credentials for a bearer token.
package handler

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inspekta-io/inspekta/internal/auth"
	"github.com/inspekta-io/inspekta/internal/domain"
	"github.com/inspekta-io/inspekta/internal/repository"
)

// LoginRecorder lets the handler report login outcomes to the rate
// limiter without importing the middleware package.
type LoginRecorder interface {
	RecordFailedLogin(ip string)
	ResetLogin(ip string)
}

// AuthHandler handles technician authentication.
type AuthHandler struct {
	queries  *repository.Queries
	issuer   *auth.TokenIssuer
	attempts LoginRecorder
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. attempts may be nil when no
// rate limiter is wired (tests).
func NewAuthHandler(queries *repository.Queries, issuer *auth.TokenIssuer, attempts LoginRecorder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		queries:  queries,
		issuer:   issuer,
		attempts: attempts,
		logger:   logger,
	}
}

// Login exchanges an email and signature PIN for a bearer token.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"

	var req struct {
		Email string `json:"email"`
		PIN   string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.Email == "" || req.PIN == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "email and pin are required"))
		return
	}

	tech, err := h.queries.GetTechnicianByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			ErrorResponse(w, r, h.logger, domain.Internal(err, op, "failed to load technician"))
			return
		}
		h.failLogin(w, r, op)
		return
	}

	if subtle.ConstantTimeCompare([]byte(tech.SignaturePIN), []byte(req.PIN)) != 1 {
		h.failLogin(w, r, op)
		return
	}

	token, err := h.issuer.Issue(tech.ID, tech.CompanyID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(err, op, "failed to issue token"))
		return
	}

	if h.attempts != nil {
		h.attempts.ResetLogin(clientIP(r))
	}
	h.logger.Info("technician logged in", "technician_id", tech.ID)
	respondJSON(w, http.StatusOK, map[string]string{
		"token":        token,
		"technicianId": tech.ID.String(),
		"fullName":     tech.FullName,
	})
}

func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, op string) {
	if h.attempts != nil {
		h.attempts.RecordFailedLogin(clientIP(r))
	}
	// Same response for unknown email and wrong PIN.
	ErrorResponse(w, r, h.logger, domain.Unauthorized(op, "invalid credentials"))
}

// clientIP mirrors the proxy-aware extraction the middleware uses.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
