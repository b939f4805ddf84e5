// Package middleware contains HTTP middleware for the Inspekta API.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are designed to be composed using a middleware stack approach.
package middleware

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inspekta-io/inspekta/internal/auth"
	"github.com/inspekta-io/inspekta/internal/domain"
	"github.com/inspekta-io/inspekta/internal/handler"
	"github.com/inspekta-io/inspekta/internal/repository"
)

// =============================================================================
// Auth Middleware
// =============================================================================

// AuthMiddleware validates bearer tokens and loads the technician they
// identify into the request context.
type AuthMiddleware struct {
	issuer  *auth.TokenIssuer
	queries *repository.Queries
	logger  *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(issuer *auth.TokenIssuer, queries *repository.Queries, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		issuer:  issuer,
		queries: queries,
		logger:  logger,
	}
}

// RequireTechnician rejects requests without a valid bearer token.
//
// On success the technician is available to handlers through
// auth.GetTechnicianFromRequest. The technician row is re-read on every
// request so a deleted account loses access immediately.
func (m *AuthMiddleware) RequireTechnician(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		technicianID, companyID, err := m.issuer.Verify(token)
		if err != nil {
			m.logger.Info("rejected bearer token",
				"path", r.URL.Path,
				"error", err,
			)
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		row, err := m.queries.GetTechnicianByID(r.Context(), technicianID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				m.logger.Error("failed to load technician", "error", err)
			}
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}
		if row.CompanyID != companyID {
			// Token minted before the technician changed companies.
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		tech := &domain.Technician{
			ID:        row.ID,
			CompanyID: row.CompanyID,
			FullName:  row.FullName,
			Email:     row.Email,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		next.ServeHTTP(w, r.WithContext(auth.SetTechnician(r.Context(), tech)))
	})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
