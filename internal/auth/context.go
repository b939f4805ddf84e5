// Package auth provides authentication context helpers.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/inspekta-io/inspekta/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// technicianContextKey is the key used to store the authenticated
	// technician in context.
	technicianContextKey contextKey = "technician"
)

// GetTechnician retrieves the authenticated technician from the context.
//
// Returns nil if no technician is authenticated.
//
// Usage:
//
//	tech := auth.GetTechnician(r.Context())
//	if tech == nil {
//	    // Handle unauthenticated request
//	}
func GetTechnician(ctx context.Context) *domain.Technician {
	tech, ok := ctx.Value(technicianContextKey).(*domain.Technician)
	if !ok {
		return nil
	}
	return tech
}

// GetTechnicianFromRequest retrieves the authenticated technician from the
// request context.
func GetTechnicianFromRequest(r *http.Request) *domain.Technician {
	return GetTechnician(r.Context())
}

// SetTechnician stores a technician in the context.
//
// This is typically called by authentication middleware after validating
// the request's credentials.
func SetTechnician(ctx context.Context, tech *domain.Technician) context.Context {
	return context.WithValue(ctx, technicianContextKey, tech)
}
