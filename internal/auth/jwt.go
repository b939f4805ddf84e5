package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer mints and verifies the bearer tokens the mobile app uses.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// Claims carries the technician identity inside the signed token.
type Claims struct {
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// NewTokenIssuer creates a TokenIssuer. ttl bounds token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given technician.
func (t *TokenIssuer) Issue(technicianID, companyID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		CompanyID: companyID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   technicianID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses a token and returns the technician and company IDs.
func (t *TokenIssuer) Verify(tokenString string) (technicianID, companyID uuid.UUID, err error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid token")
	}

	technicianID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	companyID, err = uuid.Parse(claims.CompanyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid company claim: %w", err)
	}
	return technicianID, companyID, nil
}
