package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	techID := uuid.New()
	companyID := uuid.New()

	token, err := issuer.Issue(techID, companyID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	gotTech, gotCompany, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, techID, gotTech)
	assert.Equal(t, companyID, gotCompany)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, _, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_ExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, _, err = issuer.Verify(token)
	assert.ErrorContains(t, err, "expired")
}

func TestTokenIssuer_GarbageToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not a jwt", "not.a.jwt"},
		{"random text", "Bearer abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := issuer.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestTokenIssuer_TokensDiffer(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	a, err := issuer.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)
	b, err := issuer.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
