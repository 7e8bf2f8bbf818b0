package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func sign(t *testing.T, method jwt.SigningMethod, secret any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func validClaims(userID string) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "grocer",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   userID,
		Username: "wanjiru",
	}
}

func TestTokenVerifier_Verify(t *testing.T) {
	verifier := NewTokenVerifier(config.JWTConfig{Secret: testSecret, Issuer: "grocer"})
	userID := uuid.New()

	claims, err := verifier.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(userID.String())))
	require.NoError(t, err)
	actor, err := claims.ActorID()
	require.NoError(t, err)
	assert.Equal(t, userID, actor)
	assert.Equal(t, "wanjiru", claims.Username)
}

func TestTokenVerifier_Rejects(t *testing.T) {
	verifier := NewTokenVerifier(config.JWTConfig{Secret: testSecret, Issuer: "grocer"})
	userID := uuid.New().String()

	expired := validClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	future := validClaims(userID)
	future.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))

	otherIssuer := validClaims(userID)
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not.a.token", ErrInvalidToken},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("another-secret-key-of-32-chars!!"), validClaims(userID)), ErrInvalidToken},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(userID)), ErrInvalidToken},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired), ErrExpiredToken},
		{"not yet valid", sign(t, jwt.SigningMethodHS256, []byte(testSecret), future), ErrTokenNotYetValid},
		{"other issuer", sign(t, jwt.SigningMethodHS256, []byte(testSecret), otherIssuer), ErrInvalidToken},
		{"missing user", sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("")), ErrMissingUserID},
		{"user is not a uuid", sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("wanjiru")), ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenVerifier_Enabled(t *testing.T) {
	assert.False(t, NewTokenVerifier(config.JWTConfig{}).Enabled())
	assert.True(t, NewTokenVerifier(config.JWTConfig{Secret: testSecret}).Enabled())
}
