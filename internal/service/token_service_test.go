package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-key-for-unit-tests"

func newTokenService(t *testing.T, secret string, expiry time.Duration, issuer string) *JWTTokenService {
	t.Helper()
	svc, err := NewJWTTokenService(secret, expiry, issuer)
	require.NoError(t, err)
	return svc
}

func TestNewJWTTokenService_EmptySecret(t *testing.T) {
	svc, err := NewJWTTokenService("", time.Hour, "social-wallet-api")
	assert.ErrorIs(t, err, errEmptySecret)
	assert.Nil(t, svc)
}

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := newTokenService(t, testJWTSecret, time.Hour, "social-wallet-api")
	userID := uuid.New()

	token, expiresAt, err := svc.Generate(userID, "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestJWTTokenService_Expired(t *testing.T) {
	svc := newTokenService(t, testJWTSecret, -time.Minute, "social-wallet-api")

	token, _, err := svc.Generate(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTTokenService_WrongSecret(t *testing.T) {
	issuer := newTokenService(t, "other-secret", time.Hour, "social-wallet-api")
	token, _, err := issuer.Generate(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = newTokenService(t, testJWTSecret, time.Hour, "social-wallet-api").Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTTokenService_WrongIssuer(t *testing.T) {
	token, _, err := newTokenService(t, testJWTSecret, time.Hour, "someone-else").Generate(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = newTokenService(t, testJWTSecret, time.Hour, "social-wallet-api").Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTTokenService_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "social-wallet-api",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = newTokenService(t, testJWTSecret, time.Hour, "social-wallet-api").Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_BadSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		Issuer:    "social-wallet-api",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = newTokenService(t, testJWTSecret, time.Hour, "social-wallet-api").Validate(token)
	assert.Error(t, err)
}
