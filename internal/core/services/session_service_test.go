package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneballot/api/internal/core/domain"
)

func TestSessionRoundTrip(t *testing.T) {
	svc := NewSessionService([]byte("test-secret"), DefaultSessionTTL)

	voterID := uuid.New()
	electionID := uuid.New()

	token, err := svc.Issue(voterID, electionID)
	require.NoError(t, err)

	session, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, voterID, session.VoterID)
	assert.Equal(t, electionID, session.ElectionID)
	assert.WithinDuration(t, time.Now(), session.IssuedAt, 2*time.Second)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionTTL), session.ExpiresAt, 2*time.Second)
}

func TestSessionExpired(t *testing.T) {
	secret := []byte("test-secret")
	svc := NewSessionService(secret, DefaultSessionTTL)

	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"eid": uuid.New().String(),
		"iat": time.Now().Add(-time.Hour).Unix(),
		"exp": time.Now().Add(-30 * time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestSessionRejectsForgedTokens(t *testing.T) {
	svc := NewSessionService([]byte("test-secret"), DefaultSessionTTL)

	// Signed with a different secret.
	other := NewSessionService([]byte("other-secret"), DefaultSessionTTL)
	token, err := other.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Verify("not-a-token")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Verify("")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSessionRejectsNoneAlgorithm(t *testing.T) {
	svc := NewSessionService([]byte("test-secret"), DefaultSessionTTL)

	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"eid": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSessionRejectsGarbageClaims(t *testing.T) {
	secret := []byte("test-secret")
	svc := NewSessionService(secret, DefaultSessionTTL)

	claims := jwt.MapClaims{
		"sub": "not-a-uuid",
		"eid": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
