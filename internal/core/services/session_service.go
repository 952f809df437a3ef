package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

const DefaultSessionTTL = 30 * time.Minute

// sessionService mints and verifies the HS256 bearer tokens that
// authorize ballot calls. The TTL is independent of the OTP TTL and
// long enough to complete voting.
type sessionService struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionService(secret []byte, ttl time.Duration) ports.SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionService{secret: secret, ttl: ttl}
}

func (s *sessionService) Issue(voterID, electionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": voterID.String(),
		"eid": electionID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *sessionService) Verify(tokenStr string) (*domain.Session, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	eid, _ := claims["eid"].(string)
	voterID, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	electionID, err := uuid.Parse(eid)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	session := &domain.Session{VoterID: voterID, ElectionID: electionID}
	if iat, ok := claims["iat"].(float64); ok {
		session.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		session.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return session, nil
}
