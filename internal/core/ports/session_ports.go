package ports

import (
	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
)

type SessionService interface {
	Issue(voterID, electionID uuid.UUID) (string, error)
	// Verify rejects malformed, forged and expired tokens with
	// domain.ErrUnauthorized or domain.ErrSessionExpired.
	Verify(token string) (*domain.Session, error)
}
