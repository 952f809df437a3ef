package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the decoded form of the bearer token minted after OTP
// verification. It authorizes ballot calls for one voter in one
// election until it expires; a fresh verification simply supersedes it.
type Session struct {
	VoterID    uuid.UUID
	ElectionID uuid.UUID
	IssuedAt   time.Time
	ExpiresAt  time.Time
}
