package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote rows are written once by ballot submission and never updated or
// deleted. The store enforces UNIQUE(portfolio_id, voter_id).
type Vote struct {
	ID          uuid.UUID `json:"id"`
	ElectionID  uuid.UUID `json:"election_id"`
	PortfolioID uuid.UUID `json:"portfolio_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	VoterID     uuid.UUID `json:"voter_id"`
	CreatedAt   time.Time `json:"created_at"`
}
