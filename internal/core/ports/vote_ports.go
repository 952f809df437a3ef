package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
)

type VoteRepository interface {
	// RecordBallot inserts every vote row and flips the voter's
	// has_voted flag in a single transaction. A unique-constraint
	// violation on (portfolio_id, voter_id) aborts the transaction and
	// surfaces as domain.ErrConflict; no partial rows persist.
	RecordBallot(ctx context.Context, votes []domain.Vote, voterID uuid.UUID) error
	CountByVoter(ctx context.Context, voterID uuid.UUID) (int, error)
}

type SubmitInput struct {
	VoterID    uuid.UUID
	ElectionID uuid.UUID
	// Selections maps portfolio id -> chosen candidate id.
	Selections map[uuid.UUID]uuid.UUID
}

type SubmitResult struct {
	SubmittedAt time.Time `json:"submitted_at"`
}

type VoteService interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
}
