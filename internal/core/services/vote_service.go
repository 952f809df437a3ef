package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type voteService struct {
	electionRepo ports.ElectionRepository
	voterRepo    ports.VoterRepository
	voteRepo     ports.VoteRepository
}

func NewVoteService(electionRepo ports.ElectionRepository, voterRepo ports.VoterRepository, voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		electionRepo: electionRepo,
		voterRepo:    voterRepo,
		voteRepo:     voteRepo,
	}
}

// Submit records a complete ballot atomically. The pre-checks give
// stable error codes; the unique constraint on (portfolio_id, voter_id)
// remains the authoritative guard when two submissions race.
func (s *voteService) Submit(ctx context.Context, input ports.SubmitInput) (*ports.SubmitResult, error) {
	voter, err := s.voterRepo.GetByID(ctx, input.VoterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get voter: %w", err)
	}
	if voter == nil || voter.ElectionID != input.ElectionID {
		return nil, domain.ErrUnauthorized
	}
	if voter.HasVoted {
		return nil, domain.ErrAlreadyVoted
	}

	election, err := s.electionRepo.GetByID(ctx, input.ElectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get election: %w", err)
	}
	if election == nil {
		return nil, domain.ErrElectionNotFound
	}
	if election.WindowAt(time.Now()) != domain.WindowOpen {
		return nil, domain.ErrElectionNotOpen
	}

	portfolios, err := s.electionRepo.GetPortfolios(ctx, input.ElectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolios: %w", err)
	}

	if err := validateSelections(portfolios, input.Selections); err != nil {
		return nil, err
	}

	now := time.Now()
	votes := make([]domain.Vote, 0, len(input.Selections))
	for _, p := range portfolios {
		votes = append(votes, domain.Vote{
			ID:          uuid.New(),
			ElectionID:  input.ElectionID,
			PortfolioID: p.ID,
			CandidateID: input.Selections[p.ID],
			VoterID:     input.VoterID,
			CreatedAt:   now,
		})
	}

	if err := s.voteRepo.RecordBallot(ctx, votes, input.VoterID); err != nil {
		return nil, err
	}

	return &ports.SubmitResult{SubmittedAt: now}, nil
}

// validateSelections enforces exactly one selection per portfolio and
// that each candidate belongs to its paired portfolio.
func validateSelections(portfolios []domain.Portfolio, selections map[uuid.UUID]uuid.UUID) error {
	if len(selections) != len(portfolios) {
		return domain.ErrIncompleteSelection
	}

	for _, p := range portfolios {
		candidateID, ok := selections[p.ID]
		if !ok {
			return domain.ErrIncompleteSelection
		}

		valid := false
		for _, c := range p.Candidates {
			if c.ID == candidateID {
				valid = true
				break
			}
		}
		if !valid {
			return domain.ErrInvalidSelection
		}
	}
	return nil
}
