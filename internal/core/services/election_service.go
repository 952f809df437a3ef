package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type electionService struct {
	repo ports.ElectionRepository
}

func NewElectionService(repo ports.ElectionRepository) ports.ElectionService {
	return &electionService{repo: repo}
}

func (s *electionService) Status(ctx context.Context, electionID uuid.UUID) (*ports.ElectionStatus, error) {
	election, err := s.repo.GetByID(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get election: %w", err)
	}
	if election == nil {
		return nil, domain.ErrElectionNotFound
	}

	now := time.Now()
	window := election.WindowAt(now)

	status := &ports.ElectionStatus{
		ElectionID: election.ID,
		Name:       election.Name,
		Window:     window.String(),
		StartTime:  election.StartTime,
		EndTime:    election.EndTime,
	}
	switch window {
	case domain.WindowPending:
		status.Remaining = domain.Remaining(now, election.StartTime)
	case domain.WindowOpen:
		status.Remaining = domain.Remaining(now, election.EndTime)
	}
	return status, nil
}

func (s *electionService) Ballot(ctx context.Context, electionID uuid.UUID) ([]domain.Portfolio, error) {
	election, err := s.repo.GetByID(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get election: %w", err)
	}
	if election == nil {
		return nil, domain.ErrElectionNotFound
	}

	portfolios, err := s.repo.GetPortfolios(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolios: %w", err)
	}
	return portfolios, nil
}
