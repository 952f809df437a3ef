package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
)

type ElectionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error)
	// GetPortfolios returns the election's portfolios with their
	// candidates, ordered by creation time.
	GetPortfolios(ctx context.Context, electionID uuid.UUID) ([]domain.Portfolio, error)
}

type ElectionStatus struct {
	ElectionID uuid.UUID     `json:"election_id"`
	Name       string        `json:"name"`
	Window     string        `json:"window"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Remaining  time.Duration `json:"-"`
}

type ElectionService interface {
	// Status reports the server-side window classification, the only
	// countdown a client may trust.
	Status(ctx context.Context, electionID uuid.UUID) (*ElectionStatus, error)
	// Ballot returns the ordered portfolios a verified voter steps
	// through.
	Ballot(ctx context.Context, electionID uuid.UUID) ([]domain.Portfolio, error)
}
