package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type electionRepository struct {
	db *sql.DB
}

func NewElectionRepository(db *sql.DB) ports.ElectionRepository {
	return &electionRepository{db: db}
}

func (r *electionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	query := `
		SELECT id, name, description, start_time, end_time, created_by, is_published, created_at
		FROM elections
		WHERE id = $1 AND is_published = TRUE AND deleted_at IS NULL
	`
	election := &domain.Election{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&election.ID, &election.Name, &election.Description,
		&election.StartTime, &election.EndTime, &election.CreatedBy,
		&election.IsPublished, &election.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get election: %w", err)
	}
	return election, nil
}

func (r *electionRepository) GetPortfolios(ctx context.Context, electionID uuid.UUID) ([]domain.Portfolio, error) {
	query := `
		SELECT id, election_id, title, is_yes_no, created_at
		FROM portfolios
		WHERE election_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []domain.Portfolio
	for rows.Next() {
		var p domain.Portfolio
		if err := rows.Scan(&p.ID, &p.ElectionID, &p.Title, &p.IsYesNo, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}

		candidates, err := r.fetchCandidates(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Candidates = candidates

		portfolios = append(portfolios, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios: %w", err)
	}
	return portfolios, nil
}

func (r *electionRepository) fetchCandidates(ctx context.Context, portfolioID uuid.UUID) ([]domain.Candidate, error) {
	query := `
		SELECT id, portfolio_id, name, COALESCE(image_url, ''), created_at
		FROM candidates
		WHERE portfolio_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.PortfolioID, &c.Name, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}
