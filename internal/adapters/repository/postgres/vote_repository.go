package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{db: db}
}

// RecordBallot writes every vote row and flips has_voted in one
// transaction. UNIQUE(portfolio_id, voter_id) is the authoritative
// double-vote guard: when two submissions race, the loser's inserts
// violate it, the whole transaction rolls back and the caller sees
// domain.ErrConflict with no partial rows behind.
func (r *voteRepository) RecordBallot(ctx context.Context, votes []domain.Vote, voterID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO votes (id, election_id, portfolio_id, candidate_id, voter_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare vote statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range votes {
		_, err = stmt.ExecContext(ctx, v.ID, v.ElectionID, v.PortfolioID, v.CandidateID, v.VoterID, v.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE voters SET has_voted = TRUE WHERE id = $1 AND has_voted = FALSE
	`, voterID)
	if err != nil {
		return fmt.Errorf("failed to mark voter as voted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrConflict
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *voteRepository) CountByVoter(ctx context.Context, voterID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE voter_id = $1`, voterID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
