package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type voterRepository struct {
	db *sql.DB
}

func NewVoterRepository(db *sql.DB) ports.VoterRepository {
	return &voterRepository{db: db}
}

const voterColumns = `id, election_id, index_number, name, phone, program, year, has_voted, otp_hash, otp_expires_at, otp_attempts, last_otp_sent_at, created_at`

func (r *voterRepository) GetByIndex(ctx context.Context, electionID uuid.UUID, index string) (*domain.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE election_id = $1 AND index_number = $2`
	return r.scanVoter(r.db.QueryRowContext(ctx, query, electionID, index))
}

func (r *voterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE id = $1`
	return r.scanVoter(r.db.QueryRowContext(ctx, query, id))
}

// IssueOTP runs the cooldown check and the code swap under a row lock
// so two concurrent requests for the same voter cannot both mint a
// code against stale state.
func (r *voterRepository) IssueOTP(ctx context.Context, voterID uuid.UUID, codeHash string, expiresAt, sentAt time.Time, cooldown time.Duration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var hasVoted bool
	var prevExpiresAt, lastSentAt *time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT has_voted, otp_expires_at, last_otp_sent_at
		FROM voters WHERE id = $1 FOR UPDATE
	`, voterID).Scan(&hasVoted, &prevExpiresAt, &lastSentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrVoterNotFound
		}
		return fmt.Errorf("failed to lock voter row: %w", err)
	}

	if hasVoted {
		return domain.ErrAlreadyVoted
	}
	if lastSentAt != nil && sentAt.Sub(*lastSentAt) < cooldown &&
		prevExpiresAt != nil && prevExpiresAt.After(sentAt) {
		return domain.ErrTooManyRequests
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE voters
		SET otp_hash = $2, otp_expires_at = $3, otp_attempts = 0, last_otp_sent_at = $4
		WHERE id = $1
	`, voterID, codeHash, expiresAt, sentAt)
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ConsumeOTP reads and mutates the voter's OTP state under the same
// row lock, so two concurrent verifications cannot both observe an
// unconsumed code. The attempt-limit check runs before the hash
// comparison: a correct code after lockout still fails.
func (r *voterRepository) ConsumeOTP(ctx context.Context, voterID uuid.UUID, codeHash string, maxAttempts int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var hasVoted bool
	var storedHash *string
	var expiresAt *time.Time
	var attempts int
	err = tx.QueryRowContext(ctx, `
		SELECT has_voted, otp_hash, otp_expires_at, otp_attempts
		FROM voters WHERE id = $1 FOR UPDATE
	`, voterID).Scan(&hasVoted, &storedHash, &expiresAt, &attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrVoterNotFound
		}
		return fmt.Errorf("failed to lock voter row: %w", err)
	}

	if hasVoted {
		return domain.ErrAlreadyVoted
	}
	if expiresAt == nil || !expiresAt.After(time.Now()) {
		return domain.ErrCodeExpired
	}
	if attempts >= maxAttempts {
		return domain.ErrTooManyAttempts
	}

	if storedHash == nil || *storedHash != codeHash {
		// The failed attempt must stick even though the verification
		// is rejected, so this branch commits instead of rolling back.
		_, err = tx.ExecContext(ctx, `
			UPDATE voters SET otp_attempts = otp_attempts + 1 WHERE id = $1
		`, voterID)
		if err != nil {
			return fmt.Errorf("failed to record failed attempt: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return domain.ErrInvalidCode
	}

	// Single use: a verified code can never be replayed.
	_, err = tx.ExecContext(ctx, `
		UPDATE voters SET otp_hash = NULL, otp_expires_at = NULL WHERE id = $1
	`, voterID)
	if err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *voterRepository) ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE voters
		SET otp_hash = NULL, otp_expires_at = NULL
		WHERE otp_expires_at IS NOT NULL AND otp_expires_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired otps: %w", err)
	}
	return result.RowsAffected()
}

func (r *voterRepository) scanVoter(row *sql.Row) (*domain.Voter, error) {
	voter := &domain.Voter{}
	err := row.Scan(
		&voter.ID, &voter.ElectionID, &voter.Index, &voter.Name, &voter.Phone,
		&voter.Program, &voter.Year, &voter.HasVoted, &voter.OTPHash,
		&voter.OTPExpiresAt, &voter.OTPAttempts, &voter.LastOTPSentAt, &voter.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan voter: %w", err)
	}
	return voter, nil
}
