package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
)

type VoterRepository interface {
	GetByIndex(ctx context.Context, electionID uuid.UUID, index string) (*domain.Voter, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error)

	// IssueOTP stores a freshly minted code hash for the voter. The
	// whole check-and-set runs in one row-locked transaction: it fails
	// with domain.ErrAlreadyVoted if the voter has voted, and with
	// domain.ErrTooManyRequests if an unexpired code was sent within
	// the cooldown. Success resets the attempt counter and invalidates
	// any prior code.
	IssueOTP(ctx context.Context, voterID uuid.UUID, codeHash string, expiresAt, sentAt time.Time, cooldown time.Duration) error

	// ConsumeOTP validates a submitted code hash against the stored
	// one inside the same row-locked transaction that mutates it:
	// a mismatch increments the attempt counter and returns
	// domain.ErrInvalidCode; a match clears the stored hash and expiry
	// so the code cannot be replayed. Expiry and the attempt limit are
	// checked first, in that order.
	ConsumeOTP(ctx context.Context, voterID uuid.UUID, codeHash string, maxAttempts int) error

	// ClearExpiredOTPs nulls OTP state whose expiry has passed and
	// returns the number of rows touched.
	ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
}

// SMSSender is the external dispatch capability. Delivery is
// at-least-once; duplicate messages are acceptable.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

type RequestOTPInput struct {
	ElectionID uuid.UUID
	RawIndex   string
}

type RequestOTPResult struct {
	VoterID     uuid.UUID `json:"voter_id"`
	MaskedPhone string    `json:"masked_phone"`
}

type VerifyOTPInput struct {
	ElectionID uuid.UUID
	VoterID    uuid.UUID
	Code       string
}

type OTPService interface {
	RequestOTP(ctx context.Context, input RequestOTPInput) (*RequestOTPResult, error)
	// VerifyOTP returns a session token on success.
	VerifyOTP(ctx context.Context, input VerifyOTPInput) (string, error)
}
