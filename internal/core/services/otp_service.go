package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type OTPConfig struct {
	CodeLength      int
	TTL             time.Duration
	Cooldown        time.Duration
	MaxAttempts     int
	DispatchRetries int
	DispatchTimeout time.Duration
}

func DefaultOTPConfig() OTPConfig {
	return OTPConfig{
		CodeLength:      6,
		TTL:             5 * time.Minute,
		Cooldown:        300 * time.Second,
		MaxAttempts:     5,
		DispatchRetries: 3,
		DispatchTimeout: 10 * time.Second,
	}
}

type otpService struct {
	voterRepo    ports.VoterRepository
	electionRepo ports.ElectionRepository
	sessions     ports.SessionService
	sms          ports.SMSSender
	cfg          OTPConfig
}

func NewOTPService(voterRepo ports.VoterRepository, electionRepo ports.ElectionRepository, sessions ports.SessionService, sms ports.SMSSender, cfg OTPConfig) ports.OTPService {
	return &otpService{
		voterRepo:    voterRepo,
		electionRepo: electionRepo,
		sessions:     sessions,
		sms:          sms,
		cfg:          cfg,
	}
}

func (s *otpService) RequestOTP(ctx context.Context, input ports.RequestOTPInput) (*ports.RequestOTPResult, error) {
	index := domain.NormalizeIndex(input.RawIndex)

	voter, err := s.voterRepo.GetByIndex(ctx, input.ElectionID, index)
	if err != nil {
		return nil, fmt.Errorf("failed to get voter: %w", err)
	}
	if voter == nil {
		return nil, domain.ErrVoterNotFound
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

	code, err := generateCode(s.cfg.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := time.Now()
	err = s.voterRepo.IssueOTP(ctx, voter.ID, hashCode(code), now.Add(s.cfg.TTL), now, s.cfg.Cooldown)
	if err != nil {
		return nil, err
	}

	// Issuance never waits on delivery. A dispatch failure is logged
	// and recovered by the voter requesting again after the cooldown.
	go s.dispatch(voter.ID, voter.Phone, code)

	return &ports.RequestOTPResult{
		VoterID:     voter.ID,
		MaskedPhone: domain.MaskPhone(voter.Phone),
	}, nil
}

func (s *otpService) VerifyOTP(ctx context.Context, input ports.VerifyOTPInput) (string, error) {
	voter, err := s.voterRepo.GetByID(ctx, input.VoterID)
	if err != nil {
		return "", fmt.Errorf("failed to get voter: %w", err)
	}
	if voter == nil || voter.ElectionID != input.ElectionID {
		return "", domain.ErrVoterNotFound
	}

	if err := s.voterRepo.ConsumeOTP(ctx, voter.ID, hashCode(input.Code), s.cfg.MaxAttempts); err != nil {
		return "", err
	}

	token, err := s.sessions.Issue(voter.ID, voter.ElectionID)
	if err != nil {
		return "", fmt.Errorf("failed to issue session: %w", err)
	}
	return token, nil
}

func (s *otpService) dispatch(voterID uuid.UUID, phone, code string) {
	message := fmt.Sprintf("Your voting code is %s. It expires in %d minutes.", code, int(s.cfg.TTL.Minutes()))

	var lastErr error
	for attempt := 1; attempt <= s.cfg.DispatchRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.DispatchTimeout)
		lastErr = s.sms.Send(ctx, phone, message)
		cancel()

		if lastErr == nil {
			slog.Info("otp dispatched", "voter_id", voterID, "attempt", attempt)
			return
		}
		slog.Warn("otp dispatch attempt failed", "voter_id", voterID, "attempt", attempt, "error", lastErr)
		if attempt < s.cfg.DispatchRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	slog.Error("otp dispatch exhausted retries", "voter_id", voterID, "error", fmt.Errorf("%w: %v", domain.ErrDispatchFailed, lastErr))
}

// generateCode draws a fixed-length numeric code from crypto/rand.
func generateCode(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
