package services

import (
	"context"
	"fmt"
	"time"

	"github.com/oneballot/api/internal/core/ports"
)

// CleanupService nulls out OTP state whose expiry has passed. Expired
// codes are already unusable; this is batch hygiene run from
// cmd/otpcleanup.
type CleanupService struct {
	voterRepo ports.VoterRepository
}

func NewCleanupService(voterRepo ports.VoterRepository) *CleanupService {
	return &CleanupService{voterRepo: voterRepo}
}

func (s *CleanupService) ClearExpiredOTPs(ctx context.Context) (int64, error) {
	cleared, err := s.voterRepo.ClearExpiredOTPs(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired otp state: %w", err)
	}
	return cleared, nil
}
