package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Voter struct {
	ID            uuid.UUID  `json:"id"`
	ElectionID    uuid.UUID  `json:"election_id"`
	Index         string     `json:"index"`
	Name          string     `json:"name"`
	Phone         string     `json:"-"`
	Program       string     `json:"program,omitempty"`
	Year          string     `json:"year,omitempty"`
	HasVoted      bool       `json:"has_voted"`
	OTPHash       *string    `json:"-"`
	OTPExpiresAt  *time.Time `json:"-"`
	OTPAttempts   int        `json:"-"`
	LastOTPSentAt *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NormalizeIndex canonicalizes a roster index as entered by a voter.
// Leading zeros are dropped so "007" and "7" resolve to the same row;
// the same rule applies to lookup, display and dispatch.
func NormalizeIndex(raw string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(raw), "0")
	if trimmed == "" && strings.TrimSpace(raw) != "" {
		return "0"
	}
	return trimmed
}

// MaskPhone keeps the first 3 and last 4 digits visible, matching the
// confirmation shown after a code is dispatched. Numbers too short to
// mask are returned fully starred.
func MaskPhone(phone string) string {
	if len(phone) < 8 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
