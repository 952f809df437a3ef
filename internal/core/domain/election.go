package domain

import (
	"time"

	"github.com/google/uuid"
)

type Election struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type Portfolio struct {
	ID         uuid.UUID   `json:"id"`
	ElectionID uuid.UUID   `json:"election_id"`
	Title      string      `json:"title"`
	IsYesNo    bool        `json:"is_yes_no"`
	Candidates []Candidate `json:"candidates"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Candidate struct {
	ID          uuid.UUID `json:"id"`
	PortfolioID uuid.UUID `json:"portfolio_id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Window classifies a point in time against an election's voting
// interval [StartTime, EndTime).
type Window int

const (
	WindowPending Window = iota
	WindowOpen
	WindowClosed
)

func (w Window) String() string {
	switch w {
	case WindowPending:
		return "pending"
	case WindowOpen:
		return "open"
	case WindowClosed:
		return "closed"
	}
	return "unknown"
}

// Classify is the single gate for every time-sensitive decision. Client
// countdowns are cosmetic; access control always re-derives from the
// server clock through this function.
func Classify(now, start, end time.Time) Window {
	if now.Before(start) {
		return WindowPending
	}
	if !now.Before(end) {
		return WindowClosed
	}
	return WindowOpen
}

func (e *Election) WindowAt(now time.Time) Window {
	return Classify(now, e.StartTime, e.EndTime)
}

// Remaining returns how long until the deadline, never negative.
func Remaining(now, deadline time.Time) time.Duration {
	if !now.Before(deadline) {
		return 0
	}
	return deadline.Sub(now)
}
