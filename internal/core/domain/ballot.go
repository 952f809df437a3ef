package domain

import (
	"errors"

	"github.com/google/uuid"
)

// The negative option of a yes/no portfolio is a real candidate row
// created at election setup with this reserved name, so recorded votes
// stay referentially valid without a special case.
const NoCandidateName = "No"

var (
	ErrNoSelection      = errors.New("a selection is required before advancing")
	ErrUnknownPortfolio = errors.New("portfolio is not part of this ballot")
	ErrUnknownCandidate = errors.New("candidate is not an option for this portfolio")
)

// BallotCollector walks a voter through the election's portfolios in
// order, one selection per portfolio. It holds no server-side state;
// only the final complete selection map is submitted. A yes/no
// portfolio requires an explicit Yes or No choice like any other step.
type BallotCollector struct {
	portfolios []Portfolio
	selections map[uuid.UUID]uuid.UUID
	step       int
}

func NewBallotCollector(portfolios []Portfolio) *BallotCollector {
	return &BallotCollector{
		portfolios: portfolios,
		selections: make(map[uuid.UUID]uuid.UUID, len(portfolios)),
	}
}

func (b *BallotCollector) Step() int { return b.step }

func (b *BallotCollector) Len() int { return len(b.portfolios) }

// Current returns the portfolio for the active step, or nil when the
// ballot has no portfolios.
func (b *BallotCollector) Current() *Portfolio {
	if len(b.portfolios) == 0 {
		return nil
	}
	return &b.portfolios[b.step]
}

// Select records a choice for a portfolio. Re-selecting overwrites the
// previous choice; navigation itself is not affected.
func (b *BallotCollector) Select(portfolioID, candidateID uuid.UUID) error {
	for _, p := range b.portfolios {
		if p.ID != portfolioID {
			continue
		}
		for _, c := range p.Candidates {
			if c.ID == candidateID {
				b.selections[portfolioID] = candidateID
				return nil
			}
		}
		return ErrUnknownCandidate
	}
	return ErrUnknownPortfolio
}

// SelectYes picks the single real candidate of a yes/no portfolio and
// SelectNo picks its sentinel negative candidate.
func (b *BallotCollector) SelectYes(portfolioID uuid.UUID) error {
	p := b.find(portfolioID)
	if p == nil || !p.IsYesNo {
		return ErrUnknownPortfolio
	}
	for _, c := range p.Candidates {
		if c.Name != NoCandidateName {
			return b.Select(portfolioID, c.ID)
		}
	}
	return ErrUnknownCandidate
}

func (b *BallotCollector) SelectNo(portfolioID uuid.UUID) error {
	p := b.find(portfolioID)
	if p == nil || !p.IsYesNo {
		return ErrUnknownPortfolio
	}
	for _, c := range p.Candidates {
		if c.Name == NoCandidateName {
			return b.Select(portfolioID, c.ID)
		}
	}
	return ErrUnknownCandidate
}

// Next advances to the following step. Leaving a step forward requires
// a selection for it; Back never does.
func (b *BallotCollector) Next() error {
	cur := b.Current()
	if cur == nil {
		return ErrUnknownPortfolio
	}
	if _, ok := b.selections[cur.ID]; !ok {
		return ErrNoSelection
	}
	if b.step < len(b.portfolios)-1 {
		b.step++
	}
	return nil
}

func (b *BallotCollector) Back() {
	if b.step > 0 {
		b.step--
	}
}

// Complete reports whether every portfolio has a selection.
func (b *BallotCollector) Complete() bool {
	for _, p := range b.portfolios {
		if _, ok := b.selections[p.ID]; !ok {
			return false
		}
	}
	return true
}

// Selections returns a copy of the final portfolio -> candidate map.
func (b *BallotCollector) Selections() map[uuid.UUID]uuid.UUID {
	out := make(map[uuid.UUID]uuid.UUID, len(b.selections))
	for k, v := range b.selections {
		out[k] = v
	}
	return out
}

func (b *BallotCollector) find(portfolioID uuid.UUID) *Portfolio {
	for i := range b.portfolios {
		if b.portfolios[i].ID == portfolioID {
			return &b.portfolios[i]
		}
	}
	return nil
}
