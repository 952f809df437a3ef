package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
)

type fakeVoterRepo struct {
	voters map[uuid.UUID]*domain.Voter

	issueErr   error
	consumeErr error

	issuedVoterID  uuid.UUID
	issuedHash     string
	issuedExpires  time.Time
	issuedSent     time.Time
	issuedCooldown time.Duration

	consumedVoterID uuid.UUID
	consumedHash    string
	consumedMax     int
}

func newFakeVoterRepo(voters ...*domain.Voter) *fakeVoterRepo {
	m := make(map[uuid.UUID]*domain.Voter, len(voters))
	for _, v := range voters {
		m[v.ID] = v
	}
	return &fakeVoterRepo{voters: m}
}

func (f *fakeVoterRepo) GetByIndex(_ context.Context, electionID uuid.UUID, index string) (*domain.Voter, error) {
	for _, v := range f.voters {
		if v.ElectionID == electionID && v.Index == index {
			return v, nil
		}
	}
	return nil, nil
}

func (f *fakeVoterRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Voter, error) {
	return f.voters[id], nil
}

func (f *fakeVoterRepo) IssueOTP(_ context.Context, voterID uuid.UUID, codeHash string, expiresAt, sentAt time.Time, cooldown time.Duration) error {
	if f.issueErr != nil {
		return f.issueErr
	}
	f.issuedVoterID = voterID
	f.issuedHash = codeHash
	f.issuedExpires = expiresAt
	f.issuedSent = sentAt
	f.issuedCooldown = cooldown
	return nil
}

func (f *fakeVoterRepo) ConsumeOTP(_ context.Context, voterID uuid.UUID, codeHash string, maxAttempts int) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.consumedVoterID = voterID
	f.consumedHash = codeHash
	f.consumedMax = maxAttempts
	return nil
}

func (f *fakeVoterRepo) ClearExpiredOTPs(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeElectionRepo struct {
	election   *domain.Election
	portfolios []domain.Portfolio
}

func (f *fakeElectionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Election, error) {
	if f.election == nil || f.election.ID != id {
		return nil, nil
	}
	return f.election, nil
}

func (f *fakeElectionRepo) GetPortfolios(_ context.Context, _ uuid.UUID) ([]domain.Portfolio, error) {
	return f.portfolios, nil
}

type fakeVoteRepo struct {
	recordErr     error
	recordedVotes []domain.Vote
	recordedVoter uuid.UUID
}

func (f *fakeVoteRepo) RecordBallot(_ context.Context, votes []domain.Vote, voterID uuid.UUID) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recordedVotes = votes
	f.recordedVoter = voterID
	return nil
}

func (f *fakeVoteRepo) CountByVoter(_ context.Context, voterID uuid.UUID) (int, error) {
	count := 0
	for _, v := range f.recordedVotes {
		if v.VoterID == voterID {
			count++
		}
	}
	return count, nil
}

type sentSMS struct {
	phone   string
	message string
}

type fakeSMSSender struct {
	mu       sync.Mutex
	sent     []sentSMS
	sendErr  error
	delivery chan sentSMS
}

func newFakeSMSSender() *fakeSMSSender {
	return &fakeSMSSender{delivery: make(chan sentSMS, 8)}
}

func (f *fakeSMSSender) Send(_ context.Context, phone, message string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	msg := sentSMS{phone: phone, message: message}
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	f.delivery <- msg
	return nil
}
