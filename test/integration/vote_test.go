package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seededBallot struct {
	electionID   uuid.UUID
	presidentID  uuid.UUID
	candidateAID uuid.UUID
	candidateBID uuid.UUID
	treasurerID  uuid.UUID
	yesID        uuid.UUID
	noID         uuid.UUID
}

// seedBallot builds a two-portfolio ballot: a contested race and an
// unopposed yes/no race.
func seedBallot(t *testing.T, app *TestApp) seededBallot {
	t.Helper()

	now := time.Now()
	electionID := seedElection(t, app.DB, "SRC General Election", now.Add(-time.Hour), now.Add(time.Hour))

	presidentID := seedPortfolio(t, app.DB, electionID, "President", false)
	candidateAID := seedCandidate(t, app.DB, presidentID, "Ama Mensah")
	candidateBID := seedCandidate(t, app.DB, presidentID, "Kojo Asante")

	treasurerID := seedPortfolio(t, app.DB, electionID, "Treasurer", true)
	yesID := seedCandidate(t, app.DB, treasurerID, "Efua Owusu")
	noID := seedCandidate(t, app.DB, treasurerID, "No")

	return seededBallot{
		electionID:   electionID,
		presidentID:  presidentID,
		candidateAID: candidateAID,
		candidateBID: candidateBID,
		treasurerID:  treasurerID,
		yesID:        yesID,
		noID:         noID,
	}
}

func (b seededBallot) completeSelections() map[string]string {
	return map[string]string{
		b.presidentID.String(): b.candidateAID.String(),
		b.treasurerID.String(): b.yesID.String(),
	}
}

func (app *TestApp) submitVotes(t *testing.T, electionID uuid.UUID, token string, selections map[string]string) *http.Response {
	t.Helper()
	return app.postJSON(t, fmt.Sprintf("/api/elections/%s/votes", electionID),
		map[string]interface{}{"selections": selections}, token)
}

func (app *TestApp) countVotes(t *testing.T, portfolioID, voterID uuid.UUID) int {
	t.Helper()

	var count int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE portfolio_id = $1 AND voter_id = $2", portfolioID, voterID).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestBallotSubmission(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	ballot := seedBallot(t, app)
	seedVoter(t, app.DB, ballot.electionID, "1000", "233240000001")
	voterID, token := app.authenticate(t, ballot.electionID, "1000")

	// 1. Submit the full ballot.
	resp := app.submitVotes(t, ballot.electionID, token, ballot.completeSelections())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 1, app.countVotes(t, ballot.presidentID, voterID))
	assert.Equal(t, 1, app.countVotes(t, ballot.treasurerID, voterID))

	var hasVoted bool
	err := app.DB.QueryRow("SELECT has_voted FROM voters WHERE id = $1", voterID).Scan(&hasVoted)
	require.NoError(t, err)
	assert.True(t, hasVoted)

	// 2. A second submission is refused and records nothing new.
	resp = app.submitVotes(t, ballot.electionID, token, ballot.completeSelections())
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 1, app.countVotes(t, ballot.presidentID, voterID))

	// 3. So is a fresh OTP request after voting.
	resp = app.requestOTP(t, ballot.electionID, "1000")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// 4. The still-live session no longer opens the ballot either.
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/elections/%s/ballot", app.Server.URL, ballot.electionID), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestIncompleteBallotRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	ballot := seedBallot(t, app)
	seedVoter(t, app.DB, ballot.electionID, "1001", "233240000002")
	voterID, token := app.authenticate(t, ballot.electionID, "1001")

	partial := map[string]string{
		ballot.presidentID.String(): ballot.candidateAID.String(),
	}
	resp := app.submitVotes(t, ballot.electionID, token, partial)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Nothing sticks from a rejected ballot.
	assert.Equal(t, 0, app.countVotes(t, ballot.presidentID, voterID))

	var hasVoted bool
	err := app.DB.QueryRow("SELECT has_voted FROM voters WHERE id = $1", voterID).Scan(&hasVoted)
	require.NoError(t, err)
	assert.False(t, hasVoted)
}

func TestForeignCandidateRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	ballot := seedBallot(t, app)
	seedVoter(t, app.DB, ballot.electionID, "1002", "233240000003")
	voterID, token := app.authenticate(t, ballot.electionID, "1002")

	// The treasurer selection names a presidential candidate.
	crossed := map[string]string{
		ballot.presidentID.String(): ballot.candidateAID.String(),
		ballot.treasurerID.String(): ballot.candidateBID.String(),
	}
	resp := app.submitVotes(t, ballot.electionID, token, crossed)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 0, app.countVotes(t, ballot.presidentID, voterID))
}

// TestConcurrentSubmissions races identical ballots from one session:
// exactly one wins, and the store holds exactly one vote per portfolio.
func TestConcurrentSubmissions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	ballot := seedBallot(t, app)
	seedVoter(t, app.DB, ballot.electionID, "1003", "233240000004")
	voterID, token := app.authenticate(t, ballot.electionID, "1003")

	payload, err := json.Marshal(map[string]interface{}{"selections": ballot.completeSelections()})
	require.NoError(t, err)
	url := fmt.Sprintf("%s/api/elections/%s/votes", app.Server.URL, ballot.electionID)

	const racers = 8
	statuses := make(chan int, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
			if err != nil {
				statuses <- 0
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Client.Do(req)
			if err != nil {
				statuses <- 0
				return
			}
			statuses <- resp.StatusCode
			resp.Body.Close()
		}()
	}
	wg.Wait()
	close(statuses)

	created, conflicted := 0, 0
	for status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Fatalf("unexpected status %d", status)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, racers-1, conflicted)

	assert.Equal(t, 1, app.countVotes(t, ballot.presidentID, voterID))
	assert.Equal(t, 1, app.countVotes(t, ballot.treasurerID, voterID))
}
