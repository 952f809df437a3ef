package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/oneballot/api/internal/adapters/handler/http"
	repo "github.com/oneballot/api/internal/adapters/repository/postgres"
	"github.com/oneballot/api/internal/core/ports"
	"github.com/oneballot/api/internal/core/services"
)

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

// captureSender stands in for the SMS gateway and hands dispatched
// messages to the test through a channel.
type captureSender struct {
	messages chan string
}

func (s *captureSender) Send(_ context.Context, _, message string) error {
	s.messages <- message
	return nil
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Voters      ports.VoterRepository
	Cleanup     *services.CleanupService
	SMS         *captureSender
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	require.NoError(t, applyMigrations(db))

	voterRepo := repo.NewVoterRepository(db)
	electionRepo := repo.NewElectionRepository(db)
	voteRepo := repo.NewVoteRepository(db)

	sms := &captureSender{messages: make(chan string, 16)}
	sessionSvc := services.NewSessionService([]byte("test-secret"), 0)
	otpSvc := services.NewOTPService(voterRepo, electionRepo, sessionSvc, sms, services.DefaultOTPConfig())
	voteSvc := services.NewVoteService(electionRepo, voterRepo, voteRepo)
	electionSvc := services.NewElectionService(electionRepo)

	router := handler.NewHandler(
		handler.NewElectionHandler(electionSvc),
		handler.NewAuthHandler(otpSvc),
		handler.NewVoteHandler(voteSvc),
		sessionSvc,
		voterRepo,
		[]string{"*"},
	)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Voters:      voterRepo,
		Cleanup:     services.NewCleanupService(voterRepo),
		SMS:         sms,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func seedElection(t *testing.T, db *sql.DB, name string, start, end time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		"INSERT INTO elections (id, name, start_time, end_time, created_by, is_published) VALUES ($1, $2, $3, $4, $5, TRUE)",
		id, name, start, end, uuid.New(),
	)
	require.NoError(t, err)
	return id
}

func seedPortfolio(t *testing.T, db *sql.DB, electionID uuid.UUID, title string, yesNo bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		"INSERT INTO portfolios (id, election_id, title, is_yes_no) VALUES ($1, $2, $3, $4)",
		id, electionID, title, yesNo,
	)
	require.NoError(t, err)
	return id
}

func seedCandidate(t *testing.T, db *sql.DB, portfolioID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		"INSERT INTO candidates (id, portfolio_id, name) VALUES ($1, $2, $3)",
		id, portfolioID, name,
	)
	require.NoError(t, err)
	return id
}

func seedVoter(t *testing.T, db *sql.DB, electionID uuid.UUID, index, phone string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		"INSERT INTO voters (id, election_id, index_number, name, phone) VALUES ($1, $2, $3, $4, $5)",
		id, electionID, index, fmt.Sprintf("Voter %s", index), phone,
	)
	require.NoError(t, err)
	return id
}

// postJSON is a small shim over the test server for the endpoints
// every flow touches.
func (app *TestApp) postJSON(t *testing.T, path string, payload interface{}, token string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, app.Server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

func (app *TestApp) requestOTP(t *testing.T, electionID uuid.UUID, index string) *http.Response {
	t.Helper()
	return app.postJSON(t, fmt.Sprintf("/api/elections/%s/otp", electionID),
		map[string]string{"index_number": index}, "")
}

func (app *TestApp) verifyOTP(t *testing.T, electionID, voterID uuid.UUID, code string) *http.Response {
	t.Helper()
	return app.postJSON(t, fmt.Sprintf("/api/elections/%s/otp/verify", electionID),
		map[string]interface{}{"voter_id": voterID, "code": code}, "")
}

// awaitCode waits for the async SMS dispatch and pulls the one-time
// code out of the message text.
func (app *TestApp) awaitCode(t *testing.T) string {
	t.Helper()

	select {
	case msg := <-app.SMS.messages:
		match := codePattern.FindStringSubmatch(msg)
		require.NotNil(t, match, "dispatched message carries no code: %q", msg)
		return match[1]
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for dispatched code")
		return ""
	}
}

// authenticate drives the full OTP flow and returns a session token.
func (app *TestApp) authenticate(t *testing.T, electionID uuid.UUID, index string) (uuid.UUID, string) {
	t.Helper()

	resp := app.requestOTP(t, electionID, index)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reqResult ports.RequestOTPResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reqResult))
	resp.Body.Close()

	code := app.awaitCode(t)

	resp = app.verifyOTP(t, electionID, reqResult.VoterID, code)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var verifyResult struct {
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&verifyResult))
	resp.Body.Close()
	require.NotEmpty(t, verifyResult.SessionToken)

	return reqResult.VoterID, verifyResult.SessionToken
}
