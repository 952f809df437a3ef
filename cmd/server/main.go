package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	handler "github.com/oneballot/api/internal/adapters/handler/http"
	"github.com/oneballot/api/internal/adapters/repository/postgres"
	"github.com/oneballot/api/internal/adapters/sms/twilio"
	"github.com/oneballot/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	electionRepo := postgres.NewElectionRepository(db)
	voterRepo := postgres.NewVoterRepository(db)
	voteRepo := postgres.NewVoteRepository(db)

	smsSender := twilio.NewSender(
		os.Getenv("TWILIO_ACCOUNT_SID"),
		os.Getenv("TWILIO_AUTH_TOKEN"),
		os.Getenv("TWILIO_FROM_NUMBER"),
	)

	sessionSvc := services.NewSessionService([]byte(jwtSecret), services.DefaultSessionTTL)
	otpSvc := services.NewOTPService(voterRepo, electionRepo, sessionSvc, smsSender, services.DefaultOTPConfig())
	electionSvc := services.NewElectionService(electionRepo)
	voteSvc := services.NewVoteService(electionRepo, voterRepo, voteRepo)

	electionHandler := handler.NewElectionHandler(electionSvc)
	authHandler := handler.NewAuthHandler(otpSvc)
	voteHandler := handler.NewVoteHandler(voteSvc)

	var origins []string
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	router := handler.NewHandler(electionHandler, authHandler, voteHandler, sessionSvc, voterRepo, origins)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &stdhttp.Server{Addr: "0.0.0.0:" + port, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
