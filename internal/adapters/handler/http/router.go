package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oneballot/api/internal/core/ports"
)

func NewHandler(electionHandler *ElectionHandler, authHandler *AuthHandler, voteHandler *VoteHandler, sessions ports.SessionService, voters ports.VoterRepository, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})

		r.Route("/elections/{id}", func(r chi.Router) {
			r.Get("/", electionHandler.Status)
			r.Post("/otp", authHandler.RequestOTP)
			r.Post("/otp/verify", authHandler.VerifyOTP)

			r.Group(func(r chi.Router) {
				r.Use(SessionAuth(sessions, voters))
				r.Get("/ballot", electionHandler.Ballot)
				r.Post("/votes", voteHandler.SubmitVotes)
			})
		})
	})

	return r
}
