package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type contextKey string

// SessionKey holds the verified *domain.Session for the request.
const SessionKey contextKey = "voterSession"

// SessionAuth verifies the bearer token minted after OTP verification
// and pins it to the election in the URL, so a session for one
// election cannot be replayed against another. A still-live token for
// a voter who has since voted is rejected too; voting exhausts every
// outstanding session.
func SessionAuth(sessions ports.SessionService, voters ports.VoterRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeDomainError(w, domain.ErrUnauthorized)
				return
			}

			session, err := sessions.Verify(token)
			if err != nil {
				writeDomainError(w, err)
				return
			}

			electionID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil || session.ElectionID != electionID {
				writeDomainError(w, domain.ErrUnauthorized)
				return
			}

			voter, err := voters.GetByID(r.Context(), session.VoterID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			if voter == nil || voter.ElectionID != electionID {
				writeDomainError(w, domain.ErrUnauthorized)
				return
			}
			if voter.HasVoted {
				writeDomainError(w, domain.ErrAlreadyVoted)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORS allows the voting frontend to call the API cross-origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
