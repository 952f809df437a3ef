package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oneballot/api/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{Error: code, Message: message})
}

// writeDomainError maps the error taxonomy to stable codes. Anything
// outside the taxonomy is a single-request failure, logged and
// reported as internal.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrElectionNotFound), errors.Is(err, domain.ErrVoterNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, domain.ErrElectionNotOpen):
		writeError(w, http.StatusForbidden, "election_not_open", err.Error())
	case errors.Is(err, domain.ErrTooManyRequests):
		writeError(w, http.StatusTooManyRequests, "too_many_requests", err.Error())
	case errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusUnauthorized, "invalid_code", err.Error())
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusUnauthorized, "code_expired", err.Error())
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, "too_many_attempts", err.Error())
	case errors.Is(err, domain.ErrIncompleteSelection):
		writeError(w, http.StatusBadRequest, "incomplete_selection", err.Error())
	case errors.Is(err, domain.ErrInvalidSelection):
		writeError(w, http.StatusBadRequest, "invalid_selection", err.Error())
	case errors.Is(err, domain.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "session_expired", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// decodeStrict parses a JSON body rejecting unknown fields, so
// malformed payloads fail loudly instead of being coerced.
func decodeStrict(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
