package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

type submitVotesRequest struct {
	// Selections maps portfolio id -> chosen candidate id.
	Selections map[uuid.UUID]uuid.UUID `json:"selections"`
}

// SubmitVotes godoc
// @Summary      Submits a complete ballot
// @Description  Records one vote per portfolio atomically and marks the voter as having voted. Safe to retry: a ballot is never double-counted.
// @Tags         votes
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      401
// @Failure      409
// @Router       /elections/{id}/votes [post]
func (h *VoteHandler) SubmitVotes(w http.ResponseWriter, r *http.Request) {
	session, ok := r.Context().Value(SessionKey).(*domain.Session)
	if !ok {
		writeDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req submitVotesRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	// Completeness belongs to the service: an empty map is an
	// incomplete ballot, not a malformed request.
	result, err := h.service.Submit(r.Context(), ports.SubmitInput{
		VoterID:    session.VoterID,
		ElectionID: session.ElectionID,
		Selections: req.Selections,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
