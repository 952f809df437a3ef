package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/domain"
	"github.com/oneballot/api/internal/core/ports"
)

type ElectionHandler struct {
	service ports.ElectionService
}

func NewElectionHandler(service ports.ElectionService) *ElectionHandler {
	return &ElectionHandler{service: service}
}

type electionStatusResponse struct {
	ElectionID       uuid.UUID `json:"election_id"`
	Name             string    `json:"name"`
	Window           string    `json:"window"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// Status godoc
// @Summary      Reports the election window
// @Description  The server-side classification of the voting window. Client countdowns render this; they never gate access.
// @Tags         elections
// @Success      200
// @Failure      404
// @Router       /elections/{id} [get]
func (h *ElectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid election id")
		return
	}

	status, err := h.service.Status(r.Context(), electionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, electionStatusResponse{
		ElectionID:       status.ElectionID,
		Name:             status.Name,
		Window:           status.Window,
		StartTime:        status.StartTime,
		EndTime:          status.EndTime,
		RemainingSeconds: int64(status.Remaining.Seconds()),
	})
}

type ballotResponse struct {
	Portfolios []domain.Portfolio `json:"portfolios"`
}

// Ballot godoc
// @Summary      Returns the ordered ballot
// @Description  Portfolios with their candidates in voting order, for a verified session.
// @Tags         elections
// @Success      200
// @Failure      401
// @Router       /elections/{id}/ballot [get]
func (h *ElectionHandler) Ballot(w http.ResponseWriter, r *http.Request) {
	session, ok := r.Context().Value(SessionKey).(*domain.Session)
	if !ok {
		writeDomainError(w, domain.ErrUnauthorized)
		return
	}

	portfolios, err := h.service.Ballot(r.Context(), session.ElectionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ballotResponse{Portfolios: portfolios})
}
