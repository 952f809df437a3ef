package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oneballot/api/internal/core/ports"
)

type AuthHandler struct {
	service ports.OTPService
}

func NewAuthHandler(service ports.OTPService) *AuthHandler {
	return &AuthHandler{service: service}
}

type requestOTPRequest struct {
	IndexNumber string `json:"index_number"`
}

// RequestOTP godoc
// @Summary      Requests a one-time voting code
// @Description  Looks up the voter by roster index and dispatches a one-time code to the registered phone. Subject to the election window and a resend cooldown.
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      404
// @Failure      409
// @Failure      429
// @Router       /elections/{id}/otp [post]
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid election id")
		return
	}

	var req requestOTPRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.IndexNumber == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "index_number is required")
		return
	}

	result, err := h.service.RequestOTP(r.Context(), ports.RequestOTPInput{
		ElectionID: electionID,
		RawIndex:   req.IndexNumber,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type verifyOTPRequest struct {
	VoterID uuid.UUID `json:"voter_id"`
	Code    string    `json:"code"`
}

type verifyOTPResponse struct {
	SessionToken string `json:"session_token"`
}

// VerifyOTP godoc
// @Summary      Verifies a one-time code
// @Description  Checks the submitted code against the stored hash and mints a voting session token. Codes are single use and locked out after repeated failures.
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      401
// @Failure      429
// @Router       /elections/{id}/otp/verify [post]
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid election id")
		return
	}

	var req verifyOTPRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.VoterID == uuid.Nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "voter_id and code are required")
		return
	}

	token, err := h.service.VerifyOTP(r.Context(), ports.VerifyOTPInput{
		ElectionID: electionID,
		VoterID:    req.VoterID,
		Code:       req.Code,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyOTPResponse{SessionToken: token})
}
