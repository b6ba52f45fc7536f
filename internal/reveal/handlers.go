// internal/reveal/handlers.go

package reveal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/common/utils"
)

// Handler handles reveal request HTTP endpoints
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SendRequest handles creating a reveal request
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.service.SendRequest(r.Context(), userID, req.RatingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRatingNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Rating not found")
		case errors.Is(err, ErrNotYourRating):
			utils.RespondWithError(w, http.StatusForbidden, "Rating was not given to you")
		case errors.Is(err, ErrNotAnonymous):
			utils.RespondWithError(w, http.StatusBadRequest, "Rating is already revealed")
		case errors.Is(err, ErrAlreadyRequested):
			utils.RespondWithError(w, http.StatusConflict, "Reveal already requested for this rating")
		case errors.Is(err, ErrInsufficientTokens):
			utils.RespondWithError(w, http.StatusPaymentRequired, "You do not have enough tokens")
		case errors.Is(err, ErrPremiumRequired):
			utils.RespondWithError(w, http.StatusForbidden, "Premium subscription required")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send reveal request")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, request)
}

// Respond handles accepting or declining a pending reveal request
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	requestID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.service.Respond(r.Context(), userID, requestID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Reveal request not found")
		case errors.Is(err, ErrNotYourRequest):
			utils.RespondWithError(w, http.StatusForbidden, "Reveal request was not sent to you")
		case errors.Is(err, ErrAlreadyResolved):
			utils.RespondWithError(w, http.StatusConflict, "Reveal request already resolved")
		case errors.Is(err, ErrInvalidStatus):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to respond to reveal request")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, request)
}

// GetPending returns pending reveal requests addressed to the user
func (h *Handler) GetPending(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	requests, err := h.service.PendingRequests(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get reveal requests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
	})
}
