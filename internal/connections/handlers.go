// internal/connections/handlers.go

package connections

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/common/utils"
)

// Handler handles connection and invite HTTP requests
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SendInvite handles sending a circle invite
func (h *Handler) SendInvite(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req SendInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	invite, err := h.service.SendInvite(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingRecipient), errors.Is(err, ErrSelfInvite):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrCircleNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Circle not found")
		case errors.Is(err, ErrAlreadyMember):
			utils.RespondWithError(w, http.StatusConflict, "User is already a member of this circle")
		case errors.Is(err, ErrAlreadyInvited):
			utils.RespondWithError(w, http.StatusConflict, "An invitation for this user and circle already exists")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send invite")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, invite)
}

// GetSentInvites returns the caller's pending sent invites
func (h *Handler) GetSentInvites(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	invites, err := h.service.SentInvites(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get invites")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"invites": invites,
	})
}

// GetReceivedInvites returns pending invites addressed to the caller
func (h *Handler) GetReceivedInvites(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	invites, err := h.service.ReceivedInvites(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get invites")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"invites": invites,
	})
}

// AcceptInvite handles accepting an invite
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	inviteID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid invite ID")
		return
	}

	invite, err := h.service.AcceptInvite(r.Context(), userID, inviteID)
	if err != nil {
		h.respondInviteError(w, err, "Failed to accept invite")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, invite)
}

// DeclineInvite handles declining an invite
func (h *Handler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	inviteID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid invite ID")
		return
	}

	if err := h.service.DeclineInvite(r.Context(), userID, inviteID); err != nil {
		h.respondInviteError(w, err, "Failed to decline invite")
		return
	}

	utils.MessageResponse(w, "Invite declined", http.StatusOK)
}

func (h *Handler) respondInviteError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInviteNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Invite not found")
	case errors.Is(err, ErrNotYourInvite):
		utils.RespondWithError(w, http.StatusForbidden, "Invite was not sent to you")
	case errors.Is(err, ErrInviteResolved):
		utils.RespondWithError(w, http.StatusConflict, "Invite already resolved")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// RemoveConnection handles removing a user from one of the caller's
// circles
func (h *Handler) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req RemoveConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RemoveConnection(r.Context(), userID, &req); err != nil {
		if errors.Is(err, ErrCircleNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Circle not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to remove connection")
		return
	}

	utils.MessageResponse(w, "Connection removed", http.StatusOK)
}

// GetSuggestions returns second-degree connection suggestions
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	suggestions, err := h.service.SuggestedUsers(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get suggestions")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}
