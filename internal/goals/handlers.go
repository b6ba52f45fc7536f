// internal/goals/handlers.go

package goals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/common/utils"
)

// Handler handles family goal HTTP requests
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SendGoal handles suggesting a goal to a family member
func (h *Handler) SendGoal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req SendGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.service.SendGoal(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTrait), errors.Is(err, ErrSelfGoal):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFamily):
			utils.RespondWithError(w, http.StatusForbidden, "User is not in your family circle")
		case errors.Is(err, ErrAlreadyExists):
			utils.RespondWithError(w, http.StatusConflict, "You have already suggested this goal to this family member")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send goal")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, goal)
}

// RespondToGoal handles accepting or declining a suggested goal
func (h *Handler) RespondToGoal(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	goalID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid goal ID")
		return
	}

	var req RespondGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.service.RespondToGoal(r.Context(), userID, goalID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrGoalNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Goal not found")
		case errors.Is(err, ErrNotYourGoal):
			utils.RespondWithError(w, http.StatusForbidden, "Goal was not sent to you")
		case errors.Is(err, ErrGoalResolved):
			utils.RespondWithError(w, http.StatusConflict, "Goal already resolved")
		case errors.Is(err, ErrInvalidStatus):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to respond to goal")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, goal)
}

// GetReceived returns pending goals suggested to the user
func (h *Handler) GetReceived(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	goals, err := h.service.PendingReceived(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get goals")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

// GetSent returns pending goals the user has suggested
func (h *Handler) GetSent(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	goals, err := h.service.PendingSent(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get goals")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

// GetActive returns the user's active and completed goals
func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	goals, err := h.service.ActiveAndCompleted(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get goals")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

// GetTraits returns the family goal vocabulary
func (h *Handler) GetTraits(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"traits": GoalTraits})
}
