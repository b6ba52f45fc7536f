// internal/insights/handlers.go

package insights

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/common/utils"
	"github.com/circlescore/circlescore-backend/internal/ratings"
)

// Handler handles insight HTTP requests
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetCircleSummary returns the coach summary for one of the caller's circles
func (h *Handler) GetCircleSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	circleID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid circle ID")
		return
	}

	summary, err := h.service.CircleSummary(r.Context(), userID, circleID)
	if err != nil {
		if errors.Is(err, ratings.ErrCircleNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Circle not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate summary")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// GetEcoSummary returns the coach summary for the caller's eco self-assessment
func (h *Handler) GetEcoSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	summary, err := h.service.EcoSummary(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate summary")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// GetGoalTip returns a practice tip for a family goal trait
func (h *Handler) GetGoalTip(w http.ResponseWriter, r *http.Request) {
	trait := r.URL.Query().Get("trait")
	if trait == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "trait query parameter is required")
		return
	}

	tip, err := h.service.TipForGoal(r.Context(), trait)
	if err != nil {
		if errors.Is(err, ErrInvalidTrait) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate tip")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tip)
}
