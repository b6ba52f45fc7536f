// internal/feedback/handlers.go

package feedback

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/circlescore/circlescore-backend/internal/common/utils"
)

// Handler handles feedback HTTP requests
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SubmitFeedback handles an app feedback submission
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	fb, err := h.service.Submit(r.Context(), userID, &req)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, fb)
}

// ListFeedback returns the paginated admin listing, newest first
func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list feedback")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}
