// internal/ratings/handlers.go

package ratings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/circles"
	"github.com/circlescore/circlescore-backend/internal/common/utils"
)

// Handler handles rating HTTP requests
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SubmitRating handles circle rating submission
func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rating, err := h.service.SubmitRating(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCircle), errors.Is(err, ErrInvalidTrait), errors.Is(err, ErrScoreOutOfRange):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrSelfRating):
			utils.RespondWithError(w, http.StatusBadRequest, "You cannot rate yourself")
		case errors.Is(err, ErrNotInCircle):
			utils.RespondWithError(w, http.StatusForbidden, "User is not in your circle")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit rating")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, rating)
}

// SubmitAttractionRating handles attraction rating submission
func (h *Handler) SubmitAttractionRating(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req SubmitAttractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rating, err := h.service.SubmitAttractionRating(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTrait), errors.Is(err, ErrScoreOutOfRange):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrSelfRating):
			utils.RespondWithError(w, http.StatusBadRequest, "You cannot rate yourself")
		case errors.Is(err, ErrInsufficientTokens):
			utils.RespondWithError(w, http.StatusPaymentRequired, "You need a token to rate users outside your circles")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit attraction rating")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, rating)
}

// GetCircles returns the dashboard overview of all owned circles
func (h *Handler) GetCircles(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	overviews, err := h.service.CircleOverviews(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get circles")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"circles": overviews,
	})
}

// GetCircleDetail returns one owned circle with rating history
func (h *Handler) GetCircleDetail(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	circleID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid circle ID")
		return
	}

	detail, err := h.service.CircleDetail(r.Context(), userID, circleID)
	if err != nil {
		if errors.Is(err, ErrCircleNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Circle not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get circle")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

// GetReceivedAttraction returns attraction averages and ratings for the
// authenticated user
func (h *Handler) GetReceivedAttraction(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	summary, err := h.service.ReceivedAttraction(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get attraction ratings")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// GetTraits returns the full trait vocabulary for every circle type plus
// the attraction traits
func (h *Handler) GetTraits(w http.ResponseWriter, r *http.Request) {
	circleVocab := make(map[string][]string, len(circles.AllNames))
	for _, name := range circles.AllNames {
		circleVocab[string(name)] = circles.TraitsFor(name)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"circle_traits":         circleVocab,
		"trait_definitions":     circles.TraitDefinitions,
		"attraction_traits":     AttractionTraits,
		"attraction_definitions": AttractionTraitDefinitions,
	})
}
