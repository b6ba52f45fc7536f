// internal/users/handlers.go

package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/common/utils"
)

// Handler handles user-related HTTP requests
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetMyProfile returns the authenticated user's profile. Fetching the
// profile also applies the lazy monthly token reset for premium users.
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

// GetUser returns another user's public profile
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	targetID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.service.GetUser(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's display name and names
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

// SubmitSelfAssessment stores an eco or family self-assessment
func (h *Handler) SubmitSelfAssessment(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req SelfAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.SubmitSelfAssessment(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAssessment):
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown assessment trait")
		case errors.Is(err, ErrScoreOutOfRange):
			utils.RespondWithError(w, http.StatusBadRequest, "Scores must be between 1 and 10")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save assessment")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UploadAvatar handles profile photo upload
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	url, err := h.service.UploadAvatar(r.Context(), userID, file, header)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to upload photo")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"photo_url": url,
	})
}

// Search finds users by display name prefix
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	query := r.URL.Query().Get("q")
	if query == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	users, err := h.service.Search(r.Context(), userID, query)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to search users")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// ListUsers returns a paginated user listing for admins
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	pageSize := 0
	if limit := r.URL.Query().Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil || l < 1 || l > 100 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		pageSize = l
	}

	page, err := h.service.ListUsers(r.Context(), cursor, pageSize)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, page)
}

// SetPremium toggles premium status for a user (admin)
func (h *Handler) SetPremium(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	targetID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req struct {
		Premium bool `json:"premium"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.SetPremium(r.Context(), targetID, req.Premium); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update premium status")
		return
	}

	utils.MessageResponse(w, "Premium status updated", http.StatusOK)
}
