// internal/auth/handlers.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/circlescore/circlescore-backend/internal/common/utils"
)

// Handler handles authentication HTTP requests
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Signup handles account registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			utils.RespondWithError(w, http.StatusConflict, "Email already registered")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// Signin handles login
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Signin(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, ErrTooManyAttempts):
			utils.RespondWithError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to sign in")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new session
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Logout revokes the supplied refresh token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	utils.MessageResponse(w, "Logged out", http.StatusOK)
}

// LogoutAll revokes every session for the authenticated user
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	if err := h.service.LogoutAllDevices(r.Context(), userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	utils.MessageResponse(w, "Logged out of all devices", http.StatusOK)
}
