// internal/users/routes.go

package users

import (
	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/users").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/me", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/me", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/me/avatar", handler.UploadAvatar).Methods("POST")
	api.HandleFunc("/me/self-assessment", handler.SubmitSelfAssessment).Methods("POST")
	api.HandleFunc("/search", handler.Search).Methods("GET")
	api.HandleFunc("/{id:[0-9]+}", handler.GetUser).Methods("GET")

	admin := router.PathPrefix("/api/v1/admin/users").Subrouter()
	admin.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)

	admin.HandleFunc("", handler.ListUsers).Methods("GET")
	admin.HandleFunc("/{id:[0-9]+}/premium", handler.SetPremium).Methods("POST")
}
