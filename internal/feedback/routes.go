// internal/feedback/routes.go

package feedback

import (
	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/feedback").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.HandleFunc("", handler.SubmitFeedback).Methods("POST")

	admin := router.PathPrefix("/api/v1/admin/feedback").Subrouter()
	admin.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)
	admin.HandleFunc("", handler.ListFeedback).Methods("GET")
}
