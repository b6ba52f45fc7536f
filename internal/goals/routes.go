// internal/goals/routes.go

package goals

import (
	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/goals").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.SendGoal).Methods("POST")
	api.HandleFunc("/received", handler.GetReceived).Methods("GET")
	api.HandleFunc("/sent", handler.GetSent).Methods("GET")
	api.HandleFunc("/active", handler.GetActive).Methods("GET")
	api.HandleFunc("/traits", handler.GetTraits).Methods("GET")
	api.HandleFunc("/{id:[0-9]+}/respond", handler.RespondToGoal).Methods("POST")
}
