// internal/connections/routes.go

package connections

import (
	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/connections").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/invites", handler.SendInvite).Methods("POST")
	api.HandleFunc("/invites/sent", handler.GetSentInvites).Methods("GET")
	api.HandleFunc("/invites/received", handler.GetReceivedInvites).Methods("GET")
	api.HandleFunc("/invites/{id:[0-9]+}/accept", handler.AcceptInvite).Methods("POST")
	api.HandleFunc("/invites/{id:[0-9]+}/decline", handler.DeclineInvite).Methods("POST")

	api.HandleFunc("/remove", handler.RemoveConnection).Methods("POST")
	api.HandleFunc("/suggestions", handler.GetSuggestions).Methods("GET")
}
