// internal/reveal/routes.go

package reveal

import (
	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/reveal-requests").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.SendRequest).Methods("POST")
	api.HandleFunc("", handler.GetPending).Methods("GET")
	api.HandleFunc("/{id:[0-9]+}/respond", handler.Respond).Methods("POST")
}
