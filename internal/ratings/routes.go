// internal/ratings/routes.go

package ratings

import (
	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/ratings", handler.SubmitRating).Methods("POST")
	api.HandleFunc("/ratings/attraction", handler.SubmitAttractionRating).Methods("POST")
	api.HandleFunc("/ratings/attraction/received", handler.GetReceivedAttraction).Methods("GET")

	api.HandleFunc("/circles", handler.GetCircles).Methods("GET")
	api.HandleFunc("/circles/{id:[0-9]+}", handler.GetCircleDetail).Methods("GET")

	api.HandleFunc("/traits", handler.GetTraits).Methods("GET")
}
