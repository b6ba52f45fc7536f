// internal/insights/routes.go

package insights

import (
	"github.com/gorilla/mux"

	"github.com/circlescore/circlescore-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/insights").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/circles/{id:[0-9]+}", handler.GetCircleSummary).Methods("GET")
	api.HandleFunc("/eco", handler.GetEcoSummary).Methods("GET")
	api.HandleFunc("/goal-tip", handler.GetGoalTip).Methods("GET")
}
