// internal/auth/routes.go

package auth

import "github.com/gorilla/mux"

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *Middleware) {
	api := router.PathPrefix("/api/v1/auth").Subrouter()

	api.HandleFunc("/signup", handler.Signup).Methods("POST")
	api.HandleFunc("/signin", handler.Signin).Methods("POST")
	api.HandleFunc("/refresh", handler.Refresh).Methods("POST")
	api.HandleFunc("/logout", handler.Logout).Methods("POST")

	protected := router.PathPrefix("/api/v1/auth").Subrouter()
	protected.Use(authMiddleware.Authenticate)
	protected.HandleFunc("/logout-all", handler.LogoutAll).Methods("POST")
}
