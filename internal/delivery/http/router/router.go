package router

import (
	"net/http"

	"authflow/internal/application/auth"
	"authflow/internal/delivery/http/handler"
	"authflow/internal/delivery/http/middleware"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	Auth *handler.AuthHandler
}

// Setup configures all routes for the application
func Setup(handlers Handlers, authService auth.Service, frontendURL string) *http.ServeMux {
	mux := http.NewServeMux()

	// Middleware helpers
	cors := middleware.CORS(frontendURL)
	authRequired := middleware.Auth(authService)

	// Chain helper
	chain := func(h http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}

	// Auth routes (public)
	mux.HandleFunc("/api/auth", cors(handlers.Auth.PerformAuth))
	mux.HandleFunc("/api/auth/logout", cors(handlers.Auth.Logout))

	// Protected routes
	mux.HandleFunc("/api/auth/me", chain(handlers.Auth.Me, cors, authRequired))

	return mux
}
