package middleware

import (
	"context"
	"net/http"
	"strings"

	"authflow/internal/application/auth"
	"authflow/internal/delivery/http/handler"
)

// Auth middleware validates the session token and loads the user
func Auth(authService auth.Service) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				handler.SendError(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			u, err := authService.UserFromToken(r.Context(), token)
			if err != nil {
				handler.SendError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			// Add user to context
			ctx := context.WithValue(r.Context(), handler.UserContextKey, u)
			next(w, r.WithContext(ctx))
		}
	}
}

func extractToken(r *http.Request) string {
	// The cookie is the primary carrier
	if token, ok := handler.ReadSessionCookie(r); ok {
		return token
	}

	// Bearer fallback for non-browser clients
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
