package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"authflow/internal/application/auth"
	"authflow/internal/domain/user"
)

type AuthHandler struct {
	service auth.Service
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// AuthRequest is the single entry point contract: mode selects the
// operation, identifier is an email or username told apart by shape.
type AuthRequest struct {
	Mode       string `json:"mode"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// PerformAuth handles POST /api/auth
func (h *AuthHandler) PerformAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		SendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	mode := auth.Mode(req.Mode)
	if mode != auth.ModeLogin && mode != auth.ModeSignup {
		SendError(w, "Mode must be login or signup", http.StatusBadRequest)
		return
	}

	// Advisory field validation only; the service revalidates nothing
	// here — this just avoids pointless round trips to the database.
	if req.Identifier == "" || req.Password == "" {
		SendError(w, "Identifier and password are required", http.StatusBadRequest)
		return
	}
	if mode == auth.ModeSignup {
		if len(req.Password) < 6 {
			SendError(w, "Password must be at least 6 characters", http.StatusBadRequest)
			return
		}
		// An identifier with '@' that fails the email shape would be
		// stored as a username; reject it before it reaches the store.
		if strings.Contains(req.Identifier, "@") && auth.ClassifyIdentifier(req.Identifier) != auth.KindEmail {
			SendError(w, "Invalid email address", http.StatusBadRequest)
			return
		}
	}

	result, err := h.service.PerformAuth(r.Context(), mode, req.Identifier, req.Password)
	if err != nil {
		SendError(w, errorMessage(err), errorStatus(err))
		return
	}

	if result.Token != "" {
		SetSessionCookie(w, result.Token, int(h.service.TokenTTL().Seconds()))
	}
	SendSuccess(w, "", nil)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		SendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u := GetUserFromContext(r.Context())
	if u == nil {
		SendError(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	SendSuccess(w, "", u.ToResponse())
}

// Logout handles POST /api/auth/logout. It only clears the client
// cookie; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		SendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ClearSessionCookie(w)
	SendSuccess(w, "Logged out successfully", nil)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		return "Email already registered."
	case errors.Is(err, user.ErrUsernameTaken):
		return "Username already taken."
	case errors.Is(err, user.ErrUserNotFound):
		return "User not found."
	case errors.Is(err, user.ErrInvalidPassword):
		return "Invalid password."
	default:
		return "Database error."
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, user.ErrEmailTaken), errors.Is(err, user.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrInvalidPassword):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
