package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/adapters/primary/validation"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// AuthHandler exposes staff login.
type AuthHandler struct {
	auth   ports.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth ports.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the token and the authenticated identity.
type LoginResponse struct {
	Token    string    `json:"token"`
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[LoginRequest](r)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	v := validation.NewValidator()
	v.Required("username", req.Username)
	v.Required("password", req.Password)
	if v.HasErrors() {
		HandleError(w, r, h.logger, v.Errors())
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}
