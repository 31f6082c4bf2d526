package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-admin/internal/config"
	"github.com/jonathan/career-admin/internal/types"
)

// AuthHandler handles the admin login request.
type AuthHandler struct {
	auth       *config.AuthConfig
	jwtService *JWTService
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(auth *config.AuthConfig, jwtService *JWTService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		jwtService: jwtService,
		validator:  validator.New(),
		logger:     logger,
	}
}

// Login exchanges the admin username and password for a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, &ErrValidation{Message: "invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeJSONError(w, err)
		return
	}

	if !h.auth.CheckAdmin(req.Username, req.Password) {
		h.logger.Warn("login failed", "username", req.Username, "remote", extractClientID(r))
		writeJSONError(w, &ErrInvalidCredentials{})
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(req.Username)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		writeJSONError(w, err)
		return
	}

	response := types.LoginResponse{
		Username:  req.Username,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// writeJSONError writes a classified error without needing a Server
func writeJSONError(w http.ResponseWriter, err error) {
	e := classify(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": e.Kind, "message": e.Message})
}
