package handler

import (
	"log/slog"
	"net/http"

	"go-session-auth-service/internal/http/middleware"
	"go-session-auth-service/internal/http/response"
	"go-session-auth-service/internal/observability"
	"go-session-auth-service/internal/service"
)

type AuthHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.Username == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email and username are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "password too short")
		return
	}

	token, err := h.authSvc.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "auth.register")
	response.JSON(w, r, http.StatusCreated, tokenResponse{Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "auth.login")
	response.JSON(w, r, http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	if err := h.authSvc.Logout(r.Context(), identity); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "auth.logout", "user_id", identity.UserID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}
