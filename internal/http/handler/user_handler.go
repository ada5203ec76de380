package handler

import (
	"log/slog"
	"net/http"

	"go-session-auth-service/internal/http/middleware"
	"go-session-auth-service/internal/http/response"
	"go-session-auth-service/internal/service"
)

type UserHandler struct {
	userSvc *service.UserService
	logger  *slog.Logger
}

func NewUserHandler(userSvc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userSvc: userSvc, logger: logger}
}

type profileResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	user, err := h.userSvc.GetByID(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, profileResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

func (h *UserHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	var req updateEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid email")
		return
	}
	if err := h.userSvc.UpdateEmail(r.Context(), identity.UserID, req.Email); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "email_updated"})
}

type updateUsernameRequest struct {
	Username string `json:"username"`
}

func (h *UserHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	var req updateUsernameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "username is required")
		return
	}
	if err := h.userSvc.UpdateUsername(r.Context(), identity.UserID, req.Username); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "username_updated"})
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	var req updatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "password too short")
		return
	}
	if err := h.userSvc.UpdatePassword(r.Context(), identity.UserID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "password_updated"})
}
