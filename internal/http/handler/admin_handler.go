package handler

import (
	"log/slog"
	"net/http"

	"go-session-auth-service/internal/domain"
	"go-session-auth-service/internal/http/response"
	"go-session-auth-service/internal/observability"
	"go-session-auth-service/internal/service"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	userSvc *service.UserService
	logger  *slog.Logger
}

func NewAdminHandler(userSvc *service.UserService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{userSvc: userSvc, logger: logger}
}

func toProfile(u *domain.User) profileResponse {
	return profileResponse{ID: u.ID, Email: u.Email, Username: u.Username, IsAdmin: u.IsAdmin}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	out := make([]profileResponse, 0, len(users))
	for i := range users {
		out = append(out, toProfile(&users[i]))
	}
	response.JSON(w, r, http.StatusOK, out)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toProfile(user))
}

type createUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.Username == "" || len(req.Password) < minPasswordLength {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email, username and password are required")
		return
	}
	user, err := h.userSvc.CreateUser(r.Context(), service.CreateUserParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "admin.user.create", "target_user_id", user.ID)
	response.JSON(w, r, http.StatusCreated, toProfile(user))
}

type updateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email != nil && !validEmail(*req.Email) {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid email")
		return
	}
	if req.Password != nil && len(*req.Password) < minPasswordLength {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "password too short")
		return
	}
	err := h.userSvc.UpdateUser(r.Context(), id, service.UpdateUserParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "admin.user.update", "target_user_id", id)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "user_updated"})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.userSvc.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "admin.user.delete", "target_user_id", id)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "user_deleted"})
}

type setAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req setAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.userSvc.SetAdmin(r.Context(), id, req.IsAdmin); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	observability.Audit(r, "admin.user.set_admin", "target_user_id", id, "is_admin", req.IsAdmin)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "admin_flag_updated"})
}
