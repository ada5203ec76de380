package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-session-auth-service/internal/http/response"
	"go-session-auth-service/internal/repository"
	"go-session-auth-service/internal/service"
)

const minPasswordLength = 8

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return false
	}
	return true
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

// writeServiceError maps service failures onto the HTTP boundary. All
// unauthenticated variants share one body; only unexpected errors log at
// error severity.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, service.ErrUnauthenticated):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, service.ErrForbidden):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "permission denied")
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(w, r, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
	case errors.Is(err, repository.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
	default:
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
