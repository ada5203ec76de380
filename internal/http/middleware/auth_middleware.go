package middleware

import (
	"context"
	"errors"
	"net/http"

	"go-session-auth-service/internal/http/response"
	"go-session-auth-service/internal/service"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Authenticate guards a route with the full authentication pipeline.
// Every protected handler goes through this one middleware; there are no
// per-handler extraction variants.
func Authenticate(auth *service.Authenticator) func(http.Handler) http.Handler {
	return guard(auth.Authenticate)
}

// RequireAdmin guards a route with the pipeline plus the admin role
// check. 403 means the identity was valid and the permission was not.
func RequireAdmin(auth *service.Authenticator) func(http.Handler) http.Handler {
	return guard(auth.RequireAdmin)
}

func guard(authFn func(context.Context, string) (*service.Identity, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authFn(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				switch {
				case errors.Is(err, service.ErrForbidden):
					response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "permission denied")
				case errors.Is(err, service.ErrUnauthenticated):
					// Uniform body regardless of the internal reason.
					response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				default:
					response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
				}
				return
			}
			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IdentityFromContext(ctx context.Context) (*service.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*service.Identity)
	return identity, ok
}
