package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"go-session-auth-service/internal/health"
	"go-session-auth-service/internal/http/handler"
	"go-session-auth-service/internal/http/middleware"
	"go-session-auth-service/internal/http/response"
	"go-session-auth-service/internal/service"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	AdminHandler     *handler.AdminHandler
	Authenticator    *service.Authenticator
	CORSOrigins      []string
	APIRateLimitRPM  int
	AuthRateLimitRPM int
	BodyLimitBytes   int64
	Readiness        *health.ProbeRunner
	EnableOTelHTTP   bool
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	bodyLimit := dep.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}
	r.Use(middleware.BodyLimit(bodyLimit))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	authenticated := middleware.Authenticate(dep.Authenticator)
	adminOnly := middleware.RequireAdmin(dep.Authenticator)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authenticated).Post("/logout", dep.AuthHandler.Logout)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", dep.UserHandler.Me)
			r.Put("/email", dep.UserHandler.UpdateEmail)
			r.Put("/username", dep.UserHandler.UpdateUsername)
			r.With(authLimiter).Put("/password", dep.UserHandler.UpdatePassword)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/users", dep.AdminHandler.ListUsers)
			r.Post("/users", dep.AdminHandler.CreateUser)
			r.Get("/users/{id}", dep.AdminHandler.GetUser)
			r.Put("/users/{id}", dep.AdminHandler.UpdateUser)
			r.Delete("/users/{id}", dep.AdminHandler.DeleteUser)
			r.Put("/users/{id}/admin", dep.AdminHandler.SetAdmin)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
