//go:build wireinject
// +build wireinject

package app

import (
	"log/slog"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"go-session-auth-service/internal/config"
	"go-session-auth-service/internal/http/handler"
	"go-session-auth-service/internal/observability"
	"go-session-auth-service/internal/repository"
	"go-session-auth-service/internal/service"
)

func InitializeApp(
	cfg *config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	runtime *observability.Runtime,
) *App {
	wire.Build(
		repository.NewUserRepository,
		provideJWTManager,
		provideRevocationLedger,
		service.NewAuthenticator,
		service.NewAuthService,
		service.NewUserService,
		handler.NewAuthHandler,
		handler.NewUserHandler,
		handler.NewAdminHandler,
		provideProbeRunner,
		provideRouter,
		provideHTTPServer,
		New,
	)
	return nil
}
