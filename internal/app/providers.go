package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-session-auth-service/internal/config"
	"go-session-auth-service/internal/domain"
	"go-session-auth-service/internal/health"
	"go-session-auth-service/internal/http/handler"
	"go-session-auth-service/internal/http/router"
	"go-session-auth-service/internal/security"
	"go-session-auth-service/internal/service"
)

// OpenDatabase connects to Postgres when DATABASE_URL is set and falls back
// to the local SQLite file otherwise, then runs schema migration.
func OpenDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	dialector := gorm.Dialector(sqlite.Open(cfg.SQLitePath))
	if cfg.DatabaseURL != "" {
		dialector = postgres.Open(cfg.DatabaseURL)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database ready", "postgres", cfg.DatabaseURL != "")
	return db, nil
}

func NewRedisClient(cfg *config.Config) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTSecret, cfg.TokenTTL)
}

func provideRevocationLedger(client redis.UniversalClient) service.RevocationLedger {
	return service.NewRedisRevocationLedger(client, "")
}

func provideProbeRunner(db *gorm.DB, client redis.UniversalClient) *health.ProbeRunner {
	return health.NewProbeRunner(
		2*time.Second,
		health.Probe{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		health.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}},
	)
}

func provideRouter(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	authenticator *service.Authenticator,
	readiness *health.ProbeRunner,
) http.Handler {
	return router.New(router.Dependencies{
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		AdminHandler:     adminHandler,
		Authenticator:    authenticator,
		CORSOrigins:      cfg.CORSOrigins,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		BodyLimitBytes:   cfg.BodyLimitBytes,
		Readiness:        readiness,
		EnableOTelHTTP:   cfg.EnableOTelHTTP,
	})
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
