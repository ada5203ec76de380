package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const minJWTSecretLength = 32

// Config is loaded once from the environment before serving and read-only
// afterwards. The signing secret reaches the token layer as a constructor
// parameter, never as mutable global state.
type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTIssuer string
	JWTSecret string
	TokenTTL  time.Duration

	CORSOrigins      []string
	APIRateLimitRPM  int
	AuthRateLimitRPM int
	BodyLimitBytes   int64

	LogLevel string

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
	EnableOTelHTTP            bool
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:   envString("APP_ENV", "development"),
		HTTPAddr: envString("HTTP_ADDR", ":8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  envString("SQLITE_PATH", "session-auth.db"),

		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTIssuer: envString("JWT_ISSUER", "go-session-auth-service"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		LogLevel: envString("LOG_LEVEL", "info"),

		OTELServiceName:          envString("OTEL_SERVICE_NAME", "go-session-auth-service"),
		OTELEnvironment:          envString("OTEL_ENVIRONMENT", "development"),
		OTELExporterOTLPEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return nil, failLoad(err)
	}
	if cfg.TokenTTL, err = envDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, failLoad(err)
	}
	if cfg.APIRateLimitRPM, err = envInt("API_RATE_LIMIT_RPM", 600); err != nil {
		return nil, failLoad(err)
	}
	if cfg.AuthRateLimitRPM, err = envInt("AUTH_RATE_LIMIT_RPM", 30); err != nil {
		return nil, failLoad(err)
	}
	bodyLimit, err := envInt("BODY_LIMIT_BYTES", 1<<20)
	if err != nil {
		return nil, failLoad(err)
	}
	cfg.BodyLimitBytes = int64(bodyLimit)
	if cfg.OTELMetricsEnabled, err = envBool("OTEL_METRICS_ENABLED", false); err != nil {
		return nil, failLoad(err)
	}
	if cfg.OTELTracesEnabled, err = envBool("OTEL_TRACES_ENABLED", false); err != nil {
		return nil, failLoad(err)
	}
	if cfg.OTELLogsEnabled, err = envBool("OTEL_LOGS_ENABLED", false); err != nil {
		return nil, failLoad(err)
	}
	if cfg.OTELExporterOTLPInsecure, err = envBool("OTEL_EXPORTER_OTLP_INSECURE", true); err != nil {
		return nil, failLoad(err)
	}
	if cfg.OTELMetricsExportInterval, err = envDuration("OTEL_METRICS_EXPORT_INTERVAL", 15*time.Second); err != nil {
		return nil, failLoad(err)
	}
	if cfg.EnableOTelHTTP, err = envBool("OTEL_HTTP_ENABLED", false); err != nil {
		return nil, failLoad(err)
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, failLoad(err)
	}
	recordConfigValidationEvent(context.Background(), cfg.AppEnv, "success", "none")
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("validate config: JWT_SECRET is required")
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("validate config: JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("validate config: TOKEN_TTL must be positive")
	}
	if c.AppEnv == "production" && c.DatabaseURL == "" {
		return fmt.Errorf("validate config: DATABASE_URL is required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func failLoad(err error) error {
	recordConfigValidationEvent(context.Background(), os.Getenv("APP_ENV"), "failure", classifyConfigLoadError(err))
	return err
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
