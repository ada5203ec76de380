package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-session-auth-service/internal/domain"
	"go-session-auth-service/internal/health"
	"go-session-auth-service/internal/http/handler"
	"go-session-auth-service/internal/http/router"
	"go-session-auth-service/internal/repository"
	"go-session-auth-service/internal/security"
	"go-session-auth-service/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testEnv struct {
	baseURL string
	client  *http.Client
	users   repository.UserRepository
	redis   *miniredis.Miniredis
	jwtMgr  *security.JWTManager
}

// newTestEnv stands up the full HTTP stack on an in-memory SQLite store
// and a miniredis-backed revocation ledger.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtMgr := security.NewJWTManager("session-auth-service", "abcdefghijklmnopqrstuvwxyz123456", 15*time.Minute)
	users := repository.NewUserRepository(db)
	ledger := service.NewRedisRevocationLedger(redisClient, "")
	authenticator := service.NewAuthenticator(jwtMgr, ledger, users, logger)
	authSvc := service.NewAuthService(users, ledger, jwtMgr, logger)
	userSvc := service.NewUserService(users)

	probes := health.NewProbeRunner(
		time.Second,
		health.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)

	h := router.New(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc, logger),
		UserHandler:      handler.NewUserHandler(userSvc, logger),
		AdminHandler:     handler.NewAdminHandler(userSvc, logger),
		Authenticator:    authenticator,
		APIRateLimitRPM:  10000,
		AuthRateLimitRPM: 10000,
		Readiness:        probes,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &testEnv{
		baseURL: srv.URL,
		client:  srv.Client(),
		users:   users,
		redis:   mr,
		jwtMgr:  jwtMgr,
	}
}

func (e *testEnv) seedAdmin(t *testing.T, email, password string) *domain.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     "admin",
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return u
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode envelope from %q: %v", raw, err)
		}
	}
	return resp, env
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func tokenFrom(t *testing.T, env envelope) string {
	t.Helper()
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if body.Token == "" {
		t.Fatal("empty token in response")
	}
	return body.Token
}
