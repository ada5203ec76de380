package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-session-auth-service/internal/domain"
	"go-session-auth-service/internal/observability"
	"go-session-auth-service/internal/repository"
	"go-session-auth-service/internal/security"

	"github.com/google/uuid"
)

// AuthService owns the issuance side of the session model: registration,
// credential login with the session-version bump, and logout via the
// revocation ledger.
type AuthService struct {
	users  repository.UserRepository
	ledger RevocationLedger
	jwtMgr *security.JWTManager
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, ledger RevocationLedger, jwtMgr *security.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, ledger: ledger, jwtMgr: jwtMgr, logger: logger}
}

// Register creates the account at session version zero and returns a
// token bound to that version.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (string, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		observability.RecordAuthRegister("conflict")
		return "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		observability.RecordAuthRegister("error")
		return "", err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		observability.RecordAuthRegister("error")
		return "", err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		observability.RecordAuthRegister("error")
		return "", err
	}

	token, err := s.jwtMgr.Issue(user.ID, user.SessionVersion)
	if err != nil {
		observability.RecordAuthRegister("error")
		return "", err
	}
	observability.RecordAuthRegister("success")
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return token, nil
}

// Login verifies credentials and atomically bumps the session-version
// counter before issuing. The bump silently invalidates every token from
// earlier logins without touching the ledger.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthLogin("invalid_credentials")
			return "", ErrInvalidCredentials
		}
		observability.RecordAuthLogin("error")
		return "", err
	}
	if !security.VerifyPassword(user.PasswordHash, password) {
		observability.RecordAuthLogin("invalid_credentials")
		return "", ErrInvalidCredentials
	}

	version, err := s.users.BumpSessionVersion(ctx, user.ID)
	if err != nil {
		observability.RecordAuthLogin("error")
		return "", err
	}
	token, err := s.jwtMgr.Issue(user.ID, version)
	if err != nil {
		observability.RecordAuthLogin("error")
		return "", err
	}
	observability.RecordAuthLogin("success")
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "session_version", version)
	return token, nil
}

// Logout writes one ledger entry covering the token's remaining lifetime.
// A token at or past expiry is skipped: revoking a dead token is wasted
// work, not an error.
func (s *AuthService) Logout(ctx context.Context, identity *Identity) error {
	ttl := time.Until(identity.ExpiresAt)
	if ttl <= 0 {
		observability.RecordAuthLogout("skipped")
		return nil
	}
	if err := s.ledger.Revoke(ctx, identity.Token, ttl); err != nil {
		observability.RecordAuthLogout("error")
		return err
	}
	observability.RecordAuthLogout("success")
	s.logger.InfoContext(ctx, "user logged out", "user_id", identity.UserID)
	return nil
}
