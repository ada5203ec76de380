package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-session-auth-service/internal/observability"
	"go-session-auth-service/internal/repository"
	"go-session-auth-service/internal/security"
)

// Identity is the verified result of a full authentication pipeline run.
// The raw token and expiry are retained so logout can compute the ledger
// TTL; IsAdmin is retained so the authorization gate needs no second
// store round trip.
type Identity struct {
	UserID         string
	Token          string
	ExpiresAt      time.Time
	SessionVersion int64
	IsAdmin        bool
}

// Authenticator is the single authentication pipeline every protected
// handler goes through: bearer extraction, signature and expiry check,
// revocation-ledger lookup, user-record lookup, session-version
// comparison. Each step short-circuits; every failure collapses to
// ErrUnauthenticated at the boundary.
type Authenticator struct {
	jwtMgr *security.JWTManager
	ledger RevocationLedger
	users  repository.UserRepository
	logger *slog.Logger
}

func NewAuthenticator(jwtMgr *security.JWTManager, ledger RevocationLedger, users repository.UserRepository, logger *slog.Logger) *Authenticator {
	return &Authenticator{jwtMgr: jwtMgr, ledger: ledger, users: users, logger: logger}
}

// Authenticate runs the pipeline against a raw Authorization header value.
func (a *Authenticator) Authenticate(ctx context.Context, authorizationHeader string) (*Identity, error) {
	raw, ok := bearerToken(authorizationHeader)
	if !ok {
		return nil, a.reject(ctx, "missing_token", nil)
	}
	return a.AuthenticateToken(ctx, raw)
}

// AuthenticateToken runs the pipeline against an already-extracted token.
func (a *Authenticator) AuthenticateToken(ctx context.Context, raw string) (*Identity, error) {
	// Signature before any store call: garbage input must cost no I/O.
	claims, err := a.jwtMgr.Verify(raw)
	if err != nil {
		return nil, a.reject(ctx, "invalid_token", err)
	}

	revoked, err := a.ledger.IsRevoked(ctx, raw)
	if err != nil {
		// Fail closed. An unreachable ledger must never read as "not
		// revoked".
		a.logger.WarnContext(ctx, "revocation ledger unavailable", "error", err)
		return nil, a.reject(ctx, "ledger_unavailable", err)
	}
	if revoked {
		return nil, a.reject(ctx, "revoked", nil)
	}

	user, err := a.users.FindByID(ctx, claims.Subject)
	if err != nil {
		// Missing record and transient store error both collapse here so
		// error codes never reveal whether an account exists.
		return nil, a.reject(ctx, "unknown_subject", err)
	}

	if user.SessionVersion != claims.SessionVersion {
		return nil, a.reject(ctx, "stale_session_version", nil)
	}

	observability.RecordTokenValidation(ctx, "valid")
	return &Identity{
		UserID:         user.ID,
		Token:          raw,
		ExpiresAt:      claims.ExpiresAt.Time,
		SessionVersion: user.SessionVersion,
		IsAdmin:        user.IsAdmin,
	}, nil
}

// RequireAdmin runs the full pipeline and additionally requires the admin
// flag. A valid identity without the flag is Forbidden, not
// Unauthenticated: the caller proved who they are, just not the
// permission.
func (a *Authenticator) RequireAdmin(ctx context.Context, authorizationHeader string) (*Identity, error) {
	identity, err := a.Authenticate(ctx, authorizationHeader)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin {
		observability.RecordAdminGate(ctx, "denied")
		return nil, ErrForbidden
	}
	observability.RecordAdminGate(ctx, "allowed")
	return identity, nil
}

func (a *Authenticator) reject(ctx context.Context, reason string, cause error) error {
	observability.RecordTokenValidation(ctx, reason)
	if cause != nil {
		a.logger.DebugContext(ctx, "authentication rejected", "reason", reason, "error", cause)
	} else {
		a.logger.DebugContext(ctx, "authentication rejected", "reason", reason)
	}
	return fmt.Errorf("%w (%s)", ErrUnauthenticated, reason)
}

func bearerToken(header string) (string, bool) {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
