package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-session-auth-service/internal/security"
)

func newAuthServiceStack(t *testing.T) (*inMemoryUserRepo, *InMemoryRevocationLedger, *security.JWTManager, *Authenticator, *AuthService) {
	t.Helper()
	repo, ledger, jwtMgr, auth := newAuthStack(t)
	svc := NewAuthService(repo, ledger, jwtMgr, discardLogger())
	return repo, ledger, jwtMgr, auth, svc
}

func TestRegisterIssuesTokenAtVersionZero(t *testing.T) {
	_, _, jwtMgr, auth, svc := newAuthServiceStack(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "new@example.com", "newbie", "Valid#Pass1234")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := jwtMgr.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.SessionVersion != 0 {
		t.Fatalf("expected session version 0 at registration, got %d", claims.SessionVersion)
	}
	if _, err := auth.Authenticate(ctx, "Bearer "+token); err != nil {
		t.Fatalf("authenticate registration token: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, _, _, _, svc := newAuthServiceStack(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@example.com", "first", "Valid#Pass1234"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "dup@example.com", "second", "Valid#Pass1234"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginBumpsVersionAndInvalidatesOldTokens(t *testing.T) {
	_, _, jwtMgr, auth, svc := newAuthServiceStack(t)
	ctx := context.Background()

	t0, err := svc.Register(ctx, "user@example.com", "user", "Valid#Pass1234")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	t1, err := svc.Login(ctx, "user@example.com", "Valid#Pass1234")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	claims1, err := jwtMgr.Verify(t1)
	if err != nil {
		t.Fatalf("verify t1: %v", err)
	}
	if claims1.SessionVersion != 1 {
		t.Fatalf("expected version 1 after first login, got %d", claims1.SessionVersion)
	}

	// The registration token embeds version 0 and is now stale even
	// though it is unexpired and never revoked.
	if _, err := auth.Authenticate(ctx, "Bearer "+t0); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected registration token to be invalidated, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "Bearer "+t1); err != nil {
		t.Fatalf("current token: %v", err)
	}

	t2, err := svc.Login(ctx, "user@example.com", "Valid#Pass1234")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if _, err := auth.Authenticate(ctx, "Bearer "+t1); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected t1 to be invalidated by second login, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "Bearer "+t2); err != nil {
		t.Fatalf("t2: %v", err)
	}
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	_, _, _, _, svc := newAuthServiceStack(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "known@example.com", "known", "Valid#Pass1234"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, errWrongPass := svc.Login(ctx, "known@example.com", "wrong")
	_, errNoAccount := svc.Login(ctx, "unknown@example.com", "whatever")
	if !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPass)
	}
	if !errors.Is(errNoAccount, ErrInvalidCredentials) {
		t.Fatalf("unknown account: expected ErrInvalidCredentials, got %v", errNoAccount)
	}
	// Same sentinel either way: an attacker cannot tell which check failed.
	if errWrongPass.Error() != errNoAccount.Error() {
		t.Fatal("credential failures must be indistinguishable")
	}
}

func TestLogoutRevokesTokenButNotFreshOnes(t *testing.T) {
	_, _, _, auth, svc := newAuthServiceStack(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "out@example.com", "out", "Valid#Pass1234"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := svc.Login(ctx, "out@example.com", "Valid#Pass1234")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	identity, err := auth.Authenticate(ctx, "Bearer "+token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := svc.Logout(ctx, identity); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.Authenticate(ctx, "Bearer "+token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected logged-out token to fail, got %v", err)
	}

	// Logging in again issues a valid replacement.
	fresh, err := svc.Login(ctx, "out@example.com", "Valid#Pass1234")
	if err != nil {
		t.Fatalf("re-login: %v", err)
	}
	if _, err := auth.Authenticate(ctx, "Bearer "+fresh); err != nil {
		t.Fatalf("fresh token after logout: %v", err)
	}
}

func TestLogoutSkipsExpiredToken(t *testing.T) {
	_, ledger, _, _, svc := newAuthServiceStack(t)
	ctx := context.Background()

	identity := &Identity{
		UserID:    "user-1",
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := svc.Logout(ctx, identity); err != nil {
		t.Fatalf("logout of expired token must not fail: %v", err)
	}
	revoked, err := ledger.IsRevoked(ctx, "expired-token")
	if err != nil {
		t.Fatalf("ledger check: %v", err)
	}
	if revoked {
		t.Fatal("expired token must not be written to the ledger")
	}
}

func TestConcurrentLoginsGetDistinctSessionVersions(t *testing.T) {
	_, _, jwtMgr, _, svc := newAuthServiceStack(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "race@example.com", "racer", "Valid#Pass1234"); err != nil {
		t.Fatalf("register: %v", err)
	}

	const logins = 8
	tokens := make([]string, logins)
	var wg sync.WaitGroup
	errs := make([]error, logins)
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = svc.Login(ctx, "race@example.com", "Valid#Pass1234")
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, logins)
	for i := 0; i < logins; i++ {
		if errs[i] != nil {
			t.Fatalf("login %d: %v", i, errs[i])
		}
		claims, err := jwtMgr.Verify(tokens[i])
		if err != nil {
			t.Fatalf("verify token %d: %v", i, err)
		}
		if seen[claims.SessionVersion] {
			t.Fatalf("version %d issued twice: lost update", claims.SessionVersion)
		}
		seen[claims.SessionVersion] = true
	}
}
