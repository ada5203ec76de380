package service

import (
	"context"
	"sync"
	"time"
)

// RevocationLedger records tokens that must be rejected even though they
// would otherwise verify. Entries self-expire: an entry never needs to
// outlive the token it revokes, because expiry rejects the token anyway.
type RevocationLedger interface {
	// Revoke marks the token invalid for at least ttl. Revoking twice is
	// a no-op; a non-positive ttl is skipped entirely.
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// InMemoryRevocationLedger backs tests and single-process development
// setups. Production uses the Redis implementation.
type InMemoryRevocationLedger struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewInMemoryRevocationLedger() *InMemoryRevocationLedger {
	return &InMemoryRevocationLedger{entries: make(map[string]time.Time)}
}

func (l *InMemoryRevocationLedger) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[tokenDigest(token)] = time.Now().Add(ttl)
	return nil
}

func (l *InMemoryRevocationLedger) IsRevoked(_ context.Context, token string) (bool, error) {
	key := tokenDigest(token)
	l.mu.RLock()
	expiresAt, ok := l.entries[key]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		l.mu.Lock()
		delete(l.entries, key)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}
