package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationLedger stores revocation entries under a digest of the
// token with a native TTL, so Redis itself retires entries at the token's
// natural expiry. Errors are returned to the caller; the authentication
// pipeline treats them as fail-closed, never as "not revoked".
type RedisRevocationLedger struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRevocationLedger(client redis.UniversalClient, prefix string) *RedisRevocationLedger {
	if prefix == "" {
		prefix = "revoked_token"
	}
	return &RedisRevocationLedger{client: client, prefix: prefix}
}

func (l *RedisRevocationLedger) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, l.key(token), "1", ttl).Err()
}

func (l *RedisRevocationLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := l.client.Get(ctx, l.key(token)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *RedisRevocationLedger) key(token string) string {
	return l.prefix + ":" + tokenDigest(token)
}

// tokenDigest keys ledger entries by a SHA-256 digest so raw bearer
// tokens are never written to the store.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
