// Package redis keeps the session revocation list used for server-side logout.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultKeyPrefix   = "revoked:"
)

type Config struct {
	Addr string
	DB   int
	// DialTimeout bounds the startup ping. Defaults to 5s.
	DialTimeout time.Duration
	// KeyPrefix namespaces entries when the instance is shared. Defaults to "revoked:".
	KeyPrefix string
}

// RevocationList records logged-out session ids until their tokens expire.
// Key format: <prefix><jti>
type RevocationList struct {
	client *redis.Client
	prefix string
}

// Open connects, verifies the server answers a ping and returns the list.
// The caller owns the list and must Close it.
func Open(ctx context.Context, cfg Config) (*RevocationList, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewRevocationList(client, cfg.KeyPrefix), nil
}

// NewRevocationList wraps an existing client. An empty prefix uses "revoked:".
func NewRevocationList(client *redis.Client, prefix string) *RevocationList {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RevocationList{client: client, prefix: prefix}
}

// IsRevoked reports whether the session id was revoked before its expiry.
func (l *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// Revoke marks the session id as revoked. The entry expires after ttl, which
// callers set to the token's remaining lifetime.
func (l *RevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, l.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (l *RevocationList) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RevocationList) Close() error {
	return l.client.Close()
}

func (l *RevocationList) key(tokenID string) string {
	return l.prefix + tokenID
}
