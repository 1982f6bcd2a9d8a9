package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRevocationList_Key(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	if got := NewRevocationList(client, "").key("abc"); got != "revoked:abc" {
		t.Fatalf("default prefix: got %q", got)
	}
	if got := NewRevocationList(client, "tb:revoked:").key("abc"); got != "tb:revoked:abc" {
		t.Fatalf("custom prefix: got %q", got)
	}
}

func TestRevocationList_RevokeSkipsExpiredTTL(t *testing.T) {
	// No server is listening; a non-positive ttl must return before any call.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	if err := NewRevocationList(client, "").Revoke(context.Background(), "jti", 0); err != nil {
		t.Fatalf("expected no-op for zero ttl, got %v", err)
	}
}

func TestOpen_UnreachableServer(t *testing.T) {
	_, err := Open(context.Background(), Config{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected an error for an unreachable server")
	}
}
