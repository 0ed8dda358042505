package shared

import (
	"context"
	"time"
)

// IdempotencyStore records client supplied request keys so a retried
// mutation is applied at most once while its key is live.
type IdempotencyStore interface {
	// Claim records key for ttl. Exactly one concurrent caller gets true;
	// the rest see false until the key expires or is released.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Claimed reports whether key is currently held
	Claimed(ctx context.Context, key string) (bool, error)
	// Release drops key after the guarded operation failed, letting the
	// client retry with the same key
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig controls key checking for payment creation
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
