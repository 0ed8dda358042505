// Package cache provides the idempotency key stores used by payment
// creation: Redis when configured, process memory otherwise.
package cache

import (
	"context"
	"fmt"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

type StoreFactory struct {
	cfg      config.RedisConfig
	log      *zap.Logger
	fallback bool
}

type StoreFactoryOption func(*StoreFactory)

func WithLogger(log *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) { f.log = log }
}

// WithInMemoryFallback decides whether an unreachable Redis degrades to a
// MemoryStore (the default) or fails CreateStore
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) { f.fallback = allow }
}

func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{cfg: cfg, log: zap.NewNop(), fallback: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore dials Redis when it is enabled. Without Redis, or when the
// dial fails and fallback is allowed, a MemoryStore is returned.
func (f *StoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.cfg.Enabled {
		f.log.Info("Idempotency keys kept in memory", zap.String("reason", "redis disabled"))
		return NewMemoryStore(0), nil
	}

	store, err := DialRedis(ctx, f.cfg)
	switch {
	case err == nil:
		f.log.Info("Idempotency keys kept in redis", zap.String("addr", f.cfg.Addr()), zap.Int("db", f.cfg.DB))
		return store, nil
	case !f.fallback:
		return nil, fmt.Errorf("redis required for idempotency keys: %w", err)
	}

	f.log.Warn("Idempotency keys kept in memory, not shared between instances",
		zap.String("reason", "redis unreachable"), zap.Error(err))
	return NewMemoryStore(0), nil
}
