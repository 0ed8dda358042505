package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
)

const defaultSweepEvery = 5 * time.Minute

// MemoryStore holds idempotency keys in process memory. Keys are invisible
// to other instances, so it is meant for single-node runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now, letting tests move time forward
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore starts a store whose expired keys are purged every
// sweepEvery until Close. A non-positive sweepEvery selects five minutes.
func NewMemoryStore(sweepEvery time.Duration, opts ...MemoryOption) *MemoryStore {
	if sweepEvery <= 0 {
		sweepEvery = defaultSweepEvery
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &MemoryStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run(ctx, sweepEvery)
	return s
}

func (s *MemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.liveLocked(key, now) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryStore) Claimed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(key, s.now()), nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expires, key)
	return nil
}

// Close stops the sweeper and waits for it to exit. Repeated calls return
// immediately.
func (s *MemoryStore) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *MemoryStore) liveLocked(key string, now time.Time) bool {
	exp, ok := s.expires[key]
	return ok && now.Before(exp)
}

func (s *MemoryStore) run(ctx context.Context, every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

// purge drops expired keys and returns how many remain
func (s *MemoryStore) purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key := range s.expires {
		if !s.liveLocked(key, now) {
			delete(s.expires, key)
		}
	}
	return len(s.expires)
}

var _ shared.IdempotencyStore = (*MemoryStore)(nil)
