// Package dedup hands out short-lived idempotency keys so the same course is
// not generated twice at once.
package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard keeps keys in process memory. It only deduplicates requests
// served by the same instance.
type MemoryGuard struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]time.Time
	now  func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{ttl: ttl, keys: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.keys {
		if !now.Before(exp) {
			delete(g.keys, k)
		}
	}
	if _, held := g.keys[key]; held {
		return false, nil
	}
	g.keys[key] = now.Add(g.ttl)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.keys, key)
	g.mu.Unlock()
	return nil
}
