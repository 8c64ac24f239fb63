// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore keeps one token bucket per key and evicts keys idle for longer
// than its TTL. It is safe for concurrent use.
type MemoryStore struct {
	policy Policy
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryStore creates a store and starts a janitor that sweeps idle keys
// every interval until ctx is cancelled.
func NewMemoryStore(ctx context.Context, policy Policy, ttl, interval time.Duration) *MemoryStore {
	store := newMemoryStore(policy, ttl, time.Now)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				store.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	return store
}

// NewMemoryStoreWithClock creates a store without a janitor, driven by the
// supplied clock. Call [MemoryStore.Sweep] to evict.
func NewMemoryStoreWithClock(policy Policy, ttl time.Duration, now func() time.Time) *MemoryStore {
	return newMemoryStore(policy, ttl, now)
}

func newMemoryStore(policy Policy, ttl time.Duration, now func() time.Time) *MemoryStore {
	return &MemoryStore{
		policy:  policy,
		ttl:     ttl,
		now:     now,
		entries: make(map[string]*memoryEntry),
	}
}

// Allow implements [Store].
func (store *MemoryStore) Allow(_ context.Context, key string) (Decision, error) {
	now := store.now()

	store.mu.Lock()
	defer store.mu.Unlock()

	entry, found := store.entries[key]
	if !found {
		entry = &memoryEntry{limiter: store.newLimiter()}
		store.entries[key] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Allowed: false, RetryAfter: store.policy.Window}, nil
	}

	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: int(entry.limiter.TokensAt(now)),
	}, nil
}

// Reset implements [Store].
func (store *MemoryStore) Reset(_ context.Context, key string) error {
	store.mu.Lock()
	delete(store.entries, key)
	store.mu.Unlock()
	return nil
}

// Sweep evicts keys idle for longer than the TTL.
func (store *MemoryStore) Sweep() {
	now := store.now()

	store.mu.Lock()
	defer store.mu.Unlock()

	for key, entry := range store.entries {
		if now.Sub(entry.lastSeen) > store.ttl {
			delete(store.entries, key)
		}
	}
}

// Len returns the number of tracked keys.
func (store *MemoryStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}

// newLimiter refills the full budget evenly across the window.
func (store *MemoryStore) newLimiter() *rate.Limiter {
	every := store.policy.Window / time.Duration(store.policy.Limit)
	return rate.NewLimiter(rate.Every(every), store.policy.Limit)
}
