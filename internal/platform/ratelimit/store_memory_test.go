// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/personae/internal/platform/ratelimit"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
func newClock() *fakeClock                   { return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)} }

/*
TestMemoryStore_EnforcesBudget allows Limit events then denies with a retry hint.
*/
func TestMemoryStore_EnforcesBudget(t *testing.T) {
	clock := newClock()
	store := ratelimit.NewMemoryStoreWithClock(ratelimit.Policy{Limit: 3, Window: time.Minute}, time.Hour, clock.Now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := store.Allow(ctx, "voter")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "event %d should be allowed", i)
	}

	decision, err := store.Allow(ctx, "voter")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))
	assert.GreaterOrEqual(t, decision.RetryAfterSeconds(), 1)

	// Other keys keep their own budget.
	other, err := store.Allow(ctx, "someone-else")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

/*
TestMemoryStore_Refills recovers budget as time passes.
*/
func TestMemoryStore_Refills(t *testing.T) {
	clock := newClock()
	store := ratelimit.NewMemoryStoreWithClock(ratelimit.Policy{Limit: 2, Window: time.Minute}, time.Hour, clock.Now)
	ctx := context.Background()

	_, _ = store.Allow(ctx, "k")
	_, _ = store.Allow(ctx, "k")
	denied, _ := store.Allow(ctx, "k")
	require.False(t, denied.Allowed)

	clock.Advance(30 * time.Second)
	allowed, err := store.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, allowed.Allowed)
}

/*
TestMemoryStore_Reset clears a key's history.
*/
func TestMemoryStore_Reset(t *testing.T) {
	clock := newClock()
	store := ratelimit.NewMemoryStoreWithClock(ratelimit.Policy{Limit: 1, Window: time.Hour}, time.Hour, clock.Now)
	ctx := context.Background()

	_, _ = store.Allow(ctx, "admin")
	denied, _ := store.Allow(ctx, "admin")
	require.False(t, denied.Allowed)

	require.NoError(t, store.Reset(ctx, "admin"))
	allowed, _ := store.Allow(ctx, "admin")
	assert.True(t, allowed.Allowed)
}

/*
TestMemoryStore_SweepEvictsIdleKeys drops keys untouched for longer than the TTL.
*/
func TestMemoryStore_SweepEvictsIdleKeys(t *testing.T) {
	clock := newClock()
	store := ratelimit.NewMemoryStoreWithClock(ratelimit.Policy{Limit: 5, Window: time.Minute}, 10*time.Minute, clock.Now)
	ctx := context.Background()

	_, _ = store.Allow(ctx, "stale")
	clock.Advance(8 * time.Minute)
	_, _ = store.Allow(ctx, "fresh")
	require.Equal(t, 2, store.Len())

	clock.Advance(3 * time.Minute)
	store.Sweep()

	assert.Equal(t, 1, store.Len())
}

/*
TestMemoryStore_JanitorStopsWithContext exercises the background sweeper.
*/
func TestMemoryStore_JanitorStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := ratelimit.NewMemoryStore(ctx, ratelimit.Policy{Limit: 1, Window: time.Second}, time.Millisecond, 5*time.Millisecond)

	_, _ = store.Allow(context.Background(), "k")
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
}
