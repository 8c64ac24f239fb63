// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit provides keyed request budgets with TTL-based eviction.

Limiters are explicit dependencies: every consumer (HTTP middleware, vote
throttling, admin login lockout) receives its own [Store] through its
constructor, so no limiter state lives at package level.

Implementations:

  - MemoryStore: token buckets (golang.org/x/time/rate) with idle-key eviction.
  - RedisStore: fixed windows shared across instances (INCR + EXPIRE NX).
*/
package ratelimit

import (
	"context"
	"time"
)

// Policy describes a budget of Limit events per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of a single [Store.Allow] call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds (minimum 1).
func (d Decision) RetryAfterSeconds() int {
	seconds := int((d.RetryAfter + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

// Store consumes budget for a key.
type Store interface {
	// Allow records one event for key and reports whether it fits the budget.
	Allow(ctx context.Context, key string) (Decision, error)

	// Reset forgets all recorded events for key.
	Reset(ctx context.Context, key string) error
}
