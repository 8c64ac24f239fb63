// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/personae/internal/platform/constants"
)

// RedisStore implements fixed-window budgets shared by every API instance.
// Keys expire with their window, so eviction is delegated to Redis.
type RedisStore struct {
	client    *redis.Client
	policy    Policy
	namespace string
}

// NewRedisStore creates a Redis-backed [Store]. namespace separates budgets
// (e.g. "http", "vote", "login") that share one Redis database.
func NewRedisStore(client *redis.Client, namespace string, policy Policy) *RedisStore {
	return &RedisStore{client: client, policy: policy, namespace: namespace}
}

/*
Allow records one event in the current window.

Description: INCR and EXPIRE NX run in one MULTI so the first hit of a window
sets its expiry and later hits never extend it.
*/
func (store *RedisStore) Allow(context context.Context, key string) (Decision, error) {
	redisKey := store.key(key)

	pipe := store.client.TxPipeline()
	incr := pipe.Incr(context, redisKey)
	pipe.ExpireNX(context, redisKey, store.policy.Window)
	ttl := pipe.PTTL(context, redisKey)

	if _, err := pipe.Exec(context); err != nil {
		return Decision{}, fmt.Errorf("redis_ratelimit_allow_failed: %w", err)
	}

	count := int(incr.Val())
	if count > store.policy.Limit {
		retry := ttl.Val()
		if retry <= 0 {
			retry = store.policy.Window
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}

	return Decision{Allowed: true, Remaining: store.policy.Limit - count}, nil
}

// Reset implements [Store].
func (store *RedisStore) Reset(context context.Context, key string) error {
	if err := store.client.Del(context, store.key(key)).Err(); err != nil {
		return fmt.Errorf("redis_ratelimit_reset_failed: %w", err)
	}
	return nil
}

func (store *RedisStore) key(key string) string {
	return constants.RedisPrefixRateLimit + store.namespace + ":" + key
}

// compile-time interface checks
var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
