package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "freshcart:dedup:"
	// DefaultTTL bounds how long a handled delivery is remembered.
	DefaultTTL = 48 * time.Hour
	// ClaimTTL bounds an unconfirmed claim, so a delivery claimed by a replica
	// that died mid-processing is handled again on redelivery.
	ClaimTTL = 2 * time.Minute

	claimPending = "pending"
	claimDone    = "done"
)

// claimer is the subset of the redis client used for deduplication.
type claimer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDeduplicator claims keys with SET NX so that a delivery is processed
// by one replica only.
type RedisDeduplicator struct {
	client   claimer
	claimTTL time.Duration
	ttl      time.Duration
}

// NewRedisDeduplicator remembers confirmed keys for ttl. Unconfirmed claims
// expire after ClaimTTL, or ttl when that is shorter.
func NewRedisDeduplicator(client claimer, ttl time.Duration) *RedisDeduplicator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisDeduplicator{client: client, claimTTL: min(ClaimTTL, ttl), ttl: ttl}
}

// Claim returns true when key is neither claimed nor confirmed.
func (d *RedisDeduplicator) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, keyPrefix+key, claimPending, d.claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim: %w", err)
	}
	return ok, nil
}

// Confirm marks a claimed key as handled for the full ttl.
func (d *RedisDeduplicator) Confirm(ctx context.Context, key string) error {
	if err := d.client.Set(ctx, keyPrefix+key, claimDone, d.ttl).Err(); err != nil {
		return fmt.Errorf("redis confirm: %w", err)
	}
	return nil
}

// Release forgets key so that a redelivery is processed again.
func (d *RedisDeduplicator) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis release: %w", err)
	}
	return nil
}

// NoopDeduplicator claims every key. Used when redis is not configured, the
// order state machine still makes replays harmless.
type NoopDeduplicator struct{}

func (NoopDeduplicator) Claim(context.Context, string) (bool, error) { return true, nil }

func (NoopDeduplicator) Confirm(context.Context, string) error { return nil }

func (NoopDeduplicator) Release(context.Context, string) error { return nil }
