package leader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func leaseKey(roomID string) string { return "leader:" + roomID }

// RedisStore is the multi-instance Store: SetNX claims an unheld lease,
// GET-then-SET-XX renews one still held by the caller, matching the
// domain stack's "Lua-free compare-and-set" renewal idiom rather than
// reaching for a scripting extension for a two-step check.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Acquire(ctx context.Context, roomID, instanceID string, ttl time.Duration, now time.Time) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, leaseKey(roomID), instanceID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("leader: acquire: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Renew(ctx context.Context, roomID, instanceID string, ttl time.Duration, now time.Time) (bool, error) {
	current, err := s.rdb.Get(ctx, leaseKey(roomID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("leader: renew: %w", err)
	}
	if current != instanceID {
		return false, nil
	}

	// SET ... XX only succeeds if the key still exists; combined with the
	// ownership check above this is a best-effort CAS. A lease stolen in
	// the narrow window between the GET and this SET simply loses its
	// next renewal instead, which is the same outcome as any other
	// renewal loss.
	ok, err := s.rdb.SetArgs(ctx, leaseKey(roomID), instanceID, redis.SetArgs{
		Mode: "XX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("leader: renew: %w", err)
	}
	return ok != "", nil
}

func (s *RedisStore) Release(ctx context.Context, roomID, instanceID string) error {
	current, err := s.rdb.Get(ctx, leaseKey(roomID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("leader: release: %w", err)
	}
	if current != instanceID {
		return nil
	}
	if err := s.rdb.Del(ctx, leaseKey(roomID)).Err(); err != nil {
		return fmt.Errorf("leader: release: %w", err)
	}
	return nil
}
