package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func dedupKey(playerID, roomID, actionID string) string {
	return "action:" + actionID + ":" + playerID + ":" + roomID
}

// RedisStore is the multi-instance Store, grounded on the same SetNX-then-
// branch idiom internal/roomstore.RedisStore uses for code reservation:
// here SetNX claims the "processing" slot atomically across instances.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Begin(ctx context.Context, playerID, roomID, actionID string, now time.Time) (Record, bool, error) {
	key := dedupKey(playerID, roomID, actionID)
	rec := Record{State: StateProcessing}
	payload, err := json.Marshal(rec)
	if err != nil {
		return Record{}, false, err
	}

	ok, err := s.rdb.SetNX(ctx, key, payload, ProcessingTTL).Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("dedup: begin: %w", err)
	}
	if ok {
		return rec, true, nil
	}

	existing, err := s.get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Raced with the record's own TTL eviction between SetNX and
			// the read; treat as if we'd won the SetNX.
			return rec, true, nil
		}
		return Record{}, false, err
	}
	return existing, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, playerID, roomID, actionID string, response []byte, now time.Time) error {
	rec := Record{State: StateCompleted, Response: response}
	return s.put(ctx, dedupKey(playerID, roomID, actionID), rec, 24*time.Hour)
}

func (s *RedisStore) Fail(ctx context.Context, playerID, roomID, actionID string, errMsg string, now time.Time) error {
	rec := Record{State: StateFailed, Error: errMsg}
	return s.put(ctx, dedupKey(playerID, roomID, actionID), rec, FailedRetryTTL)
}

func (s *RedisStore) get(ctx context.Context, key string) (Record, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("dedup: get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("dedup: decode: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) put(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("dedup: put: %w", err)
	}
	return nil
}
