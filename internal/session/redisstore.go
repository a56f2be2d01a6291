package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sairajesh711/mafia-lite/internal/ids"
)

func sessionKey(playerID, roomID string) string { return "session:" + roomID + ":" + playerID }

// RedisStore is the multi-instance Store. ttl must outlive the token TTL
// by at least an hour, same pattern as roomstore.RedisStore's idle TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Register(ctx context.Context, playerID, roomID, socketID string, now time.Time) (Session, string, error) {
	key := sessionKey(playerID, roomID)

	var evicted string
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var prior Session
		if json.Unmarshal(raw, &prior) == nil {
			evicted = prior.SessionID
		}
	} else if !errors.Is(err, redis.Nil) {
		return Session{}, "", fmt.Errorf("session: register: %w", err)
	}

	sess := Session{
		PlayerID:   playerID,
		RoomID:     roomID,
		SessionID:  ids.New(),
		SocketID:   socketID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return Session{}, "", err
	}
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return Session{}, "", fmt.Errorf("session: register: %w", err)
	}
	return sess, evicted, nil
}

func (s *RedisStore) UpdateSocket(ctx context.Context, playerID, roomID, socketID string, now time.Time) error {
	sess, err := s.Get(ctx, playerID, roomID)
	if err != nil {
		return err
	}
	sess.SocketID = socketID
	sess.LastSeenAt = now
	return s.put(ctx, sess)
}

func (s *RedisStore) Get(ctx context.Context, playerID, roomID string) (Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(playerID, roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("session: get: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("session: decode: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Evict(ctx context.Context, playerID, roomID string) error {
	n, err := s.rdb.Del(ctx, sessionKey(playerID, roomID)).Result()
	if err != nil {
		return fmt.Errorf("session: evict: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, playerID, roomID string, now time.Time) error {
	sess, err := s.Get(ctx, playerID, roomID)
	if err != nil {
		return err
	}
	sess.LastSeenAt = now
	return s.put(ctx, sess)
}

func (s *RedisStore) put(ctx context.Context, sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.PlayerID, sess.RoomID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: put: %w", err)
	}
	return nil
}
