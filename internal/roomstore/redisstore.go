package roomstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sairajesh711/mafia-lite/internal/ids"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// roomIdleTTL matches the 24h idle TTL rooms and their code mapping
// carry, refreshed on every successful commit.
const roomIdleTTL = 24 * time.Hour

const maxCodeGenerationAttempts = 20

// stored is the on-wire shape kept at room:<id>: the room plus a version
// counter, the redis analogue of memstore's entry.version.
type stored struct {
	Room    *roomstate.Room `json:"room"`
	Version int64           `json:"version"`
}

// RedisStore is the multi-instance Store backing a production
// deployment, grounded on the SetNX/GetEx key-value idiom used for auth
// tokens elsewhere in the retrieval pack's antenna-server repo, here
// repurposed from auth tokens to room records and code reservations.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an already-configured client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func roomKey(roomID string) string { return "room:" + roomID }
func codeKey(code string) string   { return "roomcode:" + code }

func (s *RedisStore) CreateRoom(ctx context.Context, hostID, hostName string) (string, string, error) {
	var code string
	roomID := ids.New()

	for i := 0; i < maxCodeGenerationAttempts; i++ {
		c, err := ids.NewRoomCode()
		if err != nil {
			return "", "", err
		}
		ok, err := s.rdb.SetNX(ctx, codeKey(c), roomID, roomIdleTTL).Result()
		if err != nil {
			return "", "", fmt.Errorf("roomstore: reserve code: %w", err)
		}
		if ok {
			code = c
			break
		}
	}
	if code == "" {
		return "", "", ErrCodeCollision
	}

	settings := roomstate.DefaultSettings()
	room := roomstate.NewRoom(roomID, code, hostID, settings)
	room.Players[hostID] = &roomstate.Player{ID: hostID, Name: hostName, Status: roomstate.StatusAlive, Connected: true}

	payload, err := json.Marshal(stored{Room: room, Version: 1})
	if err != nil {
		return "", "", err
	}
	if err := s.rdb.Set(ctx, roomKey(roomID), payload, roomIdleTTL).Err(); err != nil {
		return "", "", fmt.Errorf("roomstore: write new room: %w", err)
	}
	return roomID, code, nil
}

func (s *RedisStore) FindRoomByCode(ctx context.Context, code string) (string, error) {
	roomID, err := s.rdb.GetEx(ctx, codeKey(code), roomIdleTTL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("roomstore: find room by code: %w", err)
	}
	return roomID, nil
}

func (s *RedisStore) GetRoomState(ctx context.Context, roomID string) (*roomstate.Room, int64, error) {
	raw, err := s.rdb.Get(ctx, roomKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("roomstore: get room state: %w", err)
	}
	var st stored
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, 0, fmt.Errorf("roomstore: decode room state: %w", err)
	}
	return st.Room, st.Version, nil
}

// UpdateRoomState commits room under an optimistic lock: it watches
// room:<id> and aborts with ErrWriteLoss if another writer committed a
// different version in between, mirroring the read-check-write contract
// the leader-election lease uses for its own renewal.
func (s *RedisStore) UpdateRoomState(ctx context.Context, roomID string, room *roomstate.Room, version int64) error {
	if err := roomstate.CheckInvariants(room); err != nil {
		return err
	}

	txErr := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, roomKey(roomID)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		var current stored
		if err := json.Unmarshal(raw, &current); err != nil {
			return err
		}
		if current.Version != version {
			return ErrWriteLoss
		}

		room.HostID = current.Room.HostID // hostId pre-image shim
		if err := roomstate.CheckInvariants(room); err != nil {
			return err
		}
		next := stored{Room: room, Version: version + 1}
		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, roomKey(roomID), payload, roomIdleTTL)
			return nil
		})
		return err
	}, roomKey(roomID))

	if txErr != nil {
		if errors.Is(txErr, ErrWriteLoss) || errors.Is(txErr, ErrNotFound) {
			return txErr
		}
		return fmt.Errorf("roomstore: update room state: %w", txErr)
	}
	return nil
}

func (s *RedisStore) UpdateRoomStateSafe(ctx context.Context, roomID string, mutate Mutator) (*roomstate.Room, error) {
	for attempt := 0; attempt < maxSafeUpdateRetries; attempt++ {
		room, version, err := s.GetRoomState(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if err := mutate(room); err != nil {
			return nil, err
		}
		if err := s.UpdateRoomState(ctx, roomID, room, version); err != nil {
			if errors.Is(err, ErrWriteLoss) {
				continue
			}
			return nil, err
		}
		return room, nil
	}
	return nil, ErrWriteLoss
}

func (s *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	room, _, err := s.GetRoomState(ctx, roomID)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, roomKey(roomID))
	pipe.Del(ctx, codeKey(room.Code))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("roomstore: delete room: %w", err)
	}
	return nil
}
