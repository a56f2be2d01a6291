package roomstore

import (
	"context"
	"errors"
	"sync"

	"github.com/sairajesh711/mafia-lite/internal/ids"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// entry pairs a committed room with a monotonically increasing version,
// the in-process analogue of redisstore's stored-JSON version field.
type entry struct {
	room    *roomstate.Room
	version int64
}

// MemStore is an in-process Store for tests and single-instance runs. It
// holds no TTLs of its own; a process restart drops all state, which is
// acceptable since nothing here is meant to survive one.
type MemStore struct {
	mu      sync.Mutex
	rooms   map[string]*entry
	codes   map[string]string // code -> roomId
	maxCode int
}

// NewMemStore constructs an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		rooms:   make(map[string]*entry),
		codes:   make(map[string]string),
		maxCode: 20,
	}
}

func (s *MemStore) CreateRoom(ctx context.Context, hostID, hostName string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for i := 0; i < s.maxCode; i++ {
		c, err := ids.NewRoomCode()
		if err != nil {
			return "", "", err
		}
		if _, taken := s.codes[c]; !taken {
			code = c
			break
		}
	}
	if code == "" {
		return "", "", ErrCodeCollision
	}

	roomID := ids.New()
	settings := roomstate.DefaultSettings()
	room := roomstate.NewRoom(roomID, code, hostID, settings)
	room.Players[hostID] = &roomstate.Player{ID: hostID, Name: hostName, Status: roomstate.StatusAlive, Connected: true}

	s.rooms[roomID] = &entry{room: room, version: 1}
	s.codes[code] = roomID
	return roomID, code, nil
}

func (s *MemStore) FindRoomByCode(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roomID, ok := s.codes[code]
	if !ok {
		return "", ErrNotFound
	}
	return roomID, nil
}

func (s *MemStore) GetRoomState(ctx context.Context, roomID string) (*roomstate.Room, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rooms[roomID]
	if !ok {
		return nil, 0, ErrNotFound
	}
	return e.room.Clone(), e.version, nil
}

func (s *MemStore) UpdateRoomState(ctx context.Context, roomID string, room *roomstate.Room, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	if e.version != version {
		return ErrWriteLoss
	}
	room.HostID = e.room.HostID // hostId pre-image shim: never let a write change ownership
	if err := roomstate.CheckInvariants(room); err != nil {
		return err
	}
	s.rooms[roomID] = &entry{room: room.Clone(), version: e.version + 1}
	return nil
}

func (s *MemStore) UpdateRoomStateSafe(ctx context.Context, roomID string, mutate Mutator) (*roomstate.Room, error) {
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

func (s *MemStore) DeleteRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	delete(s.rooms, roomID)
	delete(s.codes, e.room.Code)
	return nil
}
