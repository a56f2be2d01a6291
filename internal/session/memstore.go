package session

import (
	"context"
	"sync"
	"time"

	"github.com/sairajesh711/mafia-lite/internal/ids"
)

type key struct {
	playerID, roomID string
}

// MemStore is an in-process Store, the same role MemStore plays for
// internal/roomstore: a test double and single-instance fallback.
type MemStore struct {
	mu       sync.Mutex
	sessions map[key]Session
}

func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[key]Session)}
}

func (s *MemStore) Register(ctx context.Context, playerID, roomID, socketID string, now time.Time) (Session, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{playerID, roomID}
	var evicted string
	if prior, ok := s.sessions[k]; ok {
		evicted = prior.SessionID
	}

	sess := Session{
		PlayerID:   playerID,
		RoomID:     roomID,
		SessionID:  ids.New(),
		SocketID:   socketID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	s.sessions[k] = sess
	return sess, evicted, nil
}

func (s *MemStore) UpdateSocket(ctx context.Context, playerID, roomID, socketID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{playerID, roomID}
	sess, ok := s.sessions[k]
	if !ok {
		return ErrNotFound
	}
	sess.SocketID = socketID
	sess.LastSeenAt = now
	s.sessions[k] = sess
	return nil
}

func (s *MemStore) Get(ctx context.Context, playerID, roomID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key{playerID, roomID}]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemStore) Evict(ctx context.Context, playerID, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{playerID, roomID}
	if _, ok := s.sessions[k]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, k)
	return nil
}

func (s *MemStore) Touch(ctx context.Context, playerID, roomID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{playerID, roomID}
	sess, ok := s.sessions[k]
	if !ok {
		return ErrNotFound
	}
	sess.LastSeenAt = now
	s.sessions[k] = sess
	return nil
}
