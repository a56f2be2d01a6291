package dedup

import (
	"context"
	"sync"
	"time"
)

type key struct {
	playerID, roomID, actionID string
}

type entry struct {
	rec       Record
	expiresAt time.Time
}

// MemStore is an in-process Store, the fallback/test double for the same
// reason internal/roomstore.MemStore and internal/session.MemStore are.
type MemStore struct {
	mu      sync.Mutex
	records map[key]entry
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[key]entry)}
}

func (s *MemStore) Begin(ctx context.Context, playerID, roomID, actionID string, now time.Time) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{playerID, roomID, actionID}
	if e, ok := s.records[k]; ok && now.Before(e.expiresAt) {
		return e.rec, false, nil
	}

	rec := Record{State: StateProcessing}
	s.records[k] = entry{rec: rec, expiresAt: now.Add(ProcessingTTL)}
	return rec, true, nil
}

func (s *MemStore) Complete(ctx context.Context, playerID, roomID, actionID string, response []byte, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{playerID, roomID, actionID}
	rec := Record{State: StateCompleted, Response: response}
	// Completed records outlive processing/failed windows; they are only
	// ever cleared by the room itself expiring (24h idle TTL, mirrored
	// here with the same horizon).
	s.records[k] = entry{rec: rec, expiresAt: now.Add(24 * time.Hour)}
	return nil
}

func (s *MemStore) Fail(ctx context.Context, playerID, roomID, actionID string, errMsg string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{playerID, roomID, actionID}
	rec := Record{State: StateFailed, Error: errMsg}
	s.records[k] = entry{rec: rec, expiresAt: now.Add(FailedRetryTTL)}
	return nil
}
