// Package session tracks the per-(player,room) session record: which
// socket a player is currently bound to, and "latest wins" eviction when
// the same player logs in twice.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound means no session exists for the given (playerId, roomId).
var ErrNotFound = errors.New("session: not found")

// EvictReasonDuplicate is attached to the session a new login displaces.
const EvictReasonDuplicate = "duplicate_session"

// Session is one player's binding to a room and a transport socket.
type Session struct {
	PlayerID   string
	RoomID     string
	SessionID  string
	SocketID   string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Store is the session-persistence contract. sessionTTL must exceed the
// token TTL by at least one hour so a token never outlives its session
// record.
type Store interface {
	// Register creates or replaces the session for (playerId, roomId),
	// minting a fresh sessionId. If a session already existed, its
	// sessionId is returned as evictedSessionID so the caller can notify
	// the displaced socket before dropping it.
	Register(ctx context.Context, playerID, roomID, socketID string, now time.Time) (sess Session, evictedSessionID string, err error)

	// UpdateSocket rebinds an existing session to a new socket id, used
	// on reconnection without a fresh login.
	UpdateSocket(ctx context.Context, playerID, roomID, socketID string, now time.Time) error

	// Get returns the current session, ErrNotFound if none exists.
	Get(ctx context.Context, playerID, roomID string) (Session, error)

	// Evict removes the session outright, used on explicit logout or
	// room teardown.
	Evict(ctx context.Context, playerID, roomID string) error

	// Touch records a liveness signal (a received ping) without
	// changing the bound socket, feeding IsStale.
	Touch(ctx context.Context, playerID, roomID string, now time.Time) error
}

// IsStale reports whether a session has missed pings for longer than
// missThreshold, the scheduler's signal to mark a player disconnected
// without waiting for the transport to notice the socket died.
func IsStale(s Session, now time.Time, missThreshold time.Duration) bool {
	return now.Sub(s.LastSeenAt) > missThreshold
}
