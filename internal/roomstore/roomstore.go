// Package roomstore persists room state and the code->room mapping. The
// interface is storage-agnostic; MemStore (memstore.go) backs tests and
// single-instance runs, RedisStore (redisstore.go) backs the
// multi-instance deployment the session and leader layers assume.
package roomstore

import (
	"context"
	"errors"

	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// ErrWriteLoss is returned by UpdateRoomState when the stored room has
// been committed by someone else since the caller's read, so the caller
// must re-read and retry rather than overwrite a newer state.
var ErrWriteLoss = errors.New("roomstore: write loss, room changed since read")

// ErrNotFound is returned when a room or code lookup finds nothing.
var ErrNotFound = errors.New("roomstore: not found")

// ErrCodeCollision signals an internal retry-exhausted condition when
// generating a unique room code; callers should treat it as INTERNAL.
var ErrCodeCollision = errors.New("roomstore: exhausted room code generation attempts")

// Mutator is the function UpdateRoomStateSafe applies to a freshly loaded
// room. Returning an error aborts the commit; the mutator must not retain
// the *roomstate.Room pointer past its own return.
type Mutator func(r *roomstate.Room) error

// Store is the room-persistence contract.
type Store interface {
	// CreateRoom reserves a unique code and writes a brand-new lobby room
	// owned by hostID.
	CreateRoom(ctx context.Context, hostID, hostName string) (roomID, code string, err error)

	// FindRoomByCode resolves a room code to a room id, ErrNotFound if
	// the code is unknown or expired.
	FindRoomByCode(ctx context.Context, code string) (roomID string, err error)

	// GetRoomState returns the current authoritative room, plus an
	// opaque version token UpdateRoomState uses for its freshness check.
	GetRoomState(ctx context.Context, roomID string) (room *roomstate.Room, version int64, err error)

	// UpdateRoomState commits room if and only if version still matches
	// the stored version; otherwise ErrWriteLoss.
	UpdateRoomState(ctx context.Context, roomID string, room *roomstate.Room, version int64) error

	// UpdateRoomStateSafe loads the room, applies mutate, validates
	// invariants, and commits atomically, retrying internally on
	// ErrWriteLoss a bounded number of times.
	UpdateRoomStateSafe(ctx context.Context, roomID string, mutate Mutator) (*roomstate.Room, error)

	// DeleteRoom removes the room and its code mapping.
	DeleteRoom(ctx context.Context, roomID string) error
}

const maxSafeUpdateRetries = 5
