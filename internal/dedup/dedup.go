// Package dedup gives the dispatcher idempotent command handling: a command
// carrying an actionId already seen for a (playerId, roomId) pair either
// replays its stored outcome or is dropped, instead of being re-applied.
package dedup

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound means no dedup record exists for the given key.
var ErrNotFound = errors.New("dedup: not found")

// State is the lifecycle of one tracked actionId.
type State string

const (
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

const (
	// ProcessingTTL bounds how long a "processing" record survives without
	// a terminal Complete/Fail call, e.g. if the owning process crashes
	// mid-command.
	ProcessingTTL = 10 * time.Minute
	// FailedRetryTTL is how long a failed record blocks retry before the
	// caller is allowed to attempt the same actionId again.
	FailedRetryTTL = 60 * time.Second
)

// Record is the stored outcome for one actionId.
type Record struct {
	State    State
	Response []byte // opaque, caller-serialized response payload; set only when State == StateCompleted
	Error    string // set only when State == StateFailed
}

// Store is the idempotency-cache contract.
type Store interface {
	// Begin records actionId as processing if absent, returning the
	// existing record and started=false if one was already there
	// (caller must branch on its State). Returns started=true if this
	// call created the processing record and the caller should proceed.
	Begin(ctx context.Context, playerID, roomID, actionID string, now time.Time) (rec Record, started bool, err error)

	// Complete transitions a processing record to completed, storing the
	// response to replay on retry.
	Complete(ctx context.Context, playerID, roomID, actionID string, response []byte, now time.Time) error

	// Fail transitions a processing record to failed, allowing retry
	// after FailedRetryTTL.
	Fail(ctx context.Context, playerID, roomID, actionID string, errMsg string, now time.Time) error
}
