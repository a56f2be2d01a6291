// Package leader gives each room an exclusive writer across many stateless
// server instances: a per-room lease in the shared store, renewed on a
// ticker, released on graceful shutdown or renewal loss.
package leader

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotLeader names the failure of an operation on a room whose lease
// this instance does not hold. No function in this package returns it;
// Elector reports lost or unheld leases through booleans and onLost.
var ErrNotLeader = errors.New("leader: not leader for room")

const (
	LeaseTTL      = 10 * time.Second
	RenewInterval = 3 * time.Second
)

// Store is the lease-persistence contract, separated from Elector so it can
// be backed by Redis in production and an in-process map in tests.
type Store interface {
	// Acquire sets the lease to instanceID if absent (or expired),
	// returning held=true if this call won it.
	Acquire(ctx context.Context, roomID, instanceID string, ttl time.Duration, now time.Time) (held bool, err error)
	// Renew resets the TTL only if instanceID still holds the lease.
	Renew(ctx context.Context, roomID, instanceID string, ttl time.Duration, now time.Time) (held bool, err error)
	// Release clears the lease only if instanceID still holds it.
	Release(ctx context.Context, roomID, instanceID string) error
}

// Elector runs the acquire/renew/resign lifecycle for one instance across
// every room it has been asked to lead: a background loop driven by a
// ticker channel and a done channel, one per room, that can resign
// independently of any other room's loop.
type Elector struct {
	store      Store
	instanceID string
	affinity   *Affinity
	log        zerolog.Logger

	mu      chan struct{} // binary semaphore guarding held
	held    map[string]context.CancelFunc
	heldSet map[string]bool
}

// NewElector builds an Elector for the given instance id. affinity may be
// nil if rendezvous hinting isn't configured.
func NewElector(store Store, instanceID string, affinity *Affinity, log zerolog.Logger) *Elector {
	return &Elector{
		store:      store,
		instanceID: instanceID,
		affinity:   affinity,
		log:        log,
		mu:         make(chan struct{}, 1),
		held:       make(map[string]context.CancelFunc),
		heldSet:    make(map[string]bool),
	}
}

func (e *Elector) lock()   { e.mu <- struct{}{} }
func (e *Elector) unlock() { <-e.mu }

// IsLeader reports whether this instance currently believes it holds
// roomID's lease. It is a local, possibly-stale view: the source of truth
// is the store, refreshed by the renewal loop below.
func (e *Elector) IsLeader(roomID string) bool {
	e.lock()
	defer e.unlock()
	return e.heldSet[roomID]
}

// PreferredInstance exposes the affinity hint for callers deciding whether
// to attempt acquisition at all (a non-preferred instance can still try —
// affinity only reduces contention, it doesn't gate it).
func (e *Elector) PreferredInstance(roomID string) string {
	if e.affinity == nil {
		return ""
	}
	return e.affinity.PreferredInstance(roomID)
}

// TryAcquire attempts to become leader for roomID and, on success, starts a
// background renewal loop that keeps renewing until the context passed to
// TryAcquire is cancelled, renewal is lost, or Resign is called. onLost is invoked
// (from the renewal goroutine) if a renewal attempt fails after having held
// the lease, so the caller can tear down its room worker.
func (e *Elector) TryAcquire(ctx context.Context, roomID string, now time.Time, onLost func()) (bool, error) {
	held, err := e.store.Acquire(ctx, roomID, e.instanceID, LeaseTTL, now)
	if err != nil {
		return false, err
	}
	if !held {
		return false, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.lock()
	e.held[roomID] = cancel
	e.heldSet[roomID] = true
	e.unlock()

	go e.renewLoop(runCtx, roomID, onLost)
	return true, nil
}

func (e *Elector) renewLoop(ctx context.Context, roomID string, onLost func()) {
	ticker := time.NewTicker(RenewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			held, err := e.store.Renew(ctx, roomID, e.instanceID, LeaseTTL, time.Now())
			if err != nil || !held {
				e.log.Warn().Str("room_id", roomID).Err(err).Msg("leader: lost lease, resigning silently")
				e.lock()
				delete(e.held, roomID)
				delete(e.heldSet, roomID)
				e.unlock()
				if onLost != nil {
					onLost()
				}
				return
			}
		}
	}
}

// Resign releases roomID's lease early, e.g. because the room ended and
// there's nothing left to lead.
func (e *Elector) Resign(ctx context.Context, roomID string) error {
	e.lock()
	cancel, ok := e.held[roomID]
	delete(e.held, roomID)
	delete(e.heldSet, roomID)
	e.unlock()

	if ok {
		cancel()
	}
	return e.store.Release(ctx, roomID, e.instanceID)
}

// ResignAll releases every lease this instance holds, used on graceful
// shutdown so another instance can pick up each room without waiting out
// the full LeaseTTL.
func (e *Elector) ResignAll(ctx context.Context) {
	e.lock()
	roomIDs := make([]string, 0, len(e.held))
	for roomID, cancel := range e.held {
		cancel()
		roomIDs = append(roomIDs, roomID)
	}
	e.held = make(map[string]context.CancelFunc)
	e.heldSet = make(map[string]bool)
	e.unlock()

	for _, roomID := range roomIDs {
		if err := e.store.Release(ctx, roomID, e.instanceID); err != nil {
			e.log.Warn().Str("room_id", roomID).Err(err).Msg("leader: release on shutdown failed")
		}
	}
}
