// Package scheduler runs one wake-up coordinator per leader-owned room:
// it wakes on the sooner of the phase timer expiring or a completion
// predicate becoming true, then asks the reducer to resolve and advance.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// CompletionPredicate reports whether a phase can resolve early, without
// waiting for its timer.
type CompletionPredicate func(r *roomstate.Room) bool

// completionPredicateFor returns the early-completion check for a phase,
// or nil for phases that are timer-only.
func completionPredicateFor(phase roomstate.Phase) CompletionPredicate {
	switch phase {
	case roomstate.PhaseNight:
		return nightActionsComplete
	case roomstate.PhaseDayVoting:
		return votingComplete
	default:
		return nil
	}
}

// nightActionsComplete is true once every alive mafia and every alive
// detective has submitted a night action; the doctor's protect is
// optional, so it never gates completion.
func nightActionsComplete(r *roomstate.Room) bool {
	acted := make(map[string]bool, len(r.NightActions))
	for _, a := range r.NightActions {
		acted[a.PlayerID] = true
	}
	for _, p := range r.Players {
		if p.Status != roomstate.StatusAlive {
			continue
		}
		if p.RoleID != roles.Mafia && p.RoleID != roles.Detective {
			continue
		}
		if !acted[p.ID] {
			return false
		}
	}
	return true
}

// votingComplete is true once every alive player has either voted or
// abstained. Abstaining is represented by a Vote record with an empty
// TargetID, so "has a vote record at all" is the completion signal.
func votingComplete(r *roomstate.Room) bool {
	voted := make(map[string]bool, len(r.Votes))
	for _, v := range r.Votes {
		voted[v.PlayerID] = true
	}
	for _, p := range r.Players {
		if p.Status != roomstate.StatusAlive {
			continue
		}
		if !voted[p.ID] {
			return false
		}
	}
	return true
}

// Snapshotter gives the coordinator a read-only view of the authoritative
// state, used only to evaluate timers and completion predicates.
type Snapshotter interface {
	Snapshot(ctx context.Context, roomID string) (*roomstate.Room, error)
}

// Resolver performs the actual resolve-and-advance commit when the
// coordinator wakes, returning the resulting phase so the coordinator
// knows whether to keep running.
type Resolver interface {
	ResolveAndAdvance(ctx context.Context, roomID string) (roomstate.Phase, error)
}

// Coordinator owns the wake-up loop for one room.
type Coordinator struct {
	roomID    string
	snap      Snapshotter
	resolver  Resolver
	poke      chan struct{}
	cancel    context.CancelFunc
	log       zerolog.Logger
}

// pollInterval bounds how long the coordinator ever sleeps blind when it
// cannot yet compute a timer deadline (e.g. a transient snapshot error),
// so a stuck room still gets retried instead of hanging forever.
const pollInterval = time.Second

func newCoordinator(roomID string, snap Snapshotter, resolver Resolver, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		roomID:   roomID,
		snap:     snap,
		resolver: resolver,
		poke:     make(chan struct{}, 1),
		log:      log,
	}
}

// Poke wakes the coordinator immediately so it can re-check its
// completion predicate, called by the dispatcher after every committed
// mutation to the room.
func (c *Coordinator) Poke() {
	select {
	case c.poke <- struct{}{}:
	default:
	}
}

// Stop cancels the coordinator's loop, used when the room ends or this
// instance resigns leadership.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Coordinator) run(ctx context.Context) {
	for {
		room, err := c.snap.Snapshot(ctx, c.roomID)
		if err != nil {
			c.log.Warn().Str("room_id", c.roomID).Err(err).Msg("scheduler: snapshot failed, retrying")
			if !c.sleep(ctx, pollInterval) {
				return
			}
			continue
		}

		if room.Phase == roomstate.PhaseEnded || room.Phase == roomstate.PhaseLobby {
			return
		}

		predicate := completionPredicateFor(room.Phase)
		if predicate != nil && predicate(room) {
			if !c.wake(ctx) {
				return
			}
			continue
		}

		wait := pollInterval
		if room.Timer != nil {
			if d := time.Until(time.UnixMilli(room.Timer.EndsAt)); d > 0 {
				wait = d
			} else {
				wait = 0
			}
		}

		if !c.sleep(ctx, wait) {
			return
		}

		room, err = c.snap.Snapshot(ctx, c.roomID)
		if err == nil && (predicate == nil || !predicate(room)) && room.Timer != nil &&
			time.Now().Before(time.UnixMilli(room.Timer.EndsAt)) {
			// Woken by a poke in a timer-only phase, or one that didn't
			// satisfy the predicate, and the timer hasn't expired yet
			// either; loop back to recompute the wait instead of
			// resolving early.
			continue
		}

		if !c.wake(ctx) {
			return
		}
	}
}

// sleep waits for either d to elapse or a poke to arrive, returning false
// if ctx was cancelled first.
func (c *Coordinator) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-c.poke:
		return true
	}
}

func (c *Coordinator) wake(ctx context.Context) bool {
	phase, err := c.resolver.ResolveAndAdvance(ctx, c.roomID)
	if err != nil {
		c.log.Error().Str("room_id", c.roomID).Err(err).Msg("scheduler: resolve-and-advance failed")
		return true
	}
	if phase == roomstate.PhaseEnded {
		return false
	}
	return true
}

// Manager runs one Coordinator per room this instance leads.
type Manager struct {
	snap     Snapshotter
	resolver Resolver
	log      zerolog.Logger

	mu           chan struct{}
	coordinators map[string]*Coordinator
}

func NewManager(snap Snapshotter, resolver Resolver, log zerolog.Logger) *Manager {
	return &Manager{
		snap:         snap,
		resolver:     resolver,
		log:          log,
		mu:           make(chan struct{}, 1),
		coordinators: make(map[string]*Coordinator),
	}
}

func (m *Manager) lock()   { m.mu <- struct{}{} }
func (m *Manager) unlock() { <-m.mu }

// Start begins (or no-ops if already running) the coordinator for roomID.
func (m *Manager) Start(ctx context.Context, roomID string) {
	m.lock()
	defer m.unlock()
	if _, ok := m.coordinators[roomID]; ok {
		return
	}
	c := newCoordinator(roomID, m.snap, m.resolver, m.log)
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	m.coordinators[roomID] = c
	go func() {
		c.run(runCtx)
		m.lock()
		delete(m.coordinators, roomID)
		m.unlock()
	}()
}

// Poke wakes roomID's coordinator early, if running, to re-check its
// completion predicate right after a committed mutation.
func (m *Manager) Poke(roomID string) {
	m.lock()
	c, ok := m.coordinators[roomID]
	m.unlock()
	if ok {
		c.Poke()
	}
}

// Stop cancels roomID's coordinator, if running.
func (m *Manager) Stop(roomID string) {
	m.lock()
	c, ok := m.coordinators[roomID]
	delete(m.coordinators, roomID)
	m.unlock()
	if ok {
		c.Stop()
	}
}

// StopAll cancels every running coordinator, used on graceful shutdown
// right after internal/leader releases its leases.
func (m *Manager) StopAll() {
	m.lock()
	coords := make([]*Coordinator, 0, len(m.coordinators))
	for _, c := range m.coordinators {
		coords = append(coords, c)
	}
	m.coordinators = make(map[string]*Coordinator)
	m.unlock()
	for _, c := range coords {
		c.Stop()
	}
}
