package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/sairajesh711/mafia-lite/internal/engine"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
	"github.com/sairajesh711/mafia-lite/internal/session"
	"github.com/sairajesh711/mafia-lite/internal/wire"
)

// pingMissThreshold is how long a session can go without a pong before a
// phase resolve treats it as gone, flipping Connected without touching
// Status (the same distinction HandleDisconnect draws for a clean socket
// close).
const pingMissThreshold = 45 * time.Second

// RoomResolver adapts a Dispatcher to scheduler.Snapshotter and
// scheduler.Resolver, the two calls the phase scheduler makes into the
// pipeline when a timer expires or a completion predicate fires early.
// It shares the dispatcher's store and publisher rather than duplicating
// the redact-and-broadcast step.
type RoomResolver struct {
	d *Dispatcher
}

// NewRoomResolver builds the scheduler-facing side of d.
func NewRoomResolver(d *Dispatcher) *RoomResolver {
	return &RoomResolver{d: d}
}

// Snapshot satisfies scheduler.Snapshotter with a plain read.
func (r *RoomResolver) Snapshot(ctx context.Context, roomID string) (*roomstate.Room, error) {
	room, _, err := r.d.rooms.GetRoomState(ctx, roomID)
	return room, err
}

// ResolveAndAdvance runs the resolve-then-advance step for whichever phase
// roomID is currently in: night and day_voting resolve their pending
// actions/votes before advancing, the two pure-timer phases just advance.
// Victory is checked inside engine.Reduce before any advance, short
// circuiting into PhaseEnded.
func (r *RoomResolver) ResolveAndAdvance(ctx context.Context, roomID string) (roomstate.Phase, error) {
	now := time.Now()
	stale := r.staleConnections(ctx, roomID, now)

	var effects []engine.Effect
	room, err := r.d.rooms.UpdateRoomStateSafe(ctx, roomID, func(room *roomstate.Room) error {
		for playerID := range stale {
			if p, ok := room.Players[playerID]; ok {
				p.Connected = false
			}
		}
		kind := resolveKindFor(room.Phase)
		out, err := engine.Reduce(room, engine.Command{Kind: kind, Now: now.UnixMilli()})
		if err != nil {
			return err
		}
		effects = out
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("dispatch: resolve and advance: %w", err)
	}

	r.publishEffects(ctx, room, effects)
	r.d.broadcastSnapshot(ctx, room)
	return room.Phase, nil
}

// staleConnections reads each connected player's session and returns the
// set that has missed pingMissThreshold worth of pongs, so the mutator
// below can flip their Connected flag in the same commit as the phase
// resolve that will fold their missing submission into an AFK strike.
func (r *RoomResolver) staleConnections(ctx context.Context, roomID string, now time.Time) map[string]bool {
	room, err := r.Snapshot(ctx, roomID)
	if err != nil {
		return nil
	}
	stale := make(map[string]bool)
	for playerID, p := range room.Players {
		if !p.Connected {
			continue
		}
		sess, err := r.d.sessions.Get(ctx, playerID, roomID)
		if err != nil {
			if err != session.ErrNotFound {
				r.d.log.Warn().Str("room_id", roomID).Str("player_id", playerID).Err(err).Msg("dispatch: session lookup failed during liveness scan")
			}
			continue
		}
		if session.IsStale(sess, now, pingMissThreshold) {
			stale[playerID] = true
		}
	}
	return stale
}

// resolveKindFor picks the reducer command for the phase currently ending:
// night and day_voting have pending submissions to fold in first, the two
// narration-only phases (day_announcement, day_discussion) are timer-only.
func resolveKindFor(phase roomstate.Phase) engine.CommandKind {
	switch phase {
	case roomstate.PhaseNight:
		return engine.CommandResolveNight
	case roomstate.PhaseDayVoting:
		return engine.CommandResolveVoting
	default:
		return engine.CommandAdvancePhase
	}
}

// publishEffects turns the reducer's declarative output into the matching
// wire broadcast, one envelope per effect, fanned out to every connected
// player the same way broadcastSnapshot does.
func (r *RoomResolver) publishEffects(ctx context.Context, room *roomstate.Room, effects []engine.Effect) {
	for _, eff := range effects {
		env, ok := envelopeForEffect(room.ID, eff)
		if !ok {
			continue
		}
		r.broadcast(ctx, room, env)
	}
}

func envelopeForEffect(roomID string, eff engine.Effect) (wire.Envelope, bool) {
	switch eff.Kind {
	case engine.EffectNightResult:
		p := eff.Payload.(engine.NightResultPayload)
		return wire.Envelope{
			Event:   wire.EventNightPublicResult,
			RoomID:  roomID,
			Payload: wire.NightPublicResultPayload{Death: p.DeathPlayerID, Narrative: p.Narrative},
		}, true
	case engine.EffectLynchResult:
		p := eff.Payload.(engine.LynchResultPayload)
		return wire.Envelope{
			Event:   wire.EventLynchResult,
			RoomID:  roomID,
			Payload: wire.LynchResultPayload{TargetID: p.TargetID, Narrative: p.Narrative},
		}, true
	case engine.EffectPhaseChange:
		p := eff.Payload.(engine.PhaseChangePayload)
		return wire.Envelope{
			Event:   wire.EventPhaseChange,
			RoomID:  roomID,
			Payload: wire.PhaseChangePayload{Phase: string(p.Phase), Timer: p.Timer, Night: p.Night},
		}, true
	case engine.EffectVictory:
		// No standalone wire event: the decided VictoryCondition rides on
		// the room.snapshot broadcastSnapshot already sends this round.
		return wire.Envelope{}, false
	default:
		return wire.Envelope{}, false
	}
}

// broadcast delivers env to every connected player in room, the same
// fan-out broadcastSnapshot uses for room.snapshot.
func (r *RoomResolver) broadcast(ctx context.Context, room *roomstate.Room, env wire.Envelope) {
	for playerID, p := range room.Players {
		if !p.Connected {
			continue
		}
		if err := r.d.publisher.Publish(ctx, playerID, env); err != nil {
			r.d.log.Warn().Str("room_id", room.ID).Str("player_id", playerID).Err(err).Msg("dispatch: failed to publish resolve effect")
		}
	}
}
