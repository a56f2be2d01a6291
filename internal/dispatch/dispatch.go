// Package dispatch is the command pipeline: decode, authenticate,
// deduplicate, police, reduce, commit, redact, publish. It is the one
// place that owns I/O around a room — transport framing lives in
// cmd/server, everything else (reducer, redaction, policy) stays pure and
// is only ever called from here.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sairajesh711/mafia-lite/internal/dedup"
	"github.com/sairajesh711/mafia-lite/internal/engine"
	"github.com/sairajesh711/mafia-lite/internal/ids"
	"github.com/sairajesh711/mafia-lite/internal/policy"
	"github.com/sairajesh711/mafia-lite/internal/redact"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
	"github.com/sairajesh711/mafia-lite/internal/roomstore"
	"github.com/sairajesh711/mafia-lite/internal/session"
	"github.com/sairajesh711/mafia-lite/internal/token"
	"github.com/sairajesh711/mafia-lite/internal/wire"
)

// Publisher fans out envelopes to connected sockets. cmd/server implements
// it over gorilla/websocket connections keyed by playerId.
type Publisher interface {
	Publish(ctx context.Context, playerID string, env wire.Envelope) error

	// Disconnect force-closes playerID's socket, used when a host kicks a
	// player: the room-state change alone wouldn't stop them from sending
	// further commands on the same connection.
	Disconnect(playerID string, reason string)
}

// SchedulerPoker lets the dispatcher nudge the phase scheduler after a
// commit. *scheduler.Manager satisfies it, as does cmd/server's
// leader-gated wrapper around it; dispatch does not import
// internal/scheduler, and this interface keeps the dependency explicit and
// test-substitutable.
type SchedulerPoker interface {
	Poke(roomID string)
	Start(ctx context.Context, roomID string)
	Stop(roomID string)
}

const (
	// perSessionRateLimit and perSessionBurst bound how fast a single
	// session may submit commands, giving the RATE_LIMITED wire error a
	// real check behind it.
	perSessionRateLimit = rate.Limit(5) // tokens/sec
	perSessionBurst     = 10
)

// Dispatcher wires every component the pipeline steps need.
type Dispatcher struct {
	rooms     roomstore.Store
	sessions  session.Store
	tokens    *token.Service
	dedup     dedup.Store
	scheduler SchedulerPoker
	publisher Publisher
	log       zerolog.Logger

	limitMu  chan struct{}
	limiters map[string]*rate.Limiter
}

func New(rooms roomstore.Store, sessions session.Store, tokens *token.Service, dedupStore dedup.Store, sched SchedulerPoker, pub Publisher, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		rooms:     rooms,
		sessions:  sessions,
		tokens:    tokens,
		dedup:     dedupStore,
		scheduler: sched,
		publisher: pub,
		log:       log,
		limitMu:   make(chan struct{}, 1),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// SetScheduler assigns the scheduler after construction, for the one
// legitimate case that needs it: the scheduler's Resolver is itself built
// from a *Dispatcher (RoomResolver wraps one), so cmd/server builds the
// Dispatcher with no scheduler yet, builds the Manager/Resolver pair from
// it, then calls this once to close the loop before serving any traffic.
func (d *Dispatcher) SetScheduler(sched SchedulerPoker) {
	d.scheduler = sched
}

func (d *Dispatcher) limiterFor(sessionID string) *rate.Limiter {
	d.limitMu <- struct{}{}
	defer func() { <-d.limitMu }()
	l, ok := d.limiters[sessionID]
	if !ok {
		l = rate.NewLimiter(perSessionRateLimit, perSessionBurst)
		d.limiters[sessionID] = l
	}
	return l
}

// Auth is the caller's verified identity for everything except
// room.create/room.join, which have none yet.
type Auth struct {
	PlayerID  string
	RoomID    string
	SessionID string
}

// sendError emits a wire error envelope to one player and returns the
// violation wrapped as an error, so callers can both publish and bail out
// of the pipeline in one line.
func (d *Dispatcher) sendError(ctx context.Context, playerID string, code wire.ErrorCode, retryable bool, msg string) error {
	env := wire.Envelope{
		Event:   wire.EventError,
		Payload: wire.ErrorPayload{Code: code, Message: msg, Retryable: retryable},
	}
	if err := d.publisher.Publish(ctx, playerID, env); err != nil {
		d.log.Warn().Str("player_id", playerID).Err(err).Msg("dispatch: failed to publish error envelope")
	}
	return fmt.Errorf("dispatch: %s: %s", code, msg)
}

// Authenticate is dispatcher step 2: verify the bearer token against the
// claimed room, reject on mismatch. room.create and room.join skip this
// entirely (they have no session yet).
func (d *Dispatcher) Authenticate(ctx context.Context, roomID, jwt string) (Auth, error) {
	claims, err := d.tokens.Verify(jwt, roomID)
	if err != nil {
		return Auth{}, d.sendError(ctx, "", wire.ErrorUnauthorized, false, "invalid or expired session token")
	}
	return Auth{PlayerID: claims.PlayerID, RoomID: claims.RoomID, SessionID: claims.SessionID}, nil
}

// checkRateLimit is folded into every authenticated entry point ahead of
// dedup, since a client hammering retries shouldn't even reach the dedup
// cache.
func (d *Dispatcher) checkRateLimit(ctx context.Context, auth Auth) error {
	if !d.limiterFor(auth.SessionID).Allow() {
		return d.sendError(ctx, auth.PlayerID, wire.ErrorRateLimited, true, "too many commands, slow down")
	}
	return nil
}

// dedupResult is what Begin-then-branch produces for the caller: either
// "proceed," or a terminal outcome to replay/drop without touching the
// reducer at all.
type dedupResult struct {
	proceed      bool
	replay       *dedup.Record
	droppedQuiet bool
}

func (d *Dispatcher) checkDedup(ctx context.Context, auth Auth, actionID string, now time.Time) (dedupResult, error) {
	rec, started, err := d.dedup.Begin(ctx, auth.PlayerID, auth.RoomID, actionID, now)
	if err != nil {
		return dedupResult{}, d.sendError(ctx, auth.PlayerID, wire.ErrorInternal, true, "dedup check failed")
	}
	if started {
		return dedupResult{proceed: true}, nil
	}
	switch rec.State {
	case dedup.StateProcessing:
		return dedupResult{droppedQuiet: true}, nil
	case dedup.StateCompleted:
		return dedupResult{replay: &rec}, nil
	case dedup.StateFailed:
		// FailedRetryTTL already elapsed if Begin returned started=true;
		// reaching here with started=false while still failed means the
		// caller is retrying too early.
		return dedupResult{droppedQuiet: true}, nil
	}
	return dedupResult{droppedQuiet: true}, nil
}

func (d *Dispatcher) replayCompleted(ctx context.Context, playerID string, rec *dedup.Record) error {
	var env wire.Envelope
	if err := json.Unmarshal(rec.Response, &env); err != nil {
		return d.sendError(ctx, playerID, wire.ErrorInternal, false, "corrupt dedup record")
	}
	return d.publisher.Publish(ctx, playerID, env)
}

// HandleSubmitNightAction runs the full pipeline for action.submit.
func (d *Dispatcher) HandleSubmitNightAction(ctx context.Context, auth Auth, payload wire.ActionSubmitPayload, now time.Time) error {
	if err := d.checkRateLimit(ctx, auth); err != nil {
		return err
	}

	dr, err := d.checkDedup(ctx, auth, payload.ActionID, now)
	if err != nil {
		return err
	}
	if dr.droppedQuiet {
		return nil
	}
	if dr.replay != nil {
		return d.replayCompleted(ctx, auth.PlayerID, dr.replay)
	}

	var violation *policy.Violation
	room, err := d.rooms.UpdateRoomStateSafe(ctx, auth.RoomID, func(r *roomstate.Room) error {
		violation = policy.CheckNightAction(r, auth.PlayerID, payload.Type, payload.TargetID)
		if violation != nil {
			return violation
		}
		_, err := engine.Reduce(r, engine.Command{
			Kind: engine.CommandSubmitNightAction,
			SubmitNight: engine.SubmitNightAction{
				ActionID: payload.ActionID,
				PlayerID: auth.PlayerID,
				Type:     payload.Type,
				TargetID: payload.TargetID,
				Now:      now.UnixMilli(),
			},
			Now: now.UnixMilli(),
		})
		return err
	})
	if violation != nil {
		_ = d.dedup.Fail(ctx, auth.PlayerID, auth.RoomID, payload.ActionID, violation.Message, now)
		return d.sendError(ctx, auth.PlayerID, violation.Code, violation.Retryable, violation.Message)
	}
	if err != nil {
		_ = d.dedup.Fail(ctx, auth.PlayerID, auth.RoomID, payload.ActionID, err.Error(), now)
		return d.sendError(ctx, auth.PlayerID, wire.ErrorInternal, true, "commit failed")
	}

	ack := wire.Envelope{
		Event:    wire.EventActionAck,
		RoomID:   auth.RoomID,
		ActionID: payload.ActionID,
		Payload:  wire.ActionAckPayload{ActionID: payload.ActionID, Type: payload.Type, TargetID: payload.TargetID},
	}
	d.completeAndPublish(ctx, room, auth, payload.ActionID, ack, now)
	return nil
}

// HandleCastVote runs the full pipeline for vote.cast.
func (d *Dispatcher) HandleCastVote(ctx context.Context, auth Auth, payload wire.VoteCastPayload, now time.Time) error {
	if err := d.checkRateLimit(ctx, auth); err != nil {
		return err
	}

	dr, err := d.checkDedup(ctx, auth, payload.ActionID, now)
	if err != nil {
		return err
	}
	if dr.droppedQuiet {
		return nil
	}
	if dr.replay != nil {
		return d.replayCompleted(ctx, auth.PlayerID, dr.replay)
	}

	targetID := ""
	if payload.TargetID != nil {
		targetID = *payload.TargetID
	}

	var violation *policy.Violation
	room, err := d.rooms.UpdateRoomStateSafe(ctx, auth.RoomID, func(r *roomstate.Room) error {
		violation = policy.CheckVote(r, auth.PlayerID, targetID)
		if violation != nil {
			return violation
		}
		_, err := engine.Reduce(r, engine.Command{
			Kind: engine.CommandCastVote,
			CastVote: engine.CastVote{
				ActionID: payload.ActionID,
				PlayerID: auth.PlayerID,
				TargetID: targetID,
				Now:      now.UnixMilli(),
			},
			Now: now.UnixMilli(),
		})
		return err
	})
	if violation != nil {
		_ = d.dedup.Fail(ctx, auth.PlayerID, auth.RoomID, payload.ActionID, violation.Message, now)
		return d.sendError(ctx, auth.PlayerID, violation.Code, violation.Retryable, violation.Message)
	}
	if err != nil {
		_ = d.dedup.Fail(ctx, auth.PlayerID, auth.RoomID, payload.ActionID, err.Error(), now)
		return d.sendError(ctx, auth.PlayerID, wire.ErrorInternal, true, "commit failed")
	}

	votePayload := wire.VoteUpdatePayload{PlayerID: auth.PlayerID, TargetID: targetID}
	if !room.Settings.AnonymousVoting {
		tally, _ := engine.BuildVoteTally(room)
		votePayload.Tallies = tally
	}
	ack := wire.Envelope{
		Event:    wire.EventVoteUpdate,
		RoomID:   auth.RoomID,
		ActionID: payload.ActionID,
		Payload:  votePayload,
	}
	d.completeAndPublish(ctx, room, auth, payload.ActionID, ack, now)
	return nil
}

// HandleStartGame runs host.action{action:"start"}. The role-assignment RNG
// is derived from actionID rather than a package-global source, so the
// same start_game command always assigns the same roles.
func (d *Dispatcher) HandleStartGame(ctx context.Context, auth Auth, actionID string, now time.Time) error {
	if err := d.checkRateLimit(ctx, auth); err != nil {
		return err
	}

	rng := rngForAction(actionID)
	var violation *policy.Violation
	room, err := d.rooms.UpdateRoomStateSafe(ctx, auth.RoomID, func(r *roomstate.Room) error {
		violation = policy.CheckStartGame(r, auth.PlayerID)
		if violation != nil {
			return violation
		}
		_, err := engine.StartGame(r, now.UnixMilli(), rng)
		return err
	})
	if violation != nil {
		return d.sendError(ctx, auth.PlayerID, violation.Code, violation.Retryable, violation.Message)
	}
	if err != nil {
		return d.sendError(ctx, auth.PlayerID, wire.ErrorInternal, true, "commit failed")
	}

	ack := wire.Envelope{Event: wire.EventActionAck, RoomID: auth.RoomID, ActionID: actionID,
		Payload: wire.ActionAckPayload{ActionID: actionID, Type: "start"}}
	d.completeAndPublish(ctx, room, auth, actionID, ack, now)
	d.scheduler.Start(ctx, auth.RoomID)
	return nil
}

// HandleHostAction runs host.action for the three moderation sub-actions
// (kick/mute/nudge); start is routed to HandleStartGame since it alone
// carries no targetId and triggers role assignment instead of a simple
// per-player mutation.
func (d *Dispatcher) HandleHostAction(ctx context.Context, auth Auth, payload wire.HostActionPayload, actionID string, now time.Time) error {
	if payload.Action == wire.HostActionStart {
		return d.HandleStartGame(ctx, auth, actionID, now)
	}
	if err := d.checkRateLimit(ctx, auth); err != nil {
		return err
	}

	var violation *policy.Violation
	var targetStatus roomstate.Status
	var targetConnected bool
	room, err := d.rooms.UpdateRoomStateSafe(ctx, auth.RoomID, func(r *roomstate.Room) error {
		violation = policy.CheckHostAction(r, auth.PlayerID)
		if violation != nil {
			return violation
		}
		violation = policy.CheckHostActionTarget(r, payload.TargetID)
		if violation != nil {
			return violation
		}
		target := r.Players[payload.TargetID]
		switch payload.Action {
		case wire.HostActionKick:
			target.Status = roomstate.StatusDisconnected
			target.Connected = false
		case wire.HostActionMute:
			target.Muted = true
		case wire.HostActionNudge:
			// no state change; delivered directly below.
		}
		targetStatus = target.Status
		targetConnected = target.Connected
		return nil
	})
	if violation != nil {
		return d.sendError(ctx, auth.PlayerID, violation.Code, violation.Retryable, violation.Message)
	}
	if err != nil {
		return d.sendError(ctx, auth.PlayerID, wire.ErrorInternal, true, "commit failed")
	}

	switch payload.Action {
	case wire.HostActionKick:
		d.publisher.Disconnect(payload.TargetID, "kicked_by_host")
		env := wire.Envelope{Event: wire.EventPlayerStatus, RoomID: auth.RoomID,
			Payload: wire.PlayerStatusPayload{PlayerID: payload.TargetID, Connected: targetConnected, Alive: targetStatus == roomstate.StatusAlive}}
		d.broadcastSnapshot(ctx, room)
		if err := d.publisher.Publish(ctx, payload.TargetID, env); err != nil {
			d.log.Warn().Str("player_id", payload.TargetID).Err(err).Msg("dispatch: failed to publish kick status")
		}
	case wire.HostActionMute:
		d.broadcastSnapshot(ctx, room)
	case wire.HostActionNudge:
		env := wire.Envelope{Event: wire.EventHostNudge, RoomID: auth.RoomID,
			Payload: wire.HostNudgePayload{Message: "the host is waiting on your move"}}
		if err := d.publisher.Publish(ctx, payload.TargetID, env); err != nil {
			d.log.Warn().Str("player_id", payload.TargetID).Err(err).Msg("dispatch: failed to publish nudge")
		}
	}

	ack := wire.Envelope{Event: wire.EventActionAck, RoomID: auth.RoomID, ActionID: actionID,
		Payload: wire.ActionAckPayload{ActionID: actionID, Type: string(payload.Action), TargetID: payload.TargetID}}
	if err := d.publisher.Publish(ctx, auth.PlayerID, ack); err != nil {
		d.log.Warn().Str("player_id", auth.PlayerID).Err(err).Msg("dispatch: failed to publish host action ack")
	}
	d.scheduler.Poke(room.ID)
	return nil
}

// HandleCreateRoom runs room.create: the room store already builds a
// brand-new lobby room with its host seated, so this just layers the
// session and token on top and returns the host's view.
func (d *Dispatcher) HandleCreateRoom(ctx context.Context, hostName, socketID string, now time.Time) (redact.View, string, error) {
	hostID := ids.New()
	roomID, _, err := d.rooms.CreateRoom(ctx, hostID, hostName)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: create room: %w", err)
	}

	room, _, err := d.rooms.GetRoomState(ctx, roomID)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: create room: %w", err)
	}

	sess, _, err := d.sessions.Register(ctx, hostID, roomID, socketID, now)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: create room: session register: %w", err)
	}

	tok, err := d.tokens.Issue(hostID, roomID, sess.SessionID, now)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: create room: issue token: %w", err)
	}

	view, err := redact.BuildView(room, hostID)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: create room: %w", err)
	}
	return view, tok, nil
}

// HandleSessionResume runs session.resume: verify the bearer token against
// the claimed room, rebind the session to the new socket, evict whatever
// socket held it before, and return a fresh view.
func (d *Dispatcher) HandleSessionResume(ctx context.Context, payload wire.SessionResumePayload, socketID string, now time.Time) (Auth, redact.View, error) {
	auth, err := d.Authenticate(ctx, payload.RoomID, payload.JWT)
	if err != nil {
		return Auth{}, redact.View{}, err
	}

	if _, _, err := d.sessions.Register(ctx, auth.PlayerID, auth.RoomID, socketID, now); err != nil {
		return Auth{}, redact.View{}, fmt.Errorf("dispatch: session resume: %w", err)
	}

	room, err := d.rooms.UpdateRoomStateSafe(ctx, auth.RoomID, func(r *roomstate.Room) error {
		if p, ok := r.Players[auth.PlayerID]; ok {
			p.Connected = true
		}
		return nil
	})
	if err != nil {
		return Auth{}, redact.View{}, fmt.Errorf("dispatch: session resume: %w", err)
	}

	view, err := redact.BuildView(room, auth.PlayerID)
	if err != nil {
		return Auth{}, redact.View{}, fmt.Errorf("dispatch: session resume: %w", err)
	}
	d.broadcastSnapshot(ctx, room)
	return auth, view, nil
}

// HandleDisconnect runs on transport loss: toggles connected off for
// playerID without touching status (alive/dead is unaffected by a dropped
// socket, only a host kick sets status itself to disconnected) and
// re-broadcasts so every other connected player sees the flag flip. A
// room that no longer exists (already torn down) is a silent no-op.
func (d *Dispatcher) HandleDisconnect(ctx context.Context, playerID, roomID string) {
	room, err := d.rooms.UpdateRoomStateSafe(ctx, roomID, func(r *roomstate.Room) error {
		if p, ok := r.Players[playerID]; ok {
			p.Connected = false
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, roomstore.ErrNotFound) {
			d.log.Warn().Str("room_id", roomID).Str("player_id", playerID).Err(err).Msg("dispatch: failed to record disconnect")
		}
		return
	}
	d.broadcastSnapshot(ctx, room)
}

// HandleChatMessage runs chat.message: per the wire contract an
// impermissible message is dropped silently rather than reported as an
// error, so this never returns a policy violation to the caller, only a
// bool for whether it was actually delivered.
func (d *Dispatcher) HandleChatMessage(ctx context.Context, auth Auth, payload wire.ChatMessagePayload) (delivered bool, err error) {
	room, _, err := d.rooms.GetRoomState(ctx, auth.RoomID)
	if err != nil {
		return false, fmt.Errorf("dispatch: chat: %w", err)
	}
	if v := policy.CheckChat(room, auth.PlayerID, payload.Channel); v != nil {
		return false, nil
	}

	env := wire.Envelope{Event: wire.EventChatMessage, RoomID: auth.RoomID, Payload: payload}
	for playerID, p := range room.Players {
		if !p.Connected {
			continue
		}
		if v := policy.CheckChat(room, playerID, payload.Channel); v != nil {
			continue
		}
		if err := d.publisher.Publish(ctx, playerID, env); err != nil {
			d.log.Warn().Str("player_id", playerID).Err(err).Msg("dispatch: failed to publish chat message")
		}
	}
	return true, nil
}

// HandleJoin runs room.join: resolve the room code, apply the join policy,
// add the player, register a session, and return the fresh view plus a
// token to the caller.
func (d *Dispatcher) HandleJoin(ctx context.Context, roomCode, playerName, socketID string, now time.Time) (redact.View, string, error) {
	roomID, err := d.rooms.FindRoomByCode(ctx, roomCode)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: join: %w", err)
	}

	playerID := ids.New()

	var violation *policy.Violation
	room, err := d.rooms.UpdateRoomStateSafe(ctx, roomID, func(r *roomstate.Room) error {
		violation = policy.CheckJoin(r)
		if violation != nil {
			return violation
		}
		r.Players[playerID] = &roomstate.Player{
			ID:        playerID,
			Name:      playerName,
			Status:    roomstate.StatusAlive,
			Connected: true,
		}
		return nil
	})
	if violation != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: join: %w", violation)
	}
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: join: %w", err)
	}

	sess, evicted, err := d.sessions.Register(ctx, playerID, roomID, socketID, now)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: join: session register: %w", err)
	}
	if evicted != "" {
		d.log.Info().Str("room_id", roomID).Str("player_id", playerID).Msg("dispatch: displaced a prior session on join")
	}

	tok, err := d.tokens.Issue(playerID, roomID, sess.SessionID, now)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: join: issue token: %w", err)
	}

	view, err := redact.BuildView(room, playerID)
	if err != nil {
		return redact.View{}, "", fmt.Errorf("dispatch: join: %w", err)
	}

	d.broadcastSnapshot(ctx, room)
	return view, tok, nil
}

// completeAndPublish is dispatcher steps 7-8 shared by every mutating
// command: redact-and-publish to every subscriber, ack the originator,
// mark dedup completed, and nudge the scheduler.
func (d *Dispatcher) completeAndPublish(ctx context.Context, room *roomstate.Room, auth Auth, actionID string, ack wire.Envelope, now time.Time) {
	if err := d.publisher.Publish(ctx, auth.PlayerID, ack); err != nil {
		d.log.Warn().Str("player_id", auth.PlayerID).Err(err).Msg("dispatch: failed to publish ack")
	}
	d.broadcastSnapshot(ctx, room)

	if payload, err := json.Marshal(ack); err == nil {
		_ = d.dedup.Complete(ctx, auth.PlayerID, auth.RoomID, actionID, payload, now)
	}
	d.scheduler.Poke(room.ID)
}

// broadcastSnapshot runs redaction once per connected player and publishes
// each one's own view: every subscriber gets its own redaction of the raw
// state, never the raw state itself.
func (d *Dispatcher) broadcastSnapshot(ctx context.Context, room *roomstate.Room) {
	for playerID, p := range room.Players {
		if !p.Connected {
			continue
		}
		view, err := redact.BuildView(room, playerID)
		if err != nil {
			d.log.Error().Str("room_id", room.ID).Str("player_id", playerID).Err(err).Msg("dispatch: redaction safety check failed, not publishing")
			continue
		}
		env := wire.Envelope{
			Event:   wire.EventRoomSnapshot,
			RoomID:  room.ID,
			Payload: wire.RoomSnapshotPayload{View: view},
		}
		if err := d.publisher.Publish(ctx, playerID, env); err != nil {
			d.log.Warn().Str("room_id", room.ID).Str("player_id", playerID).Err(err).Msg("dispatch: failed to publish snapshot")
		}
	}
}

// rngForAction derives a deterministic RNG seed from an actionId so role
// assignment is reproducible given the same start_game command, without
// reaching for a package-global source.
func rngForAction(actionID string) *rand.Rand {
	var seed int64
	for _, c := range actionID {
		seed = seed*31 + int64(c)
	}
	return rand.New(rand.NewSource(seed))
}
