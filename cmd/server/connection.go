package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sairajesh711/mafia-lite/internal/dispatch"
	"github.com/sairajesh711/mafia-lite/internal/ids"
	"github.com/sairajesh711/mafia-lite/internal/token"
	"github.com/sairajesh711/mafia-lite/internal/transport"
	"github.com/sairajesh711/mafia-lite/internal/wire"
)

// connState holds the one piece of mutable context a connection accrues
// across its lifetime: the Auth a handshake (room.create/room.join/
// session.resume) resolved it to. Every later authenticated event reuses
// this instead of re-verifying a bearer token per message, the session's
// own socket rebinding already having done that verification once.
type connState struct {
	mu     sync.Mutex
	auth   dispatch.Auth
	bound  bool
	socket string
}

func newConnState(socketID string) *connState {
	return &connState{socket: socketID}
}

func (c *connState) bind(a dispatch.Auth) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = a
	c.bound = true
}

func (c *connState) get() (dispatch.Auth, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth, c.bound
}

// connHandler wires one upgraded socket to the dispatcher: it owns the
// throwaway-identity-then-rebind handshake and routes every event after
// that through the matching Handle* call.
type connHandler struct {
	d     *dispatch.Dispatcher
	hub   *transport.Hub
	toks  *token.Service
	log   zerolog.Logger
	state *connState

	mu     sync.Mutex
	player *transport.Player
}

func serveConnection(conn transport.Conn, d *dispatch.Dispatcher, hub *transport.Hub, toks *token.Service, log zerolog.Logger) {
	connID := "conn-" + ids.New()
	h := &connHandler{d: d, hub: hub, toks: toks, log: log, state: newConnState(connID)}

	player := transport.NewPlayer(connID, conn, h.onMessage, h.onClose, log)
	h.mu.Lock()
	h.player = player
	h.mu.Unlock()

	hub.Register(connID, player)
	go player.ReadPump()
	player.WritePump()
}

func (h *connHandler) onMessage(playerID string, env wire.Envelope) {
	ctx := context.Background()
	now := time.Now()

	switch env.Event {
	case wire.EventRoomCreate:
		h.handleRoomCreate(ctx, env, now)
	case wire.EventRoomJoin:
		h.handleRoomJoin(ctx, env, now)
	case wire.EventSessionResume:
		h.handleSessionResume(ctx, env, now)
	default:
		auth, bound := h.state.get()
		if !bound {
			h.sendError(ctx, playerID, wire.ErrorUnauthorized, false, "no session bound to this connection yet")
			return
		}
		h.routeAuthenticated(ctx, auth, env, now)
	}
}

func (h *connHandler) routeAuthenticated(ctx context.Context, auth dispatch.Auth, env wire.Envelope, now time.Time) {
	switch env.Event {
	case wire.EventActionSubmit:
		var payload wire.ActionSubmitPayload
		if !h.decode(ctx, auth.PlayerID, env.Payload, &payload) {
			return
		}
		_ = h.d.HandleSubmitNightAction(ctx, auth, payload, now)
	case wire.EventVoteCast:
		var payload wire.VoteCastPayload
		if !h.decode(ctx, auth.PlayerID, env.Payload, &payload) {
			return
		}
		_ = h.d.HandleCastVote(ctx, auth, payload, now)
	case wire.EventHostAction:
		var payload wire.HostActionPayload
		if !h.decode(ctx, auth.PlayerID, env.Payload, &payload) {
			return
		}
		_ = h.d.HandleHostAction(ctx, auth, payload, env.ActionID, now)
	case wire.EventChatMessage:
		var payload wire.ChatMessagePayload
		if !h.decode(ctx, auth.PlayerID, env.Payload, &payload) {
			return
		}
		_, _ = h.d.HandleChatMessage(ctx, auth, payload)
	default:
		h.sendError(ctx, auth.PlayerID, wire.ErrorInternal, false, "unknown event")
	}
}

func (h *connHandler) handleRoomCreate(ctx context.Context, env wire.Envelope, now time.Time) {
	var payload wire.RoomCreatePayload
	if !h.decode(ctx, h.state.socket, env.Payload, &payload) {
		return
	}
	view, tok, err := h.d.HandleCreateRoom(ctx, payload.HostName, h.state.socket, now)
	if err != nil {
		h.sendError(ctx, h.state.socket, wire.ErrorInternal, true, "failed to create room")
		return
	}
	claims, err := h.toks.Verify(tok, view.RoomID)
	if err != nil {
		h.sendError(ctx, h.state.socket, wire.ErrorInternal, true, "failed to bind fresh session")
		return
	}
	h.completeHandshake(claims.PlayerID, claims.RoomID, claims.SessionID, tok, view)
}

func (h *connHandler) handleRoomJoin(ctx context.Context, env wire.Envelope, now time.Time) {
	var payload wire.RoomJoinPayload
	if !h.decode(ctx, h.state.socket, env.Payload, &payload) {
		return
	}
	view, tok, err := h.d.HandleJoin(ctx, payload.RoomCode, payload.PlayerName, h.state.socket, now)
	if err != nil {
		h.sendError(ctx, h.state.socket, wire.ErrorRoomNotFound, false, "unable to join room")
		return
	}
	claims, err := h.toks.Verify(tok, view.RoomID)
	if err != nil {
		h.sendError(ctx, h.state.socket, wire.ErrorInternal, true, "failed to bind fresh session")
		return
	}
	h.completeHandshake(claims.PlayerID, claims.RoomID, claims.SessionID, tok, view)
}

func (h *connHandler) handleSessionResume(ctx context.Context, env wire.Envelope, now time.Time) {
	var payload wire.SessionResumePayload
	if !h.decode(ctx, h.state.socket, env.Payload, &payload) {
		return
	}
	auth, view, err := h.d.HandleSessionResume(ctx, payload, h.state.socket, now)
	if err != nil {
		h.sendError(ctx, h.state.socket, wire.ErrorUnauthorized, false, "failed to resume session")
		return
	}
	h.completeHandshake(auth.PlayerID, auth.RoomID, auth.SessionID, payload.JWT, view)
}

// completeHandshake rebinds the connection's identity once a handshake
// resolves it, registers the real identity with the hub, binds the
// connection's Auth for every later message, and delivers the caller's
// own fresh view directly (broadcastSnapshot's fan-out can't reach this
// connection yet: it is only registered in the hub after this point).
func (h *connHandler) completeHandshake(playerID, roomID, sessionID, jwt string, view any) {
	h.mu.Lock()
	player := h.player
	h.mu.Unlock()

	player.Rebind(playerID)
	h.hub.Register(playerID, player)
	h.state.bind(dispatch.Auth{PlayerID: playerID, RoomID: roomID, SessionID: sessionID})

	env := wire.Envelope{
		Event:   wire.EventRoomSnapshot,
		RoomID:  roomID,
		Payload: wire.RoomSnapshotPayload{View: view, JWT: jwt},
	}
	if err := player.Send(env); err != nil {
		h.log.Warn().Str("player_id", playerID).Err(err).Msg("cmd/server: failed to deliver initial snapshot")
	}
}

func (h *connHandler) decode(ctx context.Context, playerID string, payload any, out any) bool {
	b, err := json.Marshal(payload)
	if err != nil {
		h.sendError(ctx, playerID, wire.ErrorInternal, false, "malformed payload")
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		h.sendError(ctx, playerID, wire.ErrorInternal, false, "malformed payload")
		return false
	}
	return true
}

func (h *connHandler) sendError(_ context.Context, playerID string, code wire.ErrorCode, retryable bool, msg string) {
	h.mu.Lock()
	player := h.player
	h.mu.Unlock()
	env := wire.Envelope{Event: wire.EventError, Payload: wire.ErrorPayload{Code: code, Message: msg, Retryable: retryable}}
	if err := player.Send(env); err != nil {
		h.log.Warn().Str("player_id", playerID).Err(err).Msg("cmd/server: failed to deliver error envelope")
	}
}

// onClose fires once per connection, from whichever pump exits first. It
// unregisters the connection from the hub (a no-op if a newer connection
// has already displaced this identity) and, if a handshake ever resolved
// a real room/player, records the disconnect so other players see the
// status flip without waiting on a stale snapshot.
func (h *connHandler) onClose(playerID string) {
	h.mu.Lock()
	player := h.player
	h.mu.Unlock()
	h.hub.Unregister(playerID, player)

	if auth, bound := h.state.get(); bound {
		h.d.HandleDisconnect(context.Background(), auth.PlayerID, auth.RoomID)
	}
}
