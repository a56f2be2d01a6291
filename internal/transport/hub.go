package transport

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sairajesh711/mafia-lite/internal/wire"
)

// Hub is the process-wide registry of connected players, keyed by
// playerId. It implements dispatch.Publisher directly: a command
// dispatcher that only knows "deliver this envelope to this player" can
// be handed a *Hub without depending on this package's connection
// internals.
type Hub struct {
	mu      sync.RWMutex
	players map[string]*Player
	log     zerolog.Logger
}

// NewHub builds an empty registry.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{players: make(map[string]*Player), log: log}
}

// Register binds playerID to p, closing and replacing any connection
// already registered for that player (a fresh login on a new socket
// displaces the old one; internal/session's eviction flow calls Unregister
// on the connection being displaced before this runs so there is no
// double Close race).
func (h *Hub) Register(playerID string, p *Player) {
	h.mu.Lock()
	prev := h.players[playerID]
	h.players[playerID] = p
	h.mu.Unlock()
	if prev != nil && prev != p {
		prev.conn.Close("replaced_by_new_session")
	}
}

// Unregister removes playerID's entry if it still points at p, avoiding a
// race where a just-registered replacement gets removed by the old
// connection's own close callback.
func (h *Hub) Unregister(playerID string, p *Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.players[playerID] == p {
		delete(h.players, playerID)
	}
}

// Publish implements dispatch.Publisher: deliver env to playerID's
// connection if one is registered, a silent no-op otherwise (the player
// may be disconnected; the room's persisted state is still the source of
// truth and a later room.snapshot on reconnect catches them up).
func (h *Hub) Publish(_ context.Context, playerID string, env wire.Envelope) error {
	h.mu.RLock()
	p, ok := h.players[playerID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return p.Send(env)
}

// Disconnect force-closes playerID's connection if present, used to push
// a session.evicted notice before dropping a displaced socket.
func (h *Hub) Disconnect(playerID string, reason string) {
	h.mu.RLock()
	p, ok := h.players[playerID]
	h.mu.RUnlock()
	if ok {
		p.conn.Close(reason)
	}
}
