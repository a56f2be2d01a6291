package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sairajesh711/mafia-lite/internal/wire"
)

// inboxCapacity bounds how many outbound envelopes may queue for a slow
// client before Send starts dropping the connection instead of
// growing memory unbounded.
const inboxCapacity = 256

// Handler processes one decoded client envelope for one player, the
// seam transport hands off to internal/dispatch without importing it
// directly (dispatch already imports wire; this avoids a cycle and keeps
// transport ignorant of the pipeline's internals).
type Handler func(playerID string, env wire.Envelope)

// Player pumps frames for one connected client: ReadPump decodes inbound
// JSON envelopes and calls Handler, WritePump drains outbound envelopes
// and periodic pings onto the socket. Grounded on the same
// inbox-channel-plus-pump-goroutines shape, generalized from a
// single proto-bytes inbox and an externally-triggered pingChan to a
// JSON wire.Envelope inbox with its own ticker-driven keepalive.
type Player struct {
	PlayerID    string
	conn        Conn
	inbox       chan wire.Envelope
	rateLimiter *rate.Limiter
	log         zerolog.Logger
	onMessage   Handler
	onClose     func(playerID string)

	mu     sync.Mutex
	closed bool
}

// NewPlayer wraps conn for playerID. onMessage is called from ReadPump's
// goroutine for every successfully decoded envelope; onClose runs once
// when either pump exits, however it exits.
func NewPlayer(playerID string, conn Conn, onMessage Handler, onClose func(string), log zerolog.Logger) *Player {
	return &Player{
		PlayerID:    playerID,
		conn:        conn,
		inbox:       make(chan wire.Envelope, inboxCapacity),
		rateLimiter: rate.NewLimiter(10, 20),
		log:         log,
		onMessage:   onMessage,
		onClose:     onClose,
	}
}

// Send enqueues env for delivery without blocking the caller; if the
// inbox is full the connection is considered unrecoverable and dropped.
func (p *Player) Send(env wire.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errBackpressure
	}
	select {
	case p.inbox <- env:
		return nil
	default:
		p.conn.Close("backpressure")
		return errBackpressure
	}
}

// ReadPump decodes inbound frames until the socket errors or closes, then
// closes inbox so WritePump can exit too.
func (p *Player) ReadPump() {
	defer p.stop()
	for {
		data, err := p.conn.Read()
		if err != nil {
			return
		}
		if !p.rateLimiter.Allow() {
			continue
		}
		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		p.onMessage(p.ID(), env)
	}
}

// ID returns the connection's current identity. Rebind may change it
// concurrently with ReadPump's loop, so both go through this lock.
func (p *Player) ID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PlayerID
}

// WritePump drains inbox onto the socket and sends a ping every
// pingPeriod, matching the read deadline the other side extends on pong.
// On any write error it closes the socket so ReadPump's blocked Read call
// unblocks with an error and runs stop() in turn.
func (p *Player) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case env, ok := <-p.inbox:
			if !ok {
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				p.log.Error().Str("player_id", p.ID()).Err(err).Msg("transport: failed to marshal outbound envelope")
				continue
			}
			if err := p.conn.Write(data); err != nil {
				p.conn.Close("write error")
				return
			}
		case <-ticker.C:
			if err := p.conn.Ping(); err != nil {
				p.conn.Close("ping error")
				return
			}
		}
	}
}

// Rebind updates the identity a connection is attributed to once a
// room.create/room.join/session.resume handshake resolves it; a
// connection starts out under a throwaway id before that handshake
// completes.
func (p *Player) Rebind(playerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PlayerID = playerID
}

func (p *Player) stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.inbox)
	id := p.PlayerID
	p.mu.Unlock()

	if p.onClose != nil {
		p.onClose(id)
	}
}

var errBackpressure = &backpressureError{}

type backpressureError struct{}

func (*backpressureError) Error() string { return "transport: connection dropped, outbox full" }
