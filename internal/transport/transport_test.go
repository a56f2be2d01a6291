package transport

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sairajesh711/mafia-lite/internal/wire"
)

// fakeConn is an in-memory Conn: inbound frames are fed via feed, outbound
// writes land in written, Close just records the reason.
type fakeConn struct {
	mu      sync.Mutex
	toRead  chan []byte
	written [][]byte
	closed  bool
	reason  string
}

func newFakeConn() *fakeConn {
	return &fakeConn{toRead: make(chan []byte, 16)}
}

func (c *fakeConn) feed(data []byte) { c.toRead <- data }

func (c *fakeConn) Read() ([]byte, error) {
	data, ok := <-c.toRead
	if !ok {
		return nil, assert.AnError
	}
	return data, nil
}

func (c *fakeConn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, data)
	return nil
}

func (c *fakeConn) Ping() error { return nil }

func (c *fakeConn) Close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.reason = reason
		close(c.toRead)
	}
}

func (c *fakeConn) writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

func TestPlayer_ReadPumpDecodesEnvelopeAndCallsHandler(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	received := make(chan wire.Envelope, 1)
	p := NewPlayer("player-1", conn, func(playerID string, env wire.Envelope) {
		received <- env
	}, nil, zerolog.Nop())

	go p.ReadPump()

	raw, err := json.Marshal(wire.Envelope{Event: wire.EventActionSubmit, RoomID: "room-1"})
	require.NoError(t, err)
	conn.feed(raw)

	select {
	case env := <-received:
		assert.Equal(t, wire.EventActionSubmit, env.Event)
		assert.Equal(t, "room-1", env.RoomID)
	case <-time.After(time.Second):
		t.Fatal("handler was never called")
	}
	conn.Close("test done")
}

func TestPlayer_ReadPumpRunsOnCloseWhenSocketErrors(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	var closedWith string
	done := make(chan struct{})
	p := NewPlayer("player-1", conn, func(string, wire.Envelope) {}, func(playerID string) {
		closedWith = playerID
		close(done)
	}, zerolog.Nop())

	go p.ReadPump()
	conn.Close("simulated disconnect")

	select {
	case <-done:
		assert.Equal(t, "player-1", closedWith)
	case <-time.After(time.Second):
		t.Fatal("onClose was never called")
	}
}

func TestPlayer_SendDeliversThroughWritePump(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	p := NewPlayer("player-1", conn, func(string, wire.Envelope) {}, nil, zerolog.Nop())
	go p.WritePump()

	require.NoError(t, p.Send(wire.Envelope{Event: wire.EventActionAck, ActionID: "a1"}))

	require.Eventually(t, func() bool { return len(conn.writes()) == 1 }, time.Second, 10*time.Millisecond)
	var got wire.Envelope
	require.NoError(t, json.Unmarshal(conn.writes()[0], &got))
	assert.Equal(t, wire.EventActionAck, got.Event)
	assert.Equal(t, "a1", got.ActionID)
}

func TestPlayer_SendAfterCloseFails(t *testing.T) {
	t.Parallel()
	conn := newFakeConn()
	p := NewPlayer("player-1", conn, func(string, wire.Envelope) {}, nil, zerolog.Nop())
	go p.ReadPump()
	conn.Close("shutdown")
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.closed
	}, time.Second, 10*time.Millisecond)

	err := p.Send(wire.Envelope{Event: wire.EventError})
	assert.Error(t, err)
}

func TestHub_PublishDeliversToRegisteredPlayer(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	conn := newFakeConn()
	p := NewPlayer("player-1", conn, func(string, wire.Envelope) {}, nil, zerolog.Nop())
	go p.WritePump()
	hub.Register("player-1", p)

	require.NoError(t, hub.Publish(nil, "player-1", wire.Envelope{Event: wire.EventRoomSnapshot}))
	require.Eventually(t, func() bool { return len(conn.writes()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishToUnknownPlayerIsNoOp(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	assert.NoError(t, hub.Publish(nil, "ghost", wire.Envelope{Event: wire.EventRoomSnapshot}))
}

func TestHub_RegisterDisplacesPriorConnection(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	connA := newFakeConn()
	pA := NewPlayer("player-1", connA, func(string, wire.Envelope) {}, nil, zerolog.Nop())
	hub.Register("player-1", pA)

	connB := newFakeConn()
	pB := NewPlayer("player-1", connB, func(string, wire.Envelope) {}, nil, zerolog.Nop())
	hub.Register("player-1", pB)

	require.Eventually(t, func() bool {
		connA.mu.Lock()
		defer connA.mu.Unlock()
		return connA.closed
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "replaced_by_new_session", connA.reason)
}

func TestHub_UnregisterOnlyRemovesMatchingConnection(t *testing.T) {
	t.Parallel()
	hub := NewHub(zerolog.Nop())
	connA := newFakeConn()
	pA := NewPlayer("player-1", connA, func(string, wire.Envelope) {}, nil, zerolog.Nop())
	hub.Register("player-1", pA)

	connB := newFakeConn()
	pB := NewPlayer("player-1", connB, func(string, wire.Envelope) {}, nil, zerolog.Nop())
	hub.Register("player-1", pB)

	// pA's own stale close callback should not evict pB.
	hub.Unregister("player-1", pA)

	require.NoError(t, hub.Publish(nil, "player-1", wire.Envelope{Event: wire.EventRoomSnapshot}))
}
