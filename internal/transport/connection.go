// Package transport wraps gorilla/websocket connections behind the
// read/write pump idiom: one goroutine drains inbound frames into a room's
// command queue, another drains an outbound channel onto the socket, so
// neither side of a connection ever blocks the other on a slow write.
package transport

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessageBytes = 32 * 1024
)

// Conn is the minimal socket surface a Connection pumps against, narrow
// enough that tests can fake it without a real network socket.
type Conn interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Ping() error
	Close(reason string)
}

// wsConn adapts a *websocket.Conn to Conn.
type wsConn struct {
	socket *websocket.Conn
}

// NewWSConn wraps an upgraded socket, installing the pong handler that
// extends the read deadline on every keepalive response.
func NewWSConn(socket *websocket.Conn) Conn {
	socket.SetReadLimit(maxMessageBytes)
	socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &wsConn{socket: socket}
}

func (c *wsConn) Read() ([]byte, error) {
	_, p, err := c.socket.ReadMessage()
	return p, err
}

func (c *wsConn) Write(data []byte) error {
	_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.socket.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Ping() error {
	_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.socket.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close(reason string) {
	_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	_ = c.socket.Close()
}
