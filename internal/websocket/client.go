package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

var (
	ErrClientDisconnected = errors.New("client disconnected")
	ErrSendBufferFull     = errors.New("client send buffer full")
)

// Client is one live connection. room and joined are guarded by the owning
// Hub's lock; the outbound sink is guarded by mu.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	room   string
	joined bool

	mu     sync.RWMutex
	send   chan []byte
	closed bool

	// done is closed when writePump returns.
	done chan struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, sendBuffer int) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Room returns the room of the most recent message this client sent.
func (c *Client) Room() string {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	return c.room
}

// enqueue pushes msg onto the outbound sink without blocking.
func (c *Client) enqueue(msg []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientDisconnected
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// closeSend closes the outbound sink, which makes writePump send a close
// frame and stop. Safe to call more than once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump is the relay loop: it reads frames until the transport fails or
// the peer closes, and relays every frame that decodes.
func (c *Client) readPump(ctx context.Context, maxMessageSize int64) {
	log := c.hub.log.With("clientID", c.id)
	defer func() {
		c.hub.Unregister(c.id)
		if err := c.conn.Close(); err != nil {
			log.Debug("Error closing connection", "error", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn("WebSocket read error", "error", err)
			} else {
				log.Debug("WebSocket connection closed", "error", err)
			}
			return
		}
		c.hub.metrics.FramesReceived.Inc()

		if messageType != websocket.TextMessage {
			c.hub.metrics.FramesDiscarded.Inc()
			continue
		}
		frame, ok := DecodeFrame(data)
		if !ok {
			c.hub.metrics.FramesDiscarded.Inc()
			log.Debug("Discarding frame that is not a UTF-8 JSON object", "size", len(data))
			continue
		}

		c.hub.Relay(ctx, c, frame)
	}
}

// writePump forwards the outbound sink onto the connection and keeps it
// alive with pings. It exits when the sink is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Debug("Error writing message", "clientID", c.id, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.log.Debug("Error sending ping", "clientID", c.id, "error", err)
				return
			}
		}
	}
}
