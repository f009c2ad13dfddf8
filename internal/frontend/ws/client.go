package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rendezvous/internal/config"
)

// client is one WebSocket connection with a buffered outbound queue.
// Writes go through the queue so a slow peer never blocks a command
// handler; the write pump is the only goroutine touching the socket's
// write side.
type client struct {
	id     string
	conn   *websocket.Conn
	cfg    config.WebSocketConfig
	logger *zap.Logger

	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func newClient(id string, conn *websocket.Conn, cfg config.WebSocketConfig, logger *zap.Logger) *client {
	return &client{
		id:     id,
		conn:   conn,
		cfg:    cfg,
		logger: logger,
		send:   make(chan []byte, cfg.SendBuffer),
	}
}

// enqueue queues a frame for delivery. Frames to a closed client are
// dropped; frames to a client whose buffer is full are dropped with a
// warning. Per-connection delivery order is preserved for the frames
// that are sent.
func (c *client) enqueue(raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- raw:
	default:
		c.logger.Warn("send buffer full, dropping frame",
			zap.String("conn_id", c.id),
		)
	}
}

// writePump drains the send queue to the socket and keeps the
// connection alive with pings. Exits when the queue is closed or a
// write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}

			// Drain whatever else is already queued.
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close shuts the outbound queue down exactly once. The write pump
// flushes the close message and releases the socket.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
