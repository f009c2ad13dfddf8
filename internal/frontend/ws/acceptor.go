// Package ws provides the WebSocket transport adapter: it upgrades HTTP
// connections, assigns connection identifiers, frames inbound commands
// for the signaling core, and carries unicast/broadcast sends back out.
// Static assets are served from the same listener.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rendezvous/internal/config"
)

// Handler consumes transport events: connection arrival, framed
// commands, and departure. Disconnected is called exactly once per
// connection.
type Handler interface {
	Connected(connID string)
	Command(connID, event string, data []byte)
	Disconnected(connID string)
}

// frame is the wire envelope for both directions:
// {"event": "...", "data": {...}}.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Acceptor listens for WebSocket connections on an HTTP port and
// dispatches framed commands to a Handler. It also serves static files
// from the configured directory at "/".
type Acceptor struct {
	cfg     config.ServerConfig
	wsCfg   config.WebSocketConfig
	handler Handler
	logger  *zap.Logger

	upgrader websocket.Upgrader
	srv      *http.Server

	mu       sync.Mutex
	listener net.Listener
	clients  map[string]*client
	running  bool
	wg       sync.WaitGroup
}

// NewAcceptor creates a WebSocket acceptor with the given configuration.
// The command handler is attached with SetHandler before Start.
//
// Precondition: cfg must have a valid port; logger must be non-nil.
func NewAcceptor(cfg config.ServerConfig, wsCfg config.WebSocketConfig, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:    cfg,
		wsCfg:  wsCfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// SetHandler attaches the command handler.
//
// Precondition: must be called before Start; h must be non-nil.
func (a *Acceptor) SetHandler(h Handler) {
	a.handler = h
}

// Start begins listening and blocks until Stop is called.
//
// Precondition: a handler must be attached; the acceptor must not
// already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) Start() error {
	if a.handler == nil {
		return errors.New("no handler attached")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/socket", a.serveWS)
	mux.Handle("/", http.FileServer(http.Dir(a.cfg.StaticDir)))

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.srv = &http.Server{Handler: mux}
	a.running = true
	a.mu.Unlock()

	a.logger.Info("websocket acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("static_dir", a.cfg.StaticDir),
	)

	if err := a.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// Stop gracefully stops the acceptor, closing the listener and all
// client connections and waiting for their pumps to finish.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	srv := a.srv
	clients := make([]*client, 0, len(a.clients))
	for _, c := range a.clients {
		clients = append(clients, c)
	}
	a.mu.Unlock()

	for _, c := range clients {
		c.close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Warn("http shutdown", zap.Error(err))
	}
	a.wg.Wait()

	a.logger.Info("websocket acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet
// listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// ClientCount returns the number of connected clients.
func (a *Acceptor) ClientCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.clients)
}

// serveWS upgrades one HTTP request and runs its read loop.
func (a *Acceptor) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("upgrading connection", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	c := newClient(connID, conn, a.wsCfg, a.logger)

	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		conn.Close()
		return
	}
	a.clients[connID] = c
	count := len(a.clients)
	// One slot each for the write pump and this read loop, claimed
	// while still registered so Stop cannot pass wg.Wait between them.
	a.wg.Add(2)
	a.mu.Unlock()

	a.logger.Info("client connected",
		zap.String("conn_id", connID),
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Int("clients", count),
	)

	go func() {
		defer a.wg.Done()
		c.writePump()
	}()

	a.handler.Connected(connID)
	defer a.wg.Done()
	a.readLoop(c)
}

// readLoop consumes inbound frames until the connection drops, then
// tears the client down and reports the disconnect exactly once.
func (a *Acceptor) readLoop(c *client) {
	defer func() {
		a.removeClient(c)
		a.handler.Disconnected(c.id)
	}()

	c.conn.SetReadLimit(a.wsCfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(a.wsCfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(a.wsCfg.PongTimeout))
	})

	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.Debug("read error",
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			a.logger.Warn("malformed frame",
				zap.String("conn_id", c.id),
				zap.Error(err),
			)
			continue
		}
		if f.Event == "" {
			a.logger.Warn("frame without event name", zap.String("conn_id", c.id))
			continue
		}

		a.handler.Command(c.id, f.Event, f.Data)
	}
}

// removeClient unregisters and closes a client. Safe to call more than
// once for the same client.
func (a *Acceptor) removeClient(c *client) {
	a.mu.Lock()
	if current, ok := a.clients[c.id]; ok && current == c {
		delete(a.clients, c.id)
	}
	count := len(a.clients)
	a.mu.Unlock()

	c.close()

	a.logger.Info("client disconnected",
		zap.String("conn_id", c.id),
		zap.Int("clients", count),
	)
}

// Unicast delivers an event to one connection. Unknown connections are
// dropped silently: the peer may have raced a disconnect.
func (a *Acceptor) Unicast(connID, event string, data any) {
	a.mu.Lock()
	c, ok := a.clients[connID]
	a.mu.Unlock()
	if !ok {
		a.logger.Debug("unicast to unknown connection",
			zap.String("conn_id", connID),
			zap.String("event", event),
		)
		return
	}

	raw, err := json.Marshal(outFrame{Event: event, Data: data})
	if err != nil {
		a.logger.Error("encoding frame",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}
	c.enqueue(raw)
}

// Broadcast delivers an event to every connected client.
func (a *Acceptor) Broadcast(event string, data any) {
	raw, err := json.Marshal(outFrame{Event: event, Data: data})
	if err != nil {
		a.logger.Error("encoding frame",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	a.mu.Lock()
	clients := make([]*client, 0, len(a.clients))
	for _, c := range a.clients {
		clients = append(clients, c)
	}
	a.mu.Unlock()

	for _, c := range clients {
		c.enqueue(raw)
	}
}
