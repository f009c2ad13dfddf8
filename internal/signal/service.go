// Package signal implements the command-handling core of the rendezvous
// server: join/leave presence, room chat, and pairwise game session
// negotiation. The transport layer delivers framed commands into the
// Service and carries its unicast/broadcast responses back out.
package signal

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rendezvous/internal/presence"
)

// Transport is the send surface the core consumes. Sends are
// fire-and-forget: implementations must never block a handler.
type Transport interface {
	// Unicast delivers an event to one connection.
	Unicast(connID, event string, data any)
	// Broadcast delivers an event to every connection.
	Broadcast(event string, data any)
}

// Service validates and applies inbound commands against the presence
// registry. One command is fully processed at a time: a single mutex
// serializes commands and disconnects across all connections, so every
// response observes the state its own mutation produced.
type Service struct {
	mu         sync.Mutex
	registry   *presence.Registry
	transport  Transport
	gameIDs    GameIDAllocator
	logger     *zap.Logger
	clientEcho bool
}

// NewService creates the command service.
//
// Precondition: registry, transport, gameIDs, and logger must be non-nil.
func NewService(registry *presence.Registry, transport Transport, gameIDs GameIDAllocator, logger *zap.Logger, clientEcho bool) *Service {
	return &Service{
		registry:   registry,
		transport:  transport,
		gameIDs:    gameIDs,
		logger:     logger,
		clientEcho: clientEcho,
	}
}

// Connected records a new connection. No participant exists until the
// connection joins a room.
func (s *Service) Connected(connID string) {
	s.echo("client connected", zap.String("conn_id", connID))
}

// Command dispatches one inbound command. Unknown events are logged and
// dropped.
func (s *Service) Command(connID, event string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event {
	case CmdJoinRoom:
		s.joinRoom(connID, data)
	case CmdSendMessage:
		s.sendMessage(connID, data)
	case CmdInvite:
		s.pairwise(connID, CmdInvite, EvtInviteResponse, EvtInvited, data)
	case CmdUninvite:
		s.pairwise(connID, CmdUninvite, EvtUninviteResponse, EvtUninvited, data)
	case CmdGameStart:
		s.gameStart(connID, data)
	default:
		s.logger.Debug("unknown command",
			zap.String("conn_id", connID),
			zap.String("event", event),
		)
	}
}

// Disconnected removes the participant and announces the departure to
// their room. A connection that never joined is a silent no-op.
func (s *Service) Disconnected(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.registry.Remove(connID)
	if !ok {
		s.logger.Debug("unjoined client disconnected", zap.String("conn_id", connID))
		return
	}

	s.roomcast(p.Room, EvtPlayerDisconnected, PlayerDisconnected{
		Username: p.Username,
		ConnID:   connID,
	})
	s.echo("client disconnected",
		zap.String("conn_id", connID),
		zap.String("username", p.Username),
		zap.String("room", p.Room),
		zap.Int("participants", s.registry.ParticipantCount()),
	)
}

// roomcast fans an event out to every current member of a room. The
// registry is the single source of membership truth, so room delivery is
// derived here rather than tracked by the transport.
func (s *Service) roomcast(room, event string, data any) {
	for _, m := range s.registry.MembersOf(room) {
		s.transport.Unicast(m.ConnID, event, data)
	}
}

// fail reports a rejected command to its sender. Nothing is mutated and
// nothing is broadcast on this path.
func (s *Service) fail(connID, command, responseEvent string, err error) {
	msg := failMessage(command, err)
	s.transport.Unicast(connID, responseEvent, FailResponse{
		Result:  ResultFail,
		Message: msg,
	})
	s.echo(msg, zap.String("conn_id", connID))
}

// echo logs a line and, when client echo is enabled, mirrors it to all
// clients as a log event.
func (s *Service) echo(msg string, fields ...zap.Field) {
	s.logger.Info(msg, fields...)
	if s.clientEcho {
		s.transport.Broadcast(EvtLog, LogEvent{Message: msg})
	}
}
