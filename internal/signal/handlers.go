package signal

import "go.uber.org/zap"

// joinRoom registers the participant and announces the join to the room.
// The joiner additionally receives one roster entry per pre-existing
// member, so a client can reconstruct room state from its own inbox.
func (s *Service) joinRoom(connID string, data []byte) {
	var p JoinRoomPayload
	if err := decode(data, &p); err != nil {
		s.fail(connID, CmdJoinRoom, EvtJoinRoomResponse, err)
		return
	}

	// Snapshot the roster before the join so the replay covers exactly
	// the members that preceded this one.
	existing := s.registry.MembersOf(p.Room)
	membership := s.registry.Register(connID, p.Username, p.Room)

	s.roomcast(p.Room, EvtJoinRoomResponse, JoinRoomResponse{
		Result:     ResultSuccess,
		Room:       p.Room,
		Username:   p.Username,
		ConnID:     connID,
		Membership: membership,
	})

	for _, m := range existing {
		if m.ConnID == connID {
			continue // re-join of the same room
		}
		s.transport.Unicast(connID, EvtJoinRoomResponse, JoinRoomResponse{
			Result:     ResultSuccess,
			Room:       p.Room,
			Username:   m.Username,
			ConnID:     m.ConnID,
			Membership: membership,
		})
	}

	s.echo("room joined",
		zap.String("conn_id", connID),
		zap.String("room", p.Room),
		zap.String("username", p.Username),
		zap.Int("membership", membership),
	)
}

// sendMessage relays a chat message to every member of the room, the
// sender included.
func (s *Service) sendMessage(connID string, data []byte) {
	var p SendMessagePayload
	if err := decode(data, &p); err != nil {
		s.fail(connID, CmdSendMessage, EvtSendMessageResponse, err)
		return
	}

	if _, ok := s.registry.Lookup(connID); !ok {
		s.fail(connID, CmdSendMessage, EvtSendMessageResponse, ErrUnknownSender)
		return
	}

	s.roomcast(p.Room, EvtSendMessageResponse, SendMessageResponse{
		Result:   ResultSuccess,
		Room:     p.Room,
		Username: p.Username,
		Message:  p.Message,
	})

	s.echo("message sent",
		zap.String("conn_id", connID),
		zap.String("room", p.Room),
		zap.String("username", p.Username),
	)
}

// pairwise handles invite and uninvite: validate the counterparty, then
// notify both ends. No pending-invite state is recorded server-side;
// acceptance is expressed by the counterparty issuing game_start.
func (s *Service) pairwise(connID, command, senderEvent, targetEvent string, data []byte) {
	target, err := s.resolvePair(connID, data)
	if err != nil {
		s.fail(connID, command, senderEvent, err)
		return
	}

	s.transport.Unicast(connID, senderEvent, PairResponse{
		Result:   ResultSuccess,
		SocketID: target,
	})
	s.transport.Unicast(target, targetEvent, PairResponse{
		Result:   ResultSuccess,
		SocketID: connID,
	})

	s.echo(command+" delivered",
		zap.String("conn_id", connID),
		zap.String("target", target),
	)
}

// gameStart mints a session identifier and hands the same token to both
// parties so they can meet on a shared game channel keyed by it.
func (s *Service) gameStart(connID string, data []byte) {
	target, err := s.resolvePair(connID, data)
	if err != nil {
		s.fail(connID, CmdGameStart, EvtGameStartResponse, err)
		return
	}

	gameID := s.gameIDs.NewGameID()
	s.transport.Unicast(connID, EvtGameStartResponse, GameStartResponse{
		Result:   ResultSuccess,
		SocketID: target,
		GameID:   gameID,
	})
	s.transport.Unicast(target, EvtGameStartResponse, GameStartResponse{
		Result:   ResultSuccess,
		SocketID: connID,
		GameID:   gameID,
	})

	s.echo("game session started",
		zap.String("conn_id", connID),
		zap.String("target", target),
		zap.String("game_id", gameID),
	)
}

// resolvePair validates the shared preconditions of invite, uninvite,
// and game_start: a decodable payload, a registered sender, and a target
// currently in the sender's room. Returns the target connection ID.
func (s *Service) resolvePair(connID string, data []byte) (string, error) {
	var p TargetPayload
	if err := decode(data, &p); err != nil {
		return "", err
	}

	sender, ok := s.registry.Lookup(connID)
	if !ok {
		return "", ErrUnknownSender
	}

	target, ok := s.registry.Lookup(p.RequestedUser)
	if !ok || target.Room != sender.Room {
		return "", ErrTargetNotInRoom
	}

	return p.RequestedUser, nil
}
